package value

import "testing"

func TestRFC822NameEquality(t *testing.T) {
	a, err := Parse(TypeRFC822Name, "Anderson@example.com")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := Parse(TypeRFC822Name, "Anderson@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("domain comparison must be case-insensitive")
	}
	c, _ := Parse(TypeRFC822Name, "anderson@example.com")
	if a.Equal(c) {
		t.Fatalf("local-part comparison must be case-sensitive")
	}
}

func TestRFC822NameMatchesDomain(t *testing.T) {
	v, _ := Parse(TypeRFC822Name, "anderson@sales.example.com")
	name := v.(RFC822NameValue)
	if !name.MatchesDomain(".example.com") {
		t.Fatalf("expected subdomain match against .example.com")
	}
	if name.MatchesDomain(".other.com") {
		t.Fatalf("unexpected match against .other.com")
	}
}

func TestX500NameEqualityIgnoresWhitespaceAndKeywordCase(t *testing.T) {
	a, err := Parse(TypeX500Name, "cn=John Smith, ou=Sales, o=Example")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := Parse(TypeX500Name, "CN=John Smith,OU=Sales,O=Example")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("x500Name equality should ignore RDN whitespace and keyword case")
	}
}

func TestX500NameValueIsCaseSensitive(t *testing.T) {
	a, _ := Parse(TypeX500Name, "cn=John Smith")
	b, _ := Parse(TypeX500Name, "cn=john smith")
	if a.Equal(b) {
		t.Fatalf("x500Name attribute values should be case-sensitive")
	}
}

func TestIPAddressEquality(t *testing.T) {
	a, err := Parse(TypeIPAddress, "192.168.1.0/24")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := Parse(TypeIPAddress, "192.168.1.0/24")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("expected equal ipAddress values")
	}
}

func TestIPAddressContainsCIDR(t *testing.T) {
	v, err := Parse(TypeIPAddress, "10.0.0.0/8")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ip := v.(IPAddressValue)
	inside := []byte{10, 1, 2, 3}
	outside := []byte{192, 168, 0, 1}
	if !ip.ContainsIP(inside) {
		t.Fatalf("expected 10.1.2.3 to be contained in 10.0.0.0/8")
	}
	if ip.ContainsIP(outside) {
		t.Fatalf("192.168.0.1 should not be contained in 10.0.0.0/8")
	}
}

func TestDNSNameCaseInsensitive(t *testing.T) {
	a, err := Parse(TypeDNSName, "Example.COM:8080")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := Parse(TypeDNSName, "example.com:8080")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("dnsName comparison should be case-insensitive")
	}
}

func TestXPathExpressionCarriesCategory(t *testing.T) {
	v := NewXPathExpression("//resource/id", "urn:oasis:names:tc:xacml:3.0:attribute-category:resource")
	if v.Lexical() != "//resource/id" {
		t.Fatalf("got %q", v.Lexical())
	}
	if v.Category() == "" {
		t.Fatalf("expected category to be preserved")
	}
}
