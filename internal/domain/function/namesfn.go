package function

import (
	"fmt"
	"net"

	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

const (
	fnRFC822NameMatch = "urn:oasis:names:tc:xacml:1.0:function:rfc822Name-match"
	fnX500NameMatch   = "urn:oasis:names:tc:xacml:1.0:function:x500Name-match"
)

func init() {
	// rfc822Name-match(pattern, name): pattern is either a complete address,
	// "domain", or ".domain" meaning any address in that domain or a
	// subdomain of it (spec Annex A.3).
	Register(&Fn{ID: fnRFC822NameMatch, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(fnRFC822NameMatch, args, 2); err != nil {
			return Arg{}, err
		}
		pattern, err := asString(fnRFC822NameMatch, args[0])
		if err != nil {
			return Arg{}, err
		}
		v, err := scalar(fnRFC822NameMatch, args[1])
		if err != nil {
			return Arg{}, err
		}
		name, ok := v.(value.RFC822NameValue)
		if !ok {
			return Arg{}, newProcessingError(fnRFC822NameMatch, fmt.Errorf("expected rfc822Name, got %s", v.Type()))
		}
		return ScalarArg(value.BooleanValue(name.MatchesDomain(pattern))), nil
	}})

	// x500Name-match(pattern, name): pattern matches if it is an RDN suffix
	// of name, i.e. name's distinguished name ends with pattern's RDN
	// sequence (spec Annex A.3).
	Register(&Fn{ID: fnX500NameMatch, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(fnX500NameMatch, args, 2); err != nil {
			return Arg{}, err
		}
		patternV, err := scalar(fnX500NameMatch, args[0])
		if err != nil {
			return Arg{}, err
		}
		nameV, err := scalar(fnX500NameMatch, args[1])
		if err != nil {
			return Arg{}, err
		}
		pattern, ok := patternV.(value.X500NameValue)
		if !ok {
			return Arg{}, newProcessingError(fnX500NameMatch, fmt.Errorf("expected x500Name pattern, got %s", patternV.Type()))
		}
		name, ok := nameV.(value.X500NameValue)
		if !ok {
			return Arg{}, newProcessingError(fnX500NameMatch, fmt.Errorf("expected x500Name, got %s", nameV.Type()))
		}
		return ScalarArg(value.BooleanValue(name.HasSuffix(pattern))), nil
	}})
}

// ipAddressContains is not a standard XACML function: it is an unexported
// package helper that wraps IPAddressValue.ContainsIP (CIDR containment). No
// registered function or code outside this package calls it.
func ipAddressContains(network value.IPAddressValue, addr net.IP) bool {
	return network.ContainsIP(addr)
}
