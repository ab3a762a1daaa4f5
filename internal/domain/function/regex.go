package function

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/latticeauth/xacml-pdp/internal/domain/value"
)

// regexCache memoizes compiled patterns: policies frequently re-evaluate the
// same *-regexp-match rule across many requests, and each XACML regex must be
// treated as an implicit whole-string match (spec Annex A.3: "the entire
// string must match the pattern"), which Go's regexp does not do by default.
// The evaluator runs requests concurrently, so the cache is guarded by a
// mutex rather than assumed single-threaded.
var (
	regexCacheMu sync.RWMutex
	regexCache   = map[string]*regexp.Regexp{}
)

func compileAnchored(pattern string) (*regexp.Regexp, error) {
	regexCacheMu.RLock()
	re, ok := regexCache[pattern]
	regexCacheMu.RUnlock()
	if ok {
		return re, nil
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, err
	}
	regexCacheMu.Lock()
	regexCache[pattern] = re
	regexCacheMu.Unlock()
	return re, nil
}

func regexMatchFn(id string, extract func(id string, a Arg) (string, error)) *Fn {
	return &Fn{ID: id, Call: func(args []Arg) (Arg, error) {
		if err := mustArgs(id, args, 2); err != nil {
			return Arg{}, err
		}
		pattern, err := asString(id, args[0])
		if err != nil {
			return Arg{}, err
		}
		s, err := extract(id, args[1])
		if err != nil {
			return Arg{}, err
		}
		re, err := compileAnchored(pattern)
		if err != nil {
			return Arg{}, newProcessingError(id, fmt.Errorf("invalid regular expression %q: %w", pattern, err))
		}
		return ScalarArg(value.BooleanValue(re.MatchString(s))), nil
	}}
}

func extractScalarLexical(id string, a Arg) (string, error) {
	v, err := scalar(id, a)
	if err != nil {
		return "", err
	}
	return v.Lexical(), nil
}

func init() {
	Register(regexMatchFn("urn:oasis:names:tc:xacml:1.0:function:string-regexp-match", extractScalarLexical))
	Register(regexMatchFn("urn:oasis:names:tc:xacml:2.0:function:anyURI-regexp-match", extractScalarLexical))
	Register(regexMatchFn("urn:oasis:names:tc:xacml:2.0:function:rfc822Name-regexp-match", extractScalarLexical))
	Register(regexMatchFn("urn:oasis:names:tc:xacml:2.0:function:x500Name-regexp-match", extractScalarLexical))
}
