package logparser

import (
	"regexp"
	"strings"
)

// crateTokenPattern matches the binary id nextest prints before a test path:
// "my-crate", "my_crate", "my-crate::integration", "my-crate::bin/tool".
var crateTokenPattern = regexp.MustCompile(`^[A-Za-z_][\w-]*(?:::[\w/-]+)?$`)

// NormalizeNextestName maps a nextest test id to the form manifests use.
//
// Nextest prints "<binary-id> <test path>". Manifests sometimes list the bare test
// path and sometimes the full id, depending on how the reference run was invoked.
// The crate token is dropped when the rest is a module path, except when the id
// is binary qualified ("crate::integration tests::x"), or when the test path
// already repeats the crate ("crate crate::tests::x"); those stay verbatim.
func NormalizeNextestName(raw string) string {
	name := strings.TrimSpace(raw)
	crate, rest, found := strings.Cut(name, " ")
	if !found {
		return name
	}
	rest = strings.TrimSpace(rest)

	if !crateTokenPattern.MatchString(crate) || !strings.Contains(rest, "::") {
		return name
	}
	if strings.Contains(crate, "::") {
		return name
	}
	crateIdent := strings.ReplaceAll(crate, "-", "_")
	if strings.HasPrefix(rest, crateIdent+"::") || strings.HasPrefix(rest, crate+"::") {
		return name
	}
	return rest
}
