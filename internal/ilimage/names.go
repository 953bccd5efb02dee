package ilimage

import "strings"

// normalizeLocalFunctionName rewrites a compiler-synthesized local-function
// name of the form "<...>g__NAME|..." to its user-facing identifier NAME.
// Forward references within the program always use the normalized form,
// so this runs once, at method-table build time, rather than at every
// call site.
func normalizeLocalFunctionName(name string) string {
	gStart := strings.Index(name, "g__")
	if !strings.HasPrefix(name, "<") || gStart < 0 {
		return name
	}
	rest := name[gStart+len("g__"):]
	if bar := strings.IndexByte(rest, '|'); bar >= 0 {
		rest = rest[:bar]
	}
	if rest == "" {
		return name
	}
	return rest
}
