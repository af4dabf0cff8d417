package engine

import (
	"slices"
	"strings"

	"enum-sync/internal/dialect"

	"github.com/lib/pq"
)

// splitDefault splits a literal column default, 'text'::type, into its
// unquoted text and the cast that follows. Anything else is not a literal.
func splitDefault(expr string) (lit, cast string, ok bool) {
	if !strings.HasPrefix(expr, "'") {
		return "", "", false
	}
	var sb strings.Builder
	for i := 1; i < len(expr); i++ {
		if expr[i] != '\'' {
			sb.WriteByte(expr[i])
			continue
		}
		if i+1 < len(expr) && expr[i+1] == '\'' {
			sb.WriteByte('\'')
			i++
			continue
		}
		rest := expr[i+1:]
		if !strings.HasPrefix(rest, "::") {
			return "", "", false
		}
		return sb.String(), rest, true
	}
	return "", "", false
}

// rewriteDefault maps the members a literal default names through renames.
// It reports false when the default names a member in removed. Defaults that
// are not literals are returned unchanged.
func rewriteDefault(d dialect.Dialect, expr string, array bool, renames map[string]string, removed []string) (string, bool) {
	lit, cast, ok := splitDefault(expr)
	if !ok {
		return expr, true
	}

	if !array {
		if slices.Contains(removed, lit) {
			return "", false
		}
		if to, ok := renames[lit]; ok {
			return d.QuoteLiteral(to) + cast, true
		}
		return expr, true
	}

	var members pq.StringArray
	if err := members.Scan(lit); err != nil {
		return expr, true
	}
	changed := false
	for i, m := range members {
		if slices.Contains(removed, m) {
			return "", false
		}
		if to, ok := renames[m]; ok {
			members[i] = to
			changed = true
		}
	}
	if !changed {
		return expr, true
	}
	v, err := members.Value()
	if err != nil {
		return expr, true
	}
	return d.QuoteLiteral(v.(string)) + cast, true
}

// defaultMembers returns the enum members a literal default names.
func defaultMembers(expr string, array bool) []string {
	lit, _, ok := splitDefault(expr)
	if !ok {
		return nil
	}
	if !array {
		return []string{lit}
	}
	var members pq.StringArray
	if err := members.Scan(lit); err != nil {
		return nil
	}
	return members
}
