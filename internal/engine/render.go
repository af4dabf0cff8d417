package engine

import (
	"strings"

	"enum-sync/internal/dialect"
)

const ignoreMarker = " -- noqa"

// Render expands operations into statements, in order.
func Render(ops []Operation, d dialect.Dialect) []Statement {
	var stmts []Statement
	for _, op := range ops {
		stmts = append(stmts, op.Statements(d)...)
	}
	return stmts
}

// Script renders operations as a SQL script. Transactional statements are
// grouped in BEGIN/COMMIT blocks; autocommit statements sit between blocks
// so they commit before anything after them reads their result.
func Script(ops []Operation, d dialect.Dialect, cfg Config) string {
	var sb strings.Builder
	inTx := false
	write := func(sql string) {
		sb.WriteString(sql)
		sb.WriteString(";")
		if cfg.AddTypeIgnore {
			sb.WriteString(ignoreMarker)
		}
		sb.WriteString("\n")
	}
	for _, st := range Render(ops, d) {
		switch {
		case st.Autocommit && inTx:
			sb.WriteString("COMMIT;\n")
			inTx = false
		case !st.Autocommit && !inTx:
			sb.WriteString("BEGIN;\n")
			inTx = true
		}
		write(st.SQL)
	}
	if inTx {
		sb.WriteString("COMMIT;\n")
	}
	return sb.String()
}
