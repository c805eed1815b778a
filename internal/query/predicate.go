package query

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierRe accepts column or table names, optionally qualified (table.column).
var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

func validIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}

// parseFields validates a projection: "*" or a comma separated list of identifiers.
func parseFields(fields string) ([]string, error) {
	fields = strings.TrimSpace(fields)
	if fields == "" || fields == "*" {
		return nil, nil
	}

	parts := strings.Split(fields, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if !validIdentifier(p) {
			return nil, fmt.Errorf("%w: field %q", ErrInvalidIdentifier, p)
		}
		out = append(out, p)
	}
	return out, nil
}

type operator string

const (
	opEq    operator = "="
	opNeq   operator = "<>"
	opGt    operator = ">"
	opGte   operator = ">="
	opLt    operator = "<"
	opILike operator = "ILIKE"
	opIn    operator = "IN"
)

type predicate struct {
	column string
	op     operator
	value  any
	values []any
}

// render appends the SQL for p using ? placeholders.
func (p predicate) render(sb *strings.Builder, args []any) []any {
	switch {
	case p.op == opIn:
		if len(p.values) == 0 {
			sb.WriteString("1 = 0")
			return args
		}
		sb.WriteString(p.column)
		sb.WriteString(" IN (")
		for i, v := range p.values {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteByte('?')
			args = append(args, v)
		}
		sb.WriteByte(')')
		return args
	case p.op == opILike:
		sb.WriteString("LOWER(")
		sb.WriteString(p.column)
		sb.WriteString(`) LIKE LOWER(?) ESCAPE '\'`)
		return append(args, p.value)
	case p.value == nil && p.op == opEq:
		sb.WriteString(p.column)
		sb.WriteString(" IS NULL")
		return args
	case p.value == nil && p.op == opNeq:
		sb.WriteString(p.column)
		sb.WriteString(" IS NOT NULL")
		return args
	}

	sb.WriteString(p.column)
	sb.WriteByte(' ')
	sb.WriteString(string(p.op))
	sb.WriteString(" ?")
	return append(args, p.value)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns a search term into a LIKE pattern matching it anywhere.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
