package querycontext

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xwb1989/sqlparser"

	"docgen-converter/internal/common"
	"docgen-converter/internal/diagnostic"
	"docgen-converter/internal/errors"
)

var (
	leadingSelect = regexp.MustCompile(`(?i)^\s*select\s`)
	identPath     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
)

// LoadSQL reads a SQL query context file.
func LoadSQL(path string) (*SQLContext, error) {
	data, err := readFile(path, "SQL query")
	if err != nil {
		return nil, err
	}

	sql, err := ParseSQL(data)
	if err != nil {
		return nil, errors.Wrapf(err, "SQL query file %s", path)
	}

	return sql, nil
}

// ParseSQL extracts the selected field names from every SELECT statement in
// data. An empty document yields an empty context. Statements other than
// SELECT are ignored. A SELECT the parser rejects (SOQL date literals,
// {pv0} placeholders, deep relationship paths) has its select list read
// leniently and gets a warning in the context's diagnostics.
func ParseSQL(data []byte) (*SQLContext, error) {
	ctx := &SQLContext{SelectedFields: []string{}}

	blob := strings.TrimSpace(string(data))
	if blob == "" {
		return ctx, nil
	}

	pieces, err := sqlparser.SplitStatementToPieces(blob)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "split statements"), ErrMalformed)
	}

	for i, piece := range pieces {
		if isBlank(piece) {
			continue
		}

		stmt, err := sqlparser.Parse(piece)
		if err != nil {
			names, ok := lenientSelectList(piece)
			if !ok {
				return nil, errors.WithHint(
					errors.Mark(errors.Wrapf(err, "statement %d", i+1), ErrMalformed),
					"only SELECT statements are read from a SQL query context",
				)
			}

			ctx.SelectedFields = append(ctx.SelectedFields, names...)
			ctx.Diagnostics.AddWarning(diagnostic.CodeLenientSQL,
				fmt.Sprintf("SQL statement %d could not be parsed (%v); its select list was read without a parser.", i+1, err),
				"")

			continue
		}

		sel, ok := stmt.(sqlparser.SelectStatement)
		if !ok {
			continue
		}

		ctx.SelectedFields = append(ctx.SelectedFields, selectedNames(sel)...)
	}

	ctx.SelectedFields = common.Dedup(ctx.SelectedFields)

	return ctx, nil
}

// selectedNames returns the select-list names of a statement in order.
// Unions contribute the names of both sides.
func selectedNames(stmt sqlparser.SelectStatement) []string {
	switch s := stmt.(type) {
	case *sqlparser.Select:
		return exprNames(s.SelectExprs)
	case *sqlparser.Union:
		return append(selectedNames(s.Left), selectedNames(s.Right)...)
	case *sqlparser.ParenSelect:
		return selectedNames(s.Select)
	default:
		return nil
	}
}

func exprNames(exprs sqlparser.SelectExprs) []string {
	var names []string

	for _, expr := range exprs {
		aliased, ok := expr.(*sqlparser.AliasedExpr)
		if !ok {
			// *sqlparser.StarExpr and NEXT VALUE expressions name nothing.
			continue
		}

		if !aliased.As.IsEmpty() {
			names = append(names, aliased.As.String())
			continue
		}

		if col, ok := aliased.Expr.(*sqlparser.ColName); ok {
			names = append(names, qualifiedName(col))
		}
	}

	return names
}

// qualifiedName returns the column as written, qualifiers included.
func qualifiedName(col *sqlparser.ColName) string {
	parts := make([]string, 0, 3)

	if !col.Qualifier.Qualifier.IsEmpty() {
		parts = append(parts, col.Qualifier.Qualifier.String())
	}

	if !col.Qualifier.Name.IsEmpty() {
		parts = append(parts, col.Qualifier.Name.String())
	}

	return strings.Join(append(parts, col.Name.String()), ".")
}

// lenientSelectList reads the select list of a statement the parser
// rejected: the text between the leading SELECT and the first FROM outside
// parentheses and quotes, split on top-level commas. It reports false when
// the statement does not start with SELECT.
func lenientSelectList(piece string) ([]string, bool) {
	stmt := sqlparser.StripLeadingComments(piece)

	loc := leadingSelect.FindStringIndex(stmt)
	if loc == nil {
		return nil, false
	}

	list := stmt[loc[1]:]

	var (
		items []string
		depth int
		quote byte
		start int
	)

	end := len(list)

scan:
	for i := 0; i < len(list); i++ {
		c := list[i]

		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth = max(depth-1, 0)
		case depth > 0:
		case c == ',':
			items = append(items, list[start:i])
			start = i + 1
		case keywordAt(list, i, "from"):
			end = i

			break scan
		}
	}

	items = append(items, list[start:end])

	var names []string

	for _, item := range items {
		if name, ok := itemName(item); ok {
			names = append(names, name)
		}
	}

	return names, true
}

// keywordAt reports whether the keyword starts at s[i] as a whole word.
func keywordAt(s string, i int, keyword string) bool {
	j := i + len(keyword)
	if j > len(s) || !strings.EqualFold(s[i:j], keyword) {
		return false
	}

	return (i == 0 || isSQLSpace(s[i-1])) && (j == len(s) || isSQLSpace(s[j]))
}

func isSQLSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// itemName returns the name a select-list item contributes: its alias
// (with or without AS), else the column path itself. Stars and unaliased
// expressions name nothing.
func itemName(item string) (string, bool) {
	fields := strings.Fields(item)
	if len(fields) > 0 && strings.EqualFold(fields[0], "distinct") {
		fields = fields[1:]
	}

	var name string

	switch n := len(fields); {
	case n == 0:
		return "", false
	case n == 1:
		name = fields[0]
	case strings.EqualFold(fields[n-2], "as"),
		identPath.MatchString(fields[n-2]),
		strings.HasSuffix(fields[n-2], ")"):
		name = fields[n-1]
	default:
		return "", false
	}

	name = strings.Trim(name, "`\"")
	if !identPath.MatchString(name) {
		return "", false
	}

	return name, true
}

// isBlank reports whether a statement piece holds only whitespace and comments.
func isBlank(piece string) bool {
	s := sqlparser.StripLeadingComments(piece)

	return s == "" || (strings.HasPrefix(s, "--") && !strings.Contains(s, "\n"))
}
