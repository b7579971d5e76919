package schema

import (
	"fmt"
	"strings"

	"github.com/sqldef-tools/sqliteddl/token"
)

// Generate is a deterministic pretty-printer over a Schema. It is not
// obliged to byte-reproduce any original source, only to round-trip:
// ParseSchema(Generate(s)) is structurally equal to s, with two
// exceptions. A column-scope CHECK is re-emitted as a table constraint, so
// it reparses with IsTableConstraint set and after the column-scope
// Uniqueness/ForeignKey constraints. Bracket- or backtick-delimited
// identifiers inside captured expressions are re-emitted double-quoted, so
// they reparse as STD_DELIMITED_ID tokens.
func Generate(s Schema) string {
	var sb strings.Builder
	for _, item := range s.Items {
		switch v := item.(type) {
		case Table:
			sb.WriteString(generateTable(v))
		case Index:
			sb.WriteString(generateIndex(v))
		}
	}
	return strings.TrimRight(sb.String(), " \t\n\r")
}

func generateTable(t Table) string {
	orReplace := ""
	if t.OrReplace {
		orReplace = " OR REPLACE"
	}
	temp := ""
	if t.Temporary {
		temp = " TEMPORARY"
	}
	ifNotExists := ""
	if t.IfNotExists {
		ifNotExists = " IF NOT EXISTS"
	}

	// Constraints that were written at column scope are rendered back onto
	// their owning column instead of as a separate table-level entry, so
	// that IsTableConstraint survives a round trip for Uniqueness and
	// ForeignKey. Check carries no column reference once promoted, so a
	// column-scope CHECK still re-emits as a table constraint.
	inline := map[string][]string{}
	var tableLevel []ColumnConstraint
	for _, cons := range t.Constraints {
		if col, ok := inlineColumnTarget(cons); ok {
			inline[col] = append(inline[col], generateInlineConstraint(cons))
			continue
		}
		tableLevel = append(tableLevel, cons)
	}

	entries := make([]string, 0, len(t.Columns)+len(tableLevel))
	for _, col := range t.Columns {
		entries = append(entries, generateColumnDef(col, inline[col.Name]))
	}
	for _, cons := range tableLevel {
		entries = append(entries, generateConstraint(cons))
	}
	body := indentLines(strings.Join(entries, ",\n"), 12)

	var optParts []string
	if t.Options.Strict {
		optParts = append(optParts, " STRICT")
	}
	if t.Options.WithoutRowID {
		optParts = append(optParts, " WITHOUT ROWID")
	}

	return fmt.Sprintf("CREATE%s%s TABLE%s %s(\n%s\n)%s;\n",
		orReplace, temp, ifNotExists, generateQualifiedName(t.Name), body, strings.Join(optParts, ","))
}

// generateColumnDef renders one column definition. inline holds the
// already-rendered text of any promoted column-scope Uniqueness/ForeignKey
// constraints that originated on this column (see generateTable).
func generateColumnDef(c Column, inline []string) string {
	parts := []string{`"` + c.Name + `"`}
	if typ := generateType(c.Type); typ != "" {
		parts[0] += " " + typ
	}
	for _, cons := range c.Constraints {
		parts = append(parts, generateConstraint(cons))
	}
	parts = append(parts, inline...)
	return strings.Join(parts, " ")
}

// inlineColumnTarget reports the single column a promoted column-scope
// Uniqueness or ForeignKey constraint originated on, if it can be recovered
// from the constraint alone. Table-level constraints (IsTableConstraint)
// are never inlined.
func inlineColumnTarget(c ColumnConstraint) (string, bool) {
	switch v := c.(type) {
	case Uniqueness:
		if !v.IsTableConstraint && len(v.Indexed) == 1 {
			return v.Indexed[0].Column, true
		}
	case ForeignKey:
		if !v.IsTableConstraint && len(v.Columns) == 1 {
			return v.Columns[0], true
		}
	}
	return "", false
}

// generateInlineConstraint renders a promoted column-scope Uniqueness or
// ForeignKey the way it was actually written: without the table-scope
// "(column list)" wrapper those two variants use when declared at table
// scope, matching columnDef's grammar so the result reparses as column
// scope rather than table scope.
func generateInlineConstraint(c ColumnConstraint) string {
	switch v := c.(type) {
	case Uniqueness:
		kw := "UNIQUE"
		if v.IsPrimary {
			kw = "PRIMARY KEY"
		}
		sorting := ""
		if len(v.Indexed) == 1 && v.Indexed[0].Sorting != nil {
			sorting = " " + string(*v.Indexed[0].Sorting)
		}
		autoincr := ""
		if v.Autoincrement {
			autoincr = " AUTOINCREMENT"
		}
		return fmt.Sprintf("%s%s%s%s%s", generateConstraintName(v.Name), kw, sorting, generateOnConflict(v.OnConflict), autoincr)

	case ForeignKey:
		referred := ""
		if v.ReferredColumns != nil {
			referred = "(" + quoteJoin(v.ReferredColumns) + ")"
		}
		return fmt.Sprintf("%sREFERENCES %s%s%s%s%s%s",
			generateConstraintName(v.Name), generateQualifiedName(v.ForeignTable),
			referred, generateOnUpdateDelete(v.OnUpdate, true), generateOnUpdateDelete(v.OnDelete, false),
			generateMatch(v.Match), generateEnforcement(v.Enforcement))

	default:
		return ""
	}
}

func generateConstraint(c ColumnConstraint) string {
	switch v := c.(type) {
	case Uniqueness:
		kw := "UNIQUE"
		if v.IsPrimary {
			kw = "PRIMARY KEY"
		}
		autoincr := ""
		if v.Autoincrement {
			autoincr = " AUTOINCREMENT"
		}
		return fmt.Sprintf("%s%s (%s)%s%s", generateConstraintName(v.Name), kw,
			generateIndexedList(v.Indexed), autoincr, generateOnConflict(v.OnConflict))

	case ForeignKey:
		referred := ""
		if v.ReferredColumns != nil {
			referred = "(" + quoteJoin(v.ReferredColumns) + ")"
		}
		return fmt.Sprintf("%sFOREIGN KEY (%s) REFERENCES %s%s%s%s%s%s",
			generateConstraintName(v.Name), quoteJoin(v.Columns), generateQualifiedName(v.ForeignTable),
			referred, generateOnUpdateDelete(v.OnUpdate, true), generateOnUpdateDelete(v.OnDelete, false),
			generateMatch(v.Match), generateEnforcement(v.Enforcement))

	case Check:
		return fmt.Sprintf("%sCHECK (%s)", generateConstraintName(v.Name), generateTokens(v.Expr))

	case NotNull:
		return fmt.Sprintf("%sNOT NULL%s", generateConstraintName(v.Name), generateOnConflict(v.OnConflict))

	case Default:
		// Always wrapped: a parenthesized token group is accepted back by
		// the parser regardless of what the tokens spell out, which is not
		// true of the bare-literal/signed-int/function-call shapes.
		return fmt.Sprintf("%sDEFAULT (%s)", generateConstraintName(v.Name), generateTokens(v.Expr))

	case Collation:
		return fmt.Sprintf("%sCOLLATE %s", generateConstraintName(v.Name), v.Value)

	case Generated:
		kind := ""
		if v.Kind != nil {
			kind = " " + string(*v.Kind)
		}
		return fmt.Sprintf("%sGENERATED ALWAYS AS (%s)%s", generateConstraintName(v.Name), generateTokens(v.Expr), kind)

	default:
		return ""
	}
}

func generateConstraintName(name *string) string {
	if name == nil {
		return ""
	}
	return `CONSTRAINT "` + *name + `" `
}

func generateIndexedList(idxs []Indexed) string {
	parts := make([]string, len(idxs))
	for i, idx := range idxs {
		parts[i] = generateIndexed(idx)
	}
	return strings.Join(parts, ", ")
}

func generateIndexed(idx Indexed) string {
	collation := ""
	if idx.Collation != nil {
		collation = " COLLATE " + *idx.Collation
	}
	sorting := ""
	if idx.Sorting != nil {
		sorting = " " + string(*idx.Sorting)
	}
	return `"` + idx.Column + `"` + collation + sorting
}

func generateOnConflict(oc *OnConflict) string {
	if oc == nil {
		return ""
	}
	return " ON CONFLICT " + string(*oc)
}

func generateOnUpdateDelete(action *ForeignKeyAction, onUpdate bool) string {
	if action == nil {
		return ""
	}
	kw := " ON DELETE "
	if onUpdate {
		kw = " ON UPDATE "
	}
	return kw + string(*action)
}

func generateMatch(m *MatchType) string {
	if m == nil {
		return ""
	}
	return " MATCH " + string(*m)
}

func generateEnforcement(e *Enforcement) string {
	if e == nil {
		return ""
	}
	deferrable := " DEFERRABLE"
	if e.NotDeferrable {
		deferrable = " NOT DEFERRABLE"
	}
	initially := ""
	if e.Initially != nil {
		initially = " INITIALLY " + string(*e.Initially)
	}
	return deferrable + initially
}

func generateType(t Type) string {
	if t.Name == "" {
		return ""
	}
	name := strings.ToLower(t.Name)
	switch len(t.Params) {
	case 0:
		return name
	case 1:
		return fmt.Sprintf("%s(%d)", name, t.Params[0])
	default:
		return fmt.Sprintf("%s(%d, %d)", name, t.Params[0], t.Params[1])
	}
}

func generateQualifiedName(q QualifiedName) string {
	return `"` + strings.Join(q.Reversed(), `"."`) + `"`
}

func generateIndex(idx Index) string {
	unique := ""
	if idx.Unique {
		unique = " UNIQUE"
	}
	ifNotExists := ""
	if idx.IfNotExists {
		ifNotExists = " IF NOT EXISTS"
	}
	where := ""
	if len(idx.Where) > 0 {
		where = " WHERE " + generateTokens(idx.Where)
	}
	return fmt.Sprintf("CREATE%s INDEX%s %s ON \"%s\"(%s)%s;\n",
		unique, ifNotExists, generateQualifiedName(idx.Name), idx.Table, generateIndexedList(idx.Indexed), where)
}

// generateTokens re-emits a captured opaque expression (DEFAULT, CHECK,
// GENERATED, WHERE), joining tokens with single spaces and normalizing
// each token's surface form rather than reproducing its source spelling.
func generateTokens(ts []Token) string {
	parts := make([]string, 0, len(ts))
	for _, tk := range ts {
		if s := generateToken(tk); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func generateToken(tk Token) string {
	switch tk.Kind {
	case token.STD_DELIMITED_ID, token.NON_STD_DELIMITED_ID:
		return `"` + strings.ReplaceAll(tk.Val, `"`, `""`) + `"`
	case token.STD_STR:
		return "'" + strings.ReplaceAll(tk.Val, "'", "''") + "'"
	case token.BLOB:
		return "X'" + tk.Val + "'"
	case token.BINARY:
		return "B'" + tk.Val + "'"
	case token.HEX:
		return "0x" + tk.Val
	case token.FLOAT, token.INT:
		return tk.Val
	case token.WHITESPACE, token.SINGLE_LINE_COMMENT, token.MULTI_LINE_COMMENT:
		return ""
	default:
		return tk.Val
	}
}

func quoteJoin(cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = `"` + c + `"`
	}
	return strings.Join(parts, ", ")
}

func indentLines(s string, n int) string {
	prefix := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
