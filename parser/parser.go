package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sqldef-tools/sqliteddl/schema"
	"github.com/sqldef-tools/sqliteddl/token"
)

// ParseError is the single structured error kind the parser ever returns:
// one grammatical violation, naming what was expected and what was found.
// There is no partial-result mode and no recovery.
type ParseError struct {
	Expected string
	Got      token.Token
	Offset   int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s expected, got %q at offset %d", e.Expected, e.Got.Val, e.Offset)
}

// ParseSchema runs the lexer, filters trivia, and parses the non-trivia
// token stream into a Schema. It fails fast on the first grammatical
// violation with a *ParseError.
func ParseSchema(src string) (result schema.Schema, err error) {
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*ParseError)
			if !ok {
				panic(r)
			}
			err = pe
		}
	}()

	p := &parser{c: newCursor(src)}
	var items []schema.Item
	for !p.c.atEOF() {
		if p.is(token.SEMICOLON) {
			p.c.forth()
			continue
		}
		if p.is(token.CREATE) && (p.isNext(token.UNIQUE) || p.isNext(token.INDEX)) {
			items = append(items, p.createIndex())
		} else {
			items = append(items, p.createTable())
		}
	}
	return schema.Schema{Items: items}, nil
}

// positioned pairs a token with its source offset, used only to build
// ParseError messages; it never reaches the returned Schema.
type positioned struct {
	tok    token.Token
	offset int
}

// cursor is a one-token lookahead reader over the buffered, trivia-filtered
// token stream, with a synthetic EOF token past the end.
type cursor struct {
	toks      []positioned
	pos       int
	eofOffset int
}

func newCursor(src string) *cursor {
	l := NewLexer(src)
	var toks []positioned
	for {
		offset := l.Pos()
		tk, ok := l.Scan()
		if !ok {
			break
		}
		if token.IsNotTrivia(tk) {
			toks = append(toks, positioned{tk, offset})
		}
	}
	eof := len([]rune(src))
	return &cursor{toks: toks, eofOffset: eof}
}

var eofToken = token.Token{Kind: token.UNKNOWN, Val: ""}

func (c *cursor) at(i int) positioned {
	if i < len(c.toks) {
		return c.toks[i]
	}
	return positioned{eofToken, c.eofOffset}
}

func (c *cursor) item() positioned { return c.at(c.pos) }
func (c *cursor) next() positioned { return c.at(c.pos + 1) }
func (c *cursor) forth()           { c.pos++ }
func (c *cursor) atEOF() bool      { return c.pos >= len(c.toks) }

type parser struct {
	c *cursor
}

func (p *parser) fail(expected string) {
	got := p.c.item()
	panic(&ParseError{Expected: expected, Got: got.tok, Offset: got.offset})
}

func (p *parser) is(tk token.Token) bool     { return p.c.item().tok == tk }
func (p *parser) isNext(tk token.Token) bool { return p.c.next().tok == tk }

func (p *parser) expect(tk token.Token) {
	if !p.is(tk) {
		p.fail(fmt.Sprintf("%q", tk.Val))
	}
	p.c.forth()
}

// name consumes and returns any identifier-category token: a keyword,
// raw identifier, delimited identifier or single-quoted string can all
// stand in as a name in this grammar.
func (p *parser) name() string {
	it := p.c.item()
	if it.tok.Kind&token.ID == 0 {
		p.fail("an identifier")
	}
	p.c.forth()
	return it.tok.Val
}

func (p *parser) qualifiedName() schema.QualifiedName {
	names := []string{p.name()}
	for p.is(token.DOT) {
		p.c.forth()
		names = append(names, p.name())
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return schema.QualifiedName(names)
}

func (p *parser) parenNames() []string {
	p.expect(token.L_PAREN)
	names := []string{p.name()}
	for p.is(token.COMMA) {
		p.c.forth()
		names = append(names, p.name())
	}
	p.expect(token.R_PAREN)
	return names
}

func (p *parser) int_() int {
	it := p.c.item()
	if it.tok.Kind != token.INT {
		p.fail("an integer")
	}
	n, err := strconv.Atoi(it.tok.Val)
	if err != nil {
		p.fail("an integer")
	}
	p.c.forth()
	return n
}

// parenExpr captures every token strictly between an outermost matching
// pair of parentheses, consuming both. Nesting is tracked so inner
// parenthesized groups are preserved in the capture.
func (p *parser) parenExpr() []schema.Token {
	p.expect(token.L_PAREN)
	var toks []schema.Token
	depth := 0
	for {
		if p.c.atEOF() {
			p.fail(`")"`)
		}
		it := p.c.item()
		if it.tok == token.R_PAREN && depth == 0 {
			p.c.forth()
			return toks
		}
		if it.tok == token.L_PAREN {
			depth++
		} else if it.tok == token.R_PAREN {
			depth--
		}
		toks = append(toks, it.tok)
		p.c.forth()
	}
}

func (p *parser) tokensUntilSemicolon() []schema.Token {
	var toks []schema.Token
	for !p.is(token.SEMICOLON) && !p.c.atEOF() {
		toks = append(toks, p.c.item().tok)
		p.c.forth()
	}
	return toks
}

func (p *parser) optionalName() *string {
	if !p.is(token.CONSTRAINT) {
		return nil
	}
	p.c.forth()
	n := p.name()
	return &n
}

func (p *parser) onConflict() *schema.OnConflict {
	if !p.is(token.ON) {
		return nil
	}
	p.c.forth()
	p.expect(token.CONFLICT)
	it := p.c.item()
	var oc schema.OnConflict
	switch it.tok.Val {
	case "ABORT":
		oc = schema.OnConflictAbort
	case "FAIL":
		oc = schema.OnConflictFail
	case "IGNORE":
		oc = schema.OnConflictIgnore
	case "REPLACE":
		oc = schema.OnConflictReplace
	case "ROLLBACK":
		oc = schema.OnConflictRollback
	default:
		p.fail("a valid ON CONFLICT action")
	}
	p.c.forth()
	return &oc
}

func (p *parser) indexedEntry() schema.Indexed {
	col := p.name()
	var collation *string
	if p.is(token.COLLATE) {
		p.c.forth()
		v := p.name()
		collation = &v
	}
	var sorting *schema.Sorting
	switch {
	case p.is(token.ASC):
		s := schema.Asc
		sorting = &s
		p.c.forth()
	case p.is(token.DESC):
		s := schema.Desc
		sorting = &s
		p.c.forth()
	}
	return schema.Indexed{Column: col, Collation: collation, Sorting: sorting}
}

func (p *parser) indexedList() []schema.Indexed {
	p.expect(token.L_PAREN)
	out := []schema.Indexed{p.indexedEntry()}
	for p.is(token.COMMA) {
		p.c.forth()
		out = append(out, p.indexedEntry())
	}
	p.expect(token.R_PAREN)
	return out
}

func (p *parser) type_() schema.Type {
	var parts []string
	for p.c.item().tok.Kind&token.NON_KW_ID != 0 {
		parts = append(parts, strings.ToUpper(p.c.item().tok.Val))
		p.c.forth()
	}
	name := strings.Join(parts, " ")
	var params []int
	if name != "" && p.is(token.L_PAREN) {
		p.c.forth()
		params = append(params, p.int_())
		if p.is(token.COMMA) {
			p.c.forth()
			params = append(params, p.int_())
		}
		p.expect(token.R_PAREN)
	}
	return schema.Type{Name: name, Params: params}
}

// columnDef parses one column definition. It returns the Column itself
// (carrying only the constraint variants that stay column-scoped: NotNull,
// Default, Collation, Generated) plus the constraints promoted to table
// scope (Uniqueness, ForeignKey, Check), which the caller appends to the
// table's own constraint list.
func (p *parser) columnDef() (schema.Column, []schema.ColumnConstraint) {
	colName := p.name()
	colType := p.type_()

	var colConstraints []schema.ColumnConstraint
	var promoted []schema.ColumnConstraint

	for !p.is(token.COMMA) && !p.is(token.R_PAREN) {
		name := p.optionalName()
		switch {
		case p.is(token.NULL):
			p.c.forth()

		case p.is(token.NOT):
			p.c.forth()
			p.expect(token.NULL)
			oc := p.onConflict()
			colConstraints = append(colConstraints, schema.NotNull{Name: name, OnConflict: oc})

		case p.is(token.PRIMARY):
			p.c.forth()
			p.expect(token.KEY)
			var sorting *schema.Sorting
			switch {
			case p.is(token.ASC):
				s := schema.Asc
				sorting = &s
				p.c.forth()
			case p.is(token.DESC):
				s := schema.Desc
				sorting = &s
				p.c.forth()
			}
			oc := p.onConflict()
			autoincrement := false
			if p.is(token.AUTOINCREMENT) || p.is(token.AUTO_INCREMENT) {
				p.c.forth()
				autoincrement = true
			}
			promoted = append(promoted, schema.Uniqueness{
				Name:          name,
				Indexed:       []schema.Indexed{{Column: colName, Sorting: sorting}},
				IsPrimary:     true,
				Autoincrement: autoincrement,
				OnConflict:    oc,
			})

		case p.is(token.UNIQUE):
			p.c.forth()
			oc := p.onConflict()
			promoted = append(promoted, schema.Uniqueness{
				Name:       name,
				Indexed:    []schema.Indexed{{Column: colName}},
				OnConflict: oc,
			})

		case p.is(token.CHECK):
			p.c.forth()
			expr := p.parenExpr()
			promoted = append(promoted, schema.Check{Name: name, Expr: expr})

		case p.is(token.REFERENCES):
			fk := p.foreignKeyClause([]string{colName}, name)
			promoted = append(promoted, fk)

		case p.is(token.DEFAULT):
			p.c.forth()
			expr := p.defaultValue()
			colConstraints = append(colConstraints, schema.Default{Name: name, Expr: expr})

		case p.is(token.COLLATE):
			p.c.forth()
			v := p.name()
			colConstraints = append(colConstraints, schema.Collation{Name: name, Value: v})

		case p.is(token.GENERATED) || p.is(token.AS):
			colConstraints = append(colConstraints, p.generated(name))

		default:
			p.fail("a column constraint")
		}
	}

	return schema.Column{Name: colName, Type: colType, Constraints: colConstraints}, promoted
}

func (p *parser) generated(name *string) schema.Generated {
	if p.is(token.GENERATED) {
		p.c.forth()
		switch {
		case p.is(token.ALWAYS):
			p.c.forth()
		case p.is(token.BY) && p.isNext(token.DEFAULT):
			p.c.forth()
			p.c.forth()
		default:
			p.fail("ALWAYS or BY DEFAULT")
		}
		p.expect(token.AS)
		if p.is(token.IDENTITY) {
			p.c.forth()
		}
	} else {
		p.expect(token.AS)
	}
	expr := p.parenExpr()
	var kind *schema.GeneratedKind
	if p.c.item().tok.Kind&token.ID != 0 {
		switch strings.ToUpper(p.c.item().tok.Val) {
		case "STORED":
			k := schema.GeneratedStored
			kind = &k
			p.c.forth()
		case "VIRTUAL":
			k := schema.GeneratedVirtual
			kind = &k
			p.c.forth()
		}
	}
	return schema.Generated{Name: name, Expr: expr, Kind: kind}
}

// defaultValue captures a DEFAULT's expression in one of the four shapes
// the grammar accepts: a single literal, a signed integer, a function
// call, or a parenthesized token group.
func (p *parser) defaultValue() []schema.Token {
	it := p.c.item()
	switch {
	case it.tok.Kind&token.LITERAL != 0:
		p.c.forth()
		return []schema.Token{it.tok}

	case it.tok == token.NUM_PLUS || it.tok == token.NUM_MINUS:
		p.c.forth()
		num := p.c.item()
		if num.tok.Kind != token.INT {
			p.fail("an integer")
		}
		p.c.forth()
		return []schema.Token{it.tok, num.tok}

	case it.tok.Kind&token.ID != 0 && p.isNext(token.L_PAREN):
		p.c.forth()
		args := p.parenExpr()
		toks := append([]schema.Token{it.tok, token.L_PAREN}, args...)
		return append(toks, token.R_PAREN)

	case p.is(token.L_PAREN):
		return p.parenExpr()

	default:
		p.fail("a supported DEFAULT value")
		return nil
	}
}

// tableConstraint parses one table-level constraint: PRIMARY KEY, UNIQUE,
// FOREIGN KEY or CHECK, each optionally named via CONSTRAINT.
func (p *parser) tableConstraint() schema.ColumnConstraint {
	name := p.optionalName()
	switch {
	case p.is(token.PRIMARY):
		p.c.forth()
		p.expect(token.KEY)
		indexed := p.indexedList()
		autoincrement := false
		if p.is(token.AUTOINCREMENT) || p.is(token.AUTO_INCREMENT) {
			p.c.forth()
			autoincrement = true
		}
		oc := p.onConflict()
		return schema.Uniqueness{Name: name, Indexed: indexed, IsPrimary: true, Autoincrement: autoincrement, OnConflict: oc, IsTableConstraint: true}

	case p.is(token.UNIQUE):
		p.c.forth()
		indexed := p.indexedList()
		oc := p.onConflict()
		return schema.Uniqueness{Name: name, Indexed: indexed, OnConflict: oc, IsTableConstraint: true}

	case p.is(token.FOREIGN):
		p.c.forth()
		p.expect(token.KEY)
		cols := p.parenNames()
		fk := p.foreignKeyClause(cols, name)
		fk.IsTableConstraint = true
		return fk

	case p.is(token.CHECK):
		p.c.forth()
		expr := p.parenExpr()
		return schema.Check{Name: name, Expr: expr, IsTableConstraint: true}

	default:
		p.fail("a table constraint")
		return nil
	}
}

func (p *parser) foreignKeyClause(columns []string, name *string) schema.ForeignKey {
	p.expect(token.REFERENCES)
	foreignTable := p.qualifiedName()

	var referred []string
	if p.is(token.L_PAREN) {
		referred = p.parenNames()
	}

	var onDelete, onUpdate *schema.ForeignKeyAction
	var match *schema.MatchType
	for p.is(token.ON) || p.is(token.MATCH) {
		if p.is(token.ON) {
			p.c.forth()
			switch {
			case p.is(token.DELETE):
				p.c.forth()
				a := p.onUpdateDeleteAction()
				onDelete = &a
			case p.is(token.UPDATE):
				p.c.forth()
				a := p.onUpdateDeleteAction()
				onUpdate = &a
			default:
				p.fail("DELETE or UPDATE")
			}
		} else {
			p.c.forth()
			it := p.c.item()
			var m schema.MatchType
			switch it.tok.Val {
			case "FULL":
				m = schema.MatchFull
			case "PARTIAL":
				m = schema.MatchPartial
			case "SIMPLE":
				m = schema.MatchSimple
			default:
				p.fail("FULL, PARTIAL or SIMPLE")
			}
			p.c.forth()
			match = &m
		}
	}

	enforcement := p.enforcement()

	return schema.ForeignKey{
		Name:            name,
		Columns:         columns,
		ForeignTable:    foreignTable,
		ReferredColumns: referred,
		OnDelete:        onDelete,
		OnUpdate:        onUpdate,
		Match:           match,
		Enforcement:     enforcement,
	}
}

func (p *parser) onUpdateDeleteAction() schema.ForeignKeyAction {
	switch {
	case p.is(token.CASCADE):
		p.c.forth()
		return schema.ActionCascade
	case p.is(token.NO) && p.isNext(token.ACTION):
		p.c.forth()
		p.c.forth()
		return schema.ActionNoAction
	case p.is(token.SET) && p.isNext(token.NULL):
		p.c.forth()
		p.c.forth()
		return schema.ActionSetNull
	case p.is(token.SET) && p.isNext(token.DEFAULT):
		p.c.forth()
		p.c.forth()
		return schema.ActionSetDefault
	case p.is(token.RESTRICT):
		p.c.forth()
		return schema.ActionRestrict
	default:
		p.fail("a valid ON DELETE/UPDATE action")
		return ""
	}
}

// enforcement parses the optional [NOT] DEFERRABLE [INITIALLY ...] tail of
// a REFERENCES clause. A leading INITIALLY ... before DEFERRABLE is also
// accepted. The result is nil unless a deferrability keyword appeared.
func (p *parser) enforcement() *schema.Enforcement {
	var initially *schema.Deferrability
	if p.is(token.INITIALLY) {
		p.c.forth()
		d := p.deferredOrImmediate()
		initially = &d
	}

	notDeferrable := false
	if p.is(token.NOT) && p.isNext(token.DEFERRABLE) {
		p.c.forth()
		notDeferrable = true
	}

	sawDeferrable := false
	if p.is(token.DEFERRABLE) {
		p.c.forth()
		sawDeferrable = true
		if p.is(token.INITIALLY) {
			p.c.forth()
			d := p.deferredOrImmediate()
			initially = &d
		}
	} else if initially != nil {
		p.fail("DEFERRABLE")
	}

	if !sawDeferrable {
		return nil
	}
	return &schema.Enforcement{Initially: initially, NotDeferrable: notDeferrable}
}

func (p *parser) deferredOrImmediate() schema.Deferrability {
	switch {
	case p.is(token.DEFERRED):
		p.c.forth()
		return schema.InitiallyDeferred
	case p.is(token.IMMEDIATE):
		p.c.forth()
		return schema.InitiallyImmediate
	default:
		p.fail("DEFERRED or IMMEDIATE")
		return ""
	}
}

func (p *parser) tableOptions() schema.TableOptions {
	var opts schema.TableOptions
	for {
		switch {
		case p.is(token.STRICT):
			p.c.forth()
			opts.Strict = true
		case p.is(token.WITHOUT):
			p.c.forth()
			p.expect(token.ROWID)
			opts.WithoutRowID = true
		}
		if p.is(token.COMMA) {
			p.c.forth()
		} else {
			break
		}
	}
	return opts
}

func (p *parser) createTable() schema.Table {
	p.expect(token.CREATE)

	orReplace := false
	if p.is(token.OR) {
		p.c.forth()
		p.expect(token.REPLACE)
		orReplace = true
	}

	temporary := false
	if p.is(token.TEMPORARY) || p.is(token.TEMP) {
		p.c.forth()
		temporary = true
	}

	p.expect(token.TABLE)

	ifNotExists := false
	if p.is(token.IF) {
		p.c.forth()
		p.expect(token.NOT)
		p.expect(token.EXISTS)
		ifNotExists = true
	}

	name := p.qualifiedName()

	if p.is(token.AS) || p.is(token.LIKE) {
		p.fail("a supported CREATE TABLE body")
	}

	p.expect(token.L_PAREN)
	var columns []schema.Column
	var constraints []schema.ColumnConstraint
	if !p.is(token.R_PAREN) {
		col, promoted := p.columnDef()
		columns = append(columns, col)
		constraints = append(constraints, promoted...)

		for p.is(token.COMMA) && p.c.next().tok.Kind&token.KEYWORD == 0 {
			p.c.forth()
			col, promoted := p.columnDef()
			columns = append(columns, col)
			constraints = append(constraints, promoted...)
		}
		for p.is(token.COMMA) {
			p.c.forth()
			constraints = append(constraints, p.tableConstraint())
		}
	}
	p.expect(token.R_PAREN)

	options := p.tableOptions()

	if p.is(token.AS) {
		for !p.is(token.SEMICOLON) && !p.c.atEOF() {
			p.c.forth()
		}
	}
	p.expect(token.SEMICOLON)

	return schema.Table{
		Name:        name,
		Columns:     columns,
		Constraints: constraints,
		Options:     options,
		IfNotExists: ifNotExists,
		OrReplace:   orReplace,
		Temporary:   temporary,
	}
}

func (p *parser) createIndex() schema.Index {
	p.expect(token.CREATE)
	unique := false
	if p.is(token.UNIQUE) {
		p.c.forth()
		unique = true
	}
	p.expect(token.INDEX)

	ifNotExists := false
	if p.is(token.IF) {
		p.c.forth()
		p.expect(token.NOT)
		p.expect(token.EXISTS)
		ifNotExists = true
	}

	name := p.qualifiedName()
	p.expect(token.ON)
	table := p.name()
	indexed := p.indexedList()

	var where []schema.Token
	if p.is(token.WHERE) {
		p.c.forth()
		where = p.tokensUntilSemicolon()
	}
	p.expect(token.SEMICOLON)

	return schema.Index{
		Name:        name,
		Table:       table,
		Indexed:     indexed,
		Where:       where,
		IfNotExists: ifNotExists,
		Unique:      unique,
	}
}
