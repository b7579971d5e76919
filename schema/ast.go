package schema

import "github.com/sqldef-tools/sqliteddl/token"

// Token is re-exported so callers building schema values by hand (as the
// parser itself does, and as tests do) never need to import the token
// package directly just to populate an opaque expression.
type Token = token.Token

// QualifiedName is stored most-specific-first: database.schema.table is
// ("table", "schema", "database"). name[0] is always the local name.
type QualifiedName []string

// Reversed returns the components in database.schema.table order, the
// order they're joined in when rendered.
func (q QualifiedName) Reversed() []string {
	out := make([]string, len(q))
	for i, c := range q {
		out[len(q)-1-i] = c
	}
	return out
}

// Type is a column type name plus 0, 1 or 2 numeric parameters, e.g.
// DECIMAL(10, 2).
type Type struct {
	Name   string
	Params []int
}

type Sorting string

const (
	Asc  Sorting = "ASC"
	Desc Sorting = "DESC"
)

// Indexed is one entry of a UNIQUE / PRIMARY KEY / CREATE INDEX column list.
type Indexed struct {
	Column    string
	Collation *string
	Sorting   *Sorting
}

type OnConflict string

const (
	OnConflictAbort    OnConflict = "ABORT"
	OnConflictFail     OnConflict = "FAIL"
	OnConflictIgnore   OnConflict = "IGNORE"
	OnConflictReplace  OnConflict = "REPLACE"
	OnConflictRollback OnConflict = "ROLLBACK"
)

type ForeignKeyAction string

const (
	ActionCascade    ForeignKeyAction = "CASCADE"
	ActionNoAction   ForeignKeyAction = "NO ACTION"
	ActionRestrict   ForeignKeyAction = "RESTRICT"
	ActionSetDefault ForeignKeyAction = "SET DEFAULT"
	ActionSetNull    ForeignKeyAction = "SET NULL"
)

type MatchType string

const (
	MatchFull    MatchType = "FULL"
	MatchPartial MatchType = "PARTIAL"
	MatchSimple  MatchType = "SIMPLE"
)

type Deferrability string

const (
	InitiallyDeferred  Deferrability = "DEFERRED"
	InitiallyImmediate Deferrability = "IMMEDIATE"
)

// Enforcement is the optional [NOT] DEFERRABLE [INITIALLY ...] tail of a
// REFERENCES clause. It is only present on a ForeignKey when at least one
// deferrability keyword appeared in the source.
type Enforcement struct {
	Initially     *Deferrability
	NotDeferrable bool
}

type GeneratedKind string

const (
	GeneratedStored  GeneratedKind = "STORED"
	GeneratedVirtual GeneratedKind = "VIRTUAL"
)

// ColumnConstraint is the tagged-union marker shared by every column and
// table constraint variant. Uniqueness, ForeignKey and Check double as
// table constraints (their IsTableConstraint field says which); NotNull,
// Default, Collation and Generated only ever appear at column scope.
type ColumnConstraint interface {
	isColumnConstraint()
}

// Uniqueness models both PRIMARY KEY and UNIQUE: the two differ only in
// IsPrimary. Indexed is always non-empty.
type Uniqueness struct {
	Name              *string
	Indexed           []Indexed
	IsPrimary         bool
	Autoincrement     bool
	OnConflict        *OnConflict
	IsTableConstraint bool
}

func (Uniqueness) isColumnConstraint() {}

// ForeignKey models a REFERENCES clause, whether attached to a single
// column or declared as a table-level FOREIGN KEY (...).
type ForeignKey struct {
	Name              *string
	Columns           []string
	ForeignTable      QualifiedName
	ReferredColumns   []string // nil means "defaults to the foreign table's primary key"
	OnDelete          *ForeignKeyAction
	OnUpdate          *ForeignKeyAction
	Match             *MatchType
	Enforcement       *Enforcement
	IsTableConstraint bool
}

func (ForeignKey) isColumnConstraint() {}

// Check is a CHECK (expr) constraint; Expr is captured verbatim, excluding
// the enclosing parentheses.
type Check struct {
	Name              *string
	Expr              []Token
	IsTableConstraint bool
}

func (Check) isColumnConstraint() {}

type NotNull struct {
	Name       *string
	OnConflict *OnConflict
}

func (NotNull) isColumnConstraint() {}

// Default captures a column's DEFAULT value as opaque tokens: a single
// literal, a signed integer, a parenthesized group, or a function call.
type Default struct {
	Name *string
	Expr []Token
}

func (Default) isColumnConstraint() {}

// Collation is a column-level COLLATE name constraint. It is distinct from
// Indexed.Collation, which annotates one entry of an index/uniqueness list.
type Collation struct {
	Name  *string
	Value string
}

func (Collation) isColumnConstraint() {}

// Generated is a GENERATED ... AS (expr) [STORED|VIRTUAL] column.
type Generated struct {
	Name *string
	Expr []Token
	Kind *GeneratedKind
}

func (Generated) isColumnConstraint() {}

type Column struct {
	Name        string
	Type        Type
	Constraints []ColumnConstraint
}

// NotNull returns the column's NOT NULL constraint, or nil if it has none.
func (c Column) NotNull() *NotNull {
	for _, cons := range c.Constraints {
		if nn, ok := cons.(NotNull); ok {
			return &nn
		}
	}
	return nil
}

// Default returns the column's DEFAULT constraint, or nil.
func (c Column) Default() *Default {
	for _, cons := range c.Constraints {
		if d, ok := cons.(Default); ok {
			return &d
		}
	}
	return nil
}

// Collation returns the column's COLLATE constraint, or nil.
func (c Column) Collation() *Collation {
	for _, cons := range c.Constraints {
		if co, ok := cons.(Collation); ok {
			return &co
		}
	}
	return nil
}

// Generated returns the column's GENERATED constraint, or nil.
func (c Column) Generated() *Generated {
	for _, cons := range c.Constraints {
		if g, ok := cons.(Generated); ok {
			return &g
		}
	}
	return nil
}

type TableOptions struct {
	Strict       bool
	WithoutRowID bool
}

type Table struct {
	Name        QualifiedName
	Columns     []Column
	Constraints []ColumnConstraint // table scope only: Uniqueness, ForeignKey or Check
	Options     TableOptions
	IfNotExists bool
	OrReplace   bool
	Temporary   bool
}

func (Table) isSchemaItem() {}

// PrimaryKey returns the table's primary-key Uniqueness, wherever it was
// declared (column-level or table-level), or nil if the table has none.
func (t Table) PrimaryKey() *Uniqueness {
	for _, cons := range t.Constraints {
		if u, ok := cons.(Uniqueness); ok && u.IsPrimary {
			return &u
		}
	}
	return nil
}

// Uniqueness returns every Uniqueness constraint (PRIMARY KEY and UNIQUE
// alike) regardless of scope.
func (t Table) Uniqueness() []Uniqueness {
	var out []Uniqueness
	for _, cons := range t.Constraints {
		if u, ok := cons.(Uniqueness); ok {
			out = append(out, u)
		}
	}
	return out
}

// ForeignKeys returns every ForeignKey constraint regardless of scope.
func (t Table) ForeignKeys() []ForeignKey {
	var out []ForeignKey
	for _, cons := range t.Constraints {
		if fk, ok := cons.(ForeignKey); ok {
			out = append(out, fk)
		}
	}
	return out
}

// Checks returns every CHECK constraint regardless of scope.
func (t Table) Checks() []Check {
	var out []Check
	for _, cons := range t.Constraints {
		if c, ok := cons.(Check); ok {
			out = append(out, c)
		}
	}
	return out
}

// AllConstraints flattens the table-level constraint list with every
// column's own constraints, in column order.
func (t Table) AllConstraints() []ColumnConstraint {
	out := append([]ColumnConstraint{}, t.Constraints...)
	for _, col := range t.Columns {
		out = append(out, col.Constraints...)
	}
	return out
}

// GeneratedColumns returns the columns carrying a GENERATED constraint.
func (t Table) GeneratedColumns() []Column {
	var out []Column
	for _, col := range t.Columns {
		if col.Generated() != nil {
			out = append(out, col)
		}
	}
	return out
}

// NonGeneratedColumns returns the columns with no GENERATED constraint.
func (t Table) NonGeneratedColumns() []Column {
	var out []Column
	for _, col := range t.Columns {
		if col.Generated() == nil {
			out = append(out, col)
		}
	}
	return out
}

// Index is a CREATE INDEX statement.
type Index struct {
	Name        QualifiedName
	Table       string
	Indexed     []Indexed
	Where       []Token
	IfNotExists bool
	Unique      bool
}

func (Index) isSchemaItem() {}

// Item is a Table or an Index, the two things a Schema's items can be.
type Item interface {
	isSchemaItem()
}

// Schema is an ordered sequence of Table and Index items, in source order.
type Schema struct {
	Items []Item
}

// Tables returns the Table items of the schema, in order.
func (s Schema) Tables() []Table {
	var out []Table
	for _, it := range s.Items {
		if t, ok := it.(Table); ok {
			out = append(out, t)
		}
	}
	return out
}

// Indexes returns the Index items of the schema, in order.
func (s Schema) Indexes() []Index {
	var out []Index
	for _, it := range s.Items {
		if idx, ok := it.(Index); ok {
			out = append(out, idx)
		}
	}
	return out
}

// UniqueIndexes returns the Index items declared UNIQUE, in order.
func (s Schema) UniqueIndexes() []Index {
	var out []Index
	for _, idx := range s.Indexes() {
		if idx.Unique {
			out = append(out, idx)
		}
	}
	return out
}
