package schema

import (
	"fmt"
	"iter"
)

// Symbols returns a table lookup keyed by unqualified (first-component)
// table name. Duplicate names overwrite earlier bindings: last wins.
func Symbols(s Schema) map[string]Table {
	out := make(map[string]Table)
	for _, t := range s.Tables() {
		out[t.Name[0]] = t
	}
	return out
}

// ReferredColumns returns fk's referred columns, defaulting to the foreign
// table's primary key when fk.ReferredColumns is absent. The foreign table
// and its primary key must exist in symbols; their absence is a programming
// error (an ill-formed schema was handed in), not a runtime condition to
// recover from, so it panics rather than returning an error.
func ReferredColumns(fk ForeignKey, symbols map[string]Table) []string {
	if fk.ReferredColumns != nil {
		return fk.ReferredColumns
	}
	table, ok := symbols[fk.ForeignTable[0]]
	if !ok {
		panic(fmt.Sprintf("schema: foreign table %q not in symbols", fk.ForeignTable[0]))
	}
	pk := table.PrimaryKey()
	if pk == nil {
		panic(fmt.Sprintf("schema: foreign table %q has no primary key", fk.ForeignTable[0]))
	}
	cols := make([]string, len(pk.Indexed))
	for i, idx := range pk.Indexed {
		cols[i] = idx.Column
	}
	return cols
}

// ResolveForeignKey walks the foreign-key chain starting at fk's reference
// for col: while the referenced table declares a foreign key covering the
// referred column, it yields that ForeignKey and continues from it; once
// no such foreign key exists, it yields the terminal column name (a
// string) and stops. The sequence is lazy and single-pass, like the lexer's.
//
// Preconditions (programming errors, not input errors, if violated): col
// must be one of fk.Columns; fk's foreign table must be in symbols; the
// arity of fk.Columns and ReferredColumns(fk, symbols) must match.
func ResolveForeignKey(fk ForeignKey, col string, symbols map[string]Table) iter.Seq[any] {
	return func(yield func(any) bool) {
		resolveChain(fk, col, symbols, yield)
	}
}

func resolveChain(fk ForeignKey, col string, symbols map[string]Table, yield func(any) bool) bool {
	idx := indexOfString(fk.Columns, col)
	if idx < 0 {
		panic(fmt.Sprintf("schema: column %q is not among fk.Columns", col))
	}
	referred := ReferredColumns(fk, symbols)
	if len(referred) != len(fk.Columns) {
		panic("schema: referred column arity does not match fk.Columns arity")
	}
	fCol := referred[idx]

	table, ok := symbols[fk.ForeignTable[0]]
	if !ok {
		panic(fmt.Sprintf("schema: foreign table %q not in symbols", fk.ForeignTable[0]))
	}

	for _, next := range table.ForeignKeys() {
		if indexOfString(next.Columns, fCol) >= 0 {
			if !yield(next) {
				return false
			}
			return resolveChain(next, fCol, symbols, yield)
		}
	}
	yield(fCol)
	return false
}

func indexOfString(haystack []string, needle string) int {
	for i, s := range haystack {
		if s == needle {
			return i
		}
	}
	return -1
}
