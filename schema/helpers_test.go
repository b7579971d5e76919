package schema

import (
	"testing"
)

func table(name string, pk []string, fks ...ForeignKey) Table {
	var constraints []ColumnConstraint
	if len(pk) > 0 {
		indexed := make([]Indexed, len(pk))
		for i, c := range pk {
			indexed[i] = Indexed{Column: c}
		}
		constraints = append(constraints, Uniqueness{Indexed: indexed, IsPrimary: true, IsTableConstraint: true})
	}
	for _, fk := range fks {
		constraints = append(constraints, fk)
	}
	return Table{Name: QualifiedName{name}, Constraints: constraints}
}

func TestSymbolsLastWinsOnDuplicateNames(t *testing.T) {
	first := table("t", []string{"id"})
	second := Table{Name: QualifiedName{"t"}}
	s := Schema{Items: []Item{first, second}}

	symbols := Symbols(s)
	got, ok := symbols["t"]
	if !ok {
		t.Fatal("expected table t in symbols")
	}
	if got.PrimaryKey() != nil {
		t.Error("expected the later (no-PK) definition of t to win")
	}
}

func TestReferredColumnsExplicit(t *testing.T) {
	fk := ForeignKey{ForeignTable: QualifiedName{"a"}, ReferredColumns: []string{"x"}}
	cols := ReferredColumns(fk, map[string]Table{"a": table("a", []string{"id"})})
	if len(cols) != 1 || cols[0] != "x" {
		t.Errorf("expected explicit referred columns to win, got %v", cols)
	}
}

func TestReferredColumnsDefaultsToPrimaryKey(t *testing.T) {
	fk := ForeignKey{ForeignTable: QualifiedName{"a"}}
	cols := ReferredColumns(fk, map[string]Table{"a": table("a", []string{"id"})})
	if len(cols) != 1 || cols[0] != "id" {
		t.Errorf("expected fallback to primary key, got %v", cols)
	}
}

func TestReferredColumnsPanicsWithoutPrimaryKey(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for a foreign table with no primary key")
		}
	}()
	fk := ForeignKey{ForeignTable: QualifiedName{"a"}}
	ReferredColumns(fk, map[string]Table{"a": table("a", nil)})
}

// buildChain wires a -> b -> c where c's foreign key targets b's own
// foreign-key column (not b's primary key), so resolving it one hop further
// must follow through to a's primary key.
func buildChain() map[string]Table {
	a := table("a", []string{"id"})
	bToA := ForeignKey{Columns: []string{"a_id"}, ForeignTable: QualifiedName{"a"}}
	b := table("b", []string{"id"}, bToA)
	cToB := ForeignKey{Columns: []string{"ref_col"}, ForeignTable: QualifiedName{"b"}, ReferredColumns: []string{"a_id"}}
	c := table("c", []string{"id"}, cToB)
	return map[string]Table{"a": a, "b": b, "c": c}
}

func TestResolveForeignKeyChain(t *testing.T) {
	symbols := buildChain()
	cToB := symbols["c"].ForeignKeys()[0]

	var chain []any
	for v := range ResolveForeignKey(cToB, "ref_col", symbols) {
		chain = append(chain, v)
	}

	if len(chain) != 2 {
		t.Fatalf("expected a 2-element chain (the b->a fk, then the terminal column), got %d: %v", len(chain), chain)
	}
	if fk, ok := chain[0].(ForeignKey); !ok || fk.ForeignTable[0] != "a" {
		t.Errorf("expected first link to be the foreign key into a, got %v", chain[0])
	}
	if col, ok := chain[1].(string); !ok || col != "id" {
		t.Errorf("expected the chain to terminate at a.id, got %v", chain[1])
	}
}

func TestResolveForeignKeyStopsEarlyWhenNotConsumed(t *testing.T) {
	symbols := buildChain()
	cToB := symbols["c"].ForeignKeys()[0]

	count := 0
	for range ResolveForeignKey(cToB, "ref_col", symbols) {
		count++
		break
	}
	if count != 1 {
		t.Fatalf("expected exactly one yielded value before the consumer stopped, got %d", count)
	}
}
