package schema

import (
	"strings"
	"testing"

	"github.com/sqldef-tools/sqliteddl/token"
)

func strPtr(s string) *string { return &s }

func TestGenerateSimpleTable(t *testing.T) {
	name := "pk"
	asc := Asc
	tbl := Table{
		Name: QualifiedName{"users"},
		Columns: []Column{
			{Name: "id", Type: Type{Name: "integer"}},
			{Name: "name", Type: Type{Name: "text"}, Constraints: []ColumnConstraint{NotNull{}}},
		},
		Constraints: []ColumnConstraint{
			Uniqueness{Name: &name, Indexed: []Indexed{{Column: "id", Sorting: &asc}}, IsPrimary: true, IsTableConstraint: true},
		},
	}
	out := Generate(Schema{Items: []Item{tbl}})

	if !strings.Contains(out, `CREATE TABLE "users"(`) {
		t.Errorf("missing CREATE TABLE header: %q", out)
	}
	if !strings.Contains(out, `"id" integer`) {
		t.Errorf("missing id column: %q", out)
	}
	if !strings.Contains(out, `CONSTRAINT "pk" PRIMARY KEY ("id" ASC)`) {
		t.Errorf("missing named primary key: %q", out)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), ");") {
		t.Errorf("expected table to end with );, got %q", out)
	}
}

func TestGenerateDefaultAlwaysParenthesized(t *testing.T) {
	col := Column{
		Name: "n",
		Type: Type{Name: "integer"},
		Constraints: []ColumnConstraint{
			Default{Expr: []Token{{Kind: token.INT, Val: "1"}, {Kind: token.NUM_OP, Val: "+"}, {Kind: token.INT, Val: "2"}}},
		},
	}
	out := generateColumnDef(col, nil)
	if !strings.Contains(out, "DEFAULT (1 + 2)") {
		t.Errorf("expected parenthesized default, got %q", out)
	}
}

func TestGenerateForeignKey(t *testing.T) {
	onDelete := ActionCascade
	fk := ForeignKey{
		Columns:      []string{"a_id"},
		ForeignTable: QualifiedName{"a"},
		OnDelete:     &onDelete,
	}
	out := generateConstraint(fk)
	want := `FOREIGN KEY ("a_id") REFERENCES "a" ON DELETE CASCADE`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestGenerateIndex(t *testing.T) {
	idx := Index{
		Name:    QualifiedName{"idx_a"},
		Table:   "a",
		Indexed: []Indexed{{Column: "x"}},
		Unique:  true,
	}
	out := generateIndex(idx)
	want := `CREATE UNIQUE INDEX "idx_a" ON "a"("x");` + "\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestGenerateQualifiedNameOrdering(t *testing.T) {
	q := QualifiedName{"table", "schema", "db"}
	out := generateQualifiedName(q)
	want := `"db"."schema"."table"`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestGenerateType(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Type{}, ""},
		{Type{Name: "TEXT"}, "text"},
		{Type{Name: "VARCHAR", Params: []int{10}}, "varchar(10)"},
		{Type{Name: "DECIMAL", Params: []int{10, 2}}, "decimal(10, 2)"},
	}
	for _, tc := range tests {
		if got := generateType(tc.typ); got != tc.want {
			t.Errorf("generateType(%+v) = %q, want %q", tc.typ, got, tc.want)
		}
	}
}
