package parser

import (
	"os"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/sqldef-tools/sqliteddl/schema"
)

// fixtureCase is the shape of one entry in testdata/fixtures.yml: a DDL
// snippet plus the shallow facts worth asserting about its parse, following
// the teacher's own tests*.yml convention of loading named cases from YAML
// rather than inlining every example as Go source.
type fixtureCase struct {
	SQL         string `yaml:"sql"`
	TableName   string `yaml:"tableName"`
	ColumnCount int    `yaml:"columnCount"`
}

func readFixtures(t *testing.T) map[string]fixtureCase {
	t.Helper()
	buf, err := os.ReadFile("testdata/fixtures.yml")
	if err != nil {
		t.Fatalf("reading fixtures: %v", err)
	}
	var cases map[string]fixtureCase
	if err := yaml.Unmarshal(buf, &cases); err != nil {
		t.Fatalf("parsing fixtures: %v", err)
	}
	return cases
}

func TestFixtures(t *testing.T) {
	for name, tc := range readFixtures(t) {
		t.Run(name, func(t *testing.T) {
			s, err := ParseSchema(tc.SQL)
			if err != nil {
				t.Fatalf("ParseSchema(%q): %v", tc.SQL, err)
			}
			tables := s.Tables()
			if len(tables) != 1 {
				t.Fatalf("expected exactly one table, got %d", len(tables))
			}
			table := tables[0]
			if table.Name[0] != tc.TableName {
				t.Errorf("table name = %q, want %q", table.Name[0], tc.TableName)
			}
			if len(table.Columns) != tc.ColumnCount {
				t.Errorf("column count = %d, want %d", len(table.Columns), tc.ColumnCount)
			}

			generated := schema.Generate(s)
			if _, err := ParseSchema(generated); err != nil {
				t.Errorf("regenerated SQL failed to reparse: %v\n%s", err, generated)
			}
		})
	}
}
