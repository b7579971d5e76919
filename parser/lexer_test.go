package parser

import (
	"testing"

	"github.com/sqldef-tools/sqliteddl/token"
)

func TestTokensBasic(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Token
	}{
		{
			name: "two keywords",
			src:  "CREATE TABLE",
			want: []token.Token{
				token.CREATE,
				{Kind: token.WHITESPACE, Val: " "},
				token.TABLE,
			},
		},
		{
			name: "quoted identifier",
			src:  `"my table"`,
			want: []token.Token{
				{Kind: token.STD_DELIMITED_ID, Val: "my table"},
			},
		},
		{
			name: "single quoted string",
			src:  `'it''s'`,
			want: []token.Token{
				{Kind: token.STD_STR, Val: "it's"},
			},
		},
		{
			name: "integer and float",
			src:  "42 3.14",
			want: []token.Token{
				{Kind: token.INT, Val: "42"},
				{Kind: token.WHITESPACE, Val: " "},
				{Kind: token.FLOAT, Val: "3.14"},
			},
		},
		{
			name: "hex literal",
			src:  "0x1F",
			want: []token.Token{
				{Kind: token.HEX, Val: "1F"},
			},
		},
		{
			name: "blob literal",
			src:  "x'DEAD'",
			want: []token.Token{
				{Kind: token.BLOB, Val: "DEAD"},
			},
		},
		{
			name: "line comment",
			src:  "-- hi\n",
			want: []token.Token{
				{Kind: token.SINGLE_LINE_COMMENT, Val: " hi"},
			},
		},
		{
			name: "block comment",
			src:  "/* hi */",
			want: []token.Token{
				{Kind: token.MULTI_LINE_COMMENT, Val: " hi "},
			},
		},
		{
			name: "bracket identifier",
			src:  "[my col]",
			want: []token.Token{
				{Kind: token.NON_STD_DELIMITED_ID, Val: "my col"},
			},
		},
		{
			name: "two-char operators",
			src:  "<= >= <> ::",
			want: []token.Token{
				token.CMP_LEQ,
				{Kind: token.WHITESPACE, Val: " "},
				token.CMP_GEQ,
				{Kind: token.WHITESPACE, Val: " "},
				token.CMP_NEQ,
				{Kind: token.WHITESPACE, Val: " "},
				token.DOUBLE_COLON,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Tokens(tc.src)
			if len(got) != len(tc.want) {
				t.Fatalf("Tokens(%q) = %v, want %v", tc.src, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("token %d: got %v, want %v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestLexerNeverFails(t *testing.T) {
	inputs := []string{
		"@",
		"`unterminated",
		"'unterminated",
		"/* unterminated",
		"x'zz'",
		"0x",
	}
	for _, src := range inputs {
		toks := Tokens(src)
		for _, tk := range toks {
			_ = tk // lexing must complete without panicking for any input
		}
	}
}

func TestLexerTriviaFilter(t *testing.T) {
	src := "CREATE  -- comment\n TABLE"
	var nonTrivia []token.Token
	for _, tk := range Tokens(src) {
		if token.IsNotTrivia(tk) {
			nonTrivia = append(nonTrivia, tk)
		}
	}
	want := []token.Token{token.CREATE, token.TABLE}
	if len(nonTrivia) != len(want) {
		t.Fatalf("non-trivia tokens = %v, want %v", nonTrivia, want)
	}
	for i := range want {
		if nonTrivia[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, nonTrivia[i], want[i])
		}
	}
}

func TestLexerPosAdvancesWithTokens(t *testing.T) {
	l := NewLexer("AB CD")
	var offsets []int
	for {
		offsets = append(offsets, l.Pos())
		_, ok := l.Scan()
		if !ok {
			break
		}
	}
	want := []int{0, 2, 3, 5}
	if len(offsets) != len(want) {
		t.Fatalf("offsets = %v, want %v", offsets, want)
	}
	for i := range want {
		if offsets[i] != want[i] {
			t.Errorf("offset %d: got %d, want %d", i, offsets[i], want[i])
		}
	}
}
