package token

import "testing"

func TestInternedLookupIsCaseInsensitive(t *testing.T) {
	cases := []string{"select", "Select", "SELECT"}
	for _, c := range cases {
		tk, ok := LookupKeyword(c)
		if !ok {
			t.Fatalf("LookupKeyword(%q): not found", c)
		}
		if tk != SELECT {
			t.Fatalf("LookupKeyword(%q) = %v, want %v", c, tk, SELECT)
		}
	}
}

func TestInternedIdentity(t *testing.T) {
	a, ok := LookupKeyword("CREATE")
	if !ok {
		t.Fatal("CREATE not found")
	}
	b, ok := LookupKeyword("create")
	if !ok {
		t.Fatal("create not found")
	}
	if a != b {
		t.Fatalf("expected identical interned tokens, got %v and %v", a, b)
	}
	if a != CREATE {
		t.Fatalf("expected %v, got %v", CREATE, a)
	}
}

func TestIsNotTrivia(t *testing.T) {
	if IsNotTrivia(Token{Kind: WHITESPACE, Val: " "}) {
		t.Error("whitespace should be trivia")
	}
	if IsNotTrivia(Token{Kind: SINGLE_LINE_COMMENT, Val: "x"}) {
		t.Error("a comment should be trivia")
	}
	if !IsNotTrivia(CREATE) {
		t.Error("CREATE should not be trivia")
	}
}

func TestLike(t *testing.T) {
	a := Token{Kind: RAW_ID, Val: "foo"}
	b := Token{Kind: RAW_ID, Val: "foo"}
	if !Like(a, b) {
		t.Error("two distinct RAW_ID tokens with equal text should be Like")
	}
	if Like(a, Token{Kind: RAW_ID, Val: "bar"}) {
		t.Error("tokens with different text should not be Like")
	}
}

func TestRowidStrictIdentityAreNotKeywords(t *testing.T) {
	for _, tk := range []Token{ROWID, STRICT, IDENTITY} {
		if tk.Kind&KEYWORD != 0 {
			t.Errorf("%v should not carry the KEYWORD bit", tk)
		}
	}
	if FALSE.Kind&KEYWORD != 0 || TRUE.Kind&KEYWORD != 0 {
		t.Error("TRUE/FALSE should not carry the KEYWORD bit")
	}
}
