package lexer

import (
	"testing"

	"nilan/token"
)

func scanAll(source string) []token.Token {
	lex := New(source)
	var tokens []token.Token
	for {
		tok := lex.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

func types(tokens []token.Token) []token.Type {
	out := make([]token.Type, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func TestOperators(t *testing.T) {
	tokens := scanAll("== / = * + > - < != <= >= !")
	want := []token.Type{
		token.EqualEqual, token.Slash, token.Equal, token.Star, token.Plus,
		token.Greater, token.Minus, token.Less, token.BangEqual,
		token.LessEqual, token.GreaterEqual, token.Bang, token.EOF,
	}
	assertTypes(t, tokens, want)
}

func TestPunctuationAndComments(t *testing.T) {
	tokens := scanAll("(){};,.  // a trailing comment\n")
	want := []token.Type{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Semicolon, token.Comma, token.Dot, token.EOF,
	}
	assertTypes(t, tokens, want)
}

func TestNumbers(t *testing.T) {
	tokens := scanAll("123 1.5 0.25")
	want := []token.Type{token.Number, token.Number, token.Number, token.EOF}
	assertTypes(t, tokens, want)

	lexemes := []string{"123", "1.5", "0.25"}
	for i, lexeme := range lexemes {
		if tokens[i].Lexeme != lexeme {
			t.Errorf("token %d lexeme = %q, want %q", i, tokens[i].Lexeme, lexeme)
		}
	}
}

func TestIdentifiersAndKeywords(t *testing.T) {
	tokens := scanAll("foo var print bar123 while")
	want := []token.Type{
		token.Identifier, token.Var, token.Print, token.Identifier, token.While, token.EOF,
	}
	assertTypes(t, tokens, want)
}

func TestString(t *testing.T) {
	tokens := scanAll(`"hello world"`)
	if tokens[0].Type != token.String {
		t.Fatalf("got type %v, want String", tokens[0].Type)
	}
	if tokens[0].Lexeme != `"hello world"` {
		t.Errorf("lexeme = %q, want %q", tokens[0].Lexeme, `"hello world"`)
	}
}

func TestUnterminatedString(t *testing.T) {
	tokens := scanAll(`"oops`)
	if tokens[0].Type != token.Error {
		t.Fatalf("got type %v, want Error", tokens[0].Type)
	}
	if tokens[0].Message != "Unterminated string." {
		t.Errorf("message = %q, want %q", tokens[0].Message, "Unterminated string.")
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	tokens := scanAll("@")
	if tokens[0].Type != token.Error {
		t.Fatalf("got type %v, want Error", tokens[0].Type)
	}
	if tokens[0].Message != "Unexpected character." {
		t.Errorf("message = %q, want %q", tokens[0].Message, "Unexpected character.")
	}
}

func TestLineTrackingAcrossNewlines(t *testing.T) {
	lex := New("1\n2\n3")
	first := lex.NextToken()
	second := lex.NextToken()
	third := lex.NextToken()
	if first.Line != 1 || second.Line != 2 || third.Line != 3 {
		t.Errorf("got lines %d, %d, %d; want 1, 2, 3", first.Line, second.Line, third.Line)
	}
}

func TestEOFIsIdempotent(t *testing.T) {
	lex := New("")
	first := lex.NextToken()
	second := lex.NextToken()
	if first.Type != token.EOF || second.Type != token.EOF {
		t.Errorf("got %v then %v, want EOF twice", first.Type, second.Type)
	}
}

func assertTypes(t *testing.T, tokens []token.Token, want []token.Type) {
	t.Helper()
	got := types(tokens)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d type = %v, want %v", i, got[i], want[i])
		}
	}
}
