package js_lexer

import (
	"testing"

	"github.com/routec/routec/internal/logger"
	"github.com/routec/routec/internal/test"
)

func lexToken(contents string) (T, string) {
	log := logger.NewDeferLog()
	source := test.SourceForTest(contents)
	token := TEndOfFile
	identifier := ""

	func() {
		defer func() {
			r := recover()
			if _, isLexerPanic := r.(LexerPanic); r != nil && !isLexerPanic {
				panic(r)
			}
		}()
		lexer := NewLexer(log, source)
		token = lexer.Token
		identifier = lexer.Identifier
	}()

	return token, identifier
}

func expectLexerError(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog()
		source := test.SourceForTest(contents)

		func() {
			defer func() {
				r := recover()
				if _, isLexerPanic := r.(LexerPanic); r != nil && !isLexerPanic {
					panic(r)
				}
			}()
			lexer := NewLexer(log, source)
			for lexer.Token != TEndOfFile {
				lexer.Next()
			}
		}()

		text := ""
		for _, msg := range log.Done() {
			text += msg.String(logger.StderrOptions{}, logger.TerminalInfo{})
		}
		test.AssertEqualWithDiff(t, text, expected)
	})
}

func expectIdentifier(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		token, identifier := lexToken(contents)
		test.AssertEqual(t, token, TIdentifier)
		test.AssertEqual(t, identifier, expected)
	})
}

func expectNumber(t *testing.T, contents string, expected float64) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog()
		source := test.SourceForTest(contents)
		lexer := NewLexer(log, source)
		test.AssertEqual(t, lexer.Token, TNumericLiteral)
		test.AssertEqual(t, lexer.Number, expected)
	})
}

func expectString(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog()
		source := test.SourceForTest(contents)
		lexer := NewLexer(log, source)
		test.AssertEqual(t, lexer.Token, TStringLiteral)
		test.AssertEqual(t, UTF16ToString(lexer.StringLiteral), expected)
	})
}

func TestIdentifier(t *testing.T) {
	expectIdentifier(t, "a", "a")
	expectIdentifier(t, "_‌", "_‌")
	expectIdentifier(t, "$", "$")
	expectIdentifier(t, "ꓷꓶꓲꓵꓭ", "ꓷꓶꓲꓵꓭ")
}

func TestTokens(t *testing.T) {
	expected := []struct {
		contents string
		token    T
	}{
		{"", TEndOfFile},

		// Punctuation
		{"(", TOpenParen},
		{")", TCloseParen},
		{"[", TOpenBracket},
		{"]", TCloseBracket},
		{"{", TOpenBrace},
		{"}", TCloseBrace},
		{"...", TDotDotDot},
		{"?.", TQuestionDot},
		{"??", TQuestionQuestion},
		{"=>", TEqualsGreaterThan},
		{"**", TAsteriskAsterisk},
		{"===", TEqualsEqualsEquals},
		{"!==", TExclamationEqualsEquals},

		// Keywords
		{"export", TExport},
		{"default", TDefault},
		{"import", TImport},
		{"const", TConst},
		{"class", TClass},
		{"function", TFunction},

		// Literals
		{"123", TNumericLiteral},
		{"123n", TBigIntegerLiteral},
		{"'abc'", TStringLiteral},
		{"`abc`", TNoSubstitutionTemplateLiteral},
		{"`a${b}`", TTemplateHead},
	}

	for _, it := range expected {
		contents := it.contents
		token := it.token
		t.Run(contents, func(t *testing.T) {
			observed, _ := lexToken(contents)
			test.AssertEqual(t, observed, token)
		})
	}
}

func TestNumericLiteral(t *testing.T) {
	expectNumber(t, "0", 0)
	expectNumber(t, "123", 123)
	expectNumber(t, "123.456", 123.456)
	expectNumber(t, "0x10", 16)
	expectNumber(t, "0b10", 2)
	expectNumber(t, "0o10", 8)
	expectNumber(t, "1e3", 1000)
	expectNumber(t, "1_000", 1000)
}

func TestStringLiteral(t *testing.T) {
	expectString(t, "'a'", "a")
	expectString(t, "\"a\"", "a")
	expectString(t, "'\\n'", "\n")
	expectString(t, "'\\x61'", "a")
	expectString(t, "'\\u0061'", "a")
	expectString(t, "'\\u{61}'", "a")
	expectString(t, "'a\\\nb'", "ab")
}

func TestLexerErrors(t *testing.T) {
	expectLexerError(t, "'", "<stdin>: error: Unterminated string literal\n")
	expectLexerError(t, "/* comment", "<stdin>: error: Expected \"*/\" to terminate multi-line comment\n")
}

func TestRangeOfIdentifier(t *testing.T) {
	source := test.SourceForTest("  foo  ")
	r := RangeOfIdentifier(source, logger.Loc{Start: 2})
	test.AssertEqual(t, r.Loc.Start, int32(2))
	test.AssertEqual(t, r.Len, int32(3))
}
