package js_lexer

// The lexer converts a source file to a stream of tokens. It is not run to
// completion before the parser starts. Instead, the lexer is called
// repeatedly by the parser as the parser parses the file. This is because
// many tokens are context-sensitive and need high-level information from the
// parser. Examples are regular expression literals, JSX elements, and
// template literal parts after an interpolation.
//
// Identifiers are stored as slices of the input text (UTF-8). String literal
// contents are stored as UTF-16 so unicode surrogates survive a round trip.

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/routec/routec/internal/logger"
)

type T uint8

// If you add a new token, remember to add it to "tokenToString" too
const (
	TEndOfFile T = iota
	TSyntaxError

	// "#!/usr/bin/env node"
	THashbang

	// Literals
	TNoSubstitutionTemplateLiteral // Contents are in lexer.StringLiteral ([]uint16)
	TNumericLiteral                // Contents are in lexer.Number (float64)
	TStringLiteral                 // Contents are in lexer.StringLiteral ([]uint16)
	TBigIntegerLiteral             // Contents are in lexer.Identifier (string)

	// Pseudo-literals
	TTemplateHead   // Contents are in lexer.StringLiteral ([]uint16)
	TTemplateMiddle // Contents are in lexer.StringLiteral ([]uint16)
	TTemplateTail   // Contents are in lexer.StringLiteral ([]uint16)

	// Punctuation
	TAmpersand
	TAmpersandAmpersand
	TAsterisk
	TAsteriskAsterisk
	TAt
	TBar
	TBarBar
	TCaret
	TCloseBrace
	TCloseBracket
	TCloseParen
	TColon
	TComma
	TDot
	TDotDotDot
	TEqualsEquals
	TEqualsEqualsEquals
	TEqualsGreaterThan
	TExclamation
	TExclamationEquals
	TExclamationEqualsEquals
	TGreaterThan
	TGreaterThanEquals
	TGreaterThanGreaterThan
	TGreaterThanGreaterThanGreaterThan
	TLessThan
	TLessThanEquals
	TLessThanLessThan
	TMinus
	TMinusMinus
	TOpenBrace
	TOpenBracket
	TOpenParen
	TPercent
	TPlus
	TPlusPlus
	TQuestion
	TQuestionDot
	TQuestionQuestion
	TSemicolon
	TSlash
	TTilde

	// Assignments
	TAmpersandAmpersandEquals
	TAmpersandEquals
	TAsteriskAsteriskEquals
	TAsteriskEquals
	TBarBarEquals
	TBarEquals
	TCaretEquals
	TEquals
	TGreaterThanGreaterThanEquals
	TGreaterThanGreaterThanGreaterThanEquals
	TLessThanLessThanEquals
	TMinusEquals
	TPercentEquals
	TPlusEquals
	TQuestionQuestionEquals
	TSlashEquals

	// Class-private fields and methods
	TPrivateIdentifier

	// Identifiers
	TIdentifier // Contents are in lexer.Identifier (string)

	// Reserved words
	TBreak
	TCase
	TCatch
	TClass
	TConst
	TContinue
	TDebugger
	TDefault
	TDelete
	TDo
	TElse
	TEnum
	TExport
	TExtends
	TFalse
	TFinally
	TFor
	TFunction
	TIf
	TImport
	TIn
	TInstanceof
	TNew
	TNull
	TReturn
	TSuper
	TSwitch
	TThis
	TThrow
	TTrue
	TTry
	TTypeof
	TVar
	TVoid
	TWhile
	TWith
)

var Keywords = map[string]T{
	// Reserved words
	"break":      TBreak,
	"case":       TCase,
	"catch":      TCatch,
	"class":      TClass,
	"const":      TConst,
	"continue":   TContinue,
	"debugger":   TDebugger,
	"default":    TDefault,
	"delete":     TDelete,
	"do":         TDo,
	"else":       TElse,
	"enum":       TEnum,
	"export":     TExport,
	"extends":    TExtends,
	"false":      TFalse,
	"finally":    TFinally,
	"for":        TFor,
	"function":   TFunction,
	"if":         TIf,
	"import":     TImport,
	"in":         TIn,
	"instanceof": TInstanceof,
	"new":        TNew,
	"null":       TNull,
	"return":     TReturn,
	"super":      TSuper,
	"switch":     TSwitch,
	"this":       TThis,
	"throw":      TThrow,
	"true":       TTrue,
	"try":        TTry,
	"typeof":     TTypeof,
	"var":        TVar,
	"void":       TVoid,
	"while":      TWhile,
	"with":       TWith,
}

var tokenToString = map[T]string{
	TEndOfFile:   "end of file",
	TSyntaxError: "syntax error",
	THashbang:    "hashbang comment",

	TNoSubstitutionTemplateLiteral: "template literal",
	TNumericLiteral:                "number",
	TStringLiteral:                 "string",
	TBigIntegerLiteral:             "bigint",

	TTemplateHead:   "template literal",
	TTemplateMiddle: "template literal",
	TTemplateTail:   "template literal",

	TAmpersand:                         "\"&\"",
	TAmpersandAmpersand:                "\"&&\"",
	TAsterisk:                          "\"*\"",
	TAsteriskAsterisk:                  "\"**\"",
	TAt:                                "\"@\"",
	TBar:                               "\"|\"",
	TBarBar:                            "\"||\"",
	TCaret:                             "\"^\"",
	TCloseBrace:                        "\"}\"",
	TCloseBracket:                      "\"]\"",
	TCloseParen:                        "\")\"",
	TColon:                             "\":\"",
	TComma:                             "\",\"",
	TDot:                               "\".\"",
	TDotDotDot:                         "\"...\"",
	TEqualsEquals:                      "\"==\"",
	TEqualsEqualsEquals:                "\"===\"",
	TEqualsGreaterThan:                 "\"=>\"",
	TExclamation:                       "\"!\"",
	TExclamationEquals:                 "\"!=\"",
	TExclamationEqualsEquals:           "\"!==\"",
	TGreaterThan:                       "\">\"",
	TGreaterThanEquals:                 "\">=\"",
	TGreaterThanGreaterThan:            "\">>\"",
	TGreaterThanGreaterThanGreaterThan: "\">>>\"",
	TLessThan:                          "\"<\"",
	TLessThanEquals:                    "\"<=\"",
	TLessThanLessThan:                  "\"<<\"",
	TMinus:                             "\"-\"",
	TMinusMinus:                        "\"--\"",
	TOpenBrace:                         "\"{\"",
	TOpenBracket:                       "\"[\"",
	TOpenParen:                         "\"(\"",
	TPercent:                           "\"%\"",
	TPlus:                              "\"+\"",
	TPlusPlus:                          "\"++\"",
	TQuestion:                          "\"?\"",
	TQuestionDot:                       "\"?.\"",
	TQuestionQuestion:                  "\"??\"",
	TSemicolon:                         "\";\"",
	TSlash:                             "\"/\"",
	TTilde:                             "\"~\"",

	TAmpersandAmpersandEquals:                "\"&&=\"",
	TAmpersandEquals:                         "\"&=\"",
	TAsteriskAsteriskEquals:                  "\"**=\"",
	TAsteriskEquals:                          "\"*=\"",
	TBarBarEquals:                            "\"||=\"",
	TBarEquals:                               "\"|=\"",
	TCaretEquals:                             "\"^=\"",
	TEquals:                                  "\"=\"",
	TGreaterThanGreaterThanEquals:            "\">>=\"",
	TGreaterThanGreaterThanGreaterThanEquals: "\">>>=\"",
	TLessThanLessThanEquals:                  "\"<<=\"",
	TMinusEquals:                             "\"-=\"",
	TPercentEquals:                           "\"%=\"",
	TPlusEquals:                              "\"+=\"",
	TQuestionQuestionEquals:                  "\"??=\"",
	TSlashEquals:                             "\"/=\"",

	TPrivateIdentifier: "private identifier",
	TIdentifier:        "identifier",

	TBreak:      "\"break\"",
	TCase:       "\"case\"",
	TCatch:      "\"catch\"",
	TClass:      "\"class\"",
	TConst:      "\"const\"",
	TContinue:   "\"continue\"",
	TDebugger:   "\"debugger\"",
	TDefault:    "\"default\"",
	TDelete:     "\"delete\"",
	TDo:         "\"do\"",
	TElse:       "\"else\"",
	TEnum:       "\"enum\"",
	TExport:     "\"export\"",
	TExtends:    "\"extends\"",
	TFalse:      "\"false\"",
	TFinally:    "\"finally\"",
	TFor:        "\"for\"",
	TFunction:   "\"function\"",
	TIf:         "\"if\"",
	TImport:     "\"import\"",
	TIn:         "\"in\"",
	TInstanceof: "\"instanceof\"",
	TNew:        "\"new\"",
	TNull:       "\"null\"",
	TReturn:     "\"return\"",
	TSuper:      "\"super\"",
	TSwitch:     "\"switch\"",
	TThis:       "\"this\"",
	TThrow:      "\"throw\"",
	TTrue:       "\"true\"",
	TTry:        "\"try\"",
	TTypeof:     "\"typeof\"",
	TVar:        "\"var\"",
	TVoid:       "\"void\"",
	TWhile:      "\"while\"",
	TWith:       "\"with\"",
}

type Lexer struct {
	log                             logger.Log
	source                          logger.Source
	current                         int
	start                           int
	end                             int
	ApproximateNewlineCount         int
	Token                           T
	HasNewlineBefore                bool
	codePoint                       rune
	StringLiteral                   []uint16
	Identifier                      string
	Number                          float64
	rescanCloseBraceAsTemplateToken bool

	// The log is disabled during speculative scans that may backtrack
	IsLogDisabled bool
}

type LexerPanic struct{}

func NewLexer(log logger.Log, source logger.Source) Lexer {
	lexer := Lexer{
		log:    log,
		source: source,
	}
	lexer.step()
	lexer.Next()
	return lexer
}

func (lexer *Lexer) Loc() logger.Loc {
	return logger.Loc{Start: int32(lexer.start)}
}

func (lexer *Lexer) Range() logger.Range {
	return logger.Range{Loc: logger.Loc{Start: int32(lexer.start)}, Len: int32(lexer.end - lexer.start)}
}

func (lexer *Lexer) Raw() string {
	return lexer.source.Contents[lexer.start:lexer.end]
}

func (lexer *Lexer) RawTemplateContents() string {
	var text string
	switch lexer.Token {
	case TNoSubstitutionTemplateLiteral, TTemplateTail:
		// "`x`" or "}x`"
		text = lexer.source.Contents[lexer.start+1 : lexer.end-1]

	case TTemplateHead, TTemplateMiddle:
		// "`x${" or "}x${"
		text = lexer.source.Contents[lexer.start+1 : lexer.end-2]
	}

	if strings.IndexByte(text, '\r') == -1 {
		return text
	}

	// <CR><LF> and <CR> line terminators are normalized to <LF>
	bytes := []byte(text)
	end := 0
	i := 0

	for i < len(bytes) {
		c := bytes[i]
		i++

		if c == '\r' {
			if i < len(bytes) && bytes[i] == '\n' {
				i++
			}
			c = '\n'
		}

		bytes[end] = c
		end++
	}

	return string(bytes[:end])
}

func (lexer *Lexer) IsIdentifierOrKeyword() bool {
	return lexer.Token >= TIdentifier
}

func (lexer *Lexer) IsContextualKeyword(text string) bool {
	return lexer.Token == TIdentifier && lexer.Raw() == text
}

func (lexer *Lexer) ExpectContextualKeyword(text string) {
	if !lexer.IsContextualKeyword(text) {
		lexer.ExpectedString(fmt.Sprintf("%q", text))
	}
	lexer.Next()
}

func (lexer *Lexer) SyntaxError() {
	loc := logger.Loc{Start: int32(lexer.end)}
	message := "Unexpected end of file"
	if lexer.end < len(lexer.source.Contents) {
		c, _ := utf8.DecodeRuneInString(lexer.source.Contents[lexer.end:])
		if c < 0x20 {
			message = fmt.Sprintf("Syntax error \"\\x%02X\"", c)
		} else if c >= 0x80 {
			message = fmt.Sprintf("Syntax error \"\\u{%x}\"", c)
		} else if c != '"' {
			message = fmt.Sprintf("Syntax error \"%c\"", c)
		} else {
			message = "Syntax error '\"'"
		}
	}
	lexer.addError(loc, message)
	panic(LexerPanic{})
}

func (lexer *Lexer) ExpectedString(text string) {
	found := fmt.Sprintf("%q", lexer.Raw())
	if lexer.start == len(lexer.source.Contents) {
		found = "end of file"
	}
	lexer.addRangeError(lexer.Range(), fmt.Sprintf("Expected %s but found %s", text, found))
	panic(LexerPanic{})
}

func (lexer *Lexer) Expected(token T) {
	if text, ok := tokenToString[token]; ok {
		lexer.ExpectedString(text)
	} else {
		lexer.Unexpected()
	}
}

func (lexer *Lexer) Unexpected() {
	found := fmt.Sprintf("%q", lexer.Raw())
	if lexer.start == len(lexer.source.Contents) {
		found = "end of file"
	}
	lexer.addRangeError(lexer.Range(), fmt.Sprintf("Unexpected %s", found))
	panic(LexerPanic{})
}

func (lexer *Lexer) Expect(token T) {
	if lexer.Token != token {
		lexer.Expected(token)
	}
	lexer.Next()
}

func (lexer *Lexer) ExpectOrInsertSemicolon() {
	if lexer.Token == TSemicolon || (!lexer.HasNewlineBefore &&
		lexer.Token != TCloseBrace && lexer.Token != TEndOfFile) {
		lexer.Expect(TSemicolon)
	}
}

// Like Expect but rescans the next token using the JSX element lexing mode
func (lexer *Lexer) ExpectInsideJSXElement(token T) {
	if lexer.Token != token {
		lexer.Expected(token)
	}
	lexer.NextInsideJSXElement()
}

// Like Expect but rescans the next token using the JSX child lexing mode
func (lexer *Lexer) ExpectJSXElementChild(token T) {
	if lexer.Token != token {
		lexer.Expected(token)
	}
	lexer.NextJSXElementChild()
}

// This parses a single "<" token. If that is the first part of a longer
// token, this function splits off the first "<" and leaves the remainder of
// the current token as another, smaller token. For example, "<<=" becomes
// "<=".
func (lexer *Lexer) ExpectLessThan(isInsideJSXElement bool) {
	switch lexer.Token {
	case TLessThan:
		if isInsideJSXElement {
			lexer.NextInsideJSXElement()
		} else {
			lexer.Next()
		}

	case TLessThanEquals:
		lexer.Token = TEquals
		lexer.start++

	case TLessThanLessThan:
		lexer.Token = TLessThan
		lexer.start++

	case TLessThanLessThanEquals:
		lexer.Token = TLessThanEquals
		lexer.start++

	default:
		lexer.Expected(TLessThan)
	}
}

// Like ExpectLessThan but for ">". Needed because ">>" and ">>=" must be
// split when closing nested type parameter lists.
func (lexer *Lexer) ExpectGreaterThan(isInsideJSXElement bool) {
	switch lexer.Token {
	case TGreaterThan:
		if isInsideJSXElement {
			lexer.NextInsideJSXElement()
		} else {
			lexer.Next()
		}

	case TGreaterThanEquals:
		lexer.Token = TEquals
		lexer.start++

	case TGreaterThanGreaterThan:
		lexer.Token = TGreaterThan
		lexer.start++

	case TGreaterThanGreaterThanEquals:
		lexer.Token = TGreaterThanEquals
		lexer.start++

	case TGreaterThanGreaterThanGreaterThan:
		lexer.Token = TGreaterThanGreaterThan
		lexer.start++

	case TGreaterThanGreaterThanGreaterThanEquals:
		lexer.Token = TGreaterThanGreaterThanEquals
		lexer.start++

	default:
		lexer.Expected(TGreaterThan)
	}
}

func IsIdentifierStart(codePoint rune) bool {
	switch codePoint {
	case '_', '$':
		return true
	}
	return unicode.IsLetter(codePoint)
}

func IsIdentifierContinue(codePoint rune) bool {
	switch codePoint {
	case '_', '$', 0x200C, 0x200D:
		return true
	}
	return unicode.IsLetter(codePoint) || unicode.IsDigit(codePoint) ||
		unicode.Is(unicode.Mn, codePoint) || unicode.Is(unicode.Mc, codePoint) ||
		unicode.Is(unicode.Pc, codePoint)
}

func IsIdentifier(text string) bool {
	if len(text) == 0 {
		return false
	}
	for i, codePoint := range text {
		if i == 0 {
			if !IsIdentifierStart(codePoint) {
				return false
			}
		} else {
			if !IsIdentifierContinue(codePoint) {
				return false
			}
		}
	}
	return true
}

// RangeOfIdentifier returns the range of the identifier token starting at
// the given location. Used to attach ranges to errors reported after
// parsing, when only node locations remain.
func RangeOfIdentifier(source logger.Source, loc logger.Loc) logger.Range {
	text := source.Contents[loc.Start:]
	if len(text) == 0 {
		return logger.Range{Loc: loc, Len: 0}
	}

	i := 0
	c, width := utf8.DecodeRuneInString(text)

	// Handle private names
	if c == '#' {
		i += width
		c, width = utf8.DecodeRuneInString(text[i:])
	}

	if IsIdentifierStart(c) {
		i += width
		for i < len(text) {
			c, width = utf8.DecodeRuneInString(text[i:])
			if !IsIdentifierContinue(c) {
				break
			}
			i += width
		}
	}

	return logger.Range{Loc: loc, Len: int32(i)}
}

func IsWhitespace(codePoint rune) bool {
	switch codePoint {
	case
		'\u0009', // character tabulation
		'\u000B', // line tabulation
		'\u000C', // form feed
		'\u0020', // space
		'\u00A0', // no-break space
		'\uFEFF', // zero width non-breaking space
		'\u1680', // ogham space mark
		'\u2000', // en quad
		'\u2001', // em quad
		'\u2002', // en space
		'\u2003', // em space
		'\u2004', // three-per-em space
		'\u2005', // four-per-em space
		'\u2006', // six-per-em space
		'\u2007', // figure space
		'\u2008', // punctuation space
		'\u2009', // thin space
		'\u200A', // hair space
		'\u202F', // narrow no-break space
		'\u205F', // medium mathematical space
		'\u3000': // ideographic space
		return true
	default:
		return false
	}
}

// -1 means end of file
const eof = -1

func (lexer *Lexer) step() {
	codePoint, width := utf8.DecodeRuneInString(lexer.source.Contents[lexer.current:])

	// Use -1 to indicate the end of the file
	if width == 0 {
		codePoint = eof
	}

	lexer.codePoint = codePoint
	lexer.end = lexer.current
	lexer.current += width
}

func (lexer *Lexer) addError(loc logger.Loc, text string) {
	if !lexer.IsLogDisabled {
		lexer.log.AddErrorWithKind(&lexer.source, logger.KindSyntax, logger.Range{Loc: loc}, text)
	}
}

func (lexer *Lexer) addRangeError(r logger.Range, text string) {
	if !lexer.IsLogDisabled {
		lexer.log.AddErrorWithKind(&lexer.source, logger.KindSyntax, r, text)
	}
}

func (lexer *Lexer) Next() {
	lexer.HasNewlineBefore = lexer.end == 0

	for {
		lexer.start = lexer.end
		lexer.Token = 0

		switch lexer.codePoint {
		case eof:
			lexer.Token = TEndOfFile

		case '\r', '\n', '\u2028', '\u2029':
			lexer.step()
			lexer.HasNewlineBefore = true
			lexer.ApproximateNewlineCount++
			continue

		case '\t', ' ':
			lexer.step()
			continue

		case '(':
			lexer.step()
			lexer.Token = TOpenParen

		case ')':
			lexer.step()
			lexer.Token = TCloseParen

		case '[':
			lexer.step()
			lexer.Token = TOpenBracket

		case ']':
			lexer.step()
			lexer.Token = TCloseBracket

		case '{':
			lexer.step()
			lexer.Token = TOpenBrace

		case '}':
			if lexer.rescanCloseBraceAsTemplateToken {
				lexer.scanTemplateTail()
			} else {
				lexer.step()
				lexer.Token = TCloseBrace
			}

		case ',':
			lexer.step()
			lexer.Token = TComma

		case ':':
			lexer.step()
			lexer.Token = TColon

		case ';':
			lexer.step()
			lexer.Token = TSemicolon

		case '@':
			lexer.step()
			lexer.Token = TAt

		case '~':
			lexer.step()
			lexer.Token = TTilde

		case '?':
			// '?' or '?.' or '??' or '??='
			lexer.step()
			switch lexer.codePoint {
			case '?':
				lexer.step()
				switch lexer.codePoint {
				case '=':
					lexer.step()
					lexer.Token = TQuestionQuestionEquals
				default:
					lexer.Token = TQuestionQuestion
				}
			case '.':
				// "?.1" is "?" followed by ".1" (a number), not "?." then "1"
				if c := lexer.peek(); c < '0' || c > '9' {
					lexer.step()
					lexer.Token = TQuestionDot
				} else {
					lexer.Token = TQuestion
				}
			default:
				lexer.Token = TQuestion
			}

		case '%':
			// '%' or '%='
			lexer.step()
			if lexer.codePoint == '=' {
				lexer.step()
				lexer.Token = TPercentEquals
			} else {
				lexer.Token = TPercent
			}

		case '&':
			// '&' or '&=' or '&&' or '&&='
			lexer.step()
			switch lexer.codePoint {
			case '=':
				lexer.step()
				lexer.Token = TAmpersandEquals
			case '&':
				lexer.step()
				if lexer.codePoint == '=' {
					lexer.step()
					lexer.Token = TAmpersandAmpersandEquals
				} else {
					lexer.Token = TAmpersandAmpersand
				}
			default:
				lexer.Token = TAmpersand
			}

		case '|':
			// '|' or '|=' or '||' or '||='
			lexer.step()
			switch lexer.codePoint {
			case '=':
				lexer.step()
				lexer.Token = TBarEquals
			case '|':
				lexer.step()
				if lexer.codePoint == '=' {
					lexer.step()
					lexer.Token = TBarBarEquals
				} else {
					lexer.Token = TBarBar
				}
			default:
				lexer.Token = TBar
			}

		case '^':
			// '^' or '^='
			lexer.step()
			if lexer.codePoint == '=' {
				lexer.step()
				lexer.Token = TCaretEquals
			} else {
				lexer.Token = TCaret
			}

		case '+':
			// '+' or '+=' or '++'
			lexer.step()
			switch lexer.codePoint {
			case '=':
				lexer.step()
				lexer.Token = TPlusEquals
			case '+':
				lexer.step()
				lexer.Token = TPlusPlus
			default:
				lexer.Token = TPlus
			}

		case '-':
			// '-' or '-=' or '--'
			lexer.step()
			switch lexer.codePoint {
			case '=':
				lexer.step()
				lexer.Token = TMinusEquals
			case '-':
				lexer.step()
				lexer.Token = TMinusMinus
			default:
				lexer.Token = TMinus
			}

		case '*':
			// '*' or '*=' or '**' or '**='
			lexer.step()
			switch lexer.codePoint {
			case '=':
				lexer.step()
				lexer.Token = TAsteriskEquals
			case '*':
				lexer.step()
				if lexer.codePoint == '=' {
					lexer.step()
					lexer.Token = TAsteriskAsteriskEquals
				} else {
					lexer.Token = TAsteriskAsterisk
				}
			default:
				lexer.Token = TAsterisk
			}

		case '/':
			// '/' or '/=' or '//' or '/* ... */'
			lexer.step()
			switch lexer.codePoint {
			case '=':
				lexer.step()
				lexer.Token = TSlashEquals

			case '/':
			singleLineComment:
				for {
					lexer.step()
					switch lexer.codePoint {
					case '\r', '\n', '\u2028', '\u2029', eof:
						break singleLineComment
					}
				}
				continue

			case '*':
				lexer.step()
			multiLineComment:
				for {
					switch lexer.codePoint {
					case '*':
						lexer.step()
						if lexer.codePoint == '/' {
							lexer.step()
							break multiLineComment
						}

					case '\r', '\n', '\u2028', '\u2029':
						lexer.step()
						lexer.HasNewlineBefore = true
						lexer.ApproximateNewlineCount++

					case eof:
						lexer.start = lexer.end
						lexer.addError(lexer.Loc(), "Expected \"*/\" to terminate multi-line comment")
						panic(LexerPanic{})

					default:
						lexer.step()
					}
				}
				continue

			default:
				lexer.Token = TSlash
			}

		case '=':
			// '=' or '=>' or '==' or '==='
			lexer.step()
			switch lexer.codePoint {
			case '>':
				lexer.step()
				lexer.Token = TEqualsGreaterThan
			case '=':
				lexer.step()
				if lexer.codePoint == '=' {
					lexer.step()
					lexer.Token = TEqualsEqualsEquals
				} else {
					lexer.Token = TEqualsEquals
				}
			default:
				lexer.Token = TEquals
			}

		case '<':
			// '<' or '<<' or '<=' or '<<='
			lexer.step()
			switch lexer.codePoint {
			case '=':
				lexer.step()
				lexer.Token = TLessThanEquals
			case '<':
				lexer.step()
				if lexer.codePoint == '=' {
					lexer.step()
					lexer.Token = TLessThanLessThanEquals
				} else {
					lexer.Token = TLessThanLessThan
				}
			default:
				lexer.Token = TLessThan
			}

		case '>':
			// '>' or '>>' or '>>>' or '>=' or '>>=' or '>>>='
			lexer.step()
			switch lexer.codePoint {
			case '=':
				lexer.step()
				lexer.Token = TGreaterThanEquals
			case '>':
				lexer.step()
				switch lexer.codePoint {
				case '=':
					lexer.step()
					lexer.Token = TGreaterThanGreaterThanEquals
				case '>':
					lexer.step()
					if lexer.codePoint == '=' {
						lexer.step()
						lexer.Token = TGreaterThanGreaterThanGreaterThanEquals
					} else {
						lexer.Token = TGreaterThanGreaterThanGreaterThan
					}
				default:
					lexer.Token = TGreaterThanGreaterThan
				}
			default:
				lexer.Token = TGreaterThan
			}

		case '!':
			// '!' or '!=' or '!=='
			lexer.step()
			if lexer.codePoint == '=' {
				lexer.step()
				if lexer.codePoint == '=' {
					lexer.step()
					lexer.Token = TExclamationEqualsEquals
				} else {
					lexer.Token = TExclamationEquals
				}
			} else {
				lexer.Token = TExclamation
			}

		case '\'', '"':
			lexer.scanStringLiteral(rune(lexer.codePoint))

		case '`':
			lexer.scanTemplateHead()

		case '#':
			if lexer.start == 0 && strings.HasPrefix(lexer.source.Contents, "#!") {
				// "#!/usr/bin/env node"
				lexer.Token = THashbang
			hashbang:
				for {
					lexer.step()
					switch lexer.codePoint {
					case '\r', '\n', '\u2028', '\u2029', eof:
						break hashbang
					}
				}
				lexer.Identifier = lexer.Raw()
				break
			}

			lexer.step()
			if !IsIdentifierStart(lexer.codePoint) {
				lexer.SyntaxError()
			}
			lexer.step()
			for IsIdentifierContinue(lexer.codePoint) {
				lexer.step()
			}
			lexer.Identifier = lexer.Raw()
			lexer.Token = TPrivateIdentifier

		case '.':
			// '.' or '...' or '.123'
			if c := lexer.peek(); c >= '0' && c <= '9' {
				lexer.scanNumber()
				break
			}
			lexer.step()
			if lexer.codePoint == '.' && lexer.peek() == '.' {
				lexer.step()
				lexer.step()
				lexer.Token = TDotDotDot
			} else {
				lexer.Token = TDot
			}

		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			lexer.scanNumber()

		default:
			if IsWhitespace(lexer.codePoint) {
				lexer.step()
				continue
			}

			if IsIdentifierStart(lexer.codePoint) {
				lexer.step()
				for IsIdentifierContinue(lexer.codePoint) {
					lexer.step()
				}
				lexer.Identifier = lexer.Raw()
				if token, ok := Keywords[lexer.Identifier]; ok {
					lexer.Token = token
				} else {
					lexer.Token = TIdentifier
				}
				break
			}

			lexer.end = lexer.current
			lexer.Token = TSyntaxError
			lexer.SyntaxError()
		}

		return
	}
}

// peek returns the code point after the current one without consuming it
func (lexer *Lexer) peek() rune {
	c, _ := utf8.DecodeRuneInString(lexer.source.Contents[lexer.current:])
	return c
}

func (lexer *Lexer) scanStringLiteral(quote rune) {
	hasEscapes := false
	lexer.step()

stringLiteral:
	for {
		switch lexer.codePoint {
		case '\\':
			hasEscapes = true
			lexer.step()
			// Handle Windows CRLF
			if lexer.codePoint == '\r' {
				lexer.step()
				if lexer.codePoint == '\n' {
					lexer.step()
				}
				continue
			}
			lexer.step()

		case '\r', '\n':
			lexer.addError(logger.Loc{Start: int32(lexer.end)}, "Unterminated string literal")
			panic(LexerPanic{})

		case eof:
			lexer.addError(logger.Loc{Start: int32(lexer.end)}, "Unterminated string literal")
			panic(LexerPanic{})

		case quote:
			lexer.step()
			break stringLiteral

		default:
			lexer.step()
		}
	}

	text := lexer.source.Contents[lexer.start+1 : lexer.end-1]
	if hasEscapes {
		lexer.StringLiteral = lexer.decodeEscapeSequences(lexer.start+1, text)
	} else {
		lexer.StringLiteral = utf16.Encode([]rune(text))
	}
	lexer.Token = TStringLiteral
}

func (lexer *Lexer) scanTemplateHead() {
	lexer.step()
	lexer.scanTemplateBody('`', TNoSubstitutionTemplateLiteral, TTemplateHead)
}

// RescanCloseBraceAsTemplateToken is called by the parser when it reaches
// the "}" after a "${" interpolation. The "}" must be re-lexed as the start
// of a template middle or tail.
func (lexer *Lexer) RescanCloseBraceAsTemplateToken() {
	if lexer.Token != TCloseBrace {
		lexer.Expected(TCloseBrace)
	}
	lexer.rescanCloseBraceAsTemplateToken = true
	lexer.current = lexer.start
	lexer.end = lexer.start
	lexer.step()
	lexer.Next()
	lexer.rescanCloseBraceAsTemplateToken = false
}

func (lexer *Lexer) scanTemplateTail() {
	lexer.step()
	lexer.scanTemplateBody('`', TTemplateTail, TTemplateMiddle)
}

func (lexer *Lexer) scanTemplateBody(endQuote rune, endToken T, interpToken T) {
	hasEscapes := false

	for {
		switch lexer.codePoint {
		case '\\':
			hasEscapes = true
			lexer.step()
			lexer.step()

		case '$':
			lexer.step()
			if lexer.codePoint == '{' {
				lexer.step()
				lexer.Token = interpToken
				text := lexer.source.Contents[lexer.start+1 : lexer.end-2]
				if hasEscapes {
					lexer.StringLiteral = lexer.decodeEscapeSequences(lexer.start+1, text)
				} else {
					lexer.StringLiteral = utf16.Encode([]rune(text))
				}
				return
			}

		case endQuote:
			lexer.step()
			lexer.Token = endToken
			text := lexer.source.Contents[lexer.start+1 : lexer.end-1]
			if hasEscapes {
				lexer.StringLiteral = lexer.decodeEscapeSequences(lexer.start+1, text)
			} else {
				lexer.StringLiteral = utf16.Encode([]rune(text))
			}
			return

		case '\r', '\n', '\u2028', '\u2029':
			lexer.step()
			lexer.ApproximateNewlineCount++

		case eof:
			lexer.addError(logger.Loc{Start: int32(lexer.end)}, "Unterminated template literal")
			panic(LexerPanic{})

		default:
			lexer.step()
		}
	}
}

func (lexer *Lexer) decodeEscapeSequences(start int, text string) []uint16 {
	decoded := []uint16{}
	i := 0

	for i < len(text) {
		c, width := utf8.DecodeRuneInString(text[i:])
		i += width

		if c != '\\' {
			if c <= 0xFFFF {
				decoded = append(decoded, uint16(c))
			} else {
				c -= 0x10000
				decoded = append(decoded, uint16(0xD800+((c>>10)&0x3FF)), uint16(0xDC00+(c&0x3FF)))
			}
			continue
		}

		c2, width2 := utf8.DecodeRuneInString(text[i:])
		i += width2

		switch c2 {
		case 'b':
			decoded = append(decoded, '\b')
		case 'f':
			decoded = append(decoded, '\f')
		case 'n':
			decoded = append(decoded, '\n')
		case 'r':
			decoded = append(decoded, '\r')
		case 't':
			decoded = append(decoded, '\t')
		case 'v':
			decoded = append(decoded, '\v')

		case '0', '1', '2', '3', '4', '5', '6', '7':
			// Legacy octal escapes; "\0" is the common case
			octal := c2 - '0'
			for len(text) > i {
				c3 := text[i]
				if c3 < '0' || c3 > '7' || octal >= 32 {
					break
				}
				octal = octal*8 + rune(c3-'0')
				i++
			}
			decoded = append(decoded, uint16(octal))

		case 'x':
			// 2-digit hexadecimal
			value := rune(0)
			for j := 0; j < 2; j++ {
				c3, width3 := utf8.DecodeRuneInString(text[i:])
				i += width3
				switch {
				case c3 >= '0' && c3 <= '9':
					value = value*16 | (c3 - '0')
				case c3 >= 'a' && c3 <= 'f':
					value = value*16 | (c3 + 10 - 'a')
				case c3 >= 'A' && c3 <= 'F':
					value = value*16 | (c3 + 10 - 'A')
				default:
					lexer.addError(logger.Loc{Start: int32(start + i - width3)}, "Invalid hexadecimal escape")
					panic(LexerPanic{})
				}
			}
			decoded = append(decoded, uint16(value))

		case 'u':
			value := rune(0)
			if i < len(text) && text[i] == '{' {
				// Variable-length "\u{...}"
				i++
				hasDigit := false
				for i < len(text) && text[i] != '}' {
					c3 := rune(text[i])
					switch {
					case c3 >= '0' && c3 <= '9':
						value = value*16 | (c3 - '0')
					case c3 >= 'a' && c3 <= 'f':
						value = value*16 | (c3 + 10 - 'a')
					case c3 >= 'A' && c3 <= 'F':
						value = value*16 | (c3 + 10 - 'A')
					default:
						lexer.addError(logger.Loc{Start: int32(start + i)}, "Invalid unicode escape")
						panic(LexerPanic{})
					}
					hasDigit = true
					i++
				}
				if !hasDigit || i == len(text) || value > 0x10FFFF {
					lexer.addError(logger.Loc{Start: int32(start + i)}, "Invalid unicode escape")
					panic(LexerPanic{})
				}
				i++ // Skip the "}"
			} else {
				// Fixed-length "\uXXXX"
				for j := 0; j < 4; j++ {
					c3, width3 := utf8.DecodeRuneInString(text[i:])
					i += width3
					switch {
					case c3 >= '0' && c3 <= '9':
						value = value*16 | (c3 - '0')
					case c3 >= 'a' && c3 <= 'f':
						value = value*16 | (c3 + 10 - 'a')
					case c3 >= 'A' && c3 <= 'F':
						value = value*16 | (c3 + 10 - 'A')
					default:
						lexer.addError(logger.Loc{Start: int32(start + i - width3)}, "Invalid unicode escape")
						panic(LexerPanic{})
					}
				}
			}
			if value <= 0xFFFF {
				decoded = append(decoded, uint16(value))
			} else {
				value -= 0x10000
				decoded = append(decoded, uint16(0xD800+((value>>10)&0x3FF)), uint16(0xDC00+(value&0x3FF)))
			}

		case '\r':
			// Line continuation; ignore "\r\n" as one terminator
			if i < len(text) && text[i] == '\n' {
				i++
			}

		case '\n', '\u2028', '\u2029':
			// Line continuation

		default:
			if c2 <= 0xFFFF {
				decoded = append(decoded, uint16(c2))
			} else {
				c2 -= 0x10000
				decoded = append(decoded, uint16(0xD800+((c2>>10)&0x3FF)), uint16(0xDC00+(c2&0x3FF)))
			}
		}
	}

	return decoded
}

func (lexer *Lexer) scanNumber() {
	first := lexer.codePoint
	lexer.step()

	isBigInt := false
	isLegacyOctal := false
	base := 0

	if first == '0' {
		switch lexer.codePoint {
		case 'x', 'X':
			base = 16
			lexer.step()
		case 'o', 'O':
			base = 8
			lexer.step()
		case 'b', 'B':
			base = 2
			lexer.step()
		case '0', '1', '2', '3', '4', '5', '6', '7':
			base = 8
			isLegacyOctal = true
		}
	}

	if base != 0 {
		digitStart := lexer.end
		for {
			c := lexer.codePoint
			isDigit := false
			switch {
			case c >= '0' && c <= '9':
				isDigit = int(c-'0') < base || isLegacyOctal
			case c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
				isDigit = base == 16
			case c == '_':
				isDigit = true
			}
			if !isDigit {
				break
			}
			lexer.step()
		}

		if lexer.codePoint == 'n' && !isLegacyOctal {
			isBigInt = true
			lexer.step()
		}

		raw := lexer.source.Contents[digitStart:lexer.end]
		if isBigInt {
			raw = raw[:len(raw)-1]
		}
		raw = strings.ReplaceAll(raw, "_", "")
		if isLegacyOctal {
			// Legacy octal keeps the full run including the leading zero
			if value, err := strconv.ParseUint(raw, 8, 64); err == nil {
				lexer.Number = float64(value)
			} else if value, err := strconv.ParseFloat(raw, 64); err == nil {
				// "08" and "09" are decimal in sloppy mode
				lexer.Number = value
			} else {
				lexer.SyntaxError()
			}
		} else {
			if raw == "" {
				lexer.SyntaxError()
			}
			value := float64(0)
			for _, c := range raw {
				digit := float64(0)
				switch {
				case c >= '0' && c <= '9':
					digit = float64(c - '0')
				case c >= 'a' && c <= 'f':
					digit = float64(c-'a') + 10
				case c >= 'A' && c <= 'F':
					digit = float64(c-'A') + 10
				}
				value = value*float64(base) + digit
			}
			lexer.Number = value
		}
	} else {
		// Decimal literal
		for (lexer.codePoint >= '0' && lexer.codePoint <= '9') || lexer.codePoint == '_' {
			lexer.step()
		}
		if lexer.codePoint == '.' {
			lexer.step()
			for (lexer.codePoint >= '0' && lexer.codePoint <= '9') || lexer.codePoint == '_' {
				lexer.step()
			}
		}
		if lexer.codePoint == 'e' || lexer.codePoint == 'E' {
			lexer.step()
			if lexer.codePoint == '+' || lexer.codePoint == '-' {
				lexer.step()
			}
			if lexer.codePoint < '0' || lexer.codePoint > '9' {
				lexer.SyntaxError()
			}
			for (lexer.codePoint >= '0' && lexer.codePoint <= '9') || lexer.codePoint == '_' {
				lexer.step()
			}
		}
		if lexer.codePoint == 'n' {
			isBigInt = true
			lexer.step()
		}

		raw := lexer.Raw()
		if isBigInt {
			raw = raw[:len(raw)-1]
		}
		raw = strings.ReplaceAll(raw, "_", "")
		if !isBigInt {
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil && !strings.Contains(err.Error(), "out of range") {
				lexer.SyntaxError()
			}
			lexer.Number = value
		}
	}

	// An identifier must not immediately follow a number
	if IsIdentifierStart(lexer.codePoint) {
		lexer.SyntaxError()
	}

	if isBigInt {
		lexer.Identifier = lexer.Raw()
		lexer.Token = TBigIntegerLiteral
	} else {
		lexer.Token = TNumericLiteral
	}
}

// ScanRegExp is called by the parser when a "/" or "/=" token appears where
// an expression is expected. The token is re-lexed as a regular expression
// literal starting from the same "/".
func (lexer *Lexer) ScanRegExp() {
	validateAndStep := func() {
		if lexer.codePoint == '\\' {
			lexer.step()
		}

		switch lexer.codePoint {
		case '\r', '\n', '\u2028', '\u2029':
			lexer.addError(logger.Loc{Start: int32(lexer.end)}, "Unterminated regular expression")
			panic(LexerPanic{})

		case eof:
			lexer.addError(logger.Loc{Start: int32(lexer.end)}, "Unterminated regular expression")
			panic(LexerPanic{})

		default:
			lexer.step()
		}
	}

	// Rewind to the beginning of the current token ("/" or "/=")
	lexer.current = lexer.start
	lexer.end = lexer.start
	lexer.step()

	// Skip the leading "/"
	lexer.step()

	for lexer.codePoint != '/' {
		if lexer.codePoint == '[' {
			// Within a character class "/" does not terminate the regexp
			lexer.step()
			for lexer.codePoint != ']' {
				validateAndStep()
			}
			lexer.step()
		} else {
			validateAndStep()
		}
	}
	lexer.step()

	// Flags
	for IsIdentifierContinue(lexer.codePoint) {
		switch lexer.codePoint {
		case 'd', 'g', 'i', 'm', 's', 'u', 'v', 'y':
			lexer.step()
		default:
			lexer.SyntaxError()
		}
	}
}

// NextInsideJSXElement is the lexing mode used between "<" and ">" of a JSX
// element. JSX identifiers may contain dashes, and string attribute values
// keep their contents verbatim (no escape processing).
func (lexer *Lexer) NextInsideJSXElement() {
	lexer.HasNewlineBefore = false

	for {
		lexer.start = lexer.end
		lexer.Token = 0

		switch lexer.codePoint {
		case eof:
			lexer.Token = TEndOfFile

		case '\r', '\n', '\u2028', '\u2029':
			lexer.step()
			lexer.HasNewlineBefore = true
			lexer.ApproximateNewlineCount++
			continue

		case '\t', ' ':
			lexer.step()
			continue

		case '.':
			lexer.step()
			lexer.Token = TDot

		case '=':
			lexer.step()
			lexer.Token = TEquals

		case '{':
			lexer.step()
			lexer.Token = TOpenBrace

		case '}':
			lexer.step()
			lexer.Token = TCloseBrace

		case '<':
			lexer.step()
			lexer.Token = TLessThan

		case '>':
			lexer.step()
			lexer.Token = TGreaterThan

		case '/':
			// '/' or '//' or '/* ... */'
			lexer.step()
			switch lexer.codePoint {
			case '/':
			singleLineComment:
				for {
					lexer.step()
					switch lexer.codePoint {
					case '\r', '\n', '\u2028', '\u2029', eof:
						break singleLineComment
					}
				}
				continue

			case '*':
				lexer.step()
			multiLineComment:
				for {
					switch lexer.codePoint {
					case '*':
						lexer.step()
						if lexer.codePoint == '/' {
							lexer.step()
							break multiLineComment
						}

					case '\r', '\n', '\u2028', '\u2029':
						lexer.step()
						lexer.HasNewlineBefore = true
						lexer.ApproximateNewlineCount++

					case eof:
						lexer.start = lexer.end
						lexer.addError(lexer.Loc(), "Expected \"*/\" to terminate multi-line comment")
						panic(LexerPanic{})

					default:
						lexer.step()
					}
				}
				continue

			default:
				lexer.Token = TSlash
			}

		case '\'', '"':
			quote := lexer.codePoint
			lexer.step()

		stringLiteral:
			for {
				switch lexer.codePoint {
				case quote:
					lexer.step()
					break stringLiteral

				case eof:
					lexer.addError(logger.Loc{Start: int32(lexer.end)}, "Unterminated string literal")
					panic(LexerPanic{})

				default:
					lexer.step()
				}
			}

			lexer.StringLiteral = utf16.Encode([]rune(lexer.source.Contents[lexer.start+1 : lexer.end-1]))
			lexer.Token = TStringLiteral

		default:
			if IsWhitespace(lexer.codePoint) {
				lexer.step()
				continue
			}

			if IsIdentifierStart(lexer.codePoint) {
				lexer.step()
				for IsIdentifierContinue(lexer.codePoint) || lexer.codePoint == '-' {
					lexer.step()
				}
				lexer.Identifier = lexer.Raw()
				lexer.Token = TIdentifier
				break
			}

			lexer.end = lexer.current
			lexer.Token = TSyntaxError
			lexer.SyntaxError()
		}

		return
	}
}

// NextJSXElementChild lexes the text between JSX tags. The result is either
// a string literal (raw text), "<" for a nested element, "{" for an
// interpolation, or the end of file.
func (lexer *Lexer) NextJSXElementChild() {
	lexer.HasNewlineBefore = false
	originalStart := lexer.end

	for {
		lexer.start = lexer.end
		lexer.Token = 0

		switch lexer.codePoint {
		case eof:
			lexer.Token = TEndOfFile

		case '{':
			lexer.step()
			lexer.Token = TOpenBrace

		case '<':
			lexer.step()
			lexer.Token = TLessThan

		default:
			// This is a text node
		textLiteral:
			for {
				switch lexer.codePoint {
				case eof, '{', '<':
					break textLiteral

				case '\r', '\n', '\u2028', '\u2029':
					lexer.step()
					lexer.ApproximateNewlineCount++

				default:
					lexer.step()
				}
			}
			lexer.Token = TStringLiteral
			lexer.start = originalStart
			lexer.StringLiteral = utf16.Encode([]rune(lexer.source.Contents[originalStart:lexer.end]))
		}

		return
	}
}

// UTF16ToString converts the lexer's UTF-16 string storage back to a Go
// string, preserving unpaired surrogates via WTF-8 style replacement.
func UTF16ToString(text []uint16) string {
	return string(utf16.Decode(text))
}

func StringToUTF16(text string) []uint16 {
	return utf16.Encode([]rune(text))
}

func UTF16EqualsString(text []uint16, str string) bool {
	i := 0
	for _, c := range str {
		if c <= 0xFFFF {
			if i >= len(text) || text[i] != uint16(c) {
				return false
			}
			i++
		} else {
			c -= 0x10000
			if i+1 >= len(text) || text[i] != uint16(0xD800+((c>>10)&0x3FF)) || text[i+1] != uint16(0xDC00+(c&0x3FF)) {
				return false
			}
			i += 2
		}
	}
	return i == len(text)
}
