package js_parser

import (
	"testing"

	"github.com/routec/routec/internal/js_ast"
	"github.com/routec/routec/internal/js_printer"
	"github.com/routec/routec/internal/logger"
	"github.com/routec/routec/internal/test"
)

func expectParseErrorCommon(t *testing.T, contents string, expected string, options Options) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog()
		source := test.SourceForTest(contents)
		Parse(log, source, options)
		text := ""
		for _, msg := range log.Done() {
			text += msg.String(logger.StderrOptions{}, logger.TerminalInfo{})
		}
		test.AssertEqualWithDiff(t, text, expected)
	})
}

func expectParseError(t *testing.T, contents string, expected string) {
	t.Helper()
	expectParseErrorCommon(t, contents, expected, Options{})
}

func expectParseErrorTS(t *testing.T, contents string, expected string) {
	t.Helper()
	expectParseErrorCommon(t, contents, expected, Options{TS: true})
}

func expectPrintedCommon(t *testing.T, contents string, expected string, options Options) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog()
		source := test.SourceForTest(contents)
		tree, ok := Parse(log, source, options)
		msgs := log.Done()
		text := ""
		for _, msg := range msgs {
			text += msg.String(logger.StderrOptions{}, logger.TerminalInfo{})
		}
		test.AssertEqualWithDiff(t, text, "")
		if !ok {
			t.Fatal("Parse error")
		}
		result := js_printer.Print(tree, js_printer.Options{})
		test.AssertEqualWithDiff(t, string(result.JS), expected)
	})
}

func expectPrinted(t *testing.T, contents string, expected string) {
	t.Helper()
	expectPrintedCommon(t, contents, expected, Options{})
}

func expectPrintedTS(t *testing.T, contents string, expected string) {
	t.Helper()
	expectPrintedCommon(t, contents, expected, Options{TS: true})
}

func expectPrintedTSX(t *testing.T, contents string, expected string) {
	t.Helper()
	expectPrintedCommon(t, contents, expected, Options{TS: true, JSX: true})
}

func parseForTest(t *testing.T, contents string, options Options) js_ast.AST {
	t.Helper()
	log := logger.NewDeferLog()
	source := test.SourceForTest(contents)
	tree, ok := Parse(log, source, options)
	if !ok {
		for _, msg := range log.Done() {
			t.Log(msg.String(logger.StderrOptions{}, logger.TerminalInfo{}))
		}
		t.Fatal("Parse error")
	}
	return tree
}

func TestUnexpectedEndOfFile(t *testing.T) {
	expectParseError(t, "export default", "<stdin>: error: Unexpected end of file\n")
	expectParseError(t, "x = (", "<stdin>: error: Unexpected end of file\n")
	expectParseError(t, "function f(", "<stdin>: error: Expected identifier but found end of file\n")
}

func TestASI(t *testing.T) {
	expectPrinted(t, "let x = 1\nlet y = 2", "let x = 1;\nlet y = 2;\n")
	expectPrinted(t, "a()\nb()", "a();\nb();\n")
	expectPrinted(t, "function f() {\n  return\n}", "function f() {\n  return;\n}\n")
}

func TestDestructuring(t *testing.T) {
	expectPrinted(t, "let [a, [b, c]] = d;", "let [a, [b, c]] = d;\n")
	expectPrinted(t, "let { a: { b } } = c;", "let { a: { b } } = c;\n")
	expectPrinted(t, "let [a = 1] = b;", "let [a = 1] = b;\n")
	expectPrinted(t, "let { a = 1 } = b;", "let { a = 1 } = b;\n")
	expectPrinted(t, "let [...a] = b;", "let [...a] = b;\n")
	expectPrinted(t, "let { ...a } = b;", "let { ...a } = b;\n")
	expectPrinted(t, "function f({ a }, [b]) {\n}", "function f({ a }, [b]) {\n}\n")
}

func TestParenthesizedArrowBody(t *testing.T) {
	expectPrinted(t, "let f = () => ({});", "let f = () => ({});\n")
	expectPrinted(t, "let f = () => ({ ok: true });", "let f = () => ({ ok: true });\n")
	expectPrinted(t, "let f = (a) => (a);", "let f = (a) => a;\n")
	expectPrinted(t, "let f = () => (1 + 2);", "let f = () => 1 + 2;\n")
	expectPrintedTSX(t, "let C = () => (<div />);", "let C = () => <div />;\n")
}

func TestScopeResolution(t *testing.T) {
	tree := parseForTest(t, "import { a } from \"m\";\na();\na();", Options{})

	found := false
	for ref, namedImport := range tree.NamedImports {
		if namedImport.Alias == "a" {
			found = true
			test.AssertEqual(t, tree.ImportRecords[namedImport.ImportRecordIndex].Path, "m")
			test.AssertEqual(t, tree.Symbols[ref].UseCountEstimate, uint32(2))
		}
	}
	if !found {
		t.Fatal("Expected a named import")
	}
}

func TestShadowing(t *testing.T) {
	// The inner "a" is a local, so the import is only used once
	tree := parseForTest(t, "import { a } from \"m\";\na();\nfunction f(a) {\n  a();\n}", Options{})

	for ref, namedImport := range tree.NamedImports {
		if namedImport.Alias == "a" {
			test.AssertEqual(t, tree.Symbols[ref].UseCountEstimate, uint32(1))
		}
	}
}

func TestTypeScriptStatements(t *testing.T) {
	expectParseErrorTS(t, "enum Foo {\n}", "<stdin>: error: TypeScript enum syntax is not supported\n")
	expectParseErrorTS(t, "namespace Foo {\n}", "<stdin>: error: TypeScript namespace syntax is not supported\n")
	expectParseErrorTS(t, "module Foo {\n}", "<stdin>: error: TypeScript namespace syntax is not supported\n")
	expectParseErrorTS(t, "declare class Foo {\n}", "<stdin>: error: Ambient \"class\" declarations are not supported\n")
	expectParseErrorTS(t, "declare enum Foo {\n}", "<stdin>: error: Ambient \"enum\" declarations are not supported\n")

	expectPrintedTS(t, "declare const x: number;", "")
	expectPrintedTS(t, "declare let x, y;", "")
	expectPrintedTS(t, "type A = { a: string };", "")
	expectPrintedTS(t, "export type A = B;\nlet x;", "let x;\n")
	expectPrintedTS(t, "export interface A {\n}\nlet x;", "let x;\n")
}

func TestTypeScriptTypes(t *testing.T) {
	expectPrintedTS(t, "let x: A | B = y;", "let x = y;\n")
	expectPrintedTS(t, "let x: A & B = y;", "let x = y;\n")
	expectPrintedTS(t, "let x: A[] = y;", "let x = y;\n")
	expectPrintedTS(t, "let x: [string, number] = y;", "let x = y;\n")
	expectPrintedTS(t, "let x: { a: string } = y;", "let x = y;\n")
	expectPrintedTS(t, "let x: (a: string) => void = y;", "let x = y;\n")
	expectPrintedTS(t, "let x: keyof A = y;", "let x = y;\n")
	expectPrintedTS(t, "let x: typeof y = y;", "let x = y;\n")
	expectPrintedTS(t, "let x: A extends B ? C : D = y;", "let x = y;\n")
	expectPrintedTS(t, "let x: `a${B}` = y;", "let x = y;\n")
	expectPrintedTS(t, "let x: import(\"m\").A = y;", "let x = y;\n")
	expectPrintedTS(t, "let x = y satisfies A;", "let x = y;\n")
	expectPrintedTS(t, "let x = <A>y;", "let x = y;\n")
	expectPrintedTS(t, "f<number>(x);", "f(x);\n")
	expectPrintedTS(t, "let x = a < b;", "let x = a < b;\n")
	expectPrintedTS(t, "class Foo<T> implements Bar {\n}", "class Foo {\n}\n")
}

func TestTSX(t *testing.T) {
	expectPrintedTSX(t, "let el = <div a={b}>text</div>;", "let el = <div a={b}>text</div>;\n")
	expectPrintedTSX(t, "let el = <Foo.Bar />;", "let el = <Foo.Bar />;\n")
	expectPrintedTSX(t, "let x: number = 1;\nlet el = <a />;", "let x = 1;\nlet el = <a />;\n")
}

func TestImportRecords(t *testing.T) {
	tree := parseForTest(t, "import \"a\";\nimport { b } from \"b\";\nexport * from \"c\";\nx = import(\"d\");", Options{})

	var paths []string
	for _, record := range tree.ImportRecords {
		paths = append(paths, record.Path)
	}
	test.AssertEqualWithDiff(t, paths, []string{"a", "b", "c", "d"})

	kinds := []js_ast.ImportRecordKind{
		tree.ImportRecords[0].Kind,
		tree.ImportRecords[1].Kind,
		tree.ImportRecords[2].Kind,
		tree.ImportRecords[3].Kind,
	}
	test.AssertEqualWithDiff(t, kinds, []js_ast.ImportRecordKind{
		js_ast.ImportStmt,
		js_ast.ImportStmt,
		js_ast.ExportFrom,
		js_ast.ImportDynamic,
	})
}
