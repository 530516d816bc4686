package js_printer

import (
	"strings"
	"testing"

	"github.com/routec/routec/internal/js_parser"
	"github.com/routec/routec/internal/logger"
	"github.com/routec/routec/internal/sourcemap"
	"github.com/routec/routec/internal/test"
)

func expectPrintedCommon(t *testing.T, contents string, expected string, options js_parser.Options) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog()
		source := test.SourceForTest(contents)
		tree, ok := js_parser.Parse(log, source, options)
		msgs := log.Done()
		text := ""
		for _, msg := range msgs {
			text += msg.String(logger.StderrOptions{}, logger.TerminalInfo{})
		}
		test.AssertEqualWithDiff(t, text, "")
		if !ok {
			t.Fatal("Parse error")
		}
		result := Print(tree, Options{})
		test.AssertEqualWithDiff(t, string(result.JS), expected)
	})
}

func expectPrinted(t *testing.T, contents string, expected string) {
	t.Helper()
	expectPrintedCommon(t, contents, expected, js_parser.Options{})
}

func expectPrintedJSX(t *testing.T, contents string, expected string) {
	t.Helper()
	expectPrintedCommon(t, contents, expected, js_parser.Options{JSX: true})
}

func expectPrintedTS(t *testing.T, contents string, expected string) {
	t.Helper()
	expectPrintedCommon(t, contents, expected, js_parser.Options{TS: true})
}

func TestNumber(t *testing.T) {
	expectPrinted(t, "x = 0;", "x = 0;\n")
	expectPrinted(t, "x = 123;", "x = 123;\n")
	expectPrinted(t, "x = 123.456;", "x = 123.456;\n")
	expectPrinted(t, "x = 1e100;", "x = 1e100;\n")
	expectPrinted(t, "x = 1000;", "x = 1e3;\n")
	expectPrinted(t, "x = 0.001;", "x = 1e-3;\n")
	expectPrinted(t, "x = -0;", "x = -0;\n")
	expectPrinted(t, "x = (1).toString();", "x = 1 .toString();\n")
}

func TestString(t *testing.T) {
	expectPrinted(t, "x = 'abc';", "x = \"abc\";\n")
	expectPrinted(t, "x = \"abc\";", "x = \"abc\";\n")
	expectPrinted(t, "x = 'a\"b';", "x = 'a\"b';\n")
	expectPrinted(t, "x = '\\n';", "x = \"\\n\";\n")
}

func TestTemplate(t *testing.T) {
	expectPrinted(t, "x = `abc`;", "x = `abc`;\n")
	expectPrinted(t, "x = `a${b}c`;", "x = `a${b}c`;\n")
	expectPrinted(t, "x = tag`a${b}`;", "x = tag`a${b}`;\n")
	expectPrinted(t, "x = `\\n`;", "x = `\\n`;\n")
}

func TestOperators(t *testing.T) {
	expectPrinted(t, "x = 1 + 2;", "x = 1 + 2;\n")
	expectPrinted(t, "x = a * b + c;", "x = a * b + c;\n")
	expectPrinted(t, "x = a * (b + c);", "x = a * (b + c);\n")
	expectPrinted(t, "x = a ?? b;", "x = a ?? b;\n")
	expectPrinted(t, "x = (a || b) ?? c;", "x = (a || b) ?? c;\n")
	expectPrinted(t, "x = a ?? (b && c);", "x = a ?? (b && c);\n")
	expectPrinted(t, "x = (-1) ** b;", "x = (-1) ** b;\n")
	expectPrinted(t, "x = typeof y === 'string';", "x = typeof y === \"string\";\n")
	expectPrinted(t, "x = a, b;", "x = a, b;\n")
	expectPrinted(t, "x = (a, b);", "x = (a, b);\n")
	expectPrinted(t, "x = a ? b : c;", "x = a ? b : c;\n")
	expectPrinted(t, "x = a ? b : c ? d : e;", "x = a ? b : c ? d : e;\n")
	expectPrinted(t, "x = (a ? b : c) ? d : e;", "x = (a ? b : c) ? d : e;\n")
	expectPrinted(t, "x = +(+y);", "x = + +y;\n")
	expectPrinted(t, "x = -(-y);", "x = - -y;\n")
	expectPrinted(t, "x = !!y;", "x = !!y;\n")
	expectPrinted(t, "x++;", "x++;\n")
	expectPrinted(t, "--x;", "--x;\n")
	expectPrinted(t, "x in y;", "x in y;\n")
	expectPrinted(t, "delete x.y;", "delete x.y;\n")
	expectPrinted(t, "void 0;", "void 0;\n")
}

func TestOptionalChain(t *testing.T) {
	expectPrinted(t, "a?.b;", "a?.b;\n")
	expectPrinted(t, "a?.[b];", "a?.[b];\n")
	expectPrinted(t, "a?.();", "a?.();\n")
	expectPrinted(t, "a?.b.c;", "a?.b.c;\n")
	expectPrinted(t, "(a?.b).c;", "(a?.b).c;\n")
	expectPrinted(t, "(a?.b)();", "(a?.b)();\n")
}

func TestCall(t *testing.T) {
	expectPrinted(t, "f();", "f();\n")
	expectPrinted(t, "f(a, b);", "f(a, b);\n")
	expectPrinted(t, "f(...a);", "f(...a);\n")
	expectPrinted(t, "new Foo();", "new Foo();\n")
	expectPrinted(t, "new Foo(a);", "new Foo(a);\n")
	expectPrinted(t, "new (f())();", "new (f())();\n")
	expectPrinted(t, "(new Foo()).bar;", "new Foo().bar;\n")
}

func TestObject(t *testing.T) {
	expectPrinted(t, "x = {};", "x = {};\n")
	expectPrinted(t, "x = { a: 1 };", "x = { a: 1 };\n")
	expectPrinted(t, "x = { a: 1, b: 2 };", "x = { a: 1, b: 2 };\n")
	expectPrinted(t, "x = { a };", "x = { a };\n")
	expectPrinted(t, "x = { 'a-b': 1 };", "x = { \"a-b\": 1 };\n")
	expectPrinted(t, "x = { [a]: 1 };", "x = { [a]: 1 };\n")
	expectPrinted(t, "x = { ...a };", "x = { ...a };\n")
	expectPrinted(t, "x = { a() {\n} };", "x = { a() {\n} };\n")
	expectPrinted(t, "({ a } = b);", "({ a } = b);\n")
	expectPrinted(t, "x = {\n  a: 1\n};", "x = {\n  a: 1\n};\n")
}

func TestArray(t *testing.T) {
	expectPrinted(t, "x = [];", "x = [];\n")
	expectPrinted(t, "x = [1, 2];", "x = [1, 2];\n")
	expectPrinted(t, "x = [, 1];", "x = [, 1];\n")
	expectPrinted(t, "x = [...a];", "x = [...a];\n")
}

func TestFunction(t *testing.T) {
	expectPrinted(t, "function f() {\n}", "function f() {\n}\n")
	expectPrinted(t, "function f(a, b) {\n}", "function f(a, b) {\n}\n")
	expectPrinted(t, "function f(a = 1) {\n}", "function f(a = 1) {\n}\n")
	expectPrinted(t, "function f(...a) {\n}", "function f(...a) {\n}\n")
	expectPrinted(t, "async function f() {\n}", "async function f() {\n}\n")
	expectPrinted(t, "function* f() {\n}", "function* f() {\n}\n")
	expectPrinted(t, "x = function() {\n};", "x = function() {\n};\n")
	expectPrinted(t, "(function() {\n})();", "(function() {\n})();\n")
}

func TestArrow(t *testing.T) {
	expectPrinted(t, "x = () => {\n};", "x = () => {\n};\n")
	expectPrinted(t, "x = (a) => a;", "x = (a) => a;\n")
	expectPrinted(t, "x = a => a;", "x = (a) => a;\n")
	expectPrinted(t, "x = async () => 1;", "x = async () => 1;\n")
	expectPrinted(t, "x = () => ({});", "x = () => ({});\n")
	expectPrinted(t, "f(() => a, () => b);", "f(() => a, () => b);\n")
}

func TestClass(t *testing.T) {
	expectPrinted(t, "class Foo {\n}", "class Foo {\n}\n")
	expectPrinted(t, "class Foo extends Bar {\n}", "class Foo extends Bar {\n}\n")
	expectPrinted(t, "class Foo {\n  bar() {\n  }\n}", "class Foo {\n  bar() {\n  }\n}\n")
	expectPrinted(t, "class Foo {\n  static bar() {\n  }\n}", "class Foo {\n  static bar() {\n  }\n}\n")
	expectPrinted(t, "class Foo {\n  get bar() {\n  }\n}", "class Foo {\n  get bar() {\n  }\n}\n")
	expectPrinted(t, "x = class {\n};", "x = class {\n};\n")
	expectPrinted(t, "(class {\n});", "(class {\n});\n")
}

func TestStatements(t *testing.T) {
	expectPrinted(t, "let x = 1;", "let x = 1;\n")
	expectPrinted(t, "const x = 1, y = 2;", "const x = 1, y = 2;\n")
	expectPrinted(t, "var x;", "var x;\n")
	expectPrinted(t, "let [a, b] = c;", "let [a, b] = c;\n")
	expectPrinted(t, "let { a, b: c } = d;", "let { a, b: c } = d;\n")
	expectPrinted(t, "if (a)\n  b();\nelse\n  c();", "if (a)\n  b();\nelse\n  c();\n")
	expectPrinted(t, "if (a) {\n  b();\n}", "if (a) {\n  b();\n}\n")
	expectPrinted(t, "if (a) {\n  b();\n} else {\n  c();\n}", "if (a) {\n  b();\n} else {\n  c();\n}\n")
	expectPrinted(t, "if (a)\n  if (b)\n    c();", "if (a)\n  if (b)\n    c();\n")
	expectPrinted(t, "while (a)\n  b();", "while (a)\n  b();\n")
	expectPrinted(t, "do\n  a();\nwhile (b);", "do\n  a();\nwhile (b);\n")
	expectPrinted(t, "for (let i = 0; i < 10; i++)\n  f();", "for (let i = 0; i < 10; i++)\n  f();\n")
	expectPrinted(t, "for (;;)\n  f();", "for (;;)\n  f();\n")
	expectPrinted(t, "for (let x in y)\n  f();", "for (let x in y)\n  f();\n")
	expectPrinted(t, "for (let x of y)\n  f();", "for (let x of y)\n  f();\n")
	expectPrinted(t, "throw new Error();", "throw new Error();\n")
	expectPrinted(t, "try {\n} catch (e) {\n}", "try {\n} catch (e) {\n}\n")
	expectPrinted(t, "try {\n} catch {\n} finally {\n}", "try {\n} catch {\n} finally {\n}\n")
	expectPrinted(t, "switch (a) {\n  case 1:\n    b();\n    break;\n  default:\n    c();\n}",
		"switch (a) {\n  case 1:\n    b();\n    break;\n  default:\n    c();\n}\n")
	expectPrinted(t, "label:\n  a();", "label:\n  a();\n")
	expectPrinted(t, "loop:\n  for (;;)\n    break loop;", "loop:\n  for (;;)\n    break loop;\n")
	expectPrinted(t, "debugger;", "debugger;\n")
	expectPrinted(t, ";", ";\n")
	expectPrinted(t, "\"use strict\";", "\"use strict\";\n")
}

func TestImport(t *testing.T) {
	expectPrinted(t, "import \"m\";", "import \"m\";\n")
	expectPrinted(t, "import a from \"m\";", "import a from \"m\";\n")
	expectPrinted(t, "import { a } from \"m\";", "import { a } from \"m\";\n")
	expectPrinted(t, "import { a, b as c } from \"m\";", "import { a, b as c } from \"m\";\n")
	expectPrinted(t, "import a, { b } from \"m\";", "import a, { b } from \"m\";\n")
	expectPrinted(t, "import * as ns from \"m\";", "import * as ns from \"m\";\n")
	expectPrinted(t, "x = import(\"m\");", "x = import(\"m\");\n")
}

func TestExport(t *testing.T) {
	expectPrinted(t, "export default 1;", "export default 1;\n")
	expectPrinted(t, "export default {};", "export default {};\n")
	expectPrinted(t, "export default function() {\n}", "export default function() {\n}\n")
	expectPrinted(t, "export default function foo() {\n}", "export default function foo() {\n}\n")
	expectPrinted(t, "export default class {\n}", "export default class {\n}\n")
	expectPrinted(t, "export const x = 1;", "export const x = 1;\n")
	expectPrinted(t, "export function f() {\n}", "export function f() {\n}\n")
	expectPrinted(t, "export { a };", "export { a };\n")
	expectPrinted(t, "export { a as b };", "export { a as b };\n")
	expectPrinted(t, "export { a } from \"m\";", "export { a } from \"m\";\n")
	expectPrinted(t, "export * from \"m\";", "export * from \"m\";\n")
	expectPrinted(t, "export * as ns from \"m\";", "export * as ns from \"m\";\n")
}

func TestAsyncAwait(t *testing.T) {
	expectPrinted(t, "async function f() {\n  await g();\n}", "async function f() {\n  await g();\n}\n")
	expectPrinted(t, "async function f() {\n  x = await g() + 1;\n}", "async function f() {\n  x = await g() + 1;\n}\n")
	expectPrinted(t, "function* f() {\n  yield a;\n}", "function* f() {\n  yield a;\n}\n")
	expectPrinted(t, "function* f() {\n  yield* a;\n}", "function* f() {\n  yield* a;\n}\n")
}

func TestHashbang(t *testing.T) {
	expectPrinted(t, "#!/usr/bin/env node\nlet x;", "#!/usr/bin/env node\nlet x;\n")
}

func TestRegExp(t *testing.T) {
	expectPrinted(t, "x = /y/g;", "x = /y/g;\n")
	expectPrinted(t, "x = a / /b/;", "x = a / /b/;\n")
}

func TestJSX(t *testing.T) {
	expectPrintedJSX(t, "x = <div />;", "x = <div />;\n")
	expectPrintedJSX(t, "x = <div a=\"b\" />;", "x = <div a=\"b\" />;\n")
	expectPrintedJSX(t, "x = <div a={b} />;", "x = <div a={b} />;\n")
	expectPrintedJSX(t, "x = <div a {...b} />;", "x = <div a {...b} />;\n")
	expectPrintedJSX(t, "x = <div>hi</div>;", "x = <div>hi</div>;\n")
	expectPrintedJSX(t, "x = <div>hi {name}</div>;", "x = <div>hi {name}</div>;\n")
	expectPrintedJSX(t, "x = <a.b.c />;", "x = <a.b.c />;\n")
	expectPrintedJSX(t, "x = <>text</>;", "x = <>text</>;\n")
	expectPrintedJSX(t, "x = <div><span>a</span></div>;", "x = <div><span>a</span></div>;\n")
}

func TestTypeScript(t *testing.T) {
	expectPrintedTS(t, "let x: number = 1;", "let x = 1;\n")
	expectPrintedTS(t, "function f(a: string): void {\n}", "function f(a) {\n}\n")
	expectPrintedTS(t, "function f<T>(x: T): T {\n  return x;\n}", "function f(x) {\n  return x;\n}\n")
	expectPrintedTS(t, "x = y as any;", "x = y;\n")
	expectPrintedTS(t, "x = y!;", "x = y;\n")
	expectPrintedTS(t, "interface Foo {\n  a: string;\n}", "")
	expectPrintedTS(t, "type A = B | C;", "")
	expectPrintedTS(t, "import type { A } from \"m\";", "")
}

func TestSourceMap(t *testing.T) {
	contents := "let x = 1;\nlet y = 2;\n"
	log := logger.NewDeferLog()
	source := test.SourceForTest(contents)
	tree, ok := js_parser.Parse(log, source, js_parser.Options{})
	if !ok {
		t.Fatal("Parse error")
	}

	tables := sourcemap.GenerateLineOffsetTables(contents, tree.ApproximateLineCount)
	result := Print(tree, Options{AddSourceMappings: true, LineOffsetTables: tables})
	test.AssertEqualWithDiff(t, string(result.JS), contents)

	mappings := string(result.SourceMapChunk.Buffer)
	if mappings == "" {
		t.Fatal("Expected source mappings")
	}

	// One ";" between the two lines plus one for the trailing newline
	if strings.Count(mappings, ";") != 2 {
		t.Fatalf("Expected two mapping groups, got %q", mappings)
	}

	// The first mapping points at the start of the file
	if !strings.HasPrefix(mappings, "AAAA") {
		t.Fatalf("Expected mappings to start at the origin, got %q", mappings)
	}
}

func TestQuoteForJSON(t *testing.T) {
	test.AssertEqual(t, string(QuoteForJSON("abc")), "\"abc\"")
	test.AssertEqual(t, string(QuoteForJSON("a\"b")), "\"a\\\"b\"")
	test.AssertEqual(t, string(QuoteForJSON("a\nb")), "\"a\\nb\"")
	test.AssertEqual(t, string(QuoteForJSON("\x01")), "\"\\u0001\"")
	test.AssertEqual(t, string(QuoteForJSON("𐀀")), "\"𐀀\"")
}
