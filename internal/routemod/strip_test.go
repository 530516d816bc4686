package routemod

import (
	"testing"

	"github.com/routec/routec/internal/js_printer"
	"github.com/routec/routec/internal/test"
	"github.com/stretchr/testify/require"
)

func stripForTest(t *testing.T, contents string) (string, bool) {
	t.Helper()
	source, tree := parseForTest(t, contents)
	exports, msg := AnalyzeRouteExport(&source, &tree, DefaultFactory)
	require.Nil(t, msg)
	changed := StripServerOnlyFields(&tree, &exports)
	result := js_printer.Print(tree, js_printer.Options{})
	return string(result.JS), changed
}

func expectStripped(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		printed, changed := stripForTest(t, contents)
		require.True(t, changed)
		test.AssertEqualWithDiff(t, printed, expected)
	})
}

func TestStripRemovesServerOnlyFields(t *testing.T) {
	expectStripped(t,
		`export default { serverLoader: 1, Component: 2, headers: 3, serverAction: 4, handle: 5 };`,
		"export default { Component: 2, handle: 5 };\n")
}

func TestStripNothingToRemove(t *testing.T) {
	_, changed := stripForTest(t,
		`export default { clientLoader: 1, Component: 2 };`)
	require.False(t, changed)

	_, changed = stripForTest(t,
		`import { defineRoute } from "routing-lib";
export default defineRoute({ meta: 1 });`)
	require.False(t, changed)
}

func TestStripDeadFunction(t *testing.T) {
	expectStripped(t,
		`import { defineRoute } from "routing-lib";
import { db } from "./db";
import { json } from "./http";
function loadUser() {
  return db.query();
}
export default defineRoute({ serverLoader: () => loadUser(), Component: () => json });`,
		`import { defineRoute } from "routing-lib";
import { json } from "./http";
export default defineRoute({ Component: () => json });
`)
}

func TestStripTransitiveHelpers(t *testing.T) {
	expectStripped(t,
		`function inner() {
  return 1;
}
function outer() {
  return inner();
}
export default { serverLoader: () => outer(), Component: 1 };`,
		"export default { Component: 1 };\n")
}

func TestStripSelfRecursiveHelper(t *testing.T) {
	// A recursive function's self-reference does not keep it alive
	expectStripped(t,
		`function helper() {
  return helper();
}
export default { headers: () => helper() };`,
		"export default {};\n")
}

func TestStripKeepsSharedHelper(t *testing.T) {
	expectStripped(t,
		`function load() {
  return 1;
}
export default { serverLoader: () => load(), clientLoader: () => load(), Component: 1 };`,
		`function load() {
  return 1;
}
export default { clientLoader: () => load(), Component: 1 };
`)
}

func TestStripLocalDeclarators(t *testing.T) {
	expectStripped(t,
		`const secret = "s", visible = "v";
export default { headers: () => secret, Component: () => visible };`,
		`const visible = "v";
export default { Component: () => visible };
`)
}

func TestStripDeadClass(t *testing.T) {
	expectStripped(t,
		`class Store {
}
export default { serverAction: () => new Store(), Component: 1 };`,
		"export default { Component: 1 };\n")
}

func TestStripExportsNeverRemoved(t *testing.T) {
	expectStripped(t,
		`export function audit(level) {
  return level;
}
export const level = 1;
export default { headers: () => audit(level) };`,
		`export function audit(level) {
  return level;
}
export const level = 1;
export default {};
`)
}

func TestStripSideEffectImportKept(t *testing.T) {
	expectStripped(t,
		`import "./polyfill";
import { log } from "./log";
export default { serverAction: () => log(), Component: 1 };`,
		`import "./polyfill";
export default { Component: 1 };
`)
}

func TestStripDefaultAndNamespaceImports(t *testing.T) {
	expectStripped(t,
		`import db from "./db";
import * as http from "./http";
export default { serverLoader: () => db.q(http), Component: 1 };`,
		"export default { Component: 1 };\n")
}

func TestStripPartialImportClause(t *testing.T) {
	expectStripped(t,
		`import { a, b } from "./m";
export default { headers: () => a, Component: () => b };`,
		`import { b } from "./m";
export default { Component: () => b };
`)
}

func TestStripDuplicateServerField(t *testing.T) {
	// Both occurrences of a duplicated server-only key are removed
	expectStripped(t,
		`export default { headers: 1, headers: 2, Component: 3 };`,
		"export default { Component: 3 };\n")
}
