package routemod

import (
	"testing"

	"github.com/routec/routec/internal/js_ast"
	"github.com/routec/routec/internal/js_parser"
	"github.com/routec/routec/internal/logger"
	"github.com/routec/routec/internal/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseForTest(t *testing.T, contents string) (logger.Source, js_ast.AST) {
	t.Helper()
	source := test.SourceForTest(contents)
	log := logger.NewDeferLog()
	tree, ok := js_parser.Parse(log, source, js_parser.Options{TS: true, JSX: true})
	if !ok {
		for _, msg := range log.Done() {
			t.Log(msg.String(logger.StderrOptions{}, logger.TerminalInfo{}))
		}
		t.Fatal("Parse error")
	}
	return source, tree
}

func analyze(t *testing.T, contents string) (RouteExports, *logger.Msg) {
	t.Helper()
	source, tree := parseForTest(t, contents)
	return AnalyzeRouteExport(&source, &tree, DefaultFactory)
}

func propertyNames(exports RouteExports) []string {
	var names []string
	for _, property := range exports.Properties {
		names = append(names, property.Name)
	}
	return names
}

func TestAnalyzePlainObject(t *testing.T) {
	exports, msg := analyze(t, `export default { Component: () => null, handle: { x: 1 } };`)
	require.Nil(t, msg)
	require.NotNil(t, exports.Object)
	assert.Nil(t, exports.FactoryCall)
	assert.Equal(t, []string{"Component", "handle"}, propertyNames(exports))
}

func TestAnalyzeFactoryCall(t *testing.T) {
	exports, msg := analyze(t, `import { defineRoute } from "routing-lib";
export default defineRoute({ meta: () => [] });`)
	require.Nil(t, msg)
	require.NotNil(t, exports.Object)
	assert.NotNil(t, exports.FactoryCall)
	assert.Equal(t, []string{"meta"}, propertyNames(exports))
}

func TestAnalyzeAliasedFactoryImport(t *testing.T) {
	// The canonical identity is the external name, not the local alias
	exports, msg := analyze(t, `import { defineRoute as dr } from "routing-lib";
export default dr({ meta: 1 });`)
	require.Nil(t, msg)
	assert.NotNil(t, exports.FactoryCall)
}

func TestAnalyzeMissingDefaultExport(t *testing.T) {
	_, msg := analyze(t, `let x = 1;`)
	require.NotNil(t, msg)
	assert.Equal(t, logger.KindSchema, msg.ErrorKind)
	assert.Equal(t, "The default export must be a literal object or a call to the designated factory", msg.Text)
}

func TestAnalyzeWrongShape(t *testing.T) {
	notObjectOrCall := "The default export must be a literal object or a call to the designated factory"

	_, msg := analyze(t, `export default function() {
}`)
	require.NotNil(t, msg)
	assert.Equal(t, notObjectOrCall, msg.Text)

	_, msg = analyze(t, `export default 1;`)
	require.NotNil(t, msg)
	assert.Equal(t, notObjectOrCall, msg.Text)

	// A call to something that is not the canonical factory
	_, msg = analyze(t, `function f() {
  return null;
}
export default f({});`)
	require.NotNil(t, msg)
	assert.Equal(t, notObjectOrCall, msg.Text)

	// The right name imported from the wrong source
	_, msg = analyze(t, `import { defineRoute } from "other-lib";
export default defineRoute({});`)
	require.NotNil(t, msg)
	assert.Equal(t, notObjectOrCall, msg.Text)

	// A default import is never the canonical factory
	_, msg = analyze(t, `import defineRoute from "routing-lib";
export default defineRoute({});`)
	require.NotNil(t, msg)
	assert.Equal(t, notObjectOrCall, msg.Text)
}

func TestAnalyzeFactoryArguments(t *testing.T) {
	_, msg := analyze(t, `import { defineRoute } from "routing-lib";
export default defineRoute({}, {});`)
	require.NotNil(t, msg)
	assert.Equal(t, "The factory must take exactly one argument", msg.Text)

	_, msg = analyze(t, `import { defineRoute } from "routing-lib";
export default defineRoute();`)
	require.NotNil(t, msg)
	assert.Equal(t, "The factory must take exactly one argument", msg.Text)

	_, msg = analyze(t, `import { defineRoute } from "routing-lib";
export default defineRoute(1);`)
	require.NotNil(t, msg)
	assert.Equal(t, "The factory argument must be a literal object", msg.Text)
}

func TestAnalyzeSpread(t *testing.T) {
	_, msg := analyze(t, `let shared = {}, X = 1;
export default { ...shared, Component: X };`)
	require.NotNil(t, msg)
	assert.Equal(t, logger.KindSchema, msg.ErrorKind)
	assert.Equal(t, "Properties cannot be spread into the export", msg.Text)
}

func TestAnalyzeComputedKeys(t *testing.T) {
	_, msg := analyze(t, `let key = "a", fn = 1;
export default { [key]: fn };`)
	require.NotNil(t, msg)
	assert.Equal(t, "The export cannot have computed keys", msg.Text)

	_, msg = analyze(t, `export default { 1: 2 };`)
	require.NotNil(t, msg)
	assert.Equal(t, "The export cannot have computed keys", msg.Text)
}

func TestAnalyzeParams(t *testing.T) {
	_, msg := analyze(t, `export default { params: ["id", "tab"] };`)
	assert.Nil(t, msg)

	_, msg = analyze(t, `export default { params: 1 };`)
	require.NotNil(t, msg)
	assert.Equal(t, "\"params\" must be a literal array", msg.Text)

	_, msg = analyze(t, `export default { params: [1] };`)
	require.NotNil(t, msg)
	assert.Equal(t, "Each param must be a literal string", msg.Text)

	_, msg = analyze(t, `let id = "id";
export default { params: [id] };`)
	require.NotNil(t, msg)
	assert.Equal(t, "Each param must be a literal string", msg.Text)
}

func TestAnalyzeFirstViolationWins(t *testing.T) {
	// The spread comes first in source order, so it is the one reported
	_, msg := analyze(t, `let a = {}, b = "k", c = 1;
export default { ...a, [b]: c, params: 1 };`)
	require.NotNil(t, msg)
	assert.Equal(t, "Properties cannot be spread into the export", msg.Text)
}

func TestAnalyzeDuplicateKeys(t *testing.T) {
	// Duplicates are recorded in order, never rejected
	exports, msg := analyze(t, `export default { meta: 1, meta: 2 };`)
	require.Nil(t, msg)
	assert.Equal(t, []string{"meta", "meta"}, propertyNames(exports))

	property, ok := exports.Property("meta")
	require.True(t, ok)
	assert.Equal(t, 1, property.Index)
}

func TestAnalyzeUnrecognizedFieldsAccepted(t *testing.T) {
	exports, msg := analyze(t, `export default { custom: 1, Component: 2 };`)
	require.Nil(t, msg)
	assert.Equal(t, []string{"custom", "Component"}, propertyNames(exports))
}

func TestAnalyzeErrorLocation(t *testing.T) {
	_, msg := analyze(t, `export default { params: 1 };`)
	require.NotNil(t, msg)
	require.NotNil(t, msg.Location)
	assert.Equal(t, 1, msg.Location.Line)
	assert.Equal(t, 25, msg.Location.Column)
}

func TestListFields(t *testing.T) {
	source, tree := parseForTest(t, `export default { params: ["id"], Component: 1, serverLoader: 2 };`)
	fields, msg := ListFields(&source, &tree, DefaultFactory)
	require.Nil(t, msg)
	assert.Equal(t, []string{"params", "Component", "serverLoader"}, fields)
}

func TestListFieldsFiltersAndDeduplicates(t *testing.T) {
	source, tree := parseForTest(t, `export default { custom: 1, meta: 2, meta: 3, headers: 4 };`)
	fields, msg := ListFields(&source, &tree, DefaultFactory)
	require.Nil(t, msg)
	assert.Equal(t, []string{"meta", "headers"}, fields)
}

func TestListFieldsPropagatesErrors(t *testing.T) {
	source, tree := parseForTest(t, `export default 1;`)
	fields, msg := ListFields(&source, &tree, DefaultFactory)
	require.NotNil(t, msg)
	assert.Nil(t, fields)
}

func TestIsCanonicalImport(t *testing.T) {
	_, tree := parseForTest(t, `import { defineRoute } from "routing-lib";
import * as ns from "routing-lib";
defineRoute;
ns;`)

	for ref, namedImport := range tree.NamedImports {
		switch namedImport.Alias {
		case "defineRoute":
			assert.True(t, IsCanonicalImport(&tree, ref, "defineRoute", "routing-lib"))
			assert.False(t, IsCanonicalImport(&tree, ref, "defineRoute", "other"))
			assert.False(t, IsCanonicalImport(&tree, ref, "other", "routing-lib"))
		case "*":
			assert.False(t, IsCanonicalImport(&tree, ref, "*", "routing-lib"))
		}
	}
}
