package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const routeModule = `import { defineRoute } from "routing-lib";
import { db } from "./db";
function loadUser() {
  return db.query();
}
export default defineRoute({
  params: ["id"],
  serverLoader: () => loadUser(),
  Component: () => null
});
`

func TestTransformServerPassthrough(t *testing.T) {
	result := Transform(routeModule, TransformOptions{
		ModuleID: "app/routes/user.ts",
		Target:   TargetServer,
	})
	require.Empty(t, result.Errors)
	assert.Equal(t, routeModule, string(result.Code))
	assert.Nil(t, result.Map)
}

func TestTransformClientStrips(t *testing.T) {
	result := Transform(routeModule, TransformOptions{
		ModuleID: "app/routes/user.ts",
		Target:   TargetClient,
	})
	require.Empty(t, result.Errors)

	code := string(result.Code)
	assert.NotContains(t, code, "serverLoader")
	assert.NotContains(t, code, "loadUser")
	assert.NotContains(t, code, "./db")
	assert.Contains(t, code, "params")
	assert.Contains(t, code, "Component")
	assert.Contains(t, code, "defineRoute")
}

func TestTransformClientNoOpPassthrough(t *testing.T) {
	// Without server-only fields the input passes through untouched, odd
	// formatting included
	input := "export  default{Component:()=>null,handle :1}\n"
	result := Transform(input, TransformOptions{Target: TargetClient})
	require.Empty(t, result.Errors)
	assert.Equal(t, input, string(result.Code))
}

func TestTransformIdempotent(t *testing.T) {
	once := Transform(routeModule, TransformOptions{
		ModuleID: "app/routes/user.ts",
		Target:   TargetClient,
	})
	require.Empty(t, once.Errors)

	twice := Transform(string(once.Code), TransformOptions{
		ModuleID: "app/routes/user.ts",
		Target:   TargetClient,
	})
	require.Empty(t, twice.Errors)
	assert.Equal(t, string(once.Code), string(twice.Code))
}

func TestTransformSyntaxError(t *testing.T) {
	result := Transform("export default", TransformOptions{ModuleID: "broken.ts"})
	require.Len(t, result.Errors, 1)
	assert.Equal(t, KindSyntax, result.Errors[0].Kind)
	assert.Equal(t, "Unexpected end of file", result.Errors[0].Text)
	require.NotNil(t, result.Errors[0].Location)
	assert.Equal(t, "broken.ts", result.Errors[0].Location.File)
	assert.Nil(t, result.Code)
}

func TestTransformSchemaError(t *testing.T) {
	result := Transform(`let shared = {};
export default { ...shared };
`, TransformOptions{})
	require.Len(t, result.Errors, 1)
	assert.Equal(t, KindSchema, result.Errors[0].Kind)
	assert.Equal(t, "Properties cannot be spread into the export", result.Errors[0].Text)
	assert.Nil(t, result.Code)
}

func TestTransformMisuseError(t *testing.T) {
	result := Transform(`import { defineRoute } from "routing-lib";
const route = defineRoute({ Component: 1 });
export default route;
`, TransformOptions{})
	require.Len(t, result.Errors, 1)
	assert.Equal(t, KindMisuse, result.Errors[0].Kind)
	assert.Equal(t,
		"\"defineRoute\" can only be called directly in \"export default defineRoute(...)\"",
		result.Errors[0].Text)
}

func TestTransformParenthesizedComponent(t *testing.T) {
	result := Transform(`export default {
  Component: () => ({ ok: true }),
  serverLoader: () => null
};
`, TransformOptions{Target: TargetClient})
	require.Empty(t, result.Errors)

	code := string(result.Code)
	assert.NotContains(t, code, "serverLoader")
	assert.Contains(t, code, "({ ok: true })")
}

func TestTransformMisusePrecedesSchema(t *testing.T) {
	// Capturing the factory call makes the default export the wrong shape
	// too; the misuse is the root cause and the one reported
	result := Transform(`import { defineRoute } from "routing-lib";
const route = defineRoute({ serverLoader: 1 });
export default route;
`, TransformOptions{Target: TargetClient})
	require.Len(t, result.Errors, 1)
	assert.Equal(t, KindMisuse, result.Errors[0].Kind)
}

func TestTransformSourcemap(t *testing.T) {
	result := Transform(routeModule, TransformOptions{
		ModuleID:  "app/routes/user.ts",
		Target:    TargetClient,
		Sourcemap: true,
	})
	require.Empty(t, result.Errors)
	require.NotNil(t, result.Map)

	var decoded struct {
		Version        int      `json:"version"`
		Sources        []string `json:"sources"`
		SourcesContent []string `json:"sourcesContent"`
		Mappings       string   `json:"mappings"`
		Names          []string `json:"names"`
	}
	require.NoError(t, json.Unmarshal(result.Map, &decoded))
	assert.Equal(t, 3, decoded.Version)
	assert.Equal(t, []string{"app/routes/user.ts"}, decoded.Sources)
	assert.Equal(t, []string{routeModule}, decoded.SourcesContent)
	assert.NotEmpty(t, decoded.Mappings)
}

func TestTransformSourcemapOnlyWhenPrinting(t *testing.T) {
	// Passthrough results carry no map since the output is the input
	result := Transform(routeModule, TransformOptions{
		Target:    TargetServer,
		Sourcemap: true,
	})
	require.Empty(t, result.Errors)
	assert.Nil(t, result.Map)
}

func TestTransformCustomFactory(t *testing.T) {
	input := `import { route } from "@app/router";
export default route({ serverAction: 1, Component: 2 });
`
	options := TransformOptions{
		Target:  TargetClient,
		Factory: Factory{Name: "route", Source: "@app/router"},
	}

	result := Transform(input, options)
	require.Empty(t, result.Errors)
	assert.NotContains(t, string(result.Code), "serverAction")

	// The default factory does not recognize the call at all
	result = Transform(input, TransformOptions{Target: TargetClient})
	require.Len(t, result.Errors, 1)
	assert.Equal(t, KindSchema, result.Errors[0].Kind)
}

func TestTransformLoaderInference(t *testing.T) {
	typed := `export default { Component: null as any, headers: 1 };
`
	result := Transform(typed, TransformOptions{ModuleID: "route.ts", Target: TargetClient})
	require.Empty(t, result.Errors)
	assert.NotContains(t, string(result.Code), "headers")

	// The same text under an explicit JS loader fails to parse
	result = Transform(typed, TransformOptions{ModuleID: "route.ts", Loader: LoaderJS})
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, KindSyntax, result.Errors[0].Kind)

	jsx := `export default { Component: () => <div />, headers: 1 };
`
	result = Transform(jsx, TransformOptions{ModuleID: "route.jsx", Target: TargetClient})
	require.Empty(t, result.Errors)
	assert.Contains(t, string(result.Code), "<div />")
}

func TestListFields(t *testing.T) {
	result := ListFields(`export default {
  params: ["id"],
  custom: 1,
  serverLoader: 2,
  Component: 3
};
`, FieldsOptions{ModuleID: "route.ts"})
	require.Empty(t, result.Errors)
	assert.Equal(t, []string{"params", "serverLoader", "Component"}, result.Fields)
}

func TestListFieldsError(t *testing.T) {
	result := ListFields("export default 1;\n", FieldsOptions{})
	require.Len(t, result.Errors, 1)
	assert.Equal(t, KindSchema, result.Errors[0].Kind)
	assert.Nil(t, result.Fields)
}

func TestAssertNeverImported(t *testing.T) {
	clean := AssertNeverImported(`import { helper } from "./util";
export function shared() {
}
`, GuardOptions{ModuleID: "util.ts"})
	assert.Empty(t, clean.Errors)

	violation := AssertNeverImported(`import { defineRoute } from "routing-lib";
export function shared() {
}
`, GuardOptions{ModuleID: "util.ts"})
	require.Len(t, violation.Errors, 1)
	assert.Equal(t, KindImportPresence, violation.Errors[0].Kind)
	assert.Equal(t,
		"\"defineRoute\" must not be imported from \"routing-lib\" in this module",
		violation.Errors[0].Text)
	assert.Equal(t, "util.ts", violation.Errors[0].Location.File)
}

func TestConcurrentTransforms(t *testing.T) {
	done := make(chan bool)
	for i := 0; i < 8; i++ {
		go func() {
			for j := 0; j < 25; j++ {
				result := Transform(routeModule, TransformOptions{
					ModuleID: "app/routes/user.ts",
					Target:   TargetClient,
				})
				if len(result.Errors) > 0 {
					t.Error("unexpected errors")
					break
				}
			}
			done <- true
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
