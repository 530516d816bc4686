package routemod

import (
	"testing"

	"github.com/routec/routec/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const misuseText = "\"defineRoute\" can only be called directly in \"export default defineRoute(...)\""
const importPresenceText = "\"defineRoute\" must not be imported from \"routing-lib\" in this module"

func checkUsage(t *testing.T, contents string) []logger.Msg {
	t.Helper()
	source, tree := parseForTest(t, contents)
	return CheckFactoryUsage(&source, &tree, DefaultFactory)
}

func checkNeverImported(t *testing.T, contents string) []logger.Msg {
	t.Helper()
	source, tree := parseForTest(t, contents)
	return CheckFactoryNeverImported(&source, &tree, DefaultFactory)
}

func TestUsageLegalDirectCall(t *testing.T) {
	msgs := checkUsage(t, `import { defineRoute } from "routing-lib";
export default defineRoute({ Component: () => null });`)
	assert.Empty(t, msgs)
}

func TestUsageNotImported(t *testing.T) {
	// A local named "defineRoute" is not the canonical factory
	msgs := checkUsage(t, `function defineRoute(o) {
  return o;
}
export default defineRoute({});`)
	assert.Empty(t, msgs)
}

func TestUsageAssignedToVariable(t *testing.T) {
	msgs := checkUsage(t, `import { defineRoute } from "routing-lib";
const route = defineRoute({ Component: () => null });
export default route;`)
	require.Len(t, msgs, 1)
	assert.Equal(t, logger.KindMisuse, msgs[0].ErrorKind)
	assert.Equal(t, misuseText, msgs[0].Text)
	require.NotNil(t, msgs[0].Location)
	assert.Equal(t, 2, msgs[0].Location.Line)
	assert.Equal(t, 14, msgs[0].Location.Column)
	assert.Equal(t, len("defineRoute"), msgs[0].Location.Length)
}

func TestUsageEveryUseReported(t *testing.T) {
	// The direct callee is legal, the other two uses are not
	msgs := checkUsage(t, `import { defineRoute } from "routing-lib";
let alias = defineRoute;
someArray.map(defineRoute);
export default defineRoute({});`)
	require.Len(t, msgs, 2)
	assert.Equal(t, 2, msgs[0].Location.Line)
	assert.Equal(t, 3, msgs[1].Location.Line)
}

func TestUsageReExport(t *testing.T) {
	msgs := checkUsage(t, `import { defineRoute } from "routing-lib";
export { defineRoute };
export default defineRoute({});`)
	require.Len(t, msgs, 1)
	assert.Equal(t, 2, msgs[0].Location.Line)
}

func TestUsageNestedCall(t *testing.T) {
	// Calling the factory anywhere except the default-export position is
	// still a misuse even though it is a direct call
	msgs := checkUsage(t, `import { defineRoute } from "routing-lib";
function make() {
  return defineRoute({});
}
export default make();`)
	require.Len(t, msgs, 1)
	assert.Equal(t, 3, msgs[0].Location.Line)
}

func TestUsageShadowingNotFlagged(t *testing.T) {
	msgs := checkUsage(t, `import { defineRoute } from "routing-lib";
function f(defineRoute) {
  return defineRoute({});
}
export default defineRoute({});`)
	assert.Empty(t, msgs)
}

func TestUsageAliasedImport(t *testing.T) {
	msgs := checkUsage(t, `import { defineRoute as dr } from "routing-lib";
let x = dr;
export default dr({});`)
	require.Len(t, msgs, 1)
	assert.Equal(t, 2, msgs[0].Location.Line)
}

func TestNeverImportedClean(t *testing.T) {
	msgs := checkNeverImported(t, `import { other } from "routing-lib";
import { defineRoute } from "not-routing-lib";
export function helper() {
}`)
	assert.Empty(t, msgs)
}

func TestNeverImportedViolation(t *testing.T) {
	msgs := checkNeverImported(t, `import { defineRoute } from "routing-lib";
export function helper() {
}`)
	require.Len(t, msgs, 1)
	assert.Equal(t, logger.KindImportPresence, msgs[0].ErrorKind)
	assert.Equal(t, importPresenceText, msgs[0].Text)
	require.NotNil(t, msgs[0].Location)
	assert.Equal(t, 1, msgs[0].Location.Line)
}

func TestNeverImportedMultiple(t *testing.T) {
	msgs := checkNeverImported(t, `import { defineRoute } from "routing-lib";
import { defineRoute as dr } from "routing-lib";`)
	require.Len(t, msgs, 2)
	assert.Equal(t, 1, msgs[0].Location.Line)
	assert.Equal(t, 2, msgs[1].Location.Line)
}
