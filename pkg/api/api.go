// Package api implements the public interface of routec, a schema-validating
// transformer for route modules. A route module's contract is the shape of
// its default export: either a literal object or a call to a designated
// factory function taking exactly one literal-object argument.
//
// All entry points are pure functions over the supplied source text. No I/O
// is performed and no state is shared between calls, so concurrent use from
// multiple goroutines needs no coordination.
package api

type Target uint8

const (
	// The output runs server code, so server-only fields stay in place and
	// the source text passes through unchanged
	TargetServer Target = iota

	// The output must not ship server-only logic
	TargetClient
)

type Loader uint8

const (
	// Pick a loader from the ModuleID's file extension, defaulting to TSX
	LoaderDefault Loader = iota

	LoaderJS
	LoaderJSX
	LoaderTS
	LoaderTSX
)

type ErrorKind uint8

const (
	KindNone ErrorKind = iota

	// The source text does not parse
	KindSyntax

	// The default export violates the route schema
	KindSchema

	// The factory is referenced somewhere other than the default export
	KindMisuse

	// The factory is imported in a module that must never reference it
	KindImportPresence
)

type Location struct {
	File     string
	Line     int // 1-based
	Column   int // 0-based, in bytes
	Length   int // in bytes
	LineText string
}

type Message struct {
	Kind     ErrorKind
	Text     string
	Location *Location
}

// Factory names the canonical factory function and the exact import path it
// must come from. The zero value means "defineRoute" from "routing-lib".
type Factory struct {
	Name   string
	Source string
}

type TransformOptions struct {
	// An opaque module identifier used in diagnostics and the source map. It
	// is never resolved against the file system.
	ModuleID string

	Target    Target
	Loader    Loader
	Factory   Factory
	Sourcemap bool
}

type TransformResult struct {
	Errors []Message

	Code []byte
	Map  []byte
}

// Transform validates the route module and, for client targets, strips
// server-only fields plus any code left unreferenced by the removal. Server
// targets and no-op client transforms return the input text byte-for-byte.
// On error no output is produced at all.
func Transform(sourceText string, options TransformOptions) TransformResult {
	return transformImpl(sourceText, options)
}

type FieldsOptions struct {
	ModuleID string
	Loader   Loader
	Factory  Factory
}

type FieldsResult struct {
	Errors []Message

	// Recognized field names present in the export, in source order
	Fields []string
}

// ListFields validates the route module and reports which recognized fields
// its export declares.
func ListFields(sourceText string, options FieldsOptions) FieldsResult {
	return listFieldsImpl(sourceText, options)
}

type GuardOptions struct {
	ModuleID string
	Loader   Loader
	Factory  Factory
}

type GuardResult struct {
	Errors []Message
}

// AssertNeverImported reports every import binding of the canonical factory.
// It guards modules that must not reference the factory at all.
func AssertNeverImported(sourceText string, options GuardOptions) GuardResult {
	return assertNeverImportedImpl(sourceText, options)
}
