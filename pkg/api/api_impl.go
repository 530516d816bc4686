package api

import (
	"path"
	"strings"

	"github.com/routec/routec/internal/js_parser"
	"github.com/routec/routec/internal/js_printer"
	"github.com/routec/routec/internal/logger"
	"github.com/routec/routec/internal/routemod"
	"github.com/routec/routec/internal/sourcemap"
)

func convertErrorKind(kind logger.ErrorKind) ErrorKind {
	switch kind {
	case logger.KindSyntax:
		return KindSyntax
	case logger.KindSchema:
		return KindSchema
	case logger.KindMisuse:
		return KindMisuse
	case logger.KindImportPresence:
		return KindImportPresence
	}
	return KindNone
}

func convertMessages(msgs []logger.Msg) []Message {
	var filtered []Message
	for _, msg := range msgs {
		if msg.Kind != logger.Error {
			continue
		}
		converted := Message{
			Kind: convertErrorKind(msg.ErrorKind),
			Text: msg.Text,
		}
		if msg.Location != nil {
			converted.Location = &Location{
				File:     msg.Location.File,
				Line:     msg.Location.Line,
				Column:   msg.Location.Column,
				Length:   msg.Location.Length,
				LineText: msg.Location.LineText,
			}
		}
		filtered = append(filtered, converted)
	}
	return filtered
}

func sourceForModuleID(moduleID string, contents string) logger.Source {
	prettyPath := moduleID
	if prettyPath == "" {
		prettyPath = "<input>"
	}
	return logger.Source{
		Index:          0,
		PrettyPath:     prettyPath,
		IdentifierName: "input",
		Contents:       contents,
	}
}

func parserOptions(moduleID string, loader Loader) js_parser.Options {
	if loader == LoaderDefault {
		switch strings.ToLower(path.Ext(moduleID)) {
		case ".js", ".mjs", ".cjs":
			loader = LoaderJS
		case ".jsx":
			loader = LoaderJSX
		case ".ts", ".mts", ".cts":
			loader = LoaderTS
		default:
			// Unknown extensions get the most permissive grammar
			loader = LoaderTSX
		}
	}

	switch loader {
	case LoaderJS:
		return js_parser.Options{}
	case LoaderJSX:
		return js_parser.Options{JSX: true}
	case LoaderTS:
		return js_parser.Options{TS: true}
	default:
		return js_parser.Options{TS: true, JSX: true}
	}
}

func factoryOrDefault(factory Factory) routemod.Factory {
	result := routemod.DefaultFactory
	if factory.Name != "" {
		result.Name = factory.Name
	}
	if factory.Source != "" {
		result.Source = factory.Source
	}
	return result
}

func transformImpl(sourceText string, options TransformOptions) TransformResult {
	source := sourceForModuleID(options.ModuleID, sourceText)
	log := logger.NewDeferLog()
	tree, ok := js_parser.Parse(log, source, parserOptions(options.ModuleID, options.Loader))
	if !ok {
		return TransformResult{Errors: convertMessages(log.Done())}
	}

	// Misuse is checked before schema shape so that an export like
	// "export default route" where "route" captured the factory call reports
	// the misuse, not the shape violation it causes downstream
	factory := factoryOrDefault(options.Factory)
	if msgs := routemod.CheckFactoryUsage(&source, &tree, factory); len(msgs) > 0 {
		return TransformResult{Errors: convertMessages(msgs)}
	}
	exports, msg := routemod.AnalyzeRouteExport(&source, &tree, factory)
	if msg != nil {
		return TransformResult{Errors: convertMessages([]logger.Msg{*msg})}
	}

	// Identity passthrough: returning the original text avoids formatting
	// drift when nothing was removed
	if options.Target == TargetServer {
		return TransformResult{Code: []byte(sourceText)}
	}
	if !routemod.StripServerOnlyFields(&tree, &exports) {
		return TransformResult{Code: []byte(sourceText)}
	}

	var lineOffsetTables []sourcemap.LineOffsetTable
	if options.Sourcemap {
		lineOffsetTables = sourcemap.GenerateLineOffsetTables(source.Contents, tree.ApproximateLineCount)
	}
	printed := js_printer.Print(tree, js_printer.Options{
		AddSourceMappings: options.Sourcemap,
		LineOffsetTables:  lineOffsetTables,
	})

	result := TransformResult{Code: printed.JS}
	if options.Sourcemap {
		result.Map = generateSourceMap(source, printed.SourceMapChunk)
	}
	return result
}

// generateSourceMap wraps a printer chunk into a complete source map object
// (version 3, single source).
func generateSourceMap(source logger.Source, chunk sourcemap.Chunk) []byte {
	buffer := []byte("{\n  \"version\": 3,\n  \"sources\": [")
	buffer = append(buffer, js_printer.QuoteForJSON(source.PrettyPath)...)
	buffer = append(buffer, "],\n  \"sourcesContent\": ["...)
	buffer = append(buffer, js_printer.QuoteForJSON(source.Contents)...)
	buffer = append(buffer, "],\n  \"mappings\": \""...)
	buffer = append(buffer, chunk.Buffer...)
	buffer = append(buffer, "\",\n  \"names\": []\n}\n"...)
	return buffer
}

func listFieldsImpl(sourceText string, options FieldsOptions) FieldsResult {
	source := sourceForModuleID(options.ModuleID, sourceText)
	log := logger.NewDeferLog()
	tree, ok := js_parser.Parse(log, source, parserOptions(options.ModuleID, options.Loader))
	if !ok {
		return FieldsResult{Errors: convertMessages(log.Done())}
	}

	fields, msg := routemod.ListFields(&source, &tree, factoryOrDefault(options.Factory))
	if msg != nil {
		return FieldsResult{Errors: convertMessages([]logger.Msg{*msg})}
	}
	return FieldsResult{Fields: fields}
}

func assertNeverImportedImpl(sourceText string, options GuardOptions) GuardResult {
	source := sourceForModuleID(options.ModuleID, sourceText)
	log := logger.NewDeferLog()
	tree, ok := js_parser.Parse(log, source, parserOptions(options.ModuleID, options.Loader))
	if !ok {
		return GuardResult{Errors: convertMessages(log.Done())}
	}

	msgs := routemod.CheckFactoryNeverImported(&source, &tree, factoryOrDefault(options.Factory))
	return GuardResult{Errors: convertMessages(msgs)}
}
