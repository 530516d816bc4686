package routemod

import (
	"github.com/routec/routec/internal/js_ast"
	"github.com/routec/routec/internal/js_lexer"
	"github.com/routec/routec/internal/logger"
)

// Factory identifies the canonical factory function that may wrap a route's
// field object. Identity is proven by import-source and imported-name match
// during binding resolution, never by textual name alone.
type Factory struct {
	Name   string
	Source string
}

var DefaultFactory = Factory{Name: "defineRoute", Source: "routing-lib"}

// ExportProperty records one identifier-keyed property of the export object
// in source order. Index is the property's position in the object's property
// list at analysis time.
type ExportProperty struct {
	Name     string
	KeyLoc   logger.Loc
	ValueLoc logger.Loc
	Index    int
}

// RouteExports is the result of matching a module's default export against
// the route schema.
type RouteExports struct {
	// The "export default" statement itself
	ExportLoc logger.Loc

	// The located export object. For "export default defineRoute({...})" this
	// is the factory call's argument and FactoryCall is the call expression.
	// For "export default {...}" FactoryCall is nil.
	Object      *js_ast.EObject
	ObjectLoc   logger.Loc
	FactoryCall *js_ast.ECall

	// Every identifier-keyed property in source order. Later duplicates are
	// still recorded; Property returns the last one, matching redefinition
	// semantics.
	Properties []ExportProperty
}

// Property returns the last property with the given name, if present.
func (r *RouteExports) Property(name string) (ExportProperty, bool) {
	for i := len(r.Properties) - 1; i >= 0; i-- {
		if r.Properties[i].Name == name {
			return r.Properties[i], true
		}
	}
	return ExportProperty{}, false
}

// IsCanonicalImport returns true if the symbol is bound by a named import
// specifier (not a default or namespace import) whose external name is
// "name" and whose import path equals "source" exactly. No resolution of
// module aliases and no fuzzy matching.
func IsCanonicalImport(tree *js_ast.AST, ref js_ast.Ref, name string, source string) bool {
	namedImport, ok := tree.NamedImports[ref]
	if !ok || namedImport.Alias != name || namedImport.Alias == "default" || namedImport.Alias == "*" {
		return false
	}
	record := tree.ImportRecords[namedImport.ImportRecordIndex]
	return record.Kind == js_ast.ImportStmt && record.Path == source
}

// factoryRefs collects every symbol bound by a canonical import of the
// factory. Multiple import statements of the same name produce multiple
// symbols.
func factoryRefs(tree *js_ast.AST, factory Factory) map[js_ast.Ref]bool {
	refs := make(map[js_ast.Ref]bool)
	for ref := range tree.NamedImports {
		if IsCanonicalImport(tree, ref, factory.Name, factory.Source) {
			refs[ref] = true
		}
	}
	return refs
}

func schemaError(source *logger.Source, r logger.Range, text string) *logger.Msg {
	return &logger.Msg{
		Kind:      logger.Error,
		ErrorKind: logger.KindSchema,
		Text:      text,
		Location:  logger.LocationOrNil(source, r),
	}
}

// AnalyzeRouteExport matches the module's default export against the route
// schema. The first violation found during a single left-to-right traversal
// is returned; nothing is aggregated.
func AnalyzeRouteExport(source *logger.Source, tree *js_ast.AST, factory Factory) (RouteExports, *logger.Msg) {
	var exports RouteExports

	var defaultExport *js_ast.SExportDefault
	for _, stmt := range tree.Stmts {
		if s, ok := stmt.Data.(*js_ast.SExportDefault); ok {
			defaultExport = s
			exports.ExportLoc = stmt.Loc
			break
		}
	}

	notObjectOrCall := "The default export must be a literal object or a call to the designated factory"
	if defaultExport == nil {
		return exports, schemaError(source, logger.Range{}, notObjectOrCall)
	}

	if defaultExport.Value.Expr == nil {
		// "export default function () {}" and "export default class {}"
		return exports, schemaError(source, logger.Range{Loc: defaultExport.Value.Stmt.Loc}, notObjectOrCall)
	}

	value := *defaultExport.Value.Expr
	switch e := value.Data.(type) {
	case *js_ast.EObject:
		exports.Object = e
		exports.ObjectLoc = value.Loc

	case *js_ast.ECall:
		id, ok := e.Target.Data.(*js_ast.EIdentifier)
		if !ok || !IsCanonicalImport(tree, id.Ref, factory.Name, factory.Source) {
			return exports, schemaError(source, logger.Range{Loc: e.Target.Loc}, notObjectOrCall)
		}
		if len(e.Args) != 1 {
			return exports, schemaError(source, logger.Range{Loc: value.Loc},
				"The factory must take exactly one argument")
		}
		arg := e.Args[0]
		object, ok := arg.Data.(*js_ast.EObject)
		if !ok {
			return exports, schemaError(source, logger.Range{Loc: arg.Loc},
				"The factory argument must be a literal object")
		}
		exports.Object = object
		exports.ObjectLoc = arg.Loc
		exports.FactoryCall = e

	default:
		return exports, schemaError(source, logger.Range{Loc: value.Loc}, notObjectOrCall)
	}

	for index, property := range exports.Object.Properties {
		if property.Kind == js_ast.PropertySpread {
			return exports, schemaError(source, logger.Range{Loc: property.ValueOrNil.Loc},
				"Properties cannot be spread into the export")
		}

		key, ok := property.Key.Data.(*js_ast.EString)
		if property.IsComputed || !ok || !js_lexer.IsIdentifier(js_lexer.UTF16ToString(key.Value)) {
			return exports, schemaError(source, logger.Range{Loc: property.Key.Loc},
				"The export cannot have computed keys")
		}

		name := js_lexer.UTF16ToString(key.Value)
		if name == "params" {
			array, ok := property.ValueOrNil.Data.(*js_ast.EArray)
			if !ok {
				return exports, schemaError(source, logger.Range{Loc: property.ValueOrNil.Loc},
					"\"params\" must be a literal array")
			}
			for _, item := range array.Items {
				if _, ok := item.Data.(*js_ast.EString); !ok {
					return exports, schemaError(source, logger.Range{Loc: item.Loc},
						"Each param must be a literal string")
				}
			}
		}

		exports.Properties = append(exports.Properties, ExportProperty{
			Name:     name,
			KeyLoc:   property.Key.Loc,
			ValueLoc: property.ValueOrNil.Loc,
			Index:    index,
		})
	}

	return exports, nil
}

// ListFields returns the recognized field names present in the validated
// export, in source order. A duplicate key does not appear twice.
func ListFields(source *logger.Source, tree *js_ast.AST, factory Factory) ([]string, *logger.Msg) {
	exports, msg := AnalyzeRouteExport(source, tree, factory)
	if msg != nil {
		return nil, msg
	}

	var fields []string
	seen := make(map[string]bool)
	for _, property := range exports.Properties {
		if IsRecognizedField(property.Name) && !seen[property.Name] {
			seen[property.Name] = true
			fields = append(fields, property.Name)
		}
	}
	return fields, nil
}
