package routemod

import (
	"fmt"

	"github.com/routec/routec/internal/js_ast"
	"github.com/routec/routec/internal/js_lexer"
	"github.com/routec/routec/internal/logger"
)

// CheckFactoryUsage scans the whole module for uses of the canonical factory
// that are not immediately the callee of the default-exported call. Every
// offending use is reported, each independently, in one traversal.
func CheckFactoryUsage(source *logger.Source, tree *js_ast.AST, factory Factory) []logger.Msg {
	refs := factoryRefs(tree, factory)
	if len(refs) == 0 {
		return nil
	}

	// The only legal position is the callee identifier of a call expression
	// that is itself the default-exported value. Matching is by node identity
	// so that a second use of the same symbol elsewhere is still flagged.
	var allowed *js_ast.EIdentifier
	for _, stmt := range tree.Stmts {
		if s, ok := stmt.Data.(*js_ast.SExportDefault); ok && s.Value.Expr != nil {
			if call, ok := s.Value.Expr.Data.(*js_ast.ECall); ok {
				if id, ok := call.Target.Data.(*js_ast.EIdentifier); ok && refs[id.Ref] {
					allowed = id
				}
			}
			break
		}
	}

	var msgs []logger.Msg
	report := func(r logger.Range) {
		msgs = append(msgs, logger.Msg{
			Kind:      logger.Error,
			ErrorKind: logger.KindMisuse,
			Text: fmt.Sprintf("%q can only be called directly in \"export default %s(...)\"",
				factory.Name, factory.Name),
			Location: logger.LocationOrNil(source, r),
		})
	}

	w := useWalker{
		visit: func(loc logger.Loc, id *js_ast.EIdentifier) {
			if refs[id.Ref] && id != allowed {
				report(js_lexer.RangeOfIdentifier(*source, loc))
			}
		},
		visitClauseItem: func(item js_ast.ClauseItem) {
			if item.Name.Ref.IsValid() && refs[item.Name.Ref] {
				report(js_lexer.RangeOfIdentifier(*source, item.Name.Loc))
			}
		},
	}
	for _, stmt := range tree.Stmts {
		w.walkStmt(stmt)
	}
	return msgs
}

// CheckFactoryNeverImported reports every import binding of the canonical
// factory. Used for modules that must not reference the factory at all.
func CheckFactoryNeverImported(source *logger.Source, tree *js_ast.AST, factory Factory) []logger.Msg {
	var msgs []logger.Msg
	for ref, namedImport := range tree.NamedImports {
		if IsCanonicalImport(tree, ref, factory.Name, factory.Source) {
			msgs = append(msgs, logger.Msg{
				Kind:      logger.Error,
				ErrorKind: logger.KindImportPresence,
				Text: fmt.Sprintf("%q must not be imported from %q in this module",
					factory.Name, factory.Source),
				Location: logger.LocationOrNil(source, js_lexer.RangeOfIdentifier(*source, namedImport.AliasLoc)),
			})
		}
	}
	sortMsgs(msgs)
	return msgs
}

func sortMsgs(msgs []logger.Msg) {
	// Map iteration order is random, so order by source position instead
	for i := 1; i < len(msgs); i++ {
		for j := i; j > 0; j-- {
			a, b := msgs[j-1].Location, msgs[j].Location
			if a == nil || b == nil || a.Line < b.Line || (a.Line == b.Line && a.Column <= b.Column) {
				break
			}
			msgs[j-1], msgs[j] = msgs[j], msgs[j-1]
		}
	}
}

// useWalker visits every identifier use in the module along with its
// location. Unlike js_ast.ForEachRefInExpr it exposes the node itself so
// callers can test positions by identity.
type useWalker struct {
	visit           func(logger.Loc, *js_ast.EIdentifier)
	visitClauseItem func(js_ast.ClauseItem)
}

func (w *useWalker) walkStmt(stmt js_ast.Stmt) {
	switch s := stmt.Data.(type) {
	case *js_ast.SBlock:
		for _, child := range s.Stmts {
			w.walkStmt(child)
		}

	case *js_ast.SExportClause:
		for _, item := range s.Items {
			w.visitClauseItem(item)
		}

	case *js_ast.SExportDefault:
		if s.Value.Expr != nil {
			w.walkExpr(*s.Value.Expr)
		} else {
			w.walkStmt(*s.Value.Stmt)
		}

	case *js_ast.SExpr:
		w.walkExpr(s.Value)

	case *js_ast.SFunction:
		w.walkFn(&s.Fn)

	case *js_ast.SClass:
		w.walkClass(&s.Class)

	case *js_ast.SLabel:
		w.walkStmt(s.Stmt)

	case *js_ast.SIf:
		w.walkExpr(s.Test)
		w.walkStmt(s.Yes)
		if s.NoOrNil != nil {
			w.walkStmt(*s.NoOrNil)
		}

	case *js_ast.SFor:
		if s.InitOrNil != nil {
			w.walkStmt(*s.InitOrNil)
		}
		if s.TestOrNil.Data != nil {
			w.walkExpr(s.TestOrNil)
		}
		if s.UpdateOrNil.Data != nil {
			w.walkExpr(s.UpdateOrNil)
		}
		w.walkStmt(s.Body)

	case *js_ast.SForIn:
		w.walkStmt(s.Init)
		w.walkExpr(s.Value)
		w.walkStmt(s.Body)

	case *js_ast.SForOf:
		w.walkStmt(s.Init)
		w.walkExpr(s.Value)
		w.walkStmt(s.Body)

	case *js_ast.SDoWhile:
		w.walkStmt(s.Body)
		w.walkExpr(s.Test)

	case *js_ast.SWhile:
		w.walkExpr(s.Test)
		w.walkStmt(s.Body)

	case *js_ast.STry:
		for _, child := range s.Body {
			w.walkStmt(child)
		}
		if s.Catch != nil {
			if s.Catch.BindingOrNil != nil {
				w.walkBinding(*s.Catch.BindingOrNil)
			}
			for _, child := range s.Catch.Body {
				w.walkStmt(child)
			}
		}
		if s.Finally != nil {
			for _, child := range s.Finally.Stmts {
				w.walkStmt(child)
			}
		}

	case *js_ast.SSwitch:
		w.walkExpr(s.Test)
		for _, c := range s.Cases {
			if c.ValueOrNil.Data != nil {
				w.walkExpr(c.ValueOrNil)
			}
			for _, child := range c.Body {
				w.walkStmt(child)
			}
		}

	case *js_ast.SReturn:
		if s.ValueOrNil.Data != nil {
			w.walkExpr(s.ValueOrNil)
		}

	case *js_ast.SThrow:
		w.walkExpr(s.Value)

	case *js_ast.SLocal:
		for _, decl := range s.Decls {
			w.walkBinding(decl.Binding)
			if decl.ValueOrNil.Data != nil {
				w.walkExpr(decl.ValueOrNil)
			}
		}
	}
}

func (w *useWalker) walkExpr(expr js_ast.Expr) {
	switch e := expr.Data.(type) {
	case *js_ast.EIdentifier:
		if e.Ref.IsValid() {
			w.visit(expr.Loc, e)
		}

	case *js_ast.EArray:
		for _, item := range e.Items {
			w.walkExpr(item)
		}

	case *js_ast.EUnary:
		w.walkExpr(e.Value)

	case *js_ast.EBinary:
		w.walkExpr(e.Left)
		w.walkExpr(e.Right)

	case *js_ast.ENew:
		w.walkExpr(e.Target)
		for _, arg := range e.Args {
			w.walkExpr(arg)
		}

	case *js_ast.ECall:
		w.walkExpr(e.Target)
		for _, arg := range e.Args {
			w.walkExpr(arg)
		}

	case *js_ast.EDot:
		w.walkExpr(e.Target)

	case *js_ast.EIndex:
		w.walkExpr(e.Target)
		w.walkExpr(e.Index)

	case *js_ast.EArrow:
		for _, arg := range e.Args {
			w.walkBinding(arg.Binding)
			if arg.DefaultOrNil.Data != nil {
				w.walkExpr(arg.DefaultOrNil)
			}
		}
		for _, child := range e.Body.Stmts {
			w.walkStmt(child)
		}

	case *js_ast.EFunction:
		w.walkFn(&e.Fn)

	case *js_ast.EClass:
		w.walkClass(&e.Class)

	case *js_ast.EJSXElement:
		if e.TagOrNil.Data != nil {
			w.walkExpr(e.TagOrNil)
		}
		for _, property := range e.Properties {
			w.walkProperty(property)
		}
		for _, child := range e.Children {
			w.walkExpr(child)
		}

	case *js_ast.EObject:
		for _, property := range e.Properties {
			w.walkProperty(property)
		}

	case *js_ast.ESpread:
		w.walkExpr(e.Value)

	case *js_ast.ETemplate:
		if e.TagOrNil.Data != nil {
			w.walkExpr(e.TagOrNil)
		}
		for _, part := range e.Parts {
			w.walkExpr(part.Value)
		}

	case *js_ast.EAwait:
		w.walkExpr(e.Value)

	case *js_ast.EYield:
		if e.ValueOrNil.Data != nil {
			w.walkExpr(e.ValueOrNil)
		}

	case *js_ast.EIf:
		w.walkExpr(e.Test)
		w.walkExpr(e.Yes)
		w.walkExpr(e.No)

	case *js_ast.EImportCall:
		w.walkExpr(e.Expr)
		if e.OptionsOrNil.Data != nil {
			w.walkExpr(e.OptionsOrNil)
		}
	}
}

func (w *useWalker) walkProperty(property js_ast.Property) {
	if property.IsComputed {
		w.walkExpr(property.Key)
	}
	if property.ValueOrNil.Data != nil {
		w.walkExpr(property.ValueOrNil)
	}
	if property.InitializerOrNil.Data != nil {
		w.walkExpr(property.InitializerOrNil)
	}
}

func (w *useWalker) walkFn(fn *js_ast.Fn) {
	for _, arg := range fn.Args {
		w.walkBinding(arg.Binding)
		if arg.DefaultOrNil.Data != nil {
			w.walkExpr(arg.DefaultOrNil)
		}
	}
	for _, child := range fn.Body.Stmts {
		w.walkStmt(child)
	}
}

func (w *useWalker) walkClass(class *js_ast.Class) {
	if class.ExtendsOrNil.Data != nil {
		w.walkExpr(class.ExtendsOrNil)
	}
	for _, property := range class.Properties {
		w.walkProperty(property)
	}
}

func (w *useWalker) walkBinding(binding js_ast.Binding) {
	switch b := binding.Data.(type) {
	case *js_ast.BArray:
		for _, item := range b.Items {
			w.walkBinding(item.Binding)
			if item.DefaultValueOrNil.Data != nil {
				w.walkExpr(item.DefaultValueOrNil)
			}
		}

	case *js_ast.BObject:
		for _, property := range b.Properties {
			if property.IsComputed {
				w.walkExpr(property.Key)
			}
			w.walkBinding(property.Value)
			if property.DefaultValueOrNil.Data != nil {
				w.walkExpr(property.DefaultValueOrNil)
			}
		}
	}
}
