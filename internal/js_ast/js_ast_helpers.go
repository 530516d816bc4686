package js_ast

// ForEachRefInStmt and ForEachRefInExpr invoke fn for every resolved symbol
// reference inside a subtree. Declarations are not references: a binding
// pattern introduces symbols instead of using them, so BIdentifier refs and
// function/class name refs are skipped. The liveness accounting in the
// stripper depends on this distinction.

func ForEachRefInStmt(stmt Stmt, fn func(Ref)) {
	switch s := stmt.Data.(type) {
	case *SBlock:
		for _, child := range s.Stmts {
			ForEachRefInStmt(child, fn)
		}

	case *SDirective, *SEmpty, *STypeScript, *SDebugger, *SBreak, *SContinue, *SImport, *SExportStar, *SExportFrom:
		// No references

	case *SExportClause:
		// "export {x}" references the local symbol "x"
		for _, item := range s.Items {
			if item.Name.Ref.IsValid() {
				fn(item.Name.Ref)
			}
		}

	case *SExportDefault:
		if s.Value.Expr != nil {
			ForEachRefInExpr(*s.Value.Expr, fn)
		} else {
			ForEachRefInStmt(*s.Value.Stmt, fn)
		}

	case *SExpr:
		ForEachRefInExpr(s.Value, fn)

	case *SFunction:
		forEachRefInFn(&s.Fn, fn)

	case *SClass:
		forEachRefInClass(&s.Class, fn)

	case *SLabel:
		ForEachRefInStmt(s.Stmt, fn)

	case *SIf:
		ForEachRefInExpr(s.Test, fn)
		ForEachRefInStmt(s.Yes, fn)
		if s.NoOrNil != nil {
			ForEachRefInStmt(*s.NoOrNil, fn)
		}

	case *SFor:
		if s.InitOrNil != nil {
			ForEachRefInStmt(*s.InitOrNil, fn)
		}
		if s.TestOrNil.Data != nil {
			ForEachRefInExpr(s.TestOrNil, fn)
		}
		if s.UpdateOrNil.Data != nil {
			ForEachRefInExpr(s.UpdateOrNil, fn)
		}
		ForEachRefInStmt(s.Body, fn)

	case *SForIn:
		ForEachRefInStmt(s.Init, fn)
		ForEachRefInExpr(s.Value, fn)
		ForEachRefInStmt(s.Body, fn)

	case *SForOf:
		ForEachRefInStmt(s.Init, fn)
		ForEachRefInExpr(s.Value, fn)
		ForEachRefInStmt(s.Body, fn)

	case *SDoWhile:
		ForEachRefInStmt(s.Body, fn)
		ForEachRefInExpr(s.Test, fn)

	case *SWhile:
		ForEachRefInExpr(s.Test, fn)
		ForEachRefInStmt(s.Body, fn)

	case *STry:
		for _, child := range s.Body {
			ForEachRefInStmt(child, fn)
		}
		if s.Catch != nil {
			if s.Catch.BindingOrNil != nil {
				forEachRefInBinding(*s.Catch.BindingOrNil, fn)
			}
			for _, child := range s.Catch.Body {
				ForEachRefInStmt(child, fn)
			}
		}
		if s.Finally != nil {
			for _, child := range s.Finally.Stmts {
				ForEachRefInStmt(child, fn)
			}
		}

	case *SSwitch:
		ForEachRefInExpr(s.Test, fn)
		for _, c := range s.Cases {
			if c.ValueOrNil.Data != nil {
				ForEachRefInExpr(c.ValueOrNil, fn)
			}
			for _, child := range c.Body {
				ForEachRefInStmt(child, fn)
			}
		}

	case *SReturn:
		if s.ValueOrNil.Data != nil {
			ForEachRefInExpr(s.ValueOrNil, fn)
		}

	case *SThrow:
		ForEachRefInExpr(s.Value, fn)

	case *SLocal:
		for _, decl := range s.Decls {
			forEachRefInBinding(decl.Binding, fn)
			if decl.ValueOrNil.Data != nil {
				ForEachRefInExpr(decl.ValueOrNil, fn)
			}
		}
	}
}

func ForEachRefInExpr(expr Expr, fn func(Ref)) {
	switch e := expr.Data.(type) {
	case *EIdentifier:
		if e.Ref.IsValid() {
			fn(e.Ref)
		}

	case *EArray:
		for _, item := range e.Items {
			ForEachRefInExpr(item, fn)
		}

	case *EUnary:
		ForEachRefInExpr(e.Value, fn)

	case *EBinary:
		ForEachRefInExpr(e.Left, fn)
		ForEachRefInExpr(e.Right, fn)

	case *ENew:
		ForEachRefInExpr(e.Target, fn)
		for _, arg := range e.Args {
			ForEachRefInExpr(arg, fn)
		}

	case *ECall:
		ForEachRefInExpr(e.Target, fn)
		for _, arg := range e.Args {
			ForEachRefInExpr(arg, fn)
		}

	case *EDot:
		ForEachRefInExpr(e.Target, fn)

	case *EIndex:
		ForEachRefInExpr(e.Target, fn)
		ForEachRefInExpr(e.Index, fn)

	case *EArrow:
		for _, arg := range e.Args {
			forEachRefInBinding(arg.Binding, fn)
			if arg.DefaultOrNil.Data != nil {
				ForEachRefInExpr(arg.DefaultOrNil, fn)
			}
		}
		for _, child := range e.Body.Stmts {
			ForEachRefInStmt(child, fn)
		}

	case *EFunction:
		forEachRefInFn(&e.Fn, fn)

	case *EClass:
		forEachRefInClass(&e.Class, fn)

	case *EJSXElement:
		if e.TagOrNil.Data != nil {
			ForEachRefInExpr(e.TagOrNil, fn)
		}
		for _, property := range e.Properties {
			forEachRefInProperty(property, fn)
		}
		for _, child := range e.Children {
			ForEachRefInExpr(child, fn)
		}

	case *EObject:
		for _, property := range e.Properties {
			forEachRefInProperty(property, fn)
		}

	case *ESpread:
		ForEachRefInExpr(e.Value, fn)

	case *ETemplate:
		if e.TagOrNil.Data != nil {
			ForEachRefInExpr(e.TagOrNil, fn)
		}
		for _, part := range e.Parts {
			ForEachRefInExpr(part.Value, fn)
		}

	case *EAwait:
		ForEachRefInExpr(e.Value, fn)

	case *EYield:
		if e.ValueOrNil.Data != nil {
			ForEachRefInExpr(e.ValueOrNil, fn)
		}

	case *EIf:
		ForEachRefInExpr(e.Test, fn)
		ForEachRefInExpr(e.Yes, fn)
		ForEachRefInExpr(e.No, fn)

	case *EImportCall:
		ForEachRefInExpr(e.Expr, fn)
		if e.OptionsOrNil.Data != nil {
			ForEachRefInExpr(e.OptionsOrNil, fn)
		}
	}
}

func forEachRefInProperty(property Property, fn func(Ref)) {
	if property.IsComputed {
		ForEachRefInExpr(property.Key, fn)
	}
	if property.ValueOrNil.Data != nil {
		ForEachRefInExpr(property.ValueOrNil, fn)
	}
	if property.InitializerOrNil.Data != nil {
		ForEachRefInExpr(property.InitializerOrNil, fn)
	}
}

func forEachRefInFn(fn *Fn, visit func(Ref)) {
	for _, arg := range fn.Args {
		forEachRefInBinding(arg.Binding, visit)
		if arg.DefaultOrNil.Data != nil {
			ForEachRefInExpr(arg.DefaultOrNil, visit)
		}
	}
	for _, child := range fn.Body.Stmts {
		ForEachRefInStmt(child, visit)
	}
}

func forEachRefInClass(class *Class, visit func(Ref)) {
	if class.ExtendsOrNil.Data != nil {
		ForEachRefInExpr(class.ExtendsOrNil, visit)
	}
	for _, property := range class.Properties {
		forEachRefInProperty(property, visit)
	}
}

// Binding patterns declare symbols rather than referencing them, but default
// values and computed keys inside a pattern are ordinary expressions.
func forEachRefInBinding(binding Binding, fn func(Ref)) {
	switch b := binding.Data.(type) {
	case *BArray:
		for _, item := range b.Items {
			forEachRefInBinding(item.Binding, fn)
			if item.DefaultValueOrNil.Data != nil {
				ForEachRefInExpr(item.DefaultValueOrNil, fn)
			}
		}

	case *BObject:
		for _, property := range b.Properties {
			if property.IsComputed {
				ForEachRefInExpr(property.Key, fn)
			}
			forEachRefInBinding(property.Value, fn)
			if property.DefaultValueOrNil.Data != nil {
				ForEachRefInExpr(property.DefaultValueOrNil, fn)
			}
		}
	}
}
