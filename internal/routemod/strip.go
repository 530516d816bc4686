package routemod

import (
	"github.com/routec/routec/internal/js_ast"
)

// StripServerOnlyFields removes the server-only properties from the export
// object, then deletes module-level declarations that are no longer
// referenced. Returns false when no server-only field was present, in which
// case the tree is untouched and the caller should return the original
// source text instead of reprinting.
//
// Liveness accounting starts from the bind pass's use counts, snapshotted
// before any mutation. Removing a subtree subtracts the references inside
// it; a declaration dies when its remaining count is zero not counting
// references from inside its own body. Elimination runs to a fixed point
// because deleting one declaration can orphan another.
func StripServerOnlyFields(tree *js_ast.AST, exports *RouteExports) bool {
	if exports.Object == nil {
		return false
	}

	removeIndex := make(map[int]bool)
	for _, property := range exports.Properties {
		if IsServerOnlyField(property.Name) {
			removeIndex[property.Index] = true
		}
	}
	if len(removeIndex) == 0 {
		return false
	}

	// References subtracted so far, per symbol
	removed := make(map[js_ast.Ref]uint32)
	subtractExpr := func(expr js_ast.Expr) {
		js_ast.ForEachRefInExpr(expr, func(ref js_ast.Ref) {
			removed[ref]++
		})
	}

	kept := exports.Object.Properties[:0]
	for index, property := range exports.Object.Properties {
		if removeIndex[index] {
			if property.ValueOrNil.Data != nil {
				subtractExpr(property.ValueOrNil)
			}
			if property.InitializerOrNil.Data != nil {
				subtractExpr(property.InitializerOrNil)
			}
			continue
		}
		kept = append(kept, property)
	}
	exports.Object.Properties = kept
	exports.Properties = nil

	remaining := func(ref js_ast.Ref) uint32 {
		count := tree.Symbols[ref].UseCountEstimate
		if sub := removed[ref]; sub < count {
			return count - sub
		}
		return 0
	}

	for {
		changed := false
		stmts := tree.Stmts[:0]

		for _, stmt := range tree.Stmts {
			switch s := stmt.Data.(type) {
			case *js_ast.SFunction:
				if !s.IsExport && isDeadDecl(stmt, s.Fn.Name.Ref, remaining) {
					js_ast.ForEachRefInStmt(stmt, func(ref js_ast.Ref) { removed[ref]++ })
					changed = true
					continue
				}

			case *js_ast.SClass:
				if !s.IsExport && isDeadDecl(stmt, s.Class.Name.Ref, remaining) {
					js_ast.ForEachRefInStmt(stmt, func(ref js_ast.Ref) { removed[ref]++ })
					changed = true
					continue
				}

			case *js_ast.SLocal:
				if !s.IsExport {
					decls := s.Decls[:0]
					for _, decl := range s.Decls {
						if isDeadDeclarator(decl, remaining) {
							subtractDeclarator(decl, removed)
							changed = true
							continue
						}
						decls = append(decls, decl)
					}
					s.Decls = decls
					if len(s.Decls) == 0 {
						continue
					}
				}

			case *js_ast.SImport:
				hadClauses := s.DefaultName != nil || s.Items != nil || s.StarNameLoc != nil
				if stripDeadImportClauses(s, remaining) {
					changed = true
				}
				if hadClauses && s.DefaultName == nil && s.Items == nil && s.StarNameLoc == nil {
					// Every binding the import introduced is dead, so the whole
					// statement goes. Bare side-effect imports are kept since
					// they never bound anything in the first place.
					continue
				}
			}
			stmts = append(stmts, stmt)
		}

		tree.Stmts = stmts
		if !changed {
			return true
		}
	}
}

// isDeadDecl reports whether a function or class declaration has no
// remaining references apart from those inside its own body.
func isDeadDecl(stmt js_ast.Stmt, ref js_ast.Ref, remaining func(js_ast.Ref) uint32) bool {
	if !ref.IsValid() {
		return true
	}
	selfUses := uint32(0)
	js_ast.ForEachRefInStmt(stmt, func(r js_ast.Ref) {
		if r == ref {
			selfUses++
		}
	})
	return remaining(ref) <= selfUses
}

// isDeadDeclarator reports whether every symbol bound by the declarator is
// unreferenced outside the declarator's own subtree.
func isDeadDeclarator(decl js_ast.Decl, remaining func(js_ast.Ref) uint32) bool {
	dead := true
	forEachBoundRef(decl.Binding, func(ref js_ast.Ref) {
		if !dead {
			return
		}
		selfUses := uint32(0)
		forEachRefInDeclarator(decl, func(r js_ast.Ref) {
			if r == ref {
				selfUses++
			}
		})
		if remaining(ref) > selfUses {
			dead = false
		}
	})
	return dead
}

// forEachRefInDeclarator covers both the initializer and any default values
// buried in the binding pattern.
func forEachRefInDeclarator(decl js_ast.Decl, fn func(js_ast.Ref)) {
	stmt := js_ast.Stmt{Data: &js_ast.SLocal{Decls: []js_ast.Decl{decl}}}
	js_ast.ForEachRefInStmt(stmt, fn)
}

func subtractDeclarator(decl js_ast.Decl, removed map[js_ast.Ref]uint32) {
	forEachRefInDeclarator(decl, func(ref js_ast.Ref) {
		removed[ref]++
	})
}

func stripDeadImportClauses(s *js_ast.SImport, remaining func(js_ast.Ref) uint32) bool {
	changed := false

	if s.DefaultName != nil && remaining(s.DefaultName.Ref) == 0 {
		s.DefaultName = nil
		changed = true
	}

	if s.Items != nil {
		items := (*s.Items)[:0]
		for _, item := range *s.Items {
			if remaining(item.Name.Ref) == 0 {
				changed = true
				continue
			}
			items = append(items, item)
		}
		if len(items) == 0 {
			s.Items = nil
		} else {
			*s.Items = items
		}
	}

	if s.StarNameLoc != nil && remaining(s.StarNameRef) == 0 {
		s.StarNameLoc = nil
		changed = true
	}

	return changed
}

// forEachBoundRef visits the symbols a binding pattern declares. This is the
// complement of js_ast.ForEachRefInExpr, which deliberately skips them.
func forEachBoundRef(binding js_ast.Binding, fn func(js_ast.Ref)) {
	switch b := binding.Data.(type) {
	case *js_ast.BIdentifier:
		fn(b.Ref)

	case *js_ast.BArray:
		for _, item := range b.Items {
			forEachBoundRef(item.Binding, fn)
		}

	case *js_ast.BObject:
		for _, property := range b.Properties {
			forEachBoundRef(property.Value, fn)
		}
	}
}
