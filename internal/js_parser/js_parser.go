package js_parser

import (
	"fmt"
	"strings"

	"github.com/routec/routec/internal/js_ast"
	"github.com/routec/routec/internal/js_lexer"
	"github.com/routec/routec/internal/logger"
)

// The parser runs in two passes over the file. The first pass parses the
// syntax tree and pushes each lexical scope onto "scopesInOrder" as it is
// created. Symbols are declared into scopes during this pass, but identifier
// expressions are left unresolved because hoisting means a use can come
// before the declaration it refers to.
//
// The second pass walks the finished tree, re-entering the recorded scopes in
// the same order, and resolves every identifier to a symbol reference. Use
// counts are accumulated at the same time so later passes can tell whether a
// declaration is referenced without another traversal.

type Options struct {
	// Parse TypeScript type annotations and erase them from the tree
	TS bool

	// Parse JSX elements. When combined with TS this follows the TSX rules
	// for disambiguating type parameters from element tags.
	JSX bool
}

type scopeOrder struct {
	loc   logger.Loc
	scope *js_ast.Scope
}

type fnOrArrowDataParse struct {
	allowAwait bool
	allowYield bool
}

type parser struct {
	options Options
	log     logger.Log
	source  logger.Source
	lexer   js_lexer.Lexer

	symbols       []js_ast.Symbol
	moduleScope   *js_ast.Scope
	currentScope  *js_ast.Scope
	scopesInOrder []scopeOrder

	// Consumed front-to-back by the bind pass
	scopesInOrderForBindPass []scopeOrder

	namedImports  map[js_ast.Ref]js_ast.NamedImport
	importRecords []js_ast.ImportRecord

	fnOrArrowDataParse fnOrArrowDataParse

	// The "in" operator is forbidden inside the init clause of a "for" loop
	allowIn bool
}

// NoImportRecord marks a dynamic "import()" whose argument is not a string
// literal, so there is no resolvable path to record.
const NoImportRecord = ^uint32(0)

var locModuleScope = logger.Loc{Start: -1}

func Parse(log logger.Log, source logger.Source, options Options) (result js_ast.AST, ok bool) {
	ok = true
	defer func() {
		r := recover()
		if _, isLexerPanic := r.(js_lexer.LexerPanic); isLexerPanic {
			ok = false
		} else if r != nil {
			panic(r)
		}
	}()

	p := &parser{
		options:      options,
		log:          log,
		source:       source,
		namedImports: make(map[js_ast.Ref]js_ast.NamedImport),
		allowIn:      true,

		// Modules support top-level await
		fnOrArrowDataParse: fnOrArrowDataParse{allowAwait: true},
	}
	p.pushScopeForParsePass(js_ast.ScopeEntry, locModuleScope)
	p.moduleScope = p.currentScope
	p.lexer = js_lexer.NewLexer(log, source)

	hashbang := ""
	if p.lexer.Token == js_lexer.THashbang {
		hashbang = p.lexer.Identifier
		p.lexer.Next()
	}

	stmts := p.parseStmtsUpTo(js_lexer.TEndOfFile, parseStmtOpts{isModuleScope: true})

	// Second pass: resolve identifiers against the recorded scopes
	p.scopesInOrderForBindPass = p.scopesInOrder
	p.currentScope = nil
	p.pushScopeForBindPass(js_ast.ScopeEntry, locModuleScope)
	p.bindStmts(stmts)

	directive := ""
	if len(stmts) > 0 {
		if s, isDirective := stmts[0].Data.(*js_ast.SDirective); isDirective {
			directive = js_lexer.UTF16ToString(s.Value)
		}
	}

	result = js_ast.AST{
		Hashbang:             hashbang,
		Directive:            directive,
		Stmts:                stmts,
		Symbols:              p.symbols,
		ModuleScope:          p.moduleScope,
		NamedImports:         p.namedImports,
		ImportRecords:        p.importRecords,
		ApproximateLineCount: int32(p.lexer.ApproximateNewlineCount) + 1,
	}
	return
}

////////////////////////////////////////////////////////////////////////////////
// Scope and symbol management

func (p *parser) pushScopeForParsePass(kind js_ast.ScopeKind, loc logger.Loc) int {
	parent := p.currentScope
	scope := &js_ast.Scope{
		Kind:    kind,
		Parent:  parent,
		Members: make(map[string]js_ast.ScopeMember),
	}
	if parent != nil {
		parent.Children = append(parent.Children, scope)
	}
	p.currentScope = scope

	// Enforce that scope locations are strictly increasing to catch cases
	// where the scopes pushed by the two passes get out of sync
	if len(p.scopesInOrder) > 0 {
		prevStart := p.scopesInOrder[len(p.scopesInOrder)-1].loc.Start
		if prevStart >= loc.Start {
			panic(fmt.Sprintf("Scope location %d must be greater than %d", loc.Start, prevStart))
		}
	}

	// Copy down function arguments into the function body scope so that a
	// "let" in the body that shadows an argument is reported as a redeclare
	if kind == js_ast.ScopeFunctionBody {
		if parent.Kind != js_ast.ScopeFunctionArgs {
			panic("Internal error")
		}
		for name, member := range parent.Members {
			// A function expression may redeclare its own name
			if p.symbols[member.Ref].Kind != js_ast.SymbolHoistedFunction {
				scope.Members[name] = member
			}
		}
	}

	scopeIndex := len(p.scopesInOrder)
	p.scopesInOrder = append(p.scopesInOrder, scopeOrder{loc, scope})
	return scopeIndex
}

func (p *parser) popScope() {
	p.currentScope = p.currentScope.Parent
}

// popAndFlattenScope undoes a speculative scope push after deciding the
// parenthesized expression it covered was not an arrow function. Scopes
// created while parsing the contents are reparented so the bind pass still
// finds them in order.
func (p *parser) popAndFlattenScope(scopeIndex int) {
	toFlatten := p.currentScope
	parent := toFlatten.Parent
	p.currentScope = parent

	copy(p.scopesInOrder[scopeIndex:], p.scopesInOrder[scopeIndex+1:])
	p.scopesInOrder = p.scopesInOrder[:len(p.scopesInOrder)-1]

	last := len(parent.Children) - 1
	if parent.Children[last] != toFlatten {
		panic("Internal error")
	}
	parent.Children = parent.Children[:last]

	for _, scope := range toFlatten.Children {
		scope.Parent = parent
		parent.Children = append(parent.Children, scope)
	}
}

func (p *parser) pushScopeForBindPass(kind js_ast.ScopeKind, loc logger.Loc) {
	order := p.scopesInOrderForBindPass[0]

	// Sanity-check that the scopes generated by the two passes match
	if order.loc != loc || order.scope.Kind != kind {
		panic(fmt.Sprintf("Expected scope (%d, %d), found scope (%d, %d)",
			kind, loc.Start, order.scope.Kind, order.loc.Start))
	}

	p.scopesInOrderForBindPass = p.scopesInOrderForBindPass[1:]
	p.currentScope = order.scope
}

func (p *parser) newSymbol(kind js_ast.SymbolKind, name string) js_ast.Ref {
	ref := js_ast.Ref(len(p.symbols))
	p.symbols = append(p.symbols, js_ast.Symbol{
		Kind:         kind,
		OriginalName: name,
	})
	return ref
}

func (p *parser) declareSymbol(kind js_ast.SymbolKind, loc logger.Loc, name string) js_ast.Ref {
	scope := p.currentScope

	// "var" and function statements are hoisted up to the closest enclosing
	// function or module scope
	if kind.IsHoisted() {
		for !scope.Kind.StopsHoisting() {
			scope = scope.Parent
		}
	}

	if existing, ok := scope.Members[name]; ok {
		symbol := &p.symbols[existing.Ref]

		// "var a; var a;" and "var a; function a() {}" silently merge
		if kind.IsHoisted() && (symbol.Kind.IsHoisted() || symbol.Kind == js_ast.SymbolCatchIdentifier) {
			return existing.Ref
		}
		if kind == js_ast.SymbolHoistedFunction && symbol.Kind == js_ast.SymbolHoistedFunction {
			return existing.Ref
		}

		r := js_lexer.RangeOfIdentifier(p.source, loc)
		p.log.AddErrorWithKind(&p.source, logger.KindSyntax, r,
			fmt.Sprintf("The symbol %q has already been declared", name))
		return existing.Ref
	}

	ref := p.newSymbol(kind, name)
	scope.Members[name] = js_ast.ScopeMember{Ref: ref, Loc: loc}
	return ref
}

func (p *parser) declareBinding(kind js_ast.SymbolKind, binding js_ast.Binding) {
	switch b := binding.Data.(type) {
	case *js_ast.BMissing:

	case *js_ast.BIdentifier:
		b.Ref = p.declareSymbol(kind, binding.Loc, b.Name)

	case *js_ast.BArray:
		for _, item := range b.Items {
			p.declareBinding(kind, item.Binding)
		}

	case *js_ast.BObject:
		for _, property := range b.Properties {
			p.declareBinding(kind, property.Value)
		}

	default:
		panic("Internal error")
	}
}

func (p *parser) addImportRecord(kind js_ast.ImportRecordKind, r logger.Range, path string) uint32 {
	index := uint32(len(p.importRecords))
	p.importRecords = append(p.importRecords, js_ast.ImportRecord{
		Kind:  kind,
		Range: r,
		Path:  path,
	})
	return index
}

////////////////////////////////////////////////////////////////////////////////
// Statement parsing

type parseStmtOpts struct {
	isModuleScope  bool
	isExport       bool
	isNameOptional bool // For "export default" pseudo-statements
	lexicalDeclsOK bool
}

func (p *parser) parseStmtsUpTo(end js_lexer.T, opts parseStmtOpts) []js_ast.Stmt {
	stmts := []js_ast.Stmt{}
	isDirectivePrologue := true
	opts.lexicalDeclsOK = true

	for p.lexer.Token != end {
		stmt := p.parseStmt(opts)

		// String literal statements at the top of the file or function body
		// form the directive prologue ("use strict" and friends)
		if isDirectivePrologue {
			if expr, isExpr := stmt.Data.(*js_ast.SExpr); isExpr {
				if str, isStr := expr.Value.Data.(*js_ast.EString); isStr {
					stmt.Data = &js_ast.SDirective{Value: str.Value}
				} else {
					isDirectivePrologue = false
				}
			} else {
				isDirectivePrologue = false
			}
		}

		stmts = append(stmts, stmt)
	}

	return stmts
}

func (p *parser) parseStmt(opts parseStmtOpts) js_ast.Stmt {
	loc := p.lexer.Loc()

	switch p.lexer.Token {
	case js_lexer.TSemicolon:
		p.lexer.Next()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SEmpty{}}

	case js_lexer.TOpenBrace:
		p.pushScopeForParsePass(js_ast.ScopeBlock, loc)
		defer p.popScope()

		p.lexer.Next()
		stmts := p.parseStmtsUpTo(js_lexer.TCloseBrace, parseStmtOpts{})
		p.lexer.Next()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SBlock{Stmts: stmts}}

	case js_lexer.TDebugger:
		p.lexer.Next()
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SDebugger{}}

	case js_lexer.TExport:
		if !opts.isModuleScope {
			p.lexer.Unexpected()
		}
		p.lexer.Next()
		return p.parseExportStmt(loc)

	case js_lexer.TImport:
		return p.parseImportStmt(loc, opts)

	case js_lexer.TFunction:
		return p.parseFnStmt(loc, opts, false /* isAsync */, logger.Range{})

	case js_lexer.TClass:
		return p.parseClassStmt(loc, opts)

	case js_lexer.TVar:
		p.lexer.Next()
		decls := p.parseAndDeclareDecls(js_ast.SymbolHoisted)
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SLocal{
			Kind:     js_ast.LocalVar,
			Decls:    decls,
			IsExport: opts.isExport,
		}}

	case js_lexer.TConst:
		if !opts.lexicalDeclsOK {
			p.forbidLexicalDecl(loc)
		}
		p.lexer.Next()
		if p.options.TS && p.lexer.Token == js_lexer.TEnum {
			p.log.AddErrorWithKind(&p.source, logger.KindSyntax, p.lexer.Range(),
				"TypeScript enum syntax is not supported")
			panic(js_lexer.LexerPanic{})
		}
		decls := p.parseAndDeclareDecls(js_ast.SymbolConst)
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SLocal{
			Kind:     js_ast.LocalConst,
			Decls:    decls,
			IsExport: opts.isExport,
		}}

	case js_lexer.TEnum:
		p.log.AddErrorWithKind(&p.source, logger.KindSyntax, p.lexer.Range(),
			"TypeScript enum syntax is not supported")
		panic(js_lexer.LexerPanic{})

	case js_lexer.TIf:
		p.lexer.Next()
		p.lexer.Expect(js_lexer.TOpenParen)
		test := p.parseExpr(js_ast.LLowest)
		p.lexer.Expect(js_lexer.TCloseParen)
		yes := p.parseStmt(parseStmtOpts{})
		var noOrNil *js_ast.Stmt
		if p.lexer.Token == js_lexer.TElse {
			p.lexer.Next()
			no := p.parseStmt(parseStmtOpts{})
			noOrNil = &no
		}
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SIf{Test: test, Yes: yes, NoOrNil: noOrNil}}

	case js_lexer.TDo:
		p.lexer.Next()
		body := p.parseStmt(parseStmtOpts{})
		p.lexer.Expect(js_lexer.TWhile)
		p.lexer.Expect(js_lexer.TOpenParen)
		test := p.parseExpr(js_ast.LLowest)
		p.lexer.Expect(js_lexer.TCloseParen)

		// A semicolon after "do-while" is optional
		if p.lexer.Token == js_lexer.TSemicolon {
			p.lexer.Next()
		}
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SDoWhile{Body: body, Test: test}}

	case js_lexer.TWhile:
		p.lexer.Next()
		p.lexer.Expect(js_lexer.TOpenParen)
		test := p.parseExpr(js_ast.LLowest)
		p.lexer.Expect(js_lexer.TCloseParen)
		body := p.parseStmt(parseStmtOpts{})
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SWhile{Test: test, Body: body}}

	case js_lexer.TWith:
		p.lexer.Next()
		p.log.AddErrorWithKind(&p.source, logger.KindSyntax, logger.Range{Loc: loc, Len: 4},
			"With statements cannot be used in an ECMAScript module")
		panic(js_lexer.LexerPanic{})

	case js_lexer.TSwitch:
		p.lexer.Next()
		p.lexer.Expect(js_lexer.TOpenParen)
		test := p.parseExpr(js_ast.LLowest)
		p.lexer.Expect(js_lexer.TCloseParen)

		bodyLoc := p.lexer.Loc()
		p.pushScopeForParsePass(js_ast.ScopeBlock, bodyLoc)
		defer p.popScope()
		p.lexer.Expect(js_lexer.TOpenBrace)

		cases := []js_ast.Case{}
		foundDefault := false
		for p.lexer.Token != js_lexer.TCloseBrace {
			var valueOrNil js_ast.Expr
			if p.lexer.Token == js_lexer.TDefault {
				if foundDefault {
					p.log.AddErrorWithKind(&p.source, logger.KindSyntax, p.lexer.Range(),
						"Multiple default clauses are not allowed")
					panic(js_lexer.LexerPanic{})
				}
				foundDefault = true
				p.lexer.Next()
			} else {
				p.lexer.Expect(js_lexer.TCase)
				valueOrNil = p.parseExpr(js_ast.LLowest)
			}
			p.lexer.Expect(js_lexer.TColon)

			body := []js_ast.Stmt{}
			for p.lexer.Token != js_lexer.TCloseBrace &&
				p.lexer.Token != js_lexer.TCase &&
				p.lexer.Token != js_lexer.TDefault {
				body = append(body, p.parseStmt(parseStmtOpts{lexicalDeclsOK: true}))
			}
			cases = append(cases, js_ast.Case{ValueOrNil: valueOrNil, Body: body})
		}
		p.lexer.Expect(js_lexer.TCloseBrace)
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SSwitch{Test: test, BodyLoc: bodyLoc, Cases: cases}}

	case js_lexer.TTry:
		p.lexer.Next()
		bodyLoc := p.lexer.Loc()
		p.pushScopeForParsePass(js_ast.ScopeBlock, bodyLoc)
		p.lexer.Expect(js_lexer.TOpenBrace)
		body := p.parseStmtsUpTo(js_lexer.TCloseBrace, parseStmtOpts{})
		p.lexer.Next()
		p.popScope()

		var catch *js_ast.Catch
		var finally *js_ast.Finally

		if p.lexer.Token == js_lexer.TCatch {
			catchLoc := p.lexer.Loc()
			p.pushScopeForParsePass(js_ast.ScopeBlock, catchLoc)
			p.lexer.Next()
			var bindingOrNil *js_ast.Binding

			// The catch binding is optional
			if p.lexer.Token == js_lexer.TOpenParen {
				p.lexer.Next()
				binding := p.parseBinding()
				kind := js_ast.SymbolOther
				if _, isIdentifier := binding.Data.(*js_ast.BIdentifier); isIdentifier {
					kind = js_ast.SymbolCatchIdentifier
				}
				p.declareBinding(kind, binding)
				bindingOrNil = &binding

				// TypeScript allows a type annotation on the catch binding
				if p.options.TS && p.lexer.Token == js_lexer.TColon {
					p.lexer.Next()
					p.skipTypeScriptType(js_ast.LLowest)
				}
				p.lexer.Expect(js_lexer.TCloseParen)
			}

			p.lexer.Expect(js_lexer.TOpenBrace)
			stmts := p.parseStmtsUpTo(js_lexer.TCloseBrace, parseStmtOpts{})
			p.lexer.Next()
			catch = &js_ast.Catch{Loc: catchLoc, BindingOrNil: bindingOrNil, Body: stmts}
			p.popScope()
		}

		if p.lexer.Token == js_lexer.TFinally {
			finallyLoc := p.lexer.Loc()
			p.pushScopeForParsePass(js_ast.ScopeBlock, finallyLoc)
			p.lexer.Next()
			p.lexer.Expect(js_lexer.TOpenBrace)
			stmts := p.parseStmtsUpTo(js_lexer.TCloseBrace, parseStmtOpts{})
			p.lexer.Next()
			finally = &js_ast.Finally{Loc: finallyLoc, Stmts: stmts}
			p.popScope()
		}

		if catch == nil && finally == nil {
			p.lexer.Expected(js_lexer.TCatch)
		}
		return js_ast.Stmt{Loc: loc, Data: &js_ast.STry{BodyLoc: bodyLoc, Body: body, Catch: catch, Finally: finally}}

	case js_lexer.TFor:
		p.pushScopeForParsePass(js_ast.ScopeBlock, loc)
		defer p.popScope()

		p.lexer.Next()
		isForAwait := p.lexer.IsContextualKeyword("await")
		if isForAwait {
			if !p.fnOrArrowDataParse.allowAwait {
				p.log.AddErrorWithKind(&p.source, logger.KindSyntax, p.lexer.Range(),
					"Cannot use \"await\" outside an async function")
				isForAwait = false
			}
			p.lexer.Next()
		}
		p.lexer.Expect(js_lexer.TOpenParen)

		var initOrNil js_ast.Stmt
		initLoc := p.lexer.Loc()

		// "in" is not allowed in the init clause
		p.allowIn = false

		switch p.lexer.Token {
		case js_lexer.TVar:
			p.lexer.Next()
			decls := p.parseAndDeclareDecls(js_ast.SymbolHoisted)
			initOrNil = js_ast.Stmt{Loc: initLoc, Data: &js_ast.SLocal{Kind: js_ast.LocalVar, Decls: decls}}

		case js_lexer.TConst:
			p.lexer.Next()
			decls := p.parseAndDeclareDecls(js_ast.SymbolConst)
			initOrNil = js_ast.Stmt{Loc: initLoc, Data: &js_ast.SLocal{Kind: js_ast.LocalConst, Decls: decls}}

		case js_lexer.TSemicolon:

		default:
			var expr js_ast.Expr
			var isLetDecl bool
			expr, initOrNil, isLetDecl = p.parseExprOrLetStmt(initLoc)
			if !isLetDecl {
				initOrNil = js_ast.Stmt{Loc: initLoc, Data: &js_ast.SExpr{Value: expr}}
			}
		}

		p.allowIn = true

		// "for (let x in y) {}" and "for (let x of y) {}"
		if p.lexer.Token == js_lexer.TIn {
			p.forbidInitializers(initOrNil, "in")
			p.lexer.Next()
			value := p.parseExpr(js_ast.LLowest)
			p.lexer.Expect(js_lexer.TCloseParen)
			body := p.parseStmt(parseStmtOpts{})
			return js_ast.Stmt{Loc: loc, Data: &js_ast.SForIn{Init: initOrNil, Value: value, Body: body}}
		}
		if p.lexer.IsContextualKeyword("of") || isForAwait {
			if isForAwait && !p.lexer.IsContextualKeyword("of") {
				p.lexer.ExpectedString("\"of\"")
			}
			p.forbidInitializers(initOrNil, "of")
			p.lexer.Next()
			value := p.parseExpr(js_ast.LComma)
			p.lexer.Expect(js_lexer.TCloseParen)
			body := p.parseStmt(parseStmtOpts{})
			return js_ast.Stmt{Loc: loc, Data: &js_ast.SForOf{IsAwait: isForAwait, Init: initOrNil, Value: value, Body: body}}
		}

		p.lexer.Expect(js_lexer.TSemicolon)

		var testOrNil js_ast.Expr
		if p.lexer.Token != js_lexer.TSemicolon {
			testOrNil = p.parseExpr(js_ast.LLowest)
		}
		p.lexer.Expect(js_lexer.TSemicolon)

		var updateOrNil js_ast.Expr
		if p.lexer.Token != js_lexer.TCloseParen {
			updateOrNil = p.parseExpr(js_ast.LLowest)
		}
		p.lexer.Expect(js_lexer.TCloseParen)
		body := p.parseStmt(parseStmtOpts{})

		var initPtr *js_ast.Stmt
		if initOrNil.Data != nil {
			initPtr = &initOrNil
		}
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SFor{
			InitOrNil:   initPtr,
			TestOrNil:   testOrNil,
			UpdateOrNil: updateOrNil,
			Body:        body,
		}}

	case js_lexer.TReturn:
		p.lexer.Next()
		var valueOrNil js_ast.Expr
		if p.lexer.Token != js_lexer.TSemicolon &&
			!p.lexer.HasNewlineBefore &&
			p.lexer.Token != js_lexer.TCloseBrace &&
			p.lexer.Token != js_lexer.TEndOfFile {
			valueOrNil = p.parseExpr(js_ast.LLowest)
		}
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SReturn{ValueOrNil: valueOrNil}}

	case js_lexer.TThrow:
		p.lexer.Next()
		if p.lexer.HasNewlineBefore {
			p.log.AddErrorWithKind(&p.source, logger.KindSyntax, logger.Range{Loc: logger.Loc{Start: loc.Start + 5}},
				"Unexpected newline after \"throw\"")
			panic(js_lexer.LexerPanic{})
		}
		expr := p.parseExpr(js_ast.LLowest)
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SThrow{Value: expr}}

	case js_lexer.TBreak:
		p.lexer.Next()
		name, nameLoc := p.parseLabelName()
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SBreak{Label: name, LabelLoc: nameLoc}}

	case js_lexer.TContinue:
		p.lexer.Next()
		name, nameLoc := p.parseLabelName()
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SContinue{Label: name, LabelLoc: nameLoc}}

	case js_lexer.TIdentifier:
		raw := p.lexer.Raw()

		if raw == "async" {
			asyncRange := p.lexer.Range()
			p.lexer.Next()
			if p.lexer.Token == js_lexer.TFunction && !p.lexer.HasNewlineBefore {
				return p.parseFnStmt(loc, opts, true /* isAsync */, asyncRange)
			}
			expr := p.parseSuffix(p.parseAsyncPrefixExpr(loc), js_ast.LLowest, 0)
			p.lexer.ExpectOrInsertSemicolon()
			return js_ast.Stmt{Loc: loc, Data: &js_ast.SExpr{Value: expr}}
		}

		if p.options.TS {
			if stmt, handled := p.parseTypeScriptStmt(loc, opts, raw); handled {
				return stmt
			}
		}

		expr, stmt, isLetDecl := p.parseExprOrLetStmt(loc)
		if isLetDecl {
			p.lexer.ExpectOrInsertSemicolon()
			return stmt
		}

		// "x: statement" is a label
		if ident, isIdent := expr.Data.(*js_ast.EIdentifier); isIdent && p.lexer.Token == js_lexer.TColon {
			p.lexer.Next()
			child := p.parseStmt(parseStmtOpts{})
			return js_ast.Stmt{Loc: loc, Data: &js_ast.SLabel{Name: ident.Name, NameLoc: expr.Loc, Stmt: child}}
		}

		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SExpr{Value: expr}}

	default:
		expr := p.parseExpr(js_ast.LLowest)
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SExpr{Value: expr}}
	}
}

func (p *parser) forbidLexicalDecl(loc logger.Loc) {
	r := js_lexer.RangeOfIdentifier(p.source, loc)
	p.log.AddErrorWithKind(&p.source, logger.KindSyntax, r,
		"Cannot use a declaration in a single-statement context")
	panic(js_lexer.LexerPanic{})
}

func (p *parser) forbidInitializers(init js_ast.Stmt, loopType string) {
	if local, ok := init.Data.(*js_ast.SLocal); ok {
		if len(local.Decls) > 1 {
			p.log.AddErrorWithKind(&p.source, logger.KindSyntax, logger.Range{Loc: init.Loc},
				fmt.Sprintf("for-%s loops must have a single declaration", loopType))
			panic(js_lexer.LexerPanic{})
		}
		if len(local.Decls) == 1 && local.Decls[0].ValueOrNil.Data != nil {
			p.log.AddErrorWithKind(&p.source, logger.KindSyntax, logger.Range{Loc: init.Loc},
				fmt.Sprintf("for-%s loop variables cannot have an initializer", loopType))
			panic(js_lexer.LexerPanic{})
		}
	}
}

func (p *parser) parseLabelName() (string, logger.Loc) {
	if p.lexer.Token != js_lexer.TIdentifier || p.lexer.HasNewlineBefore {
		return "", logger.Loc{}
	}
	name, nameLoc := p.lexer.Identifier, p.lexer.Loc()
	p.lexer.Next()
	return name, nameLoc
}

// parseExprOrLetStmt disambiguates "let" as a declaration keyword from "let"
// as an ordinary identifier. It is only a declaration when followed by an
// identifier or a destructuring pattern.
func (p *parser) parseExprOrLetStmt(loc logger.Loc) (js_ast.Expr, js_ast.Stmt, bool) {
	if p.lexer.Token != js_lexer.TIdentifier || p.lexer.Raw() != "let" {
		return p.parseExpr(js_ast.LLowest), js_ast.Stmt{}, false
	}

	p.lexer.Next()
	switch p.lexer.Token {
	case js_lexer.TIdentifier, js_lexer.TOpenBracket, js_lexer.TOpenBrace:
		decls := p.parseAndDeclareDecls(js_ast.SymbolOther)
		return js_ast.Expr{}, js_ast.Stmt{Loc: loc, Data: &js_ast.SLocal{
			Kind:  js_ast.LocalLet,
			Decls: decls,
		}}, true
	}

	// "let" is being used as an identifier
	expr := js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: "let", Ref: js_ast.InvalidRef}}
	expr = p.parseSuffix(expr, js_ast.LLowest, 0)
	return expr, js_ast.Stmt{}, false
}

func (p *parser) parseAndDeclareDecls(kind js_ast.SymbolKind) []js_ast.Decl {
	decls := []js_ast.Decl{}

	for {
		binding := p.parseBinding()
		p.declareBinding(kind, binding)

		// Skip over types
		if p.options.TS {
			// "let foo!: number"
			if p.lexer.Token == js_lexer.TExclamation && !p.lexer.HasNewlineBefore {
				p.lexer.Next()
			}
			if p.lexer.Token == js_lexer.TColon {
				p.lexer.Next()
				p.skipTypeScriptType(js_ast.LLowest)
			}
		}

		var valueOrNil js_ast.Expr
		if p.lexer.Token == js_lexer.TEquals {
			p.lexer.Next()
			valueOrNil = p.parseExpr(js_ast.LComma)
		}

		decls = append(decls, js_ast.Decl{Binding: binding, ValueOrNil: valueOrNil})
		if p.lexer.Token != js_lexer.TComma {
			break
		}
		p.lexer.Next()
	}

	return decls
}

func (p *parser) parseBinding() js_ast.Binding {
	loc := p.lexer.Loc()

	switch p.lexer.Token {
	case js_lexer.TIdentifier:
		name := p.lexer.Identifier
		p.lexer.Next()
		return js_ast.Binding{Loc: loc, Data: &js_ast.BIdentifier{Name: name, Ref: js_ast.InvalidRef}}

	case js_lexer.TOpenBracket:
		p.lexer.Next()
		isSingleLine := !p.lexer.HasNewlineBefore
		items := []js_ast.ArrayBinding{}
		hasSpread := false

		oldAllowIn := p.allowIn
		p.allowIn = true

		for p.lexer.Token != js_lexer.TCloseBracket {
			if p.lexer.Token == js_lexer.TComma {
				// An omitted binding
				binding := js_ast.Binding{Loc: p.lexer.Loc(), Data: &js_ast.BMissing{}}
				items = append(items, js_ast.ArrayBinding{Binding: binding})
			} else {
				if p.lexer.Token == js_lexer.TDotDotDot {
					p.lexer.Next()
					hasSpread = true
				}

				binding := p.parseBinding()

				var defaultValueOrNil js_ast.Expr
				if !hasSpread && p.lexer.Token == js_lexer.TEquals {
					p.lexer.Next()
					defaultValueOrNil = p.parseExpr(js_ast.LComma)
				}

				items = append(items, js_ast.ArrayBinding{Binding: binding, DefaultValueOrNil: defaultValueOrNil})

				if hasSpread && p.lexer.Token == js_lexer.TComma {
					p.log.AddErrorWithKind(&p.source, logger.KindSyntax, p.lexer.Range(),
						"Unexpected \",\" after rest pattern")
					panic(js_lexer.LexerPanic{})
				}
			}

			if p.lexer.Token != js_lexer.TComma {
				break
			}
			if p.lexer.HasNewlineBefore {
				isSingleLine = false
			}
			p.lexer.Next()
			if p.lexer.HasNewlineBefore {
				isSingleLine = false
			}
		}

		p.allowIn = oldAllowIn

		if p.lexer.HasNewlineBefore {
			isSingleLine = false
		}
		p.lexer.Expect(js_lexer.TCloseBracket)
		return js_ast.Binding{Loc: loc, Data: &js_ast.BArray{
			Items:        items,
			HasSpread:    hasSpread,
			IsSingleLine: isSingleLine,
		}}

	case js_lexer.TOpenBrace:
		p.lexer.Next()
		isSingleLine := !p.lexer.HasNewlineBefore
		properties := []js_ast.PropertyBinding{}

		oldAllowIn := p.allowIn
		p.allowIn = true

		for p.lexer.Token != js_lexer.TCloseBrace {
			property := p.parsePropertyBinding()
			properties = append(properties, property)

			if property.IsSpread && p.lexer.Token == js_lexer.TComma {
				p.log.AddErrorWithKind(&p.source, logger.KindSyntax, p.lexer.Range(),
					"Unexpected \",\" after rest pattern")
				panic(js_lexer.LexerPanic{})
			}

			if p.lexer.Token != js_lexer.TComma {
				break
			}
			if p.lexer.HasNewlineBefore {
				isSingleLine = false
			}
			p.lexer.Next()
			if p.lexer.HasNewlineBefore {
				isSingleLine = false
			}
		}

		p.allowIn = oldAllowIn

		if p.lexer.HasNewlineBefore {
			isSingleLine = false
		}
		p.lexer.Expect(js_lexer.TCloseBrace)
		return js_ast.Binding{Loc: loc, Data: &js_ast.BObject{
			Properties:   properties,
			IsSingleLine: isSingleLine,
		}}
	}

	p.lexer.Expect(js_lexer.TIdentifier)
	return js_ast.Binding{}
}

func (p *parser) parsePropertyBinding() js_ast.PropertyBinding {
	var key js_ast.Expr
	isComputed := false

	switch p.lexer.Token {
	case js_lexer.TDotDotDot:
		p.lexer.Next()
		value := js_ast.Binding{Loc: p.lexer.Loc(), Data: &js_ast.BIdentifier{
			Name: p.lexer.Identifier,
			Ref:  js_ast.InvalidRef,
		}}
		p.lexer.Expect(js_lexer.TIdentifier)
		return js_ast.PropertyBinding{IsSpread: true, Value: value}

	case js_lexer.TNumericLiteral:
		key = js_ast.Expr{Loc: p.lexer.Loc(), Data: &js_ast.ENumber{Value: p.lexer.Number}}
		p.lexer.Next()

	case js_lexer.TStringLiteral:
		key = js_ast.Expr{Loc: p.lexer.Loc(), Data: &js_ast.EString{Value: p.lexer.StringLiteral}}
		p.lexer.Next()

	case js_lexer.TOpenBracket:
		isComputed = true
		p.lexer.Next()
		key = p.parseExpr(js_ast.LComma)
		p.lexer.Expect(js_lexer.TCloseBracket)

	default:
		name := p.lexer.Identifier
		loc := p.lexer.Loc()
		if !p.lexer.IsIdentifierOrKeyword() {
			p.lexer.Expect(js_lexer.TIdentifier)
		}
		p.lexer.Next()
		key = js_ast.Expr{Loc: loc, Data: &js_ast.EString{Value: js_lexer.StringToUTF16(name)}}

		if p.lexer.Token != js_lexer.TColon && p.lexer.Token != js_lexer.TOpenParen {
			value := js_ast.Binding{Loc: loc, Data: &js_ast.BIdentifier{Name: name, Ref: js_ast.InvalidRef}}

			var defaultValueOrNil js_ast.Expr
			if p.lexer.Token == js_lexer.TEquals {
				p.lexer.Next()
				defaultValueOrNil = p.parseExpr(js_ast.LComma)
			}

			return js_ast.PropertyBinding{
				Key:               key,
				Value:             value,
				DefaultValueOrNil: defaultValueOrNil,
			}
		}
	}

	p.lexer.Expect(js_lexer.TColon)
	value := p.parseBinding()

	var defaultValueOrNil js_ast.Expr
	if p.lexer.Token == js_lexer.TEquals {
		p.lexer.Next()
		defaultValueOrNil = p.parseExpr(js_ast.LComma)
	}

	return js_ast.PropertyBinding{
		Key:               key,
		Value:             value,
		DefaultValueOrNil: defaultValueOrNil,
		IsComputed:        isComputed,
	}
}

////////////////////////////////////////////////////////////////////////////////
// Functions and classes

func (p *parser) parseFnStmt(loc logger.Loc, opts parseStmtOpts, isAsync bool, asyncRange logger.Range) js_ast.Stmt {
	isGenerator := false
	p.lexer.Expect(js_lexer.TFunction)
	if p.lexer.Token == js_lexer.TAsterisk {
		isGenerator = true
		p.lexer.Next()
	}

	var name *js_ast.LocRef
	if p.lexer.Token == js_lexer.TIdentifier || !opts.isNameOptional {
		nameLoc := p.lexer.Loc()
		nameText := p.lexer.Identifier
		p.lexer.Expect(js_lexer.TIdentifier)

		kind := js_ast.SymbolHoistedFunction
		if isGenerator || isAsync {
			kind = js_ast.SymbolGeneratorOrAsyncFunction
		}
		ref := p.declareSymbol(kind, nameLoc, nameText)
		name = &js_ast.LocRef{Loc: nameLoc, Ref: ref}
	}

	fn := p.parseFn(name, loc, isAsync, isGenerator)
	return js_ast.Stmt{Loc: loc, Data: &js_ast.SFunction{Fn: fn, IsExport: opts.isExport}}
}

// parseFn parses everything after the function name. The caller is expected
// to have consumed the "function" keyword and the optional "*". The argument
// scope is pushed at "loc", which must also be the location of the statement
// or expression node holding the function so the bind pass can find it.
func (p *parser) parseFn(name *js_ast.LocRef, loc logger.Loc, isAsync bool, isGenerator bool) js_ast.Fn {
	p.pushScopeForParsePass(js_ast.ScopeFunctionArgs, loc)
	defer p.popScope()

	oldFnOrArrowData := p.fnOrArrowDataParse
	p.fnOrArrowDataParse = fnOrArrowDataParse{
		allowAwait: isAsync,
		allowYield: isGenerator,
	}
	defer func() { p.fnOrArrowDataParse = oldFnOrArrowData }()

	if p.options.TS && p.lexer.Token == js_lexer.TLessThan {
		p.skipTypeScriptTypeParameters()
	}

	args, hasRestArg := p.parseFnArgs()

	// "function foo(): string {}"
	if p.options.TS && p.lexer.Token == js_lexer.TColon {
		p.lexer.Next()
		p.skipTypeScriptReturnType()
	}

	body := p.parseFnBody()

	return js_ast.Fn{
		Name:        name,
		Args:        args,
		Body:        body,
		IsAsync:     isAsync,
		IsGenerator: isGenerator,
		HasRestArg:  hasRestArg,
	}
}

func (p *parser) parseFnArgs() ([]js_ast.Arg, bool) {
	args := []js_ast.Arg{}
	hasRestArg := false
	p.lexer.Expect(js_lexer.TOpenParen)

	oldAllowIn := p.allowIn
	p.allowIn = true

	for p.lexer.Token != js_lexer.TCloseParen {
		if p.lexer.Token == js_lexer.TDotDotDot {
			p.lexer.Next()
			hasRestArg = true
		}

		// TypeScript parameter property modifiers on constructor arguments are
		// not supported; a plain "this" parameter is skipped
		if p.options.TS && p.lexer.Token == js_lexer.TThis {
			p.lexer.Next()
			if p.lexer.Token == js_lexer.TColon {
				p.lexer.Next()
				p.skipTypeScriptType(js_ast.LLowest)
			}
			if p.lexer.Token == js_lexer.TComma {
				p.lexer.Next()
			}
			continue
		}

		binding := p.parseBinding()
		p.declareBinding(js_ast.SymbolHoisted, binding)

		if p.options.TS {
			// "(arg?: number)"
			if p.lexer.Token == js_lexer.TQuestion {
				p.lexer.Next()
			}
			if p.lexer.Token == js_lexer.TColon {
				p.lexer.Next()
				p.skipTypeScriptType(js_ast.LLowest)
			}
		}

		var defaultOrNil js_ast.Expr
		if p.lexer.Token == js_lexer.TEquals {
			p.lexer.Next()
			defaultOrNil = p.parseExpr(js_ast.LComma)
		}

		args = append(args, js_ast.Arg{Binding: binding, DefaultOrNil: defaultOrNil})
		if p.lexer.Token != js_lexer.TComma {
			break
		}
		if hasRestArg {
			p.log.AddErrorWithKind(&p.source, logger.KindSyntax, p.lexer.Range(),
				"Unexpected \",\" after rest pattern")
			panic(js_lexer.LexerPanic{})
		}
		p.lexer.Next()
	}

	p.allowIn = oldAllowIn

	p.lexer.Expect(js_lexer.TCloseParen)
	return args, hasRestArg
}

func (p *parser) parseFnBody() js_ast.FnBody {
	loc := p.lexer.Loc()
	p.pushScopeForParsePass(js_ast.ScopeFunctionBody, loc)
	defer p.popScope()

	p.lexer.Expect(js_lexer.TOpenBrace)
	stmts := p.parseStmtsUpTo(js_lexer.TCloseBrace, parseStmtOpts{})
	p.lexer.Next()

	return js_ast.FnBody{Loc: loc, Stmts: stmts}
}

func (p *parser) parseClassStmt(loc logger.Loc, opts parseStmtOpts) js_ast.Stmt {
	var name *js_ast.LocRef
	p.lexer.Expect(js_lexer.TClass)

	if p.lexer.Token == js_lexer.TIdentifier || !opts.isNameOptional {
		nameLoc := p.lexer.Loc()
		nameText := p.lexer.Identifier
		p.lexer.Expect(js_lexer.TIdentifier)
		ref := p.declareSymbol(js_ast.SymbolClass, nameLoc, nameText)
		name = &js_ast.LocRef{Loc: nameLoc, Ref: ref}
	}

	class := p.parseClass(loc, name)
	return js_ast.Stmt{Loc: loc, Data: &js_ast.SClass{Class: class, IsExport: opts.isExport}}
}

// parseClass parses everything after the optional class name. The class name
// scope is pushed at "loc", which must be the location of the statement or
// expression node holding the class. A class statement name has already been
// declared into the enclosing scope by the caller.
func (p *parser) parseClass(loc logger.Loc, name *js_ast.LocRef) js_ast.Class {
	p.pushScopeForParsePass(js_ast.ScopeClassName, loc)
	defer p.popScope()

	return p.parseClassBodyAfterName(name)
}

type propertyOpts struct {
	isClass    bool
	isStatic   bool
	isAsync    bool
	isGenerator bool
}

func (p *parser) parseProperty(kind js_ast.PropertyKind, opts propertyOpts) (js_ast.Property, bool) {
	var key js_ast.Expr
	isComputed := false

	switch p.lexer.Token {
	case js_lexer.TNumericLiteral:
		key = js_ast.Expr{Loc: p.lexer.Loc(), Data: &js_ast.ENumber{Value: p.lexer.Number}}
		p.lexer.Next()

	case js_lexer.TStringLiteral:
		key = js_ast.Expr{Loc: p.lexer.Loc(), Data: &js_ast.EString{Value: p.lexer.StringLiteral}}
		p.lexer.Next()

	case js_lexer.TPrivateIdentifier:
		if !opts.isClass {
			p.lexer.Expected(js_lexer.TIdentifier)
		}
		key = js_ast.Expr{Loc: p.lexer.Loc(), Data: &js_ast.EPrivateIdentifier{Name: p.lexer.Identifier}}
		p.lexer.Next()

	case js_lexer.TOpenBracket:
		isComputed = true
		p.lexer.Next()

		oldAllowIn := p.allowIn
		p.allowIn = true
		key = p.parseExpr(js_ast.LComma)
		p.allowIn = oldAllowIn

		p.lexer.Expect(js_lexer.TCloseBracket)

	case js_lexer.TAsterisk:
		if kind != js_ast.PropertyNormal || opts.isGenerator {
			p.lexer.Unexpected()
		}
		p.lexer.Next()
		opts.isGenerator = true
		return p.parseProperty(kind, opts)

	case js_lexer.TDotDotDot:
		if opts.isClass {
			p.lexer.Unexpected()
		}
		p.lexer.Next()
		value := p.parseExpr(js_ast.LComma)
		return js_ast.Property{
			Kind:       js_ast.PropertySpread,
			ValueOrNil: value,
		}, true

	default:
		name := p.lexer.Identifier
		loc := p.lexer.Loc()
		if !p.lexer.IsIdentifierOrKeyword() {
			p.lexer.Expect(js_lexer.TIdentifier)
		}
		p.lexer.Next()

		// Check for modifiers: "get x() {}", "static x", "async x() {}"
		if kind == js_ast.PropertyNormal && !opts.isGenerator {
			couldBeModifier := p.lexer.Token != js_lexer.TColon &&
				p.lexer.Token != js_lexer.TOpenParen &&
				p.lexer.Token != js_lexer.TComma &&
				p.lexer.Token != js_lexer.TCloseBrace &&
				p.lexer.Token != js_lexer.TEquals &&
				p.lexer.Token != js_lexer.TSemicolon &&
				p.lexer.Token != js_lexer.TLessThan

			if couldBeModifier {
				switch name {
				case "get":
					if !p.lexer.HasNewlineBefore {
						return p.parseProperty(js_ast.PropertyGet, opts)
					}
				case "set":
					if !p.lexer.HasNewlineBefore {
						return p.parseProperty(js_ast.PropertySet, opts)
					}
				case "async":
					if !p.lexer.HasNewlineBefore {
						opts.isAsync = true
						return p.parseProperty(kind, opts)
					}
				case "static":
					if opts.isClass && !opts.isStatic {
						opts.isStatic = true
						return p.parseProperty(kind, opts)
					}
				case "declare", "abstract", "override", "public", "private", "protected", "readonly":
					if p.options.TS && opts.isClass {
						return p.parseProperty(kind, opts)
					}
				}
			}
		}

		key = js_ast.Expr{Loc: loc, Data: &js_ast.EString{Value: js_lexer.StringToUTF16(name)}}

		// Object literal shorthand: "{x}", "{x = 1}" inside patterns
		if !opts.isClass && kind == js_ast.PropertyNormal && !opts.isAsync {
			switch p.lexer.Token {
			case js_lexer.TComma, js_lexer.TCloseBrace:
				value := js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: name, Ref: js_ast.InvalidRef}}
				return js_ast.Property{
					Kind:         kind,
					Key:          key,
					ValueOrNil:   value,
					WasShorthand: true,
				}, true

			case js_lexer.TEquals:
				// Only valid when this object ends up being a binding pattern,
				// which is checked when the conversion happens
				value := js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: name, Ref: js_ast.InvalidRef}}
				p.lexer.Next()
				initializer := p.parseExpr(js_ast.LComma)
				return js_ast.Property{
					Kind:             kind,
					Key:              key,
					ValueOrNil:       value,
					InitializerOrNil: initializer,
					WasShorthand:     true,
				}, true
			}
		}
	}

	// A class member with a method body
	if opts.isClass || kind != js_ast.PropertyNormal || opts.isAsync || opts.isGenerator ||
		p.lexer.Token == js_lexer.TOpenParen || p.lexer.Token == js_lexer.TLessThan {
		isMethod := p.lexer.Token == js_lexer.TOpenParen || p.lexer.Token == js_lexer.TLessThan ||
			kind != js_ast.PropertyNormal || opts.isAsync || opts.isGenerator

		if isMethod {
			fnLoc := p.lexer.Loc()
			fn := p.parseFn(nil, fnLoc, opts.isAsync, opts.isGenerator)
			value := js_ast.Expr{Loc: fnLoc, Data: &js_ast.EFunction{Fn: fn}}
			return js_ast.Property{
				Kind:       kind,
				Key:        key,
				ValueOrNil: value,
				IsComputed: isComputed,
				IsMethod:   true,
				IsStatic:   opts.isStatic,
			}, true
		}
	}

	if opts.isClass {
		// A class field

		// "class { x!: number }" and "class { x?: number }"
		if p.options.TS {
			if p.lexer.Token == js_lexer.TExclamation || p.lexer.Token == js_lexer.TQuestion {
				p.lexer.Next()
			}
			if p.lexer.Token == js_lexer.TColon {
				p.lexer.Next()
				p.skipTypeScriptType(js_ast.LLowest)
			}
		}

		var initializerOrNil js_ast.Expr
		if p.lexer.Token == js_lexer.TEquals {
			p.lexer.Next()
			initializerOrNil = p.parseExpr(js_ast.LComma)
		}
		p.lexer.ExpectOrInsertSemicolon()

		return js_ast.Property{
			Kind:             kind,
			Key:              key,
			InitializerOrNil: initializerOrNil,
			IsComputed:       isComputed,
			IsStatic:         opts.isStatic,
		}, true
	}

	// An object literal property
	p.lexer.Expect(js_lexer.TColon)
	value := p.parseExpr(js_ast.LComma)

	return js_ast.Property{
		Kind:       kind,
		Key:        key,
		ValueOrNil: value,
		IsComputed: isComputed,
	}, true
}

////////////////////////////////////////////////////////////////////////////////
// Expression parsing

type exprFlag uint8

const (
	exprFlagForbidCall exprFlag = 1 << iota
)

func (p *parser) parseExpr(level js_ast.L) js_ast.Expr {
	return p.parseSuffix(p.parsePrefix(level, 0), level, 0)
}

func (p *parser) parsePrefix(level js_ast.L, flags exprFlag) js_ast.Expr {
	loc := p.lexer.Loc()

	switch p.lexer.Token {
	case js_lexer.TSuper:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ESuper{}}

	case js_lexer.TOpenParen:
		// Arrow functions are not allowed inside certain expressions
		if level > js_ast.LAssign {
			p.lexer.Next()
			value := p.parseExpr(js_ast.LLowest)
			p.lexer.Expect(js_lexer.TCloseParen)
			return value
		}
		return p.parseParenExpr(loc, parenExprOpts{})

	case js_lexer.TFalse:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EBoolean{Value: false}}

	case js_lexer.TTrue:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EBoolean{Value: true}}

	case js_lexer.TNull:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ENull{}}

	case js_lexer.TThis:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EThis{}}

	case js_lexer.TIdentifier:
		name := p.lexer.Identifier
		raw := p.lexer.Raw()
		p.lexer.Next()

		switch raw {
		case "async":
			return p.parseAsyncPrefixExpr(loc)

		case "await":
			if p.fnOrArrowDataParse.allowAwait {
				return js_ast.Expr{Loc: loc, Data: &js_ast.EAwait{Value: p.parseExpr(js_ast.LPrefix)}}
			}

		case "yield":
			if p.fnOrArrowDataParse.allowYield {
				isStar := false
				if p.lexer.Token == js_lexer.TAsterisk && !p.lexer.HasNewlineBefore {
					isStar = true
					p.lexer.Next()
				}

				var valueOrNil js_ast.Expr
				if isStar || (!p.lexer.HasNewlineBefore && yieldCanHaveValue(p.lexer.Token)) {
					valueOrNil = p.parseExpr(js_ast.LYield)
				}
				return js_ast.Expr{Loc: loc, Data: &js_ast.EYield{ValueOrNil: valueOrNil, IsStar: isStar}}
			}

		case "undefined":
			return js_ast.Expr{Loc: loc, Data: &js_ast.EUndefined{}}
		}

		// "x => x"
		if p.lexer.Token == js_lexer.TEqualsGreaterThan && level <= js_ast.LAssign {
			p.pushScopeForParsePass(js_ast.ScopeFunctionArgs, loc)
			defer p.popScope()

			ref := p.declareSymbol(js_ast.SymbolHoisted, loc, name)
			arg := js_ast.Arg{Binding: js_ast.Binding{Loc: loc, Data: &js_ast.BIdentifier{Name: name, Ref: ref}}}
			arrow := p.parseArrowBody([]js_ast.Arg{arg}, fnOrArrowDataParse{
				allowAwait: false,
			})
			return js_ast.Expr{Loc: loc, Data: arrow}
		}

		return js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: name, Ref: js_ast.InvalidRef}}

	case js_lexer.TStringLiteral:
		value := p.lexer.StringLiteral
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EString{Value: value}}

	case js_lexer.TNoSubstitutionTemplateLiteral:
		headCooked := p.lexer.StringLiteral
		headRaw := p.lexer.RawTemplateContents()
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ETemplate{
			HeadLoc:    loc,
			HeadCooked: headCooked,
			HeadRaw:    headRaw,
		}}

	case js_lexer.TTemplateHead:
		headCooked := p.lexer.StringLiteral
		headRaw := p.lexer.RawTemplateContents()
		parts := p.parseTemplateParts(false /* includeRaw */)
		return js_ast.Expr{Loc: loc, Data: &js_ast.ETemplate{
			HeadLoc:    loc,
			HeadCooked: headCooked,
			HeadRaw:    headRaw,
			Parts:      parts,
		}}

	case js_lexer.TNumericLiteral:
		value := p.lexer.Number
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ENumber{Value: value}}

	case js_lexer.TBigIntegerLiteral:
		value := p.lexer.Identifier
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EBigInt{Value: value}}

	case js_lexer.TSlash, js_lexer.TSlashEquals:
		p.lexer.ScanRegExp()
		value := p.lexer.Raw()
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ERegExp{Value: value}}

	case js_lexer.TVoid:
		p.lexer.Next()
		value := p.parseExpr(js_ast.LPrefix)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpVoid, Value: value}}

	case js_lexer.TTypeof:
		p.lexer.Next()
		value := p.parseExpr(js_ast.LPrefix)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpTypeof, Value: value}}

	case js_lexer.TDelete:
		p.lexer.Next()
		value := p.parseExpr(js_ast.LPrefix)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpDelete, Value: value}}

	case js_lexer.TPlus:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPos, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TMinus:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpNeg, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TTilde:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpCpl, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TExclamation:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpNot, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TMinusMinus:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPreDec, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TPlusPlus:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPreInc, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TFunction:
		return p.parseFnExpr(loc, false /* isAsync */)

	case js_lexer.TClass:
		p.lexer.Next()

		// A class expression name is only in scope inside the class, so it is
		// declared inside the class name scope rather than the enclosing one
		if p.lexer.Token == js_lexer.TIdentifier {
			nameLoc := p.lexer.Loc()
			nameText := p.lexer.Identifier
			p.lexer.Next()
			class := p.parseClassExprWithName(loc, nameLoc, nameText)
			return js_ast.Expr{Loc: loc, Data: &js_ast.EClass{Class: class}}
		}
		class := p.parseClass(loc, nil)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EClass{Class: class}}

	case js_lexer.TNew:
		p.lexer.Next()

		// "new.target"
		if p.lexer.Token == js_lexer.TDot {
			p.lexer.Next()
			if !p.lexer.IsContextualKeyword("target") {
				p.lexer.Unexpected()
			}
			p.lexer.Next()
			return js_ast.Expr{Loc: loc, Data: &js_ast.ENewTarget{}}
		}

		target := p.parseExprWithFlags(js_ast.LMember, exprFlagForbidCall)

		if p.options.TS && p.lexer.Token == js_lexer.TLessThan {
			p.trySkipTypeScriptTypeArgumentsWithBacktracking()
		}

		var args []js_ast.Expr
		if p.lexer.Token == js_lexer.TOpenParen {
			args = p.parseCallArgs()
		}
		return js_ast.Expr{Loc: loc, Data: &js_ast.ENew{Target: target, Args: args}}

	case js_lexer.TOpenBracket:
		p.lexer.Next()
		isSingleLine := !p.lexer.HasNewlineBefore
		items := []js_ast.Expr{}

		oldAllowIn := p.allowIn
		p.allowIn = true

		for p.lexer.Token != js_lexer.TCloseBracket {
			switch p.lexer.Token {
			case js_lexer.TComma:
				items = append(items, js_ast.Expr{Loc: p.lexer.Loc(), Data: &js_ast.EMissing{}})

			case js_lexer.TDotDotDot:
				dotsLoc := p.lexer.Loc()
				p.lexer.Next()
				item := p.parseExpr(js_ast.LComma)
				items = append(items, js_ast.Expr{Loc: dotsLoc, Data: &js_ast.ESpread{Value: item}})

			default:
				item := p.parseExpr(js_ast.LComma)
				items = append(items, item)
			}

			if p.lexer.Token != js_lexer.TComma {
				break
			}
			if p.lexer.HasNewlineBefore {
				isSingleLine = false
			}
			p.lexer.Next()
			if p.lexer.HasNewlineBefore {
				isSingleLine = false
			}
		}

		p.allowIn = oldAllowIn

		if p.lexer.HasNewlineBefore {
			isSingleLine = false
		}
		p.lexer.Expect(js_lexer.TCloseBracket)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EArray{Items: items, IsSingleLine: isSingleLine}}

	case js_lexer.TOpenBrace:
		p.lexer.Next()
		isSingleLine := !p.lexer.HasNewlineBefore
		properties := []js_ast.Property{}

		oldAllowIn := p.allowIn
		p.allowIn = true

		for p.lexer.Token != js_lexer.TCloseBrace {
			property, ok := p.parseProperty(js_ast.PropertyNormal, propertyOpts{})
			if ok {
				properties = append(properties, property)
			}

			if p.lexer.Token != js_lexer.TComma {
				break
			}
			if p.lexer.HasNewlineBefore {
				isSingleLine = false
			}
			p.lexer.Next()
			if p.lexer.HasNewlineBefore {
				isSingleLine = false
			}
		}

		p.allowIn = oldAllowIn

		if p.lexer.HasNewlineBefore {
			isSingleLine = false
		}
		p.lexer.Expect(js_lexer.TCloseBrace)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EObject{Properties: properties, IsSingleLine: isSingleLine}}

	case js_lexer.TLessThan:
		// "<A/>" in JSX, "<T>expr" or "<T,>(x) => {}" in TypeScript
		if p.options.JSX {
			p.lexer.NextInsideJSXElement()
			element := p.parseJSXElement(loc)

			// The call above doesn't consume the last TGreaterThan because the
			// caller knows what lexing mode the next token should use
			p.lexer.Next()
			return element
		}
		if p.options.TS {
			// "<T,>(x) => {}" is a generic arrow function
			if p.trySkipTypeScriptTypeParametersThenOpenParenWithBacktracking() {
				return p.parseParenExpr(loc, parenExprOpts{forceArrowFn: true})
			}

			// "<T>expr" is a type cast
			p.lexer.Next()
			p.skipTypeScriptType(js_ast.LLowest)
			p.lexer.ExpectGreaterThan(false /* isInsideJSXElement */)
			return p.parsePrefix(level, flags)
		}
		p.lexer.Unexpected()
		return js_ast.Expr{}

	case js_lexer.TImport:
		p.lexer.Next()
		return p.parseImportExpr(loc)

	case js_lexer.TPrivateIdentifier:
		// "#field in object"
		name := p.lexer.Identifier
		p.lexer.Next()
		if p.lexer.Token != js_lexer.TIn {
			p.lexer.Expected(js_lexer.TIn)
		}
		return js_ast.Expr{Loc: loc, Data: &js_ast.EPrivateIdentifier{Name: name}}

	default:
		p.lexer.Unexpected()
		return js_ast.Expr{}
	}
}

func yieldCanHaveValue(token js_lexer.T) bool {
	switch token {
	case js_lexer.TCloseBrace, js_lexer.TCloseBracket, js_lexer.TCloseParen,
		js_lexer.TColon, js_lexer.TComma, js_lexer.TSemicolon, js_lexer.TEndOfFile:
		return false
	}
	return true
}

func (p *parser) parseFnExpr(loc logger.Loc, isAsync bool) js_ast.Expr {
	p.lexer.Expect(js_lexer.TFunction)
	isGenerator := false
	if p.lexer.Token == js_lexer.TAsterisk {
		isGenerator = true
		p.lexer.Next()
	}

	// The name is optional and is declared by parseFn inside the argument
	// scope so the function can reference itself
	var name *js_ast.LocRef
	var nameText string
	if p.lexer.Token == js_lexer.TIdentifier {
		name = &js_ast.LocRef{Loc: p.lexer.Loc(), Ref: js_ast.InvalidRef}
		nameText = p.lexer.Identifier
		p.lexer.Next()
	}

	fn := p.parseFnWithExprName(name, nameText, loc, isAsync, isGenerator)
	return js_ast.Expr{Loc: loc, Data: &js_ast.EFunction{Fn: fn}}
}

func (p *parser) parseFnWithExprName(name *js_ast.LocRef, nameText string, loc logger.Loc, isAsync bool, isGenerator bool) js_ast.Fn {
	p.pushScopeForParsePass(js_ast.ScopeFunctionArgs, loc)
	defer p.popScope()

	if name != nil {
		name.Ref = p.declareSymbol(js_ast.SymbolHoistedFunction, name.Loc, nameText)
	}

	oldFnOrArrowData := p.fnOrArrowDataParse
	p.fnOrArrowDataParse = fnOrArrowDataParse{
		allowAwait: isAsync,
		allowYield: isGenerator,
	}
	defer func() { p.fnOrArrowDataParse = oldFnOrArrowData }()

	if p.options.TS && p.lexer.Token == js_lexer.TLessThan {
		p.skipTypeScriptTypeParameters()
	}

	args, hasRestArg := p.parseFnArgs()

	if p.options.TS && p.lexer.Token == js_lexer.TColon {
		p.lexer.Next()
		p.skipTypeScriptReturnType()
	}

	body := p.parseFnBody()

	return js_ast.Fn{
		Name:        name,
		Args:        args,
		Body:        body,
		IsAsync:     isAsync,
		IsGenerator: isGenerator,
		HasRestArg:  hasRestArg,
	}
}

func (p *parser) parseClassExprWithName(loc logger.Loc, nameLoc logger.Loc, nameText string) js_ast.Class {
	p.pushScopeForParsePass(js_ast.ScopeClassName, loc)
	defer p.popScope()

	ref := p.declareSymbol(js_ast.SymbolClass, nameLoc, nameText)
	name := &js_ast.LocRef{Loc: nameLoc, Ref: ref}

	return p.parseClassBodyAfterName(name)
}

func (p *parser) parseClassBodyAfterName(name *js_ast.LocRef) js_ast.Class {
	if p.options.TS && p.lexer.Token == js_lexer.TLessThan {
		p.skipTypeScriptTypeParameters()
	}

	var extendsOrNil js_ast.Expr
	if p.lexer.Token == js_lexer.TExtends {
		p.lexer.Next()
		extendsOrNil = p.parseExpr(js_ast.LNew)
		if p.options.TS && p.lexer.Token == js_lexer.TLessThan {
			p.skipTypeScriptTypeArguments(false)
		}
	}

	if p.options.TS && p.lexer.IsContextualKeyword("implements") {
		p.lexer.Next()
		for {
			p.skipTypeScriptType(js_ast.LLowest)
			if p.lexer.Token != js_lexer.TComma {
				break
			}
			p.lexer.Next()
		}
	}

	bodyLoc := p.lexer.Loc()
	p.lexer.Expect(js_lexer.TOpenBrace)
	properties := []js_ast.Property{}

	oldAllowIn := p.allowIn
	p.allowIn = true

	for p.lexer.Token != js_lexer.TCloseBrace {
		if p.lexer.Token == js_lexer.TSemicolon {
			p.lexer.Next()
			continue
		}
		if property, ok := p.parseProperty(js_ast.PropertyNormal, propertyOpts{isClass: true}); ok {
			properties = append(properties, property)
		}
	}

	p.allowIn = oldAllowIn

	p.lexer.Expect(js_lexer.TCloseBrace)
	return js_ast.Class{
		Name:         name,
		ExtendsOrNil: extendsOrNil,
		BodyLoc:      bodyLoc,
		Properties:   properties,
	}
}

// parseAsyncPrefixExpr is called after the "async" identifier has already
// been consumed. "loc" is the location of that identifier.
func (p *parser) parseAsyncPrefixExpr(loc logger.Loc) js_ast.Expr {
	if !p.lexer.HasNewlineBefore {
		switch p.lexer.Token {
		case js_lexer.TFunction:
			// "async function() {}"
			return p.parseFnExpr(loc, true /* isAsync */)

		case js_lexer.TIdentifier:
			// "async x => {}"
			argLoc := p.lexer.Loc()
			argName := p.lexer.Identifier
			p.lexer.Next()

			p.pushScopeForParsePass(js_ast.ScopeFunctionArgs, loc)
			defer p.popScope()

			ref := p.declareSymbol(js_ast.SymbolHoisted, argLoc, argName)
			arg := js_ast.Arg{Binding: js_ast.Binding{Loc: argLoc, Data: &js_ast.BIdentifier{Name: argName, Ref: ref}}}
			arrow := p.parseArrowBody([]js_ast.Arg{arg}, fnOrArrowDataParse{allowAwait: true})
			arrow.IsAsync = true
			return js_ast.Expr{Loc: loc, Data: arrow}

		case js_lexer.TOpenParen:
			// "async()" or "async () => {}"
			return p.parseParenExpr(loc, parenExprOpts{isAsync: true})
		}
	}

	// "async" is being used as an ordinary identifier
	return js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: "async", Ref: js_ast.InvalidRef}}
}

func (p *parser) parseArrowBody(args []js_ast.Arg, data fnOrArrowDataParse) *js_ast.EArrow {
	// The body scope must be pushed at the "=>" token, before the body's
	// first token, so nested scopes (a parenthesized body, for example) get
	// strictly increasing locations
	arrowLoc := p.lexer.Loc()
	p.lexer.Expect(js_lexer.TEqualsGreaterThan)

	oldFnOrArrowData := p.fnOrArrowDataParse
	p.fnOrArrowDataParse = data
	defer func() { p.fnOrArrowDataParse = oldFnOrArrowData }()

	if p.lexer.Token == js_lexer.TOpenBrace {
		body := p.parseFnBody()
		return &js_ast.EArrow{Args: args, Body: body}
	}

	bodyLoc := arrowLoc
	p.pushScopeForParsePass(js_ast.ScopeFunctionBody, bodyLoc)
	defer p.popScope()

	expr := p.parseExpr(js_ast.LComma)
	return &js_ast.EArrow{
		Args:       args,
		PreferExpr: true,
		Body: js_ast.FnBody{
			Loc:   bodyLoc,
			Stmts: []js_ast.Stmt{{Loc: expr.Loc, Data: &js_ast.SReturn{ValueOrNil: expr}}},
		},
	}
}

type parenExprOpts struct {
	isAsync      bool
	forceArrowFn bool
}

// parseParenExpr parses an expression starting with "(" that may turn out to
// be either a parenthesized expression or the arguments of an arrow function.
// A scope is pushed up front assuming the arrow case; if the expression turns
// out not to be an arrow the scope is flattened away again.
func (p *parser) parseParenExpr(loc logger.Loc, opts parenExprOpts) js_ast.Expr {
	items := []js_ast.Expr{}
	spreadRange := logger.Range{}
	typeColonRange := logger.Range{}

	scopeIndex := p.pushScopeForParsePass(js_ast.ScopeFunctionArgs, loc)

	oldAllowIn := p.allowIn
	p.allowIn = true

	p.lexer.Expect(js_lexer.TOpenParen)

	for p.lexer.Token != js_lexer.TCloseParen {
		itemLoc := p.lexer.Loc()
		isSpread := p.lexer.Token == js_lexer.TDotDotDot

		if isSpread {
			spreadRange = p.lexer.Range()
			p.lexer.Next()
		}

		item := p.parseExpr(js_ast.LComma)

		if isSpread {
			item = js_ast.Expr{Loc: itemLoc, Data: &js_ast.ESpread{Value: item}}
		}

		// Skip over types
		if p.options.TS && p.lexer.Token == js_lexer.TQuestion {
			typeColonRange = p.lexer.Range()
			p.lexer.Next()
		}
		if p.options.TS && p.lexer.Token == js_lexer.TColon {
			typeColonRange = p.lexer.Range()
			p.lexer.Next()
			p.skipTypeScriptType(js_ast.LLowest)
		}

		// There may be a "=" after the type
		if p.options.TS && p.lexer.Token == js_lexer.TEquals {
			p.lexer.Next()
			item = js_ast.Expr{Loc: item.Loc, Data: &js_ast.EBinary{
				Op:    js_ast.BinOpAssign,
				Left:  item,
				Right: p.parseExpr(js_ast.LComma),
			}}
		}

		items = append(items, item)
		if p.lexer.Token != js_lexer.TComma {
			break
		}
		p.lexer.Next()
	}

	p.lexer.Expect(js_lexer.TCloseParen)
	p.allowIn = oldAllowIn

	// Are these arguments to an arrow function?
	if p.lexer.Token == js_lexer.TEqualsGreaterThan || opts.forceArrowFn ||
		(p.options.TS && p.lexer.Token == js_lexer.TColon) {

		invalidLoc := logger.Loc{Start: -1}
		args := []js_ast.Arg{}
		hasRestArg := false

		for _, item := range items {
			isSpread := false
			if spread, ok := item.Data.(*js_ast.ESpread); ok {
				item = spread.Value
				isSpread = true
				hasRestArg = true
			}
			binding, initializerOrNil, ok := p.convertExprToBindingAndInitializer(item)
			if !ok && invalidLoc.Start == -1 {
				invalidLoc = item.Loc
			}
			_ = isSpread
			args = append(args, js_ast.Arg{Binding: binding, DefaultOrNil: initializerOrNil})
		}

		// The ":" after the ")" may be a return type annotation rather than a
		// conditional, so only commit to the arrow if the annotation skip
		// leaves us looking at "=>"
		if p.lexer.Token == js_lexer.TEqualsGreaterThan ||
			(invalidLoc.Start == -1 && p.trySkipTypeScriptArrowReturnTypeWithBacktracking()) ||
			opts.forceArrowFn {

			if invalidLoc.Start != -1 {
				p.log.AddErrorWithKind(&p.source, logger.KindSyntax,
					logger.Range{Loc: invalidLoc}, "Invalid binding pattern")
				panic(js_lexer.LexerPanic{})
			}

			// Now that the exprs have been converted, declare the bindings
			for _, arg := range args {
				p.declareBinding(js_ast.SymbolHoisted, arg.Binding)
			}

			arrow := p.parseArrowBody(args, fnOrArrowDataParse{allowAwait: opts.isAsync})
			arrow.IsAsync = opts.isAsync
			arrow.HasRestArg = hasRestArg
			p.popScope()
			return js_ast.Expr{Loc: loc, Data: arrow}
		}
	}

	// It's not an arrow function, so undo the scope push
	p.popAndFlattenScope(scopeIndex)

	// If this isn't an arrow function, then types aren't allowed
	if typeColonRange.Len > 0 {
		p.log.AddErrorWithKind(&p.source, logger.KindSyntax, typeColonRange, "Unexpected \":\"")
		panic(js_lexer.LexerPanic{})
	}

	// "async(x)" is a call to a function named "async"
	if opts.isAsync {
		async := js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: "async", Ref: js_ast.InvalidRef}}
		return js_ast.Expr{Loc: loc, Data: &js_ast.ECall{Target: async, Args: items}}
	}

	if len(items) == 0 {
		p.lexer.Unexpected()
	}
	if spreadRange.Len > 0 {
		p.log.AddErrorWithKind(&p.source, logger.KindSyntax, spreadRange, "Unexpected \"...\"")
		panic(js_lexer.LexerPanic{})
	}

	// A chain of expressions and comma operators
	value := items[0]
	for _, item := range items[1:] {
		value = js_ast.Expr{Loc: value.Loc, Data: &js_ast.EBinary{
			Op:    js_ast.BinOpComma,
			Left:  value,
			Right: item,
		}}
	}
	return value
}

func (p *parser) convertExprToBindingAndInitializer(expr js_ast.Expr) (js_ast.Binding, js_ast.Expr, bool) {
	var initializerOrNil js_ast.Expr
	if assign, ok := expr.Data.(*js_ast.EBinary); ok && assign.Op == js_ast.BinOpAssign {
		initializerOrNil = assign.Right
		expr = assign.Left
	}
	binding, ok := p.convertExprToBinding(expr)
	return binding, initializerOrNil, ok
}

func (p *parser) convertExprToBinding(expr js_ast.Expr) (js_ast.Binding, bool) {
	switch e := expr.Data.(type) {
	case *js_ast.EMissing:
		return js_ast.Binding{Loc: expr.Loc, Data: &js_ast.BMissing{}}, true

	case *js_ast.EIdentifier:
		return js_ast.Binding{Loc: expr.Loc, Data: &js_ast.BIdentifier{Name: e.Name, Ref: js_ast.InvalidRef}}, true

	case *js_ast.EArray:
		items := []js_ast.ArrayBinding{}
		hasSpread := false
		for _, item := range e.Items {
			if spread, isSpread := item.Data.(*js_ast.ESpread); isSpread {
				hasSpread = true
				item = spread.Value
			}
			binding, initializerOrNil, ok := p.convertExprToBindingAndInitializer(item)
			if !ok {
				return js_ast.Binding{}, false
			}
			items = append(items, js_ast.ArrayBinding{Binding: binding, DefaultValueOrNil: initializerOrNil})
		}
		return js_ast.Binding{Loc: expr.Loc, Data: &js_ast.BArray{
			Items:        items,
			HasSpread:    hasSpread,
			IsSingleLine: e.IsSingleLine,
		}}, true

	case *js_ast.EObject:
		properties := []js_ast.PropertyBinding{}
		for _, property := range e.Properties {
			if property.IsMethod || property.Kind == js_ast.PropertyGet || property.Kind == js_ast.PropertySet {
				return js_ast.Binding{}, false
			}

			if property.Kind == js_ast.PropertySpread {
				binding, ok := p.convertExprToBinding(property.ValueOrNil)
				if !ok {
					return js_ast.Binding{}, false
				}
				properties = append(properties, js_ast.PropertyBinding{IsSpread: true, Value: binding})
				continue
			}

			binding, initializerOrNil, ok := p.convertExprToBindingAndInitializer(property.ValueOrNil)
			if !ok {
				return js_ast.Binding{}, false
			}
			if initializerOrNil.Data == nil {
				initializerOrNil = property.InitializerOrNil
			}
			properties = append(properties, js_ast.PropertyBinding{
				Key:               property.Key,
				Value:             binding,
				DefaultValueOrNil: initializerOrNil,
				IsComputed:        property.IsComputed,
			})
		}
		return js_ast.Binding{Loc: expr.Loc, Data: &js_ast.BObject{
			Properties:   properties,
			IsSingleLine: e.IsSingleLine,
		}}, true

	default:
		return js_ast.Binding{}, false
	}
}

func (p *parser) parseCallArgs() []js_ast.Expr {
	args := []js_ast.Expr{}
	p.lexer.Expect(js_lexer.TOpenParen)

	oldAllowIn := p.allowIn
	p.allowIn = true

	for p.lexer.Token != js_lexer.TCloseParen {
		loc := p.lexer.Loc()
		isSpread := p.lexer.Token == js_lexer.TDotDotDot
		if isSpread {
			p.lexer.Next()
		}
		arg := p.parseExpr(js_ast.LComma)
		if isSpread {
			arg = js_ast.Expr{Loc: loc, Data: &js_ast.ESpread{Value: arg}}
		}
		args = append(args, arg)
		if p.lexer.Token != js_lexer.TComma {
			break
		}
		p.lexer.Next()
	}

	p.allowIn = oldAllowIn

	p.lexer.Expect(js_lexer.TCloseParen)
	return args
}

func (p *parser) parseImportExpr(loc logger.Loc) js_ast.Expr {
	// "import.meta"
	if p.lexer.Token == js_lexer.TDot {
		p.lexer.Next()
		if !p.lexer.IsContextualKeyword("meta") {
			p.lexer.Unexpected()
		}
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EImportMeta{}}
	}

	// "import('path')"
	p.lexer.Expect(js_lexer.TOpenParen)

	oldAllowIn := p.allowIn
	p.allowIn = true

	value := p.parseExpr(js_ast.LComma)

	var optionsOrNil js_ast.Expr
	if p.lexer.Token == js_lexer.TComma {
		p.lexer.Next()
		if p.lexer.Token != js_lexer.TCloseParen {
			optionsOrNil = p.parseExpr(js_ast.LComma)
			if p.lexer.Token == js_lexer.TComma {
				p.lexer.Next()
			}
		}
	}

	p.allowIn = oldAllowIn

	p.lexer.Expect(js_lexer.TCloseParen)

	importRecordIndex := NoImportRecord
	if str, ok := value.Data.(*js_ast.EString); ok {
		importRecordIndex = p.addImportRecord(js_ast.ImportDynamic,
			logger.Range{Loc: value.Loc}, js_lexer.UTF16ToString(str.Value))
	}

	return js_ast.Expr{Loc: loc, Data: &js_ast.EImportCall{
		Expr:              value,
		OptionsOrNil:      optionsOrNil,
		ImportRecordIndex: importRecordIndex,
	}}
}

func (p *parser) parseExprWithFlags(level js_ast.L, flags exprFlag) js_ast.Expr {
	return p.parseSuffix(p.parsePrefix(level, flags), level, flags)
}

func (p *parser) parseSuffix(left js_ast.Expr, level js_ast.L, flags exprFlag) js_ast.Expr {
	optionalChain := js_ast.OptionalChainNone

	for {
		switch p.lexer.Token {
		case js_lexer.TDot:
			p.lexer.Next()

			if !p.lexer.IsIdentifierOrKeyword() {
				p.lexer.Expect(js_lexer.TIdentifier)
			}
			name := p.lexer.Identifier
			nameLoc := p.lexer.Loc()
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EDot{
				Target:        left,
				Name:          name,
				NameLoc:       nameLoc,
				OptionalChain: optionalChain,
			}}

		case js_lexer.TQuestionDot:
			p.lexer.Next()

			switch p.lexer.Token {
			case js_lexer.TOpenBracket:
				p.lexer.Next()

				oldAllowIn := p.allowIn
				p.allowIn = true
				index := p.parseExpr(js_ast.LLowest)
				p.allowIn = oldAllowIn

				p.lexer.Expect(js_lexer.TCloseBracket)
				left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EIndex{
					Target:        left,
					Index:         index,
					OptionalChain: js_ast.OptionalChainStart,
				}}

			case js_lexer.TOpenParen:
				if level >= js_ast.LCall {
					return left
				}
				left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.ECall{
					Target:        left,
					Args:          p.parseCallArgs(),
					OptionalChain: js_ast.OptionalChainStart,
				}}

			default:
				if !p.lexer.IsIdentifierOrKeyword() {
					p.lexer.Expect(js_lexer.TIdentifier)
				}
				name := p.lexer.Identifier
				nameLoc := p.lexer.Loc()
				p.lexer.Next()
				left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EDot{
					Target:        left,
					Name:          name,
					NameLoc:       nameLoc,
					OptionalChain: js_ast.OptionalChainStart,
				}}
			}

			optionalChain = js_ast.OptionalChainContinue
			continue

		case js_lexer.TOpenBracket:
			p.lexer.Next()

			oldAllowIn := p.allowIn
			p.allowIn = true
			index := p.parseExpr(js_ast.LLowest)
			p.allowIn = oldAllowIn

			p.lexer.Expect(js_lexer.TCloseBracket)
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EIndex{
				Target:        left,
				Index:         index,
				OptionalChain: optionalChain,
			}}

		case js_lexer.TOpenParen:
			if level >= js_ast.LCall || (flags&exprFlagForbidCall) != 0 {
				return left
			}
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.ECall{
				Target:        left,
				Args:          p.parseCallArgs(),
				OptionalChain: optionalChain,
			}}

		case js_lexer.TNoSubstitutionTemplateLiteral:
			if level >= js_ast.LPrefix {
				return left
			}
			headLoc := p.lexer.Loc()
			headCooked := p.lexer.StringLiteral
			headRaw := p.lexer.RawTemplateContents()
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.ETemplate{
				TagOrNil:   left,
				HeadLoc:    headLoc,
				HeadCooked: headCooked,
				HeadRaw:    headRaw,
			}}

		case js_lexer.TTemplateHead:
			if level >= js_ast.LPrefix {
				return left
			}
			headLoc := p.lexer.Loc()
			headCooked := p.lexer.StringLiteral
			headRaw := p.lexer.RawTemplateContents()
			parts := p.parseTemplateParts(true /* includeRaw */)
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.ETemplate{
				TagOrNil:   left,
				HeadLoc:    headLoc,
				HeadCooked: headCooked,
				HeadRaw:    headRaw,
				Parts:      parts,
			}}

		case js_lexer.TExclamation:
			// TypeScript non-null assertion "expr!"
			if p.lexer.HasNewlineBefore || !p.options.TS {
				return left
			}
			p.lexer.Next()
			continue

		case js_lexer.TMinusMinus:
			if p.lexer.HasNewlineBefore || level >= js_ast.LPostfix {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPostDec, Value: left}}

		case js_lexer.TPlusPlus:
			if p.lexer.HasNewlineBefore || level >= js_ast.LPostfix {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPostInc, Value: left}}

		case js_lexer.TComma:
			if level >= js_ast.LComma {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{
				Op:    js_ast.BinOpComma,
				Left:  left,
				Right: p.parseExpr(js_ast.LComma),
			}}

		case js_lexer.TQuestion:
			if level >= js_ast.LConditional {
				return left
			}
			p.lexer.Next()

			// The "in" operator is always allowed in the middle of a conditional
			oldAllowIn := p.allowIn
			p.allowIn = true
			yes := p.parseExpr(js_ast.LComma)
			p.allowIn = oldAllowIn

			p.lexer.Expect(js_lexer.TColon)
			no := p.parseExpr(js_ast.LComma)
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EIf{Test: left, Yes: yes, No: no}}

		case js_lexer.TQuestionQuestion:
			if level >= js_ast.LNullishCoalescing {
				return left
			}
			p.lexer.Next()
			right := p.parseExpr(js_ast.LNullishCoalescing)
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpNullishCoalescing, Left: left, Right: right}}

		case js_lexer.TBarBar:
			if level >= js_ast.LLogicalOr {
				return left
			}
			p.lexer.Next()
			right := p.parseExpr(js_ast.LLogicalOr)
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpLogicalOr, Left: left, Right: right}}

		case js_lexer.TAmpersandAmpersand:
			if level >= js_ast.LLogicalAnd {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpLogicalAnd, Left: left, Right: p.parseExpr(js_ast.LLogicalAnd)}}

		case js_lexer.TBar:
			if level >= js_ast.LBitwiseOr {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpBitwiseOr, Left: left, Right: p.parseExpr(js_ast.LBitwiseOr)}}

		case js_lexer.TAmpersand:
			if level >= js_ast.LBitwiseAnd {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpBitwiseAnd, Left: left, Right: p.parseExpr(js_ast.LBitwiseAnd)}}

		case js_lexer.TCaret:
			if level >= js_ast.LBitwiseXor {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpBitwiseXor, Left: left, Right: p.parseExpr(js_ast.LBitwiseXor)}}

		case js_lexer.TEqualsEquals:
			if level >= js_ast.LEquals {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpLooseEq, Left: left, Right: p.parseExpr(js_ast.LEquals)}}

		case js_lexer.TExclamationEquals:
			if level >= js_ast.LEquals {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpLooseNe, Left: left, Right: p.parseExpr(js_ast.LEquals)}}

		case js_lexer.TEqualsEqualsEquals:
			if level >= js_ast.LEquals {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpStrictEq, Left: left, Right: p.parseExpr(js_ast.LEquals)}}

		case js_lexer.TExclamationEqualsEquals:
			if level >= js_ast.LEquals {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpStrictNe, Left: left, Right: p.parseExpr(js_ast.LEquals)}}

		case js_lexer.TLessThan:
			// TypeScript allows type arguments to be specified with angle
			// brackets inside an expression, like "foo<number>(1)"
			if p.options.TS && level < js_ast.LCompare {
				if p.trySkipTypeScriptTypeArgumentsWithBacktracking() {
					continue
				}
			}
			if level >= js_ast.LCompare {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpLt, Left: left, Right: p.parseExpr(js_ast.LCompare)}}

		case js_lexer.TLessThanEquals:
			if level >= js_ast.LCompare {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpLe, Left: left, Right: p.parseExpr(js_ast.LCompare)}}

		case js_lexer.TGreaterThan:
			if level >= js_ast.LCompare {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpGt, Left: left, Right: p.parseExpr(js_ast.LCompare)}}

		case js_lexer.TGreaterThanEquals:
			if level >= js_ast.LCompare {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpGe, Left: left, Right: p.parseExpr(js_ast.LCompare)}}

		case js_lexer.TLessThanLessThan:
			if level >= js_ast.LShift {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpShl, Left: left, Right: p.parseExpr(js_ast.LShift)}}

		case js_lexer.TGreaterThanGreaterThan:
			if level >= js_ast.LShift {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpShr, Left: left, Right: p.parseExpr(js_ast.LShift)}}

		case js_lexer.TGreaterThanGreaterThanGreaterThan:
			if level >= js_ast.LShift {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpUShr, Left: left, Right: p.parseExpr(js_ast.LShift)}}

		case js_lexer.TPlus:
			if level >= js_ast.LAdd {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpAdd, Left: left, Right: p.parseExpr(js_ast.LAdd)}}

		case js_lexer.TMinus:
			if level >= js_ast.LAdd {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpSub, Left: left, Right: p.parseExpr(js_ast.LAdd)}}

		case js_lexer.TAsterisk:
			if level >= js_ast.LMultiply {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpMul, Left: left, Right: p.parseExpr(js_ast.LMultiply)}}

		case js_lexer.TSlash:
			if level >= js_ast.LMultiply {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpDiv, Left: left, Right: p.parseExpr(js_ast.LMultiply)}}

		case js_lexer.TPercent:
			if level >= js_ast.LMultiply {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpRem, Left: left, Right: p.parseExpr(js_ast.LMultiply)}}

		case js_lexer.TAsteriskAsterisk:
			if level >= js_ast.LExponentiation {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpPow, Left: left, Right: p.parseExpr(js_ast.LExponentiation - 1)}}

		case js_lexer.TIn:
			if level >= js_ast.LCompare || !p.allowIn {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpIn, Left: left, Right: p.parseExpr(js_ast.LCompare)}}

		case js_lexer.TInstanceof:
			if level >= js_ast.LCompare {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpInstanceof, Left: left, Right: p.parseExpr(js_ast.LCompare)}}

		case js_lexer.TEquals:
			if level >= js_ast.LAssign {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpAssign, Left: left, Right: p.parseExpr(js_ast.LAssign - 1)}}

		case js_lexer.TPlusEquals:
			if level >= js_ast.LAssign {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpAddAssign, Left: left, Right: p.parseExpr(js_ast.LAssign - 1)}}

		case js_lexer.TMinusEquals:
			if level >= js_ast.LAssign {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpSubAssign, Left: left, Right: p.parseExpr(js_ast.LAssign - 1)}}

		case js_lexer.TAsteriskEquals:
			if level >= js_ast.LAssign {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpMulAssign, Left: left, Right: p.parseExpr(js_ast.LAssign - 1)}}

		case js_lexer.TSlashEquals:
			if level >= js_ast.LAssign {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpDivAssign, Left: left, Right: p.parseExpr(js_ast.LAssign - 1)}}

		case js_lexer.TPercentEquals:
			if level >= js_ast.LAssign {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpRemAssign, Left: left, Right: p.parseExpr(js_ast.LAssign - 1)}}

		case js_lexer.TAsteriskAsteriskEquals:
			if level >= js_ast.LAssign {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpPowAssign, Left: left, Right: p.parseExpr(js_ast.LAssign - 1)}}

		case js_lexer.TLessThanLessThanEquals:
			if level >= js_ast.LAssign {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpShlAssign, Left: left, Right: p.parseExpr(js_ast.LAssign - 1)}}

		case js_lexer.TGreaterThanGreaterThanEquals:
			if level >= js_ast.LAssign {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpShrAssign, Left: left, Right: p.parseExpr(js_ast.LAssign - 1)}}

		case js_lexer.TGreaterThanGreaterThanGreaterThanEquals:
			if level >= js_ast.LAssign {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpUShrAssign, Left: left, Right: p.parseExpr(js_ast.LAssign - 1)}}

		case js_lexer.TAmpersandEquals:
			if level >= js_ast.LAssign {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpBitwiseAndAssign, Left: left, Right: p.parseExpr(js_ast.LAssign - 1)}}

		case js_lexer.TBarEquals:
			if level >= js_ast.LAssign {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpBitwiseOrAssign, Left: left, Right: p.parseExpr(js_ast.LAssign - 1)}}

		case js_lexer.TCaretEquals:
			if level >= js_ast.LAssign {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpBitwiseXorAssign, Left: left, Right: p.parseExpr(js_ast.LAssign - 1)}}

		case js_lexer.TAmpersandAmpersandEquals:
			if level >= js_ast.LAssign {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpLogicalAndAssign, Left: left, Right: p.parseExpr(js_ast.LAssign - 1)}}

		case js_lexer.TBarBarEquals:
			if level >= js_ast.LAssign {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpLogicalOrAssign, Left: left, Right: p.parseExpr(js_ast.LAssign - 1)}}

		case js_lexer.TQuestionQuestionEquals:
			if level >= js_ast.LAssign {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpNullishCoalescingAssign, Left: left, Right: p.parseExpr(js_ast.LAssign - 1)}}

		case js_lexer.TIdentifier:
			// "expr as Type" and "expr satisfies Type" in TypeScript
			if p.options.TS && level < js_ast.LCompare && !p.lexer.HasNewlineBefore &&
				(p.lexer.IsContextualKeyword("as") || p.lexer.IsContextualKeyword("satisfies")) {
				p.lexer.Next()
				if p.lexer.IsContextualKeyword("const") {
					// "expr as const"
					p.lexer.Next()
				} else {
					p.skipTypeScriptType(js_ast.LLowest)
				}
				continue
			}
			return left

		default:
			return left
		}

		optionalChain = chainAfter(optionalChain)
	}
}

// chainAfter keeps "a?.b.c" marked as part of the optional chain that "?."
// started while leaving "(a?.b).c" outside of it, since parseSuffix is only
// re-entered for the parenthesized part.
func chainAfter(chain js_ast.OptionalChain) js_ast.OptionalChain {
	if chain != js_ast.OptionalChainNone {
		return js_ast.OptionalChainContinue
	}
	return js_ast.OptionalChainNone
}

func (p *parser) parseTemplateParts(includeRaw bool) []js_ast.TemplatePart {
	parts := []js_ast.TemplatePart{}
	_ = includeRaw

	// The lexer is fed the "}" token manually after each interpolation so it
	// can be re-scanned as the start of the next template chunk
	for {
		p.lexer.Next()

		oldAllowIn := p.allowIn
		p.allowIn = true
		value := p.parseExpr(js_ast.LLowest)
		p.allowIn = oldAllowIn

		tailLoc := p.lexer.Loc()
		p.lexer.RescanCloseBraceAsTemplateToken()
		tailCooked := p.lexer.StringLiteral
		tailRaw := p.lexer.RawTemplateContents()
		parts = append(parts, js_ast.TemplatePart{
			Value:      value,
			TailLoc:    tailLoc,
			TailCooked: tailCooked,
			TailRaw:    tailRaw,
		})
		if p.lexer.Token == js_lexer.TTemplateTail {
			p.lexer.Next()
			break
		}
	}

	return parts
}

////////////////////////////////////////////////////////////////////////////////
// Import and export statements

func (p *parser) parsePath() (logger.Range, string) {
	pathRange := p.lexer.Range()
	pathText := js_lexer.UTF16ToString(p.lexer.StringLiteral)
	if p.lexer.Token == js_lexer.TNoSubstitutionTemplateLiteral {
		p.lexer.Next()
	} else {
		p.lexer.Expect(js_lexer.TStringLiteral)
	}
	return pathRange, pathText
}

func (p *parser) parseImportStmt(loc logger.Loc, opts parseStmtOpts) js_ast.Stmt {
	p.lexer.Next()

	// "import('path')" and "import.meta" are expressions, not statements
	if p.lexer.Token == js_lexer.TOpenParen || p.lexer.Token == js_lexer.TDot {
		expr := p.parseSuffix(p.parseImportExpr(loc), js_ast.LLowest, 0)
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SExpr{Value: expr}}
	}

	if !opts.isModuleScope {
		p.lexer.Unexpected()
	}

	stmt := js_ast.SImport{StarNameRef: js_ast.InvalidRef}

	switch p.lexer.Token {
	case js_lexer.TStringLiteral, js_lexer.TNoSubstitutionTemplateLiteral:
		// "import 'path'"

	case js_lexer.TAsterisk:
		// "import * as ns from 'path'"
		p.lexer.Next()
		p.lexer.ExpectContextualKeyword("as")
		starLoc := p.lexer.Loc()
		stmt.StarNameLoc = &starLoc
		stmt.StarNameRef = p.declareSymbol(js_ast.SymbolImport, starLoc, p.lexer.Identifier)
		p.lexer.Expect(js_lexer.TIdentifier)
		p.lexer.ExpectContextualKeyword("from")

	case js_lexer.TOpenBrace:
		// "import {item1, item2} from 'path'"
		items, isSingleLine := p.parseImportClause()
		stmt.Items = &items
		stmt.IsSingleLine = isSingleLine
		p.lexer.ExpectContextualKeyword("from")

	case js_lexer.TIdentifier:
		defaultLoc := p.lexer.Loc()
		defaultName := p.lexer.Identifier
		p.lexer.Next()

		// "import type foo from 'path'" is erased entirely
		if p.options.TS && defaultName == "type" {
			switch p.lexer.Token {
			case js_lexer.TIdentifier:
				if p.lexer.Identifier != "from" {
					// "import type foo from 'path'"
					p.lexer.Next()
					p.lexer.ExpectContextualKeyword("from")
					p.parsePath()
					p.lexer.ExpectOrInsertSemicolon()
					return js_ast.Stmt{Loc: loc, Data: &js_ast.STypeScript{}}
				}

			case js_lexer.TAsterisk:
				// "import type * as foo from 'path'"
				p.lexer.Next()
				p.lexer.ExpectContextualKeyword("as")
				p.lexer.Expect(js_lexer.TIdentifier)
				p.lexer.ExpectContextualKeyword("from")
				p.parsePath()
				p.lexer.ExpectOrInsertSemicolon()
				return js_ast.Stmt{Loc: loc, Data: &js_ast.STypeScript{}}

			case js_lexer.TOpenBrace:
				// "import type {foo} from 'path'"
				p.parseImportClause()
				p.lexer.ExpectContextualKeyword("from")
				p.parsePath()
				p.lexer.ExpectOrInsertSemicolon()
				return js_ast.Stmt{Loc: loc, Data: &js_ast.STypeScript{}}
			}
		}

		// "import defaultItem from 'path'"
		ref := p.declareSymbol(js_ast.SymbolImport, defaultLoc, defaultName)
		stmt.DefaultName = &js_ast.LocRef{Loc: defaultLoc, Ref: ref}

		if p.lexer.Token == js_lexer.TComma {
			p.lexer.Next()
			switch p.lexer.Token {
			case js_lexer.TAsterisk:
				// "import defaultItem, * as ns from 'path'"
				p.lexer.Next()
				p.lexer.ExpectContextualKeyword("as")
				starLoc := p.lexer.Loc()
				stmt.StarNameLoc = &starLoc
				stmt.StarNameRef = p.declareSymbol(js_ast.SymbolImport, starLoc, p.lexer.Identifier)
				p.lexer.Expect(js_lexer.TIdentifier)

			case js_lexer.TOpenBrace:
				// "import defaultItem, {item1, item2} from 'path'"
				items, isSingleLine := p.parseImportClause()
				stmt.Items = &items
				stmt.IsSingleLine = isSingleLine

			default:
				p.lexer.Unexpected()
			}
		}
		p.lexer.ExpectContextualKeyword("from")

	default:
		p.lexer.Unexpected()
	}

	pathRange, pathText := p.parsePath()
	stmt.ImportRecordIndex = p.addImportRecord(js_ast.ImportStmt, pathRange, pathText)
	p.lexer.ExpectOrInsertSemicolon()

	// Track the named imports so later passes can tell which symbols came
	// from which path without a tree traversal
	if stmt.DefaultName != nil {
		p.namedImports[stmt.DefaultName.Ref] = js_ast.NamedImport{
			Alias:             "default",
			AliasLoc:          stmt.DefaultName.Loc,
			ImportRecordIndex: stmt.ImportRecordIndex,
		}
	}
	if stmt.StarNameLoc != nil {
		p.namedImports[stmt.StarNameRef] = js_ast.NamedImport{
			Alias:             "*",
			AliasLoc:          *stmt.StarNameLoc,
			ImportRecordIndex: stmt.ImportRecordIndex,
		}
	}
	if stmt.Items != nil {
		for i := range *stmt.Items {
			item := &(*stmt.Items)[i]
			item.Name.Ref = p.declareSymbol(js_ast.SymbolImport, item.Name.Loc, item.OriginalName)
			p.namedImports[item.Name.Ref] = js_ast.NamedImport{
				Alias:             item.Alias,
				AliasLoc:          item.AliasLoc,
				ImportRecordIndex: stmt.ImportRecordIndex,
			}
		}
	}

	return js_ast.Stmt{Loc: loc, Data: &stmt}
}

func (p *parser) parseImportClause() ([]js_ast.ClauseItem, bool) {
	items := []js_ast.ClauseItem{}
	p.lexer.Expect(js_lexer.TOpenBrace)
	isSingleLine := !p.lexer.HasNewlineBefore

	for p.lexer.Token != js_lexer.TCloseBrace {
		alias := p.lexer.Identifier
		aliasLoc := p.lexer.Loc()
		aliasToken := p.lexer.Token

		// The alias may be a keyword ("import {default as foo}")
		if !p.lexer.IsIdentifierOrKeyword() {
			p.lexer.Expect(js_lexer.TIdentifier)
		}
		p.lexer.Next()

		// "import { type Foo }" is erased by the TypeScript compiler
		if p.options.TS && alias == "type" && p.lexer.Token == js_lexer.TIdentifier && !p.lexer.IsContextualKeyword("as") {
			p.lexer.Next()
			if p.lexer.IsContextualKeyword("as") {
				p.lexer.Next()
				p.lexer.Expect(js_lexer.TIdentifier)
			}
		} else {
			name := js_ast.LocRef{Loc: aliasLoc, Ref: js_ast.InvalidRef}
			originalName := alias

			if p.lexer.IsContextualKeyword("as") {
				p.lexer.Next()
				originalName = p.lexer.Identifier
				name = js_ast.LocRef{Loc: p.lexer.Loc(), Ref: js_ast.InvalidRef}
				p.lexer.Expect(js_lexer.TIdentifier)
			} else if aliasToken != js_lexer.TIdentifier {
				// Keyword aliases must be given a local name
				p.lexer.ExpectedString("\"as\"")
			}

			items = append(items, js_ast.ClauseItem{
				Alias:        alias,
				AliasLoc:     aliasLoc,
				Name:         name,
				OriginalName: originalName,
			})
		}

		if p.lexer.Token != js_lexer.TComma {
			break
		}
		if p.lexer.HasNewlineBefore {
			isSingleLine = false
		}
		p.lexer.Next()
		if p.lexer.HasNewlineBefore {
			isSingleLine = false
		}
	}

	if p.lexer.HasNewlineBefore {
		isSingleLine = false
	}
	p.lexer.Expect(js_lexer.TCloseBrace)
	return items, isSingleLine
}

func (p *parser) parseExportStmt(loc logger.Loc) js_ast.Stmt {
	switch p.lexer.Token {
	case js_lexer.TAsterisk:
		// "export * from 'path'" and "export * as ns from 'path'"
		p.lexer.Next()
		var alias *js_ast.ExportStarAlias
		if p.lexer.IsContextualKeyword("as") {
			p.lexer.Next()
			alias = &js_ast.ExportStarAlias{Loc: p.lexer.Loc(), Name: p.lexer.Identifier}
			if !p.lexer.IsIdentifierOrKeyword() {
				p.lexer.Expect(js_lexer.TIdentifier)
			}
			p.lexer.Next()
		}
		p.lexer.ExpectContextualKeyword("from")
		pathRange, pathText := p.parsePath()
		importRecordIndex := p.addImportRecord(js_ast.ExportFrom, pathRange, pathText)
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportStar{
			Alias:             alias,
			ImportRecordIndex: importRecordIndex,
		}}

	case js_lexer.TOpenBrace:
		// "export {item1, item2}" and "export {item1, item2} from 'path'"
		items, isSingleLine, firstNonIdentifierLoc := p.parseExportClause()
		if p.lexer.IsContextualKeyword("from") {
			p.lexer.Next()
			pathRange, pathText := p.parsePath()
			importRecordIndex := p.addImportRecord(js_ast.ExportFrom, pathRange, pathText)
			p.lexer.ExpectOrInsertSemicolon()
			return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportFrom{
				Items:             items,
				ImportRecordIndex: importRecordIndex,
				IsSingleLine:      isSingleLine,
			}}
		}

		// Keywords are only allowed as names in re-export clauses
		if firstNonIdentifierLoc.Start != 0 {
			r := js_lexer.RangeOfIdentifier(p.source, firstNonIdentifierLoc)
			p.log.AddErrorWithKind(&p.source, logger.KindSyntax, r, "Expected identifier")
			panic(js_lexer.LexerPanic{})
		}

		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportClause{Items: items, IsSingleLine: isSingleLine}}

	case js_lexer.TDefault:
		defaultLoc := p.lexer.Loc()
		p.lexer.Next()

		if p.lexer.Token == js_lexer.TFunction {
			stmt := p.parseFnStmt(p.lexer.Loc(), parseStmtOpts{isNameOptional: true}, false, logger.Range{})
			return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportDefault{
				DefaultLoc: defaultLoc,
				Value:      js_ast.ExprOrStmt{Stmt: &stmt},
			}}
		}

		if p.lexer.Token == js_lexer.TClass {
			stmt := p.parseClassStmt(p.lexer.Loc(), parseStmtOpts{isNameOptional: true})
			return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportDefault{
				DefaultLoc: defaultLoc,
				Value:      js_ast.ExprOrStmt{Stmt: &stmt},
			}}
		}

		if p.lexer.IsContextualKeyword("async") {
			asyncRange := p.lexer.Range()
			p.lexer.Next()
			if p.lexer.Token == js_lexer.TFunction && !p.lexer.HasNewlineBefore {
				stmt := p.parseFnStmt(asyncRange.Loc, parseStmtOpts{isNameOptional: true}, true, asyncRange)
				return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportDefault{
					DefaultLoc: defaultLoc,
					Value:      js_ast.ExprOrStmt{Stmt: &stmt},
				}}
			}

			expr := p.parseSuffix(p.parseAsyncPrefixExpr(asyncRange.Loc), js_ast.LComma, 0)
			p.lexer.ExpectOrInsertSemicolon()
			return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportDefault{
				DefaultLoc: defaultLoc,
				Value:      js_ast.ExprOrStmt{Expr: &expr},
			}}
		}

		expr := p.parseExpr(js_ast.LComma)
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportDefault{
			DefaultLoc: defaultLoc,
			Value:      js_ast.ExprOrStmt{Expr: &expr},
		}}

	case js_lexer.TFunction:
		return p.parseFnStmt(loc, parseStmtOpts{isExport: true}, false, logger.Range{})

	case js_lexer.TClass:
		return p.parseClassStmt(loc, parseStmtOpts{isExport: true})

	case js_lexer.TVar, js_lexer.TConst:
		return p.parseStmt(parseStmtOpts{isModuleScope: true, isExport: true, lexicalDeclsOK: true})

	case js_lexer.TEnum:
		p.log.AddErrorWithKind(&p.source, logger.KindSyntax, p.lexer.Range(),
			"TypeScript enum syntax is not supported")
		panic(js_lexer.LexerPanic{})

	default:
		if p.lexer.IsContextualKeyword("let") {
			letLoc := p.lexer.Loc()
			p.lexer.Next()
			switch p.lexer.Token {
			case js_lexer.TIdentifier, js_lexer.TOpenBracket, js_lexer.TOpenBrace:
				decls := p.parseAndDeclareDecls(js_ast.SymbolOther)
				p.lexer.ExpectOrInsertSemicolon()
				return js_ast.Stmt{Loc: letLoc, Data: &js_ast.SLocal{
					Kind:     js_ast.LocalLet,
					Decls:    decls,
					IsExport: true,
				}}
			}
			p.lexer.Unexpected()
		}

		if p.lexer.IsContextualKeyword("async") {
			asyncRange := p.lexer.Range()
			p.lexer.Next()
			if p.lexer.Token != js_lexer.TFunction || p.lexer.HasNewlineBefore {
				p.lexer.Expected(js_lexer.TFunction)
			}
			return p.parseFnStmt(asyncRange.Loc, parseStmtOpts{isExport: true}, true, asyncRange)
		}

		if p.options.TS {
			switch p.lexer.Identifier {
			case "type":
				// "export type Foo = ..."
				typeLoc := p.lexer.Loc()
				p.lexer.Next()
				p.skipTypeScriptTypeAlias()
				return js_ast.Stmt{Loc: typeLoc, Data: &js_ast.STypeScript{}}

			case "interface":
				interfaceLoc := p.lexer.Loc()
				p.lexer.Next()
				p.skipTypeScriptInterface()
				return js_ast.Stmt{Loc: interfaceLoc, Data: &js_ast.STypeScript{}}

			case "abstract":
				p.lexer.Next()
				if p.lexer.Token == js_lexer.TClass {
					return p.parseClassStmt(loc, parseStmtOpts{isExport: true})
				}
			}
		}

		p.lexer.Unexpected()
		return js_ast.Stmt{}
	}
}

func (p *parser) parseExportClause() ([]js_ast.ClauseItem, bool, logger.Loc) {
	items := []js_ast.ClauseItem{}
	firstNonIdentifierLoc := logger.Loc{}
	p.lexer.Expect(js_lexer.TOpenBrace)
	isSingleLine := !p.lexer.HasNewlineBefore

	for p.lexer.Token != js_lexer.TCloseBrace {
		alias := p.lexer.Identifier
		aliasLoc := p.lexer.Loc()

		// The name can only be a keyword if this is a re-export clause, which
		// is only known once "from" is or isn't seen after the closing brace
		if p.lexer.Token != js_lexer.TIdentifier && firstNonIdentifierLoc.Start == 0 {
			firstNonIdentifierLoc = aliasLoc
		}
		if !p.lexer.IsIdentifierOrKeyword() {
			p.lexer.Expect(js_lexer.TIdentifier)
		}
		p.lexer.Next()

		name := js_ast.LocRef{Loc: aliasLoc, Ref: js_ast.InvalidRef}
		originalName := alias

		if p.lexer.IsContextualKeyword("as") {
			p.lexer.Next()
			aliasLoc = p.lexer.Loc()
			alias = p.lexer.Identifier
			if !p.lexer.IsIdentifierOrKeyword() {
				p.lexer.Expect(js_lexer.TIdentifier)
			}
			p.lexer.Next()
		}

		items = append(items, js_ast.ClauseItem{
			Alias:        alias,
			AliasLoc:     aliasLoc,
			Name:         name,
			OriginalName: originalName,
		})

		if p.lexer.Token != js_lexer.TComma {
			break
		}
		if p.lexer.HasNewlineBefore {
			isSingleLine = false
		}
		p.lexer.Next()
		if p.lexer.HasNewlineBefore {
			isSingleLine = false
		}
	}

	if p.lexer.HasNewlineBefore {
		isSingleLine = false
	}
	p.lexer.Expect(js_lexer.TCloseBrace)
	return items, isSingleLine, firstNonIdentifierLoc
}

////////////////////////////////////////////////////////////////////////////////
// JSX elements

func (p *parser) parseJSXTag() (logger.Range, string, js_ast.Expr) {
	loc := p.lexer.Loc()

	// A missing tag is a fragment: "<>children</>"
	if p.lexer.Token == js_lexer.TGreaterThan {
		return logger.Range{Loc: loc}, "", js_ast.Expr{}
	}

	name := p.lexer.Identifier
	tagRange := p.lexer.Range()
	p.lexer.ExpectInsideJSXElement(js_lexer.TIdentifier)

	// Lowercase and dashed names are intrinsic elements and stay as strings
	if strings.ContainsAny(name, "-:") || (p.lexer.Token != js_lexer.TDot && name[0] >= 'a' && name[0] <= 'z') {
		return tagRange, name, js_ast.Expr{Loc: loc, Data: &js_ast.EString{Value: js_lexer.StringToUTF16(name)}}
	}

	// Everything else references a value in scope
	tag := js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: name, Ref: js_ast.InvalidRef}}

	// Member expression chains like "<module.Component/>"
	for p.lexer.Token == js_lexer.TDot {
		p.lexer.NextInsideJSXElement()
		memberRange := p.lexer.Range()
		member := p.lexer.Identifier
		p.lexer.ExpectInsideJSXElement(js_lexer.TIdentifier)

		// Dashes are not allowed in member expression chains
		if index := strings.IndexByte(member, '-'); index >= 0 {
			p.log.AddErrorWithKind(&p.source, logger.KindSyntax,
				logger.Range{Loc: logger.Loc{Start: memberRange.Loc.Start + int32(index)}},
				"Unexpected \"-\"")
			panic(js_lexer.LexerPanic{})
		}

		name += "." + member
		tag = js_ast.Expr{Loc: loc, Data: &js_ast.EDot{
			Target:  tag,
			Name:    member,
			NameLoc: memberRange.Loc,
		}}
		tagRange.Len = memberRange.Loc.Start + memberRange.Len - tagRange.Loc.Start
	}

	return tagRange, name, tag
}

// parseJSXElement is entered after the opening "<" has been consumed in JSX
// lexing mode. It stops on the final ">" without consuming it because only
// the caller knows which lexing mode the next token should use.
func (p *parser) parseJSXElement(loc logger.Loc) js_ast.Expr {
	_, startText, startTagOrNil := p.parseJSXTag()

	// The tag may have TypeScript type arguments: "<Foo<T>/>". The skipper is
	// told to rescan the token after the closing ">" in JSX mode because it
	// may be an attribute name containing a dash.
	if p.options.TS {
		p.skipTypeScriptTypeArguments(true /* isInsideJSXElement */)
	}

	// Fragments have no attributes
	properties := []js_ast.Property{}
	if startTagOrNil.Data != nil {
	parseAttributes:
		for {
			switch p.lexer.Token {
			case js_lexer.TIdentifier:
				// Parse the key
				keyRange := p.lexer.Range()
				key := js_ast.Expr{Loc: keyRange.Loc, Data: &js_ast.EString{Value: js_lexer.StringToUTF16(p.lexer.Identifier)}}
				p.lexer.NextInsideJSXElement()

				// Parse the value
				var value js_ast.Expr
				wasShorthand := false
				if p.lexer.Token != js_lexer.TEquals {
					// Implicitly true value
					wasShorthand = true
					value = js_ast.Expr{Loc: logger.Loc{Start: keyRange.Loc.Start + keyRange.Len}, Data: &js_ast.EBoolean{Value: true}}
				} else {
					// Use NextInsideJSXElement() so a following string literal
					// is lexed with JSX rules (no escape processing)
					p.lexer.NextInsideJSXElement()
					if p.lexer.Token == js_lexer.TStringLiteral {
						value = js_ast.Expr{Loc: p.lexer.Loc(), Data: &js_ast.EJSXText{Raw: p.lexer.Raw()}}
						p.lexer.NextInsideJSXElement()
					} else {
						// Use Expect() so the value is parsed as an expression
						p.lexer.Expect(js_lexer.TOpenBrace)
						value = p.parseExpr(js_ast.LLowest)
						p.lexer.ExpectInsideJSXElement(js_lexer.TCloseBrace)
					}
				}

				properties = append(properties, js_ast.Property{
					Key:          key,
					ValueOrNil:   value,
					WasShorthand: wasShorthand,
				})

			case js_lexer.TOpenBrace:
				// "{...props}"
				p.lexer.Next()
				p.lexer.Expect(js_lexer.TDotDotDot)
				value := p.parseExpr(js_ast.LComma)
				properties = append(properties, js_ast.Property{
					Kind:       js_ast.PropertySpread,
					ValueOrNil: value,
				})

				// Use NextInsideJSXElement() so ">>" is lexed as ">"
				p.lexer.NextInsideJSXElement()

			default:
				break parseAttributes
			}
		}
	}

	// A slash here is a self-closing element
	if p.lexer.Token == js_lexer.TSlash {
		closeLoc := p.lexer.Loc()
		p.lexer.NextInsideJSXElement()
		if p.lexer.Token != js_lexer.TGreaterThan {
			p.lexer.Expected(js_lexer.TGreaterThan)
		}
		return js_ast.Expr{Loc: loc, Data: &js_ast.EJSXElement{
			TagOrNil:   startTagOrNil,
			Properties: properties,
			CloseLoc:   closeLoc,
		}}
	}

	// Use ExpectJSXElementChild() so child strings are lexed with JSX rules
	p.lexer.ExpectJSXElementChild(js_lexer.TGreaterThan)

	// Parse the children of this element
	children := []js_ast.Expr{}
	for {
		switch p.lexer.Token {
		case js_lexer.TStringLiteral:
			children = append(children, js_ast.Expr{Loc: p.lexer.Loc(), Data: &js_ast.EJSXText{Raw: p.lexer.Raw()}})
			p.lexer.NextJSXElementChild()

		case js_lexer.TOpenBrace:
			// Use Next() since the interpolation is an expression
			p.lexer.Next()

			// The "..." here is ignored (it's used to signal an array type in TypeScript)
			if p.lexer.Token == js_lexer.TDotDotDot && p.options.TS {
				p.lexer.Next()
			}

			// The expression is optional, and may be absent
			if p.lexer.Token != js_lexer.TCloseBrace {
				children = append(children, p.parseExpr(js_ast.LLowest))
			}

			p.lexer.ExpectJSXElementChild(js_lexer.TCloseBrace)

		case js_lexer.TLessThan:
			lessThanLoc := p.lexer.Loc()
			p.lexer.NextInsideJSXElement()

			if p.lexer.Token != js_lexer.TSlash {
				// This is a child element
				children = append(children, p.parseJSXElement(lessThanLoc))

				// The call above doesn't consume the last TGreaterThan. The
				// next token is an element child, so rescan it in child mode.
				p.lexer.NextJSXElementChild()
				continue
			}

			// This is the closing element
			p.lexer.NextInsideJSXElement()
			endRange, endText, _ := p.parseJSXTag()
			if startText != endText {
				p.log.AddErrorWithKind(&p.source, logger.KindSyntax, endRange,
					fmt.Sprintf("Expected closing tag %q to match opening tag %q", endText, startText))
				panic(js_lexer.LexerPanic{})
			}
			if p.lexer.Token != js_lexer.TGreaterThan {
				p.lexer.Expected(js_lexer.TGreaterThan)
			}

			return js_ast.Expr{Loc: loc, Data: &js_ast.EJSXElement{
				TagOrNil:   startTagOrNil,
				Properties: properties,
				Children:   children,
				CloseLoc:   lessThanLoc,
			}}

		default:
			p.lexer.Unexpected()
		}
	}
}

////////////////////////////////////////////////////////////////////////////////
// The bind pass

func (p *parser) recordUsage(ref js_ast.Ref) {
	p.symbols[ref].UseCountEstimate++
}

// findSymbol resolves a name against the scope chain. Names that don't match
// any declaration become "unbound" symbols attached to the module scope so
// that every use of the same name shares one symbol.
func (p *parser) findSymbol(loc logger.Loc, name string) js_ast.Ref {
	for scope := p.currentScope; scope != nil; scope = scope.Parent {
		if member, ok := scope.Members[name]; ok {
			return member.Ref
		}
	}

	ref := p.newSymbol(js_ast.SymbolUnbound, name)
	p.moduleScope.Members[name] = js_ast.ScopeMember{Ref: ref, Loc: loc}
	return ref
}

func (p *parser) bindStmts(stmts []js_ast.Stmt) {
	for _, stmt := range stmts {
		p.bindStmt(stmt)
	}
}

// bindStmt must visit expressions and scopes in the exact order the parse
// pass created them so pushScopeForBindPass stays in sync with scopesInOrder.
func (p *parser) bindStmt(stmt js_ast.Stmt) {
	switch s := stmt.Data.(type) {
	case *js_ast.SBlock:
		p.pushScopeForBindPass(js_ast.ScopeBlock, stmt.Loc)
		p.bindStmts(s.Stmts)
		p.popScope()

	case *js_ast.SDirective, *js_ast.SEmpty, *js_ast.STypeScript, *js_ast.SDebugger,
		*js_ast.SBreak, *js_ast.SContinue, *js_ast.SImport, *js_ast.SExportStar, *js_ast.SExportFrom:
		// No local references

	case *js_ast.SExportClause:
		// "export {x}" references the local symbol "x"
		for i := range s.Items {
			item := &s.Items[i]
			item.Name.Ref = p.findSymbol(item.Name.Loc, item.OriginalName)
			p.recordUsage(item.Name.Ref)
		}

	case *js_ast.SExportDefault:
		if s.Value.Expr != nil {
			p.bindExpr(*s.Value.Expr)
		} else {
			p.bindStmt(*s.Value.Stmt)
		}

	case *js_ast.SExpr:
		p.bindExpr(s.Value)

	case *js_ast.SFunction:
		p.bindFn(stmt.Loc, &s.Fn)

	case *js_ast.SClass:
		p.bindClass(stmt.Loc, &s.Class)

	case *js_ast.SLabel:
		p.bindStmt(s.Stmt)

	case *js_ast.SIf:
		p.bindExpr(s.Test)
		p.bindStmt(s.Yes)
		if s.NoOrNil != nil {
			p.bindStmt(*s.NoOrNil)
		}

	case *js_ast.SFor:
		p.pushScopeForBindPass(js_ast.ScopeBlock, stmt.Loc)
		if s.InitOrNil != nil {
			p.bindStmt(*s.InitOrNil)
		}
		if s.TestOrNil.Data != nil {
			p.bindExpr(s.TestOrNil)
		}
		if s.UpdateOrNil.Data != nil {
			p.bindExpr(s.UpdateOrNil)
		}
		p.bindStmt(s.Body)
		p.popScope()

	case *js_ast.SForIn:
		p.pushScopeForBindPass(js_ast.ScopeBlock, stmt.Loc)
		p.bindStmt(s.Init)
		p.bindExpr(s.Value)
		p.bindStmt(s.Body)
		p.popScope()

	case *js_ast.SForOf:
		p.pushScopeForBindPass(js_ast.ScopeBlock, stmt.Loc)
		p.bindStmt(s.Init)
		p.bindExpr(s.Value)
		p.bindStmt(s.Body)
		p.popScope()

	case *js_ast.SDoWhile:
		p.bindStmt(s.Body)
		p.bindExpr(s.Test)

	case *js_ast.SWhile:
		p.bindExpr(s.Test)
		p.bindStmt(s.Body)

	case *js_ast.STry:
		p.pushScopeForBindPass(js_ast.ScopeBlock, s.BodyLoc)
		p.bindStmts(s.Body)
		p.popScope()
		if s.Catch != nil {
			p.pushScopeForBindPass(js_ast.ScopeBlock, s.Catch.Loc)
			if s.Catch.BindingOrNil != nil {
				p.bindBinding(*s.Catch.BindingOrNil)
			}
			p.bindStmts(s.Catch.Body)
			p.popScope()
		}
		if s.Finally != nil {
			p.pushScopeForBindPass(js_ast.ScopeBlock, s.Finally.Loc)
			p.bindStmts(s.Finally.Stmts)
			p.popScope()
		}

	case *js_ast.SSwitch:
		p.bindExpr(s.Test)
		p.pushScopeForBindPass(js_ast.ScopeBlock, s.BodyLoc)
		for _, c := range s.Cases {
			if c.ValueOrNil.Data != nil {
				p.bindExpr(c.ValueOrNil)
			}
			p.bindStmts(c.Body)
		}
		p.popScope()

	case *js_ast.SReturn:
		if s.ValueOrNil.Data != nil {
			p.bindExpr(s.ValueOrNil)
		}

	case *js_ast.SThrow:
		p.bindExpr(s.Value)

	case *js_ast.SLocal:
		for _, decl := range s.Decls {
			p.bindBinding(decl.Binding)
			if decl.ValueOrNil.Data != nil {
				p.bindExpr(decl.ValueOrNil)
			}
		}

	default:
		panic("Internal error")
	}
}

func (p *parser) bindExpr(expr js_ast.Expr) {
	switch e := expr.Data.(type) {
	case *js_ast.EIdentifier:
		if !e.Ref.IsValid() {
			e.Ref = p.findSymbol(expr.Loc, e.Name)
		}
		p.recordUsage(e.Ref)

	case *js_ast.EArray:
		for _, item := range e.Items {
			p.bindExpr(item)
		}

	case *js_ast.EUnary:
		p.bindExpr(e.Value)

	case *js_ast.EBinary:
		p.bindExpr(e.Left)
		p.bindExpr(e.Right)

	case *js_ast.ENew:
		p.bindExpr(e.Target)
		for _, arg := range e.Args {
			p.bindExpr(arg)
		}

	case *js_ast.ECall:
		p.bindExpr(e.Target)
		for _, arg := range e.Args {
			p.bindExpr(arg)
		}

	case *js_ast.EDot:
		p.bindExpr(e.Target)

	case *js_ast.EIndex:
		p.bindExpr(e.Target)
		p.bindExpr(e.Index)

	case *js_ast.EArrow:
		p.pushScopeForBindPass(js_ast.ScopeFunctionArgs, expr.Loc)
		for _, arg := range e.Args {
			p.bindBinding(arg.Binding)
			if arg.DefaultOrNil.Data != nil {
				p.bindExpr(arg.DefaultOrNil)
			}
		}
		p.pushScopeForBindPass(js_ast.ScopeFunctionBody, e.Body.Loc)
		p.bindStmts(e.Body.Stmts)
		p.popScope()
		p.popScope()

	case *js_ast.EFunction:
		p.bindFn(expr.Loc, &e.Fn)

	case *js_ast.EClass:
		p.bindClass(expr.Loc, &e.Class)

	case *js_ast.EJSXElement:
		if e.TagOrNil.Data != nil {
			p.bindExpr(e.TagOrNil)
		}
		for _, property := range e.Properties {
			p.bindProperty(property)
		}
		for _, child := range e.Children {
			p.bindExpr(child)
		}

	case *js_ast.EObject:
		for _, property := range e.Properties {
			p.bindProperty(property)
		}

	case *js_ast.ESpread:
		p.bindExpr(e.Value)

	case *js_ast.ETemplate:
		if e.TagOrNil.Data != nil {
			p.bindExpr(e.TagOrNil)
		}
		for _, part := range e.Parts {
			p.bindExpr(part.Value)
		}

	case *js_ast.EAwait:
		p.bindExpr(e.Value)

	case *js_ast.EYield:
		if e.ValueOrNil.Data != nil {
			p.bindExpr(e.ValueOrNil)
		}

	case *js_ast.EIf:
		p.bindExpr(e.Test)
		p.bindExpr(e.Yes)
		p.bindExpr(e.No)

	case *js_ast.EImportCall:
		p.bindExpr(e.Expr)
		if e.OptionsOrNil.Data != nil {
			p.bindExpr(e.OptionsOrNil)
		}
	}
}

func (p *parser) bindProperty(property js_ast.Property) {
	if property.IsComputed {
		p.bindExpr(property.Key)
	}
	if property.ValueOrNil.Data != nil {
		p.bindExpr(property.ValueOrNil)
	}
	if property.InitializerOrNil.Data != nil {
		p.bindExpr(property.InitializerOrNil)
	}
}

func (p *parser) bindFn(loc logger.Loc, fn *js_ast.Fn) {
	p.pushScopeForBindPass(js_ast.ScopeFunctionArgs, loc)
	for _, arg := range fn.Args {
		p.bindBinding(arg.Binding)
		if arg.DefaultOrNil.Data != nil {
			p.bindExpr(arg.DefaultOrNil)
		}
	}
	p.pushScopeForBindPass(js_ast.ScopeFunctionBody, fn.Body.Loc)
	p.bindStmts(fn.Body.Stmts)
	p.popScope()
	p.popScope()
}

func (p *parser) bindClass(loc logger.Loc, class *js_ast.Class) {
	p.pushScopeForBindPass(js_ast.ScopeClassName, loc)
	if class.ExtendsOrNil.Data != nil {
		p.bindExpr(class.ExtendsOrNil)
	}
	for _, property := range class.Properties {
		p.bindProperty(property)
	}
	p.popScope()
}

// Binding patterns declare symbols during the parse pass, so the bind pass
// only has to visit the expressions nested inside them.
func (p *parser) bindBinding(binding js_ast.Binding) {
	switch b := binding.Data.(type) {
	case *js_ast.BArray:
		for _, item := range b.Items {
			p.bindBinding(item.Binding)
			if item.DefaultValueOrNil.Data != nil {
				p.bindExpr(item.DefaultValueOrNil)
			}
		}

	case *js_ast.BObject:
		for _, property := range b.Properties {
			if property.IsComputed {
				p.bindExpr(property.Key)
			}
			p.bindBinding(property.Value)
			if property.DefaultValueOrNil.Data != nil {
				p.bindExpr(property.DefaultValueOrNil)
			}
		}
	}
}
