package irgen

import (
	"github.com/klang/buildscript/lang/ast"
	"github.com/klang/buildscript/lang/ir"
	"github.com/klang/buildscript/lang/resolver"
)

// paramSyms returns sig's parameters as WriteVariable/ReadVariable keys, in
// declaration order.
//
// Default values (Param.Default) are resolved by the resolver against the
// declaring function's own scope (spec.md leaves the exact call convention
// for omitted trailing arguments to the invocation layer) but are not
// lowered here: substituting a default for an omitted argument is a
// calling-convention concern of the function-invocation mechanism, which is
// out of scope for IR generation. The default expression stays attached to
// the AST's Param node for that layer to evaluate against the call site.
func paramSyms(sig *ast.ParameterList) []any {
	syms := make([]any, len(sig.Params))
	for i, p := range sig.Params {
		syms[i] = sym(p.Name)
	}
	return syms
}

// funcDecl lowers a "def" declaration: the closure is built, then bound to
// its own name in the enclosing scope (self-recursion is handled by
// makeClosure's selfSym "tie the knot" case).
func (g *generator) funcDecl(d *ast.FuncDecl) {
	fn := g.functions[d]
	g.pushFunction(d.Name.Lit, paramSyms(d.Sig), d.Sig.DotDotDot.IsValid(), fn)
	g.block(d.Body)
	v := g.makeClosure(d.Def, d.Symbol)
	g.cur().WriteVariable(d.Symbol, v)
}

// taskDecl lowers a "task" declaration. Inputs/Outputs/DependsOn/From are
// declarative metadata (spec.md §3/§4.3): nothing downstream of IR
// generation in this repo consumes them as executable values, so they stay
// on the AST for the (out-of-scope) task scheduler to read directly; only
// the action blocks compile to IR, run in the order DoFirst, Do, DoLast
// within one code unit.
func (g *generator) taskDecl(d *ast.TaskDecl) {
	fn := g.functions[d]
	var params []any
	var hasVarArg bool
	if d.Sig != nil {
		params = paramSyms(d.Sig)
		hasVarArg = d.Sig.DotDotDot.IsValid()
	}
	g.pushFunction(d.Name.Lit, params, hasVarArg, fn)
	if d.DoFirst != nil {
		g.block(d.DoFirst)
	}
	if d.Do != nil {
		g.block(d.Do)
	}
	if d.DoLast != nil {
		g.block(d.DoLast)
	}
	v := g.makeClosure(d.Task, d.Symbol)
	g.cur().WriteVariable(d.Symbol, v)
}

// classDecl lowers a class to a code unit that builds and returns a
// descriptor map: {name, extends, fields, methods, props}. No MakeClass
// opcode exists in this IR, and inventing one would intrude on the object
// model the (out-of-scope) runtime owns; a descriptor built from MakeMap and
// MakeClosure, interpreted by that runtime, reuses existing opcodes for the
// concern instead.
//
// Field initializers run once, in declaration order, each one visible to
// the next via a class-scope local (spec.md: "each one visible to those
// after it") — this is distinct from instance field access, which methods
// perform through self.field (GetMember/SetMember), never through these
// locals.
func (g *generator) classDecl(d *ast.ClassDecl) {
	fn := g.functions[d]
	g.pushFunction("class "+d.Name.Lit, nil, false, fn)
	b := g.cur()
	hasSuper := d.Extends != nil

	var fieldKeys, fieldVals []ir.Value
	for _, f := range d.Fields {
		for i, id := range f.Left {
			var v ir.Value
			if len(f.Right) > 0 {
				v = g.expr(f.Right[i])
			} else {
				v = g.emitConst(b, f.Start, nil)
			}
			b.WriteVariable(sym(id), v)
			fieldKeys = append(fieldKeys, g.emitConst(b, id.Start, id.Lit))
			fieldVals = append(fieldVals, v)
		}
	}

	var methodKeys, methodVals []ir.Value
	for _, m := range d.Methods {
		methodKeys = append(methodKeys, g.emitConst(b, m.Def, m.Name.Lit))
		methodVals = append(methodVals, g.methodClosure(m, hasSuper))
	}

	var propKeys, propVals []ir.Value
	for _, p := range d.Props {
		propKeys = append(propKeys, g.emitConst(b, p.Name.Start, p.Name.Lit))
		propVals = append(propVals, g.propDescriptor(p, hasSuper))
	}

	extendsVal := ir.Invalid
	if d.Extends != nil {
		extendsVal = g.expr(d.Extends)
	}

	fieldsMap := b.NewValue()
	b.Emit(ir.NewMakeMap(d.Class, fieldsMap, fieldKeys, fieldVals))
	methodsMap := b.NewValue()
	b.Emit(ir.NewMakeMap(d.Class, methodsMap, methodKeys, methodVals))
	propsMap := b.NewValue()
	b.Emit(ir.NewMakeMap(d.Class, propsMap, propKeys, propVals))

	desc := b.NewValue()
	b.Emit(ir.NewMakeMap(d.Class, desc,
		[]ir.Value{
			g.emitConst(b, d.Class, "name"),
			g.emitConst(b, d.Class, "extends"),
			g.emitConst(b, d.Class, "fields"),
			g.emitConst(b, d.Class, "methods"),
			g.emitConst(b, d.Class, "props"),
		},
		[]ir.Value{g.emitConst(b, d.Class, d.Name.Lit), extendsVal, fieldsMap, methodsMap, propsMap},
	))
	b.Emit(ir.NewReturn(d.Class, desc))

	v := g.makeClosure(d.Class, nil)
	g.cur().WriteVariable(d.Symbol, v)
}

// methodClosure lowers one method body. fn.Locals[0] is the implicit self
// binding (bindImplicit runs before the declared parameters), Locals[1] is
// the implicit super binding when the class extends another. selfSym is the
// method's own Symbol, so a method calling itself by name ties the knot the
// same way a recursive top-level def does.
func (g *generator) methodClosure(m *ast.FuncDecl, hasSuper bool) ir.Value {
	fn := g.functions[m]
	params := []any{fn.Locals[0]}
	if hasSuper {
		params = append(params, fn.Locals[1])
	}
	params = append(params, paramSyms(m.Sig)...)
	g.pushFunction(m.Name.Lit, params, m.Sig.DotDotDot.IsValid(), fn)
	g.block(m.Body)
	return g.makeClosure(m.Def, m.Symbol)
}

// propDescriptor lowers a computed property's get/set accessors into a
// {"get": closure-or-none, "set": closure-or-none} map. A property has no
// Symbol of its own (it is reached only through self.name, never as a
// lexical variable), so neither accessor can self-recurse by name.
func (g *generator) propDescriptor(p *ast.PropDecl, hasSuper bool) ir.Value {
	getVal, setVal := ir.Invalid, ir.Invalid
	if p.Get != nil {
		getVal = g.propAccessor(hasSuper, p.Get, nil, g.functions[p.Get])
	}
	if p.Set != nil {
		setVal = g.propAccessor(hasSuper, p.Set, p.SetArg, g.functions[p.Set])
	}
	b := g.cur()
	result := b.NewValue()
	b.Emit(ir.NewMakeMap(p.Name.Start, result,
		[]ir.Value{g.emitConst(b, p.Name.Start, "get"), g.emitConst(b, p.Name.Start, "set")},
		[]ir.Value{getVal, setVal}))
	return result
}

func (g *generator) propAccessor(hasSuper bool, body *ast.Block, setArg *ast.IdentExpr, fn *resolver.Function) ir.Value {
	params := []any{fn.Locals[0]}
	if hasSuper {
		params = append(params, fn.Locals[1])
	}
	if setArg != nil {
		params = append(params, sym(setArg))
	}
	g.pushFunction("<property>", params, false, fn)
	g.block(body)
	return g.makeClosure(body.Lbrace, nil)
}

// varDecl lowers a var/const declaration: a bare "var x" (no Right) binds
// none; otherwise each name pairs positionally with its initializer.
func (g *generator) varDecl(d *ast.VarDecl) {
	b := g.cur()
	for i, id := range d.Left {
		var v ir.Value
		if len(d.Right) > 0 {
			v = g.expr(d.Right[i])
		} else {
			v = g.emitConst(b, d.Start, nil)
		}
		b.WriteVariable(sym(id), v)
	}
}

// importDecl loads the module for its side effects; only an aliased import
// binds a name (no alias means nothing in this scope can refer to it, per
// the resolver, which only binds stmt.Alias).
func (g *generator) importDecl(d *ast.ImportDecl) {
	b := g.cur()
	result := b.NewValue()
	path, _ := d.Path.Value.(string)
	b.Emit(ir.NewImport(d.Import, result, path))
	if d.Alias != nil {
		b.WriteVariable(sym(d.Alias), result)
	}
}

// exportDecl lowers the wrapped declaration, then re-exports whatever name(s)
// it bound.
func (g *generator) exportDecl(d *ast.ExportDecl) {
	g.stmt(d.Decl)
	b := g.cur()
	pos, _ := d.Decl.Span()
	switch decl := d.Decl.(type) {
	case *ast.FuncDecl:
		b.Emit(ir.NewExport(pos, decl.Symbol, b.ReadVariable(decl.Symbol, b.Current())))
	case *ast.TaskDecl:
		b.Emit(ir.NewExport(pos, decl.Symbol, b.ReadVariable(decl.Symbol, b.Current())))
	case *ast.ClassDecl:
		b.Emit(ir.NewExport(pos, decl.Symbol, b.ReadVariable(decl.Symbol, b.Current())))
	case *ast.VarDecl:
		for _, id := range decl.Left {
			s := sym(id)
			b.Emit(ir.NewExport(pos, s, b.ReadVariable(s, b.Current())))
		}
	}
}
