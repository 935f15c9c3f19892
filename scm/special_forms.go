/*
Copyright (C) 2023  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package scm

import "fmt"

// registerSpecialForm binds name in env to a Procedure of
// ProcSpecialForm kind wrapping fn, the same declare-into-Globalenv
// idiom the teacher uses for ordinary builtins (scm/declare.go's
// Declare), just carrying a compiler instead of a native function.
func registerSpecialForm(env *Environment, name string, fn SpecialFormFn) {
	env.Define(Symbol(name), NewProcedure(&Procedure{
		Kind: ProcSpecialForm,
		Name: name,
		Form: fn,
	}))
}

func initSpecialForms(env *Environment) {
	registerSpecialForm(env, "quote", sfQuote)
	registerSpecialForm(env, "if", sfIf)
	registerSpecialForm(env, "begin", sfBegin)
	registerSpecialForm(env, "define", sfDefine)
	registerSpecialForm(env, "set!", sfSet)
	registerSpecialForm(env, "define-syntax", sfDefineSyntax)
	registerSpecialForm(env, "lambda", sfLambda)
	registerSpecialForm(env, "let", sfLet)
	registerSpecialForm(env, "letrec", sfLetrec)
	registerSpecialForm(env, "eval", sfEval)
	registerSpecialForm(env, "and", sfAnd)
	registerSpecialForm(env, "or", sfOr)
}

func sfQuote(vm *VM, operands []Datum, env *Environment, isTail bool) ([]Instruction, error) {
	if len(operands) != 1 {
		return nil, arityError("quote", 1, 1, len(operands))
	}
	return []Instruction{pushValue(operands[0])}, nil
}

func sfIf(vm *VM, operands []Datum, env *Environment, isTail bool) ([]Instruction, error) {
	if len(operands) != 2 && len(operands) != 3 {
		return nil, arityError("if", 2, 3, len(operands))
	}
	elseExpr := pushValue(NewBoolean(false))
	if len(operands) == 3 {
		elseExpr = evaluate(operands[2], env, isTail)
	}
	return []Instruction{
		evaluate(operands[0], env, false),
		jumpIfFalse(2),
		evaluate(operands[1], env, isTail),
		returnInstr(),
		elseExpr,
	}, nil
}

func sfBegin(vm *VM, operands []Datum, env *Environment, isTail bool) ([]Instruction, error) {
	return compileBody(operands, env, isTail), nil
}

// sfAnd rewrites (and a b c) into nested ifs — (if a (if b c #f) #f) —
// and lets the ordinary "if" compiler take it from there. and/or are
// expressed as Datum-to-Datum rewrites rather than hand-spliced
// instructions because, unlike "if", they don't need a fresh opcode:
// they're sugar for forms the VM already knows how to compile.
func sfAnd(vm *VM, operands []Datum, env *Environment, isTail bool) ([]Instruction, error) {
	if len(operands) == 0 {
		return []Instruction{pushValue(NewBoolean(true))}, nil
	}
	expr := operands[len(operands)-1]
	for i := len(operands) - 2; i >= 0; i-- {
		expr = ifForm(operands[i], expr, NewBoolean(false))
	}
	return []Instruction{evaluate(expr, env, isTail)}, nil
}

// sfOr rewrites (or a b c) into nested immediately-invoked lambdas that
// bind each operand once before testing it — (or a b) must not
// evaluate a twice just to test-then-return it — producing
// ((lambda (t1) (if t1 t1 ((lambda (t2) (if t2 t2 c)) b))) a), each tN
// a fresh or_tmp_N temporary from freshOrTemp.
func sfOr(vm *VM, operands []Datum, env *Environment, isTail bool) ([]Instruction, error) {
	if len(operands) == 0 {
		return []Instruction{pushValue(NewBoolean(false))}, nil
	}
	expr := operands[len(operands)-1]
	for i := len(operands) - 2; i >= 0; i-- {
		tmp := NewSymbol(freshOrTemp())
		lambdaForm := NewPair(NewSymbol("lambda"), NewPair(SliceToList([]Datum{tmp}),
			SliceToList([]Datum{ifForm(tmp, tmp, expr)})))
		expr = SliceToList([]Datum{lambdaForm, operands[i]})
	}
	return []Instruction{evaluate(expr, env, isTail)}, nil
}

func ifForm(cond, then, els Datum) Datum {
	return SliceToList([]Datum{NewSymbol("if"), cond, then, els})
}

var orTempCounter uint64

func freshOrTemp() Symbol {
	orTempCounter++
	return Symbol(fmt.Sprintf("or_tmp_%d", orTempCounter))
}

func sfDefine(vm *VM, operands []Datum, env *Environment, isTail bool) ([]Instruction, error) {
	if len(operands) < 1 {
		return nil, arityError("define", 1, -1, len(operands))
	}
	switch operands[0].Kind {
	case KindSymbol:
		name := operands[0].Sym
		if len(operands) == 1 {
			return []Instruction{pushValue(EmptyList()), {Op: OpDefine, Name: name, Env: env}}, nil
		} else if len(operands) != 2 {
			return nil, arityError("define", 1, 2, len(operands))
		}
		return []Instruction{evaluate(operands[1], env, false), {Op: OpDefine, Name: name, Env: env}}, nil
	case KindPair:
		name := operands[0].Pair.Car
		if name.Kind != KindSymbol {
			return nil, NewError(Syntax, "define: procedure name must be a symbol")
		}
		formals := operands[0].Pair.Cdr
		body := operands[1:]
		lambdaForm := NewPair(NewSymbol("lambda"), NewPair(formals, SliceToList(body)))
		return []Instruction{evaluate(lambdaForm, env, false), {Op: OpDefine, Name: name.Sym, Env: env}}, nil
	default:
		return nil, NewError(Syntax, "define: invalid first operand")
	}
}

func sfSet(vm *VM, operands []Datum, env *Environment, isTail bool) ([]Instruction, error) {
	if len(operands) != 2 {
		return nil, arityError("set!", 2, 2, len(operands))
	}
	if operands[0].Kind != KindSymbol {
		return nil, NewError(Syntax, "set!: target must be a symbol")
	}
	return []Instruction{evaluate(operands[1], env, false), {Op: OpSet, Name: operands[0].Sym, Env: env}}, nil
}

func sfDefineSyntax(vm *VM, operands []Datum, env *Environment, isTail bool) ([]Instruction, error) {
	if len(operands) != 2 {
		return nil, arityError("define-syntax", 2, 2, len(operands))
	}
	if operands[0].Kind != KindSymbol {
		return nil, NewError(Syntax, "define-syntax: name must be a symbol")
	}
	rule, err := CompileSyntaxRules(operands[1], operands[0].Sym, env)
	if err != nil {
		return nil, err
	}
	env.Define(operands[0].Sym, NewSyntaxRule(rule))
	return []Instruction{pushValue(EmptyList())}, nil
}

func sfLambda(vm *VM, operands []Datum, env *Environment, isTail bool) ([]Instruction, error) {
	if len(operands) < 1 {
		return nil, arityError("lambda", 1, -1, len(operands))
	}
	params, rest, hasRest, err := parseFormals(operands[0])
	if err != nil {
		return nil, err
	}
	proc := &Procedure{
		Kind:    ProcScheme,
		Params:  params,
		Rest:    rest,
		HasRest: hasRest,
		Body:    operands[1:],
		Closure: env,
	}
	return []Instruction{pushValue(NewProcedure(proc))}, nil
}

// parseFormals covers the three shapes spec.md §4.3 requires: a bare
// symbol (all arguments collected as a rest list), a proper list
// (fixed arity), or an improper list (fixed arity plus a rest tail).
func parseFormals(formals Datum) (params []Symbol, rest Symbol, hasRest bool, err error) {
	switch formals.Kind {
	case KindSymbol:
		return nil, formals.Sym, true, nil
	case KindEmptyList:
		return nil, "", false, nil
	case KindPair:
		d := formals
		for d.Kind == KindPair {
			if d.Pair.Car.Kind != KindSymbol {
				return nil, "", false, NewError(Syntax, "lambda: formal parameter must be a symbol")
			}
			params = append(params, d.Pair.Car.Sym)
			d = d.Pair.Cdr
		}
		if d.Kind == KindEmptyList {
			return params, "", false, nil
		}
		if d.Kind == KindSymbol {
			return params, d.Sym, true, nil
		}
		return nil, "", false, NewError(Syntax, "lambda: improper formals list")
	default:
		return nil, "", false, NewError(Syntax, "lambda: invalid formals")
	}
}

func sfLetrec(vm *VM, operands []Datum, env *Environment, isTail bool) ([]Instruction, error) {
	if len(operands) < 1 {
		return nil, arityError("letrec", 1, -1, len(operands))
	}
	bindingForms, ok := ListToSlice(operands[0])
	if !ok {
		return nil, NewError(Syntax, "letrec: bindings must be a list")
	}
	child := env.Child()
	type binding struct {
		name Symbol
		init Datum
	}
	var bs []binding
	for _, bf := range bindingForms {
		pair, ok := ListToSlice(bf)
		if !ok || len(pair) != 2 || pair[0].Kind != KindSymbol {
			return nil, NewError(Syntax, "letrec: binding must be (name value)")
		}
		child.Define(pair[0].Sym, EmptyList())
		bs = append(bs, binding{name: pair[0].Sym, init: pair[1]})
	}
	instrs := make([]Instruction, 0, len(bs)*2+len(operands))
	for _, b := range bs {
		instrs = append(instrs, evaluate(b.init, child, false), Instruction{Op: OpDefine, Name: b.name, Env: child})
		instrs = append(instrs, popValueInstr())
	}
	instrs = append(instrs, compileBody(operands[1:], child, isTail)...)
	return instrs, nil
}

// sfLet is ordinary (non-recursive) let: every init expression is
// evaluated in the enclosing environment, before any binding becomes
// visible, so a binding's init can't refer to a sibling binding of the
// same let — exactly the property syntax-rules hygiene tests in
// spec.md §9's edge cases rely on (a macro-introduced "let" binding
// must not let user code see it early). Structured the same way as
// sfLetrec just above, minus the child-env pre-declare step.
func sfLet(vm *VM, operands []Datum, env *Environment, isTail bool) ([]Instruction, error) {
	if len(operands) < 1 {
		return nil, arityError("let", 1, -1, len(operands))
	}
	bindingForms, ok := ListToSlice(operands[0])
	if !ok {
		return nil, NewError(Syntax, "let: bindings must be a list")
	}
	type binding struct {
		name Symbol
		init Datum
	}
	bs := make([]binding, 0, len(bindingForms))
	for _, bf := range bindingForms {
		pair, ok := ListToSlice(bf)
		if !ok || len(pair) != 2 || pair[0].Kind != KindSymbol {
			return nil, NewError(Syntax, "let: binding must be (name value)")
		}
		bs = append(bs, binding{name: pair[0].Sym, init: pair[1]})
	}
	child := env.Child()
	instrs := make([]Instruction, 0, len(bs)*2+len(operands))
	for _, b := range bs {
		instrs = append(instrs, evaluate(b.init, env, false), Instruction{Op: OpDefine, Name: b.name, Env: child})
		instrs = append(instrs, popValueInstr())
	}
	instrs = append(instrs, compileBody(operands[1:], child, isTail)...)
	return instrs, nil
}

func sfEval(vm *VM, operands []Datum, env *Environment, isTail bool) ([]Instruction, error) {
	if len(operands) != 1 && len(operands) != 2 {
		return nil, arityError("eval", 1, 2, len(operands))
	}
	// A second, environment-selecting argument is accepted syntactically
	// (interactive-environment-style callers commonly pass one) but this
	// core only ever evaluates in the lexical environment eval was
	// called from — there is no (the-environment) capsule to switch to.
	return []Instruction{
		evaluate(operands[0], env, false),
		evaluateDynamic(env, isTail),
	}, nil
}
