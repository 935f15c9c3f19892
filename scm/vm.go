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

// frame is one spliced instruction sequence with a forward cursor.
// A "frame exhausted" (pos >= len(instrs)) is the VM's only bookkeeping
// for "this nested form is done" — special forms rely on it (see
// special_forms.go's use of Return) and tail calls rely on it too: the
// VM forces a frame to look exhausted the moment it dispatches an
// instruction marked is_tail, so the very next frame push reuses that
// slot instead of growing the stack. This is the same idea as the
// teacher's "goto restart" trampoline in its tree-walking evaluator
// (scm/scm.go Eval), expressed here as explicit stack-slot reuse
// instead of a Go-level goto.
type frame struct {
	instrs []Instruction
	pos    int
}

// Options configures resource ceilings for a VM. Zero means unbounded,
// matching spec.md §5's default; the ceilings are an EXPANSION for
// long-lived REPL/network processes (see SPEC_FULL.md §5).
type Options struct {
	MaxInstructions int
	MaxValueStack   int
}

// VM is the instruction-and-value-stack evaluator described by
// spec.md §4.2.
type VM struct {
	frames []frame
	values []Datum

	opts    Options
	counter int
}

func NewVM(opts Options) *VM {
	return &VM{opts: opts}
}

func (vm *VM) pushFrame(instrs []Instruction) {
	if len(instrs) == 0 {
		instrs = []Instruction{pushValue(EmptyList())}
	}
	if n := len(vm.frames); n > 0 {
		top := &vm.frames[n-1]
		if top.pos >= len(top.instrs) {
			vm.frames[n-1] = frame{instrs: instrs}
			return
		}
	}
	vm.frames = append(vm.frames, frame{instrs: instrs})
}

func (vm *VM) pushValue(d Datum) error {
	if vm.opts.MaxValueStack > 0 && len(vm.values) >= vm.opts.MaxValueStack {
		return NewError(Resource, "value stack exceeded %d entries", vm.opts.MaxValueStack)
	}
	vm.values = append(vm.values, d)
	return nil
}

func (vm *VM) popValue() (Datum, error) {
	n := len(vm.values)
	if n == 0 {
		return Datum{}, NewError(Internal, "value stack underflow")
	}
	v := vm.values[n-1]
	vm.values = vm.values[:n-1]
	return v, nil
}

// Run evaluates form in env to completion and returns its value. This
// is the entry point interpreter.go's Interpreter calls for every
// top-level form.
func (vm *VM) Run(form Datum, env *Environment) (Datum, error) {
	vm.pushFrame([]Instruction{evaluate(form, env, true)})
	return vm.drive(0)
}

// Apply invokes proc with args and drives the VM until that call
// completes, regardless of proc's kind. Native builtins that need to
// call back into Scheme code (map, filter, apply — see
// builtins_list.go) use this instead of hand-rolling their own
// evaluator; it reenters the same frame/value stacks the outer Run
// call is using, so a callback into Go-native code that itself calls
// back into Scheme nests naturally on the Go call stack.
func (vm *VM) Apply(proc Datum, args []Datum) (Datum, error) {
	instrs := make([]Instruction, 0, len(args)+2)
	instrs = append(instrs, pushValue(proc))
	for _, a := range args {
		instrs = append(instrs, pushValue(a))
	}
	instrs = append(instrs, apply(len(args), false))
	// Appends unconditionally rather than going through pushFrame's
	// exhausted-slot reuse: that optimization assumes the caller will
	// keep draining the same loop, but here we must be able to tell
	// "this call's frame is done" apart from "the frame it happened to
	// land in is done" by depth alone.
	depth := len(vm.frames)
	vm.frames = append(vm.frames, frame{instrs: instrs})
	return vm.drive(depth)
}

// drive runs the fetch/execute loop until the frame stack depth drops
// to stopDepth or below, then returns the value that call left behind.
func (vm *VM) drive(stopDepth int) (result Datum, err error) {
	for len(vm.frames) > stopDepth {
		n := len(vm.frames)
		top := &vm.frames[n-1]
		if top.pos >= len(top.instrs) {
			vm.frames = vm.frames[:n-1]
			continue
		}
		ins := top.instrs[top.pos]
		top.pos++

		vm.counter++
		if vm.opts.MaxInstructions > 0 && vm.counter > vm.opts.MaxInstructions {
			return Datum{}, NewError(Resource, "exceeded %d instructions", vm.opts.MaxInstructions)
		}

		if ins.IsTail && (ins.Op == OpEvaluate || ins.Op == OpApply) {
			// Force this frame to look exhausted *before* acting on the
			// tail instruction, so the frame it pushes (or replaces)
			// reuses this slot instead of nesting. This is what keeps
			// a self-tail-recursive loop at O(1) frame-stack depth.
			top.pos = len(top.instrs)
		}

		switch ins.Op {
		case OpPushValue:
			if err = vm.pushValue(ins.Value); err != nil {
				return Datum{}, err
			}
		case OpPopValue:
			if _, err = vm.popValue(); err != nil {
				return Datum{}, err
			}
		case OpEvaluate:
			if err = vm.execEvaluate(ins.Form, ins.Env, ins.IsTail); err != nil {
				return Datum{}, err
			}
		case OpJumpIfFalse:
			var cond Datum
			if cond, err = vm.popValue(); err != nil {
				return Datum{}, err
			}
			if !IsTruthy(cond) {
				top.pos += ins.Skip
			}
		case OpReturn:
			top.pos = len(top.instrs)
		case OpDefine:
			var v Datum
			if v, err = vm.popValue(); err != nil {
				return Datum{}, err
			}
			ins.Env.Define(ins.Name, v)
			if err = vm.pushValue(EmptyList()); err != nil {
				return Datum{}, err
			}
		case OpSet:
			var v Datum
			if v, err = vm.popValue(); err != nil {
				return Datum{}, err
			}
			if err = ins.Env.Set(ins.Name, v); err != nil {
				return Datum{}, err
			}
			if err = vm.pushValue(EmptyList()); err != nil {
				return Datum{}, err
			}
		case OpApply:
			if err = vm.execApply(ins.Argc, ins.IsTail); err != nil {
				return Datum{}, err
			}
		case OpEvaluateDynamic:
			var code Datum
			if code, err = vm.popValue(); err != nil {
				return Datum{}, err
			}
			if err = vm.execEvaluate(code, ins.Env, ins.IsTail); err != nil {
				return Datum{}, err
			}
		}
	}
	return vm.popValue()
}

func (vm *VM) execEvaluate(form Datum, env *Environment, isTail bool) error {
	switch form.Kind {
	case KindBoolean, KindInteger, KindCharacter, KindString, KindVector,
		KindProcedure, KindSyntaxRule, KindExt:
		return vm.pushValue(form)
	case KindEmptyList:
		return NewError(Syntax, "cannot evaluate the empty list")
	case KindSymbol:
		v, err := env.Get(form.Sym)
		if err != nil {
			return err
		}
		return vm.pushValue(v)
	case KindPair:
		return vm.execEvaluatePair(form, env, isTail)
	default:
		return NewError(Internal, "unhandled datum kind in evaluate")
	}
}

func (vm *VM) execEvaluatePair(form Datum, env *Environment, isTail bool) error {
	head := form.Pair.Car
	if head.Kind == KindSymbol {
		if v, err := env.Get(head.Sym); err == nil {
			if v.Kind == KindProcedure && v.Proc.Kind == ProcSpecialForm {
				operands, ok := ListToSlice(form.Pair.Cdr)
				if !ok {
					return NewError(Syntax, "%s: improper operand list", head.Sym)
				}
				instrs, err := v.Proc.Form(vm, operands, env, isTail)
				if err != nil {
					return err
				}
				vm.pushFrame(instrs)
				return nil
			}
			if v.Kind == KindSyntaxRule {
				expanded, evalEnv, err := ExpandMacro(v.Macro, form, env)
				if err != nil {
					return err
				}
				vm.pushFrame([]Instruction{evaluate(expanded, evalEnv, isTail)})
				return nil
			}
		}
	}
	operands, ok := ListToSlice(form.Pair.Cdr)
	if !ok {
		return NewError(Syntax, "improper operand list in application")
	}
	instrs := make([]Instruction, 0, len(operands)+2)
	instrs = append(instrs, evaluate(head, env, false))
	for _, op := range operands {
		instrs = append(instrs, evaluate(op, env, false))
	}
	instrs = append(instrs, apply(len(operands), isTail))
	vm.pushFrame(instrs)
	return nil
}

func (vm *VM) execApply(argc int, isTail bool) error {
	args := make([]Datum, argc)
	for i := argc - 1; i >= 0; i-- {
		v, err := vm.popValue()
		if err != nil {
			return err
		}
		args[i] = v
	}
	procDatum, err := vm.popValue()
	if err != nil {
		return err
	}
	if procDatum.Kind != KindProcedure {
		return NewError(Type, "cannot apply non-procedure of kind %s", KindName(procDatum.Kind))
	}
	proc := procDatum.Proc

	switch proc.Kind {
	case ProcNative:
		result, err := proc.Native(vm, args)
		if err != nil {
			return err
		}
		return vm.pushValue(result)
	case ProcScheme:
		if len(args) < len(proc.Params) || (!proc.HasRest && len(args) > len(proc.Params)) {
			name := proc.Name
			if name == "" {
				name = "lambda"
			}
			if proc.HasRest {
				return arityError(name, len(proc.Params), -1, len(args))
			}
			return arityError(name, len(proc.Params), len(proc.Params), len(args))
		}
		child := proc.Closure.Child()
		for i, p := range proc.Params {
			child.Define(p, args[i])
		}
		if proc.HasRest {
			child.Define(proc.Rest, SliceToList(args[len(proc.Params):]))
		}
		vm.pushFrame(compileBody(proc.Body, child, isTail))
		return nil
	case ProcSpecialForm:
		return NewError(Type, "special form %s cannot be used as a value", proc.Name)
	default:
		return NewError(Internal, "unknown procedure kind")
	}
}

// compileBody evaluates every form in sequence, discarding all but the
// last value — the begin/lambda-body/letrec-body convention shared by
// spec.md §4.3's begin, lambda and letrec special forms.
func compileBody(body []Datum, env *Environment, isTail bool) []Instruction {
	if len(body) == 0 {
		return []Instruction{pushValue(EmptyList())}
	}
	instrs := make([]Instruction, 0, len(body)*2)
	for i, f := range body {
		last := i == len(body)-1
		instrs = append(instrs, evaluate(f, env, last && isTail))
		if !last {
			instrs = append(instrs, popValueInstr())
		}
	}
	return instrs
}
