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

// Kind tags the variant a Datum currently holds.
type Kind uint8

const (
	KindBoolean Kind = iota
	KindInteger
	KindCharacter
	KindSymbol
	KindString
	KindEmptyList
	KindPair
	KindVector
	KindProcedure
	KindSyntaxRule
	KindExt
)

// Symbol is an interned-by-value Scheme identifier.
type Symbol string

// Pair is a mutable cons cell. set-car!/set-cdr! are not part of this
// core (spec scope is read-only list structure after construction), so
// the fields are exported for the builtins that build lists but are not
// mutated once a Datum has been handed to user code.
type Pair struct {
	Car Datum
	Cdr Datum
}

// ProcKind distinguishes the three procedure shapes the data model
// requires: built-in Go functions, special-form compilers and
// user-defined closures produced by lambda/letrec.
type ProcKind uint8

const (
	ProcNative ProcKind = iota
	ProcSpecialForm
	ProcScheme
)

// NativeFn is a builtin primitive. It receives already-evaluated
// arguments and returns a result or an error (see errors.go). The VM
// handle lets higher-order builtins (map, filter, apply) call back
// into Scheme procedures without a second evaluator.
type NativeFn func(vm *VM, args []Datum) (Datum, error)

// SpecialFormFn compiles an unevaluated operand list into a spliced
// instruction sequence rather than producing a value directly; see
// vm.go for how the VM consumes the result.
type SpecialFormFn func(vm *VM, operands []Datum, env *Environment, isTail bool) ([]Instruction, error)

// Procedure is the tagged union of the three Datum-level callable
// shapes described by the data model.
type Procedure struct {
	Kind ProcKind

	Name   string // native / special form display name
	Native NativeFn
	Form   SpecialFormFn

	// ProcScheme fields
	Params   []Symbol
	Rest     Symbol // "" if no rest parameter
	HasRest  bool
	Body     []Datum
	Closure  *Environment
}

// SyntaxRule is a single compiled syntax-rules transformer: a pattern
// plus the literal identifiers it treats opaquely and the rule clauses
// (pattern/template pairs) used by the macro engine in macro.go.
// CapturedFreeEnv is a snapshot, taken at define-syntax time, of every
// free template identifier (a template symbol that is not a pattern
// variable) that was bound in the defining environment — the macro
// carries these values by copy so that template-introduced references
// to them resolve at the definition site, not the call site.
type SyntaxRule struct {
	Name            Symbol
	Literals        map[Symbol]bool
	Clauses         []SyntaxRuleClause
	CapturedFreeEnv map[Symbol]Datum
}

type SyntaxRuleClause struct {
	Pattern  Datum
	Template Datum
}

// Ext is the escape hatch for host-level extension values that ride
// inside the Datum union without being one of the core variants —
// the hash-table carrier (hashtable.go) is the only user in this
// repository, matching spec.md §3's Ext variant.
type Ext struct {
	Tag   string
	Value interface{}
}

// Datum is the tagged union at the center of the data model. Only the
// field matching Kind is meaningful; the rest are zero values.
type Datum struct {
	Kind Kind

	Bool  bool
	Int   int64
	Char  rune
	Sym   Symbol
	Str   string
	Pair  *Pair
	Vec   []Datum
	Proc  *Procedure
	Macro *SyntaxRule
	Ext   *Ext
}

func NewBoolean(b bool) Datum   { return Datum{Kind: KindBoolean, Bool: b} }
func NewInteger(i int64) Datum  { return Datum{Kind: KindInteger, Int: i} }
func NewCharacter(c rune) Datum { return Datum{Kind: KindCharacter, Char: c} }
func NewSymbol(s Symbol) Datum  { return Datum{Kind: KindSymbol, Sym: s} }
func NewString(s string) Datum  { return Datum{Kind: KindString, Str: s} }

var theEmptyList = Datum{Kind: KindEmptyList}

func EmptyList() Datum { return theEmptyList }

func NewPair(car, cdr Datum) Datum {
	return Datum{Kind: KindPair, Pair: &Pair{Car: car, Cdr: cdr}}
}

func NewVector(items []Datum) Datum {
	return Datum{Kind: KindVector, Vec: items}
}

func NewProcedure(p *Procedure) Datum {
	return Datum{Kind: KindProcedure, Proc: p}
}

func NewSyntaxRule(s *SyntaxRule) Datum {
	return Datum{Kind: KindSyntaxRule, Macro: s}
}

func NewExt(tag string, value interface{}) Datum {
	return Datum{Kind: KindExt, Ext: &Ext{Tag: tag, Value: value}}
}

// IsTruthy implements the single-falsy-value rule: everything except
// the boolean #f counts as true, including 0, "", and the empty list.
func IsTruthy(d Datum) bool {
	return !(d.Kind == KindBoolean && !d.Bool)
}

// ListToSlice walks a proper list and returns its elements. ok is
// false if the list is improper (dotted) or not a list at all.
func ListToSlice(d Datum) (items []Datum, ok bool) {
	for d.Kind == KindPair {
		items = append(items, d.Pair.Car)
		d = d.Pair.Cdr
	}
	if d.Kind != KindEmptyList {
		return nil, false
	}
	return items, true
}

// SliceToList builds a proper list from items, terminated by the
// empty list.
func SliceToList(items []Datum) Datum {
	result := EmptyList()
	for i := len(items) - 1; i >= 0; i-- {
		result = NewPair(items[i], result)
	}
	return result
}

// SliceToImproperList builds a list terminated by tail instead of the
// empty list, used by append's last-argument semantics (builtins_list.go).
func SliceToImproperList(items []Datum, tail Datum) Datum {
	result := tail
	for i := len(items) - 1; i >= 0; i-- {
		result = NewPair(items[i], result)
	}
	return result
}
