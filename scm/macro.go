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

const ellipsisName = Symbol("...")

// bindings holds what a pattern match captured: depth-0 pattern
// variables map straight to a Datum, ellipsis-depth-1 variables map to
// the list of per-repetition captures. Nested (depth >= 2) ellipsis
// captures have no representation here and are not supported.
type bindings struct {
	scalar   map[Symbol]Datum
	ellipsis map[Symbol][]Datum
}

func newBindings() *bindings {
	return &bindings{scalar: make(map[Symbol]Datum), ellipsis: make(map[Symbol][]Datum)}
}

// CompileSyntaxRules parses a (syntax-rules (lit ...) (pattern template) ...)
// Datum into a *SyntaxRule, grounded on original_source/src/builtin.rs's
// verify_pattern / verify_template pass. name is the identifier
// define-syntax is binding the transformer to: it is exempted from both
// the free-env snapshot and hygienic renaming so a macro that expands to
// a call of itself (my-or's recursive case, say) keeps calling itself
// rather than an unreachable renamed copy.
func CompileSyntaxRules(form Datum, name Symbol, defEnv *Environment) (*SyntaxRule, error) {
	items, ok := ListToSlice(form)
	if !ok || len(items) < 1 || items[0].Kind != KindSymbol || items[0].Sym != "syntax-rules" {
		return nil, NewError(Syntax, "define-syntax expects a syntax-rules transformer")
	}
	if len(items) < 2 {
		return nil, NewError(Syntax, "syntax-rules expects a literals list")
	}
	litItems, ok := ListToSlice(items[1])
	if !ok {
		return nil, NewError(Syntax, "syntax-rules literals must be a list")
	}
	literals := make(map[Symbol]bool, len(litItems))
	for _, l := range litItems {
		if l.Kind != KindSymbol {
			return nil, NewError(Syntax, "syntax-rules literal must be a symbol")
		}
		literals[l.Sym] = true
	}
	rule := &SyntaxRule{Name: name, Literals: literals, CapturedFreeEnv: make(map[Symbol]Datum)}
	for _, clauseDatum := range items[2:] {
		clause, ok := ListToSlice(clauseDatum)
		if !ok || len(clause) != 2 {
			return nil, NewError(Syntax, "syntax-rules clause must be (pattern template)")
		}
		if err := verifyPattern(clause[0], literals); err != nil {
			return nil, err
		}
		rule.Clauses = append(rule.Clauses, SyntaxRuleClause{Pattern: clause[0], Template: clause[1]})

		patternVars := make(map[Symbol]bool)
		for _, v := range collectPatternVars(dropPatternHead(clause[0]), literals) {
			patternVars[v] = true
		}
		for _, sym := range collectFreeTemplateSymbols(clause[1], patternVars, literals) {
			if sym == name {
				continue
			}
			if _, already := rule.CapturedFreeEnv[sym]; already {
				continue
			}
			if v, err := defEnv.Get(sym); err == nil {
				rule.CapturedFreeEnv[sym] = v
			}
		}
	}
	return rule, nil
}

// collectFreeTemplateSymbols walks template and returns every symbol
// that is neither a pattern variable nor a literal nor "..." itself —
// the identifiers a macro definition introduces or relies on from its
// own defining scope, as opposed to ones substituted from the use site.
func collectFreeTemplateSymbols(template Datum, patternVars map[Symbol]bool, literals map[Symbol]bool) []Symbol {
	var out []Symbol
	seen := make(map[Symbol]bool)
	var walk func(Datum)
	walk = func(d Datum) {
		switch d.Kind {
		case KindSymbol:
			if d.Sym == "_" || d.Sym == ellipsisName || literals[d.Sym] || patternVars[d.Sym] || seen[d.Sym] {
				return
			}
			seen[d.Sym] = true
			out = append(out, d.Sym)
		case KindPair:
			walk(d.Pair.Car)
			walk(d.Pair.Cdr)
		case KindVector:
			for _, el := range d.Vec {
				walk(el)
			}
		}
	}
	walk(template)
	return out
}

// verifyPattern rejects duplicate pattern variables and ellipses with
// nothing preceding them, the two checks original_source performs at
// define-syntax time rather than deferring to every use site.
func verifyPattern(pattern Datum, literals map[Symbol]bool) error {
	seen := make(map[Symbol]bool)
	return verifyPatternHelper(pattern, literals, seen)
}

func verifyPatternHelper(pattern Datum, literals map[Symbol]bool, seen map[Symbol]bool) error {
	switch pattern.Kind {
	case KindSymbol:
		if pattern.Sym == ellipsisName {
			return NewError(Syntax, "ellipsis must follow a sub-pattern")
		}
		if pattern.Sym == "_" || literals[pattern.Sym] {
			return nil
		}
		if seen[pattern.Sym] {
			return NewError(Syntax, "duplicate pattern variable: %s", pattern.Sym)
		}
		seen[pattern.Sym] = true
		return nil
	case KindPair:
		if pattern.Pair.Cdr.Kind == KindPair && pattern.Pair.Cdr.Pair.Car.Kind == KindSymbol &&
			pattern.Pair.Cdr.Pair.Car.Sym == ellipsisName {
			if err := verifyPatternHelper(pattern.Pair.Car, literals, seen); err != nil {
				return err
			}
			return verifyPatternHelper(pattern.Pair.Cdr.Pair.Cdr, literals, seen)
		}
		if err := verifyPatternHelper(pattern.Pair.Car, literals, seen); err != nil {
			return err
		}
		return verifyPatternHelper(pattern.Pair.Cdr, literals, seen)
	case KindVector:
		for _, el := range pattern.Vec {
			if err := verifyPatternHelper(el, literals, seen); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

// ExpandMacro matches use against the first clause of rule whose
// pattern fits (skipping the clause's own macro-name placeholder in
// head position, which syntax-rules ignores by convention), hygienically
// renames the free identifiers the template introduces, and returns the
// expanded Datum together with the fresh environment it must be
// evaluated in: a child of callerEnv pre-populated with the renamed
// captured free-env entries, per the "Execution after expansion" rule.
// Returns a MatchFailure error if no clause matches.
func ExpandMacro(rule *SyntaxRule, use Datum, callerEnv *Environment) (Datum, *Environment, error) {
	for _, clause := range rule.Clauses {
		binds := newBindings()
		pattern := dropPatternHead(clause.Pattern)
		input := dropPatternHead(use)
		if matchPattern(pattern, input, rule.Literals, binds) {
			renames := make(map[Symbol]Symbol)
			expanded := applyTemplate(clause.Template, binds, renames, rule.Literals, rule.Name, callerEnv)
			evalEnv := callerEnv.Child()
			for old, renamed := range renames {
				if v, ok := rule.CapturedFreeEnv[old]; ok {
					evalEnv.Define(renamed, v)
				}
			}
			return expanded, evalEnv, nil
		}
	}
	return Datum{}, nil, NewError(MatchFailure, "no syntax-rules clause matched")
}

// dropPatternHead ignores the macro keyword in head position: both the
// pattern "(_ a b)" and the use "(swap! x y)" conventionally start
// with a placeholder for the macro's own name, which isn't matched.
func dropPatternHead(d Datum) Datum {
	if d.Kind == KindPair {
		return NewPair(NewSymbol("_"), d.Pair.Cdr)
	}
	return d
}

func matchPattern(pattern, input Datum, literals map[Symbol]bool, binds *bindings) bool {
	switch pattern.Kind {
	case KindSymbol:
		if pattern.Sym == "_" {
			return true
		}
		if literals[pattern.Sym] {
			return input.Kind == KindSymbol && input.Sym == pattern.Sym
		}
		binds.scalar[pattern.Sym] = input
		return true
	case KindEmptyList:
		return input.Kind == KindEmptyList
	case KindPair:
		if pattern.Pair.Cdr.Kind == KindPair && pattern.Pair.Cdr.Pair.Car.Kind == KindSymbol &&
			pattern.Pair.Cdr.Pair.Car.Sym == ellipsisName {
			return matchEllipsis(pattern.Pair.Car, pattern.Pair.Cdr.Pair.Cdr, input, literals, binds)
		}
		if input.Kind != KindPair {
			return false
		}
		return matchPattern(pattern.Pair.Car, input.Pair.Car, literals, binds) &&
			matchPattern(pattern.Pair.Cdr, input.Pair.Cdr, literals, binds)
	case KindVector:
		if input.Kind != KindVector || len(input.Vec) != len(pattern.Vec) {
			return false
		}
		for i := range pattern.Vec {
			if !matchPattern(pattern.Vec[i], input.Vec[i], literals, binds) {
				return false
			}
		}
		return true
	default:
		return Equal(pattern, input)
	}
}

// matchEllipsis implements the non-backtracking repetition match: the
// repeated sub-pattern takes every input item except the last
// minPatternLength(tailPattern) items, which are left for the tail
// pattern. It never tries another split, so if any item taken by the
// repetition fails the sub-pattern, the whole match fails.
func matchEllipsis(subPattern, tailPattern, input Datum, literals map[Symbol]bool, binds *bindings) bool {
	items, tail := collectImproper(input)
	tailMin := minPatternLength(tailPattern)
	if len(items) < tailMin {
		return false
	}
	repeatCount := len(items) - tailMin

	vars := collectPatternVars(subPattern, literals)
	for _, v := range vars {
		if _, exists := binds.ellipsis[v]; !exists {
			binds.ellipsis[v] = []Datum{}
		}
	}

	for i := 0; i < repeatCount; i++ {
		sub := newBindings()
		if !matchPattern(subPattern, items[i], literals, sub) {
			return false
		}
		for _, v := range vars {
			binds.ellipsis[v] = append(binds.ellipsis[v], sub.scalar[v])
		}
	}

	rest := SliceToImproperList(items[repeatCount:], tail)
	return matchPattern(tailPattern, rest, literals, binds)
}

// collectImproper flattens a (possibly dotted) list into its elements
// and final tail (EmptyList for a proper list).
func collectImproper(d Datum) (items []Datum, tail Datum) {
	for d.Kind == KindPair {
		items = append(items, d.Pair.Car)
		d = d.Pair.Cdr
	}
	return items, d
}

func minPatternLength(d Datum) int {
	n := 0
	for d.Kind == KindPair {
		n++
		d = d.Pair.Cdr
	}
	return n
}

func collectPatternVars(pattern Datum, literals map[Symbol]bool) []Symbol {
	var out []Symbol
	seen := make(map[Symbol]bool)
	var walk func(Datum)
	walk = func(d Datum) {
		switch d.Kind {
		case KindSymbol:
			if d.Sym == "_" || d.Sym == ellipsisName || literals[d.Sym] || seen[d.Sym] {
				return
			}
			seen[d.Sym] = true
			out = append(out, d.Sym)
		case KindPair:
			walk(d.Pair.Car)
			walk(d.Pair.Cdr)
		case KindVector:
			for _, el := range d.Vec {
				walk(el)
			}
		}
	}
	walk(pattern)
	return out
}

func applyTemplate(template Datum, binds *bindings, renames map[Symbol]Symbol, literals map[Symbol]bool, macroName Symbol, callerEnv *Environment) Datum {
	switch template.Kind {
	case KindSymbol:
		if v, ok := binds.scalar[template.Sym]; ok {
			return v
		}
		if _, ok := binds.ellipsis[template.Sym]; ok {
			// referenced outside its ellipsis context: defensively
			// fall through to hygiene renaming, same as an unbound
			// template identifier.
		}
		if literals[template.Sym] || template.Sym == macroName {
			return template
		}
		return renameTemplateSymbol(template.Sym, renames, callerEnv)
	case KindPair:
		if template.Pair.Cdr.Kind == KindPair && template.Pair.Cdr.Pair.Car.Kind == KindSymbol &&
			template.Pair.Cdr.Pair.Car.Sym == ellipsisName {
			sub := template.Pair.Car
			after := template.Pair.Cdr.Pair.Cdr
			vars := ellipsisVarsUsed(sub, binds)
			n := -1
			for _, v := range vars {
				l := len(binds.ellipsis[v])
				if n == -1 || l < n {
					n = l
				}
			}
			if n == -1 {
				n = 0
			}
			items := make([]Datum, n)
			for i := 0; i < n; i++ {
				narrowed := narrowBindings(binds, vars, i)
				items[i] = applyTemplate(sub, narrowed, renames, literals, macroName, callerEnv)
			}
			rest := applyTemplate(after, binds, renames, literals, macroName, callerEnv)
			return SliceToImproperList(items, rest)
		}
		car := applyTemplate(template.Pair.Car, binds, renames, literals, macroName, callerEnv)
		cdr := applyTemplate(template.Pair.Cdr, binds, renames, literals, macroName, callerEnv)
		return NewPair(car, cdr)
	case KindVector:
		out := make([]Datum, len(template.Vec))
		for i, el := range template.Vec {
			out[i] = applyTemplate(el, binds, renames, literals, macroName, callerEnv)
		}
		return NewVector(out)
	default:
		return template
	}
}

func ellipsisVarsUsed(template Datum, binds *bindings) []Symbol {
	var out []Symbol
	seen := make(map[Symbol]bool)
	var walk func(Datum)
	walk = func(d Datum) {
		switch d.Kind {
		case KindSymbol:
			if _, ok := binds.ellipsis[d.Sym]; ok && !seen[d.Sym] {
				seen[d.Sym] = true
				out = append(out, d.Sym)
			}
		case KindPair:
			walk(d.Pair.Car)
			walk(d.Pair.Cdr)
		case KindVector:
			for _, el := range d.Vec {
				walk(el)
			}
		}
	}
	walk(template)
	return out
}

func narrowBindings(binds *bindings, vars []Symbol, index int) *bindings {
	narrowed := newBindings()
	for k, v := range binds.scalar {
		narrowed.scalar[k] = v
	}
	for k, v := range binds.ellipsis {
		narrowed.ellipsis[k] = v
	}
	for _, v := range vars {
		list := binds.ellipsis[v]
		if index < len(list) {
			narrowed.scalar[v] = list[index]
		}
	}
	return narrowed
}

// renameTemplateSymbol is the hygiene step: a free template identifier
// is only safe to use verbatim if it is NOT currently bound in the
// caller's environment — an unbound name can't shadow or be shadowed.
// One that is currently bound there is renamed to
// "<name>_hygienic_<k>", k being the smallest positive integer that
// makes the new name unbound in the caller's environment too, so the
// rename can't itself collide with something else live at the call
// site. The same symbol renames to the same fresh name within one
// expansion (renames is scoped per ExpandMacro call), and an
// already-decided mapping (including the identity mapping for a
// symbol that needed no rename) is reused rather than recomputed.
func renameTemplateSymbol(sym Symbol, renames map[Symbol]Symbol, callerEnv *Environment) Datum {
	if r, ok := renames[sym]; ok {
		return NewSymbol(r)
	}
	final := sym
	if callerEnv != nil {
		if _, err := callerEnv.Get(sym); err == nil {
			for k := 1; ; k++ {
				candidate := Symbol(fmt.Sprintf("%s_hygienic_%d", sym, k))
				if _, err := callerEnv.Get(candidate); err != nil {
					final = candidate
					break
				}
			}
		}
	}
	renames[sym] = final
	return NewSymbol(final)
}
