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

// init_equality registers eq?/eqv?/equal?, grounded on compare.go.
func init_equality(env *Environment) {
	DeclareTitle("Equality")

	Declare(env, &Declaration{
		"eq?", "identity comparison (same as eqv? in this implementation)",
		2, 2,
		[]DeclarationParameter{{"a", "any", ""}, {"b", "any", ""}}, "boolean",
		func(vm *VM, a []Datum) (Datum, error) { return NewBoolean(Eqv(a[0], a[1])), nil },
	})
	Declare(env, &Declaration{
		"eqv?", "identity comparison; value comparison for simple scalars",
		2, 2,
		[]DeclarationParameter{{"a", "any", ""}, {"b", "any", ""}}, "boolean",
		func(vm *VM, a []Datum) (Datum, error) { return NewBoolean(Eqv(a[0], a[1])), nil },
	})
	Declare(env, &Declaration{
		"equal?", "structural deep comparison",
		2, 2,
		[]DeclarationParameter{{"a", "any", ""}, {"b", "any", ""}}, "boolean",
		func(vm *VM, a []Datum) (Datum, error) { return NewBoolean(Equal(a[0], a[1])), nil },
	})
	Declare(env, &Declaration{
		"not", "logical negation; anything but #f is truthy",
		1, 1,
		[]DeclarationParameter{{"value", "any", ""}}, "boolean",
		func(vm *VM, a []Datum) (Datum, error) { return NewBoolean(!IsTruthy(a[0])), nil },
	})
}

// init_pred registers type predicates, grounded on the teacher's
// scm/declare.go predicate-per-Kind style.
func init_pred(env *Environment) {
	DeclareTitle("Type predicates")

	declarePredicate(env, "boolean?", KindBoolean)
	declarePredicate(env, "integer?", KindInteger)
	declarePredicate(env, "number?", KindInteger)
	declarePredicate(env, "char?", KindCharacter)
	declarePredicate(env, "string?", KindString)
	declarePredicate(env, "symbol?", KindSymbol)
	declarePredicate(env, "procedure?", KindProcedure)

	Declare(env, &Declaration{
		"null?", "is the value the empty list?",
		1, 1,
		[]DeclarationParameter{{"value", "any", ""}}, "boolean",
		func(vm *VM, a []Datum) (Datum, error) { return NewBoolean(a[0].Kind == KindEmptyList), nil },
	})
	Declare(env, &Declaration{
		"pair?", "is the value a pair?",
		1, 1,
		[]DeclarationParameter{{"value", "any", ""}}, "boolean",
		func(vm *VM, a []Datum) (Datum, error) { return NewBoolean(a[0].Kind == KindPair), nil },
	})
}

func declarePredicate(env *Environment, name string, kind Kind) {
	Declare(env, &Declaration{
		name, "is the value of this type?",
		1, 1,
		[]DeclarationParameter{{"value", "any", ""}}, "boolean",
		func(vm *VM, a []Datum) (Datum, error) { return NewBoolean(a[0].Kind == kind), nil },
	})
}
