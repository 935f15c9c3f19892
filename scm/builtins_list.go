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

// init_list registers the pair/list/vector primitives, grounded on
// the teacher's scm/list.go Declare-per-function layout (cons, car,
// cdr, list, append, map, filter...) adapted from the teacher's
// []Scmer-backed lists to this repository's *Pair cons cells.
func init_list(env *Environment) {
	DeclareTitle("Lists")

	Declare(env, &Declaration{
		"cons", "constructs a pair from two values",
		2, 2,
		[]DeclarationParameter{{"car", "any", ""}, {"cdr", "any", ""}}, "pair",
		func(vm *VM, a []Datum) (Datum, error) { return NewPair(a[0], a[1]), nil },
	})
	Declare(env, &Declaration{
		"car", "returns the first element of a pair",
		1, 1,
		[]DeclarationParameter{{"pair", "pair", ""}}, "any",
		func(vm *VM, a []Datum) (Datum, error) {
			if a[0].Kind != KindPair {
				return Datum{}, typeError("car", "pair", a[0])
			}
			return a[0].Pair.Car, nil
		},
	})
	Declare(env, &Declaration{
		"cdr", "returns the rest of a pair",
		1, 1,
		[]DeclarationParameter{{"pair", "pair", ""}}, "any",
		func(vm *VM, a []Datum) (Datum, error) {
			if a[0].Kind != KindPair {
				return Datum{}, typeError("cdr", "pair", a[0])
			}
			return a[0].Pair.Cdr, nil
		},
	})
	Declare(env, &Declaration{
		"list", "constructs a list from its arguments",
		0, -1,
		[]DeclarationParameter{{"value...", "any", ""}}, "list",
		func(vm *VM, a []Datum) (Datum, error) { return SliceToList(a), nil },
	})
	Declare(env, &Declaration{
		"length", "returns the length of a proper list",
		1, 1,
		[]DeclarationParameter{{"list", "list", ""}}, "integer",
		func(vm *VM, a []Datum) (Datum, error) {
			items, ok := ListToSlice(a[0])
			if !ok {
				return Datum{}, typeError("length", "list", a[0])
			}
			return NewInteger(int64(len(items))), nil
		},
	})
	Declare(env, &Declaration{
		"append", "concatenates lists; the final argument may be any value and is used as-is for the result's tail",
		0, -1,
		[]DeclarationParameter{{"list...", "list", ""}}, "list",
		func(vm *VM, a []Datum) (Datum, error) {
			if len(a) == 0 {
				return EmptyList(), nil
			}
			var all []Datum
			for _, l := range a[:len(a)-1] {
				items, ok := ListToSlice(l)
				if !ok {
					return Datum{}, typeError("append", "list", l)
				}
				all = append(all, items...)
			}
			return SliceToImproperList(all, a[len(a)-1]), nil
		},
	})
	Declare(env, &Declaration{
		"reverse", "reverses a proper list",
		1, 1,
		[]DeclarationParameter{{"list", "list", ""}}, "list",
		func(vm *VM, a []Datum) (Datum, error) {
			items, ok := ListToSlice(a[0])
			if !ok {
				return Datum{}, typeError("reverse", "list", a[0])
			}
			out := make([]Datum, len(items))
			for i, v := range items {
				out[len(items)-1-i] = v
			}
			return SliceToList(out), nil
		},
	})
	Declare(env, &Declaration{
		"list-ref", "returns the nth element (0-based) of a proper list",
		2, 2,
		[]DeclarationParameter{{"list", "list", ""}, {"index", "integer", ""}}, "any",
		func(vm *VM, a []Datum) (Datum, error) {
			items, ok := ListToSlice(a[0])
			if !ok {
				return Datum{}, typeError("list-ref", "list", a[0])
			}
			idx, err := asInteger("list-ref", a[1])
			if err != nil {
				return Datum{}, err
			}
			if idx < 0 || int(idx) >= len(items) {
				return Datum{}, NewError(DomainError, "list-ref: index %d out of range", idx)
			}
			return items[idx], nil
		},
	})
	Declare(env, &Declaration{
		"list?", "is the value a proper (possibly empty) list?",
		1, 1,
		[]DeclarationParameter{{"value", "any", ""}}, "boolean",
		func(vm *VM, a []Datum) (Datum, error) {
			_, ok := ListToSlice(a[0])
			return NewBoolean(ok), nil
		},
	})
	Declare(env, &Declaration{
		"map", "applies proc to each element of list(s) in lockstep, collecting results",
		2, -1,
		[]DeclarationParameter{{"proc", "procedure", ""}, {"list...", "list", ""}}, "list",
		func(vm *VM, a []Datum) (Datum, error) { return mapLists(vm, a[0], a[1:]) },
	})
	Declare(env, &Declaration{
		"filter", "keeps the elements of list for which pred returns a truthy value",
		2, 2,
		[]DeclarationParameter{{"pred", "procedure", ""}, {"list", "list", ""}}, "list",
		func(vm *VM, a []Datum) (Datum, error) {
			items, ok := ListToSlice(a[1])
			if !ok {
				return Datum{}, typeError("filter", "list", a[1])
			}
			var out []Datum
			for _, v := range items {
				r, err := vm.Apply(a[0], []Datum{v})
				if err != nil {
					return Datum{}, err
				}
				if IsTruthy(r) {
					out = append(out, v)
				}
			}
			return SliceToList(out), nil
		},
	})
	Declare(env, &Declaration{
		"reduce", "folds proc over list left-to-right starting from init",
		3, 3,
		[]DeclarationParameter{{"proc", "procedure", ""}, {"init", "any", ""}, {"list", "list", ""}}, "any",
		func(vm *VM, a []Datum) (Datum, error) {
			items, ok := ListToSlice(a[2])
			if !ok {
				return Datum{}, typeError("reduce", "list", a[2])
			}
			acc := a[1]
			for _, v := range items {
				r, err := vm.Apply(a[0], []Datum{acc, v})
				if err != nil {
					return Datum{}, err
				}
				acc = r
			}
			return acc, nil
		},
	})
	Declare(env, &Declaration{
		"apply", "calls proc with the given arguments, the last of which must be a list that is spliced in",
		2, -1,
		[]DeclarationParameter{{"proc", "procedure", ""}, {"value...", "any", ""}}, "any",
		func(vm *VM, a []Datum) (Datum, error) {
			tail, ok := ListToSlice(a[len(a)-1])
			if !ok {
				return Datum{}, typeError("apply", "list", a[len(a)-1])
			}
			args := append(append([]Datum{}, a[1:len(a)-1]...), tail...)
			return vm.Apply(a[0], args)
		},
	})
	Declare(env, &Declaration{
		"gensym", "returns a fresh, not-previously-seen symbol",
		0, 0,
		nil, "symbol",
		func(vm *VM, a []Datum) (Datum, error) { return NewSymbol(freshGensym()), nil },
	})

	DeclareTitle("Vectors")
	Declare(env, &Declaration{
		"vector", "constructs a vector from its arguments",
		0, -1,
		[]DeclarationParameter{{"value...", "any", ""}}, "vector",
		func(vm *VM, a []Datum) (Datum, error) {
			v := make([]Datum, len(a))
			copy(v, a)
			return NewVector(v), nil
		},
	})
	Declare(env, &Declaration{
		"vector?", "is the value a vector?",
		1, 1,
		[]DeclarationParameter{{"value", "any", ""}}, "boolean",
		func(vm *VM, a []Datum) (Datum, error) { return NewBoolean(a[0].Kind == KindVector), nil },
	})
	Declare(env, &Declaration{
		"vector-length", "returns the number of elements in a vector",
		1, 1,
		[]DeclarationParameter{{"vector", "vector", ""}}, "integer",
		func(vm *VM, a []Datum) (Datum, error) {
			if a[0].Kind != KindVector {
				return Datum{}, typeError("vector-length", "vector", a[0])
			}
			return NewInteger(int64(len(a[0].Vec))), nil
		},
	})
	Declare(env, &Declaration{
		"vector-ref", "returns the element at index (0-based) of a vector",
		2, 2,
		[]DeclarationParameter{{"vector", "vector", ""}, {"index", "integer", ""}}, "any",
		func(vm *VM, a []Datum) (Datum, error) {
			if a[0].Kind != KindVector {
				return Datum{}, typeError("vector-ref", "vector", a[0])
			}
			idx, err := asInteger("vector-ref", a[1])
			if err != nil {
				return Datum{}, err
			}
			if idx < 0 || int(idx) >= len(a[0].Vec) {
				return Datum{}, NewError(DomainError, "vector-ref: index %d out of range", idx)
			}
			return a[0].Vec[idx], nil
		},
	})
	Declare(env, &Declaration{
		"list->vector", "converts a proper list into a vector",
		1, 1,
		[]DeclarationParameter{{"list", "list", ""}}, "vector",
		func(vm *VM, a []Datum) (Datum, error) {
			items, ok := ListToSlice(a[0])
			if !ok {
				return Datum{}, typeError("list->vector", "list", a[0])
			}
			return NewVector(items), nil
		},
	})
	Declare(env, &Declaration{
		"vector->list", "converts a vector into a proper list",
		1, 1,
		[]DeclarationParameter{{"vector", "vector", ""}}, "list",
		func(vm *VM, a []Datum) (Datum, error) {
			if a[0].Kind != KindVector {
				return Datum{}, typeError("vector->list", "vector", a[0])
			}
			return SliceToList(a[0].Vec), nil
		},
	})
}

func mapLists(vm *VM, proc Datum, lists []Datum) (Datum, error) {
	cols := make([][]Datum, len(lists))
	n := -1
	for i, l := range lists {
		items, ok := ListToSlice(l)
		if !ok {
			return Datum{}, typeError("map", "list", l)
		}
		cols[i] = items
		if n == -1 || len(items) < n {
			n = len(items)
		}
	}
	out := make([]Datum, n)
	for i := 0; i < n; i++ {
		args := make([]Datum, len(cols))
		for c := range cols {
			args[c] = cols[c][i]
		}
		r, err := vm.Apply(proc, args)
		if err != nil {
			return Datum{}, err
		}
		out[i] = r
	}
	return SliceToList(out), nil
}

var gensymCounter uint64

func freshGensym() Symbol {
	gensymCounter++
	return Symbol(intToGensym(gensymCounter))
}

func intToGensym(n uint64) string {
	const digits = "0123456789"
	if n == 0 {
		return "g0"
	}
	buf := make([]byte, 0, 20)
	for n > 0 {
		buf = append(buf, digits[n%10])
		n /= 10
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return "g" + string(buf)
}
