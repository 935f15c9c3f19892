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

import "math"

func init_arith(env *Environment) {
	DeclareTitle("Arithmetic")

	Declare(env, &Declaration{
		"+", "adds numbers; errors on signed 64-bit overflow rather than wrapping",
		0, -1,
		[]DeclarationParameter{{"value...", "integer", "numbers to add"}}, "integer",
		func(vm *VM, a []Datum) (Datum, error) {
			var sum int64
			for _, v := range a {
				n, err := asInteger("+", v)
				if err != nil {
					return Datum{}, err
				}
				s, ok := addOverflow(sum, n)
				if !ok {
					return Datum{}, NewError(DomainError, "+: integer overflow")
				}
				sum = s
			}
			return NewInteger(sum), nil
		},
	})
	Declare(env, &Declaration{
		"-", "subtracts numbers; unary form negates",
		1, -1,
		[]DeclarationParameter{{"value...", "integer", "numbers to subtract"}}, "integer",
		func(vm *VM, a []Datum) (Datum, error) {
			first, err := asInteger("-", a[0])
			if err != nil {
				return Datum{}, err
			}
			if len(a) == 1 {
				if first == math.MinInt64 {
					return Datum{}, NewError(DomainError, "-: integer overflow")
				}
				return NewInteger(-first), nil
			}
			acc := first
			for _, v := range a[1:] {
				n, err := asInteger("-", v)
				if err != nil {
					return Datum{}, err
				}
				r, ok := subOverflow(acc, n)
				if !ok {
					return Datum{}, NewError(DomainError, "-: integer overflow")
				}
				acc = r
			}
			return NewInteger(acc), nil
		},
	})
	Declare(env, &Declaration{
		"*", "multiplies numbers; errors on signed 64-bit overflow",
		0, -1,
		[]DeclarationParameter{{"value...", "integer", "numbers to multiply"}}, "integer",
		func(vm *VM, a []Datum) (Datum, error) {
			var prod int64 = 1
			for _, v := range a {
				n, err := asInteger("*", v)
				if err != nil {
					return Datum{}, err
				}
				p, ok := mulOverflow(prod, n)
				if !ok {
					return Datum{}, NewError(DomainError, "*: integer overflow")
				}
				prod = p
			}
			return NewInteger(prod), nil
		},
	})
	Declare(env, &Declaration{
		"/", "integer-divides numbers; division by zero is a domain error",
		1, -1,
		[]DeclarationParameter{{"value...", "integer", "numbers to divide"}}, "integer",
		func(vm *VM, a []Datum) (Datum, error) {
			first, err := asInteger("/", a[0])
			if err != nil {
				return Datum{}, err
			}
			if len(a) == 1 {
				if first == 0 {
					return Datum{}, NewError(DomainError, "/: division by zero")
				}
				return NewInteger(1 / first), nil
			}
			acc := first
			for _, v := range a[1:] {
				n, err := asInteger("/", v)
				if err != nil {
					return Datum{}, err
				}
				if n == 0 {
					return Datum{}, NewError(DomainError, "/: division by zero")
				}
				if acc == math.MinInt64 && n == -1 {
					return Datum{}, NewError(DomainError, "/: integer overflow")
				}
				acc /= n
			}
			return NewInteger(acc), nil
		},
	})

	declareComparison(env, "=", func(a, b int64) bool { return a == b })
	declareComparison(env, "<", func(a, b int64) bool { return a < b })
	declareComparison(env, ">", func(a, b int64) bool { return a > b })
	declareComparison(env, "<=", func(a, b int64) bool { return a <= b })
	declareComparison(env, ">=", func(a, b int64) bool { return a >= b })

	Declare(env, &Declaration{
		"abs", "absolute value of an integer",
		1, 1,
		[]DeclarationParameter{{"value", "integer", "input"}}, "integer",
		func(vm *VM, a []Datum) (Datum, error) {
			n, err := asInteger("abs", a[0])
			if err != nil {
				return Datum{}, err
			}
			if n == math.MinInt64 {
				return Datum{}, NewError(DomainError, "abs: integer overflow")
			}
			if n < 0 {
				n = -n
			}
			return NewInteger(n), nil
		},
	})
	Declare(env, &Declaration{
		"min", "smallest of the given integers",
		1, -1,
		[]DeclarationParameter{{"value...", "integer", "inputs"}}, "integer",
		func(vm *VM, a []Datum) (Datum, error) { return foldExtreme("min", a, func(x, y int64) bool { return x < y }) },
	})
	Declare(env, &Declaration{
		"max", "largest of the given integers",
		1, -1,
		[]DeclarationParameter{{"value...", "integer", "inputs"}}, "integer",
		func(vm *VM, a []Datum) (Datum, error) { return foldExtreme("max", a, func(x, y int64) bool { return x > y }) },
	})
	Declare(env, &Declaration{
		"quotient", "truncating integer division",
		2, 2,
		[]DeclarationParameter{{"a", "integer", ""}, {"b", "integer", ""}}, "integer",
		func(vm *VM, a []Datum) (Datum, error) {
			x, y, err := asIntegerPair("quotient", a)
			if err != nil {
				return Datum{}, err
			}
			if y == 0 {
				return Datum{}, NewError(DomainError, "quotient: division by zero")
			}
			if x == math.MinInt64 && y == -1 {
				return Datum{}, NewError(DomainError, "quotient: integer overflow")
			}
			return NewInteger(x / y), nil
		},
	})
	Declare(env, &Declaration{
		"remainder", "remainder of truncating integer division, sign follows the dividend",
		2, 2,
		[]DeclarationParameter{{"a", "integer", ""}, {"b", "integer", ""}}, "integer",
		func(vm *VM, a []Datum) (Datum, error) {
			x, y, err := asIntegerPair("remainder", a)
			if err != nil {
				return Datum{}, err
			}
			if y == 0 {
				return Datum{}, NewError(DomainError, "remainder: division by zero")
			}
			return NewInteger(x % y), nil
		},
	})
	Declare(env, &Declaration{
		"modulo", "modulo of flooring integer division, sign follows the divisor",
		2, 2,
		[]DeclarationParameter{{"a", "integer", ""}, {"b", "integer", ""}}, "integer",
		func(vm *VM, a []Datum) (Datum, error) {
			x, y, err := asIntegerPair("modulo", a)
			if err != nil {
				return Datum{}, err
			}
			if y == 0 {
				return Datum{}, NewError(DomainError, "modulo: division by zero")
			}
			m := x % y
			if m != 0 && (m < 0) != (y < 0) {
				m += y
			}
			return NewInteger(m), nil
		},
	})
}

func declareComparison(env *Environment, name string, cmp func(a, b int64) bool) {
	Declare(env, &Declaration{
		name, name + " compares a sequence of integers pairwise",
		1, -1,
		[]DeclarationParameter{{"value...", "integer", "inputs"}}, "boolean",
		func(vm *VM, a []Datum) (Datum, error) {
			prev, err := asInteger(name, a[0])
			if err != nil {
				return Datum{}, err
			}
			for _, v := range a[1:] {
				n, err := asInteger(name, v)
				if err != nil {
					return Datum{}, err
				}
				if !cmp(prev, n) {
					return NewBoolean(false), nil
				}
				prev = n
			}
			return NewBoolean(true), nil
		},
	})
}

func foldExtreme(name string, a []Datum, better func(x, y int64) bool) (Datum, error) {
	best, err := asInteger(name, a[0])
	if err != nil {
		return Datum{}, err
	}
	for _, v := range a[1:] {
		n, err := asInteger(name, v)
		if err != nil {
			return Datum{}, err
		}
		if better(n, best) {
			best = n
		}
	}
	return NewInteger(best), nil
}

func asInteger(ctx string, d Datum) (int64, error) {
	if d.Kind != KindInteger {
		return 0, typeError(ctx, "integer", d)
	}
	return d.Int, nil
}

func asIntegerPair(ctx string, a []Datum) (int64, int64, error) {
	x, err := asInteger(ctx, a[0])
	if err != nil {
		return 0, 0, err
	}
	y, err := asInteger(ctx, a[1])
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func addOverflow(a, b int64) (int64, bool) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, false
	}
	return s, true
}

func subOverflow(a, b int64) (int64, bool) {
	if b == math.MinInt64 {
		if a >= 0 {
			return 0, false
		}
		return a - b, true
	}
	return addOverflow(a, -b)
}

func mulOverflow(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a == math.MinInt64 && b == -1 {
		return 0, false
	}
	p := a * b
	if p/b != a {
		return 0, false
	}
	return p, true
}
