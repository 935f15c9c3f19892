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

// Package reader turns source text into scm.Datum trees using a
// packrat parser combinator, grounded on the teacher's scm/packrat.go
// (combinator construction: NewAndParser/NewOrParser/NewKleeneParser/
// NewMaybeParser/NewRegexParser/NewAtomParser) and scm/parser.go
// (grammar shape: atoms, quote sugar, C-style and line comments), but
// expressed as a fixed Scheme-syntax grammar rather than memcp's
// runtime-definable (parser ...) DSL — this repository's reader reads
// one fixed language, it doesn't need to let user code build parsers.
package reader

import (
	"fmt"
	"strconv"

	packrat "github.com/launix-de/go-packrat/v2"

	"github.com/launix-de/goscm/scm"
)

var (
	grammar    packrat.Parser
	grammarSet bool
)

// buildGrammar wires the combinator tree once; list, vector and quoted
// are defined in terms of expr through the shared exprRef indirection since the
// grammar is recursive (a list contains expressions, an expression may
// be a list) and go-packrat parsers are plain values, not closures over
// themselves.
type exprRef struct {
	inner packrat.Parser
}

func (r *exprRef) Match(s *packrat.Scanner) *packrat.Node {
	return r.inner.Match(s)
}

func buildGrammar() packrat.Parser {
	expr := &exprRef{}

	boolTrue := packrat.NewAtomParser("#t", false, true)
	boolFalse := packrat.NewAtomParser("#f", false, true)
	boolean := packrat.NewOrParser(boolTrue, boolFalse)

	integer := packrat.NewRegexParser(`-?[0-9]+`, false, true)
	character := packrat.NewRegexParser(`#\\[A-Za-z0-9]+`, false, true)
	str := packrat.NewRegexParser(`"(\\.|[^"\\])*"`, false, true)
	symbol := packrat.NewRegexParser(`(?:[^\s()'"#.]|\.[^\s()'])[^\s()']*`, false, true)

	lparen := packrat.NewAtomParser("(", false, true)
	rparen := packrat.NewAtomParser(")", false, true)
	vecOpen := packrat.NewAtomParser("#(", false, true)
	quote := packrat.NewAtomParser("'", false, true)
	dot := packrat.NewAtomParser(".", false, true)

	list := packrat.NewAndParser(lparen, packrat.NewKleeneParser(expr, packrat.NewEmptyParser()),
		packrat.NewMaybeParser(packrat.NewAndParser(dot, expr)), rparen)
	vector := packrat.NewAndParser(vecOpen, packrat.NewKleeneParser(expr, packrat.NewEmptyParser()), rparen)
	quoted := packrat.NewAndParser(quote, expr)

	atom := packrat.NewOrParser(boolean, character, str, integer, symbol)

	expr.inner = packrat.NewOrParser(atom, list, vector, quoted)
	return expr
}

func grammarParser() packrat.Parser {
	if !grammarSet {
		grammar = buildGrammar()
		grammarSet = true
	}
	return grammar
}

// ReadAll parses every top-level form in text and returns the Datums in
// order. source names the input for error messages (a file path, or
// "stdin"/"repl" for interactive input).
func ReadAll(source, text string) ([]scm.Datum, error) {
	scanner := packrat.NewScanner(text, packrat.SkipWhitespaceAndCommentsRegex)
	var forms []scm.Datum
	top := packrat.NewKleeneParser(grammarParser(), packrat.NewEmptyParser())
	node, err := packrat.Parse(top, scanner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	for _, child := range node.Children {
		d, err := extract(child)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		forms = append(forms, d)
	}
	return forms, nil
}

// extract walks a parsed Node tree into a scm.Datum, the same role the
// teacher's ExtractScmer plays for its Scmer tree in scm/packrat.go.
func extract(n *packrat.Node) (scm.Datum, error) {
	switch p := n.Parser.(type) {
	case *packrat.OrParser:
		return extract(n.Children[0])
	case *packrat.AndParser:
		return extractSeq(n)
	case *exprRef:
		return extract(n.Children[0])
	default:
		_ = p
		return extractAtom(n.Matched)
	}
}

// extractSeq distinguishes the three AndParser shapes the grammar uses
// (list, vector, quote) purely from their token content, since the
// grammar builder above doesn't tag AndParser nodes individually.
func extractSeq(n *packrat.Node) (scm.Datum, error) {
	if len(n.Children) == 2 && n.Children[0].Matched == "'" {
		quoted, err := extract(n.Children[1])
		if err != nil {
			return scm.Datum{}, err
		}
		return scm.NewPair(scm.NewSymbol("quote"), scm.NewPair(quoted, scm.EmptyList())), nil
	}
	if n.Children[0].Matched == "#(" {
		items, err := extractKleene(n.Children[1])
		if err != nil {
			return scm.Datum{}, err
		}
		return scm.NewVector(items), nil
	}
	// list: "(" exprs maybeDot ")"
	items, err := extractKleene(n.Children[1])
	if err != nil {
		return scm.Datum{}, err
	}
	tail := scm.EmptyList()
	if maybe := n.Children[2]; len(maybe.Children) > 0 {
		dotted, err := extract(maybe.Children[0].Children[1])
		if err != nil {
			return scm.Datum{}, err
		}
		tail = dotted
	}
	return scm.SliceToImproperList(items, tail), nil
}

func extractKleene(n *packrat.Node) ([]scm.Datum, error) {
	items := make([]scm.Datum, 0, len(n.Children))
	for _, c := range n.Children {
		d, err := extract(c)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, nil
}

func extractAtom(matched string) (scm.Datum, error) {
	switch {
	case matched == "#t":
		return scm.NewBoolean(true), nil
	case matched == "#f":
		return scm.NewBoolean(false), nil
	case len(matched) > 2 && matched[:2] == `#\`:
		return extractCharacter(matched[2:])
	case len(matched) >= 2 && matched[0] == '"':
		return scm.NewString(unescapeString(matched[1 : len(matched)-1])), nil
	default:
		if n, err := strconv.ParseInt(matched, 10, 64); err == nil {
			return scm.NewInteger(n), nil
		}
		return scm.NewSymbol(scm.Symbol(matched)), nil
	}
}

func extractCharacter(name string) (scm.Datum, error) {
	switch name {
	case "space":
		return scm.NewCharacter(' '), nil
	case "newline":
		return scm.NewCharacter('\n'), nil
	case "tab":
		return scm.NewCharacter('\t'), nil
	default:
		r := []rune(name)
		if len(r) != 1 {
			return scm.Datum{}, fmt.Errorf("invalid character literal #\\%s", name)
		}
		return scm.NewCharacter(r[0]), nil
	}
}

func unescapeString(s string) string {
	out := make([]rune, 0, len(s))
	escaped := false
	for _, r := range s {
		if escaped {
			switch r {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			default:
				out = append(out, r)
			}
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
