// Package parser reads the calculator's two line grammars: a single binary
// expression `a/b OP c/d`, and a comma-separated fraction list whose final
// character picks the sort direction.
package parser

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/123kaze/cq/internal/fraccalc/fraction"
)

// ErrBadInput covers every malformed line; the dialog renders it as the
// single generic input-error message.
var ErrBadInput = errors.New("malformed input")

// Order of a list sort, chosen by the terminator character.
type Order int

const (
	Ascending  Order = iota // terminator '<'
	Descending              // terminator '>'
)

var operators = "+-*/"

// ParseExpression reads `N1/D1 OP N2/D2` with OP one of + - * /.
// Whitespace around the expression and around the operator is tolerated.
func ParseExpression(line string) (x fraction.Fraction, op byte, y fraction.Fraction, err error) {
	s := strings.TrimSpace(line)

	x, rest, err := parseFraction(s)
	if err != nil {
		return fraction.Fraction{}, 0, fraction.Fraction{}, ErrBadInput
	}

	rest = strings.TrimSpace(rest)
	if rest == "" || !strings.ContainsRune(operators, rune(rest[0])) {
		return fraction.Fraction{}, 0, fraction.Fraction{}, ErrBadInput
	}
	op = rest[0]

	y, rest, err = parseFraction(strings.TrimSpace(rest[1:]))
	if err != nil || strings.TrimSpace(rest) != "" {
		return fraction.Fraction{}, 0, fraction.Fraction{}, ErrBadInput
	}
	return x, op, y, nil
}

// ParseList reads `N1/D1,N2/D2,...<` or `...>`. The terminator must be the
// final character; anything else is an error. An empty list with a valid
// terminator parses to zero fractions.
func ParseList(line string) ([]fraction.Fraction, Order, error) {
	s := strings.TrimSpace(line)
	if s == "" {
		return nil, 0, ErrBadInput
	}

	var order Order
	switch s[len(s)-1] {
	case '<':
		order = Ascending
	case '>':
		order = Descending
	default:
		return nil, 0, ErrBadInput
	}

	body := s[:len(s)-1]
	if body == "" {
		return nil, order, nil
	}

	parts := strings.Split(body, ",")
	fracs := make([]fraction.Fraction, 0, len(parts))
	for _, part := range parts {
		f, rest, err := parseFraction(strings.TrimSpace(part))
		if err != nil || rest != "" {
			return nil, 0, ErrBadInput
		}
		fracs = append(fracs, f)
	}
	return fracs, order, nil
}

// SortFractions orders fs in place, stably.
func SortFractions(fs []fraction.Fraction, order Order) {
	sort.SliceStable(fs, func(i, j int) bool {
		if order == Ascending {
			return fs[i].Less(fs[j])
		}
		return fs[j].Less(fs[i])
	})
}

// RenderList joins the rendered fractions with single spaces.
func RenderList(fs []fraction.Fraction) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.String()
	}
	return strings.Join(parts, " ")
}

// parseFraction consumes a leading `numer/deno` and returns the unconsumed
// remainder of s.
func parseFraction(s string) (fraction.Fraction, string, error) {
	numer, rest, err := parseInt(s)
	if err != nil {
		return fraction.Fraction{}, "", err
	}
	if rest == "" || rest[0] != '/' {
		return fraction.Fraction{}, "", ErrBadInput
	}
	deno, rest, err := parseInt(rest[1:])
	if err != nil {
		return fraction.Fraction{}, "", err
	}
	f, err := fraction.New(numer, deno)
	if err != nil {
		return fraction.Fraction{}, "", err
	}
	return f, rest, nil
}

// parseInt consumes a leading signed decimal integer.
func parseInt(s string) (int64, string, error) {
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return 0, "", ErrBadInput
	}
	v, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return 0, "", ErrBadInput
	}
	return v, s[i:], nil
}
