// Package fraction implements exact rational arithmetic. Every value is kept
// reduced (numerator and denominator coprime) with a positive denominator,
// so cross-multiplication gives a total order and zero is always 0/1.
package fraction

import (
	"errors"
	"strconv"
)

var (
	ErrZeroDenominator = errors.New("denominator must not be zero")
	ErrDivideByZero    = errors.New("division by a zero-valued fraction")
)

// Fraction is an immutable reduced rational. Construct values with New; the
// struct zero value is not a valid fraction.
type Fraction struct {
	numer int64
	deno  int64
}

// New builds the reduced, sign-normalized fraction n/d.
func New(numer, deno int64) (Fraction, error) {
	if deno == 0 {
		return Fraction{}, ErrZeroDenominator
	}
	return reduce(numer, deno), nil
}

// Zero is 0/1.
func Zero() Fraction {
	return Fraction{numer: 0, deno: 1}
}

func (f Fraction) Numer() int64 { return f.numer }
func (f Fraction) Deno() int64  { return f.deno }

func (f Fraction) Add(g Fraction) Fraction {
	return reduce(f.numer*g.deno+g.numer*f.deno, f.deno*g.deno)
}

func (f Fraction) Sub(g Fraction) Fraction {
	return reduce(f.numer*g.deno-g.numer*f.deno, f.deno*g.deno)
}

func (f Fraction) Mul(g Fraction) Fraction {
	return reduce(f.numer*g.numer, f.deno*g.deno)
}

// Div returns f divided by g. Dividing by a zero-valued fraction would put a
// zero in the denominator and is rejected.
func (f Fraction) Div(g Fraction) (Fraction, error) {
	if g.numer == 0 {
		return Fraction{}, ErrDivideByZero
	}
	return reduce(f.numer*g.deno, f.deno*g.numer), nil
}

// Cmp returns -1, 0 or 1. Cross multiplication is sound because
// denominators are always positive.
func (f Fraction) Cmp(g Fraction) int {
	l := f.numer * g.deno
	r := g.numer * f.deno
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

func (f Fraction) Equal(g Fraction) bool { return f.Cmp(g) == 0 }
func (f Fraction) Less(g Fraction) bool  { return f.Cmp(g) < 0 }

// String renders the fraction as "numer/deno", denominator included even for
// integral values.
func (f Fraction) String() string {
	return strconv.FormatInt(f.numer, 10) + "/" + strconv.FormatInt(f.deno, 10)
}

func reduce(numer, deno int64) Fraction {
	g := gcd(abs(numer), abs(deno))
	numer /= g
	deno /= g
	if deno < 0 {
		numer = -numer
		deno = -deno
	}
	return Fraction{numer: numer, deno: deno}
}

// gcd by Euclid; gcd(0, x) = x, so reducing 0/d yields 0/1.
func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
