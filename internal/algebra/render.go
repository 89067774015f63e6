package algebra

import (
	"math/big"
	"strings"
)

// #region atoms

func (n *Num) String() string { return n.val.RatString() }

func (s *Sym) String() string { return s.name }

func (c *Call) String() string { return c.fn + "(" + c.arg.String() + ")" }

// #endregion atoms

// #region add

func (a *Add) String() string {
	var b strings.Builder
	for i, t := range a.terms {
		neg, abs := termSign(t)
		if i == 0 {
			if neg {
				b.WriteString("-")
			}
		} else if neg {
			b.WriteString(" - ")
		} else {
			b.WriteString(" + ")
		}
		b.WriteString(abs.String())
	}
	return b.String()
}

// termSign reports whether a term renders with a leading minus and returns
// its positive counterpart.
func termSign(t Expr) (bool, Expr) {
	switch v := t.(type) {
	case *Num:
		if v.Negative() {
			return true, ratNum(new(big.Rat).Abs(v.val))
		}
	case *Mul:
		if n, ok := v.factors[0].(*Num); ok && n.Negative() {
			abs := ratNum(new(big.Rat).Abs(n.val))
			if abs.IsOne() {
				rest := v.factors[1:]
				if len(rest) == 1 {
					return true, rest[0]
				}
				return true, &Mul{factors: rest}
			}
			factors := append([]Expr{Expr(abs)}, v.factors[1:]...)
			return true, &Mul{factors: factors}
		}
	}
	return false, t
}

// #endregion add

// #region mul

func (m *Mul) String() string {
	coeff := new(big.Rat).Set(ratOne)
	var numParts, denParts []string

	for _, f := range m.factors {
		switch v := f.(type) {
		case *Num:
			coeff.Mul(coeff, v.val)
		case *Pow:
			if n, ok := v.exp.(*Num); ok && n.Negative() {
				inv := &Pow{base: v.base, exp: ratNum(new(big.Rat).Abs(n.val))}
				denParts = append(denParts, renderInvFactor(inv))
				continue
			}
			numParts = append(numParts, renderFactor(f))
		default:
			numParts = append(numParts, renderFactor(f))
		}
	}

	sign := ""
	if coeff.Sign() < 0 {
		sign = "-"
		coeff.Abs(coeff)
	}
	p := new(big.Rat).SetInt(coeff.Num())
	q := coeff.Denom()

	if p.Cmp(ratOne) != 0 || len(numParts) == 0 {
		numParts = append([]string{p.RatString()}, numParts...)
	}
	if q.Cmp(big.NewInt(1)) != 0 {
		denParts = append([]string{q.String()}, denParts...)
	}

	num := strings.Join(numParts, "*")
	if len(denParts) == 0 {
		return sign + num
	}
	den := strings.Join(denParts, "*")
	if len(denParts) > 1 {
		den = "(" + den + ")"
	}
	return sign + num + "/" + den
}

func renderFactor(f Expr) string {
	if _, ok := f.(*Add); ok {
		return "(" + f.String() + ")"
	}
	return f.String()
}

// renderInvFactor renders a factor destined for the denominator, with parens
// when the rendering would otherwise bind wrongly after "/".
func renderInvFactor(p *Pow) string {
	var s string
	if n, ok := p.exp.(*Num); ok && n.IsOne() {
		s = p.base.String()
		if needsParens(p.base) {
			s = "(" + s + ")"
		}
		return s
	}
	return p.String()
}

func needsParens(e Expr) bool {
	switch e.(type) {
	case *Add, *Mul:
		return true
	}
	return false
}

// #endregion mul

// #region pow

func (p *Pow) String() string {
	if n, ok := p.exp.(*Num); ok {
		if n.val.Cmp(big.NewRat(1, 2)) == 0 {
			return "sqrt(" + p.base.String() + ")"
		}
		if n.Negative() {
			inv := &Pow{base: p.base, exp: ratNum(new(big.Rat).Abs(n.val))}
			return "1/" + renderInvFactor(inv)
		}
	}
	base := p.base.String()
	switch v := p.base.(type) {
	case *Add, *Mul, *Pow:
		base = "(" + base + ")"
	case *Num:
		if v.Negative() || !v.IsInt() {
			base = "(" + base + ")"
		}
	}
	exp := p.exp.String()
	switch v := p.exp.(type) {
	case *Num:
		if !v.IsInt() {
			exp = "(" + exp + ")"
		}
	case *Sym:
		// bare
	default:
		exp = "(" + exp + ")"
	}
	return base + "^" + exp
}

// #endregion pow
