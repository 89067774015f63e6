package algebra

import (
	"math"
	"math/big"
	"sort"
)

// #region add

// Add is a normalized sum. Terms are collected by their non-numeric part,
// ordered by descending degree then key, with the numeric constant last.
type Add struct{ terms []Expr }

// Plus returns the normalized sum of the given terms.
func Plus(terms ...Expr) Expr {
	flat := make([]Expr, 0, len(terms))
	for _, t := range terms {
		if inner, ok := t.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, t)
		}
	}

	constant := new(big.Rat)
	coeffs := map[string]*big.Rat{}
	rests := map[string]Expr{}
	order := []string{}

	for _, t := range flat {
		coeff, rest := splitCoeff(t)
		if rest == nil {
			constant.Add(constant, coeff)
			continue
		}
		k := rest.key()
		if _, seen := coeffs[k]; !seen {
			coeffs[k] = new(big.Rat)
			rests[k] = rest
			order = append(order, k)
		}
		coeffs[k].Add(coeffs[k], coeff)
	}

	out := make([]Expr, 0, len(order)+1)
	for _, k := range order {
		if coeffs[k].Sign() == 0 {
			continue
		}
		out = append(out, scaleTerm(coeffs[k], rests[k]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := totalDegree(out[i]), totalDegree(out[j])
		if di != dj {
			return di > dj
		}
		return out[i].key() < out[j].key()
	})
	if constant.Sign() != 0 {
		out = append(out, ratNum(constant))
	}

	switch len(out) {
	case 0:
		return Int(0)
	case 1:
		return out[0]
	}
	return &Add{terms: out}
}

// splitCoeff separates a normalized term into its rational coefficient and
// the remaining symbolic part. A nil rest means the term is a pure number.
func splitCoeff(t Expr) (*big.Rat, Expr) {
	switch v := t.(type) {
	case *Num:
		return new(big.Rat).Set(v.val), nil
	case *Mul:
		if n, ok := v.factors[0].(*Num); ok {
			rest := v.factors[1:]
			if len(rest) == 1 {
				return new(big.Rat).Set(n.val), rest[0]
			}
			return new(big.Rat).Set(n.val), &Mul{factors: rest}
		}
	}
	return new(big.Rat).Set(ratOne), t
}

// scaleTerm rebuilds coeff*rest for a non-nil rest and non-zero coeff.
func scaleTerm(coeff *big.Rat, rest Expr) Expr {
	if coeff.Cmp(ratOne) == 0 {
		return rest
	}
	n := ratNum(new(big.Rat).Set(coeff))
	if m, ok := rest.(*Mul); ok {
		factors := make([]Expr, 0, len(m.factors)+1)
		factors = append(factors, n)
		factors = append(factors, m.factors...)
		return &Mul{factors: factors}
	}
	return &Mul{factors: []Expr{n, rest}}
}

func (a *Add) Subst(name string, value Expr) Expr {
	out := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		out[i] = t.Subst(name, value)
	}
	return Plus(out...)
}

func (a *Add) Eval() (float64, bool) {
	sum := 0.0
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return 0, false
		}
		sum += v
	}
	return sum, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) key() string {
	s := "(+"
	for _, t := range a.terms {
		s += " " + t.key()
	}
	return s + ")"
}

// Terms returns the ordered term list.
func (a *Add) Terms() []Expr { return a.terms }

// #endregion add

// #region mul

// Mul is a normalized product. A rational coefficient, if present, is the
// first factor; remaining factors are sorted by key with equal bases merged
// into powers.
type Mul struct{ factors []Expr }

// Times returns the normalized product of the given factors.
func Times(factors ...Expr) Expr {
	flat := make([]Expr, 0, len(factors))
	for _, f := range factors {
		if inner, ok := f.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, f)
		}
	}

	coeff := new(big.Rat).Set(ratOne)
	bases := map[string]Expr{}
	exps := map[string][]Expr{}
	order := []string{}

	for _, f := range flat {
		if n, ok := f.(*Num); ok {
			if n.IsZero() {
				return Int(0)
			}
			coeff.Mul(coeff, n.val)
			continue
		}
		base, exp := f, Expr(Int(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		k := base.key()
		if _, seen := bases[k]; !seen {
			bases[k] = base
			order = append(order, k)
		}
		exps[k] = append(exps[k], exp)
	}

	out := make([]Expr, 0, len(order))
	reflatten := false
	for _, k := range order {
		e := Power(bases[k], Plus(exps[k]...))
		switch v := e.(type) {
		case *Num:
			if v.IsZero() {
				return Int(0)
			}
			coeff.Mul(coeff, v.val)
		case *Mul:
			reflatten = true
			out = append(out, v)
		default:
			out = append(out, e)
		}
	}
	if reflatten {
		out = append(out, ratNum(coeff))
		return Times(out...)
	}

	if coeff.Sign() == 0 {
		return Int(0)
	}
	sort.SliceStable(out, func(i, j int) bool { return mulOrder(out[i]) < mulOrder(out[j]) })

	if len(out) == 0 {
		return ratNum(coeff)
	}
	if coeff.Cmp(ratOne) == 0 {
		if len(out) == 1 {
			return out[0]
		}
		return &Mul{factors: out}
	}

	// A bare rational times a sum distributes, so subtractions built as
	// -1 * (a + b) collapse against like terms.
	if len(out) == 1 {
		if a, ok := out[0].(*Add); ok {
			scaled := make([]Expr, len(a.terms))
			c := ratNum(coeff)
			for i, t := range a.terms {
				scaled[i] = Times(c, t)
			}
			return Plus(scaled...)
		}
	}
	factorsOut := append([]Expr{ratNum(coeff)}, out...)
	return &Mul{factors: factorsOut}
}

// mulOrder ranks factors for display: plain symbols and their powers first
// (by symbol name), then sums and other composites, then function calls.
func mulOrder(f Expr) string {
	switch v := f.(type) {
	case *Sym:
		return "0:" + v.name + ":" + f.key()
	case *Pow:
		if s, ok := v.base.(*Sym); ok {
			return "0:" + s.name + ":" + f.key()
		}
		return "1:" + f.key()
	case *Call:
		return "2:" + f.key()
	}
	return "1:" + f.key()
}

func (m *Mul) Subst(name string, value Expr) Expr {
	out := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		out[i] = f.Subst(name, value)
	}
	return Times(out...)
}

func (m *Mul) Eval() (float64, bool) {
	prod := 1.0
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return 0, false
		}
		prod *= v
	}
	return prod, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) key() string {
	s := "(*"
	for _, f := range m.factors {
		s += " " + f.key()
	}
	return s + ")"
}

// Factors returns the ordered factor list.
func (m *Mul) Factors() []Expr { return m.factors }

// Coefficient returns the leading rational coefficient (1 if none).
func (m *Mul) Coefficient() *big.Rat {
	if n, ok := m.factors[0].(*Num); ok {
		return new(big.Rat).Set(n.val)
	}
	return new(big.Rat).Set(ratOne)
}

// #endregion mul

// #region pow

// Pow is a normalized power. Exact numeric powers and roots are folded at
// construction; half powers render as sqrt.
type Pow struct{ base, exp Expr }

const maxFoldExp = 512

// Power returns the normalized base^exp.
func Power(base, exp Expr) Expr {
	if n, ok := exp.(*Num); ok {
		if n.IsZero() {
			return Int(1)
		}
		if n.IsOne() {
			return base
		}
	}
	if b, ok := base.(*Num); ok {
		if b.IsOne() {
			return Int(1)
		}
		if e, ok2 := exp.(*Num); ok2 {
			if b.IsZero() && e.val.Sign() > 0 {
				return Int(0)
			}
			if folded, ok3 := foldNumPow(b.val, e.val); ok3 {
				return folded
			}
		}
	}
	if inner, ok := base.(*Pow); ok {
		if n, ok2 := exp.(*Num); ok2 && n.IsInt() {
			return Power(inner.base, Times(inner.exp, n))
		}
	}
	if m, ok := base.(*Mul); ok {
		if n, ok2 := exp.(*Num); ok2 && n.IsInt() {
			out := make([]Expr, len(m.factors))
			for i, f := range m.factors {
				out[i] = Power(f, n)
			}
			return Times(out...)
		}
	}
	return &Pow{base: base, exp: exp}
}

// foldNumPow evaluates b^e exactly when possible: integer exponents, perfect
// roots, and square-free extraction for square roots of integers.
func foldNumPow(b, e *big.Rat) (Expr, bool) {
	if e.IsInt() {
		p := e.Num()
		if p.CmpAbs(big.NewInt(maxFoldExp)) > 0 {
			return nil, false
		}
		n := int(p.Int64())
		neg := n < 0
		if neg {
			n = -n
		}
		num := new(big.Int).Exp(b.Num(), big.NewInt(int64(n)), nil)
		den := new(big.Int).Exp(b.Denom(), big.NewInt(int64(n)), nil)
		if neg {
			if num.Sign() == 0 {
				return nil, false
			}
			num, den = den, num
		}
		return ratNum(new(big.Rat).SetFrac(num, den)), true
	}

	if !e.Denom().IsInt64() {
		return nil, false
	}
	q := e.Denom().Int64()
	if q <= 1 || q > 64 {
		return nil, false
	}
	if b.Sign() < 0 && q%2 == 0 {
		return nil, false
	}
	rootNum, exactNum := nthRoot(b.Num(), q)
	rootDen, exactDen := nthRoot(b.Denom(), q)
	if exactNum && exactDen {
		root := new(big.Rat).SetFrac(rootNum, rootDen)
		return foldNumPow(root, new(big.Rat).SetInt(e.Num()))
	}

	// Square-free extraction: sqrt(8) -> 2*sqrt(2).
	half := big.NewRat(1, 2)
	if e.Cmp(half) == 0 && b.IsInt() && b.Num().IsInt64() && b.Sign() > 0 {
		s, r := extractSquare(b.Num().Int64())
		if s > 1 {
			return Times(Int(s), &Pow{base: Int(r), exp: Rat(1, 2)}), true
		}
	}
	return nil, false
}

// nthRoot returns the exact integer q-th root of n, if one exists.
func nthRoot(n *big.Int, q int64) (*big.Int, bool) {
	if n.Sign() == 0 {
		return big.NewInt(0), true
	}
	neg := n.Sign() < 0
	if neg && q%2 == 0 {
		return nil, false
	}
	abs := new(big.Int).Abs(n)

	lo, hi := big.NewInt(1), new(big.Int).Set(abs)
	qInt := big.NewInt(q)
	for lo.Cmp(hi) <= 0 {
		mid := new(big.Int).Add(lo, hi)
		mid.Rsh(mid, 1)
		p := new(big.Int).Exp(mid, qInt, nil)
		switch p.Cmp(abs) {
		case 0:
			if neg {
				mid.Neg(mid)
			}
			return mid, true
		case -1:
			lo = new(big.Int).Add(mid, big.NewInt(1))
		case 1:
			hi = new(big.Int).Sub(mid, big.NewInt(1))
		}
	}
	return nil, false
}

// extractSquare splits n into s^2 * r with r square-free.
func extractSquare(n int64) (s, r int64) {
	s, r = 1, n
	for p := int64(2); p*p <= r; p++ {
		for r%(p*p) == 0 {
			r /= p * p
			s *= p
		}
	}
	return s, r
}

func (p *Pow) Subst(name string, value Expr) Expr {
	return Power(p.base.Subst(name, value), p.exp.Subst(name, value))
}

func (p *Pow) Eval() (float64, bool) {
	b, ok := p.base.Eval()
	if !ok {
		return 0, false
	}
	e, ok := p.exp.Eval()
	if !ok {
		return 0, false
	}
	v := math.Pow(b, e)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) key() string { return "(^ " + p.base.key() + " " + p.exp.key() + ")" }

// Base returns the power's base.
func (p *Pow) Base() Expr { return p.base }

// Exponent returns the power's exponent.
func (p *Pow) Exponent() Expr { return p.exp }

// #endregion pow
