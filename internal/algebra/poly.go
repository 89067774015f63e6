package algebra

import "math/big"

// #region expand

const expandCap = 16

// Expand distributes products over sums and multiplies out small integer
// powers, then renormalizes (which collects like terms).
func Expand(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		out := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			out[i] = Expand(t)
		}
		return Plus(out...)
	case *Mul:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = Expand(f)
		}
		for i, f := range expanded {
			a, ok := f.(*Add)
			if !ok {
				continue
			}
			rest := make([]Expr, 0, len(expanded)-1)
			for j, g := range expanded {
				if j != i {
					rest = append(rest, g)
				}
			}
			terms := make([]Expr, len(a.terms))
			for k, t := range a.terms {
				terms[k] = Expand(Times(append([]Expr{t}, rest...)...))
			}
			return Plus(terms...)
		}
		return Times(expanded...)
	case *Pow:
		if n, ok := v.exp.(*Num); ok && n.IsInt() {
			exp := n.val.Num().Int64()
			if exp >= 2 && exp <= expandCap {
				base := Expand(v.base)
				result := base
				for i := int64(1); i < exp; i++ {
					result = Expand(Times(result, base))
				}
				return result
			}
		}
		return Power(Expand(v.base), Expand(v.exp))
	case *Call:
		return Fn(v.fn, Expand(v.arg))
	}
	return e
}

// #endregion expand

// #region coeffs

// dependsOn reports whether the named variable occurs anywhere in e.
func dependsOn(e Expr, name string) bool {
	switch v := e.(type) {
	case *Sym:
		return v.name == name
	case *Add:
		for _, t := range v.terms {
			if dependsOn(t, name) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if dependsOn(f, name) {
				return true
			}
		}
	case *Pow:
		return dependsOn(v.base, name) || dependsOn(v.exp, name)
	case *Call:
		return dependsOn(v.arg, name)
	}
	return false
}

// Coeffs views e as a polynomial in varName and returns its dense
// coefficient list [c0, c1, ..., cd]. ok is false when e is not a
// polynomial in varName (the variable under a function, in an exponent,
// or raised to a non-integer power).
func Coeffs(e Expr, varName string) ([]Expr, bool) {
	byDeg := map[int][]Expr{}
	maxDeg := 0

	terms := []Expr{Expand(e)}
	if a, ok := terms[0].(*Add); ok {
		terms = a.terms
	}
	for _, t := range terms {
		deg, coeff, ok := monomial(t, varName)
		if !ok {
			return nil, false
		}
		byDeg[deg] = append(byDeg[deg], coeff)
		if deg > maxDeg {
			maxDeg = deg
		}
	}

	out := make([]Expr, maxDeg+1)
	for d := 0; d <= maxDeg; d++ {
		if parts, ok := byDeg[d]; ok {
			out[d] = Plus(parts...)
		} else {
			out[d] = Int(0)
		}
	}
	return out, true
}

// monomial decomposes a single expanded term into degree and coefficient
// with respect to varName.
func monomial(t Expr, varName string) (int, Expr, bool) {
	switch v := t.(type) {
	case *Num:
		return 0, v, true
	case *Sym:
		if v.name == varName {
			return 1, Int(1), true
		}
		return 0, v, true
	case *Pow:
		if s, ok := v.base.(*Sym); ok && s.name == varName {
			if n, ok2 := v.exp.(*Num); ok2 && n.IsInt() && n.val.Sign() > 0 {
				return int(n.val.Num().Int64()), Int(1), true
			}
			return 0, nil, false
		}
		if dependsOn(v.base, varName) || dependsOn(v.exp, varName) {
			return 0, nil, false
		}
		return 0, t, true
	case *Mul:
		deg := 0
		coeffs := make([]Expr, 0, len(v.factors))
		for _, f := range v.factors {
			d, c, ok := monomial(f, varName)
			if !ok {
				return 0, nil, false
			}
			deg += d
			coeffs = append(coeffs, c)
		}
		return deg, Times(coeffs...), true
	case *Call:
		if dependsOn(v.arg, varName) {
			return 0, nil, false
		}
		return 0, t, true
	}
	return 0, nil, false
}

// Degree returns the polynomial degree of e in varName, or -1 when e is
// not a polynomial in varName.
func Degree(e Expr, varName string) int {
	coeffs, ok := Coeffs(e, varName)
	if !ok {
		return -1
	}
	for d := len(coeffs) - 1; d >= 0; d-- {
		if !IsZero(coeffs[d]) {
			return d
		}
	}
	return 0
}

// numericCoeffs converts a coefficient list to rationals; ok is false when
// any coefficient is symbolic.
func numericCoeffs(coeffs []Expr) ([]*big.Rat, bool) {
	out := make([]*big.Rat, len(coeffs))
	for i, c := range coeffs {
		n, ok := c.(*Num)
		if !ok {
			return nil, false
		}
		out[i] = n.Rat()
	}
	return out, true
}

// #endregion coeffs
