package algebra

import "math/big"

// #region factor

// Factor rewrites a polynomial in varName as a product of content, a power
// of the variable, and linear factors from its rational roots, e.g.
// "x^2+2x+1" -> "(x+1)^2" and "2x^2+4x" -> "2*x*(x+2)". changed is false
// when no useful factorization was found, in which case the input is
// returned unmodified.
func Factor(e Expr, varName string) (Expr, bool) {
	expanded := Expand(e)
	coeffs, ok := Coeffs(expanded, varName)
	if !ok {
		return e, false
	}
	rats, numeric := numericCoeffs(coeffs)
	if !numeric {
		return e, false
	}
	for len(rats) > 1 && rats[len(rats)-1].Sign() == 0 {
		rats = rats[:len(rats)-1]
	}
	if len(rats)-1 < 1 {
		return e, false
	}

	// Content: gcd of coefficients carrying the sign of the leading one.
	content := ratContent(rats)
	if rats[len(rats)-1].Sign() < 0 {
		content.Neg(content)
	}
	reduced := make([]*big.Rat, len(rats))
	for i, r := range rats {
		reduced[i] = new(big.Rat).Quo(r, content)
	}

	// Lowest power of the variable.
	shift := 0
	for shift < len(reduced)-1 && reduced[shift].Sign() == 0 {
		shift++
	}
	reduced = reduced[shift:]

	factors := []Expr{ratNum(content)}
	if shift > 0 {
		factors = append(factors, Power(Var(varName), Int(int64(shift))))
	}
	factors = append(factors, linearFactors(reduced, varName)...)

	factored := Times(factors...)
	if factored.key() == expanded.key() || factored.Equal(e) {
		return e, false
	}
	return factored, true
}

// linearFactors splits the content-free polynomial into (x - r) factors
// for each rational root, leaving any unfactorable remainder as a trailing
// polynomial factor. Division happens in exact rationals so the factor
// product always equals the input.
func linearFactors(rats []*big.Rat, varName string) []Expr {
	cur := rats
	var out []Expr

	for len(cur)-1 >= 1 {
		if len(cur)-1 == 1 {
			// a*x + b stays as a single linear factor.
			out = append(out, polyFromRats(cur, varName))
			return out
		}
		r, found := findRationalRoot(clearDenominators(cur))
		if !found {
			out = append(out, polyFromRats(cur, varName))
			return out
		}
		out = append(out, Plus(Var(varName), Neg(ratNum(new(big.Rat).Set(r)))))
		cur = divideByRoot(cur, r)
	}
	if len(cur) == 1 && cur[0].Cmp(ratOne) != 0 {
		out = append(out, ratNum(new(big.Rat).Set(cur[0])))
	}
	return out
}

// divideByRoot divides the polynomial by (x - r) in exact rationals,
// assuming r is a root.
func divideByRoot(rats []*big.Rat, r *big.Rat) []*big.Rat {
	quot := make([]*big.Rat, len(rats)-1)
	acc := new(big.Rat)
	for i := len(rats) - 1; i >= 1; i-- {
		acc.Mul(acc, r)
		acc.Add(acc, rats[i])
		quot[i-1] = new(big.Rat).Set(acc)
	}
	return quot
}

// polyFromRats rebuilds an expression from dense rational coefficients.
func polyFromRats(rats []*big.Rat, varName string) Expr {
	terms := make([]Expr, 0, len(rats))
	for d, c := range rats {
		if c.Sign() == 0 {
			continue
		}
		coeff := ratNum(new(big.Rat).Set(c))
		switch d {
		case 0:
			terms = append(terms, coeff)
		default:
			terms = append(terms, Times(coeff, Power(Var(varName), Int(int64(d)))))
		}
	}
	return Plus(terms...)
}

// ratContent is the gcd of the numerators over the lcm of the denominators.
func ratContent(rats []*big.Rat) *big.Rat {
	gcd := new(big.Int)
	lcm := big.NewInt(1)
	for _, r := range rats {
		if r.Sign() == 0 {
			continue
		}
		num := new(big.Int).Abs(r.Num())
		if gcd.Sign() == 0 {
			gcd.Set(num)
		} else {
			gcd.GCD(nil, nil, gcd, num)
		}
		d := r.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Div(new(big.Int).Mul(lcm, d), g)
	}
	if gcd.Sign() == 0 {
		return big.NewRat(1, 1)
	}
	return new(big.Rat).SetFrac(gcd, lcm)
}

// #endregion factor
