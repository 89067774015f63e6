package algebra

import "math/big"

// #region outcome

// SolveKind distinguishes the three solve outcomes. An identity (residual
// zero for every value) and an unsatisfiable equation both carry no roots
// but mean opposite things, so they are never collapsed.
type SolveKind int

const (
	SolveRoots SolveKind = iota
	SolveIdentity
	SolveNoSolution
)

// SolveOutcome is the result of solving residual = 0 for one variable.
type SolveOutcome struct {
	Kind  SolveKind
	Roots []Expr
}

// #endregion outcome

// #region solve

// SolveFor solves residual = 0 for varName. Linear and quadratic equations
// are solved exactly (including symbolic coefficients in other variables);
// higher degrees are handled through rational root extraction. Only real
// roots are reported.
func SolveFor(residual Expr, varName string) SolveOutcome {
	e := Expand(residual)

	if !dependsOn(e, varName) {
		if IsZero(e) {
			return SolveOutcome{Kind: SolveIdentity}
		}
		return SolveOutcome{Kind: SolveNoSolution}
	}

	coeffs, ok := Coeffs(e, varName)
	if !ok {
		return SolveOutcome{Kind: SolveNoSolution}
	}
	for len(coeffs) > 1 && IsZero(coeffs[len(coeffs)-1]) {
		coeffs = coeffs[:len(coeffs)-1]
	}

	switch len(coeffs) - 1 {
	case 0:
		return SolveOutcome{Kind: SolveNoSolution}
	case 1:
		root := Times(Int(-1), coeffs[0], Power(coeffs[1], Int(-1)))
		return SolveOutcome{Kind: SolveRoots, Roots: []Expr{root}}
	case 2:
		return solveQuadratic(coeffs[0], coeffs[1], coeffs[2])
	}
	return solveHigher(coeffs)
}

// solveQuadratic solves c + b*x + a*x^2 = 0.
func solveQuadratic(c, b, a Expr) SolveOutcome {
	rats, numeric := numericCoeffs([]Expr{c, b, a})
	if !numeric {
		// Symbolic coefficients: emit the quadratic formula forms.
		disc := Plus(Times(b, b), Times(Int(-4), a, c))
		den := Power(Times(Int(2), a), Int(-1))
		r1 := Times(Plus(Neg(b), Sqrt(disc)), den)
		r2 := Times(Plus(Neg(b), Neg(Sqrt(disc))), den)
		return SolveOutcome{Kind: SolveRoots, Roots: dedupeRoots([]Expr{r1, r2})}
	}
	roots, none := quadRoots(rats[2], rats[1], rats[0])
	if none {
		return SolveOutcome{Kind: SolveNoSolution}
	}
	return SolveOutcome{Kind: SolveRoots, Roots: roots}
}

// quadRoots returns the real roots of a*x^2 + b*x + c with rational
// coefficients; none is true when the discriminant is negative.
func quadRoots(a, b, c *big.Rat) ([]Expr, bool) {
	disc := new(big.Rat).Mul(b, b)
	fourAC := new(big.Rat).Mul(new(big.Rat).Mul(a, c), big.NewRat(4, 1))
	disc.Sub(disc, fourAC)

	twoA := new(big.Rat).Mul(a, big.NewRat(2, 1))
	negB := new(big.Rat).Neg(b)

	switch disc.Sign() {
	case -1:
		return nil, true
	case 0:
		return []Expr{ratNum(new(big.Rat).Quo(negB, twoA))}, false
	}

	sqrtDisc := Sqrt(ratNum(disc))
	invTwoA := Power(ratNum(twoA), Int(-1))
	r1 := Times(Plus(ratNum(new(big.Rat).Set(negB)), sqrtDisc), invTwoA)
	r2 := Times(Plus(ratNum(new(big.Rat).Set(negB)), Neg(sqrtDisc)), invTwoA)
	return []Expr{r1, r2}, false
}

// solveHigher peels rational roots off a degree >= 3 polynomial with
// numeric coefficients, finishing the remainder with the quadratic formula
// when it gets that far.
func solveHigher(coeffs []Expr) SolveOutcome {
	rats, numeric := numericCoeffs(coeffs)
	if !numeric {
		return SolveOutcome{Kind: SolveNoSolution}
	}
	ints := clearDenominators(rats)

	var roots []Expr

	// Zero roots: factor out x^m.
	for len(ints) > 1 && ints[0].Sign() == 0 {
		ints = ints[1:]
		if len(roots) == 0 {
			roots = append(roots, Int(0))
		}
	}

	for len(ints)-1 > 2 {
		r, found := findRationalRoot(ints)
		if !found {
			break
		}
		roots = append(roots, ratNum(new(big.Rat).Set(r)))
		for hornerZero(ints, r) {
			ints = syntheticDivide(ints, r)
			if len(ints)-1 <= 2 {
				break
			}
		}
	}

	switch len(ints) - 1 {
	case 1:
		root := new(big.Rat).SetFrac(ints[0], ints[1])
		root.Neg(root)
		roots = append(roots, ratNum(root))
	case 2:
		qr, none := quadRoots(
			new(big.Rat).SetInt(ints[2]),
			new(big.Rat).SetInt(ints[1]),
			new(big.Rat).SetInt(ints[0]),
		)
		if !none {
			roots = append(roots, qr...)
		}
	}

	roots = dedupeRoots(roots)
	if len(roots) == 0 {
		return SolveOutcome{Kind: SolveNoSolution}
	}
	return SolveOutcome{Kind: SolveRoots, Roots: roots}
}

// #endregion solve

// #region rational-roots

// clearDenominators scales rational coefficients to integers.
func clearDenominators(rats []*big.Rat) []*big.Int {
	lcm := big.NewInt(1)
	for _, r := range rats {
		d := r.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Div(new(big.Int).Mul(lcm, d), g)
	}
	out := make([]*big.Int, len(rats))
	for i, r := range rats {
		v := new(big.Rat).Mul(r, new(big.Rat).SetInt(lcm))
		out[i] = new(big.Int).Set(v.Num())
	}
	return out
}

const rootSearchCap = 1_000_000

// findRationalRoot searches candidate roots p/q with p | a0 and q | ad.
func findRationalRoot(ints []*big.Int) (*big.Rat, bool) {
	a0 := new(big.Int).Abs(ints[0])
	ad := new(big.Int).Abs(ints[len(ints)-1])
	if a0.Sign() == 0 {
		return new(big.Rat), true
	}
	if !a0.IsInt64() || !ad.IsInt64() || a0.Int64() > rootSearchCap || ad.Int64() > rootSearchCap {
		return nil, false
	}
	for _, p := range divisors(a0.Int64()) {
		for _, q := range divisors(ad.Int64()) {
			for _, sign := range []int64{1, -1} {
				cand := big.NewRat(sign*p, q)
				if hornerZero(ints, cand) {
					return cand, true
				}
			}
		}
	}
	return nil, false
}

func divisors(n int64) []int64 {
	var out []int64
	for d := int64(1); d*d <= n; d++ {
		if n%d == 0 {
			out = append(out, d)
			if d != n/d {
				out = append(out, n/d)
			}
		}
	}
	return out
}

// hornerZero evaluates the polynomial at r exactly and tests for zero.
func hornerZero(ints []*big.Int, r *big.Rat) bool {
	acc := new(big.Rat)
	for i := len(ints) - 1; i >= 0; i-- {
		acc.Mul(acc, r)
		acc.Add(acc, new(big.Rat).SetInt(ints[i]))
	}
	return acc.Sign() == 0
}

// syntheticDivide divides the polynomial by (x - r), assuming r is a root,
// and rescales the quotient back to integer coefficients.
func syntheticDivide(ints []*big.Int, r *big.Rat) []*big.Int {
	quot := make([]*big.Rat, len(ints)-1)
	acc := new(big.Rat)
	for i := len(ints) - 1; i >= 1; i-- {
		acc.Mul(acc, r)
		acc.Add(acc, new(big.Rat).SetInt(ints[i]))
		quot[i-1] = new(big.Rat).Set(acc)
	}
	return clearDenominators(quot)
}

func dedupeRoots(roots []Expr) []Expr {
	var out []Expr
	for _, r := range roots {
		dup := false
		for _, seen := range out {
			if seen.Equal(r) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
		}
	}
	return out
}

// #endregion rational-roots
