package algebra

// #region diff

// Diff returns the derivative of e with respect to varName.
func Diff(e Expr, varName string) Expr {
	switch v := e.(type) {
	case *Num:
		return Int(0)
	case *Sym:
		if v.name == varName {
			return Int(1)
		}
		return Int(0)
	case *Add:
		out := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			out[i] = Diff(t, varName)
		}
		return Plus(out...)
	case *Mul:
		// Product rule over all factors.
		var out []Expr
		for i := range v.factors {
			part := make([]Expr, len(v.factors))
			copy(part, v.factors)
			part[i] = Diff(v.factors[i], varName)
			out = append(out, Times(part...))
		}
		return Plus(out...)
	case *Pow:
		if !dependsOn(v.exp, varName) {
			// d(u^n) = n * u^(n-1) * u'
			return Times(v.exp, Power(v.base, Plus(v.exp, Int(-1))), Diff(v.base, varName))
		}
		// d(u^v) = u^v * (v' * log(u) + v * u'/u)
		inner := Plus(
			Times(Diff(v.exp, varName), Fn("log", v.base)),
			Times(v.exp, Diff(v.base, varName), Power(v.base, Int(-1))),
		)
		return Times(e, inner)
	case *Call:
		du := Diff(v.arg, varName)
		if IsZero(du) {
			return Int(0)
		}
		var outer Expr
		switch v.fn {
		case "sin":
			outer = Fn("cos", v.arg)
		case "cos":
			outer = Neg(Fn("sin", v.arg))
		case "tan":
			outer = Power(Fn("cos", v.arg), Int(-2))
		case "log":
			outer = Power(v.arg, Int(-1))
		case "exp":
			outer = Fn("exp", v.arg)
		case "abs":
			outer = Times(v.arg, Power(Fn("abs", v.arg), Int(-1)))
		default:
			return Times(Fn(v.fn, v.arg), du) // unknown function, best effort
		}
		return Times(outer, du)
	}
	return Int(0)
}

// #endregion diff

// #region integrate

// Integrate returns an antiderivative of e with respect to varName. ok is
// false when the expression is outside the supported table (powers of the
// variable, elementary functions of linear arguments, and sums and constant
// multiples of those).
func Integrate(e Expr, varName string) (Expr, bool) {
	if !dependsOn(e, varName) {
		return Times(e, Var(varName)), true
	}
	switch v := e.(type) {
	case *Sym:
		// x -> x^2/2
		return Times(Rat(1, 2), Power(Var(v.name), Int(2))), true
	case *Add:
		out := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			r, ok := Integrate(t, varName)
			if !ok {
				return nil, false
			}
			out[i] = r
		}
		return Plus(out...), true
	case *Mul:
		// Split constant factors from the dependent part.
		var consts, dependent []Expr
		for _, f := range v.factors {
			if dependsOn(f, varName) {
				dependent = append(dependent, f)
			} else {
				consts = append(consts, f)
			}
		}
		if len(dependent) != 1 {
			return nil, false
		}
		inner, ok := Integrate(dependent[0], varName)
		if !ok {
			return nil, false
		}
		return Times(append(consts, inner)...), true
	case *Pow:
		return integratePow(v, varName)
	case *Call:
		return integrateCall(v, varName)
	}
	return nil, false
}

func integratePow(p *Pow, varName string) (Expr, bool) {
	s, ok := p.base.(*Sym)
	if !ok || s.name != varName || dependsOn(p.exp, varName) {
		return nil, false
	}
	n, ok := p.exp.(*Num)
	if !ok {
		return nil, false
	}
	if n.val.Cmp(ratNegOne) == 0 {
		// x^-1 -> log(x)
		return Fn("log", Var(varName)), true
	}
	next := Plus(n, Int(1))
	return Times(Power(next, Int(-1)), Power(Var(varName), next)), true
}

func integrateCall(c *Call, varName string) (Expr, bool) {
	// Only linear arguments a*x + b are supported; the result is scaled
	// by 1/a.
	a, ok := linearCoeff(c.arg, varName)
	if !ok {
		return nil, false
	}
	var anti Expr
	switch c.fn {
	case "sin":
		anti = Neg(Fn("cos", c.arg))
	case "cos":
		anti = Fn("sin", c.arg)
	case "exp":
		anti = Fn("exp", c.arg)
	case "tan":
		anti = Neg(Fn("log", Fn("cos", c.arg)))
	case "log":
		if !isVar(c.arg, varName) {
			return nil, false
		}
		// log(x) -> x*log(x) - x
		x := Var(varName)
		return Plus(Times(x, Fn("log", x)), Neg(x)), true
	default:
		return nil, false
	}
	return Times(Power(a, Int(-1)), anti), true
}

// linearCoeff returns the slope a when e = a*x + b with a independent of x.
func linearCoeff(e Expr, varName string) (Expr, bool) {
	coeffs, ok := Coeffs(e, varName)
	if !ok || len(coeffs) != 2 {
		return nil, false
	}
	if dependsOn(coeffs[0], varName) || dependsOn(coeffs[1], varName) {
		return nil, false
	}
	return coeffs[1], true
}

func isVar(e Expr, varName string) bool {
	s, ok := e.(*Sym)
	return ok && s.name == varName
}

// #endregion integrate
