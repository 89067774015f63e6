// Package algebra implements the exact symbolic expression kernel used by the
// tutoring engine: immutable expression trees over big.Rat arithmetic with
// normalization, polynomial tools, equation solving, and basic calculus.
package algebra

import (
	"math"
	"math/big"
	"sort"
)

// #region interface

// Expr is an immutable symbolic expression node. All construction goes
// through the package combinators (Plus, Times, Power, Fn, ...), which
// normalize on the way in, so any Expr held by a caller is already in
// normal form.
type Expr interface {
	// String renders the expression in tutor-readable form ("x^2 + 2*x + 1").
	String() string
	// Subst replaces every occurrence of the named variable and renormalizes.
	Subst(name string, value Expr) Expr
	// Eval evaluates to a float64 when the expression has no free variables.
	Eval() (float64, bool)
	// Equal reports structural equality of normal forms.
	Equal(other Expr) bool

	// key returns a canonical s-expression used for ordering and collection.
	// Unexported so the node set is closed within this package.
	key() string
}

// #endregion interface

// #region num

// Num is an exact rational constant.
type Num struct{ val *big.Rat }

// Int returns the integer constant n.
func Int(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

// Rat returns the exact fraction p/q. q must be non-zero.
func Rat(p, q int64) *Num { return &Num{val: big.NewRat(p, q)} }

// Float returns the exact rational value of f. NaN and infinities map to zero.
func Float(f float64) *Num {
	r := new(big.Rat).SetFloat64(f)
	if r == nil {
		r = new(big.Rat)
	}
	return &Num{val: r}
}

// ratNum wraps an existing big.Rat without copying. Callers must not retain r.
func ratNum(r *big.Rat) *Num { return &Num{val: r} }

func (n *Num) Subst(string, Expr) Expr { return n }
func (n *Num) Eval() (float64, bool)   { f, _ := n.val.Float64(); return f, true }
func (n *Num) Equal(other Expr) bool {
	o, ok := other.(*Num)
	return ok && n.val.Cmp(o.val) == 0
}
func (n *Num) key() string { return "#" + n.val.RatString() }

// Rat returns a copy of the underlying rational value.
func (n *Num) Rat() *big.Rat { return new(big.Rat).Set(n.val) }

func (n *Num) IsZero() bool   { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool    { return n.val.Cmp(ratOne) == 0 }
func (n *Num) IsInt() bool    { return n.val.IsInt() }
func (n *Num) Negative() bool { return n.val.Sign() < 0 }
func (n *Num) Float64() float64 {
	f, _ := n.val.Float64()
	return f
}

var (
	ratOne    = big.NewRat(1, 1)
	ratNegOne = big.NewRat(-1, 1)
)

// #endregion num

// #region sym

// Sym is a free variable.
type Sym struct{ name string }

// Var returns the variable with the given name.
func Var(name string) *Sym { return &Sym{name: name} }

func (s *Sym) Subst(name string, value Expr) Expr {
	if s.name == name {
		return value
	}
	return s
}
func (s *Sym) Eval() (float64, bool) { return 0, false }
func (s *Sym) Equal(other Expr) bool {
	o, ok := other.(*Sym)
	return ok && s.name == o.name
}
func (s *Sym) key() string  { return s.name }
func (s *Sym) Name() string { return s.name }

// #endregion sym

// #region call

// Call is an elementary function application: sin, cos, tan, log, exp, abs.
// Square roots are represented as Pow with exponent 1/2, not as Call.
type Call struct {
	fn  string
	arg Expr
}

// Fn applies a named elementary function, folding constant cases. "ln" is
// canonicalized to "log" (natural log throughout) and "sqrt" to a half power.
func Fn(name string, arg Expr) Expr {
	switch name {
	case "ln":
		name = "log"
	case "sqrt":
		return Power(arg, Rat(1, 2))
	}
	if n, ok := arg.(*Num); ok {
		switch name {
		case "abs":
			return ratNum(new(big.Rat).Abs(n.val))
		case "sin", "tan":
			if n.IsZero() {
				return Int(0)
			}
		case "cos", "exp":
			if n.IsZero() {
				return Int(1)
			}
		case "log":
			if n.IsOne() {
				return Int(0)
			}
		}
	}
	return &Call{fn: name, arg: arg}
}

func (c *Call) Subst(name string, value Expr) Expr {
	return Fn(c.fn, c.arg.Subst(name, value))
}

func (c *Call) Eval() (float64, bool) {
	v, ok := c.arg.Eval()
	if !ok {
		return 0, false
	}
	switch c.fn {
	case "sin":
		return math.Sin(v), true
	case "cos":
		return math.Cos(v), true
	case "tan":
		return math.Tan(v), true
	case "log":
		if v <= 0 {
			return 0, false
		}
		return math.Log(v), true
	case "exp":
		return math.Exp(v), true
	case "abs":
		return math.Abs(v), true
	}
	return 0, false
}

func (c *Call) Equal(other Expr) bool {
	o, ok := other.(*Call)
	return ok && c.fn == o.fn && c.arg.Equal(o.arg)
}
func (c *Call) key() string { return "(" + c.fn + " " + c.arg.key() + ")" }

// FuncName returns the canonical function name.
func (c *Call) FuncName() string { return c.fn }

// Arg returns the function argument.
func (c *Call) Arg() Expr { return c.arg }

// #endregion call

// #region helpers

// IsZero reports whether e is the exact constant 0.
func IsZero(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.IsZero()
}

// Neg returns -e.
func Neg(e Expr) Expr { return Times(Int(-1), e) }

// Sqrt returns e^(1/2).
func Sqrt(e Expr) Expr { return Power(e, Rat(1, 2)) }

// FreeVars returns the sorted set of variable names occurring in e.
func FreeVars(e Expr) []string {
	set := map[string]struct{}{}
	collectVars(e, set)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectVars(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectVars(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectVars(f, out)
		}
	case *Pow:
		collectVars(v.base, out)
		collectVars(v.exp, out)
	case *Call:
		collectVars(v.arg, out)
	}
}

// totalDegree is a display-ordering heuristic: symbols count 1, integer
// powers count their exponent, everything else counts 0.
func totalDegree(e Expr) int {
	switch v := e.(type) {
	case *Sym:
		return 1
	case *Pow:
		if n, ok := v.exp.(*Num); ok && n.IsInt() {
			d := int(n.val.Num().Int64())
			if d > 0 {
				return d * totalDegree(v.base)
			}
		}
		return 0
	case *Mul:
		sum := 0
		for _, f := range v.factors {
			sum += totalDegree(f)
		}
		return sum
	case *Add:
		max := 0
		for _, t := range v.terms {
			if d := totalDegree(t); d > max {
				max = d
			}
		}
		return max
	}
	return 0
}

// #endregion helpers
