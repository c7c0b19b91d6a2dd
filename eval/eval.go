// Package eval is the lazy normalization evaluator: a call-by-need
// interpreter over de Bruijn-indexed terms producing weak-head-normal
// values. Redex results are memoized in forceable thunks; reduction covers
// beta (application), delta (constant unfolding, gated by safety) and iota
// (recursor/constructor elimination), with closure-based read-back for
// definitional equality.
//
// The evaluator assumes its input is already type-checked and well-scoped.
// Shapes that type checking rules out surface as internal errors, never as
// panics. Evaluation is single-threaded; a Machine must not be shared
// across goroutines.
package eval

import (
	"xdao.co/cadl/cidutil"
	"xdao.co/cadl/decl"
	"xdao.co/cadl/expr"
	"xdao.co/cadl/store"
	"xdao.co/cadl/univ"
)

// Limits bounds evaluation. Termination of Fix terms is not a kernel
// guarantee; a step limit is the external policy for runaway recursion.
type Limits struct {
	// MaxSteps caps Eval entries. Zero means unbounded.
	MaxSteps uint64
}

// Machine evaluates terms against the constants of a store.
type Machine struct {
	store  *store.Store
	limits Limits
	steps  uint64
}

// New constructs a machine with unbounded evaluation.
func New(s *store.Store) *Machine { return NewWithLimits(s, Limits{}) }

// NewWithLimits constructs a machine with the given step bound.
func NewWithLimits(s *store.Store, limits Limits) *Machine {
	return &Machine{store: s, limits: limits}
}

// Steps reports how many evaluation steps the machine has taken.
func (m *Machine) Steps() uint64 { return m.steps }

// Force returns the value of a thunk, evaluating its suspended expression
// at most once and caching the result.
func (m *Machine) Force(t *Thunk) (Value, error) {
	if t.val != nil {
		return t.val, nil
	}
	v, err := m.Eval(t.expr, t.env)
	if err != nil {
		return nil, err
	}
	t.val = v
	t.expr = nil
	t.env = Env{}
	return v, nil
}

// Eval reduces e to weak-head normal form under env.
func (m *Machine) Eval(e expr.Expr, env Env) (Value, error) {
	m.steps++
	if m.limits.MaxSteps > 0 && m.steps > m.limits.MaxSteps {
		return nil, newError(KindFuel, "evaluation step limit exhausted")
	}

	switch n := e.(type) {
	case *expr.Var:
		if n.Idx < 0 || n.Idx >= len(env.Vars) {
			return nil, newError(KindInternal, "variable index out of scope")
		}
		return m.Force(env.Vars[n.Idx])

	case *expr.Sort:
		// VSort only takes fully reduced levels, so instantiate against the
		// universe environment first.
		return &VSort{Level: univ.Instantiate(n.Level, env.Univs)}, nil

	case *expr.Const:
		return m.evalConst(n.Ref, univ.InstantiateAll(n.Levels, env.Univs))

	case *expr.App:
		// The argument is suspended, never forced unless the callee uses it.
		arg := Suspend(n.Arg, env)
		fn, err := m.Eval(n.Fn, env)
		if err != nil {
			return nil, err
		}
		switch f := fn.(type) {
		case *VLam:
			return m.Eval(f.Body, f.Env.push(arg))
		case *VApp:
			switch h := f.Head.(type) {
			case *FreeVar:
				return &VApp{Head: h, Args: prepend(arg, f.Args)}, nil
			case *ConstHead:
				return m.applyConst(h.Ref, univ.InstantiateAll(h.Levels, env.Univs), arg, f.Args)
			}
			return nil, newError(KindInternal, "unknown neutral head")
		default:
			return nil, newError(KindInternal, "application of a non-function value")
		}

	case *expr.Lam:
		// The declared domain type is irrelevant to reduction and dropped.
		return &VLam{Info: n.Info, Body: n.Body, Env: env}, nil

	case *expr.Pi:
		return &VPi{Info: n.Info, Dom: Suspend(n.Dom, env), Cod: n.Cod, Env: env}, nil

	case *expr.Let:
		return m.Eval(n.Body, env.push(Suspend(n.Value, env)))

	case *expr.Lit:
		return &VLit{Value: n.Value}, nil

	case *expr.LitType:
		return &VLitType{Kind: n.Kind}, nil

	case *expr.Fix:
		// The whole Fix term is suspended and pushed as its own innermost
		// binding, enabling unrestricted self-reference.
		itself := Suspend(e, env)
		return m.Eval(n.Body, env.push(itself))

	case *expr.Proj:
		return nil, newError(KindUnimplemented, "projection expressions are not implemented")
	}
	return nil, newError(KindInternal, "unknown expression node")
}

// evalConst unfolds a constant (delta) or builds a neutral head.
func (m *Machine) evalConst(id cidutil.ConstID, univs []univ.Level) (Value, error) {
	c, ok := m.store.Const(id)
	if !ok {
		return nil, cacheMiss("constant", id, store.ErrNotFound)
	}
	switch v := c.(type) {
	case *decl.Theorem:
		return m.unfold(id, v.Body, univs)
	case *decl.Definition:
		switch v.Safety {
		case decl.DefSafe:
			return m.unfold(id, v.Body, univs)
		case decl.DefUnsafe:
			return nil, constError(KindUnsafeUnfold, "cannot unfold an unsafe definition inside a type", id)
		}
	}
	// Axiom, Opaque, Inductive, Constructor, Recursor, Quotient and partial
	// definitions stay neutral.
	return neutralConst(id, univs), nil
}

func (m *Machine) unfold(id cidutil.ConstID, body cidutil.ExprID, univs []univ.Level) (Value, error) {
	b, ok := m.store.Expr(body)
	if !ok {
		return nil, cacheMiss("definition body", id, store.ErrNotFound)
	}
	return m.Eval(b, Env{Univs: univs})
}

// applyConst applies one more argument to a neutral constant application.
// Only recursors reduce (iota); every other constant accumulates the spine.
func (m *Machine) applyConst(id cidutil.ConstID, univs []univ.Level, arg *Thunk, args []*Thunk) (Value, error) {
	c, ok := m.store.Const(id)
	if !ok {
		return nil, cacheMiss("constant", id, store.ErrNotFound)
	}
	switch v := c.(type) {
	case *decl.Recursor:
		majorIdx := v.Params + v.Motives + v.Minors + v.Indices
		if len(args) != majorIdx {
			break
		}
		// arg is the major premise.
		major, err := m.Force(arg)
		if err != nil {
			return nil, err
		}
		app, ok := major.(*VApp)
		if !ok {
			break
		}
		head, ok := app.Head.(*ConstHead)
		if !ok {
			// Stuck elimination, e.g. recursion on a free variable.
			break
		}
		hc, ok := m.store.Const(head.Ref)
		if !ok {
			return nil, cacheMiss("major premise head", head.Ref, store.ErrNotFound)
		}
		if _, ok := hc.(*decl.Constructor); !ok {
			break
		}
		rule, ok := ruleFor(v, head.Ref)
		if !ok {
			// Every constructor of the recursor's inductive has a rule,
			// established when the recursor constant was built.
			return nil, constError(KindInternal, "recursor has no rule for constructor", id)
		}
		rhs, ok := m.store.Expr(rule.RHS)
		if !ok {
			return nil, cacheMiss("recursor rule body", id, store.ErrNotFound)
		}
		if rule.Fields > len(app.Args) || v.Indices > len(args) {
			return nil, constError(KindInternal, "recursor spine shorter than its rule expects", id)
		}
		// Indices carry no information the rule body needs; drop them. The
		// rule environment is the selected constructor fields followed by
		// the remaining recursor arguments.
		vars := make([]*Thunk, 0, rule.Fields+len(args)-v.Indices)
		vars = append(vars, app.Args[:rule.Fields]...)
		vars = append(vars, args[v.Indices:]...)
		return m.Eval(rhs, Env{Vars: vars, Univs: univs})

	case *decl.Quotient:
		if v.Kind == decl.QuotLift || v.Kind == decl.QuotInd {
			return nil, constError(KindUnimplemented, "quotient reduction is not implemented", id)
		}
	}
	return &VApp{Head: &ConstHead{Ref: id, Levels: univs}, Args: prepend(arg, args)}, nil
}

// ruleFor matches rules by the constructor's anon identifier: structural
// identity, so renamed constructors still reduce.
func ruleFor(r *decl.Recursor, ctor cidutil.ConstID) (decl.Rule, bool) {
	for _, rule := range r.Rules {
		if rule.Ctor.Anon == ctor.Anon {
			return rule, true
		}
	}
	return decl.Rule{}, false
}

func prepend(t *Thunk, ts []*Thunk) []*Thunk {
	out := make([]*Thunk, 0, len(ts)+1)
	out = append(out, t)
	out = append(out, ts...)
	return out
}
