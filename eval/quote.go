package eval

import (
	"xdao.co/cadl/expr"
	"xdao.co/cadl/univ"
)

// Quote reads a weak-head value back into an expression, recursively
// normalizing under binders. Going under a binder introduces a fresh free
// variable at index 0 and shifts the free variables already captured in the
// closure environment up by one, so the result is well-scoped without a
// separate renaming pass.
//
// Binder domain types are erased during evaluation; read-back fills lambda
// binder annotations with Sort 0. Quote output is therefore canonical up to
// those annotations, which definitional equality ignores.
func (m *Machine) Quote(v Value) (expr.Expr, error) {
	switch w := v.(type) {
	case *VSort:
		return &expr.Sort{Level: w.Level}, nil

	case *VLit:
		return &expr.Lit{Value: w.Value}, nil

	case *VLitType:
		return &expr.LitType{Kind: w.Kind}, nil

	case *VApp:
		head, err := quoteNeutral(w.Head)
		if err != nil {
			return nil, err
		}
		// Args[0] is the newest argument; applications nest oldest-first.
		out := head
		for i := len(w.Args) - 1; i >= 0; i-- {
			av, err := m.Force(w.Args[i])
			if err != nil {
				return nil, err
			}
			ae, err := m.Quote(av)
			if err != nil {
				return nil, err
			}
			out = &expr.App{Fn: out, Arg: ae}
		}
		return out, nil

	case *VLam:
		bv, err := m.Eval(w.Body, underBinder(w.Env))
		if err != nil {
			return nil, err
		}
		body, err := m.Quote(bv)
		if err != nil {
			return nil, err
		}
		return &expr.Lam{Info: w.Info, Type: &expr.Sort{Level: univ.Zero{}}, Body: body}, nil

	case *VPi:
		dv, err := m.Force(w.Dom)
		if err != nil {
			return nil, err
		}
		dom, err := m.Quote(dv)
		if err != nil {
			return nil, err
		}
		cv, err := m.Eval(w.Cod, underBinder(w.Env))
		if err != nil {
			return nil, err
		}
		cod, err := m.Quote(cv)
		if err != nil {
			return nil, err
		}
		return &expr.Pi{Info: w.Info, Dom: dom, Cod: cod}, nil
	}
	return nil, newError(KindInternal, "unknown value form")
}

// Normalize fully reduces a closed expression: evaluate to weak-head form,
// then read back through Quote.
func (m *Machine) Normalize(e expr.Expr) (expr.Expr, error) {
	v, err := m.Eval(e, Env{})
	if err != nil {
		return nil, err
	}
	return m.Quote(v)
}

func quoteNeutral(n Neutral) (expr.Expr, error) {
	switch h := n.(type) {
	case *FreeVar:
		return &expr.Var{Idx: h.Idx}, nil
	case *ConstHead:
		return &expr.Const{Ref: h.Ref, Levels: h.Levels}, nil
	}
	return nil, newError(KindInternal, "unknown neutral head")
}

// underBinder prepares a closure environment for evaluation one binder
// deeper: existing free variables shift up and a fresh variable takes
// index 0.
func underBinder(env Env) Env {
	return shiftEnv(env, 1).push(Resolved(freeVar(0)))
}

func freeVar(idx int) *VApp {
	return &VApp{Head: &FreeVar{Idx: idx}}
}

func shiftEnv(env Env, by int) Env {
	if len(env.Vars) == 0 {
		return env
	}
	vars := make([]*Thunk, len(env.Vars))
	for i, t := range env.Vars {
		vars[i] = shiftThunk(t, by)
	}
	return Env{Vars: vars, Univs: env.Univs}
}

func shiftThunk(t *Thunk, by int) *Thunk {
	if t.val != nil {
		return Resolved(shiftValue(t.val, by))
	}
	return &Thunk{expr: t.expr, env: shiftEnv(t.env, by)}
}

// shiftValue adjusts every free-variable index in v by the given amount.
// Constant heads, sorts and literals carry no variables and pass through.
func shiftValue(v Value, by int) Value {
	switch w := v.(type) {
	case *VApp:
		head := w.Head
		if fv, ok := head.(*FreeVar); ok {
			head = &FreeVar{Idx: fv.Idx + by}
		}
		if len(w.Args) == 0 && head == w.Head {
			return w
		}
		args := make([]*Thunk, len(w.Args))
		for i, t := range w.Args {
			args[i] = shiftThunk(t, by)
		}
		return &VApp{Head: head, Args: args}
	case *VLam:
		return &VLam{Info: w.Info, Body: w.Body, Env: shiftEnv(w.Env, by)}
	case *VPi:
		return &VPi{Info: w.Info, Dom: shiftThunk(w.Dom, by), Cod: w.Cod, Env: shiftEnv(w.Env, by)}
	}
	return v
}

// DefEq decides definitional equality of two weak-head values, forcing
// sub-terms as needed. Binder names and erased type annotations do not
// participate; eta-equality of functions does.
func (m *Machine) DefEq(a, b Value) (bool, error) {
	switch x := a.(type) {
	case *VSort:
		y, ok := b.(*VSort)
		if !ok {
			return false, nil
		}
		return univ.Equal(x.Level, y.Level), nil

	case *VLit:
		y, ok := b.(*VLit)
		if !ok {
			return false, nil
		}
		return x.Value == y.Value, nil

	case *VLitType:
		y, ok := b.(*VLitType)
		if !ok {
			return false, nil
		}
		return x.Kind == y.Kind, nil

	case *VLam:
		switch y := b.(type) {
		case *VLam:
			return m.defEqUnder(x.Body, x.Env, y.Body, y.Env)
		default:
			return m.etaEq(x, b)
		}

	case *VPi:
		y, ok := b.(*VPi)
		if !ok {
			return false, nil
		}
		xd, err := m.Force(x.Dom)
		if err != nil {
			return false, err
		}
		yd, err := m.Force(y.Dom)
		if err != nil {
			return false, err
		}
		ok, err = m.DefEq(xd, yd)
		if err != nil || !ok {
			return ok, err
		}
		return m.defEqUnder(x.Cod, x.Env, y.Cod, y.Env)

	case *VApp:
		if y, ok := b.(*VLam); ok {
			return m.etaEq(y, a)
		}
		y, ok := b.(*VApp)
		if !ok {
			return false, nil
		}
		return m.defEqSpine(x, y)
	}
	return false, newError(KindInternal, "unknown value form")
}

func (m *Machine) defEqUnder(ab expr.Expr, ae Env, bb expr.Expr, be Env) (bool, error) {
	av, err := m.Eval(ab, underBinder(ae))
	if err != nil {
		return false, err
	}
	bv, err := m.Eval(bb, underBinder(be))
	if err != nil {
		return false, err
	}
	return m.DefEq(av, bv)
}

// etaEq compares a lambda against a non-lambda by applying both to a fresh
// free variable. The non-lambda side must be neutral for the comparison to
// make sense; anything else is simply unequal.
func (m *Machine) etaEq(lam *VLam, other Value) (bool, error) {
	app, ok := other.(*VApp)
	if !ok {
		return false, nil
	}
	av, err := m.Eval(lam.Body, underBinder(lam.Env))
	if err != nil {
		return false, err
	}
	shifted := shiftValue(app, 1).(*VApp)
	bv := &VApp{Head: shifted.Head, Args: prepend(Resolved(freeVar(0)), shifted.Args)}
	return m.DefEq(av, bv)
}

func (m *Machine) defEqSpine(a, b *VApp) (bool, error) {
	if len(a.Args) != len(b.Args) {
		return false, nil
	}
	if !neutralEq(a.Head, b.Head) {
		return false, nil
	}
	for i := range a.Args {
		av, err := m.Force(a.Args[i])
		if err != nil {
			return false, err
		}
		bv, err := m.Force(b.Args[i])
		if err != nil {
			return false, err
		}
		ok, err := m.DefEq(av, bv)
		if err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}

// neutralEq compares heads structurally: free variables by index, constants
// by anon identifier and instantiated levels. Meta identifiers are ignored,
// so renaming a constant does not break equality.
func neutralEq(a, b Neutral) bool {
	switch x := a.(type) {
	case *FreeVar:
		y, ok := b.(*FreeVar)
		return ok && x.Idx == y.Idx
	case *ConstHead:
		y, ok := b.(*ConstHead)
		if !ok || x.Ref.Anon != y.Ref.Anon {
			return false
		}
		if len(x.Levels) != len(y.Levels) {
			return false
		}
		for i := range x.Levels {
			if !univ.Equal(x.Levels[i], y.Levels[i]) {
				return false
			}
		}
		return true
	}
	return false
}
