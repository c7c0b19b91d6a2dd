// Package univ implements the universe level algebra: substitution of
// universe-polymorphic parameters and normalization of level expressions.
//
// Parameters are positional: Param{Idx: i} refers to slot i of the enclosing
// declaration's level-parameter list. Parameter names are display data and
// live only in metadata payloads.
package univ

// Level is a universe level expression.
type Level interface {
	isLevel()
	// Form is the canonical array encoding of the level, inlined into
	// expression payloads.
	Form() []any
}

// Zero is the bottom universe (Prop).
type Zero struct{}

// Succ is the successor of a level.
type Succ struct{ Of Level }

// Max is the larger of two levels.
type Max struct{ Left, Right Level }

// IMax is the impredicative maximum: zero when the right side is zero,
// Max otherwise.
type IMax struct{ Left, Right Level }

// Param is a reference to a level parameter by position.
type Param struct{ Idx int }

func (Zero) isLevel()   {}
func (*Succ) isLevel()  {}
func (*Max) isLevel()   {}
func (*IMax) isLevel()  {}
func (Param) isLevel()  {}

func (Zero) Form() []any     { return []any{0} }
func (l *Succ) Form() []any  { return []any{1, l.Of.Form()} }
func (l *Max) Form() []any   { return []any{2, l.Left.Form(), l.Right.Form()} }
func (l *IMax) Form() []any  { return []any{3, l.Left.Form(), l.Right.Form()} }
func (l Param) Form() []any  { return []any{4, l.Idx} }

// FromNat builds the concrete level n as a Succ chain over Zero.
func FromNat(n uint64) Level {
	var l Level = Zero{}
	for i := uint64(0); i < n; i++ {
		l = &Succ{Of: l}
	}
	return l
}

// AsNat reports the concrete value of a fully reduced level, if it has one.
func AsNat(l Level) (uint64, bool) {
	var n uint64
	for {
		switch v := l.(type) {
		case Zero:
			return n, true
		case *Succ:
			n++
			l = v.Of
		default:
			return 0, false
		}
	}
}

// Equal reports structural equality of two levels.
func Equal(a, b Level) bool {
	switch x := a.(type) {
	case Zero:
		_, ok := b.(Zero)
		return ok
	case *Succ:
		y, ok := b.(*Succ)
		return ok && Equal(x.Of, y.Of)
	case *Max:
		y, ok := b.(*Max)
		return ok && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *IMax:
		y, ok := b.(*IMax)
		return ok && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case Param:
		y, ok := b.(Param)
		return ok && x.Idx == y.Idx
	}
	return false
}

// Instantiate substitutes each Param{i} with subst[i] and fully normalizes.
//
// Reduction never fails. A Param whose index falls outside subst is a caller
// contract violation (the caller owns the substitution's completeness); the
// parameter is carried through unchanged so the violation stays visible.
func Instantiate(l Level, subst []Level) Level {
	return reduce(substitute(l, subst))
}

// InstantiateAll applies Instantiate to each level in ls.
func InstantiateAll(ls []Level, subst []Level) []Level {
	if len(ls) == 0 {
		return nil
	}
	out := make([]Level, len(ls))
	for i, l := range ls {
		out[i] = Instantiate(l, subst)
	}
	return out
}

func substitute(l Level, subst []Level) Level {
	switch v := l.(type) {
	case Zero:
		return v
	case *Succ:
		return &Succ{Of: substitute(v.Of, subst)}
	case *Max:
		return &Max{Left: substitute(v.Left, subst), Right: substitute(v.Right, subst)}
	case *IMax:
		return &IMax{Left: substitute(v.Left, subst), Right: substitute(v.Right, subst)}
	case Param:
		if v.Idx >= 0 && v.Idx < len(subst) {
			return subst[v.Idx]
		}
		return v
	}
	return l
}

// reduce normalizes bottom-up: successors propagate through concrete levels,
// max picks the larger concrete side, imax resolves against a concrete or
// structurally equal right side.
func reduce(l Level) Level {
	switch v := l.(type) {
	case Zero, Param:
		return l
	case *Succ:
		return &Succ{Of: reduce(v.Of)}
	case *Max:
		return combineMax(reduce(v.Left), reduce(v.Right))
	case *IMax:
		left, right := reduce(v.Left), reduce(v.Right)
		if _, ok := right.(Zero); ok {
			return Zero{}
		}
		if _, ok := right.(*Succ); ok {
			return combineMax(left, right)
		}
		if _, ok := left.(Zero); ok {
			return right
		}
		if Equal(left, right) {
			return left
		}
		return &IMax{Left: left, Right: right}
	}
	return l
}

func combineMax(a, b Level) Level {
	if an, ok := AsNat(a); ok {
		if bn, ok2 := AsNat(b); ok2 {
			if an >= bn {
				return a
			}
			return b
		}
	}
	if _, ok := a.(Zero); ok {
		return b
	}
	if _, ok := b.(Zero); ok {
		return a
	}
	if Equal(a, b) {
		return a
	}
	return &Max{Left: a, Right: b}
}

// HasParams reports whether l still mentions any level parameter.
func HasParams(l Level) bool {
	switch v := l.(type) {
	case Zero:
		return false
	case *Succ:
		return HasParams(v.Of)
	case *Max:
		return HasParams(v.Left) || HasParams(v.Right)
	case *IMax:
		return HasParams(v.Left) || HasParams(v.Right)
	case Param:
		return true
	}
	return false
}
