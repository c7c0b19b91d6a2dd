// Package arb builds random well-scoped terms and levels for property
// tests. Builders are deterministic in their seed, so failing cases
// reproduce from the reported seed alone.
package arb

import (
	"math/rand"

	"xdao.co/cadl/expr"
	"xdao.co/cadl/univ"
)

// Builder produces random language fragments from a fixed seed.
type Builder struct {
	rnd *rand.Rand
}

func New(seed int64) *Builder {
	return &Builder{rnd: rand.New(rand.NewSource(seed))}
}

var names = []string{"a", "b", "c", "f", "g", "x", "y", "z"}

func (b *Builder) name() string { return names[b.rnd.Intn(len(names))] }

// Level generates a level mentioning parameters below nparams, with
// structure depth at most depth.
func (b *Builder) Level(nparams, depth int) univ.Level {
	if depth <= 0 {
		if nparams > 0 && b.rnd.Intn(2) == 0 {
			return univ.Param{Idx: b.rnd.Intn(nparams)}
		}
		return univ.FromNat(uint64(b.rnd.Intn(3)))
	}
	switch b.rnd.Intn(5) {
	case 0:
		return univ.FromNat(uint64(b.rnd.Intn(3)))
	case 1:
		if nparams > 0 {
			return univ.Param{Idx: b.rnd.Intn(nparams)}
		}
		return univ.Zero{}
	case 2:
		return &univ.Succ{Of: b.Level(nparams, depth-1)}
	case 3:
		return &univ.Max{Left: b.Level(nparams, depth-1), Right: b.Level(nparams, depth-1)}
	default:
		return &univ.IMax{Left: b.Level(nparams, depth-1), Right: b.Level(nparams, depth-1)}
	}
}

// Term generates a well-scoped term over the full grammar (no constant
// references): every Var index is below ctx, binders extend the context.
// Such terms are valid store inputs but need not evaluate without error.
func (b *Builder) Term(ctx, nparams, depth int) expr.Expr {
	if depth <= 0 {
		return b.leaf(ctx, nparams)
	}
	switch b.rnd.Intn(8) {
	case 0:
		return b.leaf(ctx, nparams)
	case 1:
		return &expr.App{Fn: b.Term(ctx, nparams, depth-1), Arg: b.Term(ctx, nparams, depth-1)}
	case 2:
		return &expr.Lam{
			Name: b.name(),
			Info: b.binderInfo(),
			Type: b.Term(ctx, nparams, depth-1),
			Body: b.Term(ctx+1, nparams, depth-1),
		}
	case 3:
		return &expr.Pi{
			Name: b.name(),
			Info: b.binderInfo(),
			Dom:  b.Term(ctx, nparams, depth-1),
			Cod:  b.Term(ctx+1, nparams, depth-1),
		}
	case 4:
		return &expr.Let{
			Name:  b.name(),
			Type:  b.Term(ctx, nparams, depth-1),
			Value: b.Term(ctx, nparams, depth-1),
			Body:  b.Term(ctx+1, nparams, depth-1),
		}
	case 5:
		return &expr.Sort{Level: b.Level(nparams, 2)}
	case 6:
		return &expr.Fix{Body: b.Term(ctx+1, nparams, depth-1)}
	default:
		return b.leaf(ctx, nparams)
	}
}

// LambdaTerm generates a closed-when-ctx-is-zero pure lambda term (Var,
// Lam, App only). These always evaluate to a value or run forever, never
// into an evaluation error, so normalization properties use them together
// with a step limit.
func (b *Builder) LambdaTerm(ctx, depth int) expr.Expr {
	if depth <= 0 {
		if ctx > 0 {
			return &expr.Var{Idx: b.rnd.Intn(ctx)}
		}
		return &expr.Lam{Name: b.name(), Type: &expr.Sort{Level: univ.Zero{}}, Body: &expr.Var{Idx: 0}}
	}
	n := 3
	if ctx == 0 {
		// Var is unavailable in an empty context.
		n = 2
	}
	switch b.rnd.Intn(n) {
	case 0:
		return &expr.Lam{
			Name: b.name(),
			Type: &expr.Sort{Level: univ.Zero{}},
			Body: b.LambdaTerm(ctx+1, depth-1),
		}
	case 1:
		return &expr.App{Fn: b.LambdaTerm(ctx, depth-1), Arg: b.LambdaTerm(ctx, depth-1)}
	default:
		return &expr.Var{Idx: b.rnd.Intn(ctx)}
	}
}

func (b *Builder) leaf(ctx, nparams int) expr.Expr {
	if ctx > 0 && b.rnd.Intn(2) == 0 {
		return &expr.Var{Idx: b.rnd.Intn(ctx)}
	}
	switch b.rnd.Intn(4) {
	case 0:
		return &expr.Sort{Level: b.Level(nparams, 1)}
	case 1:
		return &expr.Lit{Value: expr.Literal{Kind: expr.LitNat, Nat: uint64(b.rnd.Intn(1 << 20))}}
	case 2:
		return &expr.Lit{Value: expr.Literal{Kind: expr.LitStr, Str: b.name()}}
	default:
		return &expr.LitType{Kind: expr.LitKind(b.rnd.Intn(2))}
	}
}

func (b *Builder) binderInfo() expr.BinderInfo {
	return expr.BinderInfo(b.rnd.Intn(4))
}
