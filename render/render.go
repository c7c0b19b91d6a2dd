// Package render pretty-prints stored declarations and terms in a surface
// syntax close to the declaration language. Every referenced sub-term and
// sub-constant is resolved through the store; an absent entry surfaces as a
// MissingError, never as a partial or silently truncated string.
//
// Output is for humans. It is not a canonical form and round-tripping it is
// not supported.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"xdao.co/cadl/cidutil"
	"xdao.co/cadl/decl"
	"xdao.co/cadl/expr"
	"xdao.co/cadl/store"
	"xdao.co/cadl/univ"
)

// Constant renders the declaration identified by id. When showSafety is set,
// unsafe and partial declarations carry an explicit prefix.
func Constant(s *store.Store, id cidutil.ConstID, showSafety bool) (string, error) {
	c, ok := s.Const(id)
	if !ok {
		return "", missing("constant", id)
	}
	r := renderer{store: s, showSafety: showSafety}
	return r.constant(c)
}

type renderer struct {
	store      *store.Store
	showSafety bool
}

func (r *renderer) constant(c decl.Const) (string, error) {
	switch v := c.(type) {
	case *decl.Axiom:
		typ, err := r.expr(v.Type, v.Levels, nil)
		if err != nil {
			return "", err
		}
		return r.unsafePrefix(!v.Safe) + "axiom " + header(v.Name, v.Levels) + " : " + typ, nil

	case *decl.Theorem:
		typ, err := r.expr(v.Type, v.Levels, nil)
		if err != nil {
			return "", err
		}
		body, err := r.expr(v.Body, v.Levels, nil)
		if err != nil {
			return "", err
		}
		return "theorem " + header(v.Name, v.Levels) + " : " + typ + " := " + body, nil

	case *decl.Opaque:
		typ, err := r.expr(v.Type, v.Levels, nil)
		if err != nil {
			return "", err
		}
		body, err := r.expr(v.Body, v.Levels, nil)
		if err != nil {
			return "", err
		}
		return r.unsafePrefix(!v.Safe) + "opaque " + header(v.Name, v.Levels) + " : " + typ + " := " + body, nil

	case *decl.Definition:
		typ, err := r.expr(v.Type, v.Levels, nil)
		if err != nil {
			return "", err
		}
		body, err := r.expr(v.Body, v.Levels, nil)
		if err != nil {
			return "", err
		}
		prefix := ""
		if r.showSafety {
			switch v.Safety {
			case decl.DefUnsafe:
				prefix = "unsafe "
			case decl.DefPartial:
				prefix = "partial "
			}
		}
		return prefix + "def " + header(v.Name, v.Levels) + " : " + typ + " := " + body, nil

	case *decl.Inductive:
		return r.inductive(v)

	case *decl.Constructor:
		typ, err := r.expr(v.Type, v.Levels, nil)
		if err != nil {
			return "", err
		}
		indName, err := r.constName(v.Ind)
		if err != nil {
			return "", err
		}
		return r.unsafePrefix(!v.Safe) + "constructor " + indName + "." + header(v.Name, v.Levels) + " : " + typ, nil

	case *decl.Recursor:
		return r.recursor(v)

	case *decl.Quotient:
		switch v.Kind {
		case decl.QuotType:
			return "quotient Quot", nil
		case decl.QuotCtor:
			return "quotient Quot.mk", nil
		case decl.QuotLift:
			return "quotient Quot.lift", nil
		case decl.QuotInd:
			return "quotient Quot.ind", nil
		}
	}
	return "", fmt.Errorf("render: unknown constant kind %T", c)
}

func (r *renderer) inductive(v *decl.Inductive) (string, error) {
	typ, err := r.expr(v.Type, v.Levels, nil)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(r.unsafePrefix(!v.Safe))
	sb.WriteString("inductive ")
	sb.WriteString(header(v.Name, v.Levels))
	sb.WriteString(" : ")
	sb.WriteString(typ)
	sb.WriteString(" where")
	for _, ct := range v.Ctors {
		ctyp, err := r.expr(ct.Type, v.Levels, nil)
		if err != nil {
			return "", err
		}
		sb.WriteString("\n| ")
		sb.WriteString(ct.Name)
		sb.WriteString(" : ")
		sb.WriteString(ctyp)
	}
	return sb.String(), nil
}

func (r *renderer) recursor(v *decl.Recursor) (string, error) {
	typ, err := r.expr(v.Type, v.Levels, nil)
	if err != nil {
		return "", err
	}
	indName, err := r.constName(v.Ind)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(r.unsafePrefix(!v.Safe))
	sb.WriteString("recursor ")
	sb.WriteString(header(indName+".rec", v.Levels))
	sb.WriteString(" : ")
	sb.WriteString(typ)
	for _, rule := range v.Rules {
		ctorName, err := r.constName(rule.Ctor)
		if err != nil {
			return "", err
		}
		rhs, err := r.expr(rule.RHS, v.Levels, nil)
		if err != nil {
			return "", err
		}
		sb.WriteString("\n| ")
		sb.WriteString(ctorName)
		sb.WriteString(" => ")
		sb.WriteString(rhs)
	}
	return sb.String(), nil
}

func (r *renderer) unsafePrefix(unsafe bool) string {
	if r.showSafety && unsafe {
		return "unsafe "
	}
	return ""
}

// header prints "name" or "name {u v}" for level-polymorphic declarations.
func header(name string, lvls []string) string {
	if name == "" {
		name = "_"
	}
	if len(lvls) == 0 {
		return name
	}
	return name + " {" + strings.Join(lvls, " ") + "}"
}

// constName resolves a constant reference for display, preferring its
// declared name and falling back to the anon identifier.
func (r *renderer) constName(id cidutil.ConstID) (string, error) {
	c, ok := r.store.Const(id)
	if !ok {
		return "", missing("constant", id)
	}
	if n := decl.NameOf(c); n != "" {
		return n, nil
	}
	return id.Anon.String(), nil
}

// Expr renders a stored expression. lvlNames are the enclosing declaration's
// level-parameter names, used for Param display.
func Expr(s *store.Store, id cidutil.ExprID, lvlNames []string) (string, error) {
	r := renderer{store: s}
	return r.expr(id, lvlNames, nil)
}

func (r *renderer) expr(id cidutil.ExprID, lvls []string, binders []string) (string, error) {
	e, ok := r.store.Expr(id)
	if !ok {
		return "", missing("expression", id)
	}
	return r.term(e, lvls, binders)
}

// term prints an in-memory expression tree. binders[0] is the innermost
// binder name, mirroring de Bruijn indexing.
func (r *renderer) term(e expr.Expr, lvls []string, binders []string) (string, error) {
	switch n := e.(type) {
	case *expr.Var:
		if n.Idx >= 0 && n.Idx < len(binders) && binders[n.Idx] != "" {
			return binders[n.Idx], nil
		}
		return "!" + strconv.Itoa(n.Idx), nil

	case *expr.Sort:
		return "Sort " + levelString(n.Level, lvls), nil

	case *expr.Const:
		name, err := r.constName(n.Ref)
		if err != nil {
			return "", err
		}
		if len(n.Levels) == 0 {
			return name, nil
		}
		parts := make([]string, len(n.Levels))
		for i, l := range n.Levels {
			parts[i] = levelString(l, lvls)
		}
		return name + ".{" + strings.Join(parts, ", ") + "}", nil

	case *expr.App:
		fn, err := r.sub(n.Fn, lvls, binders, appAtom(n.Fn))
		if err != nil {
			return "", err
		}
		arg, err := r.sub(n.Arg, lvls, binders, atom(n.Arg))
		if err != nil {
			return "", err
		}
		return fn + " " + arg, nil

	case *expr.Lam:
		name := binderName(n.Name)
		typ, err := r.term(n.Type, lvls, binders)
		if err != nil {
			return "", err
		}
		body, err := r.term(n.Body, lvls, prependName(name, binders))
		if err != nil {
			return "", err
		}
		return "fun " + withBinderInfo(name+" : "+typ, n.Info) + " => " + body, nil

	case *expr.Pi:
		dom, err := r.term(n.Dom, lvls, binders)
		if err != nil {
			return "", err
		}
		cod, err := r.term(n.Cod, lvls, prependName(binderName(n.Name), binders))
		if err != nil {
			return "", err
		}
		if n.Name == "" && n.Info == expr.BinderDefault {
			if !atom(n.Dom) {
				dom = "(" + dom + ")"
			}
			return dom + " -> " + cod, nil
		}
		return withBinderInfo(binderName(n.Name)+" : "+dom, n.Info) + " -> " + cod, nil

	case *expr.Let:
		name := binderName(n.Name)
		typ, err := r.term(n.Type, lvls, binders)
		if err != nil {
			return "", err
		}
		val, err := r.term(n.Value, lvls, binders)
		if err != nil {
			return "", err
		}
		body, err := r.term(n.Body, lvls, prependName(name, binders))
		if err != nil {
			return "", err
		}
		return "let " + name + " : " + typ + " := " + val + "; " + body, nil

	case *expr.Lit:
		if n.Value.Kind == expr.LitNat {
			return strconv.FormatUint(n.Value.Nat, 10), nil
		}
		return strconv.Quote(n.Value.Str), nil

	case *expr.LitType:
		if n.Kind == expr.LitNat {
			return "Nat", nil
		}
		return "String", nil

	case *expr.Fix:
		body, err := r.term(n.Body, lvls, prependName("_self", binders))
		if err != nil {
			return "", err
		}
		return "fix " + body, nil

	case *expr.Proj:
		of, err := r.sub(n.Of, lvls, binders, atom(n.Of))
		if err != nil {
			return "", err
		}
		return of + "." + strconv.Itoa(n.Idx), nil
	}
	return "", fmt.Errorf("render: unknown expression node %T", e)
}

func (r *renderer) sub(e expr.Expr, lvls []string, binders []string, isAtom bool) (string, error) {
	s, err := r.term(e, lvls, binders)
	if err != nil {
		return "", err
	}
	if isAtom {
		return s, nil
	}
	return "(" + s + ")", nil
}

// atom reports whether e prints without surrounding parentheses in argument
// position.
func atom(e expr.Expr) bool {
	switch n := e.(type) {
	case *expr.Var, *expr.Lit, *expr.LitType:
		return true
	case *expr.Const:
		return true
	case *expr.Proj:
		return atom(n.Of)
	}
	return false
}

// appAtom additionally keeps applications bare in function position, so
// spines print flat.
func appAtom(e expr.Expr) bool {
	if _, ok := e.(*expr.App); ok {
		return true
	}
	return atom(e)
}

func withBinderInfo(b string, info expr.BinderInfo) string {
	switch info {
	case expr.BinderImplicit:
		return "{" + b + "}"
	case expr.BinderStrictImplicit:
		return "{{" + b + "}}"
	case expr.BinderInstImplicit:
		return "[" + b + "]"
	}
	return "(" + b + ")"
}

func binderName(name string) string {
	if name == "" {
		return "_"
	}
	return name
}

func prependName(name string, binders []string) []string {
	out := make([]string, 0, len(binders)+1)
	out = append(out, name)
	out = append(out, binders...)
	return out
}

// levelString prints a level with parameter names substituted where known.
func levelString(l univ.Level, lvls []string) string {
	if n, ok := univ.AsNat(l); ok {
		return strconv.FormatUint(n, 10)
	}
	switch v := l.(type) {
	case *univ.Succ:
		return levelString(v.Of, lvls) + "+1"
	case *univ.Max:
		return "(max " + levelString(v.Left, lvls) + " " + levelString(v.Right, lvls) + ")"
	case *univ.IMax:
		return "(imax " + levelString(v.Left, lvls) + " " + levelString(v.Right, lvls) + ")"
	case univ.Param:
		if v.Idx >= 0 && v.Idx < len(lvls) && lvls[v.Idx] != "" {
			return lvls[v.Idx]
		}
		return "u" + strconv.Itoa(v.Idx)
	}
	return "0"
}
