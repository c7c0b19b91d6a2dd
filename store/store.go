// Package store implements the content-addressed store for kernel payloads:
// a process-wide cache mapping content identifiers to decoded payloads, with
// insert-or-return-existing semantics, plus the byte-level CAS interface and
// backends used to persist the canonical encodings.
//
// Put is the single path by which a constant or expression becomes
// addressable: it canonically encodes every payload the entity decomposes
// into, hashes each encoding into a CID, and inserts under that CID if
// absent. Identical content always yields the identical identifier.
package store

import (
	"sync"

	"github.com/ipfs/go-cid"

	"xdao.co/cadl/canon"
	"xdao.co/cadl/cidutil"
	"xdao.co/cadl/decl"
	"xdao.co/cadl/expr"
)

// Store is the decoded-payload cache, keyed by CID per payload family.
//
// An optional CAS receives the canonical bytes of every newly inserted
// payload, making the content-addressed graph persistent or transportable.
// All methods are safe for concurrent use; insertion is atomic
// check-then-insert keyed by content hash.
type Store struct {
	mu  sync.RWMutex
	cas CAS

	constAnon map[cid.Cid]decl.Anon
	constMeta map[cid.Cid]decl.Meta
	consts    map[cidutil.ConstID]decl.Const

	exprAnon map[cid.Cid]expr.Anon
	exprMeta map[cid.Cid]expr.Meta
	exprs    map[cidutil.ExprID]expr.Expr
}

// New constructs an empty in-memory store.
func New() *Store { return NewPersistent(nil) }

// NewPersistent constructs a store that writes canonical payload bytes
// through to cas. A nil cas disables persistence.
func NewPersistent(cas CAS) *Store {
	return &Store{
		cas:       cas,
		constAnon: make(map[cid.Cid]decl.Anon),
		constMeta: make(map[cid.Cid]decl.Meta),
		consts:    make(map[cidutil.ConstID]decl.Const),
		exprAnon:  make(map[cid.Cid]expr.Anon),
		exprMeta:  make(map[cid.Cid]expr.Meta),
		exprs:     make(map[cidutil.ExprID]expr.Expr),
	}
}

// PutExpr stores an expression tree, node by node, and returns its
// identifier. Idempotent: equal content yields the identical ExprID and no
// duplicate entries.
func (s *Store) PutExpr(e expr.Expr) (cidutil.ExprID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visitExpr(e, s.insertExprNode)
}

// PutConst stores a constant's anon and meta projections and returns the
// resulting identifier pair. The constant's sub-expressions must have been
// stored beforehand (they are referenced by ExprID).
func (s *Store) PutConst(c decl.Const) (cidutil.ConstID, error) {
	anon, meta := decl.Project(c)
	if anon == nil || meta == nil {
		return cidutil.ConstID{}, ErrUnimplemented
	}
	anonBytes, err := canon.Marshal(anon)
	if err != nil {
		return cidutil.ConstID{}, err
	}
	metaBytes, err := canon.Marshal(meta)
	if err != nil {
		return cidutil.ConstID{}, err
	}
	anonID, err := cidutil.CIDv1JSONSHA256CID(anonBytes)
	if err != nil {
		return cidutil.ConstID{}, err
	}
	metaID, err := cidutil.CIDv1JSONSHA256CID(metaBytes)
	if err != nil {
		return cidutil.ConstID{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.constAnon[anonID]; !ok {
		if err := s.persist(anonID, anonBytes); err != nil {
			return cidutil.ConstID{}, err
		}
		s.constAnon[anonID] = anon
	}
	if _, ok := s.constMeta[metaID]; !ok {
		if err := s.persist(metaID, metaBytes); err != nil {
			return cidutil.ConstID{}, err
		}
		s.constMeta[metaID] = meta
	}
	id := cidutil.ConstID{Anon: anonID, Meta: metaID}
	if _, ok := s.consts[id]; !ok {
		s.consts[id] = c
	}
	return id, nil
}

// Const returns the decoded constant stored under id.
func (s *Store) Const(id cidutil.ConstID) (decl.Const, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.consts[id]
	return c, ok
}

// Expr returns the decoded expression stored under id.
func (s *Store) Expr(id cidutil.ExprID) (expr.Expr, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.exprs[id]
	return e, ok
}

// ConstAnon returns the decoded anon projection stored under id.
func (s *Store) ConstAnon(id cid.Cid) (decl.Anon, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.constAnon[id]
	return a, ok
}

// ConstMeta returns the decoded meta projection stored under id.
func (s *Store) ConstMeta(id cid.Cid) (decl.Meta, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.constMeta[id]
	return m, ok
}

// ExprAnon returns the decoded expression anon payload stored under id.
func (s *Store) ExprAnon(id cid.Cid) (expr.Anon, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.exprAnon[id]
	return a, ok
}

// ExprMeta returns the decoded expression meta payload stored under id.
func (s *Store) ExprMeta(id cid.Cid) (expr.Meta, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.exprMeta[id]
	return m, ok
}

// Counts reports the number of entries per payload family, in the order
// const-anon, const-meta, const, expr-anon, expr-meta, expr.
func (s *Store) Counts() [6]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return [6]int{
		len(s.constAnon), len(s.constMeta), len(s.consts),
		len(s.exprAnon), len(s.exprMeta), len(s.exprs),
	}
}

// Closure returns every payload CID reachable from the given constant:
// its own projections, all referenced expression nodes, and transitively
// every constant those expressions mention. A reference that cannot be
// resolved yields a MissingError naming the absent payload.
func (s *Store) Closure(id cidutil.ConstID) ([]cid.Cid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []cid.Cid
	seenCID := make(map[cid.Cid]bool)
	add := func(c cid.Cid) {
		if !seenCID[c] {
			seenCID[c] = true
			out = append(out, c)
		}
	}
	seenConst := make(map[cidutil.ConstID]bool)
	seenExpr := make(map[cidutil.ExprID]bool)

	var walkConst func(cidutil.ConstID) error
	var walkExpr func(cidutil.ExprID) error

	walkExpr = func(eid cidutil.ExprID) error {
		if seenExpr[eid] {
			return nil
		}
		seenExpr[eid] = true
		e, ok := s.exprs[eid]
		if !ok {
			return missing("expr", eid.Anon)
		}
		var refs []cidutil.ConstID
		_, err := s.visitExpr(e, func(node expr.Expr, _ expr.Anon, _ expr.Meta, _, _ []byte, nid cidutil.ExprID) error {
			add(nid.Anon)
			add(nid.Meta)
			if c, ok := node.(*expr.Const); ok {
				refs = append(refs, c.Ref)
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, ref := range refs {
			if err := walkConst(ref); err != nil {
				return err
			}
		}
		return nil
	}

	walkConst = func(cur cidutil.ConstID) error {
		if seenConst[cur] {
			return nil
		}
		seenConst[cur] = true
		c, ok := s.consts[cur]
		if !ok {
			return missing("const", cur.Anon)
		}
		add(cur.Anon)
		add(cur.Meta)
		exprIDs, constIDs := constRefs(c)
		for _, eid := range exprIDs {
			if err := walkExpr(eid); err != nil {
				return err
			}
		}
		for _, ref := range constIDs {
			if err := walkConst(ref); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walkConst(id); err != nil {
		return nil, err
	}
	return out, nil
}

func constRefs(c decl.Const) ([]cidutil.ExprID, []cidutil.ConstID) {
	switch v := c.(type) {
	case *decl.Axiom:
		return []cidutil.ExprID{v.Type}, nil
	case *decl.Theorem:
		return []cidutil.ExprID{v.Type, v.Body}, nil
	case *decl.Opaque:
		return []cidutil.ExprID{v.Type, v.Body}, nil
	case *decl.Definition:
		return []cidutil.ExprID{v.Type, v.Body}, nil
	case *decl.Inductive:
		exprs := []cidutil.ExprID{v.Type}
		for _, ct := range v.Ctors {
			exprs = append(exprs, ct.Type)
		}
		return exprs, nil
	case *decl.Constructor:
		return []cidutil.ExprID{v.Type}, []cidutil.ConstID{v.Ind}
	case *decl.Recursor:
		exprs := []cidutil.ExprID{v.Type}
		consts := []cidutil.ConstID{v.Ind}
		for _, r := range v.Rules {
			exprs = append(exprs, r.RHS)
			consts = append(consts, r.Ctor)
		}
		return exprs, consts
	case *decl.Quotient:
		return nil, nil
	}
	return nil, nil
}

type exprVisit func(node expr.Expr, anon expr.Anon, meta expr.Meta, anonBytes, metaBytes []byte, id cidutil.ExprID) error

// visitExpr recomputes the anon/meta identifier of every node in e,
// children first, invoking fn once per node. Determinism of the canonical
// encoding makes re-walking equivalent to the original insertion walk.
func (s *Store) visitExpr(e expr.Expr, fn exprVisit) (cidutil.ExprID, error) {
	var anon expr.Anon
	var meta expr.Meta

	switch n := e.(type) {
	case *expr.Var:
		anon, meta = &expr.VarAnon{Idx: n.Idx}, &expr.VarMeta{}
	case *expr.Sort:
		anon, meta = &expr.SortAnon{Level: n.Level}, &expr.SortMeta{}
	case *expr.Const:
		anon = &expr.ConstAnon{Ref: n.Ref.Anon, Levels: n.Levels}
		meta = &expr.ConstMeta{Ref: n.Ref.Meta}
	case *expr.App:
		fnID, err := s.visitExpr(n.Fn, fn)
		if err != nil {
			return cidutil.ExprID{}, err
		}
		argID, err := s.visitExpr(n.Arg, fn)
		if err != nil {
			return cidutil.ExprID{}, err
		}
		anon = &expr.AppAnon{Fn: fnID.Anon, Arg: argID.Anon}
		meta = &expr.AppMeta{Fn: fnID.Meta, Arg: argID.Meta}
	case *expr.Lam:
		typID, err := s.visitExpr(n.Type, fn)
		if err != nil {
			return cidutil.ExprID{}, err
		}
		bodyID, err := s.visitExpr(n.Body, fn)
		if err != nil {
			return cidutil.ExprID{}, err
		}
		anon = &expr.LamAnon{Info: n.Info, Type: typID.Anon, Body: bodyID.Anon}
		meta = &expr.LamMeta{Name: n.Name, Type: typID.Meta, Body: bodyID.Meta}
	case *expr.Pi:
		domID, err := s.visitExpr(n.Dom, fn)
		if err != nil {
			return cidutil.ExprID{}, err
		}
		codID, err := s.visitExpr(n.Cod, fn)
		if err != nil {
			return cidutil.ExprID{}, err
		}
		anon = &expr.PiAnon{Info: n.Info, Dom: domID.Anon, Cod: codID.Anon}
		meta = &expr.PiMeta{Name: n.Name, Dom: domID.Meta, Cod: codID.Meta}
	case *expr.Let:
		typID, err := s.visitExpr(n.Type, fn)
		if err != nil {
			return cidutil.ExprID{}, err
		}
		valID, err := s.visitExpr(n.Value, fn)
		if err != nil {
			return cidutil.ExprID{}, err
		}
		bodyID, err := s.visitExpr(n.Body, fn)
		if err != nil {
			return cidutil.ExprID{}, err
		}
		anon = &expr.LetAnon{Type: typID.Anon, Value: valID.Anon, Body: bodyID.Anon}
		meta = &expr.LetMeta{Name: n.Name, Type: typID.Meta, Value: valID.Meta, Body: bodyID.Meta}
	case *expr.Lit:
		anon, meta = &expr.LitAnon{Value: n.Value}, &expr.LitMeta{}
	case *expr.LitType:
		anon, meta = &expr.LitTypeAnon{Kind: n.Kind}, &expr.LitTypeMeta{}
	case *expr.Fix:
		bodyID, err := s.visitExpr(n.Body, fn)
		if err != nil {
			return cidutil.ExprID{}, err
		}
		anon, meta = &expr.FixAnon{Body: bodyID.Anon}, &expr.FixMeta{Body: bodyID.Meta}
	case *expr.Proj:
		// Tag 10 is reserved; projections have no encoding yet.
		return cidutil.ExprID{}, ErrUnimplemented
	default:
		return cidutil.ExprID{}, ErrUnimplemented
	}

	anonBytes, err := canon.Marshal(anon)
	if err != nil {
		return cidutil.ExprID{}, err
	}
	metaBytes, err := canon.Marshal(meta)
	if err != nil {
		return cidutil.ExprID{}, err
	}
	anonID, err := cidutil.CIDv1JSONSHA256CID(anonBytes)
	if err != nil {
		return cidutil.ExprID{}, err
	}
	metaID, err := cidutil.CIDv1JSONSHA256CID(metaBytes)
	if err != nil {
		return cidutil.ExprID{}, err
	}
	id := cidutil.ExprID{Anon: anonID, Meta: metaID}
	if err := fn(e, anon, meta, anonBytes, metaBytes, id); err != nil {
		return cidutil.ExprID{}, err
	}
	return id, nil
}

func (s *Store) insertExprNode(node expr.Expr, anon expr.Anon, meta expr.Meta, anonBytes, metaBytes []byte, id cidutil.ExprID) error {
	if _, ok := s.exprAnon[id.Anon]; !ok {
		if err := s.persist(id.Anon, anonBytes); err != nil {
			return err
		}
		s.exprAnon[id.Anon] = anon
	}
	if _, ok := s.exprMeta[id.Meta]; !ok {
		if err := s.persist(id.Meta, metaBytes); err != nil {
			return err
		}
		s.exprMeta[id.Meta] = meta
	}
	if _, ok := s.exprs[id]; !ok {
		s.exprs[id] = node
	}
	return nil
}

func (s *Store) persist(id cid.Cid, b []byte) error {
	if s.cas == nil {
		return nil
	}
	got, err := s.cas.Put(b)
	if err != nil {
		return err
	}
	if got != id {
		return ErrCIDMismatch
	}
	return nil
}
