package decl

import "github.com/ipfs/go-cid"

// Constant payload tag table, stable across anon and meta:
// 0 Axiom, 1 Theorem, 2 Opaque, 3 Definition, 4 Inductive, 5 Constructor,
// 6 Recursor, 7 Quotient.
//
// Anon payloads carry structure only — counts, sub-identifiers, flags,
// never a name. Type checking and reduction must only ever depend on
// anon-reachable content.

// Anon is the structural projection of a constant.
type Anon interface{ Form() []any }

// Meta is the display projection of a constant.
type Meta interface{ Form() []any }

type AxiomAnon struct {
	Levels int
	Type   cid.Cid
	Safe   bool
}

type TheoremAnon struct {
	Levels int
	Type   cid.Cid
	Body   cid.Cid
}

type OpaqueAnon struct {
	Levels int
	Type   cid.Cid
	Body   cid.Cid
	Safe   bool
}

type DefinitionAnon struct {
	Levels int
	Type   cid.Cid
	Body   cid.Cid
	Safety DefSafety
}

type InductiveAnon struct {
	Levels    int
	Type      cid.Cid
	Params    int
	Indices   int
	Ctors     []cid.Cid
	Recursive bool
	Safe      bool
	Reflexive bool
	Nested    bool
}

type ConstructorAnon struct {
	Levels int
	Ind    cid.Cid
	Type   cid.Cid
	Params int
	Fields int
	Safe   bool
}

type RuleAnon struct {
	Ctor   cid.Cid
	Fields int
	RHS    cid.Cid
}

type RecursorAnon struct {
	Levels  int
	Ind     cid.Cid
	Type    cid.Cid
	Params  int
	Indices int
	Motives int
	Minors  int
	Rules   []RuleAnon
	UsesK   bool
	Safe    bool
}

type QuotientAnon struct{ Kind QuotKind }

func (a *AxiomAnon) Form() []any {
	return []any{0, a.Levels, a.Type.String(), a.Safe}
}
func (a *TheoremAnon) Form() []any {
	return []any{1, a.Levels, a.Type.String(), a.Body.String()}
}
func (a *OpaqueAnon) Form() []any {
	return []any{2, a.Levels, a.Type.String(), a.Body.String(), a.Safe}
}
func (a *DefinitionAnon) Form() []any {
	return []any{3, a.Levels, a.Type.String(), a.Body.String(), int(a.Safety)}
}
func (a *InductiveAnon) Form() []any {
	ctors := make([]any, len(a.Ctors))
	for i, c := range a.Ctors {
		ctors[i] = c.String()
	}
	return []any{4, a.Levels, a.Type.String(), a.Params, a.Indices, ctors,
		a.Recursive, a.Safe, a.Reflexive, a.Nested}
}
func (a *ConstructorAnon) Form() []any {
	return []any{5, a.Levels, a.Ind.String(), a.Type.String(), a.Params, a.Fields, a.Safe}
}
func (a *RecursorAnon) Form() []any {
	rules := make([]any, len(a.Rules))
	for i, r := range a.Rules {
		rules[i] = []any{r.Ctor.String(), r.Fields, r.RHS.String()}
	}
	return []any{6, a.Levels, a.Ind.String(), a.Type.String(), a.Params,
		a.Indices, a.Motives, a.Minors, rules, a.UsesK, a.Safe}
}
func (a *QuotientAnon) Form() []any { return []any{7, int(a.Kind)} }

type AxiomMeta struct {
	Name   string
	Levels []string
	Type   cid.Cid
}

type TheoremMeta struct {
	Name   string
	Levels []string
	Type   cid.Cid
	Body   cid.Cid
}

type OpaqueMeta struct {
	Name   string
	Levels []string
	Type   cid.Cid
	Body   cid.Cid
}

type DefinitionMeta struct {
	Name   string
	Levels []string
	Type   cid.Cid
	Body   cid.Cid
}

type CtorMeta struct {
	Name string
	Type cid.Cid
}

type InductiveMeta struct {
	Name   string
	Levels []string
	Type   cid.Cid
	Ctors  []CtorMeta
}

type ConstructorMeta struct {
	Name   string
	Levels []string
	Ind    cid.Cid
	Type   cid.Cid
}

type RuleMeta struct {
	Ctor cid.Cid
	RHS  cid.Cid
}

type RecursorMeta struct {
	Levels []string
	Ind    cid.Cid
	Type   cid.Cid
	Rules  []RuleMeta
}

type QuotientMeta struct{}

func levelNames(names []string) []any {
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

func (m *AxiomMeta) Form() []any {
	return []any{0, m.Name, levelNames(m.Levels), m.Type.String()}
}
func (m *TheoremMeta) Form() []any {
	return []any{1, m.Name, levelNames(m.Levels), m.Type.String(), m.Body.String()}
}
func (m *OpaqueMeta) Form() []any {
	return []any{2, m.Name, levelNames(m.Levels), m.Type.String(), m.Body.String()}
}
func (m *DefinitionMeta) Form() []any {
	return []any{3, m.Name, levelNames(m.Levels), m.Type.String(), m.Body.String()}
}
func (m *InductiveMeta) Form() []any {
	ctors := make([]any, len(m.Ctors))
	for i, c := range m.Ctors {
		ctors[i] = []any{c.Name, c.Type.String()}
	}
	return []any{4, m.Name, levelNames(m.Levels), m.Type.String(), ctors}
}
func (m *ConstructorMeta) Form() []any {
	return []any{5, m.Name, levelNames(m.Levels), m.Ind.String(), m.Type.String()}
}
func (m *RecursorMeta) Form() []any {
	rules := make([]any, len(m.Rules))
	for i, r := range m.Rules {
		rules[i] = []any{r.Ctor.String(), r.RHS.String()}
	}
	return []any{6, levelNames(m.Levels), m.Ind.String(), m.Type.String(), rules}
}
func (m *QuotientMeta) Form() []any { return []any{7} }

// Project splits a constant into its anon and meta payloads. It is pure:
// every sub-entity is already addressed by identifier, so the projections
// only rearrange identifiers, counts, flags and names.
func Project(c Const) (Anon, Meta) {
	switch v := c.(type) {
	case *Axiom:
		return &AxiomAnon{Levels: len(v.Levels), Type: v.Type.Anon, Safe: v.Safe},
			&AxiomMeta{Name: v.Name, Levels: v.Levels, Type: v.Type.Meta}
	case *Theorem:
		return &TheoremAnon{Levels: len(v.Levels), Type: v.Type.Anon, Body: v.Body.Anon},
			&TheoremMeta{Name: v.Name, Levels: v.Levels, Type: v.Type.Meta, Body: v.Body.Meta}
	case *Opaque:
		return &OpaqueAnon{Levels: len(v.Levels), Type: v.Type.Anon, Body: v.Body.Anon, Safe: v.Safe},
			&OpaqueMeta{Name: v.Name, Levels: v.Levels, Type: v.Type.Meta, Body: v.Body.Meta}
	case *Definition:
		return &DefinitionAnon{Levels: len(v.Levels), Type: v.Type.Anon, Body: v.Body.Anon, Safety: v.Safety},
			&DefinitionMeta{Name: v.Name, Levels: v.Levels, Type: v.Type.Meta, Body: v.Body.Meta}
	case *Inductive:
		ctorsAnon := make([]cid.Cid, len(v.Ctors))
		ctorsMeta := make([]CtorMeta, len(v.Ctors))
		for i, ct := range v.Ctors {
			ctorsAnon[i] = ct.Type.Anon
			ctorsMeta[i] = CtorMeta{Name: ct.Name, Type: ct.Type.Meta}
		}
		return &InductiveAnon{
				Levels: len(v.Levels), Type: v.Type.Anon,
				Params: v.Params, Indices: v.Indices, Ctors: ctorsAnon,
				Recursive: v.Recursive, Safe: v.Safe,
				Reflexive: v.Reflexive, Nested: v.Nested,
			},
			&InductiveMeta{Name: v.Name, Levels: v.Levels, Type: v.Type.Meta, Ctors: ctorsMeta}
	case *Constructor:
		return &ConstructorAnon{
				Levels: len(v.Levels), Ind: v.Ind.Anon, Type: v.Type.Anon,
				Params: v.Params, Fields: v.Fields, Safe: v.Safe,
			},
			&ConstructorMeta{Name: v.Name, Levels: v.Levels, Ind: v.Ind.Meta, Type: v.Type.Meta}
	case *Recursor:
		rulesAnon := make([]RuleAnon, len(v.Rules))
		rulesMeta := make([]RuleMeta, len(v.Rules))
		for i, r := range v.Rules {
			rulesAnon[i] = RuleAnon{Ctor: r.Ctor.Anon, Fields: r.Fields, RHS: r.RHS.Anon}
			rulesMeta[i] = RuleMeta{Ctor: r.Ctor.Meta, RHS: r.RHS.Meta}
		}
		return &RecursorAnon{
				Levels: len(v.Levels), Ind: v.Ind.Anon, Type: v.Type.Anon,
				Params: v.Params, Indices: v.Indices,
				Motives: v.Motives, Minors: v.Minors,
				Rules: rulesAnon, UsesK: v.UsesK, Safe: v.Safe,
			},
			&RecursorMeta{Levels: v.Levels, Ind: v.Ind.Meta, Type: v.Type.Meta, Rules: rulesMeta}
	case *Quotient:
		return &QuotientAnon{Kind: v.Kind}, &QuotientMeta{}
	}
	return nil, nil
}
