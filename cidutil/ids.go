package cidutil

import "github.com/ipfs/go-cid"

// ConstID addresses a stored constant. The anon digest pins the structural
// (hash-relevant) payload, the meta digest pins the display payload. Two
// declarations differing only in chosen names share Anon but not Meta.
type ConstID struct {
	Anon cid.Cid
	Meta cid.Cid
}

// ExprID addresses a stored expression, split the same way as ConstID.
type ExprID struct {
	Anon cid.Cid
	Meta cid.Cid
}

func (id ConstID) Defined() bool { return id.Anon.Defined() && id.Meta.Defined() }

func (id ExprID) Defined() bool { return id.Anon.Defined() && id.Meta.Defined() }

func (id ConstID) String() string { return id.Anon.String() + "." + id.Meta.String() }

func (id ExprID) String() string { return id.Anon.String() + "." + id.Meta.String() }
