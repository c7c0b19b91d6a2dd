package store

import (
	"bytes"
	"sync"

	"github.com/ipfs/go-cid"

	"xdao.co/cadl/cidutil"
)

// MemoryCAS is an in-memory CAS, suitable for single-process elaboration
// pipelines and tests.
type MemoryCAS struct {
	mu   sync.RWMutex
	data map[cid.Cid][]byte
}

var _ CAS = (*MemoryCAS)(nil)

func NewMemoryCAS() *MemoryCAS {
	return &MemoryCAS{data: make(map[cid.Cid][]byte)}
}

func (m *MemoryCAS) Put(b []byte) (cid.Cid, error) {
	id, err := cidutil.CIDv1JSONSHA256CID(b)
	if err != nil {
		return cid.Undef, err
	}
	if !id.Defined() {
		return cid.Undef, ErrInvalidCID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[id]; ok {
		if !bytes.Equal(existing, b) {
			return cid.Undef, ErrImmutable
		}
		return id, nil
	}
	m.data[id] = append([]byte(nil), b...)
	return id, nil
}

func (m *MemoryCAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *MemoryCAS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[id]
	return ok
}

// Len reports the number of stored objects.
func (m *MemoryCAS) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
