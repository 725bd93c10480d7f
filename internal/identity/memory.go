package identity

import (
	"context"
	"sync"
)

// MemoryDirectory is a fixture-backed Directory for tests and single-node
// deployments without a bank directory to call.
type MemoryDirectory struct {
	mu    sync.RWMutex
	byRef map[string]Account
	byID  map[string]Account
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		byRef: make(map[string]Account),
		byID:  make(map[string]Account),
	}
}

// Put registers or replaces the account a caller reference resolves to. The
// account is also indexed by its id for ResolveAccount.
func (d *MemoryDirectory) Put(callerRef string, a Account) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byRef[callerRef] = a
	d.byID[a.ID] = a
}

func (d *MemoryDirectory) ResolveCaller(_ context.Context, callerRef string) (Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.byRef[callerRef]
	if !ok {
		return Account{}, ErrUnknownCaller
	}
	return a, nil
}

func (d *MemoryDirectory) ResolveAccount(_ context.Context, accountID string) (Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.byID[accountID]
	if !ok {
		return Account{}, ErrUnknownCaller
	}
	return a, nil
}
