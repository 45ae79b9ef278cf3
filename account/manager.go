package account

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rustyeddy/riskgate/capital"
	"github.com/rustyeddy/riskgate/risk"
)

var (
	// ErrDuplicateAccount is a configuration fault: the same account id was
	// created twice. Never silently replaced.
	ErrDuplicateAccount = fmt.Errorf("account already exists")

	// ErrUnknownAccount is a configuration fault: a lookup named an account
	// that was never created.
	ErrUnknownAccount = fmt.Errorf("unknown account")

	// ErrIsolation indicates two accounts share a pool or governor instance.
	// This is a programming defect and fatal to the affected operation.
	ErrIsolation = fmt.Errorf("account isolation violated")
)

// Spec describes one account to create.
type Spec struct {
	AccountID   string
	Equity      float64
	PoolCapital float64 // capital per pool (each account gets two pools)
	Policy      risk.Policy
	Capital     capital.Config
}

// Manager is the only place accounts are constructed. It holds the only
// collection of accounts and proves, as a testable property, that no two
// accounts ever reference the same pool or governor instance.
type Manager struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

func NewManager() *Manager {
	return &Manager{accounts: make(map[string]*Account)}
}

// Create builds a new isolated account. Duplicate ids fail fast.
func (m *Manager) Create(spec Spec) (*Account, error) {
	if spec.AccountID == "" {
		return nil, fmt.Errorf("create account: empty account id")
	}
	if spec.Equity <= 0 {
		return nil, fmt.Errorf("create account %q: equity must be positive", spec.AccountID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[spec.AccountID]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateAccount, spec.AccountID)
	}

	a := newAccount(spec.AccountID, spec.Equity, spec.PoolCapital, spec.Policy, spec.Capital)
	m.accounts[spec.AccountID] = a
	return a, nil
}

// Get returns an account or ErrUnknownAccount.
func (m *Manager) Get(accountID string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAccount, accountID)
	}
	return a, nil
}

// List returns all accounts sorted by id.
func (m *Manager) List() []*Account {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// VerifyIsolation asserts that no two accounts share a pool or governor
// instance. A violation is ErrIsolation: a programming defect, not a
// recoverable condition.
func (m *Manager) VerifyIsolation() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pools := make(map[*capital.Pool]string)
	governors := make(map[*risk.Governor]string)

	for id, a := range m.accounts {
		for _, p := range []*capital.Pool{a.directional, a.arbitrage} {
			if other, ok := pools[p]; ok {
				return fmt.Errorf("%w: accounts %q and %q share a %s pool", ErrIsolation, other, id, p.Style())
			}
			pools[p] = id
		}
		if other, ok := governors[a.governor]; ok {
			return fmt.Errorf("%w: accounts %q and %q share a governor", ErrIsolation, other, id)
		}
		governors[a.governor] = id
	}
	return nil
}
