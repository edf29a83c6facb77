package repository

import (
	"context"
	"sync"

	"github.com/martinmanurung/cinecatalog/internal/domain/users"
)

// Accounts is an in-memory credential store loaded from configuration.
type Accounts struct {
	mu       sync.RWMutex
	accounts map[string]users.Account
}

func NewAccounts(list ...users.Account) *Accounts {
	a := &Accounts{accounts: make(map[string]users.Account, len(list))}
	for _, acc := range list {
		a.accounts[acc.Username] = acc
	}
	return a
}

// FindByUsername returns nil when no account matches.
func (a *Accounts) FindByUsername(ctx context.Context, username string) (*users.Account, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	acc, ok := a.accounts[username]
	if !ok {
		return nil, nil
	}
	return &acc, nil
}

func (a *Accounts) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.accounts)
}
