package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"careergate/internal/account"
	id "careergate/pkg/domain"
	"careergate/pkg/platform/sentinel"
)

// InMemoryStore is the development and test account store.
type InMemoryStore struct {
	mu       sync.RWMutex
	accounts map[id.UserID]*account.Account
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{accounts: make(map[id.UserID]*account.Account)}
}

func (s *InMemoryStore) Create(_ context.Context, acct *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[acct.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := clone(acct)
	s.accounts[acct.ID] = cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, userID id.UserID) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(acct), nil
}

func (s *InMemoryStore) List(_ context.Context, params ListParams) ([]*account.Account, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*account.Account, 0, len(s.accounts))
	for _, acct := range s.accounts {
		all = append(all, clone(acct))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	start := min(params.Offset, total)
	end := total
	if params.Limit > 0 {
		end = min(start+params.Limit, total)
	}
	return all[start:end], total, nil
}

func (s *InMemoryStore) SetBlocked(_ context.Context, userID id.UserID, blockedAt *time.Time, now time.Time) error {
	return s.mutate(userID, func(acct *account.Account) {
		acct.BlockedAt = blockedAt
		acct.UpdatedAt = now
	})
}

func (s *InMemoryStore) SetRole(_ context.Context, userID id.UserID, role account.Role, now time.Time) error {
	return s.mutate(userID, func(acct *account.Account) {
		acct.Role = role
		acct.UpdatedAt = now
	})
}

func (s *InMemoryStore) UpdateProfile(_ context.Context, userID id.UserID, email, fullName *string, now time.Time) error {
	return s.mutate(userID, func(acct *account.Account) {
		if email != nil {
			acct.Email = *email
		}
		if fullName != nil {
			acct.FullName = *fullName
		}
		acct.UpdatedAt = now
	})
}

func (s *InMemoryStore) Delete(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[userID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.accounts, userID)
	return nil
}

func (s *InMemoryStore) mutate(userID id.UserID, fn func(*account.Account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	fn(acct)
	return nil
}

func clone(acct *account.Account) *account.Account {
	cp := *acct
	if acct.BlockedAt != nil {
		t := *acct.BlockedAt
		cp.BlockedAt = &t
	}
	return &cp
}
