package cart

import (
	"context"
	"sync"

	"github.com/joao-fontenele/dineahead/internal/domain"
)

// MemoryRepository keeps carts in process with the same compare-and-swap
// rules as PostgresRepository.
type MemoryRepository struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{carts: make(map[string]*domain.Cart)}
}

func (r *MemoryRepository) Get(_ context.Context, userID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.carts[userID]
	if !ok {
		return nil, nil
	}
	return stored.Clone(), nil
}

func (r *MemoryRepository) Save(_ context.Context, cart *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.carts[cart.OwnerUserID]
	switch {
	case cart.Version == 0 && ok:
		return domain.ErrConflict
	case cart.Version != 0 && (!ok || stored.ID != cart.ID || stored.Version != cart.Version):
		return domain.ErrConflict
	}

	cart.Version++
	r.carts[cart.OwnerUserID] = cart.Clone()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, userID)
	return nil
}

func (r *MemoryRepository) DeleteVersion(_ context.Context, userID, cartID string, version int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.carts[userID]
	if !ok || stored.ID != cartID || stored.Version != version {
		return domain.ErrConflict
	}

	delete(r.carts, userID)
	return nil
}
