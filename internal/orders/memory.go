package orders

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/joao-fontenele/dineahead/internal/domain"
)

// MemoryRepository is an in-process order store. It does not implement
// AtomicCheckout, so checkouts against it take the create-then-delete path.
type MemoryRepository struct {
	mu     sync.Mutex
	orders []domain.Order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	r.orders = append(r.orders, copyOrder(*order))
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, order := range r.orders {
		if order.ID == id {
			found := copyOrder(order)
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := []domain.Order{}
	for i := len(r.orders) - 1; i >= 0; i-- {
		if r.orders[i].OwnerUserID == userID {
			result = append(result, copyOrder(r.orders[i]))
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func copyOrder(order domain.Order) domain.Order {
	items := make([]domain.OrderItem, len(order.Items))
	copy(items, order.Items)
	order.Items = items
	return order
}
