package cart

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/dineahead/internal/domain"
)

type fakeCatalog struct {
	mu    sync.Mutex
	items map[string]*domain.MenuItem
	err   error
}

func newFakeCatalog(items ...*domain.MenuItem) *fakeCatalog {
	c := &fakeCatalog{items: make(map[string]*domain.MenuItem)}
	for _, item := range items {
		c.items[item.ID] = item
	}
	return c
}

func (c *fakeCatalog) GetMenuItem(_ context.Context, id string) (*domain.MenuItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return nil, c.err
	}
	item, ok := c.items[id]
	if !ok {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func item(id, restaurantID, price string, available bool) *domain.MenuItem {
	return &domain.MenuItem{
		ID:           id,
		RestaurantID: restaurantID,
		Name:         id,
		Price:        decimal.RequireFromString(price),
		IsAvailable:  available,
	}
}

func newTestStore(t *testing.T, repo Repository, reader *fakeCatalog) *Store {
	t.Helper()
	store, err := NewStore(repo, reader, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return store
}

func defaultCatalog() *fakeCatalog {
	return newFakeCatalog(
		item("pizza", "r-1", "10.00", true),
		item("salad", "r-1", "5.00", true),
		item("soldout", "r-1", "7.00", false),
		item("sushi", "r-2", "6.50", true),
	)
}

func TestStore_Get(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryRepository(), defaultCatalog())

	t.Run("empty cart when none stored", func(t *testing.T) {
		cart, err := store.Get(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, "u-1", cart.OwnerUserID)
		assert.Empty(t, cart.Items)
		assert.Empty(t, cart.RestaurantID)
	})

	t.Run("rejects missing user", func(t *testing.T) {
		_, err := store.Get(ctx, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestStore_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the cart and merges repeated adds", func(t *testing.T) {
		repo := NewMemoryRepository()
		store := newTestStore(t, repo, defaultCatalog())

		_, err := store.AddItem(ctx, "u-1", "pizza", 2)
		require.NoError(t, err)
		cart, err := store.AddItem(ctx, "u-1", "pizza", 3)
		require.NoError(t, err)

		assert.Equal(t, "r-1", cart.RestaurantID)
		assert.Equal(t, []domain.CartItem{{MenuItemID: "pizza", Quantity: 5}}, cart.Items)

		stored, err := repo.Get(ctx, "u-1")
		require.NoError(t, err)
		assert.NotEmpty(t, stored.ID)
		assert.Equal(t, int64(2), stored.Version)
	})

	t.Run("missing quantity adds one", func(t *testing.T) {
		store := newTestStore(t, NewMemoryRepository(), defaultCatalog())

		cart, err := store.AddItem(ctx, "u-1", "salad", 0)
		require.NoError(t, err)
		assert.Equal(t, 1, cart.Items[0].Quantity)
	})

	t.Run("unknown and unavailable items are rejected", func(t *testing.T) {
		repo := NewMemoryRepository()
		store := newTestStore(t, repo, defaultCatalog())

		_, err := store.AddItem(ctx, "u-1", "ghost", 1)
		assert.ErrorIs(t, err, domain.ErrItemUnavailable)

		_, err = store.AddItem(ctx, "u-1", "soldout", 1)
		assert.ErrorIs(t, err, domain.ErrItemUnavailable)

		stored, err := repo.Get(ctx, "u-1")
		require.NoError(t, err)
		assert.Nil(t, stored)
	})

	t.Run("item from another restaurant leaves the cart unchanged", func(t *testing.T) {
		repo := NewMemoryRepository()
		store := newTestStore(t, repo, defaultCatalog())

		_, err := store.AddItem(ctx, "u-1", "pizza", 1)
		require.NoError(t, err)
		before, err := repo.Get(ctx, "u-1")
		require.NoError(t, err)

		_, err = store.AddItem(ctx, "u-1", "sushi", 1)
		assert.ErrorIs(t, err, domain.ErrCrossRestaurant)

		after, err := repo.Get(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("catalog failure is surfaced", func(t *testing.T) {
		reader := defaultCatalog()
		reader.err = errors.New("catalog down")
		store := newTestStore(t, NewMemoryRepository(), reader)

		_, err := store.AddItem(ctx, "u-1", "pizza", 1)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrItemUnavailable)
	})

	t.Run("requires a menu item id", func(t *testing.T) {
		store := newTestStore(t, NewMemoryRepository(), defaultCatalog())

		_, err := store.AddItem(ctx, "u-1", "", 1)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestStore_UpdateItemQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("no cart", func(t *testing.T) {
		store := newTestStore(t, NewMemoryRepository(), defaultCatalog())

		_, err := store.UpdateItemQuantity(ctx, "u-1", "pizza", 2)
		assert.ErrorIs(t, err, domain.ErrCartNotFound)
	})

	t.Run("item not in cart", func(t *testing.T) {
		store := newTestStore(t, NewMemoryRepository(), defaultCatalog())
		_, err := store.AddItem(ctx, "u-1", "pizza", 1)
		require.NoError(t, err)

		_, err = store.UpdateItemQuantity(ctx, "u-1", "salad", 2)
		assert.ErrorIs(t, err, domain.ErrItemNotInCart)
	})

	t.Run("sets the quantity", func(t *testing.T) {
		store := newTestStore(t, NewMemoryRepository(), defaultCatalog())
		_, err := store.AddItem(ctx, "u-1", "pizza", 1)
		require.NoError(t, err)

		cart, err := store.UpdateItemQuantity(ctx, "u-1", "pizza", 7)
		require.NoError(t, err)
		assert.Equal(t, 7, cart.Items[0].Quantity)
	})

	t.Run("zero removes the line but keeps the cart", func(t *testing.T) {
		repo := NewMemoryRepository()
		store := newTestStore(t, repo, defaultCatalog())
		_, err := store.AddItem(ctx, "u-1", "pizza", 1)
		require.NoError(t, err)

		cart, err := store.UpdateItemQuantity(ctx, "u-1", "pizza", 0)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)

		stored, err := repo.Get(ctx, "u-1")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Empty(t, stored.Items)
	})
}

func TestStore_RemoveItem(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryRepository(), defaultCatalog())

	_, err := store.RemoveItem(ctx, "u-1", "pizza")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)

	_, err = store.AddItem(ctx, "u-1", "pizza", 1)
	require.NoError(t, err)
	_, err = store.AddItem(ctx, "u-1", "salad", 1)
	require.NoError(t, err)

	cart, err := store.RemoveItem(ctx, "u-1", "pizza")
	require.NoError(t, err)
	assert.Equal(t, []domain.CartItem{{MenuItemID: "salad", Quantity: 1}}, cart.Items)

	cart, err = store.RemoveItem(ctx, "u-1", "pizza")
	require.NoError(t, err)
	assert.Equal(t, []domain.CartItem{{MenuItemID: "salad", Quantity: 1}}, cart.Items)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	store := newTestStore(t, repo, defaultCatalog())

	require.NoError(t, store.Clear(ctx, "u-1"))

	_, err := store.AddItem(ctx, "u-1", "pizza", 1)
	require.NoError(t, err)
	require.NoError(t, store.Clear(ctx, "u-1"))

	stored, err := repo.Get(ctx, "u-1")
	require.NoError(t, err)
	assert.Nil(t, stored)

	cart, err := store.AddItem(ctx, "u-1", "sushi", 1)
	require.NoError(t, err)
	assert.Equal(t, "r-2", cart.RestaurantID)
}

// conflictingRepository makes the next n saves lose the race.
type conflictingRepository struct {
	*MemoryRepository
	mu        sync.Mutex
	conflicts int
	saves     int
}

func (r *conflictingRepository) Save(ctx context.Context, cart *domain.Cart) error {
	r.mu.Lock()
	r.saves++
	if r.conflicts > 0 {
		r.conflicts--
		r.mu.Unlock()
		return domain.ErrConflict
	}
	r.mu.Unlock()
	return r.MemoryRepository.Save(ctx, cart)
}

func TestStore_RetriesOnceOnConflict(t *testing.T) {
	ctx := context.Background()

	t.Run("one conflict is absorbed", func(t *testing.T) {
		repo := &conflictingRepository{MemoryRepository: NewMemoryRepository(), conflicts: 1}
		store := newTestStore(t, repo, defaultCatalog())

		cart, err := store.AddItem(ctx, "u-1", "pizza", 1)
		require.NoError(t, err)
		assert.Len(t, cart.Items, 1)
		assert.Equal(t, 2, repo.saves)
	})

	t.Run("second conflict is returned", func(t *testing.T) {
		repo := &conflictingRepository{MemoryRepository: NewMemoryRepository(), conflicts: 2}
		store := newTestStore(t, repo, defaultCatalog())

		_, err := store.AddItem(ctx, "u-1", "pizza", 1)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, 2, repo.saves)
	})
}

func TestStore_ConcurrentAddsKeepOneCart(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	store := newTestStore(t, repo, defaultCatalog())

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.AddItem(ctx, "u-1", "pizza", 1)
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrConflict)
				return
			}
			mu.Lock()
			succeeded++
			mu.Unlock()
		}()
	}
	wg.Wait()

	stored, err := repo.Get(ctx, "u-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, succeeded, stored.Items[0].Quantity)
	assert.GreaterOrEqual(t, succeeded, 1)
}

func TestStore_Resolve(t *testing.T) {
	ctx := context.Background()
	reader := defaultCatalog()
	store := newTestStore(t, NewMemoryRepository(), reader)

	cart, err := store.AddItem(ctx, "u-1", "pizza", 2)
	require.NoError(t, err)

	reader.mu.Lock()
	delete(reader.items, "pizza")
	reader.mu.Unlock()

	view, err := store.Resolve(ctx, cart)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Nil(t, view.Items[0].MenuItem)
	assert.Equal(t, 2, view.Items[0].Quantity)

	empty, err := store.Resolve(ctx, domain.EmptyCart("u-2"))
	require.NoError(t, err)
	assert.Nil(t, empty.UpdatedAt)
	assert.NotNil(t, empty.Items)
}
