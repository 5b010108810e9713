package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/emoji_shop/internal/db"
	"github.com/Skotchmaster/emoji_shop/internal/models"
)

func newRepo(t *testing.T) *GormRepo {
	t.Helper()

	gdb, err := db.Open(context.Background(), "sqlite://:memory:", nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background(), gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	return &GormRepo{DB: gdb}
}

func seedUser(t *testing.T, r *GormRepo, email string) *models.User {
	t.Helper()

	u := &models.User{Name: "Test", Email: email, PasswordHash: "x", Role: models.RoleCustomer}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func seedProduct(t *testing.T, r *GormRepo, owner *models.User, name string) *models.Product {
	t.Helper()

	p := &models.Product{
		Name:        name,
		Price:       2.5,
		Category:    "Food",
		Description: "tasty " + name,
		Emoji:       "🍕",
		InStock:     true,
		CreatedBy:   owner.ID,
	}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

func seedOrder(t *testing.T, r *GormRepo, customer *models.User, p *models.Product) *models.Order {
	t.Helper()

	o, err := r.CreateOrderForProduct(context.Background(), p.ID, func(p *models.Product) *models.Order {
		o := &models.Order{
			CustomerID: customer.ID,
			Items:      []models.OrderItem{{ProductID: p.ID, Name: p.Name, Price: p.Price, Qty: 2, Emoji: p.Emoji}},
			Status:     models.OrderStatusPending,
		}
		o.Total = o.ComputeTotal()
		return o
	})
	require.NoError(t, err)
	return o
}

func TestCreateUser_Duplicate(t *testing.T) {
	r := newRepo(t)
	seedUser(t, r, "dup@example.com")

	err := r.CreateUser(context.Background(), &models.User{Name: "Other", Email: "dup@example.com", PasswordHash: "x", Role: models.RoleCustomer})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestUserLookups(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "find@example.com")

	got, err := r.UserByEmail(ctx, "find@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = r.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "find@example.com", got.Email)

	_, err = r.UserByID(ctx, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProduct(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	owner := seedUser(t, r, "owner@example.com")
	p := seedProduct(t, r, owner, "Pizza")

	got, err := r.UpdateProduct(ctx, p.ID, map[string]any{"price": 0.0, "in_stock": false})
	require.NoError(t, err)
	assert.Zero(t, got.Price)
	assert.False(t, got.InStock)
	require.NotNil(t, got.Owner)
	assert.Equal(t, owner.ID, got.Owner.ID)

	_, err = r.UpdateProduct(ctx, uuid.New(), map[string]any{"name": "x"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteProducts_BlockedByActiveOrder(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	owner := seedUser(t, r, "owner@example.com")
	free := seedProduct(t, r, owner, "Free")
	busy := seedProduct(t, r, owner, "Busy")
	seedOrder(t, r, owner, busy)

	n, err := r.DeleteProducts(ctx, []uuid.UUID{free.ID, busy.ID})
	require.ErrorIs(t, err, ErrActiveOrders)
	assert.Zero(t, n)

	_, err = r.ProductByID(ctx, free.ID)
	require.NoError(t, err, "nothing is deleted when one product is blocked")
}

func TestDeleteProducts_FinishedOrdersDoNotBlock(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	owner := seedUser(t, r, "owner@example.com")
	p := seedProduct(t, r, owner, "Done")
	o := seedOrder(t, r, owner, p)

	_, err := r.TransitionOrder(ctx, o.ID, func(*models.Order) (models.OrderStatus, error) {
		return models.OrderStatusCompleted, nil
	})
	require.NoError(t, err)

	n, err := r.DeleteProducts(ctx, []uuid.UUID{p.ID, uuid.New()})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := r.OrderByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Done", got.Items[0].Name)
}

func TestTransitionOrder(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	owner := seedUser(t, r, "owner@example.com")
	o := seedOrder(t, r, owner, seedProduct(t, r, owner, "Tea"))
	assert.Equal(t, 5.0, o.Total)

	got, err := r.TransitionOrder(ctx, o.ID, func(cur *models.Order) (models.OrderStatus, error) {
		assert.Equal(t, models.OrderStatusPending, cur.Status)
		return models.OrderStatusProcessing, nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, got.Status)
	require.NotNil(t, got.Customer)

	sentinel := assert.AnError
	_, err = r.TransitionOrder(ctx, o.ID, func(*models.Order) (models.OrderStatus, error) {
		return "", sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, err = r.TransitionOrder(ctx, uuid.New(), func(*models.Order) (models.OrderStatus, error) {
		return models.OrderStatusCancelled, nil
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteOrder(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	owner := seedUser(t, r, "owner@example.com")
	o := seedOrder(t, r, owner, seedProduct(t, r, owner, "Cake"))

	require.NoError(t, r.DeleteOrder(ctx, o.ID))
	_, err := r.OrderByID(ctx, o.ID)
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, r.DeleteOrder(ctx, o.ID), ErrNotFound)
}

func TestSearchProducts(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	alice := seedUser(t, r, "alice@example.com")
	bob := seedUser(t, r, "bob@example.com")
	seedProduct(t, r, alice, "Pizza")
	seedProduct(t, r, bob, "Burger")

	got, err := r.SearchProducts(ctx, "PIZ")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Pizza", got[0].Name)

	got, err = r.SearchProducts(ctx, "bob@")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Burger", got[0].Name)
}
