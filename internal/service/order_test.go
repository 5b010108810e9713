package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/emoji_shop/internal/events"
	"github.com/Skotchmaster/emoji_shop/internal/models"
)

func TestOrderService_BuyNow_SnapshotsProduct(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	seller := f.user(t, "Seller", models.RoleCustomer)
	buyer := f.user(t, "Buyer", models.RoleCustomer)

	p, err := f.catalog.Create(ctx, seller, CreateProductInput{Name: "Pizza", Price: ptr(10.0), Emoji: "🍕"})
	require.NoError(t, err)

	o := f.buy(t, buyer, p, 2)
	assert.Equal(t, 20.0, o.Total)
	assert.Equal(t, models.OrderStatusPending, o.Status)
	assert.Equal(t, buyer.ID, o.CustomerID)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Qty)
	assert.Equal(t, "Pizza", o.Items[0].Name)
	assert.Equal(t, 10.0, o.Items[0].Price)
	assert.Equal(t, "🍕", o.Items[0].Emoji)
	assert.Equal(t, p.ID, o.Items[0].ProductID)

	_, err = f.catalog.Update(ctx, seller, p.ID.String(), UpdateProductInput{Price: ptr(99.0), Name: ptr("Renamed")})
	require.NoError(t, err)

	mine, err := f.orders.MyOrders(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 20.0, mine[0].Total)
	assert.Equal(t, 10.0, mine[0].Items[0].Price)
	assert.Equal(t, "Pizza", mine[0].Items[0].Name)

	assert.Contains(t, f.events.Types(), events.OrderCreated)
}

func TestOrderService_BuyNow_DefaultQty(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	buyer := f.user(t, "Buyer", models.RoleCustomer)
	p := f.product(t, buyer, "Soda", 2.5)

	o, err := f.orders.BuyNow(context.Background(), buyer, BuyNowInput{ProductID: p.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, 1, o.Items[0].Qty)
	assert.Equal(t, 2.5, o.Total)
}

func TestOrderService_BuyNow_Errors(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	buyer := f.user(t, "Buyer", models.RoleCustomer)
	p := f.product(t, buyer, "Soda", 2.5)

	cases := []struct {
		name string
		in   BuyNowInput
		kind error
		msg  string
	}{
		{"missing product", BuyNowInput{}, ErrValidation, "productId is required"},
		{"zero qty", BuyNowInput{ProductID: p.ID.String(), Qty: ptr(0)}, ErrValidation, "qty must be a number >= 1"},
		{"negative qty", BuyNowInput{ProductID: p.ID.String(), Qty: ptr(-2)}, ErrValidation, "qty must be a number >= 1"},
		{"malformed id", BuyNowInput{ProductID: "abc"}, ErrValidation, "invalid product id"},
		{"unknown product", BuyNowInput{ProductID: uuid.NewString()}, ErrNotFound, "Product not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.orders.BuyNow(context.Background(), buyer, tc.in)
			assert.ErrorIs(t, err, tc.kind)
			assert.Equal(t, tc.msg, PublicMessage(err))
		})
	}

	mine, err := f.orders.MyOrders(context.Background(), buyer)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestOrderService_MyOrders_OnlyOwn(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "A", models.RoleCustomer)
	b := f.user(t, "B", models.RoleCustomer)
	p := f.product(t, a, "Soda", 1)

	f.buy(t, a, p, 1)
	f.buy(t, a, p, 3)
	f.buy(t, b, p, 1)

	mine, err := f.orders.MyOrders(ctx, a)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, o := range mine {
		assert.Equal(t, a.ID, o.CustomerID)
	}
}

func TestOrderService_Cancel(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "Owner", models.RoleCustomer)
	other := f.user(t, "Other", models.RoleCustomer)
	admin := f.user(t, "Admin", models.RoleAdmin)
	p := f.product(t, owner, "Soda", 1)

	o := f.buy(t, owner, p, 1)
	_, err := f.orders.Cancel(ctx, other, o.ID.String())
	assert.ErrorIs(t, err, ErrForbidden)

	cancelled, err := f.orders.Cancel(ctx, owner, o.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	_, err = f.orders.Cancel(ctx, owner, o.ID.String())
	assert.ErrorIs(t, err, ErrConflict)

	processing := f.buy(t, owner, p, 1)
	_, err = f.orders.AdminSetStatus(ctx, admin, processing.ID.String(), "processing")
	require.NoError(t, err)
	cancelled, err = f.orders.Cancel(ctx, admin, processing.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	completed := f.buy(t, owner, p, 1)
	_, err = f.orders.AdminSetStatus(ctx, admin, completed.ID.String(), "completed")
	require.NoError(t, err)
	_, err = f.orders.Cancel(ctx, owner, completed.ID.String())
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.orders.Cancel(ctx, owner, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Order not found", PublicMessage(err))
}

func TestOrderService_AdminSetStatus(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	customer := f.user(t, "Cust", models.RoleCustomer)
	admin := f.user(t, "Admin", models.RoleAdmin)
	p := f.product(t, customer, "Soda", 1)
	o := f.buy(t, customer, p, 1)

	_, err := f.orders.AdminSetStatus(ctx, customer, o.ID.String(), "completed")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.orders.AdminSetStatus(ctx, admin, o.ID.String(), "shipped")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Invalid status", PublicMessage(err))

	_, err = f.orders.AdminSetStatus(ctx, admin, uuid.NewString(), "completed")
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := f.orders.AdminSetStatus(ctx, admin, o.ID.String(), "processing")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, updated.Status)
	require.NotNil(t, updated.Customer)
	assert.Equal(t, customer.ID, updated.Customer.ID)

	updated, err = f.orders.AdminSetStatus(ctx, admin, o.ID.String(), "pending")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, updated.Status)

	_, err = f.orders.AdminSetStatus(ctx, admin, o.ID.String(), "completed")
	require.NoError(t, err)

	_, err = f.orders.AdminSetStatus(ctx, admin, o.ID.String(), "completed")
	require.NoError(t, err)

	_, err = f.orders.AdminSetStatus(ctx, admin, o.ID.String(), "pending")
	assert.ErrorIs(t, err, ErrConflict)

	changes := 0
	for _, typ := range f.events.Types() {
		if typ == events.OrderStatusChanged {
			changes++
		}
	}
	assert.Equal(t, 3, changes)
}

func TestOrderService_AdminList_ResolvesProducts(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	customer := f.user(t, "Cust", models.RoleCustomer)
	admin := f.user(t, "Admin", models.RoleAdmin)
	kept := f.product(t, customer, "Kept", 1)
	gone := f.product(t, customer, "Gone", 2)

	f.buy(t, customer, kept, 1)
	old := f.buy(t, customer, gone, 1)
	_, err := f.orders.Cancel(ctx, customer, old.ID.String())
	require.NoError(t, err)
	require.NoError(t, f.catalog.Delete(ctx, customer, gone.ID.String()))

	_, err = f.orders.AdminList(ctx, customer)
	assert.ErrorIs(t, err, ErrForbidden)

	all, err := f.admin.ListOrders(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 2)

	byProduct := map[uuid.UUID]*models.ProductRef{}
	for _, o := range all {
		require.NotNil(t, o.Customer)
		assert.Equal(t, "Cust", o.Customer.Name)
		byProduct[o.Items[0].ProductID] = o.Items[0].Product
	}
	assert.Equal(t, "Kept", byProduct[kept.ID].Name)
	assert.False(t, byProduct[kept.ID].Deleted)
	assert.True(t, byProduct[gone.ID].Deleted)
}

func TestOrderService_AdminDelete(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	customer := f.user(t, "Cust", models.RoleCustomer)
	admin := f.user(t, "Admin", models.RoleAdmin)
	p := f.product(t, customer, "Soda", 1)
	o := f.buy(t, customer, p, 1)

	assert.ErrorIs(t, f.orders.AdminDelete(ctx, customer, o.ID.String()), ErrForbidden)
	require.NoError(t, f.orders.AdminDelete(ctx, admin, o.ID.String()))
	assert.ErrorIs(t, f.orders.AdminDelete(ctx, admin, o.ID.String()), ErrNotFound)

	mine, err := f.orders.MyOrders(ctx, customer)
	require.NoError(t, err)
	assert.Empty(t, mine)

	require.NoError(t, f.catalog.Delete(ctx, customer, p.ID.String()))
}

func TestAdminService_ListProducts(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	customer := f.user(t, "Cust", models.RoleCustomer)
	admin := f.user(t, "Admin", models.RoleAdmin)
	f.product(t, customer, "One", 1)

	_, err := f.admin.ListProducts(ctx, customer)
	assert.ErrorIs(t, err, ErrForbidden)

	all, err := f.admin.ListProducts(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].Owner)
	assert.Equal(t, models.RoleCustomer, all[0].Owner.Role)
}
