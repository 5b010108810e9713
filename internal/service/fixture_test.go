package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/emoji_shop/internal/db"
	"github.com/Skotchmaster/emoji_shop/internal/events"
	"github.com/Skotchmaster/emoji_shop/internal/models"
	"github.com/Skotchmaster/emoji_shop/internal/repo"
)

var testSecret = []byte("test-jwt-secret")

type fakeIndex struct {
	mu        sync.Mutex
	indexed   []uuid.UUID
	deleted   []uuid.UUID
	searchIDs []uuid.UUID
	searchErr error
}

func (f *fakeIndex) IndexProduct(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, p.ID)
	return nil
}

func (f *fakeIndex) DeleteProducts(_ context.Context, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ids...)
	return nil
}

func (f *fakeIndex) Search(context.Context, string) ([]uuid.UUID, error) {
	return f.searchIDs, f.searchErr
}

type fixture struct {
	repo    *repo.GormRepo
	auth    *AuthService
	catalog *CatalogService
	orders  *OrderService
	admin   *AdminService
	events  *events.Recorder
}

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	gdb, err := db.Open(context.Background(), "sqlite://:memory:", nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background(), gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	return &repo.GormRepo{DB: gdb}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	r := newTestRepo(t)
	rec := &events.Recorder{}
	f := &fixture{
		repo:    r,
		events:  rec,
		auth:    &AuthService{Repo: r, JWTSecret: testSecret, TokenTTL: time.Hour, Events: rec},
		catalog: &CatalogService{Repo: r, Events: rec},
		orders:  &OrderService{Repo: r, Events: rec},
	}
	f.admin = &AdminService{Auth: f.auth, Catalog: f.catalog, Orders: f.orders}
	return f
}

// user inserts an account directly; the password hash is not usable.
func (f *fixture) user(t *testing.T, name string, role models.Role) *models.User {
	t.Helper()

	u := &models.User{Name: name, Email: uuid.NewString() + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, f.repo.CreateUser(context.Background(), u))
	return u
}

func (f *fixture) product(t *testing.T, owner *models.User, name string, price float64) *models.Product {
	t.Helper()

	p, err := f.catalog.Create(context.Background(), owner, CreateProductInput{Name: name, Price: &price})
	require.NoError(t, err)
	return p
}

func (f *fixture) buy(t *testing.T, buyer *models.User, p *models.Product, qty int) *models.Order {
	t.Helper()

	o, err := f.orders.BuyNow(context.Background(), buyer, BuyNowInput{ProductID: p.ID.String(), Qty: &qty})
	require.NoError(t, err)
	return o
}

func ptr[T any](v T) *T { return &v }
