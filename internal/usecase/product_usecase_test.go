package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductFixture() (*ProductUseCase, *memProducts, *fakeCache) {
	repo := &memProducts{memInventory: newMemInventory(nil)}
	cache := newFakeCache()
	return NewProductUC(repo, cache, logger.Nop{}), repo, cache
}

func TestAddProduct(t *testing.T) {
	uc, repo, cache := newProductFixture()
	cache.names, cache.hasNames = []string{"stale"}, true

	product, err := uc.AddProduct(context.Background(), &AddProductReq{
		Name: "  Coffee ", Price: dec("3.50"), Type: "drinks", Units: dec("12"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Coffee", product.Name)
	assert.NotZero(t, product.ID)
	assert.True(t, dec("12").Equal(repo.units("Coffee")))
	assert.False(t, cache.hasNames)

	_, err = uc.AddProduct(context.Background(), &AddProductReq{Name: "Coffee", Price: dec("1"), Units: dec("1")})
	assert.ErrorIs(t, err, e.ErrProductExists)
}

func TestAddProduct_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  AddProductReq
		want error
	}{
		{name: "blank name", req: AddProductReq{Name: " ", Price: dec("1"), Units: dec("1")}, want: e.ErrProductNameRequired},
		{name: "negative price", req: AddProductReq{Name: "A", Price: dec("-0.01"), Units: dec("1")}, want: e.ErrInvalidPrice},
		{name: "three decimals", req: AddProductReq{Name: "A", Price: dec("1.005"), Units: dec("1")}, want: e.ErrPricePrecision},
		{name: "negative units", req: AddProductReq{Name: "A", Price: dec("1"), Units: dec("-1")}, want: e.ErrInvalidUnits},
		{name: "units with four decimals", req: AddProductReq{Name: "A", Price: dec("1"), Units: dec("0.0001")}, want: e.ErrUnitsPrecision},
		{name: "tiny exponent units", req: AddProductReq{Name: "A", Price: dec("1"), Units: dec("1e-200000000")}, want: e.ErrUnitsPrecision},
		{name: "tiny exponent price", req: AddProductReq{Name: "A", Price: dec("1e-200000000"), Units: dec("1")}, want: e.ErrPricePrecision},
		{name: "price out of range", req: AddProductReq{Name: "A", Price: dec("10000000000"), Units: dec("1")}, want: e.ErrPricePrecision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _, _ := newProductFixture()
			_, err := uc.AddProduct(context.Background(), &tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAddProduct_TrailingZerosAllowed(t *testing.T) {
	uc, _, _ := newProductFixture()
	_, err := uc.AddProduct(context.Background(), &AddProductReq{Name: "A", Price: dec("1.5000"), Units: dec("0")})
	assert.NoError(t, err)
}

func TestUpdateProduct_Rename(t *testing.T) {
	uc, repo, cache := newProductFixture()
	old := repo.put("Tea", "1.00", "5")
	cache.products["Tea"] = *old
	cache.names, cache.hasNames = []string{"Tea"}, true

	created := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	product, err := uc.UpdateProduct(context.Background(), &UpdateProductReq{
		ID: old.ID, Name: "Green Tea", Price: dec("1.20"), Type: "drinks", Units: dec("7"), Date: &created,
	})
	require.NoError(t, err)
	assert.Equal(t, "Green Tea", product.Name)
	assert.Equal(t, created, product.CreatedAt)

	assert.ElementsMatch(t, []string{"Green Tea", "Tea"}, cache.deletedNames())
	assert.False(t, cache.cached("Tea"))
	assert.False(t, cache.hasNames)
}

func TestUpdateProduct_Errors(t *testing.T) {
	uc, _, _ := newProductFixture()

	_, err := uc.UpdateProduct(context.Background(), &UpdateProductReq{ID: 0, Name: "A"})
	assert.ErrorIs(t, err, e.ErrInvalidID)

	_, err = uc.UpdateProduct(context.Background(), &UpdateProductReq{ID: 99, Name: "A", Price: dec("1"), Units: dec("1")})
	assert.ErrorIs(t, err, e.ErrProductNotFound)
}

func TestGetPrice_CacheHit(t *testing.T) {
	uc, repo, cache := newProductFixture()
	p := repo.put("Tea", "1.00", "5")
	cached := *p
	cached.Price = dec("9.99")
	cache.products["Tea"] = cached

	price, err := uc.GetPrice(context.Background(), "Tea")
	require.NoError(t, err)
	assert.True(t, dec("9.99").Equal(price))
	assert.Zero(t, repo.findCalls)
}

func TestGetPrice_CacheMissFillsCache(t *testing.T) {
	uc, repo, cache := newProductFixture()
	repo.put("Tea", "1.25", "5")
	cache.getErr = errors.New("redis down")

	price, err := uc.GetPrice(context.Background(), "Tea")
	require.NoError(t, err)
	assert.True(t, dec("1.25").Equal(price))
	assert.Equal(t, 1, repo.findCalls)

	assert.Eventually(t, func() bool { return cache.cached("Tea") }, time.Second, 10*time.Millisecond)
}

func TestGetPrice_NotFound(t *testing.T) {
	uc, _, _ := newProductFixture()

	_, err := uc.GetPrice(context.Background(), "Nope")
	assert.ErrorIs(t, err, e.ErrProductNotFound)

	_, err = uc.GetPrice(context.Background(), " ")
	assert.ErrorIs(t, err, e.ErrProductNameRequired)
}

func TestGetSuggestions(t *testing.T) {
	uc, repo, cache := newProductFixture()
	repo.put("Tea", "1.00", "1")
	repo.put("Coffee", "1.00", "1")

	names, err := uc.GetSuggestions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Coffee", "Tea"}, names)

	assert.Eventually(t, func() bool {
		cached, ok, _ := cache.GetProductNames(context.Background())
		return ok && len(cached) == 2
	}, time.Second, 10*time.Millisecond)

	cache.SetProductNames(context.Background(), []string{"Cached"})
	names, err = uc.GetSuggestions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Cached"}, names)
}

func TestListProducts(t *testing.T) {
	uc, repo, _ := newProductFixture()
	repo.put("Tea", "1.00", "1")
	repo.put("Coffee", "2.00", "1")

	products, err := uc.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Tea", products[0].Name)
}
