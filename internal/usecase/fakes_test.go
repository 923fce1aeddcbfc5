package usecase

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/shopspring/decimal"
)

// memInventory — потокобезопасный склад в памяти с атомарным условным списанием.
type memInventory struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	nextID   int64

	findErr       error
	reserveErrOn  string
	restoreErr    error
	beforeReserve func(name string)

	reserveCalls []string
	restoreCalls []string
}

func newMemInventory(units map[string]string) *memInventory {
	inv := &memInventory{products: map[string]*domain.Product{}}
	for name, u := range units {
		inv.put(name, "1.00", u)
	}
	return inv
}

func (m *memInventory) put(name, price, units string) *domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p := domain.NewProduct(name, decimal.RequireFromString(price), "general", decimal.RequireFromString(units))
	p.ID = m.nextID
	m.products[name] = p
	return p
}

func (m *memInventory) units(name string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[name].Units
}

func (m *memInventory) FindByNames(_ context.Context, names []string) (map[string]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	res := make(map[string]domain.Product, len(names))
	for _, n := range names {
		if p, ok := m.products[n]; ok {
			res[n] = *p
		}
	}
	return res, nil
}

func (m *memInventory) ReserveUnits(_ context.Context, name string, qty decimal.Decimal) (bool, error) {
	if m.beforeReserve != nil {
		m.beforeReserve(name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.reserveCalls = append(m.reserveCalls, name)
	if name == m.reserveErrOn {
		return false, errStoreDown
	}
	p, ok := m.products[name]
	if !ok || p.Units.LessThan(qty) {
		return false, nil
	}
	p.Units = p.Units.Sub(qty)
	return true, nil
}

func (m *memInventory) RestoreUnits(_ context.Context, name string, qty decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restoreCalls = append(m.restoreCalls, name)
	if m.restoreErr != nil {
		return m.restoreErr
	}
	m.products[name].Units = m.products[name].Units.Add(qty)
	return nil
}

// memProducts дополняет memInventory CRUD-операциями ProductRepository.
type memProducts struct {
	*memInventory
	createErr error
	findCalls int
}

func (m *memProducts) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.Name]; ok {
		return nil, e.ErrProductExists
	}
	m.nextID++
	p := *product
	p.ID = m.nextID
	m.products[p.Name] = &p
	return &p, nil
}

func (m *memProducts) List(_ context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		res = append(res, *p)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (m *memProducts) Update(_ context.Context, product *domain.Product) (*UpdateProductRes, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, p := range m.products {
		if p.ID == product.ID {
			delete(m.products, name)
			updated := *product
			m.products[updated.Name] = &updated
			return NewUpdateProductRes(&updated, name), nil
		}
	}
	return nil, e.ErrProductNotFound
}

func (m *memProducts) FindByName(_ context.Context, name string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	p, ok := m.products[name]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProducts) Names(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.products))
	for n := range m.products {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

type fakeBillRepo struct {
	mu    sync.Mutex
	bills []*domain.Bill
	err   error
}

func (f *fakeBillRepo) Create(_ context.Context, bill *domain.Bill) (*domain.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	stored := *bill
	stored.ID = int64(len(f.bills) + 1)
	f.bills = append(f.bills, &stored)
	return &stored, nil
}

func (f *fakeBillRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bills)
}

type fakeOutboxRepo struct {
	mu     sync.Mutex
	events []*OutboxEvent
	err    error
}

func (f *fakeOutboxRepo) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	stored := *event
	stored.ID = int64(len(f.events) + 1)
	f.events = append(f.events, &stored)
	return &stored, nil
}

func (f *fakeOutboxRepo) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) MarkAsProcessed(context.Context, int64) error { return nil }

func (f *fakeOutboxRepo) MarkAsPending(context.Context, int64) error { return nil }

// passthroughTx вызывает fn без настоящей транзакции: откат целиком на компенсации.
type passthroughTx struct {
	calls int
}

func (p *passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

type fakeCache struct {
	mu       sync.Mutex
	products map[string]domain.Product
	names    []string
	hasNames bool
	deleted  []string
	getErr   error
}

func newFakeCache() *fakeCache {
	return &fakeCache{products: map[string]domain.Product{}}
}

func (f *fakeCache) GetProducts(_ context.Context, names []string) (map[string]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	res := map[string]domain.Product{}
	for _, n := range names {
		if p, ok := f.products[n]; ok {
			res[n] = p
		}
	}
	return res, nil
}

func (f *fakeCache) SetProducts(_ context.Context, products []domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range products {
		f.products[p.Name] = p
	}
	return nil
}

func (f *fakeCache) DeleteProducts(_ context.Context, names []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range names {
		delete(f.products, n)
	}
	f.deleted = append(f.deleted, names...)
	return nil
}

func (f *fakeCache) GetProductNames(context.Context) ([]string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.names, f.hasNames, nil
}

func (f *fakeCache) SetProductNames(_ context.Context, names []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names, f.hasNames = names, true
	return nil
}

func (f *fakeCache) DeleteProductNames(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names, f.hasNames = nil, false
	return nil
}

func (f *fakeCache) cached(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.products[name]
	return ok
}

func (f *fakeCache) deletedNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	nextID    int64
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.users[user.Username]; ok {
		return nil, e.ErrUsernameExists
	}
	f.nextID++
	u := *user
	u.ID = f.nextID
	f.users[u.Username] = &u
	return &u, nil
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return nil, e.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) List(context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		res = append(res, *u)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, u := range f.users {
		if u.ID == id {
			delete(f.users, name)
			return u, nil
		}
	}
	return nil, e.ErrUserNotFound
}

type fakeImages struct {
	mu        sync.Mutex
	uploaded  map[string][]byte
	cleaned   []string
	uploadErr error
}

func newFakeImages() *fakeImages {
	return &fakeImages{uploaded: map[string][]byte{}}
}

func (f *fakeImages) UploadImages(_ context.Context, req *UploadImagesReq) (*UploadImagesRes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	keys := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		key := req.Prefix + "/" + img.Name
		f.uploaded[key] = img.Data
		keys = append(keys, key)
	}
	return NewUploadImagesRes(keys), nil
}

func (f *fakeImages) OpenImage(_ context.Context, key string) (*ImageObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.uploaded[key]
	if !ok {
		return nil, e.ErrImageNotFound
	}
	return &ImageObject{Body: io.NopCloser(bytes.NewReader(data)), ContentType: "image/png", Size: int64(len(data))}, nil
}

func (f *fakeImages) CleanupImages(keys []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.uploaded, k)
	}
	f.cleaned = append(f.cleaned, keys...)
}
