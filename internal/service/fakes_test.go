package service

import (
	"context"
	"strings"
	"sync"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes. They honor the same contracts as the gorm
// implementations (gorm sentinel errors included) so services can be
// exercised without a database.

type fakeClientRepo struct {
	mu      sync.Mutex
	clients map[uuid.UUID]*model.Client

	invoiceCounts map[uuid.UUID]int64
	deleted       []uuid.UUID
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{
		clients:       make(map[uuid.UUID]*model.Client),
		invoiceCounts: make(map[uuid.UUID]int64),
	}
}

func (f *fakeClientRepo) Create(_ context.Context, client *model.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.clients {
		if existing.FiscalCode == client.FiscalCode {
			return gorm.ErrDuplicatedKey
		}
	}
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	stored := *client
	f.clients[client.ID] = &stored
	return nil
}

func (f *fakeClientRepo) Update(_ context.Context, client *model.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, existing := range f.clients {
		if id != client.ID && existing.FiscalCode == client.FiscalCode {
			return gorm.ErrDuplicatedKey
		}
	}
	stored := *client
	f.clients[client.ID] = &stored
	return nil
}

func (f *fakeClientRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.clients, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeClientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	client, ok := f.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *client
	return &found, nil
}

func (f *fakeClientRepo) List(_ context.Context, search string, offset, limit int) ([]model.Client, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []model.Client
	for _, client := range f.clients {
		if search == "" ||
			strings.Contains(strings.ToLower(client.FirstName), strings.ToLower(search)) ||
			strings.Contains(strings.ToLower(client.LastName), strings.ToLower(search)) ||
			strings.Contains(strings.ToLower(client.FiscalCode), strings.ToLower(search)) {
			matched = append(matched, *client)
		}
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (f *fakeClientRepo) CountInvoices(_ context.Context, id uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invoiceCounts[id], nil
}

type fakeInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*model.Invoice

	createErr error
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[uuid.UUID]*model.Invoice)}
}

func (f *fakeInvoiceRepo) Create(_ context.Context, invoice *model.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	stored := *invoice
	f.invoices[invoice.ID] = &stored
	return nil
}

func (f *fakeInvoiceRepo) Update(_ context.Context, invoice *model.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *invoice
	f.invoices[invoice.ID] = &stored
	return nil
}

func (f *fakeInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	invoice, ok := f.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *invoice
	return &found, nil
}

func (f *fakeInvoiceRepo) FindByIDWithClient(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeInvoiceRepo) List(_ context.Context, year int) ([]model.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.Invoice
	for _, invoice := range f.invoices {
		if year == 0 || invoice.Year == year {
			result = append(result, *invoice)
		}
	}
	// year DESC, number DESC, matching the real query
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].Year > result[i].Year ||
				(result[j].Year == result[i].Year && result[j].Number > result[i].Number) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result, nil
}

func (f *fakeInvoiceRepo) ListYears(_ context.Context) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[int]bool)
	var years []int
	for _, invoice := range f.invoices {
		if !seen[invoice.Year] {
			seen[invoice.Year] = true
			years = append(years, invoice.Year)
		}
	}
	for i := 0; i < len(years); i++ {
		for j := i + 1; j < len(years); j++ {
			if years[j] > years[i] {
				years[i], years[j] = years[j], years[i]
			}
		}
	}
	return years, nil
}

type fakeCounterRepo struct {
	mu       sync.Mutex
	counters map[int]int
}

func newFakeCounterRepo() *fakeCounterRepo {
	return &fakeCounterRepo{counters: make(map[int]int)}
}

func (f *fakeCounterRepo) NextNumber(_ context.Context, year int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters[year]++
	return f.counters[year], nil
}

func (f *fakeCounterRepo) Current(_ context.Context, year int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counters[year], nil
}

type fakeCostRepo struct {
	mu    sync.Mutex
	costs map[uuid.UUID]*model.Cost
}

func newFakeCostRepo() *fakeCostRepo {
	return &fakeCostRepo{costs: make(map[uuid.UUID]*model.Cost)}
}

func (f *fakeCostRepo) Create(_ context.Context, cost *model.Cost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cost.ID == uuid.Nil {
		cost.ID = uuid.New()
	}
	stored := *cost
	f.costs[cost.ID] = &stored
	return nil
}

func (f *fakeCostRepo) Update(_ context.Context, cost *model.Cost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *cost
	f.costs[cost.ID] = &stored
	return nil
}

func (f *fakeCostRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.costs, id)
	return nil
}

func (f *fakeCostRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cost, ok := f.costs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *cost
	return &found, nil
}

func (f *fakeCostRepo) List(_ context.Context) ([]model.Cost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.Cost
	for _, cost := range f.costs {
		result = append(result, *cost)
	}
	return result, nil
}

type fakePricingRuleRepo struct {
	mu    sync.Mutex
	rules map[int]*model.PricingRule
}

func newFakePricingRuleRepo() *fakePricingRuleRepo {
	return &fakePricingRuleRepo{rules: make(map[int]*model.PricingRule)}
}

func (f *fakePricingRuleRepo) FindByYear(_ context.Context, year int) (*model.PricingRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rule, ok := f.rules[year]
	if !ok {
		return nil, nil
	}
	found := *rule
	return &found, nil
}

func (f *fakePricingRuleRepo) Upsert(_ context.Context, rule *model.PricingRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	stored := *rule
	f.rules[rule.Year] = &stored
	return nil
}

func (f *fakePricingRuleRepo) List(_ context.Context) ([]model.PricingRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.PricingRule
	for _, rule := range f.rules {
		result = append(result, *rule)
	}
	return result, nil
}

// fakeTxManager runs the callback on the bare context; the fakes above
// have no transactional state to isolate.
type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type publishedEvent struct {
	name    string
	payload interface{}
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakeNotifier) Publish(event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{name: event, payload: payload})
}

func (f *fakeNotifier) eventNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.events))
	for _, e := range f.events {
		names = append(names, e.name)
	}
	return names
}
