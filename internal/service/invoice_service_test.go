package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invoiceFixture struct {
	service  InvoiceService
	invoices *fakeInvoiceRepo
	clients  *fakeClientRepo
	counters *fakeCounterRepo
	notifier *fakeNotifier
	clientID uuid.UUID
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()

	clients := newFakeClientRepo()
	client := &model.Client{FirstName: "Matteo", LastName: "Moretti", FiscalCode: "MRTMTT91D08F205J"}
	require.NoError(t, clients.Create(context.Background(), client))

	invoices := newFakeInvoiceRepo()
	counters := newFakeCounterRepo()
	notifier := &fakeNotifier{}
	rules := NewPricingRuleService(newFakePricingRuleRepo())

	return &invoiceFixture{
		service:  NewInvoiceService(invoices, clients, counters, rules, fakeTxManager{}, notifier),
		invoices: invoices,
		clients:  clients,
		counters: counters,
		notifier: notifier,
		clientID: client.ID,
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestCreateInvoiceDefaults(t *testing.T) {
	f := newInvoiceFixture(t)

	invoice, err := f.service.CreateInvoice(context.Background(), CreateInvoiceRequest{
		ClientID:  f.clientID.String(),
		IssueDate: "2025-03-10",
	})
	require.NoError(t, err)

	assert.Equal(t, time.Now().Year(), invoice.Year)
	assert.Equal(t, 1, invoice.Number)
	// default 60.00 all inclusive: base 58.82, 2% contribution 1.18
	assert.Equal(t, "58.82", invoice.BaseUnitPrice.StringFixed(2))
	assert.Equal(t, "60.00", invoice.Total.StringFixed(2))
	assert.False(t, invoice.StampDuty)
	assert.Equal(t, "n. 1 di Seduta di consulenza psicologica", invoice.Description)
	assert.Equal(t, []string{"invoice.created"}, f.notifier.eventNames())
}

func TestCreateInvoiceAssignsSequentialNumbers(t *testing.T) {
	f := newInvoiceFixture(t)

	for want := 1; want <= 3; want++ {
		invoice, err := f.service.CreateInvoice(context.Background(), CreateInvoiceRequest{
			ClientID:  f.clientID.String(),
			IssueDate: "2025-03-10",
		})
		require.NoError(t, err)
		assert.Equal(t, want, invoice.Number)
	}
}

func TestCreateInvoiceConcurrentNumbering(t *testing.T) {
	f := newInvoiceFixture(t)

	const workers = 20
	numbers := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			invoice, err := f.service.CreateInvoice(context.Background(), CreateInvoiceRequest{
				ClientID:  f.clientID.String(),
				IssueDate: "2025-03-10",
			})
			if err == nil {
				numbers <- invoice.Number
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int]bool)
	for n := range numbers {
		assert.False(t, seen[n], "number %d issued twice", n)
		seen[n] = true
	}
	// No duplicates and no gaps: exactly 1..workers.
	require.Len(t, seen, workers)
	for n := 1; n <= workers; n++ {
		assert.True(t, seen[n], "number %d missing", n)
	}
}

func TestCreateInvoiceAppliesStampDuty(t *testing.T) {
	f := newInvoiceFixture(t)

	invoice, err := f.service.CreateInvoice(context.Background(), CreateInvoiceRequest{
		ClientID:           f.clientID.String(),
		IssueDate:          "2025-03-10",
		InclusiveUnitPrice: floatPtr(100.00),
	})
	require.NoError(t, err)

	// base 98.04, contribution 1.96, taxable 100.00 > 77.47
	assert.True(t, invoice.StampDuty)
	assert.Equal(t, "102.00", invoice.Total.StringFixed(2))
}

func TestCreateInvoiceValidation(t *testing.T) {
	f := newInvoiceFixture(t)

	cases := map[string]CreateInvoiceRequest{
		"zero sessions": {
			ClientID: f.clientID.String(), IssueDate: "2025-03-10", SessionCount: floatPtr(0),
		},
		"too many sessions": {
			ClientID: f.clientID.String(), IssueDate: "2025-03-10", SessionCount: floatPtr(101),
		},
		"zero price": {
			ClientID: f.clientID.String(), IssueDate: "2025-03-10", InclusiveUnitPrice: floatPtr(0),
		},
		"price over cap": {
			ClientID: f.clientID.String(), IssueDate: "2025-03-10", InclusiveUnitPrice: floatPtr(1000.01),
		},
		"malformed date": {
			ClientID: f.clientID.String(), IssueDate: "10/03/2025",
		},
		"malformed client id": {
			ClientID: "not-a-uuid", IssueDate: "2025-03-10",
		},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.service.CreateInvoice(context.Background(), req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	// Nothing was numbered, persisted or announced.
	current, err := f.counters.Current(context.Background(), time.Now().Year())
	require.NoError(t, err)
	assert.Zero(t, current)
	assert.Empty(t, f.notifier.eventNames())
}

func TestCreateInvoiceUnknownClient(t *testing.T) {
	f := newInvoiceFixture(t)

	_, err := f.service.CreateInvoice(context.Background(), CreateInvoiceRequest{
		ClientID:  uuid.NewString(),
		IssueDate: "2025-03-10",
	})
	assert.ErrorIs(t, err, ErrNotFound)

	current, err := f.counters.Current(context.Background(), time.Now().Year())
	require.NoError(t, err)
	assert.Zero(t, current)
}

func TestCreateInvoiceInsertFailurePublishesNothing(t *testing.T) {
	f := newInvoiceFixture(t)
	f.invoices.createErr = errors.New("insert failed")

	_, err := f.service.CreateInvoice(context.Background(), CreateInvoiceRequest{
		ClientID:  f.clientID.String(),
		IssueDate: "2025-03-10",
	})
	require.Error(t, err)
	assert.Empty(t, f.notifier.eventNames())
}

func TestUpdateInvoiceRecomputesTotals(t *testing.T) {
	f := newInvoiceFixture(t)

	created, err := f.service.CreateInvoice(context.Background(), CreateInvoiceRequest{
		ClientID:  f.clientID.String(),
		IssueDate: "2025-03-10",
	})
	require.NoError(t, err)

	updated, err := f.service.UpdateInvoice(context.Background(), created.ID.String(), UpdateInvoiceRequest{
		IssueDate:    "2025-03-11",
		SessionCount: floatPtr(2),
	})
	require.NoError(t, err)

	// Year and progressivo never change on edit.
	assert.Equal(t, created.Year, updated.Year)
	assert.Equal(t, created.Number, updated.Number)

	// 2 x 58.82 = 117.64, contribution 2.35, taxable 119.99 + bollo
	assert.Equal(t, "121.99", updated.Total.StringFixed(2))
	assert.True(t, updated.StampDuty)
	assert.Equal(t, "n. 2 di Sedute di consulenza psicologica", updated.Description)
	assert.Equal(t, []string{"invoice.created", "invoice.updated"}, f.notifier.eventNames())
}

func TestUpdateInvoiceNotFound(t *testing.T) {
	f := newInvoiceFixture(t)

	_, err := f.service.UpdateInvoice(context.Background(), uuid.NewString(), UpdateInvoiceRequest{
		IssueDate: "2025-03-11",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetInvoiceRecomputesFromBasePrice(t *testing.T) {
	f := newInvoiceFixture(t)

	created, err := f.service.CreateInvoice(context.Background(), CreateInvoiceRequest{
		ClientID:  f.clientID.String(),
		IssueDate: "2025-03-10",
	})
	require.NoError(t, err)

	// Corrupt the persisted total: reads must not trust it.
	stored := f.invoices.invoices[created.ID]
	stored.Total = stored.Total.Add(stored.Total)

	detail, err := f.service.GetInvoice(context.Background(), created.ID.String())
	require.NoError(t, err)

	assert.Equal(t, "60.00", detail.Total)
	assert.InDelta(t, 60.00, detail.InclusiveUnitPrice, 0.001)
	assert.Equal(t, "58.82", detail.Breakdown.Subtotal)
	assert.Equal(t, "1.18", detail.Breakdown.Contribution)
	assert.Equal(t, "60.00", detail.Breakdown.TaxableTotal)
}

func TestListInvoicesGroupsByYear(t *testing.T) {
	f := newInvoiceFixture(t)

	seed := []struct {
		year, number int
	}{
		{2024, 1}, {2024, 2}, {2025, 1},
	}
	for _, s := range seed {
		require.NoError(t, f.invoices.Create(context.Background(), &model.Invoice{
			Year:      s.year,
			Number:    s.number,
			IssueDate: time.Date(s.year, 3, 10, 0, 0, 0, 0, time.UTC),
			ClientID:  f.clientID,
		}))
	}

	groups, err := f.service.ListInvoices(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, 2025, groups[0].Year)
	require.Len(t, groups[0].Invoices, 1)
	assert.Equal(t, "1/2025", groups[0].Invoices[0].DocumentNumber)

	assert.Equal(t, 2024, groups[1].Year)
	require.Len(t, groups[1].Invoices, 2)
	assert.Equal(t, "2/2024", groups[1].Invoices[0].DocumentNumber)
	assert.Equal(t, "1/2024", groups[1].Invoices[1].DocumentNumber)

	filtered, err := f.service.ListInvoices(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, 2024, filtered[0].Year)
	assert.Len(t, filtered[0].Invoices, 2)
}
