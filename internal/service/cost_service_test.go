package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCostFixture() (CostService, *fakeNotifier) {
	notifier := &fakeNotifier{}
	return NewCostService(newFakeCostRepo(), fakeTxManager{}, notifier), notifier
}

func TestCreateCost(t *testing.T) {
	service, notifier := newCostFixture()

	cost, err := service.CreateCost(context.Background(), CreateCostRequest{
		Description:   "Affitto studio",
		ReferenceYear: 2025,
		PaymentDate:   "2025-01-05",
		Total:         450.00,
		Paid:          true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Affitto studio", cost.Description)
	assert.Equal(t, 2025, cost.ReferenceYear)
	assert.Equal(t, "2025-01-05", cost.PaymentDate)
	assert.InDelta(t, 450.00, cost.Total, 0.001)
	assert.True(t, cost.Paid)
	assert.Equal(t, []string{"cost.created"}, notifier.eventNames())
}

func TestCreateCostValidation(t *testing.T) {
	service, notifier := newCostFixture()

	_, err := service.CreateCost(context.Background(), CreateCostRequest{
		Description:   "Affitto studio",
		ReferenceYear: 2025,
		PaymentDate:   "2025-01-05",
		Total:         0,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = service.CreateCost(context.Background(), CreateCostRequest{
		Description:   "Affitto studio",
		ReferenceYear: 2025,
		PaymentDate:   "05/01/2025",
		Total:         450.00,
	})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, notifier.eventNames())
}

func TestUpdateCostPartial(t *testing.T) {
	service, _ := newCostFixture()

	created, err := service.CreateCost(context.Background(), CreateCostRequest{
		Description:   "Affitto studio",
		ReferenceYear: 2025,
		PaymentDate:   "2025-01-05",
		Total:         450.00,
	})
	require.NoError(t, err)

	paid := true
	updated, err := service.UpdateCost(context.Background(), created.ID, UpdateCostRequest{Paid: &paid})
	require.NoError(t, err)

	assert.True(t, updated.Paid)
	assert.Equal(t, "Affitto studio", updated.Description)
	assert.InDelta(t, 450.00, updated.Total, 0.001)
}

func TestUpdateCostNotFound(t *testing.T) {
	service, _ := newCostFixture()

	_, err := service.UpdateCost(context.Background(), uuid.NewString(), UpdateCostRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCost(t *testing.T) {
	service, _ := newCostFixture()

	created, err := service.CreateCost(context.Background(), CreateCostRequest{
		Description:   "Commercialista",
		ReferenceYear: 2025,
		PaymentDate:   "2025-02-01",
		Total:         200.00,
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteCost(context.Background(), created.ID))

	_, err = service.GetCost(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
