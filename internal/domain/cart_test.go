package domain_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/storefront/internal/domain"
)

func TestCart_AddItem(t *testing.T) {
	tests := []struct {
		name         string
		adds         []domain.LineItem
		wantItems    int
		wantQuantity int
		wantAmount   int64
	}{
		{
			name:         "single item",
			adds:         []domain.LineItem{{ProductID: "A", UnitPrice: 1000, Quantity: 2}},
			wantItems:    1,
			wantQuantity: 2,
			wantAmount:   2000,
		},
		{
			name: "same product merges additively",
			adds: []domain.LineItem{
				{ProductID: "A", UnitPrice: 1000, Quantity: 2},
				{ProductID: "A", UnitPrice: 1000, Quantity: 3},
			},
			wantItems:    1,
			wantQuantity: 5,
			wantAmount:   5000,
		},
		{
			name: "distinct products append",
			adds: []domain.LineItem{
				{ProductID: "A", UnitPrice: 1000, Quantity: 2},
				{ProductID: "B", UnitPrice: 500, Quantity: 1},
			},
			wantItems:    2,
			wantQuantity: 3,
			wantAmount:   2500,
		},
		{
			name:         "zero price item",
			adds:         []domain.LineItem{{ProductID: "free", UnitPrice: 0, Quantity: 4}},
			wantItems:    1,
			wantQuantity: 4,
			wantAmount:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cart domain.Cart
			for _, item := range tt.adds {
				cart.AddItem(item)
			}

			assert.Len(t, cart.Items, tt.wantItems)
			assert.Equal(t, tt.wantQuantity, cart.TotalQuantity)
			assert.Equal(t, tt.wantAmount, cart.TotalAmount)
		})
	}
}

func TestCart_TotalsAreFoldOfItems(t *testing.T) {
	productIDs := []string{"p1", "p2", "p3", "p4"}

	for run := 0; run < 50; run++ {
		var cart domain.Cart
		wantQuantity := map[string]int{}
		price := map[string]int64{}

		adds := gofakeit.Number(1, 30)
		for i := 0; i < adds; i++ {
			id := productIDs[gofakeit.Number(0, len(productIDs)-1)]
			if _, ok := price[id]; !ok {
				price[id] = int64(gofakeit.Number(0, 100000))
			}
			qty := gofakeit.Number(1, 10)
			cart.AddItem(domain.LineItem{
				ProductID: id,
				Title:     gofakeit.ProductName(),
				UnitPrice: price[id],
				Quantity:  qty,
			})
			wantQuantity[id] += qty
		}

		require.Len(t, cart.Items, len(wantQuantity), "one line per product id")

		var totalQuantity int
		var totalAmount int64
		for id, qty := range wantQuantity {
			item, ok := cart.Find(id)
			require.True(t, ok)
			assert.Equal(t, qty, item.Quantity)
			totalQuantity += qty
			totalAmount += int64(qty) * price[id]
		}
		assert.Equal(t, totalQuantity, cart.TotalQuantity)
		assert.Equal(t, totalAmount, cart.TotalAmount)
	}
}

func TestCart_RemoveItem(t *testing.T) {
	var cart domain.Cart
	cart.AddItem(domain.LineItem{ProductID: "A", UnitPrice: 1000, Quantity: 2})
	cart.AddItem(domain.LineItem{ProductID: "B", UnitPrice: 500, Quantity: 1})

	t.Run("unknown product is a no-op", func(t *testing.T) {
		before := cart.Clone()
		cart.RemoveItem("missing")
		assert.Equal(t, before, cart)
	})

	t.Run("existing product is removed", func(t *testing.T) {
		cart.RemoveItem("A")
		require.Len(t, cart.Items, 1)
		assert.Equal(t, "B", cart.Items[0].ProductID)
		assert.Equal(t, 1, cart.TotalQuantity)
		assert.Equal(t, int64(500), cart.TotalAmount)
	})
}

func TestCart_RemoveItemDoesNotAliasClones(t *testing.T) {
	var cart domain.Cart
	cart.AddItem(domain.LineItem{ProductID: "A", UnitPrice: 1, Quantity: 1})
	cart.AddItem(domain.LineItem{ProductID: "B", UnitPrice: 2, Quantity: 1})

	shared := cart
	shared.RemoveItem("A")

	assert.Len(t, cart.Items, 2)
	assert.Equal(t, "A", cart.Items[0].ProductID)
}

func TestCart_UpdateQuantity(t *testing.T) {
	tests := []struct {
		name         string
		productID    string
		quantity     int
		wantItems    int
		wantQuantity int
		wantAmount   int64
	}{
		{name: "sets quantity, not additive", productID: "A", quantity: 5, wantItems: 2, wantQuantity: 6, wantAmount: 5500},
		{name: "unknown product is a no-op", productID: "Z", quantity: 5, wantItems: 2, wantQuantity: 3, wantAmount: 2500},
		{name: "zero removes the line", productID: "A", quantity: 0, wantItems: 1, wantQuantity: 1, wantAmount: 500},
		{name: "negative removes the line", productID: "B", quantity: -3, wantItems: 1, wantQuantity: 2, wantAmount: 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cart domain.Cart
			cart.AddItem(domain.LineItem{ProductID: "A", UnitPrice: 1000, Quantity: 2})
			cart.AddItem(domain.LineItem{ProductID: "B", UnitPrice: 500, Quantity: 1})

			cart.UpdateQuantity(tt.productID, tt.quantity)

			assert.Len(t, cart.Items, tt.wantItems)
			assert.Equal(t, tt.wantQuantity, cart.TotalQuantity)
			assert.Equal(t, tt.wantAmount, cart.TotalAmount)
		})
	}
}

func TestCart_Recalculate(t *testing.T) {
	cart := domain.Cart{
		Items: []domain.LineItem{
			{ProductID: "A", UnitPrice: 250, Quantity: 4},
			{ProductID: "B", UnitPrice: 100, Quantity: 1},
		},
		TotalQuantity: 999,
		TotalAmount:   -1,
	}

	cart.Recalculate()
	assert.Equal(t, 5, cart.TotalQuantity)
	assert.Equal(t, int64(1100), cart.TotalAmount)

	cart.Recalculate()
	assert.Equal(t, 5, cart.TotalQuantity)
	assert.Equal(t, int64(1100), cart.TotalAmount)
}

func TestCart_Clear(t *testing.T) {
	var cart domain.Cart
	cart.AddItem(domain.LineItem{ProductID: "A", UnitPrice: 1000, Quantity: 2})

	cart.Clear()

	assert.Empty(t, cart.Items)
	assert.NotNil(t, cart.Items)
	assert.Zero(t, cart.TotalQuantity)
	assert.Zero(t, cart.TotalAmount)
	assert.True(t, cart.IsEmpty())
}

func TestSubmissionState_CanTransitionTo(t *testing.T) {
	assert.True(t, domain.StateIdle.CanTransitionTo(domain.StateValidating))
	assert.True(t, domain.StateValidating.CanTransitionTo(domain.StateFailed))
	assert.True(t, domain.StateCreatingOrder.CanTransitionTo(domain.StateFailed))
	assert.True(t, domain.StateAttachingItems.CanTransitionTo(domain.StateFailed))
	assert.False(t, domain.StateAwaitingPayment.CanTransitionTo(domain.StateFailed))
	assert.True(t, domain.StateAwaitingPayment.CanTransitionTo(domain.StateCompleted))
	assert.False(t, domain.StateCompleted.CanTransitionTo(domain.StateIdle))
	assert.True(t, domain.StateFailed.IsTerminal())
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, domain.OrderStatusPendingPayment.CanTransitionTo(domain.OrderStatusPaid))
	assert.True(t, domain.OrderStatusPendingPayment.CanTransitionTo(domain.OrderStatusNeedsReconciliation))
	assert.False(t, domain.OrderStatusNeedsReconciliation.CanTransitionTo(domain.OrderStatusPaid))
	assert.False(t, domain.OrderStatusPaid.CanTransitionTo(domain.OrderStatusCancelled))
	assert.False(t, domain.OrderStatus("BOGUS").IsValid())
}
