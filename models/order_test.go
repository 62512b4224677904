package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentStatusTerminal(t *testing.T) {
	assert.False(t, PaymentPending.IsTerminal())
	assert.True(t, PaymentApproved.IsTerminal())
	assert.True(t, PaymentDeclined.IsTerminal())
	assert.False(t, PaymentStatus("APPROVED").Valid())
}

func TestFulfillmentStatusValid(t *testing.T) {
	for _, s := range []FulfillmentStatus{FulfillmentReceived, FulfillmentPreparing, FulfillmentOutForDelivery, FulfillmentDelivered} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, FulfillmentStatus("cooking").Valid())
	assert.False(t, FulfillmentStatus("").Valid())
}

func TestPaymentMethodValid(t *testing.T) {
	assert.True(t, PaymentMethodCash.Valid())
	assert.True(t, PaymentMethodTransfer.Valid())
	assert.True(t, PaymentMethodWompi.Valid())
	assert.False(t, PaymentMethod("bitcoin").Valid())
}

func TestOrderItemSubtotal(t *testing.T) {
	item := OrderItem{Name: "Kebab Classic", Price: decimal.NewFromInt(15000), Quantity: 2}
	assert.True(t, item.Subtotal().Equal(decimal.NewFromInt(30000)))
}

func TestStatusViewOmitsCustomerData(t *testing.T) {
	order := Order{
		ID:           "abc-internal-id",
		ShortOrderID: 7,
		CustomerInfo: CustomerInfo{Name: "Ana", Email: "ana@example.com", Phone: "300", Address: "Calle 1"},
		OrderItems: []OrderItem{
			{ID: "line-1", OrderID: "abc-internal-id", Name: "Kebab Classic", Price: decimal.NewFromInt(15000), Quantity: 2},
		},
		Total:  decimal.NewFromInt(30000),
		Status: PaymentPending,
	}

	raw, err := json.Marshal(order.StatusView())
	require.NoError(t, err)
	body := string(raw)
	assert.NotContains(t, body, "ana@example.com")
	assert.NotContains(t, body, "Calle 1")
	assert.NotContains(t, body, "abc-internal-id")
	assert.NotContains(t, body, `"id"`)
	assert.Contains(t, body, `"total":30000`)
	assert.Contains(t, body, `"shortOrderId":7`)
	assert.Contains(t, body, `"items":[{"name":"Kebab Classic","quantity":2,"price":15000}]`)
}

func TestStatusViewWithoutItemsHasEmptyList(t *testing.T) {
	order := Order{ShortOrderID: 3}

	raw, err := json.Marshal(order.StatusView())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"items":[]`)
}
