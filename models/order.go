package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentApproved PaymentStatus = "Approved"
	PaymentDeclined PaymentStatus = "Declined"
)

// IsTerminal reports whether no further payment transition is allowed.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentApproved || s == PaymentDeclined
}

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s.IsTerminal()
}

type FulfillmentStatus string

const (
	FulfillmentReceived       FulfillmentStatus = "received"
	FulfillmentPreparing      FulfillmentStatus = "preparing"
	FulfillmentOutForDelivery FulfillmentStatus = "out_for_delivery"
	FulfillmentDelivered      FulfillmentStatus = "delivered"
)

func (s FulfillmentStatus) Valid() bool {
	switch s {
	case FulfillmentReceived, FulfillmentPreparing, FulfillmentOutForDelivery, FulfillmentDelivered:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodWompi    PaymentMethod = "wompi"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodWompi:
		return true
	}
	return false
}

// CustomerInfo is captured once at checkout and never edited.
type CustomerInfo struct {
	Name    string `gorm:"type:varchar(255);not null" json:"name"`
	Email   string `gorm:"type:varchar(255);not null" json:"email"`
	Phone   string `gorm:"type:varchar(50);not null" json:"phone"`
	Address string `gorm:"type:text;not null" json:"address"`
}

type Order struct {
	ID                 string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	ShortOrderID       uint              `gorm:"not null;uniqueIndex" json:"shortOrderId"`
	CustomerInfo       CustomerInfo      `gorm:"embedded;embeddedPrefix:customer_" json:"customerInfo"`
	OrderItems         []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"orderItems"`
	Total              decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"total"`
	PaymentMethod      PaymentMethod     `gorm:"type:varchar(20);not null" json:"paymentMethod"`
	Status             PaymentStatus     `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	FulfillmentStatus  FulfillmentStatus `gorm:"type:varchar(30);not null;default:'received'" json:"fulfillmentStatus"`
	WompiTransactionID *string           `gorm:"type:varchar(64);uniqueIndex" json:"wompiTransactionId,omitempty"`
	CreatedAt          time.Time         `gorm:"not null;index" json:"createdAt"`
	UpdatedAt          time.Time         `gorm:"not null" json:"updatedAt"`
}

// OrderItem is a snapshot of one cart line at submission time.
type OrderItem struct {
	ID         string          `gorm:"type:varchar(36);primaryKey" json:"-"`
	OrderID    string          `gorm:"type:varchar(36);not null;index" json:"-"`
	Position   int             `gorm:"not null" json:"-"`
	MenuItemID string          `gorm:"type:varchar(36)" json:"id,omitempty"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Quantity   int             `gorm:"not null" json:"quantity"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Subtotal is unit price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// StatusItem is one line of the public status view.
type StatusItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// OrderStatusView is the sanitized projection served to anonymous callers.
// It carries neither customer data nor the internal order id.
type OrderStatusView struct {
	ShortOrderID       uint              `json:"shortOrderId"`
	Status             PaymentStatus     `json:"status"`
	FulfillmentStatus  FulfillmentStatus `json:"fulfillmentStatus"`
	Total              decimal.Decimal   `json:"total"`
	PaymentMethod      PaymentMethod     `json:"paymentMethod"`
	WompiTransactionID *string           `json:"wompiTransactionId,omitempty"`
	Items              []StatusItem      `json:"items"`
	CreatedAt          time.Time         `json:"createdAt"`
}

func (o *Order) StatusView() OrderStatusView {
	items := make([]StatusItem, 0, len(o.OrderItems))
	for _, it := range o.OrderItems {
		items = append(items, StatusItem{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	return OrderStatusView{
		ShortOrderID:       o.ShortOrderID,
		Status:             o.Status,
		FulfillmentStatus:  o.FulfillmentStatus,
		Total:              o.Total,
		PaymentMethod:      o.PaymentMethod,
		WompiTransactionID: o.WompiTransactionID,
		Items:              items,
		CreatedAt:          o.CreatedAt,
	}
}

func init() {
	// totals travel as plain JSON numbers, matching the storefront's cart payloads
	decimal.MarshalJSONWithoutQuotes = true
}
