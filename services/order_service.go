package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/kebab-storefront/models"
	"gorm.io/gorm"
)

// CustomerInput is the contact block as posted by the storefront.
type CustomerInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// LineItemInput is one cart line.
type LineItemInput struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// CheckoutRequest accepts both the current and the legacy field names.
type CheckoutRequest struct {
	CustomerInfo    *CustomerInput  `json:"customerInfo"`
	CustomerDetails *CustomerInput  `json:"customerDetails"`
	OrderItems      []LineItemInput `json:"orderItems"`
	Items           []LineItemInput `json:"items"`
	PaymentMethod   string          `json:"paymentMethod"`
}

// OrderDraft is the canonical, validated shape of a checkout.
type OrderDraft struct {
	Customer      models.CustomerInfo
	Items         []models.OrderItem
	Total         decimal.Decimal
	PaymentMethod models.PaymentMethod
}

// Normalize folds legacy names into the canonical shape and validates it.
// Nothing is persisted here.
func (r CheckoutRequest) Normalize() (*OrderDraft, error) {
	lines := r.OrderItems
	if len(lines) == 0 {
		lines = r.Items
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	contact := r.CustomerInfo
	if contact == nil {
		contact = r.CustomerDetails
	}
	if contact == nil {
		return nil, invalid(ErrMissingCustomerField, "customerInfo")
	}
	customer := models.CustomerInfo{
		Name:    strings.TrimSpace(contact.Name),
		Email:   strings.TrimSpace(contact.Email),
		Phone:   strings.TrimSpace(contact.Phone),
		Address: strings.TrimSpace(contact.Address),
	}
	for _, f := range []struct{ name, value string }{
		{"name", customer.Name},
		{"email", customer.Email},
		{"phone", customer.Phone},
		{"address", customer.Address},
	} {
		if f.value == "" {
			return nil, invalid(ErrMissingCustomerField, f.name)
		}
	}

	items := make([]models.OrderItem, 0, len(lines))
	total := decimal.Zero
	for i, line := range lines {
		name := strings.TrimSpace(line.Name)
		switch {
		case name == "":
			return nil, invalid(ErrInvalidLineItem, fmt.Sprintf("item %d has no name", i))
		case line.Quantity < 1:
			return nil, invalid(ErrInvalidLineItem, fmt.Sprintf("item %d quantity must be at least 1", i))
		case line.Price.IsNegative():
			return nil, invalid(ErrInvalidLineItem, fmt.Sprintf("item %d price must not be negative", i))
		case !line.Price.Shift(2).IsInteger():
			return nil, invalid(ErrInvalidLineItem, fmt.Sprintf("item %d price has fractional cents", i))
		}
		item := models.OrderItem{
			Position:   i,
			MenuItemID: line.ID,
			Name:       name,
			Price:      line.Price,
			Quantity:   line.Quantity,
		}
		total = total.Add(item.Subtotal())
		items = append(items, item)
	}

	method := models.PaymentMethod(strings.ToLower(strings.TrimSpace(r.PaymentMethod)))
	if method == "" {
		method = models.PaymentMethodCash
	}
	if !method.Valid() {
		return nil, invalid(ErrInvalidPaymentMethod, string(method))
	}

	return &OrderDraft{
		Customer:      customer,
		Items:         items,
		Total:         total,
		PaymentMethod: method,
	}, nil
}

type OrderFilter struct {
	Status models.PaymentStatus
}

type OrderService struct {
	DB *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{DB: db}
}

// CreateOrder allocates the next short id and inserts the order in one
// transaction. Any failure leaves the counter untouched.
func (s *OrderService) CreateOrder(ctx context.Context, req CheckoutRequest) (*models.Order, error) {
	draft, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		CustomerInfo:      draft.Customer,
		OrderItems:        draft.Items,
		Total:             draft.Total,
		PaymentMethod:     draft.PaymentMethod,
		Status:            models.PaymentPending,
		FulfillmentStatus: models.FulfillmentReceived,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		shortID, err := NextSequenceValue(tx, models.OrderCounterName)
		if err != nil {
			return err
		}
		order.ShortOrderID = shortID

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (s *OrderService) findOne(ctx context.Context, query string, args ...interface{}) (*models.Order, error) {
	var order models.Order
	err := preloadItems(s.DB.WithContext(ctx)).Where(query, args...).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	return &order, nil
}

func (s *OrderService) FindByID(ctx context.Context, id string) (*models.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingOrderID
	}
	return s.findOne(ctx, "id = ?", id)
}

func (s *OrderService) FindByShortID(ctx context.Context, shortID uint) (*models.Order, error) {
	if shortID == 0 {
		return nil, ErrMissingOrderID
	}
	return s.findOne(ctx, "short_order_id = ?", shortID)
}

func (s *OrderService) FindByTransactionID(ctx context.Context, transactionID string) (*models.Order, error) {
	if strings.TrimSpace(transactionID) == "" {
		return nil, ErrMissingOrderID
	}
	return s.findOne(ctx, "wompi_transaction_id = ?", transactionID)
}

// ListOrders returns orders newest first.
func (s *OrderService) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	q := preloadItems(s.DB.WithContext(ctx)).Order("created_at DESC").Order("short_order_id DESC")
	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, invalid(ErrInvalidPaymentStatus, string(filter.Status))
		}
		q = q.Where("status = ?", filter.Status)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// UpdateFulfillmentStatus is the staff-only kitchen/delivery transition.
// Payment status is never touched here.
func (s *OrderService) UpdateFulfillmentStatus(ctx context.Context, id string, status models.FulfillmentStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, invalid(ErrInvalidFulfillmentStatus, string(status))
	}
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingOrderID
	}

	order, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("fulfillment_status", status).Error
	if err != nil {
		return nil, fmt.Errorf("update fulfillment status: %w", err)
	}
	order.FulfillmentStatus = status
	return order, nil
}
