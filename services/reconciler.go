package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/kebab-storefront/models"
	"github.com/yeremiapane/kebab-storefront/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReconcileAction string

const (
	ActionIgnored   ReconcileAction = "ignored"
	ActionApplied   ReconcileAction = "applied"
	ActionAttached  ReconcileAction = "attached"
	ActionDuplicate ReconcileAction = "duplicate"
)

type ReconcileResult struct {
	Action        ReconcileAction      `json:"action"`
	OrderID       string               `json:"orderId,omitempty"`
	Status        models.PaymentStatus `json:"status,omitempty"`
	TransactionID string               `json:"transactionId,omitempty"`
	Order         *models.Order        `json:"-"`
}

// Reconciler moves orders out of Pending based on gateway transactions.
type Reconciler struct {
	DB     *gorm.DB
	Wompi  *WompiService
	Orders *OrderService
	Guard  DeliveryGuard
}

// NewReconciler wires a reconciler; guard may be nil.
func NewReconciler(db *gorm.DB, wompi *WompiService, guard DeliveryGuard) *Reconciler {
	return &Reconciler{
		DB:     db,
		Wompi:  wompi,
		Orders: NewOrderService(db),
		Guard:  guard,
	}
}

// HandleWebhook verifies and applies one raw gateway delivery. Nothing is
// read from the event beyond its signature until verification succeeds.
func (r *Reconciler) HandleWebhook(ctx context.Context, raw []byte) (*ReconcileResult, error) {
	ev, err := ParseEvent(raw)
	if err != nil {
		return nil, err
	}

	if err := r.Wompi.VerifyEvent(ev); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"event":      ev.Event.Name,
			"properties": ev.Signature.Properties,
			"timestamp":  ev.Timestamp.String(),
		}).Warnf("rejected webhook: %v", err)
		return nil, err
	}

	if ev.Event.Name != EventTransactionUpdated {
		utils.InfoLogger.WithField("event", ev.Event.Name).Info("webhook event ignored")
		return &ReconcileResult{Action: ActionIgnored}, nil
	}
	txn, err := ev.Transaction()
	if err != nil {
		utils.InfoLogger.WithField("event", ev.Event.Name).Info("webhook event carries no transaction")
		return &ReconcileResult{Action: ActionIgnored}, nil
	}

	key := ev.Signature.Checksum
	if r.Guard != nil {
		claimed, err := r.Guard.Claim(ctx, key)
		switch {
		case err != nil:
			// the store-level Pending check still keeps the update idempotent
			utils.ErrorLogger.WithError(err).Warn("delivery guard unavailable")
		case !claimed:
			utils.InfoLogger.WithField("transaction_id", txn.ID).Info("duplicate webhook delivery")
			return &ReconcileResult{Action: ActionDuplicate, TransactionID: txn.ID}, nil
		}
	}

	result, err := r.ApplyTransaction(ctx, txn)
	if err != nil {
		if r.Guard != nil {
			if relErr := r.Guard.Release(ctx, key); relErr != nil {
				utils.ErrorLogger.WithError(relErr).Warn("failed to release delivery claim")
			}
		}
		return nil, err
	}
	return result, nil
}

// ApplyTransaction performs the Pending -> Approved|Declined transition for
// the order named by the transaction reference. Terminal orders are left as
// they are.
func (r *Reconciler) ApplyTransaction(ctx context.Context, txn *Transaction) (*ReconcileResult, error) {
	orderID, err := r.Wompi.OrderIDFromReference(txn.Reference)
	if err != nil {
		utils.ErrorLogger.WithField("reference", txn.Reference).Warn("transaction reference rejected")
		return nil, err
	}
	target := MapTransactionStatus(txn.Status)

	result := &ReconcileResult{OrderID: orderID, TransactionID: txn.ID}
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", orderID).
			First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}

		if order.Status.IsTerminal() {
			result.Action = ActionDuplicate
			result.Status = order.Status
			return nil
		}

		if err := r.checkAmount(&order, txn); err != nil {
			return err
		}

		if target == models.PaymentPending {
			result.Action = ActionAttached
			result.Status = models.PaymentPending
			if txn.ID == "" {
				return nil
			}
			return tx.Model(&models.Order{}).
				Where("id = ?", order.ID).
				Update("wompi_transaction_id", txn.ID).Error
		}

		updates := map[string]interface{}{"status": target}
		if txn.ID != "" {
			updates["wompi_transaction_id"] = txn.ID
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.PaymentPending).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("update order status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			result.Action = ActionDuplicate
			result.Status = order.Status
			return nil
		}
		result.Action = ActionApplied
		result.Status = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Action != ActionDuplicate {
		order, err := r.Orders.FindByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		result.Order = order
		utils.InfoLogger.WithFields(logrus.Fields{
			"order_id":       orderID,
			"short_order_id": order.ShortOrderID,
			"transaction_id": txn.ID,
			"status":         result.Status,
		}).Info("payment status reconciled")
	}
	return result, nil
}

func (r *Reconciler) checkAmount(order *models.Order, txn *Transaction) error {
	if txn.AmountInCents > 0 {
		expected, err := AmountInCents(order.Total)
		if err != nil {
			return invalid(ErrAmountMismatch, "stored total "+order.Total.String()+" is not payable")
		}
		if expected != txn.AmountInCents {
			utils.ErrorLogger.WithFields(logrus.Fields{
				"order_id": order.ID,
				"expected": expected,
				"received": txn.AmountInCents,
			}).Warn("transaction amount mismatch")
			return invalid(ErrAmountMismatch, fmt.Sprintf("expected %d cents, got %d", expected, txn.AmountInCents))
		}
	}
	if txn.Currency != "" && r.Wompi.config.Currency != "" && txn.Currency != r.Wompi.config.Currency {
		return invalid(ErrAmountMismatch, "currency "+txn.Currency)
	}
	return nil
}

// SyncTransaction resolves an order by gateway transaction id, asking the
// gateway when the webhook has not arrived yet.
func (r *Reconciler) SyncTransaction(ctx context.Context, transactionID string) (*models.Order, error) {
	order, err := r.Orders.FindByTransactionID(ctx, transactionID)
	if err != nil && !errors.Is(err, ErrOrderNotFound) {
		return nil, err
	}
	if order != nil && order.Status.IsTerminal() {
		return order, nil
	}

	txn, fetchErr := r.Wompi.FetchTransaction(ctx, transactionID)
	if fetchErr != nil {
		if order != nil {
			utils.ErrorLogger.WithError(fetchErr).Warn("gateway lookup failed, serving stored status")
			return order, nil
		}
		if errors.Is(fetchErr, ErrTransactionNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fetchErr
	}
	if txn.ID != transactionID {
		return nil, fmt.Errorf("%w: gateway returned transaction %s", ErrGatewayStatus, txn.ID)
	}

	result, err := r.ApplyTransaction(ctx, txn)
	if err != nil {
		return nil, err
	}
	if result.Order != nil {
		return result.Order, nil
	}
	return r.Orders.FindByID(ctx, result.OrderID)
}
