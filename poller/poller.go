// Package poller confirms a payment after the checkout widget redirects back
// with a gateway transaction id.
package poller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/kebab-storefront/utils"
)

const (
	DefaultInterval    = time.Second
	DefaultMaxAttempts = 10

	SuccessPath  = "/checkout/success"
	RejectedPath = "/checkout/rejected"
)

var (
	ErrMissingTransactionID = errors.New("no transaction id was found")
	ErrUnconfirmed          = errors.New("could not confirm payment status, please contact support")
	// ErrNotFound is returned by a Source while no order carries the
	// transaction yet. Polling continues.
	ErrNotFound = errors.New("order not found yet")
)

type Outcome string

const (
	OutcomeApproved    Outcome = "approved"
	OutcomeDeclined    Outcome = "declined"
	OutcomeUnconfirmed Outcome = "unconfirmed"
	OutcomeCancelled   Outcome = "cancelled"
	OutcomeFailed      Outcome = "failed"
)

// Source reports the payment status of the order carrying transactionID.
type Source interface {
	Status(ctx context.Context, transactionID string) (string, error)
}

// Hooks are the client-side effects fired on a final status.
type Hooks struct {
	ClearCart func()
	Navigate  func(path string)
}

type Poller struct {
	Source      Source
	Interval    time.Duration
	MaxAttempts int
	Hooks       Hooks
}

func New(source Source, hooks Hooks) *Poller {
	return &Poller{
		Source:      source,
		Interval:    DefaultInterval,
		MaxAttempts: DefaultMaxAttempts,
		Hooks:       hooks,
	}
}

// Run polls until a final status, the attempt budget runs out or ctx is
// cancelled. Hooks never fire after ctx is done.
func (p *Poller) Run(ctx context.Context, transactionID string) (Outcome, error) {
	if strings.TrimSpace(transactionID) == "" {
		return OutcomeFailed, ErrMissingTransactionID
	}

	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log := utils.InfoLogger.WithFields(logrus.Fields{"transaction_id": transactionID})
	for attempt := 1; attempt <= attempts; attempt++ {
		status, err := p.Source.Status(ctx, transactionID)
		if ctx.Err() != nil {
			return OutcomeCancelled, ctx.Err()
		}

		switch {
		case errors.Is(err, ErrNotFound):
			log.WithField("attempt", attempt).Debug("order not visible yet")
		case err != nil:
			return OutcomeFailed, fmt.Errorf("error checking order status: %w", err)
		case isApproved(status):
			log.Info("payment approved")
			p.clearCart()
			p.navigate(SuccessPath)
			return OutcomeApproved, nil
		case isDeclined(status):
			log.WithField("status", status).Info("payment rejected")
			p.navigate(RejectedPath)
			return OutcomeDeclined, nil
		}

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return OutcomeCancelled, ctx.Err()
		case <-ticker.C:
		}
	}

	utils.ErrorLogger.WithField("transaction_id", transactionID).Warn("payment status unconfirmed")
	return OutcomeUnconfirmed, ErrUnconfirmed
}

func (p *Poller) clearCart() {
	if p.Hooks.ClearCart != nil {
		p.Hooks.ClearCart()
	}
}

func (p *Poller) navigate(path string) {
	if p.Hooks.Navigate != nil {
		p.Hooks.Navigate(path)
	}
}

func isApproved(status string) bool {
	return strings.EqualFold(status, "Approved")
}

func isDeclined(status string) bool {
	return strings.EqualFold(status, "Declined") || strings.EqualFold(status, "Error")
}
