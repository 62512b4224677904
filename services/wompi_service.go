package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/kebab-storefront/config"
	"github.com/yeremiapane/kebab-storefront/models"
)

const (
	EventTransactionUpdated = "transaction.updated"

	TransactionApproved = "APPROVED"
	TransactionPending  = "PENDING"
	TransactionDeclined = "DECLINED"
	TransactionVoided   = "VOIDED"
	TransactionError    = "ERROR"
)

// WompiService signs outbound payment requests, verifies inbound events and
// reads transactions from the gateway API.
type WompiService struct {
	config     config.WompiConfig
	httpClient *http.Client
}

func NewWompiService(cfg config.WompiConfig) *WompiService {
	return &WompiService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// WithHTTPClient swaps the client used for gateway API calls.
func (ws *WompiService) WithHTTPClient(client *http.Client) *WompiService {
	ws.httpClient = client
	return ws
}

// ValidateConfig fails when either signing secret is absent.
func (ws *WompiService) ValidateConfig() error {
	if ws.config.IntegritySecret == "" {
		return fmt.Errorf("%w: WOMPI_INTEGRITY_SECRET", config.ErrMissingSecret)
	}
	if ws.config.EventsSecret == "" {
		return fmt.Errorf("%w: WOMPI_EVENTS_SECRET", config.ErrMissingSecret)
	}
	if ws.config.ReferencePrefix == "" {
		return errors.New("ORDER_REFERENCE_PREFIX is not set")
	}
	return nil
}

// IntegritySignature is what the payment widget needs to open a checkout.
type IntegritySignature struct {
	Signature     string `json:"signature"`
	Reference     string `json:"reference"`
	AmountInCents int64  `json:"amountInCents"`
	Currency      string `json:"currency"`
	PublicKey     string `json:"publicKey,omitempty"`
}

// AmountInCents converts a major-unit amount to minor units. Fractions of a
// cent are rejected rather than rounded.
func AmountInCents(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, invalid(ErrInvalidAmount, "amount must be positive")
	}
	cents := amount.Shift(2)
	if !cents.IsInteger() {
		return 0, invalid(ErrInvalidAmount, "amount has fractional cents")
	}
	return cents.IntPart(), nil
}

// IntegritySignature computes sha256(reference + amountInCents + currency + integritySecret).
func (ws *WompiService) IntegritySignature(reference string, amount decimal.Decimal) (*IntegritySignature, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, ErrMissingReference
	}
	cents, err := AmountInCents(amount)
	if err != nil {
		return nil, err
	}

	payload := reference + strconv.FormatInt(cents, 10) + ws.config.Currency + ws.config.IntegritySecret
	return &IntegritySignature{
		Signature:     sha256Hex(payload),
		Reference:     reference,
		AmountInCents: cents,
		Currency:      ws.config.Currency,
		PublicKey:     ws.config.PublicKey,
	}, nil
}

// Reference builds the gateway reference for an internal order id.
func (ws *WompiService) Reference(orderID string) string {
	return ws.config.ReferencePrefix + orderID
}

// OrderIDFromReference returns the suffix after the reference delimiter.
func (ws *WompiService) OrderIDFromReference(reference string) (string, error) {
	_, orderID, found := strings.Cut(reference, ws.config.ReferencePrefix)
	if !found {
		return "", invalid(ErrInvalidReference, "delimiter not found in "+strconv.Quote(reference))
	}
	if strings.TrimSpace(orderID) == "" {
		return "", invalid(ErrInvalidReference, "empty order id in "+strconv.Quote(reference))
	}
	return orderID, nil
}

// EventName accepts both the plain string form and the {id, name} object form.
type EventName struct {
	ID   string
	Name string
}

func (n *EventName) UnmarshalJSON(b []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(b), []byte("{")) {
		var obj struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		n.ID, n.Name = obj.ID, obj.Name
		return nil
	}
	return json.Unmarshal(b, &n.Name)
}

type EventSignature struct {
	Properties []string `json:"properties"`
	Checksum   string   `json:"checksum"`
}

// Event is an inbound gateway notification.
type Event struct {
	Event       EventName              `json:"event"`
	Data        map[string]interface{} `json:"data"`
	Environment string                 `json:"environment"`
	Signature   EventSignature         `json:"signature"`
	Timestamp   json.Number            `json:"timestamp"`
	SentAt      string                 `json:"sent_at"`
}

// Transaction is the gateway's view of a payment attempt.
type Transaction struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	Reference         string `json:"reference"`
	AmountInCents     int64  `json:"amount_in_cents"`
	Currency          string `json:"currency"`
	PaymentMethodType string `json:"payment_method_type"`
}

// ParseEvent decodes a raw body keeping numbers in their exact textual form,
// which the checksum is computed over.
func ParseEvent(raw []byte) (*Event, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var ev Event
	if err := dec.Decode(&ev); err != nil {
		return nil, invalid(ErrMalformedEvent, err.Error())
	}
	return &ev, nil
}

// Transaction extracts data.transaction.
func (ev *Event) Transaction() (*Transaction, error) {
	raw, ok := ev.Data["transaction"]
	if !ok || raw == nil {
		return nil, invalid(ErrMalformedEvent, "data.transaction is missing")
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, invalid(ErrMalformedEvent, err.Error())
	}
	var tx Transaction
	if err := json.Unmarshal(b, &tx); err != nil {
		return nil, invalid(ErrMalformedEvent, err.Error())
	}
	return &tx, nil
}

// VerifyEvent recomputes the event checksum: the values named by
// signature.properties (resolved under data, in the order given), then the
// timestamp, then the events secret.
func (ws *WompiService) VerifyEvent(ev *Event) error {
	if ev.Signature.Checksum == "" || len(ev.Signature.Properties) == 0 || ev.Timestamp.String() == "" {
		return ErrInvalidSignature
	}

	var sb strings.Builder
	for _, path := range ev.Signature.Properties {
		value, err := resolveProperty(ev.Data, path)
		if err != nil {
			return err
		}
		sb.WriteString(value)
	}
	sb.WriteString(ev.Timestamp.String())
	sb.WriteString(ws.config.EventsSecret)

	computed := sha256Hex(sb.String())
	if subtle.ConstantTimeCompare([]byte(computed), []byte(ev.Signature.Checksum)) != 1 {
		return ErrInvalidSignature
	}
	return nil
}

// resolveProperty walks a dot path and renders the scalar it ends on.
func resolveProperty(data map[string]interface{}, path string) (string, error) {
	var current interface{} = data
	for _, key := range strings.Split(path, ".") {
		obj, ok := current.(map[string]interface{})
		if !ok || key == "" {
			return "", fmt.Errorf("%w: %s", ErrUnresolvableProperty, path)
		}
		current, ok = obj[key]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnresolvableProperty, path)
		}
	}

	switch v := current.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnresolvableProperty, path)
	}
}

// MapTransactionStatus maps a gateway status to the local payment status.
// Only PENDING is non-final; everything that is not APPROVED declines.
func MapTransactionStatus(status string) models.PaymentStatus {
	switch strings.ToUpper(status) {
	case TransactionApproved:
		return models.PaymentApproved
	case TransactionPending:
		return models.PaymentPending
	default:
		return models.PaymentDeclined
	}
}

// FetchTransaction reads a transaction from the public gateway endpoint.
func (ws *WompiService) FetchTransaction(ctx context.Context, transactionID string) (*Transaction, error) {
	endpoint := fmt.Sprintf("%s/transactions/%s", ws.config.APIURL, url.PathEscape(transactionID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if ws.config.PublicKey != "" {
		req.Header.Set("Authorization", "Bearer "+ws.config.PublicKey)
	}

	resp, err := ws.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, transactionID)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrGatewayStatus, resp.StatusCode)
	}

	var envelope struct {
		Data Transaction `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %w", err)
	}
	if envelope.Data.ID == "" {
		return nil, fmt.Errorf("%w: empty transaction", ErrGatewayStatus)
	}
	return &envelope.Data, nil
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
