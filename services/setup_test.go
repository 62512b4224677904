package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/kebab-storefront/config"
	"github.com/yeremiapane/kebab-storefront/database"
	"github.com/yeremiapane/kebab-storefront/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testIntegritySecret = "test_integrity_secret"
	testEventsSecret    = "test_events_secret"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedCounter(t *testing.T, db *gorm.DB, start uint) {
	t.Helper()
	_, err := database.EnsureCounter(db, models.OrderCounterName, start)
	require.NoError(t, err)
}

func counterValue(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	var c models.Counter
	require.NoError(t, db.First(&c, "name = ?", models.OrderCounterName).Error)
	return c.LastID
}

func testWompiConfig() config.WompiConfig {
	return config.WompiConfig{
		PublicKey:       "pub_test_123",
		IntegritySecret: testIntegritySecret,
		EventsSecret:    testEventsSecret,
		APIURL:          "http://gateway.invalid/v1",
		Currency:        "COP",
		ReferencePrefix: "kebab_",
	}
}

func kebabCheckout() CheckoutRequest {
	return CheckoutRequest{
		CustomerInfo: &CustomerInput{
			Name:    "Ana Gómez",
			Email:   "ana@example.com",
			Phone:   "3001234567",
			Address: "Calle 10 # 5-20",
		},
		OrderItems: []LineItemInput{
			{Name: "Kebab Classic", Price: decimal.NewFromInt(15000), Quantity: 2},
		},
		PaymentMethod: "cash",
	}
}

func createOrder(t *testing.T, db *gorm.DB, req CheckoutRequest) *models.Order {
	t.Helper()
	order, err := NewOrderService(db).CreateOrder(context.Background(), req)
	require.NoError(t, err)
	return order
}

// signedEvent builds a transaction.updated delivery signed with secret over
// transaction.id, transaction.status and transaction.amount_in_cents.
func signedEvent(t *testing.T, secret string, txn map[string]interface{}) []byte {
	t.Helper()
	props := []string{"transaction.id", "transaction.status", "transaction.amount_in_cents"}
	timestamp := int64(1530291411)

	var sb strings.Builder
	for _, p := range props {
		key := strings.TrimPrefix(p, "transaction.")
		sb.WriteString(fmt.Sprint(txn[key]))
	}
	sb.WriteString(fmt.Sprint(timestamp))
	sb.WriteString(secret)
	sum := sha256.Sum256([]byte(sb.String()))

	body, err := json.Marshal(map[string]interface{}{
		"event":       "transaction.updated",
		"data":        map[string]interface{}{"transaction": txn},
		"environment": "test",
		"signature": map[string]interface{}{
			"properties": props,
			"checksum":   hex.EncodeToString(sum[:]),
		},
		"timestamp": timestamp,
		"sent_at":   "2018-07-20T16:45:05.000Z",
	})
	require.NoError(t, err)
	return body
}

// memoryGuard is an in-process DeliveryGuard.
type memoryGuard struct {
	mu       sync.Mutex
	claimed  map[string]bool
	released int
}

func newMemoryGuard() *memoryGuard {
	return &memoryGuard{claimed: map[string]bool{}}
}

func (g *memoryGuard) Claim(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.claimed[key] {
		return false, nil
	}
	g.claimed[key] = true
	return true, nil
}

func (g *memoryGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.claimed, key)
	g.released++
	return nil
}
