package controllers

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/kebab-storefront/config"
	"github.com/yeremiapane/kebab-storefront/database"
	"github.com/yeremiapane/kebab-storefront/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testEventsSecret = "test_events_secret"

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
	_, err = database.EnsureCounter(db, models.OrderCounterName, 0)
	require.NoError(t, err)
	return db
}

func testWompiConfig() config.WompiConfig {
	return config.WompiConfig{
		PublicKey:       "pub_test_123",
		IntegritySecret: "test_integrity_secret",
		EventsSecret:    testEventsSecret,
		APIURL:          "http://gateway.invalid/v1",
		Currency:        "COP",
		ReferencePrefix: "kebab_",
	}
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// signedEvent builds a transaction.updated delivery signed over
// transaction.id, transaction.status and transaction.amount_in_cents.
func signedEvent(t *testing.T, secret string, txn map[string]interface{}) []byte {
	t.Helper()
	props := []string{"transaction.id", "transaction.status", "transaction.amount_in_cents"}
	timestamp := int64(1530291411)

	var sb strings.Builder
	for _, p := range props {
		sb.WriteString(fmt.Sprint(txn[strings.TrimPrefix(p, "transaction.")]))
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
	})
	require.NoError(t, err)
	return body
}
