package services

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/kebab-storefront/models"
	"gorm.io/gorm"
)

func TestNextSequenceValue(t *testing.T) {
	db := setupTestDB(t)
	seedCounter(t, db, 41)

	for want := uint(42); want <= 44; want++ {
		var got uint
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			got, err = NextSequenceValue(tx, models.OrderCounterName)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestNextSequenceValueMissingCounter(t *testing.T) {
	db := setupTestDB(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := NextSequenceValue(tx, models.OrderCounterName)
		return err
	})
	assert.ErrorIs(t, err, ErrCounterMissing)

	var count int64
	db.Model(&models.Counter{}).Count(&count)
	assert.Zero(t, count, "no counter may be invented")
}

func TestNextSequenceValueRolledBackWithTransaction(t *testing.T) {
	db := setupTestDB(t)
	seedCounter(t, db, 5)

	_ = db.Transaction(func(tx *gorm.DB) error {
		_, err := NextSequenceValue(tx, models.OrderCounterName)
		require.NoError(t, err)
		return gorm.ErrInvalidData
	})
	assert.Equal(t, uint(5), counterValue(t, db))
}

func TestConcurrentOrdersReceiveConsecutiveShortIDs(t *testing.T) {
	db := setupTestDB(t)
	seedCounter(t, db, 100)
	svc := NewOrderService(db)

	const n = 25
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids []int
	)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := svc.CreateOrder(context.Background(), kebabCheckout())
			if err != nil {
				errs <- err
				return
			}
			mu.Lock()
			ids = append(ids, int(order.ShortOrderID))
			mu.Unlock()
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.Len(t, ids, n)
	sort.Ints(ids)
	for i, id := range ids {
		assert.Equal(t, 101+i, id)
	}
	assert.Equal(t, uint(100+n), counterValue(t, db))
}
