package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RandySimanca/avicola/internal/domain/models"
	"github.com/RandySimanca/avicola/internal/outbox"
	"github.com/RandySimanca/avicola/internal/repository"
	"github.com/RandySimanca/avicola/internal/repository/memory"
	"github.com/RandySimanca/avicola/internal/server/handlers"
	"github.com/RandySimanca/avicola/internal/service/ledger"
	"github.com/RandySimanca/avicola/internal/service/reporting"
)

var reportSession = models.Session{UserID: "u1", Name: "Carmen", Role: models.RoleGalponero}

func newReportFixture(t *testing.T) (*gin.Engine, *outbox.Submitter, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	queue, err := outbox.NewQueue(filepath.Join(t.TempDir(), "outbox.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = queue.Close() })

	submitter := outbox.NewSubmitter(ledger.NewService(store, nil), queue, nil)
	h := handlers.NewReportHandler(reporting.NewService(store, nil), submitter, nil)

	r := gin.New()
	r.GET("/sync/status", h.SyncStatus)
	r.POST("/sync/replay", h.ForceSync)
	return r, submitter, store
}

func seedReportBatch(t *testing.T, store *memory.Store, id string, population int) {
	t.Helper()
	batch := models.Batch{
		ID:                id,
		Name:              "Lote " + id,
		BirdType:          models.BirdBroiler,
		InitialPopulation: population,
		CurrentPopulation: population,
		Active:            true,
		CreatedAt:         time.Now().UTC(),
	}
	require.NoError(t, store.Put(context.Background(), repository.Batches, id, batch))
}

func TestForceSyncRepliesQueuedOperations(t *testing.T) {
	r, submitter, store := newReportFixture(t)
	seedReportBatch(t, store, "b1", 100)

	store.SetOffline(true)
	_, queued, err := submitter.SubmitSale(context.Background(), reportSession, ledger.SaleInput{
		BatchID:   "b1",
		Date:      time.Now().UTC(),
		Quantity:  10,
		UnitPrice: 12,
	})
	require.NoError(t, err)
	require.True(t, queued)
	store.SetOffline(false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sync/replay", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Synced int `json:"synced"`
		Failed int `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Synced)
	assert.Zero(t, body.Failed)

	var batch models.Batch
	require.NoError(t, store.Get(context.Background(), repository.Batches, "b1", &batch))
	assert.Equal(t, 90, batch.CurrentPopulation)

	count, err := submitter.Queue().PendingCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestForceSyncWithEmptyQueue(t *testing.T) {
	r, _, _ := newReportFixture(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sync/replay", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"synced": 0, "failed": 0}`, w.Body.String())
}

func TestSyncStatusCountsPendingEntries(t *testing.T) {
	r, submitter, store := newReportFixture(t)
	seedReportBatch(t, store, "b1", 100)

	store.SetOffline(true)
	_, queued, err := submitter.SubmitDailyLog(context.Background(), reportSession, ledger.DailyLogInput{
		BatchID:   "b1",
		Date:      time.Now().UTC(),
		Mortality: 2,
	})
	require.NoError(t, err)
	require.True(t, queued)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sync/status", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"pending_operations": 1}`, w.Body.String())
}
