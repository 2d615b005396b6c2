package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fraudapp "fraud-risk-engine/internal/application/fraud"
	"fraud-risk-engine/internal/application/dto"
	"fraud-risk-engine/internal/domain/fraud"
	"fraud-risk-engine/internal/domain/transaction"
	"fraud-risk-engine/internal/infrastructure/database/memory"
	"fraud-risk-engine/internal/infrastructure/ml"
	"fraud-risk-engine/internal/infrastructure/rules"
	"fraud-risk-engine/internal/interfaces/http/handler"
	"fraud-risk-engine/internal/pkg/metrics"
)

// fixedModel always answers 0.2 once initialized
type fixedModel struct{ ready bool }

func (m *fixedModel) Initialize(context.Context) error { m.ready = true; return nil }
func (m *fixedModel) Ready() bool                      { return m.ready }
func (m *fixedModel) ModelVersion() string             { return "fixed+features.v1" }
func (m *fixedModel) LastReport() *ml.TrainingReport   { return nil }

func (m *fixedModel) Predict(fraud.FeatureVector) (float64, error) {
	if !m.ready {
		return 0, fraud.ErrNotInitialized
	}
	return 0.2, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	model := &fixedModel{}
	repo := memory.NewTransactionRepository()
	txService := transaction.NewService(repo)
	engine := fraud.NewService(rules.NewAnalyzer(rules.DefaultConfig()), ml.NewFeatureExtractor(), model)
	collector := metrics.NewCollector()

	opts := fraudapp.DefaultOptions()
	opts.LazyInit = false
	uc := fraudapp.NewDetectFraudUseCase(engine, txService, nil, collector, nil, opts)

	return NewRouter(Handlers{
		Fraud:       handler.NewFraudHandler(uc, nil),
		Model:       handler.NewModelHandler(model, nil),
		Transaction: handler.NewTransactionHandler(txService, nil),
		Health:      handler.NewHealthHandler(model, map[string]handler.HealthChecker{"store": repo}, "test"),
		Metrics:     collector.Handler(),
	}, nil)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, bytes.NewBufferString(body)))
	return rec
}

func TestRouter_ScoringFlow(t *testing.T) {
	r := newTestRouter(t)
	userID := uuid.NewString()
	body := `{"user_id":"` + userID + `","amount":"25.00","merchant":"Cafe","category":"Restaurants","timestamp":"2024-03-12T13:00:00Z"}`

	// not trained yet
	rec := do(t, r, http.MethodPost, "/api/v1/fraud/score", body)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, r, http.MethodGet, "/ready", "").Code)

	rec = do(t, r, http.MethodPost, "/api/v1/model/initialize", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/ready", "").Code)

	rec = do(t, r, http.MethodPost, "/api/v1/fraud/score", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var res dto.ScoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.IsFraud)
	assert.Equal(t, 0.2, res.FraudProbability)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, r, http.MethodGet, "/api/v1/users/"+userID+"/transactions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list dto.TransactionListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	assert.Equal(t, http.StatusNoContent, do(t, r, http.MethodDelete, "/api/v1/transactions", "").Code)

	rec = do(t, r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fraud_decisions_total{verdict="legitimate"} 1`)
	assert.Contains(t, rec.Body.String(), `fraud_scoring_errors_total{kind="not_ready"} 1`)
}

func TestRouter_DeclinesInvalidTransaction(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/v1/model/initialize", "")

	rec := do(t, r, http.MethodPost, "/api/v1/fraud/score",
		`{"user_id":"`+uuid.NewString()+`","amount":"-3","merchant":"Cafe","category":"Restaurants"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "transaction declined")
}

func TestRouter_Misc(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/live", "").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodOptions, "/api/v1/fraud/score", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/api/v1/unknown", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, r, http.MethodGet, "/api/v1/fraud/score", "").Code)
}
