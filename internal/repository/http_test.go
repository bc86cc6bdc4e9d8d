package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ghaggin/expenses/internal/config"
	"github.com/ghaggin/expenses/internal/metrics"
	"github.com/ghaggin/expenses/internal/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func newTestHTTPRepo(t *testing.T, h http.HandlerFunc) (Repository, *metrics.Collector) {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.API.BaseURL = srv.URL + "/"
	cfg.API.Timeout = time.Second

	m := metrics.New()
	repo, err := New(Params{
		LC:      fxtest.NewLifecycle(t),
		Config:  cfg,
		Log:     zap.NewNop(),
		Metrics: m,
	})
	require.NoError(t, err)

	return repo, m
}

func Test_httpRepo_ListExpenses(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var got *http.Request
	repo, m := newTestHTTPRepo(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data":{"expenses":[
			{"_id":"b","title":"Rent","description":"May","mode":"debit","amount":900},
			{"_id":"a","title":"Lunch","description":"Cafe","mode":"credit","amount":250}
		]}}`)
	})

	expenses, err := repo.ListExpenses(context.Background(), &model.Session{
		User:  model.User{ID: "u1"},
		Token: "tkn",
	})
	require.NoError(err)

	require.Len(expenses, 2)
	assert.Equal("b", expenses[0].ID)
	assert.Equal(model.ModeDebit, expenses[0].Mode)
	assert.Equal("a", expenses[1].ID)
	assert.Equal(250, expenses[1].Amount)

	assert.Equal(http.MethodGet, got.Method)
	assert.Equal("/api/expenses/", got.URL.Path)
	assert.Equal("u1", got.URL.Query().Get("user"))
	assert.Equal("application/json", got.Header.Get("Content-Type"))
	assert.Equal("Bearer tkn", got.Header.Get("Authorization"))

	assert.Equal(1.0, testutil.ToFloat64(m.BackendRequests.WithLabelValues(opList, "200")))
}

func Test_httpRepo_ListExpenses_empty(t *testing.T) {
	repo, _ := newTestHTTPRepo(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":{}}`)
	})

	expenses, err := repo.ListExpenses(context.Background(), &model.Session{User: model.User{ID: "u1"}})
	require.NoError(t, err)
	assert.NotNil(t, expenses)
	assert.Empty(t, expenses)
}

func Test_httpRepo_ListExpenses_status(t *testing.T) {
	assert := assert.New(t)

	repo, m := newTestHTTPRepo(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := repo.ListExpenses(context.Background(), &model.Session{User: model.User{ID: "u1"}})

	var se *StatusError
	assert.ErrorAs(err, &se)
	assert.Equal(http.StatusBadGateway, se.Code)
	assert.EqualError(err, "Request failed with status code 502")
	assert.Equal(1.0, testutil.ToFloat64(m.BackendRequests.WithLabelValues(opList, "502")))
}

func Test_httpRepo_CreateExpense(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var (
		got       *http.Request
		body      map[string]any
		decodeErr error
	)
	repo, _ := newTestHTTPRepo(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		decodeErr = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"data":{"expense":{"_id":"new"}}}`)
	})

	err := repo.CreateExpense(context.Background(), &model.Session{User: model.User{ID: "u1"}}, &model.NewExpense{
		Title:       "Lunch",
		Description: "Cafe",
		Mode:        model.ModeCredit,
		Amount:      250,
		User:        "u1",
	})
	require.NoError(err)
	require.NoError(decodeErr)

	assert.Equal(http.MethodPost, got.Method)
	assert.Equal("/api/expenses", got.URL.Path)
	assert.Empty(got.Header.Get("Authorization"))
	assert.Equal(map[string]any{
		"title":       "Lunch",
		"description": "Cafe",
		"mode":        "credit",
		"amount":      float64(250),
		"user":        "u1",
	}, body)
}

func Test_httpRepo_CreateExpense_transportError(t *testing.T) {
	repo, m := newTestHTTPRepo(t, func(w http.ResponseWriter, r *http.Request) {})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.CreateExpense(ctx, &model.Session{User: model.User{ID: "u1"}}, &model.NewExpense{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackendRequests.WithLabelValues(opCreate, "error")))
}
