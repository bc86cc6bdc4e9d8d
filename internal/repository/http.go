package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ghaggin/expenses/internal/metrics"
	"github.com/ghaggin/expenses/internal/model"
	"go.uber.org/zap"
)

const (
	opList   = "list"
	opCreate = "create"
)

type listResponse struct {
	Data struct {
		Expenses []model.Expense `json:"expenses"`
	} `json:"data"`
}

type httpRepo struct {
	base    string
	client  *http.Client
	log     *zap.Logger
	metrics *metrics.Collector
}

func NewHTTP(p Params) (Repository, error) {
	u, err := url.Parse(p.Config.API.BaseURL)
	if err != nil {
		return nil, err
	}

	return &httpRepo{
		base:    strings.TrimRight(u.String(), "/"),
		client:  &http.Client{Timeout: p.Config.API.Timeout},
		log:     p.Log,
		metrics: p.Metrics,
	}, nil
}

func (r *httpRepo) ListExpenses(ctx context.Context, s *model.Session) ([]model.Expense, error) {
	q := url.Values{}
	q.Set("user", s.User.ID)

	req, err := r.newRequest(ctx, http.MethodGet, "/api/expenses/?"+q.Encode(), s, nil)
	if err != nil {
		return nil, err
	}

	var res listResponse
	if err := r.do(opList, req, &res); err != nil {
		return nil, err
	}

	if res.Data.Expenses == nil {
		return []model.Expense{}, nil
	}
	return res.Data.Expenses, nil
}

func (r *httpRepo) CreateExpense(ctx context.Context, s *model.Session, e *model.NewExpense) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	req, err := r.newRequest(ctx, http.MethodPost, "/api/expenses", s, bytes.NewReader(b))
	if err != nil {
		return err
	}

	return r.do(opCreate, req, nil)
}

func (r *httpRepo) newRequest(ctx context.Context, method, path string, s *model.Session, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, r.base+path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	return req, nil
}

// do sends req and decodes a 2xx body into out when out is non-nil.
func (r *httpRepo) do(op string, req *http.Request, out any) (err error) {
	started := time.Now()
	code := 0
	defer func() {
		r.metrics.ObserveBackend(op, code, err, started)
	}()

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	code = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
