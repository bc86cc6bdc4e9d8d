package middleware

import (
	"context"
	"encoding/gob"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/ghaggin/expenses/internal/config"
	"github.com/ghaggin/expenses/internal/expenses"
	"github.com/ghaggin/expenses/internal/model"
	"github.com/ghaggin/expenses/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	viewKey  = "expenses_view"
	flashKey = "flash"
)

var (
	errViewNotFound = errors.New("view state not found")
)

// SessionManager is the browser's persisted storage. The auth provider writes
// the authToken value; the expenses view keeps its state alongside it.
type SessionManager struct {
	impl *scs.SessionManager
}

type SessionParams struct {
	fx.In

	LC     fx.Lifecycle
	Config *config.Config
	Log    *zap.Logger
}

func NewSessionManager(p SessionParams) (*SessionManager, error) {
	gob.Register(&expenses.State{})

	sm := &SessionManager{}
	sm.impl = scs.New()
	sm.impl.Lifetime = p.Config.Session.Lifetime
	sm.impl.Cookie.Name = "expenses_session"
	sm.impl.Cookie.SameSite = http.SameSiteLaxMode
	sm.impl.ErrorFunc = func(w http.ResponseWriter, r *http.Request, err error) {
		p.Log.Error("session store failure", zap.Error(err), zap.String("path", r.URL.Path))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}

	if p.Config.Session.Store == config.StoreRedis {
		rs, err := store.NewRedis(store.Params{LC: p.LC, Config: p.Config, Log: p.Log})
		if err != nil {
			return nil, err
		}
		sm.impl.Store = rs
	}

	return sm, nil
}

func (s *SessionManager) Wrap(next http.Handler) http.Handler {
	return s.impl.LoadAndSave(next)
}

// Get returns the raw value stored under key.
func (s *SessionManager) Get(ctx context.Context, key string) (string, bool) {
	if !s.impl.Exists(ctx, key) {
		return "", false
	}
	return s.impl.GetString(ctx, key), true
}

// SetAuthToken stores the auth provider's token and rotates the session id.
func (s *SessionManager) SetAuthToken(ctx context.Context, raw string) error {
	if err := s.impl.RenewToken(ctx); err != nil {
		return err
	}
	s.impl.Put(ctx, model.AuthTokenKey, raw)
	s.impl.Remove(ctx, viewKey)
	return nil
}

func (s *SessionManager) Destroy(ctx context.Context) error {
	return s.impl.Destroy(ctx)
}

func (s *SessionManager) View(ctx context.Context) (*expenses.State, error) {
	st, ok := s.impl.Get(ctx, viewKey).(*expenses.State)
	if !ok {
		return nil, errViewNotFound
	}
	return st, nil
}

func (s *SessionManager) PutView(ctx context.Context, st *expenses.State) {
	s.impl.Put(ctx, viewKey, st)
}

// AddFlash queues messages for the next rendered page.
func (s *SessionManager) AddFlash(ctx context.Context, msgs ...string) {
	if len(msgs) == 0 {
		return
	}
	queued, _ := s.impl.Get(ctx, flashKey).([]string)
	s.impl.Put(ctx, flashKey, append(queued, msgs...))
}

func (s *SessionManager) PopFlash(ctx context.Context) []string {
	msgs, _ := s.impl.Pop(ctx, flashKey).([]string)
	return msgs
}

// RequireSession redirects to the entry point when no auth token is stored.
func (s *SessionManager) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.Get(r.Context(), model.AuthTokenKey); !ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}
