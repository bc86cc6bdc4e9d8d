package expenses

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/ghaggin/expenses/internal/model"
	"github.com/ghaggin/expenses/internal/repository"
	"go.uber.org/zap"
)

const (
	EntryPath = "/"

	MsgMissingFields = "Please fill all required fields"
	MsgBadAmount     = "Amount must be a number"
	MsgBadMode       = "Mode must be credit or debit"
	MsgConfirmDelete = "Are you sure you want to delete this expense?"
)

var (
	ErrNoSession = errors.New("no session loaded")
	ErrDeclined  = errors.New("declined")
)

// ValidationError is a draft the user has to fix before it can be sent.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Dialog shows blocking messages to the user.
type Dialog interface {
	Alert(msg string)
	Confirm(msg string) bool
}

type Navigator interface {
	Redirect(path string)
}

// Storage is the persisted storage the auth provider writes to.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool)
}

// State is everything the view renders. It is copied in and out of the
// controller so a host can keep it between requests.
type State struct {
	Mounted     bool
	FormVisible bool
	Draft       model.Draft
	Expenses    []model.Expense
	Hidden      []string
}

func NewState() *State {
	return &State{Draft: model.EmptyDraft(), Expenses: []model.Expense{}}
}

func (s *State) clone() *State {
	c := *s
	c.Expenses = slices.Clone(s.Expenses)
	c.Hidden = slices.Clone(s.Hidden)
	return &c
}

type Params struct {
	Log     *zap.Logger
	Repo    repository.Repository
	Storage Storage
	Dialog  Dialog
	Nav     Navigator
}

// Controller owns the state of one expenses view. Network calls run without
// the lock held, so overlapping fetches apply in the order they resolve.
type Controller struct {
	log     *zap.Logger
	repo    repository.Repository
	storage Storage
	dialog  Dialog
	nav     Navigator

	mu      sync.Mutex
	session *model.Session
	state   *State
}

func New(p Params) *Controller {
	return &Controller{
		log:     p.Log,
		repo:    p.Repo,
		storage: p.Storage,
		dialog:  p.Dialog,
		nav:     p.Nav,
		state:   NewState(),
	}
}

// Mount loads the session and, when there is one, the expense list.
func (c *Controller) Mount(ctx context.Context) {
	if !c.LoadSession(ctx) {
		return
	}

	c.mu.Lock()
	c.state.Mounted = true
	c.mu.Unlock()

	_ = c.FetchExpenses(ctx)
}

// LoadSession reads the session once. A missing or malformed token redirects
// to the entry point.
func (c *Controller) LoadSession(ctx context.Context) bool {
	c.mu.Lock()
	loaded := c.session != nil
	c.mu.Unlock()
	if loaded {
		return true
	}

	raw, _ := c.storage.Get(ctx, model.AuthTokenKey)
	s, err := model.ParseSession(raw)
	if err != nil {
		c.log.Debug("no usable session, redirecting", zap.Error(err))
		c.nav.Redirect(EntryPath)
		return false
	}

	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	return true
}

// FetchExpenses replaces the cached list with the backend's. Failures are
// logged and leave the previous list in place.
func (c *Controller) FetchExpenses(ctx context.Context) error {
	s := c.Session()
	if s == nil {
		return ErrNoSession
	}

	list, err := c.repo.ListExpenses(ctx, s)
	if err != nil {
		c.log.Error("failed fetching expenses", zap.Error(err), zap.String("user", s.User.ID))
		return err
	}

	c.mu.Lock()
	c.state.Expenses = list
	// a replaced list re-shows anything hidden before
	c.state.Hidden = nil
	c.mu.Unlock()

	return nil
}

// SubmitDraft validates and sends the draft, then refetches and closes the
// form. The draft is kept when anything fails.
func (c *Controller) SubmitDraft(ctx context.Context) error {
	s := c.Session()
	if s == nil {
		c.nav.Redirect(EntryPath)
		return ErrNoSession
	}

	c.mu.Lock()
	d := c.state.Draft
	c.mu.Unlock()

	e, err := buildExpense(d, s.User.ID)
	if err != nil {
		c.dialog.Alert(err.Error())
		return err
	}

	if err := c.repo.CreateExpense(ctx, s, e); err != nil {
		c.log.Warn("failed creating expense", zap.Error(err), zap.String("user", s.User.ID))
		c.dialog.Alert(err.Error())
		return err
	}

	_ = c.FetchExpenses(ctx)
	c.resetForm(false)
	return nil
}

func buildExpense(d model.Draft, user string) (*model.NewExpense, error) {
	if !d.Complete() {
		return nil, &ValidationError{Msg: MsgMissingFields}
	}

	mode, ok := model.ParseMode(d.Mode)
	if !ok {
		return nil, &ValidationError{Msg: MsgBadMode}
	}

	amount, ok := parseAmount(d.Amount)
	if !ok {
		return nil, &ValidationError{Msg: MsgBadAmount}
	}

	return &model.NewExpense{
		Title:       d.Title,
		Description: d.Description,
		Mode:        mode,
		Amount:      amount,
		User:        user,
	}, nil
}

// RequestDelete hides id once the user confirms. Nothing is sent to the
// backend.
func (c *Controller) RequestDelete(id string) error {
	if !c.dialog.Confirm(MsgConfirmDelete) {
		return ErrDeclined
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !slices.Contains(c.state.Hidden, id) {
		c.state.Hidden = append(c.state.Hidden, id)
	}
	return nil
}

// ToggleForm opens or closes the form. Either way the draft starts over.
func (c *Controller) ToggleForm(show bool) {
	c.resetForm(show)
}

func (c *Controller) resetForm(show bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Draft = model.EmptyDraft()
	c.state.FormVisible = show
}

func (c *Controller) UpdateDraft(d model.Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Draft = d
}

// Visible is the cached list without hidden ids, in server order.
func (c *Controller) Visible() []model.Expense {
	c.mu.Lock()
	defer c.mu.Unlock()

	visible := make([]model.Expense, 0, len(c.state.Expenses))
	for _, e := range c.state.Expenses {
		if slices.Contains(c.state.Hidden, e.ID) {
			continue
		}
		visible = append(visible, e)
	}
	return visible
}

func (c *Controller) Session() *model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.session
}

func (c *Controller) Snapshot() *State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state.clone()
}

func (c *Controller) Restore(st *State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = st.clone()
}
