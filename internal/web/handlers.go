package web

import (
	"net/http"
	"net/url"

	"github.com/ghaggin/expenses/internal/expenses"
	"github.com/ghaggin/expenses/internal/middleware"
	"github.com/ghaggin/expenses/internal/model"
	"github.com/ghaggin/expenses/internal/repository"
	"github.com/ghaggin/expenses/internal/template"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	expensesPath = "/expenses"

	msgInvalidToken = "The sign-in token could not be read"
)

type handler struct {
	log      *zap.Logger
	sessions *middleware.SessionManager
	repo     repository.Repository
}

type expensesPage struct {
	template.Data
	FormVisible bool
	Draft       model.Draft
	Expenses    []model.Expense
}

type confirmPage struct {
	template.Data
	Message string
	Action  string
	Cancel  string
}

// requestUI answers the controller's dialogs for a single request. Alerts are
// shown on the next rendered page; a confirmation is the confirm=yes field.
type requestUI struct {
	r        *http.Request
	alerts   []string
	redirect string
}

func (u *requestUI) Alert(msg string) {
	u.alerts = append(u.alerts, msg)
}

func (u *requestUI) Confirm(_ string) bool {
	return u.r.PostFormValue("confirm") == "yes"
}

func (u *requestUI) Redirect(path string) {
	u.redirect = path
}

// controller rebuilds the view controller from the browser session.
func (h *handler) controller(r *http.Request) (*expenses.Controller, *requestUI) {
	ui := &requestUI{r: r}
	c := expenses.New(expenses.Params{
		Log:     h.log,
		Repo:    h.repo,
		Storage: h.sessions,
		Dialog:  ui,
		Nav:     ui,
	})

	if st, err := h.sessions.View(r.Context()); err == nil {
		c.Restore(st)
	}
	return c, ui
}

// finish stores the controller state and redirects back to the view, or to
// wherever the controller asked to go.
func (h *handler) finish(w http.ResponseWriter, r *http.Request, c *expenses.Controller, ui *requestUI) {
	if ui.redirect != "" {
		http.Redirect(w, r, ui.redirect, http.StatusSeeOther)
		return
	}

	h.sessions.PutView(r.Context(), c.Snapshot())
	h.sessions.AddFlash(r.Context(), ui.alerts...)
	http.Redirect(w, r, expensesPath, http.StatusSeeOther)
}

func (h *handler) render(w http.ResponseWriter, r *http.Request, tmpl string, td any) {
	if err := template.Render(w, r, tmpl, td); err != nil {
		h.log.Error("failed rendering template", zap.String("template", tmpl), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *handler) signIn(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.html", &template.Data{
		PageTitle: "sign in",
		Flash:     h.sessions.PopFlash(r.Context()),
	})
}

// startSession stores the token handed over by the sign-in service.
func (h *handler) startSession(w http.ResponseWriter, r *http.Request) {
	raw := r.PostFormValue(model.AuthTokenKey)
	if _, err := model.ParseSession(raw); err != nil {
		h.log.Debug("rejected sign-in token", zap.Error(err))
		h.sessions.AddFlash(r.Context(), msgInvalidToken)
		http.Redirect(w, r, expenses.EntryPath, http.StatusSeeOther)
		return
	}

	if err := h.sessions.SetAuthToken(r.Context(), raw); err != nil {
		h.log.Error("failed storing auth token", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, expensesPath, http.StatusSeeOther)
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context()); err != nil {
		h.log.Error("failed destroying session", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, expenses.EntryPath, http.StatusSeeOther)
}

// showExpenses mounts the view on the first visit of a browser session and
// renders the cached state afterwards.
func (h *handler) showExpenses(w http.ResponseWriter, r *http.Request) {
	c, ui := h.controller(r)
	ctx := r.Context()

	if c.Snapshot().Mounted {
		c.LoadSession(ctx)
	} else {
		c.Mount(ctx)
	}
	if ui.redirect != "" {
		http.Redirect(w, r, ui.redirect, http.StatusSeeOther)
		return
	}

	st := c.Snapshot()
	h.sessions.PutView(ctx, st)

	h.render(w, r, "expenses.html", &expensesPage{
		Data: template.Data{
			PageTitle: "expenses",
			UID:       c.Session().User.ID,
			Flash:     append(h.sessions.PopFlash(ctx), ui.alerts...),
		},
		FormVisible: st.FormVisible,
		Draft:       st.Draft,
		Expenses:    c.Visible(),
	})
}

func (h *handler) submitDraft(w http.ResponseWriter, r *http.Request) {
	c, ui := h.controller(r)

	if c.LoadSession(r.Context()) {
		c.UpdateDraft(model.Draft{
			Title:       r.PostFormValue("title"),
			Description: r.PostFormValue("description"),
			Mode:        r.PostFormValue("mode"),
			Amount:      r.PostFormValue("amount"),
		})
		_ = c.SubmitDraft(r.Context())
	}

	h.finish(w, r, c, ui)
}

func (h *handler) toggleForm(w http.ResponseWriter, r *http.Request) {
	c, ui := h.controller(r)

	c.ToggleForm(r.PostFormValue("show") == "true")

	h.finish(w, r, c, ui)
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	c, ui := h.controller(r)

	if c.LoadSession(r.Context()) {
		_ = c.FetchExpenses(r.Context())
	}

	h.finish(w, r, c, ui)
}

// expenseID is the decoded {id} param. chi matches on the raw path, so an
// escaped slash arrives still escaped.
func expenseID(r *http.Request) (string, bool) {
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		return "", false
	}
	return id, true
}

func (h *handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := expenseID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	action := expensesPath + "/" + url.PathEscape(id) + "/delete"

	h.render(w, r, "confirm.html", &confirmPage{
		Data:    template.Data{PageTitle: "delete expense"},
		Message: expenses.MsgConfirmDelete,
		Action:  action,
		Cancel:  expensesPath,
	})
}

func (h *handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := expenseID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	c, ui := h.controller(r)

	_ = c.RequestDelete(id)

	h.finish(w, r, c, ui)
}
