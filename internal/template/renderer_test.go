package template

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghaggin/expenses/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Render_expenses(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	r, err := http.NewRequest("GET", "/expenses", nil)
	require.Nil(err)
	rr := httptest.NewRecorder()

	err = Render(rr, r, "expenses.html", &struct {
		Data
		FormVisible bool
		Draft       model.Draft
		Expenses    []model.Expense
	}{
		Data: Data{PageTitle: "expenses", UID: "u1", Flash: []string{"Please fill all required fields"}},
		Expenses: []model.Expense{
			{ID: "a", Title: "Lunch", Description: "Cafe", Mode: model.ModeCredit, Amount: 250},
			{ID: "b", Title: "Salary", Description: "May", Mode: model.ModeDebit, Amount: 900},
		},
	})
	require.NoError(err)

	body := rr.Body.String()
	assert.Equal("text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(body, "Your credits and debits this month ...")
	assert.Contains(body, "Please fill all required fields")
	assert.Contains(body, "Add new expense")
	assert.Contains(body, "- ₹ 250")
	assert.Contains(body, "+ ₹ 900")
	assert.Contains(body, `href="/expenses/a/delete"`)
	assert.NotContains(body, `name="title"`)
}

func Test_Render_form(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	r, err := http.NewRequest("GET", "/expenses", nil)
	require.Nil(err)
	rr := httptest.NewRecorder()

	err = Render(rr, r, "expenses.html", &struct {
		Data
		FormVisible bool
		Draft       model.Draft
		Expenses    []model.Expense
	}{
		FormVisible: true,
		Draft:       model.Draft{Title: "<b>Lunch</b>", Mode: "debit"},
	})
	require.NoError(err)

	body := rr.Body.String()
	assert.Contains(body, `name="title" value="&lt;b&gt;Lunch&lt;/b&gt;"`)
	assert.Contains(body, `<option value="debit" selected>`)
	assert.NotContains(body, "Add new expense")
}

func Test_Render_missing(t *testing.T) {
	r, err := http.NewRequest("GET", "/", nil)
	require.Nil(t, err)

	err = Render(httptest.NewRecorder(), r, "nope.html", &Data{})
	assert.Error(t, err)
}
