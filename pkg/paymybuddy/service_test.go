package paymybuddy_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paymybuddy/pkg/apiclient"
	"github.com/dmitrymomot/paymybuddy/pkg/paymybuddy"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Token  string
	Body   map[string]any
}

type fakeAPI struct {
	mu   sync.Mutex
	last recorded
}

func (f *fakeAPI) lastRequest() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func serviceError(w http.ResponseWriter, body string) {
	w.WriteHeader(http.StatusBadRequest)
	_, _ = w.Write([]byte(body))
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Token:  r.Header.Get(apiclient.HeaderAuthToken),
	}
	_ = json.NewDecoder(r.Body).Decode(&rec.Body)
	f.mu.Lock()
	f.last = rec
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.Method + " " + r.URL.Path {
	case "POST /auth/register":
		switch rec.Body["email"] {
		case "taken@example.com":
			serviceError(w, `{"type":"SERVICE","code":"INVALID_EMAIL","message":"already registered","metadata":{"alreadyExists":true}}`)
		case "weird@example.com":
			serviceError(w, `{"type":"SERVICE","code":"SOMETHING_NEW","message":"?"}`)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	case "GET /user/balance":
		_, _ = w.Write([]byte(`{"records":[{"currency":"EUR","amount":"12.5"},{"currency":"USD","amount":"3"}]}`))
	case "GET /user/contact":
		_, _ = w.Write([]byte(`{"page":2,"pageSize":10,"pageCount":3,"totalCount":25,"records":[{"id":7,"name":"Bob","email":"bob@example.com"}]}`))
	case "POST /user/contact":
		if rec.Body["email"] == "me@example.com" {
			serviceError(w, `{"type":"SERVICE","code":"CANNOT_BE_HIMSELF","message":"no"}`)
			return
		}
		_, _ = w.Write([]byte(`{"id":8,"name":"Carol","email":"carol@example.com"}`))
	case "GET /user/contact/7", "DELETE /user/contact/7":
		_, _ = w.Write([]byte(`{"id":7,"name":"Bob","email":"bob@example.com"}`))
	case "GET /user/contact/9", "DELETE /user/contact/9":
		serviceError(w, `{"type":"SERVICE","code":"CONTACT_NOT_FOUND","message":"gone"}`)
	case "GET /user/contact-autocomplete":
		_, _ = w.Write([]byte(`{"records":[{"id":7,"name":"Bob","email":"bob@example.com"}]}`))
	case "GET /user/transaction":
		_, _ = w.Write([]byte(`{"nextCursor":"c2","hasNext":true,"records":[{"id":1,"currency":"EUR","amount":"5","fee":"0.03","date":"2024-03-01T10:00:00Z"}]}`))
	case "POST /user/transaction", "POST /user/withdraw-to-bank":
		if rec.Body["amount"] == "1000" {
			serviceError(w, `{"type":"SERVICE","code":"NOT_ENOUGH_FUNDS","message":"poor","metadata":{"currency":"EUR","missingAmount":"987.5"}}`)
			return
		}
		_, _ = w.Write([]byte(`{"id":2,"currency":"EUR","amount":"5","fee":"0.03","date":"2024-03-01T10:00:00Z"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newService(t *testing.T) (*paymybuddy.Service, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client := apiclient.New(srv.URL+"/", apiclient.WithTokenSource(apiclient.TokenSourceFunc(func() string {
		return "abc"
	})))
	return paymybuddy.New(client), api
}

func TestRegister(t *testing.T) {
	t.Parallel()
	svc, api := newService(t)
	ctx := context.Background()

	t.Run("sends the anonymous token", func(t *testing.T) {
		err := svc.Register(ctx, paymybuddy.RegisterRequest{Name: "Ann", Email: "ann@example.com", Password: "pw", DefaultCurrency: "EUR"})
		require.NoError(t, err)
		last := api.lastRequest()
		assert.Equal(t, apiclient.AnonymousToken, last.Token)
		assert.Equal(t, "ann@example.com", last.Body["email"])
	})

	t.Run("rejected email", func(t *testing.T) {
		err := svc.Register(ctx, paymybuddy.RegisterRequest{Email: "taken@example.com", DefaultCurrency: "EUR"})
		var fieldErr *paymybuddy.FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "email", fieldErr.Field)
		assert.True(t, fieldErr.AlreadyExists)
		assert.ErrorIs(t, err, paymybuddy.ErrInvalidRegistration)
	})

	t.Run("unexpected code escalates", func(t *testing.T) {
		err := svc.Register(ctx, paymybuddy.RegisterRequest{Email: "weird@example.com", DefaultCurrency: "EUR"})
		assert.ErrorIs(t, err, apiclient.ErrUnhandled)
	})

	t.Run("unsupported currency is rejected locally", func(t *testing.T) {
		err := svc.Register(ctx, paymybuddy.RegisterRequest{Email: "x@example.com", DefaultCurrency: "XYZ"})
		assert.ErrorIs(t, err, paymybuddy.ErrUnsupportedCurrency)
	})
}

func TestQueries(t *testing.T) {
	t.Parallel()
	svc, api := newService(t)
	ctx := context.Background()

	balances, err := svc.Balances(ctx)
	require.NoError(t, err)
	assert.Equal(t, []paymybuddy.Balance{{Currency: "EUR", Amount: "12.5"}, {Currency: "USD", Amount: "3"}}, balances)
	assert.Equal(t, "abc", api.lastRequest().Token)

	page, err := svc.Contacts(ctx, paymybuddy.PageQuery{Page: 2, PageSize: 10, Sort: "-name"})
	require.NoError(t, err)
	assert.Equal(t, 25, page.TotalCount)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "page=2&pageSize=10&pageSort=-name", api.lastRequest().Query)

	_, err = svc.Contacts(ctx, paymybuddy.PageQuery{})
	require.NoError(t, err)
	assert.Empty(t, api.lastRequest().Query)

	suggestions, err := svc.Autocomplete(ctx, "bo b")
	require.NoError(t, err)
	assert.Len(t, suggestions, 1)
	assert.Equal(t, "input=bo+b", api.lastRequest().Query)

	activity, err := svc.Transactions(ctx, paymybuddy.CursorQuery{Cursor: "c1", PageSize: 5})
	require.NoError(t, err)
	assert.True(t, activity.HasNext)
	assert.Equal(t, "c2", activity.NextCursor)
	assert.Equal(t, "cursor=c1&pageSize=5", api.lastRequest().Query)
}

func TestContacts(t *testing.T) {
	t.Parallel()
	svc, api := newService(t)
	ctx := context.Background()

	contact, err := svc.Contact(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Bob", contact.Name)

	_, err = svc.Contact(ctx, 9)
	assert.ErrorIs(t, err, paymybuddy.ErrContactNotFound)

	removed, err := svc.RemoveContact(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), removed.ID)
	assert.Equal(t, http.MethodDelete, api.lastRequest().Method)

	added, err := svc.AddContact(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(8), added.ID)

	_, err = svc.AddContact(ctx, "me@example.com")
	assert.ErrorIs(t, err, paymybuddy.ErrCannotBeHimself)
}

func TestTransfers(t *testing.T) {
	t.Parallel()
	svc, api := newService(t)
	ctx := context.Background()

	tx, err := svc.SendMoney(ctx, paymybuddy.SendMoneyRequest{RecipientID: 7, Currency: "EUR", Amount: "5,00"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), tx.ID)
	assert.Equal(t, "5", api.lastRequest().Body["amount"])
	assert.EqualValues(t, 7, api.lastRequest().Body["recipientId"])

	_, err = svc.SendMoney(ctx, paymybuddy.SendMoneyRequest{RecipientID: 7, Currency: "EUR", Amount: "1000"})
	var funds *paymybuddy.NotEnoughFundsError
	require.ErrorAs(t, err, &funds)
	assert.Equal(t, "987.5", funds.MissingAmount)
	assert.Equal(t, "EUR", funds.Currency)
	assert.ErrorIs(t, err, paymybuddy.ErrNotEnoughFunds)

	_, err = svc.WithdrawToBank(ctx, paymybuddy.WithdrawRequest{Currency: "JPY", Amount: "1.5", IBAN: "FR76"})
	assert.ErrorIs(t, err, paymybuddy.ErrInvalidAmount)

	_, err = svc.WithdrawToBank(ctx, paymybuddy.WithdrawRequest{Currency: "EUR", Amount: "5", IBAN: "FR76"})
	require.NoError(t, err)
	assert.Equal(t, "/user/withdraw-to-bank", api.lastRequest().Path)
	assert.Equal(t, "FR76", api.lastRequest().Body["iban"])
}

func TestAborted(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Balances(ctx)
	assert.True(t, errors.Is(err, paymybuddy.ErrAborted), "got %v", err)
}
