package paymybuddy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrymomot/paymybuddy/pkg/apiclient"
)

// Service calls the PayMyBuddy API on behalf of the ambient session: the
// tab's guard for tab clients, the request's guard on the server.
type Service struct {
	api *apiclient.Client
}

// New creates a service over api.
func New(api *apiclient.Client) *Service {
	return &Service{api: api}
}

// expected maps the SERVICE errors a call anticipates to Go errors; nil means
// the code was not anticipated.
type expected func(*apiclient.APIError) error

func call[T any](ctx context.Context, api *apiclient.Client, req apiclient.Request, handle expected) (T, error) {
	var zero T

	res, err := apiclient.Fetch[T](ctx, api, req)
	if err != nil {
		return zero, fmt.Errorf("paymybuddy: %s: %w", req.URL, err)
	}
	if res.Success {
		return res.Result, nil
	}
	if apiclient.IsAborted(res) {
		return zero, ErrAborted
	}
	if handle != nil {
		if err := handle(res.Error); err != nil {
			return zero, err
		}
	}
	return zero, apiclient.Unhandled(res.Error)
}

// Register creates an account. Rejected fields are returned as *FieldError.
func (s *Service) Register(ctx context.Context, req RegisterRequest) error {
	if _, err := ParseCurrency(req.DefaultCurrency); err != nil {
		return err
	}
	_, err := call[struct{}](ctx, s.api, apiclient.Request{
		Anonymous: true,
		URL:       "auth/register",
		Body:      req,
	}, registerError)
	return err
}

// Balances returns the balances of the user in every currency held.
func (s *Service) Balances(ctx context.Context) ([]Balance, error) {
	list, err := call[List[Balance]](ctx, s.api, apiclient.Request{URL: "user/balance"}, nil)
	return list.Records, err
}

// Contacts returns a page of the user's contacts.
func (s *Service) Contacts(ctx context.Context, q PageQuery) (Page[Contact], error) {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	setPaging(params, q.PageSize, q.Sort)
	return call[Page[Contact]](ctx, s.api, apiclient.Request{URL: withQuery("user/contact", params)}, nil)
}

// Contact returns the contact with id.
func (s *Service) Contact(ctx context.Context, id int64) (Contact, error) {
	return call[Contact](ctx, s.api, apiclient.Request{URL: contactURL(id)}, contactError)
}

// AddContact adds the user registered with email to the contacts.
func (s *Service) AddContact(ctx context.Context, email string) (Contact, error) {
	return call[Contact](ctx, s.api, apiclient.Request{
		URL:  "user/contact",
		Body: map[string]string{"email": email},
	}, contactError)
}

// RemoveContact removes the contact with id and returns it.
func (s *Service) RemoveContact(ctx context.Context, id int64) (Contact, error) {
	return call[Contact](ctx, s.api, apiclient.Request{
		Method: http.MethodDelete,
		URL:    contactURL(id),
	}, contactError)
}

// Autocomplete suggests contacts matching input.
func (s *Service) Autocomplete(ctx context.Context, input string) ([]Contact, error) {
	list, err := call[List[Contact]](ctx, s.api, apiclient.Request{
		URL: withQuery("user/contact-autocomplete", url.Values{"input": {input}}),
	}, nil)
	return list.Records, err
}

// Transactions returns a slice of the user's activity.
func (s *Service) Transactions(ctx context.Context, q CursorQuery) (Cursor[Transaction], error) {
	params := url.Values{}
	if q.Cursor != "" {
		params.Set("cursor", q.Cursor)
	}
	setPaging(params, q.PageSize, q.Sort)
	return call[Cursor[Transaction]](ctx, s.api, apiclient.Request{URL: withQuery("user/transaction", params)}, nil)
}

// SendMoney transfers money to a contact. A missing balance is returned as
// *NotEnoughFundsError.
func (s *Service) SendMoney(ctx context.Context, req SendMoneyRequest) (Transaction, error) {
	amount, err := NormalizeAmount(req.Currency, req.Amount)
	if err != nil {
		return Transaction{}, err
	}
	req.Amount = amount
	return call[Transaction](ctx, s.api, apiclient.Request{URL: "user/transaction", Body: req}, transferError)
}

// WithdrawToBank transfers money to the bank account iban.
func (s *Service) WithdrawToBank(ctx context.Context, req WithdrawRequest) (Transaction, error) {
	amount, err := NormalizeAmount(req.Currency, req.Amount)
	if err != nil {
		return Transaction{}, err
	}
	req.Amount = amount
	return call[Transaction](ctx, s.api, apiclient.Request{URL: "user/withdraw-to-bank", Body: req}, transferError)
}

func contactURL(id int64) string {
	return "user/contact/" + strconv.FormatInt(id, 10)
}

func setPaging(params url.Values, size int, sort string) {
	if size > 0 {
		params.Set("pageSize", strconv.Itoa(size))
	}
	if sort != "" {
		params.Set("pageSort", sort)
	}
}

func withQuery(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}
