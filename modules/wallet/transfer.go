package wallet

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrymomot/paymybuddy/handler"
	"github.com/dmitrymomot/paymybuddy/pkg/paymybuddy"
)

// TransferRequest preselects the recipient of the send form.
type TransferRequest struct {
	To int64 `query:"to"`
}

func (s *Service) transfer(ctx handler.Context, req TransferRequest) handler.Response {
	var recipient *paymybuddy.Contact
	if req.To > 0 {
		contact, err := s.api.Contact(ctx, req.To)
		switch {
		case err == nil:
			recipient = &contact
		case errors.Is(err, paymybuddy.ErrContactNotFound):
			return handler.Error(handler.NewHTTPError(http.StatusNotFound, "Contact not found"))
		default:
			return handler.Error(err)
		}
	}

	currency := s.defaultCurrency(ctx)
	return handler.Templ(s.views.TransferPage(TransferPageParams{
		Send: SendFormParams{
			Recipient:  recipient,
			Currency:   currency,
			Currencies: paymybuddy.Currencies,
		},
		Withdraw: WithdrawFormParams{
			Currency:   currency,
			Currencies: paymybuddy.Currencies,
		},
	}))
}

func (s *Service) defaultCurrency(ctx handler.Context) string {
	if u := ctx.Guard().User(); u != nil && u.DefaultCurrency != "" {
		return u.DefaultCurrency
	}
	return "EUR"
}

// SendRequest is the send money form.
type SendRequest struct {
	To          int64  `form:"to"`
	Currency    string `form:"currency"`
	Amount      string `form:"amount"`
	Description string `form:"description"`
}

func (s *Service) send(ctx handler.Context, req SendRequest) handler.Response {
	form := SendFormParams{
		Currency:    req.Currency,
		Currencies:  paymybuddy.Currencies,
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
	}
	if req.To <= 0 {
		form.Error = "Pick a contact first"
		return s.sendForm(form)
	}

	tx, err := s.api.SendMoney(ctx, paymybuddy.SendMoneyRequest{
		RecipientID: req.To,
		Currency:    req.Currency,
		Amount:      req.Amount,
		Description: form.Description,
	})
	if err == nil {
		name := "your contact"
		if tx.Recipient != nil {
			name = tx.Recipient.Name
		}
		s.flash(ctx, fmt.Sprintf("Sent %s to %s", paymybuddy.FormatAmount(tx.Currency, tx.Amount), name))
		return handler.Redirect("/summary")
	}
	if errors.Is(err, paymybuddy.ErrContactNotFound) {
		form.Error = "This contact does not exist anymore"
		return s.sendForm(form)
	}

	form.Recipient = &paymybuddy.Contact{ID: req.To}
	if msg, ok := transferMessage(err); ok {
		form.Error = msg
		return s.sendForm(form)
	}
	return handler.Error(err)
}

func (s *Service) sendForm(form SendFormParams) handler.Response {
	return handler.TemplPartial(
		s.views.SendForm(form),
		s.views.TransferPage(TransferPageParams{
			Send:     form,
			Withdraw: WithdrawFormParams{Currency: form.Currency, Currencies: paymybuddy.Currencies},
		}),
		handler.WithTarget("#send-form"),
	)
}

// WithdrawRequest is the bank withdrawal form.
type WithdrawRequest struct {
	Currency string `form:"currency"`
	Amount   string `form:"amount"`
	IBAN     string `form:"iban"`
}

func (s *Service) withdraw(ctx handler.Context, req WithdrawRequest) handler.Response {
	form := WithdrawFormParams{
		Currency:   req.Currency,
		Currencies: paymybuddy.Currencies,
		Amount:     req.Amount,
		IBAN:       strings.ReplaceAll(strings.TrimSpace(req.IBAN), " ", ""),
	}
	if form.IBAN == "" {
		form.Error = "Enter the IBAN of your bank account"
		return s.withdrawForm(form)
	}

	tx, err := s.api.WithdrawToBank(ctx, paymybuddy.WithdrawRequest{
		Currency: req.Currency,
		Amount:   req.Amount,
		IBAN:     form.IBAN,
	})
	if err == nil {
		s.flash(ctx, fmt.Sprintf("Withdrew %s to your bank account", paymybuddy.FormatAmount(tx.Currency, tx.Amount)))
		return handler.Redirect("/summary")
	}
	if msg, ok := transferMessage(err); ok {
		form.Error = msg
		return s.withdrawForm(form)
	}
	return handler.Error(err)
}

func (s *Service) withdrawForm(form WithdrawFormParams) handler.Response {
	return handler.TemplPartial(
		s.views.WithdrawForm(form),
		s.views.TransferPage(TransferPageParams{
			Send:     SendFormParams{Currency: form.Currency, Currencies: paymybuddy.Currencies},
			Withdraw: form,
		}),
		handler.WithTarget("#withdraw-form"),
	)
}

// transferMessage maps the errors a user can fix to form messages.
func transferMessage(err error) (string, bool) {
	var funds *paymybuddy.NotEnoughFundsError
	switch {
	case errors.As(err, &funds):
		if funds.MissingAmount == "" {
			return "Not enough funds", true
		}
		return "Not enough funds, " + paymybuddy.FormatAmount(funds.Currency, funds.MissingAmount) + " missing", true
	case errors.Is(err, paymybuddy.ErrInvalidAmount):
		return "Enter a positive amount with at most the currency's decimals", true
	case errors.Is(err, paymybuddy.ErrUnsupportedCurrency):
		return "Choose one of the listed currencies", true
	}
	return "", false
}
