package wallet

import (
	"fmt"

	"github.com/dmitrymomot/paymybuddy/handler"
)

// AddMoneyPageParams contains the bank transfer details for topping up.
type AddMoneyPageParams struct {
	Reference string
	IBAN      string
	Recipient string
	BIC       string
}

func (s *Service) addMoney(ctx handler.Context, _ struct{}) handler.Response {
	var reference string
	if u := ctx.Guard().User(); u != nil {
		reference = transferReference(u.ID)
	}
	return handler.Templ(s.views.AddMoneyPage(AddMoneyPageParams{
		Reference: reference,
		IBAN:      s.cfg.BankIBAN,
		Recipient: s.cfg.BankRecipient,
		BIC:       s.cfg.BankBIC,
	}))
}

// transferReference identifies the wallet credited by an incoming transfer.
func transferReference(userID int64) string {
	return fmt.Sprintf("PMB%09d", userID)
}
