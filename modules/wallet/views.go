package wallet

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/paymybuddy/modules/layout"
	"github.com/dmitrymomot/paymybuddy/pkg/paymybuddy"
)

// SummaryPageParams contains data for rendering the summary page.
type SummaryPageParams struct {
	Notice   string
	Balances []paymybuddy.Balance
	Activity ActivityParams
}

// ActivityParams contains one slice of the activity feed.
type ActivityParams struct {
	UserID int64
	paymybuddy.Cursor[paymybuddy.Transaction]
}

// ContactsPageParams contains data for rendering the contacts page.
type ContactsPageParams struct {
	Notice   string
	Contacts paymybuddy.Page[paymybuddy.Contact]
	Form     AddContactFormParams
}

// AddContactFormParams contains data for rendering the add contact form.
type AddContactFormParams struct {
	Email string
	Error string
}

// TransferPageParams contains data for rendering the transfer page.
type TransferPageParams struct {
	Send     SendFormParams
	Withdraw WithdrawFormParams
}

// SendFormParams contains data for rendering the send money form.
type SendFormParams struct {
	Recipient   *paymybuddy.Contact
	Currency    string
	Currencies  []string
	Amount      string
	Description string
	Error       string
}

// WithdrawFormParams contains data for rendering the bank withdrawal form.
type WithdrawFormParams struct {
	Currency   string
	Currencies []string
	Amount     string
	IBAN       string
	Error      string
}

// Views renders the wallet pages. DefaultViews provides plain HTML
// renditions.
type Views struct {
	SummaryPage  func(SummaryPageParams) templ.Component
	Activity     func(ActivityParams) templ.Component
	ContactsPage func(ContactsPageParams) templ.Component
	ContactForm  func(AddContactFormParams) templ.Component
	Suggestions  func([]paymybuddy.Contact) templ.Component
	TransferPage func(TransferPageParams) templ.Component
	SendForm     func(SendFormParams) templ.Component
	WithdrawForm func(WithdrawFormParams) templ.Component
	AddMoneyPage func(AddMoneyPageParams) templ.Component
}

// DefaultViews returns unstyled views.
func DefaultViews() *Views {
	return &Views{
		SummaryPage: func(p SummaryPageParams) templ.Component {
			return layout.Page("Summary", join(
				raw(layout.Message("notice", p.Notice)),
				balances(p.Balances),
				activity(p.Activity),
			))
		},
		Activity: activity,
		ContactsPage: func(p ContactsPageParams) templ.Component {
			return layout.Page("Contacts", join(
				raw(layout.Message("notice", p.Notice)),
				contactForm(p.Form),
				contacts(p.Contacts),
			))
		},
		ContactForm: contactForm,
		Suggestions: suggestions,
		TransferPage: func(p TransferPageParams) templ.Component {
			return layout.Page("Transfer", join(sendForm(p.Send), withdrawForm(p.Withdraw)))
		},
		SendForm:     sendForm,
		WithdrawForm: withdrawForm,
		AddMoneyPage: func(p AddMoneyPageParams) templ.Component {
			return layout.Page("Add money", addMoney(p))
		},
	}
}

func join(parts ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, p := range parts {
			if err := p.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

func raw(html string) templ.Component {
	return templ.Raw(html)
}

func write(format string, args ...any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, format, args...)
		return err
	})
}

func esc(s string) string {
	return templ.EscapeString(s)
}

func balances(list []paymybuddy.Balance) templ.Component {
	var b strings.Builder
	b.WriteString(`<section id="balances"><h2>Balances</h2><ul>`)
	if len(list) == 0 {
		b.WriteString(`<li class="empty">No money yet</li>`)
	}
	for _, bal := range list {
		fmt.Fprintf(&b, `<li>%s</li>`, esc(paymybuddy.FormatAmount(bal.Currency, bal.Amount)))
	}
	b.WriteString(`</ul></section>`)
	return raw(b.String())
}

func activity(p ActivityParams) templ.Component {
	var b strings.Builder
	b.WriteString(`<section id="activity"><h2>Activity</h2><ul>`)
	for _, tx := range p.Records {
		counterpart, sign := "Bank account", "-"
		switch {
		case tx.Sender != nil && tx.Sender.ID != p.UserID:
			counterpart, sign = tx.Sender.Name, "+"
		case tx.Recipient != nil:
			counterpart = tx.Recipient.Name
		}
		fmt.Fprintf(&b, `<li><time>%s</time> %s <span class="amount">%s%s</span> %s</li>`,
			tx.Date.Format("2006-01-02"), esc(counterpart), sign,
			esc(paymybuddy.FormatAmount(tx.Currency, tx.Amount)), esc(tx.Description))
	}
	b.WriteString(`</ul>`)
	if p.HasPrev {
		fmt.Fprintf(&b, `<a href="/summary?cursor=%s" data-on-click__prevent="@get('/summary?cursor=%s')">Newer</a>`, esc(p.PrevCursor), esc(p.PrevCursor))
	}
	if p.HasNext {
		fmt.Fprintf(&b, `<a href="/summary?cursor=%s" data-on-click__prevent="@get('/summary?cursor=%s')">Older</a>`, esc(p.NextCursor), esc(p.NextCursor))
	}
	b.WriteString(`</section>`)
	return raw(b.String())
}

func contactForm(p AddContactFormParams) templ.Component {
	return write(`<form id="contact-form" method="post" action="/contacts">%s`+
		`<input type="email" name="email" value="%s" data-bind-email data-on-input__debounce.300ms="@get('/contacts/autocomplete?email=' + encodeURIComponent($email))" required>`+
		`<ul id="suggestions"></ul><button type="submit">Add</button></form>`,
		layout.Message("error", p.Error), esc(p.Email))
}

func suggestions(list []paymybuddy.Contact) templ.Component {
	var b strings.Builder
	b.WriteString(`<ul id="suggestions">`)
	for _, c := range list {
		fmt.Fprintf(&b, `<li data-email="%s">%s &lt;%s&gt;</li>`, esc(c.Email), esc(c.Name), esc(c.Email))
	}
	b.WriteString(`</ul>`)
	return raw(b.String())
}

func contacts(p paymybuddy.Page[paymybuddy.Contact]) templ.Component {
	var b strings.Builder
	b.WriteString(`<section id="contacts"><ul>`)
	for _, c := range p.Records {
		fmt.Fprintf(&b, `<li>%s <small>%s</small> <a href="/transfer?to=%d">Send</a>`+
			`<form method="post" action="/contacts/%d/remove"><button type="submit">Remove</button></form></li>`,
			esc(c.Name), esc(c.Email), c.ID, c.ID)
	}
	b.WriteString(`</ul>`)
	if p.Page > 1 {
		fmt.Fprintf(&b, `<a href="/contacts?page=%d">Previous</a>`, p.Page-1)
	}
	if p.Page < p.PageCount {
		fmt.Fprintf(&b, `<a href="/contacts?page=%d">Next</a>`, p.Page+1)
	}
	b.WriteString(`</section>`)
	return raw(b.String())
}

func currencyOptions(selected string, list []string) string {
	var b strings.Builder
	for _, c := range list {
		attr := ""
		if c == selected {
			attr = " selected"
		}
		fmt.Fprintf(&b, `<option value="%s"%s>%s</option>`, esc(c), attr, esc(c))
	}
	return b.String()
}

func sendForm(p SendFormParams) templ.Component {
	recipient := `<p class="error">Pick a contact first</p>`
	if p.Recipient != nil {
		recipient = fmt.Sprintf(`<input type="hidden" name="to" value="%d"><p>To %s</p>`, p.Recipient.ID, esc(p.Recipient.Name))
	}
	return write(`<form id="send-form" method="post" action="/transfer">%s%s`+
		`<select name="currency">%s</select><input name="amount" value="%s" inputmode="decimal" required>`+
		`<input name="description" value="%s"><button type="submit">Send</button></form>`,
		layout.Message("error", p.Error), recipient,
		currencyOptions(p.Currency, p.Currencies), esc(p.Amount), esc(p.Description))
}

func withdrawForm(p WithdrawFormParams) templ.Component {
	return write(`<form id="withdraw-form" method="post" action="/withdraw">%s`+
		`<select name="currency">%s</select><input name="amount" value="%s" inputmode="decimal" required>`+
		`<input name="iban" value="%s" required><button type="submit">Withdraw</button></form>`,
		layout.Message("error", p.Error), currencyOptions(p.Currency, p.Currencies), esc(p.Amount), esc(p.IBAN))
}

func addMoney(p AddMoneyPageParams) templ.Component {
	return write(`<section id="add-money"><p>Make a bank transfer to the account below, quoting the reference.</p>`+
		`<table><tr><th>Reference</th><td>%s</td></tr><tr><th>IBAN</th><td>%s</td></tr>`+
		`<tr><th>Recipient</th><td>%s</td></tr><tr><th>SWIFT/BIC</th><td>%s</td></tr></table></section>`,
		esc(p.Reference), esc(p.IBAN), esc(p.Recipient), esc(p.BIC))
}
