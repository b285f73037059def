package account

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/paymybuddy/modules/layout"
)

// LoginPageParams contains data for rendering the login page.
type LoginPageParams struct {
	Form LoginFormParams
}

// LoginFormParams contains data for rendering the login form.
type LoginFormParams struct {
	Email    string
	ReturnTo string
	Notice   string
	Error    string
}

// RegisterPageParams contains data for rendering the registration page.
type RegisterPageParams struct {
	Form RegisterFormParams
}

// RegisterFormParams contains data for rendering the registration form.
type RegisterFormParams struct {
	Name            string
	Email           string
	DefaultCurrency string
	Currencies      []string
	// Errors holds one message per rejected field.
	Errors map[string]string
}

// Views renders the account pages. Every field is required; DefaultViews
// provides plain HTML renditions.
type Views struct {
	LoginPage    func(LoginPageParams) templ.Component
	LoginForm    func(LoginFormParams) templ.Component
	RegisterPage func(RegisterPageParams) templ.Component
	RegisterForm func(RegisterFormParams) templ.Component
}

// DefaultViews returns unstyled views.
func DefaultViews() *Views {
	return &Views{
		LoginPage: func(p LoginPageParams) templ.Component {
			return layout.Page("Log in", loginForm(p.Form))
		},
		LoginForm: loginForm,
		RegisterPage: func(p RegisterPageParams) templ.Component {
			return layout.Page("Sign up", registerForm(p.Form))
		},
		RegisterForm: registerForm,
	}
}

func loginForm(p LoginFormParams) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<form id="login-form" method="post" action="/login">`+
			`%s%s`+
			`<input type="hidden" name="to" value="%s">`+
			`<input type="email" name="email" value="%s" required>`+
			`<input type="password" name="password" required>`+
			`<button type="submit">Log in</button></form>`,
			layout.Message("notice", p.Notice), layout.Message("error", p.Error),
			templ.EscapeString(p.ReturnTo), templ.EscapeString(p.Email))
		return err
	})
}

func registerForm(p RegisterFormParams) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		options := ""
		for _, c := range p.Currencies {
			selected := ""
			if c == p.DefaultCurrency {
				selected = " selected"
			}
			options += fmt.Sprintf(`<option value="%s"%s>%s</option>`, c, selected, c)
		}
		_, err := fmt.Fprintf(w, `<form id="register-form" method="post" action="/register">`+
			`<input type="text" name="name" value="%s" required>%s`+
			`<input type="email" name="email" value="%s" required>%s`+
			`<input type="password" name="password" required>%s`+
			`<select name="currency">%s</select>%s`+
			`<button type="submit">Sign up</button></form>`,
			templ.EscapeString(p.Name), layout.Message("error", p.Errors["name"]),
			templ.EscapeString(p.Email), layout.Message("error", p.Errors["email"]),
			layout.Message("error", p.Errors["password"]),
			options, layout.Message("error", p.Errors["currency"]))
		return err
	})
}
