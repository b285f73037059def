package wallet

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/paymybuddy/handler"
	"github.com/dmitrymomot/paymybuddy/pkg/paymybuddy"
)

// ContactsRequest selects a page of contacts.
type ContactsRequest struct {
	Page int `query:"page"`
}

func (s *Service) contacts(ctx handler.Context, req ContactsRequest) handler.Response {
	return s.contactsPage(ctx, req.Page, AddContactFormParams{})
}

func (s *Service) contactsPage(ctx handler.Context, page int, form AddContactFormParams) handler.Response {
	if page < 1 {
		page = 1
	}
	list, err := s.api.Contacts(ctx, paymybuddy.PageQuery{
		Page:     page,
		PageSize: s.cfg.PageSize,
		Sort:     "name",
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.TemplPartial(
		s.views.ContactForm(form),
		s.views.ContactsPage(ContactsPageParams{
			Notice:   s.notice(ctx),
			Contacts: list,
			Form:     form,
		}),
		handler.WithTarget("#contact-form"),
	)
}

// AddContactRequest is the add contact form.
type AddContactRequest struct {
	Email string `form:"email"`
}

func (s *Service) addContact(ctx handler.Context, req AddContactRequest) handler.Response {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return s.contactsPage(ctx, 1, AddContactFormParams{Error: "Enter the email of your buddy"})
	}

	contact, err := s.api.AddContact(ctx, email)
	switch {
	case err == nil:
		s.flash(ctx, contact.Name+" is now one of your contacts")
		return handler.Redirect("/contacts")
	case errors.Is(err, paymybuddy.ErrContactNotFound):
		return s.contactsPage(ctx, 1, AddContactFormParams{Email: email, Error: "Nobody is registered with this email"})
	case errors.Is(err, paymybuddy.ErrCannotBeHimself):
		return s.contactsPage(ctx, 1, AddContactFormParams{Email: email, Error: "You cannot add yourself"})
	}
	return handler.Error(err)
}

// AutocompleteRequest carries the text typed in the add contact form.
type AutocompleteRequest struct {
	Input string `query:"email"`
}

func (s *Service) autocomplete(ctx handler.Context, req AutocompleteRequest) handler.Response {
	input := strings.TrimSpace(req.Input)
	if len(input) < 2 {
		return handler.Templ(s.views.Suggestions(nil), handler.WithTarget("#suggestions"))
	}
	list, err := s.api.Autocomplete(ctx, input)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Templ(s.views.Suggestions(list), handler.WithTarget("#suggestions"))
}

// ContactPath identifies a contact in the URL.
type ContactPath struct {
	ID int64 `path:"id"`
}

func (s *Service) removeContact(ctx handler.Context, req ContactPath) handler.Response {
	contact, err := s.api.RemoveContact(ctx, req.ID)
	switch {
	case err == nil:
		s.flash(ctx, contact.Name+" was removed from your contacts")
		return handler.Redirect("/contacts")
	case errors.Is(err, paymybuddy.ErrContactNotFound):
		return handler.Error(handler.NewHTTPError(http.StatusNotFound, "Contact not found"))
	}
	return handler.Error(err)
}
