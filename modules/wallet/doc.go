// Package wallet serves the pages of an authenticated user: the summary of
// balances and activity, the contacts and the transfers to a contact or to a
// bank account.
//
// Every page is gated to authenticated sessions; an anonymous visitor is sent
// to the login page with the current page as return path. API errors the user
// can fix (missing funds, invalid amounts, unknown contacts) are rendered in
// the form; anything else goes to the error handler, which also sends the
// visitor back to login when the API rejects the session token.
package wallet
