// Package paymybuddy is the typed surface of the PayMyBuddy API used by the
// pages: balances, contacts, activity and transfers.
//
// Calls carry no token of their own; the API client resolves the ambient
// session. Every call branches on the service error codes it expects and
// turns them into Go errors (ErrContactNotFound, *NotEnoughFundsError,
// *FieldError); any other service error escalates as an
// *apiclient.UnhandledAPIError. Amounts are decimal strings validated against
// the currency's minor units before they are sent.
package paymybuddy
