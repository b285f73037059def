// Package cookie manages HTTP cookies with shared default attributes,
// AES-GCM encrypted values and one-shot flash messages.
//
// The web front end keeps the API bearer token in an encrypted, HttpOnly
// cookie so the server-side bootstrap can remember the session on every page
// request:
//
//	cookies, err := cookie.NewFromConfig(cfg)
//	...
//	err = cookies.SetEncrypted(w, "auth_token", token, cookie.WithMaxAge(30*24*3600))
//	token, err := cookies.GetEncrypted(r, "auth_token")
//	cookies.Delete(w, "auth_token")
//
// Secrets must be at least 32 characters. Several comma separated secrets in
// COOKIE_SECRETS enable rotation: the first encrypts, all of them decrypt.
package cookie
