package account

import "errors"

// ErrNoGuard is returned when a page runs without the SSR bootstrap middleware.
var ErrNoGuard = errors.New("account: request has no session guard")
