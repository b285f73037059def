package authguard

// User is the identity returned by the API for an authenticated session.
type User struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	DefaultCurrency string `json:"defaultCurrency,omitempty"`
}

// Session is the serialized form of the guard, used for hydration and
// cross-tab broadcasts. A token without user only exists while a remember
// or login is in flight.
type Session struct {
	Token string `json:"token,omitempty"`
	User  *User  `json:"user,omitempty"`
}

// Authenticated reports whether the session carries a user.
func (s Session) Authenticated() bool {
	return s.User != nil
}

func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// State of the guard.
type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Origin tells where a state change comes from.
type Origin int

const (
	// OriginLocal is a change made by an operation of this guard.
	OriginLocal Origin = iota
	// OriginPeer is a change replicated from another tab.
	OriginPeer
)

func (o Origin) String() string {
	if o == OriginPeer {
		return "peer"
	}
	return "local"
}

// Update is emitted once per state transition.
type Update struct {
	Session  Session
	Previous Session
	Origin   Origin
}

// IdentityChanged reports whether the token changed, as opposed to a refresh
// of the same identity.
func (u Update) IdentityChanged() bool {
	return u.Session.Token != u.Previous.Token
}

// Listener receives guard updates. It runs synchronously on the goroutine
// that changed the state.
type Listener func(Update)
