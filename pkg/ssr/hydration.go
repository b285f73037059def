package ssr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/paymybuddy/pkg/authguard"
)

// HydrationID is the id of the script element carrying the session.
const HydrationID = "__AUTH__"

var ErrNoHydration = errors.New("ssr: hydration payload not found")

var (
	hydrationOpen  = []byte(`<script id="` + HydrationID + `" type="application/json">`)
	hydrationClose = []byte(`</script>`)
)

// Hydration renders the serialized session for the client. encoding/json
// escapes <, > and &, so the payload cannot close the script element.
func Hydration(s authguard.Session) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		payload, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("ssr: encode hydration: %w", err)
		}
		for _, part := range [][]byte{hydrationOpen, payload, hydrationClose} {
			if _, err := w.Write(part); err != nil {
				return err
			}
		}
		return nil
	})
}

// ParseHydration extracts the session rendered by Hydration from a page.
func ParseHydration(page []byte) (authguard.Session, error) {
	var s authguard.Session

	_, rest, found := bytes.Cut(page, hydrationOpen)
	if !found {
		return s, ErrNoHydration
	}
	payload, _, found := bytes.Cut(rest, hydrationClose)
	if !found {
		return s, ErrNoHydration
	}
	if err := json.Unmarshal(payload, &s); err != nil {
		return s, fmt.Errorf("ssr: decode hydration: %w", err)
	}
	return s, nil
}
