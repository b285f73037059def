package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"
)

const (
	minSecretLength = 32
	flashPrefix     = "__flash_"
)

// Manager writes and reads cookies with shared default attributes. Encrypted
// values use AES-256-GCM keyed by the first secret; older secrets still
// decrypt, so keys can be rotated.
type Manager struct {
	aeads    []cipher.AEAD
	defaults attributes
}

func New(secrets []string, opts ...Option) (*Manager, error) {
	secrets = slices.DeleteFunc(slices.Clone(secrets), func(s string) bool { return s == "" })
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	aeads := make([]cipher.AEAD, 0, len(secrets))
	for i, s := range secrets {
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}
		block, err := aes.NewCipher([]byte(s[:minSecretLength]))
		if err != nil {
			return nil, fmt.Errorf("cookie: secret %d: %w", i, err)
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("cookie: secret %d: %w", i, err)
		}
		aeads = append(aeads, aead)
	}

	defaults := attributes{
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteLaxMode,
	}.apply(opts)

	return &Manager{aeads: aeads, defaults: defaults}, nil
}

func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) {
	http.SetCookie(w, m.defaults.apply(opts).cookie(name, value))
}

func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Delete expires the cookie with the manager's default attributes.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	c := m.defaults.cookie(name, "")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	http.SetCookie(w, c)
}

func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, opts ...Option) error {
	sealed, err := m.seal(value)
	if err != nil {
		return err
	}
	m.Set(w, name, sealed, opts...)
	return nil
}

func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	sealed, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.open(sealed)
}

// SetFlash stores a one-shot JSON value read back by GetFlash.
func (m *Manager) SetFlash(w http.ResponseWriter, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal flash: %w", err)
	}
	return m.SetEncrypted(w, flashPrefix+key, string(data))
}

// GetFlash decodes the flash value into dest and deletes the cookie.
func (m *Manager) GetFlash(w http.ResponseWriter, r *http.Request, key string, dest any) error {
	name := flashPrefix + key

	data, err := m.GetEncrypted(r, name)
	if err != nil {
		return err
	}
	m.Delete(w, name)

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("unmarshal flash: %w", err)
	}
	return nil
}

// seal encrypts with the current key; the nonce is prepended to the ciphertext.
func (m *Manager) seal(value string) (string, error) {
	aead := m.aeads[0]
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(aead.Seal(nonce, nonce, []byte(value), nil)), nil
}

func (m *Manager) open(sealed string) (string, error) {
	data, err := base64.URLEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrInvalidFormat
	}

	for _, aead := range m.aeads {
		if len(data) < aead.NonceSize() {
			return "", ErrInvalidFormat
		}
		nonce, ciphertext := data[:aead.NonceSize()], data[aead.NonceSize():]
		if plaintext, err := aead.Open(nil, nonce, ciphertext, nil); err == nil {
			return string(plaintext), nil
		}
	}
	return "", ErrDecryptionFailed
}
