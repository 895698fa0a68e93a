// Package session carries one-shot flash data across a redirect in a signed
// cookie.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"portal/internal/configuration"
	"portal/internal/models"
)

// maxCookieSize keeps the cookie under the 4KB browsers accept.
const maxCookieSize = 4000

var errInvalidFlash = errors.New("invalid flash cookie")

type FlashStore struct {
	secret []byte
	path   string
	secure bool
}

func NewFlashStore(secret string, path string, secure bool) *FlashStore {
	if path == "" {
		path = "/"
	}
	return &FlashStore{secret: []byte(secret), path: path, secure: secure}
}

// Put attaches flash to the response. Old input is dropped first when the
// cookie would grow too large.
func (s *FlashStore) Put(w http.ResponseWriter, flash models.Flash) error {
	value, err := s.encode(flash)
	if err != nil {
		return err
	}
	if len(value) > maxCookieSize && len(flash.OldInput) > 0 {
		flash.OldInput = nil
		if value, err = s.encode(flash); err != nil {
			return err
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     configuration.FlashCookieName,
		Value:    value,
		Path:     s.path,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Pop reads the flash of the request and expires the cookie so the data is
// shown only once. A missing or tampered cookie yields an empty flash.
func (s *FlashStore) Pop(w http.ResponseWriter, r *http.Request) models.Flash {
	cookie, err := r.Cookie(configuration.FlashCookieName)
	if err != nil {
		return models.Flash{}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     configuration.FlashCookieName,
		Value:    "",
		Path:     s.path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	flash, err := s.decode(cookie.Value)
	if err != nil {
		return models.Flash{}
	}
	return flash
}

func (s *FlashStore) encode(flash models.Flash) (string, error) {
	payload, err := json.Marshal(flash)
	if err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + s.sign(encoded), nil
}

func (s *FlashStore) decode(value string) (models.Flash, error) {
	encoded, signature, ok := strings.Cut(value, ".")
	if !ok || !hmac.Equal([]byte(signature), []byte(s.sign(encoded))) {
		return models.Flash{}, errInvalidFlash
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return models.Flash{}, errInvalidFlash
	}

	var flash models.Flash
	if err = json.Unmarshal(payload, &flash); err != nil {
		return models.Flash{}, errInvalidFlash
	}
	return flash, nil
}

func (s *FlashStore) sign(encoded string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
