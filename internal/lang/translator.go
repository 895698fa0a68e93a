// Package lang resolves translation keys into user-facing text.
package lang

import (
	"fmt"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
)

// Translator turns a translation key into text. Unknown keys come back as-is.
type Translator interface {
	Translate(key string, params ...string) string
}

type UniversalTranslator struct {
	trans ut.Translator
}

var bundles = map[string]map[string]string{
	"en": english,
}

var fallback locales.Translator = en.New()

// New returns a translator for locale loaded with the bundled messages.
func New(locale string) (*UniversalTranslator, error) {
	messages, ok := bundles[locale]
	if !ok {
		return nil, fmt.Errorf("unsupported locale %q", locale)
	}

	uni := ut.New(fallback, fallback)
	trans, found := uni.GetTranslator(locale)
	if !found {
		return nil, fmt.Errorf("no locale data for %q", locale)
	}

	for key, text := range messages {
		if err := trans.Add(key, text, false); err != nil {
			return nil, fmt.Errorf("failed to load %q: %w", key, err)
		}
	}

	return &UniversalTranslator{trans: trans}, nil
}

func (t *UniversalTranslator) Translate(key string, params ...string) string {
	msg, err := t.trans.T(key, params...)
	if err != nil {
		return key
	}
	return msg
}

func (t *UniversalTranslator) Locale() string {
	return t.trans.Locale()
}
