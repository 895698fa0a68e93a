// Package validation evaluates rule sets, ordered rule ids per field, with
// go-playground/validator.
package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"portal/internal/lang"
	"portal/internal/models"

	"github.com/go-playground/validator/v10"
)

const minPasswordLength = 8

// implicitRules still run on an empty value. An empty password fails the
// strength rule, so a rule set carrying it demands a password.
var implicitRules = map[string]bool{
	"required": true,
	"password": true,
}

// Engine resolves rule identifiers into validator tags and collects
// translated messages per field.
type Engine struct {
	validate   *validator.Validate
	translator lang.Translator
	listeners  map[string]RuleProvider
}

func NewEngine(translator lang.Translator) *Engine {
	validate := validator.New()
	if err := validate.RegisterValidation("password", validatePasswordStrength); err != nil {
		panic(fmt.Sprintf("validation: register password rule: %v", err))
	}

	return &Engine{
		validate:   validate,
		translator: translator,
		listeners:  make(map[string]RuleProvider),
	}
}

// validatePasswordStrength requires eight characters with at least one upper
// case letter, one lower case letter and one digit.
func validatePasswordStrength(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if utf8.RuneCountInString(password) < minPasswordLength {
		return false
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
		if hasUpper && hasLower && hasNumber {
			return true
		}
	}

	return false
}

// Register attaches provider to every event it listens to.
func (e *Engine) Register(provider RuleProvider) {
	for _, event := range provider.Events() {
		e.listeners[event] = provider
	}
}

// RulesForEvent returns the rule set the listener of event builds for scenario.
func (e *Engine) RulesForEvent(event string, scenario models.Scenario) (models.RuleSet, error) {
	provider, ok := e.listeners[event]
	if !ok {
		return nil, fmt.Errorf("no validator listens to %q", event)
	}
	return provider.RulesFor(scenario), nil
}

// ValidateEvent validates input against the rules registered for event.
func (e *Engine) ValidateEvent(
	event string,
	scenario models.Scenario,
	input map[string]any,
) (models.ValidationErrors, error) {
	rules, err := e.RulesForEvent(event, scenario)
	if err != nil {
		return nil, err
	}
	return e.Validate(rules, input)
}

// Validate checks input against rules. The returned errors are empty when the
// input passes; an error is returned only for a rule identifier the engine
// does not know.
func (e *Engine) Validate(rules models.RuleSet, input map[string]any) (models.ValidationErrors, error) {
	errs := models.ValidationErrors{}

	for _, field := range rules.Fields() {
		value := input[field]
		empty := isEmpty(value)

		for _, rule := range rules[field] {
			name, param, _ := strings.Cut(rule, ":")

			if empty && (!implicitRules[name] || errs.Has(field)) {
				continue
			}

			ok, msgKey, err := e.check(name, param, value, input[field+"_confirmation"])
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", field, err)
			}
			if !ok {
				errs.Add(field, e.translator.Translate(msgKey, attribute(field), param))
			}
		}
	}

	return errs, nil
}

func (e *Engine) check(name, param string, value, confirmation any) (bool, string, error) {
	switch name {
	case "required":
		return !isEmpty(value), lang.ValidationRequired, nil
	case "email":
		return e.validate.Var(stringValue(value), "email") == nil, lang.ValidationEmail, nil
	case "confirmed":
		return e.validate.VarWithValue(stringValue(value), stringValue(confirmation), "eqcsfield") == nil,
			lang.ValidationConfirmed, nil
	case "password":
		return e.validate.Var(stringValue(value), "password") == nil, lang.ValidationPassword, nil
	case "min", "max":
		if param == "" {
			return false, "", fmt.Errorf("rule %s needs a parameter", name)
		}
		return e.validate.Var(stringValue(value), name+"="+param) == nil, "validation." + name, nil
	default:
		return false, "", fmt.Errorf("unknown rule %q", name)
	}
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func attribute(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
