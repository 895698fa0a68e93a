package validation

import (
	"portal/internal/configuration"
	"portal/internal/models"
)

// RuleProvider hands out rule sets for the validation events it listens to.
type RuleProvider interface {
	Events() []string
	RulesFor(scenario models.Scenario) models.RuleSet
}

// UserValidator holds the rules of a user account. It serves both the user
// management screens and the account screen.
type UserValidator struct{}

func (UserValidator) Events() []string {
	return []string{
		configuration.EventValidateUsers,
		configuration.EventValidateUserAccount,
	}
}

// RulesFor builds a fresh rule set on every call; creating a user also
// requires a password.
func (UserValidator) RulesFor(scenario models.Scenario) models.RuleSet {
	rules := models.RuleSet{
		"email":    {"required", "email"},
		"fullname": {"required"},
		"roles":    {"required"},
	}

	if scenario == models.ScenarioCreate {
		rules["password"] = []string{"password"}
	}

	return rules
}

// ForgotRules validates POST /forgot.
func ForgotRules() models.RuleSet {
	return models.RuleSet{
		"email": {"required", "email"},
	}
}

// ResetRules validates POST /forgot/reset.
func ResetRules() models.RuleSet {
	return models.RuleSet{
		"email":    {"required", "email"},
		"password": {"required", "confirmed", "password"},
		"token":    {"required"},
	}
}
