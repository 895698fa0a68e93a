package models

import "sort"

// Scenario is a named validation context.
type Scenario string

const (
	ScenarioCreate Scenario = "create"
	ScenarioUpdate Scenario = "update"
)

// RuleSet maps a field name to its ordered list of rule identifiers.
type RuleSet map[string][]string

// Fields returns the field names in a stable order.
func (r RuleSet) Fields() []string {
	fields := make([]string, 0, len(r))
	for field := range r {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// ValidationErrors holds the translated messages of every failing field.
type ValidationErrors map[string][]string

func (e ValidationErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e ValidationErrors) Has(field string) bool {
	return len(e[field]) > 0
}

// First returns the first message for field, or an empty string.
func (e ValidationErrors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func (e ValidationErrors) Empty() bool {
	return len(e) == 0
}
