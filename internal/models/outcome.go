package models

// OutcomeKind names the controller handler a broker outcome is routed to.
type OutcomeKind int

// OutcomeUnknown is the zero value; the controller treats it as unexpected.
const (
	OutcomeUnknown OutcomeKind = iota
	OutcomeValidationFailed
	OutcomeCreateFailed
	OutcomeCreateSucceed
	OutcomeResetFailed
	OutcomeResetSucceed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeValidationFailed:
		return "validation_failed"
	case OutcomeCreateFailed:
		return "create_failed"
	case OutcomeCreateSucceed:
		return "create_succeed"
	case OutcomeResetFailed:
		return "reset_failed"
	case OutcomeResetSucceed:
		return "reset_succeed"
	default:
		return "unknown"
	}
}

// BrokerOutcome is what the password broker reports back for a request.
// Key is a translation key; Errors is only set for OutcomeValidationFailed.
type BrokerOutcome struct {
	Kind   OutcomeKind
	Key    string
	Errors ValidationErrors
}
