package models

// Severity of a flash message.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Message is a one-time flash message attached to a redirect and consumed by
// the next rendered page.
type Message struct {
	Body     string   `json:"body"`
	Severity Severity `json:"severity"`
}

// Flash is what survives a redirect: an optional message, field errors and
// the previously submitted input.
type Flash struct {
	Message  *Message          `json:"message,omitempty"`
	Errors   ValidationErrors  `json:"errors,omitempty"`
	OldInput map[string]string `json:"old,omitempty"`
}

func (f Flash) IsEmpty() bool {
	return f.Message == nil && len(f.Errors) == 0 && len(f.OldInput) == 0
}
