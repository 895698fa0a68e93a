// Package events carries the e-mails of the reset flow from the web process
// to the notification worker.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"portal/internal/configuration"
	"portal/internal/lang"
	"portal/internal/messaging"
	"portal/internal/notifier"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// metadataType names the event a message carries.
const metadataType = "type"

// Event is a notification published on the notifications topic.
type Event interface {
	Trigger() error
	callback(ctx context.Context, n notifier.INotifier, t lang.Translator) error
}

type PasswordResetRequestedPayload struct {
	Email     string `json:"email"`
	Fullname  string `json:"fullname"`
	ResetURL  string `json:"reset_url"`
	ExpiresAt string `json:"expires_at"`
}

type PasswordResetRequested struct {
	Publisher messaging.IPublisher
	Payload   PasswordResetRequestedPayload
}

func NewPasswordResetRequested(
	publisher messaging.IPublisher,
	email string,
	fullname string,
	resetURL string,
	expiresAt string,
) PasswordResetRequested {
	return PasswordResetRequested{
		Publisher: publisher,
		Payload: PasswordResetRequestedPayload{
			Email:     email,
			Fullname:  fullname,
			ResetURL:  resetURL,
			ExpiresAt: expiresAt,
		},
	}
}

func (e PasswordResetRequested) Trigger() error {
	return publish(e.Publisher, configuration.EventPasswordResetRequested, e.Payload)
}

func (e PasswordResetRequested) callback(ctx context.Context, n notifier.INotifier, t lang.Translator) error {
	subject := t.Translate(lang.EmailResetSubject)
	return n.NotifyFromTemplate(ctx, e.Payload.Email, subject, notifier.TemplatePasswordReset, e.Payload)
}

type PasswordResetCompletedPayload struct {
	Email     string `json:"email"`
	Fullname  string `json:"fullname"`
	ResetDate string `json:"reset_date"`
	LoginURL  string `json:"login_url"`
}

type PasswordResetCompleted struct {
	Publisher messaging.IPublisher
	Payload   PasswordResetCompletedPayload
}

func NewPasswordResetCompleted(
	publisher messaging.IPublisher,
	email string,
	fullname string,
	resetDate string,
	loginURL string,
) PasswordResetCompleted {
	return PasswordResetCompleted{
		Publisher: publisher,
		Payload: PasswordResetCompletedPayload{
			Email:     email,
			Fullname:  fullname,
			ResetDate: resetDate,
			LoginURL:  loginURL,
		},
	}
}

func (e PasswordResetCompleted) Trigger() error {
	return publish(e.Publisher, configuration.EventPasswordResetCompleted, e.Payload)
}

func (e PasswordResetCompleted) callback(ctx context.Context, n notifier.INotifier, t lang.Translator) error {
	subject := t.Translate(lang.EmailCompletedSubject)
	return n.NotifyFromTemplate(ctx, e.Payload.Email, subject, notifier.TemplatePasswordResetCompleted, e.Payload)
}

func publish(publisher messaging.IPublisher, eventType string, payload any) error {
	if publisher == nil {
		return fmt.Errorf("no publisher for %s", eventType)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", eventType, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set(metadataType, eventType)

	if err = publisher.Publish(msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}
