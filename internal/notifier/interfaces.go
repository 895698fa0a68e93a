package notifier

import "context"

// INotifier delivers an e-mail rendered from one of the bundled templates.
type INotifier interface {
	NotifyFromTemplate(ctx context.Context, to string, subject string, templateName string, data any) error
}
