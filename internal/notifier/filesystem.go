package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"portal/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// mailFile is the on-disk form of one captured e-mail.
type mailFile struct {
	To       string    `json:"to"`
	Subject  string    `json:"subject"`
	Template string    `json:"template_name"`
	Args     any       `json:"args"`
	Text     string    `json:"text"`
	HTML     string    `json:"html"`
	SentAt   time.Time `json:"timestamp"`
}

// FilesystemNotifier captures e-mails as JSON files, for development setups
// without an SMTP relay.
type FilesystemNotifier struct {
	directory string
}

func NewFilesystemNotifier(config models.FilesystemNotifierConfiguration) (*FilesystemNotifier, error) {
	if err := os.MkdirAll(config.Directory, 0750); err != nil {
		return nil, fmt.Errorf("failed to create notification directory: %w", err)
	}
	return &FilesystemNotifier{directory: config.Directory}, nil
}

func (f *FilesystemNotifier) NotifyFromTemplate(_ context.Context, to, subject, templateName string, data any) error {
	body, err := render(templateName, data)
	if err != nil {
		return err
	}

	mail := mailFile{
		To:       to,
		Subject:  subject,
		Template: templateName,
		Args:     data,
		Text:     body.Text,
		HTML:     body.HTML,
		SentAt:   time.Now().UTC().Truncate(time.Second),
	}
	content, err := json.MarshalIndent(mail, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	name := mail.SentAt.Format("20060102T150405Z") + "-" + uuid.NewString() + ".json"
	path := filepath.Join(f.directory, name)
	if err = os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("failed to write notification file: %w", err)
	}

	zap.L().Info("Notification written to filesystem", zap.String("path", path), zap.String("template", templateName))
	return nil
}
