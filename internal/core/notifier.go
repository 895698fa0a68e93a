package core

import (
	"portal/internal/models"
	"portal/internal/notifier"

	"go.uber.org/zap"
)

func NewNotifier(config models.NotifierConfiguration) notifier.INotifier {
	switch config.Type {
	case "smtp":
		return notifier.NewSMTPNotifier(*config.SMTP)
	case "filesystem":
		n, err := notifier.NewFilesystemNotifier(*config.Filesystem)
		if err != nil {
			zap.L().Fatal("Failed to initialize notifier", zap.Error(err))
		}
		return n
	default:
		return nil
	}
}
