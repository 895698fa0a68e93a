// Package processor holds the password broker behind the forgot / reset
// password pages.
package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portal/internal/activity"
	"portal/internal/configuration"
	apierrors "portal/internal/errors"
	"portal/internal/events"
	h "portal/internal/helpers"
	"portal/internal/lang"
	"portal/internal/messaging"
	"portal/internal/models"
	"portal/internal/sql"
	"portal/internal/validation"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PasswordBroker struct {
	DB             *gorm.DB
	Config         models.BrokerConfig
	Validator      *validation.Engine
	Publisher      messaging.IPublisher
	ActivityLogger activity.IActivityLogger

	now func() time.Time
}

func NewPasswordBroker(
	db *gorm.DB,
	config models.BrokerConfig,
	validator *validation.Engine,
	publisher messaging.IPublisher,
	activityLogger activity.IActivityLogger,
) *PasswordBroker {
	return &PasswordBroker{
		DB:             db,
		Config:         config,
		Validator:      validator,
		Publisher:      publisher,
		ActivityLogger: activityLogger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func outcome(kind models.OutcomeKind, key string) models.BrokerOutcome {
	return models.BrokerOutcome{Kind: kind, Key: key}
}

// Create issues a reset token for the user of input.Email and hands the link
// to the notification worker.
func (b *PasswordBroker) Create(ctx context.Context, input models.ResetRequest) (models.BrokerOutcome, error) {
	logger := h.GetLogger(ctx)
	db := b.DB.WithContext(ctx)

	errs, err := b.Validator.Validate(validation.ForgotRules(), input.Input())
	if err != nil {
		return models.BrokerOutcome{}, err
	}
	if !errs.Empty() {
		return models.BrokerOutcome{Kind: models.OutcomeValidationFailed, Errors: errs}, nil
	}

	user, err := sql.GetUserByEmail(db, input.Email)
	if errors.Is(err, sql.ErrUserNotFound) {
		logger.Info("Password reset requested for unknown e-mail")
		return outcome(models.OutcomeCreateFailed, apierrors.ErrInvalidUser), nil
	}
	if err != nil {
		return models.BrokerOutcome{}, fmt.Errorf("failed to look up user: %w", err)
	}

	now := b.now()

	latest, err := sql.GetLatestReset(db, user.Email)
	switch {
	case err == nil && b.throttled(latest, now):
		logger.Info("Password reset throttled", zap.String("user_id", user.ID.String()))
		return outcome(models.OutcomeCreateFailed, apierrors.ErrThrottled), nil
	case err != nil && !errors.Is(err, sql.ErrResetNotFound):
		return models.BrokerOutcome{}, fmt.Errorf("failed to look up reset: %w", err)
	}

	token, err := h.GenerateResetToken()
	if err != nil {
		return models.BrokerOutcome{}, fmt.Errorf("failed to generate token: %w", err)
	}
	hashedToken, err := h.CreateHash(token)
	if err != nil {
		return models.BrokerOutcome{}, fmt.Errorf("failed to hash token: %w", err)
	}

	reset := models.PasswordReset{
		Email:       user.Email,
		HashedToken: hashedToken,
		ExpiresAt:   now.Add(time.Duration(b.Config.ResetTokenExpiry) * time.Minute),
		CreatedAt:   now,
	}
	if err = sql.ReplaceReset(db, &reset); err != nil {
		return models.BrokerOutcome{}, fmt.Errorf("failed to store reset: %w", err)
	}

	resetURL := h.AbsoluteURL(b.Config.WebURL, h.Handles(b.Config.BasePath, configuration.RouteResetForm, token))
	event := events.NewPasswordResetRequested(
		b.Publisher,
		user.Email,
		user.Fullname,
		resetURL,
		reset.ExpiresAt.Format(configuration.DateFormat),
	)
	if err = event.Trigger(); err != nil {
		// An undelivered reset must not throttle the retry.
		if delErr := sql.DeleteResets(db, user.Email); delErr != nil {
			logger.Error("Failed to discard undelivered reset", zap.Error(delErr))
		}
		return models.BrokerOutcome{}, err
	}

	b.record(ctx, activity.PasswordResetRequested, "Password reset requested", user, "")

	logger.Info("Password reset requested",
		zap.String("user_id", user.ID.String()),
		zap.Time("expires_at", reset.ExpiresAt))

	return outcome(models.OutcomeCreateSucceed, lang.ResponsePasswordRequest), nil
}

// throttled reports whether latest is still live and younger than the
// configured throttle.
func (b *PasswordBroker) throttled(latest models.PasswordReset, now time.Time) bool {
	if b.Config.ResetThrottle <= 0 || latest.IsExpired(now) {
		return false
	}
	return now.Sub(latest.CreatedAt) < time.Duration(b.Config.ResetThrottle)*time.Second
}

// Reset applies the new password of input when its token is the pending,
// unexpired reset of the user.
func (b *PasswordBroker) Reset(ctx context.Context, input models.ResetSubmission) (models.BrokerOutcome, error) {
	logger := h.GetLogger(ctx)
	db := b.DB.WithContext(ctx)

	errs, err := b.Validator.Validate(validation.ResetRules(), input.Input())
	if err != nil {
		return models.BrokerOutcome{}, err
	}
	switch {
	case errs.Has("email"):
		return outcome(models.OutcomeResetFailed, apierrors.ErrInvalidUser), nil
	case errs.Has("password"):
		return outcome(models.OutcomeResetFailed, apierrors.ErrInvalidPassword), nil
	case errs.Has("token"):
		return outcome(models.OutcomeResetFailed, apierrors.ErrInvalidToken), nil
	}

	user, err := sql.GetUserByEmail(db, input.Email)
	if errors.Is(err, sql.ErrUserNotFound) {
		return outcome(models.OutcomeResetFailed, apierrors.ErrInvalidUser), nil
	}
	if err != nil {
		return models.BrokerOutcome{}, fmt.Errorf("failed to look up user: %w", err)
	}

	reset, err := sql.GetLatestReset(db, user.Email)
	if errors.Is(err, sql.ErrResetNotFound) {
		b.reject(ctx, user, "missing")
		return outcome(models.OutcomeResetFailed, apierrors.ErrInvalidToken), nil
	}
	if err != nil {
		return models.BrokerOutcome{}, fmt.Errorf("failed to look up reset: %w", err)
	}

	if reset.IsExpired(b.now()) {
		if delErr := sql.DeleteResets(db, user.Email); delErr != nil {
			logger.Error("Failed to delete expired reset", zap.Error(delErr))
		}
		b.reject(ctx, user, "expired")
		return outcome(models.OutcomeResetFailed, apierrors.ErrInvalidToken), nil
	}

	if !h.CompareHash(input.Token, reset.HashedToken) {
		b.reject(ctx, user, "mismatch")
		return outcome(models.OutcomeResetFailed, apierrors.ErrInvalidToken), nil
	}

	hashedPassword, err := h.CreateHash(input.Password)
	if err != nil {
		return models.BrokerOutcome{}, fmt.Errorf("failed to hash password: %w", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if updateErr := sql.UpdatePassword(tx, user.ID, hashedPassword); updateErr != nil {
			return updateErr
		}
		return sql.DeleteResets(tx, user.Email)
	})
	if err != nil {
		return models.BrokerOutcome{}, fmt.Errorf("failed to update password: %w", err)
	}

	event := events.NewPasswordResetCompleted(
		b.Publisher,
		user.Email,
		user.Fullname,
		b.now().Format(configuration.DateFormat),
		h.AbsoluteURL(b.Config.WebURL, h.Handles(b.Config.BasePath, configuration.RouteHome)),
	)
	if err = event.Trigger(); err != nil {
		// The password is already changed; only the confirmation is lost.
		logger.Error("Failed to publish reset confirmation", zap.Error(err))
	}

	b.record(ctx, activity.PasswordResetCompleted, "Password reset completed", user, "")

	logger.Info("Password reset completed", zap.String("user_id", user.ID.String()))

	return outcome(models.OutcomeResetSucceed, lang.ResponsePasswordUpdate), nil
}

func (b *PasswordBroker) reject(ctx context.Context, user models.User, reason string) {
	h.GetLogger(ctx).Warn("Password reset rejected",
		zap.String("user_id", user.ID.String()),
		zap.String("reason", reason))
	b.record(ctx, activity.PasswordResetRejected, "Password reset rejected", user, reason)
}

func (b *PasswordBroker) record(ctx context.Context, action string, message string, user models.User, reason string) {
	if b.ActivityLogger == nil {
		return
	}

	fields := map[string]string{
		"action":      action,
		"object_type": "user",
		"user_id":     user.ID.String(),
		"email":       user.Email,
		"client_ip":   h.GetClientIP(ctx),
	}
	if reason != "" {
		fields["reason"] = reason
	}

	entry := models.Activity{
		Message: message,
		Object:  user.ToActivity(),
		Filter:  activity.NewLogFilter(fields),
	}
	if err := b.ActivityLogger.Send(entry); err != nil {
		h.GetLogger(ctx).Error("Failed to record activity", zap.String("action", action), zap.Error(err))
	}
}
