package activity

import (
	"strconv"
	"time"

	"portal/internal/models"
)

// Actions recorded by the reset flow.
const (
	PasswordResetRequested = "PASSWORD_RESET_REQUESTED"
	PasswordResetCompleted = "PASSWORD_RESET_COMPLETED"
	PasswordResetRejected  = "PASSWORD_RESET_REJECTED"
)

// objectTypes whose payload is stored along with the entry.
var objectTypes = map[string]bool{
	"user": true,
}

func isAuthorizedObject(objectType string) bool {
	return objectTypes[objectType]
}

// NewLogFilter stamps fields with the current time in nanoseconds.
func NewLogFilter(fields map[string]string) models.LogFilter {
	return models.LogFilter{
		Fields:    fields,
		Timestamp: strconv.FormatInt(time.Now().UnixNano(), 10),
	}
}
