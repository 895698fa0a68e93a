package activity

import "portal/internal/models"

// IActivityLogger records account activity and lets administrators search it.
type IActivityLogger interface {
	Search(searchCriteria map[string][]string) ([]map[string]interface{}, error)
	Send(message models.Activity) error
	Close() error
}
