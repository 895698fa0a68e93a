package configuration

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"portal/internal/models"
)

const (
	ProfileDefault = "default"
	ProfileWeb     = "web"
	ProfileWorker  = "worker"
)

var backgroundWorkers = models.WorkerConfig{
	Notifications: models.WorkerModeAll,
	ResetCleanup:  models.WorkerModeSingleton,
}

// Profiles split the portal into a web tier and a worker tier; the default
// profile runs both in one process.
var Profiles = map[string]models.Profile{
	ProfileDefault: {Name: ProfileDefault, HTTPServer: true, Workers: backgroundWorkers},
	ProfileWorker:  {Name: ProfileWorker, Workers: backgroundWorkers},
	ProfileWeb: {
		Name:       ProfileWeb,
		HTTPServer: true,
		Workers: models.WorkerConfig{
			Notifications: models.WorkerModeDisabled,
			ResetCleanup:  models.WorkerModeDisabled,
		},
	},
}

// GetProfile resolves name, with an empty name meaning the default profile.
func GetProfile(name string) (models.Profile, error) {
	if name == "" {
		return Profiles[ProfileDefault], nil
	}
	profile, ok := Profiles[name]
	if !ok {
		known := slices.Sorted(maps.Keys(Profiles))
		return models.Profile{}, fmt.Errorf("unknown profile %q, expected one of %s", name, strings.Join(known, ", "))
	}
	return profile, nil
}
