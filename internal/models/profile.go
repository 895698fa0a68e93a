package models

// WorkerMode says where a background worker runs.
type WorkerMode string

const (
	WorkerModeDisabled  WorkerMode = "disabled"
	WorkerModeSingleton WorkerMode = "singleton" // one instance at a time, elected through the cache lock
	WorkerModeAll       WorkerMode = "all"
)

// Runs reports whether the worker runs at all on this instance.
func (m WorkerMode) Runs() bool {
	return m == WorkerModeSingleton || m == WorkerModeAll
}

// Profile selects the components started by one process.
type Profile struct {
	Name       string
	HTTPServer bool
	Workers    WorkerConfig
}

type WorkerConfig struct {
	Notifications WorkerMode
	ResetCleanup  WorkerMode
}

func (w WorkerConfig) AnyEnabled() bool {
	return w.Notifications.Runs() || w.ResetCleanup.Runs()
}
