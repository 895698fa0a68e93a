package cache

type ICache interface {
	// GetRateLimit counts a request of userIdentifier in the current minute
	// and returns the seconds to wait when the limit is exceeded, or 0.
	GetRateLimit(userIdentifier string, requestsPerMinute int) (int, error)

	// TryAcquireLock takes key for instanceID unless another instance holds it.
	TryAcquireLock(key string, instanceID string, ttlSeconds int) (bool, error)
	// RefreshLock extends key when instanceID still holds it.
	RefreshLock(key string, instanceID string, ttlSeconds int) (bool, error)

	Close() error
}
