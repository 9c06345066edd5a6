package redis

import "errors"

var (
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")
	ErrEmptyConnectionURL           = errors.New("empty redis connection URL")
	ErrHealthcheckFailed            = errors.New("redis healthcheck failed")

	// ErrKeyNotFound is returned by Get when the key is absent or expired.
	ErrKeyNotFound = errors.New("redis: key not found")
	// ErrInvalidTTL is returned when a non-positive TTL is supplied to SetWithTTL.
	ErrInvalidTTL = errors.New("redis: ttl must be positive")
	// ErrEmptyKey is returned for operations on an empty key.
	ErrEmptyKey = errors.New("redis: empty key")
)
