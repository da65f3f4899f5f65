package cache

import "time"

// Durable is the persistent key-value capability backing the durable
// cache tier. The store makes no assumption about the backing
// technology; anything that can round-trip bytes with an expiry
// timestamp satisfies the contract.
//
// Get returns ErrNotFound for absent keys. Implementations must be
// safe for concurrent use.
type Durable interface {
	Get(key string) (value []byte, expiresAt time.Time, err error)
	Set(key string, value []byte, expiresAt time.Time) error
	Delete(key string) error
	Keys() ([]string, error)
	Clear() error
	PurgeExpired(now time.Time) error
	Close() error
}
