package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for in-process memoization
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key namespaces a hashed value, e.g. Key("abstract", url)
func Key(namespace, value string) string {
	hash := sha256.Sum256([]byte(value))
	return "paperscout:v1:" + namespace + ":" + hex.EncodeToString(hash[:])
}

// Nop is a Cache that never stores anything
type Nop struct{}

func (Nop) Get(string) ([]byte, bool) { return nil, false }
func (Nop) Set(string, []byte, time.Duration) error { return nil }
func (Nop) Delete(string) error { return nil }
func (Nop) Clear() error { return nil }
