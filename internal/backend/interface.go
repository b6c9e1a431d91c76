// Package backend selects and assembles the data backend for the server:
// the record store plus the optional export publisher.
package backend

import (
	"context"

	"spendwise/internal/services"
	"spendwise/internal/store"
)

// Type identifies a data backend.
type Type string

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
)

// IsValid reports whether the backend type is supported.
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend:
		return true
	}
	return false
}

// Config carries what the factory needs to build a backend.
type Config struct {
	Type         Type
	SQLiteDBPath string

	// AMQP settings are used by the sqlite backend to queue exports.
	// An empty URL disables publishing.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Result bundles the assembled backend with its cleanup hook.
type Result struct {
	Store     store.Store
	Publisher services.ExportPublisher
	Cleanup   func()
}

// Factory creates data backends from configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}
