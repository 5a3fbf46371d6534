// Package backend is the boundary to the renovation tracker backend. Every
// call is text in, text out: listings come back as the box-drawn tables the
// backend prints, and failures carry the text it printed.
package backend

import (
	"context"
	"time"
)

// Gateway is the opaque command surface of the tracker backend.
type Gateway interface {
	ListProjects(ctx context.Context) (string, error)
	ListRooms(ctx context.Context, projectID int64) (string, error)
	ListExpenses(ctx context.Context, projectID int64) (string, error)
	BudgetStatus(ctx context.Context, projectID int64) (string, error)

	CreateRoom(ctx context.Context, args RoomArgs) (string, error)
	AddExpense(ctx context.Context, args ExpenseArgs) (string, error)
	DeleteExpense(ctx context.Context, expenseID int64) (string, error)
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the gateway instance and optional cleanup function
type BackendResult struct {
	Gateway Gateway
	Cleanup CleanupFunc
}

// Factory creates gateways based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for gateway creation
type Config struct {
	Type BackendType

	// CLI specific
	Python  string
	Dir     string
	Timeout time.Duration

	// Listing cache; disabled when CacheTTL is zero
	CacheTTL  time.Duration
	CacheSize int
}

// BackendType represents the type of backend
type BackendType string

const (
	CLIBackend    BackendType = "cli"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case CLIBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
