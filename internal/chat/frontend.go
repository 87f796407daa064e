// Package chat provides a unified interface for chat frontends.
package chat

import (
	"context"
)

// Frontend defines the interface all chat integrations implement.
type Frontend interface {
	// Run connects the frontend and processes updates until ctx is done.
	Run(ctx context.Context) error
}

// UpdateRecorder counts incoming updates by kind for observability.
// Implementations must be safe for concurrent use.
type UpdateRecorder interface {
	RecordUpdate(kind string)
}
