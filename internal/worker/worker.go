package worker

import (
	"context"
)

// Worker - common interface for all background workers
type Worker interface {
	// Start runs the worker loop
	Start(ctx context.Context) error

	// Stop signals the worker to stop
	Stop() error

	// Name returns the worker name
	Name() string
}
