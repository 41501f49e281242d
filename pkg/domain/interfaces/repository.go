package interfaces

import "context"

// Repository defines the interface for data persistence
type Repository interface {
	Article() ArticleRepository

	// Verify checks the backend is reachable. Called once before serving traffic.
	Verify(ctx context.Context) error
	Close() error
}
