package domain

import (
	"context"
)

// DuplicateRepository provides access to the server's duplicate detection results
type DuplicateRepository interface {
	// GetDuplicates returns every duplicate group the server has computed
	GetDuplicates(ctx context.Context) ([]DuplicateGroup, error)
}

// AssetRepository provides the mutating asset operations
type AssetRepository interface {
	// DeleteAssets permanently removes the given assets
	DeleteAssets(ctx context.Context, ids []string) error

	// ClearDuplicate detaches the given assets from their duplicate group
	ClearDuplicate(ctx context.Context, ids []string) error

	// CreateStack groups the given assets into a new stack
	CreateStack(ctx context.Context, ids []string) (*Stack, error)
}

// PhotoServer is everything the deduplication run needs from the server
type PhotoServer interface {
	DuplicateRepository
	AssetRepository
}
