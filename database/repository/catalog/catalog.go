package catalogRepo

import (
	"context"
	"errors"

	"slotify/models"
)

// Reference resolution failures, surfaced as-is to callers.
var (
	ErrUnknownResource   = errors.New("unknown resource")
	ErrUnknownCapability = errors.New("unknown capability")
	ErrUnknownLocation   = errors.New("unknown location")
)

// CatalogRepository resolves resource, capability and location records.
// The catalog is owned by the administrative subsystem and read-only here.
type CatalogRepository interface {
	GetResource(ctx context.Context, id string) (*models.Resource, error)
	GetCapability(ctx context.Context, id string) (*models.Capability, error)
	GetLocation(ctx context.Context, id string) (*models.Location, error)
	EnsureIndexes() error
}
