package repositories

import (
	"context"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
)

// CenterSource provides the static evacuation-center reference data. A
// missing or malformed source yields an empty list, never an error that
// takes the service down.
type CenterSource interface {
	Load(ctx context.Context) ([]entities.Center, error)
}
