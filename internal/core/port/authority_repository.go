package port

import (
	"context"

	"github.com/Pierre48/hrcard/internal/core/domain"
)

// AuthorityRepository exposes the catalog of defined authorities.
type AuthorityRepository interface {
	List(ctx context.Context) ([]domain.Authority, error)
}
