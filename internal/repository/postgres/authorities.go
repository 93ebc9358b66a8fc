package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/Pierre48/hrcard/internal/core/domain"
	"github.com/Pierre48/hrcard/internal/core/port"
)

// AuthorityRepository implements the authority catalog over PostgreSQL.
type AuthorityRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAuthorityRepository constructs a PostgreSQL-backed authority repository.
func NewAuthorityRepository(exec pgExecutor) *AuthorityRepository {
	return &AuthorityRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// List retrieves all defined authorities sorted by name.
func (r *AuthorityRepository) List(ctx context.Context) ([]domain.Authority, error) {
	stmt, args, err := r.builder.Select("name").
		From("hrcard.authorities").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list authorities sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query authorities: %w", err)
	}
	defer rows.Close()

	var authorities []domain.Authority

	for rows.Next() {
		var authority domain.Authority
		if err := rows.Scan(&authority.Name); err != nil {
			return nil, fmt.Errorf("scan authority: %w", err)
		}
		authorities = append(authorities, authority)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate authorities: %w", err)
	}

	return authorities, nil
}

var _ port.AuthorityRepository = (*AuthorityRepository)(nil)
