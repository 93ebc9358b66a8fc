package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Pierre48/hrcard/internal/core/domain"
	"github.com/Pierre48/hrcard/internal/core/port"
	"github.com/Pierre48/hrcard/internal/repository"
)

var accountColumns = []string{
	"id",
	"login",
	"email",
	"first_name",
	"last_name",
	"image_url",
	"lang_key",
	"password_hash",
	"activated",
	"activation_key",
	"reset_key",
	"reset_date",
	"created_at",
}

// AccountRepository implements port.AccountRepository using PostgreSQL.
type AccountRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccountRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewAccountRepository(exec pgExecutor) *AccountRepository {
	return &AccountRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new account row.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	stmt, args, err := r.builder.Insert("hrcard.accounts").
		Columns(accountColumns...).
		Values(
			account.ID,
			account.Login,
			account.Email,
			account.FirstName,
			account.LastName,
			account.ImageURL,
			account.LangKey,
			account.PasswordHash,
			account.Activated,
			account.ActivationKey,
			account.ResetKey,
			account.ResetDate,
			account.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert account sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert account: %w", mapWriteError(err))
	}

	return nil
}

// Update overwrites the mutable account fields.
func (r *AccountRepository) Update(ctx context.Context, account domain.Account) error {
	stmt, args, err := r.builder.Update("hrcard.accounts").
		Set("login", account.Login).
		Set("email", account.Email).
		Set("first_name", account.FirstName).
		Set("last_name", account.LastName).
		Set("image_url", account.ImageURL).
		Set("lang_key", account.LangKey).
		Set("activated", account.Activated).
		Set("activation_key", account.ActivationKey).
		Where(squirrel.Eq{"id": account.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update account sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update account: %w", mapWriteError(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes the account row and its authority memberships.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	joinStmt, joinArgs, err := r.builder.Delete("hrcard.account_authorities").
		Where(squirrel.Eq{"account_id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete memberships sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, joinStmt, joinArgs...); err != nil {
		return fmt.Errorf("delete memberships: %w", err)
	}

	stmt, args, err := r.builder.Delete("hrcard.accounts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete account sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// GetByLogin retrieves an account by its lowercased login.
func (r *AccountRepository) GetByLogin(ctx context.Context, login string) (*domain.Account, error) {
	return r.getBy(ctx, squirrel.Eq{"login": login}, "login")
}

// GetByEmail retrieves an account by its lowercased email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getBy(ctx, squirrel.Eq{"email": email}, "email")
}

// GetByActivationKey retrieves the account holding the provided activation key.
func (r *AccountRepository) GetByActivationKey(ctx context.Context, key string) (*domain.Account, error) {
	return r.getBy(ctx, squirrel.Eq{"activation_key": key}, "activation key")
}

// GetByResetKey retrieves the account holding the provided reset key.
func (r *AccountRepository) GetByResetKey(ctx context.Context, key string) (*domain.Account, error) {
	return r.getBy(ctx, squirrel.Eq{"reset_key": key}, "reset key")
}

func (r *AccountRepository) getBy(ctx context.Context, pred squirrel.Eq, what string) (*domain.Account, error) {
	stmt, args, err := r.builder.Select(accountColumns...).
		From("hrcard.accounts").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account by %s sql: %w", what, err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		account       domain.Account
		activationKey sql.NullString
		resetKey      sql.NullString
		resetDate     *time.Time
	)

	if err := row.Scan(
		&account.ID,
		&account.Login,
		&account.Email,
		&account.FirstName,
		&account.LastName,
		&account.ImageURL,
		&account.LangKey,
		&account.PasswordHash,
		&account.Activated,
		&activationKey,
		&resetKey,
		&resetDate,
		&account.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account by %s: %w", what, err)
	}

	if activationKey.Valid {
		val := activationKey.String
		account.ActivationKey = &val
	}
	if resetKey.Valid {
		val := resetKey.String
		account.ResetKey = &val
	}
	account.ResetDate = resetDate

	return &account, nil
}

// UpdatePassword stores a new password hash.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	stmt, args, err := r.builder.Update("hrcard.accounts").
		Set("password_hash", passwordHash).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update password sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateActivation flips the activated flag and replaces the activation key.
func (r *AccountRepository) UpdateActivation(ctx context.Context, id string, activated bool, activationKey *string) error {
	stmt, args, err := r.builder.Update("hrcard.accounts").
		Set("activated", activated).
		Set("activation_key", activationKey).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update activation sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update activation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateResetKey replaces the in-flight reset key and date, or clears both.
func (r *AccountRepository) UpdateResetKey(ctx context.Context, id string, resetKey *string, resetDate *time.Time) error {
	stmt, args, err := r.builder.Update("hrcard.accounts").
		Set("reset_key", resetKey).
		Set("reset_date", resetDate).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update reset key sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update reset key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// AssignAuthorities adds the account to each named authority. Existing
// memberships are left untouched.
func (r *AccountRepository) AssignAuthorities(ctx context.Context, id string, names []string) error {
	if len(names) == 0 {
		return nil
	}

	insert := r.builder.Insert("hrcard.account_authorities").
		Columns("account_id", "authority_name")
	for _, name := range names {
		insert = insert.Values(id, name)
	}

	stmt, args, err := insert.
		Suffix("ON CONFLICT (account_id, authority_name) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build assign authorities sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("assign authorities: %w", err)
	}

	return nil
}

// RevokeAuthorities removes the account from each named authority.
func (r *AccountRepository) RevokeAuthorities(ctx context.Context, id string, names []string) error {
	if len(names) == 0 {
		return nil
	}

	stmt, args, err := r.builder.Delete("hrcard.account_authorities").
		Where(squirrel.Eq{"account_id": id, "authority_name": names}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build revoke authorities sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("revoke authorities: %w", err)
	}

	return nil
}

// ListAuthorities returns the account's authority memberships sorted by name.
func (r *AccountRepository) ListAuthorities(ctx context.Context, id string) ([]domain.Authority, error) {
	stmt, args, err := r.builder.Select("authority_name").
		From("hrcard.account_authorities").
		Where(squirrel.Eq{"account_id": id}).
		OrderBy("authority_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list memberships sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query memberships: %w", err)
	}
	defer rows.Close()

	var authorities []domain.Authority

	for rows.Next() {
		var authority domain.Authority
		if err := rows.Scan(&authority.Name); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		authorities = append(authorities, authority)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}

	return authorities, nil
}

var _ port.AccountRepository = (*AccountRepository)(nil)
