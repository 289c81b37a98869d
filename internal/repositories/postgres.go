package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

const userColumns = `id, username, email, full_name, password_hash, refresh_token,
        avatar_url, avatar_id, cover_url, cover_id, is_active, is_admin, created_at, updated_at`

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, email, full_name, password_hash, refresh_token,
            avatar_url, avatar_id, cover_url, cover_id, is_active, is_admin, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `, user.ID, user.Username, user.Email, user.FullName, user.PasswordHash, user.RefreshToken,
		user.Avatar.URL, user.Avatar.ID, user.CoverImage.URL, user.CoverImage.ID,
		user.IsActive, user.IsAdmin, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return translate("insert user", err)
	}

	return nil
}

// FindByID fetches a user by identifier.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, "select user by id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByLogin fetches a user whose username or email matches.
func (r *PostgresUserRepository) FindByLogin(ctx context.Context, username, email string) (models.User, error) {
	if username == "" && email == "" {
		return models.User{}, ErrNotFound
	}
	return r.findOne(ctx, "select user by login", `
        SELECT `+userColumns+`
        FROM users
        WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
        LIMIT 1
    `, username, email)
}

// FindByUsername fetches a user by username.
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findOne(ctx, "select user by username", `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// Profiles fetches the users with the given identifiers keyed by id.
func (r *PostgresUserRepository) Profiles(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, uuidArray(ids))
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return out, nil
}

// UpdateAccount changes the full name and email of a user.
func (r *PostgresUserRepository) UpdateAccount(ctx context.Context, id, fullName, email string) (models.User, error) {
	return r.updateOne(ctx, "update account", `
        UPDATE users SET full_name = $2, email = $3, updated_at = $4
        WHERE id = $1
        RETURNING `+userColumns, id, fullName, email, time.Now().UTC())
}

// UpdatePassword stores a new password hash.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, "update password", `
        UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1
    `, id, passwordHash, time.Now().UTC())
}

// UpdateAvatar replaces the avatar asset.
func (r *PostgresUserRepository) UpdateAvatar(ctx context.Context, id string, avatar models.Asset) (models.User, error) {
	return r.updateOne(ctx, "update avatar", `
        UPDATE users SET avatar_url = $2, avatar_id = $3, updated_at = $4
        WHERE id = $1
        RETURNING `+userColumns, id, avatar.URL, avatar.ID, time.Now().UTC())
}

// UpdateCoverImage replaces the cover image asset.
func (r *PostgresUserRepository) UpdateCoverImage(ctx context.Context, id string, cover models.Asset) (models.User, error) {
	return r.updateOne(ctx, "update cover image", `
        UPDATE users SET cover_url = $2, cover_id = $3, updated_at = $4
        WHERE id = $1
        RETURNING `+userColumns, id, cover.URL, cover.ID, time.Now().UTC())
}

// SetActive toggles the soft-delete flag. Deactivation also clears the refresh token.
func (r *PostgresUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.exec(ctx, "set active", `
        UPDATE users
        SET is_active = $2,
            refresh_token = CASE WHEN $2 THEN refresh_token ELSE '' END,
            updated_at = $3
        WHERE id = $1
    `, id, active, time.Now().UTC())
}

// StoreRefreshToken overwrites the user's refresh token.
func (r *PostgresUserRepository) StoreRefreshToken(ctx context.Context, userID, token string) error {
	return r.exec(ctx, "store refresh token", `
        UPDATE users SET refresh_token = $2 WHERE id = $1
    `, userID, token)
}

// SwapRefreshToken rotates the refresh token only while current is still stored.
func (r *PostgresUserRepository) SwapRefreshToken(ctx context.Context, userID, current, next string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users SET refresh_token = $3
        WHERE id = $1 AND refresh_token = $2 AND refresh_token <> ''
    `, userID, current, next)
	if err != nil {
		return fmt.Errorf("swap refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrTokenReused
	}
	return nil
}

// ClearRefreshToken removes the stored refresh token.
func (r *PostgresUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	return r.exec(ctx, "clear refresh token", `
        UPDATE users SET refresh_token = '' WHERE id = $1
    `, userID)
}

// AddToWatchHistory upserts the (user, video) entry with the current time.
func (r *PostgresUserRepository) AddToWatchHistory(ctx context.Context, userID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (user_id, video_id, watched_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = EXCLUDED.watched_at
    `, userID, videoID, time.Now().UTC())
	if err != nil {
		return translate("upsert watch history", err)
	}
	return nil
}

// WatchHistory lists watched video ids, most recent first.
func (r *PostgresUserRepository) WatchHistory(ctx context.Context, userID string) ([]string, error) {
	return queryIDs(ctx, r.pool, "watch history", `
        SELECT video_id FROM watch_history
        WHERE user_id = $1
        ORDER BY watched_at DESC
    `, userID)
}

func (r *PostgresUserRepository) findOne(ctx context.Context, op, query string, args ...any) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, query, args...))
	if err != nil {
		return models.User{}, translate(op, err)
	}
	return user, nil
}

func (r *PostgresUserRepository) updateOne(ctx context.Context, op, query string, args ...any) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, query, args...))
	if err != nil {
		return models.User{}, translate(op, err)
	}
	return user, nil
}

func (r *PostgresUserRepository) exec(ctx context.Context, op, query string, args ...any) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, query, args...)
	if err != nil {
		return translate(op, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.PasswordHash, &user.RefreshToken,
		&user.Avatar.URL, &user.Avatar.ID, &user.CoverImage.URL, &user.CoverImage.ID,
		&user.IsActive, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

func queryIDs(ctx context.Context, pool db.Pool, op, query string, args ...any) ([]string, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", op, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s: %w", op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", op, err)
	}
	return ids, nil
}

// uuidArray converts identifiers for ANY($n) parameters, dropping malformed ones.
func uuidArray(ids []string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		out = append(out, parsed)
	}
	return out
}

// queryGrouped collects (key, value) rows into a map of slices.
func queryGrouped(ctx context.Context, pool db.Pool, op, query string, args ...any) (map[string][]string, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", op, err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan %s: %w", op, err)
		}
		out[key] = append(out[key], value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", op, err)
	}
	return out, nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
var _ auth.RefreshTokenStore = (*PostgresUserRepository)(nil)
var _ auth.UserLookup = (*PostgresUserRepository)(nil)
