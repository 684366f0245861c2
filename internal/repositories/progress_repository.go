package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"telar/internal/database"
	"telar/internal/models"

	"go.uber.org/zap"
)

type progressRepository struct {
	*BaseRepository
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *database.Manager, logger *zap.Logger) ProgressRepository {
	return &progressRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const progressColumns = `
	id, user_id, level, experience_points, next_level_xp, completed_missions,
	current_streak, longest_streak, last_activity_date, total_time_spent,
	created_at, updated_at`

func (r *progressRepository) Create(ctx context.Context, progress *models.UserProgress) error {
	query := `
		INSERT INTO user_progress (
			user_id, level, experience_points, next_level_xp, completed_missions,
			current_streak, longest_streak, last_activity_date, total_time_spent
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		progress.UserID,
		progress.Level,
		progress.ExperiencePoints,
		progress.NextLevelXP,
		progress.CompletedMissions,
		progress.CurrentStreak,
		progress.LongestStreak,
		progress.LastActivityDate,
		progress.TotalTimeSpent,
	).Scan(&progress.ID, &progress.CreatedAt, &progress.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create user progress: %w", err)
	}
	return nil
}

func (r *progressRepository) GetByID(ctx context.Context, id string) (*models.UserProgress, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_progress WHERE id = $1`, progressColumns)

	progress, err := r.scanProgress(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get progress by id: %w", err)
	}
	return progress, nil
}

func (r *progressRepository) GetByUserID(ctx context.Context, userID string) (*models.UserProgress, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_progress WHERE user_id = $1`, progressColumns)

	progress, err := r.scanProgress(r.QueryRowContext(ctx, query, userID))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get progress by user id: %w", err)
	}
	return progress, nil
}

// GetOrCreateForUpdate implements the race-safe upsert-then-lock pattern: the
// insert is a no-op if the unique user_id row already exists, and the
// follow-up select takes a row-level lock so concurrent updates for the same
// user serialize on the row.
func (r *progressRepository) GetOrCreateForUpdate(ctx context.Context, tx *sql.Tx, userID string) (*models.UserProgress, error) {
	insert := `
		INSERT INTO user_progress (user_id, level, experience_points, next_level_xp)
		VALUES ($1, 1, 0, 100)
		ON CONFLICT (user_id) DO NOTHING`

	if _, err := tx.ExecContext(ctx, insert, userID); err != nil {
		return nil, fmt.Errorf("upsert user progress: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM user_progress WHERE user_id = $1 FOR UPDATE`, progressColumns)

	progress, err := r.scanProgress(tx.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("lock user progress: %w", err)
	}
	return progress, nil
}

func (r *progressRepository) SaveTx(ctx context.Context, tx *sql.Tx, progress *models.UserProgress) error {
	query := `
		UPDATE user_progress SET
			level = $2,
			experience_points = $3,
			next_level_xp = $4,
			completed_missions = $5,
			current_streak = $6,
			longest_streak = $7,
			last_activity_date = $8,
			total_time_spent = $9,
			updated_at = NOW()
		WHERE id = $1`

	result, err := tx.ExecContext(ctx, query,
		progress.ID,
		progress.Level,
		progress.ExperiencePoints,
		progress.NextLevelXP,
		progress.CompletedMissions,
		progress.CurrentStreak,
		progress.LongestStreak,
		progress.LastActivityDate,
		progress.TotalTimeSpent,
	)
	if err != nil {
		return fmt.Errorf("save user progress: %w", err)
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *progressRepository) Save(ctx context.Context, progress *models.UserProgress) error {
	query := `
		UPDATE user_progress SET
			level = $2,
			experience_points = $3,
			next_level_xp = $4,
			completed_missions = $5,
			current_streak = $6,
			longest_streak = $7,
			last_activity_date = $8,
			total_time_spent = $9,
			updated_at = NOW()
		WHERE id = $1`

	result, err := r.ExecContext(ctx, query,
		progress.ID,
		progress.Level,
		progress.ExperiencePoints,
		progress.NextLevelXP,
		progress.CompletedMissions,
		progress.CurrentStreak,
		progress.LongestStreak,
		progress.LastActivityDate,
		progress.TotalTimeSpent,
	)
	if err != nil {
		return fmt.Errorf("save user progress: %w", err)
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateFields performs a partial update of whitelisted columns
func (r *progressRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	allowed := map[string]bool{
		"level": true, "experience_points": true, "next_level_xp": true,
		"completed_missions": true, "current_streak": true, "longest_streak": true,
		"last_activity_date": true, "total_time_spent": true,
	}

	columns := make([]string, 0, len(fields))
	for column := range fields {
		if !allowed[column] {
			return fmt.Errorf("column %q is not updatable", column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	setParts := make([]string, 0, len(columns)+1)
	args := []interface{}{id}
	for i, column := range columns {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, i+2))
		args = append(args, fields[column])
	}
	setParts = append(setParts, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE user_progress SET %s WHERE id = $1", strings.Join(setParts, ", "))

	result, err := r.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user progress fields: %w", err)
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *progressRepository) Delete(ctx context.Context, id string) error {
	result, err := r.ExecContext(ctx, `DELETE FROM user_progress WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user progress: %w", err)
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *progressRepository) List(ctx context.Context) ([]*models.UserProgress, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM user_progress
		ORDER BY level DESC, experience_points DESC`, progressColumns)

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list user progress: %w", err)
	}
	defer rows.Close()

	return r.collectProgress(rows)
}

// Leaderboard returns the top entries by (level DESC, xp DESC) with profile
// display fields joined in.
func (r *progressRepository) Leaderboard(ctx context.Context, limit int) ([]*models.UserProgress, error) {
	query := `
		SELECT
			up.id, up.user_id, up.level, up.experience_points, up.next_level_xp,
			up.completed_missions, up.current_streak, up.longest_streak,
			up.last_activity_date, up.total_time_spent, up.created_at, up.updated_at,
			p.display_name, p.avatar_url
		FROM user_progress up
		LEFT JOIN user_profiles p ON p.user_id = up.user_id
		ORDER BY up.level DESC, up.experience_points DESC, up.user_id ASC
		LIMIT $1`

	rows, err := r.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*models.UserProgress
	for rows.Next() {
		var progress models.UserProgress
		err := rows.Scan(
			&progress.ID, &progress.UserID, &progress.Level, &progress.ExperiencePoints,
			&progress.NextLevelXP, &progress.CompletedMissions, &progress.CurrentStreak,
			&progress.LongestStreak, &progress.LastActivityDate, &progress.TotalTimeSpent,
			&progress.CreatedAt, &progress.UpdatedAt,
			&progress.DisplayName, &progress.AvatarURL,
		)
		if err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		entries = append(entries, &progress)
	}

	return entries, rows.Err()
}

func (r *progressRepository) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	return r.BaseRepository.WithTransaction(ctx, fn)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *progressRepository) scanProgress(row rowScanner) (*models.UserProgress, error) {
	var progress models.UserProgress
	err := row.Scan(
		&progress.ID, &progress.UserID, &progress.Level, &progress.ExperiencePoints,
		&progress.NextLevelXP, &progress.CompletedMissions, &progress.CurrentStreak,
		&progress.LongestStreak, &progress.LastActivityDate, &progress.TotalTimeSpent,
		&progress.CreatedAt, &progress.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *progressRepository) collectProgress(rows *sql.Rows) ([]*models.UserProgress, error) {
	var entries []*models.UserProgress
	for rows.Next() {
		progress, err := r.scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan progress row: %w", err)
		}
		entries = append(entries, progress)
	}
	return entries, rows.Err()
}
