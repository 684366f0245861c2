package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"telar/internal/database"
	"telar/internal/models"

	"go.uber.org/zap"
)

type achievementRepository struct {
	*BaseRepository
}

// NewAchievementRepository creates a new achievement repository
func NewAchievementRepository(db *database.Manager, logger *zap.Logger) AchievementRepository {
	return &achievementRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// ListCatalog loads the seeded achievements catalog. The unlock criteria are
// stored as jsonb and decoded into the tagged criteria struct.
func (r *achievementRepository) ListCatalog(ctx context.Context) ([]models.AchievementCatalogEntry, error) {
	query := `
		SELECT id, title, description, icon, unlock_criteria
		FROM achievements_catalog
		ORDER BY id`

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query achievements catalog: %w", err)
	}
	defer rows.Close()

	var catalog []models.AchievementCatalogEntry
	for rows.Next() {
		var entry models.AchievementCatalogEntry
		var criteria []byte
		if err := rows.Scan(&entry.ID, &entry.Title, &entry.Description, &entry.Icon, &criteria); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		if err := json.Unmarshal(criteria, &entry.UnlockCriteria); err != nil {
			return nil, fmt.Errorf("decode unlock criteria for %s: %w", entry.ID, err)
		}
		catalog = append(catalog, entry)
	}

	return catalog, rows.Err()
}

func (r *achievementRepository) ListUnlockedIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	rows, err := r.QueryContext(ctx,
		`SELECT achievement_id FROM user_achievements WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("query unlocked achievement ids: %w", err)
	}
	defer rows.Close()

	unlocked := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan achievement id: %w", err)
		}
		unlocked[id] = struct{}{}
	}

	return unlocked, rows.Err()
}

// Create inserts an unlock row. A unique violation on (user_id,
// achievement_id) surfaces as-is so callers can treat it as "already
// unlocked".
func (r *achievementRepository) Create(ctx context.Context, achievement *models.UserAchievement) error {
	query := `
		INSERT INTO user_achievements (user_id, achievement_id, title, description, icon)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, unlocked_at`

	err := r.QueryRowContext(ctx, query,
		achievement.UserID,
		achievement.AchievementID,
		achievement.Title,
		achievement.Description,
		achievement.Icon,
	).Scan(&achievement.ID, &achievement.UnlockedAt)

	if err != nil {
		return fmt.Errorf("create user achievement: %w", err)
	}
	return nil
}

func (r *achievementRepository) GetByID(ctx context.Context, id string) (*models.UserAchievement, error) {
	query := `
		SELECT id, user_id, achievement_id, title, description, icon, unlocked_at
		FROM user_achievements WHERE id = $1`

	var a models.UserAchievement
	err := r.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.UserID, &a.AchievementID, &a.Title, &a.Description, &a.Icon, &a.UnlockedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user achievement: %w", err)
	}
	return &a, nil
}

func (r *achievementRepository) ListByUser(ctx context.Context, userID string) ([]*models.UserAchievement, error) {
	query := `
		SELECT id, user_id, achievement_id, title, description, icon, unlocked_at
		FROM user_achievements
		WHERE user_id = $1
		ORDER BY unlocked_at DESC`

	rows, err := r.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list user achievements: %w", err)
	}
	defer rows.Close()

	return collectAchievements(rows)
}

func (r *achievementRepository) List(ctx context.Context) ([]*models.UserAchievement, error) {
	query := `
		SELECT id, user_id, achievement_id, title, description, icon, unlocked_at
		FROM user_achievements
		ORDER BY unlocked_at DESC`

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	defer rows.Close()

	return collectAchievements(rows)
}

func (r *achievementRepository) Delete(ctx context.Context, id string) error {
	result, err := r.ExecContext(ctx, `DELETE FROM user_achievements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user achievement: %w", err)
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func collectAchievements(rows *sql.Rows) ([]*models.UserAchievement, error) {
	var achievements []*models.UserAchievement
	for rows.Next() {
		var a models.UserAchievement
		err := rows.Scan(&a.ID, &a.UserID, &a.AchievementID, &a.Title, &a.Description, &a.Icon, &a.UnlockedAt)
		if err != nil {
			return nil, fmt.Errorf("scan achievement row: %w", err)
		}
		achievements = append(achievements, &a)
	}
	return achievements, rows.Err()
}

// ===============================
// MATURITY SCORES
// ===============================

type maturityScoreRepository struct {
	*BaseRepository
}

// NewMaturityScoreRepository creates the maturity score lookup used by the
// onboarding_complete criterion
func NewMaturityScoreRepository(db *database.Manager, logger *zap.Logger) MaturityScoreRepository {
	return &maturityScoreRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

func (r *maturityScoreRepository) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_maturity_scores WHERE user_id = $1)`, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check maturity score: %w", err)
	}
	return exists, nil
}
