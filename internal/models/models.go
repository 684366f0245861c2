// file: internal/models/models.go
package models

import (
	"time"
)

// ===============================
// GAMIFICATION ENTITIES
// ===============================

// UserProgress holds the authoritative leveling state for one user (1:1 on user_id).
type UserProgress struct {
	ID                string     `json:"id" db:"id"`
	UserID            string     `json:"userId" db:"user_id" validate:"required,uuid4"`
	Level             int        `json:"level" db:"level" validate:"min=1"`
	ExperiencePoints  int        `json:"experiencePoints" db:"experience_points" validate:"min=0"`
	NextLevelXP       int        `json:"nextLevelXp" db:"next_level_xp" validate:"min=1"`
	CompletedMissions int        `json:"completedMissions" db:"completed_missions" validate:"min=0"`
	CurrentStreak     int        `json:"currentStreak" db:"current_streak" validate:"min=0"`
	LongestStreak     int        `json:"longestStreak" db:"longest_streak" validate:"min=0"`
	LastActivityDate  *time.Time `json:"lastActivityDate,omitempty" db:"last_activity_date"`
	TotalTimeSpent    int        `json:"totalTimeSpent" db:"total_time_spent" validate:"min=0"` // minutes
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time  `json:"updatedAt" db:"updated_at"`

	// Joined profile fields (not in user_progress)
	DisplayName *string `json:"displayName,omitempty" db:"-"`
	AvatarURL   *string `json:"avatarUrl,omitempty" db:"-"`
}

// NewUserProgress returns the defaults used when a progress row is created lazily.
func NewUserProgress(userID string) *UserProgress {
	return &UserProgress{
		UserID:            userID,
		Level:             1,
		ExperiencePoints:  0,
		NextLevelXP:       100,
		CompletedMissions: 0,
		CurrentStreak:     0,
		LongestStreak:     0,
		TotalTimeSpent:    0,
	}
}

// AchievementCriteria is the tagged unlock criterion of a catalog entry.
// Exactly one of Count/Level/Days is meaningful depending on Type.
type AchievementCriteria struct {
	Type  string `json:"type"`
	Count int    `json:"count,omitempty"`
	Level int    `json:"level,omitempty"`
	Days  int    `json:"days,omitempty"`
}

// Criteria types recognized by the achievement evaluator.
const (
	CriteriaMissionsCompleted  = "missions_completed"
	CriteriaLevelReached       = "level_reached"
	CriteriaStreakReached      = "streak_reached"
	CriteriaOnboardingComplete = "onboarding_complete"
)

// AchievementCatalogEntry is a read-only row of the seeded achievements catalog.
type AchievementCatalogEntry struct {
	ID             string              `json:"id" db:"id"`
	Title          string              `json:"title" db:"title"`
	Description    string              `json:"description" db:"description"`
	Icon           string              `json:"icon" db:"icon"`
	UnlockCriteria AchievementCriteria `json:"unlock_criteria" db:"unlock_criteria"`
}

// UserAchievement is one unlocked achievement, unique on (user_id, achievement_id).
type UserAchievement struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"userId" db:"user_id" validate:"required,uuid4"`
	AchievementID string    `json:"achievementId" db:"achievement_id" validate:"required"`
	Title         string    `json:"title" db:"title" validate:"required,max=255"`
	Description   string    `json:"description" db:"description"`
	Icon          string    `json:"icon" db:"icon"`
	UnlockedAt    time.Time `json:"unlockedAt" db:"unlocked_at"`
}

// UnlockedAchievement is the slim shape returned from a progress update.
type UnlockedAchievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// ProgressUpdateResult is the response of the full progress update operation.
type ProgressUpdateResult struct {
	Level                int                   `json:"level"`
	ExperiencePoints     int                   `json:"experiencePoints"`
	NextLevelXP          int                   `json:"nextLevelXP"`
	LeveledUp            bool                  `json:"leveledUp"`
	LevelsGained         []int                 `json:"levelsGained"`
	CompletedMissions    int                   `json:"completedMissions"`
	CurrentStreak        int                   `json:"currentStreak"`
	LongestStreak        int                   `json:"longestStreak"`
	UnlockedAchievements []UnlockedAchievement `json:"unlockedAchievements"`
}

// UserMaturityScore marks a completed onboarding assessment. Only its existence
// matters here (onboarding_complete criterion).
type UserMaturityScore struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Score     int       `json:"score" db:"score"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ===============================
// MARKETPLACE ENTITIES
// ===============================

// Moderation states a product moves through before it may appear on the marketplace.
const (
	ModerationDraft             = "draft"
	ModerationPending           = "pending_moderation"
	ModerationApproved          = "approved"
	ModerationApprovedWithEdits = "approved_with_edits"
	ModerationChangesRequested  = "changes_requested"
	ModerationRejected          = "rejected"
)

// Shop publish states relevant to marketplace visibility.
const (
	ShopPublished      = "published"
	ShopPendingPublish = "pending_publish"
)

// BankDataComplete is the bank_data_status value that allows purchases.
const BankDataComplete = "complete"

// Product is a marketplace product owned by an artisan shop.
type Product struct {
	ID                   string    `json:"id" db:"id"`
	ShopID               string    `json:"shopId" db:"shop_id" validate:"required,uuid4"`
	Name                 string    `json:"name" db:"name" validate:"required,max=255"`
	Description          *string   `json:"description,omitempty" db:"description"`
	ShortDescription     *string   `json:"shortDescription,omitempty" db:"short_description"`
	Price                float64   `json:"price" db:"price" validate:"min=0"`
	ComparePrice         *float64  `json:"comparePrice,omitempty" db:"compare_price" validate:"omitempty,min=0"`
	Images               []string  `json:"images" db:"images"`
	Tags                 []string  `json:"tags" db:"tags"`
	Materials            []string  `json:"materials" db:"materials"`
	Techniques           []string  `json:"techniques" db:"techniques"`
	Inventory            int       `json:"inventory" db:"inventory" validate:"min=0"`
	SKU                  *string   `json:"sku,omitempty" db:"sku"`
	Active               bool      `json:"active" db:"active"`
	Featured             bool      `json:"featured" db:"featured"`
	ModerationStatus     string    `json:"moderationStatus" db:"moderation_status"`
	CategoryID           *string   `json:"categoryId,omitempty" db:"category_id" validate:"omitempty,uuid4"`
	Subcategory          *string   `json:"subcategory,omitempty" db:"subcategory"`
	ShippingDataComplete bool      `json:"shippingDataComplete" db:"shipping_data_complete"`
	AllowsLocalPickup    bool      `json:"allowsLocalPickup" db:"allows_local_pickup"`
	CreatedAt            time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time `json:"updatedAt" db:"updated_at"`

	// Joined from artisan_shops when loaded through marketplace queries.
	Shop *ArtisanShop `json:"shop,omitempty" db:"-"`
}

// MarketplaceProduct is the enriched public view-model of a product.
type MarketplaceProduct struct {
	Product

	ImageURL    *string `json:"imageUrl"`
	IsNew       bool    `json:"isNew"`
	Craft       *string `json:"craft,omitempty"`
	Material    *string `json:"material,omitempty"`
	CanPurchase bool    `json:"canPurchase"`

	// Shop passthrough
	StoreName        string  `json:"storeName"`
	StoreSlug        string  `json:"storeSlug"`
	LogoURL          *string `json:"logoUrl,omitempty"`
	BannerURL        *string `json:"bannerUrl,omitempty"`
	StoreDescription *string `json:"storeDescription,omitempty"`
	Region           *string `json:"region,omitempty"`
	City             *string `json:"city,omitempty"`
	Department       *string `json:"department,omitempty"`
	CraftType        *string `json:"craftType,omitempty"`
	BankDataStatus   string  `json:"bankDataStatus"`

	FreeShipping bool `json:"freeShipping"`
}

// ProductCategory is a node of the self-referencing category tree.
type ProductCategory struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name" validate:"required,max=100"`
	Slug         string    `json:"slug" db:"slug" validate:"required,max=100"`
	ParentID     *string   `json:"parentId,omitempty" db:"parent_id" validate:"omitempty,uuid4"`
	DisplayOrder int       `json:"displayOrder" db:"display_order" validate:"min=0"`
	IsActive     bool      `json:"isActive" db:"is_active"`
	ImageURL     *string   `json:"imageUrl,omitempty" db:"image_url" validate:"omitempty,url"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`

	// Loaded relations (not in product_categories)
	Parent   *ProductCategory  `json:"parent,omitempty" db:"-"`
	Children []ProductCategory `json:"children,omitempty" db:"-"`
}

// ArtisanShop is consumed read-only by the marketplace enrichment layer.
type ArtisanShop struct {
	ID                  string  `json:"id" db:"id"`
	UserID              string  `json:"userId" db:"user_id"`
	ShopName            string  `json:"shopName" db:"shop_name"`
	ShopSlug            string  `json:"shopSlug" db:"shop_slug"`
	Description         *string `json:"description,omitempty" db:"description"`
	LogoURL             *string `json:"logoUrl,omitempty" db:"logo_url"`
	BannerURL           *string `json:"bannerUrl,omitempty" db:"banner_url"`
	Region              *string `json:"region,omitempty" db:"region"`
	CraftType           *string `json:"craftType,omitempty" db:"craft_type"`
	PublishStatus       string  `json:"publishStatus" db:"publish_status"`
	MarketplaceApproved bool    `json:"marketplaceApproved" db:"marketplace_approved"`
	BankDataStatus      string  `json:"bankDataStatus" db:"bank_data_status"`
	ContactCity         *string `json:"contactCity,omitempty" db:"contact_city"`
	ContactDepartment   *string `json:"contactDepartment,omitempty" db:"contact_department"`
}

// ===============================
// LIST ENVELOPES
// ===============================

// ListResponse is the paginated envelope returned by the product listing endpoints:
// {data, total, page, limit}.
type ListResponse[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
