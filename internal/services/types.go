package services

// ===============================
// PROGRESS REQUESTS
// ===============================

// UpdateProgressRequest carries the outcome of one user activity. All fields
// are optional; a zero request still refreshes the activity streak.
type UpdateProgressRequest struct {
	XPGained         int  `json:"xpGained" validate:"min=0"`
	MissionCompleted bool `json:"missionCompleted"`
	TimeSpent        int  `json:"timeSpent" validate:"min=0"` // minutes
}

type AddExperienceRequest struct {
	Points int `json:"points" validate:"required,min=1"`
}

type AddTimeSpentRequest struct {
	Minutes int `json:"minutes" validate:"required,min=1"`
}

// CreateProgressRequest is the admin-side creation payload.
type CreateProgressRequest struct {
	UserID            string `json:"userId" validate:"required,uuid4"`
	Level             int    `json:"level" validate:"omitempty,min=1"`
	ExperiencePoints  int    `json:"experiencePoints" validate:"min=0"`
	CompletedMissions int    `json:"completedMissions" validate:"min=0"`
	CurrentStreak     int    `json:"currentStreak" validate:"min=0"`
	LongestStreak     int    `json:"longestStreak" validate:"min=0"`
	TotalTimeSpent    int    `json:"totalTimeSpent" validate:"min=0"`
}

// UpdateProgressFieldsRequest patches individual progress columns by id.
type UpdateProgressFieldsRequest struct {
	Level             *int `json:"level" validate:"omitempty,min=1"`
	ExperiencePoints  *int `json:"experiencePoints" validate:"omitempty,min=0"`
	CompletedMissions *int `json:"completedMissions" validate:"omitempty,min=0"`
	CurrentStreak     *int `json:"currentStreak" validate:"omitempty,min=0"`
	LongestStreak     *int `json:"longestStreak" validate:"omitempty,min=0"`
	TotalTimeSpent    *int `json:"totalTimeSpent" validate:"omitempty,min=0"`
}

// ===============================
// ACHIEVEMENT REQUESTS
// ===============================

// CreateAchievementRequest records an unlocked achievement directly
// (admin surface; the evaluator normally writes these itself).
type CreateAchievementRequest struct {
	UserID        string `json:"userId" validate:"required,uuid4"`
	AchievementID string `json:"achievementId" validate:"required,max=100"`
	Title         string `json:"title" validate:"required,max=255"`
	Description   string `json:"description" validate:"max=1000"`
	Icon          string `json:"icon" validate:"max=50"`
}

// ===============================
// PRODUCT REQUESTS
// ===============================

type CreateProductRequest struct {
	ShopID           string   `json:"shopId" validate:"required,uuid4"`
	Name             string   `json:"name" validate:"required,max=255"`
	Description      *string  `json:"description" validate:"omitempty,max=5000"`
	ShortDescription *string  `json:"shortDescription" validate:"omitempty,max=500"`
	Price            float64  `json:"price" validate:"required,min=0"`
	ComparePrice     *float64 `json:"comparePrice" validate:"omitempty,min=0"`
	Images           []string `json:"images" validate:"omitempty,dive,url"`
	Tags             []string `json:"tags"`
	Materials        []string `json:"materials"`
	Techniques       []string `json:"techniques"`
	Inventory        int      `json:"inventory" validate:"min=0"`
	SKU              *string  `json:"sku" validate:"omitempty,max=100"`
	Active           *bool    `json:"active"`
	Featured         bool     `json:"featured"`
	CategoryID       *string  `json:"categoryId" validate:"omitempty,uuid4"`
	Subcategory      *string  `json:"subcategory" validate:"omitempty,max=100"`
}

type UpdateProductRequest struct {
	Name                 *string  `json:"name" validate:"omitempty,max=255"`
	Description          *string  `json:"description" validate:"omitempty,max=5000"`
	ShortDescription     *string  `json:"shortDescription" validate:"omitempty,max=500"`
	Price                *float64 `json:"price" validate:"omitempty,min=0"`
	ComparePrice         *float64 `json:"comparePrice" validate:"omitempty,min=0"`
	Images               []string `json:"images" validate:"omitempty,dive,url"`
	Tags                 []string `json:"tags"`
	Materials            []string `json:"materials"`
	Techniques           []string `json:"techniques"`
	Inventory            *int     `json:"inventory" validate:"omitempty,min=0"`
	SKU                  *string  `json:"sku" validate:"omitempty,max=100"`
	Active               *bool    `json:"active"`
	Featured             *bool    `json:"featured"`
	CategoryID           *string  `json:"categoryId" validate:"omitempty,uuid4"`
	Subcategory          *string  `json:"subcategory" validate:"omitempty,max=100"`
	ShippingDataComplete *bool    `json:"shippingDataComplete"`
	AllowsLocalPickup    *bool    `json:"allowsLocalPickup"`
}

// ===============================
// CATEGORY REQUESTS
// ===============================

type CreateCategoryRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Slug         string  `json:"slug" validate:"required,max=100,slug"`
	ParentID     *string `json:"parentId" validate:"omitempty,uuid4"`
	DisplayOrder int     `json:"displayOrder" validate:"min=0"`
	IsActive     *bool   `json:"isActive"`
	ImageURL     *string `json:"imageUrl" validate:"omitempty,url"`
}

type UpdateCategoryRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=100"`
	Slug         *string `json:"slug" validate:"omitempty,max=100,slug"`
	ParentID     *string `json:"parentId" validate:"omitempty,uuid4"`
	DisplayOrder *int    `json:"displayOrder" validate:"omitempty,min=0"`
	IsActive     *bool   `json:"isActive"`
	ImageURL     *string `json:"imageUrl" validate:"omitempty,url"`
}
