package services

import (
	"context"

	"telar/internal/cache"
	"telar/internal/models"
	"telar/internal/repositories"
	"telar/internal/validation"

	"go.uber.org/zap"
)

const categoryTreeCacheKey = "categories:tree"

type categoryService struct {
	categoryRepo repositories.CategoryRepository
	productRepo  repositories.ProductRepository
	cache        cache.Cache
	logger       *zap.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(
	categoryRepo repositories.CategoryRepository,
	productRepo repositories.ProductRepository,
	cacheClient cache.Cache,
	logger *zap.Logger,
) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cache:        cacheClient,
		logger:       logger,
	}
}

func (s *categoryService) Create(ctx context.Context, req *CreateCategoryRequest) (*models.ProductCategory, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("Invalid category data", err)
	}

	exists, err := s.categoryRepo.ExistsBySlug(ctx, req.Slug, "")
	if err != nil {
		s.logger.Error("Failed to check category slug", zap.Error(err))
		return nil, NewInternalError("Failed to create category")
	}
	if exists {
		return nil, EntityAlreadyExistsError("Category", "slug", req.Slug)
	}

	if req.ParentID != nil {
		parent, err := s.categoryRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			s.logger.Error("Failed to check parent category", zap.Error(err))
			return nil, NewInternalError("Failed to create category")
		}
		if parent == nil {
			return nil, NewBusinessError("Parent category does not exist", "PARENT_NOT_FOUND")
		}
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	category := &models.ProductCategory{
		Name:         req.Name,
		Slug:         req.Slug,
		ParentID:     req.ParentID,
		DisplayOrder: req.DisplayOrder,
		IsActive:     isActive,
		ImageURL:     req.ImageURL,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if repositories.IsUniqueViolation(err, "") {
			return nil, EntityAlreadyExistsError("Category", "slug", req.Slug)
		}
		s.logger.Error("Failed to create category", zap.Error(err))
		return nil, NewInternalError("Failed to create category")
	}

	s.invalidateCache(ctx)
	return category, nil
}

func (s *categoryService) GetByID(ctx context.Context, id string) (*models.ProductCategory, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get category", zap.String("id", id), zap.Error(err))
		return nil, NewInternalError("Failed to get category")
	}
	if category == nil {
		return nil, EntityNotFoundError("Category", id)
	}
	return category, nil
}

func (s *categoryService) GetBySlug(ctx context.Context, slug string) (*models.ProductCategory, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		s.logger.Error("Failed to get category", zap.String("slug", slug), zap.Error(err))
		return nil, NewInternalError("Failed to get category")
	}
	if category == nil {
		return nil, EntityNotFoundError("Category", slug)
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id string, req *UpdateCategoryRequest) (*models.ProductCategory, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("Invalid category data", err)
	}

	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Slug != nil && *req.Slug != category.Slug {
		exists, err := s.categoryRepo.ExistsBySlug(ctx, *req.Slug, id)
		if err != nil {
			s.logger.Error("Failed to check category slug", zap.Error(err))
			return nil, NewInternalError("Failed to update category")
		}
		if exists {
			return nil, EntityAlreadyExistsError("Category", "slug", *req.Slug)
		}
	}

	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, NewBusinessError("Category cannot be its own parent", "INVALID_PARENT")
		}
		parent, err := s.categoryRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			s.logger.Error("Failed to check parent category", zap.Error(err))
			return nil, NewInternalError("Failed to update category")
		}
		if parent == nil {
			return nil, NewBusinessError("Parent category does not exist", "PARENT_NOT_FOUND")
		}
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Slug != nil {
		category.Slug = *req.Slug
	}
	if req.ParentID != nil {
		category.ParentID = req.ParentID
	}
	if req.DisplayOrder != nil {
		category.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.ImageURL != nil {
		category.ImageURL = req.ImageURL
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if repositories.IsUniqueViolation(err, "") {
			return nil, EntityAlreadyExistsError("Category", "slug", category.Slug)
		}
		s.logger.Error("Failed to update category", zap.String("id", id), zap.Error(err))
		return nil, NewInternalError("Failed to update category")
	}

	s.invalidateCache(ctx)
	return category, nil
}

// Delete refuses to remove a category that still has children or products.
func (s *categoryService) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	children, err := s.categoryRepo.CountChildren(ctx, id)
	if err != nil {
		s.logger.Error("Failed to count child categories", zap.Error(err))
		return NewInternalError("Failed to delete category")
	}
	if children > 0 {
		return NewBusinessError("Category has child categories", "CATEGORY_HAS_CHILDREN")
	}

	products, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		s.logger.Error("Failed to count category products", zap.Error(err))
		return NewInternalError("Failed to delete category")
	}
	if products > 0 {
		return NewBusinessError("Category has products assigned", "CATEGORY_HAS_PRODUCTS")
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete category", zap.String("id", id), zap.Error(err))
		return NewInternalError("Failed to delete category")
	}

	s.invalidateCache(ctx)
	return nil
}

// ===============================
// READ SURFACE
// ===============================

func (s *categoryService) List(ctx context.Context) ([]*models.ProductCategory, error) {
	return s.list(ctx, s.categoryRepo.List)
}

func (s *categoryService) ListRoots(ctx context.Context) ([]*models.ProductCategory, error) {
	return s.list(ctx, s.categoryRepo.ListRoots)
}

func (s *categoryService) ListChildren(ctx context.Context, parentID string) ([]*models.ProductCategory, error) {
	if _, err := s.GetByID(ctx, parentID); err != nil {
		return nil, err
	}
	return s.list(ctx, func(ctx context.Context) ([]*models.ProductCategory, error) {
		return s.categoryRepo.ListChildren(ctx, parentID)
	})
}

func (s *categoryService) ListActive(ctx context.Context) ([]*models.ProductCategory, error) {
	return s.list(ctx, s.categoryRepo.ListActive)
}

func (s *categoryService) list(ctx context.Context, load func(context.Context) ([]*models.ProductCategory, error)) ([]*models.ProductCategory, error) {
	categories, err := load(ctx)
	if err != nil {
		s.logger.Error("Failed to list categories", zap.Error(err))
		return nil, NewInternalError("Failed to list categories")
	}
	if categories == nil {
		categories = []*models.ProductCategory{}
	}
	return categories, nil
}

// GetTree returns root categories with children and grandchildren attached,
// matching how the storefront navigation consumes it.
func (s *categoryService) GetTree(ctx context.Context) ([]*models.ProductCategory, error) {
	var cached []*models.ProductCategory
	if s.cache.Get(ctx, categoryTreeCacheKey, &cached) {
		return cached, nil
	}

	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	byParent := make(map[string][]models.ProductCategory)
	var roots []*models.ProductCategory
	for _, category := range all {
		if category.ParentID == nil {
			roots = append(roots, category)
			continue
		}
		byParent[*category.ParentID] = append(byParent[*category.ParentID], *category)
	}

	for _, root := range roots {
		children := byParent[root.ID]
		for i := range children {
			children[i].Children = byParent[children[i].ID]
		}
		root.Children = children
	}
	if roots == nil {
		roots = []*models.ProductCategory{}
	}

	_ = s.cache.Set(ctx, categoryTreeCacheKey, roots, cache.DefaultTTL)
	return roots, nil
}

func (s *categoryService) invalidateCache(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, "categories:*"); err != nil {
		s.logger.Warn("Failed to invalidate category caches", zap.Error(err))
	}
}
