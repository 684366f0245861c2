package services

import (
	"context"
	"fmt"
	"time"

	"telar/internal/cache"
	"telar/internal/models"
	"telar/internal/repositories"
	"telar/internal/validation"

	"go.uber.org/zap"
)

// newProductWindow is how long a product counts as "new" on the marketplace.
const newProductWindow = 30 * 24 * time.Hour

type productService struct {
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	cache        cache.Cache
	logger       *zap.Logger
	now          func() time.Time
}

// NewProductService creates a new product service
func NewProductService(
	productRepo repositories.ProductRepository,
	categoryRepo repositories.CategoryRepository,
	cacheClient cache.Cache,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cache:        cacheClient,
		logger:       logger,
		now:          time.Now,
	}
}

// ===============================
// CRUD
// ===============================

func (s *productService) Create(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("Invalid product data", err)
	}

	if req.SKU != nil && *req.SKU != "" {
		exists, err := s.productRepo.ExistsBySKU(ctx, *req.SKU, "")
		if err != nil {
			s.logger.Error("Failed to check SKU", zap.Error(err))
			return nil, NewInternalError("Failed to create product")
		}
		if exists {
			return nil, EntityAlreadyExistsError("Product", "sku", *req.SKU)
		}
	}

	if req.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *req.CategoryID)
		if err != nil {
			s.logger.Error("Failed to check category", zap.Error(err))
			return nil, NewInternalError("Failed to create product")
		}
		if category == nil {
			return nil, NewBusinessError("Category does not exist", "CATEGORY_NOT_FOUND")
		}
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	product := &models.Product{
		ShopID:           req.ShopID,
		Name:             req.Name,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Price:            req.Price,
		ComparePrice:     req.ComparePrice,
		Images:           emptyIfNil(req.Images),
		Tags:             emptyIfNil(req.Tags),
		Materials:        emptyIfNil(req.Materials),
		Techniques:       emptyIfNil(req.Techniques),
		Inventory:        req.Inventory,
		SKU:              req.SKU,
		Active:           active,
		Featured:         req.Featured,
		ModerationStatus: models.ModerationDraft,
		CategoryID:       req.CategoryID,
		Subcategory:      req.Subcategory,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if repositories.IsUniqueViolation(err, "") {
			return nil, EntityAlreadyExistsError("Product", "sku", derefOr(req.SKU, ""))
		}
		s.logger.Error("Failed to create product", zap.Error(err))
		return nil, NewInternalError("Failed to create product")
	}

	s.invalidateListCaches(ctx)
	return product, nil
}

func (s *productService) GetByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get product", zap.String("id", id), zap.Error(err))
		return nil, NewInternalError("Failed to get product")
	}
	if product == nil {
		return nil, EntityNotFoundError("Product", id)
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, id string, req *UpdateProductRequest) (*models.Product, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("Invalid product data", err)
	}

	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SKU != nil && *req.SKU != "" {
		exists, err := s.productRepo.ExistsBySKU(ctx, *req.SKU, id)
		if err != nil {
			s.logger.Error("Failed to check SKU", zap.Error(err))
			return nil, NewInternalError("Failed to update product")
		}
		if exists {
			return nil, EntityAlreadyExistsError("Product", "sku", *req.SKU)
		}
	}

	if req.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *req.CategoryID)
		if err != nil {
			s.logger.Error("Failed to check category", zap.Error(err))
			return nil, NewInternalError("Failed to update product")
		}
		if category == nil {
			return nil, NewBusinessError("Category does not exist", "CATEGORY_NOT_FOUND")
		}
	}

	applyProductUpdates(product, req)

	if err := s.productRepo.Update(ctx, product); err != nil {
		if repositories.IsUniqueViolation(err, "") {
			return nil, EntityAlreadyExistsError("Product", "sku", derefOr(req.SKU, ""))
		}
		s.logger.Error("Failed to update product", zap.String("id", id), zap.Error(err))
		return nil, NewInternalError("Failed to update product")
	}

	s.invalidateListCaches(ctx)
	return product, nil
}

func applyProductUpdates(product *models.Product, req *UpdateProductRequest) {
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.ShortDescription != nil {
		product.ShortDescription = req.ShortDescription
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.ComparePrice != nil {
		product.ComparePrice = req.ComparePrice
	}
	if req.Images != nil {
		product.Images = req.Images
	}
	if req.Tags != nil {
		product.Tags = req.Tags
	}
	if req.Materials != nil {
		product.Materials = req.Materials
	}
	if req.Techniques != nil {
		product.Techniques = req.Techniques
	}
	if req.Inventory != nil {
		product.Inventory = *req.Inventory
	}
	if req.SKU != nil {
		product.SKU = req.SKU
	}
	if req.Active != nil {
		product.Active = *req.Active
	}
	if req.Featured != nil {
		product.Featured = *req.Featured
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if req.Subcategory != nil {
		product.Subcategory = req.Subcategory
	}
	if req.ShippingDataComplete != nil {
		product.ShippingDataComplete = *req.ShippingDataComplete
	}
	if req.AllowsLocalPickup != nil {
		product.AllowsLocalPickup = *req.AllowsLocalPickup
	}
}

func (s *productService) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete product", zap.String("id", id), zap.Error(err))
		return NewInternalError("Failed to delete product")
	}

	s.invalidateListCaches(ctx)
	return nil
}

func (s *productService) GetAll(ctx context.Context, query *models.ProductQuery) (*models.ListResponse[*models.Product], error) {
	query.Normalize()

	products, total, err := s.productRepo.List(ctx, query)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, NewInternalError("Failed to list products")
	}
	if products == nil {
		products = []*models.Product{}
	}

	return &models.ListResponse[*models.Product]{
		Data:  products,
		Total: total,
		Page:  query.Page,
		Limit: query.Limit,
	}, nil
}

// ===============================
// MARKETPLACE SURFACE
// ===============================

func (s *productService) GetMarketplaceProducts(ctx context.Context, query *models.ProductQuery) (*models.ListResponse[*models.MarketplaceProduct], error) {
	query.Normalize()

	products, total, err := s.productRepo.ListMarketplace(ctx, query)
	if err != nil {
		s.logger.Error("Failed to list marketplace products", zap.Error(err))
		return nil, NewInternalError("Failed to list marketplace products")
	}

	return &models.ListResponse[*models.MarketplaceProduct]{
		Data:  s.enrichAll(products),
		Total: total,
		Page:  query.Page,
		Limit: query.Limit,
	}, nil
}

// GetMarketplaceProductByID resolves a product through the marketplace
// filter, so unapproved or unpublished products read as not found.
func (s *productService) GetMarketplaceProductByID(ctx context.Context, id string) (*models.MarketplaceProduct, error) {
	query := &models.ProductQuery{IDs: id, Limit: 1}
	query.Normalize()

	products, _, err := s.productRepo.ListMarketplace(ctx, query)
	if err != nil {
		s.logger.Error("Failed to get marketplace product", zap.String("id", id), zap.Error(err))
		return nil, NewInternalError("Failed to get marketplace product")
	}
	if len(products) == 0 {
		return nil, EntityNotFoundError("Product", id)
	}
	return s.enrich(products[0]), nil
}

func (s *productService) GetFeaturedProducts(ctx context.Context, limit int) ([]*models.MarketplaceProduct, error) {
	if limit <= 0 || limit > models.MaxLimit {
		limit = 20
	}

	cacheKey := fmt.Sprintf("products:featured:%d", limit)

	var cached []*models.MarketplaceProduct
	if s.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	featured := true
	query := &models.ProductQuery{Featured: &featured, Limit: limit}
	query.Normalize()

	products, _, err := s.productRepo.ListMarketplace(ctx, query)
	if err != nil {
		s.logger.Error("Failed to list featured products", zap.Error(err))
		return nil, NewInternalError("Failed to list featured products")
	}

	enriched := s.enrichAll(products)
	_ = s.cache.Set(ctx, cacheKey, enriched, cache.DefaultTTL)
	return enriched, nil
}

func (s *productService) GetProductsByShop(ctx context.Context, shopID string) ([]*models.MarketplaceProduct, error) {
	query := &models.ProductQuery{ShopID: shopID, Unpaginated: true}
	query.Normalize()
	return s.listMarketplaceUnpaged(ctx, query)
}

func (s *productService) GetProductsByUser(ctx context.Context, userID string) ([]*models.MarketplaceProduct, error) {
	query := &models.ProductQuery{UserID: userID, Unpaginated: true}
	query.Normalize()
	return s.listMarketplaceUnpaged(ctx, query)
}

func (s *productService) listMarketplaceUnpaged(ctx context.Context, query *models.ProductQuery) ([]*models.MarketplaceProduct, error) {
	products, _, err := s.productRepo.ListMarketplace(ctx, query)
	if err != nil {
		s.logger.Error("Failed to list marketplace products", zap.Error(err))
		return nil, NewInternalError("Failed to list marketplace products")
	}
	return s.enrichAll(products), nil
}

// ===============================
// ENRICHMENT
// ===============================

func (s *productService) enrichAll(products []*models.Product) []*models.MarketplaceProduct {
	enriched := make([]*models.MarketplaceProduct, 0, len(products))
	for _, product := range products {
		enriched = append(enriched, s.enrich(product))
	}
	return enriched
}

// enrich builds the public marketplace view of a product. Purchasability
// requires the shop's payout account and the product's shipping data to both
// be complete; free shipping stays off until shipping rules exist.
func (s *productService) enrich(product *models.Product) *models.MarketplaceProduct {
	mp := &models.MarketplaceProduct{
		Product:      *product,
		IsNew:        s.now().Sub(product.CreatedAt) <= newProductWindow,
		FreeShipping: false,
	}

	if len(product.Images) > 0 {
		mp.ImageURL = &product.Images[0]
	}
	if len(product.Materials) > 0 {
		mp.Material = &product.Materials[0]
	}

	if shop := product.Shop; shop != nil {
		mp.Craft = shop.CraftType
		mp.CanPurchase = shop.BankDataStatus == models.BankDataComplete &&
			product.ShippingDataComplete

		mp.StoreName = shop.ShopName
		mp.StoreSlug = shop.ShopSlug
		mp.LogoURL = shop.LogoURL
		mp.BannerURL = shop.BannerURL
		mp.StoreDescription = shop.Description
		mp.Region = shop.Region
		mp.City = shop.ContactCity
		mp.Department = shop.ContactDepartment
		mp.CraftType = shop.CraftType
		mp.BankDataStatus = shop.BankDataStatus
	}

	return mp
}

func (s *productService) invalidateListCaches(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, "products:*"); err != nil {
		s.logger.Warn("Failed to invalidate product caches", zap.Error(err))
	}
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func derefOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}
