package services

import (
	"context"
	"testing"

	"telar/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCategoryService(categoryRepo *fakeCategoryRepo, productRepo *fakeProductRepo) CategoryService {
	return NewCategoryService(categoryRepo, productRepo, fakeCache{}, zap.NewNop())
}

func TestCreateCategoryRejectsDuplicateSlug(t *testing.T) {
	service := newTestCategoryService(&fakeCategoryRepo{}, &fakeProductRepo{})

	_, err := service.Create(context.Background(), &CreateCategoryRequest{
		Name: "Textiles", Slug: "textiles",
	})
	require.NoError(t, err)

	_, err = service.Create(context.Background(), &CreateCategoryRequest{
		Name: "Textiles artesanales", Slug: "textiles",
	})
	require.Error(t, err)
	assert.True(t, IsConflictError(err))
}

func TestCreateCategoryRejectsMalformedSlug(t *testing.T) {
	service := newTestCategoryService(&fakeCategoryRepo{}, &fakeProductRepo{})

	for _, slug := range []string{"my shop!", "Textiles", "ruanas--lana", "-ruanas", "ruanas-"} {
		_, err := service.Create(context.Background(), &CreateCategoryRequest{
			Name: "Textiles", Slug: slug,
		})
		require.Error(t, err, "slug %q", slug)
		assert.True(t, IsValidationError(err), "slug %q", slug)
	}

	_, err := service.Create(context.Background(), &CreateCategoryRequest{
		Name: "Textiles", Slug: "ruanas-de-lana",
	})
	require.NoError(t, err)
}

func TestCreateCategoryRejectsMissingParent(t *testing.T) {
	service := newTestCategoryService(&fakeCategoryRepo{}, &fakeProductRepo{})

	parentID := "1a2b3c4d-5e6f-4a0b-8c1d-2e3f4a5b6c7d"
	_, err := service.Create(context.Background(), &CreateCategoryRequest{
		Name: "Ruanas", Slug: "ruanas", ParentID: &parentID,
	})
	require.Error(t, err)
}

func TestUpdateCategorySlugConflictExemptsSelf(t *testing.T) {
	categoryRepo := &fakeCategoryRepo{}
	service := newTestCategoryService(categoryRepo, &fakeProductRepo{})

	created, err := service.Create(context.Background(), &CreateCategoryRequest{
		Name: "Cerámica", Slug: "ceramica",
	})
	require.NoError(t, err)

	// Re-submitting its own slug is not a conflict.
	slug := "ceramica"
	name := "Cerámica y alfarería"
	updated, err := service.Update(context.Background(), created.ID, &UpdateCategoryRequest{
		Name: &name, Slug: &slug,
	})
	require.NoError(t, err)
	assert.Equal(t, "Cerámica y alfarería", updated.Name)

	// A slug held by another category is.
	_, err = service.Create(context.Background(), &CreateCategoryRequest{
		Name: "Madera", Slug: "madera",
	})
	require.NoError(t, err)

	taken := "madera"
	_, err = service.Update(context.Background(), created.ID, &UpdateCategoryRequest{Slug: &taken})
	require.Error(t, err)
	assert.True(t, IsConflictError(err))
}

func TestUpdateCategoryRejectsSelfParent(t *testing.T) {
	service := newTestCategoryService(&fakeCategoryRepo{}, &fakeProductRepo{})

	created, err := service.Create(context.Background(), &CreateCategoryRequest{
		Name: "Joyería", Slug: "joyeria",
	})
	require.NoError(t, err)

	_, err = service.Update(context.Background(), created.ID, &UpdateCategoryRequest{
		ParentID: &created.ID,
	})
	require.Error(t, err)
}

func TestDeleteCategoryGuards(t *testing.T) {
	categoryRepo := &fakeCategoryRepo{}
	productRepo := &fakeProductRepo{}
	service := newTestCategoryService(categoryRepo, productRepo)

	parent, err := service.Create(context.Background(), &CreateCategoryRequest{
		Name: "Fibras", Slug: "fibras",
	})
	require.NoError(t, err)

	child, err := service.Create(context.Background(), &CreateCategoryRequest{
		Name: "Fique", Slug: "fique", ParentID: &parent.ID,
	})
	require.NoError(t, err)

	// A parent with children cannot be removed.
	err = service.Delete(context.Background(), parent.ID)
	require.Error(t, err)

	// Nor a category with products assigned.
	productRepo.products = append(productRepo.products, &models.Product{
		ID: "product-1", CategoryID: &child.ID, Active: true,
	})
	err = service.Delete(context.Background(), child.ID)
	require.Error(t, err)

	// Once the product moves away, deletion cascades bottom-up.
	productRepo.products = nil
	require.NoError(t, service.Delete(context.Background(), child.ID))
	require.NoError(t, service.Delete(context.Background(), parent.ID))
}

func TestGetTreeAttachesChildren(t *testing.T) {
	service := newTestCategoryService(&fakeCategoryRepo{}, &fakeProductRepo{})

	root, err := service.Create(context.Background(), &CreateCategoryRequest{
		Name: "Textiles", Slug: "textiles",
	})
	require.NoError(t, err)

	ruanas, err := service.Create(context.Background(), &CreateCategoryRequest{
		Name: "Ruanas", Slug: "ruanas", ParentID: &root.ID,
	})
	require.NoError(t, err)
	_, err = service.Create(context.Background(), &CreateCategoryRequest{
		Name: "Mochilas", Slug: "mochilas", ParentID: &root.ID,
	})
	require.NoError(t, err)
	_, err = service.Create(context.Background(), &CreateCategoryRequest{
		Name: "Ruanas de lana", Slug: "ruanas-de-lana", ParentID: &ruanas.ID,
	})
	require.NoError(t, err)

	tree, err := service.GetTree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "textiles", tree[0].Slug)
	require.Len(t, tree[0].Children, 2)

	var ruanasNode *models.ProductCategory
	for i := range tree[0].Children {
		if tree[0].Children[i].Slug == "ruanas" {
			ruanasNode = &tree[0].Children[i]
		}
	}
	require.NotNil(t, ruanasNode)
	require.Len(t, ruanasNode.Children, 1)
	assert.Equal(t, "ruanas-de-lana", ruanasNode.Children[0].Slug)
}

func TestGetBySlugNotFound(t *testing.T) {
	service := newTestCategoryService(&fakeCategoryRepo{}, &fakeProductRepo{})

	_, err := service.GetBySlug(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestListActiveFiltersInactive(t *testing.T) {
	service := newTestCategoryService(&fakeCategoryRepo{}, &fakeProductRepo{})

	_, err := service.Create(context.Background(), &CreateCategoryRequest{
		Name: "Visible", Slug: "visible",
	})
	require.NoError(t, err)

	inactive := false
	_, err = service.Create(context.Background(), &CreateCategoryRequest{
		Name: "Oculta", Slug: "oculta", IsActive: &inactive,
	})
	require.NoError(t, err)

	active, err := service.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "visible", active[0].Slug)
}
