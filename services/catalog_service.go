package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"cmticaret/models"
	"cmticaret/pkg/apierr"
	"cmticaret/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// ProductInput carries the writable product fields for create and update.
type ProductInput struct {
	Name        string   `json:"name" binding:"required,min=2"`
	Description string   `json:"description"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	Stock       int      `json:"stock" binding:"gte=0"`
	MinStock    int      `json:"min_stock" binding:"gte=0"`
	CategoryID  string   `json:"category_id" binding:"required"`
	Images      []string `json:"images"`
}

// ProductListResponse wraps a product page with paging metadata.
type ProductListResponse struct {
	Products []models.Product `json:"products"`
	Meta     MetaData         `json:"meta"`
}

type CatalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
}

func NewCatalogService(products repository.ProductRepository, categories repository.CategoryRepository) *CatalogService {
	return &CatalogService{products: products, categories: categories}
}

func (s *CatalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) (*ProductListResponse, *apierr.Error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	products, total, err := s.products.Find(ctx, filter)
	if err != nil {
		return nil, apierr.Internal("Ürünler yüklenemedi", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return &ProductListResponse{
		Products: products,
		Meta: MetaData{
			Page:       filter.Page,
			Limit:      filter.Limit,
			Total:      total,
			TotalPages: totalPages(total, filter.Limit),
		},
	}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, *apierr.Error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierr.NotFound("Ürün bulunamadı")
		}
		return nil, apierr.Internal("Ürün yüklenemedi", err)
	}
	return product, nil
}

// CreateProduct validates the category reference and inserts the product.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, *apierr.Error) {
	if aerr := s.checkCategory(ctx, in.CategoryID); aerr != nil {
		return nil, aerr
	}

	now := time.Now().UTC()
	product := &models.Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		MinStock:    in.MinStock,
		CategoryID:  in.CategoryID,
		Images:      in.Images,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if product.Images == nil {
		product.Images = []string{}
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, apierr.Internal("Ürün oluşturulamadı", err)
	}
	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, *apierr.Error) {
	if aerr := s.checkCategory(ctx, in.CategoryID); aerr != nil {
		return nil, aerr
	}

	updates := bson.M{
		"name":        strings.TrimSpace(in.Name),
		"description": in.Description,
		"price":       in.Price,
		"stock":       in.Stock,
		"min_stock":   in.MinStock,
		"category_id": in.CategoryID,
	}
	if in.Images != nil {
		updates["images"] = in.Images
	}

	if err := s.products.Update(ctx, id, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierr.NotFound("Ürün bulunamadı")
		}
		return nil, apierr.Internal("Ürün güncellenemedi", err)
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct soft-deletes; past orders keep their item snapshots.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) *apierr.Error {
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierr.NotFound("Ürün bulunamadı")
		}
		return apierr.Internal("Ürün silinemedi", err)
	}
	return nil
}

func (s *CatalogService) checkCategory(ctx context.Context, categoryID string) *apierr.Error {
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierr.BadRequest("Geçersiz kategori")
		}
		return apierr.Internal("Kategori doğrulanamadı", err)
	}
	return nil
}

// CategoryInput carries the writable category fields.
type CategoryInput struct {
	Name        string `json:"name" binding:"required,min=2"`
	Description string `json:"description"`
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, *apierr.Error) {
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, apierr.Internal("Kategoriler yüklenemedi", err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, *apierr.Error) {
	category := &models.Category{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apierr.Internal("Kategori oluşturulamadı", err)
	}
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*models.Category, *apierr.Error) {
	updates := bson.M{
		"name":        strings.TrimSpace(in.Name),
		"description": in.Description,
	}
	if err := s.categories.Update(ctx, id, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierr.NotFound("Kategori bulunamadı")
		}
		return nil, apierr.Internal("Kategori güncellenemedi", err)
	}
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, apierr.Internal("Kategori yüklenemedi", err)
	}
	return category, nil
}

// DeleteCategory removes the category without touching its products.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) *apierr.Error {
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierr.NotFound("Kategori bulunamadı")
		}
		return apierr.Internal("Kategori silinemedi", err)
	}
	return nil
}
