package services

import (
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// ProductService handles business logic related to the catalog:
// products and their sellable variants.
type ProductService struct {
	productRepo repositories.ProductRepository
	variantRepo repositories.VariantRepository
}

// NewProductService creates a new ProductService.
func NewProductService(productRepo repositories.ProductRepository, variantRepo repositories.VariantRepository) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		variantRepo: variantRepo,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.productRepo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.productRepo.GetByID(id)
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(product *models.Product) error {
	return s.productRepo.Create(product)
}

// UpdateProduct updates an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	return s.productRepo.Update(product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.productRepo.Delete(id)
}

// GetVariantByID retrieves a single variant by its ID.
func (s *ProductService) GetVariantByID(id string) (*models.ProductVariant, error) {
	return s.variantRepo.GetByID(id)
}

// CreateVariant creates a new variant under a product.
func (s *ProductService) CreateVariant(variant *models.ProductVariant) error {
	if _, err := s.productRepo.GetByID(variant.ProductID); err != nil {
		return err
	}
	return s.variantRepo.Create(variant)
}

// UpdateVariant updates an existing variant.
func (s *ProductService) UpdateVariant(variant *models.ProductVariant) error {
	return s.variantRepo.Update(variant)
}

// DeleteVariant deletes a variant by its ID.
func (s *ProductService) DeleteVariant(id string) error {
	return s.variantRepo.Delete(id)
}
