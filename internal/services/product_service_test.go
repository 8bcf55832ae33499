package services_test

import (
	"fmt"
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProductRepo is a mock implementation of repositories.ProductRepository
type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) GetAll() ([]models.Product, error) {
	args := m.Called()
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepo) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepo) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepo) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepo) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockVariantRepo is a mock implementation of repositories.VariantRepository
type MockVariantRepo struct {
	mock.Mock
}

func (m *MockVariantRepo) GetByID(id string) (*models.ProductVariant, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductVariant), args.Error(1)
}

func (m *MockVariantRepo) GetByIDs(ids []string) ([]models.ProductVariant, error) {
	args := m.Called(ids)
	return args.Get(0).([]models.ProductVariant), args.Error(1)
}

func (m *MockVariantRepo) Create(variant *models.ProductVariant) error {
	args := m.Called(variant)
	return args.Error(0)
}

func (m *MockVariantRepo) Update(variant *models.ProductVariant) error {
	args := m.Called(variant)
	return args.Error(0)
}

func (m *MockVariantRepo) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockVariantRepo) SetOnHand(id string, qty int) error {
	args := m.Called(id, qty)
	return args.Error(0)
}

func TestProductService_GetAllProducts(t *testing.T) {
	mockRepo := new(MockProductRepo)
	mockVariants := new(MockVariantRepo)
	service := services.NewProductService(mockRepo, mockVariants)

	expectedProducts := []models.Product{
		{ID: "1", Title: "Trail Runner", Brand: "Acme"},
		{ID: "2", Title: "Road Racer", Brand: "Acme"},
	}

	mockRepo.On("GetAll").Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts()

	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	mockRepo := new(MockProductRepo)
	mockVariants := new(MockVariantRepo)
	service := services.NewProductService(mockRepo, mockVariants)

	expectedProduct := &models.Product{ID: "1", Title: "Trail Runner"}

	// Test successful retrieval
	mockRepo.On("GetByID", "1").Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID("1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)
	mockRepo.AssertExpectations(t)

	// Test product not found
	mockRepo.On("GetByID", "99").Return(nil, fmt.Errorf("product with ID 99 not found")).Once()
	product, err = service.GetProductByID("99")
	assert.Error(t, err)
	assert.Nil(t, product)
	assert.Contains(t, err.Error(), "not found")
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepo)
	mockVariants := new(MockVariantRepo)
	service := services.NewProductService(mockRepo, mockVariants)

	newProduct := &models.Product{Title: "New Product"}

	// Test successful creation
	mockRepo.On("Create", newProduct).Return(nil).Once()
	err := service.CreateProduct(newProduct)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// Test creation failure (e.g., database error)
	mockRepo.On("Create", newProduct).Return(fmt.Errorf("database error")).Once()
	err = service.CreateProduct(newProduct)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateAndDeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepo)
	mockVariants := new(MockVariantRepo)
	service := services.NewProductService(mockRepo, mockVariants)

	updatedProduct := &models.Product{ID: "1", Title: "Trail Runner v2"}

	mockRepo.On("Update", updatedProduct).Return(nil).Once()
	assert.NoError(t, service.UpdateProduct(updatedProduct))
	mockRepo.AssertExpectations(t)

	mockRepo.On("Delete", "1").Return(nil).Once()
	assert.NoError(t, service.DeleteProduct("1"))
	mockRepo.AssertExpectations(t)

	mockRepo.On("Delete", "99").Return(fmt.Errorf("product with ID 99 not found for deletion")).Once()
	err := service.DeleteProduct("99")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found for deletion")
	mockRepo.AssertExpectations(t)
}

func TestProductService_CatalogLifecycle(t *testing.T) {
	productRepo := repositories.NewMockProductRepository()
	variantRepo := repositories.NewMockVariantRepository()
	service := services.NewProductService(productRepo, variantRepo)

	product := &models.Product{Title: "Espresso Blend", Brand: "Acme"}
	assert.NoError(t, service.CreateProduct(product))
	assert.NotEmpty(t, product.ID) // repo assigns the UUID

	variant := &models.ProductVariant{ProductID: product.ID, SKU: "ESP-250", PriceCents: 1450, Currency: "usd", OnHand: 10}
	assert.NoError(t, service.CreateVariant(variant))

	fetched, err := service.GetVariantByID(variant.ID)
	assert.NoError(t, err)
	assert.Equal(t, "ESP-250", fetched.SKU)

	all, err := service.GetAllProducts()
	assert.NoError(t, err)
	assert.Len(t, all, 1)

	product.Title = "Espresso Blend, Dark"
	assert.NoError(t, service.UpdateProduct(product))
	updated, err := service.GetProductByID(product.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Espresso Blend, Dark", updated.Title)

	assert.NoError(t, service.DeleteProduct(product.ID))
	_, err = service.GetProductByID(product.ID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestProductService_CreateVariantRequiresProduct(t *testing.T) {
	mockRepo := new(MockProductRepo)
	mockVariants := new(MockVariantRepo)
	service := services.NewProductService(mockRepo, mockVariants)

	variant := &models.ProductVariant{ProductID: "prod_1", SKU: "TR-1", PriceCents: 1999, Currency: "usd"}

	// Creating under an existing product delegates to the variant repo
	mockRepo.On("GetByID", "prod_1").Return(&models.Product{ID: "prod_1"}, nil).Once()
	mockVariants.On("Create", variant).Return(nil).Once()
	assert.NoError(t, service.CreateVariant(variant))
	mockRepo.AssertExpectations(t)
	mockVariants.AssertExpectations(t)

	// A variant cannot be created under a product that does not exist
	orphan := &models.ProductVariant{ProductID: "prod_missing", SKU: "X-1"}
	mockRepo.On("GetByID", "prod_missing").Return(nil, fmt.Errorf("product with ID prod_missing not found")).Once()
	err := service.CreateVariant(orphan)
	assert.Error(t, err)
	mockVariants.AssertNotCalled(t, "Create", orphan)
	mockRepo.AssertExpectations(t)
}
