package services_test

import (
	"context"
	"fmt"
	"testing"

	"productos/internal/models"
	"productos/internal/repositories"
	"productos/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, payload any) error {
	args := m.Called(routingKey, payload)
	return args.Error(0)
}

func boolPtr(b bool) *bool { return &b }

func notFound(id uint) error {
	return fmt.Errorf("product with ID %d: %w", id, repositories.ErrProductNotFound)
}

func TestProductService_ListProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)
	ctx := context.Background()

	expectedProducts := []models.Product{
		{ID: 1, Name: "Product A", Price: 10.0, Availability: true},
		{ID: 2, Name: "Product B", Price: 20.0, Availability: false},
	}

	mockRepo.On("GetAll", ctx).Return(expectedProducts, nil).Once()

	products, err := service.ListProducts(ctx)

	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)
	ctx := context.Background()

	expectedProduct := &models.Product{ID: 1, Name: "Product A", Price: 10.0, Availability: true}

	// Test successful retrieval
	mockRepo.On("GetByID", ctx, uint(1)).Return(expectedProduct, nil).Once()
	product, err := service.GetProduct(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	// Test product not found
	mockRepo.On("GetByID", ctx, uint(99)).Return(nil, notFound(99)).Once()
	product, err = service.GetProduct(ctx, 99)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	assert.Nil(t, product)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := services.NewProductService(mockRepo, mockPub)
	ctx := context.Background()

	// Availability defaults to true when not provided
	mockRepo.On("Create", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return p.Name == "Test Product" && p.Price == 100 && p.Availability
	})).Return(nil).Once()
	mockPub.On("Publish", services.EventProductCreated, mock.Anything).Return(nil).Once()

	product, err := service.CreateProduct(ctx, services.ProductInput{Name: "Test Product", Price: 100})
	assert.NoError(t, err)
	assert.True(t, product.Availability)

	// Explicit availability is honoured
	mockRepo.On("Create", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return !p.Availability
	})).Return(nil).Once()
	mockPub.On("Publish", services.EventProductCreated, mock.Anything).Return(nil).Once()

	product, err = service.CreateProduct(ctx, services.ProductInput{Name: "Hidden", Price: 5, Availability: boolPtr(false)})
	assert.NoError(t, err)
	assert.False(t, product.Availability)

	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestProductService_CreateProductRejectsInvalidInput(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	_, err := service.CreateProduct(context.Background(), services.ProductInput{Name: "Free", Price: 0})
	assert.ErrorIs(t, err, services.ErrInvalidProduct)

	_, err = service.CreateProduct(context.Background(), services.ProductInput{Name: "", Price: 10})
	assert.ErrorIs(t, err, services.ErrInvalidProduct)

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_CreateProductRepositoryFailure(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := services.NewProductService(mockRepo, mockPub)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.Anything).Return(fmt.Errorf("database error")).Once()

	product, err := service.CreateProduct(ctx, services.ProductInput{Name: "Test Product", Price: 100})
	assert.Error(t, err)
	assert.Nil(t, product)
	assert.Contains(t, err.Error(), "database error")
	mockPub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestProductService_UpdateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)
	ctx := context.Background()

	existing := &models.Product{ID: 1, Name: "Monitor", Price: 300, Availability: true}
	mockRepo.On("GetByID", ctx, uint(1)).Return(existing, nil).Once()
	mockRepo.On("Update", ctx, existing).Return(nil).Once()

	product, err := service.UpdateProduct(ctx, 1, services.ProductInput{Name: "Monitor Curvo", Price: 350, Availability: boolPtr(false)})
	assert.NoError(t, err)
	assert.Equal(t, uint(1), product.ID)
	assert.Equal(t, "Monitor Curvo", product.Name)
	assert.Equal(t, 350.0, product.Price)
	assert.False(t, product.Availability)

	// Test update of a missing product
	mockRepo.On("GetByID", ctx, uint(99)).Return(nil, notFound(99)).Once()
	_, err = service.UpdateProduct(ctx, 99, services.ProductInput{Name: "Ghost", Price: 1})
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProductKeepsAvailabilityWhenOmitted(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)
	ctx := context.Background()

	existing := &models.Product{ID: 3, Name: "Mouse", Price: 25, Availability: false}
	mockRepo.On("GetByID", ctx, uint(3)).Return(existing, nil).Once()
	mockRepo.On("Update", ctx, existing).Return(nil).Once()

	product, err := service.UpdateProduct(ctx, 3, services.ProductInput{Name: "Mouse", Price: 30})
	assert.NoError(t, err)
	assert.False(t, product.Availability)
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := services.NewProductService(mockRepo, mockPub)
	ctx := context.Background()

	existing := &models.Product{ID: 1, Name: "Laptop", Price: 1000, Availability: true}
	mockRepo.On("GetByID", ctx, uint(1)).Return(existing, nil).Once()
	mockRepo.On("Delete", ctx, uint(1)).Return(nil).Once()
	mockPub.On("Publish", services.EventProductDeleted, existing).Return(fmt.Errorf("broker down")).Once()

	// A failed publish never fails the request
	product, err := service.DeleteProduct(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, existing, product)

	// Test deletion of a missing product
	mockRepo.On("GetByID", ctx, uint(99)).Return(nil, notFound(99)).Once()
	_, err = service.DeleteProduct(ctx, 99)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)

	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestProductService_ToggleAvailability(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := services.NewProductService(mockRepo, mockPub)
	ctx := context.Background()

	existing := &models.Product{ID: 1, Name: "Laptop", Price: 1000, Availability: true}
	mockRepo.On("GetByID", ctx, uint(1)).Return(existing, nil).Once()
	mockRepo.On("Update", ctx, existing).Return(nil).Once()
	mockPub.On("Publish", services.EventProductAvailabilityToggle, existing).Return(nil).Once()

	product, err := service.ToggleAvailability(ctx, 1)
	assert.NoError(t, err)
	assert.False(t, product.Availability)

	mockRepo.On("GetByID", ctx, uint(2000)).Return(nil, notFound(2000)).Once()
	_, err = service.ToggleAvailability(ctx, 2000)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)

	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}
