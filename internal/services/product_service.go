package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"productos/internal/models"
	"productos/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// Routing keys of the events published after each write.
const (
	EventProductCreated            = "product.created"
	EventProductUpdated            = "product.updated"
	EventProductDeleted            = "product.deleted"
	EventProductAvailabilityToggle = "product.availability_toggled"
)

// ErrInvalidProduct is returned when a product breaks the model invariants.
var ErrInvalidProduct = errors.New("invalid product")

// EventPublisher sends product events to a message broker.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// ProductInput carries the writable fields of a product.
// A nil Availability means "not provided".
type ProductInput struct {
	Name         string
	Price        float64
	Availability *bool
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	validate  *validator.Validate
}

// NewProductService creates a new ProductService. publisher may be nil,
// in which case no events are sent.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// ListProducts retrieves all products.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct stores a new product. Availability defaults to true.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	product := &models.Product{
		Name:         in.Name,
		Price:        in.Price,
		Availability: true,
	}
	if in.Availability != nil {
		product.Availability = *in.Availability
	}

	if err := s.check(product); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.publish(EventProductCreated, product)
	return product, nil
}

// UpdateProduct replaces the writable fields of an existing product.
// Availability is kept when the input does not carry it.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = in.Name
	product.Price = in.Price
	if in.Availability != nil {
		product.Availability = *in.Availability
	}

	if err := s.check(product); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.publish(EventProductUpdated, product)
	return product, nil
}

// DeleteProduct removes a product and returns the representation it had.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.publish(EventProductDeleted, product)
	return product, nil
}

// ToggleAvailability flips the availability flag of a product.
func (s *ProductService) ToggleAvailability(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Availability = !product.Availability
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.publish(EventProductAvailabilityToggle, product)
	return product, nil
}

func (s *ProductService) check(product *models.Product) error {
	if err := s.validate.Struct(product); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}
	return nil
}

func (s *ProductService) publish(routingKey string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, product); err != nil {
		log.Printf("Warning: Failed to publish %s event for product %d: %v", routingKey, product.ID, err)
		return
	}
	log.Printf("Successfully published %s event for product %d", routingKey, product.ID)
}
