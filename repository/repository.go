package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kyugo/productapi/entity"
	"github.com/go-kyugo/productapi/logger"
	"github.com/go-kyugo/productapi/response"
)

// Read paths return these sanitized errors; the storage error is only logged.
var (
	ErrRetrieveProduct  = errors.New("Error occurred retrieving product")
	ErrRetrieveProducts = errors.New("Error occurred retrieving products")
	ErrLookupProduct    = errors.New("Error occurred retrieving product")
)

// errNoRowsAffected reports a write that found no row, which happens when
// the product is removed between the lookup and the write.
var errNoRowsAffected = errors.New("no rows affected")

// ProductRepository is the CRUD surface over the products table. Write
// operations report business outcomes as a response.Response and never
// return an error; read operations return nil for a missing product.
type ProductRepository interface {
	Create(ctx context.Context, product entity.Product) response.Response
	FindByID(ctx context.Context, id int) (*entity.Product, error)
	GetAll(ctx context.Context) ([]entity.Product, error)
	GetByName(ctx context.Context, name string) (*entity.Product, error)
	Update(ctx context.Context, product entity.Product) response.Response
	Delete(ctx context.Context, product entity.Product) response.Response
	Ping(ctx context.Context) error
}

// store is the raw storage primitive set. Implementations return nil, nil
// for missing rows and unwrapped driver errors otherwise.
type store interface {
	findByID(ctx context.Context, id int) (*entity.Product, error)
	findByName(ctx context.Context, name string) (*entity.Product, error)
	all(ctx context.Context) ([]entity.Product, error)
	insert(ctx context.Context, p entity.Product) (int, error)
	update(ctx context.Context, p entity.Product) error
	delete(ctx context.Context, id int) error
	ping(ctx context.Context) error
}

// Repository implements ProductRepository on top of a store.
type Repository struct {
	store store
	log   *logger.Logger
}

func newRepository(s store, log *logger.Logger) *Repository {
	if log == nil {
		log = logger.NewNop()
	}
	return &Repository{store: s, log: log.With(logger.Fields{"component": "product_repository"})}
}

// Create inserts product unless one with the same name exists. The lookup
// and insert are separate round trips, so two concurrent creates with the
// same name can both succeed.
func (r *Repository) Create(ctx context.Context, product entity.Product) response.Response {
	if product.Name == "" {
		return response.Fail("product name is required")
	}

	existing, err := r.store.findByName(ctx, product.Name)
	if err != nil {
		r.log.Error("create product: lookup by name", err, logger.Fields{"name": product.Name})
		return response.Fail("error occured when create product")
	}
	if existing != nil && existing.Name != "" {
		return response.Fail(fmt.Sprintf("%s already added", product.Name))
	}

	id, err := r.store.insert(ctx, product)
	if err != nil {
		r.log.Error("create product: insert", err, logger.Fields{"name": product.Name})
		return response.Fail("error occured when create product")
	}
	if id <= 0 {
		return response.Fail(fmt.Sprintf("Error occurred while adding %s", product.Name))
	}

	r.log.Debug("product created", logger.Fields{"id": id, "name": product.Name})
	return response.Ok(fmt.Sprintf("%s added to database successfully", product.Name))
}

func (r *Repository) FindByID(ctx context.Context, id int) (*entity.Product, error) {
	p, err := r.store.findByID(ctx, id)
	if err != nil {
		r.log.Error("find product by id", err, logger.Fields{"id": id})
		return nil, ErrRetrieveProduct
	}
	return p, nil
}

// GetAll returns every product ordered by id. No rows yields an empty slice.
func (r *Repository) GetAll(ctx context.Context) ([]entity.Product, error) {
	products, err := r.store.all(ctx)
	if err != nil {
		r.log.Error("list products", err, nil)
		return nil, ErrRetrieveProducts
	}
	if products == nil {
		products = []entity.Product{}
	}
	return products, nil
}

// GetByName returns the first product whose name matches exactly.
func (r *Repository) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	p, err := r.store.findByName(ctx, name)
	if err != nil {
		r.log.Error("find product by name", err, logger.Fields{"name": name})
		return nil, ErrLookupProduct
	}
	return p, nil
}

func (r *Repository) Update(ctx context.Context, product entity.Product) response.Response {
	existing, err := r.store.findByID(ctx, product.ID)
	if err != nil {
		r.log.Error("update product: lookup", err, logger.Fields{"id": product.ID})
		return response.Fail("Error occurred updating existing product")
	}
	if existing == nil {
		return response.Fail(fmt.Sprintf("%s not found", product.Name))
	}

	if err := r.store.update(ctx, product); err != nil {
		r.log.Error("update product", err, logger.Fields{"id": product.ID})
		return response.Fail("Error occurred updating existing product")
	}
	return response.Ok(fmt.Sprintf("%s is updated successfully", product.Name))
}

func (r *Repository) Delete(ctx context.Context, product entity.Product) response.Response {
	existing, err := r.store.findByID(ctx, product.ID)
	if err != nil {
		r.log.Error("delete product: lookup", err, logger.Fields{"id": product.ID})
		return response.Fail("error occured when delete product")
	}
	if existing == nil {
		return response.Fail(fmt.Sprintf("%s not found", product.Name))
	}

	if err := r.store.delete(ctx, existing.ID); err != nil {
		r.log.Error("delete product", err, logger.Fields{"id": product.ID})
		return response.Fail("error occured when delete product")
	}
	return response.Ok(fmt.Sprintf("%s is deleted succefully", product.Name))
}

// Ping reports whether the backing storage is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.store.ping(ctx)
}
