package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-kyugo/productapi/config"
	"github.com/go-kyugo/productapi/dto"
	"github.com/go-kyugo/productapi/entity"
	"github.com/go-kyugo/productapi/logger"
	"github.com/go-kyugo/productapi/repository"
	"github.com/go-kyugo/productapi/response"
	pr "github.com/go-kyugo/productapi/router"
	srv "github.com/go-kyugo/productapi/server"
)

// failingRepo reports storage failures on every read.
type failingRepo struct {
	repository.ProductRepository
}

func (failingRepo) FindByID(context.Context, int) (*entity.Product, error) {
	return nil, repository.ErrRetrieveProduct
}

func (failingRepo) GetAll(context.Context) ([]entity.Product, error) {
	return nil, repository.ErrRetrieveProducts
}

func newRouter(t *testing.T, repo repository.ProductRepository) http.Handler {
	t.Helper()
	rt := pr.New()
	NewController(repo, logger.NewNop()).RegisterRoutes(rt)
	return rt.Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var res response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestCreateWidgetTwice(t *testing.T) {
	h := newRouter(t, repository.NewMemoryProductRepository(logger.NewNop()))
	body := `{"name":"Widget","quantity":2,"price":9.99}`

	rec := do(t, h, http.MethodPost, "/api/products", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, response.Ok("Widget added to database successfully"), decodeResponse(t, rec))

	rec = do(t, h, http.MethodPost, "/api/products", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, response.Fail("Widget already added"), decodeResponse(t, rec))
}

func TestCreateValidation(t *testing.T) {
	h := newRouter(t, repository.NewMemoryProductRepository(logger.NewNop()))

	rec := do(t, h, http.MethodPost, "/api/products", `{"name":"","quantity":0,"price":-1}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var env response.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Type)
	assert.Len(t, env.Error.Fields, 3)
}

func TestIndex(t *testing.T) {
	repo := repository.NewMemoryProductRepository(logger.NewNop())
	h := newRouter(t, repo)

	rec := do(t, h, http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, response.Fail("NO products Detected in database"), decodeResponse(t, rec))

	require.True(t, repo.Create(context.Background(), entity.Product{Name: "A", Quantity: 1, Price: 1}).Flag)
	require.True(t, repo.Create(context.Background(), entity.Product{Name: "B", Quantity: 2, Price: 2}).Flag)

	rec = do(t, h, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []dto.ProductDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, dto.ProductDTO{ID: 1, Name: "A", Quantity: 1, Price: 1}, list[0])
}

func TestShow(t *testing.T) {
	repo := repository.NewMemoryProductRepository(logger.NewNop())
	require.True(t, repo.Create(context.Background(), entity.Product{Name: "Widget", Quantity: 3, Price: 4.5}).Flag)
	h := newRouter(t, repo)

	rec := do(t, h, http.MethodGet, "/api/products/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Widget","quantity":3,"price":4.5}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/products/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "99")
	assert.Equal(t, "NO product by this id 99", decodeResponse(t, rec).Message)
}

func TestShowRejectsNonNumericID(t *testing.T) {
	h := newRouter(t, repository.NewMemoryProductRepository(logger.NewNop()))

	rec := do(t, h, http.MethodGet, "/api/products/abc", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdate(t *testing.T) {
	repo := repository.NewMemoryProductRepository(logger.NewNop())
	require.True(t, repo.Create(context.Background(), entity.Product{Name: "Widget", Quantity: 1, Price: 1}).Flag)
	h := newRouter(t, repo)

	rec := do(t, h, http.MethodPut, "/api/products", `{"id":1,"name":"Widget","quantity":5,"price":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Widget is updated successfully", decodeResponse(t, rec).Message)

	p, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Quantity)

	rec = do(t, h, http.MethodPut, "/api/products", `{"id":50,"name":"Ghost","quantity":1,"price":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Ghost not found", decodeResponse(t, rec).Message)
}

func TestDelete(t *testing.T) {
	repo := repository.NewMemoryProductRepository(logger.NewNop())
	require.True(t, repo.Create(context.Background(), entity.Product{Name: "Widget", Quantity: 1, Price: 1}).Flag)
	h := newRouter(t, repo)

	rec := do(t, h, http.MethodDelete, "/api/products", `{"id":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, response.Ok("Widget is deleted succefully"), decodeResponse(t, rec))

	rec = do(t, h, http.MethodDelete, "/api/products", `{"id":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, response.Fail("Product not found."), decodeResponse(t, rec))
}

func TestReadFailuresAreInternalErrors(t *testing.T) {
	h := newRouter(t, failingRepo{})
	generic := response.Fail("Internal server error occurred. Kindly try again")

	rec := do(t, h, http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, generic, decodeResponse(t, rec))

	rec = do(t, h, http.MethodGet, "/api/products/1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, generic, decodeResponse(t, rec))
}

func TestDeleteLookupFailure(t *testing.T) {
	h := newRouter(t, failingRepo{})

	rec := do(t, h, http.MethodDelete, "/api/products", `{"id":1}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, response.Fail("An error occurred while deleting the product."), decodeResponse(t, rec))
}

func TestDeleteRejectsMalformedBody(t *testing.T) {
	h := newRouter(t, repository.NewMemoryProductRepository(logger.NewNop()))

	rec := do(t, h, http.MethodDelete, "/api/products", `{"id":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_BODY")
}

func TestDeleteRejectsWronglyTypedID(t *testing.T) {
	repo := repository.NewMemoryProductRepository(logger.NewNop())
	require.True(t, repo.Create(context.Background(), entity.Product{Name: "Widget", Quantity: 1, Price: 1}).Flag)
	h := newRouter(t, repo)

	rec := do(t, h, http.MethodDelete, "/api/products", `{"id":"abc"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var env response.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "INVALID_BODY", env.Error.Code)

	p, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, p, "product must survive a rejected delete")
}

func TestDeleteRejectsNegativeID(t *testing.T) {
	h := newRouter(t, repository.NewMemoryProductRepository(logger.NewNop()))

	rec := do(t, h, http.MethodDelete, "/api/products", `{"id":-1}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"id"`)
}

func TestDeleteAcceptsFullProductBody(t *testing.T) {
	repo := repository.NewMemoryProductRepository(logger.NewNop())
	require.True(t, repo.Create(context.Background(), entity.Product{Name: "Widget", Quantity: 1, Price: 1}).Flag)
	h := newRouter(t, repo)

	rec := do(t, h, http.MethodDelete, "/api/products", `{"id":1,"name":"Widget","quantity":1,"price":1}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateRejectsSubCentPrice(t *testing.T) {
	repo := repository.NewMemoryProductRepository(logger.NewNop())
	h := newRouter(t, repo)

	rec := do(t, h, http.MethodPost, "/api/products", `{"name":"Widget","quantity":1,"price":9.999}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var env response.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Error.Fields, 1)
	assert.Equal(t, "price", env.Error.Fields[0].Field)
	assert.Equal(t, "INVALID_DECIMALS|2", env.Error.Fields[0].Code)

	all, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestInit(t *testing.T) {
	s, err := srv.New(srv.Options{
		Config: &config.Config{
			Server:   config.ServerConfig{Port: 8080},
			Database: config.DatabaseConfig{Type: "memory"},
			Log:      config.LogConfig{Format: "json"},
		},
		Registry: prometheus.NewRegistry(),
	})
	require.NoError(t, err)

	ctrl := &Controller{}
	assert.Error(t, ctrl.Init(s), "service not registered yet")

	s.RegisterService(ProductService, "not a repository")
	assert.Error(t, ctrl.Init(s))

	s.RegisterService(ProductService, repository.NewMemoryProductRepository(nil))
	require.NoError(t, ctrl.Init(s))
	s.RegisterRoutes(ctrl)

	rec := do(t, s.Handler(), http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
