package controllers

import (
	"fmt"
	"net/http"

	"github.com/go-kyugo/productapi/dto"
	"github.com/go-kyugo/productapi/handler"
	"github.com/go-kyugo/productapi/logger"
	"github.com/go-kyugo/productapi/repository"
	"github.com/go-kyugo/productapi/request"
	"github.com/go-kyugo/productapi/response"
	pr "github.com/go-kyugo/productapi/router"
	srv "github.com/go-kyugo/productapi/server"
)

// ProductService is the service name the repository is registered under.
const ProductService = "product"

type Controller struct {
	srv.Component
	Products repository.ProductRepository
	log      *logger.Logger
}

// NewController builds a controller without a server, mainly for tests.
func NewController(products repository.ProductRepository, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.NewNop()
	}
	return &Controller{Products: products, log: log.With(logger.Fields{"component": "products_controller"})}
}

// Init injects services from the server into the controller.
func (ctrl *Controller) Init(s *srv.Server) error {
	ctrl.Component.Init(s)
	svc, ok := ctrl.LookupService(ProductService)
	if !ok {
		return fmt.Errorf("service %q not registered", ProductService)
	}
	products, ok := svc.(repository.ProductRepository)
	if !ok {
		return fmt.Errorf("service %q is %T, not a product repository", ProductService, svc)
	}
	ctrl.Products = products
	ctrl.log = ctrl.Logger().With(logger.Fields{"component": "products_controller"})
	return nil
}

func (ctrl *Controller) Index(w *response.Writer, r *request.Request) error {
	products, err := ctrl.Products.GetAll(r.Context())
	if err != nil {
		return err
	}
	if len(products) == 0 {
		w.NotFound("NO products Detected in database")
		return nil
	}

	_, list := dto.FromEntity(nil, products)
	if len(list) == 0 {
		w.NotFound("No products found")
		return nil
	}
	w.JSON(http.StatusOK, list)
	return nil
}

func (ctrl *Controller) Show(w *response.Writer, r *request.Request) error {
	id, err := r.IntParam("id")
	if err != nil {
		// the route pattern only admits digits, so this is an overflow
		w.NotFound(fmt.Sprintf("NO product by this id %s", r.Param("id")))
		return nil
	}

	product, err := ctrl.Products.FindByID(r.Context(), id)
	if err != nil {
		return err
	}
	if product == nil {
		w.NotFound(fmt.Sprintf("NO product by this id %d", id))
		return nil
	}

	single, _ := dto.FromEntity(product, nil)
	w.JSON(http.StatusOK, single)
	return nil
}

func (ctrl *Controller) Create(w *response.Writer, r *request.Request) error {
	body, ok := request.BodyAsRequest[dto.ProductDTO](r)
	if !ok {
		return fmt.Errorf("validated body missing for %s %s", r.R.Method, r.R.URL.Path)
	}
	w.Result(ctrl.Products.Create(r.Context(), dto.ToEntity(body)))
	return nil
}

func (ctrl *Controller) Update(w *response.Writer, r *request.Request) error {
	body, ok := request.BodyAsRequest[dto.ProductDTO](r)
	if !ok {
		return fmt.Errorf("validated body missing for %s %s", r.R.Method, r.R.URL.Path)
	}
	w.Result(ctrl.Products.Update(r.Context(), dto.ToEntity(body)))
	return nil
}

// Delete looks the product up by the id in the body. A failed lookup is
// answered with its own 500 message instead of the generic one.
func (ctrl *Controller) Delete(w *response.Writer, r *request.Request) error {
	body, ok := request.BodyAsRequest[dto.DeleteProductRequest](r)
	if !ok {
		return fmt.Errorf("validated body missing for %s %s", r.R.Method, r.R.URL.Path)
	}

	product, err := ctrl.Products.FindByID(r.Context(), body.ID)
	if err != nil {
		ctrl.log.Error("delete product: lookup", err, logger.Fields{"id": body.ID})
		w.InternalError("An error occurred while deleting the product.")
		return nil
	}
	if product == nil {
		w.NotFound("Product not found.")
		return nil
	}

	w.Result(ctrl.Products.Delete(r.Context(), *product))
	return nil
}

// RegisterRoutes registers the controller routes into the provided router.
func (ctrl *Controller) RegisterRoutes(router *pr.Router) {
	group := router.Group("/api/products")

	group.Get("/", handler.Adapt(ctrl.log, ctrl.Index))
	group.Get("/{id:[0-9]+}", handler.Adapt(ctrl.log, ctrl.Show))
	group.Post("/", handler.Adapt(ctrl.log, ctrl.Create)).ValidateBody(&dto.ProductDTO{})
	group.Put("/", handler.Adapt(ctrl.log, ctrl.Update)).ValidateBody(&dto.ProductDTO{})
	group.Delete("/", handler.Adapt(ctrl.log, ctrl.Delete)).ValidateBody(&dto.DeleteProductRequest{})
}
