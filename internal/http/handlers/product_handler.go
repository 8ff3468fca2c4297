// Product catalog HTTP handlers.
//
// This file exposes REST endpoints for product resources:
//   - POST   /products        (create)
//   - GET    /products        (list, paginated)
//   - GET    /products/{id}   (fetch)
//   - PUT    /products/{id}   (update)
//   - DELETE /products/{id}   (delete)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
	"github.com/tbourn/go-ecommerce-backend/internal/services"
)

// ProductRequest is the JSON payload for creating or updating a product.
type ProductRequest struct {
	// ProductName is the display name (1-255 chars).
	ProductName string `json:"productName" binding:"required,min=1,max=255" example:"Mechanical keyboard"`
	// Code is the unique merchant code.
	Code string `json:"code" binding:"required,min=1,max=64" example:"KB-1"`
	// Price is the unit price; must be non-negative.
	Price float64 `json:"price" binding:"min=0" example:"49.9"`
	// Model is the optional manufacturer model identifier.
	Model string `json:"model" example:"K8 Pro"`
	// ProductURL is an optional product page or image link.
	ProductURL string `json:"productUrl" binding:"omitempty,url" example:"https://cdn.example.com/kb-1.png"`
}

// ListProductsResponse wraps a page of products and pagination information.
type ListProductsResponse struct {
	Products   []domain.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

// CreateProduct godoc
// @ID          createProduct
// @Summary     Create a product
// @Description Adds a product to the catalog and returns the created resource.
// @Tags        Products
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.ProductRequest  true  "Product payload"
//
// @Success     201  {object}  domain.Product
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Code already exists"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products [post]
func (h *Handlers) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, err := h.products.Create(c.Request.Context(), &domain.Product{
		ProductName: strings.TrimSpace(req.ProductName),
		Code:        strings.TrimSpace(req.Code),
		Price:       req.Price,
		Model:       strings.TrimSpace(req.Model),
		ProductURL:  strings.TrimSpace(req.ProductURL),
	})
	if err != nil {
		if errors.Is(err, services.ErrDuplicateProductCode) {
			fail(c, http.StatusConflict, ErrCodeConflict, "product code already exists")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, p)
}

// ListProducts godoc
// @ID          listProducts
// @Summary     List products (paginated)
// @Description Returns a page of the product catalog.
// @Tags        Products
// @Produce     json
//
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListProductsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products [get]
func (h *Handlers) ListProducts(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.products.ListPage(c.Request.Context(), (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListProductsResponse{
		Products: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetProduct godoc
// @ID          getProduct
// @Summary     Fetch a product
// @Tags        Products
// @Produce     json
//
// @Param       id  path  string  true  "Product ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.Product
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Router      /products/{id} [get]
func (h *Handlers) GetProduct(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "product id must be a UUID")
		return
	}

	p, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}

// UpdateProduct godoc
// @ID          updateProduct
// @Summary     Update a product
// @Description Overwrites the mutable fields of a product.
// @Tags        Products
// @Accept      json
// @Produce     json
//
// @Param       id    path  string                   true  "Product ID (UUID)"  format(uuid)
// @Param       body  body  handlers.ProductRequest  true  "Product payload"
//
// @Success     200  {object}  domain.Product
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Code already exists"
// @Router      /products/{id} [put]
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "product id must be a UUID")
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, err := h.products.Update(c.Request.Context(), id, &domain.Product{
		ProductName: strings.TrimSpace(req.ProductName),
		Code:        strings.TrimSpace(req.Code),
		Price:       req.Price,
		Model:       strings.TrimSpace(req.Model),
		ProductURL:  strings.TrimSpace(req.ProductURL),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
		case errors.Is(err, services.ErrDuplicateProductCode):
			fail(c, http.StatusConflict, ErrCodeConflict, "product code already exists")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, p)
}

// DeleteProduct godoc
// @ID          deleteProduct
// @Summary     Delete a product
// @Tags        Products
// @Produce     json
//
// @Param       id  path  string  true  "Product ID (UUID)"  format(uuid)
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Router      /products/{id} [delete]
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "product id must be a UUID")
		return
	}

	if _, err := h.products.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
