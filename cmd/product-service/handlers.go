package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jmoralesq/tienda-orders/internal/catalog"
)

func listProductsHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		q := catalog.Query{
			Q:          c.Query("q"),
			CategoryID: c.Query("category"),
			LowStock:   c.Query("low_stock") == "true",
			Limit:      limit,
			Offset:     offset,
		}
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, catalog.HTTPError{Error: "list failed"})
			return
		}
		if items == nil {
			items = []catalog.Product{}
		}
		c.JSON(http.StatusOK, catalog.ListResponse{Q: q.Q, Limit: limit, Offset: offset, Items: items})
	}
}

func getProductHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, catalog.HTTPError{Error: "product not found"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func createProductHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, catalog.HTTPError{Error: "invalid json"})
			return
		}
		if req.Name == "" || req.Slug == "" {
			c.JSON(http.StatusBadRequest, catalog.HTTPError{Error: "name and slug are required"})
			return
		}
		price, err := decimal.NewFromString(req.Price)
		if err != nil || price.IsNegative() {
			c.JSON(http.StatusBadRequest, catalog.HTTPError{Error: "price must be a non-negative decimal"})
			return
		}
		if req.Quantity < 0 {
			c.JSON(http.StatusBadRequest, catalog.HTTPError{Error: "quantity must be non-negative"})
			return
		}
		p := &catalog.Product{
			ID:          uuid.NewString(),
			Name:        req.Name,
			Slug:        req.Slug,
			Description: req.Description,
			Price:       price,
			Quantity:    req.Quantity,
			CategoryID:  req.CategoryID,
		}
		if err := repo.Create(c.Request.Context(), p); err != nil {
			c.JSON(http.StatusInternalServerError, catalog.HTTPError{Error: "create failed"})
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func updateProductHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.UpdateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, catalog.HTTPError{Error: "invalid json"})
			return
		}
		p := &catalog.Product{
			ID:          c.Param("id"),
			Name:        req.Name,
			Slug:        req.Slug,
			Description: req.Description,
			CategoryID:  req.CategoryID,
		}
		updatePrice := false
		if req.Price != "" {
			price, err := decimal.NewFromString(req.Price)
			if err != nil || price.IsNegative() {
				c.JSON(http.StatusBadRequest, catalog.HTTPError{Error: "price must be a non-negative decimal"})
				return
			}
			p.Price = price
			updatePrice = true
		}
		if err := repo.Update(c.Request.Context(), p, updatePrice); err != nil {
			c.JSON(http.StatusInternalServerError, catalog.HTTPError{Error: "update failed"})
			return
		}
		out, err := repo.GetByID(c.Request.Context(), p.ID)
		if err != nil {
			c.JSON(http.StatusNotFound, catalog.HTTPError{Error: "product not found"})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func deleteProductHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, catalog.HTTPError{Error: "delete failed"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, catalog.HTTPError{Error: "product not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}

// setInventoryHandler is the admin absolute-quantity edit. Deltas backing
// orders go through the order repository, never through here.
func setInventoryHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.SetQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, catalog.HTTPError{Error: "invalid json"})
			return
		}
		if req.Quantity < 0 {
			c.JSON(http.StatusBadRequest, catalog.HTTPError{Error: "quantity must be non-negative"})
			return
		}
		if err := repo.SetQuantity(c.Request.Context(), c.Param("id"), req.Quantity); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				c.JSON(http.StatusNotFound, catalog.HTTPError{Error: "product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, catalog.HTTPError{Error: "update failed"})
			return
		}
		p, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, catalog.HTTPError{Error: "product not found"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func listCategoriesHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := repo.ListCategories(c.Request.Context(), c.Query("q"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, catalog.HTTPError{Error: "list failed"})
			return
		}
		if cats == nil {
			cats = []catalog.Category{}
		}
		c.JSON(http.StatusOK, gin.H{"items": cats})
	}
}

func createCategoryHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.CreateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, catalog.HTTPError{Error: "invalid json"})
			return
		}
		if req.Name == "" || req.Slug == "" {
			c.JSON(http.StatusBadRequest, catalog.HTTPError{Error: "name and slug are required"})
			return
		}
		cat := &catalog.Category{
			ID:          uuid.NewString(),
			Name:        req.Name,
			Slug:        req.Slug,
			Description: req.Description,
		}
		if err := repo.CreateCategory(c.Request.Context(), cat); err != nil {
			c.JSON(http.StatusInternalServerError, catalog.HTTPError{Error: "create failed"})
			return
		}
		c.JSON(http.StatusCreated, cat)
	}
}

func updateCategoryHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.CreateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, catalog.HTTPError{Error: "invalid json"})
			return
		}
		cat := &catalog.Category{
			ID:          c.Param("id"),
			Name:        req.Name,
			Slug:        req.Slug,
			Description: req.Description,
		}
		if err := repo.UpdateCategory(c.Request.Context(), cat); err != nil {
			if errors.Is(err, catalog.ErrCategoryNotFound) {
				c.JSON(http.StatusNotFound, catalog.HTTPError{Error: "category not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, catalog.HTTPError{Error: "update failed"})
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}

func deleteCategoryHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.DeleteCategory(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, catalog.HTTPError{Error: "delete failed"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, catalog.HTTPError{Error: "category not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
	}
}
