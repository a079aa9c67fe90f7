package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/moyshik7/ecommerce-website/internal/cache"
	"github.com/moyshik7/ecommerce-website/internal/models"
	"github.com/moyshik7/ecommerce-website/internal/repository"
	"github.com/moyshik7/ecommerce-website/internal/service"
)

type ProductHandler struct {
	repo  *repository.ProductRepository
	cache *cache.Cache
}

func NewProductHandler(repo *repository.ProductRepository, cache *cache.Cache) *ProductHandler {
	return &ProductHandler{repo: repo, cache: cache}
}

// POST /api/admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if product.Price < 0 || product.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price and stock cannot be negative"})
		return
	}
	if product.OriginalPrice != 0 && product.OriginalPrice < product.Price {
		c.JSON(http.StatusBadRequest, gin.H{"error": "original price cannot be below price"})
		return
	}

	if err := h.repo.Create(c.Request.Context(), &product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}

	h.cache.DeleteByPrefix("products:list:")

	c.JSON(http.StatusCreated, product)
}

// GET /api/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID := c.Param("id")
	cacheKey := fmt.Sprintf("product:%s", productID)

	if cached, found := h.cache.Get(cacheKey); found {
		c.JSON(http.StatusOK, cached)
		return
	}

	product, err := h.repo.FindByID(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get product"})
		return
	}

	h.cache.Set(cacheKey, product, 5*time.Minute)
	c.JSON(http.StatusOK, product)
}

// GET /api/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 && limit <= 100 {
		page, pageSize = 1, limit
	}

	query := repository.ProductQuery{
		Category:  c.Query("category"),
		Search:    c.Query("q"),
		Page:      page,
		PageSize:  pageSize,
		SortBy:    c.DefaultQuery("sort_by", "createdAt"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if featured := c.Query("featured"); featured != "" {
		value := featured == "true"
		query.Featured = &value
	}

	cacheKey := fmt.Sprintf("products:list:p%d_s%d_cat:%s_q:%s_f:%s_sort:%s_%s",
		query.Page, query.PageSize, query.Category, query.Search, c.Query("featured"), query.SortBy, query.SortOrder)

	if cached, found := h.cache.Get(cacheKey); found {
		c.JSON(http.StatusOK, cached)
		return
	}

	products, total, err := h.repo.FindAll(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}

	response := gin.H{
		"data":      products,
		"total":     total,
		"page":      query.Page,
		"page_size": query.PageSize,
	}

	h.cache.Set(cacheKey, response, 2*time.Minute)
	c.JSON(http.StatusOK, response)
}

// PATCH /api/admin/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	productID := c.Param("id")

	var update models.ProductUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updateMap := bson.M{}
	if update.Name != nil {
		updateMap["name"] = *update.Name
	}
	if update.Description != nil {
		updateMap["description"] = *update.Description
	}
	if update.Price != nil {
		updateMap["price"] = *update.Price
	}
	if update.OriginalPrice != nil {
		updateMap["originalPrice"] = *update.OriginalPrice
	}
	if update.Images != nil {
		updateMap["images"] = update.Images
	}
	if update.Category != nil {
		updateMap["category"] = *update.Category
	}
	if update.Stock != nil {
		if *update.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stock cannot be negative"})
			return
		}
		updateMap["stock"] = *update.Stock
	}
	if update.Featured != nil {
		updateMap["featured"] = *update.Featured
	}

	if len(updateMap) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid fields to update"})
		return
	}

	if err := h.repo.Update(c.Request.Context(), productID, updateMap); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}

	h.cache.Delete(fmt.Sprintf("product:%s", productID))
	h.cache.DeleteByPrefix("products:list:")

	c.JSON(http.StatusOK, gin.H{"message": "product updated"})
}

// DELETE /api/admin/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	productID := c.Param("id")

	if err := h.repo.Delete(c.Request.Context(), productID); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
		return
	}

	h.cache.Delete(fmt.Sprintf("product:%s", productID))
	h.cache.DeleteByPrefix("products:list:")

	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}
