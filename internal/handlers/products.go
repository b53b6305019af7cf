package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/kopipos/internal/models"
	"github.com/example/kopipos/internal/services"
	"github.com/example/kopipos/internal/utils"
)

// ProductHandler manages the menu: products and their variants.
type ProductHandler struct {
	db    *gorm.DB
	cache *services.Cache
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB, cache *services.Cache) *ProductHandler {
	return &ProductHandler{db: db, cache: cache}
}

type variantRequest struct {
	Label             string          `json:"label"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	SKU               string          `json:"sku"`
	Stock             int             `json:"stock"`
	LowStockThreshold int             `json:"lowStockThreshold"`
}

type productRequest struct {
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	ImageURL    string           `json:"imageUrl"`
	IsActive    *bool            `json:"isActive"`
	Variants    []variantRequest `json:"variants"`
}

func (r *productRequest) validate() error {
	if len(r.Name) < 2 || r.Category == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name and category are required")
	}
	for _, v := range r.Variants {
		if v.Label == "" {
			return fiber.NewError(fiber.StatusBadRequest, "variant label is required")
		}
		if v.Price.IsNegative() || v.Cost.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "price and cost cannot be negative")
		}
		if v.Stock < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "stock cannot be negative")
		}
	}
	return nil
}

// uniqueSKU generates a SKU and verifies it against the variants table,
// retrying a few times before falling back to a timestamp form.
func (h *ProductHandler) uniqueSKU() (string, error) {
	for attempt := 0; attempt < 20; attempt++ {
		sku := utils.GenerateSKU()
		var count int64
		if err := h.db.Model(&models.Variant{}).Where("sku = ?", sku).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return sku, nil
		}
	}
	return utils.FallbackSKU(), nil
}

func (h *ProductHandler) buildVariant(req variantRequest) (models.Variant, error) {
	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		generated, err := h.uniqueSKU()
		if err != nil {
			return models.Variant{}, err
		}
		sku = generated
	}
	return models.Variant{
		Label:             req.Label,
		Price:             req.Price,
		Cost:              req.Cost,
		SKU:               &sku,
		Stock:             req.Stock,
		LowStockThreshold: req.LowStockThreshold,
	}, nil
}

// ListProducts returns products with variants, optionally filtered by
// category. Served through the catalog cache when no filter is applied.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	category := strings.TrimSpace(c.Query("category"))

	if category == "" {
		var cached []models.Product
		if h.cache.GetJSON(c.Context(), services.ProductListCacheKey, &cached) {
			return c.JSON(fiber.Map{"products": cached})
		}
	}

	query := h.db.Model(&models.Product{})
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var products []models.Product
	if err := query.Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("variants.created_at asc")
	}).Order("created_at desc").Find(&products).Error; err != nil {
		return err
	}

	if category == "" {
		h.cache.SetJSON(c.Context(), services.ProductListCacheKey, products)
	}

	return c.JSON(fiber.Map{"products": products})
}

// ListCategories returns the distinct product categories.
func (h *ProductHandler) ListCategories(c *fiber.Ctx) error {
	var cached []string
	if h.cache.GetJSON(c.Context(), services.CategoryCacheKey, &cached) {
		return c.JSON(fiber.Map{"categories": cached})
	}

	var categories []string
	if err := h.db.Model(&models.Product{}).
		Distinct("category").
		Order("category asc").
		Pluck("category", &categories).Error; err != nil {
		return err
	}

	h.cache.SetJSON(c.Context(), services.CategoryCacheKey, categories)
	return c.JSON(fiber.Map{"categories": categories})
}

// GetProduct returns a single product with variants.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.Preload("Variants").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"product": product})
}

// CreateProduct persists a product together with its initial variants.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	product := models.Product{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	for _, v := range req.Variants {
		variant, err := h.buildVariant(v)
		if err != nil {
			return err
		}
		product.Variants = append(product.Variants, variant)
	}

	if err := h.db.Create(&product).Error; err != nil {
		if _, ok := uniqueViolation(err); ok {
			return fiber.NewError(fiber.StatusConflict, "Product name or SKU already exists")
		}
		return err
	}

	h.cache.InvalidateCatalog(c.Context())
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"product": product})
}

// UpdateProduct changes product-level fields; variants have their own
// endpoints.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"category":    req.Category,
		"description": req.Description,
		"image_url":   req.ImageURL,
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := h.db.Model(&product).Updates(updates).Error; err != nil {
		if _, ok := uniqueViolation(err); ok {
			return fiber.NewError(fiber.StatusConflict, "Product name already exists")
		}
		return err
	}

	h.cache.InvalidateCatalog(c.Context())
	return c.JSON(fiber.Map{"product": product})
}

// DeleteProduct removes a product and its variants.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Variant{}, "product_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	}); err != nil {
		return err
	}

	h.cache.InvalidateCatalog(c.Context())
	return c.JSON(fiber.Map{"ok": true})
}

// AddVariant attaches a new variant to a product.
func (h *ProductHandler) AddVariant(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return err
	}

	var req variantRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Label == "" {
		return fiber.NewError(fiber.StatusBadRequest, "variant label is required")
	}
	if req.Price.IsNegative() || req.Cost.IsNegative() || req.Stock < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "price, cost and stock cannot be negative")
	}

	variant, err := h.buildVariant(req)
	if err != nil {
		return err
	}
	variant.ProductID = productID

	if err := h.db.Create(&variant).Error; err != nil {
		if _, ok := uniqueViolation(err); ok {
			return fiber.NewError(fiber.StatusConflict, "SKU already exists")
		}
		return err
	}

	h.cache.InvalidateCatalog(c.Context())
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"variant": variant})
}

// UpdateVariant changes label, pricing, SKU and threshold. Stock has its own
// endpoint so every change goes through the movement ledger or the explicit
// set/delta patch.
func (h *ProductHandler) UpdateVariant(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("variantId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var variant models.Variant
	if err := h.db.First(&variant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Variant not found")
		}
		return err
	}

	var req variantRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Price.IsNegative() || req.Cost.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "price and cost cannot be negative")
	}

	updates := map[string]interface{}{
		"price":               req.Price,
		"cost":                req.Cost,
		"low_stock_threshold": req.LowStockThreshold,
	}
	if req.Label != "" {
		updates["label"] = req.Label
	}
	if sku := strings.TrimSpace(req.SKU); sku != "" {
		updates["sku"] = sku
	}

	if err := h.db.Model(&variant).Updates(updates).Error; err != nil {
		if _, ok := uniqueViolation(err); ok {
			return fiber.NewError(fiber.StatusConflict, "SKU already exists")
		}
		return err
	}

	h.cache.InvalidateCatalog(c.Context())
	return c.JSON(fiber.Map{"variant": variant})
}

// DeleteVariant removes a variant.
func (h *ProductHandler) DeleteVariant(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("variantId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.Variant{}, "id = ?", id).Error; err != nil {
		return err
	}

	h.cache.InvalidateCatalog(c.Context())
	return c.JSON(fiber.Map{"ok": true})
}

type stockPatchRequest struct {
	Set   *int `json:"set"`
	Delta *int `json:"delta"`
}

// PatchStock sets or shifts a variant's stock directly (admin correction).
// The result is clamped at zero.
func (h *ProductHandler) PatchStock(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("variantId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req stockPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Set == nil && req.Delta == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Provide set or delta")
	}
	if req.Set != nil && *req.Set < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "stock cannot be negative")
	}

	var variant models.Variant
	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&variant, "id = ?", id).Error; err != nil {
			return err
		}
		newStock := variant.Stock
		if req.Set != nil {
			newStock = *req.Set
		} else {
			newStock += *req.Delta
			if newStock < 0 {
				newStock = 0
			}
		}
		return tx.Model(&variant).Update("stock", newStock).Error
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Variant not found")
		}
		return err
	}

	h.cache.InvalidateCatalog(c.Context())
	return c.JSON(fiber.Map{"variant": variant})
}
