package sales

import (
	"strings"

	"franchise-backend/internal/apperr"
	"franchise-backend/internal/auth"
	"franchise-backend/internal/database"
	"franchise-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListProductsHandler returns the sellable catalog for the caller's
// franchise. ?all=true includes discontinued products (franchisor view).
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		franchiseID, err := auth.SessionFranchiseID(sess)
		if err != nil {
			return err
		}

		query := database.DB.Where("franchise_id = ?", franchiseID)
		if !c.QueryBool("all", false) {
			query = query.Where("is_active = true")
		}

		var products []models.Product
		if err := query.Order("name ASC").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Products could not be listed")
		}

		return c.JSON(products)
	}
}

type CreateProductRequest struct {
	Name        string  `json:"name"`
	BasePrice   float64 `json:"base_price"`
	StockItemID *uint   `json:"stock_item_id"`
}

// CreateProductHandler adds a catalog entry with its network price.
// Franchisor only. A stock_item_id link makes sales of the product deduct
// branch inventory.
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Invalid request body")
		}
		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return apperr.Validation("name is required")
		}
		if body.BasePrice <= 0 {
			return apperr.Validation("base_price must be positive")
		}

		franchiseID, err := auth.SessionFranchiseID(sess)
		if err != nil {
			return err
		}

		if body.StockItemID != nil {
			var item models.StockItem
			if err := database.DB.First(&item, "id = ? AND franchise_id = ?", *body.StockItemID, franchiseID).Error; err != nil {
				return apperr.NotFound("Stock item")
			}
		}

		var count int64
		database.DB.Model(&models.Product{}).
			Where("franchise_id = ? AND LOWER(name) = LOWER(?)", franchiseID, body.Name).
			Count(&count)
		if count > 0 {
			return apperr.Conflict("A product with this name already exists")
		}

		product := models.Product{
			FranchiseID: franchiseID,
			Name:        body.Name,
			BasePrice:   body.BasePrice,
			StockItemID: body.StockItemID,
			IsActive:    true,
		}
		if err := database.DB.Create(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Product could not be created")
		}

		return c.Status(fiber.StatusCreated).JSON(product)
	}
}
