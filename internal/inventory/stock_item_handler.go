package inventory

import (
	"strings"

	"franchise-backend/internal/apperr"
	"franchise-backend/internal/auth"
	"franchise-backend/internal/database"
	"franchise-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListStockItemsHandler returns the franchise-wide catalog; every role can
// read it since request forms and inventory views all need the names.
func ListStockItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		franchiseID, err := auth.SessionFranchiseID(sess)
		if err != nil {
			return err
		}

		var items []models.StockItem
		if err := database.DB.Where("franchise_id = ?", franchiseID).
			Order("name ASC").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stock items could not be listed")
		}

		return c.JSON(items)
	}
}

type CreateStockItemRequest struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// CreateStockItemHandler adds a catalog entry. Franchisor only; item names
// are unique within the franchise.
func CreateStockItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := auth.CurrentSession(c)
		if err != nil {
			return err
		}

		var body CreateStockItemRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Invalid request body")
		}
		body.Name = strings.TrimSpace(body.Name)
		body.Unit = strings.TrimSpace(body.Unit)
		if body.Name == "" || body.Unit == "" {
			return apperr.Validation("name and unit are required")
		}

		franchiseID, err := auth.SessionFranchiseID(sess)
		if err != nil {
			return err
		}

		var count int64
		database.DB.Model(&models.StockItem{}).
			Where("franchise_id = ? AND LOWER(name) = LOWER(?)", franchiseID, body.Name).
			Count(&count)
		if count > 0 {
			return apperr.Conflict("A stock item with this name already exists")
		}

		item := models.StockItem{
			FranchiseID: franchiseID,
			Name:        body.Name,
			Unit:        body.Unit,
		}
		if err := database.DB.Create(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stock item could not be created")
		}

		return c.Status(fiber.StatusCreated).JSON(item)
	}
}
