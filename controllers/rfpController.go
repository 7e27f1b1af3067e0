package controllers

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"rfp-backend/middlewares"
	"rfp-backend/models"
	"rfp-backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RFPCreateDTO struct {
	// Free-form description of the procurement need; the extraction
	// collaborator turns it into a structured draft.
	Description string `json:"description" validate:"required,min=10,max=2000"`
}

type RFPSendDTO struct {
	VendorIds []string `json:"vendor_ids" validate:"required,min=1,dive,required"`
}

type RFPStatusDTO struct {
	Status string `json:"status" validate:"required,oneof=draft sent completed"`
}

type RFPController struct {
	db   *gorm.DB
	ai   *services.AIService
	mail *services.MailService
}

func NewRFPController(db *gorm.DB, ai *services.AIService, mail *services.MailService) *RFPController {
	return &RFPController{db: db, ai: ai, mail: mail}
}

// POST /api/rfps
func (rc *RFPController) Create(c *fiber.Ctx) error {
	var in RFPCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	parsed, err := rc.ai.ParseRFP(c.Context(), strings.TrimSpace(in.Description), time.Now())
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "could not parse procurement description")
	}

	itemsJSON, err := json.Marshal(parsed.Items)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not encode items")
	}

	var deadline *time.Time
	if parsed.Deadline != nil {
		if d, err := time.Parse("2006-01-02", *parsed.Deadline); err == nil {
			deadline = &d
		}
	}

	rfp := models.RFP{
		Title:        parsed.Title,
		Description:  parsed.Description,
		Budget:       parsed.Budget,
		Deadline:     deadline,
		Items:        itemsJSON,
		PaymentTerms: parsed.PaymentTerms,
		Warranty:     parsed.Warranty,
		Status:       models.RFPStatusDraft,
	}
	if err := rc.db.Create(&rfp).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create RFP")
	}
	return c.Status(fiber.StatusCreated).JSON(rfp)
}

// GET /api/rfps
func (rc *RFPController) List(c *fiber.Ctx) error {
	var rfps []models.RFP
	if err := rc.db.Preload("SentVendors").Order("created_at DESC").Find(&rfps).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(rfps)
}

// GET /api/rfps/:id
func (rc *RFPController) Get(c *fiber.Ctx) error {
	var rfp models.RFP
	if err := rc.db.Preload("SentVendors").First(&rfp, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "RFP not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(rfp)
}

// POST /api/rfps/:id/send
func (rc *RFPController) Send(c *fiber.Ctx) error {
	id := c.Params("id")

	var in RFPSendDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	var rfp models.RFP
	if err := rc.db.First(&rfp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "RFP not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	var vendors []models.Vendor
	if err := rc.db.Where("id IN ?", in.VendorIds).Find(&vendors).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	if len(vendors) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no valid vendors found")
	}

	if err := rc.mail.SendRFP(&rfp, vendors); err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "failed to send RFP emails")
	}

	// Record dispatched vendors (append-only, duplicates ignored) and
	// advance the lifecycle; a sent RFP never drops back to draft.
	err := rc.db.Transaction(func(tx *gorm.DB) error {
		for _, vendor := range vendors {
			row := models.RFPVendor{RFPId: rfp.Id, VendorId: vendor.Id}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
				return err
			}
		}
		if models.AllowedRFPTransition(rfp.Status, models.RFPStatusSent) && rfp.Status != models.RFPStatusCompleted {
			if err := tx.Model(&models.RFP{}).Where("id = ?", rfp.Id).
				Update("status", models.RFPStatusSent).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not record sent vendors")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(vendors),
		"message": "RFP sent to vendors successfully",
	})
}

// PUT /api/rfps/:id/status
func (rc *RFPController) UpdateStatus(c *fiber.Ctx) error {
	id := c.Params("id")

	var in RFPStatusDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	var rfp models.RFP
	if err := rc.db.First(&rfp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "RFP not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	if !models.AllowedRFPTransition(rfp.Status, in.Status) {
		return fiber.NewError(fiber.StatusBadRequest, "status cannot move backwards")
	}

	if err := rc.db.Model(&rfp).Update("status", in.Status).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not update RFP status")
	}
	return c.JSON(rfp)
}

// DELETE /api/rfps/:id
func (rc *RFPController) Delete(c *fiber.Ctx) error {
	var rfp models.RFP
	if err := rc.db.First(&rfp, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "RFP not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	if err := rc.db.Delete(&rfp).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not delete RFP")
	}
	return c.JSON(rfp)
}
