package controllers

import (
	"errors"
	"strings"

	"rfp-backend/middlewares"
	"rfp-backend/models"
	"rfp-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type VendorCreateDTO struct {
	Name           string `json:"name" validate:"required,min=2,max=255"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"omitempty,max=50"`
	Company        string `json:"company" validate:"omitempty,max=255"`
	Specialization string `json:"specialization" validate:"omitempty,max=255"`
}

type VendorUpdateDTO struct {
	Name           *string `json:"name" validate:"omitempty,min=2,max=255"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Phone          *string `json:"phone" validate:"omitempty,max=50"`
	Company        *string `json:"company" validate:"omitempty,max=255"`
	Specialization *string `json:"specialization" validate:"omitempty,max=255"`
}

type VendorController struct {
	db *gorm.DB
}

func NewVendorController(db *gorm.DB) *VendorController {
	return &VendorController{db: db}
}

// POST /api/vendors
func (vc *VendorController) Create(c *fiber.Ctx) error {
	var in VendorCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	// Email uniqueness is checked before create so the caller gets a clear
	// conflict instead of a bare constraint violation.
	var existing models.Vendor
	err := vc.db.Where("LOWER(email) = LOWER(?)", in.Email).First(&existing).Error
	if err == nil {
		return fiber.NewError(fiber.StatusConflict, "vendor with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	vendor := models.Vendor{
		Name:           in.Name,
		Email:          in.Email,
		Phone:          in.Phone,
		Company:        in.Company,
		Specialization: in.Specialization,
	}
	if err := vc.db.Create(&vendor).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create vendor")
	}
	return c.Status(fiber.StatusCreated).JSON(vendor)
}

// GET /api/vendors
func (vc *VendorController) List(c *fiber.Ctx) error {
	var vendors []models.Vendor
	if err := vc.db.Order("created_at DESC").Find(&vendors).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(vendors)
}

// GET /api/vendors/:id
func (vc *VendorController) Get(c *fiber.Ctx) error {
	var vendor models.Vendor
	if err := vc.db.First(&vendor, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "vendor not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(vendor)
}

// PUT /api/vendors/:id
func (vc *VendorController) Update(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))

	var in VendorUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	var existing models.Vendor
	if err := vc.db.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "vendor not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	if in.Email != nil && *in.Email != existing.Email {
		var other models.Vendor
		err := vc.db.Where("LOWER(email) = LOWER(?) AND id <> ?", *in.Email, id).First(&other).Error
		if err == nil {
			return fiber.NewError(fiber.StatusConflict, "another vendor with this email already exists")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusInternalServerError, "db error")
		}
	}

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) == 0 {
		return c.JSON(existing)
	}
	if err := vc.db.Model(&models.Vendor{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not update vendor")
	}

	var out models.Vendor
	if err := vc.db.First(&out, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload vendor")
	}
	return c.JSON(out)
}

// DELETE /api/vendors/:id
func (vc *VendorController) Delete(c *fiber.Ctx) error {
	id := c.Params("id")

	var vendor models.Vendor
	if err := vc.db.First(&vendor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "vendor not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	// Proposals keep a RESTRICT FK to vendors; a vendor with responses on
	// file cannot be removed.
	if err := vc.db.Delete(&vendor).Error; err != nil {
		return fiber.NewError(fiber.StatusConflict, "vendor has proposals and cannot be deleted")
	}
	return c.JSON(vendor)
}
