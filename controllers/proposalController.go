package controllers

import (
	"errors"
	"log"

	"rfp-backend/models"
	"rfp-backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProposalController struct {
	db  *gorm.DB
	svc *services.ProposalService
}

func NewProposalController(db *gorm.DB, svc *services.ProposalService) *ProposalController {
	return &ProposalController{db: db, svc: svc}
}

// GET /api/rfps/:rfpId/proposals
func (pc *ProposalController) ListByRFP(c *fiber.Ctx) error {
	var proposals []models.Proposal
	err := pc.db.Preload("Vendor").Where("rfp_id = ?", c.Params("rfpId")).
		Order("received_at DESC").Find(&proposals).Error
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(proposals)
}

// POST /api/proposals/check-emails
func (pc *ProposalController) CheckEmails(c *fiber.Ctx) error {
	result, err := pc.svc.CheckAndProcessEmails(c.Context())
	if err != nil {
		log.Printf("email check failed: %v", err)
		return fiber.NewError(fiber.StatusBadGateway, "email check failed")
	}
	return c.JSON(result)
}

// GET /api/rfps/:rfpId/compare
func (pc *ProposalController) Compare(c *fiber.Ctx) error {
	result, err := pc.svc.CompareProposals(c.Context(), c.Params("rfpId"))
	if err != nil {
		if errors.Is(err, services.ErrRFPNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "RFP not found")
		}
		log.Printf("comparison failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not compare proposals")
	}
	return c.JSON(result)
}
