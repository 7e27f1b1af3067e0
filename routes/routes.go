package routes

import (
	"github.com/gofiber/fiber/v2"

	"rfp-backend/controllers"
	"rfp-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App, vendors *controllers.VendorController, rfps *controllers.RFPController, proposals *controllers.ProposalController) {
	api := app.Group("/api")

	// Replay guard for mutating endpoints
	api.Use(middlewares.Idempotency())

	// Vendors
	api.Post("/vendors", vendors.Create)
	api.Get("/vendors", vendors.List)
	api.Get("/vendors/:id", vendors.Get)
	api.Put("/vendors/:id", vendors.Update)
	api.Delete("/vendors/:id", vendors.Delete)

	// RFPs
	api.Post("/rfps", rfps.Create)
	api.Get("/rfps", rfps.List)
	api.Get("/rfps/:id", rfps.Get)
	api.Post("/rfps/:id/send", rfps.Send)
	api.Put("/rfps/:id/status", rfps.UpdateStatus)
	api.Delete("/rfps/:id", rfps.Delete)

	// Proposals
	api.Get("/rfps/:rfpId/proposals", proposals.ListByRFP)
	api.Get("/rfps/:rfpId/compare", proposals.Compare)
	api.Post("/proposals/check-emails", proposals.CheckEmails)
}
