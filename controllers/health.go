package controllers

import (
	"ecuestre_go/services"

	"github.com/gofiber/fiber/v2"
)

// HealthController exposes the health endpoint.
type HealthController struct {
	service *services.HealthService
}

func NewHealthController(service *services.HealthService) *HealthController {
	return &HealthController{service: service}
}

// GetHealthStatus returns the aggregated health report.
func (hc *HealthController) GetHealthStatus(c *fiber.Ctx) error {
	report := hc.service.Report(c.UserContext())
	return c.Status(services.HTTPStatus(report.Status)).JSON(report)
}
