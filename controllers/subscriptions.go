package controllers

import (
	"ecuestre_go/middleware"
	"ecuestre_go/services"

	"github.com/gofiber/fiber/v2"
)

type SubscriptionController struct {
	subscriptions *services.SubscriptionService
}

func NewSubscriptionController(subscriptions *services.SubscriptionService) *SubscriptionController {
	return &SubscriptionController{subscriptions: subscriptions}
}

func (sc *SubscriptionController) GetSubscription(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	sub, err := sc.subscriptions.Get(id)
	if err != nil {
		return serviceError(c, err, "Error al cargar suscripción")
	}
	return c.JSON(sub)
}

// UpdateSubscription edits plan, period, class counters or the active flag
func (sc *SubscriptionController) UpdateSubscription(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req services.UpdateSubscriptionInput
	if handled, err := parseBody(c, &req); handled {
		return err
	}

	sub, err := sc.subscriptions.Update(id, req)
	if err != nil {
		return serviceError(c, err, "Error al actualizar suscripción")
	}

	middleware.LogActivity(c, "UPDATE", "suscripciones", sub.ID, req)
	return c.JSON(sub)
}

func (sc *SubscriptionController) DeleteSubscription(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	if err := sc.subscriptions.Delete(id); err != nil {
		return serviceError(c, err, "Error al eliminar suscripción")
	}

	middleware.LogActivity(c, "DELETE", "suscripciones", id, nil)
	return c.JSON(fiber.Map{"message": "Suscripción eliminada"})
}
