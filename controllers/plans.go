package controllers

import (
	"ecuestre_go/middleware"
	"ecuestre_go/services"

	"github.com/gofiber/fiber/v2"
)

type PlanController struct {
	plans *services.PlanService
}

func NewPlanController(plans *services.PlanService) *PlanController {
	return &PlanController{plans: plans}
}

// GetPlans lists every plan; ?activo=true hides retired ones
func (pc *PlanController) GetPlans(c *fiber.Ctx) error {
	plans, err := pc.plans.List(c.QueryBool("activo", false))
	if err != nil {
		return serviceError(c, err, "Error al cargar planes")
	}
	return c.JSON(plans)
}

func (pc *PlanController) GetPlan(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	plan, err := pc.plans.Get(id)
	if err != nil {
		return serviceError(c, err, "Error al cargar plan")
	}
	return c.JSON(plan)
}

func (pc *PlanController) CreatePlan(c *fiber.Ctx) error {
	var req services.PlanInput
	if handled, err := parseBody(c, &req); handled {
		return err
	}
	plan, err := pc.plans.Create(req)
	if err != nil {
		return serviceError(c, err, "Error al crear plan")
	}

	middleware.LogActivity(c, "CREATE", "planes", plan.ID, fiber.Map{"nombre": plan.Nombre, "tipo": plan.Tipo})
	return c.Status(fiber.StatusCreated).JSON(plan)
}

func (pc *PlanController) UpdatePlan(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req services.PlanInput
	if handled, err := parseBody(c, &req); handled {
		return err
	}
	plan, err := pc.plans.Update(id, req)
	if err != nil {
		return serviceError(c, err, "Error al actualizar plan")
	}

	middleware.LogActivity(c, "UPDATE", "planes", plan.ID, req)
	return c.JSON(plan)
}

func (pc *PlanController) DeletePlan(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	if err := pc.plans.Delete(id); err != nil {
		return serviceError(c, err, "Error al eliminar plan")
	}

	middleware.LogActivity(c, "DELETE", "planes", id, nil)
	return c.JSON(fiber.Map{"message": "Plan eliminado"})
}
