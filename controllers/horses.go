package controllers

import (
	"ecuestre_go/middleware"
	"ecuestre_go/rules"
	"ecuestre_go/services"

	"github.com/gofiber/fiber/v2"
)

type HorseController struct {
	horses *services.HorseService
}

func NewHorseController(horses *services.HorseService) *HorseController {
	return &HorseController{horses: horses}
}

type horseStateRequest struct {
	Estado string `json:"estado" validate:"required"`
}

// GetHorses lists horses, optionally filtered by ?tipo and ?estado
func (hc *HorseController) GetHorses(c *fiber.Ctx) error {
	horses, err := hc.horses.List(c.Query("tipo"), c.Query("estado"))
	if err != nil {
		return serviceError(c, err, "Error al cargar caballos")
	}
	return c.JSON(horses)
}

func (hc *HorseController) GetHorse(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	horse, err := hc.horses.Get(id)
	if err != nil {
		return serviceError(c, err, "Error al cargar caballo")
	}
	return c.JSON(horse)
}

func (hc *HorseController) CreateHorse(c *fiber.Ctx) error {
	var req rules.HorseForm
	if handled, err := parseBody(c, &req); handled {
		return err
	}
	horse, err := hc.horses.Create(req)
	if err != nil {
		return serviceError(c, err, "Error al crear caballo")
	}

	middleware.LogActivity(c, "CREATE", "caballos", horse.ID, fiber.Map{"nombre": horse.Nombre, "tipo": horse.Tipo})
	return c.Status(fiber.StatusCreated).JSON(horse)
}

func (hc *HorseController) UpdateHorse(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req rules.HorseForm
	if handled, err := parseBody(c, &req); handled {
		return err
	}
	horse, err := hc.horses.Update(id, req)
	if err != nil {
		return serviceError(c, err, "Error al actualizar caballo")
	}

	middleware.LogActivity(c, "UPDATE", "caballos", horse.ID, req)
	return c.JSON(horse)
}

// SetHorseState moves a horse between activo, descanso and lesionado
func (hc *HorseController) SetHorseState(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req horseStateRequest
	if handled, err := parseBody(c, &req); handled {
		return err
	}
	horse, err := hc.horses.SetState(id, req.Estado)
	if err != nil {
		return serviceError(c, err, "Error al actualizar estado")
	}

	middleware.LogActivity(c, "UPDATE", "caballos", horse.ID, fiber.Map{"estado": horse.Estado})
	return c.JSON(horse)
}

func (hc *HorseController) DeleteHorse(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	if err := hc.horses.Delete(id); err != nil {
		return serviceError(c, err, "Error al eliminar caballo")
	}

	middleware.LogActivity(c, "DELETE", "caballos", id, nil)
	return c.JSON(fiber.Map{"message": "Caballo eliminado"})
}
