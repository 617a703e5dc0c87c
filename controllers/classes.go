package controllers

import (
	"ecuestre_go/middleware"
	"ecuestre_go/services"
	"time"

	"github.com/gofiber/fiber/v2"
)

type ClassController struct {
	classes *services.ClassService
}

func NewClassController(classes *services.ClassService) *ClassController {
	return &ClassController{classes: classes}
}

type classStateRequest struct {
	Estado string `json:"estado" validate:"required,oneof=completada cancelada"`
}

// dateRange reads ?fecha_inicio and ?fecha_fin. Missing bounds default to
// the trailing month ending today.
func dateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	desde, hasta := today.AddDate(0, -1, 0), today
	if raw := c.Query("fecha_inicio"); raw != "" {
		d, err := services.ParseDate(raw)
		if err != nil {
			return desde, hasta, err
		}
		desde = d
	}
	if raw := c.Query("fecha_fin"); raw != "" {
		d, err := services.ParseDate(raw)
		if err != nil {
			return desde, hasta, err
		}
		hasta = d
	}
	return desde, hasta, nil
}

// GetAgenda lists the classes in a date range
func (cc *ClassController) GetAgenda(c *fiber.Ctx) error {
	desde, hasta, err := dateRange(c)
	if err != nil {
		return serviceError(c, err, "Fecha inválida")
	}
	classes, err := cc.classes.Agenda(desde, hasta)
	if err != nil {
		return serviceError(c, err, "Error al cargar agenda")
	}
	return c.JSON(classes)
}

func (cc *ClassController) GetClass(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	class, err := cc.classes.Get(id)
	if err != nil {
		return serviceError(c, err, "Error al cargar clase")
	}
	return c.JSON(class)
}

// CreateClass schedules a class after checking the horse and the teacher
func (cc *ClassController) CreateClass(c *fiber.Ctx) error {
	var req services.ClassInput
	if handled, err := parseBody(c, &req); handled {
		return err
	}
	class, err := cc.classes.Create(req)
	if err != nil {
		return serviceError(c, err, "Error al crear clase")
	}

	middleware.LogActivity(c, "CREATE", "clases", class.ID, req)
	return c.Status(fiber.StatusCreated).JSON(class)
}

// SetClassState completes or cancels a scheduled class
func (cc *ClassController) SetClassState(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req classStateRequest
	if handled, err := parseBody(c, &req); handled {
		return err
	}
	class, err := cc.classes.SetState(id, req.Estado)
	if err != nil {
		return serviceError(c, err, "Error al actualizar clase")
	}

	middleware.LogActivity(c, "UPDATE", "clases", class.ID, fiber.Map{"estado": class.Estado})
	return c.JSON(class)
}
