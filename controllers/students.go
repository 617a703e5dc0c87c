package controllers

import (
	"ecuestre_go/middleware"
	"ecuestre_go/services"

	"github.com/gofiber/fiber/v2"
)

// StudentController serves the student roster and the per-student
// subscription endpoints.
type StudentController struct {
	roster        *services.RosterService
	subscriptions *services.SubscriptionService
}

func NewStudentController(roster *services.RosterService, subscriptions *services.SubscriptionService) *StudentController {
	return &StudentController{roster: roster, subscriptions: subscriptions}
}

type blockRequest struct {
	Activo *bool `json:"activo" validate:"required"`
}

// GetStudents returns a page of students
func (sc *StudentController) GetStudents(c *fiber.Ctx) error {
	activo, err := queryBool(c, "activo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Filtro activo inválido"})
	}
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Página inválida"})
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Límite inválido"})
	}

	result, err := sc.roster.List(services.RosterFilter{
		Activo: activo,
		Rol:    c.Query("rol"),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return serviceError(c, err, "Error al cargar alumnos")
	}
	return c.JSON(result)
}

func (sc *StudentController) GetStudent(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	student, err := sc.roster.Student(id)
	if err != nil {
		return serviceError(c, err, "Error al cargar alumno")
	}
	return c.JSON(student)
}

// SetBlocked blocks or unblocks a student
func (sc *StudentController) SetBlocked(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req blockRequest
	if handled, err := parseBody(c, &req); handled {
		return err
	}

	student, err := sc.roster.SetActive(id, *req.Activo)
	if err != nil {
		return serviceError(c, err, "Error al actualizar alumno")
	}

	middleware.LogActivity(c, "UPDATE", "alumnos", student.ID, fiber.Map{"activo": student.Activo})
	return c.JSON(student)
}

// GetOwners lists the students that may own a private horse
func (sc *StudentController) GetOwners(c *fiber.Ctx) error {
	owners, err := sc.roster.Owners()
	if err != nil {
		return serviceError(c, err, "Error al cargar dueños")
	}
	return c.JSON(owners)
}

// AssignSubscription assigns a plan to a student for a month
func (sc *StudentController) AssignSubscription(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req services.AssignInput
	if handled, err := parseBody(c, &req); handled {
		return err
	}

	sub, err := sc.subscriptions.Assign(id, req)
	if err != nil {
		return serviceError(c, err, "Error al asignar suscripción")
	}

	middleware.LogActivity(c, "CREATE", "suscripciones", sub.ID, fiber.Map{
		"alumno_id": id,
		"plan_id":   sub.PlanID,
		"mes":       req.Mes,
		"año":       req.Anio,
	})
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// GetSubscriptions lists the subscriptions of a student, newest first
func (sc *StudentController) GetSubscriptions(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	subs, err := sc.subscriptions.ListForStudent(id)
	if err != nil {
		return serviceError(c, err, "Error al cargar suscripciones")
	}
	return c.JSON(subs)
}
