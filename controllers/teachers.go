package controllers

import (
	"ecuestre_go/middleware"
	"ecuestre_go/services"

	"github.com/gofiber/fiber/v2"
)

type TeacherController struct {
	teachers *services.TeacherService
}

func NewTeacherController(teachers *services.TeacherService) *TeacherController {
	return &TeacherController{teachers: teachers}
}

func (tc *TeacherController) GetTeachers(c *fiber.Ctx) error {
	teachers, err := tc.teachers.List()
	if err != nil {
		return serviceError(c, err, "Error al cargar profesores")
	}
	return c.JSON(teachers)
}

func (tc *TeacherController) GetTeacher(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	teacher, err := tc.teachers.Get(id)
	if err != nil {
		return serviceError(c, err, "Error al cargar profesor")
	}
	return c.JSON(teacher)
}

// CreateTeacher registers a teacher. The generated password is returned
// once so the admin can hand it over.
func (tc *TeacherController) CreateTeacher(c *fiber.Ctx) error {
	var req services.TeacherInput
	if handled, err := parseBody(c, &req); handled {
		return err
	}
	created, err := tc.teachers.Create(c.UserContext(), req)
	if err != nil {
		return serviceError(c, err, "Error al crear profesor")
	}

	middleware.LogActivity(c, "CREATE", "profesores", created.Profesor.ID, fiber.Map{"email": created.Profesor.User.Email})
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateTeacher edits a teacher. The email is immutable.
func (tc *TeacherController) UpdateTeacher(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req services.TeacherInput
	if handled, err := parseBody(c, &req); handled {
		return err
	}
	teacher, err := tc.teachers.Update(id, req)
	if err != nil {
		return serviceError(c, err, "Error al actualizar profesor")
	}

	middleware.LogActivity(c, "UPDATE", "profesores", teacher.ID, req)
	return c.JSON(teacher)
}

func (tc *TeacherController) DeleteTeacher(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	if err := tc.teachers.Delete(id); err != nil {
		return serviceError(c, err, "Error al eliminar profesor")
	}

	middleware.LogActivity(c, "DELETE", "profesores", id, nil)
	return c.JSON(fiber.Map{"message": "Profesor eliminado"})
}

// GetTeacherWindows returns the weekly availability; empty means always available
func (tc *TeacherController) GetTeacherWindows(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	windows, err := tc.teachers.Windows(id)
	if err != nil {
		return serviceError(c, err, "Error al cargar horarios")
	}
	return c.JSON(windows)
}
