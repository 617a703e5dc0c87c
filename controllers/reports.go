package controllers

import (
	"ecuestre_go/middleware"
	"ecuestre_go/rules"
	"ecuestre_go/services"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportController serves occupancy statistics and teacher payments.
type ReportController struct {
	reports *services.ReportService
}

func NewReportController(reports *services.ReportService) *ReportController {
	return &ReportController{reports: reports}
}

// GetHorseOccupancy counts the scheduled classes of every horse
func (rc *ReportController) GetHorseOccupancy(c *fiber.Ctx) error {
	desde, hasta, err := dateRange(c)
	if err != nil {
		return serviceError(c, err, "Fecha inválida")
	}
	rows, err := rc.reports.HorseOccupancy(desde, hasta)
	if err != nil {
		return serviceError(c, err, "Error al cargar ocupación")
	}
	return c.JSON(rows)
}

// GetTeacherOccupancy counts the scheduled classes of every teacher
func (rc *ReportController) GetTeacherOccupancy(c *fiber.Ctx) error {
	desde, hasta, err := dateRange(c)
	if err != nil {
		return serviceError(c, err, "Fecha inválida")
	}
	rows, err := rc.reports.TeacherOccupancy(desde, hasta)
	if err != nil {
		return serviceError(c, err, "Error al cargar ocupación")
	}
	return c.JSON(rows)
}

// period reads ?mes and ?año, defaulting to the current month.
func period(c *fiber.Ctx) (int, int, error) {
	mes, anio := rules.MonthOf(time.Now().UTC())
	var err error
	if mes, err = queryInt(c, "mes", mes); err != nil || mes < 1 || mes > 12 {
		return 0, 0, rules.ErrInvalidMonth
	}
	yearKey := "año"
	if c.Query(yearKey) == "" {
		yearKey = "anio"
	}
	if anio, err = queryInt(c, yearKey, anio); err != nil || anio < 1 {
		return 0, 0, rules.ErrInvalidYear
	}
	return mes, anio, nil
}

// GetTeacherPayments computes what each teacher earns in a month
func (rc *ReportController) GetTeacherPayments(c *fiber.Ctx) error {
	mes, anio, err := period(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	payments, err := rc.reports.TeacherPayments(mes, anio)
	if err != nil {
		return serviceError(c, err, "Error al calcular pagos")
	}
	return c.JSON(payments)
}

// ExportTeacherPayments downloads the monthly payments as a spreadsheet
func (rc *ReportController) ExportTeacherPayments(c *fiber.Ctx) error {
	mes, anio, err := period(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	data, err := rc.reports.ExportPayments(mes, anio)
	if err != nil {
		return serviceError(c, err, "Error al exportar pagos")
	}

	middleware.LogActivity(c, "EXPORT", "pagos-profesores", 0, fiber.Map{"mes": mes, "año": anio})
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="pagos-profesores-%d-%02d.xlsx"`, anio, mes))
	return c.Send(data)
}
