package services

import (
	"bytes"
	"ecuestre_go/models"
	"ecuestre_go/rules"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// OccupancyRow is the number of scheduled classes of a horse or a teacher.
type OccupancyRow struct {
	ID                uint   `json:"id"`
	Nombre            string `json:"nombre"`
	ClasesProgramadas int    `json:"clases_programadas"`
}

// TeacherRef identifies a teacher inside a payment row.
type TeacherRef struct {
	ID       uint   `json:"id"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"email"`
}

// TeacherPayment is one teacher's pay for a month.
type TeacherPayment struct {
	ProfesorID          uint       `json:"profesor_id"`
	Mes                 int        `json:"mes"`
	Anio                int        `json:"año"`
	TotalEscuelita      float64    `json:"total_escuelita"`
	TotalPension        float64    `json:"total_pension"`
	ClasesEscuelita     int        `json:"clases_escuelita"`
	ClasesPension       int        `json:"clases_pension"`
	PorcentajeEscuelita float64    `json:"porcentaje_escuelita"`
	PorcentajePension   float64    `json:"porcentaje_pension"`
	PagoEscuelita       float64    `json:"pago_escuelita"`
	PagoPension         float64    `json:"pago_pension"`
	PagoTotal           float64    `json:"pago_total"`
	Profesor            TeacherRef `json:"profesor"`
}

type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

type occupancyCount struct {
	RefID uint
	Total int
}

// HorseOccupancy counts the non-cancelled classes of every horse between
// two dates, both inclusive.
func (s *ReportService) HorseOccupancy(desde, hasta time.Time) ([]OccupancyRow, error) {
	counts, err := s.countClasses("caballo_id", desde, hasta)
	if err != nil {
		return nil, err
	}
	var horses []models.Caballo
	if err := s.db.Order("nombre ASC").Find(&horses).Error; err != nil {
		return nil, err
	}
	rows := make([]OccupancyRow, 0, len(horses))
	for _, h := range horses {
		rows = append(rows, OccupancyRow{ID: h.ID, Nombre: h.Nombre, ClasesProgramadas: counts[h.ID]})
	}
	return rows, nil
}

// TeacherOccupancy counts the non-cancelled classes of every teacher.
func (s *ReportService) TeacherOccupancy(desde, hasta time.Time) ([]OccupancyRow, error) {
	counts, err := s.countClasses("profesor_id", desde, hasta)
	if err != nil {
		return nil, err
	}
	var teachers []models.Profesor
	if err := s.db.Preload("User").Order("id ASC").Find(&teachers).Error; err != nil {
		return nil, err
	}
	rows := make([]OccupancyRow, 0, len(teachers))
	for _, t := range teachers {
		rows = append(rows, OccupancyRow{ID: t.ID, Nombre: fullName(t.User), ClasesProgramadas: counts[t.ID]})
	}
	return rows, nil
}

func (s *ReportService) countClasses(column string, desde, hasta time.Time) (map[uint]int, error) {
	if hasta.Before(desde) {
		return nil, invalidf("La fecha de fin debe ser posterior a la de inicio")
	}
	var results []occupancyCount
	err := s.db.Model(&models.Clase{}).
		Select(column+" AS ref_id, COUNT(*) AS total").
		Where("fecha >= ? AND fecha <= ? AND estado <> ?", desde, hasta, models.ClaseCancelada).
		Group(column).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int, len(results))
	for _, r := range results {
		counts[r.RefID] = r.Total
	}
	return counts, nil
}

// TeacherPayments computes what each teacher earns for the completed classes
// of a month. A class is worth the price of the student's plan divided by
// the plan's classes per month; each teacher keeps their percentage of it.
func (s *ReportService) TeacherPayments(mes, anio int) ([]TeacherPayment, error) {
	if mes < 1 || mes > 12 {
		return nil, invalid(rules.ErrInvalidMonth)
	}
	desde := time.Date(anio, time.Month(mes), 1, 0, 0, 0, 0, time.UTC)
	hasta := rules.LastDayOfMonth(desde)

	var teachers []models.Profesor
	if err := s.db.Preload("User").Order("id ASC").Find(&teachers).Error; err != nil {
		return nil, err
	}

	var classes []models.Clase
	err := s.db.
		Where("fecha >= ? AND fecha <= ? AND estado = ?", desde, hasta, models.ClaseCompletada).
		Find(&classes).Error
	if err != nil {
		return nil, err
	}

	alumnoIDs := make([]uint, 0, len(classes))
	seen := map[uint]bool{}
	for _, c := range classes {
		if !seen[c.AlumnoID] {
			seen[c.AlumnoID] = true
			alumnoIDs = append(alumnoIDs, c.AlumnoID)
		}
	}
	subsByStudent := map[uint][]models.Suscripcion{}
	if len(alumnoIDs) > 0 {
		var subs []models.Suscripcion
		err := s.db.Preload("Plan").
			Where("alumno_id IN ?", alumnoIDs).
			Order("fecha_inicio DESC, id DESC").
			Find(&subs).Error
		if err != nil {
			return nil, err
		}
		for _, sub := range subs {
			subsByStudent[sub.AlumnoID] = append(subsByStudent[sub.AlumnoID], sub)
		}
	}

	byTeacher := make(map[uint]*TeacherPayment, len(teachers))
	payments := make([]TeacherPayment, len(teachers))
	for i, t := range teachers {
		payments[i] = TeacherPayment{
			ProfesorID:          t.ID,
			Mes:                 mes,
			Anio:                anio,
			PorcentajeEscuelita: t.PorcentajeEscuelita,
			PorcentajePension:   t.PorcentajePension,
			Profesor:            teacherRef(t),
		}
		byTeacher[t.ID] = &payments[i]
	}

	for _, c := range classes {
		p, ok := byTeacher[c.ProfesorID]
		if !ok {
			continue
		}
		value := 0.0
		if sub := pickCovering(subsByStudent[c.AlumnoID], c.Fecha); sub != nil && sub.Plan != nil {
			value = rules.ClassValue(sub.Plan.Precio, sub.Plan.ClasesMes)
		}
		if c.Tipo == models.TipoClasePension {
			p.ClasesPension++
			p.TotalPension += value
		} else {
			p.ClasesEscuelita++
			p.TotalEscuelita += value
		}
	}

	for i := range payments {
		p := &payments[i]
		p.PagoEscuelita = rules.Percentage(p.TotalEscuelita, p.PorcentajeEscuelita)
		p.PagoPension = rules.Percentage(p.TotalPension, p.PorcentajePension)
		p.PagoTotal = rules.PaymentTotal(p.PagoEscuelita, p.PagoPension)
	}
	return payments, nil
}

// ExportPayments renders the monthly payment report as an XLSX workbook.
func (s *ReportService) ExportPayments(mes, anio int) ([]byte, error) {
	payments, err := s.TeacherPayments(mes, anio)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("Pagos %02d-%d", mes, anio)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	header := []interface{}{
		"Profesor", "Email",
		"Clases escuelita", "Total escuelita", "% escuelita", "Pago escuelita",
		"Clases pensión", "Total pensión", "% pensión", "Pago pensión",
		"Pago total",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, p := range payments {
		row := []interface{}{
			strings.TrimSpace(p.Profesor.Nombre + " " + p.Profesor.Apellido), p.Profesor.Email,
			p.ClasesEscuelita, p.TotalEscuelita, p.PorcentajeEscuelita, p.PagoEscuelita,
			p.ClasesPension, p.TotalPension, p.PorcentajePension, p.PagoPension,
			p.PagoTotal,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	totals := rules.SumPayments(payments,
		func(p TeacherPayment) float64 { return p.PagoEscuelita },
		func(p TeacherPayment) float64 { return p.PagoPension },
	)
	footer := []interface{}{"Totales", "", "", "", "", totals.Escuelita, "", "", "", totals.Pension, totals.General}
	cell, _ := excelize.CoordinatesToCellName(1, len(payments)+2)
	if err := f.SetSheetRow(sheet, cell, &footer); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func teacherRef(t models.Profesor) TeacherRef {
	ref := TeacherRef{ID: t.ID}
	if t.User != nil {
		ref.Nombre = t.User.Nombre
		ref.Apellido = t.User.Apellido
		ref.Email = t.User.Email
	}
	return ref
}

func fullName(u *models.User) string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.Nombre + " " + u.Apellido)
}
