package client

import (
	"ecuestre_go/models"
	"ecuestre_go/rules"
)

// Wire types of the API. They carry only what the panel sends or reads.

type Pagination struct {
	Page         int   `json:"page"`
	Limit        int   `json:"limit"`
	Total        int64 `json:"total"`
	TotalPaginas int   `json:"totalPaginas"`
}

type RosterPage struct {
	Alumnos    []models.User `json:"alumnos"`
	Paginacion Pagination    `json:"paginacion"`
}

type PlanInput struct {
	Nombre    string  `json:"nombre"`
	Tipo      string  `json:"tipo"`
	ClasesMes int     `json:"clases_mes"`
	Precio    float64 `json:"precio"`
	Activo    *bool   `json:"activo,omitempty"`
}

type assignRequest struct {
	PlanID uint `json:"plan_id"`
	Mes    int  `json:"mes"`
	Anio   int  `json:"año"`
}

type subscriptionUpdate struct {
	PlanID          uint `json:"plan_id"`
	Mes             int  `json:"mes"`
	Anio            int  `json:"año"`
	ClasesIncluidas int  `json:"clases_incluidas"`
	ClasesUsadas    int  `json:"clases_usadas"`
	Activa          bool `json:"activa"`
}

// TeacherInput creates or edits a teacher. On edit an empty Nombre keeps the
// profile and only the flags and percentages change.
type TeacherInput struct {
	Nombre              string         `json:"nombre,omitempty"`
	Apellido            string         `json:"apellido,omitempty"`
	Email               string         `json:"email,omitempty"`
	Telefono            string         `json:"telefono,omitempty"`
	Activo              *bool          `json:"activo,omitempty"`
	PorcentajeEscuelita *float64       `json:"porcentaje_escuelita,omitempty"`
	PorcentajePension   *float64       `json:"porcentaje_pension,omitempty"`
	Horarios            []rules.Window `json:"horarios"`
}

// CreatedTeacher carries the generated default password, returned only once.
type CreatedTeacher struct {
	Profesor *models.Profesor `json:"profesor"`
	Password string           `json:"password"`
}

type OccupancyRow struct {
	ID                uint   `json:"id"`
	Nombre            string `json:"nombre"`
	ClasesProgramadas int    `json:"clases_programadas"`
}

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
