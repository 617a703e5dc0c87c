package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
	case string:
		*j = append((*j)[0:0], v...)
	}
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// User roles. Student roles double as plan types.
const (
	RolAdmin           = "admin"
	RolProfesor        = "profesor"
	RolEscuelita       = "escuelita"
	RolPensionCompleta = "pension_completa"
	RolMediaPension    = "media_pension"
)

// User covers staff (admin, profesor) and students (alumnos).
type User struct {
	BaseModel
	Nombre   string `json:"nombre" gorm:"size:100;not null"`
	Apellido string `json:"apellido" gorm:"size:100"`
	Email    string `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Telefono string `json:"telefono" gorm:"size:30"`
	Password string `json:"-" gorm:"size:255;not null"`
	Rol      string `json:"rol" gorm:"size:30;not null;index"` // admin, profesor, escuelita, pension_completa, media_pension
	Activo   bool   `json:"activo" gorm:"default:true"`
	LineID   string `json:"line_id,omitempty" gorm:"size:100"`

	// Relationships
	Suscripciones []Suscripcion `json:"suscripciones,omitempty" gorm:"foreignKey:AlumnoID"`
}

// Plan is a subscription plan definition. Tipo matches a student role.
type Plan struct {
	BaseModel
	Nombre    string  `json:"nombre" gorm:"size:150;not null"`
	Tipo      string  `json:"tipo" gorm:"size:30;not null;index"`
	ClasesMes int     `json:"clases_mes" gorm:"not null"`
	Precio    float64 `json:"precio" gorm:"not null"`
	Activo    bool    `json:"activo" gorm:"default:true"`
}

// Suscripcion links a student to a plan for a billing period.
// FechaFin is nil for open-ended (pension) subscriptions.
type Suscripcion struct {
	BaseModel
	AlumnoID        uint       `json:"alumno_id" gorm:"not null;index"`
	PlanID          uint       `json:"plan_id" gorm:"not null;index"`
	FechaInicio     time.Time  `json:"fecha_inicio" gorm:"not null"`
	FechaFin        *time.Time `json:"fecha_fin"`
	ClasesIncluidas int        `json:"clases_incluidas"`
	ClasesUsadas    int        `json:"clases_usadas"`
	Activa          bool       `json:"activa" gorm:"default:true"`

	// Relationships
	Alumno *User `json:"alumno,omitempty" gorm:"foreignKey:AlumnoID"`
	Plan   *Plan `json:"planes,omitempty" gorm:"foreignKey:PlanID"`
}

// Horse types and condition states
const (
	CaballoEscuela   = "escuela"
	CaballoPrivado   = "privado"
	EstadoActivo     = "activo"
	EstadoDescanso   = "descanso"
	EstadoLesionado  = "lesionado"
	DefaultLimiteDia = 3
)

// Caballo model
type Caballo struct {
	BaseModel
	Nombre          string `json:"nombre" gorm:"size:100;not null"`
	Tipo            string `json:"tipo" gorm:"size:20;not null;default:'escuela'"`  // escuela, privado
	Estado          string `json:"estado" gorm:"size:20;not null;default:'activo'"` // activo, descanso, lesionado
	LimiteClasesDia int    `json:"limite_clases_dia" gorm:"default:3"`
	Activo          bool   `json:"activo" gorm:"default:true"`
	DuenoID         *uint  `json:"dueno_id"`

	// Relationships
	Dueno *User `json:"dueno,omitempty" gorm:"foreignKey:DuenoID"`
}

// Profesor model. The percentages drive the monthly payment calculation.
type Profesor struct {
	BaseModel
	UserID              uint    `json:"user_id" gorm:"uniqueIndex;not null"`
	Activo              bool    `json:"activo" gorm:"default:true"`
	PorcentajeEscuelita float64 `json:"porcentaje_escuelita" gorm:"default:0"`
	PorcentajePension   float64 `json:"porcentaje_pension" gorm:"default:0"`

	// Relationships
	User     *User             `json:"users,omitempty" gorm:"foreignKey:UserID"`
	Horarios []HorarioProfesor `json:"horarios,omitempty" gorm:"foreignKey:ProfesorID"`
}

// HorarioProfesor is a weekly availability window. DiaSemana: 0 = Sunday.
type HorarioProfesor struct {
	BaseModel
	ProfesorID uint   `json:"profesor_id" gorm:"not null;index"`
	DiaSemana  int    `json:"dia_semana" gorm:"not null"`
	HoraInicio string `json:"hora_inicio" gorm:"size:5;not null"` // HH:MM
	HoraFin    string `json:"hora_fin" gorm:"size:5;not null"`    // HH:MM
}

// Factura is a monthly invoice for a student.
type Factura struct {
	BaseModel
	AlumnoID         uint       `json:"alumno_id" gorm:"not null;index"`
	SuscripcionID    *uint      `json:"suscripcion_id"`
	Mes              int        `json:"mes" gorm:"not null"`
	Anio             int        `json:"año" gorm:"not null"`
	Monto            float64    `json:"monto" gorm:"not null"`
	FechaVencimiento time.Time  `json:"fecha_vencimiento"`
	Pagada           bool       `json:"pagada" gorm:"default:false"`
	FechaPago        *time.Time `json:"fecha_pago"`

	// Relationships
	Alumno *User `json:"alumno,omitempty" gorm:"foreignKey:AlumnoID"`
}

// Voucher states
const (
	ComprobantePendiente = "pendiente"
	ComprobanteAprobado  = "aprobado"
	ComprobanteRechazado = "rechazado"
)

// Comprobante is an uploaded payment voucher awaiting review.
type Comprobante struct {
	BaseModel
	FacturaID     uint       `json:"factura_id" gorm:"not null;index"`
	AlumnoID      uint       `json:"alumno_id" gorm:"not null;index"`
	ArchivoURL    string     `json:"archivo_url" gorm:"size:500;not null"`
	NombreArchivo string     `json:"nombre_archivo" gorm:"size:255"`
	TipoArchivo   string     `json:"tipo_archivo" gorm:"size:100"`
	Monto         float64    `json:"monto"`
	FechaSubida   time.Time  `json:"fecha_subida"`
	Estado        string     `json:"estado" gorm:"size:20;not null;default:'pendiente';index"` // pendiente, aprobado, rechazado
	Observaciones *string    `json:"observaciones" gorm:"type:text"`
	RevisadoPor   *uint      `json:"revisado_por"`
	FechaRevision *time.Time `json:"fecha_revision"`

	// Relationships
	Usuario *User    `json:"users,omitempty" gorm:"foreignKey:AlumnoID"`
	Factura *Factura `json:"facturas,omitempty" gorm:"foreignKey:FacturaID"`
}

// Class states and billing types
const (
	ClaseProgramada = "programada"
	ClaseCompletada = "completada"
	ClaseCancelada  = "cancelada"

	TipoClaseEscuelita = "escuelita"
	TipoClasePension   = "pension"
)

// Clase is a scheduled lesson of a student with a teacher and a horse.
type Clase struct {
	BaseModel
	AlumnoID   uint      `json:"alumno_id" gorm:"not null;index"`
	ProfesorID uint      `json:"profesor_id" gorm:"not null;index"`
	CaballoID  uint      `json:"caballo_id" gorm:"not null;index"`
	Fecha      time.Time `json:"fecha" gorm:"not null;index"`
	HoraInicio string    `json:"hora_inicio" gorm:"size:5;not null"`
	HoraFin    string    `json:"hora_fin" gorm:"size:5;not null"`
	Estado     string    `json:"estado" gorm:"size:20;not null;default:'programada'"` // programada, completada, cancelada
	Tipo       string    `json:"tipo" gorm:"size:20;not null"`                       // escuelita, pension

	// Relationships
	Alumno   *User     `json:"users,omitempty" gorm:"foreignKey:AlumnoID"`
	Profesor *Profesor `json:"profesores,omitempty" gorm:"foreignKey:ProfesorID"`
	Caballo  *Caballo  `json:"caballos,omitempty" gorm:"foreignKey:CaballoID"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`
}

// All lists every model handled by auto-migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Plan{},
		&Suscripcion{},
		&Caballo{},
		&Profesor{},
		&HorarioProfesor{},
		&Factura{},
		&Comprobante{},
		&Clase{},
		&ActivityLog{},
	}
}

func (Plan) TableName() string            { return "planes" }
func (Suscripcion) TableName() string     { return "suscripciones" }
func (Profesor) TableName() string        { return "profesores" }
func (HorarioProfesor) TableName() string { return "horarios_profesor" }
