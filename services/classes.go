package services

import (
	"ecuestre_go/models"
	"ecuestre_go/rules"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ClassInput schedules a class.
type ClassInput struct {
	AlumnoID   uint   `json:"alumno_id" validate:"required"`
	ProfesorID uint   `json:"profesor_id" validate:"required"`
	CaballoID  uint   `json:"caballo_id" validate:"required"`
	Fecha      string `json:"fecha" validate:"required"`
	HoraInicio string `json:"hora_inicio" validate:"required"`
	HoraFin    string `json:"hora_fin" validate:"required"`
}

type ClassService struct {
	db *gorm.DB
}

func NewClassService(db *gorm.DB) *ClassService {
	return &ClassService{db: db}
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, invalidf(fmt.Sprintf("Fecha inválida: %s", s))
	}
	return t, nil
}

// Agenda lists the classes between two dates, both inclusive.
func (s *ClassService) Agenda(desde, hasta time.Time) ([]models.Clase, error) {
	if hasta.Before(desde) {
		return nil, invalidf("La fecha de fin debe ser posterior a la de inicio")
	}
	classes := []models.Clase{}
	err := s.db.
		Preload("Alumno").
		Preload("Profesor.User").
		Preload("Caballo").
		Where("fecha >= ? AND fecha <= ?", desde, hasta).
		Order("fecha ASC, hora_inicio ASC, id ASC").
		Find(&classes).Error
	return classes, err
}

func (s *ClassService) Get(id uint) (*models.Clase, error) {
	var class models.Clase
	if err := s.db.Preload("Alumno").Preload("Profesor.User").Preload("Caballo").First(&class, id).Error; err != nil {
		return nil, lookup(err, "Clase no encontrada")
	}
	return &class, nil
}

// Create schedules a class. The horse must be active and under its daily
// limit, and the class must fit one of the teacher's windows (a teacher
// without windows is always available).
func (s *ClassService) Create(in ClassInput) (*models.Clase, error) {
	fecha, err := ParseDate(in.Fecha)
	if err != nil {
		return nil, err
	}
	inicio, err := rules.ParseClock(in.HoraInicio)
	if err != nil {
		return nil, invalid(err)
	}
	fin, err := rules.ParseClock(in.HoraFin)
	if err != nil {
		return nil, invalid(err)
	}
	if fin <= inicio {
		return nil, invalidf("La hora de fin debe ser posterior a la de inicio")
	}

	student, err := findStudent(s.db, in.AlumnoID)
	if err != nil {
		return nil, err
	}
	if !student.Activo {
		return nil, invalidf("El alumno está bloqueado")
	}

	var teacher models.Profesor
	if err := s.db.First(&teacher, in.ProfesorID).Error; err != nil {
		return nil, lookup(err, "Profesor no encontrado")
	}
	if !teacher.Activo {
		return nil, invalidf("El profesor no está activo")
	}

	var horse models.Caballo
	if err := s.db.First(&horse, in.CaballoID).Error; err != nil {
		return nil, lookup(err, "Caballo no encontrado")
	}
	if horse.Estado != models.EstadoActivo || !horse.Activo {
		return nil, invalidf(fmt.Sprintf("El caballo no está disponible (estado: %s)", horse.Estado))
	}

	var booked int64
	err = s.db.Model(&models.Clase{}).
		Where("caballo_id = ? AND fecha = ? AND estado <> ?", horse.ID, fecha, models.ClaseCancelada).
		Count(&booked).Error
	if err != nil {
		return nil, err
	}
	limit := horse.LimiteClasesDia
	if limit <= 0 {
		limit = models.DefaultLimiteDia
	}
	if booked >= int64(limit) {
		return nil, conflict("El caballo alcanzó su límite de clases del día", nil)
	}

	windows, err := loadWindows(s.db, teacher.ID)
	if err != nil {
		return nil, err
	}
	if !rules.Available(windows, int(fecha.Weekday()), in.HoraInicio, in.HoraFin) {
		return nil, invalidf("El profesor no está disponible en ese horario")
	}

	tipo := models.TipoClaseEscuelita
	if rules.IsPensionRole(student.Rol) {
		tipo = models.TipoClasePension
	}

	class := models.Clase{
		AlumnoID:   student.ID,
		ProfesorID: teacher.ID,
		CaballoID:  horse.ID,
		Fecha:      fecha,
		HoraInicio: clock(in.HoraInicio),
		HoraFin:    clock(in.HoraFin),
		Estado:     models.ClaseProgramada,
		Tipo:       tipo,
	}
	if err := s.db.Create(&class).Error; err != nil {
		return nil, err
	}
	return s.Get(class.ID)
}

// SetState moves a scheduled class to completed or cancelled. Completing a
// class consumes one class of the subscription whose window covers the class
// date, even if it was deactivated since; usage may go past the allowance.
func (s *ClassService) SetState(id uint, estado string) (*models.Clase, error) {
	if estado != models.ClaseCompletada && estado != models.ClaseCancelada {
		return nil, invalidf("Estado de clase inválido")
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var class models.Clase
		if err := tx.First(&class, id).Error; err != nil {
			return lookup(err, "Clase no encontrada")
		}
		if class.Estado != models.ClaseProgramada {
			return conflict("Solo se pueden modificar clases programadas", nil)
		}
		if err := tx.Model(&models.Clase{}).Where("id = ?", class.ID).Update("estado", estado).Error; err != nil {
			return err
		}
		if estado != models.ClaseCompletada {
			return nil
		}
		sub, err := coveringSubscription(tx, class.AlumnoID, class.Fecha)
		if err != nil || sub == nil {
			return err
		}
		return tx.Model(&models.Suscripcion{}).
			Where("id = ?", sub.ID).
			Update("clases_usadas", gorm.Expr("clases_usadas + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}
