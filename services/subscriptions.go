package services

import (
	"ecuestre_go/models"
	"ecuestre_go/rules"
	"time"

	"gorm.io/gorm"
)

// AssignInput assigns a plan to a student for a month. Mes and Anio decide
// the validity window; FechaInicio is accepted for compatibility and ignored.
type AssignInput struct {
	PlanID      uint   `json:"plan_id" validate:"required"`
	Mes         int    `json:"mes" validate:"required,min=1,max=12"`
	Anio        int    `json:"año" validate:"required"`
	FechaInicio string `json:"fecha_inicio,omitempty"`
}

// UpdateSubscriptionInput holds the editable fields of a subscription.
// Absent fields keep their value.
type UpdateSubscriptionInput struct {
	PlanID          *uint `json:"plan_id"`
	Mes             *int  `json:"mes"`
	Anio            *int  `json:"año"`
	ClasesIncluidas *int  `json:"clases_incluidas"`
	ClasesUsadas    *int  `json:"clases_usadas"`
	Activa          *bool `json:"activa"`
}

type SubscriptionService struct {
	db       *gorm.DB
	invoices *InvoiceService
}

func NewSubscriptionService(db *gorm.DB, invoices *InvoiceService) *SubscriptionService {
	return &SubscriptionService{db: db, invoices: invoices}
}

// Assign creates a subscription for the student and bills its first month.
func (s *SubscriptionService) Assign(alumnoID uint, in AssignInput) (*models.Suscripcion, error) {
	if in.PlanID == 0 {
		return nil, invalid(rules.ErrPlanRequired)
	}
	student, err := findStudent(s.db, alumnoID)
	if err != nil {
		return nil, err
	}
	plan, err := findPlan(s.db, in.PlanID)
	if err != nil {
		return nil, err
	}
	if !plan.Activo {
		return nil, invalidf("El plan no está activo")
	}
	if err := rules.CheckPlanForStudent(plan.Tipo, student.Rol); err != nil {
		return nil, invalid(err)
	}
	inicio, fin, err := rules.ValidityWindow(student.Rol, in.Mes, in.Anio)
	if err != nil {
		return nil, invalid(err)
	}

	sub := models.Suscripcion{
		AlumnoID:        student.ID,
		PlanID:          plan.ID,
		FechaInicio:     inicio,
		FechaFin:        fin,
		ClasesIncluidas: plan.ClasesMes,
		ClasesUsadas:    0,
		Activa:          true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
		if s.invoices == nil {
			return nil
		}
		_, err := s.invoices.ensure(tx, &sub, plan, in.Mes, in.Anio)
		return err
	})
	if err != nil {
		return nil, err
	}

	sub.Plan = plan
	return &sub, nil
}

// ListForStudent returns every subscription of a student, newest first.
func (s *SubscriptionService) ListForStudent(alumnoID uint) ([]models.Suscripcion, error) {
	if _, err := findStudent(s.db, alumnoID); err != nil {
		return nil, err
	}
	subs := []models.Suscripcion{}
	err := s.db.
		Preload("Plan").
		Where("alumno_id = ?", alumnoID).
		Order("fecha_inicio DESC, id DESC").
		Find(&subs).Error
	return subs, err
}

func (s *SubscriptionService) Get(id uint) (*models.Suscripcion, error) {
	var sub models.Suscripcion
	if err := s.db.Preload("Plan").Preload("Alumno").First(&sub, id).Error; err != nil {
		return nil, lookup(err, "Suscripción no encontrada")
	}
	return &sub, nil
}

// Update edits a subscription. A new month or year recomputes the validity
// window for the student's role; usage is not checked against the allowance.
func (s *SubscriptionService) Update(id uint, in UpdateSubscriptionInput) (*models.Suscripcion, error) {
	sub, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if sub.Alumno == nil {
		return nil, notFound("Alumno no encontrado")
	}

	updates := map[string]interface{}{}

	if in.PlanID != nil && *in.PlanID != sub.PlanID {
		plan, err := findPlan(s.db, *in.PlanID)
		if err != nil {
			return nil, err
		}
		if !plan.Activo {
			return nil, invalidf("El plan no está activo")
		}
		if err := rules.CheckPlanForStudent(plan.Tipo, sub.Alumno.Rol); err != nil {
			return nil, invalid(err)
		}
		updates["plan_id"] = plan.ID
	}

	if in.Mes != nil || in.Anio != nil {
		mes, anio := rules.MonthOf(sub.FechaInicio)
		if in.Mes != nil {
			mes = *in.Mes
		}
		if in.Anio != nil {
			anio = *in.Anio
		}
		inicio, fin, err := rules.ValidityWindow(sub.Alumno.Rol, mes, anio)
		if err != nil {
			return nil, invalid(err)
		}
		updates["fecha_inicio"] = inicio
		updates["fecha_fin"] = fin
	}

	if in.ClasesIncluidas != nil {
		if *in.ClasesIncluidas < 0 {
			return nil, invalidf("Las clases incluidas no pueden ser negativas")
		}
		updates["clases_incluidas"] = *in.ClasesIncluidas
	}
	if in.ClasesUsadas != nil {
		if *in.ClasesUsadas < 0 {
			return nil, invalidf("Las clases usadas no pueden ser negativas")
		}
		updates["clases_usadas"] = *in.ClasesUsadas
	}
	if in.Activa != nil {
		updates["activa"] = *in.Activa
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.Suscripcion{}).Where("id = ?", sub.ID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(id)
}

func (s *SubscriptionService) Delete(id uint) error {
	sub, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Delete(&models.Suscripcion{}, sub.ID).Error
}

// ExpireEnded deactivates bounded subscriptions whose last day is over.
func (s *SubscriptionService) ExpireEnded(now time.Time) (int64, error) {
	cutoff := now.UTC().AddDate(0, 0, -1)
	result := s.db.Model(&models.Suscripcion{}).
		Where("activa = ? AND fecha_fin IS NOT NULL AND fecha_fin <= ?", true, cutoff).
		Update("activa", false)
	return result.RowsAffected, result.Error
}

// coveringSubscription returns the student's subscription whose window
// contains day, preferring the most recent one, whether or not it is still
// active. It returns nil when none matches.
func coveringSubscription(db *gorm.DB, alumnoID uint, day time.Time) (*models.Suscripcion, error) {
	var subs []models.Suscripcion
	query := db.Preload("Plan").Where("alumno_id = ?", alumnoID)
	if err := query.Order("fecha_inicio DESC, id DESC").Find(&subs).Error; err != nil {
		return nil, err
	}
	return pickCovering(subs, day), nil
}

func pickCovering(subs []models.Suscripcion, day time.Time) *models.Suscripcion {
	for i := range subs {
		if rules.Covers(subs[i].FechaInicio, subs[i].FechaFin, day) {
			return &subs[i]
		}
	}
	return nil
}

func findPlan(db *gorm.DB, id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := db.First(&plan, id).Error; err != nil {
		return nil, lookup(err, "Plan no encontrado")
	}
	return &plan, nil
}
