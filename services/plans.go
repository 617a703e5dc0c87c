package services

import (
	"ecuestre_go/models"
	"ecuestre_go/rules"

	"gorm.io/gorm"
)

// PlanInput is the create/update payload of a plan.
type PlanInput struct {
	Nombre    string  `json:"nombre" validate:"required,max=150"`
	Tipo      string  `json:"tipo" validate:"required,oneof=escuelita pension_completa media_pension"`
	ClasesMes int     `json:"clases_mes" validate:"gte=0"`
	Precio    float64 `json:"precio" validate:"gte=0"`
	Activo    *bool   `json:"activo"`
}

type PlanService struct {
	db *gorm.DB
}

func NewPlanService(db *gorm.DB) *PlanService {
	return &PlanService{db: db}
}

// List returns plans ordered by type and name; soloActivos hides retired plans.
func (s *PlanService) List(soloActivos bool) ([]models.Plan, error) {
	plans := []models.Plan{}
	query := s.db.Order("tipo ASC, nombre ASC")
	if soloActivos {
		query = query.Where("activo = ?", true)
	}
	err := query.Find(&plans).Error
	return plans, err
}

func (s *PlanService) Get(id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := s.db.First(&plan, id).Error; err != nil {
		return nil, lookup(err, "Plan no encontrado")
	}
	return &plan, nil
}

func (s *PlanService) Create(in PlanInput) (*models.Plan, error) {
	if !rules.IsStudentRole(in.Tipo) {
		return nil, invalid(rules.ErrUnknownRole)
	}
	plan := models.Plan{
		Nombre:    in.Nombre,
		Tipo:      in.Tipo,
		ClasesMes: in.ClasesMes,
		Precio:    in.Precio,
		Activo:    true,
	}
	if err := s.db.Create(&plan).Error; err != nil {
		return nil, err
	}
	if in.Activo != nil && !*in.Activo {
		if err := s.db.Model(&plan).Update("activo", false).Error; err != nil {
			return nil, err
		}
		plan.Activo = false
	}
	return &plan, nil
}

func (s *PlanService) Update(id uint, in PlanInput) (*models.Plan, error) {
	plan, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !rules.IsStudentRole(in.Tipo) {
		return nil, invalid(rules.ErrUnknownRole)
	}
	// subscriptions must keep matching their student's role
	if in.Tipo != plan.Tipo {
		var inUse int64
		if err := s.db.Model(&models.Suscripcion{}).Where("plan_id = ?", id).Count(&inUse).Error; err != nil {
			return nil, err
		}
		if inUse > 0 {
			return nil, conflict("No se puede cambiar el tipo de un plan con suscripciones", nil)
		}
	}
	updates := map[string]interface{}{
		"nombre":     in.Nombre,
		"tipo":       in.Tipo,
		"clases_mes": in.ClasesMes,
		"precio":     in.Precio,
	}
	if in.Activo != nil {
		updates["activo"] = *in.Activo
	}
	if err := s.db.Model(plan).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete removes a plan that no active subscription uses.
func (s *PlanService) Delete(id uint) error {
	plan, err := s.Get(id)
	if err != nil {
		return err
	}
	var inUse int64
	if err := s.db.Model(&models.Suscripcion{}).Where("plan_id = ? AND activa = ?", id, true).Count(&inUse).Error; err != nil {
		return err
	}
	if inUse > 0 {
		return conflict("No se puede eliminar un plan con suscripciones activas", nil)
	}
	return s.db.Delete(plan).Error
}
