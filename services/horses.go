package services

import (
	"ecuestre_go/models"
	"ecuestre_go/rules"

	"gorm.io/gorm"
)

type HorseService struct {
	db *gorm.DB
}

func NewHorseService(db *gorm.DB) *HorseService {
	return &HorseService{db: db}
}

// List returns the horses with their owners. Empty filters match everything.
func (s *HorseService) List(tipo, estado string) ([]models.Caballo, error) {
	horses := []models.Caballo{}
	query := s.db.Preload("Dueno").Order("nombre ASC")
	if tipo != "" {
		query = query.Where("tipo = ?", tipo)
	}
	if estado != "" {
		query = query.Where("estado = ?", estado)
	}
	err := query.Find(&horses).Error
	return horses, err
}

func (s *HorseService) Get(id uint) (*models.Caballo, error) {
	var horse models.Caballo
	if err := s.db.Preload("Dueno").First(&horse, id).Error; err != nil {
		return nil, lookup(err, "Caballo no encontrado")
	}
	return &horse, nil
}

func (s *HorseService) Create(form rules.HorseForm) (*models.Caballo, error) {
	form, err := s.prepare(form)
	if err != nil {
		return nil, err
	}
	horse := models.Caballo{
		Nombre:          form.Nombre,
		Tipo:            form.Tipo,
		Estado:          form.Estado,
		LimiteClasesDia: form.LimiteClasesDia,
		Activo:          true,
		DuenoID:         form.DuenoID,
	}
	if err := s.db.Create(&horse).Error; err != nil {
		return nil, err
	}
	return s.Get(horse.ID)
}

// Update replaces the editable fields. Switching to a school horse drops the owner.
func (s *HorseService) Update(id uint, form rules.HorseForm) (*models.Caballo, error) {
	horse, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	form, err = s.prepare(form)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"nombre":            form.Nombre,
		"tipo":              form.Tipo,
		"estado":            form.Estado,
		"limite_clases_dia": form.LimiteClasesDia,
		"dueno_id":          form.DuenoID,
	}
	if err := s.db.Model(&models.Caballo{}).Where("id = ?", horse.ID).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(id)
}

// SetState moves a horse to any of the condition states.
func (s *HorseService) SetState(id uint, estado string) (*models.Caballo, error) {
	if !rules.ValidHorseState(estado) {
		return nil, invalid(rules.ErrInvalidHorseState)
	}
	horse, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(horse).Update("estado", estado).Error; err != nil {
		return nil, err
	}
	horse.Estado = estado
	return horse, nil
}

func (s *HorseService) Delete(id uint) error {
	horse, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Delete(&models.Caballo{}, horse.ID).Error
}

// prepare normalizes the form and checks the owner of a private horse.
func (s *HorseService) prepare(form rules.HorseForm) (rules.HorseForm, error) {
	form, err := rules.NormalizeHorse(form)
	if err != nil {
		return form, invalid(err)
	}
	if form.LimiteClasesDia <= 0 {
		form.LimiteClasesDia = models.DefaultLimiteDia
	}
	if form.DuenoID != nil {
		owner, err := findStudent(s.db, *form.DuenoID)
		if err != nil {
			return form, err
		}
		if !rules.IsPensionRole(owner.Rol) {
			return form, invalidf("El dueño debe ser un alumno de pensión")
		}
	}
	return form, nil
}
