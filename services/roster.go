package services

import (
	"ecuestre_go/models"
	"ecuestre_go/rules"
	"ecuestre_go/utils"
	"strings"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// RosterFilter selects a page of students.
type RosterFilter struct {
	Activo *bool
	Rol    string
	Search string
	Page   int
	Limit  int
}

// Normalize applies paging defaults.
func (f *RosterFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
}

// Pagination is the paging block returned with list responses.
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

type RosterService struct {
	db *gorm.DB
}

func NewRosterService(db *gorm.DB) *RosterService {
	return &RosterService{db: db}
}

// List returns one page of students with their active subscriptions.
func (s *RosterService) List(f RosterFilter) (*RosterPage, error) {
	f.Normalize()

	query := s.db.Model(&models.User{}).Where("rol IN ?", rules.StudentRoles)
	if f.Rol != "" {
		if !rules.IsStudentRole(f.Rol) {
			return nil, invalid(rules.ErrUnknownRole)
		}
		query = query.Where("rol = ?", f.Rol)
	}
	if f.Activo != nil {
		query = query.Where("activo = ?", *f.Activo)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(nombre) LIKE ? OR LOWER(apellido) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	alumnos := []models.User{}
	err := query.
		Preload("Suscripciones", "activa = ?", true).
		Preload("Suscripciones.Plan").
		Order("apellido ASC, nombre ASC, id ASC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&alumnos).Error
	if err != nil {
		return nil, err
	}

	return &RosterPage{
		Alumnos: alumnos,
		Paginacion: Pagination{
			Page:         f.Page,
			Limit:        f.Limit,
			Total:        total,
			TotalPaginas: rules.TotalPages(total, f.Limit),
		},
	}, nil
}

// Student loads a student by id.
func (s *RosterService) Student(id uint) (*models.User, error) {
	return findStudent(s.db, id)
}

// SetActive blocks or unblocks a student.
func (s *RosterService) SetActive(id uint, activo bool) (*models.User, error) {
	student, err := findStudent(s.db, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(student).Update("activo", activo).Error; err != nil {
		return nil, err
	}
	student.Activo = activo
	return student, nil
}

// Owners lists the active boarding students that may own a private horse.
func (s *RosterService) Owners() ([]models.User, error) {
	owners := []models.User{}
	err := s.db.
		Where("rol IN ? AND activo = ?", []string{rules.RolPensionCompleta, rules.RolMediaPension}, true).
		Order("apellido ASC, nombre ASC").
		Find(&owners).Error
	return owners, err
}

func findStudent(db *gorm.DB, id uint) (*models.User, error) {
	var student models.User
	if err := db.Where("rol IN ?", rules.StudentRoles).First(&student, id).Error; err != nil {
		return nil, lookup(err, "Alumno no encontrado")
	}
	return &student, nil
}

// LinkLine stores the LINE user id of the active student with the given email.
func (s *RosterService) LinkLine(email, lineID string) (*models.User, error) {
	if lineID == "" {
		return nil, invalidf("Cuenta de LINE inválida")
	}
	var student models.User
	err := s.db.
		Where("email = ? AND rol IN ? AND activo = ?", utils.NormalizeEmail(email), rules.StudentRoles, true).
		First(&student).Error
	if err != nil {
		return nil, lookup(err, "No encontramos un alumno activo con ese email")
	}
	if err := s.db.Model(&student).Update("line_id", lineID).Error; err != nil {
		return nil, err
	}
	student.LineID = lineID
	return &student, nil
}

// UnlinkLine forgets a LINE user id, e.g. after the student blocks the bot.
func (s *RosterService) UnlinkLine(lineID string) (int64, error) {
	if lineID == "" {
		return 0, nil
	}
	result := s.db.Model(&models.User{}).Where("line_id = ?", lineID).Update("line_id", "")
	return result.RowsAffected, result.Error
}
