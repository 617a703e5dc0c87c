package services

import (
	"context"
	"ecuestre_go/models"
	"ecuestre_go/rules"
	"ecuestre_go/utils"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const defaultPasswordLength = 10

// TeacherInput is the create/update payload of a teacher.
type TeacherInput struct {
	Nombre              string         `json:"nombre" validate:"max=100"`
	Apellido            string         `json:"apellido" validate:"max=100"`
	Email               string         `json:"email" validate:"omitempty,email"`
	Telefono            string         `json:"telefono" validate:"max=30"`
	Activo              *bool          `json:"activo"`
	PorcentajeEscuelita *float64       `json:"porcentaje_escuelita" validate:"omitempty,gte=0,lte=100"`
	PorcentajePension   *float64       `json:"porcentaje_pension" validate:"omitempty,gte=0,lte=100"`
	Horarios            []rules.Window `json:"horarios"`
}

// CreatedTeacher is returned once on creation; Password is never stored in clear.
type CreatedTeacher struct {
	Profesor *models.Profesor `json:"profesor"`
	Password string           `json:"password"`
}

type TeacherService struct {
	db     *gorm.DB
	mailer Mailer
}

func NewTeacherService(db *gorm.DB, mailer Mailer) *TeacherService {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &TeacherService{db: db, mailer: mailer}
}

func (s *TeacherService) List() ([]models.Profesor, error) {
	teachers := []models.Profesor{}
	err := s.db.
		Preload("User").
		Preload("Horarios", func(db *gorm.DB) *gorm.DB {
			return db.Order("dia_semana ASC, hora_inicio ASC")
		}).
		Order("id ASC").
		Find(&teachers).Error
	return teachers, err
}

func (s *TeacherService) Get(id uint) (*models.Profesor, error) {
	var teacher models.Profesor
	err := s.db.
		Preload("User").
		Preload("Horarios", func(db *gorm.DB) *gorm.DB {
			return db.Order("dia_semana ASC, hora_inicio ASC")
		}).
		First(&teacher, id).Error
	if err != nil {
		return nil, lookup(err, "Profesor no encontrado")
	}
	return &teacher, nil
}

// Create registers a teacher account with a generated initial password and
// mails the invitation.
func (s *TeacherService) Create(ctx context.Context, in TeacherInput) (*CreatedTeacher, error) {
	if strings.TrimSpace(in.Nombre) == "" {
		return nil, invalidf("El nombre es obligatorio")
	}
	email := utils.NormalizeEmail(in.Email)
	if email == "" {
		return nil, invalidf("El email es obligatorio")
	}
	if err := validateWindows(in.Horarios); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflict("Ya existe un usuario con ese email", nil)
	}

	password, err := utils.GenerateDefaultPassword(defaultPasswordLength)
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	teacher := models.Profesor{Activo: true}
	if in.PorcentajeEscuelita != nil {
		teacher.PorcentajeEscuelita = *in.PorcentajeEscuelita
	}
	if in.PorcentajePension != nil {
		teacher.PorcentajePension = *in.PorcentajePension
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		user := models.User{
			Nombre:   strings.TrimSpace(in.Nombre),
			Apellido: strings.TrimSpace(in.Apellido),
			Email:    email,
			Telefono: in.Telefono,
			Password: hash,
			Rol:      models.RolProfesor,
			Activo:   true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		teacher.UserID = user.ID
		if err := tx.Create(&teacher).Error; err != nil {
			return err
		}
		return replaceWindows(tx, teacher.ID, in.Horarios)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.Get(teacher.ID)
	if err != nil {
		return nil, err
	}

	subject, body := teacherInvitation(created.User.Nombre, email, password)
	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		logrus.WithError(err).WithField("profesor_id", teacher.ID).Warn("Failed to send teacher invitation")
	}

	return &CreatedTeacher{Profesor: created, Password: password}, nil
}

// Update edits a teacher. The email cannot change; a provided list of
// windows replaces the stored one.
func (s *TeacherService) Update(id uint, in TeacherInput) (*models.Profesor, error) {
	teacher, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if teacher.User == nil {
		return nil, notFound("Usuario del profesor no encontrado")
	}
	if in.Email != "" && utils.NormalizeEmail(in.Email) != teacher.User.Email {
		return nil, invalidf("El email no se puede modificar")
	}
	if in.Horarios != nil {
		if err := validateWindows(in.Horarios); err != nil {
			return nil, err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// A payload without nombre only toggles flags or percentages.
		userUpdates := map[string]interface{}{}
		if strings.TrimSpace(in.Nombre) != "" {
			userUpdates["nombre"] = strings.TrimSpace(in.Nombre)
			userUpdates["apellido"] = strings.TrimSpace(in.Apellido)
			userUpdates["telefono"] = in.Telefono
		}
		teacherUpdates := map[string]interface{}{}
		if in.Activo != nil {
			userUpdates["activo"] = *in.Activo
			teacherUpdates["activo"] = *in.Activo
		}
		if in.PorcentajeEscuelita != nil {
			teacherUpdates["porcentaje_escuelita"] = *in.PorcentajeEscuelita
		}
		if in.PorcentajePension != nil {
			teacherUpdates["porcentaje_pension"] = *in.PorcentajePension
		}

		if len(userUpdates) > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", teacher.UserID).Updates(userUpdates).Error; err != nil {
				return err
			}
		}
		if len(teacherUpdates) > 0 {
			if err := tx.Model(&models.Profesor{}).Where("id = ?", teacher.ID).Updates(teacherUpdates).Error; err != nil {
				return err
			}
		}
		if in.Horarios != nil {
			return replaceWindows(tx, teacher.ID, in.Horarios)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete removes the teacher and blocks the login of the linked user.
func (s *TeacherService) Delete(id uint) error {
	teacher, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", teacher.UserID).Update("activo", false).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("profesor_id = ?", teacher.ID).Delete(&models.HorarioProfesor{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Profesor{}, teacher.ID).Error
	})
}

// Windows returns the weekly availability of a teacher. An empty list means
// the teacher is available at any time.
func (s *TeacherService) Windows(id uint) ([]rules.Window, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	return loadWindows(s.db, id)
}

func loadWindows(db *gorm.DB, profesorID uint) ([]rules.Window, error) {
	var rows []models.HorarioProfesor
	err := db.Where("profesor_id = ?", profesorID).Order("dia_semana ASC, hora_inicio ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	windows := make([]rules.Window, 0, len(rows))
	for _, r := range rows {
		windows = append(windows, rules.Window{Dia: r.DiaSemana, Inicio: r.HoraInicio, Fin: r.HoraFin})
	}
	return windows, nil
}

func replaceWindows(tx *gorm.DB, profesorID uint, windows []rules.Window) error {
	if err := tx.Unscoped().Where("profesor_id = ?", profesorID).Delete(&models.HorarioProfesor{}).Error; err != nil {
		return err
	}
	for _, w := range windows {
		row := models.HorarioProfesor{
			ProfesorID: profesorID,
			DiaSemana:  w.Dia,
			HoraInicio: clock(w.Inicio),
			HoraFin:    clock(w.Fin),
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func validateWindows(windows []rules.Window) error {
	for _, w := range windows {
		if err := rules.ValidateWindow(w); err != nil {
			return invalid(err)
		}
	}
	return nil
}

// clock normalizes a validated clock value to "HH:MM".
func clock(s string) string {
	m, err := rules.ParseClock(s)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
