package services

import (
	"ecuestre_go/models"
	"ecuestre_go/rules"
	"ecuestre_go/utils"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("Credenciales inválidas")
	ErrPanelForbidden     = errors.New("Solo administradores y profesores pueden ingresar al panel")
)

type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// Login checks the credentials of a staff member.
func (s *AuthService) Login(email, password string) (*models.User, error) {
	user, err := s.authenticate(email, password)
	if err != nil {
		return nil, err
	}
	if user.Rol != models.RolAdmin && user.Rol != models.RolProfesor {
		return nil, ErrPanelForbidden
	}
	return user, nil
}

// LoginStudent checks the credentials of a student using the student app.
func (s *AuthService) LoginStudent(email, password string) (*models.User, error) {
	user, err := s.authenticate(email, password)
	if err != nil {
		return nil, err
	}
	if !rules.IsStudentRole(user.Rol) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) authenticate(email, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ? AND activo = ?", utils.NormalizeEmail(email), true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := utils.CheckPassword(password, user.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// ChangePassword replaces the password of a user after checking the current one.
func (s *AuthService) ChangePassword(userID uint, actual, nueva, confirmar string) error {
	if err := rules.ValidateNewPassword(nueva, confirmar); err != nil {
		return invalid(err)
	}
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return lookup(err, "Usuario no encontrado")
	}
	if err := utils.CheckPassword(actual, user.Password); err != nil {
		return invalidf("La contraseña actual es incorrecta")
	}
	hash, err := utils.HashPassword(nueva)
	if err != nil {
		return err
	}
	return s.db.Model(&user).Update("password", hash).Error
}
