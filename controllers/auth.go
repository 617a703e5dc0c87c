package controllers

import (
	"context"
	"ecuestre_go/config"
	"ecuestre_go/database"
	"ecuestre_go/middleware"
	"ecuestre_go/models"
	"ecuestre_go/services"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest is the body of the password change form. The
// confirmation is optional because the dashboard checks it before sending.
type ChangePasswordRequest struct {
	PasswordActual    string `json:"password_actual" validate:"required"`
	PasswordNueva     string `json:"password_nueva" validate:"required"`
	PasswordConfirmar string `json:"password_confirmar"`
}

func userPayload(user *models.User) fiber.Map {
	return fiber.Map{
		"id":       user.ID,
		"nombre":   user.Nombre,
		"apellido": user.Apellido,
		"email":    user.Email,
		"telefono": user.Telefono,
		"rol":      user.Rol,
	}
}

// Login authenticates a staff member and returns a JWT token
func (ac *AuthController) Login(c *fiber.Ctx) error {
	return ac.login(c, ac.auth.Login)
}

// LoginStudent authenticates a student of the student app.
func (ac *AuthController) LoginStudent(c *fiber.Ctx) error {
	return ac.login(c, ac.auth.LoginStudent)
}

func (ac *AuthController) login(c *fiber.Ctx, check func(email, password string) (*models.User, error)) error {
	var req LoginRequest
	if handled, err := parseBody(c, &req); handled {
		return err
	}

	user, err := check(req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrPanelForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		return serviceError(c, err, "Error al iniciar sesión")
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo generar el token",
		})
	}

	middleware.LogActivity(c, "LOGIN", "auth", user.ID, fiber.Map{
		"email": user.Email,
		"rol":   user.Rol,
	})

	return c.JSON(fiber.Map{
		"token": token,
		"user":  userPayload(user),
	})
}

// Profile returns the authenticated user.
func (ac *AuthController) Profile(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"user": userPayload(user)})
}

// ChangePassword replaces the password of the authenticated user
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	var req ChangePasswordRequest
	if handled, err := parseBody(c, &req); handled {
		return err
	}
	confirmar := req.PasswordConfirmar
	if confirmar == "" {
		confirmar = req.PasswordNueva
	}

	if err := ac.auth.ChangePassword(user.ID, req.PasswordActual, req.PasswordNueva, confirmar); err != nil {
		return serviceError(c, err, "Error al cambiar contraseña")
	}

	middleware.LogActivity(c, "CHANGE_PASSWORD", "auth", user.ID, nil)
	return c.JSON(fiber.Map{"message": "Contraseña actualizada exitosamente"})
}

// Logout invalidates the current JWT by storing it in the Redis blacklist
// until it would have expired anyway.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	token, ok := c.Locals("token").(string)
	if !ok || token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Falta el token"})
	}

	if rc := database.GetRedisClient(); rc != nil {
		if err := rc.Set(context.Background(), middleware.BlacklistKey(token), "1", config.AppConfig.JWTExpiresIn).Err(); err != nil {
			// Logout still succeeds; the token simply lives until expiry.
			logrus.WithError(err).Warn("Failed to blacklist token")
		}
	}

	if user, err := middleware.GetCurrentUser(c); err == nil {
		middleware.LogActivity(c, "LOGOUT", "auth", user.ID, fiber.Map{"email": user.Email})
	}

	return c.JSON(fiber.Map{"message": "Sesión cerrada"})
}
