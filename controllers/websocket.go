package controllers

import (
	"context"
	"ecuestre_go/database"
	"ecuestre_go/middleware"
	"ecuestre_go/models"
	"ecuestre_go/services/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type WebSocketController struct {
	hub *websocket.Hub
	db  *gorm.DB
}

func NewWebSocketController(hub *websocket.Hub, db *gorm.DB) *WebSocketController {
	return &WebSocketController{hub: hub, db: db}
}

// Upgrade authenticates the ?token= query parameter before the handshake.
// Only staff may subscribe to the realtime voucher events.
func (wsc *WebSocketController) Upgrade(c *fiber.Ctx) error {
	if !fiberws.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{
			"error": "Usa el endpoint WebSocket: ws://<host>/ws?token=TU_JWT",
		})
	}

	token := c.Query("token")
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Falta el token"})
	}
	if rc := database.GetRedisClient(); rc != nil {
		if n, err := rc.Exists(context.Background(), middleware.BlacklistKey(token)).Result(); err == nil && n > 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Sesión cerrada"})
		}
	}
	claims, err := middleware.ParseToken(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token inválido"})
	}

	user, err := middleware.ActiveUser(wsc.db, claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Usuario no encontrado o bloqueado"})
	}
	if user.Rol != models.RolAdmin && user.Rol != models.RolProfesor {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No tienes permisos para esta acción"})
	}

	c.Locals("ws_user_id", user.ID)
	c.Locals("ws_rol", user.Rol)
	return c.Next()
}

// WebSocketHandler connects an authenticated socket to the hub.
func (wsc *WebSocketController) WebSocketHandler() fiber.Handler {
	return fiberws.New(func(c *fiberws.Conn) {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).Error("WebSocket handler panic")
			}
		}()

		userID, _ := c.Locals("ws_user_id").(uint)
		rol, _ := c.Locals("ws_rol").(string)
		logrus.WithFields(logrus.Fields{"user_id": userID, "rol": rol}).Info("WebSocket connection established")

		wsc.hub.ServeFiberWS(c, userID, rol)
	})
}

// GetWebSocketStats returns connection statistics (admin only)
func (wsc *WebSocketController) GetWebSocketStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"connected_clients": wsc.hub.GetClientCount(),
		"status":            "active",
	})
}
