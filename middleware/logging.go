package middleware

import (
	"context"
	"ecuestre_go/database"
	"ecuestre_go/models"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LogQueueKey is the Redis sorted set holding cached activity log keys.
const LogQueueKey = "logs:queue"

const dbLocal = "db"

// WithDB exposes db to LogActivity for the rest of the request.
func WithDB(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(dbLocal, db)
		return c.Next()
	}
}

// LoggerMiddleware logs HTTP requests
func LoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		logrus.WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"duration":   time.Since(start).String(),
			"ip":         c.IP(),
			"user_agent": c.Get("User-Agent"),
		}).Info("HTTP Request")

		return err
	}
}

// LogActivity records a user action. The entry is cached in Redis and
// flushed to the database later; without Redis it is written directly.
func LogActivity(c *fiber.Ctx, action, resource string, resourceID uint, details interface{}) {
	var userID uint
	if user, err := GetCurrentUser(c); err == nil {
		userID = user.ID
	}

	meta := map[string]interface{}{
		"details":    details,
		"request_id": c.Get("X-Request-ID", uuid.NewString()),
		"method":     c.Method(),
		"path":       c.Path(),
		"status":     c.Response().StatusCode(),
	}
	detailsJSON, _ := json.Marshal(meta)

	entry := models.ActivityLog{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    detailsJSON,
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	}
	entry.CreatedAt = time.Now()
	db, _ := c.Locals(dbLocal).(*gorm.DB)

	go func(al models.ActivityLog) {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).Error("panic recovered in LogActivity goroutine")
			}
		}()

		if err := cacheActivityLog(al); err != nil {
			if db == nil {
				logrus.Error("no database on the request; cannot save activity log")
				return
			}
			if dbErr := db.Create(&al).Error; dbErr != nil {
				logrus.WithError(dbErr).Error("Failed to save activity log to database")
			}
		}
	}(entry)
}

// cacheActivityLog stores activity log in Redis with 24-hour TTL
func cacheActivityLog(log models.ActivityLog) error {
	redisClient := database.GetRedisClient()
	if redisClient == nil {
		return fmt.Errorf("redis client is nil")
	}

	logData, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %w", err)
	}

	ctx := context.Background()
	cacheKey := fmt.Sprintf("log:%d:%s:%d", log.UserID, log.Action, time.Now().UnixNano())

	if err := redisClient.Set(ctx, cacheKey, logData, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to cache log: %w", err)
	}

	if err := redisClient.ZAdd(ctx, LogQueueKey, &redis.Z{
		Score:  float64(time.Now().Unix()),
		Member: cacheKey,
	}).Err(); err != nil {
		logrus.WithError(err).Error("Failed to add log to processing queue")
	}

	return nil
}

// LogActivityMiddleware automatically logs successful mutations
func LogActivityMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodGet || strings.Contains(c.Path(), "/auth/") {
			return c.Next()
		}

		err := c.Next()

		var action string
		switch c.Method() {
		case fiber.MethodPost:
			action = "CREATE"
		case fiber.MethodPut, fiber.MethodPatch:
			action = "UPDATE"
		case fiber.MethodDelete:
			action = "DELETE"
		default:
			return err
		}

		resource, resourceID := ResourceFromPath(c.Path())

		if c.Response().StatusCode() < 400 {
			LogActivity(c, action, resource, resourceID, nil)
		}

		return err
	}
}

// ResourceFromPath extracts the resource name and numeric id from paths such
// as /api/admin/caballos/12/estado or /api/comprobantes/4/aprobar.
func ResourceFromPath(path string) (string, uint) {
	var parts []string
	for _, p := range strings.Split(strings.Trim(path, "/"), "/") {
		if p == "api" || p == "admin" || p == "" {
			continue
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return "", 0
	}
	var id uint
	if len(parts) > 1 {
		if n, err := strconv.ParseUint(parts[1], 10, 32); err == nil {
			id = uint(n)
		}
	}
	return parts[0], id
}
