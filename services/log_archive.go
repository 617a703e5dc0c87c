package services

import (
	"archive/zip"
	"bytes"
	"context"
	"ecuestre_go/middleware"
	"ecuestre_go/models"
	"ecuestre_go/storage"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LogArchiveService flushes cached activity logs and archives old ones
type LogArchiveService struct {
	db          *gorm.DB
	redisClient *redis.Client
	store       storage.ObjectStore
}

func NewLogArchiveService(db *gorm.DB, redisClient *redis.Client, store storage.ObjectStore) *LogArchiveService {
	return &LogArchiveService{db: db, redisClient: redisClient, store: store}
}

// FlushCachedLogsToDatabase moves every queued activity log from Redis to the database
func (las *LogArchiveService) FlushCachedLogsToDatabase(ctx context.Context) (int, error) {
	if las.redisClient == nil {
		return 0, fmt.Errorf("redis client not available")
	}

	keys, err := las.redisClient.ZRangeByScore(ctx, middleware.LogQueueKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", time.Now().Unix()),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queued logs: %w", err)
	}

	var processed, failed int
	for _, key := range keys {
		data, err := las.redisClient.Get(ctx, key).Result()
		if err == redis.Nil {
			las.redisClient.ZRem(ctx, middleware.LogQueueKey, key)
			continue
		}
		if err != nil {
			logrus.WithError(err).Errorf("Failed to get log data for key: %s", key)
			failed++
			continue
		}

		var activityLog models.ActivityLog
		if err := json.Unmarshal([]byte(data), &activityLog); err != nil {
			logrus.WithError(err).Errorf("Failed to unmarshal log data for key: %s", key)
			failed++
			continue
		}
		activityLog.ID = 0

		if err := las.db.Create(&activityLog).Error; err != nil {
			logrus.WithError(err).Error("Failed to save log to database")
			failed++
			continue
		}

		pipeline := las.redisClient.Pipeline()
		pipeline.Del(ctx, key)
		pipeline.ZRem(ctx, middleware.LogQueueKey, key)
		if _, err := pipeline.Exec(ctx); err != nil {
			logrus.WithError(err).Errorf("Failed to remove log from cache: %s", key)
		}
		processed++
	}

	logrus.Infof("Flushed %d logs to database, %d errors", processed, failed)
	return processed, nil
}

// ArchiveOldLogs stores logs older than daysOld as a zip in object storage
// and removes them from the database.
func (las *LogArchiveService) ArchiveOldLogs(ctx context.Context, daysOld int) (int, error) {
	if daysOld < 7 {
		return 0, fmt.Errorf("minimum archive age is 7 days")
	}
	if las.store == nil {
		return 0, fmt.Errorf("object storage not configured")
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -daysOld)
	var logs []models.ActivityLog
	if err := las.db.Where("created_at < ?", cutoff).Order("created_at ASC").Find(&logs).Error; err != nil {
		return 0, fmt.Errorf("failed to fetch logs for archiving: %w", err)
	}
	if len(logs) == 0 {
		return 0, nil
	}

	archive, err := zipLogs(logs)
	if err != nil {
		return 0, err
	}
	key := fmt.Sprintf("logs/archived/%d/%02d/activity_logs_%s.zip", cutoff.Year(), cutoff.Month(), cutoff.Format("2006-01-02"))
	if _, err := las.store.Put(ctx, key, archive, storage.ContentType("zip")); err != nil {
		return 0, fmt.Errorf("failed to upload archive: %w", err)
	}

	result := las.db.Unscoped().Where("created_at < ?", cutoff).Delete(&models.ActivityLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete archived logs: %w", result.Error)
	}
	logrus.Infof("Archived %d activity logs to %s", len(logs), key)
	return len(logs), nil
}

func zipLogs(logs []models.ActivityLog) ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	w, err := zw.Create("activity_logs.json")
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]interface{}{
		"export_date":  time.Now().UTC(),
		"record_count": len(logs),
		"logs":         logs,
	}); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
