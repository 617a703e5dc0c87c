package services

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	healthOK       = "ok"
	healthDegraded = "degraded"
	healthCritical = "critical"

	dependencyUp       = "up"
	dependencyDown     = "down"
	dependencyDisabled = "disabled"

	serviceName = "Centro Ecuestre API"
)

// ClientCounter reports connected realtime clients.
type ClientCounter interface {
	GetClientCount() int
}

// HealthService aggregates application health for the /health endpoint.
type HealthService struct {
	db          *gorm.DB
	redis       *redis.Client
	hub         ClientCounter
	environment string
	startTime   time.Time
	timeout     time.Duration
}

type HealthReport struct {
	Status        string             `json:"status"`
	Service       string             `json:"service"`
	Environment   string             `json:"environment"`
	Time          time.Time          `json:"time"`
	UptimeSeconds float64            `json:"uptime_seconds"`
	UptimeHuman   string             `json:"uptime_human"`
	Dependencies  []DependencyStatus `json:"dependencies"`
	Goroutines    int                `json:"goroutines"`
	WSClients     int                `json:"ws_clients"`
	GoVersion     string             `json:"go_version"`
}

type DependencyStatus struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

func NewHealthService(db *gorm.DB, redisClient *redis.Client, hub ClientCounter, environment string) *HealthService {
	if strings.TrimSpace(environment) == "" {
		environment = "unknown"
	}
	return &HealthService{
		db:          db,
		redis:       redisClient,
		hub:         hub,
		environment: environment,
		startTime:   time.Now(),
		timeout:     1500 * time.Millisecond,
	}
}

// Report probes the dependencies. The database is required; Redis only
// degrades the service.
func (s *HealthService) Report(ctx context.Context) HealthReport {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	uptime := time.Since(s.startTime)
	report := HealthReport{
		Status:        healthOK,
		Service:       serviceName,
		Environment:   s.environment,
		Time:          time.Now().UTC(),
		UptimeSeconds: uptime.Seconds(),
		UptimeHuman:   humanizeDuration(uptime),
		Goroutines:    runtime.NumGoroutine(),
		GoVersion:     runtime.Version(),
	}
	if s.hub != nil {
		report.WSClients = s.hub.GetClientCount()
	}

	db := s.checkDatabase(ctx)
	if db.Status != dependencyUp {
		report.Status = healthCritical
	}
	rd := s.checkRedis(ctx)
	if rd.Status == dependencyDown && report.Status == healthOK {
		report.Status = healthDegraded
	}
	report.Dependencies = []DependencyStatus{db, rd}
	return report
}

// HTTPStatus maps a health status to an HTTP status code.
func HTTPStatus(status string) int {
	if status == healthCritical {
		return 503
	}
	return 200
}

func (s *HealthService) checkDatabase(ctx context.Context) DependencyStatus {
	dep := DependencyStatus{Name: "database"}
	if s.db == nil {
		dep.Status = dependencyDown
		dep.Error = "database connection not initialised"
		return dep
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		dep.Status = dependencyDown
		dep.Error = fmt.Sprintf("sql DB handle error: %v", err)
		return dep
	}
	start := time.Now()
	err = sqlDB.PingContext(ctx)
	dep.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		dep.Status = dependencyDown
		dep.Error = err.Error()
		return dep
	}
	dep.Status = dependencyUp
	return dep
}

func (s *HealthService) checkRedis(ctx context.Context) DependencyStatus {
	dep := DependencyStatus{Name: "redis"}
	if s.redis == nil {
		dep.Status = dependencyDisabled
		return dep
	}
	start := time.Now()
	err := s.redis.Ping(ctx).Err()
	dep.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		dep.Status = dependencyDown
		dep.Error = err.Error()
		return dep
	}
	dep.Status = dependencyUp
	return dep
}

func humanizeDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	d = d.Round(time.Second)
	days := d / (24 * time.Hour)
	d %= 24 * time.Hour
	hours := d / time.Hour
	d %= time.Hour
	minutes := d / time.Minute
	seconds := (d % time.Minute) / time.Second

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, " ")
}
