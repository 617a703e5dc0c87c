package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// JWT
	JWTSecret    string
	JWTExpiresIn time.Duration

	// AWS S3 (payment vouchers)
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	S3BucketName       string

	// Server
	Port   string
	AppEnv string

	// File Upload
	MaxFileSize       int64
	AllowedExtensions string

	// Logging
	LogLevel string
	LogFile  string

	// LINE Messaging
	LineChannelSecret string
	LineChannelToken  string

	// Email (Resend)
	ResendAPIKey string
	MailFrom     string

	// Bootstrap admin, created on first start when no admin exists
	AdminEmail    string
	AdminPassword string

	// Billing
	InvoiceDueDay int

	// Maintenance jobs (cron specs)
	ExpireSubscriptionsCron string
	GenerateInvoicesCron    string
	FlushLogsCron           string
	ArchiveLogsCron         string
	LogRetentionDays        int

	// Feature Toggles
	SkipMigrate bool
}

func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=UTC"
}

// AllowedExtensionList splits AllowedExtensions into lowercase extensions.
func (c *Config) AllowedExtensionList() []string {
	var out []string
	for _, ext := range strings.Split(c.AllowedExtensions, ",") {
		if ext = strings.ToLower(strings.TrimSpace(ext)); ext != "" {
			out = append(out, ext)
		}
	}
	return out
}

var AppConfig *Config

func LoadConfig() {
	useSSM := getEnv("USE_SSM", "false") == "true"

	var paramMap map[string]string

	// Stage & base path for SSM (allows multi-env without code changes)
	basePath := getEnv("SSM_BASE_PATH", "/ecuestre")
	stage := getEnv("STAGE", getEnv("APP_ENV", "production"))
	prefix := strings.TrimRight(basePath, "/") + "/" + stage

	if useSSM {
		sess, err := session.NewSession(&aws.Config{Region: aws.String(getEnv("AWS_REGION", "us-east-1"))})
		if err != nil {
			log.Fatal("Failed to create AWS session:", err)
		}
		log.Printf("Using AWS SSM Parameter Store (prefix=%s)", prefix)
		paramMap = fetchSSMParameters(ssm.New(sess), prefix)
	} else {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: .env file not found, using environment variables")
		}
	}

	getVal := func(key, def string) string {
		if v, ok := paramMap[strings.ToUpper(key)]; ok && v != "" {
			return v
		}
		return getEnv(strings.ToUpper(key), def)
	}

	cfg, err := build(getVal)
	if err != nil {
		log.Fatal(err)
	}
	AppConfig = cfg

	validateConfig(AppConfig, useSSM)
}

// build assembles a Config from a key lookup. Split from LoadConfig so the
// parsing rules can be exercised without touching the process environment.
func build(getVal func(key, def string) string) (*Config, error) {
	jwtExpires, err := parseDuration(getVal("JWT_EXPIRES_IN", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN format: %w", err)
	}

	maxFileSize, err := strconv.ParseInt(getVal("MAX_FILE_SIZE", "10485760"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_FILE_SIZE format: %w", err)
	}

	dueDay, err := strconv.Atoi(getVal("INVOICE_DUE_DAY", "10"))
	if err != nil || dueDay < 1 || dueDay > 28 {
		return nil, fmt.Errorf("invalid INVOICE_DUE_DAY: must be between 1 and 28")
	}

	retention, err := strconv.Atoi(getVal("LOG_RETENTION_DAYS", "90"))
	if err != nil || retention < 7 {
		return nil, fmt.Errorf("invalid LOG_RETENTION_DAYS: must be at least 7")
	}

	return &Config{
		DBHost:     getVal("DB_HOST", "localhost"),
		DBPort:     getVal("DB_PORT", "3306"),
		DBUser:     getVal("DB_USER", "root"),
		DBPassword: getVal("DB_PASSWORD", ""),
		DBName:     getVal("DB_NAME", "ecuestre"),

		RedisHost:     getVal("REDIS_HOST", "localhost"),
		RedisPort:     getVal("REDIS_PORT", "6379"),
		RedisPassword: getVal("REDIS_PASSWORD", ""),

		JWTSecret:    getVal("JWT_SECRET", "your_super_secret_jwt_key"),
		JWTExpiresIn: jwtExpires,

		AWSRegion:          getVal("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getVal("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getVal("AWS_SECRET_ACCESS_KEY", ""),
		S3BucketName:       getVal("S3_BUCKET_NAME", "ecuestre-comprobantes"),

		Port:   getVal("PORT", "3000"),
		AppEnv: getVal("APP_ENV", "development"),

		MaxFileSize:       maxFileSize,
		AllowedExtensions: getVal("ALLOWED_EXTENSIONS", "jpg,jpeg,png,webp,pdf"),

		LogLevel: getVal("LOG_LEVEL", "info"),
		LogFile:  getVal("LOG_FILE", "logs/app.log"),

		LineChannelSecret: getVal("LINE_CHANNEL_SECRET", ""),
		LineChannelToken:  getVal("LINE_CHANNEL_ACCESS_TOKEN", ""),

		ResendAPIKey: getVal("RESEND_API_KEY", ""),
		MailFrom:     getVal("MAIL_FROM", "Centro Ecuestre <no-reply@ecuestre.local>"),

		AdminEmail:    getVal("ADMIN_EMAIL", ""),
		AdminPassword: getVal("ADMIN_PASSWORD", ""),

		InvoiceDueDay: dueDay,

		ExpireSubscriptionsCron: getVal("CRON_EXPIRE_SUBSCRIPTIONS", "0 5 0 * * *"),
		GenerateInvoicesCron:    getVal("CRON_GENERATE_INVOICES", "0 0 6 1 * *"),
		FlushLogsCron:           getVal("CRON_FLUSH_LOGS", "0 */15 * * * *"),
		ArchiveLogsCron:         getVal("CRON_ARCHIVE_LOGS", "0 30 3 * * 0"),
		LogRetentionDays:        retention,

		SkipMigrate: strings.ToLower(getVal("SKIP_MIGRATE", "false")) == "true",
	}, nil
}

// parseDuration accepts Go durations plus day (d) and week (w) shorthands.
func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err == nil {
		return d, nil
	}
	s = strings.TrimSpace(strings.ToLower(s))
	if len(s) > 1 {
		n, convErr := strconv.Atoi(s[:len(s)-1])
		if convErr == nil {
			switch s[len(s)-1] {
			case 'd':
				return time.Duration(n) * 24 * time.Hour, nil
			case 'w':
				return time.Duration(n*7) * 24 * time.Hour, nil
			}
		}
	}
	return 0, err
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// fetchSSMParameters reads all parameters under prefix and returns map with UPPERCASE keys.
func fetchSSMParameters(client *ssm.SSM, prefix string) map[string]string {
	out := make(map[string]string)
	var next *string
	for {
		in := &ssm.GetParametersByPathInput{
			Path:           aws.String(prefix),
			WithDecryption: aws.Bool(true),
			Recursive:      aws.Bool(true),
			NextToken:      next,
		}
		resp, err := client.GetParametersByPath(in)
		if err != nil {
			log.Printf("Warning: unable to fetch SSM parameters for prefix %s: %v", prefix, err)
			break
		}
		for _, p := range resp.Parameters {
			if p.Name == nil || p.Value == nil {
				continue
			}
			name := *p.Name
			key := name[strings.LastIndex(name, "/")+1:]
			if key == "" {
				continue
			}
			out[strings.ToUpper(key)] = *p.Value
		}
		if resp.NextToken == nil || *resp.NextToken == "" {
			break
		}
		next = resp.NextToken
	}
	return out
}

func validateConfig(c *Config, usedSSM bool) {
	// Only enforce stricter rules in production
	if strings.ToLower(c.AppEnv) != "production" {
		return
	}
	required := map[string]string{
		"DB_PASSWORD": c.DBPassword,
		"JWT_SECRET":  c.JWTSecret,
	}
	for k, v := range required {
		if strings.TrimSpace(v) == "" {
			log.Fatalf("Missing required secret %s in production (SSM=%v)", k, usedSSM)
		}
	}
	if len(c.JWTSecret) < 16 {
		log.Fatal("JWT_SECRET too short (min 16 chars)")
	}
}
