package configuration

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		panic(err)
	}
	return c
})

// Use returns the process-wide configuration, loading it on first call.
// The struct is never mutated after load.
func Use() *Configuration {
	return singleton()
}

func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existingFiles = append(existingFiles, file)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"storefix"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type RateLimitOptions struct {
	Enabled   bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	GlobalRPS int    `env:"RATE_LIMIT_GLOBAL_RPS" envDefault:"1000"`
	Storage   string `env:"RATE_LIMIT_STORAGE" envDefault:"memory"` // memory or redis
	RedisURL  string `env:"RATE_LIMIT_REDIS_URL"`

	// Per-identity submission limit; a sliding window keyed by the
	// submitter's email address.
	SubmissionMax    int           `env:"RATE_LIMIT_SUBMISSION_MAX" envDefault:"5"`
	SubmissionWindow time.Duration `env:"RATE_LIMIT_SUBMISSION_WINDOW" envDefault:"1h"`
}

func (r *RateLimitOptions) Validate() error {
	if r.GlobalRPS < 0 {
		return fmt.Errorf("rate limit GlobalRPS must be non-negative, got %d", r.GlobalRPS)
	}
	if r.Storage != "memory" && r.Storage != "redis" {
		return fmt.Errorf("rate limit Storage must be 'memory' or 'redis', got '%s'", r.Storage)
	}
	if r.Storage == "redis" && r.RedisURL == "" {
		return fmt.Errorf("rate limit RedisURL is required when Storage is 'redis'")
	}
	if r.SubmissionMax <= 0 {
		return fmt.Errorf("rate limit SubmissionMax must be positive, got %d", r.SubmissionMax)
	}
	if r.SubmissionWindow <= 0 {
		return fmt.Errorf("rate limit SubmissionWindow must be positive, got %s", r.SubmissionWindow)
	}
	return nil
}

// IntakeOptions mirror the limits enforced client-side; the two copies must
// agree or the client will accept payloads the server rejects.
type IntakeOptions struct {
	MaxNameLength    int `env:"INTAKE_MAX_NAME_LENGTH" envDefault:"100"`
	MaxEmailLength   int `env:"INTAKE_MAX_EMAIL_LENGTH" envDefault:"254"`
	MaxURLLength     int `env:"INTAKE_MAX_URL_LENGTH" envDefault:"2048"`
	MaxMessageLength int `env:"INTAKE_MAX_MESSAGE_LENGTH" envDefault:"5000"`

	MaxVoiceNoteBytes   int64    `env:"INTAKE_MAX_VOICE_NOTE_BYTES" envDefault:"10485760"` // 10 MiB
	MaxVoiceNoteSeconds int      `env:"INTAKE_MAX_VOICE_NOTE_SECONDS" envDefault:"180"`
	AllowedAudioTypes   []string `env:"INTAKE_ALLOWED_AUDIO_TYPES" envDefault:"audio/webm,audio/ogg,audio/mp4,audio/mpeg,audio/wav"`

	// AllowedOrigins is the submission origin allow-list. Empty means the
	// check is disabled.
	AllowedOrigins []string `env:"INTAKE_ALLOWED_ORIGINS"`

	// AllowBulkReset guards the destructive reset endpoint used by tests
	// and staging environments.
	AllowBulkReset bool `env:"INTAKE_ALLOW_BULK_RESET" envDefault:"false"`
}

func (o *IntakeOptions) Validate() error {
	if o.MaxVoiceNoteBytes <= 0 {
		return fmt.Errorf("intake MaxVoiceNoteBytes must be positive, got %d", o.MaxVoiceNoteBytes)
	}
	if o.MaxVoiceNoteSeconds <= 0 {
		return fmt.Errorf("intake MaxVoiceNoteSeconds must be positive, got %d", o.MaxVoiceNoteSeconds)
	}
	if len(o.AllowedAudioTypes) == 0 {
		return fmt.Errorf("intake AllowedAudioTypes must not be empty")
	}
	return nil
}

type WorkflowOptions struct {
	// TurnaroundDays is the SLA promise: due date = quote acceptance plus
	// this many days.
	TurnaroundDays int `env:"WORKFLOW_TURNAROUND_DAYS" envDefault:"7"`

	// HoldExtendsSLA controls whether time spent on hold is added back to
	// the due date when work resumes. The historical behavior is false:
	// hold time counts against the turnaround promise.
	HoldExtendsSLA bool `env:"WORKFLOW_HOLD_EXTENDS_SLA" envDefault:"false"`
}

type BillingOptions struct {
	Currency      string `env:"BILLING_CURRENCY" envDefault:"USD"`
	TaxRegistered bool   `env:"BILLING_TAX_REGISTERED" envDefault:"false"`
	TaxRate       string `env:"BILLING_TAX_RATE" envDefault:"0.20"`

	// ReminderAfter is how long an invoice may sit in Invoiced before the
	// reminder sweep nudges the client.
	ReminderAfter time.Duration `env:"BILLING_REMINDER_AFTER" envDefault:"336h"` // 14 days
}

type SMTPOptions struct {
	Host     string `env:"SMTP_HOST" envDefault:"localhost"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM" envDefault:"no-reply@storefix.example"`

	AdminEmail string `env:"ADMIN_EMAIL" envDefault:"admin@storefix.example"`
}

type StorageOptions struct {
	Endpoint      string `env:"STORAGE_ENDPOINT" envDefault:"localhost:9000"`
	AccessKey     string `env:"STORAGE_ACCESS_KEY"`
	SecretKey     string `env:"STORAGE_SECRET_KEY"`
	Bucket        string `env:"STORAGE_BUCKET" envDefault:"storefix-voice-notes"`
	UseSSL        bool   `env:"STORAGE_USE_SSL" envDefault:"false"`
	PublicBaseURL string `env:"STORAGE_PUBLIC_BASE_URL"`
}

type OutboxOptions struct {
	RelayEnabled bool          `env:"OUTBOX_RELAY_ENABLED" envDefault:"true"`
	PollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"5s"`
	BatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"20"`
	MaxAttempts  int           `env:"OUTBOX_MAX_ATTEMPTS" envDefault:"10"`
}

type MetricsOptions struct {
	Enabled bool   `env:"METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"METRICS_PATH" envDefault:"/debug/metrics"`
}

type Configuration struct {
	Database  DatabaseOptions
	RateLimit RateLimitOptions
	Intake    IntakeOptions
	Workflow  WorkflowOptions
	Billing   BillingOptions
	SMTP      SMTPOptions
	Storage   StorageOptions
	Outbox    OutboxOptions
	Metrics   MetricsOptions

	SocketAddress string `env:"SOCKET_ADDRESS" envDefault:":8080"`
	Origin        string `env:"ORIGIN" envDefault:"http://localhost:8080"`
	Environment   string `env:"GO_APP_ENV" envDefault:"development"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	RealIPHeader    string `env:"REAL_IP_HEADER" envDefault:"X-Real-IP"`
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`

	logger *logrus.Logger
}

func (c *Configuration) load(envFiles []string) error {
	if _, err := LoadEnv(envFiles); err != nil {
		return err
	}
	if err := env.Parse(c); err != nil {
		return err
	}
	c.Database.Opts = c.Database.ConnectionString()
	if err := c.RateLimit.Validate(); err != nil {
		return err
	}
	if err := c.Intake.Validate(); err != nil {
		return err
	}
	c.logger = newLogger(c.LogLevel, c.Environment)
	return nil
}

// LoadFor parses configuration from the current environment without touching
// the singleton; tests use it to build isolated configurations.
func LoadFor(envFiles []string) (*Configuration, error) {
	c := &Configuration{}
	if err := c.load(envFiles); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) IsProduction() bool {
	return strings.EqualFold(c.Environment, Production)
}

func newLogger(level, environment string) *logrus.Logger {
	logger := logrus.New()
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	if strings.EqualFold(environment, Production) {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
