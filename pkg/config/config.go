package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"checkinapp/pkg/client"
	"checkinapp/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	LockTTL         time.Duration
	LockMaxAttempts int
	LockRetryDelay  time.Duration

	SchedulerEnabled  bool
	SchedulerInterval time.Duration

	AutoOpenMinutesBefore int
	AutoEndGraceMinutes   int
	LateThresholdMinutes  int

	KafkaEnabled      bool
	CheckInEventTopic string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		LockTTL:         getEnvDuration(EnvLockTTL, DefaultLockTTL),
		LockMaxAttempts: getEnvNum(EnvLockMaxAttempts, DefaultLockMaxAttempts),
		LockRetryDelay:  getEnvDuration(EnvLockRetryDelay, DefaultLockRetryDelay),

		SchedulerEnabled:  getEnvBool(EnvSchedulerEnabled, DefaultSchedulerEnabled),
		SchedulerInterval: getEnvDuration(EnvSchedulerInterval, DefaultSchedulerInterval),

		AutoOpenMinutesBefore: getEnvNum(EnvAutoOpenMinutesBefore, DefaultAutoOpenMinutesBefore),
		AutoEndGraceMinutes:   getEnvNum(EnvAutoEndGraceMinutes, DefaultAutoEndGraceMinutes),
		LateThresholdMinutes:  getEnvNum(EnvLateThresholdMinutes, DefaultLateThresholdMinutes),

		KafkaEnabled:      getEnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),
		CheckInEventTopic: getEnvStr(EnvCheckInEventTopic, DefaultCheckInEventTopic),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.LockTTL <= 0 {
		errors = append(errors, fmt.Sprintf("LockTTL must be positive, got: %s", cfg.LockTTL))
	}
	if cfg.LockMaxAttempts <= 0 {
		errors = append(errors, fmt.Sprintf("LockMaxAttempts must be positive, got: %d", cfg.LockMaxAttempts))
	}
	if cfg.LockRetryDelay <= 0 {
		errors = append(errors, fmt.Sprintf("LockRetryDelay must be positive, got: %s", cfg.LockRetryDelay))
	}
	if cfg.LockRetryDelay >= cfg.LockTTL {
		errors = append(errors, fmt.Sprintf("LockRetryDelay (%s) must be shorter than LockTTL (%s)", cfg.LockRetryDelay, cfg.LockTTL))
	}

	if cfg.SchedulerInterval <= 0 {
		errors = append(errors, fmt.Sprintf("SchedulerInterval must be positive, got: %s", cfg.SchedulerInterval))
	}

	if cfg.AutoOpenMinutesBefore < 0 {
		errors = append(errors, fmt.Sprintf("AutoOpenMinutesBefore cannot be negative, got: %d", cfg.AutoOpenMinutesBefore))
	}
	if cfg.AutoEndGraceMinutes < 0 {
		errors = append(errors, fmt.Sprintf("AutoEndGraceMinutes cannot be negative, got: %d", cfg.AutoEndGraceMinutes))
	}
	if cfg.LateThresholdMinutes < 0 {
		errors = append(errors, fmt.Sprintf("LateThresholdMinutes cannot be negative, got: %d", cfg.LateThresholdMinutes))
	}

	if cfg.KafkaEnabled && cfg.CheckInEventTopic == "" {
		errors = append(errors, "CheckInEventTopic cannot be empty when Kafka is enabled")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"lock_ttl", cfg.LockTTL,
		"lock_max_attempts", cfg.LockMaxAttempts,
		"lock_retry_delay", cfg.LockRetryDelay,
		"scheduler_enabled", cfg.SchedulerEnabled,
		"scheduler_interval", cfg.SchedulerInterval,
		"auto_open_minutes_before", cfg.AutoOpenMinutesBefore,
		"auto_end_grace_minutes", cfg.AutoEndGraceMinutes,
		"late_threshold_minutes", cfg.LateThresholdMinutes,
		"kafka_enabled", cfg.KafkaEnabled,
		"checkin_event_topic", cfg.CheckInEventTopic,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int) int {
	return max(0, offset)
}
