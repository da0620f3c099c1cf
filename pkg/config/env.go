package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvLockTTL         = "LOCK_TTL"
	EnvLockMaxAttempts = "LOCK_MAX_ATTEMPTS"
	EnvLockRetryDelay  = "LOCK_RETRY_DELAY"

	EnvSchedulerEnabled  = "SCHEDULER_ENABLED"
	EnvSchedulerInterval = "SCHEDULER_INTERVAL"

	EnvAutoOpenMinutesBefore = "AUTO_OPEN_MINUTES_BEFORE"
	EnvAutoEndGraceMinutes   = "AUTO_END_GRACE_MINUTES"
	EnvLateThresholdMinutes  = "LATE_THRESHOLD_MINUTES"

	EnvKafkaEnabled      = "KAFKA_ENABLED"
	EnvCheckInEventTopic = "CHECKIN_EVENT_TOPIC"
)
