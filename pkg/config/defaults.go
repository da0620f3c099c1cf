package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "checkinapp"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// The lock TTL bounds the worst-case hold time of a crashed holder; the
	// retry budget bounds how long a caller may block on a contended resource.
	DefaultLockTTL         = 5 * time.Second
	DefaultLockMaxAttempts = 3
	DefaultLockRetryDelay  = 150 * time.Millisecond

	DefaultSchedulerEnabled  = true
	DefaultSchedulerInterval = 1 * time.Minute

	DefaultAutoOpenMinutesBefore = 15
	DefaultAutoEndGraceMinutes   = 30
	DefaultLateThresholdMinutes  = 10

	DefaultKafkaEnabled      = false
	DefaultCheckInEventTopic = "checkin.events"

	DefaultPaginationLimit = 100
)
