package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "gateless"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 20
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultBookingCreatePolicy = BestEffort
	DefaultSlotLockTTL         = 10 * time.Second
	DefaultMaxSearchRadius     = 50_000 // meters

	DefaultPaymentCurrency    = "NPR"
	DefaultCheckoutSuccessURL = "http://localhost:3000/book/checkout/result"
	DefaultCheckoutCancelURL  = "http://localhost:3000/locations"

	DefaultNotifyTopic = "booking-confirmations"

	DefaultPaginationLimit = 100
)
