package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvBookingCreatePolicy = "BOOKING_CREATE_POLICY"
	EnvSlotLockTTL         = "SLOT_LOCK_TTL"
	EnvMaxSearchRadius     = "MAX_SEARCH_RADIUS_METERS"

	EnvPaymentBaseURL       = "PAYMENT_BASE_URL"
	EnvPaymentCurrency      = "PAYMENT_CURRENCY"
	EnvPaymentWebhookSecret = "PAYMENT_WEBHOOK_SECRET"
	EnvCheckoutSuccessURL   = "CHECKOUT_SUCCESS_URL"
	EnvCheckoutCancelURL    = "CHECKOUT_CANCEL_URL"

	EnvNotifyTopic   = "NOTIFY_TOPIC"
	EnvNotifyEnabled = "NOTIFY_ENABLED"
)
