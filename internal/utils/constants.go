package utils

import "time"

// Application Constants
const (
	AppName = "RentRide"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Booking
	MinBookingDuration = 24 * time.Hour
	DateLayout         = "2006-01-02"

	// Review
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 500

	// File Upload
	MaxImageSize     = 5 * 1024 * 1024 // 5MB
	ThumbnailMaxSize = 300

	// Rate Limiting
	LoginRateWindow = time.Minute
	APIRateWindow   = time.Minute
)

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response messages
const (
	MsgInvalidCredentials = "invalid credentials"
	MsgInvalidToken       = "invalid or expired token"
	MsgMissingToken       = "authorization token required"
	MsgInternalServer     = "internal server error"
	MsgUnauthorized       = "unauthorized"
	MsgForbidden          = "forbidden"
	MsgValidationFailed   = "validation failed"
	MsgRateLimited        = "too many requests"
	MsgInvalidID          = "invalid id"
)

// Cache Keys
const (
	CacheWebhookEventPrefix = "webhook_event:"
	CacheRateLimitPrefix    = "rate_limit:"
	CacheVehiclePrefix      = "vehicle:"
)

// File Types
var AllowedImageTypes = []string{".jpg", ".jpeg", ".png"}
