package utils

import "time"

// Application constants
const (
	AppName    = "copool"
	AppVersion = "1.0.0"

	// Defaults
	DefaultCurrency = "INR"
	DefaultTimeZone = "Asia/Kolkata"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL  = 24 * time.Hour
	JWTRefreshTokenTTL = 7 * 24 * time.Hour
	PasswordMinLength  = 6
	PasswordMaxLength  = 128

	// Rides. Rides may only be scheduled from today through
	// BookingHorizonDays ahead, inclusive.
	BookingHorizonDays = 2
	MaxSeatsPerRide    = 8
	MaxPricePerSeat    = 10000.0

	// Chat
	MaxMessageLength = 1000

	// Rate limiting
	DefaultRateLimit = 100
	LoginRateLimit   = 5

	// Carbon credits awarded per occupied seat when a ride completes.
	CarbonCreditsPerSeat = 2

	// Stats cache
	StatsCacheTTL = 30 * time.Second
)

// Response status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error messages
const (
	ErrInvalidCredentials = "invalid credentials"
	ErrValidationFailed   = "validation failed"
	ErrInternalServer     = "internal server error"
	ErrUnauthorized       = "unauthorized"
	ErrForbidden          = "forbidden"
)
