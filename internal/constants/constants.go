package constants

import "time"

// Context keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUser      = "current_user"
	ContextKeyRequestID = "request_id"
)

// Session
const (
	SessionCookieName = "session"
	DefaultSessionTTL = 7 * 24 * time.Hour
	SessionTokenBytes = 32
)

// Validation
const (
	MinPasswordLength = 6
	MinRating         = 1
	MaxRating         = 5
)

// Pagination and list limits
const (
	MinPageSize            = 1
	DefaultPageSize        = 20
	MaxPageSize            = 100
	NotificationListLimit  = 50
	DefaultActivityLimit   = 50
	MaxActivityLimit       = 200
	MaxAIGeneratedTasks    = 20
	RequestIDHeader        = "X-Request-ID"
	XLSXContentType        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ReportExportFilePrefix = "task-report"
)
