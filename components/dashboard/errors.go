package dashboard

import "errors"

var (
	ErrUnknownDateRange   = errors.New("dashboard: unknown date range")
	ErrUnknownSortColumn  = errors.New("dashboard: unknown sort column")
	ErrSurfaceNotMounted  = errors.New("dashboard: drawing surface not mounted")
	ErrChartDestroyed     = errors.New("dashboard: chart handle destroyed")
	ErrMalformedLayout    = errors.New("dashboard: malformed persisted layout")
	ErrGridStatic         = errors.New("dashboard: grid is not in edit mode")
	ErrGridNotInitialized = errors.New("dashboard: grid not initialized")
	ErrInitTimeout        = errors.New("dashboard: initialization deadline exceeded")
	ErrDestroyed          = errors.New("dashboard: coordinator destroyed")
	ErrAlreadyStarted     = errors.New("dashboard: coordinator already started")
	ErrSessionNotFound    = errors.New("dashboard: session not found")
	ErrMissingStore       = errors.New("dashboard: layout store not configured")
	ErrUnknownPageAction  = errors.New("dashboard: unknown page action")
	ErrUnknownCommand     = errors.New("dashboard: unknown layout command")
)
