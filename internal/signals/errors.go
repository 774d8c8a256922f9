package signals

import "errors"

var (
	// ErrWeekClosed: неделя уже прошла, ее показания не перезаписываются.
	ErrWeekClosed = errors.New("week is closed")
	// ErrWeekNotOpen: неделя еще не началась.
	ErrWeekNotOpen = errors.New("week has not started")

	ErrNoObservations = errors.New("no indicator observations fetched")
	ErrNoReadings     = errors.New("no indicator readings for week")
)
