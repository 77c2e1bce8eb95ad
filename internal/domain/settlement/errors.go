package settlement

import "errors"

var (
	ErrInvalidEntry      = errors.New("invalid trip entry")
	ErrInvalidParameters = errors.New("invalid daily parameters")
	ErrInvariantViolated = errors.New("settlement invariant violated")
	ErrReportNotFound    = errors.New("daily report not found")
	ErrNoReportSource    = errors.New("no report source configured")
)
