package restaurant

// CancellationReason is a row in the static cancellation catalogue. The
// catalogue is seeded by migration and read-only to the booking service, so
// it is a plain value type rather than an aggregate.
type CancellationReason struct {
	ID          int64
	Reason      string
	Description string
}
