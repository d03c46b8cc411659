package capsule

// Capsule is a stored message bound to an open date.
// The JSON tags are the durable record format.
type Capsule struct {
	// ID is a ULID generated at creation; immutable
	ID string `json:"capsule_id" yaml:"capsule_id"`

	// Message is the free-form text released once the capsule is due
	Message string `json:"message" yaml:"message"`

	// OpenDate is a calendar date in YYYY-MM-DD form. It is stored as given and
	// only parsed on read.
	OpenDate string `json:"open_date" yaml:"open_date"`
}

// New constructs a Capsule. No validation is applied to openDate.
func New(id, message, openDate string) Capsule {
	return Capsule{
		ID:       id,
		Message:  message,
		OpenDate: openDate,
	}
}
