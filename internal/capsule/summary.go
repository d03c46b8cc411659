package capsule

// Summary is the listing projection of a capsule: id and open date, no message.
type Summary struct {
	ID       string `json:"id" yaml:"id"`
	OpenDate string `json:"open_date" yaml:"open_date"`
}

// ToSummary strips the message from a capsule.
func (c *Capsule) ToSummary() Summary {
	return Summary{
		ID:       c.ID,
		OpenDate: c.OpenDate,
	}
}
