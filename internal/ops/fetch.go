package ops

import (
	"github.com/hpungsan/timecapsule/internal/store"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID string `json:"capsule_id" yaml:"capsule_id"`
}

// FetchOutput contains the result of the Fetch operation. Message holds the
// capsule text when due and the pending notice otherwise.
type FetchOutput struct {
	ID       string `json:"capsule_id" yaml:"capsule_id"`
	Message  string `json:"message" yaml:"message"`
	Due      bool   `json:"due" yaml:"due"`
	OpenDate string `json:"open_date" yaml:"open_date"`
}

// Fetch opens a capsule if its date has arrived.
func Fetch(st *store.Store, input FetchInput) (*FetchOutput, error) {
	res, err := st.Fetch(input.ID)
	if err != nil {
		return nil, err
	}

	return &FetchOutput{
		ID:       res.Capsule.ID,
		Message:  res.Text(),
		Due:      res.Due,
		OpenDate: res.Capsule.OpenDate,
	}, nil
}
