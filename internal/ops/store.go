package ops

import (
	"github.com/hpungsan/timecapsule/internal/capsule"
	"github.com/hpungsan/timecapsule/internal/config"
	"github.com/hpungsan/timecapsule/internal/errors"
	"github.com/hpungsan/timecapsule/internal/store"
)

// StoreInput contains parameters for the Store operation.
type StoreInput struct {
	Message  string `json:"message" yaml:"message"`
	OpenDate string `json:"open_date" yaml:"open_date"`
}

// StoreOutput contains the result of the Store operation.
type StoreOutput struct {
	Message string `json:"message" yaml:"message"`
	ID      string `json:"id" yaml:"id"`
}

// Store seals a new capsule. The open date is kept as given; a malformed value
// is reported when the capsule is later read.
func Store(st *store.Store, cfg *config.Config, input StoreInput) (*StoreOutput, error) {
	if cfg != nil && cfg.MessageMaxChars > 0 {
		if n := capsule.CountChars(input.Message); n > cfg.MessageMaxChars {
			return nil, errors.NewMessageTooLarge(cfg.MessageMaxChars, n)
		}
	}

	id, err := st.Store(input.Message, input.OpenDate)
	if err != nil {
		return nil, err
	}

	return &StoreOutput{
		Message: MsgStored,
		ID:      id,
	}, nil
}
