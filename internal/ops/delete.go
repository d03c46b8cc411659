package ops

import (
	"github.com/hpungsan/timecapsule/internal/store"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID string `json:"capsule_id" yaml:"capsule_id"`
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted" yaml:"deleted"`
	ID      string `json:"id" yaml:"id"`
	Message string `json:"message" yaml:"message"`
}

// Delete permanently removes a capsule.
func Delete(st *store.Store, input DeleteInput) (*DeleteOutput, error) {
	if err := st.Delete(input.ID); err != nil {
		return nil, err
	}

	return &DeleteOutput{
		Deleted: true,
		ID:      input.ID,
		Message: MsgDeleted,
	}, nil
}
