package ops

import (
	"github.com/hpungsan/timecapsule/internal/capsule"
	"github.com/hpungsan/timecapsule/internal/store"
)

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items   []capsule.Summary `json:"items" yaml:"items"`
	Empty   bool              `json:"empty" yaml:"empty"`
	Message string            `json:"message,omitempty" yaml:"message,omitempty"`
}

// List returns every capsule's id and open date in insertion order.
// Capsules are listed whether or not they are due.
func List(st *store.Store) (*ListOutput, error) {
	summaries, err := st.List()
	if err != nil {
		return nil, err
	}

	// Ensure we return an empty array rather than nil
	if summaries == nil {
		summaries = []capsule.Summary{}
	}

	out := &ListOutput{Items: summaries}
	if len(summaries) == 0 {
		out.Empty = true
		out.Message = MsgEmpty
	}
	return out, nil
}
