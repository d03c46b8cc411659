package capsule

import "testing"

func TestToSummary(t *testing.T) {
	c := New("01ABC", "hi future self", "2999-01-01")
	s := c.ToSummary()
	if s.ID != "01ABC" || s.OpenDate != "2999-01-01" {
		t.Errorf("ToSummary() = %+v", s)
	}
}
