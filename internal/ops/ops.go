// Package ops implements the capsule operations shared by the HTTP, MCP and
// CLI front-ends. Each operation takes an Input struct and returns an Output
// struct shaped for JSON responses.
package ops

import (
	"github.com/hpungsan/timecapsule/internal/errors"
)

// Response messages.
const (
	MsgWelcome = "Welcome To TimeCapsule"
	MsgStored  = "Capsule Stored!"
	MsgDeleted = "Capsule Deleted Successfully!"
	MsgEmpty   = "No Capsule Found!"
)

// RequireID rejects a request that carries no capsule_id at all. The id itself
// is returned unchanged: ids are matched byte for byte, and an empty id is a
// lookup that finds nothing.
func RequireID(id *string) (string, error) {
	if id == nil {
		return "", errors.NewInvalidRequest("capsule_id is required")
	}
	return *id, nil
}
