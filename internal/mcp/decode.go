package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/timecapsule/internal/errors"
)

// decode converts tool arguments into a request struct by round-tripping them
// through JSON. Arguments of the wrong type come back as INVALID_REQUEST.
func decode[T any](req mcp.CallToolRequest) (T, *errors.CapsuleError) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, errors.NewInvalidRequest(fmt.Sprintf("arguments are not valid JSON: %v", err))
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, errors.NewInvalidRequest(fmt.Sprintf("invalid arguments: %v", err))
	}
	return result, nil
}
