package modules

import (
	"encoding/json"

	"github.com/go-faster/errors"
)

// ToJSON marshals any value to a JSON string.
// Used by module handlers to serialize tool responses.
func ToJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "marshal response")
	}
	return string(b), nil
}
