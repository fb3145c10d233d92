package points

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mcoot/agame/internal/model"
)

// DefaultAmount is used when a request carries no amount
const DefaultAmount int64 = 1

// ParseAmount interprets a raw JSON amount value. An absent value means
// DefaultAmount. A JSON integer or a string holding an integer is accepted;
// anything else, or a value below 1, is model.ErrInvalidAmount.
func ParseAmount(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return DefaultAmount, nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, model.ErrInvalidAmount
		}
		return ParseAmountString(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return parsePositive(string(raw))
	default:
		// null, booleans, objects and arrays
		return 0, model.ErrInvalidAmount
	}
}

// ParseAmountString interprets a form value or JSON string. The caller
// decides whether the field was absent; an empty present value is invalid.
func ParseAmountString(s string) (int64, error) {
	return parsePositive(strings.TrimSpace(s))
}

func parsePositive(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 1 {
		return 0, model.ErrInvalidAmount
	}
	return n, nil
}
