package request

import "encoding/json"

// AddPointsRequest is the request body for adding points.
// Amount is kept raw so that integer strings and absent values can be
// told apart from malformed ones.
type AddPointsRequest struct {
	Amount json.RawMessage `json:"amount"`
}
