package lambda

import (
	"encoding/json"

	"github.com/m-mizutani/honeybadger/pkg/errors"
)

// Event is raw event data that Lambda Function received
type Event json.RawMessage

// Bind unmarshal event to v
func (x Event) Bind(v interface{}) error {
	if len(x) == 0 {
		return errors.New("Lambda event is empty")
	}
	if err := json.Unmarshal(x, v); err != nil {
		return errors.Wrap(err, "Failed json.Unmarshal lambda event").With("raw", string(x))
	}
	return nil
}
