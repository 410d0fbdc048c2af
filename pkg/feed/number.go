package feed

import (
	"math"
	"strconv"
	"strings"

	"github.com/m-mizutani/honeybadger/pkg/errors"
)

// number accepts both JSON numbers and numeric strings. HoneyDB and Apility are not consistent
// about quoting counts and ASNs.
type number string

func (x *number) UnmarshalJSON(data []byte) error {
	*x = number(strings.Trim(string(data), `"`))
	return nil
}

// Int64 accepts an integer, or a float with no fractional part such as 16276.0, within int64
func (x number) Int64() (int64, error) {
	if v, err := strconv.ParseInt(string(x), 10, 64); err == nil {
		return v, nil
	}

	f, err := x.Float64()
	if err != nil {
		return 0, err
	}
	// 2^63 itself is out of range; -2^63 is representable
	if f != math.Trunc(f) || f >= math.Ldexp(1, 63) || f < -math.Ldexp(1, 63) {
		return 0, errors.New("not an integer in int64 range").With("number", string(x))
	}
	return int64(f), nil
}

// Float64 rejects NaN and infinities that strconv accepts as text
func (x number) Float64() (float64, error) {
	f, err := strconv.ParseFloat(string(x), 64)
	if err != nil {
		return 0, errors.Wrap(err, "not a number").With("number", string(x))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a finite number").With("number", string(x))
	}
	return f, nil
}
