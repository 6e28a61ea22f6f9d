package requests

import (
	"bytes"
	"fmt"
	"strconv"
)

// ID is a 64-bit identifier. Responses send ids as strings, so clients
// usually echo them back quoted; bare numbers are accepted too.
type ID uint64

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", b)
	}
	*id = ID(n)
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(id), 10) + `"`), nil
}

// Uint64 returns the raw value.
func (id ID) Uint64() uint64 { return uint64(id) }
