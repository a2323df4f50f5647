package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// Metadata represents a JSONB field for storing key-value pairs
type Metadata map[string]string

// MetadataKeyCreditCents holds the residual credit (in cents, base-10
// string) stored on a subscription after a downgrade. Redemption against
// a future invoice is handled out of band.
const MetadataKeyCreditCents = "credit_cents"

// SetInt64 stores an integer value as its base-10 string form.
func (m Metadata) SetInt64(key string, value int64) {
	m[key] = strconv.FormatInt(value, 10)
}

// GetInt64 reads an integer value stored by SetInt64; missing or
// malformed values return 0, false.
func (m Metadata) GetInt64(key string) (int64, bool) {
	raw, ok := m[key]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Scan implements the sql.Scanner interface for Metadata
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = make(Metadata)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}

	result := make(Metadata)
	err := json.Unmarshal(bytes, &result)
	*m = result
	return err
}

// Value implements the driver.Valuer interface for Metadata
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(make(Metadata))
	}
	return json.Marshal(m)
}
