package types

import (
	"fmt"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/teris-io/shortid"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex inv_0ujsswThIGTUYm2K8FjOOfXtY1K
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

var (
	sidGenerator *shortid.Shortid
	once         sync.Once
)

func initializeSID() {
	var err error
	sidGenerator, err = shortid.New(1, shortid.DefaultABC, 2342)
	if err != nil {
		panic("failed to initialize shortid generator: " + err.Error())
	}
}

// GenerateShortIDWithPrefix returns an uppercase short ID with a prefix,
// used for human-readable gateway references, e.g. `SUB-XY12A8Q`.
func GenerateShortIDWithPrefix(prefix string) string {
	once.Do(initializeSID)

	id, err := sidGenerator.Generate()
	if err != nil {
		return ""
	}
	id = strings.ReplaceAll(id, "-", "")

	return strings.ToUpper(fmt.Sprintf("%s%s", prefix, id))
}

const (
	// Prefixes for all domains and entities

	UUID_PREFIX_PLAN           = "plan"
	UUID_PREFIX_SUBSCRIPTION   = "sub"
	UUID_PREFIX_INVOICE        = "inv"
	UUID_PREFIX_TRANSACTION    = "txn"
	UUID_PREFIX_PAYMENT_SOURCE = "psrc"
)

const (
	REFERENCE_PREFIX_SUBSCRIPTION = "SUB-"
	REFERENCE_PREFIX_INVOICE      = "INV-"
	REFERENCE_PREFIX_RETRY        = "RETRY-"
)
