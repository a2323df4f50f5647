package testutil

import (
	"context"
	"encoding/json"
	"strconv"
)

func jsonNumber(n int) json.Number {
	return json.Number(strconv.Itoa(n))
}

// NoopTxRunner satisfies postgres.TxRunner without a database; in-memory
// stores have no transactional semantics to honor.
type NoopTxRunner struct{}

func (NoopTxRunner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
