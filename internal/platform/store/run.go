package store

import "context"

// RunInDevice wraps ctx with device and calls fn inside the provided TxRunner
func RunInDevice(ctx context.Context, tx TxRunner, deviceID string, fn func(ctx context.Context, q RowQuerier) error) error {
	ctx = WithDevice(ctx, deviceID)
	return tx.Tx(ctx, func(q RowQuerier) error {
		return fn(ctx, q)
	})
}
