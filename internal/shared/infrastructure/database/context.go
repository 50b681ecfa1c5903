package database

import "context"

type txKey struct{}

// txState records the transaction carried by a context and whether the unit
// of work that stored it began it.
type txState struct {
	tx    Transaction
	owner bool
}

func withTx(ctx context.Context, tx Transaction, owner bool) context.Context {
	return context.WithValue(ctx, txKey{}, txState{tx: tx, owner: owner})
}

func stateFrom(ctx context.Context) (txState, bool) {
	s, ok := ctx.Value(txKey{}).(txState)
	return s, ok && s.tx != nil
}

// TxFromContext returns the transaction in ctx, or nil.
func TxFromContext(ctx context.Context) Transaction {
	s, _ := stateFrom(ctx)
	return s.tx
}

// ExecutorFromContext returns the transaction in ctx when there is one and
// conn otherwise, so repositories join whatever unit of work is running.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return conn
}
