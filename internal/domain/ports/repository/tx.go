package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes a function within a database transaction,
// passing the underlying handle via `qx`. Repository methods that accept
// `qx any` detect a tx implementation-side and bind their statements to it;
// they MUST gracefully accept nil qx (non-transactional path).
//
// Usage:
//
//	tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, qx repository.Tx) error {
//	    b, err := budgets.FindByID(ctx, qx, id)
//	    ...
//	    return err
//	})
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
