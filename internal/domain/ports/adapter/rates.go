package adapter

import "context"

// RateProvider quotes the USD-BRL exchange rate.
type RateProvider interface {
	USDBRL(ctx context.Context) (float64, error)
}
