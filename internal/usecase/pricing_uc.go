package usecase

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/adapter"
	"github.com/misterioso013/meu-orcamento-bot/internal/infra/metrics"
)

// starUSD is the fixed value of one star in USD.
const starUSD = 0.013

// Compile-time check
var _ PricingUseCase = (*pricingUC)(nil)

// PricingUseCase converts catalog prices (BRL decimal text) into stars.
type PricingUseCase interface {
	Stars(ctx context.Context, priceBRL string) (int64, error)
}

type pricingUC struct {
	rates        adapter.RateProvider
	fallbackRate float64
	log          *zerolog.Logger
}

func NewPricingUseCase(rates adapter.RateProvider, fallbackRate float64, logger *zerolog.Logger) *pricingUC {
	return &pricingUC{rates: rates, fallbackRate: fallbackRate, log: logger}
}

func (uc *pricingUC) Stars(ctx context.Context, priceBRL string) (int64, error) {
	price, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(priceBRL), ",", "."), 64)
	if err != nil || price <= 0 {
		return 0, fmt.Errorf("price %q: %w", priceBRL, domain.ErrInvalidArgument)
	}

	rate, err := uc.rates.USDBRL(ctx)
	if err != nil {
		// A quote outage must not take the store down. No retry.
		uc.log.Warn().Err(err).Float64("fallback", uc.fallbackRate).Msg("rate lookup failed, using fallback")
		metrics.IncRateFallback()
		rate = uc.fallbackRate
	}
	if rate <= 0 {
		return 0, fmt.Errorf("usd-brl rate %v: %w", rate, domain.ErrInvalidArgument)
	}

	usd := price / rate
	return int64(math.Ceil(usd / starUSD)), nil
}
