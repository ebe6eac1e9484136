package usecase

import (
	"context"
	"errors"
	"testing"
)

func TestStarsRoundsUp(t *testing.T) {
	uc := NewPricingUseCase(mockRates{rate: 5.0}, 5.0, testLogger())

	// 100 BRL / 5.0 = 20 USD; 20 / 0.013 = 1538.46 -> 1539 stars.
	stars, err := uc.Stars(context.Background(), "100.00")
	if err != nil {
		t.Fatalf("Stars: %v", err)
	}
	if stars != 1539 {
		t.Fatalf("stars = %d, want 1539", stars)
	}
}

func TestStarsAcceptsCommaDecimal(t *testing.T) {
	uc := NewPricingUseCase(mockRates{rate: 5.0}, 5.0, testLogger())

	a, err := uc.Stars(context.Background(), "149,90")
	if err != nil {
		t.Fatalf("Stars: %v", err)
	}
	b, err := uc.Stars(context.Background(), "149.90")
	if err != nil {
		t.Fatalf("Stars: %v", err)
	}
	if a != b {
		t.Fatalf("comma and dot forms differ: %d vs %d", a, b)
	}
}

func TestStarsFallsBackWhenRateUnavailable(t *testing.T) {
	uc := NewPricingUseCase(mockRates{err: errors.New("api down")}, 4.0, testLogger())

	// 100 BRL / 4.0 fallback = 25 USD; 25 / 0.013 = 1923.07 -> 1924 stars.
	stars, err := uc.Stars(context.Background(), "100.00")
	if err != nil {
		t.Fatalf("Stars with fallback: %v", err)
	}
	if stars != 1924 {
		t.Fatalf("stars = %d, want 1924", stars)
	}
}

func TestStarsRejectsGarbagePrice(t *testing.T) {
	uc := NewPricingUseCase(mockRates{rate: 5.0}, 5.0, testLogger())
	if _, err := uc.Stars(context.Background(), "free"); err == nil {
		t.Fatal("expected error for unparsable price")
	}
}
