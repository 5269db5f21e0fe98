package adjust_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/adjustment-engine/adjust"
	"github.com/warp/adjustment-engine/series"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func month(year int, m time.Month) series.Month {
	return series.NewMonth(year, m)
}

func obs(year int, m time.Month, raw string) series.Observation {
	return series.Observation{
		Period: month(year, m),
		Raw:    dec(raw),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fourMonths2025 is the pinned end-to-end fixture: ascending raw fractions
// [0.04, 0.05, 0.03, 0.06] over Jan-Apr 2025.
func fourMonths2025() series.Series {
	return series.New([]series.Observation{
		obs(2025, time.January, "0.04"),
		obs(2025, time.February, "0.05"),
		obs(2025, time.March, "0.03"),
		obs(2025, time.April, "0.06"),
	})
}

// =============================================================================
// END-TO-END COMPOUNDING
// =============================================================================

func TestCompute_FourMonthWindow_PinnedResult(t *testing.T) {
	// GIVEN: Base 100000 and four ascending months with fractions
	//        [0.04, 0.05, 0.03, 0.06]
	// WHEN:  Computing with default options
	// THEN:  Factors are [1.04, 1.05, 1.03, 1.06], cumulative factor is
	//        exactly 1.1922456 and the new amount exactly 119224.56

	result, err := adjust.Compute(dec("100000"), fourMonths2025(), adjust.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.CumulativeFactor.Equal(dec("1.1922456")) {
		t.Errorf("expected cumulative factor 1.1922456, got %s", result.CumulativeFactor)
	}
	if !result.NewAmount.Equal(dec("119224.56")) {
		t.Errorf("expected new amount 119224.56, got %s", result.NewAmount)
	}
	if !result.TotalIncreasePct.Equal(dec("19.22456")) {
		t.Errorf("expected total increase 19.22456%%, got %s", result.TotalIncreasePct)
	}
	if result.Coverage != 4 || result.WindowSize != 4 {
		t.Errorf("expected full coverage 4/4, got %d/%d", result.Coverage, result.WindowSize)
	}
	if result.Partial() {
		t.Error("full window must not report partial coverage")
	}

	wantFactors := []string{"1.04", "1.05", "1.03", "1.06"}
	for i, c := range result.Contributions {
		if !c.Factor.Equal(dec(wantFactors[i])) {
			t.Errorf("contribution %d: expected factor %s, got %s", i, wantFactors[i], c.Factor)
		}
	}
}

func TestCompute_NewAmountIsProductOfFactors(t *testing.T) {
	// GIVEN: Any valid window
	// WHEN:  Computing
	// THEN:  NewAmount == BaseAmount * product(contribution factors), exactly

	result, err := adjust.Compute(dec("73421.19"), fourMonths2025(), adjust.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	product := decimal.NewFromInt(1)
	for _, c := range result.Contributions {
		product = product.Mul(c.Factor)
	}
	if !result.NewAmount.Equal(result.BaseAmount.Mul(product)) {
		t.Errorf("new amount %s != base %s * product %s",
			result.NewAmount, result.BaseAmount, product)
	}
	if !result.CumulativeFactor.Equal(product) {
		t.Errorf("cumulative factor %s != product of factors %s",
			result.CumulativeFactor, product)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	// GIVEN: Identical inputs
	// WHEN:  Computing twice
	// THEN:  Results are identical (pure function, no hidden state)

	s := fourMonths2025()
	first, err := adjust.Compute(dec("100000"), s, adjust.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := adjust.Compute(dec("100000"), s, adjust.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !first.NewAmount.Equal(second.NewAmount) ||
		!first.CumulativeFactor.Equal(second.CumulativeFactor) ||
		len(first.Contributions) != len(second.Contributions) {
		t.Errorf("repeated computation diverged: %v vs %v", first, second)
	}
}

// =============================================================================
// WINDOW SELECTION AND ORDERING
// =============================================================================

func TestCompute_OutOfOrderInput_CompoundsChronologically(t *testing.T) {
	// GIVEN: Periods provided out of order [Mar, Jan, Feb, Apr]
	// WHEN:  Computing
	// THEN:  The trace runs Jan -> Feb -> Mar -> Apr regardless of input order

	s := series.New([]series.Observation{
		obs(2025, time.March, "0.10"),
		obs(2025, time.January, "0.05"),
		obs(2025, time.February, "0.02"),
		obs(2025, time.April, "0.03"),
	})

	result, err := adjust.Compute(dec("1000"), s, adjust.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []series.Month{
		month(2025, time.January),
		month(2025, time.February),
		month(2025, time.March),
		month(2025, time.April),
	}
	for i, c := range result.Contributions {
		if !c.Period.Equal(want[i]) {
			t.Errorf("contribution %d: expected %s, got %s", i, want[i], c.Period)
		}
	}
}

func TestCompute_SelectsMostRecentWindow(t *testing.T) {
	// GIVEN: Six months of data and the default window of 4
	// WHEN:  Computing
	// THEN:  Only the four most recent months contribute, oldest first

	s := series.New([]series.Observation{
		obs(2024, time.November, "0.90"), // outside window, would distort
		obs(2024, time.December, "0.80"), // outside window
		obs(2025, time.January, "0.04"),
		obs(2025, time.February, "0.05"),
		obs(2025, time.March, "0.03"),
		obs(2025, time.April, "0.06"),
	})

	result, err := adjust.Compute(dec("100000"), s, adjust.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Contributions) != 4 {
		t.Fatalf("expected 4 contributions, got %d", len(result.Contributions))
	}
	if got := result.Contributions[0].Period; !got.Equal(month(2025, time.January)) {
		t.Errorf("window should start at 2025-01, got %s", got)
	}
	if !result.NewAmount.Equal(dec("119224.56")) {
		t.Errorf("older months leaked into the window: new amount %s", result.NewAmount)
	}
}

func TestCompute_PartialCoverage_ProceedsAndDiscloses(t *testing.T) {
	// GIVEN: Only two published months and a window of 4
	// WHEN:  Computing
	// THEN:  Both months compound, Coverage reports 2, no error

	s := series.New([]series.Observation{
		obs(2025, time.March, "0.03"),
		obs(2025, time.April, "0.06"),
	})

	result, err := adjust.Compute(dec("100000"), s, adjust.Options{WindowSize: 4})
	if err != nil {
		t.Fatalf("partial coverage must not fail: %v", err)
	}

	if result.Coverage != 2 {
		t.Errorf("expected coverage 2, got %d", result.Coverage)
	}
	if !result.Partial() {
		t.Error("expected partial coverage to be flagged")
	}
	// 100000 * 1.03 * 1.06 = 109180
	if !result.NewAmount.Equal(dec("109180")) {
		t.Errorf("expected 109180, got %s", result.NewAmount)
	}
}

func TestCompute_CustomWindowSize(t *testing.T) {
	// GIVEN: Four months and an explicit window of 2
	// WHEN:  Computing
	// THEN:  Only March and April compound

	result, err := adjust.Compute(dec("100000"), fourMonths2025(), adjust.Options{WindowSize: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Coverage != 2 || result.WindowSize != 2 {
		t.Fatalf("expected 2/2, got %d/%d", result.Coverage, result.WindowSize)
	}
	if !result.NewAmount.Equal(dec("109180")) {
		t.Errorf("expected 109180, got %s", result.NewAmount)
	}
}

// =============================================================================
// NORMALIZATION THRESHOLD
// =============================================================================

func TestCompute_ThresholdBoundary(t *testing.T) {
	// GIVEN: Raw values straddling the detection threshold of 2.0
	// WHEN:  Normalizing
	// THEN:  1.99 stays a fraction, 2.01 becomes 0.0201, and exactly 2.0
	//        falls on the percentage side (strict less-than)

	cases := []struct {
		name     string
		raw      string
		wantRate string
	}{
		{"just below threshold is a fraction", "1.99", "1.99"},
		{"just above threshold is a percentage", "2.01", "0.0201"},
		{"exactly at threshold is a percentage", "2.0", "0.02"},
		{"typical fraction", "0.045", "0.045"},
		{"typical percentage", "4.5", "0.045"},
		{"negative value is a fraction", "-0.013", "-0.013"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := series.New([]series.Observation{obs(2025, time.April, tc.raw)})
			result, err := adjust.Compute(dec("1000"), s, adjust.Options{WindowSize: 1})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := result.Contributions[0].NormalizedRate; !got.Equal(dec(tc.wantRate)) {
				t.Errorf("raw %s: expected rate %s, got %s", tc.raw, tc.wantRate, got)
			}
		})
	}
}

func TestCompute_CustomThreshold(t *testing.T) {
	// GIVEN: A threshold raised to 10
	// WHEN:  Normalizing raw 4.5
	// THEN:  4.5 is kept as a fraction (450%), not divided

	s := series.New([]series.Observation{obs(2025, time.April, "4.5")})
	result, err := adjust.Compute(dec("1000"), s, adjust.Options{
		WindowSize:    1,
		RateThreshold: dec("10"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.Contributions[0].NormalizedRate; !got.Equal(dec("4.5")) {
		t.Errorf("expected rate 4.5 under threshold 10, got %s", got)
	}
}

func TestCompute_BorderlineValuesFlagged(t *testing.T) {
	// GIVEN: Raw values inside and outside the +-10% band around 2.0
	// WHEN:  Computing
	// THEN:  Only values within the band are flagged borderline

	cases := []struct {
		raw        string
		borderline bool
	}{
		{"1.85", true},  // within [1.8, 2.2]
		{"2.15", true},  // within [1.8, 2.2]
		{"1.5", false},
		{"4.5", false},
		{"0.04", false},
	}

	for _, tc := range cases {
		s := series.New([]series.Observation{obs(2025, time.April, tc.raw)})
		result, err := adjust.Compute(dec("1000"), s, adjust.Options{WindowSize: 1})
		if err != nil {
			t.Fatalf("raw %s: unexpected error: %v", tc.raw, err)
		}
		if got := result.Contributions[0].Borderline; got != tc.borderline {
			t.Errorf("raw %s: expected borderline=%v, got %v", tc.raw, tc.borderline, got)
		}
	}
}

// =============================================================================
// FAILURE CONDITIONS
// =============================================================================

func TestCompute_NegativeAmount_Rejected(t *testing.T) {
	// GIVEN: Base amount -500
	// WHEN:  Computing
	// THEN:  Fails with ErrInvalidAmount before touching the series

	_, err := adjust.Compute(dec("-500"), fourMonths2025(), adjust.Options{})
	if !errors.Is(err, adjust.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	var amountErr *adjust.InvalidAmountError
	if !errors.As(err, &amountErr) {
		t.Fatal("expected *InvalidAmountError")
	}
	if !amountErr.Amount.Equal(dec("-500")) {
		t.Errorf("error should carry the rejected amount, got %s", amountErr.Amount)
	}
}

func TestCompute_ZeroAmount_Rejected(t *testing.T) {
	// GIVEN: Base amount 0
	// WHEN:  Computing
	// THEN:  Fails with ErrInvalidAmount

	_, err := adjust.Compute(dec("0"), fourMonths2025(), adjust.Options{})
	if !errors.Is(err, adjust.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestCompute_EmptySeries_DataUnavailable(t *testing.T) {
	// GIVEN: A series with no observations
	// WHEN:  Computing
	// THEN:  Fails with ErrDataUnavailable

	_, err := adjust.Compute(dec("1000"), series.New(nil), adjust.Options{})
	if !errors.Is(err, adjust.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestCompute_RateAtOrBelowMinusOne_Rejected(t *testing.T) {
	// GIVEN: A month with raw -1.5 (a fraction of -150%)
	// WHEN:  Computing
	// THEN:  Fails with ErrInvalidRate identifying the offending month

	s := series.New([]series.Observation{
		obs(2025, time.March, "0.03"),
		obs(2025, time.April, "-1.5"),
	})

	_, err := adjust.Compute(dec("1000"), s, adjust.Options{})
	if !errors.Is(err, adjust.ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}

	var rateErr *adjust.InvalidRateError
	if !errors.As(err, &rateErr) {
		t.Fatal("expected *InvalidRateError")
	}
	if !rateErr.Period.Equal(month(2025, time.April)) {
		t.Errorf("error should identify 2025-04, got %s", rateErr.Period)
	}
	if !rateErr.Raw.Equal(dec("-1.5")) {
		t.Errorf("error should carry raw value -1.5, got %s", rateErr.Raw)
	}
}

func TestCompute_RateExactlyMinusOne_Rejected(t *testing.T) {
	// GIVEN: A month with raw -1 (factor would be exactly 0)
	// WHEN:  Computing
	// THEN:  Fails with ErrInvalidRate; -100% is outside the open interval

	s := series.New([]series.Observation{obs(2025, time.April, "-1")})
	_, err := adjust.Compute(dec("1000"), s, adjust.Options{})
	if !errors.Is(err, adjust.ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
}
