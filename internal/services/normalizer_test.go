package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsightlab/finsight-go/internal/config"
	"github.com/finsightlab/finsight-go/internal/models"
)

func newTestNormalizer(tolerance float64) *Normalizer {
	cfg := config.NormalizerConfig{
		DisagreementTolerance: tolerance,
		SourcePriority:        []string{"sec_edgar", "yfinance"},
		Aliases:               config.DefaultAliases(),
	}
	return NewNormalizer(cfg, testLogger())
}

func TestNormalizeEmptyInputIsFatal(t *testing.T) {
	n := newTestNormalizer(0.05)

	_, _, err := n.Normalize("ACME", nil)
	assert.ErrorIs(t, err, ErrNoFacts)

	_, _, err = n.Normalize("ACME", []models.RawFact{})
	assert.ErrorIs(t, err, ErrNoFacts)
}

func TestNormalizeSingleSourceRoundTrip(t *testing.T) {
	n := newTestNormalizer(0.05)

	facts := []models.RawFact{
		fact("sec_edgar", "AssetsCurrent", "2023-12-31", "150000.25"),
		fact("sec_edgar", "LiabilitiesCurrent", "2023-12-31", "100000"),
		fact("sec_edgar", "Revenues", "2023-12-31", "1234567.89"),
	}

	stmt, warnings, err := n.Normalize("ACME", facts)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Equal(t, []string{"2023-12-31"}, stmt.Periods)

	tests := []struct {
		item models.Item
		want string
	}{
		{models.ItemCurrentAssets, "150000.25"},
		{models.ItemCurrentLiabilities, "100000"},
		{models.ItemRevenue, "1234567.89"},
	}
	for _, tt := range tests {
		v, ok := stmt.Lookup("2023-12-31", tt.item)
		require.True(t, ok, "expected %s to be present", tt.item)
		// Exact reproduction, no precision loss.
		assert.True(t, decimal.RequireFromString(tt.want).Equal(v.Value),
			"%s: want %s, got %s", tt.item, tt.want, v.Value)
		assert.True(t, v.Agreement)
		assert.Equal(t, []string{"sec_edgar"}, v.Sources)
	}
}

func TestNormalizeLabelMatchingIsCaseAndSpacingInsensitive(t *testing.T) {
	n := newTestNormalizer(0.05)

	facts := []models.RawFact{
		fact("yfinance", "  Total   Revenue ", "2023-12-31", "500"),
		fact("yfinance", "TOTAL ASSETS", "2023-12-31", "900"),
		fact("yfinance", "StockholdersEquity", "2023-12-31", "400"),
	}

	stmt, _, err := n.Normalize("ACME", facts)
	require.NoError(t, err)

	for _, item := range []models.Item{models.ItemRevenue, models.ItemTotalAssets, models.ItemShareholdersEquity} {
		_, ok := stmt.Lookup("2023-12-31", item)
		assert.True(t, ok, "expected %s to match", item)
	}
}

func TestNormalizeAliasPreferenceOrder(t *testing.T) {
	n := newTestNormalizer(0.05)

	// One source reports both "Revenues" and "Sales"; the alias table
	// prefers "revenues".
	facts := []models.RawFact{
		fact("sec_edgar", "Sales", "2023-12-31", "111"),
		fact("sec_edgar", "Revenues", "2023-12-31", "222"),
	}

	stmt, _, err := n.Normalize("ACME", facts)
	require.NoError(t, err)

	v, ok := stmt.Lookup("2023-12-31", models.ItemRevenue)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(222).Equal(v.Value))
}

func TestNormalizeDisagreementDetection(t *testing.T) {
	tests := []struct {
		name          string
		tolerance     float64
		wantAgreement bool
	}{
		{name: "5 percent tolerance flags 100 vs 110", tolerance: 0.05, wantAgreement: false},
		{name: "15 percent tolerance accepts 100 vs 110", tolerance: 0.15, wantAgreement: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newTestNormalizer(tt.tolerance)
			facts := []models.RawFact{
				fact("sec_edgar", "AssetsCurrent", "2023-12-31", "100"),
				fact("yfinance", "Current Assets", "2023-12-31", "110"),
			}

			stmt, warnings, err := n.Normalize("ACME", facts)
			require.NoError(t, err)

			v, ok := stmt.Lookup("2023-12-31", models.ItemCurrentAssets)
			require.True(t, ok)
			assert.Equal(t, tt.wantAgreement, v.Agreement)
			// Higher-priority source wins either way.
			assert.True(t, decimal.NewFromInt(100).Equal(v.Value))
			assert.Equal(t, []string{"sec_edgar", "yfinance"}, v.Sources)
			// Both contributing values retained for audit.
			require.Len(t, v.SourceValues, 2)
			assert.True(t, decimal.NewFromInt(110).Equal(v.SourceValues["yfinance"]))

			if tt.wantAgreement {
				assert.Empty(t, warnings)
			} else {
				require.Len(t, warnings, 1)
				assert.Equal(t, models.WarnSourceDisagreement, warnings[0].Code)
			}
		})
	}
}

func TestNormalizeUnknownSourceRanksAfterConfigured(t *testing.T) {
	n := newTestNormalizer(0.5)

	facts := []models.RawFact{
		fact("some_scraper", "Revenue", "2023-12-31", "999"),
		fact("yfinance", "Revenue", "2023-12-31", "1000"),
	}

	stmt, _, err := n.Normalize("ACME", facts)
	require.NoError(t, err)

	v, ok := stmt.Lookup("2023-12-31", models.ItemRevenue)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(1000).Equal(v.Value), "configured source should win over unknown one")
}

func TestNormalizeUnparsableValueIsAbsentNotZero(t *testing.T) {
	n := newTestNormalizer(0.05)

	facts := []models.RawFact{
		fact("sec_edgar", "Revenues", "2023-12-31", "N/A"),
		fact("sec_edgar", "Assets", "2023-12-31", "500"),
	}

	stmt, warnings, err := n.Normalize("ACME", facts)
	require.NoError(t, err)

	_, ok := stmt.Lookup("2023-12-31", models.ItemRevenue)
	assert.False(t, ok, "unparsable value must be absent, not zero")

	require.Len(t, warnings, 1)
	assert.Equal(t, models.WarnUnparsableValue, warnings[0].Code)
	assert.Equal(t, "sec_edgar", warnings[0].Source)

	_, ok = stmt.Lookup("2023-12-31", models.ItemTotalAssets)
	assert.True(t, ok, "one bad value must not block other items")
}

func TestNormalizeMissingItemStaysMissing(t *testing.T) {
	n := newTestNormalizer(0.05)

	facts := []models.RawFact{
		fact("sec_edgar", "Revenues", "2023-12-31", "1000"),
	}

	stmt, _, err := n.Normalize("ACME", facts)
	require.NoError(t, err)

	_, ok := stmt.Lookup("2023-12-31", models.ItemInventory)
	assert.False(t, ok, "missing item and true zero must not be conflated")
}

func TestNormalizeMultiplePeriodsSorted(t *testing.T) {
	n := newTestNormalizer(0.05)

	facts := []models.RawFact{
		fact("sec_edgar", "Revenues", "2023-12-31", "1000"),
		fact("sec_edgar", "Revenues", "2021-12-31", "600"),
		fact("sec_edgar", "Revenues", "2022-12-31", "800"),
	}

	stmt, _, err := n.Normalize("ACME", facts)
	require.NoError(t, err)
	assert.Equal(t, []string{"2021-12-31", "2022-12-31", "2023-12-31"}, stmt.Periods)
	assert.Equal(t, "2023-12-31", stmt.LatestPeriod())
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "1234.5", want: "1234.5"},
		{raw: "1,234,567", want: "1234567"},
		{raw: "$1,500.00", want: "1500.00"},
		{raw: "(2500)", want: "-2500"},
		{raw: " €42 ", want: "42"},
		{raw: "-17.25", want: "-17.25"},
		{raw: "", wantErr: true},
		{raw: "N/A", wantErr: true},
		{raw: "12x3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseNumeric(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}
