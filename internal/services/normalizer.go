package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"

	"github.com/finsightlab/finsight-go/internal/config"
	"github.com/finsightlab/finsight-go/internal/models"
)

// ErrNoFacts is returned when normalization is asked to run on an empty raw
// fact collection. It is one of the two fatal input errors; everything else
// degrades to warnings.
var ErrNoFacts = errors.New("no raw facts to normalize")

// toleranceEpsilon keeps the relative-difference denominator away from zero
// when both sources report values near zero.
var toleranceEpsilon = decimal.NewFromFloat(1e-9)

// Normalizer maps arbitrarily labeled raw facts from one or more sources
// onto the canonical schema, resolving cross-source conflicts and keeping
// a per-item agreement signal.
type Normalizer struct {
	cfg    config.NormalizerConfig
	logger *logrus.Logger

	// aliases holds the alias table with labels pre-normalized for matching,
	// preserving the configured preference order.
	aliases map[models.Item][]string
	// priority ranks configured sources; unlisted sources rank after these
	// in first-appearance order.
	priority map[string]int
}

// NewNormalizer builds a normalizer from the configured alias table and
// source priority.
func NewNormalizer(cfg config.NormalizerConfig, logger *logrus.Logger) *Normalizer {
	aliases := make(map[models.Item][]string, len(cfg.Aliases))
	for item, labels := range cfg.Aliases {
		normalized := make([]string, 0, len(labels))
		for _, label := range labels {
			normalized = append(normalized, normalizeLabel(label))
		}
		aliases[models.Item(item)] = normalized
	}

	priority := make(map[string]int, len(cfg.SourcePriority))
	for i, source := range cfg.SourcePriority {
		priority[source] = i
	}

	return &Normalizer{
		cfg:      cfg,
		logger:   logger,
		aliases:  aliases,
		priority: priority,
	}
}

// Normalize reconciles one company's raw facts into a normalized statement.
// A single missing or unparsable item never fails the run; the only fatal
// condition is an empty input collection.
func (n *Normalizer) Normalize(ticker string, facts []models.RawFact) (*models.NormalizedStatement, []models.Warning, error) {
	if len(facts) == 0 {
		return nil, nil, ErrNoFacts
	}

	tolerance := decimal.NewFromFloat(n.cfg.DisagreementTolerance)

	// Group facts by period and source, first occurrence wins per label.
	grouped := make(map[string]map[string]map[string]models.RawFact)
	var sourceOrder []string
	seen := make(map[string]bool)
	for _, fact := range facts {
		if !seen[fact.SourceID] {
			seen[fact.SourceID] = true
			sourceOrder = append(sourceOrder, fact.SourceID)
		}
		bySource, ok := grouped[fact.PeriodEnd]
		if !ok {
			bySource = make(map[string]map[string]models.RawFact)
			grouped[fact.PeriodEnd] = bySource
		}
		labels, ok := bySource[fact.SourceID]
		if !ok {
			labels = make(map[string]models.RawFact)
			bySource[fact.SourceID] = labels
		}
		key := normalizeLabel(fact.RawLabel)
		if _, dup := labels[key]; !dup {
			labels[key] = fact
		}
	}
	n.rankSources(sourceOrder)

	periods := make([]string, 0, len(grouped))
	for period := range grouped {
		periods = append(periods, period)
	}
	sort.Strings(periods)

	statement := &models.NormalizedStatement{
		Ticker:  ticker,
		Periods: periods,
		Items:   make(map[string]map[models.Item]models.NormalizedValue, len(periods)),
	}
	var warnings []models.Warning

	for _, period := range periods {
		values := make(map[models.Item]models.NormalizedValue)
		for _, item := range models.AllItems() {
			value, ws, ok := n.resolveItem(period, item, grouped[period], sourceOrder, tolerance)
			warnings = append(warnings, ws...)
			if ok {
				values[item] = value
			}
		}
		statement.Items[period] = values
	}

	n.logger.WithFields(logrus.Fields{
		"ticker":   ticker,
		"periods":  len(periods),
		"sources":  len(sourceOrder),
		"warnings": len(warnings),
	}).Info("Normalized raw facts")

	return statement, warnings, nil
}

// resolveItem reconciles one canonical item for one period across every
// contributing source. The boolean result is false when no source supplies
// the item; absence is never turned into a zero.
func (n *Normalizer) resolveItem(
	period string,
	item models.Item,
	bySource map[string]map[string]models.RawFact,
	sourceOrder []string,
	tolerance decimal.Decimal,
) (models.NormalizedValue, []models.Warning, bool) {
	var warnings []models.Warning

	type contribution struct {
		source string
		value  decimal.Decimal
	}
	var contributions []contribution

	for _, source := range sourceOrder {
		labels, ok := bySource[source]
		if !ok {
			continue
		}
		// First alias in preference order this source reports.
		for _, alias := range n.aliases[item] {
			fact, ok := labels[alias]
			if !ok {
				continue
			}
			value, err := parseNumeric(fact.Value)
			if err != nil {
				warnings = append(warnings, models.Warning{
					Code:    models.WarnUnparsableValue,
					Item:    string(item),
					Period:  period,
					Source:  source,
					Message: fmt.Sprintf("value %q for %s is not numeric, treated as absent", fact.Value, item),
				})
				n.logger.WithFields(logrus.Fields{
					"item":   item,
					"period": period,
					"source": source,
					"value":  fact.Value,
				}).Warn("Unparsable raw value")
			} else {
				contributions = append(contributions, contribution{source: source, value: value})
			}
			break
		}
	}

	if len(contributions) == 0 {
		return models.NormalizedValue{}, warnings, false
	}

	primary := contributions[0]
	result := models.NormalizedValue{
		Value:     primary.value,
		Agreement: true,
	}
	for _, c := range contributions {
		result.Sources = append(result.Sources, c.source)
	}

	if len(contributions) > 1 {
		result.SourceValues = make(map[string]decimal.Decimal, len(contributions))
		for _, c := range contributions {
			result.SourceValues[c.source] = c.value
		}
		for _, c := range contributions[1:] {
			if !withinTolerance(primary.value, c.value, tolerance) {
				result.Agreement = false
				warnings = append(warnings, models.Warning{
					Code:   models.WarnSourceDisagreement,
					Item:   string(item),
					Period: period,
					Source: c.source,
					Message: fmt.Sprintf("%s reports %s for %s, kept %s from %s",
						c.source, c.value, item, primary.value, primary.source),
				})
				n.logger.WithFields(logrus.Fields{
					"item":      item,
					"period":    period,
					"primary":   primary.source,
					"secondary": c.source,
				}).Warn("Cross-source disagreement beyond tolerance")
			}
		}
	}

	return result, warnings, true
}

// rankSources orders sources by configured priority, keeping unlisted ones
// after the configured block in first-appearance order.
func (n *Normalizer) rankSources(sources []string) {
	sort.SliceStable(sources, func(i, j int) bool {
		pi, iKnown := n.priority[sources[i]]
		pj, jKnown := n.priority[sources[j]]
		if iKnown != jKnown {
			return iKnown
		}
		return iKnown && pi < pj
	})
}

// withinTolerance reports whether a and b agree within the configured
// relative tolerance: |a-b| / max(|a|,|b|,eps) <= tolerance.
func withinTolerance(a, b, tolerance decimal.Decimal) bool {
	diff := a.Sub(b).Abs()
	scale := decimal.Max(a.Abs(), b.Abs(), toleranceEpsilon)
	return diff.Div(scale).Cmp(tolerance) <= 0
}

// normalizeLabel canonicalizes a raw source label for matching: Unicode
// case folding, then removal of separators so spaced names and CamelCase
// XBRL tags compare equal.
func normalizeLabel(label string) string {
	folded := cases.Fold().String(label)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '_', '-', '\'', ',', '.', '&', '/':
			return -1
		}
		return r
	}, folded)
}

// parseNumeric coerces a raw reported value to a decimal: thousands
// separators and currency symbols are stripped, accounting-style
// parentheses mean a negative figure. Anything left unparsable is an error,
// never a zero.
func parseNumeric(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty value")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.Map(func(r rune) rune {
		switch r {
		case ',', ' ', '$', '€', '£', '¥':
			return -1
		}
		return r
	}, s)

	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %q: %w", raw, err)
	}
	if negative {
		value = value.Neg()
	}
	return value, nil
}
