package validation

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/swapkit-go/internal/model"
)

// ScamFilterOptions holds configuration for the potential scam filter
type ScamFilterOptions struct {
	// Patterns flagged when found in a token ticker or symbol
	Patterns []string

	// MaxTickerLength drops tokens with tickers longer than this
	MaxTickerLength int

	// DropZeroBalances removes tokens that hold nothing
	DropZeroBalances bool
}

// DefaultScamFilterOptions returns the patterns seen in airdropped lure tokens
func DefaultScamFilterOptions() ScamFilterOptions {
	return ScamFilterOptions{
		Patterns: []string{
			"http", "www", ".com", ".io", ".org", ".net", ".xyz", ".app",
			"claim", "visit", "reward", "airdrop", "voucher", "giveaway",
		},
		MaxTickerLength:  24,
		DropZeroBalances: false,
	}
}

// FilterPotentialScams removes tokens that look like airdropped lures.
// Gas assets are always kept.
func FilterPotentialScams(balance []model.AssetValue) []model.AssetValue {
	return FilterPotentialScamsWithOptions(balance, DefaultScamFilterOptions())
}

// FilterPotentialScamsWithOptions removes suspicious tokens with custom options
func FilterPotentialScamsWithOptions(balance []model.AssetValue, opts ScamFilterOptions) []model.AssetValue {
	kept := make([]model.AssetValue, 0, len(balance))
	for _, av := range balance {
		if av.IsGasAsset() || !isPotentialScam(av, opts) {
			kept = append(kept, av)
			continue
		}
		logrus.WithFields(logrus.Fields{
			"chain":  av.Chain,
			"symbol": av.Symbol,
		}).Debug("Filtered potential scam token")
	}

	if dropped := len(balance) - len(kept); dropped > 0 {
		logrus.WithFields(logrus.Fields{
			"total":    len(balance),
			"filtered": dropped,
		}).Debug("Scam filtering complete")
	}
	return kept
}

// isPotentialScam checks a single token against the filter rules. Patterns
// are matched against the ticker and the full symbol, since a lure can hide
// behind the first dash, e.g. "FREE-CLAIM.COM-0x...".
func isPotentialScam(av model.AssetValue, opts ScamFilterOptions) bool {
	if opts.DropZeroBalances && av.IsZero() {
		return true
	}
	if opts.MaxTickerLength > 0 && len(av.Ticker) > opts.MaxTickerLength {
		return true
	}
	if strings.ContainsAny(av.Ticker, " \t\n/:") || strings.ContainsAny(av.Symbol, " \t\n:") {
		return true
	}

	ticker := strings.ToLower(av.Ticker)
	symbol := strings.ToLower(av.Symbol)
	for _, p := range opts.Patterns {
		if strings.Contains(ticker, p) || strings.Contains(symbol, p) {
			return true
		}
	}
	return false
}
