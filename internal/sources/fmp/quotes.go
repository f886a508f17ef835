package fmp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/goccy/go-json"
)

// QuoteResult maps upper-cased symbols to quotes. Error is empty on
// success, otherwise no_symbols, missing_api_key or fmp_error_<status>,
// and Quotes is empty.
type QuoteResult struct {
	Quotes map[string]Quote `json:"quotes"`
	Error  string           `json:"error,omitempty"`
}

// Get looks a quote up case-insensitively.
func (r QuoteResult) Get(symbol string) (Quote, bool) {
	q, ok := r.Quotes[strings.ToUpper(symbol)]
	return q, ok
}

// UniqueSymbols upper-cases symbols and drops blanks and duplicates,
// keeping first-seen order.
func UniqueSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Quotes fetches live quotes, serving symbols seen within the cache TTL
// from memory.
func (c *Client) Quotes(ctx context.Context, symbols []string) (QuoteResult, error) {
	unique := UniqueSymbols(symbols)
	if len(unique) == 0 {
		return QuoteResult{Quotes: map[string]Quote{}, Error: ReasonNoSymbols}, nil
	}
	if !c.HasAPIKey() {
		return QuoteResult{Quotes: map[string]Quote{}, Error: ReasonMissingAPIKey}, nil
	}

	quotes := make(map[string]Quote, len(unique))
	var missing []string
	for _, symbol := range unique {
		if q, ok := c.quotes.get(symbol); ok {
			quotes[symbol] = q
			continue
		}
		missing = append(missing, symbol)
	}
	if len(missing) == 0 {
		return QuoteResult{Quotes: quotes}, nil
	}

	body, status, err := c.get(ctx, pathQuote, map[string]string{"symbol": strings.Join(missing, ",")})
	if err != nil {
		return QuoteResult{}, err
	}
	if status != 0 {
		return QuoteResult{Quotes: map[string]Quote{}, Error: StatusReason(status)}, nil
	}

	var rows []Quote
	if err := json.Unmarshal(body, &rows); err != nil {
		return QuoteResult{}, fmt.Errorf("decode %s: %w", pathQuote, err)
	}
	for _, q := range rows {
		if q.Symbol == "" {
			continue
		}
		symbol := strings.ToUpper(q.Symbol)
		quotes[symbol] = q
		c.quotes.set(symbol, q)
	}
	return QuoteResult{Quotes: quotes}, nil
}

type cachedQuote struct {
	quote   Quote
	expires time.Time
}

// quoteCache is a TTL cache shared by concurrent HTTP handlers.
type quoteCache struct {
	ttl     time.Duration
	entries *haxmap.Map[string, cachedQuote]
	now     func() time.Time
}

func newQuoteCache(ttl time.Duration) *quoteCache {
	return &quoteCache{
		ttl:     ttl,
		entries: haxmap.New[string, cachedQuote](),
		now:     time.Now,
	}
}

func (qc *quoteCache) get(symbol string) (Quote, bool) {
	if qc.ttl <= 0 {
		return Quote{}, false
	}
	entry, ok := qc.entries.Get(symbol)
	if !ok {
		return Quote{}, false
	}
	if qc.now().After(entry.expires) {
		qc.entries.Del(symbol)
		return Quote{}, false
	}
	return entry.quote, true
}

func (qc *quoteCache) set(symbol string, q Quote) {
	if qc.ttl <= 0 {
		return
	}
	qc.entries.Set(symbol, cachedQuote{quote: q, expires: qc.now().Add(qc.ttl)})
}
