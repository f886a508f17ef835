package overview

import (
	"context"

	"github.com/mkoziy/portfolio/internal/financials"
	"github.com/mkoziy/portfolio/internal/portfolio"
)

const quotesUnavailable = "quotes_unavailable"

// Portfolio lists holdings with live prices where quotes are available.
type Portfolio struct {
	Holdings   portfolio.Holdings `json:"holdings"`
	QuoteError string             `json:"quoteError,omitempty"`
}

// Portfolio overlays live quotes on the configured holdings. A holding
// without a usable quote keeps its stored price and day change.
func (s *Service) Portfolio(ctx context.Context) (*Portfolio, error) {
	out := &Portfolio{Holdings: make(portfolio.Holdings, len(s.holdings))}
	copy(out.Holdings, s.holdings)
	if s.client == nil {
		return out, nil
	}

	quotes, err := s.client.Quotes(ctx, s.holdings.Symbols())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn().Err(err).Msg("quotes unavailable, using stored prices")
		out.QuoteError = quotesUnavailable
		return out, nil
	}
	out.QuoteError = quotes.Error

	for i := range out.Holdings {
		h := &out.Holdings[i]
		q, ok := quotes.Get(h.Symbol)
		if !ok {
			continue
		}
		if q.Price != nil {
			h.Price = financials.FormatMoney(*q.Price)
		}
		if change, ok := financials.FormatDayChange(q.Price, q.Change, q.ChangesPercentage.Float()); ok {
			h.DayChange = change
		}
	}
	return out, nil
}
