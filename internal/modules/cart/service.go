// README: Cart service: add/remove lines and price the whole cart.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/logging"
	"storefront/internal/modules/catalog"
	"storefront/internal/modules/pricing"
	"storefront/internal/modules/selection"
	"storefront/internal/types"
)

type ProductSource interface {
	Get(ctx context.Context, id types.ID) (*catalog.Product, error)
}

type Quoter interface {
	QuoteProduct(p *catalog.Product, req pricing.QuoteRequest) (*pricing.Quote, error)
}

type SelectionSource interface {
	Get(ctx context.Context, sessionID string, productID types.ID) (*selection.Selection, error)
}

type Service struct {
	store      Repository
	products   ProductSource
	quoter     Quoter
	selections SelectionSource
	log        *zap.Logger
	now        func() time.Time
}

func NewService(store Repository, products ProductSource, quoter Quoter, selections SelectionSource, log *zap.Logger) *Service {
	return &Service{
		store:      store,
		products:   products,
		quoter:     quoter,
		selections: selections,
		log:        logging.OrNop(log),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	if err := selection.ValidateSessionID(sessionID); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return s.store.Get(ctx, sessionID)
}

// AddLine appends a line after checking that it prices as available right now.
func (s *Service) AddLine(ctx context.Context, cmd AddLineCommand) (*Line, error) {
	if err := selection.ValidateSessionID(cmd.SessionID); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if strings.TrimSpace(string(cmd.ProductID)) == "" {
		return nil, fmt.Errorf("%w: product id is required", ErrBadRequest)
	}
	req := pricing.QuoteRequest{City: strings.TrimSpace(cmd.City), TenureMonths: cmd.TenureMonths, AddOnIDs: cmd.AddOnIDs}
	if cmd.FromSelection {
		if s.selections == nil {
			return nil, fmt.Errorf("%w: selections are not enabled", ErrBadRequest)
		}
		sel, err := s.selections.Get(ctx, cmd.SessionID, cmd.ProductID)
		if err != nil {
			return nil, err
		}
		req = sel.QuoteRequest()
	}

	p, err := s.products.Get(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}
	q, err := s.quoter.QuoteProduct(p, req)
	if err != nil {
		if errors.Is(err, pricing.ErrBadRequest) {
			return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		return nil, err
	}
	if !q.Available {
		return nil, fmt.Errorf("%w: selection is not available (%s)", ErrBadRequest, q.Reason)
	}

	c, err := s.store.Get(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	if len(c.Lines) >= MaxLines {
		return nil, fmt.Errorf("%w: cart already holds %d lines", ErrBadRequest, MaxLines)
	}
	now := s.now()
	line := Line{
		ID:           types.NewID(),
		ProductID:    p.ID,
		City:         req.City,
		TenureMonths: req.TenureMonths,
		AddOnIDs:     addOnIDs(q.Breakdown),
		AddedAt:      now,
	}
	c.SessionID = cmd.SessionID
	c.Lines = append(c.Lines, line)
	c.UpdatedAt = now
	if err := s.store.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	s.log.Info("cart line added",
		zap.String("session_id", cmd.SessionID),
		zap.String("line_id", string(line.ID)),
		zap.String("product_id", string(line.ProductID)),
		zap.Int64("total_paise", q.Breakdown.Total.Amount),
	)
	return &line, nil
}

func addOnIDs(b *pricing.CostBreakdown) []string {
	ids := make([]string, 0, len(b.AddOns))
	for _, a := range b.AddOns {
		ids = append(ids, a.ID)
	}
	return ids
}

func (s *Service) RemoveLine(ctx context.Context, sessionID string, lineID types.ID) error {
	if err := selection.ValidateSessionID(sessionID); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	c, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	i := c.lineIndex(lineID)
	if i < 0 {
		return ErrNotFound
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	c.UpdatedAt = s.now()
	if len(c.Lines) == 0 {
		return s.store.Delete(ctx, sessionID)
	}
	return s.store.Put(ctx, c)
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := selection.ValidateSessionID(sessionID); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return s.store.Delete(ctx, sessionID)
}

// Summary reprices every line against the current catalog. Lines that are
// unavailable now (product gone, city or tenure withdrawn, bad data) are
// reported but excluded from the totals.
func (s *Service) Summary(ctx context.Context, sessionID string) (*Summary, error) {
	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := &Summary{SessionID: sessionID, Lines: make([]LineQuote, 0, len(c.Lines))}
	total, due := decimal.Zero, decimal.Zero
	for _, line := range c.Lines {
		lq, err := s.quoteLine(ctx, line)
		if err != nil {
			return nil, err
		}
		if lq.Available {
			out.AvailableLines++
			total = total.Add(lq.Breakdown.Total.Decimal())
			due = due.Add(lq.Breakdown.FirstMonthPayment.Decimal())
		} else {
			out.UnavailableLines++
		}
		out.Lines = append(out.Lines, lq)
	}
	if out.Total, err = types.FromDecimal(total, types.CurrencyINR); err != nil {
		return nil, fmt.Errorf("cart total: %w", err)
	}
	if out.DueAtBooking, err = types.FromDecimal(due, types.CurrencyINR); err != nil {
		return nil, fmt.Errorf("cart due at booking: %w", err)
	}
	return out, nil
}

func (s *Service) quoteLine(ctx context.Context, line Line) (LineQuote, error) {
	lq := LineQuote{Line: line}
	p, err := s.products.Get(ctx, line.ProductID)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		lq.Reason = pricing.ReasonNoProduct
		return lq, nil
	case errors.Is(err, catalog.ErrInvalidProduct):
		lq.Reason = ReasonInvalidPricing
		return lq, nil
	case err != nil:
		return lq, err
	}
	lq.ProductName = p.Name

	q, err := s.quoter.QuoteProduct(p, line.QuoteRequest())
	switch {
	case errors.Is(err, pricing.ErrInvalidPricing):
		lq.Reason = ReasonInvalidPricing
		return lq, nil
	case errors.Is(err, pricing.ErrBadRequest):
		// an add-on was withdrawn from the product since the line was added
		s.log.Warn("cart line references a withdrawn add-on",
			zap.String("line_id", string(line.ID)),
			zap.String("product_id", string(line.ProductID)),
			zap.Error(err),
		)
		lq.Reason = ReasonAddOnWithdrawn
		return lq, nil
	case err != nil:
		return lq, err
	}
	lq.Available = q.Available
	lq.Reason = q.Reason
	lq.Breakdown = q.Breakdown
	return lq, nil
}
