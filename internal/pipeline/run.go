package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"bidwatch-engine/internal/domain"
	"bidwatch-engine/internal/ledger"
)

// Source yields listing rows and, on demand, a bid's long-form fields.
type Source interface {
	ListCandidates(ctx context.Context) ([]domain.Bid, error)
	FetchDetails(ctx context.Context, url string) (domain.BidDetails, error)
}

// RelevanceGate is stage 1: a boolean verdict from the title alone.
type RelevanceGate interface {
	Relevant(ctx context.Context, title string) bool
}

// Qualifier is stage 2: a structured verdict from title plus description.
// nil means no usable verdict (failure, timeout, bad payload).
type Qualifier interface {
	Qualify(ctx context.Context, title, description string) *domain.Verdict
}

// Sink appends one row under a category worksheet.
type Sink interface {
	AppendRow(category string, row domain.SheetRow) error
}

type Deps struct {
	Ledger    *ledger.Ledger
	Source    Source
	Relevance RelevanceGate
	Qualifier Qualifier
	Sink      Sink

	ClosingFormat string

	// OnDispatch fires after a row lands in the sink; used for the local
	// bid mirror and SSE events. Optional.
	OnDispatch func(bid domain.Bid, v domain.Verdict)

	// Now is test-overridable; defaults to time.Now.
	Now func() time.Time
}

type Stats struct {
	Seen       int `json:"seen"`
	Skipped    int `json:"skipped"`
	Dispatched int `json:"dispatched"`
	Committed  int `json:"committed"`
}

// RunOnce carries every candidate through the full state machine, one at a
// time: ledger check, date gate, relevance gate, detail fetch,
// qualification, dispatch, ledger commit. Every candidate that gets past
// the ledger check is committed exactly once, whatever happens in between,
// so no title is ever evaluated twice within or across runs.
func RunOnce(ctx context.Context, d Deps) (Stats, error) {
	var st Stats

	now := time.Now
	if d.Now != nil {
		now = d.Now
	}

	seen, err := d.Ledger.Load()
	if err != nil {
		return st, fmt.Errorf("load ledger: %w", err)
	}

	bids, err := d.Source.ListCandidates(ctx)
	if err != nil {
		return st, fmt.Errorf("list candidates: %w", err)
	}
	log.Printf("[pipeline] run start candidates=%d ledger=%d", len(bids), len(seen))

	commit := func(title string) {
		if err := d.Ledger.Record(title); err != nil {
			// the bid was handled; worst case it is re-evaluated next run
			log.Printf("[pipeline] ledger commit failed title=%q: %v", title, err)
			return
		}
		st.Committed++
	}

	for i, bid := range bids {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		st.Seen++
		log.Printf("[pipeline] %d/%d %q", i+1, len(bids), bid.Title)

		if ledger.Contains(seen, bid.Title) {
			st.Skipped++
			continue
		}

		if !ValidClosingDate(bid.ClosingDate, d.ClosingFormat, now()) {
			log.Printf("[pipeline] skipped (closing_date) title=%q date=%q", bid.Title, bid.ClosingDate)
			st.Skipped++
			commit(bid.Title)
			continue
		}

		if !d.Relevance.Relevant(ctx, bid.Title) {
			log.Printf("[pipeline] skipped (relevance) title=%q", bid.Title)
			st.Skipped++
			commit(bid.Title)
			continue
		}

		det, err := d.Source.FetchDetails(ctx, bid.URL)
		if err != nil || det.Description == "" {
			// no description, no qualification; handled and done
			log.Printf("[pipeline] skipped (details) title=%q err=%v", bid.Title, err)
			st.Skipped++
			commit(bid.Title)
			continue
		}
		bid.Description = det.Description
		bid.Organization = det.Organization
		bid.Email = det.Email

		v := d.Qualifier.Qualify(ctx, bid.Title, bid.Description)
		if v == nil || !v.Relevance {
			log.Printf("[pipeline] rejected (qualification) title=%q", bid.Title)
			st.Skipped++
			commit(bid.Title)
			continue
		}

		// stage 2's rewritten description goes to the sink, not the
		// scraped one
		row := domain.SheetRow{
			Title:        bid.Title,
			URL:          bid.URL,
			Description:  v.Description,
			Organization: bid.Organization,
			ClosingDate:  bid.ClosingDate,
			Email:        bid.Email,
		}
		if err := d.Sink.AppendRow(v.Category, row); err != nil {
			log.Printf("[pipeline] dropped (sink) title=%q category=%q: %v", bid.Title, v.Category, err)
		} else {
			log.Printf("[pipeline] dispatched title=%q category=%q", bid.Title, v.Category)
			st.Dispatched++
			if d.OnDispatch != nil {
				d.OnDispatch(bid, *v)
			}
		}
		commit(bid.Title)
	}

	log.Printf("[pipeline] run done seen=%d skipped=%d dispatched=%d", st.Seen, st.Skipped, st.Dispatched)
	return st, nil
}
