package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"bidwatch-engine/internal/classify"
	"bidwatch-engine/internal/config"
	"bidwatch-engine/internal/domain"
	"bidwatch-engine/internal/events"
	"bidwatch-engine/internal/ledger"
	"bidwatch-engine/internal/pipeline"
	"bidwatch-engine/internal/store"
)

type Status struct {
	LastRunAt string         `json:"last_run_at"`
	LastOkAt  string         `json:"last_ok_at"`
	LastError string         `json:"last_error"`
	LastStats pipeline.Stats `json:"last_stats"`
	Running   bool           `json:"running"`
}

// Runner owns one pipeline execution at a time. Each run gets two fresh
// conversation threads, one per gate, created up front and used for every
// candidate in that run.
type Runner struct {
	Cfg    config.Config
	Client *classify.Client
	Ledger *ledger.Ledger
	Source pipeline.Source
	Sink   pipeline.Sink
	DB     *store.DB
	Hub    *events.Hub

	status  atomic.Value // Status
	running atomic.Bool
}

func (r *Runner) Status() Status {
	if v := r.status.Load(); v != nil {
		return v.(Status)
	}
	return Status{}
}

// RunOnce executes a full pipeline pass. Overlapping runs are refused: the
// ledger and workbook are append-only files with no locking, so only one
// pass may touch them at a time.
func (r *Runner) RunOnce(ctx context.Context) (pipeline.Stats, error) {
	if !r.running.CompareAndSwap(false, true) {
		return pipeline.Stats{}, errors.New("a run is already in progress")
	}
	defer r.running.Store(false)

	st := r.Status()
	st.Running = true
	st.LastRunAt = time.Now().Format(time.RFC3339)
	r.status.Store(st)

	stats, err := r.runPipeline(ctx)

	st = r.Status()
	st.Running = false
	st.LastStats = stats
	if err != nil {
		st.LastError = err.Error()
		log.Printf("[runner] error: %v", err)
	} else {
		st.LastError = ""
		st.LastOkAt = time.Now().Format(time.RFC3339)
		log.Printf("[runner] ok dispatched=%d committed=%d", stats.Dispatched, stats.Committed)
	}
	r.status.Store(st)

	if r.Hub != nil {
		r.Hub.Publish(events.Make("run_finished", st))
	}
	return stats, err
}

func (r *Runner) runPipeline(ctx context.Context) (pipeline.Stats, error) {
	relevanceThread, err := r.Client.CreateThread(ctx)
	if err != nil {
		return pipeline.Stats{}, fmt.Errorf("relevance thread: %w", err)
	}
	qualifyThread, err := r.Client.CreateThread(ctx)
	if err != nil {
		return pipeline.Stats{}, fmt.Errorf("qualify thread: %w", err)
	}

	deps := pipeline.Deps{
		Ledger: r.Ledger,
		Source: r.Source,
		Relevance: &classify.RelevanceGate{
			Client:   r.Client,
			AgentID:  r.Cfg.Classify.RelevanceAgent,
			ThreadID: relevanceThread,
			Keywords: r.Cfg.Classify.Keywords,
		},
		Qualifier: &classify.Qualifier{
			Client:   r.Client,
			AgentID:  r.Cfg.Classify.QualifyAgent,
			ThreadID: qualifyThread,
		},
		Sink:          r.Sink,
		ClosingFormat: r.Cfg.Dates.ClosingFormat,
		OnDispatch:    r.mirrorDispatch,
	}

	return pipeline.RunOnce(ctx, deps)
}

func (r *Runner) mirrorDispatch(bid domain.Bid, v domain.Verdict) {
	if r.DB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.InsertBid(ctx, r.DB.Pool, bid, v); err != nil {
			log.Printf("[runner] bid mirror insert failed title=%q: %v", bid.Title, err)
		}
	}
	if r.Hub != nil {
		r.Hub.Publish(events.Make("bid_dispatched", map[string]string{
			"title":    bid.Title,
			"category": v.Category,
		}))
	}
}

// Start runs the pipeline immediately and then on every tick until ctx is
// cancelled.
func (r *Runner) Start(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()

	if _, err := r.RunOnce(ctx); err != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if _, err := r.RunOnce(ctx); err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
}
