package store

import (
	"context"
	"database/sql"
	"time"

	"bidwatch-engine/internal/domain"
)

type BidRecord struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	Organization string `json:"organization"`
	ClosingDate  string `json:"closingDate"`
	Email        string `json:"email"`
	DispatchedAt string `json:"dispatchedAt"`
}

func Migrate(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS bids (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  url TEXT NOT NULL,
  category TEXT NOT NULL,
  description TEXT NOT NULL,
  organization TEXT NOT NULL DEFAULT '',
  closing_date TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  dispatched_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bids_dispatched_at ON bids(dispatched_at DESC);
`)
	return err
}

// InsertBid mirrors one dispatched bid. Stage 2's rewritten description is
// what gets stored, matching the workbook row.
func InsertBid(ctx context.Context, db *sql.DB, bid domain.Bid, v domain.Verdict) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO bids(title, url, category, description, organization, closing_date, email, dispatched_at)
VALUES(?,?,?,?,?,?,?,?);`,
		bid.Title,
		bid.URL,
		v.Category,
		v.Description,
		bid.Organization,
		bid.ClosingDate,
		bid.Email,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func ListBids(ctx context.Context, db *sql.DB, limit int) ([]BidRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := db.QueryContext(ctx, `
SELECT id, title, url, category, description, organization, closing_date, email, dispatched_at
FROM bids
ORDER BY dispatched_at DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BidRecord
	for rows.Next() {
		var b BidRecord
		if err := rows.Scan(&b.ID, &b.Title, &b.URL, &b.Category, &b.Description, &b.Organization, &b.ClosingDate, &b.Email, &b.DispatchedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
