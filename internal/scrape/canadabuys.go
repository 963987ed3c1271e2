package scrape

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bidwatch-engine/internal/domain"
	"bidwatch-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

// Config points the scraper at a pre-filtered tender listing. The listing
// URL carries the category/status/location filters as query params, the same
// way a saved search does.
type Config struct {
	ListingURL string
	MaxPages   int
	Timeout    time.Duration
}

// CanadaBuys scrapes the public tender listing and tender detail pages.
// It is the pipeline's candidate source.
type CanadaBuys struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *CanadaBuys {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &CanadaBuys{
		cfg:     cfg,
		hc:      &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

func (s *CanadaBuys) Name() string { return "canadabuys" }

// ListCandidates walks the listing table page by page, following the
// rel=next link until it runs out or MaxPages is hit. Order matches the
// portal's listing order.
func (s *CanadaBuys) ListCandidates(ctx context.Context) ([]domain.Bid, error) {
	var out []domain.Bid

	pageURL := s.cfg.ListingURL
	for page := 0; page < s.cfg.MaxPages && pageURL != ""; page++ {
		doc, err := s.fetchDoc(ctx, pageURL)
		if err != nil {
			if page == 0 {
				return nil, fmt.Errorf("listing page: %w", err)
			}
			// later pages are best-effort; keep what we have
			log.Printf("[canadabuys] page %d fetch failed: %v", page+1, err)
			break
		}

		doc.Find("table.eps-table tbody tr").Each(func(_ int, row *goquery.Selection) {
			link := row.Find("td.views-field-dummy-notice-title a").First()
			title := util.CleanText(link.Text())
			if title == "" {
				return
			}
			href, _ := link.Attr("href")
			closing := util.CleanText(row.Find("td.views-field-field-tender-closing-date").First().Text())

			out = append(out, domain.Bid{
				Title:       title,
				URL:         s.resolve(pageURL, href),
				ClosingDate: closing,
			})
		})

		pageURL = s.nextPageURL(doc, pageURL)
	}

	return out, nil
}

// FetchDetails pulls the long-form description and contact fields off a
// tender page. A page with no description body is an error; the pipeline
// commits such a bid without qualification.
func (s *CanadaBuys) FetchDetails(ctx context.Context, bidURL string) (domain.BidDetails, error) {
	doc, err := s.fetchDoc(ctx, bidURL)
	if err != nil {
		return domain.BidDetails{}, err
	}

	desc := strings.TrimSpace(doc.Find("div.details-wrapper div.field--name-body").First().Text())
	if desc == "" {
		return domain.BidDetails{}, errors.New("tender page has no description body")
	}

	email := util.CleanText(doc.Find("div.field--name-field-tender-contact-email .field--item").First().Text())
	org := util.CleanText(doc.Find("dd.tender-contact__group-content div.field--name-field-tender-contact-orgname").First().Text())

	return domain.BidDetails{
		Description:  desc,
		Organization: org,
		Email:        email,
	}, nil
}

func (s *CanadaBuys) fetchDoc(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, rawURL); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "BidWatch/1.0 (+local)")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("canadabuys get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("canadabuys status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("canadabuys parse html: %w", err)
	}
	return doc, nil
}

func (s *CanadaBuys) nextPageURL(doc *goquery.Document, current string) string {
	href, ok := doc.Find("a[rel='next']").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return ""
	}
	return s.resolve(current, href)
}

func (s *CanadaBuys) resolve(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	bu, err := url.Parse(base)
	if err != nil {
		return href
	}
	hu, err := url.Parse(href)
	if err != nil {
		return href
	}
	return bu.ResolveReference(hu).String()
}
