// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry retrieves study records from the ClinicalTrials.gov v2
// API: rate-limited, retrying, paginated retrieval plus single-trial lookup.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/trial-engine/pkg/types"
)

// DefaultBaseURL is the production registry API endpoint.
const DefaultBaseURL = "https://clinicaltrials.gov/api/v2"

const (
	defaultPageSize = 100
	apiMaxPageSize  = 1000
	defaultTimeout  = 30 * time.Second
)

var nctIDPattern = regexp.MustCompile(`^NCT\d{8}$`)

// Client retrieves trial records from the registry. A Client owns its
// transport and limiter; concurrent searches need separate Clients (or a
// shared Limiter, which serializes their requests).
type Client struct {
	transport *Transport
	cfg       types.RegistryConfig
}

// NewClient builds a Client from cfg, applying defaults for unset fields.
func NewClient(cfg types.RegistryConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "trial-engine/0.1"
	}
	return &Client{
		transport: &Transport{
			Client:     &http.Client{Timeout: cfg.Timeout},
			Limiter:    NewLimiter(cfg.RequestInterval),
			MaxRetries: cfg.MaxRetries,
			UserAgent:  cfg.UserAgent,
		},
		cfg: cfg,
	}
}

// SearchOutput holds the retrieved records and retrieval statistics.
type SearchOutput struct {
	// Trials are the records produced, at most filters.MaxResults.
	Trials []types.TrialRecord

	// Skipped counts payloads that failed structural validation
	// (missing identifier, unparseable date) or repeated an identifier
	// already seen in this batch.
	Skipped int

	// Filtered counts valid records dropped by client-side phase filtering.
	Filtered int

	// Pages is the number of result pages fetched.
	Pages int
}

// Search drives the transport across pageToken cursors until the registry
// reports end-of-results, MaxResults records have been produced, or the
// transport fails terminally. On terminal failure the records accumulated
// so far are returned alongside the error, so the caller decides whether a
// partial result set is usable. Context cancellation between pages stops
// retrieval and returns the accumulated records without an error.
// Progress lines go to w.
func (c *Client) Search(ctx context.Context, filters types.SearchFilters, w io.Writer) (SearchOutput, error) {
	var out SearchOutput
	if err := filters.Validate(); err != nil {
		return out, err
	}

	seen := make(map[string]bool)
	pageToken := ""

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(w, "retrieval cancelled after %d page(s), keeping %d record(s)\n", out.Pages, len(out.Trials))
			return out, nil
		default:
		}

		params := c.searchParams(filters, pageToken)
		body, err := c.transport.Fetch(ctx, c.cfg.BaseURL+"/studies?"+params.Encode())
		if err != nil {
			return out, err
		}

		var page studiesPage
		if err := json.Unmarshal(body, &page); err != nil {
			return out, &RetrievalError{Attempts: 1, Err: fmt.Errorf("parsing studies page: %w", err)}
		}
		out.Pages++

		for _, study := range page.Studies {
			rec, err := parseStudy(study)
			if err != nil {
				out.Skipped++
				fmt.Fprintf(w, "skipped malformed study: %v\n", err)
				continue
			}
			if seen[rec.NCTID] {
				out.Skipped++
				continue
			}
			seen[rec.NCTID] = true
			if !matchesPhases(rec, filters.Phases) {
				out.Filtered++
				continue
			}
			out.Trials = append(out.Trials, rec)
			if len(out.Trials) >= filters.MaxResults {
				fmt.Fprintf(w, "reached max results (%d) after %d page(s)\n", filters.MaxResults, out.Pages)
				return out, nil
			}
		}

		fmt.Fprintf(w, "retrieved page %d (%d studies, %d total)\n", out.Pages, len(page.Studies), len(out.Trials))

		if page.NextPageToken == "" {
			return out, nil
		}
		pageToken = page.NextPageToken
	}
}

// Get retrieves a single trial by NCT identifier via the non-paginated
// lookup endpoint.
func (c *Client) Get(ctx context.Context, nctID string) (*types.TrialRecord, error) {
	nctID = strings.ToUpper(strings.TrimSpace(nctID))
	if !nctIDPattern.MatchString(nctID) {
		return nil, fmt.Errorf("invalid NCT identifier %q: want NCT followed by 8 digits", nctID)
	}

	body, err := c.transport.Fetch(ctx, c.cfg.BaseURL+"/studies/"+nctID+"?format=json")
	if err != nil {
		return nil, err
	}

	var study studyPayload
	if err := json.Unmarshal(body, &study); err != nil {
		return nil, &RetrievalError{Attempts: 1, Err: fmt.Errorf("parsing study %s: %w", nctID, err)}
	}

	rec, err := parseStudy(study)
	if err != nil {
		return nil, fmt.Errorf("trial %s: %w", nctID, err)
	}
	return &rec, nil
}

// searchParams translates SearchFilters into v2 query parameters. Phases
// have no direct filter parameter and are applied client-side, which also
// keeps the AND-across-fields semantics.
func (c *Client) searchParams(f types.SearchFilters, pageToken string) url.Values {
	pageSize := c.cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > apiMaxPageSize {
		pageSize = apiMaxPageSize
	}
	// No phase filter in play: never ask for more than the cap needs.
	if len(f.Phases) == 0 && f.MaxResults < pageSize {
		pageSize = f.MaxResults
	}

	params := url.Values{
		"format":   {"json"},
		"pageSize": {strconv.Itoa(pageSize)},
	}
	if f.Query != "" {
		params.Set("query.term", f.Query)
	}
	if len(f.Conditions) > 0 {
		params.Set("query.cond", strings.Join(f.Conditions, " OR "))
	}
	if len(f.Sponsors) > 0 {
		params.Set("query.spons", strings.Join(f.Sponsors, " OR "))
	}
	if len(f.Countries) > 0 {
		params.Set("query.locn", strings.Join(f.Countries, " OR "))
	}
	if len(f.Statuses) > 0 {
		params.Set("filter.overallStatus", strings.Join(f.Statuses, ","))
	}
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}
	return params
}

// matchesPhases reports whether the record lists any of the wanted phase
// codes. An empty want set matches everything.
func matchesPhases(rec types.TrialRecord, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		for _, p := range rec.Phases {
			if strings.EqualFold(p, w) {
				return true
			}
		}
	}
	return false
}
