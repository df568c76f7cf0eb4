package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"jobtrail/core-service/internal/apperr"
	"jobtrail/core-service/internal/model"
)

const (
	adzunaBaseURL = "https://api.adzuna.com/v1/api/jobs"
	// PageSize × MaxPages caps the listings fetched per (title × location)
	// pair, bounding external load and cycle duration.
	PageSize    = 50
	MaxPages    = 3
	httpTimeout = 15 * time.Second
)

// Credentials is the Adzuna app id/key pair, either configured or not.
// An unconfigured fetcher is a deliberate no-op, not a failure: the rest
// of the system stays usable without upstream credentials.
type Credentials struct {
	appID  string
	appKey string
	ok     bool
}

// Configured returns credentials for the given app id/key pair.
func Configured(appID, appKey string) Credentials {
	return Credentials{appID: appID, appKey: appKey, ok: true}
}

// Unconfigured returns the absent-credentials state.
func Unconfigured() Credentials { return Credentials{} }

// CredentialsFrom builds Credentials from raw config values, treating a
// missing id or key as Unconfigured.
func CredentialsFrom(appID, appKey string) Credentials {
	if appID == "" || appKey == "" {
		return Unconfigured()
	}
	return Configured(appID, appKey)
}

// IsConfigured reports whether fetches will reach the upstream API.
func (c Credentials) IsConfigured() bool { return c.ok }

// Fetcher is one external job-board client. A returned error is always
// transient; the per-pair loop in the worker logs and moves on.
type Fetcher interface {
	Fetch(ctx context.Context, jobTitle, location string) ([]model.JobListing, error)
}

// AdzunaFetcher fetches job offers from the Adzuna public API.
type AdzunaFetcher struct {
	creds   Credentials
	country string // "fr", "gb", "us", …
	baseURL string
	client  *http.Client
}

// NewAdzunaFetcher constructs a fetcher with a shared HTTP client.
func NewAdzunaFetcher(creds Credentials, country string) *AdzunaFetcher {
	return &AdzunaFetcher{
		creds:   creds,
		country: country,
		baseURL: adzunaBaseURL,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// adzunaResponse mirrors the top-level Adzuna JSON response.
type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

// adzunaResult mirrors a single Adzuna job listing.
type adzunaResult struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Company      adzunaCompany  `json:"company"`
	Location     adzunaLocation `json:"location"`
	SalaryMin    float64        `json:"salary_min"`
	SalaryMax    float64        `json:"salary_max"`
	RedirectURL  string         `json:"redirect_url"`
	Created      string         `json:"created"`
	ContractType string         `json:"contract_type"`
}

type adzunaCompany struct {
	DisplayName string `json:"display_name"`
}

type adzunaLocation struct {
	DisplayName string `json:"display_name"`
}

// Fetch retrieves offers for a job title and location, paging until an
// empty or short page or MaxPages. Unconfigured credentials yield an
// empty result with no error.
func (f *AdzunaFetcher) Fetch(ctx context.Context, jobTitle, location string) ([]model.JobListing, error) {
	if !f.creds.IsConfigured() {
		log.Println("[fetcher] Adzuna credentials not set — skipping fetch")
		return nil, nil
	}

	var results []model.JobListing

	for page := 1; page <= MaxPages; page++ {
		batch, err := f.fetchPage(ctx, jobTitle, location, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if len(batch) == 0 {
			break
		}
		results = append(results, batch...)
		if len(batch) < PageSize {
			break // last page
		}
	}

	return results, nil
}

func (f *AdzunaFetcher) fetchPage(ctx context.Context, jobTitle, location string, page int) ([]model.JobListing, error) {
	endpoint := fmt.Sprintf("%s/%s/search/%d", f.baseURL, f.country, page)

	params := url.Values{}
	params.Set("app_id", f.creds.appID)
	params.Set("app_key", f.creds.appKey)
	params.Set("results_per_page", strconv.Itoa(PageSize))
	params.Set("what", jobTitle)
	params.Set("where", location)
	params.Set("content-type", "application/json")
	params.Set("sort_by", "date")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperr.Transient("adzuna GET", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Transient("adzuna read body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Transient("adzuna", fmt.Errorf("status %d: %s", resp.StatusCode, body))
	}

	var apiResp adzunaResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, apperr.Transient("adzuna decode", err)
	}

	results := make([]model.JobListing, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		results = append(results, model.JobListing{
			ExternalID:   r.ID,
			Title:        r.Title,
			Company:      r.Company.DisplayName,
			Location:     r.Location.DisplayName,
			Description:  r.Description,
			SalaryMin:    r.SalaryMin,
			SalaryMax:    r.SalaryMax,
			SourceURL:    r.RedirectURL,
			ContractType: r.ContractType,
			PublishedAt:  r.Created,
		})
	}

	return results, nil
}
