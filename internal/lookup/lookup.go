// Package lookup implements the three external code-lookup adapters:
// SNOMED browser search, Clinical Tables search (used for LOINC and,
// as a fallback, RxNorm's rxterms table), and native RxNorm REST. All
// adapters enforce a per-call timeout and convert I/O, parse, and status
// errors into an empty result plus a logged warning; none of them ever
// propagate an error to the caller.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cognicore/termmatch/internal/engineerr"
)

// Candidate is one external hit, uniform across adapters.
type Candidate struct {
	Code    string
	Display string
	Source  string
}

// Adapter is the uniform interface every external lookup implements.
type Adapter interface {
	Search(ctx context.Context, term string, maxResults int) []Candidate
}

func logOrDefault(logger *log.Logger) *log.Logger {
	if logger != nil {
		return logger
	}
	return log.Default()
}

func httpClientOrDefault(c *http.Client, timeout time.Duration) *http.Client {
	if c != nil {
		return c
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// SNOMEDAdapter queries the SNOMED browser REST search endpoint.
type SNOMEDAdapter struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *log.Logger
}

type snomedSearchResponse struct {
	Items []struct {
		ConceptID string `json:"conceptId"`
		Term      string `json:"term"`
	} `json:"items"`
}

func (a *SNOMEDAdapter) Search(ctx context.Context, term string, maxResults int) []Candidate {
	logger := logOrDefault(a.Logger)
	if a.BaseURL == "" {
		return nil
	}

	url := fmt.Sprintf("%s/browser/concepts?term=%s&limit=%d", a.BaseURL, queryEscape(term), maxResults)
	var payload snomedSearchResponse
	if err := getJSON(ctx, httpClientOrDefault(a.HTTPClient, a.Timeout), url, &payload); err != nil {
		logger.Printf("lookup: snomed search failed for %q: %v", term, fmt.Errorf("%w: %w", engineerr.ErrExternalLookup, err))
		return nil
	}

	out := make([]Candidate, 0, len(payload.Items))
	for _, item := range payload.Items {
		out = append(out, Candidate{Code: item.ConceptID, Display: item.Term, Source: "snomed_browser"})
		if len(out) >= maxResults {
			break
		}
	}
	return out
}

// ClinicalTablesAdapter queries the NLM Clinical Tables generic search
// endpoint against a named table (e.g. "loinc_items", "rxterms").
type ClinicalTablesAdapter struct {
	BaseURL    string
	Table      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *log.Logger
}

// clinicalTablesResponse models the Clinical Tables API's positional-array
// response shape: [total, codes[], extra, displayRows[][]].
type clinicalTablesResponse struct {
	Total       int
	Codes       []string
	DisplayRows [][]string
}

func (a *ClinicalTablesAdapter) UnmarshalSearch(data []byte) (clinicalTablesResponse, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return clinicalTablesResponse{}, err
	}
	if len(raw) < 4 {
		return clinicalTablesResponse{}, fmt.Errorf("lookup: unexpected clinical tables shape")
	}

	var resp clinicalTablesResponse
	if err := json.Unmarshal(raw[0], &resp.Total); err != nil {
		return clinicalTablesResponse{}, err
	}
	if err := json.Unmarshal(raw[1], &resp.Codes); err != nil {
		return clinicalTablesResponse{}, err
	}
	if err := json.Unmarshal(raw[3], &resp.DisplayRows); err != nil {
		return clinicalTablesResponse{}, err
	}
	return resp, nil
}

func (a *ClinicalTablesAdapter) Search(ctx context.Context, term string, maxResults int) []Candidate {
	logger := logOrDefault(a.Logger)
	if a.BaseURL == "" || a.Table == "" {
		return nil
	}

	url := fmt.Sprintf("%s/api/%s/v3/search?terms=%s&maxList=%d", a.BaseURL, a.Table, queryEscape(term), maxResults)
	body, err := getBody(ctx, httpClientOrDefault(a.HTTPClient, a.Timeout), url)
	if err != nil {
		logger.Printf("lookup: clinical tables (%s) search failed for %q: %v", a.Table, term, fmt.Errorf("%w: %w", engineerr.ErrExternalLookup, err))
		return nil
	}

	resp, err := a.UnmarshalSearch(body)
	if err != nil {
		logger.Printf("lookup: clinical tables (%s) parse failed for %q: %v", a.Table, term, fmt.Errorf("%w: %w", engineerr.ErrExternalLookup, err))
		return nil
	}

	out := make([]Candidate, 0, len(resp.Codes))
	for i, code := range resp.Codes {
		display := code
		if i < len(resp.DisplayRows) && len(resp.DisplayRows[i]) > 0 {
			display = resp.DisplayRows[i][0]
		}
		out = append(out, Candidate{Code: code, Display: display, Source: "clinical_tables_" + a.Table})
		if len(out) >= maxResults {
			break
		}
	}
	return out
}

// RxNormAdapter queries the native RxNorm REST API. On error or empty
// result, it retries via a Clinical Tables rxterms fallback; each attempt
// is independently error-guarded.
type RxNormAdapter struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *log.Logger
	Fallback   *ClinicalTablesAdapter
}

type rxnormResponse struct {
	DrugGroup struct {
		ConceptGroup []struct {
			ConceptProperties []struct {
				RxCUI string `json:"rxcui"`
				Name  string `json:"name"`
			} `json:"conceptProperties"`
		} `json:"conceptGroup"`
	} `json:"drugGroup"`
}

func (a *RxNormAdapter) Search(ctx context.Context, term string, maxResults int) []Candidate {
	logger := logOrDefault(a.Logger)

	if a.BaseURL != "" {
		url := fmt.Sprintf("%s/REST/drugs.json?name=%s", a.BaseURL, queryEscape(term))
		var payload rxnormResponse
		if err := getJSON(ctx, httpClientOrDefault(a.HTTPClient, a.Timeout), url, &payload); err != nil {
			logger.Printf("lookup: rxnorm search failed for %q: %v", term, fmt.Errorf("%w: %w", engineerr.ErrExternalLookup, err))
		} else {
			out := make([]Candidate, 0, maxResults)
			for _, group := range payload.DrugGroup.ConceptGroup {
				for _, prop := range group.ConceptProperties {
					out = append(out, Candidate{Code: prop.RxCUI, Display: prop.Name, Source: "rxnorm_rest"})
					if len(out) >= maxResults {
						return out
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}

	if a.Fallback != nil {
		return a.Fallback.Search(ctx, term, maxResults)
	}
	return nil
}
