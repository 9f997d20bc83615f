package congress

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FetchBillsPage lists up to limit bills at /bill/{congress}/{billType},
// optionally filtered by updatedSince (spec.md §4.4 step 1). When
// updatedSince is non-nil, fromDateTime and sort=updateDate+desc are
// appended exactly as the Batch Worker requires.
func (c *Client) FetchBillsPage(ctx context.Context, congress int, billType string, offset, limit int, updatedSince *time.Time) (*BillsListResponse, error) {
	url := fmt.Sprintf("%s/bill/%d/%s?api_key=%s&format=json&offset=%d&limit=%d",
		c.baseURL, congress, strings.ToLower(billType), c.apiKey, offset, limit)
	if updatedSince != nil {
		url += fmt.Sprintf("&fromDateTime=%s&sort=updateDate+desc", FormatFromDateTime(*updatedSince))
	}

	outcome, err := c.Fetch(ctx, url, "bill-list")
	if err != nil {
		return nil, err
	}
	if outcome.NotFound {
		return &BillsListResponse{}, nil
	}
	if outcome.StatusCode != 200 {
		return nil, fmt.Errorf("congress: bill-list returned status %d", outcome.StatusCode)
	}

	var resp BillsListResponse
	if err := json.Unmarshal(outcome.Body, &resp); err != nil {
		return nil, fmt.Errorf("congress: failed to decode bill-list: %w", err)
	}
	return &resp, nil
}

// FormatFromDateTime renders t as ISO-8601 UTC with milliseconds stripped
// and a trailing Z, e.g. "2025-01-17T03:14:00Z" (spec.md §6).
func FormatFromDateTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05") + "Z"
}

// GetBillDetail fetches the detail endpoint. Returns ErrNotFound if
// congress.gov reports 404, ErrExhausted if retries were exhausted.
func (c *Client) GetBillDetail(ctx context.Context, congress int, billType string, number int) (*BillDetail, error) {
	url := fmt.Sprintf("%s/bill/%d/%s/%d?api_key=%s&format=json",
		c.baseURL, congress, strings.ToLower(billType), number, c.apiKey)

	outcome, err := c.Fetch(ctx, url, "bill-detail")
	if err != nil {
		return nil, err
	}
	if outcome.NotFound {
		return nil, ErrNotFound
	}
	if outcome.StatusCode != 200 {
		return nil, fmt.Errorf("congress: bill-detail returned status %d", outcome.StatusCode)
	}

	var env billDetailEnvelope
	if err := json.Unmarshal(outcome.Body, &env); err != nil {
		return nil, fmt.Errorf("congress: failed to decode bill-detail: %w", err)
	}
	return &env.Bill, nil
}

// GetBillActions fetches up to 250 actions for a bill. The second return
// value is false when the endpoint was not successfully fetched — either
// a 404 ("this bill has no actions", err is nil) or a transient failure
// (err is non-nil) — per spec.md §7's distinction between absent-resource
// and transient-upstream errors. Only ok=true sets the endpoint bit.
func (c *Client) GetBillActions(ctx context.Context, congress int, billType string, number int) ([]Action, bool, error) {
	url := fmt.Sprintf("%s/bill/%d/%s/%d/actions?api_key=%s&format=json&limit=250",
		c.baseURL, congress, strings.ToLower(billType), number, c.apiKey)

	outcome, err := c.Fetch(ctx, url, "bill-actions")
	if err != nil {
		return nil, false, err
	}
	if outcome.NotFound {
		return nil, false, nil
	}
	if outcome.StatusCode != 200 {
		return nil, false, fmt.Errorf("congress: bill-actions returned status %d", outcome.StatusCode)
	}

	var env actionsEnvelope
	if err := json.Unmarshal(outcome.Body, &env); err != nil {
		return nil, false, fmt.Errorf("congress: failed to decode bill-actions: %w", err)
	}
	return env.Actions, true, nil
}

// GetBillSubjects fetches the subjects endpoint and returns the
// policyArea, if any. See GetBillActions for the ok-flag contract.
func (c *Client) GetBillSubjects(ctx context.Context, congress int, billType string, number int) (*PolicyArea, bool, error) {
	url := fmt.Sprintf("%s/bill/%d/%s/%d/subjects?api_key=%s&format=json",
		c.baseURL, congress, strings.ToLower(billType), number, c.apiKey)

	outcome, err := c.Fetch(ctx, url, "bill-subjects")
	if err != nil {
		return nil, false, err
	}
	if outcome.NotFound {
		return nil, false, nil
	}
	if outcome.StatusCode != 200 {
		return nil, false, fmt.Errorf("congress: bill-subjects returned status %d", outcome.StatusCode)
	}

	var env subjectsEnvelope
	if err := json.Unmarshal(outcome.Body, &env); err != nil {
		return nil, false, fmt.Errorf("congress: failed to decode bill-subjects: %w", err)
	}
	return env.Subjects.PolicyArea, true, nil
}

// GetBillSummaries fetches the summaries endpoint. See GetBillActions for
// the ok-flag contract.
func (c *Client) GetBillSummaries(ctx context.Context, congress int, billType string, number int) ([]Summary, bool, error) {
	url := fmt.Sprintf("%s/bill/%d/%s/%d/summaries?api_key=%s&format=json",
		c.baseURL, congress, strings.ToLower(billType), number, c.apiKey)

	outcome, err := c.Fetch(ctx, url, "bill-summaries")
	if err != nil {
		return nil, false, err
	}
	if outcome.NotFound {
		return nil, false, nil
	}
	if outcome.StatusCode != 200 {
		return nil, false, fmt.Errorf("congress: bill-summaries returned status %d", outcome.StatusCode)
	}

	var env summariesEnvelope
	if err := json.Unmarshal(outcome.Body, &env); err != nil {
		return nil, false, fmt.Errorf("congress: failed to decode bill-summaries: %w", err)
	}
	return env.Summaries, true, nil
}

// GetBillTextVersions fetches the text endpoint's textVersions array. See
// GetBillActions for the ok-flag contract.
func (c *Client) GetBillTextVersions(ctx context.Context, congress int, billType string, number int) ([]TextVersion, bool, error) {
	url := fmt.Sprintf("%s/bill/%d/%s/%d/text?api_key=%s&format=json",
		c.baseURL, congress, strings.ToLower(billType), number, c.apiKey)

	outcome, err := c.Fetch(ctx, url, "bill-text")
	if err != nil {
		return nil, false, err
	}
	if outcome.NotFound {
		return nil, false, nil
	}
	if outcome.StatusCode != 200 {
		return nil, false, fmt.Errorf("congress: bill-text returned status %d", outcome.StatusCode)
	}

	var env textEnvelope
	if err := json.Unmarshal(outcome.Body, &env); err != nil {
		return nil, false, fmt.Errorf("congress: failed to decode bill-text: %w", err)
	}
	return env.TextVersions, true, nil
}

// FindTextURLs extracts the Formatted Text and PDF format URLs from a text
// version's formats list.
func FindTextURLs(v TextVersion) (textURL, pdfURL string) {
	for _, f := range v.Formats {
		switch f.Type {
		case "Formatted Text":
			textURL = f.URL
		case "PDF":
			pdfURL = f.URL
		}
	}
	return textURL, pdfURL
}
