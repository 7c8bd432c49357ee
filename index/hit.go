package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Hit is a flattened search result. Listing fields carry the indexed value
// as is; absent fields are omitted.
type Hit struct {
	ID       string   `json:"id"`
	Score    *float64 `json:"score"`
	Title    string   `json:"title"`
	Brand    any      `json:"brand,omitempty"`
	Model    any      `json:"model,omitempty"`
	Year     any      `json:"year,omitempty"`
	Country  any      `json:"country,omitempty"`
	City     any      `json:"city,omitempty"`
	PriceUSD any      `json:"price_usd,omitempty"`
	Currency any      `json:"currency,omitempty"`
	Image    any      `json:"image,omitempty"`
	URL      any      `json:"url,omitempty"`
	Source   any      `json:"source,omitempty"`
}

// Result is the reshaped search response
type Result struct {
	Total int64
	Hits  []Hit
}

type searchResponse struct {
	Hits struct {
		Total json.RawMessage `json:"total"`
		Hits  []struct {
			ID     string   `json:"_id"`
			Score  *float64 `json:"_score"`
			Source document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// document is a listing as stored in the index. Fields are untyped so one
// listing with an unusual value does not fail the whole response.
type document struct {
	Title    any `json:"title"`
	Brand    any `json:"brand"`
	Model    any `json:"model"`
	Year     any `json:"year"`
	Country  any `json:"country"`
	City     any `json:"city"`
	PriceUSD any `json:"price_usd"`
	Currency any `json:"currency"`
	Image    any `json:"image"`
	URL      any `json:"url"`
	Source   any `json:"source"`
}

func decodeResult(raw []byte) (*Result, error) {
	var resp searchResponse
	dec := json.NewDecoder(bytes.NewReader(raw))
	// keep numbers as the index wrote them
	dec.UseNumber()
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode index response: %w", err)
	}

	total, err := parseTotal(resp.Hits.Total)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		doc := h.Source
		title := textOf(doc.Title)
		if title == "" {
			title = defaultTitle(doc)
		}
		hits = append(hits, Hit{
			ID:       h.ID,
			Score:    h.Score,
			Title:    title,
			Brand:    doc.Brand,
			Model:    doc.Model,
			Year:     doc.Year,
			Country:  doc.Country,
			City:     doc.City,
			PriceUSD: doc.PriceUSD,
			Currency: doc.Currency,
			Image:    doc.Image,
			URL:      doc.URL,
			Source:   doc.Source,
		})
	}

	return &Result{Total: total, Hits: hits}, nil
}

// parseTotal accepts both {"value": n, "relation": "eq"} and a bare number
func parseTotal(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}

	if raw[0] == '{' {
		var total struct {
			Value int64 `json:"value"`
		}
		if err := json.Unmarshal(raw, &total); err != nil {
			return 0, fmt.Errorf("failed to decode hit total: %w", err)
		}
		return total.Value, nil
	}

	var total int64
	if err := json.Unmarshal(raw, &total); err != nil {
		return 0, fmt.Errorf("failed to decode hit total: %w", err)
	}
	return total, nil
}

// defaultTitle is "<brand> <model> <year>" skipping missing parts
func defaultTitle(doc document) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{textOf(doc.Brand), textOf(doc.Model), textOf(doc.Year)} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

func textOf(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
