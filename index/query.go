package index

import (
	"strconv"
	"strings"

	"github.com/kepox/search-api/config"
)

// Field names in the cars index
const (
	fieldTitle       = "title"
	fieldBrand       = "brand"
	fieldModel       = "model"
	fieldDescription = "description"
	fieldCountryNorm = "country_norm"
	fieldCityNorm    = "city_norm"
	fieldYear        = "year"
	fieldPrice       = "price_usd"
)

// Params are the search inputs taken from the query string. All optional.
type Params struct {
	Q       string `query:"q"`
	Country string `query:"country"`
	City    string `query:"city"`
	Make    string `query:"make"`
	Model   string `query:"model"`
	Year    string `query:"year"`
	Budget  string `query:"budget"`
}

// ParseYear returns the year as an integer; ok is false for absent or invalid input
func ParseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return year, true
}

// ParseBudget strips everything but digits ("25,000" -> 25000)
func ParseBudget(s string) (int, bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return 0, false
	}
	budget, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return budget, true
}

// BuildQuery turns the params into a search request body. Each param adds
// its clauses independently of the others.
func BuildQuery(p Params) map[string]any {
	should := []any{}
	must := []any{}
	filter := []any{}

	if q := strings.TrimSpace(p.Q); q != "" {
		should = append(should,
			map[string]any{
				"multi_match": map[string]any{
					"query":     q,
					"fields":    []string{fieldTitle + "^3", fieldModel + "^3", fieldBrand + "^2", fieldDescription},
					"fuzziness": "AUTO",
				},
			},
			phrase(fieldModel, q, 2),
			phrase(fieldBrand, q, 1.5),
		)
	}

	if brand := strings.TrimSpace(p.Make); brand != "" {
		must = append(must, matchAll(fieldBrand, brand))
	}
	if model := strings.TrimSpace(p.Model); model != "" {
		must = append(must, matchAll(fieldModel, model))
	}

	if country := strings.TrimSpace(p.Country); country != "" {
		filter = append(filter, term(fieldCountryNorm, country))
	}
	if city := strings.TrimSpace(p.City); city != "" {
		filter = append(filter, term(fieldCityNorm, city))
	}
	if year, ok := ParseYear(p.Year); ok {
		filter = append(filter, term(fieldYear, year))
	}
	if budget, ok := ParseBudget(p.Budget); ok {
		filter = append(filter, map[string]any{
			"range": map[string]any{
				fieldPrice: map[string]any{"lte": budget},
			},
		})
	}

	minimumShouldMatch := 0
	if len(should) > 0 {
		minimumShouldMatch = 1
	}

	return map[string]any{
		"size": config.IndexPageSize,
		"query": map[string]any{
			"bool": map[string]any{
				"should":               should,
				"must":                 must,
				"filter":               filter,
				"minimum_should_match": minimumShouldMatch,
			},
		},
		"sort": []any{
			map[string]any{"_score": map[string]any{"order": "desc"}},
			map[string]any{fieldYear: map[string]any{"order": "desc"}},
		},
	}
}

func phrase(field, q string, boost float64) map[string]any {
	return map[string]any{
		"match_phrase": map[string]any{
			field: map[string]any{"query": q, "slop": 1, "boost": boost},
		},
	}
}

func matchAll(field, value string) map[string]any {
	return map[string]any{
		"match": map[string]any{
			field: map[string]any{"query": value, "operator": "and"},
		},
	}
}

func term(field string, value any) map[string]any {
	return map[string]any{
		"term": map[string]any{field: value},
	}
}
