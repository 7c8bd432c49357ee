package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/kepox/search-api/config"
	"github.com/kepox/search-api/dataset"
	"github.com/kepox/search-api/search"
	"github.com/kepox/search-api/vehicle"
	"go.uber.org/zap"
)

// DatasetSearchResponse is the body of GET /search on the dataset proxy
type DatasetSearchResponse struct {
	Query        string               `json:"query"`
	Country      *string              `json:"country"`
	TotalResults int                  `json:"totalResults"`
	Results      []vehicle.CarRecord  `json:"results"`
	CountryData  *vehicle.CountryInfo `json:"countryData,omitempty"`
}

// DatasetHandler serves searches over the static cars/countries datasets
type DatasetHandler struct {
	source  dataset.Source
	history search.Recorder
	logger  *zap.Logger
}

func NewDatasetHandler(source dataset.Source, history search.Recorder, logger *zap.Logger) *DatasetHandler {
	return &DatasetHandler{source: source, history: history, logger: logger}
}

// HandleRoot is the liveness page
func (h *DatasetHandler) HandleRoot(c *fiber.Ctx) error {
	return c.SendString(config.LivenessText)
}

func (h *DatasetHandler) HandleSearch(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please provide a search query (q)",
		})
	}
	country := c.Query("country")

	docs, err := h.source.Fetch(c.UserContext())
	if err != nil {
		return h.fetchFailed(c, err)
	}

	cars, err := vehicle.Flatten(docs.Cars)
	if err != nil {
		return h.fetchFailed(c, err)
	}

	var countryInfo *vehicle.CountryInfo
	if country != "" {
		countryInfo, err = vehicle.FindCountry(docs.Countries, country)
		if err != nil {
			return h.fetchFailed(c, err)
		}
	} else if !json.Valid(docs.Countries) {
		return h.fetchFailed(c, errors.New("countries dataset is not valid JSON"))
	}

	results := vehicle.Filter(cars, q)
	resp := DatasetSearchResponse{
		Query:        q,
		TotalResults: len(results),
		Results:      results[:min(len(results), config.MaxDatasetResults)],
		CountryData:  countryInfo,
	}
	if countryInfo != nil {
		resp.Country = &countryInfo.Country
	}

	h.record(c, search.Entry{
		Variant:     search.VariantDataset,
		QueryString: q,
		Country:     country,
		ResultCount: resp.TotalResults,
	})

	return c.JSON(resp)
}

func (h *DatasetHandler) fetchFailed(c *fiber.Ctx, err error) error {
	h.logger.Error("Error fetching JSON", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to fetch JSON files",
	})
}

func (h *DatasetHandler) record(c *fiber.Ctx, e search.Entry) {
	recordSearch(c, h.history, h.logger, e)
}
