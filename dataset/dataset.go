package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/kepox/search-api/config"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/errgroup"
)

const maxRedirects = 5

// Documents holds the raw bodies of both datasets fetched for one request
type Documents struct {
	Cars      []byte
	Countries []byte
}

// Source provides the two datasets searched by the dataset proxy
type Source interface {
	Fetch(ctx context.Context) (*Documents, error)
}

// Fetcher downloads the datasets from their content host on every call.
// Nothing is kept between calls.
type Fetcher struct {
	client       *fasthttp.Client
	carsURL      string
	countriesURL string
}

// NewFetcher creates a fetcher for the given dataset URLs. A zero timeout
// leaves the fetches unbounded.
func NewFetcher(carsURL, countriesURL string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &fasthttp.Client{
			Name:         "kepox-search",
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		carsURL:      carsURL,
		countriesURL: countriesURL,
	}
}

// NewDefaultFetcher points at the published Kepox datasets
func NewDefaultFetcher(timeout time.Duration) *Fetcher {
	return NewFetcher(config.CarsDatasetURL, config.CountriesDatasetURL, timeout)
}

// Fetch retrieves both documents concurrently. Both must succeed; the first
// failure is returned.
func (f *Fetcher) Fetch(ctx context.Context) (*Documents, error) {
	var docs Documents

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := f.get(gctx, f.carsURL)
		if err != nil {
			return fmt.Errorf("fetch cars dataset: %w", err)
		}
		docs.Cars = body
		return nil
	})
	g.Go(func() error {
		body, err := f.get(gctx, f.countriesURL)
		if err != nil {
			return fmt.Errorf("fetch countries dataset: %w", err)
		}
		docs.Countries = body
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &docs, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	// a sibling fetch may already have failed
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	if err := f.client.DoRedirects(req, resp, maxRedirects); err != nil {
		return nil, err
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", url, resp.StatusCode())
	}

	// the response buffer goes back to the pool on return
	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}
