package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDatasetServer(t *testing.T, hits *int32) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/cars.json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Toyota": ["Camry", "Corolla"]}`))
	})
	mux.HandleFunc("/countries.json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Lebanon": ["Beirut"]}`))
	})
	mux.HandleFunc("/moved.json", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/cars.json", http.StatusFound)
	})
	mux.HandleFunc("/broken.json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFetchBothDocuments(t *testing.T) {
	var hits int32
	server := newDatasetServer(t, &hits)

	f := NewFetcher(server.URL+"/cars.json", server.URL+"/countries.json", 5*time.Second)
	docs, err := f.Fetch(context.Background())

	require.NoError(t, err)
	assert.JSONEq(t, `{"Toyota": ["Camry", "Corolla"]}`, string(docs.Cars))
	assert.JSONEq(t, `{"Lebanon": ["Beirut"]}`, string(docs.Countries))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestFetchFollowsRedirects(t *testing.T) {
	var hits int32
	server := newDatasetServer(t, &hits)

	f := NewFetcher(server.URL+"/moved.json", server.URL+"/countries.json", 5*time.Second)
	docs, err := f.Fetch(context.Background())

	require.NoError(t, err)
	assert.JSONEq(t, `{"Toyota": ["Camry", "Corolla"]}`, string(docs.Cars))
}

func TestFetchFailsWhenEitherFails(t *testing.T) {
	var hits int32
	server := newDatasetServer(t, &hits)

	tests := []struct {
		name         string
		carsURL      string
		countriesURL string
	}{
		{name: "cars fails", carsURL: server.URL + "/broken.json", countriesURL: server.URL + "/countries.json"},
		{name: "countries fails", carsURL: server.URL + "/cars.json", countriesURL: server.URL + "/broken.json"},
		{name: "cars missing", carsURL: server.URL + "/nope.json", countriesURL: server.URL + "/countries.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFetcher(tt.carsURL, tt.countriesURL, 5*time.Second)
			docs, err := f.Fetch(context.Background())
			assert.Error(t, err)
			assert.Nil(t, docs)
		})
	}
}

func TestFetchUnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	f := NewFetcher(url+"/cars.json", url+"/countries.json", time.Second)
	_, err := f.Fetch(context.Background())
	assert.Error(t, err)
}

func TestFetchCancelledContext(t *testing.T) {
	var hits int32
	server := newDatasetServer(t, &hits)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(server.URL+"/cars.json", server.URL+"/countries.json", time.Second)
	_, err := f.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}
