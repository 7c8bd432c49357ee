package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/kepox/search-api/dataset"
	"github.com/kepox/search-api/index"
	"github.com/kepox/search-api/search"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Fetch(ctx context.Context) (*dataset.Documents, error) {
	args := m.Called(ctx)
	docs, _ := args.Get(0).(*dataset.Documents)
	return docs, args.Error(1)
}

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Search(ctx context.Context, body map[string]any) (*index.Result, error) {
	args := m.Called(ctx, body)
	result, _ := args.Get(0).(*index.Result)
	return result, args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Save(ctx context.Context, e search.Entry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockRecorder) Recent(ctx context.Context, limit int) ([]search.Entry, error) {
	args := m.Called(ctx, limit)
	entries, _ := args.Get(0).([]search.Entry)
	return entries, args.Error(1)
}

func (m *mockRecorder) Top(ctx context.Context, limit int) ([]search.TopSearch, error) {
	args := m.Called(ctx, limit)
	top, _ := args.Get(0).([]search.TopSearch)
	return top, args.Error(1)
}

func (m *mockRecorder) Enabled() bool {
	return m.Called().Bool(0)
}

// decodeBody reads a JSON response body into a generic map
func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), "body: %s", raw)
	return body
}
