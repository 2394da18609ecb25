package console

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

const testTimeout = time.Second * 5

// setup starts a fake REST server serving the routes registered by routes under /rest/v2.
func setup(t *testing.T, routes func(router *mux.Router)) (ctx context.Context, service *SearchService, teardown func()) {
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)

	router := mux.NewRouter().UseEncodedPath()
	routes(router.PathPrefix("/rest/v2").Subrouter())
	server := httptest.NewServer(router)

	service, err := NewSearchService(SearchServiceOptions{
		Endpoint: server.URL + "/rest/v2",
	})
	require.NoError(t, err)

	return ctx, service, func() {
		cancel()
		server.Close()
	}
}

// setupWithCaller creates a service whose transport hands requests to caller instead of the network.
func setupWithCaller(t *testing.T, caller func(*http.Request) (*http.Response, error)) (ctx context.Context, service *SearchService, teardown func()) {
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	service, err := NewSearchService(SearchServiceOptions{
		Endpoint:  "http://unit.test/rest/v2",
		Transport: NewHTTPTransport(HTTPTransportOptions{HTTPCaller: caller}),
	})
	require.NoError(t, err)
	return ctx, service, cancel
}

func cacheVar(t *testing.T, r *http.Request) string {
	name, err := url.PathUnescape(mux.Vars(r)["cache"])
	require.NoError(t, err)
	return name
}

func writeBody(w http.ResponseWriter, status int, contentType string, body string) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func cannedResponse(status int, body string) func(*http.Request) (*http.Response, error) {
	return func(request *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Status:     http.StatusText(status),
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader(body)),
			Request:    request,
		}, nil
	}
}

func ctxForTest(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	t.Cleanup(cancel)
	return ctx
}
