package consoleserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/karesti/infinispan-console-ng/console"
	"github.com/stretchr/testify/require"
)

const testTimeout = time.Second * 5

// setup starts a fake upstream REST server serving routes under /rest/v2 and a bridge server in front of it.
// configure may adjust the bridge options before the handler is created.
func setup(t *testing.T, routes func(router *mux.Router), configure func(*Options)) (ctx context.Context, bridgeURL string, teardown func()) {
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)

	router := mux.NewRouter().UseEncodedPath()
	routes(router.PathPrefix("/rest/v2").Subrouter())
	upstream := httptest.NewServer(router)

	service, err := console.NewSearchService(console.SearchServiceOptions{
		Endpoint: upstream.URL + "/rest/v2",
	})
	require.NoError(t, err)

	options := Options{Service: service}
	if configure != nil {
		configure(&options)
	}
	bridge := httptest.NewServer(NewHTTPHandler(options))

	return ctx, bridge.URL, func() {
		cancel()
		bridge.Close()
		upstream.Close()
	}
}

func call(ctx context.Context, t *testing.T, method string, url string) (*http.Response, []byte) {
	request, err := http.NewRequestWithContext(ctx, method, url, nil)
	require.NoError(t, err)
	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	return response, body
}

func decodeActionResponse(t *testing.T, body []byte) console.ActionResponse {
	var response console.ActionResponse
	require.NoError(t, json.Unmarshal(body, &response))
	return response
}

func writeBody(w http.ResponseWriter, status int, contentType string, body string) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
