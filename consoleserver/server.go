// Package consoleserver exposes the operations of a [console.SearchService] as a JSON API for the browser console.
//
// Every route runs exactly one service operation. A success is written with status 200 and the operation's payload.
// A failure is written as a [console.ActionResponse] with status 502, or 400 when the request itself is invalid.
package consoleserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/karesti/infinispan-console-ng/console"
	"github.com/karesti/infinispan-console-ng/consoleapi"
	"github.com/karesti/infinispan-console-ng/either"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type (
	// Service is the set of search operations served over HTTP. It is implemented by [console.SearchService].
	Service interface {
		Search(ctx context.Context, cacheName string, query string, maxResults int, page int) either.Either[console.ActionResponse, console.SearchResult]
		RetrieveStats(ctx context.Context, cacheName string) either.Either[console.ActionResponse, console.SearchStats]
		RetrieveQueryStats(ctx context.Context, cacheName string) either.Either[console.ActionResponse, console.QueryStats]
		RetrieveIndexMetamodel(ctx context.Context, cacheName string) either.Either[console.ActionResponse, []console.IndexMetamodel]
		PurgeIndexes(ctx context.Context, cacheName string) either.Either[console.ActionResponse, console.ActionResponse]
		Reindex(ctx context.Context, cacheName string) either.Either[console.ActionResponse, console.ActionResponse]
		UpdateSchema(ctx context.Context, cacheName string) either.Either[console.ActionResponse, console.ActionResponse]
		ClearQueryStats(ctx context.Context, cacheName string) either.Either[console.ActionResponse, console.ActionResponse]
	}

	Options struct {
		// Required.
		Service Service
		// Defaults to a no-op logger.
		Logger *zap.Logger
		// When set, metrics gathered from it are exposed on /metrics.
		Gatherer prometheus.Gatherer
		// Requests per second accepted across all routes. Zero disables rate limiting.
		RateLimit float64
		// Burst allowed above RateLimit. Defaults to 1 when rate limiting is enabled.
		RateBurst int
		// Page size used by the search route when max_results is omitted.
		// Defaults to 10.
		DefaultMaxResults int
	}

	httpHandler struct {
		options Options
		logger  *zap.Logger
	}
)

const (
	queryQuery      = "query"
	queryMaxResults = consoleapi.QueryMaxResults
	queryPage       = "page"
)

func (h *httpHandler) writeJSON(writer http.ResponseWriter, statusCode int, v any) {
	bytes, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("failed to marshal response", zap.Error(err))
		writer.WriteHeader(http.StatusInternalServerError)
		return
	}
	writer.Header().Set(consoleapi.HeaderContentType, consoleapi.ContentTypeJSON)
	writer.WriteHeader(statusCode)
	if _, err := writer.Write(bytes); err != nil {
		h.logger.Error("failed to write response body", zap.Error(err))
	}
}

func (h *httpHandler) writeBadRequest(writer http.ResponseWriter, message string) {
	h.writeJSON(writer, http.StatusBadRequest, console.ActionResponse{Message: message})
}

func writeResult[T any](h *httpHandler, writer http.ResponseWriter, request *http.Request, result either.Either[console.ActionResponse, T]) {
	result.Match(
		func(failure console.ActionResponse) {
			h.logger.Info("operation failed",
				zap.String("path", request.URL.Path),
				zap.String("kind", string(failure.Kind)),
				zap.String("message", failure.Message),
				zap.String("request_id", RequestIDFromContext(request.Context())),
			)
			h.writeJSON(writer, http.StatusBadGateway, failure)
		},
		func(success T) {
			h.writeJSON(writer, http.StatusOK, success)
		},
	)
}

// cacheName returns the decoded cache path variable. The router matches on the encoded path so names may contain
// slashes.
func cacheName(request *http.Request) (string, bool) {
	name, err := url.PathUnescape(mux.Vars(request)["cache"])
	if err != nil || name == "" {
		return "", false
	}
	return name, true
}

// operationContext propagates the bridge request id to upstream calls.
func operationContext(request *http.Request) context.Context {
	ctx := request.Context()
	if id := RequestIDFromContext(ctx); id != "" {
		ctx = console.WithRequestID(ctx, id)
	}
	return ctx
}

func parseNonNegative(values url.Values, key string, defaultValue int) (int, bool) {
	raw := values.Get(key)
	if raw == "" {
		return defaultValue, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (h *httpHandler) Search(writer http.ResponseWriter, request *http.Request) {
	cache, ok := cacheName(request)
	if !ok {
		h.writeBadRequest(writer, "invalid cache name")
		return
	}
	values := request.URL.Query()
	query := values.Get(queryQuery)
	if query == "" {
		h.writeBadRequest(writer, "missing query parameter: "+queryQuery)
		return
	}
	maxResults, ok := parseNonNegative(values, queryMaxResults, h.options.DefaultMaxResults)
	if !ok || maxResults == 0 {
		h.writeBadRequest(writer, "invalid "+queryMaxResults+" query parameter: "+values.Get(queryMaxResults))
		return
	}
	page, ok := parseNonNegative(values, queryPage, 0)
	if !ok || page > console.MaxOffset/maxResults {
		h.writeBadRequest(writer, "invalid "+queryPage+" query parameter: "+values.Get(queryPage))
		return
	}
	writeResult(h, writer, request, h.options.Service.Search(operationContext(request), cache, query, maxResults, page))
}

func (h *httpHandler) RetrieveStats(writer http.ResponseWriter, request *http.Request) {
	cache, ok := cacheName(request)
	if !ok {
		h.writeBadRequest(writer, "invalid cache name")
		return
	}
	writeResult(h, writer, request, h.options.Service.RetrieveStats(operationContext(request), cache))
}

func (h *httpHandler) RetrieveQueryStats(writer http.ResponseWriter, request *http.Request) {
	cache, ok := cacheName(request)
	if !ok {
		h.writeBadRequest(writer, "invalid cache name")
		return
	}
	writeResult(h, writer, request, h.options.Service.RetrieveQueryStats(operationContext(request), cache))
}

func (h *httpHandler) RetrieveIndexMetamodel(writer http.ResponseWriter, request *http.Request) {
	cache, ok := cacheName(request)
	if !ok {
		h.writeBadRequest(writer, "invalid cache name")
		return
	}
	writeResult(h, writer, request, h.options.Service.RetrieveIndexMetamodel(operationContext(request), cache))
}

// command adapts a service command to a handler.
func (h *httpHandler) command(run func(context.Context, string) either.Either[console.ActionResponse, console.ActionResponse]) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		cache, ok := cacheName(request)
		if !ok {
			h.writeBadRequest(writer, "invalid cache name")
			return
		}
		writeResult(h, writer, request, run(operationContext(request), cache))
	}
}

// NewHTTPHandler creates an [http.Handler] serving the console search API under /api.
func NewHTTPHandler(options Options) http.Handler {
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.DefaultMaxResults == 0 {
		options.DefaultMaxResults = 10
	}
	if options.RateLimit > 0 && options.RateBurst == 0 {
		options.RateBurst = 1
	}
	handler := &httpHandler{
		options: options,
		logger:  options.Logger,
	}

	router := mux.NewRouter().UseEncodedPath()
	if options.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(options.Gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	const prefix = "/api/caches/{cache}/search"
	router.HandleFunc(prefix, handler.Search).Methods("GET")
	router.HandleFunc(prefix+"/stats", handler.RetrieveStats).Methods("GET")
	router.HandleFunc(prefix+"/stats/clear", handler.command(options.Service.ClearQueryStats)).Methods("POST")
	router.HandleFunc(prefix+"/query/stats", handler.RetrieveQueryStats).Methods("GET")
	router.HandleFunc(prefix+"/indexes/metamodel", handler.RetrieveIndexMetamodel).Methods("GET")
	router.HandleFunc(prefix+"/indexes/purge", handler.command(options.Service.PurgeIndexes)).Methods("POST")
	router.HandleFunc(prefix+"/indexes/reindex", handler.command(options.Service.Reindex)).Methods("POST")
	router.HandleFunc(prefix+"/indexes/update-schema", handler.command(options.Service.UpdateSchema)).Methods("POST")

	middlewares := []func(http.Handler) http.Handler{
		RequestID,
		Logging(options.Logger),
		Recovery(options.Logger),
	}
	if options.RateLimit > 0 {
		middlewares = append(middlewares, NewRateLimiter(options.RateLimit, options.RateBurst, options.Logger).Limit)
	}
	return Chain(middlewares...)(router)
}
