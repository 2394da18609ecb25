package console

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/karesti/infinispan-console-ng/consoleapi"
	"github.com/karesti/infinispan-console-ng/either"
	"go.uber.org/zap"
)

var (
	ErrEmptyEndpoint    = errors.New("empty Endpoint")
	ErrInvalidURLScheme = errors.New("invalid URL scheme")

	errEmptyCacheName = errors.New("empty cache name")
	errInvalidPaging  = errors.New("invalid paging")
)

// MaxOffset is the largest search offset, page * maxResults, accepted by the REST API.
const MaxOffset = math.MaxInt32

// SearchServiceOptions are options for creating a [SearchService].
type SearchServiceOptions struct {
	// Base URL of the REST API, e.g. http://localhost:11222/rest/v2. Required.
	Endpoint string
	// Transport used to issue requests.
	// Defaults to an [HTTPTransport] backed by [http.DefaultClient].
	Transport Transport
	// Defaults to a no-op logger.
	Logger *zap.Logger
	// Optional operation metrics.
	Metrics *Metrics
}

// SearchService calls the Infinispan endpoints related to search and indexing.
//
// Every operation returns an [either.Either] holding a failure [ActionResponse] on the left or the operation's success
// payload on the right. Operations never return errors: transport failures, server errors and malformed responses
// are all reported as an ActionResponse with a human readable message.
//
// A SearchService holds no mutable state and is safe for concurrent use. Each call issues exactly one request and is
// never retried.
type SearchService struct {
	options  SearchServiceOptions
	endpoint *url.URL
}

// NewSearchService creates a new [SearchService] from the provided [SearchServiceOptions].
func NewSearchService(options SearchServiceOptions) (*SearchService, error) {
	if options.Endpoint == "" {
		return nil, ErrEmptyEndpoint
	}
	endpoint, err := url.Parse(options.Endpoint)
	if err != nil {
		return nil, err
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURLScheme, endpoint.Scheme)
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.Transport == nil {
		options.Transport = NewHTTPTransport(HTTPTransportOptions{Logger: options.Logger})
	}
	return &SearchService{
		options:  options,
		endpoint: endpoint,
	}, nil
}

// Search runs query against cacheName and returns the requested page of hits.
// page is zero based; the offset sent to the server is page * maxResults.
func (s *SearchService) Search(ctx context.Context, cacheName string, query string, maxResults int, page int) either.Either[ActionResponse, SearchResult] {
	offset, err := searchOffset(maxResults, page)
	q := url.Values{}
	q.Set(consoleapi.QueryAction, consoleapi.ActionSearch)
	q.Set(consoleapi.QueryQuery, query)
	q.Set(consoleapi.QueryMaxResults, strconv.Itoa(maxResults))
	q.Set(consoleapi.QueryOffset, strconv.Itoa(offset))
	u, urlErr := s.cacheURL(cacheName, q)
	if err == nil {
		err = urlErr
	}
	request := Request{
		Method: http.MethodGet,
		URL:    u,
		Accept: consoleapi.AcceptSearch,
	}
	return execute(ctx, s, request, err, operation[SearchResult]{
		name:           "search",
		genericFailure: "Cannot perform query.",
		onSuccess: func(response *Response) (SearchResult, error) {
			if response.BodyErr != nil {
				return SearchResult{}, response.BodyErr
			}
			return searchResultFromBody(response.Body)
		},
	})
}

// searchOffset returns page * maxResults, or an error when the paging is negative or the offset exceeds [MaxOffset].
func searchOffset(maxResults int, page int) (int, error) {
	if maxResults < 0 || page < 0 || (maxResults > 0 && page > MaxOffset/maxResults) {
		return 0, fmt.Errorf("%w: max results %d, page %d", errInvalidPaging, maxResults, page)
	}
	return page * maxResults, nil
}

// RetrieveStats retrieves the index and query statistics of cacheName.
// Counters are formatted for display with [FormatNumber].
func (s *SearchService) RetrieveStats(ctx context.Context, cacheName string) either.Either[ActionResponse, SearchStats] {
	u, err := s.cacheURL(cacheName, nil, "search", "stats")
	request := Request{
		Method: http.MethodGet,
		URL:    u,
	}
	return execute(ctx, s, request, err, operation[SearchStats]{
		name:           "retrieve_stats",
		genericFailure: "An error occurred when retrieving index statistics for cache " + cacheName,
		onSuccess: func(response *Response) (SearchStats, error) {
			if response.BodyErr != nil {
				return SearchStats{}, response.BodyErr
			}
			return searchStatsFromBody(response.Body)
		},
	})
}

// RetrieveQueryStats retrieves the raw query statistics of cacheName.
func (s *SearchService) RetrieveQueryStats(ctx context.Context, cacheName string) either.Either[ActionResponse, QueryStats] {
	u, err := s.cacheURL(cacheName, nil, "search", "query", "stats")
	request := Request{
		Method: http.MethodGet,
		URL:    u,
	}
	return execute(ctx, s, request, err, operation[QueryStats]{
		name:           "retrieve_query_stats",
		genericFailure: "An error occurred when retrieving query statistics for cache " + cacheName,
		onSuccess: func(response *Response) (QueryStats, error) {
			if response.BodyErr != nil {
				return QueryStats{}, response.BodyErr
			}
			return queryStatsFromBody(response.Body)
		},
	})
}

// RetrieveIndexMetamodel retrieves the description of the indexed entities of cacheName.
func (s *SearchService) RetrieveIndexMetamodel(ctx context.Context, cacheName string) either.Either[ActionResponse, []IndexMetamodel] {
	u, err := s.cacheURL(cacheName, nil, "search", "indexes", "metamodel")
	request := Request{
		Method: http.MethodGet,
		URL:    u,
	}
	return execute(ctx, s, request, err, operation[[]IndexMetamodel]{
		name:           "retrieve_index_metamodel",
		genericFailure: "An error occurred when retrieving the index metamodel for cache " + cacheName,
		onSuccess: func(response *Response) ([]IndexMetamodel, error) {
			if response.BodyErr != nil {
				return nil, response.BodyErr
			}
			return indexMetamodelFromBody(response.Body)
		},
	})
}

// PurgeIndexes clears the indexes of cacheName.
func (s *SearchService) PurgeIndexes(ctx context.Context, cacheName string) either.Either[ActionResponse, ActionResponse] {
	q := url.Values{}
	q.Set(consoleapi.QueryAction, consoleapi.ActionClear)
	return s.command(ctx, "purge_indexes", cacheName, q, []string{"search", "indexes"},
		"Index of cache "+cacheName+" cleared.",
		"An error occurred when clearing the index for cache "+cacheName,
	)
}

// Reindex starts rebuilding the indexes of cacheName asynchronously on the server.
func (s *SearchService) Reindex(ctx context.Context, cacheName string) either.Either[ActionResponse, ActionResponse] {
	q := url.Values{}
	q.Set(consoleapi.QueryAction, consoleapi.ActionMassIndex)
	q.Set(consoleapi.QueryMode, consoleapi.ModeAsync)
	return s.command(ctx, "reindex", cacheName, q, []string{"search", "indexes"},
		"Indexing cache "+cacheName+" started.",
		"An error occurred when starting to rebuild the index for cache "+cacheName,
	)
}

// UpdateSchema updates the index schema of cacheName in place.
func (s *SearchService) UpdateSchema(ctx context.Context, cacheName string) either.Either[ActionResponse, ActionResponse] {
	q := url.Values{}
	q.Set(consoleapi.QueryAction, consoleapi.ActionUpdateSchema)
	return s.command(ctx, "update_schema", cacheName, q, []string{"search", "indexes"},
		"Schema of index of cache "+cacheName+" updated.",
		"An error occurred when updating the index schema for cache "+cacheName,
	)
}

// ClearQueryStats clears the query statistics of cacheName.
func (s *SearchService) ClearQueryStats(ctx context.Context, cacheName string) either.Either[ActionResponse, ActionResponse] {
	q := url.Values{}
	q.Set(consoleapi.QueryAction, consoleapi.ActionClear)
	return s.command(ctx, "clear_query_stats", cacheName, q, []string{"search", "stats"},
		"Query statistics of cache "+cacheName+" cleared.",
		"Cannot clear query statistics of cache "+cacheName,
	)
}

// command issues a POST whose success carries no payload.
func (s *SearchService) command(ctx context.Context, name string, cacheName string, query url.Values, segments []string, successMessage string, genericFailure string) either.Either[ActionResponse, ActionResponse] {
	u, err := s.cacheURL(cacheName, query, segments...)
	request := Request{
		Method: http.MethodPost,
		URL:    u,
	}
	return execute(ctx, s, request, err, operation[ActionResponse]{
		name:           name,
		genericFailure: genericFailure,
		onSuccess: func(*Response) (ActionResponse, error) {
			return newSuccess(successMessage), nil
		},
	})
}

// cacheURL resolves endpoint/caches/{cacheName}/segments... with the cache name escaped as a single path segment.
// The path is assembled verbatim, so dot segments in the name are never resolved.
func (s *SearchService) cacheURL(cacheName string, query url.Values, segments ...string) (*url.URL, error) {
	if cacheName == "" {
		return nil, errEmptyCacheName
	}
	elems := append([]string{strings.TrimRight(s.endpoint.EscapedPath(), "/"), "caches", escapeSegment(cacheName)}, segments...)
	rawPath := strings.Join(elems, "/")
	path, err := url.PathUnescape(rawPath)
	if err != nil {
		return nil, err
	}
	u := *s.endpoint
	u.Path = path
	u.RawPath = rawPath
	u.RawQuery = query.Encode()
	return &u, nil
}

// escapeSegment percent-encodes name as one path segment. Names made only of dots are encoded too so they are not
// taken for dot segments.
func escapeSegment(name string) string {
	if strings.Trim(name, ".") == "" {
		return strings.Repeat("%2E", len(name))
	}
	return url.PathEscape(name)
}

// execute issues request and classifies its outcome. A non nil invalid reports the operation's generic failure
// without issuing any request.
func execute[T any](ctx context.Context, s *SearchService, request Request, invalid error, op operation[T]) either.Either[ActionResponse, T] {
	start := time.Now()
	var result either.Either[ActionResponse, T]
	if invalid != nil {
		s.options.Logger.Warn("invalid operation arguments", zap.String("operation", op.name), zap.Error(invalid))
		result = either.Left[ActionResponse, T](newFailure(FailureKindGeneric, op.genericFailure))
	} else {
		result = classify(s.options.Transport.Call(ctx, request), op, s.options.Logger)
	}
	label := outcomeSuccess
	if failure, ok := result.Left(); ok {
		label = string(failure.Kind)
	}
	s.options.Metrics.observe(op.name, label, time.Since(start))
	return result
}
