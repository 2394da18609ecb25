package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/karesti/infinispan-console-ng/consoleapi"
	"go.uber.org/zap"
)

// Transport is the low-level abstraction used by [SearchService] to make network calls.
//
// A Transport performs exactly one round trip per call. It does not retry, does not apply timeouts beyond the provided
// context and does not interpret status codes beyond selecting the [Outcome] variant.
type Transport interface {
	Call(ctx context.Context, request Request) Outcome
}

// Request describes a single call issued through a [Transport].
type Request struct {
	// HTTP method, e.g. GET or POST.
	Method string
	// Fully resolved target URL.
	URL *url.URL
	// Optional Accept header value.
	Accept string
}

// Outcome is the result of a [Transport] call. It is one of [*Response], [*HTTPFailure] or [*TransportFailure].
type Outcome interface {
	outcome()
}

// Response is the [Outcome] of a call that completed with a 2xx status.
type Response struct {
	StatusCode int
	Header     http.Header
	// Body read into memory. The underlying connection has already been released.
	Body []byte
	// Set when the body could not be read in its entirety.
	BodyErr error
}

// HTTPFailure is the [Outcome] of a call that completed with a status outside of the 2xx range.
type HTTPFailure struct {
	StatusCode int
	// Status line, e.g. "400 Bad Request".
	Status string
	Header http.Header
	// Body read into memory. The underlying connection has already been released.
	Body []byte
	// Set when the body could not be read in its entirety.
	BodyErr error
}

// TransportFailure is the [Outcome] of a call that failed before any response was obtained, for example because of a
// connectivity failure or a canceled context.
type TransportFailure struct {
	// Message of the underlying failure, used verbatim when reporting to users.
	Message string
	// The underlying failure.
	Err error
}

func (*Response) outcome()         {}
func (*HTTPFailure) outcome()      {}
func (*TransportFailure) outcome() {}

// Error implements the error interface.
func (f *TransportFailure) Error() string {
	return f.Message
}

// Unwrap returns the underlying failure.
func (f *TransportFailure) Unwrap() error {
	return f.Err
}

func newTransportFailure(err error) *TransportFailure {
	return &TransportFailure{Message: err.Error(), Err: err}
}

var errNoResponse = errors.New("no response received")

type requestIDKey struct{}

// WithRequestID returns a copy of ctx that makes [HTTPTransport] send id as the request id instead of generating one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// User-Agent header set on HTTP requests.
const userAgent = "infinispan-console-go/" + version

// HTTPTransportOptions are the options for constructing a new [HTTPTransport].
type HTTPTransportOptions struct {
	// A function for making HTTP requests.
	// Defaults to [http.DefaultClient.Do].
	HTTPCaller func(*http.Request) (*http.Response, error)
	// Logger for request level debug logs.
	// Defaults to a no-op logger.
	Logger *zap.Logger
}

// HTTPTransport is a [Transport] implementation backed by HTTP.
type HTTPTransport struct {
	options HTTPTransportOptions
}

// NewHTTPTransport creates a new [HTTPTransport] from the provided [HTTPTransportOptions].
func NewHTTPTransport(options HTTPTransportOptions) *HTTPTransport {
	if options.HTTPCaller == nil {
		options.HTTPCaller = http.DefaultClient.Do
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	return &HTTPTransport{options: options}
}

// Call implements [Transport].
func (t *HTTPTransport) Call(ctx context.Context, request Request) Outcome {
	httpReq, err := http.NewRequestWithContext(ctx, request.Method, request.URL.String(), nil)
	if err != nil {
		return newTransportFailure(err)
	}
	requestID, _ := ctx.Value(requestIDKey{}).(string)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	httpReq.Header.Set(consoleapi.HeaderRequestID, requestID)
	httpReq.Header.Set(consoleapi.HeaderUserAgent, userAgent)
	if request.Accept != "" {
		httpReq.Header.Set(consoleapi.HeaderAccept, request.Accept)
	}

	logger := t.options.Logger.With(
		zap.String("method", request.Method),
		zap.Stringer("url", request.URL),
		zap.String("request_id", requestID),
	)
	response, err := t.options.HTTPCaller(httpReq)
	if err != nil {
		logger.Debug("request failed before a response was received", zap.Error(err))
		return newTransportFailure(err)
	}
	if response == nil {
		logger.Debug("request completed without a response")
		return newTransportFailure(errNoResponse)
	}

	// Do this once here and make sure it doesn't leak.
	body, bodyErr := readBody(response)
	logger.Debug("response received", zap.Int("status", response.StatusCode), zap.Int("body_length", len(body)))

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return &Response{
			StatusCode: response.StatusCode,
			Header:     response.Header,
			Body:       body,
			BodyErr:    bodyErr,
		}
	}
	return &HTTPFailure{
		StatusCode: response.StatusCode,
		Status:     response.Status,
		Header:     response.Header,
		Body:       body,
		BodyErr:    bodyErr,
	}
}

// readBody reads the response body in its entirety and closes it, and then replaces the original response body with an
// in-memory buffer.
// The body is replaced even when there was an error reading the entire body.
func readBody(response *http.Response) ([]byte, error) {
	if response.Body == nil {
		return nil, nil
	}
	responseBody := response.Body
	body, err := io.ReadAll(responseBody)
	responseBody.Close()
	response.Body = io.NopCloser(bytes.NewReader(body))
	return body, err
}
