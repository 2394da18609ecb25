package console

import (
	"encoding/json"
	"strings"

	"github.com/karesti/infinispan-console-ng/consoleapi"
	"github.com/karesti/infinispan-console-ng/either"
	"go.uber.org/zap"
)

// operation describes how a service operation turns an [Outcome] into a result.
type operation[T any] struct {
	// Name used in logs and metrics.
	name string
	// Message reported when no more specific failure detail is available.
	genericFailure string
	// Builds the success payload from a 2xx response. An error marks the response as unexpected.
	onSuccess func(*Response) (T, error)
}

// classify reduces an outcome to exactly one of a success payload or a failure [ActionResponse].
//
// Precedence:
//
//  1. 2xx response: the payload built by onSuccess, or an unexpected-shape failure if it cannot be built.
//  2. Non 2xx response: the structured error message and cause, else the body text, else the generic message.
//  3. Transport failure: the failure's own message.
//  4. Anything else: the generic message.
func classify[T any](outcome Outcome, op operation[T], logger *zap.Logger) either.Either[ActionResponse, T] {
	logger = logger.With(zap.String("operation", op.name))

	switch o := outcome.(type) {
	case *Response:
		if o == nil {
			break
		}
		value, err := op.onSuccess(o)
		if err != nil {
			logger.Warn("unexpected response body",
				zap.Int("status", o.StatusCode),
				zap.Bool("json_content_type", consoleapi.IsContentTypeJSON(o.Header)),
				zap.Error(err),
			)
			return either.Left[ActionResponse, T](newFailure(FailureKindUnexpectedShape, op.genericFailure))
		}
		return either.Right[ActionResponse](value)
	case *HTTPFailure:
		if o == nil {
			break
		}
		failure := failureFromHTTP(o, op.genericFailure)
		logger.Debug("operation failed", zap.Int("status", o.StatusCode), zap.String("kind", string(failure.Kind)))
		return either.Left[ActionResponse, T](failure)
	case *TransportFailure:
		if o == nil {
			break
		}
		logger.Debug("operation failed", zap.String("kind", string(FailureKindTransport)), zap.Error(o.Err))
		if o.Message == "" {
			return either.Left[ActionResponse, T](newFailure(FailureKindTransport, op.genericFailure))
		}
		return either.Left[ActionResponse, T](newFailure(FailureKindTransport, o.Message))
	}

	logger.Warn("unrecognized call outcome", zap.Any("outcome", outcome))
	return either.Left[ActionResponse, T](newFailure(FailureKindGeneric, op.genericFailure))
}

func failureFromHTTP(failure *HTTPFailure, genericMessage string) ActionResponse {
	if failure.BodyErr != nil {
		return newFailure(FailureKindGeneric, genericMessage)
	}
	if message, ok := structuredErrorMessage(failure.Body); ok {
		return newFailure(FailureKindStructured, message)
	}
	if strings.TrimSpace(string(failure.Body)) != "" {
		return newFailure(FailureKindUnstructured, string(failure.Body))
	}
	return newFailure(FailureKindGeneric, genericMessage)
}

// structuredErrorMessage extracts "message\ncause" from a {"error":{"message":...,"cause":...}} body.
func structuredErrorMessage(body []byte) (string, bool) {
	var response consoleapi.ErrorResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", false
	}
	if response.Error == nil || response.Error.Message == "" {
		return "", false
	}
	if response.Error.Cause == "" {
		return response.Error.Message, true
	}
	return response.Error.Message + "\n" + response.Error.Cause, true
}
