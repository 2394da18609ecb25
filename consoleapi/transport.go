package consoleapi

import (
	"mime"
	"net/http"
)

const (
	HeaderAccept      = "Accept"
	HeaderContentType = "Content-Type"
	HeaderRequestID   = "X-Request-Id"
	HeaderUserAgent   = "User-Agent"

	ContentTypeJSON = "application/json"
	// Accept hint sent with search requests.
	AcceptSearch = "application/json;q=0.8"
)

// Query parameters understood by the REST API.
const (
	QueryAction     = "action"
	QueryMode       = "mode"
	QueryQuery      = "query"
	QueryMaxResults = "max_results"
	QueryOffset     = "offset"
)

// Values of the action query parameter.
const (
	ActionSearch       = "search"
	ActionClear        = "clear"
	ActionMassIndex    = "mass-index"
	ActionUpdateSchema = "update-schema"

	ModeAsync = "async"
)

// IsContentTypeJSON returns true if header contains a parsable Content-Type header with media type of application/json.
func IsContentTypeJSON(header http.Header) bool {
	contentType := header.Get(HeaderContentType)
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == ContentTypeJSON
}
