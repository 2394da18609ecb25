package console

// FailureKind records which kind of failure produced an [ActionResponse].
type FailureKind string

const (
	// The request never reached the server or no response was received.
	FailureKindTransport FailureKind = "transport"
	// The server responded with a non successful status and a structured error body.
	FailureKindStructured FailureKind = "structured"
	// The server responded with a non successful status and a plain text body.
	FailureKindUnstructured FailureKind = "unstructured"
	// The server responded successfully but the body could not be decoded.
	FailureKindUnexpectedShape FailureKind = "unexpected-shape"
	// No usable detail was available, the operation's generic message is reported.
	FailureKindGeneric FailureKind = "generic"
)

// ActionResponse is the user presentable outcome of an operation.
// All failing operations report an ActionResponse with Success set to false and a non empty Message.
// Command operations also report their success with an ActionResponse.
type ActionResponse struct {
	// Human readable message, never empty.
	Message string `json:"message" yaml:"message"`
	Success bool   `json:"success" yaml:"success"`
	// Kind is set on failures only. It is meant for logs and metrics and is not serialized.
	Kind FailureKind `json:"-" yaml:"-"`
}

func newFailure(kind FailureKind, message string) ActionResponse {
	return ActionResponse{Message: message, Kind: kind}
}

func newSuccess(message string) ActionResponse {
	return ActionResponse{Message: message, Success: true}
}
