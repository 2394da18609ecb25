package console

import (
	"errors"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var testOperation = operation[int]{
	name:           "test",
	genericFailure: "An error occurred when testing cache foo",
	onSuccess: func(response *Response) (int, error) {
		return strconv.Atoi(string(response.Body))
	},
}

func TestClassify(t *testing.T) {
	type testcase struct {
		name    string
		outcome Outcome
		success int
		failure ActionResponse
	}
	generic := testOperation.genericFailure
	cases := []testcase{
		{
			name:    "success",
			outcome: &Response{StatusCode: 200, Body: []byte("42")},
			success: 42,
		},
		{
			name:    "success with undecodable body",
			outcome: &Response{StatusCode: 200, Body: []byte("forty two")},
			failure: ActionResponse{Message: generic, Kind: FailureKindUnexpectedShape},
		},
		{
			name:    "structured error",
			outcome: &HTTPFailure{StatusCode: 400, Body: []byte(`{"error":{"message":"M","cause":"C"}}`)},
			failure: ActionResponse{Message: "M\nC", Kind: FailureKindStructured},
		},
		{
			name:    "structured error without cause",
			outcome: &HTTPFailure{StatusCode: 400, Body: []byte(`{"error":{"message":"M"}}`)},
			failure: ActionResponse{Message: "M", Kind: FailureKindStructured},
		},
		{
			name:    "structured error without message",
			outcome: &HTTPFailure{StatusCode: 400, Body: []byte(`{"error":{"cause":"C"}}`)},
			failure: ActionResponse{Message: `{"error":{"cause":"C"}}`, Kind: FailureKindUnstructured},
		},
		{
			name:    "plain text error",
			outcome: &HTTPFailure{StatusCode: 500, Body: []byte("B")},
			failure: ActionResponse{Message: "B", Kind: FailureKindUnstructured},
		},
		{
			name:    "plain text error kept verbatim",
			outcome: &HTTPFailure{StatusCode: 404, Body: []byte(" cache not found\n")},
			failure: ActionResponse{Message: " cache not found\n", Kind: FailureKindUnstructured},
		},
		{
			name:    "empty error body",
			outcome: &HTTPFailure{StatusCode: 500},
			failure: ActionResponse{Message: generic, Kind: FailureKindGeneric},
		},
		{
			name:    "blank error body",
			outcome: &HTTPFailure{StatusCode: 503, Body: []byte(" \n\t")},
			failure: ActionResponse{Message: generic, Kind: FailureKindGeneric},
		},
		{
			name:    "unreadable error body",
			outcome: &HTTPFailure{StatusCode: 500, Body: []byte("partial"), BodyErr: errors.New("connection reset")},
			failure: ActionResponse{Message: generic, Kind: FailureKindGeneric},
		},
		{
			name:    "transport failure",
			outcome: &TransportFailure{Message: "Network down", Err: errors.New("Network down")},
			failure: ActionResponse{Message: "Network down", Kind: FailureKindTransport},
		},
		{
			name:    "transport failure without message",
			outcome: &TransportFailure{Err: errors.New("")},
			failure: ActionResponse{Message: generic, Kind: FailureKindTransport},
		},
		{
			name:    "nil outcome",
			outcome: nil,
			failure: ActionResponse{Message: generic, Kind: FailureKindGeneric},
		},
		{
			name:    "typed nil outcome",
			outcome: (*Response)(nil),
			failure: ActionResponse{Message: generic, Kind: FailureKindGeneric},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			result := classify(tc.outcome, testOperation, zap.NewNop())
			if tc.failure.Message == "" {
				value, ok := result.Right()
				require.True(t, ok)
				require.Equal(t, tc.success, value)
				return
			}
			failure, ok := result.Left()
			require.True(t, ok)
			require.Equal(t, tc.failure, failure)
			require.False(t, failure.Success)
			require.NotEmpty(t, failure.Message)
		})
	}
}

func TestClassify_ExactlyOneBranch(t *testing.T) {
	outcomes := []Outcome{
		&Response{StatusCode: 204},
		&Response{StatusCode: 200, Body: []byte("1")},
		&HTTPFailure{StatusCode: 400, Body: []byte(`{"error":{"message":"M","cause":"C"}}`)},
		&HTTPFailure{StatusCode: 500},
		&TransportFailure{Message: "down"},
		nil,
	}
	for _, outcome := range outcomes {
		result := classify(outcome, testOperation, zap.NewNop())
		require.NotEqual(t, result.IsLeft(), result.IsRight())
	}
}

func TestClassify_LogsUnexpectedBody(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	header := http.Header{"Content-Type": []string{"application/json; charset=utf-8"}}
	classify(&Response{StatusCode: 200, Header: header, Body: []byte("{}")}, testOperation, zap.New(core))

	entries := logs.FilterMessage("unexpected response body").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "test", fields["operation"])
	require.Equal(t, true, fields["json_content_type"])
}
