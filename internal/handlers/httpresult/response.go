// Package httpresult is the transport-agnostic response shape every
// handler task returns; internal/httpapi adapts it onto net/http.
// Keeping handlers independent of http.ResponseWriter is what lets them
// be unit-tested without a real HTTP round trip.
package httpresult

import (
	"encoding/json"

	"github.com/sebas/cxgateway/internal/cxerrors"
)

// Response is a status code, a content type, and a raw body.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// JSON marshals v and wraps it in a 200 (or the given status) response.
func JSON(status int, v any) Response {
	body, err := json.Marshal(v)
	if err != nil {
		return Response{Status: 500, ContentType: "application/json", Body: []byte(`{"error":"encode response"}`)}
	}
	return Response{Status: status, ContentType: "application/json", Body: body}
}

// XML wraps a pre-rendered XML document (e.g. from internal/ims) in a
// response.
func XML(status int, body string) Response {
	return Response{Status: status, ContentType: "application/xml", Body: []byte(body)}
}

// Text wraps a plain-text body.
func Text(status int, body string) Response {
	return Response{Status: status, ContentType: "text/plain", Body: []byte(body)}
}

// errorBody is the JSON shape returned for any non-2xx classified error.
type errorBody struct {
	Error string `json:"error"`
}

// FromError renders a cxerrors.Error (or a wrapping error) at its
// taxonomy's HTTP status.
func FromError(err *cxerrors.Error) Response {
	return JSON(err.Code.HTTPStatus(), errorBody{Error: err.Error()})
}

// Status is a bare-status response with no body, used for e.g. 405.
func Status(status int) Response {
	return Response{Status: status, ContentType: "text/plain", Body: nil}
}
