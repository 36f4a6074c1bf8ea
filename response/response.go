package response

import (
	"encoding/json"
	"net/http"

	"github.com/go-kyugo/productapi/validation"
)

// Response is the outcome of a write operation. It is returned to clients
// as-is and never persisted.
type Response struct {
	Flag    bool   `json:"flag"`
	Message string `json:"message"`
}

func Ok(message string) Response {
	return Response{Flag: true, Message: message}
}

func Fail(message string) Response {
	return Response{Flag: false, Message: message}
}

type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorBody defines the structure inside the top-level `error` key.
type ErrorBody struct {
	Type    string        `json:"type"`
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Fields  []ErrorDetail `json:"fields,omitempty"`
}

type ErrorEnvelope struct {
	Status string    `json:"status"`
	Code   int       `json:"code"`
	Error  ErrorBody `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// convertDetails turns the supported detail types into []ErrorDetail.
func convertDetails(details interface{}) []ErrorDetail {
	switch d := details.(type) {
	case nil:
		return nil
	case []ErrorDetail:
		return d
	case []validation.FieldError:
		out := make([]ErrorDetail, 0, len(d))
		for _, fe := range d {
			out = append(out, ErrorDetail{Field: fe.Field, Code: fe.Code, Message: fe.Message})
		}
		return out
	}
	return nil
}

// Error builds a consistent error envelope. When `details` are provided they
// are included under `error.fields`; otherwise that key is omitted.
func Error(w http.ResponseWriter, code int, _type, _code, message string, details interface{}) {
	eb := ErrorBody{Type: _type, Code: _code, Message: message}
	if d := convertDetails(details); len(d) > 0 {
		eb.Fields = d
	}
	JSON(w, code, ErrorEnvelope{Status: "error", Code: code, Error: eb})
}
