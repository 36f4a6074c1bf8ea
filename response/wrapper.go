package response

import (
	"net/http"
)

// InternalErrorMessage is returned for any unhandled handler error.
const InternalErrorMessage = "Internal server error occurred. Kindly try again"

// Writer wraps http.ResponseWriter and *http.Request (kept as raw on need).
type Writer struct {
	W http.ResponseWriter
	R *http.Request
}

// NewWriter creates a Writer wrapper.
func NewWriter(w http.ResponseWriter, r *http.Request) *Writer {
	return &Writer{W: w, R: r}
}

// JSON writes a JSON response with the given status.
func (rw *Writer) JSON(status int, v interface{}) {
	JSON(rw.W, status, v)
}

// Result writes a write-path outcome: 200 when the flag is set, 400 otherwise.
func (rw *Writer) Result(res Response) {
	if res.Flag {
		rw.JSON(http.StatusOK, res)
		return
	}
	rw.JSON(http.StatusBadRequest, res)
}

func (rw *Writer) NotFound(message string) {
	rw.JSON(http.StatusNotFound, Fail(message))
}

// InternalError writes the generic 500 body. Error details stay in the logs.
func (rw *Writer) InternalError(message string) {
	if message == "" {
		message = InternalErrorMessage
	}
	rw.JSON(http.StatusInternalServerError, Fail(message))
}
