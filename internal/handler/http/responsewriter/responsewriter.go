// Package responsewriter records what a handler wrote so access logs, spans
// and HTTP metrics can report it after the fact.
package responsewriter

import "net/http"

// Recorder wraps an http.ResponseWriter. The zero status is reported as 200,
// matching what net/http sends when a handler never calls WriteHeader.
type Recorder struct {
	http.ResponseWriter
	status int
	size   int
}

func Wrap(w http.ResponseWriter) *Recorder {
	return &Recorder{ResponseWriter: w}
}

// WriteHeader forwards only the first call.
func (r *Recorder) WriteHeader(code int) {
	if r.status != 0 {
		return
	}
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *Recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// StatusCode is the status sent to the client.
func (r *Recorder) StatusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// BytesWritten is the response body size.
func (r *Recorder) BytesWritten() int { return r.size }

// Written reports whether the header has gone out.
func (r *Recorder) Written() bool { return r.status != 0 }

// Unwrap lets http.ResponseController reach Flush and deadlines.
func (r *Recorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
