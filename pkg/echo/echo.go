// Package echo is a small target server for trying postbench locally and for
// the tests of the runner.
package echo

import (
	"io"
	"net/http"
	"sync/atomic"
)

// Handler answers every request with Status, or with FailStatus for every
// second request when FailOdd is set. The request body is written back when
// Echo is set.
type Handler struct {
	Status     int
	FailOdd    bool
	FailStatus int
	Echo       bool

	requests atomic.Int64
	received atomic.Int64
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()
	n := h.requests.Add(1)
	body, _ := io.ReadAll(req.Body)
	h.received.Add(int64(len(body)))

	status := h.Status
	if status == 0 {
		status = http.StatusOK
	}
	if h.FailOdd && n%2 == 0 {
		status = h.FailStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
	}
	w.WriteHeader(status)
	if h.Echo {
		w.Write(body)
	}
}

// Requests is the number of requests served so far.
func (h *Handler) Requests() int64 {
	return h.requests.Load()
}

// BytesReceived counts request body bytes.
func (h *Handler) BytesReceived() int64 {
	return h.received.Load()
}
