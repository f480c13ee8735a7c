package status

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/carson-networks/ledger-server/internal/logging"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Pinger Pinger
}

// NewHandler returns a status handler. A nil pinger reports healthy unconditionally.
func NewHandler(p Pinger) Handler {
	return Handler{Pinger: p}
}

func (h *Handler) Handler(w http.ResponseWriter, req *http.Request, logData *logging.LogData) error {
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusBadRequest)
		return errors.New("status: method not GET")
	}

	if h.Pinger != nil {
		stop := logData.AddTiming("ping")
		err := h.Pinger.Ping(req.Context())
		stop()
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return fmt.Errorf("status: ping storage: %w", err)
		}
	}

	w.WriteHeader(http.StatusOK)
	return nil
}
