package handlers

import (
	"net/http"
	"strconv"

	"github.com/hoseok0727-sudo/subculture/dispatch"
	"github.com/hoseok0727-sudo/subculture/models"
)

type DispatchHandler struct {
	dispatcher *dispatch.Dispatcher
}

func NewDispatchHandler(dispatcher *dispatch.Dispatcher) *DispatchHandler {
	return &DispatchHandler{dispatcher}
}

// RunDispatch drains due schedules once, the same work the background
// driver does on its tick. The limit is clamped, never rejected.
func (h *DispatchHandler) RunDispatch(w http.ResponseWriter, r *http.Request) Result {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return BadRequest("Invalid limit.")
		}
		limit = n
	}
	limit = dispatch.ClampLimit(limit)

	summary, err := h.dispatcher.DispatchDue(r.Context(), limit)
	if err != nil {
		return InternalError(err, "run dispatch: ")
	}

	return Ok(models.DispatchRunResponse{
		Picked: summary.Picked,
		Sent:   summary.Sent,
		Failed: summary.Failed,
	})
}
