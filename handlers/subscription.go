package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/data/repos"
	"github.com/hoseok0727-sudo/subculture/models"
	"github.com/hoseok0727-sudo/subculture/scheduling"
)

type SubscriptionHandler struct {
	subs    *repos.SubscriptionRepo
	push    *repos.PushRepo
	planner *scheduling.Planner
}

func NewSubscriptionHandler(subs *repos.SubscriptionRepo, push *repos.PushRepo, planner *scheduling.Planner) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs, push: push, planner: planner}
}

// ReplaceSubscriptions swaps the caller's region subscriptions for the
// given set and rebuilds their pending schedules to match.
func (h *SubscriptionHandler) ReplaceSubscriptions(w http.ResponseWriter, r *http.Request) Result {
	user := r.Context().Value("user").(data.User)

	var req models.ReplaceSubscriptionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return BadRequest("Invalid request.")
	}

	regions := make([]string, 0, len(req.RegionIDs))
	seen := map[string]bool{}
	for _, region := range req.RegionIDs {
		region = strings.TrimSpace(region)
		if region == "" || seen[region] {
			continue
		}
		seen[region] = true
		regions = append(regions, region)
	}

	if err := h.subs.ReplaceForUser(user.ID, regions); err != nil {
		return InternalError(err, "replace subscriptions: ")
	}

	if err := h.planner.RebuildForUser(user.ID); err != nil {
		return InternalError(err, "replace subscriptions: rebuild schedules: ")
	}

	return Ok(models.GetSubscriptionsResponse{RegionIDs: regions})
}

func (h *SubscriptionHandler) GetSubscriptions(w http.ResponseWriter, r *http.Request) Result {
	user := r.Context().Value("user").(data.User)

	regions, err := h.subs.GetRegionsForUser(user.ID)
	if err != nil {
		return InternalError(err, "get subscriptions: ")
	}
	if regions == nil {
		regions = []string{}
	}

	return Ok(models.GetSubscriptionsResponse{RegionIDs: regions})
}

func (h *SubscriptionHandler) CreatePushSubscription(w http.ResponseWriter, r *http.Request) Result {
	user := r.Context().Value("user").(data.User)

	var req models.CreatePushSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return BadRequest("Invalid request.")
	}

	if req.Endpoint == "" || req.P256dh == "" || req.Auth == "" {
		return BadRequest("Endpoint, p256dh and auth are required.")
	}

	id, err := h.push.CreatePushSubscription(data.PushSubscription{
		UserID:   user.ID,
		Endpoint: req.Endpoint,
		P256dh:   req.P256dh,
		Auth:     req.Auth,
	})
	if err != nil {
		return InternalError(err, "create push subscription: ")
	}

	return Created(id)
}

func (h *SubscriptionHandler) DeletePushSubscription(w http.ResponseWriter, r *http.Request) Result {
	user := r.Context().Value("user").(data.User)

	idStr := r.PathValue("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return BadRequest("Invalid subscription ID.")
	}

	if err := h.push.DeletePushSubscription(id, user.ID); err != nil {
		return InternalError(err, "delete push subscription: ")
	}

	return Ok(nil)
}
