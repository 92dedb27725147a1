package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/hoseok0727-sudo/subculture/data"
	"github.com/hoseok0727-sudo/subculture/data/repos"
	"github.com/hoseok0727-sudo/subculture/enums"
	"github.com/hoseok0727-sudo/subculture/models"
	"github.com/hoseok0727-sudo/subculture/scheduling"
)

type RuleHandler struct {
	repo    *repos.RuleRepo
	planner *scheduling.Planner
}

func NewRuleHandler(repo *repos.RuleRepo, planner *scheduling.Planner) *RuleHandler {
	return &RuleHandler{repo: repo, planner: planner}
}

func (h *RuleHandler) CreateRule(w http.ResponseWriter, r *http.Request) Result {
	user := r.Context().Value("user").(data.User)

	var req models.CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return BadRequest("Invalid request.")
	}

	scope := enums.RuleScope(strings.ToUpper(req.Scope))
	if scope != enums.ScopeGlobal && scope != enums.ScopeRegion {
		return BadRequest("Scope must be GLOBAL or REGION.")
	}
	if scope == enums.ScopeRegion && strings.TrimSpace(req.RegionID) == "" {
		return BadRequest("Region is required for REGION scope.")
	}

	eventType := enums.ParseEventType(req.EventType)
	if eventType == enums.EventTypeInvalid {
		return BadRequest("Invalid event type.")
	}

	trigger, ok := enums.ParseTriggerType(req.Trigger)
	if !ok {
		return BadRequest("Invalid trigger.")
	}

	channel, ok := enums.ParseChannel(req.Channel)
	if !ok {
		return BadRequest("Invalid channel.")
	}

	if req.OffsetMinutes < 0 || req.OffsetMinutes > 7*24*60 {
		return BadRequest("Offset must be between 0 minutes and 7 days.")
	}

	rule := data.NotificationRule{
		UserID:        user.ID,
		Scope:         scope,
		EventType:     eventType,
		Trigger:       trigger,
		OffsetMinutes: req.OffsetMinutes,
		Channel:       channel,
		Enabled:       true,
	}
	if scope == enums.ScopeRegion {
		rule.RegionID = sql.NullString{String: strings.TrimSpace(req.RegionID), Valid: true}
	}

	id, err := h.repo.CreateRule(rule)
	if err != nil {
		return InternalError(err, "create rule: ")
	}

	if err := h.planner.RebuildForUser(user.ID); err != nil {
		return InternalError(err, "create rule: rebuild schedules: ")
	}

	return Created(id)
}

func (h *RuleHandler) GetRules(w http.ResponseWriter, r *http.Request) Result {
	user := r.Context().Value("user").(data.User)

	rules, err := h.repo.GetRulesByUserID(user.ID)
	if err != nil {
		return InternalError(err, "get rules: ")
	}

	res := &models.GetRulesResponse{Rules: make([]models.Rule, 0)}
	for _, rule := range rules {
		m := models.Rule{
			ID:            rule.ID,
			UserID:        rule.UserID,
			Scope:         string(rule.Scope),
			EventType:     string(rule.EventType),
			Trigger:       string(rule.Trigger),
			OffsetMinutes: rule.OffsetMinutes,
			Channel:       string(rule.Channel),
			Enabled:       rule.Enabled,
		}
		if rule.RegionID.Valid {
			m.RegionID = rule.RegionID.String
		}
		res.Rules = append(res.Rules, m)
	}

	return Ok(res)
}

func (h *RuleHandler) DeleteRule(w http.ResponseWriter, r *http.Request) Result {
	user := r.Context().Value("user").(data.User)

	idStr := r.PathValue("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return BadRequest("Invalid rule ID.")
	}

	if err := h.repo.DeleteRule(id, user.ID); err != nil {
		return InternalError(err, "delete rule: ")
	}

	if err := h.planner.RebuildForUser(user.ID); err != nil {
		return InternalError(err, "delete rule: rebuild schedules: ")
	}

	return Ok(nil)
}
