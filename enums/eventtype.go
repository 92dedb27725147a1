package enums

type EventType string

const (
	EventTypeInvalid EventType = ""

	EventTypePickup      EventType = "PICKUP"
	EventTypeUpdate      EventType = "UPDATE"
	EventTypeMaintenance EventType = "MAINTENANCE"
	EventTypeEvent       EventType = "EVENT"
	EventTypeCampaign    EventType = "CAMPAIGN"
)

func ParseEventType(s string) EventType {
	switch EventType(s) {
	case EventTypePickup, EventTypeUpdate, EventTypeMaintenance, EventTypeEvent, EventTypeCampaign:
		return EventType(s)
	}
	return EventTypeInvalid
}

type Visibility string

const (
	// VisibilityPublic events are served to users and fanned out into
	// notification schedules.
	VisibilityPublic Visibility = "PUBLIC"

	// VisibilityNeedReview events were parsed with low confidence and wait
	// for a reviewer before becoming public.
	VisibilityNeedReview Visibility = "NEED_REVIEW"

	VisibilityHidden Visibility = "HIDDEN"
)
