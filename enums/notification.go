package enums

type TriggerType string

const (
	TriggerOnStart     TriggerType = "ON_START"
	TriggerOnEnd       TriggerType = "ON_END"
	TriggerBeforeStart TriggerType = "BEFORE_START"
	TriggerBeforeEnd   TriggerType = "BEFORE_END"
	TriggerOnPublish   TriggerType = "ON_PUBLISH"
)

func ParseTriggerType(s string) (TriggerType, bool) {
	switch TriggerType(s) {
	case TriggerOnStart, TriggerOnEnd, TriggerBeforeStart, TriggerBeforeEnd, TriggerOnPublish:
		return TriggerType(s), true
	}
	return "", false
}

type RuleScope string

const (
	ScopeGlobal RuleScope = "GLOBAL"
	ScopeRegion RuleScope = "REGION"
)

type Channel string

const (
	ChannelWebPush Channel = "WEBPUSH"
	ChannelEmail   Channel = "EMAIL"
	ChannelDiscord Channel = "DISCORD"
)

func ParseChannel(s string) (Channel, bool) {
	switch Channel(s) {
	case ChannelWebPush, ChannelEmail, ChannelDiscord:
		return Channel(s), true
	}
	return "", false
}

type ScheduleStatus string

const (
	SchedulePending    ScheduleStatus = "PENDING"
	ScheduleProcessing ScheduleStatus = "PROCESSING"
	ScheduleSent       ScheduleStatus = "SENT"
	ScheduleFailed     ScheduleStatus = "FAILED"
	ScheduleCanceled   ScheduleStatus = "CANCELED"
)

type DeliveryResult string

const (
	DeliverySuccess DeliveryResult = "SUCCESS"
	DeliveryFailed  DeliveryResult = "FAILED"
)
