package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hoseok0727-sudo/subculture/enums"
)

func TestDetectEventType_Pickup(t *testing.T) {
	typ, score := DetectEventType("[KR] Pickup Recruitment Notice")
	assert.Equal(t, enums.EventTypePickup, typ)
	assert.Equal(t, 0.19, score)

	typ, _ = DetectEventType("한정 픽업 가챠 안내")
	assert.Equal(t, enums.EventTypePickup, typ)

	typ, _ = DetectEventType("期間限定ピックアップガチャ開催")
	assert.Equal(t, enums.EventTypePickup, typ)
}

func TestDetectEventType_PickupWinsOverGenericWording(t *testing.T) {
	// Pickup notices routinely mention "update" and "event" too. Priority
	// order decides.
	typ, _ := DetectEventType("Update: new pickup banner event starts soon")
	assert.Equal(t, enums.EventTypePickup, typ)
}

func TestDetectEventType_Maintenance(t *testing.T) {
	typ, _ := DetectEventType("정기점검 안내")
	assert.Equal(t, enums.EventTypeMaintenance, typ)

	typ, _ = DetectEventType("Scheduled server maintenance")
	assert.Equal(t, enums.EventTypeMaintenance, typ)
}

func TestDetectEventType_Update(t *testing.T) {
	typ, _ := DetectEventType("Ver. 2.4 패치 노트")
	assert.Equal(t, enums.EventTypeUpdate, typ)
}

func TestDetectEventType_Campaign(t *testing.T) {
	typ, _ := DetectEventType("로그인 보너스 캠페인")
	assert.Equal(t, enums.EventTypeCampaign, typ)
}

func TestDetectEventType_DefaultsToEvent(t *testing.T) {
	typ, score := DetectEventType("General Notice")
	assert.Equal(t, enums.EventTypeEvent, typ)
	assert.Equal(t, ScoreDefaultType, score)
}

func TestDetectEventType_KeywordAloneStaysBelowPublicThreshold(t *testing.T) {
	// 0.35 base + typeScore + 0.1 summary bonus must stay under 0.65 for
	// every rule; only a resolvable date range can push a notice public.
	for _, rule := range typeRules {
		assert.Less(t, 0.35+rule.score+0.1, 0.65, string(rule.eventType))
	}
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "ko", DetectLanguage("정기점검 안내 및 보상 지급"))
	assert.Equal(t, "ja", DetectLanguage("メンテナンスのお知らせです"))
	assert.Equal(t, "en", DetectLanguage("Scheduled maintenance announcement for all servers"))
	assert.Equal(t, "und", DetectLanguage("1234"))
}
