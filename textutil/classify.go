package textutil

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"

	"github.com/hoseok0727-sudo/subculture/enums"
)

// Classification is a fixed-priority keyword scan. Pickup/gacha wording is
// the most business-critical signal and must not be shadowed by the generic
// "event" or "update" vocabulary that usually appears in the same notice,
// so the pickup rule is evaluated first and the first hit wins.
//
// The per-type scores are tuned so that a keyword hit alone never clears
// the PUBLIC confidence threshold: a notice needs a resolvable date range
// on top of the keyword to go public without review.
var typeRules = []struct {
	eventType enums.EventType
	score     float64
	keywords  []string
}{
	{enums.EventTypePickup, 0.19, []string{
		"pickup", "pick up", "픽업", "ピックアップ", "gacha", "가챠", "ガチャ",
		"banner", "recruit", "모집", "募集", "기원", "祈願", "summon", "소환", "限定",
	}},
	{enums.EventTypeMaintenance, 0.18, []string{
		"maintenance", "점검", "정기점검", "임시점검", "メンテナンス", "メンテ",
		"server down", "emergency", "維護", "점검 안내",
	}},
	{enums.EventTypeUpdate, 0.16, []string{
		"update", "업데이트", "アップデート", "patch", "패치", "パッチ",
		"ver.", "version", "버전", "신규 캐릭터", "新キャラ",
	}},
	{enums.EventTypeCampaign, 0.14, []string{
		"campaign", "캠페인", "キャンペーン", "login bonus", "로그인 보너스",
		"ログインボーナス", "출석", "giveaway", "coupon", "쿠폰",
	}},
}

// ScoreDefaultType is the score for text with no keyword hits at all.
const ScoreDefaultType = 0.05

// DetectEventType classifies notice text by keyword membership in fixed
// priority order. No hit defaults to EVENT with a low score.
func DetectEventType(text string) (enums.EventType, float64) {
	lower := strings.ToLower(text)

	for _, rule := range typeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.eventType, rule.score
			}
		}
	}

	return enums.EventTypeEvent, ScoreDefaultType
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// DetectLanguage returns the lowercase ISO 639-1 code of the dominant
// language in text, or "und" when detection is not confident enough. Only
// the languages our operators publish in are candidates, which keeps the
// detector small and accurate on short notice titles.
func DetectLanguage(text string) string {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(lingua.English, lingua.Korean, lingua.Japanese, lingua.Chinese).
			WithMinimumRelativeDistance(0.25).
			Build()
	})

	lang, ok := detector.DetectLanguageOf(text)
	if !ok {
		return "und"
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
