// Package model はドメインモデルを定義する。
package model

import "time"

// UsageMode はアプリの利用形態を表す。
type UsageMode string

const (
	// UsageModeSelf は本人が自分の周期を記録する利用形態。
	UsageModeSelf UsageMode = "self"
	// UsageModePartner はパートナーと一緒に利用する形態。
	UsageModePartner UsageMode = "partner"
)

// Valid は定義済みの利用形態かどうかを返す。
func (m UsageMode) Valid() bool {
	return m == UsageModeSelf || m == UsageModePartner
}

// 生まれ年として受け付ける範囲（両端を含む）。
const (
	MinBirthYear = 1961
	MaxBirthYear = 2010
)

// ValidBirthYear は生まれ年が受付範囲内かどうかを返す。
func ValidBirthYear(year int) bool {
	return year >= MinBirthYear && year <= MaxBirthYear
}

// GoalTag はユーザーがアプリを使う目的を表す。固定の8値のみ。
type GoalTag string

const (
	GoalPregnant          GoalTag = "pregnant"
	GoalTrackingPregnancy GoalTag = "tracking-pregnancy"
	GoalTrackCycle        GoalTag = "track-cycle"
	GoalUnderstandBody    GoalTag = "understand-body"
	GoalDischarge         GoalTag = "discharge"
	GoalSexLife           GoalTag = "sex-life"
	GoalWeight            GoalTag = "weight"
	GoalContraception     GoalTag = "contraception"
)

// AllGoalTags は画面の表示順に並べた全目的タグ。
var AllGoalTags = []GoalTag{
	GoalPregnant,
	GoalTrackingPregnancy,
	GoalTrackCycle,
	GoalUnderstandBody,
	GoalDischarge,
	GoalSexLife,
	GoalWeight,
	GoalContraception,
}

// Valid は定義済みの目的タグかどうかを返す。
func (g GoalTag) Valid() bool {
	for _, t := range AllGoalTags {
		if g == t {
			return true
		}
	}
	return false
}

// User はサービス利用ユーザー（プロフィール）を表す。
// 認証情報は持たず、クライアントはuser_idのみを保持する。
type User struct {
	ID          int64
	BirthYear   int
	UsageMode   UsageMode
	PartnerCode string
	Goals       []GoalTag
	CreatedAt   time.Time
}
