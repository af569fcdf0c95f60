package model

import "time"

// DateLayout はAPIで日付をやり取りする際のフォーマット（YYYY-MM-DD）。
const DateLayout = "2006-01-02"

// Cycle は1回分の周期開始日の記録を表す。
// CycleLength は次の周期開始日までの日数で、最新の周期では未確定（nil）となる。
type Cycle struct {
	ID          int64
	UserID      int64
	StartDate   time.Time
	CycleLength *int
	CreatedAt   time.Time
}

// NoteField はデイリーノートで1回の保存につき設定される項目を表す。
type NoteField string

const (
	NoteFieldMood         NoteField = "mood"
	NoteFieldEnergyLevel  NoteField = "energy_level"
	NoteFieldSleepQuality NoteField = "sleep_quality"
)

// Valid は定義済みの項目かどうかを返す。
func (f NoteField) Valid() bool {
	switch f {
	case NoteFieldMood, NoteFieldEnergyLevel, NoteFieldSleepQuality:
		return true
	}
	return false
}

// MaxNoteValueLength は記録値1件あたりの最大文字数（rune数）。
const MaxNoteValueLength = 64

// DailyNote はある日の体調記録を表す。
// 各項目はnilの場合「未記録」を意味する。
type DailyNote struct {
	ID           int64
	UserID       int64
	NoteDate     time.Time
	Mood         *string
	EnergyLevel  *string
	SleepQuality *string
}

// Empty はいずれの項目も設定されていない場合にtrueを返す。
func (n *DailyNote) Empty() bool {
	return n.Mood == nil && n.EnergyLevel == nil && n.SleepQuality == nil
}
