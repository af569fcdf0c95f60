package session

import "github.com/hitoshi/cycle/internal/model"

// GoalOption は目的選択画面の1項目。
type GoalOption struct {
	Tag   model.GoalTag
	Label string
}

var goalLabels = map[model.GoalTag]string{
	model.GoalPregnant:          "妊娠したい",
	model.GoalTrackingPregnancy: "妊娠経過を記録したい",
	model.GoalTrackCycle:        "周期を記録したい",
	model.GoalUnderstandBody:    "自分の体をもっと知りたい",
	model.GoalDischarge:         "おりものについて知りたい",
	model.GoalSexLife:           "性生活を充実させたい",
	model.GoalWeight:            "体重を増やしたい・減らしたい",
	model.GoalContraception:     "避妊について知りたい",
}

// GoalOptions は目的選択画面に表示する8項目を表示順で返す。
func GoalOptions() []GoalOption {
	opts := make([]GoalOption, len(model.AllGoalTags))
	for i, tag := range model.AllGoalTags {
		opts[i] = GoalOption{Tag: tag, Label: goalLabels[tag]}
	}
	return opts
}

// GoalLabel は目的タグの表示名を返す。未知のタグはそのまま返す。
func GoalLabel(tag model.GoalTag) string {
	if l, ok := goalLabels[tag]; ok {
		return l
	}
	return string(tag)
}

// BirthYearOptions は生まれ年の選択肢を新しい年から順に返す（2010〜1961の50件）。
func BirthYearOptions() []int {
	years := make([]int, 0, model.MaxBirthYear-model.MinBirthYear+1)
	for y := model.MaxBirthYear; y >= model.MinBirthYear; y-- {
		years = append(years, y)
	}
	return years
}

// Article は記事タブに表示する1件。
type Article struct {
	Title       string
	Category    string
	ReadingTime string
}

// FallbackArticles は記事が取得できない場合に表示する固定の3件を返す。
func FallbackArticles() []Article {
	return []Article{
		{Title: "生理周期の正しい記録方法", Category: "健康", ReadingTime: "5分"},
		{Title: "排卵のサインを知ろう", Category: "妊活", ReadingTime: "7分"},
		{Title: "食事と月経周期の関係", Category: "栄養", ReadingTime: "4分"},
	}
}

// NoteChoice は体調記録の選択肢。
type NoteChoice struct {
	Value string
	Label string
}

var noteChoices = map[model.NoteField][]NoteChoice{
	model.NoteFieldMood: {
		{Value: "good", Label: "良い"},
		{Value: "calm", Label: "おだやか"},
		{Value: "irritable", Label: "イライラ"},
		{Value: "low", Label: "落ち込み"},
	},
	model.NoteFieldEnergyLevel: {
		{Value: "high", Label: "元気"},
		{Value: "normal", Label: "ふつう"},
		{Value: "low", Label: "だるい"},
	},
	model.NoteFieldSleepQuality: {
		{Value: "deep", Label: "ぐっすり"},
		{Value: "normal", Label: "ふつう"},
		{Value: "poor", Label: "眠りが浅い"},
	},
}

// NoteFields は今日タブに並べる記録項目を表示順で返す。
func NoteFields() []model.NoteField {
	return []model.NoteField{model.NoteFieldMood, model.NoteFieldEnergyLevel, model.NoteFieldSleepQuality}
}

// NoteFieldLabel は記録項目の表示名を返す。
func NoteFieldLabel(f model.NoteField) string {
	switch f {
	case model.NoteFieldMood:
		return "気分"
	case model.NoteFieldEnergyLevel:
		return "エネルギー"
	case model.NoteFieldSleepQuality:
		return "睡眠"
	}
	return string(f)
}

// NoteChoices は記録項目ごとの選択肢を返す。
func NoteChoices(f model.NoteField) []NoteChoice {
	return append([]NoteChoice(nil), noteChoices[f]...)
}

// NoteValueLabel は記録値の表示名を返す。選択肢にない値はそのまま返す。
func NoteValueLabel(f model.NoteField, value string) string {
	for _, c := range noteChoices[f] {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}
