package model

import "time"

// Article は参照用の記事を表す。
type Article struct {
	ID          int64
	Title       string
	Category    string
	ReadingTime string
	CreatedAt   time.Time
}
