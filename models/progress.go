package models

import "time"

// ProgressWindow is the span covered by Progress.Moods.
const ProgressWindow = 7 * 24 * time.Hour

// Progress summarizes a user's diary activity.
type Progress struct {
	DiaryCount int          `json:"diary_count"`
	Moods      map[Mood]int `json:"moods"`
	UpdatedAt  *time.Time   `json:"updated_at"`
}
