package models

import (
	"time"
	"unicode/utf8"

	"github.com/mysupport/mysupport/pkg"
)

// DiaryDateLayout formats entry dates as day and English month name, e.g. "05 March".
const DiaryDateLayout = "02 January"

// MaxDiaryTextLength caps entry text in runes.
const MaxDiaryTextLength = 5000

// DiaryEntry is a stored diary row.
type DiaryEntry struct {
	ID        int64
	UserID    int64
	Mood      Mood
	Text      string
	CreatedAt time.Time
}

// DiaryEntryView is the wire shape of an entry.
type DiaryEntryView struct {
	ID   int64  `json:"id"`
	Mood Mood   `json:"mood"`
	Text string `json:"text"`
	Date string `json:"date"`
}

// View converts the entry into its wire shape.
func (e *DiaryEntry) View() DiaryEntryView {
	return DiaryEntryView{
		ID:   e.ID,
		Mood: e.Mood,
		Text: e.Text,
		Date: FormatDiaryDate(e.CreatedAt),
	}
}

// FormatDiaryDate renders t with DiaryDateLayout.
func FormatDiaryDate(t time.Time) string {
	return t.Format(DiaryDateLayout)
}

// DiaryListResponse is the body of GET /api/diary.
type DiaryListResponse struct {
	Entries []DiaryEntryView `json:"entries"`
}

// CreateDiaryEntryRequest is the body of POST /api/diary.
type CreateDiaryEntryRequest struct {
	Mood Mood   `json:"mood"`
	Text string `json:"text"`
}

// Validate checks the mood is known and the text fits MaxDiaryTextLength.
// Empty text is accepted.
func (r *CreateDiaryEntryRequest) Validate() error {
	if !r.Mood.Valid() {
		return pkg.Localized(pkg.ErrBadRequest, "diary.invalidMood")
	}
	if utf8.RuneCountInString(r.Text) > MaxDiaryTextLength {
		return pkg.Localized(pkg.ErrBadRequest, "diary.textTooLong")
	}
	return nil
}

// CreateDiaryEntryResponse is returned with 201 after an entry is stored.
type CreateDiaryEntryResponse struct {
	Success bool   `json:"success"`
	ID      int64  `json:"id"`
	Date    string `json:"date"`
}
