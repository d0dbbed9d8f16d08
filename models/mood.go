package models

import "fmt"

// Mood is the closed set of moods a diary entry can carry.
type Mood string

const (
	MoodHappy    Mood = "happy"
	MoodCalm     Mood = "calm"
	MoodAnxious  Mood = "anxious"
	MoodSad      Mood = "sad"
	MoodStressed Mood = "stressed"
)

// DefaultMood is preselected in a fresh diary form.
const DefaultMood = MoodCalm

// AllMoods lists every mood in display order.
var AllMoods = []Mood{MoodHappy, MoodCalm, MoodAnxious, MoodSad, MoodStressed}

// Descriptor is the presentation of a mood. LabelKey is an i18n key.
type Descriptor struct {
	Icon     string `json:"icon" yaml:"icon"`
	Color    string `json:"color" yaml:"color"`
	LabelKey string `json:"label_key" yaml:"label_key"`
	Known    bool   `json:"known" yaml:"known"`
}

// Descriptor returns the presentation of m. Unknown moods get a neutral
// descriptor with Known == false instead of an error.
func (m Mood) Descriptor() Descriptor {
	switch m {
	case MoodHappy:
		return Descriptor{Icon: "Smile", Color: "success", LabelKey: "mood.happy", Known: true}
	case MoodCalm:
		return Descriptor{Icon: "CloudRain", Color: "accent", LabelKey: "mood.calm", Known: true}
	case MoodAnxious:
		return Descriptor{Icon: "AlertCircle", Color: "primary", LabelKey: "mood.anxious", Known: true}
	case MoodSad:
		return Descriptor{Icon: "Frown", Color: "secondary", LabelKey: "mood.sad", Known: true}
	case MoodStressed:
		return Descriptor{Icon: "Zap", Color: "destructive", LabelKey: "mood.stressed", Known: true}
	default:
		return Descriptor{Icon: "Circle", Color: "muted", LabelKey: "mood.unknown", Known: false}
	}
}

// Valid reports whether m is one of AllMoods.
func (m Mood) Valid() bool {
	return m.Descriptor().Known
}

// ParseMood converts s into a Mood, rejecting values outside AllMoods.
func ParseMood(s string) (Mood, error) {
	m := Mood(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown mood %q", s)
	}
	return m, nil
}
