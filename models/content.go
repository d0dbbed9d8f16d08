package models

// ContentCatalogue is the static content shown next to the diary: affirmations,
// meditations, community stories and the sample chat. It is served as-is.
type ContentCatalogue struct {
	Affirmations []string      `yaml:"affirmations" json:"affirmations"`
	Meditations  []Meditation  `yaml:"meditations" json:"meditations"`
	Resources    []Resource    `yaml:"resources" json:"resources"`
	Stories      []Story       `yaml:"stories" json:"stories"`
	Chat         []ChatMessage `yaml:"chat" json:"chat"`
	Indicators   []Indicator   `yaml:"indicators" json:"indicators"`
	WeeklyMood   []WeeklyPoint `yaml:"weekly_mood" json:"weekly_mood"`
}

type Meditation struct {
	Title   string `yaml:"title" json:"title"`
	Minutes int    `yaml:"minutes" json:"minutes"`
}

type Resource struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

type Story struct {
	Name  string `yaml:"name" json:"name"`
	Topic string `yaml:"topic" json:"topic"`
	Likes int    `yaml:"likes" json:"likes"`
}

// ChatMessage is a sample message of the (read-only) support chat.
type ChatMessage struct {
	ID      int    `yaml:"id" json:"id"`
	User    string `yaml:"user" json:"user"`
	Avatar  string `yaml:"avatar" json:"avatar"`
	Message string `yaml:"message" json:"message"`
	Time    string `yaml:"time" json:"time"`
}

// Indicator is a labelled percentage bar.
type Indicator struct {
	Label string `yaml:"label" json:"label"`
	Value int    `yaml:"value" json:"value"`
}

type WeeklyPoint struct {
	Day   string `yaml:"day" json:"day"`
	Value int    `yaml:"value" json:"value"`
}
