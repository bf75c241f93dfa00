package types

// Transcript is the ordered output of the speech recognizer. Segments are
// sorted by start time; downstream caption alignment relies on that order.
type Transcript struct {
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

// KeywordMoment is a model-selected highlight described by visual keywords
// and a short first-person narration script.
type KeywordMoment struct {
	Keywords []string `json:"keywords"`
	Script   string   `json:"script"`
}

// TimedMoment is a model-selected highlight described by a window on the
// source timeline. Start/End are seconds.
type TimedMoment struct {
	Title       string  `json:"title"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Description string  `json:"description,omitempty"`
}

// ClipRecord describes one uploaded clip cut from a video podcast.
type ClipRecord struct {
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	StartSec    float64 `json:"start_time"`
	EndSec      float64 `json:"end_time"`
}
