package models

import "fmt"

// Mood is one of the six moods an entry can be tagged with. The empty
// string means "not set".
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodCalm    Mood = "calm"
	MoodNeutral Mood = "neutral"
	MoodSad     Mood = "sad"
	MoodAnxious Mood = "anxious"
	MoodExcited Mood = "excited"
)

// Moods lists all valid moods in display order.
var Moods = []Mood{MoodHappy, MoodCalm, MoodNeutral, MoodSad, MoodAnxious, MoodExcited}

// MoodLabels maps each mood to its display label.
var MoodLabels = map[Mood]string{
	MoodHappy:   "Happy",
	MoodCalm:    "Calm",
	MoodNeutral: "Neutral",
	MoodSad:     "Sad",
	MoodAnxious: "Anxious",
	MoodExcited: "Excited",
}

// MoodEmojis maps each mood to the emoji shown in the mood selector.
var MoodEmojis = map[Mood]string{
	MoodHappy:   "😊",
	MoodCalm:    "😌",
	MoodNeutral: "😐",
	MoodSad:     "😢",
	MoodAnxious: "😰",
	MoodExcited: "🎉",
}

// Valid reports whether m is one of the six defined moods.
func (m Mood) Valid() bool {
	_, ok := MoodLabels[m]
	return ok
}

// ParseMood converts a string to a Mood. The empty string parses to the
// zero Mood ("not set"); anything else must be one of the six values.
func ParseMood(s string) (Mood, error) {
	if s == "" {
		return "", nil
	}
	m := Mood(s)
	if !m.Valid() {
		return "", fmt.Errorf("invalid mood %q", s)
	}
	return m, nil
}
