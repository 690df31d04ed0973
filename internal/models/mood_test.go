package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMood(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Mood
		wantErr bool
	}{
		{name: "happy", input: "happy", want: MoodHappy},
		{name: "calm", input: "calm", want: MoodCalm},
		{name: "neutral", input: "neutral", want: MoodNeutral},
		{name: "sad", input: "sad", want: MoodSad},
		{name: "anxious", input: "anxious", want: MoodAnxious},
		{name: "excited", input: "excited", want: MoodExcited},
		{name: "empty means not set", input: "", want: ""},
		{name: "unknown mood", input: "melancholy", wantErr: true},
		{name: "case sensitive", input: "Happy", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMood(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMoodMetadataCoversAllMoods(t *testing.T) {
	assert.Len(t, Moods, 6)
	for _, m := range Moods {
		assert.True(t, m.Valid())
		assert.NotEmpty(t, MoodLabels[m])
		assert.NotEmpty(t, MoodEmojis[m])
	}
	assert.False(t, Mood("").Valid())
}
