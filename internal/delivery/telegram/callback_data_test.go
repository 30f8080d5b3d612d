package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
)

func TestCallbackRoundTrip(t *testing.T) {
	tests := []struct {
		data   string
		action string
		params []string
	}{
		{buildLessonCallback("go-basics"), actionLesson, []string{"go-basics"}},
		{buildCramCallback("go-basics"), actionCram, []string{"go-basics"}},
		{buildShowCallback("sid", 2), actionShow, []string{"sid", "2"}},
		{buildHintCallback("sid", 0), actionHint, []string{"sid", "0"}},
		{buildRateCallback("sid", 3, entities.QualityGood), actionRate, []string{"sid", "3", "4"}},
		{buildAgainCallback("sid"), actionAgain, []string{"sid"}},
		{buildDoneCallback("sid"), actionDone, []string{"sid"}},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			cd := decodeCallback(tt.data)
			assert.Equal(t, tt.action, cd.Action)
			assert.Equal(t, tt.params, cd.Params)
			assert.Equal(t, tt.data, cd.encode())
			assert.LessOrEqual(t, len(tt.data), 64)
		})
	}
}

func TestCallbackQuality(t *testing.T) {
	cd := decodeCallback("rate:sid:7:5")
	q, err := cd.quality()
	require.NoError(t, err)
	assert.Equal(t, entities.QualityPerfect, q)

	pos, err := cd.position()
	require.NoError(t, err)
	assert.Equal(t, 7, pos)

	for _, raw := range []string{"rate:sid:0", "rate:sid:0:x", "rate", "rate:sid:0:", "rate:sid:5"} {
		_, err := decodeCallback(raw).quality()
		assert.ErrorIs(t, err, errBadCallback, raw)
	}

	for _, raw := range []string{"show:sid", "show:sid:x", "show:sid:"} {
		_, err := decodeCallback(raw).position()
		assert.ErrorIs(t, err, errBadCallback, raw)
	}
}

func TestCallbackParam(t *testing.T) {
	cd := decodeCallback("show")
	_, err := cd.param(0)
	assert.ErrorIs(t, err, errBadCallback)

	sid, err := decodeCallback("show:abc").param(0)
	require.NoError(t, err)
	assert.Equal(t, "abc", sid)
}
