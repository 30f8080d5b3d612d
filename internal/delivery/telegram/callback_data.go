package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
)

// Callback action constants.
const (
	actionLesson = "lesson"
	actionCram   = "cram"
	actionShow   = "show"
	actionHint   = "hint"
	actionRate   = "rate"
	actionAgain  = "again"
	actionDone   = "done"
)

var errBadCallback = errors.New("bad callback data")

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// param returns the i-th parameter or an error when it is missing.
func (cd callbackData) param(i int) (string, error) {
	if i >= len(cd.Params) || cd.Params[i] == "" {
		return "", fmt.Errorf("%w: %q", errBadCallback, cd.Raw)
	}
	return cd.Params[i], nil
}

// intParam parses the i-th parameter as an integer.
func (cd callbackData) intParam(i int) (int, error) {
	s, err := cd.param(i)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errBadCallback, cd.Raw)
	}
	return n, nil
}

// position parses the card position a show, hint or rate button was built for.
func (cd callbackData) position() (int, error) {
	return cd.intParam(1)
}

// quality parses the rating of a rate callback.
func (cd callbackData) quality() (entities.Quality, error) {
	q, err := cd.intParam(2)
	if err != nil {
		return 0, err
	}
	return entities.Quality(q), nil
}

// buildLessonCallback builds callback data for reviewing a lesson's due cards.
func buildLessonCallback(lessonID string) string {
	return callbackData{Action: actionLesson, Params: []string{lessonID}}.encode()
}

// buildCramCallback builds callback data for reviewing every card of a lesson.
func buildCramCallback(lessonID string) string {
	return callbackData{Action: actionCram, Params: []string{lessonID}}.encode()
}

func buildShowCallback(sessionID string, position int) string {
	return callbackData{Action: actionShow, Params: []string{sessionID, strconv.Itoa(position)}}.encode()
}

func buildHintCallback(sessionID string, position int) string {
	return callbackData{Action: actionHint, Params: []string{sessionID, strconv.Itoa(position)}}.encode()
}

// buildRateCallback builds callback data for rating the card at position.
func buildRateCallback(sessionID string, position int, q entities.Quality) string {
	return callbackData{
		Action: actionRate,
		Params: []string{sessionID, strconv.Itoa(position), strconv.Itoa(int(q))},
	}.encode()
}

func buildAgainCallback(sessionID string) string {
	return callbackData{Action: actionAgain, Params: []string{sessionID}}.encode()
}

func buildDoneCallback(sessionID string) string {
	return callbackData{Action: actionDone, Params: []string{sessionID}}.encode()
}
