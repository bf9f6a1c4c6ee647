package chat

import (
	"strings"
)

// DefaultMaxMessageLen is the chat length cap when none is configured.
const DefaultMaxMessageLen = 240

// Session is the surface the controller drives: the local actor's flag
// setters plus the outbound chat channel.
type Session interface {
	Dancing() bool
	SetDance(on bool)
	Party() bool
	SetParty(on bool)
	Sitting() bool
	SetSit(on bool)
	RequestSit()
	Wave()
	Laugh()
	SendMessage(text string) error
}

// Dispatch routes one line of chat input. The first token decides the
// command; anything unrecognized - including unknown slash input - degrades
// to a plain chat message rather than an error.
func Dispatch(s Session, input string) error {
	trimmed := strings.TrimSpace(input)
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return s.SendMessage(trimmed)
	}

	arg := ""
	if len(fields) > 1 {
		arg = strings.ToLower(fields[1])
	}

	switch strings.ToLower(fields[0]) {
	case "/dance":
		s.SetDance(triState(arg, s.Dancing()))
	case "/party":
		s.SetParty(triState(arg, s.Party()))
	case "/sit":
		// Standing up is immediate; sitting down is a request that may
		// first walk the actor to a seat.
		if s.Sitting() {
			s.SetSit(false)
		} else {
			s.RequestSit()
		}
	case "/wave":
		s.Wave()
	case "/laugh":
		s.Laugh()
	default:
		return s.SendMessage(trimmed)
	}
	return nil
}

// triState maps an optional on/off argument: "on" -> true, "off" -> false,
// anything else toggles the current value.
func triState(arg string, current bool) bool {
	switch arg {
	case "on":
		return true
	case "off":
		return false
	default:
		return !current
	}
}

// ValidateMessage applies the outbound chat contract: non-empty after
// trimming and within the length cap. maxLen <= 0 uses the default.
func ValidateMessage(text string, maxLen int) error {
	if maxLen <= 0 {
		maxLen = DefaultMaxMessageLen
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return NewRejectedError("message is empty")
	}
	if len(trimmed) > maxLen {
		return NewRejectedError("message exceeds %d characters", maxLen)
	}
	return nil
}
