package board

// Kind identifies what happened.
type Kind string

const (
	KindPosted      Kind = "posted"
	KindRejected    Kind = "rejected"
	KindReplyTarget Kind = "reply_target"
	KindCleared     Kind = "cleared"
	KindExported    Kind = "exported"
	KindRefreshed   Kind = "refreshed"
	KindSynced      Kind = "synced"
	KindStorage     Kind = "storage_error"
)

// Level is how an adapter should present an Event.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Event is a user-facing notification.
type Event struct {
	Kind    Kind   `json:"kind"`
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// DefaultEventBuffer is the capacity of the Events channel.
const DefaultEventBuffer = 32

// emit never blocks: when nobody drains the channel, events are dropped.
func (s *Service) emit(kind Kind, level Level, msg string) {
	ev := Event{Kind: kind, Level: level, Message: msg}
	select {
	case s.events <- ev:
	default:
		s.logger.Debug("event dropped, buffer full", "kind", kind, "message", msg)
	}
}
