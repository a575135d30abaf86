package ws

import "encoding/json"

// MessageType constants for the attempt progress feed.
const (
	// Server -> Client
	TypeAttemptStarted   = "attempt_started"
	TypeQuestionStarted  = "question_started"
	TypeAnswerRecorded   = "answer_recorded"
	TypeAttemptCompleted = "attempt_completed"
	TypeAttemptReset     = "attempt_reset"
	TypeError            = "error"

	// Bidirectional keepalive
	TypePing = "ping"
	TypePong = "pong"
)

// Message wraps all WebSocket payloads with a type tag.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage builds a Message from any JSON-encodable payload. Encoding
// failures degrade to an empty payload rather than dropping the event.
func NewMessage(msgType string, payload any) Message {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{Type: msgType}
	}
	return Message{Type: msgType, Payload: data}
}

// QuestionStartedPayload announces a question timer opening.
type QuestionStartedPayload struct {
	AttemptID  string `json:"attempt_id"`
	QuestionID string `json:"question_id"`
}

// AnswerRecordedPayload announces a recorded (or re-recorded) answer.
// The answer itself is never broadcast.
type AnswerRecordedPayload struct {
	AttemptID      string `json:"attempt_id"`
	QuestionID     string `json:"question_id"`
	AnsweredCount  int    `json:"answered_count"`
	TotalQuestions int    `json:"total_questions"`
}

// AttemptCompletedPayload announces a computed result.
type AttemptCompletedPayload struct {
	AttemptID      string `json:"attempt_id"`
	Percentage     int    `json:"percentage"`
	Grade          string `json:"grade"`
	CompletionRate int    `json:"completion_rate"`
}
