// Package mqtt provides MQTT publishing of game results with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/reaction-duel/internal/logic"
)

// TopicRounds is the MQTT topic for scored rounds.
const TopicRounds = "reaction/duel/rounds"

// TopicSystem is the MQTT topic for game lifecycle events.
const TopicSystem = "reaction/duel/system"

// Publisher publishes game results to MQTT.
type Publisher interface {
	// PublishRound sends a scored round to the broker.
	// Returns error if publishing fails (should not stop the game).
	PublishRound(result RoundResult) error

	// PublishSystem sends a lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// RoundResult is a scored round for one player.
type RoundResult struct {
	GameID string
	Player string
	Limit  int
	Event  logic.Event
}

// SystemEvent represents a lifecycle event (e.g., startup, summary, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SUMMARY", "SHUTDOWN"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	GameID     string
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload for a scored round.
type Payload struct {
	Round RoundPayload `json:"round"`
}

// RoundPayload contains the round details.
type RoundPayload struct {
	Timestamp  string  `json:"timestamp"`
	Game       string  `json:"game"`
	Player     string  `json:"player"`
	Round      int     `json:"round"`
	Of         int     `json:"of"`
	ReactionMs float64 `json:"reaction_ms"`
	Clamped    bool    `json:"clamped,omitempty"`
}

// Millis converts a duration into fractional milliseconds.
func Millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// FormatPayload creates the JSON payload for a scored round.
func FormatPayload(result RoundResult) ([]byte, error) {
	payload := Payload{
		Round: RoundPayload{
			Timestamp:  result.Event.Timestamp.UTC().Format(time.RFC3339),
			Game:       result.GameID,
			Player:     result.Player,
			Round:      result.Event.Round,
			Of:         result.Limit,
			ReactionMs: Millis(result.Event.Elapsed),
			Clamped:    result.Event.Clamped,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
	Game      string `json:"game,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
			Game:      event.GameID,
		},
	}
	return json.Marshal(payload)
}

// NopPublisher discards everything. Used when no broker is configured.
type NopPublisher struct{}

// PublishRound does nothing.
func (NopPublisher) PublishRound(RoundResult) error { return nil }

// PublishSystem does nothing.
func (NopPublisher) PublishSystem(SystemEvent) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }

// IsConnected always reports false.
func (NopPublisher) IsConnected() bool { return false }
