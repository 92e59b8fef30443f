package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Game          string       `json:"game"`
	Finished      bool         `json:"finished"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Players       []PlayerJSON `json:"players"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// PlayerJSON is the JSON representation of a scoreboard entry.
type PlayerJSON struct {
	Name      string  `json:"name"`
	State     string  `json:"state"`
	Round     int     `json:"round"`
	Of        int     `json:"of"`
	LastMs    float64 `json:"last_ms"`
	BestMs    float64 `json:"best_ms"`
	TotalMs   float64 `json:"total_ms"`
	AverageMs float64 `json:"average_ms"`
	Anomalies int     `json:"anomalies"`
	Error     string  `json:"error,omitempty"`
}

// ConfigJSON is the JSON representation of game config.
type ConfigJSON struct {
	Rounds        int    `json:"rounds"`
	PollTimeoutMs int64  `json:"poll_timeout_ms"`
	MinWaitMs     int64  `json:"min_wait_ms"`
	MaxWaitMs     int64  `json:"max_wait_ms"`
	DebounceMs    int64  `json:"debounce_ms"`
	Chip          string `json:"chip"`
	Broker        string `json:"broker"`
	HTTPAddr      string `json:"http_addr"`
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Build converts a snapshot into its JSON form (no event/reason).
func Build(snap Snapshot) StatusJSON {
	players := make([]PlayerJSON, 0, len(snap.Players))
	for _, p := range snap.Players {
		state := string(p.State)
		if state == "" {
			state = "UNKNOWN"
		}
		players = append(players, PlayerJSON{
			Name:      p.Name,
			State:     state,
			Round:     p.Round,
			Of:        p.Limit,
			LastMs:    millis(p.Last),
			BestMs:    millis(p.Best),
			TotalMs:   millis(p.Total),
			AverageMs: millis(p.Average),
			Anomalies: p.Anomalies,
			Error:     p.Error,
		})
	}

	return StatusJSON{
		Status: StatusInner{
			Game:          snap.GameID,
			Finished:      snap.Finished(),
			UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
			StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
			Timestamp:     snap.Now.UTC().Format(time.RFC3339),
			MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
			Players:       players,
			Config: ConfigJSON{
				Rounds:        snap.Config.Rounds,
				PollTimeoutMs: snap.Config.PollTimeoutMs,
				MinWaitMs:     snap.Config.MinWaitMs,
				MaxWaitMs:     snap.Config.MaxWaitMs,
				DebounceMs:    snap.Config.DebounceMs,
				Chip:          snap.Config.Chip,
				Broker:        snap.Config.Broker,
				HTTPAddr:      snap.Config.HTTPAddr,
			},
		},
	}
}

// FormatJSON returns the indented JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(Build(snap), "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	sj := Build(snap)
	sj.Status.Event = event
	sj.Status.Reason = reason

	data, _ := json.Marshal(sj)
	return data
}
