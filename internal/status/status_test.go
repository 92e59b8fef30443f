package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/reaction-duel/internal/logic"
)

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{Rounds: 3, PollTimeoutMs: 1000, Broker: "tcp://localhost:1883", HTTPAddr: ":8080"}
	tr := NewTracker(start, "g-1", cfg, "alice", "bob")

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.GameID != "g-1" {
		t.Errorf("GameID: got %q, want g-1", snap.GameID)
	}
	if snap.Config.Rounds != 3 {
		t.Errorf("Config.Rounds: got %d, want 3", snap.Config.Rounds)
	}
	if len(snap.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(snap.Players))
	}
	for _, p := range snap.Players {
		if p.State != logic.StateIdle {
			t.Errorf("%s: expected IDLE, got %s", p.Name, p.State)
		}
		if p.Limit != 3 {
			t.Errorf("%s: expected limit 3, got %d", p.Name, p.Limit)
		}
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
	if snap.Finished() {
		t.Error("new game should not be finished")
	}
}

func TestUpdatePlayer(t *testing.T) {
	tr := NewTracker(time.Now(), "g", Config{Rounds: 3}, "alice", "bob")

	tr.UpdatePlayer(PlayerStatus{
		Name:    "alice",
		State:   logic.StateArmed,
		Round:   1,
		Limit:   3,
		Last:    250 * time.Millisecond,
		Total:   250 * time.Millisecond,
		Average: 250 * time.Millisecond,
	})

	snap := tr.Snapshot()
	alice, ok := snap.Player("alice")
	if !ok {
		t.Fatal("alice missing")
	}
	if alice.State != logic.StateArmed {
		t.Errorf("State: got %s, want ARMED", alice.State)
	}
	if alice.Round != 1 {
		t.Errorf("Round: got %d, want 1", alice.Round)
	}

	bob, _ := snap.Player("bob")
	if bob.State != logic.StateIdle || bob.Round != 0 {
		t.Errorf("bob should be untouched, got %+v", bob)
	}
}

func TestUpdateUnknownPlayerAppends(t *testing.T) {
	tr := NewTracker(time.Now(), "g", Config{})
	tr.UpdatePlayer(PlayerStatus{Name: "carol", State: logic.StateIdle})

	if len(tr.Snapshot().Players) != 1 {
		t.Errorf("expected 1 player, got %d", len(tr.Snapshot().Players))
	}
}

func TestPlayerLookupMissing(t *testing.T) {
	tr := NewTracker(time.Now(), "g", Config{}, "alice")
	if _, ok := tr.Snapshot().Player("zed"); ok {
		t.Error("expected lookup to fail")
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), "g", Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotNowIsSet(t *testing.T) {
	tr := NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "g", Config{})

	before := time.Now()
	snap := tr.Snapshot()
	after := time.Now()

	if snap.Now.Before(before) || snap.Now.After(after) {
		t.Errorf("Now (%v) not between %v and %v", snap.Now, before, after)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), "g", Config{}, "alice")
	tr.UpdatePlayer(PlayerStatus{Name: "alice", State: logic.StateArmed, Round: 1})

	snap1 := tr.Snapshot()

	tr.UpdatePlayer(PlayerStatus{Name: "alice", State: logic.StateDone, Round: 2})

	if snap1.Players[0].State != logic.StateArmed {
		t.Error("snapshot should be a copy; State was modified")
	}
	if snap1.Players[0].Round != 1 {
		t.Error("snapshot should be a copy; Round was modified")
	}
}

func TestFinished(t *testing.T) {
	tests := []struct {
		name    string
		players []PlayerStatus
		want    bool
	}{
		{"no players", nil, false},
		{"both done", []PlayerStatus{{State: logic.StateDone}, {State: logic.StateDone}}, true},
		{"one playing", []PlayerStatus{{State: logic.StateDone}, {State: logic.StateArmed}}, false},
		{"cancelled", []PlayerStatus{{State: logic.StateCancelled}, {State: logic.StateCancelled}}, true},
		{"failed counts as finished", []PlayerStatus{{State: logic.StateArmed, Error: "poll failed"}, {State: logic.StateDone}}, true},
	}

	for _, tt := range tests {
		snap := Snapshot{Players: tt.players}
		if got := snap.Finished(); got != tt.want {
			t.Errorf("%s: Finished() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		GameID: "g-1",
		Players: []PlayerStatus{
			{Name: "alice", State: logic.StateDone, Round: 3, Limit: 3, Last: 200 * time.Millisecond, Best: 150 * time.Millisecond, Total: 600 * time.Millisecond, Average: 200 * time.Millisecond},
			{Name: "bob", State: logic.StateArmed, Round: 1, Limit: 3},
		},
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Config:        Config{Rounds: 3, PollTimeoutMs: 1000, MinWaitMs: 2000, MaxWaitMs: 6000, Broker: "tcp://localhost:1883", HTTPAddr: ":8080"},
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Game != "g-1" {
		t.Errorf("Game: got %q, want g-1", parsed.Status.Game)
	}
	if parsed.Status.Finished {
		t.Error("expected Finished=false")
	}
	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", parsed.Status.UptimeSeconds)
	}
	if !parsed.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if len(parsed.Status.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(parsed.Status.Players))
	}
	alice := parsed.Status.Players[0]
	if alice.State != "DONE" || alice.Round != 3 || alice.Of != 3 {
		t.Errorf("alice: unexpected %+v", alice)
	}
	if alice.AverageMs != 200 || alice.TotalMs != 600 || alice.BestMs != 150 {
		t.Errorf("alice: unexpected latencies %+v", alice)
	}
	if parsed.Status.Config.MaxWaitMs != 6000 {
		t.Errorf("Config.MaxWaitMs: got %d, want 6000", parsed.Status.Config.MaxWaitMs)
	}
	// Event and Reason should be omitted
	if parsed.Status.Event != "" || parsed.Status.Reason != "" {
		t.Errorf("expected no event/reason for web format, got %q/%q", parsed.Status.Event, parsed.Status.Reason)
	}
}

func TestFormatJSONUnknownState(t *testing.T) {
	snap := Snapshot{
		Players:   []PlayerStatus{{Name: "alice"}},
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	var parsed StatusJSON
	json.Unmarshal(FormatJSON(snap), &parsed)

	if parsed.Status.Players[0].State != "UNKNOWN" {
		t.Errorf("State: got %q, want UNKNOWN", parsed.Status.Players[0].State)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		GameID: "g-1",
		Players: []PlayerStatus{
			{Name: "alice", State: logic.StateDone, Round: 3, Limit: 3},
			{Name: "bob", State: logic.StateArmed, Round: 1, Limit: 3, Error: "poll failed"},
		},
		StartTime: start,
		Now:       start.Add(time.Minute),
	}

	data := FormatStatusEvent(snap, "SUMMARY", "")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "SUMMARY" {
		t.Errorf("Event: got %q, want SUMMARY", parsed.Status.Event)
	}
	if !parsed.Status.Finished {
		t.Error("expected Finished=true")
	}
	if parsed.Status.Players[1].Error != "poll failed" {
		t.Errorf("Error: got %q", parsed.Status.Players[1].Error)
	}
}

func TestFormatStatusEventOmitsReasonWhenEmpty(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	data := FormatStatusEvent(snap, "STARTUP", "")

	// Verify "reason" is not in the raw JSON output
	var raw map[string]interface{}
	json.Unmarshal(data, &raw)
	status := raw["status"].(map[string]interface{})
	if _, exists := status["reason"]; exists {
		t.Error("reason should be omitted when empty")
	}
	if status["event"] != "STARTUP" {
		t.Errorf("event: got %v, want STARTUP", status["event"])
	}
}

func TestFormatStatusEventShutdownReason(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 30, 0, 0, time.UTC),
	}

	var parsed StatusJSON
	if err := json.Unmarshal(FormatStatusEvent(snap, "SHUTDOWN", "SIGINT"), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Reason != "SIGINT" {
		t.Errorf("Reason: got %q, want SIGINT", parsed.Status.Reason)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), "g", Config{}, "alice", "bob")
	var wg sync.WaitGroup

	// One writer per player, as in a real game
	for _, name := range []string{"alice", "bob"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				tr.UpdatePlayer(PlayerStatus{Name: name, State: logic.StateArmed, Round: i})
				tr.SetMQTTConnected(i%2 == 0)
			}
		}(name)
	}

	// Reader
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := tr.Snapshot()
			_ = snap.Finished()
			_ = FormatJSON(snap)
		}
	}()

	wg.Wait()

	if len(tr.Snapshot().Players) != 2 {
		t.Errorf("expected 2 players after concurrent updates, got %d", len(tr.Snapshot().Players))
	}
}
