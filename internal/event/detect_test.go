package event

import (
	"testing"
	"time"

	"github.com/dokzlo13/gsilight/internal/gsi"
)

var now = time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

func kinds(events []Event) []Kind {
	out := make([]Kind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func equalKinds(a, b []Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDetect_FirstContact(t *testing.T) {
	snapshots := []gsi.Snapshot{
		{},
		{Player: &gsi.Player{Kills: 5}},
		{Hero: &gsi.Hero{Alive: false}, Map: &gsi.Map{WinTeam: "radiant", Paused: true}},
	}
	for _, cur := range snapshots {
		events := Detect(nil, cur, now)
		if !equalKinds(kinds(events), []Kind{KindSessionStarted}) {
			t.Errorf("Detect(nil, %+v) = %v, want only session_started", cur, kinds(events))
		}
		if events[0].Time != now || events[0].ID == "" {
			t.Errorf("session_started event = %+v", events[0])
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		prev gsi.Snapshot
		cur  gsi.Snapshot
		want []Kind
	}{
		{
			name: "kill/counter_increase",
			prev: gsi.Snapshot{Player: &gsi.Player{Kills: 2, KillStreak: 2}},
			cur:  gsi.Snapshot{Player: &gsi.Player{Kills: 3, KillStreak: 6}},
			want: []Kind{KindKill},
		},
		{
			name: "kill/unchanged_counter",
			prev: gsi.Snapshot{Player: &gsi.Player{Kills: 3, KillStreak: 1}},
			cur:  gsi.Snapshot{Player: &gsi.Player{Kills: 3, KillStreak: 4}},
			want: nil,
		},
		{
			name: "kill/counter_decrease",
			prev: gsi.Snapshot{Player: &gsi.Player{Kills: 3}},
			cur:  gsi.Snapshot{Player: &gsi.Player{Kills: 0}},
			want: nil,
		},
		{
			name: "kill/previous_player_missing",
			prev: gsi.Snapshot{},
			cur:  gsi.Snapshot{Player: &gsi.Player{Kills: 3}},
			want: nil,
		},
		{
			name: "death",
			prev: gsi.Snapshot{Hero: &gsi.Hero{Alive: true}},
			cur:  gsi.Snapshot{Hero: &gsi.Hero{Alive: false, RespawnSeconds: 12}},
			want: []Kind{KindDeath},
		},
		{
			name: "respawn",
			prev: gsi.Snapshot{Hero: &gsi.Hero{Alive: false}},
			cur:  gsi.Snapshot{Hero: &gsi.Hero{Alive: true}},
			want: []Kind{KindRespawn},
		},
		{
			name: "alive/still_alive",
			prev: gsi.Snapshot{Hero: &gsi.Hero{Alive: true}},
			cur:  gsi.Snapshot{Hero: &gsi.Hero{Alive: true}},
			want: nil,
		},
		{
			name: "alive/still_dead",
			prev: gsi.Snapshot{Hero: &gsi.Hero{Alive: false}},
			cur:  gsi.Snapshot{Hero: &gsi.Hero{Alive: false}},
			want: nil,
		},
		{
			name: "alive/hero_missing_on_one_side",
			prev: gsi.Snapshot{Hero: &gsi.Hero{Alive: true}},
			cur:  gsi.Snapshot{},
			want: nil,
		},
		{
			name: "ultimate/large_mana_drop",
			prev: gsi.Snapshot{Hero: &gsi.Hero{Alive: true, Mana: 500}},
			cur:  gsi.Snapshot{Hero: &gsi.Hero{Alive: true, Mana: 350}},
			want: []Kind{KindAbilityUltimate},
		},
		{
			name: "ultimate/drop_at_threshold",
			prev: gsi.Snapshot{Hero: &gsi.Hero{Alive: true, Mana: 500}},
			cur:  gsi.Snapshot{Hero: &gsi.Hero{Alive: true, Mana: 400}},
			want: nil,
		},
		{
			name: "ultimate/mana_lost_on_death",
			prev: gsi.Snapshot{Hero: &gsi.Hero{Alive: true, Mana: 500}},
			cur:  gsi.Snapshot{Hero: &gsi.Hero{Alive: false, Mana: 0}},
			want: []Kind{KindDeath},
		},
		{
			name: "outcome/victory",
			prev: gsi.Snapshot{Map: &gsi.Map{WinTeam: "", Paused: false}},
			cur:  gsi.Snapshot{Map: &gsi.Map{WinTeam: "Radiant", Paused: false}, Player: &gsi.Player{TeamName: "Radiant"}},
			want: []Kind{KindVictory},
		},
		{
			name: "outcome/victory_case_insensitive",
			prev: gsi.Snapshot{Map: &gsi.Map{WinTeam: "none"}},
			cur:  gsi.Snapshot{Map: &gsi.Map{WinTeam: "RADIANT"}, Player: &gsi.Player{TeamName: "radiant"}},
			want: []Kind{KindVictory},
		},
		{
			name: "outcome/defeat",
			prev: gsi.Snapshot{Map: &gsi.Map{}},
			cur:  gsi.Snapshot{Map: &gsi.Map{WinTeam: "dire"}, Player: &gsi.Player{TeamName: "radiant"}},
			want: []Kind{KindDefeat},
		},
		{
			name: "outcome/unknown_team_is_defeat",
			prev: gsi.Snapshot{Map: &gsi.Map{}},
			cur:  gsi.Snapshot{Map: &gsi.Map{WinTeam: "radiant"}},
			want: []Kind{KindDefeat},
		},
		{
			name: "outcome/winner_already_known",
			prev: gsi.Snapshot{Map: &gsi.Map{WinTeam: "radiant"}},
			cur:  gsi.Snapshot{Map: &gsi.Map{WinTeam: "radiant"}, Player: &gsi.Player{TeamName: "radiant"}},
			want: nil,
		},
		{
			name: "outcome/none_placeholder",
			prev: gsi.Snapshot{Map: &gsi.Map{WinTeam: ""}},
			cur:  gsi.Snapshot{Map: &gsi.Map{WinTeam: "none"}},
			want: nil,
		},
		{
			name: "pause",
			prev: gsi.Snapshot{Map: &gsi.Map{Paused: false}},
			cur:  gsi.Snapshot{Map: &gsi.Map{Paused: true}},
			want: []Kind{KindPaused},
		},
		{
			name: "unpause",
			prev: gsi.Snapshot{Map: &gsi.Map{Paused: true}},
			cur:  gsi.Snapshot{Map: &gsi.Map{Paused: false}},
			want: []Kind{KindUnpaused},
		},
		{
			name: "order/everything_at_once",
			prev: gsi.Snapshot{
				Map:    &gsi.Map{Paused: true},
				Player: &gsi.Player{Kills: 1, TeamName: "dire"},
				Hero:   &gsi.Hero{Alive: true, Mana: 300},
			},
			cur: gsi.Snapshot{
				Map:    &gsi.Map{Paused: false, WinTeam: "dire"},
				Player: &gsi.Player{Kills: 2, KillStreak: 2, TeamName: "dire"},
				Hero:   &gsi.Hero{Alive: false, RespawnSeconds: 20, Mana: 0},
			},
			want: []Kind{KindKill, KindDeath, KindVictory, KindUnpaused},
		},
		{
			name: "order/respawn_with_mana_drop",
			prev: gsi.Snapshot{Hero: &gsi.Hero{Alive: false, Mana: 600}},
			cur:  gsi.Snapshot{Hero: &gsi.Hero{Alive: true, Mana: 100}},
			want: []Kind{KindRespawn, KindAbilityUltimate},
		},
		{
			name: "order/death_and_pause",
			prev: gsi.Snapshot{Map: &gsi.Map{}, Hero: &gsi.Hero{Alive: true}},
			cur:  gsi.Snapshot{Map: &gsi.Map{Paused: true}, Hero: &gsi.Hero{Alive: false}},
			want: []Kind{KindDeath, KindPaused},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := tt.prev
			got := kinds(Detect(&prev, tt.cur, now))
			if !equalKinds(got, tt.want) {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetect_KillPayload(t *testing.T) {
	tests := []struct {
		name   string
		streak int
		want   int
	}{
		{"positive_streak", 6, 6},
		{"zero_streak_defaults_to_one", 0, 1},
		{"negative_streak_defaults_to_one", -2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := gsi.Snapshot{Player: &gsi.Player{Kills: 0}}
			cur := gsi.Snapshot{Player: &gsi.Player{Kills: 1, KillStreak: tt.streak}}
			events := Detect(&prev, cur, now)
			if len(events) != 1 {
				t.Fatalf("Detect() returned %d events, want 1", len(events))
			}
			if events[0].KillStreak != tt.want {
				t.Errorf("KillStreak = %d, want %d", events[0].KillStreak, tt.want)
			}
		})
	}
}

func TestDetect_DeathPayload(t *testing.T) {
	prev := gsi.Snapshot{Hero: &gsi.Hero{Alive: true}}
	cur := gsi.Snapshot{Hero: &gsi.Hero{Alive: false, RespawnSeconds: 27}}
	events := Detect(&prev, cur, now)
	if len(events) != 1 || events[0].RespawnSeconds != 27 {
		t.Fatalf("Detect() = %+v, want one death with respawn 27", events)
	}
}

func TestDetect_DoesNotMutateInputs(t *testing.T) {
	prev := gsi.Snapshot{Player: &gsi.Player{Kills: 1}, Hero: &gsi.Hero{Alive: true, Mana: 400}}
	cur := gsi.Snapshot{Player: &gsi.Player{Kills: 2, KillStreak: 0}, Hero: &gsi.Hero{Alive: false}}
	Detect(&prev, cur, now)
	if prev.Player.Kills != 1 || prev.Hero.Mana != 400 || cur.Player.KillStreak != 0 {
		t.Error("Detect mutated its inputs")
	}
}

func TestDetect_UniqueIDs(t *testing.T) {
	prev := gsi.Snapshot{Map: &gsi.Map{}, Hero: &gsi.Hero{Alive: true}}
	cur := gsi.Snapshot{Map: &gsi.Map{Paused: true}, Hero: &gsi.Hero{Alive: false}}
	events := Detect(&prev, cur, now)
	if len(events) != 2 || events[0].ID == events[1].ID {
		t.Errorf("expected two events with distinct IDs, got %+v", events)
	}
}

func TestKindValid(t *testing.T) {
	for _, k := range Kinds {
		if !k.Valid() {
			t.Errorf("%q should be valid", k)
		}
	}
	if Kind("game_ended").Valid() {
		t.Error("unknown kind should not be valid")
	}
}
