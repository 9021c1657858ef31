package gsi

import "testing"

func TestParse_FullPayload(t *testing.T) {
	body := []byte(`{
		"provider": {"name": "Dota 2", "appid": 570, "version": 47, "timestamp": 1700000000},
		"map": {"matchid": "7411", "game_time": 120, "paused": true, "win_team": "none", "game_state": "DOTA_GAMERULES_STATE_GAME_IN_PROGRESS"},
		"player": {"steamid": "7656", "kills": 3, "kill_streak": 2, "team_name": "radiant"},
		"hero": {"alive": true, "health_percent": 42, "mana": 350, "respawn_seconds": 0},
		"auth": {"token": "secret"}
	}`)

	s, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if s.Provider == nil || s.Provider.AppID != 570 {
		t.Errorf("Provider = %+v, want appid 570", s.Provider)
	}
	if s.Map == nil || !s.Map.Paused || s.Map.MatchID != "7411" {
		t.Errorf("Map = %+v", s.Map)
	}
	if s.Player == nil || s.Player.Kills != 3 || s.Player.TeamName != "radiant" {
		t.Errorf("Player = %+v", s.Player)
	}
	if s.Hero == nil || s.Hero.HealthPercent != 42 || s.Hero.Mana != 350 {
		t.Errorf("Hero = %+v", s.Hero)
	}
	if s.AuthToken() != "secret" {
		t.Errorf("AuthToken() = %q, want %q", s.AuthToken(), "secret")
	}
}

func TestParse_MissingBlocksStayNil(t *testing.T) {
	s, err := Parse([]byte(`{"provider": {"name": "Dota 2"}}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if s.Map != nil || s.Player != nil || s.Hero != nil {
		t.Errorf("expected nil blocks, got map=%v player=%v hero=%v", s.Map, s.Player, s.Hero)
	}
	if _, ok := s.HealthPercent(); ok {
		t.Error("HealthPercent() should report no reading without a hero block")
	}
}

func TestParse_HeroPercentDefaults(t *testing.T) {
	s, err := Parse([]byte(`{"hero": {"alive": true}}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if s.Hero == nil {
		t.Fatal("Hero should be present")
	}
	if s.Hero.HealthPercent != 100 || s.Hero.ManaPercent != 100 {
		t.Errorf("percent defaults = %d/%d, want 100/100", s.Hero.HealthPercent, s.Hero.ManaPercent)
	}
	pct, ok := s.HealthPercent()
	if !ok || pct != 100 {
		t.Errorf("HealthPercent() = %v, %v", pct, ok)
	}
}

func TestParse_EmptyBlocksArePresent(t *testing.T) {
	s, err := Parse([]byte(`{"map": {}, "player": {}}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if s.Map == nil || s.Player == nil {
		t.Fatal("empty objects should decode to present blocks")
	}
	if s.Player.Kills != 0 || s.Map.WinTeam != "" {
		t.Errorf("expected zero values, got %+v %+v", s.Player, s.Map)
	}
}

func TestParse_NonObjectBlocksAreDropped(t *testing.T) {
	s, err := Parse([]byte(`{"map": null, "hero": false, "player": "x"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if s.Map != nil || s.Hero != nil || s.Player != nil {
		t.Errorf("non-object blocks should be nil: %+v", s)
	}
}

func TestParse_MistypedFieldKeepsBlock(t *testing.T) {
	s, err := Parse([]byte(`{"player": {"kills": "many", "kill_streak": 4}}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if s.Player == nil {
		t.Fatal("Player should be kept")
	}
	if s.Player.Kills != 0 || s.Player.KillStreak != 4 {
		t.Errorf("Player = %+v, want kills=0 streak=4", s.Player)
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	for _, body := range []string{``, `{`, `[1,2]`, `not json`} {
		if _, err := Parse([]byte(body)); err == nil {
			t.Errorf("Parse(%q) expected error", body)
		}
	}
}
