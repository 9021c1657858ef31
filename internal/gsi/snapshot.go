// Package gsi models Dota 2 Game State Integration payloads.
//
// Every block of a Snapshot is optional. A nil block means the game client
// did not report it, which is different from a block full of zero values.
package gsi

// Snapshot is one point-in-time read of the game, as posted by the client.
type Snapshot struct {
	Provider *Provider `json:"provider,omitempty"`
	Map      *Map      `json:"map,omitempty"`
	Player   *Player   `json:"player,omitempty"`
	Hero     *Hero     `json:"hero,omitempty"`
	Auth     *Auth     `json:"auth,omitempty"`
}

// Provider identifies the game build that produced the payload.
type Provider struct {
	Name      string `json:"name"`
	AppID     int    `json:"appid"`
	Version   int    `json:"version"`
	Timestamp int64  `json:"timestamp"`
}

// Map holds match-wide state.
type Map struct {
	Name              string `json:"name"`
	MatchID           string `json:"matchid"`
	GameTime          int    `json:"game_time"`
	ClockTime         int    `json:"clock_time"`
	Daytime           bool   `json:"daytime"`
	NightstalkerNight bool   `json:"nightstalker_night"`
	GameState         string `json:"game_state"`
	Paused            bool   `json:"paused"`
	WinTeam           string `json:"win_team"`
	RadiantWinChance  int    `json:"radiant_win_chance"`
}

// Player holds the local player's scoreboard.
type Player struct {
	SteamID        string `json:"steamid"`
	Name           string `json:"name"`
	Activity       string `json:"activity"`
	Kills          int    `json:"kills"`
	Deaths         int    `json:"deaths"`
	Assists        int    `json:"assists"`
	LastHits       int    `json:"last_hits"`
	Denies         int    `json:"denies"`
	KillStreak     int    `json:"kill_streak"`
	CommandsIssued int    `json:"commands_issued"`
	TeamName       string `json:"team_name"`
	Gold           int    `json:"gold"`
	GoldReliable   int    `json:"gold_reliable"`
	GoldUnreliable int    `json:"gold_unreliable"`
	GPM            int    `json:"gpm"`
	XPM            int    `json:"xpm"`
}

// Hero holds the state of the player's hero.
type Hero struct {
	XPos            int    `json:"xpos"`
	YPos            int    `json:"ypos"`
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Level           int    `json:"level"`
	Alive           bool   `json:"alive"`
	RespawnSeconds  int    `json:"respawn_seconds"`
	BuybackCost     int    `json:"buyback_cost"`
	BuybackCooldown int    `json:"buyback_cooldown"`
	Health          int    `json:"health"`
	MaxHealth       int    `json:"max_health"`
	HealthPercent   int    `json:"health_percent"`
	Mana            int    `json:"mana"`
	MaxMana         int    `json:"max_mana"`
	ManaPercent     int    `json:"mana_percent"`
	Silenced        bool   `json:"silenced"`
	Stunned         bool   `json:"stunned"`
	Disarmed        bool   `json:"disarmed"`
	MagicImmune     bool   `json:"magicimmune"`
	Hexed           bool   `json:"hexed"`
	Muted           bool   `json:"muted"`
	Break           bool   `json:"break"`
	HasDebuff       bool   `json:"has_debuff"`
}

// Auth carries the token configured in the client's integration cfg file.
type Auth struct {
	Token string `json:"token"`
}

// HealthPercent returns the hero's health reading, if the hero block is present.
func (s Snapshot) HealthPercent() (float64, bool) {
	if s.Hero == nil {
		return 0, false
	}
	return float64(s.Hero.HealthPercent), true
}

// MatchID returns the match id, or "" when the map block is missing.
func (s Snapshot) MatchID() string {
	if s.Map == nil {
		return ""
	}
	return s.Map.MatchID
}

// AuthToken returns the payload's auth token, or "" when absent.
func (s Snapshot) AuthToken() string {
	if s.Auth == nil {
		return ""
	}
	return s.Auth.Token
}
