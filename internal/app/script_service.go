package app

import (
	"github.com/dokzlo13/gsilight/internal/config"
	"github.com/dokzlo13/gsilight/internal/effects"
	"github.com/dokzlo13/gsilight/internal/mapper"
	"github.com/dokzlo13/gsilight/internal/script"
)

// ScriptService owns the optional Lua runtime that overrides effect programs.
type ScriptService struct {
	cfg     *config.Config
	Runtime *script.Runtime
}

// NewScriptService loads cfg.Script, if set.
func NewScriptService(cfg *config.Config, player *effects.Player) (*ScriptService, error) {
	s := &ScriptService{cfg: cfg}
	if cfg.Script == "" {
		return s, nil
	}

	runtime := script.New(player)
	if err := runtime.LoadFile(cfg.Script); err != nil {
		runtime.Close()
		return nil, err
	}
	s.Runtime = runtime
	return s, nil
}

// Overrides returns the runtime as mapper overrides, or nil without a script.
func (s *ScriptService) Overrides() mapper.Overrides {
	if s.Runtime == nil {
		return nil
	}
	return s.Runtime
}

// Close releases the Lua VM.
func (s *ScriptService) Close() {
	if s.Runtime != nil {
		s.Runtime.Close()
	}
}
