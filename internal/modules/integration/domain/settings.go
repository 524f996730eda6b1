package domain

// Settings is the persisted integration enablement state. The zero value is
// not meaningful; use DefaultSettings.
type Settings struct {
	Enabled  bool
	Handlers map[string]bool
}

func DefaultSettings() Settings {
	return Settings{Enabled: true, Handlers: map[string]bool{}}
}

// HandlerEnabled reports whether a handler group may run. Groups are enabled
// unless explicitly disabled.
func (s Settings) HandlerEnabled(name string) bool {
	enabled, ok := s.Handlers[name]
	if !ok {
		return true
	}
	return enabled
}

// SetHandler returns a copy with one handler group toggled.
func (s Settings) SetHandler(name string, enabled bool) Settings {
	handlers := make(map[string]bool, len(s.Handlers)+1)
	for k, v := range s.Handlers {
		handlers[k] = v
	}
	handlers[name] = enabled
	return Settings{Enabled: s.Enabled, Handlers: handlers}
}

// Registration describes one handler attached to the bus. Lower priority
// runs first; equal priorities keep registration order.
type Registration struct {
	Name     string
	Priority int
	Enabled  bool
}
