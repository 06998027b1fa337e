package domain

import "time"

// GeneralSettings is the general settings group of a chat
type GeneralSettings struct {
	WelcomeEnabled          bool   `json:"welcomeEnabled"`
	WarningEnabled          bool   `json:"warningEnabled"`
	SilentModeEnabled       bool   `json:"silentModeEnabled"`
	AutoDeleteEnabled       bool   `json:"autoDeleteEnabled"`
	AutoDeleteDelayMinutes  int    `json:"autoDeleteDelayMinutes"`
	RemoveJoinLeaveMessages bool   `json:"removeJoinLeaveMessages"`
	Timezone                string `json:"timezone"`
}

// AutoDeleteAfter is the delay applied to bot messages, zero when disabled.
func (g *GeneralSettings) AutoDeleteAfter() time.Duration {
	if g == nil || !g.AutoDeleteEnabled || g.AutoDeleteDelayMinutes <= 0 {
		return 0
	}
	return time.Duration(g.AutoDeleteDelayMinutes) * time.Minute
}

// SilenceWindow is a quiet-hours window in "HH:MM" bounds
type SilenceWindow struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// Active reports whether the window covers t. Unparseable bounds never match.
func (w SilenceWindow) Active(t time.Time) bool {
	if !w.Enabled {
		return false
	}
	start, err := ParseClock(w.Start)
	if err != nil {
		return false
	}
	end, err := ParseClock(w.End)
	if err != nil {
		return false
	}
	return InWindow(t.UTC(), start, end)
}

type EmergencyLock struct {
	Enabled bool `json:"enabled"`
}

// SilenceSettings is the quiet-hours settings group of a chat
type SilenceSettings struct {
	EmergencyLock EmergencyLock `json:"emergencyLock"`
	Window1       SilenceWindow `json:"window1"`
	Window2       SilenceWindow `json:"window2"`
	Window3       SilenceWindow `json:"window3"`
}

// Silenced reports whether the chat is locked or inside a quiet window at t.
func (s *SilenceSettings) Silenced(t time.Time) bool {
	if s == nil {
		return false
	}
	if s.EmergencyLock.Enabled {
		return true
	}
	for _, w := range []SilenceWindow{s.Window1, s.Window2, s.Window3} {
		if w.Active(t) {
			return true
		}
	}
	return false
}

// LimitSettings is the count-limit settings group. Zero disables a limit.
type LimitSettings struct {
	MinWordsPerMessage     int `json:"minWordsPerMessage"`
	MaxWordsPerMessage     int `json:"maxWordsPerMessage"`
	MessagesPerWindow      int `json:"messagesPerWindow"`
	WindowMinutes          int `json:"windowMinutes"`
	DuplicateMessages      int `json:"duplicateMessages"`
	DuplicateWindowMinutes int `json:"duplicateWindowMinutes"`
}

// Sanitized clamps negative values to zero.
func (l LimitSettings) Sanitized() LimitSettings {
	clamp := func(v int) int {
		if v < 0 {
			return 0
		}
		return v
	}
	return LimitSettings{
		MinWordsPerMessage:     clamp(l.MinWordsPerMessage),
		MaxWordsPerMessage:     clamp(l.MaxWordsPerMessage),
		MessagesPerWindow:      clamp(l.MessagesPerWindow),
		WindowMinutes:          clamp(l.WindowMinutes),
		DuplicateMessages:      clamp(l.DuplicateMessages),
		DuplicateWindowMinutes: clamp(l.DuplicateWindowMinutes),
	}
}

// Capabilities are the bot's own rights in a chat
type Capabilities struct {
	Delete   bool `json:"delete"`
	Restrict bool `json:"restrict"`
	Send     bool `json:"send"`
}

// Has reports whether the capability is held.
func (c Capabilities) Has(capability Capability) bool {
	switch capability {
	case CapabilityDelete:
		return c.Delete
	case CapabilityRestrict:
		return c.Restrict
	case CapabilitySend:
		return c.Send
	}
	return false
}

// Snapshot bundles the cached settings groups of one chat. A nil group was
// unavailable at load time and must be treated as "no policy".
type Snapshot struct {
	ChatID       int64
	BanRules     *BanRules
	General      *GeneralSettings
	Silence      *SilenceSettings
	Limits       *LimitSettings
	Capabilities *Capabilities
}
