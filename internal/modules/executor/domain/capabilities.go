package domain

import (
	"sync"

	policydomain "github.com/reshetovitsme/chat-guard/internal/modules/policy/domain"
)

// CapabilityCache memoizes the bot's rights within one processing context.
// A capability found missing stays missing for the rest of the context.
type CapabilityCache struct {
	mu       sync.Mutex
	resolved bool
	caps     policydomain.Capabilities
	missing  map[policydomain.Capability]bool
	reported map[policydomain.Capability]bool
}

func NewCapabilityCache(seed *policydomain.Capabilities) *CapabilityCache {
	c := &CapabilityCache{
		missing:  map[policydomain.Capability]bool{},
		reported: map[policydomain.Capability]bool{},
	}
	if seed != nil {
		c.Resolve(*seed)
	}
	return c
}

// Resolved reports whether a membership lookup result is cached.
func (c *CapabilityCache) Resolved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolved
}

// Resolve caches a lookup result. Capabilities it lacks become missing.
func (c *CapabilityCache) Resolve(caps policydomain.Capabilities) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolved = true
	c.caps = caps
	for _, name := range policydomain.CapabilityNames() {
		capability := policydomain.Capability(name)
		if !caps.Has(capability) {
			c.missing[capability] = true
		}
	}
}

// MarkMissing records a capability the platform denied.
func (c *CapabilityCache) MarkMissing(capability policydomain.Capability) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.missing[capability] = true
}

// Missing reports whether capability is known to be missing.
func (c *CapabilityCache) Missing(capability policydomain.Capability) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.missing[capability]
}

// FirstSkip reports true exactly once per missing capability, so skipped
// calls are recorded once.
func (c *CapabilityCache) FirstSkip(capability policydomain.Capability) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reported[capability] {
		return false
	}
	c.reported[capability] = true
	return true
}
