package world

import "sync/atomic"

// ObjectIDGenerator generates unique object IDs for simulated entities.
//
// ID ranges (convention):
//
//	0x00000000 - 0x0FFFFFFF: Reserved (0 = invalid)
//	0x10000000 - 0x1FFFFFFF: Agents
type ObjectIDGenerator struct {
	nextAgentID atomic.Uint32
}

// NewObjectIDGenerator creates a new ID generator.
func NewObjectIDGenerator() *ObjectIDGenerator {
	gen := &ObjectIDGenerator{}
	gen.nextAgentID.Store(0x10000000)
	return gen
}

// NextAgentID generates next unique agent ID.
func (g *ObjectIDGenerator) NextAgentID() uint32 {
	return g.nextAgentID.Add(1)
}

// IsAgentID reports whether id lies in the agent range.
func IsAgentID(id uint32) bool {
	return id > 0x10000000 && id < 0x20000000
}
