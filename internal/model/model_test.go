package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/navsim/internal/geo"
)

func TestPatrolModeString(t *testing.T) {
	tests := []struct {
		mode PatrolMode
		want string
	}{
		{PatrolLoop, "loop"},
		{PatrolPingPong, "pingpong"},
		{PatrolMode(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.mode.String(); got != tt.want {
				t.Errorf("PatrolMode.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsePatrolMode(t *testing.T) {
	tests := []struct {
		in      string
		want    PatrolMode
		wantErr bool
	}{
		{"", PatrolLoop, false},
		{"loop", PatrolLoop, false},
		{"pingpong", PatrolPingPong, false},
		{"ping_pong", PatrolPingPong, false},
		{"bounce", PatrolLoop, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePatrolMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePatrolMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePatrolMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFactionHostile(t *testing.T) {
	assert.True(t, FactionGuard.Hostile(FactionIntruder))
	assert.False(t, FactionIntruder.Hostile(FactionGuard))
	assert.False(t, FactionGuard.Hostile(FactionGuard))
	assert.False(t, FactionNeutral.Hostile(FactionIntruder))
	assert.Equal(t, "GUARD", FactionGuard.String())
}

func TestRoutePoints(t *testing.T) {
	pts := []geo.Point3D{{X: 1}, {X: 2}, {X: 3}}
	r := NewRoute("north", PatrolPingPong, pts)

	assert.Equal(t, pts, r.Points())
	assert.Equal(t, 3, r.Len())
	require.NotNil(t, r.First)
	assert.Nil(t, r.First.Next.Next.Next)
}

func TestRoutePointsCycleSafe(t *testing.T) {
	r := NewRoute("ring", PatrolLoop, []geo.Point3D{{X: 1}, {X: 2}, {X: 3}})
	r.First.Next.Next.Next = r.First.Next // 1 -> 2 -> 3 -> 2

	assert.Equal(t, []geo.Point3D{{X: 1}, {X: 2}, {X: 3}}, r.Points())
}

func TestRouteEmpty(t *testing.T) {
	var nilRoute *Route
	assert.Empty(t, nilRoute.Points())
	assert.Empty(t, NewRoute("empty", PatrolLoop, nil).Points())
}
