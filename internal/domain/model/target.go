package model

import (
	"fmt"
	"strconv"
	"strings"
)

type TargetKind string

const (
	TargetLight TargetKind = "light"
	TargetGroup TargetKind = "group"
)

// Target is a parsed target identifier. Group 0 is the bridge's implicit
// group of all lights.
type Target struct {
	Kind TargetKind
	ID   int
}

// ParseTarget accepts "light:<n>", "group:<n>" and a bare "<n>", which
// names a light.
func ParseTarget(s string) (Target, error) {
	kind, num, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		kind, num = string(TargetLight), kind
	}

	id, err := strconv.Atoi(num)
	if err != nil || id < 0 {
		return Target{}, fmt.Errorf("invalid target %q: id must be a non-negative integer", s)
	}

	switch TargetKind(strings.ToLower(kind)) {
	case TargetLight:
		if id == 0 {
			return Target{}, fmt.Errorf("invalid target %q: light ids start at 1", s)
		}
		return Target{Kind: TargetLight, ID: id}, nil
	case TargetGroup:
		return Target{Kind: TargetGroup, ID: id}, nil
	default:
		return Target{}, fmt.Errorf("invalid target %q: unknown kind %q", s, kind)
	}
}

func (t Target) String() string {
	return string(t.Kind) + ":" + strconv.Itoa(t.ID)
}
