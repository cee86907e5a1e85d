package catalog

import (
	"fmt"
	"strings"
)

// BadgeStatus is the language-proficiency variant shown by the badge.
type BadgeStatus int

const (
	BadgeNone BadgeStatus = iota
	BadgeLearner
	BadgeFluent
)

var badgeNames = [...]string{"None", "Learner", "Fluent"}

func (s BadgeStatus) String() string {
	if s < 0 || int(s) >= len(badgeNames) {
		return fmt.Sprintf("BadgeStatus(%d)", int(s))
	}
	return badgeNames[s]
}

// Active reports whether the badge should be drawn.
func (s BadgeStatus) Active() bool { return s == BadgeLearner || s == BadgeFluent }

// Text is the bilingual label drawn next to the badge image.
func (s BadgeStatus) Text() string {
	switch s {
	case BadgeLearner:
		return "Dysgwyr\nLearner"
	case BadgeFluent:
		return "Rhugl\nFluent"
	}
	return ""
}

// ParseBadgeStatus accepts the status names case-insensitively; "" is None.
func ParseBadgeStatus(s string) (BadgeStatus, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return BadgeNone, nil
	}
	for i, name := range badgeNames {
		if strings.EqualFold(s, name) {
			return BadgeStatus(i), nil
		}
	}
	return BadgeNone, fmt.Errorf("unknown badge status %q", s)
}

func (s BadgeStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *BadgeStatus) UnmarshalText(b []byte) error {
	v, err := ParseBadgeStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
