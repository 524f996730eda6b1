package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "stint/internal/platform/errors"
)

// State of a session's lifecycle.
type State string

const (
	StateRunning State = "running"
	StatePaused  State = "paused"
	StateStopped State = "stopped"
)

// PauseInterval is one pause. ResumedAt is nil while the pause is open.
type PauseInterval struct {
	PausedAt  time.Time  `json:"paused_at"`
	ResumedAt *time.Time `json:"resumed_at"`
}

// Session is a tracked stretch of work. StartedAt never changes after
// creation; StoppedAt is set exactly once, by Stop.
type Session struct {
	ID          string
	Description string
	Tags        []string
	Project     string
	StartedAt   time.Time
	Pauses      []PauseInterval
	StoppedAt   *time.Time
	State       State
}

// NewSession validates inputs and builds a running session.
func NewSession(id, description string, tags []string, project string, startedAt time.Time) (Session, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Session{}, fmt.Errorf("%w: description is required", apperrors.ErrInvalidInput)
	}
	return Session{
		ID:          id,
		Description: description,
		Tags:        NormalizeTags(tags),
		Project:     strings.TrimSpace(project),
		StartedAt:   startedAt,
		State:       StateRunning,
	}, nil
}

// NormalizeTags trims, lowercases, dedupes and sorts. Tag sets compare by
// membership, never by order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Active reports whether the session holds the single-active slot.
func (s Session) Active() bool {
	return s.State == StateRunning || s.State == StatePaused
}

func (s Session) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Pause moves a running session to paused, opening a new interval.
func (s *Session) Pause(at time.Time) error {
	if s.State != StateRunning {
		return apperrors.ErrNoActiveSession
	}
	s.Pauses = append(s.Pauses, PauseInterval{PausedAt: at})
	s.State = StatePaused
	return nil
}

// Resume closes the open interval of a paused session.
func (s *Session) Resume(at time.Time) error {
	if s.State != StatePaused {
		return apperrors.ErrSessionNotPaused
	}
	resumed := at
	s.Pauses[len(s.Pauses)-1].ResumedAt = &resumed
	s.State = StateRunning
	return nil
}

// Stop ends a running or paused session. A still-open pause closes at the
// stop instant, so trailing paused time never counts as work.
func (s *Session) Stop(at time.Time) error {
	switch s.State {
	case StateRunning:
	case StatePaused:
		end := at
		s.Pauses[len(s.Pauses)-1].ResumedAt = &end
	default:
		return apperrors.ErrNoActiveSession
	}
	stopped := at
	s.StoppedAt = &stopped
	s.State = StateStopped
	return nil
}

// DurationAt is wall time since start minus every pause, the open pause
// counted up to now. Never negative.
func (s Session) DurationAt(now time.Time) time.Duration {
	end := now
	if s.StoppedAt != nil {
		end = *s.StoppedAt
	}
	d := end.Sub(s.StartedAt) - s.PausedFor(now)
	if d < 0 {
		d = 0
	}
	return d
}

// PausedFor totals pause time, the open interval counted up to now.
func (s Session) PausedFor(now time.Time) time.Duration {
	var total time.Duration
	for _, p := range s.Pauses {
		end := now
		if p.ResumedAt != nil {
			end = *p.ResumedAt
		}
		if end.After(p.PausedAt) {
			total += end.Sub(p.PausedAt)
		}
	}
	return total
}

// OpenPauseAt returns the start of the current pause, if any.
func (s Session) OpenPauseAt() (time.Time, bool) {
	if len(s.Pauses) == 0 {
		return time.Time{}, false
	}
	last := s.Pauses[len(s.Pauses)-1]
	if last.ResumedAt != nil {
		return time.Time{}, false
	}
	return last.PausedAt, true
}

// Filter selects sessions for listing and export. Nil or zero fields are
// unconstrained. Duration bounds evaluate each session's duration at Now.
type Filter struct {
	From        *time.Time
	To          *time.Time
	Tags        []string
	Project     string
	MinDuration *time.Duration
	MaxDuration *time.Duration
	Now         time.Time
	Limit       int
}

// Matches applies every filter condition to one session.
func (f Filter) Matches(s Session) bool {
	if f.From != nil && s.StartedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && s.StartedAt.After(*f.To) {
		return false
	}
	if f.Project != "" && s.Project != f.Project {
		return false
	}
	for _, tag := range NormalizeTags(f.Tags) {
		if !s.HasTag(tag) {
			return false
		}
	}
	if f.MinDuration != nil || f.MaxDuration != nil {
		d := s.DurationAt(f.Now)
		if f.MinDuration != nil && d < *f.MinDuration {
			return false
		}
		if f.MaxDuration != nil && d > *f.MaxDuration {
			return false
		}
	}
	return true
}
