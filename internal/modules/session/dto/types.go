package dto

import "time"

type StartInput struct {
	Description string
	Tags        []string
	Project     string
}

type StartOutput struct {
	SessionID   string
	Description string
	Tags        []string
	Project     string
	StartedAt   time.Time
}

type PauseOutput struct {
	SessionID   string
	Description string
	PausedAt    time.Time
	Duration    time.Duration
}

type ResumeOutput struct {
	SessionID   string
	Description string
	ResumedAt   time.Time
	PausedFor   time.Duration
	Duration    time.Duration
}

type StopOutput struct {
	SessionID   string
	Description string
	Tags        []string
	Project     string
	StartedAt   time.Time
	StoppedAt   time.Time
	Duration    time.Duration
	Paused      time.Duration
}

type StatusOutput struct {
	SessionID   string
	Description string
	Tags        []string
	Project     string
	State       string
	StartedAt   time.Time
	Duration    time.Duration
	Paused      time.Duration
	PauseCount  int
}

type LogFilter struct {
	From        *time.Time
	To          *time.Time
	Tags        []string
	Project     string
	MinDuration *time.Duration
	MaxDuration *time.Duration
	Limit       int
}

type SessionRow struct {
	SessionID   string
	Description string
	Tags        []string
	Project     string
	State       string
	StartedAt   time.Time
	StoppedAt   *time.Time
	Duration    time.Duration
	Paused      time.Duration
}

type LogOutput struct {
	Sessions []SessionRow
}

type ExportInput struct {
	Format string
	Path   string
	Filter LogFilter
}

type ExportOutput struct {
	Path    string
	Format  string
	Records int
}
