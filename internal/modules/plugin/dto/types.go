package dto

import "time"

type PluginInfo struct {
	Name    string
	Version string
	Enabled bool
	Binary  string
	Events  []string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}

type MetadataOutput struct {
	Name    string
	Version string
	Events  []string
}

type EventInput struct {
	EventID    string
	Kind       string
	OccurredAt time.Time
	Payload    map[string]any
}

type HandleOutput struct {
	Delivered []string
}
