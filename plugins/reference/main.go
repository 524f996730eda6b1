package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	pluginrpc "stint/internal/modules/plugin/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

// The reference plugin appends every event it receives as one JSON line to
// events.jsonl next to its binary, or to the file named by
// STINT_REFERENCE_LOG when set. It exists to exercise the host wiring end
// to end and as a starting point for plugin authors.
type server struct{}

func (s *server) GetMetadata(_ context.Context, _ *pluginrpc.Empty) (*pluginrpc.Metadata, error) {
	return &pluginrpc.Metadata{
		Name:    "reference",
		Version: "1.0.0",
		Events:  []string{},
	}, nil
}

func (s *server) HandleEvent(_ context.Context, in *pluginrpc.Event) (*pluginrpc.HandleResponse, error) {
	logPath, err := resolveLogPath()
	if err != nil {
		return nil, err
	}
	record := map[string]any{
		"event_id":    in.EventID,
		"kind":        in.Kind,
		"occurred_at": in.OccurredAt,
		"payload":     in.Payload,
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode event record: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(raw, '\n')); err != nil {
		return nil, fmt.Errorf("append event record: %w", err)
	}
	return &pluginrpc.HandleResponse{Handled: true}, nil
}

func resolveLogPath() (string, error) {
	if path := os.Getenv("STINT_REFERENCE_LOG"); path != "" {
		return path, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate binary: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), "events.jsonl"), nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: pluginrpc.HandshakeConfig,
		Plugins:         pluginrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
