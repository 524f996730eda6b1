package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stint/internal/bootstrap"
	sessiondto "stint/internal/modules/session/dto"
	webhookdto "stint/internal/modules/webhook/dto"
	"stint/internal/platform/config"
	apperrors "stint/internal/platform/errors"
	"stint/internal/platform/timefmt"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "stint",
		Short:         "Terminal time tracking with webhook integrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.stint)")

	root.AddCommand(newStartCmd(&dataDir))
	root.AddCommand(newStopCmd(&dataDir))
	root.AddCommand(newPauseCmd(&dataDir))
	root.AddCommand(newResumeCmd(&dataDir))
	root.AddCommand(newStatusCmd(&dataDir))
	root.AddCommand(newLogCmd(&dataDir))
	root.AddCommand(newExportCmd(&dataDir))
	root.AddCommand(newTUICmd(&dataDir))
	root.AddCommand(newWebhookCmd(&dataDir))
	root.AddCommand(newIntegrationCmd(&dataDir))
	root.AddCommand(newPluginCmd(&dataDir))
	root.AddCommand(newVersionCmd())
	return root
}

func loadApp(dataDir string) (*bootstrap.App, error) {
	cfg, err := config.New(dataDir)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

// ─── session commands ────────────────────────────────────────────────────────

func newStartCmd(dataDir *string) *cobra.Command {
	var tags []string
	var project string

	start := &cobra.Command{
		Use:   "start <description>",
		Short: "Start a new work session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.SessionCLI.Start(context.Background(), strings.Join(args, " "), tags, project)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session started: %s at=%s\n", out.Description, timefmt.Stamp(out.StartedAt))
			return nil
		},
	}
	start.Flags().StringSliceVar(&tags, "tag", nil, "tag the session (repeatable)")
	start.Flags().StringVar(&project, "project", "", "project the session belongs to")
	return start
}

func newStopCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.SessionCLI.Stop(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session stopped: %s worked=%s", out.Description, timefmt.Duration(out.Duration))
			if out.Paused > 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), " paused=%s", timefmt.Duration(out.Paused))
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func newPauseCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.SessionCLI.Pause(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session paused: %s worked=%s\n", out.Description, timefmt.Duration(out.Duration))
			return nil
		},
	}
}

func newResumeCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume the paused session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.SessionCLI.Resume(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session resumed: %s break=%s\n", out.Description, timefmt.Duration(out.PausedFor))
			return nil
		},
	}
}

func newStatusCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.SessionCLI.Status(context.Background())
			if errors.Is(err, apperrors.ErrNoActiveSession) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no active session")
				return nil
			}
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "state: %s\n", out.State)
			_, _ = fmt.Fprintf(w, "description: %s\n", out.Description)
			if out.Project != "" {
				_, _ = fmt.Fprintf(w, "project: %s\n", out.Project)
			}
			if len(out.Tags) > 0 {
				_, _ = fmt.Fprintf(w, "tags: %s\n", strings.Join(out.Tags, ", "))
			}
			_, _ = fmt.Fprintf(w, "started: %s\n", timefmt.Stamp(out.StartedAt))
			_, _ = fmt.Fprintf(w, "worked: %s\n", timefmt.Duration(out.Duration))
			if out.PauseCount > 0 {
				_, _ = fmt.Fprintf(w, "paused: %s (%d pauses)\n", timefmt.Duration(out.Paused), out.PauseCount)
			}
			return nil
		},
	}
}

func newLogCmd(dataDir *string) *cobra.Command {
	var filters logFilterFlags

	log := &cobra.Command{
		Use:   "log",
		Short: "List recorded sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := filters.build()
			if err != nil {
				return err
			}
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.SessionCLI.Log(context.Background(), filter)
			if err != nil {
				return err
			}
			if len(out.Sessions) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions recorded")
				return nil
			}
			for _, row := range out.Sessions {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), formatSessionRow(row))
			}
			return nil
		},
	}
	filters.register(log)
	return log
}

func newExportCmd(dataDir *string) *cobra.Command {
	var filters logFilterFlags
	var format, output string

	export := &cobra.Command{
		Use:   "export",
		Short: "Export sessions to a CSV or JSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := filters.build()
			if err != nil {
				return err
			}
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.SessionCLI.Export(context.Background(), sessiondto.ExportInput{
				Format: format,
				Path:   output,
				Filter: filter,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d sessions to %s (%s)\n", out.Records, out.Path, out.Format)
			return nil
		},
	}
	export.Flags().StringVar(&format, "format", "csv", "export format: csv|json")
	export.Flags().StringVar(&output, "output", "", "output path (default stint-export-<date>.<format>)")
	filters.register(export)
	return export
}

func newTUICmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the stint dashboard",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			return bootstrap.RunTUI(app)
		},
	}
}

// ─── webhook commands ────────────────────────────────────────────────────────

func newWebhookCmd(dataDir *string) *cobra.Command {
	webhook := &cobra.Command{Use: "webhook", Short: "Manage webhook endpoints"}

	var description, filter, template string
	var events, headers []string
	var timeout, baseDelay, maxDelay time.Duration
	var maxAttempts int

	add := &cobra.Command{
		Use:   "add <name> <url>",
		Short: "Register a webhook endpoint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedHeaders, err := parseHeaders(headers)
			if err != nil {
				return err
			}
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.WebhookCLI.Add(context.Background(), webhookdto.AddInput{
				Name:        args[0],
				URL:         args[1],
				Description: description,
				Events:      events,
				Filter:      filter,
				Template:    template,
				Headers:     parsedHeaders,
				Timeout:     timeout,
				MaxAttempts: maxAttempts,
				BaseDelay:   baseDelay,
				MaxDelay:    maxDelay,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "webhook added: %s -> %s events=%s\n", out.Name, out.URL, formatEvents(out.Events))
			return nil
		},
	}
	add.Flags().StringVar(&description, "description", "", "what this endpoint is for")
	add.Flags().StringSliceVar(&events, "events", nil, "event kinds to deliver (default all)")
	add.Flags().StringVar(&filter, "filter", "", "JSON payload filter")
	add.Flags().StringVar(&template, "template", "", "payload template: generic|slack|discord")
	add.Flags().StringSliceVar(&headers, "header", nil, "custom header Name=Value (repeatable)")
	add.Flags().DurationVar(&timeout, "timeout", 0, "delivery timeout (default from config)")
	add.Flags().IntVar(&maxAttempts, "max-attempts", 0, "delivery attempts before giving up")
	add.Flags().DurationVar(&baseDelay, "base-delay", 0, "first retry delay")
	add.Flags().DurationVar(&maxDelay, "max-delay", 0, "retry delay cap")
	webhook.AddCommand(add)

	webhook.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured webhooks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.WebhookCLI.List(context.Background())
			if err != nil {
				return err
			}
			if len(out.Webhooks) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no webhooks configured")
				return nil
			}
			for _, wh := range out.Webhooks {
				line := fmt.Sprintf("%s\t%s\tenabled=%t\tevents=%s\ttemplate=%s\tdeliveries=%d",
					wh.Name, wh.URL, wh.Enabled, formatEvents(wh.Events), wh.Template, wh.Attempts)
				if wh.Failures > 0 {
					line += fmt.Sprintf("\tfailed=%d", wh.Failures)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	})

	webhook.AddCommand(&cobra.Command{
		Use:   "remove <name>",
		Short: "Delete a webhook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			if err := app.WebhookCLI.Remove(context.Background(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "webhook removed: %s\n", args[0])
			return nil
		},
	})

	webhook.AddCommand(&cobra.Command{
		Use:   "enable <name>",
		Short: "Enable a webhook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.WebhookCLI.Enable(context.Background(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "webhook enabled: %s\n", out.Name)
			return nil
		},
	})

	webhook.AddCommand(&cobra.Command{
		Use:   "disable <name>",
		Short: "Disable a webhook without deleting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.WebhookCLI.Disable(context.Background(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "webhook disabled: %s\n", out.Name)
			return nil
		},
	})

	webhook.AddCommand(&cobra.Command{
		Use:   "test <name>",
		Short: "Send a test event to a webhook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.WebhookCLI.Test(context.Background(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), formatDelivery(out))
			return nil
		},
	})

	var historyLimit int
	history := &cobra.Command{
		Use:   "history [name]",
		Short: "Show delivery attempts, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.WebhookCLI.History(context.Background(), webhookdto.HistoryInput{Name: name, Limit: historyLimit})
			if err != nil {
				return err
			}
			if len(out.Attempts) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no deliveries recorded")
				return nil
			}
			for _, attempt := range out.Attempts {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), formatDelivery(attempt))
			}
			return nil
		},
	}
	history.Flags().IntVar(&historyLimit, "limit", 0, "maximum attempts to show (default from config)")
	webhook.AddCommand(history)

	return webhook
}

// ─── integration commands ────────────────────────────────────────────────────

func newIntegrationCmd(dataDir *string) *cobra.Command {
	integration := &cobra.Command{Use: "integration", Short: "Event delivery controls"}

	integration.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show integration handlers and their state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.IntegrationCLI.Status(context.Background())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "integrations: %s\n", formatEnabled(out.Enabled))
			for _, h := range out.Handlers {
				_, _ = fmt.Fprintf(w, "  %s: %s (priority %d)\n", h.Name, formatEnabled(h.Enabled), h.Priority)
			}
			_, _ = fmt.Fprintf(w, "webhooks configured: %d\n", out.Webhooks)
			_, _ = fmt.Fprintf(w, "plugins installed: %d\n", out.Plugins)
			return nil
		},
	})

	integration.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show delivery statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.IntegrationCLI.Stats(context.Background())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "integrations: %s\n", formatEnabled(out.Enabled))
			_, _ = fmt.Fprintf(w, "webhooks: %d (%d enabled)\n", out.Webhooks, out.EnabledWebhooks)
			_, _ = fmt.Fprintf(w, "plugins: %d (%d enabled)\n", out.Plugins, out.EnabledPlugins)
			_, _ = fmt.Fprintf(w, "attempts: %d success=%d failed=%d\n", out.Attempts, out.Successes, out.Failures)
			_, _ = fmt.Fprintf(w, "success rate: %.1f%%\n", out.SuccessRate)
			_, _ = fmt.Fprintf(w, "pending retries: %d\n", out.PendingRetries)
			return nil
		},
	})

	integration.AddCommand(&cobra.Command{
		Use:   "enable [handler]",
		Short: "Enable all integrations, or one handler group",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.IntegrationCLI.Enable(context.Background(), handlerArg(args))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), formatToggle(out.Handler, out.Enabled))
			return nil
		},
	})

	integration.AddCommand(&cobra.Command{
		Use:   "disable [handler]",
		Short: "Disable all integrations, or one handler group",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.IntegrationCLI.Disable(context.Background(), handlerArg(args))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), formatToggle(out.Handler, out.Enabled))
			return nil
		},
	})

	integration.AddCommand(&cobra.Command{
		Use:   "retry",
		Short: "Deliver webhook attempts whose retry is due",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.IntegrationCLI.Retry(context.Background())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if out.Processed == 0 {
				_, _ = fmt.Fprintln(w, "no retries due")
				return nil
			}
			_, _ = fmt.Fprintf(w, "processed=%d succeeded=%d failed=%d\n", out.Processed, out.Succeeded, out.Failed)
			for _, r := range out.Results {
				marker := "OK"
				if !r.Succeeded {
					marker = "FAIL"
				}
				_, _ = fmt.Fprintf(w, "[%s] %s event=%s attempt=%d", marker, r.WebhookName, r.EventID, r.Attempt)
				if r.Detail != "" {
					_, _ = fmt.Fprintf(w, " detail=%q", r.Detail)
				}
				_, _ = fmt.Fprintln(w)
			}
			return nil
		},
	})

	return integration
}

// ─── plugin commands ─────────────────────────────────────────────────────────

func newPluginCmd(dataDir *string) *cobra.Command {
	plugin := &cobra.Command{Use: "plugin", Short: "Notifier plugin operations"}

	plugin.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List plugin manifests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			plugins, err := app.PluginCLI.List(context.Background())
			if err != nil {
				return err
			}
			if len(plugins) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
				return nil
			}
			for _, p := range plugins {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s enabled=%t events=%s binary=%s\n",
					p.Name, p.Version, p.Enabled, formatEvents(p.Events), p.Binary)
			}
			return nil
		},
	})

	plugin.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate plugin checksums and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			results, err := app.PluginCLI.Doctor(context.Background())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
				return nil
			}
			for _, r := range results {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
				if r.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	})

	plugin.AddCommand(&cobra.Command{
		Use:   "info <name>",
		Short: "Ask a plugin to describe itself",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.PluginCLI.Info(context.Background(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s events=%s\n", out.Name, out.Version, formatEvents(out.Events))
			return nil
		},
	})

	return plugin
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the stint version",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "stint %s\n", version)
		},
	}
}

// ─── shared flag handling and formatting ─────────────────────────────────────

type logFilterFlags struct {
	from        string
	to          string
	tags        []string
	project     string
	minDuration time.Duration
	maxDuration time.Duration
	limit       int
}

func (f *logFilterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "sessions started on or after (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVar(&f.to, "to", "", "sessions started on or before (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "filter by tag (repeatable)")
	cmd.Flags().StringVar(&f.project, "project", "", "filter by project")
	cmd.Flags().DurationVar(&f.minDuration, "min-duration", 0, "minimum worked duration")
	cmd.Flags().DurationVar(&f.maxDuration, "max-duration", 0, "maximum worked duration")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum sessions to return")
}

func (f *logFilterFlags) build() (sessiondto.LogFilter, error) {
	filter := sessiondto.LogFilter{
		Tags:    f.tags,
		Project: f.project,
		Limit:   f.limit,
	}
	if f.from != "" {
		t, err := parseWhen(f.from, false)
		if err != nil {
			return filter, fmt.Errorf("parse --from: %w", err)
		}
		filter.From = &t
	}
	if f.to != "" {
		t, err := parseWhen(f.to, true)
		if err != nil {
			return filter, fmt.Errorf("parse --to: %w", err)
		}
		filter.To = &t
	}
	if f.minDuration > 0 {
		d := f.minDuration
		filter.MinDuration = &d
	}
	if f.maxDuration > 0 {
		d := f.maxDuration
		filter.MaxDuration = &d
	}
	return filter, nil
}

// parseWhen accepts a full RFC3339 timestamp or a bare local date. A bare
// date used as a range end means the whole day.
func parseWhen(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD or RFC3339)", raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, pair := range raw {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --header %q (want Name=Value)", pair)
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return headers, nil
}

func handlerArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return ""
}

func formatSessionRow(row sessiondto.SessionRow) string {
	desc := row.Description
	if row.Project != "" {
		desc += "  [" + row.Project + "]"
	}
	if len(row.Tags) > 0 {
		desc += "  #" + strings.Join(row.Tags, " #")
	}
	return fmt.Sprintf("%s\t%s\t%s\t%s", timefmt.Stamp(row.StartedAt), timefmt.Duration(row.Duration), row.State, desc)
}

func formatDelivery(attempt webhookdto.DeliveryOutput) string {
	line := fmt.Sprintf("%s\t%s\t%s\tattempt=%d\tstatus=%s",
		timefmt.Stamp(attempt.CompletedAt), attempt.WebhookName, attempt.EventKind, attempt.Attempt, attempt.Status)
	if attempt.StatusCode > 0 {
		line += fmt.Sprintf("\thttp=%d", attempt.StatusCode)
	}
	if attempt.Error != "" {
		line += fmt.Sprintf("\terror=%q", attempt.Error)
	}
	if attempt.NextRetryAt != nil {
		line += "\tretry_at=" + timefmt.Stamp(*attempt.NextRetryAt)
	}
	return line
}

func formatEvents(events []string) string {
	if len(events) == 0 {
		return "all"
	}
	return strings.Join(events, ",")
}

func formatEnabled(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func formatToggle(handler string, enabled bool) string {
	if handler == "" {
		return "integrations " + formatEnabled(enabled)
	}
	return fmt.Sprintf("handler %q %s", handler, formatEnabled(enabled))
}
