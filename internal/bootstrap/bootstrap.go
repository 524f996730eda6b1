package bootstrap

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	integrationinadapter "stint/internal/modules/integration/adapter/in"
	integrationoutadapter "stint/internal/modules/integration/adapter/out"
	integrationservice "stint/internal/modules/integration/service"
	integrationusecase "stint/internal/modules/integration/usecase"
	plugininadapter "stint/internal/modules/plugin/adapter/in"
	pluginoutadapter "stint/internal/modules/plugin/adapter/out"
	pluginservice "stint/internal/modules/plugin/service"
	pluginusecase "stint/internal/modules/plugin/usecase"
	sessioninadapter "stint/internal/modules/session/adapter/in"
	sessionoutadapter "stint/internal/modules/session/adapter/out"
	sessionservice "stint/internal/modules/session/service"
	sessionusecase "stint/internal/modules/session/usecase"
	webhookinadapter "stint/internal/modules/webhook/adapter/in"
	webhookoutadapter "stint/internal/modules/webhook/adapter/out"
	webhookservice "stint/internal/modules/webhook/service"
	webhookusecase "stint/internal/modules/webhook/usecase"
	"stint/internal/platform/clock"
	"stint/internal/platform/config"
	"stint/internal/platform/db"
	"stint/internal/platform/id"
	"stint/internal/platform/logging"
	"stint/internal/platform/tx"
	uiapp "stint/internal/ui/app"
)

type App struct {
	SessionCLI     sessioninadapter.CLIHandler
	WebhookCLI     webhookinadapter.CLIHandler
	IntegrationCLI integrationinadapter.CLIHandler
	PluginCLI      plugininadapter.CLIHandler
}

// New wires the modules together. Priorities on the event bus keep webhook
// fan-out ahead of plugin fan-out, matching the order the integration status
// listing reports.
func New(cfg config.Config) (*App, error) {
	log := logging.New(os.Stderr, cfg.LogLevel)
	clk := clock.UTC{}
	ids := id.Hex128{}

	handle, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	txm := tx.NewSQLManager(handle)

	webhookStore, err := webhookoutadapter.NewSQLiteStore(handle)
	if err != nil {
		return nil, fmt.Errorf("new webhook store: %w", err)
	}
	webhookLedger, err := webhookoutadapter.NewSQLiteLedger(handle)
	if err != nil {
		return nil, fmt.Errorf("new delivery ledger: %w", err)
	}
	webhookUC := webhookusecase.NewInteractor(
		webhookservice.NewDispatchService(clk, ids, webhookStore, webhookLedger, webhookoutadapter.NewHTTPSender(), log),
		webhookusecase.DefaultsFromConfig(cfg),
	)

	pluginUC := pluginusecase.NewInteractor(pluginservice.NewPluginService(
		pluginoutadapter.NewFileManifestStore(cfg.PluginsPath),
		pluginoutadapter.NewGRPCHost(),
	))

	bus := integrationservice.NewBus(log)
	bus.Register(10, integrationoutadapter.NewWebhookHandler(webhookUC))
	bus.Register(20, integrationoutadapter.NewPluginHandler(pluginUC))
	integrationUC := integrationusecase.NewInteractor(
		bus,
		integrationoutadapter.NewYAMLSettingsStore(cfg.IntegrationsPath),
		webhookUC,
		pluginUC,
		clk,
		ids,
	)

	sessionStore, err := sessionoutadapter.NewSQLiteStore(handle)
	if err != nil {
		return nil, fmt.Errorf("new session store: %w", err)
	}
	sessionUC := sessionusecase.NewInteractor(
		sessionservice.NewSessionService(clk, ids, sessionStore),
		txm,
		integrationUC,
		sessionoutadapter.NewFileExporter(),
		log,
	)

	return &App{
		SessionCLI:     sessioninadapter.NewCLIHandler(sessionUC),
		WebhookCLI:     webhookinadapter.NewCLIHandler(webhookUC),
		IntegrationCLI: integrationinadapter.NewCLIHandler(integrationUC),
		PluginCLI:      plugininadapter.NewCLIHandler(pluginUC),
	}, nil
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.SessionCLI, app.WebhookCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
