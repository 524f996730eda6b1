package in

import (
	"context"

	"stint/internal/modules/integration/dto"
	integrationin "stint/internal/modules/integration/port/in"
)

type CLIHandler struct {
	usecase integrationin.Usecase
}

func NewCLIHandler(usecase integrationin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Status(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) Stats(ctx context.Context) (dto.StatsOutput, error) {
	return h.usecase.Stats(ctx)
}

// Enable turns on the global flag when handler is empty, otherwise the
// named handler group.
func (h CLIHandler) Enable(ctx context.Context, handler string) (dto.SetEnabledOutput, error) {
	return h.usecase.SetEnabled(ctx, dto.SetEnabledInput{Handler: handler, Enabled: true})
}

func (h CLIHandler) Disable(ctx context.Context, handler string) (dto.SetEnabledOutput, error) {
	return h.usecase.SetEnabled(ctx, dto.SetEnabledInput{Handler: handler, Enabled: false})
}

func (h CLIHandler) Retry(ctx context.Context) (dto.RetryOutput, error) {
	return h.usecase.ProcessRetries(ctx)
}
