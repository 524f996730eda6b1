package in

import (
	"context"

	sessiondto "stint/internal/modules/session/dto"
	sessionin "stint/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, description string, tags []string, project string) (sessiondto.StartOutput, error) {
	return h.usecase.Start(ctx, sessiondto.StartInput{Description: description, Tags: tags, Project: project})
}

func (h CLIHandler) Pause(ctx context.Context) (sessiondto.PauseOutput, error) {
	return h.usecase.Pause(ctx)
}

func (h CLIHandler) Resume(ctx context.Context) (sessiondto.ResumeOutput, error) {
	return h.usecase.Resume(ctx)
}

func (h CLIHandler) Stop(ctx context.Context) (sessiondto.StopOutput, error) {
	return h.usecase.Stop(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (sessiondto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) Log(ctx context.Context, filter sessiondto.LogFilter) (sessiondto.LogOutput, error) {
	return h.usecase.Log(ctx, filter)
}

func (h CLIHandler) Export(ctx context.Context, input sessiondto.ExportInput) (sessiondto.ExportOutput, error) {
	return h.usecase.Export(ctx, input)
}
