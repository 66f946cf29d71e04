package conda

import (
	"context"

	"github.com/bioidiap/idiap-devtools/internal/cli/logging"
	"github.com/bioidiap/idiap-devtools/pkg/telemetry"
)

// loggingBuilder decorates a Builder with structured logging.
type loggingBuilder struct {
	next   Builder
	logger telemetry.StructuredLogger
}

// NewLoggingBuilder wraps the provided builder with structured logging
// support. If next is nil, a noop builder is used. When logger is nil, the
// original builder is returned.
func NewLoggingBuilder(next Builder, logger telemetry.StructuredLogger) Builder {
	if next == nil {
		next = noopBuilder{}
	}
	if logger == nil {
		return next
	}
	return &loggingBuilder{next: next, logger: logger}
}

type noopBuilder struct{}

func (noopBuilder) Build(context.Context, *BuildRequest) error { return nil }

func (l *loggingBuilder) Build(ctx context.Context, req *BuildRequest) error {
	metadata := map[string]string{}
	profileAlias := ""
	command := ""
	if req != nil && req.Settings != nil {
		metadata["tool"] = string(req.Settings.Tool)
		metadata["recipe"] = req.Settings.Recipe
		if req.Settings.PythonVersion != "" {
			metadata["python"] = req.Settings.PythonVersion
		}
		if req.Settings.PlatformTag != "" {
			metadata["platform"] = req.Settings.PlatformTag
		}
		name, args := buildArgs(req.Settings, "<variant-config>")
		command = logging.SanitizeCommand(append([]string{name}, args...))
	}
	if req != nil && req.Profile != nil {
		profileAlias = req.Profile.Alias
	}

	_ = l.logger.Emit(telemetry.Entry{
		Category: telemetry.CategoryCommand,
		Message:  "package build start",
		Severity: telemetry.SeverityInfo,
		Command:  command,
		Profile:  profileAlias,
		Metadata: cloneMetadata(metadata),
		Step:     "build",
	})

	err := l.next.Build(ctx, req)

	severity := telemetry.SeverityInfo
	if err != nil {
		severity = telemetry.SeverityError
	}
	_ = l.logger.Emit(telemetry.Entry{
		Category: telemetry.CategoryCommand,
		Message:  "package build complete",
		Severity: severity,
		Command:  command,
		Profile:  profileAlias,
		Metadata: cloneMetadata(metadata),
		Error:    err,
		Step:     "build",
	})

	return err
}

func cloneMetadata(src map[string]string) map[string]string {
	if len(src) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
