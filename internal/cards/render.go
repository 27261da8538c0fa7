package cards

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Renderer regenerates a local card artifact under a given spoil class. The
// engine never trusts a renderer-reported size; it re-stats the produced file
// itself.
type Renderer interface {
	Render(ctx context.Context, series SeriesInfo, episode *Episode, class Class) error
}

// NopRenderer performs no work. Used when cards are produced by an external
// pipeline ahead of the sync pass.
type NopRenderer struct{}

func (NopRenderer) Render(context.Context, SeriesInfo, *Episode, Class) error { return nil }

// CommandRenderer shells out to a configured command template. The
// placeholders {file}, {class}, {series}, and {episode} are substituted
// before execution.
type CommandRenderer struct {
	Template string
	Logger   *slog.Logger
}

// NewCommandRenderer builds a renderer around the given command template.
func NewCommandRenderer(template string, logger *slog.Logger) *CommandRenderer {
	return &CommandRenderer{Template: template, Logger: logger}
}

func (r *CommandRenderer) Render(ctx context.Context, series SeriesInfo, episode *Episode, class Class) error {
	if strings.TrimSpace(r.Template) == "" {
		return fmt.Errorf("render %s %s: no render command configured", series, episode.Key.Code())
	}

	replacer := strings.NewReplacer(
		"{file}", episode.CardPath,
		"{class}", string(class),
		"{series}", series.FullName,
		"{episode}", episode.Key.Code(),
	)
	parts := strings.Fields(replacer.Replace(r.Template))
	if len(parts) == 0 {
		return fmt.Errorf("render %s %s: empty render command", series, episode.Key.Code())
	}

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("render %s %s: %w: %s", series, episode.Key.Code(), err, strings.TrimSpace(string(output)))
	}
	if r.Logger != nil {
		r.Logger.Debug("card regenerated",
			slog.String("series", series.String()),
			slog.String("episode", episode.Key.Code()),
			slog.String("class", string(class)))
	}
	return nil
}
