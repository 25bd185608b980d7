package listing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/coinwatch/topn/pkg/percent"
	"github.com/coinwatch/topn/pkg/value"
)

// Drafter turns a rendered prompt into message text.
type Drafter interface {
	Draft(ctx context.Context, prompt string) (string, error)
}

// Sources holds the two templates a message is produced from.
type Sources struct {
	Fallback percent.TemplateString
	Prompt   percent.TemplateString
}

// Compose produces the message text for root. With a drafter, the prompt is
// rendered and drafted first; an error or an empty draft falls back to the
// fallback template. drafted reports which path produced the text.
func Compose(ctx context.Context, src Sources, root value.Value, d Drafter) (text string, drafted bool) {
	if d != nil && src.Prompt != "" {
		prompt := src.Prompt.Render(root)
		slog.Debug("drafting message", "prompt", prompt)
		out, err := d.Draft(ctx, prompt)
		if err != nil {
			slog.Warn("drafting failed, using fallback template", "error", err)
		} else if clean := SanitizeDraft(out); clean != "" {
			return clean, true
		} else {
			slog.Warn("draft was empty, using fallback template")
		}
	}
	return src.Fallback.Render(root), false
}

// SanitizeDraft strips a surrounding code fence and its "markdown" language
// tag from drafted text.
func SanitizeDraft(text string) string {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimPrefix(s, "markdown")
	return strings.TrimSpace(s)
}

// ExecDrafter drafts by piping the prompt to an external command and reading
// its standard output.
type ExecDrafter struct {
	Argv []string
	// Timeout bounds a single invocation. Zero means no limit beyond ctx.
	Timeout time.Duration
}

func (e ExecDrafter) Draft(ctx context.Context, prompt string) (string, error) {
	if len(e.Argv) == 0 {
		return "", errors.New("draft command is empty")
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, e.Argv[0], e.Argv[1:]...)
	cmd.Stdin = strings.NewReader(prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("running %s: %w: %s", e.Argv[0], err, msg)
		}
		return "", fmt.Errorf("running %s: %w", e.Argv[0], err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

var _ Drafter = ExecDrafter{}
