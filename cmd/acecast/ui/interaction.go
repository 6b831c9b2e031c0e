package ui

import (
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	envNoInteraction = "NO_INTERACTION"
	envCI            = "CI"
	envTerm          = "TERM"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("cancelled")

// ErrNoInteraction is returned when a prompt is needed but the terminal
// is non-interactive. Hint names the flag that supplies the value
// instead.
type ErrNoInteraction struct {
	Hint string
}

func (e *ErrNoInteraction) Error() string {
	if e.Hint == "" {
		return "terminal is not interactive"
	}
	return "terminal is not interactive (" + e.Hint + ")"
}

var interactive = detectInteractiveMode()

func init() {
	if !interactive {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsInteractive reports whether prompts can be shown.
func IsInteractive() bool { return interactive }

// RequireInteraction returns an *ErrNoInteraction carrying bypassHint
// when the terminal cannot prompt.
func RequireInteraction(bypassHint string) error {
	if interactive {
		return nil
	}
	return &ErrNoInteraction{Hint: bypassHint}
}

func detectInteractiveMode() bool {
	if envTruthy(envNoInteraction) || envTruthy(envCI) {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(envTerm)), "dumb") {
		return false
	}
	return stderrIsTerminal() && stdinIsTerminal()
}

func stderrIsTerminal() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func envTruthy(key string) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
