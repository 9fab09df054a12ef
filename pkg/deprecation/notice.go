// Package deprecation warns about deprecated and unstable commands.
package deprecation

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/unilang/unilang/pkg/command"
)

// WarningLevel represents the urgency of a notice.
type WarningLevel string

const (
	// WarningLevelInfo is shown at most once per cooldown period.
	WarningLevelInfo WarningLevel = "info"
	// WarningLevelWarning is shown every time.
	WarningLevelWarning WarningLevel = "warning"
)

// Notice describes why a command deserves a warning.
type Notice struct {
	Command string
	Status  command.Status
	Message string
	Level   WarningLevel
}

// Detect returns a notice for deprecated, beta and experimental commands,
// or nil for stable ones.
func Detect(def *command.CommandDefinition) *Notice {
	n := &Notice{Command: def.FullName(), Status: def.Status}
	switch {
	case def.IsDeprecated():
		n.Level = WarningLevelWarning
		n.Message = def.DeprecationMessage
	case def.Status == command.StatusExperimental, def.Status == command.StatusBeta:
		n.Level = WarningLevelInfo
	default:
		return nil
	}
	return n
}

// DetectAll returns the notices of defs in order, skipping stable commands.
func DetectAll(defs []*command.CommandDefinition) []*Notice {
	var notices []*Notice
	for _, def := range defs {
		if n := Detect(def); n != nil {
			notices = append(notices, n)
		}
	}
	return notices
}

// FormatWarning renders a notice as one plain line.
func FormatWarning(n *Notice) string {
	var sb strings.Builder
	switch n.Status {
	case command.StatusDeprecated:
		fmt.Fprintf(&sb, "Command '%s' is deprecated", n.Command)
	default:
		fmt.Fprintf(&sb, "Command '%s' is %s and may change without notice", n.Command, n.Status)
	}
	if n.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(n.Message)
	}
	return sb.String()
}

// Styled renders a notice with the pterm prefix matching its level.
func Styled(n *Notice) string {
	if n.Level == WarningLevelWarning {
		return pterm.Warning.Sprint(FormatWarning(n))
	}
	return pterm.Info.Sprint(FormatWarning(n))
}
