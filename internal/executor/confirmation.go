package executor

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pterm/pterm"

	"github.com/unilang/unilang/pkg/command"
	"github.com/unilang/unilang/pkg/secrets"
)

// ConfirmFunc asks the user to approve message.
type ConfirmFunc func(message string) (bool, error)

// DestructiveTag marks a command that must be confirmed before it runs.
const DestructiveTag = "destructive"

// RequiresConfirmation reports whether def must be confirmed: it is tagged
// destructive or hints at an HTTP DELETE.
func RequiresConfirmation(def *command.CommandDefinition) bool {
	if def == nil {
		return false
	}
	return slices.Contains(def.Tags, DestructiveTag) || strings.EqualFold(def.HTTPMethodHint, "DELETE")
}

// ConfirmationMessage describes cmd with its arguments, sensitive values
// masked.
func ConfirmationMessage(cmd *command.VerifiedCommand) string {
	detector := secrets.NewDefaultDetector()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Run '%s'", cmd.Name)
	for i, name := range cmd.ArgumentNames() {
		if i == 0 {
			sb.WriteString(" with")
		}
		fmt.Fprintf(&sb, " %s::%s", name, detector.MaskArgument(cmd, name))
	}
	sb.WriteString("?")
	return sb.String()
}

// ShowConfirmationPrompt displays a confirmation prompt to the user.
func ShowConfirmationPrompt(message string) (bool, error) {
	styledMessage := pterm.DefaultBox.
		WithTitle("Confirmation Required").
		WithTitleTopCenter().
		WithBoxStyle(pterm.NewStyle(pterm.FgYellow)).
		Sprint(message)

	pterm.Println()
	pterm.Println(styledMessage)
	pterm.Println()

	confirmed, err := pterm.DefaultInteractiveConfirm.
		WithDefaultText("Do you want to continue?").
		WithDefaultValue(false).
		Show()
	if err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}

	if !confirmed {
		pterm.Info.Println("Operation canceled by user")
	}
	return confirmed, nil
}
