package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrNotInteractive is returned when a prompt needs a terminal and has none.
var ErrNotInteractive = errors.New("not running in a terminal; pass --yes to skip the prompt")

// Confirm prompts the user for yes/no confirmation.
func Confirm(prompt string, defaultYes bool) (bool, error) {
	if !Interactive() {
		return false, ErrNotInteractive
	}

	label := prompt
	if defaultYes {
		label += " [Y/n]"
	} else {
		label += " [y/N]"
	}

	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Default:   "",
	}

	if defaultYes {
		p.Default = "y"
	}

	result, err := p.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		if errors.Is(err, promptui.ErrInterrupt) {
			return false, err
		}
		return defaultYes, nil // Return default on error
	}

	result = strings.ToLower(strings.TrimSpace(result))
	if result == "" {
		return defaultYes, nil
	}

	return result == "y" || result == "yes", nil
}

// SelectMultiple prompts the user to select multiple items.
// promptui has no multi-select, so the choice is typed as item numbers.
func SelectMultiple(items []string, prompt string) ([]string, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("no items to select from")
	}
	if !Interactive() {
		return nil, ErrNotInteractive
	}

	fmt.Fprintln(Out, prompt)
	fmt.Fprintln(Out, "Enter numbers separated by spaces (e.g., '1 3 5'), or 'all' for all items:")
	fmt.Fprintln(Out)

	for i, item := range items {
		fmt.Fprintf(Out, "  %d. %s\n", i+1, item)
	}

	fmt.Fprintln(Out)

	p := promptui.Prompt{
		Label:   "Selection",
		Default: "all",
	}

	result, err := p.Run()
	if err != nil {
		return nil, err
	}

	return ParseSelection(result, items), nil
}

// ParseSelection turns "1 3" or "all" into the chosen items. Out of range
// and repeated numbers are ignored.
func ParseSelection(input string, items []string) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	if strings.ToLower(input) == "all" {
		return append([]string(nil), items...)
	}

	var selected []string
	seen := make(map[int]bool)
	for _, part := range strings.Fields(strings.ReplaceAll(input, ",", " ")) {
		var idx int
		if _, err := fmt.Sscanf(part, "%d", &idx); err == nil {
			if idx >= 1 && idx <= len(items) && !seen[idx] {
				seen[idx] = true
				selected = append(selected, items[idx-1])
			}
		}
	}

	return selected
}
