package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode selects the live contract list shown while `check` runs.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

// envUI overrides --ui when the flag is left at its default.
const envUI = "KEYSTONE_UI"

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on", "true", "1":
		return uiModeOn, nil
	case "off", "false", "0":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// uiFromFlagOrEnv reads --ui, falling back to KEYSTONE_UI when the flag
// was not given.
func uiFromFlagOrEnv(flag string, changed bool) (uiMode, error) {
	if !changed {
		if v, ok := os.LookupEnv(envUI); ok {
			mode, err := readUIMode(v)
			if err != nil {
				return "", fmt.Errorf("%s: %w", envUI, err)
			}
			return mode, nil
		}
	}
	return readUIMode(flag)
}

// shouldUseTUI decides for auto mode: the progress list is drawn on
// stderr, so it needs a terminal there and is off on CI runners.
func shouldUseTUI(mode uiMode, stderr *os.File) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	if os.Getenv("CI") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal(stderr)
}
