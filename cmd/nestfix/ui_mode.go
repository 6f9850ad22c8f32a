package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode selects the progress view of multi-file fmt runs.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	mode := uiMode(strings.ToLower(strings.TrimSpace(value)))
	switch mode {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return mode, nil
	}
	return "", fmt.Errorf("fmt: invalid --ui value %q (expected auto|on|off)", value)
}

// shouldUseTUI resolves auto against the terminal the view would draw on.
func shouldUseTUI(mode uiMode, out *os.File) bool {
	if mode == uiModeAuto {
		return out != nil && isTerminal(out)
	}
	return mode == uiModeOn
}
