package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"storyboard/internal/project"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var titleCaser = cases.Title(language.English)

// titleLabel renders an enum value like "draft" as "Draft".
func titleLabel(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return titleCaser.String(value)
}

func sceneStatusLabel(status project.SceneStatus, colorize bool) string {
	label := titleLabel(string(status))
	if !colorize {
		return label
	}
	switch status {
	case project.StatusApproved:
		return ansiGreen + label + ansiReset
	case project.StatusDraft:
		return ansiYellow + label + ansiReset
	default:
		return label
	}
}

func runStatusLabel(status project.RunStatus, colorize bool) string {
	label := titleLabel(string(status))
	if !colorize {
		return label
	}
	switch status {
	case project.RunCompleted:
		return ansiGreen + label + ansiReset
	case project.RunFailed:
		return ansiRed + label + ansiReset
	case project.RunRunning:
		return ansiBlue + label + ansiReset
	default:
		return label
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func dash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
