package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/flytaly/mdtree/pkg/log"
	"github.com/gookit/color"
)

func header(path string, tree bool) string {
	mode := "render"
	if tree {
		mode = "tree"
	}
	return fmt.Sprintf(" %s  Watching: %s [%s]",
		color.Green.Sprint("➜"),
		color.Cyan.Sprint(path),
		mode)
}

func errorLine(msg string) string {
	return fmt.Sprintf(" %s %s", color.Red.Sprint("✗"), msg)
}

func printLogs(logs []log.Record) string {
	var b strings.Builder
	for _, rec := range logs {
		b.WriteString(" ")
		b.WriteString(color.Gray.Sprint(rec.String()))
		b.WriteString("\n")
	}
	return b.String()
}

func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, fmt.Sprintf("%s %s", color.Bold.Sprint(h.Key), h.Desc))
	}
	return " " + color.Gray.Sprint(strings.Join(parts, " • "))
}
