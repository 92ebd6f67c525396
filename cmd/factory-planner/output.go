package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/rsned/factory-planner/internal/factory/config"
	"github.com/rsned/factory-planner/internal/factory/result"
)

var (
	errorColor  = color.New(color.FgRed)
	titleColor  = color.New(color.FgCyan, color.Bold)
	headerColor = color.New(color.Bold)
	faintColor  = color.New(color.Faint)
)

// writeResult prints res as its text report or as its message in JSON or
// YAML.
func writeResult(w io.Writer, format string, res result.Result, crumbs *result.Breadcrumbs) error {
	switch format {
	case config.FormatJSON:
		return writeJSON(w, res.Message(crumbs))
	case config.FormatYAML:
		return writeYAML(w, res.Message(crumbs))
	}

	if e, ok := res.(result.Error); ok {
		_, err := errorColor.Fprintln(w, e.Text)
		return err
	}
	for _, line := range strings.Split(res.String(), "\n") {
		var err error
		switch {
		case strings.HasPrefix(line, "==="):
			_, err = titleColor.Fprintln(w, line)
		case line != "" && line == strings.ToUpper(line) && !strings.ContainsAny(line, "0123456789-"):
			_, err = headerColor.Fprintln(w, line)
		default:
			_, err = fmt.Fprintln(w, line)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// writeMessage prints a message the way a chat client would lay it out.
func writeMessage(w io.Writer, m *result.Message) {
	if m.Content != "" {
		faintColor.Fprintln(w, m.Content)
	}
	if e := m.Embed; e != nil {
		titleColor.Fprintln(w, e.Title)
		if e.Description != "" {
			fmt.Fprintln(w, e.Description)
		}
		for _, f := range e.Fields {
			headerColor.Fprintln(w, f.Name)
			fmt.Fprintln(w, f.Value)
		}
		if e.Footer != "" {
			faintColor.Fprintln(w, e.Footer)
		}
	}
	if m.Attachment != nil {
		faintColor.Fprintf(w, "(attachment %s, %d bytes)\n", m.Attachment.Name, len(m.Attachment.Content))
	}
	if len(m.Reactions) > 0 {
		names := make([]string, 0, len(m.Reactions))
		for _, r := range m.Reactions {
			names = append(names, ":"+r.Name())
		}
		faintColor.Fprintln(w, strings.Join(names, " "))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
