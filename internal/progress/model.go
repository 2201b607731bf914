// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package progress renders a live bubbletea progress display for an
// interactive `tia run`, driven by the same (completed, total, target,
// result) shape the sequence orchestrator's Callbacks.OnJobComplete
// reports.
package progress

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/tia/internal/testengine"
)

var (
	styleLabel   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2CD7C7"))
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2C4A54"))
	stylePass    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2CD7C7"))
	styleFail    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C"))
	styleTimeout = lipgloss.NewStyle().Foreground(lipgloss.Color("#F4D03F"))
)

// JobMsg reports one completed job, mirroring
// sequence.Callbacks.OnJobComplete's arguments.
type JobMsg struct {
	Completed int
	Total     int
	Target    string
	Result    testengine.TestRunResult
}

// StartMsg reports the total job count for the run about to begin.
type StartMsg struct {
	Total int
}

// DoneMsg signals the run has finished.
type DoneMsg struct{}

// Model is the bubbletea model for a sequence run's live progress.
type Model struct {
	phase    string
	bar      progress.Model
	total    int
	done     int
	lastJob  string
	failures int
	finished bool
}

// New builds a Model for a run labeled by phase (the mode name shown in
// the header).
func New(phase string) Model {
	return Model{
		phase: phase,
		bar:   progress.New(progress.WithDefaultGradient()),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 4
		return m, nil
	case StartMsg:
		m.total = msg.Total
		m.done = 0
		return m, nil
	case JobMsg:
		m.done = msg.Completed
		m.total = msg.Total
		m.lastJob = msg.Target
		if msg.Result == testengine.TestFailures || msg.Result == testengine.FailedToExecute {
			m.failures++
		}
		var cmd tea.Cmd
		if m.total > 0 {
			cmd = m.bar.SetPercent(float64(m.done) / float64(m.total))
		}
		return m, cmd
	case DoneMsg:
		m.finished = true
		return m, tea.Quit
	case progress.FrameMsg:
		newModel, cmd := m.bar.Update(msg)
		m.bar = newModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styleLabel.Render(fmt.Sprintf("tia · %s", m.phase)))
	b.WriteString("\n\n")
	b.WriteString(m.bar.View())
	b.WriteString("\n")
	b.WriteString(styleMuted.Render(fmt.Sprintf("%d/%d targets", m.done, m.total)))

	if m.lastJob != "" {
		b.WriteString("  ")
		b.WriteString(styleMuted.Render(lastJobLabel(m.lastJob)))
	}
	if m.failures > 0 {
		b.WriteString("  ")
		b.WriteString(styleFail.Render(fmt.Sprintf("%d failing", m.failures)))
	}
	b.WriteString("\n")

	if m.finished {
		if m.failures == 0 {
			b.WriteString(stylePass.Render("done — all tests pass"))
		} else {
			b.WriteString(styleFail.Render("done — failures detected"))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func lastJobLabel(target string) string {
	return fmt.Sprintf("last: %s", target)
}

// resultStyle maps a TestRunResult to its display style for a
// per-target line printed outside the bar itself. Nothing in this
// package calls it.
func resultStyle(r testengine.TestRunResult) lipgloss.Style {
	switch r {
	case testengine.AllTestsPass:
		return stylePass
	case testengine.TestFailures, testengine.FailedToExecute:
		return styleFail
	case testengine.Timeout:
		return styleTimeout
	default:
		return styleMuted
	}
}
