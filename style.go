package main

import "github.com/charmbracelet/lipgloss"

var (
	keyword   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Render
	warning   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Render
	faint     = lipgloss.NewStyle().Faint(true).Render
	paragraph = lipgloss.NewStyle().Width(78).Padding(0, 0, 0, 2).Render
	label     = lipgloss.NewStyle().Bold(true).Width(14).Render
	heading   = lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1).Render
)
