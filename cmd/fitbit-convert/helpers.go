package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// stdoutIsTerminal reports whether stdout is an interactive terminal. Colors
// and table styling are disabled when it is not.
func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func successColor() *color.Color {
	c := color.New(color.FgGreen, color.Bold)
	if !stdoutIsTerminal() {
		c.DisableColor()
	}
	return c
}

func warnColor() *color.Color {
	c := color.New(color.FgYellow, color.Bold)
	if !stdoutIsTerminal() {
		c.DisableColor()
	}
	return c
}
