// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	sync  key.Binding
	retry key.Binding
	clear key.Binding
	copy  key.Binding
	info  key.Binding
	help  key.Binding
	enter key.Binding
	esc   key.Binding
	quit  key.Binding
}

var keys = keyMap{
	sync:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sync now")),
	retry: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry failed")),
	clear: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear failed")),
	copy:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy status")),
	info:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "about")),
	help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	enter: key.NewBinding(key.WithKeys("enter")),
	esc:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.sync, k.retry, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.sync, k.retry, k.clear},
		{k.copy, k.info, k.help, k.quit},
	}
}
