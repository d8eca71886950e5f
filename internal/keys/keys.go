package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the live progress view.
type KeyMap struct {
	// Cancel stops the run. The task keeps its last recorded status.
	Cancel key.Binding

	// ToggleThoughts switches between the one-line progress description and
	// the full thought log.
	ToggleThoughts key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Cancel: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("ctrl+c", "cancel"),
		),
		ToggleThoughts: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "toggle thoughts"),
		),
	}
}

// ShortHelp returns the bindings shown under the spinner. Disabled
// bindings are left out by the help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Cancel, k.ToggleThoughts}
}

// FullHelp returns the same bindings as ShortHelp in one group.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
