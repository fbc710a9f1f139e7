// Package msg defines the message types used by the TUI's Bubbletea event loop
// and the command factories that produce them.
//
// Every network call runs inside a [tea.Cmd] and comes back as one of these
// messages. The screens only mutate their state from Update, so view state is
// never shared with a running command.
package msg
