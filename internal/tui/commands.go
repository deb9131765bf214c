// Package tui renders an interactive progress view of a build.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vito/progrock"
)

// TapeSource yields progrock status updates until it returns an error, io.EOF at the end.
type TapeSource interface {
	Read() (*progrock.StatusUpdate, error)
}

// MsgTapeUpdate carries one status update read from the tape.
type MsgTapeUpdate struct {
	Update *progrock.StatusUpdate
}

// MsgTapeEnded reports that the tape has no more updates.
type MsgTapeEnded struct{}

// WaitForTape returns a Bubble Tea command that reads the next update from the tape.
// Any read error ends the view.
func WaitForTape(tape TapeSource) tea.Cmd {
	return func() tea.Msg {
		update, err := tape.Read()
		if err != nil {
			return MsgTapeEnded{}
		}
		return MsgTapeUpdate{Update: update}
	}
}
