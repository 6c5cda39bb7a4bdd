package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// OpenFormMsg asks the root model to open the transaction form. SaleID is
// zero for a new transaction, the record id for edit mode.
type OpenFormMsg struct {
	SaleID int64
}
