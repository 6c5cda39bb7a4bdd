package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/aprasetya/kasir/cmd/tui/internal/view"
	"github.com/aprasetya/kasir/internal/config"
	"github.com/aprasetya/kasir/internal/sales"
	"github.com/aprasetya/kasir/internal/sales/client"
)

type model struct {
	salesService *sales.Service

	currentView View

	salesView view.SalesModel
	formView  view.FormModel
}

type View int

const (
	ViewMenu  View = 0
	ViewSales View = 1
	ViewForm  View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store := client.New(cfg.API.BaseURL, cfg.API.Timeout)
	salesSvc := sales.NewService(store)

	return model{
		salesService: salesSvc,
		currentView:  ViewMenu,
		salesView:    view.NewSalesModel(salesSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewSales
				m.salesView = view.NewSalesModel(m.salesService)

				return m, m.salesView.Init()
			case "2":
				m.currentView = ViewForm
				m.formView = view.NewFormModel(m.salesService, 0)

				return m, m.formView.Init()
			}
		}
	case view.OpenFormMsg:
		m.currentView = ViewForm
		m.formView = view.NewFormModel(m.salesService, msg.SaleID)

		return m, m.formView.Init()
	case view.BackMsg:
		// Leaving the form without submit discards the draft; the sales
		// list is always reloaded fresh.
		if m.currentView == ViewForm {
			m.currentView = ViewSales
			m.salesView = view.NewSalesModel(m.salesService)

			return m, m.salesView.Init()
		}

		m.currentView = ViewMenu

		return m, nil
	}

	switch m.currentView {
	case ViewSales:
		var newModel tea.Model
		newModel, cmd = m.salesView.Update(msg)
		m.salesView = newModel.(view.SalesModel)
	case ViewForm:
		var newModel tea.Model
		newModel, cmd = m.formView.Update(msg)
		m.formView = newModel.(view.FormModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Kasir TUI\n\n" +
				"1. Daftar Transaksi\n" +
				"2. Transaksi Baru\n\n" +
				"q. Quit",
		)
	case ViewSales:
		return m.salesView.View()
	case ViewForm:
		return m.formView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
