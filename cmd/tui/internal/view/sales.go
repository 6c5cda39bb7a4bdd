package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/aprasetya/kasir/internal/sales"
)

type salesState int

const (
	salesStateBrowse salesState = iota
	salesStateSearch
	salesStateConfirmDelete
)

type SalesModel struct {
	CommonModel
	svc *sales.Service

	state salesState
	table table.Model
	txs   []*sales.Transaction

	searchInput textinput.Model
	filter      sales.ListFilter

	deleteTarget *sales.Transaction

	loading bool
	err     error
	status  string
}

func NewSalesModel(svc *sales.Service) SalesModel {
	columns := []table.Column{
		{Title: "No Transaksi", Width: 14},
		{Title: "Tanggal", Width: 12},
		{Title: "Nama Customer", Width: 22},
		{Title: "Barang", Width: 7},
		{Title: "Sub Total", Width: 13},
		{Title: "Diskon", Width: 11},
		{Title: "Ongkir", Width: 11},
		{Title: "Total", Width: 13},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	si := textinput.New()
	si.Placeholder = "customer name"
	si.Prompt = "Search: "
	si.Width = 30

	return SalesModel{
		svc:         svc,
		table:       t,
		searchInput: si,
	}
}

func (m SalesModel) Title() string { return "Daftar Transaksi" }

func (m SalesModel) ShortHelp() string {
	switch m.state {
	case salesStateSearch:
		return "Enter: search | Esc: clear"
	case salesStateConfirmDelete:
		return "y: delete | n: cancel"
	}

	return "Esc: back | n: new | Enter: edit | d: delete | /: search | r: refresh"
}

func (m SalesModel) Init() tea.Cmd {
	return m.loadSalesCmd()
}

func (m SalesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadSalesMsg:
		if msg.filter != m.filter {
			// Answer to a search that has since been replaced; a newer
			// load is still in flight.
			return m, nil
		}

		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.txs = msg.txs
		m.refreshTable()

		return m, nil

	case deleteSaleMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error deleting: %v", msg.err)
			return m, nil
		}

		m.status = "Deleted."

		return m, m.loadSalesCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case salesStateBrowse:
		return m.updateBrowse(msg)
	case salesStateSearch:
		return m.updateSearch(msg)
	case salesStateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	return m, nil
}

func (m SalesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadSalesCmd()
		case "/":
			m.state = salesStateSearch
			m.searchInput.SetValue(m.filter.Search)
			m.searchInput.Focus()
			m.table.Blur()

			return m, textinput.Blink
		case "n":
			return m, func() tea.Msg { return OpenFormMsg{} }
		case "enter":
			if tx := m.selected(); tx != nil {
				id := tx.ID
				return m, func() tea.Msg { return OpenFormMsg{SaleID: id} }
			}
		case "d":
			if tx := m.selected(); tx != nil {
				m.deleteTarget = tx
				m.state = salesStateConfirmDelete
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m SalesModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.state = salesStateBrowse
			m.searchInput.Blur()
			m.table.Focus()
			m.filter.Search = ""
			m.loading = true

			return m, m.loadSalesCmd()
		case tea.KeyEnter:
			m.state = salesStateBrowse
			m.searchInput.Blur()
			m.table.Focus()
			m.filter.Search = m.searchInput.Value()
			m.loading = true

			return m, m.loadSalesCmd()
		}
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	return m, cmd
}

func (m SalesModel) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y":
		target := m.deleteTarget
		m.deleteTarget = nil
		m.state = salesStateBrowse

		return m, m.deleteSaleCmd(target.ID)
	case "n", "esc":
		m.deleteTarget = nil
		m.state = salesStateBrowse
	}

	return m, nil
}

func (m SalesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading sales...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("Error: %v\n\n(r to retry, Esc to back)", m.err),
		)
	}

	header := m.searchInput.View()
	if m.state != salesStateSearch && m.filter.Search == "" {
		header = lipgloss.NewStyle().Faint(true).Render("All customers ( / to search)")
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	grandTotal := decimal.Zero
	for _, tx := range m.txs {
		grandTotal = grandTotal.Add(tx.AmountPayable)
	}

	footer := fmt.Sprintf("%d transactions | Grand Total: %s", len(m.txs), FormatPrice(grandTotal))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		lipgloss.NewStyle().PaddingTop(1).Render(footer),
	)

	if m.state == salesStateConfirmDelete && m.deleteTarget != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Render(fmt.Sprintf(
				"Delete %s (%s)?\n\nThis cannot be undone.\n\n[y] delete  [n] cancel",
				m.deleteTarget.Number, m.deleteTarget.CustomerName,
			))

		content = lipgloss.JoinVertical(lipgloss.Left, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m SalesModel) selected() *sales.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m *SalesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			tx.Number,
			FormatDate(tx.Date),
			tx.CustomerName,
			fmt.Sprintf("%d", tx.ItemCount),
			FormatPrice(tx.Subtotal),
			FormatPrice(tx.HeaderDiscount),
			FormatPrice(tx.ShippingFee),
			FormatPrice(tx.AmountPayable),
		})
	}

	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

// Messages

// loadSalesMsg carries the filter it answered so stale responses from a
// superseded search can be recognized and dropped.
type loadSalesMsg struct {
	filter sales.ListFilter
	txs    []*sales.Transaction
	err    error
}

func (m SalesModel) loadSalesCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := ReqCtx()
		defer cancel()

		txs, err := m.svc.List(ctx, filter)

		return loadSalesMsg{filter: filter, txs: txs, err: err}
	}
}

type deleteSaleMsg struct {
	err error
}

func (m SalesModel) deleteSaleCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := ReqCtx()
		defer cancel()

		return deleteSaleMsg{err: m.svc.Delete(ctx, id)}
	}
}
