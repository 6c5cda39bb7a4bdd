package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/aprasetya/kasir/internal/pricing"
	"github.com/aprasetya/kasir/internal/sales"
	"github.com/aprasetya/kasir/internal/session"
)

type formState int

const (
	formStateLoading formState = iota
	formStateHeader
	formStateItems
	formStateItemDialog
	formStateTotals
	formStateSubmitting
)

type FormModel struct {
	CommonModel
	svc    *sales.Service
	saleID int64 // zero for a new transaction

	state formState
	sess  *session.Session

	products  []sales.Product
	customers []sales.Customer

	headerForm *huh.Form
	itemForm   *huh.Form
	totalsForm *huh.Form
	table      table.Model

	// Form field bindings
	formDate       string
	formCustKode   string
	formBarangKode string
	formQty        string
	formPct        string
	formDiskon     string
	formOngkir     string
	formConfirm    bool

	status string
	err    error
}

func NewFormModel(svc *sales.Service, saleID int64) FormModel {
	columns := []table.Column{
		{Title: "Kode", Width: 8},
		{Title: "Nama Barang", Width: 20},
		{Title: "Qty", Width: 5},
		{Title: "Bandrol", Width: 12},
		{Title: "Diskon %", Width: 9},
		{Title: "Diskon Rp", Width: 12},
		{Title: "Harga Diskon", Width: 13},
		{Title: "Total", Width: 13},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(8),
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

	return FormModel{
		svc:    svc,
		saleID: saleID,
		state:  formStateLoading,
		table:  t,
	}
}

func (m FormModel) Title() string {
	if m.saleID > 0 {
		return "Edit Transaksi"
	}

	return "Transaksi Baru"
}

func (m FormModel) ShortHelp() string {
	switch m.state {
	case formStateItems:
		return "a: add barang | Enter: edit | d: remove | t: totals/submit | h: header | Esc: discard"
	case formStateHeader, formStateItemDialog, formStateTotals:
		return "Navigate form | Esc: cancel"
	}

	return ""
}

func (m FormModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case formLoadMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.products = msg.products
		m.customers = msg.customers

		if msg.tx != nil {
			m.sess = session.Hydrate(*msg.tx)
		} else {
			m.sess = session.New()
		}

		return m.enterHeader()

	case formSaveMsg:
		if msg.err != nil {
			// The draft is untouched: fix and resubmit.
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			m.state = formStateItems
			m.table.Focus()

			return m, nil
		}

		return m, Back

	case tea.WindowSizeMsg:
		return m, nil
	}

	switch m.state {
	case formStateLoading:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}

		return m, nil
	case formStateHeader:
		return m.updateHeader(msg)
	case formStateItems:
		return m.updateItems(msg)
	case formStateItemDialog:
		return m.updateItemDialog(msg)
	case formStateTotals:
		return m.updateTotals(msg)
	}

	return m, nil
}

func (m FormModel) enterHeader() (tea.Model, tea.Cmd) {
	if m.formDate == "" {
		m.formDate = m.sess.Draft.Date.Format(time.DateOnly)
	}

	if m.formCustKode == "" && m.sess.Draft.CustomerID != 0 {
		for _, c := range m.customers {
			if c.ID == m.sess.Draft.CustomerID {
				m.formCustKode = c.Code
				break
			}
		}
	}

	options := make([]huh.Option[string], len(m.customers))
	for i, c := range m.customers {
		options[i] = huh.NewOption(fmt.Sprintf("%s (%s)", c.Name, c.Code), c.Code)
	}

	m.headerForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("tgl").
				Title("Tanggal (YYYY-MM-DD)").
				Value(&m.formDate).
				Validate(func(s string) error {
					if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("use YYYY-MM-DD")
					}
					return nil
				}),

			huh.NewSelect[string]().
				Key("customer").
				Title("Customer").
				Options(options...).
				Value(&m.formCustKode),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = formStateHeader

	return m, m.headerForm.Init()
}

func (m FormModel) updateHeader(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			if len(m.sess.Draft.Items) == 0 && m.sess.Draft.CustomerID == 0 {
				return m, Back // nothing entered yet, discard the draft
			}

			m.state = formStateItems
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.headerForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.headerForm = f
	}

	if m.headerForm.State != huh.StateCompleted {
		return m, cmd
	}

	if date, err := time.Parse(time.DateOnly, strings.TrimSpace(m.formDate)); err == nil {
		m.sess.SetDate(date)
	}

	if c, ok := m.customerByKode(m.formCustKode); ok {
		m.sess.SetCustomer(c)
	}

	m.refreshItems()
	m.state = formStateItems
	m.table.Focus()

	return m, nil
}

func (m FormModel) updateItems(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back // draft discarded on navigation away
		case "a":
			m.sess.StartAdd()
			return m.enterItemDialog()
		case "enter":
			if code := m.selectedCode(); code != "" && m.sess.StartEdit(code) {
				return m.enterItemDialog()
			}
		case "d":
			if code := m.selectedCode(); code != "" {
				m.sess.RemoveItem(code)
				m.refreshItems()
			}

			return m, nil
		case "t":
			return m.enterTotals()
		case "h":
			return m.enterHeader()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m FormModel) enterItemDialog() (tea.Model, tea.Cmd) {
	buf := m.sess.Buffer()

	m.formBarangKode = buf.ProductCode
	m.formQty = strconv.FormatInt(buf.Quantity, 10)
	m.formPct = buf.DiscountPercent.String()

	options := make([]huh.Option[string], len(m.products))
	for i, p := range m.products {
		options[i] = huh.NewOption(fmt.Sprintf("%s (%s)", p.Name, p.Code), p.Code)
	}

	m.itemForm = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("barang").
				Title("Nama Barang").
				Options(options...).
				Value(&m.formBarangKode),

			huh.NewInput().
				Key("qty").
				Title("Quantity").
				Value(&m.formQty).
				Validate(func(s string) error {
					n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
					if err != nil || n < 1 {
						return fmt.Errorf("quantity must be a whole number >= 1")
					}
					return nil
				}),

			huh.NewInput().
				Key("diskon_pct").
				Title("Diskon (%)").
				Value(&m.formPct).
				Validate(func(s string) error {
					pct, err := decimal.NewFromString(strings.TrimSpace(s))
					if err != nil || pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
						return fmt.Errorf("discount must be between 0 and 100")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = formStateItemDialog
	m.table.Blur()

	return m, m.itemForm.Init()
}

func (m FormModel) updateItemDialog(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.sess.Cancel()
			m.state = formStateItems
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.itemForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.itemForm = f
	}

	if m.itemForm.State != huh.StateCompleted {
		return m, cmd
	}

	p, ok := m.productByKode(m.formBarangKode)
	if !ok {
		// Lookup miss is a normal outcome, not an error.
		m.sess.Cancel()
		m.status = "Barang not found."
		m.state = formStateItems
		m.table.Focus()

		return m, nil
	}

	qty, _ := strconv.ParseInt(strings.TrimSpace(m.formQty), 10, 64)
	pct, _ := decimal.NewFromString(strings.TrimSpace(m.formPct))

	m.sess.SetProduct(p)
	m.sess.SetQuantity(qty)
	m.sess.SetDiscountPercent(pct)
	m.sess.Commit()

	m.refreshItems()
	m.status = ""
	m.state = formStateItems
	m.table.Focus()

	return m, nil
}

func (m FormModel) enterTotals() (tea.Model, tea.Cmd) {
	if m.formDiskon == "" {
		m.formDiskon = m.sess.Draft.HeaderDiscount.String()
	}

	if m.formOngkir == "" {
		m.formOngkir = m.sess.Draft.ShippingFee.String()
	}

	m.formConfirm = false

	nonNegative := func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}

		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil || d.IsNegative() {
			return fmt.Errorf("must be a number >= 0")
		}

		return nil
	}

	m.totalsForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("diskon").
				Title("Diskon").
				Value(&m.formDiskon).
				Validate(nonNegative),

			huh.NewInput().
				Key("ongkir").
				Title("Ongkir").
				Value(&m.formOngkir).
				Validate(nonNegative),

			huh.NewConfirm().
				Key("submit").
				Title("Submit transaction?").
				Affirmative("Submit").
				Negative("Not yet").
				Value(&m.formConfirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = formStateTotals
	m.table.Blur()

	return m, m.totalsForm.Init()
}

func (m FormModel) updateTotals(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = formStateItems
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.totalsForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.totalsForm = f
	}

	if m.totalsForm.State != huh.StateCompleted {
		return m, cmd
	}

	m.sess.SetHeaderDiscount(parseAmount(m.formDiskon))
	m.sess.SetShippingFee(parseAmount(m.formOngkir))

	if !m.formConfirm {
		m.state = formStateItems
		m.table.Focus()

		return m, nil
	}

	if err := m.sess.Validate(); err != nil {
		m.status = fmt.Sprintf("Cannot submit: %v", err)
		m.state = formStateItems
		m.table.Focus()

		return m, nil
	}

	m.state = formStateSubmitting

	return m, m.submitCmd()
}

func (m FormModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("Error: %v\n\n(Esc to back)", m.err),
		)
	}

	switch m.state {
	case formStateLoading:
		return lipgloss.NewStyle().Padding(2).Render("Loading reference data...")
	case formStateSubmitting:
		return lipgloss.NewStyle().Padding(2).Render("Submitting...")
	case formStateHeader:
		return lipgloss.NewStyle().Padding(1).Render(
			m.headerInfoView() + "\n" + m.headerForm.View(),
		)
	case formStateItemDialog:
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Render(m.dialogTitle() + "\n\n" + m.itemForm.View() + "\n" + m.itemPreview())

		return lipgloss.NewStyle().Padding(1).Render(panel)
	case formStateTotals:
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Render(m.totalsForm.View() + "\n" + m.totalsPreview())

		return lipgloss.NewStyle().Padding(1).Render(panel)
	}

	// formStateItems
	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.headerInfoView(),
		tableView,
		m.summaryView(),
	)

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m FormModel) dialogTitle() string {
	if m.sess.Editing() {
		return "Edit Barang"
	}

	return "Add Barang"
}

// itemPreview recomputes the derived line fields from the dialog's current
// inputs so the numbers update as the user types.
func (m FormModel) itemPreview() string {
	p, ok := m.productByKode(m.formBarangKode)
	if !ok {
		return lipgloss.NewStyle().Faint(true).Render("Select a barang to see prices.")
	}

	qty, err := strconv.ParseInt(strings.TrimSpace(m.formQty), 10, 64)
	if err != nil || qty < 1 {
		qty = 1
	}

	pct, err := decimal.NewFromString(strings.TrimSpace(m.formPct))
	if err != nil || pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		pct = decimal.Zero
	}

	d := pricing.ComputeLine(p.UnitPrice, qty, pct)

	return fmt.Sprintf(
		"Harga Bandrol: %s\nNilai Diskon:  %s\nHarga Diskon:  %s\nTotal:         %s",
		FormatPrice(p.UnitPrice),
		FormatPrice(d.DiscountAmount),
		FormatPrice(d.DiscountedUnitPrice),
		FormatPrice(d.LineTotal),
	)
}

// totalsPreview shows the amount payable for the values being typed,
// before they are committed to the session.
func (m FormModel) totalsPreview() string {
	payable := pricing.AmountPayable(
		m.sess.Draft.Subtotal,
		parseAmount(m.formDiskon),
		parseAmount(m.formOngkir),
	)

	return fmt.Sprintf(
		"Sub Total:   %s\nTotal Bayar: %s",
		FormatPrice(m.sess.Draft.Subtotal),
		FormatPrice(payable),
	)
}

func (m FormModel) headerInfoView() string {
	number := m.sess.Draft.Number
	if number == "" {
		number = "(auto generated)"
	}

	customer := m.sess.Draft.CustomerName
	if customer == "" {
		customer = "(select customer)"
	} else if m.sess.Draft.CustomerPhone != "" {
		customer += "  " + m.sess.Draft.CustomerPhone
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Render(fmt.Sprintf(
			"No: %s  |  Tgl: %s\nCustomer: %s",
			number, FormatDate(m.sess.Draft.Date), customer,
		))
}

func (m FormModel) summaryView() string {
	d := m.sess.Draft

	return lipgloss.NewStyle().PaddingTop(1).Render(fmt.Sprintf(
		"Sub Total: %s  |  Diskon: %s  |  Ongkir: %s  |  Total Bayar: %s",
		FormatPrice(d.Subtotal),
		FormatPrice(d.HeaderDiscount),
		FormatPrice(d.ShippingFee),
		FormatPrice(d.AmountPayable),
	))
}

func (m FormModel) selectedCode() string {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.sess.Draft.Items) {
		return ""
	}

	return m.sess.Draft.Items[idx].ProductCode
}

func (m *FormModel) refreshItems() {
	items := m.sess.Draft.Items

	rows := make([]table.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, table.Row{
			it.ProductCode,
			it.ProductName,
			strconv.FormatInt(it.Quantity, 10),
			FormatPrice(it.UnitPrice),
			it.DiscountPercent.String(),
			FormatPrice(it.DiscountAmount),
			FormatPrice(it.DiscountedUnitPrice),
			FormatPrice(it.LineTotal),
		})
	}

	m.table.SetRows(rows)
}

func (m FormModel) customerByKode(kode string) (sales.Customer, bool) {
	for _, c := range m.customers {
		if c.Code == kode {
			return c, true
		}
	}

	return sales.Customer{}, false
}

func (m FormModel) productByKode(kode string) (sales.Product, bool) {
	for _, p := range m.products {
		if p.Code == kode {
			return p, true
		}
	}

	return sales.Product{}, false
}

func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}

	return d
}

// Messages

type formLoadMsg struct {
	products  []sales.Product
	customers []sales.Customer
	tx        *sales.Transaction
	err       error
}

func (m FormModel) loadCmd() tea.Cmd {
	saleID := m.saleID

	return func() tea.Msg {
		ctx, cancel := ReqCtx()
		defer cancel()

		products, err := m.svc.Products(ctx)
		if err != nil {
			return formLoadMsg{err: fmt.Errorf("loading barang: %w", err)}
		}

		customers, err := m.svc.Customers(ctx)
		if err != nil {
			return formLoadMsg{err: fmt.Errorf("loading customers: %w", err)}
		}

		var tx *sales.Transaction

		if saleID > 0 {
			tx, err = m.svc.Get(ctx, saleID)
			if err != nil {
				return formLoadMsg{err: fmt.Errorf("loading sale %d: %w", saleID, err)}
			}
		}

		return formLoadMsg{products: products, customers: customers, tx: tx}
	}
}

type formSaveMsg struct {
	err error
}

func (m FormModel) submitCmd() tea.Cmd {
	sess := m.sess
	saleID := m.saleID
	svc := m.svc

	return func() tea.Msg {
		ctx, cancel := ReqCtx()
		defer cancel()

		draft := sess.Draft

		if saleID > 0 {
			draft.ID = saleID
			return formSaveMsg{err: svc.Update(ctx, &draft)}
		}

		return formSaveMsg{err: svc.Create(ctx, &draft)}
	}
}
