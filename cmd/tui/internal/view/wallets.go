package view

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/moumensalem/masroof/internal/ledger"
)

type walletsState int

const (
	walletsStateTable walletsState = iota
	walletsStateAddWallet
	walletsStateAddCategory
)

// WalletsModel shows per-wallet balances and hosts the add-wallet and
// add-category flows.
type WalletsModel struct {
	CommonModel
	state *ledger.State

	screen walletsState
	table  table.Model
	form   *huh.Form
	status string

	formName string
}

func NewWalletsModel(state *ledger.State) WalletsModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Wallet", Width: 20},
			{Title: "Balance", Width: 14},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	styles := table.DefaultStyles()
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("205")).Bold(true)
	t.SetStyles(styles)

	m := WalletsModel{state: state, table: t}
	m.refreshRows()

	return m
}

func (m WalletsModel) Title() string { return "Wallets" }

func (m WalletsModel) ShortHelp() string {
	if m.screen == walletsStateTable {
		return "Esc: back | w: add wallet | c: add category"
	}

	return "Esc: cancel | Enter: confirm"
}

func (m WalletsModel) Init() tea.Cmd {
	return nil
}

// refreshRows rebuilds the table from the current totals. Wallets keep their
// configured order; wallets referenced only by old entries trail in name
// order.
func (m *WalletsModel) refreshRows() {
	totals := m.state.ComputeTotals()
	cfg := m.state.Config()

	rows := make([]table.Row, 0, len(totals.Wallets))
	seen := map[string]bool{}

	for _, w := range cfg.Wallets {
		rows = append(rows, table.Row{w, FormatAmount(totals.Wallets[w])})
		seen[w] = true
	}

	var extras []string

	for w := range totals.Wallets {
		if !seen[w] {
			extras = append(extras, w)
		}
	}

	sort.Strings(extras)

	for _, w := range extras {
		rows = append(rows, table.Row{w, FormatAmount(totals.Wallets[w])})
	}

	m.table.SetRows(rows)
}

func (m WalletsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.screen == walletsStateTable {
		return m.updateTable(msg)
	}

	return m.updateForm(msg)
}

func (m WalletsModel) updateTable(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "w":
			m.screen = walletsStateAddWallet
			m.status = ""
			m.formName = ""
			m.form = m.buildNameForm("New Wallet")

			return m, m.form.Init()
		case "c":
			m.screen = walletsStateAddCategory
			m.status = ""
			m.formName = ""
			m.form = m.buildNameForm("New Expense Category")

			return m, m.form.Init()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m WalletsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.screen = walletsStateTable
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	name := strings.TrimSpace(m.form.GetString("name"))

	switch m.screen {
	case walletsStateAddWallet:
		m.state.AddWallet(name)
		m.status = fmt.Sprintf("Wallet %q added.", name)
	case walletsStateAddCategory:
		m.state.AddExpenseCategory(name)
		m.status = fmt.Sprintf("Category %q added.", name)
	}

	m.screen = walletsStateTable
	m.form = nil
	m.refreshRows()

	return m, nil
}

func (m WalletsModel) buildNameForm(title string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title(title).
				Value(&m.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(40).WithShowHelp(false)
}

func (m WalletsModel) View() string {
	if m.screen != walletsStateTable {
		if m.form == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	}

	statusLine := ""
	if m.status != "" {
		statusLine = "\n" + lipgloss.NewStyle().Faint(true).Render(m.status)
	}

	return lipgloss.NewStyle().Padding(1).Render(m.table.View() + statusLine)
}
