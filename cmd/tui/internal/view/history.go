package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/moumensalem/masroof/internal/cloudsync"
	"github.com/moumensalem/masroof/internal/ledger"
)

type historyState int

const (
	historyStateList historyState = iota
	historyStateEditing
)

// HistoryModel lists the full transaction log grouped by day. The view is
// gated behind login; signed out it renders a lock screen instead.
type HistoryModel struct {
	CommonModel
	state   *ledger.State
	session *cloudsync.Session

	screen historyState
	filter ledger.Kind
	groups []ledger.DayGroup
	cursor int
	locked bool
	status string

	form    *huh.Form
	entry   *entryValues
	editing ledger.Transaction
}

func NewHistoryModel(state *ledger.State, session *cloudsync.Session) HistoryModel {
	m := HistoryModel{state: state, session: session}
	m.reload()

	return m
}

func (m HistoryModel) Title() string { return "History" }

func (m HistoryModel) ShortHelp() string {
	if m.locked {
		return "Esc: back | login from Settings to unlock"
	}

	switch m.screen {
	case historyStateList:
		return "Esc: back | f: filter | Enter: edit | ↑/↓: move"
	case historyStateEditing:
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return ""
}

func (m HistoryModel) Init() tea.Cmd {
	return nil
}

func (m *HistoryModel) reload() {
	groups, err := m.state.History(m.filter, m.session.Current())
	if err != nil {
		m.locked = errors.Is(err, ledger.ErrLocked)
		m.groups = nil

		return
	}

	m.locked = false
	m.groups = groups

	if total := m.count(); m.cursor >= total {
		m.cursor = 0
	}
}

func (m HistoryModel) count() int {
	n := 0
	for _, g := range m.groups {
		n += len(g.Transactions)
	}

	return n
}

// at returns the transaction under the flat cursor index.
func (m HistoryModel) at(idx int) (ledger.Transaction, bool) {
	for _, g := range m.groups {
		if idx < len(g.Transactions) {
			return g.Transactions[idx], true
		}

		idx -= len(g.Transactions)
	}

	return ledger.Transaction{}, false
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.screen {
	case historyStateList:
		return m.updateList(msg)
	case historyStateEditing:
		return m.updateEditing(msg)
	}

	return m, nil
}

func (m HistoryModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "f":
		m.filter = nextFilter(m.filter)
		m.cursor = 0
		m.reload()

		return m, nil
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

		return m, nil
	case "down", "j":
		if m.cursor < m.count()-1 {
			m.cursor++
		}

		return m, nil
	case "enter":
		tx, ok := m.at(m.cursor)
		if !ok {
			return m, nil
		}

		return m.startEditing(tx)
	}

	return m, nil
}

func nextFilter(f ledger.Kind) ledger.Kind {
	switch f {
	case "":
		return ledger.KindExpense
	case ledger.KindExpense:
		return ledger.KindIncome
	}

	return ""
}

func filterLabel(f ledger.Kind) string {
	if f == "" {
		return "All"
	}

	return KindLabel(f)
}

func (m HistoryModel) startEditing(tx ledger.Transaction) (tea.Model, tea.Cmd) {
	m.editing = tx
	m.entry = &entryValues{
		Amount:   FormatAmount(tx.Amount),
		Category: tx.Category,
		Wallet:   tx.Wallet,
		From:     tx.WalletFrom,
		To:       tx.WalletTo,
		Date:     tx.Date,
		Note:     tx.Note,
	}
	m.form = newEntryForm(m.state.Config(), tx.Kind, m.entry, true)
	m.screen = historyStateEditing
	m.status = ""

	return m, m.form.Init()
}

func (m HistoryModel) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.screen = historyStateList
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

	params, err := m.entry.params(m.editing.ID, m.editing.Kind)
	if err == nil {
		_, err = m.state.Upsert(params)
	}

	if err != nil {
		m.status = fmt.Sprintf("Error saving: %v", err)
	} else {
		m.status = "Saved."
	}

	m.screen = historyStateList
	m.form = nil
	m.reload()

	return m, nil
}

func (m HistoryModel) View() string {
	if m.locked {
		return lipgloss.NewStyle().Padding(2).Render(
			"History is locked.\n\nSign in from the Settings screen to browse past entries.",
		)
	}

	if m.screen == historyStateEditing {
		if m.form == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	}

	return m.viewList()
}

func (m HistoryModel) viewList() string {
	header := fmt.Sprintf("Filter: %s", filterLabel(m.filter))
	lines := []string{lipgloss.NewStyle().Bold(true).Render(header), ""}

	if len(m.groups) == 0 {
		lines = append(lines, lipgloss.NewStyle().Faint(true).Render("No entries."))
	}

	now := time.Now()
	idx := 0

	for _, g := range m.groups {
		lines = append(lines, lipgloss.NewStyle().Faint(true).Render(DayLabel(g.Date, now)))

		for _, t := range g.Transactions {
			line := fmt.Sprintf("  %s  %s", SignedAmount(t), t.Category)

			if t.Kind == ledger.KindTransfer {
				line = fmt.Sprintf("  %s  %s → %s", SignedAmount(t), t.WalletFrom, t.WalletTo)
			} else if t.Wallet != "" {
				line += "  " + t.Wallet
			}

			if t.Note != "" {
				line += "  " + t.Note
			}

			if idx == m.cursor {
				line = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render("> " + strings.TrimPrefix(line, "  "))
			}

			lines = append(lines, line)
			idx++
		}

		lines = append(lines, "")
	}

	if m.status != "" {
		lines = append(lines, lipgloss.NewStyle().Faint(true).Render(m.status))
	}

	return lipgloss.NewStyle().Padding(1).Render(strings.Join(lines, "\n"))
}
