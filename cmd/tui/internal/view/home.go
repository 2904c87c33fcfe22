package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/moumensalem/masroof/internal/ledger"
)

type homeState int

const (
	homeStateOverview homeState = iota
	homeStateKind
	homeStateEntry
	homeStateTemplates
)

const recentCount = 5

// HomeModel shows the balance overview and hosts the quick-add flow.
type HomeModel struct {
	CommonModel
	state *ledger.State

	screen homeState
	form   *huh.Form
	entry  *entryValues
	status string

	// Form field bindings
	formKind     ledger.Kind
	formTemplate int64
}

func NewHomeModel(state *ledger.State) HomeModel {
	return HomeModel{state: state}
}

func (m HomeModel) Title() string { return "Home" }

func (m HomeModel) ShortHelp() string {
	switch m.screen {
	case homeStateOverview:
		return "a: add entry | r: recurring | Esc: back"
	case homeStateKind, homeStateTemplates:
		return "Esc: cancel | Enter: select"
	case homeStateEntry:
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return ""
}

func (m HomeModel) Init() tea.Cmd {
	return nil
}

func (m HomeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.screen {
	case homeStateOverview:
		return m.updateOverview(msg)
	case homeStateKind:
		return m.updateKind(msg)
	case homeStateEntry:
		return m.updateEntry(msg)
	case homeStateTemplates:
		return m.updateTemplates(msg)
	}

	return m, nil
}

func (m HomeModel) updateOverview(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "a":
		m.screen = homeStateKind
		m.status = ""
		m.formKind = ledger.KindExpense
		m.form = m.buildKindForm()

		return m, m.form.Init()
	case "r":
		templates := m.state.Templates()
		if len(templates) == 0 {
			m.status = "No recurring templates yet. Save an entry with the recurring flag first."
			return m, nil
		}

		m.screen = homeStateTemplates
		m.status = ""
		m.form = m.buildTemplateForm(templates)

		return m, m.form.Init()
	}

	return m, nil
}

func (m HomeModel) updateKind(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.screen = homeStateOverview
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

	m.formKind, _ = m.form.Get("kind").(ledger.Kind)
	m.entry = &entryValues{Date: time.Now().Format(time.DateOnly)}
	m.form = newEntryForm(m.state.Config(), m.formKind, m.entry, false)
	m.screen = homeStateEntry

	return m, m.form.Init()
}

func (m HomeModel) updateEntry(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.screen = homeStateOverview
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

	params, err := m.entry.params(0, m.formKind)
	if err == nil {
		_, err = m.state.Upsert(params)
	}

	if err != nil {
		m.status = fmt.Sprintf("Error: %v", err)
	} else {
		m.status = "Saved."
	}

	m.screen = homeStateOverview
	m.form = nil

	return m, nil
}

func (m HomeModel) updateTemplates(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.screen = homeStateOverview
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

	templateID, _ := m.form.Get("template").(int64)

	if _, err := m.state.ApplyTemplate(templateID); err != nil {
		m.status = fmt.Sprintf("Error: %v", err)
	} else {
		m.status = "Recurring entry added."
	}

	m.screen = homeStateOverview
	m.form = nil

	return m, nil
}

func (m HomeModel) buildKindForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[ledger.Kind]().
				Key("kind").
				Title("Entry Type").
				Options(
					huh.NewOption("Expense", ledger.KindExpense),
					huh.NewOption("Income", ledger.KindIncome),
					huh.NewOption("Transfer", ledger.KindTransfer),
				).
				Value(&m.formKind),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m HomeModel) buildTemplateForm(templates []ledger.RecurringTemplate) *huh.Form {
	options := make([]huh.Option[int64], len(templates))
	for i, tpl := range templates {
		label := fmt.Sprintf("%s  %s  %s", KindLabel(tpl.Kind), FormatAmount(tpl.Amount), tpl.Category)
		if tpl.Note != "" {
			label += "  " + tpl.Note
		}

		options[i] = huh.NewOption(label, tpl.ID)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int64]().
				Key("template").
				Title("Recurring Templates").
				Options(options...).
				Value(&m.formTemplate),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m HomeModel) View() string {
	switch m.screen {
	case homeStateOverview:
		return m.viewOverview()
	case homeStateKind, homeStateEntry, homeStateTemplates:
		if m.form == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	}

	return ""
}

func (m HomeModel) viewOverview() string {
	totals := m.state.ComputeTotals()

	summary := fmt.Sprintf(
		"Balance: %s\nIncome:  %s\nExpense: %s",
		FormatAmount(totals.Net),
		FormatAmount(totals.Income),
		FormatAmount(totals.Expense),
	)

	if totals.Income > 0 {
		summary += fmt.Sprintf("\nSpent:   %d%% of income", totals.Expense*100/totals.Income)
	}

	card := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Render(summary)

	lines := []string{card, "", "Recent:"}

	recent := m.state.Recent(recentCount)
	if len(recent) == 0 {
		lines = append(lines, lipgloss.NewStyle().Faint(true).Render("  No entries yet."))
	}

	now := time.Now()
	for _, t := range recent {
		lines = append(lines, fmt.Sprintf("  %s  %s  %s  %s",
			DayLabel(t.Date, now), SignedAmount(t), t.Category, t.Note))
	}

	if m.status != "" {
		lines = append(lines, "", lipgloss.NewStyle().Faint(true).Render(m.status))
	}

	return lipgloss.NewStyle().Padding(1).Render(strings.Join(lines, "\n"))
}
