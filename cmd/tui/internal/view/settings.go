package view

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/moumensalem/masroof/internal/cloudsync"
	"github.com/moumensalem/masroof/internal/export"
	"github.com/moumensalem/masroof/internal/identity"
	"github.com/moumensalem/masroof/internal/importer"
	"github.com/moumensalem/masroof/internal/ledger"
	"github.com/moumensalem/masroof/internal/ledger/store"
)

type settingsState int

const (
	settingsStateMenu settingsState = iota
	settingsStateForm
	settingsStateWorking
)

type settingsAction int

const (
	actionLogin settingsAction = iota
	actionRegister
	actionLogout
	actionBackup
	actionRestore
	actionExportCSV
	actionImportCSV
	actionReset
)

type menuEntry struct {
	label  string
	action settingsAction
}

const authTimeout = 15 * time.Second

type settingsResultMsg struct {
	status string
	err    error
}

// SettingsModel hosts authentication and the backup, restore, CSV and reset
// tools.
type SettingsModel struct {
	CommonModel
	state     *ledger.State
	session   *cloudsync.Session
	provider  identity.Provider
	exportSvc *export.Service
	importSvc *importer.Service
	local     *store.Store
	sync      *cloudsync.Scheduler

	screen  settingsState
	cursor  int
	action  settingsAction
	form    *huh.Form
	spinner spinner.Model
	status  string

	formEmail    string
	formPassword string
	formPath     string
	formWallet   string
	formConfirm  bool
}

func NewSettingsModel(
	state *ledger.State,
	session *cloudsync.Session,
	provider identity.Provider,
	exportSvc *export.Service,
	importSvc *importer.Service,
	local *store.Store,
	sync *cloudsync.Scheduler,
) SettingsModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return SettingsModel{
		state:     state,
		session:   session,
		provider:  provider,
		exportSvc: exportSvc,
		importSvc: importSvc,
		local:     local,
		sync:      sync,
		spinner:   s,
	}
}

func (m SettingsModel) Title() string { return "Settings" }

func (m SettingsModel) ShortHelp() string {
	switch m.screen {
	case settingsStateMenu:
		return "Esc: back | Enter: select | ↑/↓: move"
	case settingsStateForm:
		return "Esc: cancel | Enter: confirm"
	case settingsStateWorking:
		return "Working..."
	}

	return ""
}

func (m SettingsModel) Init() tea.Cmd {
	return nil
}

func (m SettingsModel) menu() []menuEntry {
	entries := []menuEntry{}

	if m.session.Current() == nil {
		entries = append(entries,
			menuEntry{"Login", actionLogin},
			menuEntry{"Register", actionRegister},
		)
	} else {
		entries = append(entries, menuEntry{"Logout", actionLogout})
	}

	return append(entries,
		menuEntry{"Backup to file", actionBackup},
		menuEntry{"Restore from backup", actionRestore},
		menuEntry{"Export CSV", actionExportCSV},
		menuEntry{"Import CSV", actionImportCSV},
		menuEntry{"Reset all data", actionReset},
	)
}

func (m SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(settingsResultMsg); ok {
		m.screen = settingsStateMenu
		if result.err != nil {
			m.status = fmt.Sprintf("Error: %v", result.err)
		} else {
			m.status = result.status
		}

		return m, nil
	}

	switch m.screen {
	case settingsStateMenu:
		return m.updateMenu(msg)
	case settingsStateForm:
		return m.updateForm(msg)
	case settingsStateWorking:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m SettingsModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	entries := m.menu()
	if m.cursor >= len(entries) {
		m.cursor = len(entries) - 1
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(entries)-1 {
			m.cursor++
		}
	case "enter":
		return m.startAction(entries[m.cursor].action)
	}

	return m, nil
}

func (m SettingsModel) startAction(action settingsAction) (tea.Model, tea.Cmd) {
	m.action = action
	m.status = ""
	m.formEmail = ""
	m.formPassword = ""
	m.formConfirm = false

	switch action {
	case actionLogin, actionRegister:
		m.form = m.buildCredentialsForm()
	case actionLogout:
		m.form = m.buildConfirmForm("Log out? Unsynced changes stay on this device.")
	case actionReset:
		m.form = m.buildConfirmForm("Erase all local data and start over?")
	case actionBackup:
		m.formPath = "./masroof-backup.json"
		m.form = m.buildPathForm("Backup Path")
	case actionRestore:
		m.formPath = ""
		m.form = m.buildPathForm("Backup File")
	case actionExportCSV:
		m.formPath = "./masroof.csv"
		m.form = m.buildPathForm("CSV Path")
	case actionImportCSV:
		m.formPath = ""
		m.form = m.buildImportForm()
	}

	m.screen = settingsStateForm

	return m, m.form.Init()
}

func (m SettingsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.screen = settingsStateMenu
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

	run := m.runActionCmd()
	m.form = nil

	if run == nil {
		m.screen = settingsStateMenu
		return m, nil
	}

	m.screen = settingsStateWorking

	return m, tea.Batch(m.spinner.Tick, run)
}

// runActionCmd captures the completed form values and returns the command
// that performs the selected action. A nil command means the action was
// declined.
func (m *SettingsModel) runActionCmd() tea.Cmd {
	switch m.action {
	case actionLogin, actionRegister:
		email := strings.TrimSpace(m.form.GetString("email"))
		password := m.form.GetString("password")
		register := m.action == actionRegister
		provider := m.provider

		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
			defer cancel()

			var (
				ident *identity.Identity
				err   error
			)

			if register {
				ident, err = provider.Register(ctx, email, password)
			} else {
				ident, err = provider.Login(ctx, email, password)
			}

			if err != nil {
				return settingsResultMsg{err: err}
			}

			return settingsResultMsg{status: fmt.Sprintf("Signed in as %s.", ident.Email)}
		}

	case actionLogout:
		if !m.form.GetBool("confirm") {
			return nil
		}

		provider := m.provider

		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
			defer cancel()

			if err := provider.Logout(ctx); err != nil {
				return settingsResultMsg{err: err}
			}

			return settingsResultMsg{status: "Signed out."}
		}

	case actionReset:
		if !m.form.GetBool("confirm") {
			return nil
		}

		state, local, sync := m.state, m.local, m.sync

		return func() tea.Msg {
			state.Reset()

			if err := local.Clear(); err != nil {
				return settingsResultMsg{err: err}
			}

			sync.Schedule()

			return settingsResultMsg{status: "All data reset."}
		}

	case actionBackup:
		path := m.form.GetString("path")
		svc := m.exportSvc

		return func() tea.Msg {
			if err := svc.WriteBackup(path); err != nil {
				return settingsResultMsg{err: err}
			}

			return settingsResultMsg{status: fmt.Sprintf("Backup written to %s.", path)}
		}

	case actionRestore:
		path := m.form.GetString("path")
		svc := m.exportSvc

		return func() tea.Msg {
			if err := svc.RestoreFile(path); err != nil {
				return settingsResultMsg{err: err}
			}

			return settingsResultMsg{status: "Backup restored."}
		}

	case actionExportCSV:
		path := m.form.GetString("path")
		svc := m.exportSvc

		return func() tea.Msg {
			if err := svc.WriteCSV(path); err != nil {
				return settingsResultMsg{err: err}
			}

			return settingsResultMsg{status: fmt.Sprintf("CSV written to %s.", path)}
		}

	case actionImportCSV:
		path := m.form.GetString("path")
		wallet := m.form.GetString("wallet")
		svc := m.importSvc

		return func() tea.Msg {
			f, err := os.Open(path)
			if err != nil {
				return settingsResultMsg{err: err}
			}
			defer f.Close()

			n, err := svc.Import(f, wallet)
			if err != nil {
				return settingsResultMsg{err: err}
			}

			return settingsResultMsg{status: fmt.Sprintf("Imported %d entries.", n)}
		}
	}

	return nil
}

func (m SettingsModel) buildCredentialsForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Value(&m.formEmail).
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return fmt.Errorf("enter a valid email")
					}
					return nil
				}),

			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.formPassword).
				Validate(func(s string) error {
					if len(s) < 6 {
						return fmt.Errorf("password must be at least 6 characters")
					}
					return nil
				}),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m SettingsModel) buildConfirmForm(title string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&m.formConfirm),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m SettingsModel) buildPathForm(title string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title(title).
				Value(&m.formPath).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("path cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m SettingsModel) buildImportForm() *huh.Form {
	wallets := m.state.Config().Wallets

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("CSV File").
				Value(&m.formPath).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("path cannot be empty")
					}
					return nil
				}),

			huh.NewSelect[string]().
				Key("wallet").
				Title("Target Wallet").
				Options(huh.NewOptions(wallets...)...).
				Value(&m.formWallet),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m SettingsModel) View() string {
	switch m.screen {
	case settingsStateForm:
		if m.form == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(1).Render(m.form.View())

	case settingsStateWorking:
		return lipgloss.NewStyle().Padding(1).Render(m.spinner.View() + " Working...")
	}

	return m.viewMenu()
}

func (m SettingsModel) viewMenu() string {
	account := "Signed out."
	if ident := m.session.Current(); ident != nil {
		account = fmt.Sprintf("Signed in as %s.", ident.Email)
	}

	lines := []string{lipgloss.NewStyle().Faint(true).Render(account), ""}

	for i, entry := range m.menu() {
		label := "  " + entry.label
		if i == m.cursor {
			label = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render("> " + entry.label)
		}

		lines = append(lines, label)
	}

	if m.status != "" {
		lines = append(lines, "", lipgloss.NewStyle().Faint(true).Render(m.status))
	}

	return lipgloss.NewStyle().Padding(1).Render(strings.Join(lines, "\n"))
}
