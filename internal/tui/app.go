// Package tui provides the interactive Bubble Tea dashboard for billwatch.
package tui

import (
	"time"

	"billwatch/internal/advice"
	"billwatch/internal/config"
	"billwatch/internal/model"
	"billwatch/internal/spendable"
	"billwatch/internal/store"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// DataLoadedMsg is sent when the store read finishes.
type DataLoadedMsg struct {
	Accounts []model.Account
	Bills    []model.Bill
	Results  []spendable.Result
	Advice   []model.Recommendation
	Err      error
}

const (
	tabOverview = iota
	tabBills
	tabAdvice
	tabCount
)

var tabNames = []string{"Overview", "Bills", "Advice"}

// App is the root Bubble Tea model.
type App struct {
	dbPath string
	cfg    config.Config

	// Data
	accounts []model.Account
	bills    []model.Bill
	results  []spendable.Result
	advice   []model.Recommendation
	loaded   bool
	loadErr  error

	// UI state
	width     int
	height    int
	activeTab int

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals setupValues
	needSetup bool

	spinner spinner.Model
}

// NewApp creates a new TUI app model.
func NewApp(dbPath string, cfg config.Config) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#3AA99F"))

	return App{
		dbPath:    dbPath,
		cfg:       cfg,
		needSetup: !config.Exists(),
		spinner:   sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		loadDataCmd(a.dbPath, a.cfg),
		a.spinner.Tick,
	)
}

// loadDataCmd reads the book and derives per-account figures off the UI
// goroutine.
func loadDataCmd(dbPath string, cfg config.Config) tea.Cmd {
	return func() tea.Msg {
		s, err := store.Open(dbPath)
		if err != nil {
			return DataLoadedMsg{Err: err}
		}
		defer func() { _ = s.Close() }()

		now := time.Now()
		accounts, err := s.ListAccounts()
		if err != nil {
			return DataLoadedMsg{Err: err}
		}
		bills, err := s.RefreshBills(now)
		if err != nil {
			return DataLoadedMsg{Err: err}
		}

		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
		txns, err := s.ListTransactions(monthStart.AddDate(0, -1, 0), time.Time{})
		if err != nil {
			return DataLoadedMsg{Err: err}
		}

		calc := spendable.New(cfg.Budget)
		results := make([]spendable.Result, 0, len(accounts))
		for _, acct := range accounts {
			results = append(results, calc.ForAccount(acct, bills, spendable.Opts{Now: now}))
		}

		recs := advice.Compute(now, now, txns, accounts, bills, cfg)
		visible := recs[:0]
		for _, r := range recs {
			dismissed, err := s.IsRecommendationDismissed(r.ID)
			if err == nil && !dismissed {
				visible = append(visible, r)
			}
		}

		return DataLoadedMsg{
			Accounts: accounts,
			Bills:    bills,
			Results:  results,
			Advice:   visible,
		}
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.KeyMsg:
		// The setup wizard intercepts all keys.
		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "tab", "l", "right":
			a.activeTab = (a.activeTab + 1) % tabCount
		case "shift+tab", "h", "left":
			a.activeTab = (a.activeTab + tabCount - 1) % tabCount
		case "1", "2", "3":
			a.activeTab = int(msg.String()[0] - '1')
		case "r":
			a.loaded = false
			return a, tea.Batch(loadDataCmd(a.dbPath, a.cfg), a.spinner.Tick)
		}
		return a, nil

	case DataLoadedMsg:
		a.loaded = true
		a.loadErr = msg.Err
		a.accounts = msg.Accounts
		a.bills = msg.Bills
		a.results = msg.Results
		a.advice = msg.Advice

		// Activate first-run setup after data loads
		if a.needSetup && a.loadErr == nil {
			a.setupForm = newSetupForm(&a.setupVals, a.cfg)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case spinner.TickMsg:
		if a.loaded {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	if a.setupForm.State == huh.StateCompleted {
		a.cfg = a.setupVals.apply(a.cfg)
		_ = config.Save(a.cfg)
		a.needSetup = false
		a.setupForm = nil
		// Reload so the new window and buffer apply.
		a.loaded = false
		return a, tea.Batch(loadDataCmd(a.dbPath, a.cfg), a.spinner.Tick)
	}

	if a.setupForm.State == huh.StateAborted {
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}

	return a, cmd
}

// View implements tea.Model.
func (a App) View() string {
	if !a.loaded {
		return "\n\n  " + a.spinner.View() + " Loading your bill book...\n"
	}

	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}

	if a.loadErr != nil {
		return "\n  Could not load data: " + a.loadErr.Error() + "\n\n  Press q to quit.\n"
	}

	var view string
	switch a.activeTab {
	case tabBills:
		view = a.viewBills()
	case tabAdvice:
		view = a.viewAdvice()
	default:
		view = a.viewOverview()
	}

	return "\n" + a.renderTabBar() + "\n\n" + view + "\n" + a.renderStatusBar()
}
