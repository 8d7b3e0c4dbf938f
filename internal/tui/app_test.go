package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTabCycling(t *testing.T) {
	a := App{loaded: true}

	m, _ := a.Update(keyMsg("l"))
	a = m.(App)
	if a.activeTab != tabBills {
		t.Fatalf("after l, tab = %d, want bills", a.activeTab)
	}

	m, _ = a.Update(keyMsg("l"))
	a = m.(App)
	if a.activeTab != tabAdvice {
		t.Fatalf("after l l, tab = %d, want advice", a.activeTab)
	}

	// Wraps around.
	m, _ = a.Update(keyMsg("l"))
	a = m.(App)
	if a.activeTab != tabOverview {
		t.Fatalf("after wrap, tab = %d, want overview", a.activeTab)
	}

	m, _ = a.Update(keyMsg("h"))
	a = m.(App)
	if a.activeTab != tabAdvice {
		t.Fatalf("after h, tab = %d, want advice", a.activeTab)
	}

	m, _ = a.Update(keyMsg("2"))
	a = m.(App)
	if a.activeTab != tabBills {
		t.Fatalf("after 2, tab = %d, want bills", a.activeTab)
	}
}

func TestDataLoadedMarksLoaded(t *testing.T) {
	a := App{}
	m, _ := a.Update(DataLoadedMsg{})
	a = m.(App)
	if !a.loaded {
		t.Fatal("DataLoadedMsg did not mark the app loaded")
	}
}
