package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/brotato-world/pkg/world"
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config         *ConsoleConfig
	client         *http.Client
	record         *world.Record
	world          *world.World
	regionViewport viewport.Model
	metaViewport   viewport.Model
	ready          bool
	width          int
	height         int
	err            error
	status         string

	onlyReachable bool

	// Player selection state
	showPlayerModal bool
	players         []string
	playerMap       map[string]string
	selectedPlayer  int
	loadingPlayers  bool
	generating      bool

	// Quit confirmation state
	showQuitModal bool
}

type playersLoadedMsg struct {
	players   []string
	playerMap map[string]string
	err       error
}

type sessionGeneratedMsg struct {
	record *world.Record
	world  *world.World
	err    error
}

var (
	regionPanelStyle = lipgloss.NewStyle().
				PaddingTop(1).
				PaddingLeft(3)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	regionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	reachableStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	lockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	regionVp := viewport.New(50, 20)
	regionVp.MouseWheelEnabled = true

	return ConsoleUI{
		config:          cfg,
		client:          client,
		regionViewport:  regionVp,
		metaViewport:    viewport.New(20, 20),
		showPlayerModal: true,
		loadingPlayers:  true,
	}
}

// writeRegions renders every region with its locations. Regions reachable
// from the precollected items are marked, as are locked placements.
func writeRegions(w *world.World, width int, onlyReachable bool) string {
	s := w.Session()
	reachable := s.ReachableRegions(s.InitialState())

	var content strings.Builder
	content.WriteString(titleStyle.Render("REGIONS") + "\n\n")

	for _, r := range s.Regions() {
		open := reachable[r.Name]
		if onlyReachable && !open {
			continue
		}

		mark := "  "
		if open {
			mark = reachableStyle.Render("✓ ")
		}
		content.WriteString(mark + regionStyle.Render(r.Name) + "\n")

		for _, loc := range r.Locations {
			line := "    " + loc.Name
			if loc.IsEvent() {
				line += " (event)"
			} else {
				line += fmt.Sprintf(" [%d]", *loc.Code)
			}
			if loc.Locked && loc.Item != nil {
				line += lockedStyle.Render(" = " + loc.Item.Name)
			}
			content.WriteString(line + "\n")
		}
		for _, e := range r.Exits {
			content.WriteString(promptStyle.Render(wordwrap.String(fmt.Sprintf("    → %s (%s)", e.To, e.Rule), width)) + "\n")
		}
		content.WriteString("\n")
	}
	return content.String()
}

func writeMetadata(rec *world.Record, width int) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	content.WriteString("Session ID:\n")
	content.WriteString(rec.ID.String()[:8] + "...\n\n")

	content.WriteString("Player:\n")
	content.WriteString(rec.PlayerName + "\n\n")

	content.WriteString("Seed:\n")
	content.WriteString(fmt.Sprintf("%d\n\n", rec.Seed))

	content.WriteString("Goal:\n")
	content.WriteString(rec.Completion + "\n\n")

	content.WriteString("Locations:\n")
	content.WriteString(fmt.Sprintf("%d placeable\n\n", rec.LocationCount))

	content.WriteString("Starting characters:\n")
	content.WriteString(wordwrap.String(strings.Join(rec.StartingCharacters, ", "), width) + "\n\n")

	content.WriteString("Waves with checks:\n")
	waves := make([]string, len(rec.SlotData.WavesWithChecks))
	for i, w := range rec.SlotData.WavesWithChecks {
		waves[i] = fmt.Sprint(w)
	}
	content.WriteString(wordwrap.String(strings.Join(waves, ", "), width) + "\n\n")

	content.WriteString("Commands:\n")
	content.WriteString("• r: Reachable only\n")
	content.WriteString("• c: Copy slot data\n")
	content.WriteString("• s: Copy session ID\n")
	content.WriteString("• Esc: Quit\n")

	return content.String()
}

func slotDataJSON(rec *world.Record) (string, error) {
	data, err := json.MarshalIndent(rec.SlotData, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (m *ConsoleUI) layout() {
	regionWidth := int(float64(m.width)*0.65) - 4
	metaWidth := m.width - regionWidth - 6

	m.regionViewport.Width = regionWidth - 2
	m.regionViewport.Height = m.height - 3
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 3
}

func (m *ConsoleUI) refreshContent() {
	if m.world == nil {
		return
	}
	m.regionViewport.SetContent(writeRegions(m.world, m.regionViewport.Width-4, m.onlyReachable))
	meta := writeMetadata(m.record, m.metaViewport.Width-2)
	if m.status != "" {
		meta += "\n" + loadingStyle.Render(m.status) + "\n"
	}
	m.metaViewport.SetContent(meta)
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.loadPlayers()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showPlayerModal {
		return m.updatePlayerModal(msg)
	}
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var vpCmd, mvCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.refreshContent()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		}

		switch msg.String() {
		case "r":
			m.onlyReachable = !m.onlyReachable
			m.refreshContent()
			m.regionViewport.GotoTop()
			return m, nil
		case "c":
			m.status = m.copySlotData()
			m.refreshContent()
			return m, nil
		case "s":
			if err := clipboard.WriteAll(m.record.ID.String()); err != nil {
				m.status = "Copy failed: " + err.Error()
			} else {
				m.status = "Session ID copied."
			}
			m.refreshContent()
			return m, nil
		}
	}

	m.regionViewport, vpCmd = m.regionViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	return m, tea.Batch(vpCmd, mvCmd)
}

func (m ConsoleUI) copySlotData() string {
	data, err := slotDataJSON(m.record)
	if err != nil {
		return "Copy failed: " + err.Error()
	}
	if err := clipboard.WriteAll(data); err != nil {
		return "Copy failed: " + err.Error()
	}
	return "Slot data copied."
}

func (m ConsoleUI) loadPlayers() tea.Cmd {
	return func() tea.Msg {
		names, playerMap, err := listPlayers(m.client, m.config.APIBaseURL)
		return playersLoadedMsg{names, playerMap, err}
	}
}

func (m ConsoleUI) generateFromPlayer(playerFile string) tea.Cmd {
	return func() tea.Msg {
		rec, err := generateSession(m.client, m.config.APIBaseURL, playerFile)
		if err != nil {
			return sessionGeneratedMsg{err: err}
		}
		w, err := rebuildWorld(rec)
		return sessionGeneratedMsg{record: rec, world: w, err: err}
	}
}

func (m ConsoleUI) updatePlayerModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case playersLoadedMsg:
		m.loadingPlayers = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.players = msg.players
			m.playerMap = msg.playerMap
		}

	case sessionGeneratedMsg:
		m.generating = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.record = msg.record
		m.world = msg.world
		m.showPlayerModal = false
		if m.width > 0 && m.height > 0 {
			m.layout()
			m.ready = true
		}
		m.refreshContent()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			if m.loadingPlayers {
				return m, tea.Quit
			}
			m.showQuitModal = true
			m.showPlayerModal = false
			return m, nil
		}
		if m.loadingPlayers || m.generating || m.err != nil {
			return m, nil
		}

		switch msg.Type {
		case tea.KeyUp:
			if m.selectedPlayer > 0 {
				m.selectedPlayer--
			}
		case tea.KeyDown:
			if m.selectedPlayer < len(m.players)-1 {
				m.selectedPlayer++
			}
		case tea.KeyEnter:
			if len(m.players) > 0 {
				m.generating = true
				return m, m.generateFromPlayer(m.playerMap[m.players[m.selectedPlayer]])
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		}
		switch msg.String() {
		case "y", "Y":
			return m, tea.Quit
		case "n", "N":
			m.showQuitModal = false
			// Back to player selection if no session was generated yet
			m.showPlayerModal = m.world == nil
			return m, nil
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to quit?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderPlayerModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.loadingPlayers:
		content.WriteString(modalTitleStyle.Render("Loading Players..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait while we fetch player files..."))
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(wordwrap.String(m.err.Error(), 50)))
		content.WriteString("\n\n")
		content.WriteString("Press Esc to exit")
	case m.generating:
		content.WriteString(modalTitleStyle.Render("Generating..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Building the world..."))
	case len(m.players) == 0:
		content.WriteString(modalTitleStyle.Render("No Players"))
		content.WriteString("\n\n")
		content.WriteString("Add a player file under data/players and restart.")
	default:
		content.WriteString(modalTitleStyle.Render("Select a Player"))
		content.WriteString("\n\n")
		for i, player := range m.players {
			if i == m.selectedPlayer {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", player)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", player)))
			}
			content.WriteString("\n")
		}
		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to generate, Esc to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showPlayerModal {
		return m.renderPlayerModal()
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	regionWidth := int(float64(m.width)*0.65) - 4
	metaWidth := m.width - regionWidth - 6

	regionPanel := regionPanelStyle.Width(regionWidth).Height(m.height - 2).Render(m.regionViewport.View())
	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(m.metaViewport.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, regionPanel, metaPanel)
}
