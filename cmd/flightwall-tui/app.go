package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/flightwall/flightwall/pkg/aeroapi"
	"github.com/flightwall/flightwall/pkg/config"
)

const (
	metersToFeet = 3.28084
	mpsToKnots   = 1.94384
)

// flightsResponse mirrors the /api/flights payload.
type flightsResponse struct {
	Flights   []aeroapi.FlightDetail `json:"flights"`
	Count     int                    `json:"count"`
	UpdatedAt time.Time              `json:"updated_at"`
	Cycle     uint64                 `json:"cycle"`
}

// App represents the main application
type App struct {
	baseURL string
	cfg     *config.Config

	httpClient *http.Client

	// UI components
	tviewApp *tview.Application
	table    *tview.Table
	status   *tview.TextView
	controls *tview.TextView

	// State
	mu          sync.Mutex
	flights     []aeroapi.FlightDetail
	lastUpdate  time.Time
	lastCycle   uint64
	lastError   error
	updateTimer *time.Ticker
	stopChan    chan struct{}
}

// NewApp creates a new application instance
func NewApp(baseURL string, cfg *config.Config) *App {
	app := &App{
		baseURL:    baseURL,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		stopChan:   make(chan struct{}),
	}

	app.setupUI()
	return app
}

// setupUI initializes the user interface
func (a *App) setupUI() {
	a.tviewApp = tview.NewApplication()

	a.table = tview.NewTable().
		SetFixed(1, 0).
		SetSelectable(true, false)
	a.table.SetBorder(true).SetTitle(fmt.Sprintf(" Flights near %s ", a.cfg.Observer.Name))

	a.status = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	a.status.SetBorder(true).SetTitle(" Status ")

	a.controls = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	a.controls.SetText("  [white]↑/↓[-] Select   [white]r[-] Refresh   [white]q[-] Quit")

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.table, 0, 8, true).
		AddItem(a.status, 5, 0, false).
		AddItem(a.controls, 1, 0, false)

	a.tviewApp.SetRoot(layout, true)
	a.tviewApp.SetInputCapture(a.handleKeyboard)

	a.renderTable()
	a.renderStatus()
}

// handleKeyboard handles keyboard input
func (a *App) handleKeyboard(event *tcell.EventKey) *tcell.EventKey {
	switch {
	case event.Key() == tcell.KeyEscape || event.Rune() == 'q':
		a.Stop()
		return nil
	case event.Rune() == 'r':
		go a.fetchFlights()
		return nil
	}
	return event
}

// Run starts the application
func (a *App) Run() error {
	a.updateTimer = time.NewTicker(5 * time.Second)
	go a.updateLoop()

	return a.tviewApp.Run()
}

// Stop stops the application
func (a *App) Stop() {
	if a.updateTimer != nil {
		a.updateTimer.Stop()
	}
	close(a.stopChan)
	a.tviewApp.Stop()
}

// updateLoop periodically refreshes the flight list from the API
func (a *App) updateLoop() {
	a.fetchFlights()

	for {
		select {
		case <-a.updateTimer.C:
			a.fetchFlights()
		case <-a.stopChan:
			return
		}
	}
}

// fetchFlights pulls the latest flight list from the daemon
func (a *App) fetchFlights() {
	resp, err := a.httpClient.Get(a.baseURL + "/api/flights")
	if err != nil {
		a.setError(err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.setError(fmt.Errorf("API returned status %d", resp.StatusCode))
		return
	}

	var payload flightsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		a.setError(err)
		return
	}

	a.mu.Lock()
	a.flights = payload.Flights
	a.lastUpdate = payload.UpdatedAt
	a.lastCycle = payload.Cycle
	a.lastError = nil
	a.mu.Unlock()

	a.tviewApp.QueueUpdateDraw(func() {
		a.renderTable()
		a.renderStatus()
	})
}

func (a *App) setError(err error) {
	a.mu.Lock()
	a.lastError = err
	a.mu.Unlock()

	a.tviewApp.QueueUpdateDraw(func() {
		a.renderStatus()
	})
}

// renderTable rebuilds the flight table from current state
func (a *App) renderTable() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.table.Clear()

	headers := []string{"FLIGHT", "AIRLINE", "AIRCRAFT", "FROM", "TO", a.altitudeHeader(), a.speedHeader()}
	for col, h := range headers {
		a.table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false).
			SetExpansion(1))
	}

	for row, f := range a.flights {
		cells := []string{
			f.Ident,
			f.AirlineName,
			f.AircraftName,
			airportLabel(f.Origin),
			airportLabel(f.Destination),
			a.formatAltitude(f.BaroAltitudeM),
			a.formatSpeed(f.VelocityMPS),
		}
		for col, text := range cells {
			a.table.SetCell(row+1, col, tview.NewTableCell(text).SetExpansion(1))
		}
	}
}

// renderStatus rebuilds the status panel from current state
func (a *App) renderStatus() {
	a.mu.Lock()
	defer a.mu.Unlock()

	var text string
	text += fmt.Sprintf("[gray]API:[-]      [white]%s[-]\n", a.baseURL)
	if a.lastError != nil {
		text += fmt.Sprintf("[red]ERROR:[-]    %v\n", a.lastError)
	} else if !a.lastUpdate.IsZero() {
		text += fmt.Sprintf("[gray]Updated:[-]  [white]%s[-]  [gray]Cycle:[-] [white]%d[-]\n",
			a.lastUpdate.Format("15:04:05"), a.lastCycle)
	} else {
		text += "[gray]Waiting for first update...[-]\n"
	}
	text += fmt.Sprintf("[gray]Flights:[-]  [white]%d[-]\n", len(a.flights))

	a.status.SetText(text)
}

func (a *App) altitudeHeader() string {
	if a.cfg.Display.AltitudeFeet {
		return "ALT (ft)"
	}
	return "ALT (m)"
}

func (a *App) speedHeader() string {
	if a.cfg.Display.SpeedKnots {
		return "SPD (kts)"
	}
	return "SPD (m/s)"
}

func (a *App) formatAltitude(meters float64) string {
	if meters == 0 {
		return "---"
	}
	if a.cfg.Display.AltitudeFeet {
		return fmt.Sprintf("%.0f", meters*metersToFeet)
	}
	return fmt.Sprintf("%.0f", meters)
}

func (a *App) formatSpeed(mps float64) string {
	if mps == 0 {
		return "---"
	}
	if a.cfg.Display.SpeedKnots {
		return fmt.Sprintf("%.0f", mps*mpsToKnots)
	}
	return fmt.Sprintf("%.0f", mps)
}

func airportLabel(ap aeroapi.Airport) string {
	switch {
	case ap.CodeIATA != "":
		return ap.CodeIATA
	case ap.CodeICAO != "":
		return ap.CodeICAO
	default:
		return "---"
	}
}
