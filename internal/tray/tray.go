// Package tray provides a system tray interface for the live translator.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the system tray menu for the translator. It mirrors the
// detection state of the pipeline and surfaces the most recent
// confirmed sign.
type Tray struct {
	onToggle func(active bool)
	onOpenUI func()
	onQuit   func()
	active   bool
	mu       sync.RWMutex

	menuToggle *systray.MenuItem
	menuLast   *systray.MenuItem
}

func New() *Tray {
	return &Tray{}
}

// OnToggle sets the callback invoked when detection is started or
// stopped from the menu.
func (t *Tray) OnToggle(fn func(active bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpenUI sets the callback invoked when the user asks to open the
// web interface.
func (t *Tray) OnOpenUI(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpenUI = fn
}

// OnQuit sets the callback invoked before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray. It blocks until systray.Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetTitle("HandStand")
	systray.SetTooltip("The HandStand ASL Translator")

	t.menuToggle = systray.AddMenuItem("Start Detection", "Start or stop sign detection")
	systray.AddSeparator()

	t.menuLast = systray.AddMenuItem("Last sign: none", "Most recent confirmed sign")
	t.menuLast.Disable()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Translator...", "Open the translator in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit The HandStand")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpenUI()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.active = !t.active
	active := t.active
	if active {
		t.menuToggle.SetTitle("Stop Detection")
	} else {
		t.menuToggle.SetTitle("Start Detection")
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Run the callback outside the lock so it can call back into the tray.
	if callback != nil {
		callback(active)
	}
}

func (t *Tray) handleOpenUI() {
	t.mu.RLock()
	callback := t.onOpenUI
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetLastSign updates the last-sign entry in the menu.
func (t *Tray) SetLastSign(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLast != nil {
		if name == "" {
			t.menuLast.SetTitle("Last sign: none")
		} else {
			t.menuLast.SetTitle("Last sign: " + name)
		}
	}
}

// SetActive synchronizes the menu with detection state changed
// elsewhere, for example from the web UI.
func (t *Tray) SetActive(active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active = active
	if t.menuToggle == nil {
		return
	}
	if active {
		t.menuToggle.SetTitle("Stop Detection")
	} else {
		t.menuToggle.SetTitle("Start Detection")
	}
}

// Active reports whether the menu shows detection as running.
func (t *Tray) Active() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}
