package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"

	"github.com/vidsplit/vidsplit/internal/session"
)

type Tray struct {
	sessions *session.Service
	logger   *slog.Logger

	statusItem *systray.MenuItem
	jobsItem   *systray.MenuItem
	openItem   *systray.MenuItem

	mu sync.Mutex

	onOpen func() error
	onQuit func()
}

type TrayConfig struct {
	Sessions *session.Service
	Logger   *slog.Logger
	OnOpen   func() error
	OnQuit   func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		sessions: cfg.Sessions,
		logger:   cfg.Logger,
		onOpen:   cfg.OnOpen,
		onQuit:   cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Vidsplit")
	systray.SetTooltip("Vidsplit Agent")

	t.mu.Lock()
	t.statusItem = systray.AddMenuItem("Status: Idle", "Current agent status")
	t.statusItem.Disable()

	t.jobsItem = systray.AddMenuItem("Exports: 0", "Completed export jobs")
	t.jobsItem.Disable()
	t.mu.Unlock()

	if count, err := t.sessions.CompletedJobCount(context.Background()); err == nil {
		t.UpdateJobCount(count)
	}

	systray.AddSeparator()

	t.openItem = systray.AddMenuItem("Open Editor...", "Open the editor in a browser")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Vidsplit Agent")

	go func() {
		for {
			select {
			case <-t.openItem.ClickedCh:
				t.handleOpen()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) handleOpen() {
	if t.onOpen != nil {
		if err := t.onOpen(); err != nil {
			t.logger.Error("failed to open editor", "error", err)
		}
	}
}

// UpdateStatus replaces the status line. Updates arriving before the
// menu is built are dropped; onReady sets the initial state itself.
func (t *Tray) UpdateStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.statusItem == nil {
		return
	}
	t.statusItem.SetTitle("Status: " + status)
}

func (t *Tray) UpdateJobCount(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.jobsItem == nil {
		return
	}
	t.jobsItem.SetTitle(fmt.Sprintf("Exports: %d", count))
}

func (t *Tray) Quit() {
	systray.Quit()
}
