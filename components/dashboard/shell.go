package dashboard

import (
	"context"
	"sync"
)

// MobileBreakpoint is the width below which navigation closes the sidebar.
const MobileBreakpoint = 768

// MenuItem is one entry of the sidebar navigation.
type MenuItem struct {
	Label    string `json:"label"`
	Route    string `json:"route"`
	Icon     string `json:"icon"`
	Position int    `json:"position"`
}

// DefaultMenu returns the sidebar entries of the dashboard shell.
func DefaultMenu(basePath string) []MenuItem {
	return []MenuItem{
		{Label: "Dashboard", Route: basePath + "/dashboard", Icon: "home", Position: 0},
	}
}

// Shell holds the navigation chrome state and reacts to sidebar commands.
type Shell struct {
	mu          sync.Mutex
	sidebarOpen bool
	menu        []MenuItem
	detach      func()
}

// NewShell builds a shell with the sidebar open.
func NewShell(menu []MenuItem) *Shell {
	return &Shell{
		sidebarOpen: true,
		menu:        append([]MenuItem(nil), menu...),
	}
}

// Listen subscribes to bus until ctx ends or Destroy runs.
func (s *Shell) Listen(ctx context.Context, bus *CommandBus) {
	commands, detach := bus.Subscribe()
	s.mu.Lock()
	if s.detach != nil {
		s.detach()
	}
	s.detach = detach
	s.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case cmd, ok := <-commands:
				if !ok {
					return
				}
				switch cmd {
				case CommandToggleSidebar:
					s.Toggle()
				case CommandCloseSidebar:
					s.Close()
				}
			}
		}
	}()
}

// Toggle flips the sidebar.
func (s *Shell) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sidebarOpen = !s.sidebarOpen
	return s.sidebarOpen
}

// Close hides the sidebar.
func (s *Shell) Close() {
	s.mu.Lock()
	s.sidebarOpen = false
	s.mu.Unlock()
}

// Navigate closes the sidebar on narrow viewports.
func (s *Shell) Navigate(width int) {
	if width > 0 && width < MobileBreakpoint {
		s.Close()
	}
}

// SidebarOpen reports the sidebar state.
func (s *Shell) SidebarOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sidebarOpen
}

// Menu returns a copy of the menu entries.
func (s *Shell) Menu() []MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MenuItem(nil), s.menu...)
}

// Destroy unsubscribes from the command bus.
func (s *Shell) Destroy() {
	s.mu.Lock()
	detach := s.detach
	s.detach = nil
	s.mu.Unlock()
	if detach != nil {
		detach()
	}
}
