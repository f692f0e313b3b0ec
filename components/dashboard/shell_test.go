package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellReactsToSidebarCommands(t *testing.T) {
	bus := NewCommandBus()
	shell := NewShell(DefaultMenu("/admin"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	shell.Listen(ctx, bus)
	require.True(t, shell.SidebarOpen())

	bus.Publish(CommandToggleSidebar)
	require.Eventually(t, func() bool { return !shell.SidebarOpen() }, time.Second, time.Millisecond)

	bus.Publish(CommandToggleSidebar)
	require.Eventually(t, shell.SidebarOpen, time.Second, time.Millisecond)

	bus.Publish(CommandCloseSidebar)
	require.Eventually(t, func() bool { return !shell.SidebarOpen() }, time.Second, time.Millisecond)

	shell.Destroy()
	assert.Zero(t, bus.Subscribers())
}

func TestShellNavigateClosesOnNarrowViewports(t *testing.T) {
	shell := NewShell(nil)
	shell.Navigate(1024)
	assert.True(t, shell.SidebarOpen())
	shell.Navigate(767)
	assert.False(t, shell.SidebarOpen())
}

func TestDefaultMenu(t *testing.T) {
	menu := NewShell(DefaultMenu("/admin")).Menu()
	require.Len(t, menu, 1)
	assert.Equal(t, "Dashboard", menu[0].Label)
	assert.Equal(t, "/admin/dashboard", menu[0].Route)
}
