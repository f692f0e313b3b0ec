package dashboard

import (
	"context"
	"testing"
)

func TestFacadeActivatesSession(t *testing.T) {
	service := NewService(Options{BasePath: "/admin"})
	t.Cleanup(func() { service.Close(context.Background()) })

	session, err := service.Activate(context.Background(), ActivateRequest{ViewportWidth: 1280})
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if session.ID == "" {
		t.Fatalf("expected session id")
	}
	var store KVStore = service.Layout().Store()
	if store == nil {
		t.Fatalf("expected default layout store")
	}
}
