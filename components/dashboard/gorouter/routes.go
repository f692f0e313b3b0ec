package gorouter

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	"github.com/goliatone/go-analytics-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-analytics-dashboard/components/dashboard/httpapi"
	router "github.com/goliatone/go-router"
)

// Config wires go-router with the dashboard controller, API and event stream.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *dashboard.Controller
	Sessions   httpapi.Activator
	API        httpapi.Executor
	Events     *dashboard.EventBroadcaster
	Validator  *dashboard.LayoutChangeValidator
	BasePath   string
	Routes     RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML      string
	State     string
	Mount     string
	Commands  string
	Layout    string
	Range     string
	Sort      string
	Page      string
	Viewport  string
	Session   string
	ExportCSV string
	ExportPDF string
	WebSocket string
}

// routeRegistrar is the part of router.Router the dashboard routes need.
type routeRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo
}

// Register mounts dashboard routes (HTML, JSON, export, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	if cfg.Sessions == nil {
		return errors.New("gorouter: session activator is required")
	}
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}
	register(cfg.Router.Group(base), routeSet{
		controller: cfg.Controller,
		sessions:   cfg.Sessions,
		api:        cfg.API,
		events:     cfg.Events,
		validator:  cfg.Validator,
		routes:     defaultRouteConfig(cfg.Routes),
	})
	return nil
}

type routeSet struct {
	controller *dashboard.Controller
	sessions   httpapi.Activator
	api        httpapi.Executor
	events     *dashboard.EventBroadcaster
	validator  *dashboard.LayoutChangeValidator
	routes     RouteConfig
}

func register(r routeRegistrar, set routeSet) {
	routes := set.routes

	r.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		id, err := httpapi.ResolvePageSession(ctx.Context(), set.sessions, ctx.Query("session"), ctx.Query("width"), ctx.Query("range"))
		if err != nil {
			return respondError(ctx, err)
		}
		var buf bytes.Buffer
		if err := set.controller.RenderTemplate(ctx.Context(), id, &buf); err != nil {
			return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	if set.api != nil {
		registerAPI(r, set.api, set.validator, routes)
	}

	if set.events != nil {
		registerWebSocket(r, set.events, routes.WebSocket)
	}
}

func registerAPI(r routeRegistrar, api httpapi.Executor, validator *dashboard.LayoutChangeValidator, routes RouteConfig) {
	if validator == nil {
		validator = dashboard.NewLayoutChangeValidator()
	}
	respondState := func(ctx router.Context, id string) error {
		state, err := api.State(ctx.Context(), id)
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, state)
	}

	r.Get(routes.State, router.WrapHandler(func(ctx router.Context) error {
		return respondState(ctx, ctx.Param("session"))
	}))

	r.Post(routes.Mount, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("session")
		var payload httpapi.MountPayload
		if err := httpapi.DecodePayload(ctx.Body(), &payload); err != nil {
			return respondError(ctx, err)
		}
		if err := api.Mount(ctx.Context(), commands.MountInput{SessionID: id, IDs: payload.IDs}); err != nil {
			return respondError(ctx, err)
		}
		return respondState(ctx, id)
	}))

	r.Post(routes.Commands, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("session")
		var payload httpapi.CommandPayload
		if err := httpapi.DecodePayload(ctx.Body(), &payload); err != nil {
			return respondError(ctx, err)
		}
		if !payload.Command.Valid() {
			return respondError(ctx, dashboard.ErrUnknownCommand)
		}
		if err := api.Dispatch(ctx.Context(), commands.DispatchInput{SessionID: id, Command: payload.Command}); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
	}))

	r.Post(routes.Layout, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("session")
		input, err := httpapi.DecodeLayoutChange(validator, id, ctx.Body())
		if err != nil {
			return respondError(ctx, err)
		}
		if err := api.ApplyLayout(ctx.Context(), input); err != nil {
			return respondError(ctx, err)
		}
		return respondState(ctx, id)
	}))

	r.Post(routes.Range, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("session")
		var payload httpapi.RangePayload
		if err := httpapi.DecodePayload(ctx.Body(), &payload); err != nil {
			return respondError(ctx, err)
		}
		requested, parseErr := dashboard.ParseDateRange(string(payload.Range))
		if parseErr != nil {
			requested = payload.Range
		}
		if err := api.ChangeRange(ctx.Context(), commands.ChangeDateRangeInput{SessionID: id, Range: requested}); err != nil {
			return respondError(ctx, err)
		}
		state, err := api.State(ctx.Context(), id)
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, httpapi.RangeResponse{Applied: parseErr == nil && state.DateRange == requested, State: state})
	}))

	r.Post(routes.Sort, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("session")
		var payload httpapi.SortPayload
		if err := httpapi.DecodePayload(ctx.Body(), &payload); err != nil {
			return respondError(ctx, err)
		}
		if err := api.Sort(ctx.Context(), commands.SortTableInput{SessionID: id, Column: payload.Column}); err != nil {
			return respondError(ctx, err)
		}
		return respondState(ctx, id)
	}))

	r.Post(routes.Page, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("session")
		var payload httpapi.PagePayload
		if err := httpapi.DecodePayload(ctx.Body(), &payload); err != nil {
			return respondError(ctx, err)
		}
		if err := api.Paginate(ctx.Context(), commands.PaginateInput{SessionID: id, Action: payload.Action, Page: payload.Page}); err != nil {
			return respondError(ctx, err)
		}
		return respondState(ctx, id)
	}))

	r.Post(routes.Viewport, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("session")
		var payload httpapi.ViewportPayload
		if err := httpapi.DecodePayload(ctx.Body(), &payload); err != nil {
			return respondError(ctx, err)
		}
		if payload.Width <= 0 {
			return respondError(ctx, fmt.Errorf("%w: width must be positive", httpapi.ErrBadRequest))
		}
		if err := api.Resize(ctx.Context(), commands.ResizeViewportInput{SessionID: id, Width: payload.Width}); err != nil {
			return respondError(ctx, err)
		}
		return respondState(ctx, id)
	}))

	r.Delete(routes.Session, router.WrapHandler(func(ctx router.Context) error {
		if err := api.Deactivate(ctx.Context(), commands.DeactivateSessionInput{SessionID: ctx.Param("session")}); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "deactivated"})
	}))

	exportRoute := func(format string) router.HandlerFunc {
		return router.WrapHandler(func(ctx router.Context) error {
			state, err := api.State(ctx.Context(), ctx.Param("session"))
			if err != nil {
				return respondError(ctx, err)
			}
			file, err := httpapi.RenderExport(state, format)
			if err != nil {
				return respondError(ctx, err)
			}
			ctx.SetHeader("Content-Type", file.ContentType)
			ctx.SetHeader("Content-Disposition", file.Disposition())
			return ctx.Send(file.Body)
		})
	}
	r.Get(routes.ExportCSV, exportRoute("csv"))
	r.Get(routes.ExportPDF, exportRoute("pdf"))
}

func registerWebSocket(r routeRegistrar, events *dashboard.EventBroadcaster, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		if err := events.Stream(ws.Context(), ws, ""); err != nil {
			return err
		}
		return ws.Close()
	})
}

func respondError(ctx router.Context, err error) error {
	return ctx.JSON(httpapi.StatusFor(err), map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.State == "" {
		routes.State = "/dashboard/:session/state"
	}
	if routes.Mount == "" {
		routes.Mount = "/dashboard/:session/mount"
	}
	if routes.Commands == "" {
		routes.Commands = "/dashboard/:session/commands"
	}
	if routes.Layout == "" {
		routes.Layout = "/dashboard/:session/layout"
	}
	if routes.Range == "" {
		routes.Range = "/dashboard/:session/range"
	}
	if routes.Sort == "" {
		routes.Sort = "/dashboard/:session/sort"
	}
	if routes.Page == "" {
		routes.Page = "/dashboard/:session/page"
	}
	if routes.Viewport == "" {
		routes.Viewport = "/dashboard/:session/viewport"
	}
	if routes.Session == "" {
		routes.Session = "/dashboard/:session"
	}
	if routes.ExportCSV == "" {
		routes.ExportCSV = "/dashboard/:session/export.csv"
	}
	if routes.ExportPDF == "" {
		routes.ExportPDF = "/dashboard/:session/export.pdf"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	return routes
}
