package httpapi

import (
	"encoding/json"
	"fmt"
	"strings"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	"github.com/goliatone/go-analytics-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-analytics-dashboard/components/dashboard/export"
)

// MountPayload is the body of POST /dashboard/:session/mount.
type MountPayload struct {
	IDs []string `json:"ids"`
}

// CommandPayload is the body of POST /dashboard/:session/commands.
type CommandPayload struct {
	Command dashboard.LayoutCommand `json:"command"`
}

// RangePayload is the body of POST /dashboard/:session/range.
type RangePayload struct {
	Range dashboard.DateRange `json:"range"`
}

// SortPayload is the body of POST /dashboard/:session/sort.
type SortPayload struct {
	Column string `json:"column"`
}

// PagePayload is the body of POST /dashboard/:session/page.
type PagePayload struct {
	Page   int                  `json:"page"`
	Action dashboard.PageAction `json:"action"`
}

// ViewportPayload is the body of POST /dashboard/:session/viewport.
type ViewportPayload struct {
	Width int `json:"width"`
}

// RangeResponse reports whether the requested range replaced the previous one.
type RangeResponse struct {
	Applied bool                   `json:"applied"`
	State   dashboard.SessionState `json:"state"`
}

// DecodePayload unmarshals body into v, reporting failures as ErrBadRequest.
func DecodePayload(body []byte, v any) error {
	if len(body) == 0 {
		return fmt.Errorf("%w: empty body", ErrBadRequest)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

// DecodeLayoutChange validates a layout change body against the JSON schema.
func DecodeLayoutChange(validator *dashboard.LayoutChangeValidator, sessionID string, body []byte) (commands.ApplyLayoutChangeInput, error) {
	change, err := validator.Decode(body)
	if err != nil {
		return commands.ApplyLayoutChangeInput{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return commands.ApplyLayoutChangeInput{SessionID: sessionID, Entries: change.Entries}, nil
}

// ExportFile is a rendered report ready to be served.
type ExportFile struct {
	Name        string
	ContentType string
	Body        []byte
}

// Disposition returns the Content-Disposition header value.
func (f ExportFile) Disposition() string {
	return fmt.Sprintf("attachment; filename=%q", f.Name)
}

// RenderExport builds the csv or pdf report for state.
func RenderExport(state dashboard.SessionState, format string) (ExportFile, error) {
	var buf strings.Builder
	report := export.BuildReport(state.DashboardView)
	switch strings.ToLower(format) {
	case "csv":
		if err := export.WriteCSV(&buf, report); err != nil {
			return ExportFile{}, err
		}
		return ExportFile{Name: export.FileName(state.DateRange, "csv"), ContentType: "text/csv; charset=utf-8", Body: []byte(buf.String())}, nil
	case "pdf":
		if err := export.WritePDF(&buf, report); err != nil {
			return ExportFile{}, err
		}
		return ExportFile{Name: export.FileName(state.DateRange, "pdf"), ContentType: "application/pdf", Body: []byte(buf.String())}, nil
	default:
		return ExportFile{}, fmt.Errorf("%w: unsupported export format %q", ErrBadRequest, format)
	}
}
