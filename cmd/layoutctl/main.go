package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-analytics-dashboard/components/dashboard"
	"github.com/goliatone/go-analytics-dashboard/pkg/kvstore"
)

type storeFlags struct {
	Driver    string `default:"memory" enum:"memory,file,redis,sqlite,postgres" env:"DASHBOARD_STORE_DRIVER" help:"Layout store driver."`
	DSN       string `name:"dsn" env:"DASHBOARD_STORE_DSN" help:"Store location (file path, redis URL or SQL DSN)."`
	LayoutKey string `default:"dashboard-layout" env:"DASHBOARD_LAYOUT_KEY" help:"Storage slot holding the layout."`
	Manifest  string `type:"path" help:"Optional widget manifest registered on top of the built-in catalog."`
}

type cli struct {
	storeFlags

	Show   showCmd   `cmd:"" help:"Print the persisted layout."`
	Reset  resetCmd  `cmd:"" help:"Clear the persisted layout so the grid defaults apply."`
	Import importCmd `cmd:"" help:"Persist a layout read from a YAML/JSON file."`
	Export exportCmd `cmd:"" help:"Write the effective layout (persisted geometry over catalog defaults)."`
	Widget widgetCmd `cmd:"" help:"Add a widget definition to a manifest file."`
}

// runContext is bound into every command's Run method.
type runContext struct {
	ctx     context.Context
	out     io.Writer
	flags   storeFlags
	catalog *dashboard.WidgetCatalog
	layout  *dashboard.LayoutRepository
}

func main() {
	var app cli
	kctx := kong.Parse(&app,
		kong.Name("layoutctl"),
		kong.Description("Inspect and edit the persisted analytics dashboard layout."),
		kong.UsageOnError(),
	)
	rc := &runContext{ctx: context.Background(), out: os.Stdout, flags: app.storeFlags}
	err := kctx.Run(rc)
	kctx.FatalIfErrorf(err)
}

// open lazily builds the catalog and the layout repository.
func (rc *runContext) open() (func() error, error) {
	catalog, err := dashboard.NewWidgetCatalog()
	if err != nil {
		return nil, err
	}
	if rc.flags.Manifest != "" {
		if _, err := catalog.LoadManifestFile(rc.flags.Manifest); err != nil {
			return nil, err
		}
	}
	store, err := kvstore.Open(rc.ctx, rc.flags.Driver, rc.flags.DSN)
	if err != nil {
		return nil, fmt.Errorf("layoutctl: open store: %w", err)
	}
	rc.catalog = catalog
	rc.layout = dashboard.NewLayoutRepository(store, dashboard.WithLayoutKey(rc.flags.LayoutKey))
	return store.Close, nil
}

type showCmd struct {
	Format string `default:"yaml" enum:"yaml,json" help:"Output format."`
}

func (cmd *showCmd) Run(rc *runContext) error {
	closeStore, err := rc.open()
	if err != nil {
		return err
	}
	defer closeStore()
	entries, err := rc.layout.Load(rc.ctx)
	if err != nil {
		return err
	}
	if entries == nil {
		fmt.Fprintf(rc.out, "no layout stored under %q\n", rc.layout.Key())
		return nil
	}
	return writeEntries(rc.out, cmd.Format, entries)
}

type resetCmd struct{}

func (cmd *resetCmd) Run(rc *runContext) error {
	closeStore, err := rc.open()
	if err != nil {
		return err
	}
	defer closeStore()
	if err := rc.layout.Clear(rc.ctx); err != nil {
		return err
	}
	fmt.Fprintf(rc.out, "✓ Cleared %s\n", rc.layout.Key())
	return nil
}

type importCmd struct {
	File string `arg:"" type:"existingfile" help:"YAML or JSON file with a list of {id,x,y,w,h} entries."`
}

func (cmd *importCmd) Run(rc *runContext) error {
	closeStore, err := rc.open()
	if err != nil {
		return err
	}
	defer closeStore()
	entries, err := readEntries(cmd.File)
	if err != nil {
		return err
	}
	kept := make([]dashboard.WidgetLayoutEntry, 0, len(entries))
	for _, entry := range entries {
		if _, ok := rc.catalog.Definition(entry.ID); !ok {
			fmt.Fprintf(rc.out, "skipping unknown widget %s\n", entry.ID)
			continue
		}
		kept = append(kept, entry)
	}
	if len(kept) == 0 {
		return errors.New("layoutctl: no known widgets in layout file")
	}
	if err := rc.layout.Save(rc.ctx, kept); err != nil {
		return err
	}
	fmt.Fprintf(rc.out, "✓ Stored %d widgets under %s\n", len(kept), rc.layout.Key())
	return nil
}

type exportCmd struct {
	Format string `default:"yaml" enum:"yaml,json" help:"Output format."`
	Out    string `type:"path" help:"Write to this file instead of stdout."`
}

func (cmd *exportCmd) Run(rc *runContext) error {
	closeStore, err := rc.open()
	if err != nil {
		return err
	}
	defer closeStore()
	persisted, err := rc.layout.Load(rc.ctx)
	if err != nil && !errors.Is(err, dashboard.ErrMalformedLayout) {
		return err
	}
	grid := rc.catalog.NewGrid()
	for _, entry := range persisted {
		grid.Update(entry)
	}
	if cmd.Out == "" {
		return writeEntries(rc.out, cmd.Format, grid.Positions())
	}
	if err := os.MkdirAll(filepath.Dir(cmd.Out), 0o755); err != nil {
		return fmt.Errorf("layoutctl: mkdir %s: %w", filepath.Dir(cmd.Out), err)
	}
	file, err := os.Create(cmd.Out) //nolint:gosec
	if err != nil {
		return fmt.Errorf("layoutctl: create %s: %w", cmd.Out, err)
	}
	defer file.Close()
	return writeEntries(file, cmd.Format, grid.Positions())
}

type widgetCmd struct {
	Add widgetAddCmd `cmd:"" help:"Add or replace a widget definition in a manifest."`
}

type widgetAddCmd struct {
	ID           string `required:"" help:"Widget id, used as the DOM element id."`
	Title        string `help:"Display title (defaults to the title-cased id)."`
	Kind         string `required:"" enum:"summary,chart,table" help:"Widget kind."`
	Chart        string `help:"Chart kind for chart widgets (trend, comparison, distribution)."`
	X            int    `help:"Default column."`
	Y            int    `help:"Default row."`
	W            int    `default:"4" help:"Default width in cells."`
	H            int    `default:"2" help:"Default height in cells."`
	ManifestPath string `required:"" name:"manifest-path" type:"path" help:"Manifest YAML file to update."`
	Overwrite    bool   `help:"Replace an existing widget with the same id."`
}

func (cmd *widgetAddCmd) Run(rc *runContext) error {
	def := dashboard.WidgetDefinition{
		ID:      strings.TrimSpace(cmd.ID),
		Title:   cmd.Title,
		Kind:    dashboard.WidgetKind(cmd.Kind),
		Chart:   dashboard.ChartKind(cmd.Chart),
		Default: dashboard.WidgetLayoutEntry{X: cmd.X, Y: cmd.Y, W: cmd.W, H: cmd.H},
	}
	if def.Title == "" {
		def.Title = strcase.ToCase(def.ID, strcase.TitleCase, ' ')
	}
	def.Default.ID = def.ID
	// reject what the catalog would reject at load time
	if _, err := dashboard.NewWidgetCatalog(def); err != nil {
		return err
	}

	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("layoutctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	replaced := false
	for idx := range doc.Widgets {
		if doc.Widgets[idx].ID != def.ID {
			continue
		}
		if !cmd.Overwrite {
			return fmt.Errorf("layoutctl: manifest already defines widget %s (use --overwrite to replace)", def.ID)
		}
		doc.Widgets[idx] = def
		replaced = true
	}
	if !replaced {
		doc.Widgets = append(doc.Widgets, def)
	}
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	fmt.Fprintf(rc.out, "✓ Added %s to %s\n", def.ID, manifestPath)
	return nil
}

func loadOrInitManifest(path string) (*dashboard.WidgetManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &dashboard.WidgetManifestDocument{
				Version: dashboard.ManifestVersion,
				Name:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("layoutctl: stat manifest: %w", err)
	}
	return dashboard.ReadManifest(path)
}

func writeManifest(path string, doc *dashboard.WidgetManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("layoutctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("layoutctl: create manifest %s: %w", path, err)
	}
	defer file.Close()
	return dashboard.EncodeManifest(file, doc.Name, doc.Widgets)
}

// readEntries accepts either a JSON array (aliases such as gsId included) or
// a YAML list.
func readEntries(path string) ([]dashboard.WidgetLayoutEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("layoutctl: read %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		entries, _, err := dashboard.DecodeLayout(string(raw))
		return entries, err
	}
	var records []map[string]any
	if err := yaml.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("layoutctl: parse %s: %w", path, err)
	}
	entries, _ := dashboard.SanitizeLayout(records)
	return entries, nil
}

func writeEntries(w io.Writer, format string, entries []dashboard.WidgetLayoutEntry) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(entries)
}
