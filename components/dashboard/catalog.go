package dashboard

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ettle/strcase"
)

// WidgetCatalog is the registry of widgets a dashboard grid hosts. Definitions keep
// their registration order.
type WidgetCatalog struct {
	mu          sync.RWMutex
	definitions map[string]WidgetDefinition
	order       []string
}

// NewWidgetCatalog registers defs, or the built-in widgets when none are given.
func NewWidgetCatalog(defs ...WidgetDefinition) (*WidgetCatalog, error) {
	c := &WidgetCatalog{definitions: map[string]WidgetDefinition{}}
	if len(defs) == 0 {
		defs = DefaultWidgetDefinitions()
	}
	for _, def := range defs {
		if err := c.Register(def); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register stores a definition, replacing one with the same id.
func (c *WidgetCatalog) Register(def WidgetDefinition) error {
	def.ID = strings.TrimSpace(def.ID)
	if def.ID == "" {
		return fmt.Errorf("dashboard: widget definition id is required")
	}
	switch def.Kind {
	case WidgetKindSummary, WidgetKindTable:
	case WidgetKindChart:
		switch def.Chart {
		case ChartTrend, ChartComparison, ChartDistribution:
		default:
			return fmt.Errorf("dashboard: widget %s has unsupported chart kind %q", def.ID, def.Chart)
		}
	default:
		return fmt.Errorf("dashboard: widget %s has unsupported kind %q", def.ID, def.Kind)
	}
	if def.Title == "" {
		def.Title = strcase.ToCase(def.ID, strcase.TitleCase, ' ')
	}
	def.Default.ID = def.ID
	if def.Default.W < 1 {
		def.Default.W = 1
	}
	if def.Default.H < 1 {
		def.Default.H = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.definitions[def.ID]; !exists {
		c.order = append(c.order, def.ID)
	}
	c.definitions[def.ID] = def
	return nil
}

// Definition fetches a widget definition by id.
func (c *WidgetCatalog) Definition(id string) (WidgetDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.definitions[id]
	return def, ok
}

// Definitions returns definitions in registration order.
func (c *WidgetCatalog) Definitions() []WidgetDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]WidgetDefinition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.definitions[id])
	}
	return out
}

// ChartElements maps each chart kind to the widget element that hosts it.
func (c *WidgetCatalog) ChartElements() map[ChartKind]string {
	return chartElementsFor(c.Definitions())
}

// NewGrid seeds a MemoryGrid with the catalog's default geometry.
func (c *WidgetCatalog) NewGrid() *MemoryGrid {
	return NewMemoryGrid(c.Definitions())
}

// LoadManifestDocument registers every widget from a decoded manifest.
func (c *WidgetCatalog) LoadManifestDocument(doc *WidgetManifestDocument) error {
	if doc == nil {
		return fmt.Errorf("dashboard: manifest document is nil")
	}
	for _, def := range doc.Widgets {
		if err := c.Register(def); err != nil {
			return fmt.Errorf("dashboard: register widget %s from %s: %w", def.ID, doc.Source, err)
		}
	}
	return nil
}

// LoadManifestFile reads a manifest from disk and registers its widgets.
func (c *WidgetCatalog) LoadManifestFile(path string) (*WidgetManifestDocument, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := c.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}
