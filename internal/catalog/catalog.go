// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog holds the static tool descriptors: display metadata and
// the wire contract of each remote conversion endpoint.
package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfbuddy/pkg/types"
)

const (
	// FallbackTitle is shown for routes that match no tool.
	FallbackTitle = "Tool"
	// FallbackSubtitle is shown for routes that match no tool.
	FallbackSubtitle = "Upload and process your files"
	// FallbackColor is the accent used when a tool has no usable colour.
	FallbackColor = "#DBEAFE"
)

//go:embed tools.yaml
var embedded []byte

// Catalog indexes tool descriptors by id and by route.
type Catalog struct {
	tools   []types.ToolDescriptor
	byID    map[types.ToolID]int
	byRoute map[string]int
}

type catalogFile struct {
	Tools []types.ToolDescriptor `yaml:"tools"`
}

// Parse reads a YAML catalog and validates it.
func Parse(r io.Reader) (*Catalog, error) {
	var f catalogFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	c := &Catalog{
		byID:    make(map[types.ToolID]int, len(f.Tools)),
		byRoute: make(map[string]int, len(f.Tools)),
	}
	for _, t := range f.Tools {
		if t.ID == "" {
			return nil, fmt.Errorf("catalog entry %q has no id", t.Title)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate tool id %q", t.ID)
		}
		if t.Endpoint == "" {
			return nil, fmt.Errorf("tool %q has no endpoint", t.ID)
		}
		if t.Filename == "" {
			return nil, fmt.Errorf("tool %q has no download filename", t.ID)
		}
		for i, ext := range t.Accept {
			t.Accept[i] = strings.ToLower(ext)
		}
		c.byID[t.ID] = len(c.tools)
		if t.Route != "" {
			c.byRoute[normalizeRoute(t.Route)] = len(c.tools)
		}
		c.tools = append(c.tools, t)
	}
	return c, nil
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Parse(strings.NewReader(string(embedded)))
	})
	return defaultCat, defaultErr
}

// Get returns the descriptor for id.
func (c *Catalog) Get(id types.ToolID) (types.ToolDescriptor, bool) {
	i, ok := c.byID[id]
	if !ok {
		return types.ToolDescriptor{}, false
	}
	return c.tools[i], true
}

// Lookup resolves a route ("/merge-pdf", "merge-pdf") or a tool id
// ("merge"). It reports false when neither matches.
func (c *Catalog) Lookup(key string) (types.ToolDescriptor, bool) {
	if i, ok := c.byRoute[normalizeRoute(key)]; ok {
		return c.tools[i], true
	}
	return c.Get(types.ToolID(strings.TrimPrefix(key, "/")))
}

// Display returns the descriptor for key, or a placeholder carrying the
// fallback title, subtitle and colour.
func (c *Catalog) Display(key string) types.ToolDescriptor {
	if d, ok := c.Lookup(key); ok {
		return d
	}
	return types.ToolDescriptor{
		Title:    FallbackTitle,
		Subtitle: FallbackSubtitle,
	}
}

// All returns every descriptor sorted by id.
func (c *Catalog) All() []types.ToolDescriptor {
	out := make([]types.ToolDescriptor, len(c.tools))
	copy(out, c.tools)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func normalizeRoute(r string) string {
	return strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(r), "/"), "/")
}

// AccentColor extracts the hex colour from an accent class of the form
// "bg-[#RRGGBB]". Anything else yields FallbackColor.
func AccentColor(d types.ToolDescriptor) string {
	c := d.Color
	if strings.HasPrefix(c, "bg-[") && strings.HasSuffix(c, "]") && strings.Contains(c, "#") {
		return c[4 : len(c)-1]
	}
	return FallbackColor
}

// ContrastTextColor picks a subtitle colour readable on the given
// background, using the YIQ brightness formula. Light backgrounds get dark
// grey text and dark backgrounds get light grey text.
func ContrastTextColor(hex string) string {
	r, g, b, err := hexToRGB(hex)
	if err != nil {
		return "#4B5563"
	}
	yiq := (r*299 + g*587 + b*114) / 1000
	if yiq >= 128 {
		return "#4B5563"
	}
	return "#D1D5DB"
}

func hexToRGB(hex string) (r, g, b int, err error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex colour %q", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex colour %q: %w", hex, err)
	}
	return int(v>>16) & 255, int(v>>8) & 255, int(v) & 255, nil
}
