// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package params models tool-specific conversion options: compression
// level, split ranges and extract page lists. It validates them against the
// document's page count and serializes them into multipart form fields.
package params

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/pdfbuddy/pkg/types"
)

// Level is a compression level.
type Level string

const (
	LevelHigh Level = "high"
	LevelLow  Level = "low"
)

// PageMode selects how the split tool interprets its selection.
type PageMode string

const (
	// ModeSplit sends comma-joined "from-to" segments.
	ModeSplit PageMode = "split"
	// ModeExtract sends comma-joined page numbers.
	ModeExtract PageMode = "extract"
)

// AllPages is the extract sentinel meaning every page of the document.
const AllPages = "all"

var (
	ErrInvalidLevel = errors.New("compression level must be high or low")
	ErrInvalidMode  = errors.New("page mode must be split or extract")
	ErrInvalidRange = errors.New("invalid page range")
	ErrNoPages      = errors.New("no pages selected")
	ErrPageCount    = errors.New("page count unknown")
)

// Range is an inclusive page interval, 1-based. A zero bound means the
// bound has not been entered yet.
type Range struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
}

// Valid reports whether both bounds are set, ordered, and, when total is
// known (> 0), within [1, total].
func (r Range) Valid(total int) bool {
	if r.From < 1 || r.To < 1 || r.From > r.To {
		return false
	}
	return total <= 0 || r.To <= total
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.From, r.To)
}

// Parameters is the full option set for one submission. Only the fields a
// tool declares in its descriptor are validated and sent.
type Parameters struct {
	Level Level    `json:"level,omitempty" yaml:"level,omitempty"`
	Mode  PageMode `json:"mode,omitempty" yaml:"mode,omitempty"`

	// Ranges are the split segments, in user order.
	Ranges []Range `json:"ranges,omitempty" yaml:"ranges,omitempty"`

	// Pages are the pages to extract. Ignored when All is set.
	Pages []int `json:"pages,omitempty" yaml:"pages,omitempty"`
	All   bool  `json:"all,omitempty" yaml:"all,omitempty"`

	// TotalPages is the page count of the input document, or 0 if unknown.
	TotalPages int `json:"total_pages,omitempty" yaml:"total_pages,omitempty"`
}

// Defaults returns the parameters a tool starts with.
func Defaults() Parameters {
	return Parameters{Level: LevelHigh, Mode: ModeSplit}
}

// Field is one serialized multipart form field.
type Field struct {
	Name  string
	Value string
}

// Validate checks the parameters the tool declares. It returns nil when the
// parameters may be submitted.
func (p Parameters) Validate(d types.ToolDescriptor) error {
	if d.HasParam("level") {
		if p.Level != LevelHigh && p.Level != LevelLow {
			return fmt.Errorf("%w: %q", ErrInvalidLevel, p.Level)
		}
	}
	if d.HasParam("range") {
		switch p.Mode {
		case ModeSplit:
			if len(p.Ranges) == 0 {
				return ErrNoPages
			}
			for i, r := range p.Ranges {
				if !r.Valid(p.TotalPages) {
					return fmt.Errorf("%w: range %d (%d-%d) of %d pages", ErrInvalidRange, i+1, r.From, r.To, p.TotalPages)
				}
			}
		case ModeExtract:
			if p.All && p.TotalPages <= 0 {
				return fmt.Errorf("%w: cannot expand %q", ErrPageCount, AllPages)
			}
			if len(p.extractPages()) == 0 {
				return ErrNoPages
			}
		default:
			return fmt.Errorf("%w: %q", ErrInvalidMode, p.Mode)
		}
	}
	return nil
}

// Fields serializes the parameters the tool declares, in a stable order.
// Invalid split ranges are never serialized.
func (p Parameters) Fields(d types.ToolDescriptor) []Field {
	var out []Field
	if d.HasParam("level") {
		out = append(out, Field{Name: "level", Value: string(p.Level)})
	}
	if d.HasParam("range") {
		out = append(out, Field{Name: "range", Value: p.RangeValue()})
	}
	return out
}

// RangeValue is the wire value of the "range" field: comma-joined page
// numbers in extract mode, comma-joined "from-to" segments in split mode.
func (p Parameters) RangeValue() string {
	if p.Mode == ModeExtract {
		pages := p.extractPages()
		parts := make([]string, len(pages))
		for i, n := range pages {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, ",")
	}

	var parts []string
	for _, r := range p.Ranges {
		if r.Valid(p.TotalPages) {
			parts = append(parts, r.String())
		}
	}
	return strings.Join(parts, ",")
}

// SelectedPages returns the sorted, de-duplicated union of pages the
// selection covers.
func (p Parameters) SelectedPages() []int {
	if p.Mode == ModeExtract {
		return p.extractPages()
	}
	seen := map[int]bool{}
	var out []int
	for _, r := range p.Ranges {
		if !r.Valid(p.TotalPages) {
			continue
		}
		for n := r.From; n <= r.To; n++ {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	sort.Ints(out)
	return out
}

// Filename returns the suggested download name, which for the split tool
// depends on the mode.
func (p Parameters) Filename(d types.ToolDescriptor) string {
	if d.HasParam("range") {
		if p.Mode == ModeExtract {
			return "extracted-pages.zip"
		}
		return "split-pages.zip"
	}
	return d.Filename
}

func (p Parameters) extractPages() []int {
	if p.All {
		out := make([]int, 0, p.TotalPages)
		for n := 1; n <= p.TotalPages; n++ {
			out = append(out, n)
		}
		return out
	}
	seen := map[int]bool{}
	var out []int
	for _, n := range p.Pages {
		if n < 1 || (p.TotalPages > 0 && n > p.TotalPages) || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// ParseLevel parses a compression level name.
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
	case LevelHigh, LevelLow:
		return l, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

// ParseRanges parses "1-3,5,7-9". A single number n means n-n. Bounds are
// not checked against a page count here; Validate does that.
func ParseRanges(s string) ([]Range, error) {
	var out []Range
	for _, seg := range strings.Split(s, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		from, to, isRange := strings.Cut(seg, "-")
		f, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRange, seg)
		}
		t := f
		if isRange {
			t, err = strconv.Atoi(strings.TrimSpace(to))
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidRange, seg)
			}
		}
		out = append(out, Range{From: f, To: t})
	}
	return out, nil
}

// ParsePages parses a comma-separated page list or the "all" sentinel.
// Entries that are not numbers are skipped.
func ParsePages(s string) (pages []int, all bool) {
	if strings.EqualFold(strings.TrimSpace(s), AllPages) {
		return nil, true
	}
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		pages = append(pages, n)
	}
	return pages, false
}
