// Package render draws fitted lines onto the composed canvas in their
// detected style: case transform, resolved font, measured size, color.
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sort"

	"golang.org/x/image/font"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/aenuguzocket/texteditor-pipeline/fonts"
	"github.com/aenuguzocket/texteditor-pipeline/layout"
	"github.com/aenuguzocket/texteditor-pipeline/model"
)

// Placement records where and how one line was drawn, with enough
// detail to re-edit the text later without re-running detection.
type Placement struct {
	RegionIDs []string   `json:"region_ids"`
	Text      string     `json:"text"`
	Family    string     `json:"family"`
	Weight    int        `json:"weight"`
	Size      int        `json:"size"`
	Color     string     `json:"color"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Box       model.BBox `json:"box"`
	Fallback  bool       `json:"fallback,omitempty"`
}

// Note reports a non-fatal degradation during rendering.
type Note struct {
	Line    string `json:"line"`
	Message string `json:"message"`
}

// Renderer draws clustered lines onto a canvas.
type Renderer struct {
	resolver *fonts.Resolver
	assets   *fonts.Assets
	fitter   *layout.Fitter

	// fallbackFamily is passed through to every resolution request.
	fallbackFamily string
}

// New creates a Renderer. fallbackFamily may be empty.
func New(resolver *fonts.Resolver, assets *fonts.Assets, fitter *layout.Fitter, fallbackFamily string) *Renderer {
	if fitter == nil {
		fitter = layout.NewFitter()
	}
	return &Renderer{
		resolver:       resolver,
		assets:         assets,
		fitter:         fitter,
		fallbackFamily: fallbackFamily,
	}
}

// Render draws each line onto the canvas and returns the placement
// records, the set of font resolutions actually used, and any notes.
// A line whose resolved font cannot be loaded is drawn with the default
// face for its weight instead of being dropped.
func (r *Renderer) Render(ctx context.Context, canvas *image.NRGBA, lines []layout.Line) ([]Placement, []fonts.Resolution, []Note) {
	placements := make([]Placement, 0, len(lines))
	var notes []Note
	used := make(map[string]fonts.Resolution)

	for _, line := range lines {
		text := applyCase(line.Text, line.Style.Case)

		res := r.resolver.Resolve(ctx, fonts.Request{
			Family:   line.Style.Family,
			Fallback: r.fallbackFamily,
			Weight:   line.Style.Weight,
		})

		fnt, err := r.assets.Load(ctx, res)
		if err != nil {
			notes = append(notes, Note{
				Line:    text,
				Message: fmt.Sprintf("font %s %d unavailable, using default: %v", res.Family, res.Weight, err),
			})
			res = fonts.DefaultResolution(line.Style.Weight)
			if fnt, err = r.assets.Default(line.Style.Weight); err != nil {
				notes = append(notes, Note{Line: text, Message: fmt.Sprintf("default font unavailable: %v", err)})
				fnt = nil
			}
		}

		fit := r.fitter.Fit(fnt, text, line.BBox, line.Role)
		if fit.Fallback {
			notes = append(notes, Note{Line: text, Message: "glyph fitting failed, bitmap fallback at box origin"})
		}

		col, ok := parseHexColor(line.Style.Color)
		if !ok && line.Style.Color != "" {
			notes = append(notes, Note{Line: text, Message: fmt.Sprintf("unparseable color %q, using black", line.Style.Color)})
		}

		drawer := font.Drawer{
			Dst:  canvas,
			Src:  image.NewUniform(col),
			Face: fit.Face,
			Dot:  fit.Dot,
		}
		drawer.DrawString(text)

		used[res.Key()] = res
		placements = append(placements, Placement{
			RegionIDs: memberIDs(line),
			Text:      text,
			Family:    res.Family,
			Weight:    res.Weight,
			Size:      fit.Size,
			Color:     line.Style.Color,
			X:         float64(fit.Dot.X) / 64,
			Y:         float64(fit.Dot.Y) / 64,
			Box:       line.BBox,
			Fallback:  fit.Fallback,
		})
	}

	return placements, sortedResolutions(used), notes
}

func memberIDs(line layout.Line) []string {
	ids := make([]string, len(line.Members))
	for i, m := range line.Members {
		ids[i] = m.ID
	}
	return ids
}

func applyCase(text string, c model.TextCase) string {
	switch c {
	case model.CaseUpper:
		return cases.Upper(language.Und).String(text)
	case model.CaseLower:
		return cases.Lower(language.Und).String(text)
	case model.CaseTitle:
		return cases.Title(language.Und).String(text)
	default:
		return text
	}
}

// parseHexColor parses #RGB and #RRGGBB. Anything else yields opaque
// black and ok=false.
func parseHexColor(s string) (color.NRGBA, bool) {
	black := color.NRGBA{A: 255}
	if len(s) == 0 || s[0] != '#' {
		return black, false
	}

	hex := s[1:]
	switch len(hex) {
	case 3:
		r, okR := hexNibble(hex[0])
		g, okG := hexNibble(hex[1])
		b, okB := hexNibble(hex[2])
		if !okR || !okG || !okB {
			return black, false
		}
		return color.NRGBA{R: r * 17, G: g * 17, B: b * 17, A: 255}, true
	case 6:
		var channels [3]uint8
		for i := 0; i < 3; i++ {
			hi, okHi := hexNibble(hex[2*i])
			lo, okLo := hexNibble(hex[2*i+1])
			if !okHi || !okLo {
				return black, false
			}
			channels[i] = hi<<4 | lo
		}
		return color.NRGBA{R: channels[0], G: channels[1], B: channels[2], A: 255}, true
	default:
		return black, false
	}
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

func sortedResolutions(used map[string]fonts.Resolution) []fonts.Resolution {
	keys := make([]string, 0, len(used))
	for k := range used {
		keys = append(keys, k)
	}
	// Deterministic report ordering.
	sort.Strings(keys)

	out := make([]fonts.Resolution, len(keys))
	for i, k := range keys {
		out[i] = used[k]
	}
	return out
}
