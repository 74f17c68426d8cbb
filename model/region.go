package model

import "strings"

// Role is the closed semantic classification of a detected text region.
type Role int

const (
	RoleUnknown Role = iota
	RoleHeading
	RoleSubheading
	RoleBody
	RoleCTA
	RoleUSP
	RoleLabel
	RoleProductText
	RoleLogo
	RoleIcon
	RoleUIElement
)

func (r Role) String() string {
	switch r {
	case RoleHeading:
		return "heading"
	case RoleSubheading:
		return "subheading"
	case RoleBody:
		return "body"
	case RoleCTA:
		return "cta"
	case RoleUSP:
		return "usp"
	case RoleLabel:
		return "label"
	case RoleProductText:
		return "product_text"
	case RoleLogo:
		return "logo"
	case RoleIcon:
		return "icon"
	case RoleUIElement:
		return "ui_element"
	default:
		return "unknown"
	}
}

// ParseRole maps a role name to its Role value. Unrecognized names map
// to RoleUnknown rather than an error; the classifier upstream is free
// to emit labels this core has never seen.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "heading", "headline", "title":
		return RoleHeading
	case "subheading":
		return RoleSubheading
	case "body", "paragraph", "description":
		return RoleBody
	case "cta", "button":
		return RoleCTA
	case "usp":
		return RoleUSP
	case "label", "caption":
		return RoleLabel
	case "product_text":
		return RoleProductText
	case "logo", "brand":
		return RoleLogo
	case "icon":
		return RoleIcon
	case "ui_element", "ui", "navigation":
		return RoleUIElement
	default:
		return RoleUnknown
	}
}

// IsKnown returns true for every role except RoleUnknown.
func (r Role) IsKnown() bool {
	return r > RoleUnknown && r <= RoleUIElement
}

// RoleSet is a set of roles used for keep/remove/render policy decisions.
type RoleSet map[Role]bool

// NewRoleSet builds a RoleSet from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = true
	}
	return set
}

// Has reports whether the role is in the set.
func (s RoleSet) Has(r Role) bool {
	return s[r]
}

// TextCase describes a letter-case transform applied before rendering.
type TextCase int

const (
	CaseNone TextCase = iota
	CaseUpper
	CaseLower
	CaseTitle
)

func (c TextCase) String() string {
	switch c {
	case CaseUpper:
		return "uppercase"
	case CaseLower:
		return "lowercase"
	case CaseTitle:
		return "titlecase"
	default:
		return "none"
	}
}

// ParseTextCase maps a case name to its TextCase value.
func ParseTextCase(s string) TextCase {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uppercase", "upper":
		return CaseUpper
	case "lowercase", "lower":
		return CaseLower
	case "titlecase", "title":
		return CaseTitle
	default:
		return CaseNone
	}
}

// TextStyle carries the typographic attributes detected for a region.
type TextStyle struct {
	// Family is the requested font family name (e.g. "Montserrat").
	Family string

	// Weight is the numeric font weight, 100..900 in steps of 100.
	Weight int

	// Color is the text color as a hex string (e.g. "#1A1A1A").
	Color string

	// Case is the letter-case transform to apply before rendering.
	Case TextCase
}

// BackgroundBox describes a decorative background (button plate, badge)
// detected behind a text region. The patch referenced by Patch was
// extracted from the original layers and is pasted back verbatim after
// compositing so gradients and textures survive the erase.
type BackgroundBox struct {
	// Detected is true when a background plate was found for the region.
	Detected bool

	// BBox is the plate's position and size in canvas coordinates.
	BBox BBox

	// Patch is a reference to the extracted plate raster, resolved by
	// the compositor's patch source (typically a path inside the run
	// directory).
	Patch string

	// Fill is the plate's dominant fill color as a hex string, kept for
	// re-editing; the extracted patch is what actually gets pasted.
	Fill string
}

// Region is one detected text instance: geometry, semantic role, text
// content, and style. Regions are immutable inputs to the pipeline;
// stages never mutate them.
type Region struct {
	// ID uniquely identifies the region within a run.
	ID string

	// Polygon is the detected outline. May be empty, in which case BBox
	// is the only geometry.
	Polygon Polygon

	// BBox is the axis-aligned envelope of the region in reference
	// coordinates.
	BBox BBox

	// Role is the semantic classification.
	Role Role

	// Text is the recognized text content. Empty when the classifier
	// found no legible text (graphics flagged as text by the detector).
	Text string

	// Style holds the detected typographic attributes.
	Style TextStyle

	// Background is the optional decorative plate behind the text.
	Background *BackgroundBox

	// Residue marks regions the classifier flagged as leftover
	// anti-aliasing fragments rather than genuine text.
	Residue bool
}
