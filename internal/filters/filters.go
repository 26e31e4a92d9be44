// Package filters implements the non-destructive per-image filter stack:
// the recognized options with their ranges and defaults, value clamping,
// storage minimality, preset palettes, and the live-preview editor session.
package filters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/halvard/tavla/internal/models"
)

// Option describes one recognized filter slider.
type Option struct {
	Key     string
	Min     float64
	Max     float64
	Default float64
	Unit    string
}

// Options lists every recognized filter in composition order.
var Options = []Option{
	{Key: "grayscale", Min: 0, Max: 100, Default: 0, Unit: "%"},
	{Key: "brightness", Min: 0, Max: 200, Default: 100, Unit: "%"},
	{Key: "contrast", Min: 0, Max: 200, Default: 100, Unit: "%"},
	{Key: "blur", Min: 0, Max: 20, Default: 0, Unit: "px"},
	{Key: "sepia", Min: 0, Max: 100, Default: 0, Unit: "%"},
	{Key: "saturate", Min: 0, Max: 200, Default: 100, Unit: "%"},
	{Key: "hueRotate", Min: 0, Max: 360, Default: 0, Unit: "deg"},
	{Key: "invert", Min: 0, Max: 100, Default: 0, Unit: "%"},
	{Key: "opacity", Min: 0, Max: 100, Default: 100, Unit: "%"},
}

var optionByKey = func() map[string]Option {
	m := make(map[string]Option, len(Options))
	for _, o := range Options {
		m[o.Key] = o
	}
	return m
}()

// Lookup returns the option schema for a key.
func Lookup(key string) (Option, bool) {
	o, ok := optionByKey[key]
	return o, ok
}

// Clamp constrains a value to the declared range of key. Unknown keys
// report ok=false and are dropped by callers.
func Clamp(key string, value float64) (float64, bool) {
	o, ok := optionByKey[key]
	if !ok {
		return 0, false
	}
	if value < o.Min {
		value = o.Min
	}
	if value > o.Max {
		value = o.Max
	}
	return value, true
}

// Normalize clamps every recognized entry, drops unrecognized keys and
// values equal to their default, and returns nil when nothing remains.
// This is the storage-minimality rule applied on commit.
func Normalize(f models.Filters) models.Filters {
	var out models.Filters
	for k, v := range f {
		clamped, ok := Clamp(k, v)
		if !ok {
			continue
		}
		if clamped == optionByKey[k].Default {
			continue
		}
		if out == nil {
			out = models.Filters{}
		}
		out[k] = clamped
	}
	return out
}

// Effective returns the value for key in f, falling back to the default.
func Effective(f models.Filters, key string) float64 {
	if v, ok := f[key]; ok {
		return v
	}
	return optionByKey[key].Default
}

// cssName maps an option key to its CSS filter function name.
func cssName(key string) string {
	if key == "hueRotate" {
		return "hue-rotate"
	}
	return key
}

// Render serializes a filter record to a CSS-style filter string in
// composition order, skipping entries at their default. Empty records
// render to "none".
func Render(f models.Filters) string {
	var parts []string
	for _, o := range Options {
		v, ok := f[o.Key]
		if !ok || v == o.Default {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s(%v%s)", cssName(o.Key), v, o.Unit))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

// Presets is the fixed palette of named partial filter records.
var Presets = map[string]models.Filters{
	"BW":            {"grayscale": 100, "contrast": 110},
	"Vintage":       {"sepia": 55, "contrast": 90, "brightness": 105, "saturate": 120},
	"High-Contrast": {"contrast": 160, "brightness": 105},
	"Faded":         {"contrast": 80, "brightness": 115, "saturate": 70},
	"Dramatic":      {"contrast": 140, "brightness": 90, "saturate": 130},
	"Muted":         {"saturate": 55, "brightness": 105},
	"Warm":          {"sepia": 30, "saturate": 120, "brightness": 105},
	"Cool":          {"hueRotate": 180, "saturate": 110},
}

// PresetNames returns the preset names in stable order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for n := range Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Preset returns a deep copy of the named preset record.
func Preset(name string) (models.Filters, bool) {
	p, ok := Presets[name]
	if !ok {
		return nil, false
	}
	cp := make(models.Filters, len(p))
	for k, v := range p {
		cp[k] = v
	}
	return cp, true
}
