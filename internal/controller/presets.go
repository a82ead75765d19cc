package controller

import "github.com/randomizedcoder/go-fluxgui/internal/process"

// Preset is a named night color offered by the front-ends.
type Preset struct {
	Name  string
	Color string
}

// Presets lists the offered colors from warmest to coolest.
var Presets = []Preset{
	{Name: "Candle", Color: "2700"},
	{Name: "Tungsten", Color: "3400"},
	{Name: "Halogen", Color: "4200"},
	{Name: "Fluorescent", Color: "5000"},
	{Name: "Daylight", Color: process.NeutralColor},
}

// PresetName returns the preset name for color, or "<color>K" if none matches.
func PresetName(color string) string {
	for _, p := range Presets {
		if p.Color == color {
			return p.Name
		}
	}
	return color + "K"
}
