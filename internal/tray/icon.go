package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strconv"

	"github.com/randomizedcoder/go-fluxgui/internal/process"
	"github.com/randomizedcoder/go-fluxgui/internal/supervisor"
)

// IconSize is the edge length of the tray icon in pixels.
const IconSize = 22

var (
	warm    = color.RGBA{R: 0xFF, G: 0x8A, B: 0x2B, A: 0xFF}
	neutral = color.RGBA{R: 0xFF, G: 0xF9, B: 0xFD, A: 0xFF}
	paused  = color.RGBA{R: 0x9C, G: 0xA3, B: 0xAF, A: 0xFF}
	stopped = color.RGBA{R: 0x6B, G: 0x72, B: 0x80, A: 0xFF}
)

// Icon renders a PNG disc tinted by the daemon state and color.
func Icon(state supervisor.State, kelvin string) []byte {
	fill := IconColor(state, kelvin)

	img := image.NewRGBA(image.Rect(0, 0, IconSize, IconSize))
	c := float64(IconSize-1) / 2
	r2 := c * c
	for y := 0; y < IconSize; y++ {
		for x := 0; x < IconSize; x++ {
			dx, dy := float64(x)-c, float64(y)-c
			if dx*dx+dy*dy <= r2 {
				img.SetRGBA(x, y, fill)
			}
		}
	}

	var buf bytes.Buffer
	// Encoding an in-memory RGBA image cannot fail.
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// IconColor returns the fill for state. Running icons blend from warm to
// neutral as kelvin approaches the neutral color.
func IconColor(state supervisor.State, kelvin string) color.RGBA {
	switch state {
	case supervisor.StatePaused:
		return paused
	case supervisor.StateTerminated, supervisor.StateUninitialized:
		return stopped
	}

	k, err := strconv.Atoi(kelvin)
	if err != nil {
		return warm
	}
	hi, _ := strconv.Atoi(process.NeutralColor)
	t := float64(k-process.MinColor) / float64(hi-process.MinColor)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	lerp := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t)
	}
	return color.RGBA{
		R: lerp(warm.R, neutral.R),
		G: lerp(warm.G, neutral.G),
		B: lerp(warm.B, neutral.B),
		A: 0xFF,
	}
}
