// Package avatar renders deterministic SVG avatars.
package avatar

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// Glass renders a soft layered-gradient avatar whose colours and shapes are
// derived from the seed.
// Implements domain.AvatarGenerator.
type Glass struct {
	Size int
}

// NewGlass creates a generator for size x size pixel avatars.
func NewGlass(size int) *Glass {
	if size <= 0 {
		size = 64
	}
	return &Glass{Size: size}
}

// Generate returns an SVG data URI; equal seeds give equal images.
func (g *Glass) Generate(seed string) string {
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(g.SVG(seed)))
}

// SVG returns the raw SVG document for seed.
func (g *Glass) SVG(seed string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(seed))))
	hue := int(sum[0])<<8 | int(sum[1])
	base := hue % 360
	accent := (base + 40 + int(sum[2])%80) % 360

	s := g.Size
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, s, s, s, s)
	fmt.Fprintf(&b, `<defs><linearGradient id="g" x1="0" y1="0" x2="1" y2="1">`+
		`<stop offset="0" stop-color="hsl(%d,70%%,60%%)"/><stop offset="1" stop-color="hsl(%d,70%%,45%%)"/>`+
		`</linearGradient></defs>`, base, accent)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="url(#g)"/>`, s, s)
	for i := 0; i < 3; i++ {
		cx := int(sum[3+i*3]) * s / 255
		cy := int(sum[4+i*3]) * s / 255
		r := s/6 + int(sum[5+i*3])*s/(255*3)
		fmt.Fprintf(&b, `<circle cx="%d" cy="%d" r="%d" fill="white" fill-opacity="0.%d"/>`, cx, cy, r, 15+i*10)
	}
	b.WriteString(`</svg>`)
	return b.String()
}
