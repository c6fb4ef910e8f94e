package common

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// ParseHexColor parses a "#rrggbb" string into RGB components in [0, 1].
//
// Parameters:
//   - s: the colour string, with or without the leading '#'
//
// Returns:
//   - mgl32.Vec3: the red, green and blue components
//   - error: error if the string is not six hex digits
func ParseHexColor(s string) (mgl32.Vec3, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return mgl32.Vec3{}, fmt.Errorf("colour %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("colour %q: %w", s, err)
	}
	return mgl32.Vec3{
		float32((v>>16)&0xff) / 255,
		float32((v>>8)&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}

// MustHexColor is ParseHexColor for compile-time constants. It panics on malformed input.
func MustHexColor(s string) mgl32.Vec3 {
	c, err := ParseHexColor(s)
	if err != nil {
		panic(err)
	}
	return c
}
