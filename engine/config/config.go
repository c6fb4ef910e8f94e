// Package config holds the flat table of tunables that drive the hero scene.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-hero/common"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid tunables")

// Tunables is the recognized-options table. JSON keys are the camelCase field tags;
// unknown keys are rejected when decoding.
type Tunables struct {
	// Idle float
	FloatSpeed     float64 `json:"floatSpeed"`
	FloatAmplitude float64 `json:"floatAmplitude"`
	FloatBlend     float64 `json:"floatBlend"`
	RotationSpeed  float64 `json:"rotationSpeed"`

	// Pointer reactions
	TiltInfluence   float64 `json:"tiltInfluence"`
	TiltLerp        float64 `json:"tiltLerp"`
	HoverDistance   float64 `json:"hoverDistance"`
	HoverLerp       float64 `json:"hoverLerp"`
	CameraInfluence float64 `json:"cameraInfluence"`
	CameraLerp      float64 `json:"cameraLerp"`
	CameraFov       float64 `json:"cameraFov"`
	CameraDistance  float64 `json:"cameraDistance"`

	// Lighting
	SpotlightFollow           float64 `json:"spotlightFollow"`
	SpotlightLerp             float64 `json:"spotlightLerp"`
	SpotlightDefaultIntensity float64 `json:"spotlightDefaultIntensity"`
	SpotlightHoverIntensity   float64 `json:"spotlightHoverIntensity"`
	IntensityLerp             float64 `json:"intensityLerp"`
	SpotlightAngle            float64 `json:"spotlightAngle"`
	SpotlightPenumbra         float64 `json:"spotlightPenumbra"`
	AmbientIntensity          float64 `json:"ambientIntensity"`

	// Scroll-linked orientation
	FlipStart    float64 `json:"flipStart"`
	FlipEnd      float64 `json:"flipEnd"`
	FlipReturn   float64 `json:"flipReturn"`
	FlipDuration float64 `json:"flipDuration"`
	Scrub        float64 `json:"scrub"`

	// Entrance
	IntroDelay    float64 `json:"introDelay"`
	IntroDuration float64 `json:"introDuration"`
	ModelScale    float64 `json:"modelScale"`

	// Contact shadow
	ShadowResolution int     `json:"shadowResolution"`
	ShadowOpacity    float64 `json:"shadowOpacity"`
	ShadowScale      float64 `json:"shadowScale"`
	ShadowBlur       float64 `json:"shadowBlur"`
	ShadowFar        float64 `json:"shadowFar"`
	ShadowPlaneY     float64 `json:"shadowPlaneY"`
	ShadowInterval   float64 `json:"shadowInterval"`

	// Context loss
	RestoreTimeout float64 `json:"restoreTimeout"`
	ReloadDelay    float64 `json:"reloadDelay"`

	// Presentation
	TargetFPS  float64 `json:"targetFps"`
	Background string  `json:"background"`
}

// Default returns the stock tunables.
//
// Returns:
//   - Tunables: the default table
func Default() Tunables {
	return Tunables{
		FloatSpeed:     0.8,
		FloatAmplitude: 0.15,
		FloatBlend:     0.05,
		RotationSpeed:  0,

		TiltInfluence:   0.15,
		TiltLerp:        0.05,
		HoverDistance:   0.5,
		HoverLerp:       0.1,
		CameraInfluence: 0.5,
		CameraLerp:      0.05,
		CameraFov:       50,
		CameraDistance:  12,

		SpotlightFollow:           8,
		SpotlightLerp:             0.08,
		SpotlightDefaultIntensity: 250,
		SpotlightHoverIntensity:   350,
		IntensityLerp:             0.1,
		SpotlightAngle:            0.6,
		SpotlightPenumbra:         0.8,
		AmbientIntensity:          0.4,

		FlipStart:    0.2,
		FlipEnd:      0.3,
		FlipReturn:   0.4,
		FlipDuration: 0.1,
		Scrub:        0.5,

		IntroDelay:    0.1,
		IntroDuration: 1.4,
		ModelScale:    0.8,

		ShadowResolution: 512,
		ShadowOpacity:    0.4,
		ShadowScale:      8,
		ShadowBlur:       2,
		ShadowFar:        4,
		ShadowPlaneY:     -1.5,
		ShadowInterval:   0.1,

		RestoreTimeout: 3,
		ReloadDelay:    0.1,

		TargetFPS:  60,
		Background: "#d8dce8",
	}
}

// Load reads a JSON file and decodes it over the defaults.
// Keys absent from the file keep their default values.
//
// Parameters:
//   - path: the JSON file to read
//
// Returns:
//   - Tunables: the decoded and validated table
//   - error: error if the file cannot be read, holds unknown keys, or fails validation
func Load(path string) (Tunables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tunables{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	t, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Tunables{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes JSON from r over the defaults and validates the result.
//
// Parameters:
//   - r: the JSON source
//
// Returns:
//   - Tunables: the decoded and validated table
//   - error: error on malformed JSON, unknown keys, or failed validation
func Parse(r io.Reader) (Tunables, error) {
	t := Default()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return Tunables{}, fmt.Errorf("parse: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tunables{}, err
	}
	return t, nil
}

// Validate checks ranges and threshold ordering.
//
// Returns:
//   - error: an error wrapping ErrInvalid naming the first offending key, or nil
func (t Tunables) Validate() error {
	rates := []struct {
		name string
		v    float64
	}{
		{"floatBlend", t.FloatBlend},
		{"tiltLerp", t.TiltLerp},
		{"hoverLerp", t.HoverLerp},
		{"cameraLerp", t.CameraLerp},
		{"spotlightLerp", t.SpotlightLerp},
		{"intensityLerp", t.IntensityLerp},
	}
	for _, r := range rates {
		if r.v <= 0 || r.v > 1 {
			return fmt.Errorf("%w: %s must be in (0, 1], got %v", ErrInvalid, r.name, r.v)
		}
	}

	if !(0 <= t.FlipStart && t.FlipStart <= t.FlipEnd && t.FlipEnd <= t.FlipReturn && t.FlipReturn <= 1) {
		return fmt.Errorf("%w: want 0 <= flipStart <= flipEnd <= flipReturn <= 1, got %v/%v/%v",
			ErrInvalid, t.FlipStart, t.FlipEnd, t.FlipReturn)
	}

	nonNegative := []struct {
		name string
		v    float64
	}{
		{"floatSpeed", t.FloatSpeed},
		{"floatAmplitude", t.FloatAmplitude},
		{"spotlightDefaultIntensity", t.SpotlightDefaultIntensity},
		{"spotlightHoverIntensity", t.SpotlightHoverIntensity},
		{"ambientIntensity", t.AmbientIntensity},
		{"flipDuration", t.FlipDuration},
		{"scrub", t.Scrub},
		{"introDelay", t.IntroDelay},
		{"shadowOpacity", t.ShadowOpacity},
		{"shadowBlur", t.ShadowBlur},
		{"shadowInterval", t.ShadowInterval},
		{"restoreTimeout", t.RestoreTimeout},
		{"reloadDelay", t.ReloadDelay},
		{"targetFps", t.TargetFPS},
	}
	for _, n := range nonNegative {
		if n.v < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %v", ErrInvalid, n.name, n.v)
		}
	}

	switch {
	case t.IntroDuration <= 0:
		return fmt.Errorf("%w: introDuration must be > 0", ErrInvalid)
	case t.ModelScale <= 0:
		return fmt.Errorf("%w: modelScale must be > 0", ErrInvalid)
	case t.CameraFov <= 0 || t.CameraFov >= 180:
		return fmt.Errorf("%w: cameraFov must be in (0, 180), got %v", ErrInvalid, t.CameraFov)
	case t.ShadowResolution < 16 || t.ShadowResolution > 4096:
		return fmt.Errorf("%w: shadowResolution must be in [16, 4096], got %d", ErrInvalid, t.ShadowResolution)
	case t.ShadowScale <= 0 || t.ShadowFar <= 0:
		return fmt.Errorf("%w: shadowScale and shadowFar must be > 0", ErrInvalid)
	case t.ShadowOpacity > 1:
		return fmt.Errorf("%w: shadowOpacity must be <= 1", ErrInvalid)
	}

	if _, err := common.ParseHexColor(t.Background); err != nil {
		return fmt.Errorf("%w: background: %v", ErrInvalid, err)
	}
	return nil
}

// RegisterFlags binds the commonly overridden tunables to fs.
// Parse the flag set after Load so command-line values win over the file.
//
// Parameters:
//   - fs: the flag set to register on
func (t *Tunables) RegisterFlags(fs *flag.FlagSet) {
	fs.Float64Var(&t.FlipStart, "flip-start", t.FlipStart, "scroll progress where the flip begins")
	fs.Float64Var(&t.FlipEnd, "flip-end", t.FlipEnd, "scroll progress where the flip range ends")
	fs.Float64Var(&t.FlipReturn, "flip-return", t.FlipReturn, "scroll progress where the return range ends")
	fs.Float64Var(&t.IntroDuration, "intro-duration", t.IntroDuration, "entrance length in seconds")
	fs.Float64Var(&t.Scrub, "scrub", t.Scrub, "scroll smoothing time in seconds (0 disables)")
	fs.Float64Var(&t.CameraFov, "fov", t.CameraFov, "camera vertical field of view in degrees")
	fs.IntVar(&t.ShadowResolution, "shadow-resolution", t.ShadowResolution, "contact shadow bake size in pixels")
	fs.Float64Var(&t.TargetFPS, "fps", t.TargetFPS, "render frame cap (0 = uncapped)")
	fs.StringVar(&t.Background, "background", t.Background, "clear colour as #rrggbb")
}

// Resolve builds the final tunables for a host: defaults, then the JSON file at path
// (skipped when empty), then every flag on fs that changed reports as set on the command line.
// The flags on fs must have been registered with RegisterFlags.
//
// Parameters:
//   - path: optional JSON file
//   - fs: the parsed flag set
//   - changed: reports whether the named flag was given explicitly
//
// Returns:
//   - Tunables: the validated table
//   - error: error if the file fails to load, a flag value is rejected, or validation fails
func Resolve(path string, fs *flag.FlagSet, changed func(name string) bool) (Tunables, error) {
	t := Default()
	if path != "" {
		var err error
		if t, err = Load(path); err != nil {
			return Tunables{}, err
		}
	}

	overlay := flag.NewFlagSet("overlay", flag.ContinueOnError)
	t.RegisterFlags(overlay)
	var setErr error
	fs.VisitAll(func(f *flag.Flag) {
		if setErr != nil || !changed(f.Name) || overlay.Lookup(f.Name) == nil {
			return
		}
		if err := overlay.Set(f.Name, f.Value.String()); err != nil {
			setErr = fmt.Errorf("config: flag -%s: %w", f.Name, err)
		}
	})
	if setErr != nil {
		return Tunables{}, setErr
	}
	if err := t.Validate(); err != nil {
		return Tunables{}, err
	}
	return t, nil
}

// Changed returns a predicate reporting which flags were set on the parsed fs.
func Changed(fs *flag.FlagSet) func(name string) bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return func(name string) bool { return set[name] }
}

// Seconds converts a tunable expressed in seconds to a time.Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
