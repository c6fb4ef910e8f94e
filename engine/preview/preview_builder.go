package preview

// RasterizerBuilderOption is a functional option applied to a rasterizer during construction.
type RasterizerBuilderOption func(*rasterizer)

// WithSize sets the output image size in pixels.
//
// Parameters:
//   - width: image width
//   - height: image height
//
// Returns:
//   - RasterizerBuilderOption: option function to apply
func WithSize(width, height int) RasterizerBuilderOption {
	return func(r *rasterizer) {
		r.SetSize(width, height)
	}
}

// WithSupersample sets the internal resolution multiplier. The frame is drawn at
// factor times the output size and filtered down; 1 disables supersampling.
//
// Parameters:
//   - factor: the multiplier, at least 1
//
// Returns:
//   - RasterizerBuilderOption: option function to apply
func WithSupersample(factor int) RasterizerBuilderOption {
	return func(r *rasterizer) {
		if factor >= 1 {
			r.supersample = factor
		}
	}
}

// WithToneMapping maps lit colours through the ACES filmic curve instead of clamping them.
func WithToneMapping(enabled bool) RasterizerBuilderOption {
	return func(r *rasterizer) {
		r.toneMapping = enabled
	}
}
