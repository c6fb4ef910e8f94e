package preview

import (
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/Carmen-Shannon/oxy-hero/common"
	"github.com/Carmen-Shannon/oxy-hero/engine/hero"
	"github.com/Carmen-Shannon/oxy-hero/engine/light"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
)

// shadowRings is the number of nested ellipses used to feather the contact shadow.
const shadowRings = 8

// Rasterizer draws hero frames on the CPU. It is the software counterpart of the
// GPU renderer: same lighting, flat-shaded and depth-sorted instead of depth-tested.
type Rasterizer interface {
	// Render draws one frame and returns a fresh image at the configured size.
	// A frame that is not drawable comes back as the background colour only.
	//
	// Parameters:
	//   - frame: the frame to draw
	//
	// Returns:
	//   - *image.RGBA: the image
	//   - error: error if a path fill fails
	Render(frame hero.Frame) (*image.RGBA, error)

	// SetSize changes the output size. Non-positive sizes are ignored.
	SetSize(width, height int)

	// Size returns the output size.
	Size() (width, height int)
}

type rasterizer struct {
	width, height int
	supersample   int
	toneMapping   bool
}

var _ Rasterizer = &rasterizer{}

// NewRasterizer creates a Rasterizer. The default output is 640x360, drawn at 2x and downsampled.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Rasterizer: the rasterizer
func NewRasterizer(options ...RasterizerBuilderOption) Rasterizer {
	r := &rasterizer{
		width:       640,
		height:      360,
		supersample: 2,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *rasterizer) SetSize(width, height int) {
	if width > 0 && height > 0 {
		r.width, r.height = width, height
	}
}

func (r *rasterizer) Size() (int, int) {
	return r.width, r.height
}

// triangle is one screen-space triangle ready to fill.
type triangle struct {
	pts   [3]mgl32.Vec2
	depth float32
	color mgl32.Vec3
	alpha float32
}

func (r *rasterizer) Render(frame hero.Frame) (*image.RGBA, error) {
	w, h := r.width*r.supersample, r.height*r.supersample
	dc := gg.NewContext(w, h)
	defer dc.Close()

	bg := frame.Background
	dc.ClearWithColor(gg.RGB(float64(bg[0]), float64(bg[1]), float64(bg[2])))

	if frame.Drawable && !frame.Empty() {
		vp := frame.ViewProjection()
		if frame.Shadow.Strength > 0 {
			if err := r.drawShadow(dc, vp, frame.Shadow, w, h); err != nil {
				return nil, err
			}
		}
		if frame.ShowObject() {
			for _, t := range r.triangles(frame, vp, w, h) {
				dc.SetRGBA(float64(t.color[0]), float64(t.color[1]), float64(t.color[2]), float64(t.alpha))
				dc.MoveTo(float64(t.pts[0][0]), float64(t.pts[0][1]))
				dc.LineTo(float64(t.pts[1][0]), float64(t.pts[1][1]))
				dc.LineTo(float64(t.pts[2][0]), float64(t.pts[2][1]))
				dc.ClosePath()
				if err := dc.Fill(); err != nil {
					return nil, fmt.Errorf("preview: fill triangle: %w", err)
				}
			}
		}
	}

	src := dc.Image()
	dst := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	if r.supersample == 1 {
		draw.Copy(dst, image.Point{}, src, src.Bounds(), draw.Src, nil)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	}
	return dst, nil
}

// drawShadow approximates the feathered disc on the ground plane with nested ellipses,
// outermost first, so coverage builds up to the full strength inside the unfeathered core.
func (r *rasterizer) drawShadow(dc *gg.Context, vp mgl32.Mat4, s light.ShadowState, w, h int) error {
	half := s.Scale / 2
	c := s.Position
	center, ok := project(vp, c, w, h)
	if !ok {
		return nil
	}
	xa, ok1 := project(vp, c.Add(mgl32.Vec3{half, 0, 0}), w, h)
	xb, ok2 := project(vp, c.Sub(mgl32.Vec3{half, 0, 0}), w, h)
	za, ok3 := project(vp, c.Add(mgl32.Vec3{0, 0, half}), w, h)
	zb, ok4 := project(vp, c.Sub(mgl32.Vec3{0, 0, half}), w, h)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil
	}
	rx := float64(xa.Sub(xb).Len()) / 2
	ry := float64(za.Sub(zb).Len()) / 2

	soft := float64(common.Clamp(s.Softness, 0.01, 1))
	alpha := 1 - math.Pow(1-float64(common.Clamp(s.Strength, 0, 0.999)), 1.0/shadowRings)
	dc.SetRGBA(float64(s.Color[0]), float64(s.Color[1]), float64(s.Color[2]), alpha)
	for k := range shadowRings {
		f := 1 - soft*float64(k)/float64(shadowRings-1)
		dc.DrawEllipse(float64(center[0]), float64(center[1]), rx*f, ry*f)
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("preview: fill shadow: %w", err)
		}
	}
	return nil
}

// triangles transforms, lights and depth-sorts every triangle of the mesh, far first.
// Triangles with a vertex behind the camera are dropped.
func (r *rasterizer) triangles(frame hero.Frame, vp mgl32.Mat4, w, h int) []triangle {
	var out []triangle
	maxOpacity := frame.Object.MaxOpacity()
	for si, surf := range frame.Mesh.Surfaces {
		alpha := maxOpacity
		if si < len(frame.Object.Opacity) {
			alpha = frame.Object.Opacity[si]
		}
		if alpha <= 0 {
			continue
		}
		for i := 0; i+2 < len(surf.Indices); i += 3 {
			var (
				t      triangle
				world  [3]mgl32.Vec3
				normal mgl32.Vec3
				ok     = true
			)
			for k := range 3 {
				idx := surf.Indices[i+k]
				world[k] = frame.Model.Mul4x1(surf.Positions[idx].Vec4(1)).Vec3()
				if int(idx) < len(surf.Normals) {
					normal = normal.Add(frame.Model.Mul4x1(surf.Normals[idx].Vec4(0)).Vec3())
				}
				clip := vp.Mul4x1(world[k].Vec4(1))
				if clip[3] <= 1e-5 {
					ok = false
					break
				}
				ndc := clip.Vec3().Mul(1 / clip[3])
				t.pts[k] = toScreen(ndc, w, h)
				t.depth += ndc[2] / 3
			}
			if !ok {
				continue
			}
			if normal.Len() < 1e-6 {
				normal = world[1].Sub(world[0]).Cross(world[2].Sub(world[0]))
			}
			centroid := world[0].Add(world[1]).Add(world[2]).Mul(1.0 / 3)
			c := light.Shade(frame.Lights, frame.CameraPosition, centroid, normal)
			if r.toneMapping {
				c = light.Tonemap(c)
			} else {
				c = mgl32.Vec3{common.Clamp(c[0], 0, 1), common.Clamp(c[1], 0, 1), common.Clamp(c[2], 0, 1)}
			}
			t.color, t.alpha = c, alpha
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b triangle) int {
		switch {
		case a.depth > b.depth:
			return -1
		case a.depth < b.depth:
			return 1
		}
		return 0
	})
	return out
}

// project maps a world point to pixel coordinates. It reports false for points behind the camera.
func project(vp mgl32.Mat4, p mgl32.Vec3, w, h int) (mgl32.Vec2, bool) {
	clip := vp.Mul4x1(p.Vec4(1))
	if clip[3] <= 1e-5 {
		return mgl32.Vec2{}, false
	}
	return toScreen(clip.Vec3().Mul(1/clip[3]), w, h), true
}

func toScreen(ndc mgl32.Vec3, w, h int) mgl32.Vec2 {
	return mgl32.Vec2{
		(ndc[0] + 1) / 2 * float32(w),
		(1 - ndc[1]) / 2 * float32(h),
	}
}

// ProjectBounds returns the screen rectangle covered by the frame's mesh bounding box
// in a width x height image. It reports false when the object is not shown or any
// corner is behind the camera.
//
// Parameters:
//   - frame: the frame
//   - width, height: image size in pixels
//
// Returns:
//   - image.Rectangle: the enclosing pixel rectangle
//   - bool: whether the rectangle is valid
func ProjectBounds(frame hero.Frame, width, height int) (image.Rectangle, bool) {
	if !frame.ShowObject() {
		return image.Rectangle{}, false
	}
	vp := frame.ViewProjection().Mul4(frame.Model)
	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	for _, c := range frame.Mesh.Corners() {
		p, ok := project(vp, c, width, height)
		if !ok {
			return image.Rectangle{}, false
		}
		minX, minY = min(minX, p[0]), min(minY, p[1])
		maxX, maxY = max(maxX, p[0]), max(maxY, p[1])
	}
	r := image.Rect(int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY))))
	return r, true
}
