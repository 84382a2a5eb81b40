package engine

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/helix/config"
	"github.com/pthm-cable/helix/sparks"
)

// TextureLabel is a text billboard backed by a GPU texture. It satisfies
// sparks.Label; the owning spark moves and fades it, and Release frees
// the texture exactly once.
type TextureLabel struct {
	texture  rl.Texture2D
	position rl.Vector3
	tint     rl.Color
	opacity  float32
	scale    float32
	released bool
	factory  *TextureLabelFactory
}

// Move updates the billboard anchor position.
func (l *TextureLabel) Move(pos rl.Vector3) {
	l.position = pos
}

// SetOpacity updates the billboard fade level.
func (l *TextureLabel) SetOpacity(opacity float32) {
	l.opacity = opacity
}

// Release frees the texture. Safe to call more than once; only the
// first call unloads.
func (l *TextureLabel) Release() {
	if l.released {
		return
	}
	l.released = true
	rl.UnloadTexture(l.texture)
	l.factory.forget(l)
}

// TextureLabelFactory rasterizes text into textures and tracks the live
// labels so the render pass can draw them as billboards.
type TextureLabelFactory struct {
	cfg  config.LabelsConfig
	live []*TextureLabel
}

// NewTextureLabelFactory creates a factory. Requires an open raylib
// window; use a nil factory in headless mode.
func NewTextureLabelFactory(cfg config.LabelsConfig) *TextureLabelFactory {
	return &TextureLabelFactory{cfg: cfg}
}

// Create rasterizes text into a billboard label. Text longer than the
// configured limit is truncated.
func (f *TextureLabelFactory) Create(text string, color rl.Color) (sparks.Label, error) {
	if text == "" {
		return nil, fmt.Errorf("label text is empty")
	}
	if f.cfg.MaxChars > 0 && len(text) > f.cfg.MaxChars {
		text = text[:f.cfg.MaxChars]
	}

	img := rl.ImageText(text, int32(f.cfg.FontSize), rl.White)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	if texture.ID == 0 {
		return nil, fmt.Errorf("label texture upload failed for %q", text)
	}

	label := &TextureLabel{
		texture: texture,
		tint:    color,
		opacity: 1,
		scale:   float32(f.cfg.BaseScale),
		factory: f,
	}
	f.live = append(f.live, label)
	return label, nil
}

// Draw renders all live labels as camera-facing billboards.
func (f *TextureLabelFactory) Draw(cam rl.Camera3D) {
	for _, l := range f.live {
		if l.opacity <= 0 {
			continue
		}
		size := float32(l.texture.Width) * l.scale
		rl.DrawBillboard(cam, l.texture, l.position, size, rl.Fade(l.tint, l.opacity))
	}
}

// Unload releases every live label, e.g. on shutdown.
func (f *TextureLabelFactory) Unload() {
	for _, l := range f.live {
		if !l.released {
			l.released = true
			rl.UnloadTexture(l.texture)
		}
	}
	f.live = f.live[:0]
}

func (f *TextureLabelFactory) forget(label *TextureLabel) {
	for i, l := range f.live {
		if l == label {
			f.live[i] = f.live[len(f.live)-1]
			f.live = f.live[:len(f.live)-1]
			return
		}
	}
}
