package gpuring

import (
	"fmt"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"previewcore/internal/decode"
)

// SDLDevice backs the plane ring with go-sdl2 streaming textures, the
// same CreateTexture/TEXTUREACCESS_STREAMING/Update pattern
// RetroCodeRamen-Nitro-Core-DX uses for its emulator framebuffer
// (internal/ui/render_fixed.go),
// generalized from one packed RGB texture to separate single-channel
// (Y) and two-channel (UV) planes.
type SDLDevice struct {
	renderer *sdl.Renderer
}

// NewSDLDevice wraps an existing renderer. The caller owns window and
// renderer lifetime.
func NewSDLDevice(renderer *sdl.Renderer) *SDLDevice {
	return &SDLDevice{renderer: renderer}
}

func (d *SDLDevice) CreateSlot(format decode.PixelFormat, width, height int) (Slot, error) {
	cw, ch := (width+1)/2, (height+1)/2

	yFormat := uint32(sdl.PIXELFORMAT_INDEX8) // single 8-bit channel stand-in for R8Unorm
	uvFormat := uint32(sdl.PIXELFORMAT_RGB24) // widest portable 2-channel-compatible stand-in
	if format == decode.FormatP010 {
		// 16-bit-per-component planes: SDL2 has no R16/RG16 texture
		// format, so both planes use RGBA8888 textures at the plane's own
		// pixel width and height; the 16-bit samples are not converted.
		yFormat = uint32(sdl.PIXELFORMAT_RGBA8888)
		uvFormat = uint32(sdl.PIXELFORMAT_RGBA8888)
	}

	yTex, err := d.renderer.CreateTexture(yFormat, sdl.TEXTUREACCESS_STREAMING, int32(width), int32(height))
	if err != nil {
		return Slot{}, fmt.Errorf("gpuring: create Y texture: %w", err)
	}
	uvTex, err := d.renderer.CreateTexture(uvFormat, sdl.TEXTUREACCESS_STREAMING, int32(cw), int32(ch))
	if err != nil {
		yTex.Destroy()
		return Slot{}, fmt.Errorf("gpuring: create UV texture: %w", err)
	}

	return Slot{
		Y:  &sdlTexture{tex: yTex, width: width, height: height, bytesPerPixel: 1},
		UV: &sdlTexture{tex: uvTex, width: cw, height: ch, bytesPerPixel: bytesPerPixelFor(format)},
	}, nil
}

func bytesPerPixelFor(format decode.PixelFormat) int {
	if format == decode.FormatP010 {
		return 4
	}
	return 2
}

// sdlTexture adapts an *sdl.Texture to the ring's Texture interface.
// Upload strips the source's tight row packing and re-writes it through
// SDL's own pitch, since SDL manages its own row alignment internally;
// the ring's padRowBytes staging step still runs so the CPU-side byte
// shuffle this engine specifies is exercised identically across
// backends.
type sdlTexture struct {
	tex           *sdl.Texture
	width, height int
	bytesPerPixel int
}

func (t *sdlTexture) Upload(src []byte, rowBytes, rows int) error {
	padded := PadRowBytes(rowBytes)
	scratch := make([]byte, padded*rows)
	for row := 0; row < rows; row++ {
		srcOff := row * rowBytes
		if srcOff+rowBytes > len(src) {
			break
		}
		copy(scratch[row*padded:row*padded+rowBytes], src[srcOff:srcOff+rowBytes])
	}

	rect := &sdl.Rect{X: 0, Y: 0, W: int32(t.width), H: int32(rows)}
	if len(scratch) == 0 {
		return nil
	}
	return t.tex.Update(rect, unsafe.Pointer(&scratch[0]), padded)
}
