package decoder

import (
	"bytes"
	"context"
	"image"
	"image/color"

	// Register the formats scan uploads arrive in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/admir900-maker/ticket-gate/internal/domain"
)

// Scan images vary widely in quality, so the reader runs a fixed-order
// chain of transforms, cheapest first, and stops at the first stage that
// yields a readable code.
var stages = []func(image.Image) image.Image{
	func(img image.Image) image.Image { return img },
	binarize,
	upscale2x,
}

// DecodeImage extracts a ticket reference from an uploaded scan image.
// All stages failing yields ErrUnreadableImage; a stage that reads a
// code with a bad payload yields ErrMalformedPayload.
func DecodeImage(ctx context.Context, img image.Image) (domain.TicketReference, error) {
	for _, transform := range stages {
		if err := ctx.Err(); err != nil {
			return domain.TicketReference{}, err
		}
		text, ok := readQR(transform(img))
		if !ok {
			continue
		}
		return DecodeText(text)
	}
	return domain.TicketReference{}, domain.ErrUnreadableImage
}

// DecodeImageBytes decodes a raw upload body (PNG, JPEG or GIF).
func DecodeImageBytes(ctx context.Context, data []byte) (domain.TicketReference, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.TicketReference{}, domain.ErrUnreadableImage
	}
	return DecodeImage(ctx, img)
}

func readQR(img image.Image) (string, bool) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", false
	}
	return result.GetText(), true
}

// binarize converts to grayscale and thresholds each pixel at the
// channel midpoint to recover contrast from washed-out scans.
func binarize(src image.Image) image.Image {
	b := src.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(src.At(x, y)).(color.Gray)
			if g.Y >= 128 {
				out.SetGray(x, y, color.Gray{Y: 255})
			} else {
				out.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return out
}

// upscale2x doubles the image with nearest-neighbor sampling so small,
// low-resolution codes clear the reader's module-size floor. The color
// model is preserved; thresholding stays the previous stage's job.
func upscale2x(src image.Image) image.Image {
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx()*2, b.Dy()*2))
	for y := 0; y < b.Dy()*2; y++ {
		for x := 0; x < b.Dx()*2; x++ {
			out.Set(x, y, src.At(b.Min.X+x/2, b.Min.Y+y/2))
		}
	}
	return out
}
