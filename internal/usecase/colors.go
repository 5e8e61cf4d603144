package usecase

import (
	"bytes"
	"encoding/json"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/cenkalti/dominantcolor"
	_ "golang.org/x/image/webp"
)

// ExtractColors returns the four dominant colours of an image as JSON keyed
// by rank, e.g. {"0":[r,g,b,a],...}.
func ExtractColors(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	colors := make(map[int][4]uint8)
	dColors := dominantcolor.FindN(img, 4)
	for i, color := range dColors {
		colors[i] = [4]uint8{color.R, color.G, color.B, color.A}
	}

	return json.Marshal(colors)
}
