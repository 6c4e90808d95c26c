package utils

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

type ImageDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func GetImageDimensions(data []byte) (*ImageDimensions, error) {
	config, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &ImageDimensions{Width: config.Width, Height: config.Height}, nil
}

func IsValidImageFormat(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, format := range AllowedImageTypes {
		if ext == format {
			return true
		}
	}
	return false
}

// GenerateThumbnail scales the image to fit within maxSize x maxSize keeping
// the aspect ratio, and re-encodes it in the input format.
func GenerateThumbnail(data []byte, maxSize uint) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}

	thumb := resize.Thumbnail(maxSize, maxSize, img, resize.Lanczos3)

	var buf bytes.Buffer
	contentType, err := encodeImage(&buf, thumb, format)
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), contentType, nil
}

func encodeImage(buf *bytes.Buffer, img image.Image, format string) (string, error) {
	switch format {
	case "jpeg":
		return "image/jpeg", jpeg.Encode(buf, img, &jpeg.Options{Quality: 85})
	case "png":
		return "image/png", png.Encode(buf, img)
	default:
		return "", errors.New("unsupported image format")
	}
}
