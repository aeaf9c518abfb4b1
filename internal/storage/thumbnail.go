package storage

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
)

// 各资源缩略图边长（像素）
const (
	ThumbAvatar  = 60
	ThumbListing = 150
	ThumbPost    = 250
)

// MakeThumbnail 生成 size×size 居中裁剪缩略图，输出格式跟随扩展名
func MakeThumbnail(data []byte, ext string, size int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	thumb := imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)

	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		format = imaging.JPEG
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, format); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

var allowedImageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
}

// ValidImageExt 扩展名白名单校验
func ValidImageExt(ext string) bool {
	return allowedImageExts[strings.ToLower(ext)]
}
