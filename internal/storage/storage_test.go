package storage

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

// 测试内容：缩略图输出为目标尺寸的正方形。
func TestMakeThumbnail(t *testing.T) {
	data := testPNG(t, 400, 300)

	thumb, err := MakeThumbnail(data, ".png", ThumbListing)
	if err != nil {
		t.Fatalf("MakeThumbnail: %v", err)
	}
	img, err := imaging.Decode(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("decode thumb: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != ThumbListing || b.Dy() != ThumbListing {
		t.Fatalf("期望 %dx%d, got %dx%d", ThumbListing, ThumbListing, b.Dx(), b.Dy())
	}
}

// 测试内容：不可解码的数据报错。
func TestMakeThumbnail_BadData(t *testing.T) {
	if _, err := MakeThumbnail([]byte("garbage"), ".png", ThumbAvatar); err == nil {
		t.Fatal("期望解码失败")
	}
}

// 测试内容：扩展名白名单大小写不敏感。
func TestValidImageExt(t *testing.T) {
	for _, ext := range []string{".jpg", ".JPEG", ".png", ".gif"} {
		if !ValidImageExt(ext) {
			t.Fatalf("%s 应在白名单内", ext)
		}
	}
	for _, ext := range []string{".exe", ".svg", "", "png"} {
		if ValidImageExt(ext) {
			t.Fatalf("%s 不应在白名单内", ext)
		}
	}
}

// 测试内容：本地存储按日期分目录、uuid 命名，删除幂等。
func TestLocalStore(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root)

	path, err := store.Save([]byte("hello"), "listings", ".png")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	datePart := time.Now().Format("2006/01/02")
	if !strings.Contains(path, filepath.Join("listings", datePart)) {
		t.Fatalf("路径应含日期分目录, got %s", path)
	}
	data, err := os.ReadFile(filepath.Join(root, path))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "hello" {
		t.Fatal("内容不一致")
	}

	if err := store.Delete(path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// 再删不存在的文件不报错
	if err := store.Delete(path); err != nil {
		t.Fatalf("重复 Delete 应容忍: %v", err)
	}
}
