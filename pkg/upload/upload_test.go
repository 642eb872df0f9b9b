package upload_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"tarabaho-web/pkg/upload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateFile(t *testing.T) {
	pngData := pngBytes(t, 4, 4)
	pdfData := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")

	t.Run("png avatar passes", func(t *testing.T) {
		res := upload.ValidateFile(upload.KindAvatar, "me.png", pngData)
		assert.True(t, res.Valid, res.Error)
		assert.Equal(t, "image/png", res.DetectedMIME)
	})

	t.Run("pdf certificate passes", func(t *testing.T) {
		assert.NoError(t, upload.Check(upload.KindCertificate, "nc2.pdf", pdfData))
	})

	t.Run("pdf avatar is rejected", func(t *testing.T) {
		err := upload.Check(upload.KindAvatar, "me.pdf", pdfData)
		assert.ErrorContains(t, err, "extension not allowed")
	})

	t.Run("spoofed extension is rejected", func(t *testing.T) {
		err := upload.Check(upload.KindCertificate, "nc2.pdf", pngData)
		assert.ErrorContains(t, err, "does not match")
	})

	t.Run("empty file", func(t *testing.T) {
		assert.Error(t, upload.Check(upload.KindCertificate, "nc2.pdf", nil))
	})
}

func TestCompressImage(t *testing.T) {
	out, err := upload.CompressImage(pngBytes(t, 400, 200), 100, 80)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "My_Photo.png", upload.SanitizeFilename("My Photo.PNG"))
	assert.Equal(t, "file.pdf", upload.SanitizeFilename("ñ.pdf"))
	assert.Equal(t, "My_Photo.jpg", upload.JPEGName("My Photo.PNG"))
}
