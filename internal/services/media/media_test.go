package media_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"premium_gallery/internal/config"
	"premium_gallery/internal/lib/apperror"
	"premium_gallery/internal/services/media"
	storage "premium_gallery/internal/storage/filestorage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	return img
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(w, h), &jpeg.Options{Quality: 90}))

	return buf.Bytes()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))

	return buf.Bytes()
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))

	return path
}

func fileHeader(t *testing.T, filename, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)

	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	file, header, err := req.FormFile("image")
	require.NoError(t, err)
	file.Close()

	return header
}

func assertAppError(t *testing.T, err error, status int, code string) {
	t.Helper()

	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.Status)
	assert.Equal(t, code, appErr.Code)
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names
}

func TestValidator_Validate(t *testing.T) {
	policy := config.DefaultGalleryPolicy

	tests := []struct {
		name     string
		policy   config.UploadPolicy
		data     func(t *testing.T) []byte
		declared string
		status   int
		code     string
	}{
		{
			name:   "size over limit",
			policy: config.UploadPolicy{MaxFileSize: 100, MinWidth: 1, MinHeight: 1},
			data:   func(t *testing.T) []byte { return jpegBytes(t, 500, 500) },
			status: http.StatusRequestEntityTooLarge,
			code:   apperror.CodeFileTooLarge,
		},
		{
			name:   "size is checked before format",
			policy: config.UploadPolicy{MaxFileSize: 10, MinWidth: 1, MinHeight: 1},
			data:   func(t *testing.T) []byte { return []byte("definitely not an image at all") },
			status: http.StatusRequestEntityTooLarge,
			code:   apperror.CodeFileTooLarge,
		},
		{
			name:   "plain text",
			policy: policy,
			data:   func(t *testing.T) []byte { return []byte("hello world") },
			status: http.StatusUnsupportedMediaType,
			code:   apperror.CodeInvalidImageFormat,
		},
		{
			name:     "declared type not allowed",
			policy:   policy,
			data:     func(t *testing.T) []byte { return jpegBytes(t, 500, 500) },
			declared: "image/gif",
			status:   http.StatusUnsupportedMediaType,
			code:     apperror.CodeInvalidImageFormat,
		},
		{
			name:   "jpeg magic with garbage body",
			policy: policy,
			data: func(t *testing.T) []byte {
				return append([]byte{0xFF, 0xD8, 0xFF}, bytes.Repeat([]byte{0x00}, 64)...)
			},
			status: http.StatusBadRequest,
			code:   apperror.CodeCorruptImage,
		},
		{
			name:   "below minimum dimensions",
			policy: policy,
			data:   func(t *testing.T) []byte { return jpegBytes(t, 100, 100) },
			status: http.StatusBadRequest,
			code:   apperror.CodeInvalidImageDimensions,
		},
		{
			name:   "one side below minimum",
			policy: policy,
			data:   func(t *testing.T) []byte { return jpegBytes(t, 800, 399) },
			status: http.StatusBadRequest,
			code:   apperror.CodeInvalidImageDimensions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "upload.bin", tt.data(t))

			_, err := media.NewValidator(tt.policy).Validate(path, tt.declared)
			require.Error(t, err)
			assertAppError(t, err, tt.status, tt.code)
		})
	}

	t.Run("valid jpeg", func(t *testing.T) {
		data := jpegBytes(t, 500, 500)
		path := writeTemp(t, "upload.jpg", data)

		info, err := media.NewValidator(policy).Validate(path, "image/jpg")
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", info.MIME)
		assert.Equal(t, 500, info.Width)
		assert.Equal(t, 500, info.Height)
		assert.Equal(t, int64(len(data)), info.Size)

		after, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, data, after, "validation must not modify the file")
	})

	t.Run("valid png", func(t *testing.T) {
		path := writeTemp(t, "upload.png", pngBytes(t, 400, 400))

		info, err := media.NewValidator(policy).Validate(path, "image/png")
		require.NoError(t, err)
		assert.Equal(t, "image/png", info.MIME)
		assert.Equal(t, "png", info.Format)
	})
}

func TestTranscoder_Transcode(t *testing.T) {
	tr := media.NewTranscoder(config.DefaultGalleryPolicy)

	t.Run("shrinks to fit bounds", func(t *testing.T) {
		src := writeTemp(t, "big.jpg", jpegBytes(t, 3000, 2000))
		dst := filepath.Join(t.TempDir(), "out.jpg")

		dims, err := tr.Transcode(src, dst)
		require.NoError(t, err)
		assert.Equal(t, media.Dimensions{Width: 1620, Height: 1080}, dims)

		f, err := os.Open(dst)
		require.NoError(t, err)
		defer f.Close()

		cfg, format, err := image.DecodeConfig(f)
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, 1620, cfg.Width)
	})

	t.Run("never upscales", func(t *testing.T) {
		src := writeTemp(t, "small.png", pngBytes(t, 500, 500))
		dst := filepath.Join(t.TempDir(), "out.jpg")

		dims, err := tr.Transcode(src, dst)
		require.NoError(t, err)
		assert.Equal(t, media.Dimensions{Width: 500, Height: 500}, dims)
	})

	t.Run("undecodable source", func(t *testing.T) {
		src := writeTemp(t, "bad.jpg", []byte{0xFF, 0xD8, 0xFF, 0x00})
		dst := filepath.Join(t.TempDir(), "out.jpg")

		_, err := tr.Transcode(src, dst)
		require.Error(t, err)
		assertAppError(t, err, http.StatusInternalServerError, apperror.CodeTranscodeFailed)

		_, statErr := os.Stat(dst)
		assert.True(t, os.IsNotExist(statErr))
	})
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Put(ctx context.Context, name, srcPath string) (string, error) {
	args := m.Called(ctx, name, srcPath)
	return args.String(0), args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type processorEnv struct {
	uploads *storage.LocalFileStorage
	public  *storage.LocalFileStorage
	workDir string
}

func newProcessor(t *testing.T, store media.ArtifactStore) (*media.Processor, processorEnv) {
	t.Helper()

	uploads, err := storage.NewLocalFileStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)
	public, err := storage.NewLocalFileStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	if store == nil {
		store = storage.NewArtifactStore(discardLogger(), uploads, public)
	}

	env := processorEnv{uploads: uploads, public: public, workDir: t.TempDir()}
	p := media.NewProcessor(discardLogger(), config.DefaultGalleryPolicy, uploads, store, env.workDir)

	return p, env
}

func TestProcessor_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("stores processed jpeg in both directories", func(t *testing.T) {
		p, env := newProcessor(t, nil)

		artifact, err := p.Process(ctx, fileHeader(t, "photo.jpg", "image/jpeg", jpegBytes(t, 500, 500)), "image")
		require.NoError(t, err)

		assert.Regexp(t, `^/uploads/processed_\d+_image-\d+-\d{9}\.jpg$`, artifact.URL)
		assert.Equal(t, "photo.jpg", artifact.OriginalFilename)
		assert.Equal(t, "image/jpeg", artifact.MIME)
		assert.Equal(t, 500, artifact.Width)
		assert.Equal(t, 500, artifact.Height)
		assert.Positive(t, artifact.Size)

		assert.Equal(t, []string{artifact.Name}, listDir(t, env.uploads.GetBaseDir()), "only the artifact stays in uploads")
		assert.True(t, env.public.Exists(artifact.Name))
		assert.Empty(t, listDir(t, env.workDir))
	})

	t.Run("missing file", func(t *testing.T) {
		p, _ := newProcessor(t, nil)

		_, err := p.Process(ctx, nil, "image")
		assertAppError(t, err, http.StatusBadRequest, apperror.CodeFileRequired)
	})

	t.Run("rejected upload leaves nothing behind", func(t *testing.T) {
		p, env := newProcessor(t, nil)

		_, err := p.Process(ctx, fileHeader(t, "tiny.jpg", "image/jpeg", jpegBytes(t, 50, 50)), "image")
		assertAppError(t, err, http.StatusBadRequest, apperror.CodeInvalidImageDimensions)

		assert.Empty(t, listDir(t, env.uploads.GetBaseDir()))
		assert.Empty(t, listDir(t, env.public.GetBaseDir()))
		assert.Empty(t, listDir(t, env.workDir))
	})

	t.Run("store failure", func(t *testing.T) {
		store := new(mockStore)
		store.On("Put", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("mirror unavailable"))

		p, env := newProcessor(t, store)

		_, err := p.Process(ctx, fileHeader(t, "photo.jpg", "image/jpeg", jpegBytes(t, 500, 500)), "image")
		assertAppError(t, err, http.StatusInternalServerError, apperror.CodeStorageFailed)

		assert.Empty(t, listDir(t, env.uploads.GetBaseDir()))
		assert.Empty(t, listDir(t, env.workDir))
		store.AssertExpectations(t)
	})
}

func TestProcessor_Discard(t *testing.T) {
	store := new(mockStore)
	store.On("Delete", mock.Anything, "processed_1_a.jpg").Return(errors.New("already gone"))

	p, _ := newProcessor(t, store)

	p.Discard(context.Background(), &media.Artifact{Name: "processed_1_a.jpg"})
	p.Discard(context.Background(), nil)

	store.AssertNumberOfCalls(t, "Delete", 1)
}
