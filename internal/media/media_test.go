package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"testing"

	"github.com/jeremyjsx/quickfacts/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStorage struct {
	put     func(ctx context.Context, obj storage.Object) error
	del     func(ctx context.Context, key string) error
	puts    []storage.Object
	bodies  [][]byte
	deletes []string
}

func (m *mockStorage) Put(ctx context.Context, obj storage.Object) error {
	body, _ := io.ReadAll(obj.Body)
	m.puts = append(m.puts, obj)
	m.bodies = append(m.bodies, body)
	if m.put != nil {
		return m.put(ctx, obj)
	}
	return nil
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	m.deletes = append(m.deletes, key)
	if m.del != nil {
		return m.del(ctx, key)
	}
	return nil
}

func (m *mockStorage) Exists(context.Context, string) (bool, error) { return false, nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeDataURL(t *testing.T) {
	raw := []byte("hello")
	data, ct, err := DecodeDataURL("data:image/PNG;base64," + base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, data)
	assert.Equal(t, "image/png", ct)
}

func TestDecodeDataURL_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		is   error
	}{
		{name: "empty", in: "  ", is: ErrMissingFile},
		{name: "not a data url", in: "https://example.com/a.png"},
		{name: "not base64 encoded", in: "data:image/png,abc"},
		{name: "bad base64", in: "data:image/png;base64,not-valid-base64!!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeDataURL(tt.in)
			var inputErr *InputError
			require.ErrorAs(t, err, &inputErr)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestS3Host_Upload(t *testing.T) {
	st := &mockStorage{}
	host := NewS3Host(st, S3Config{Bucket: "mybucket", Region: "us-east-1"}, quietLogger())
	img := testPNG(t, 3, 2)

	res, err := host.Upload(context.Background(), UploadInput{
		Data:     img,
		PublicID: "facts/octopus",
		Tags:     []string{"nature", "ocean"},
	})
	require.NoError(t, err)

	assert.Equal(t, "quick-facts/facts/octopus", res.PublicID)
	assert.Equal(t, "https://mybucket.s3.us-east-1.amazonaws.com/quick-facts/facts/octopus.png", res.URL)
	assert.Equal(t, int64(len(img)), res.Bytes)
	assert.Equal(t, 3, res.Width)
	assert.Equal(t, 2, res.Height)
	assert.Equal(t, "png", res.Format)

	require.Len(t, st.puts, 1)
	assert.Equal(t, "quick-facts/facts/octopus.png", st.puts[0].Key)
	assert.Equal(t, "image/png", st.puts[0].ContentType)
	assert.Equal(t, "nature,ocean", st.puts[0].Metadata["tags"])
	assert.Equal(t, img, st.bodies[0])
}

func TestS3Host_Upload_GeneratedIDAndCDN(t *testing.T) {
	st := &mockStorage{}
	host := NewS3Host(st, S3Config{Bucket: "b", Region: "r", PublicBaseURL: "https://cdn.example.com/", DefaultFolder: "blog"}, quietLogger())

	res, err := host.Upload(context.Background(), UploadInput{Data: testPNG(t, 1, 1), Folder: "/covers/"})
	require.NoError(t, err)

	assert.Regexp(t, `^covers/[0-9a-f-]{36}$`, res.PublicID)
	assert.Equal(t, "https://cdn.example.com/"+res.PublicID+".png", res.URL)
}

func TestS3Host_Upload_RejectsBeforeStorage(t *testing.T) {
	tests := []struct {
		name string
		in   UploadInput
	}{
		{name: "empty payload", in: UploadInput{}},
		{name: "not an image", in: UploadInput{Data: []byte("plain text, not an image")}},
		{name: "svg", in: UploadInput{Data: []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)}},
		{name: "path traversal", in: UploadInput{Data: []byte("\x89PNG\r\n\x1a\n0000"), PublicID: "../etc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &mockStorage{}
			host := NewS3Host(st, S3Config{Bucket: "b", Region: "r"}, quietLogger())

			_, err := host.Upload(context.Background(), tt.in)

			var inputErr *InputError
			require.ErrorAs(t, err, &inputErr)
			assert.Empty(t, st.puts)
		})
	}
}

func TestS3Host_Upload_NotConfigured(t *testing.T) {
	host := NewS3Host(nil, S3Config{}, quietLogger())
	_, err := host.Upload(context.Background(), UploadInput{Data: testPNG(t, 1, 1)})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestS3Host_Upload_StorageError(t *testing.T) {
	st := &mockStorage{put: func(context.Context, storage.Object) error { return errors.New("s3 down") }}
	host := NewS3Host(st, S3Config{Bucket: "b", Region: "r"}, quietLogger())

	_, err := host.Upload(context.Background(), UploadInput{Data: testPNG(t, 1, 1)})
	assert.ErrorContains(t, err, "s3 down")
	var inputErr *InputError
	assert.False(t, errors.As(err, &inputErr))
}

func TestS3Host_Upload_ReusedIDRemovesOtherFormats(t *testing.T) {
	st := &mockStorage{}
	host := NewS3Host(st, S3Config{Bucket: "b", Region: "r"}, quietLogger())

	_, err := host.Upload(context.Background(), UploadInput{Data: testPNG(t, 1, 1), PublicID: "facts/octopus"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"quick-facts/facts/octopus.jpg",
		"quick-facts/facts/octopus.gif",
		"quick-facts/facts/octopus.webp",
	}, st.deletes)
}

func TestS3Host_Upload_GeneratedIDSkipsCleanup(t *testing.T) {
	st := &mockStorage{}
	host := NewS3Host(st, S3Config{Bucket: "b", Region: "r"}, quietLogger())

	_, err := host.Upload(context.Background(), UploadInput{Data: testPNG(t, 1, 1)})
	require.NoError(t, err)
	assert.Empty(t, st.deletes)
}

func TestS3Host_Upload_CleanupFailureIgnored(t *testing.T) {
	st := &mockStorage{del: func(context.Context, string) error { return errors.New("access denied") }}
	host := NewS3Host(st, S3Config{Bucket: "b", Region: "r"}, quietLogger())

	res, err := host.Upload(context.Background(), UploadInput{Data: testPNG(t, 1, 1), PublicID: "cover"})
	require.NoError(t, err)
	assert.Equal(t, "quick-facts/cover", res.PublicID)
	assert.Len(t, st.puts, 1)
}

func TestS3Host_Upload_DeclaredType(t *testing.T) {
	tests := []struct {
		declared string
		ok       bool
	}{
		{"", true},
		{"image/png", true},
		{"IMAGE/PNG", true},
		{"application/octet-stream", true},
		{"image/jpeg", false},
		{"image/jpg", false},
		{"text/plain; charset=utf-8", false},
	}
	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			st := &mockStorage{}
			host := NewS3Host(st, S3Config{Bucket: "b", Region: "r"}, quietLogger())

			_, err := host.Upload(context.Background(), UploadInput{Data: testPNG(t, 1, 1), ContentType: tt.declared})
			if tt.ok {
				require.NoError(t, err)
				assert.Len(t, st.puts, 1)
				return
			}
			var inputErr *InputError
			require.ErrorAs(t, err, &inputErr)
			assert.ErrorIs(t, err, ErrTypeMismatch)
			assert.Empty(t, st.puts)
		})
	}
}
