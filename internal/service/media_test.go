package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novara/internal/model"
)

type fakeStorage struct {
	puts    map[string][]byte
	deleted []string
}

func (f *fakeStorage) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.puts == nil {
		f.puts = make(map[string][]byte)
	}
	f.puts[aws.ToString(in.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeStorage) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func pngUpload(t *testing.T, w, h int) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	header := &multipart.FileHeader{
		Filename: "cover.png",
		Size:     int64(buf.Len()),
		Header:   textproto.MIMEHeader{"Content-Type": {model.ContentTypePNG}},
	}
	return memFile{bytes.NewReader(buf.Bytes())}, header
}

func decodeStored(t *testing.T, data []byte) image.Image {
	t.Helper()

	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestMediaService_UploadImage_Cover(t *testing.T) {
	storage := &fakeStorage{}
	svc := NewMediaServiceWithStorage(storage, "novara", "https://cdn.example.com/", zerolog.Nop())
	file, header := pngUpload(t, 1600, 1200)

	res, err := svc.UploadImage(context.Background(), model.ImageKindCover, file, header)

	require.NoError(t, err)
	assert.Regexp(t, `^covers/[0-9a-f-]{36}\.jpg$`, res.Key)
	assert.Equal(t, "https://cdn.example.com/"+res.Key, res.URL)

	bounds := decodeStored(t, storage.puts[res.Key]).Bounds()
	assert.Equal(t, 800, bounds.Dx())
	assert.Equal(t, 600, bounds.Dy())
}

func TestMediaService_UploadImage_SmallCoverKeepsSize(t *testing.T) {
	storage := &fakeStorage{}
	svc := NewMediaServiceWithStorage(storage, "novara", "https://cdn.example.com", zerolog.Nop())
	file, header := pngUpload(t, 300, 400)

	res, err := svc.UploadImage(context.Background(), model.ImageKindCover, file, header)

	require.NoError(t, err)
	bounds := decodeStored(t, storage.puts[res.Key]).Bounds()
	assert.Equal(t, 300, bounds.Dx())
	assert.Equal(t, 400, bounds.Dy())
}

func TestMediaService_UploadImage_Avatar(t *testing.T) {
	storage := &fakeStorage{}
	svc := NewMediaServiceWithStorage(storage, "novara", "https://cdn.example.com", zerolog.Nop())
	file, header := pngUpload(t, 640, 480)

	res, err := svc.UploadImage(context.Background(), model.ImageKindAvatar, file, header)

	require.NoError(t, err)
	assert.Contains(t, res.Key, model.AvatarFolder+"/")
	bounds := decodeStored(t, storage.puts[res.Key]).Bounds()
	assert.Equal(t, model.AvatarWidth, bounds.Dx())
	assert.Equal(t, model.AvatarHeight, bounds.Dy())
}

func TestMediaService_UploadImage_Rejections(t *testing.T) {
	svc := NewMediaServiceWithStorage(&fakeStorage{}, "novara", "https://cdn.example.com", zerolog.Nop())
	ctx := context.Background()

	file, header := pngUpload(t, 10, 10)
	_, err := svc.UploadImage(ctx, "banner", file, header)
	assert.ErrorIs(t, err, model.ErrInvalidImageKind)

	file, header = pngUpload(t, 10, 10)
	header.Size = model.MaxImageSizeBytes + 1
	_, err = svc.UploadImage(ctx, model.ImageKindCover, file, header)
	assert.ErrorIs(t, err, model.ErrFileTooLarge)

	file, header = pngUpload(t, 10, 10)
	header.Header.Set("Content-Type", "application/pdf")
	_, err = svc.UploadImage(ctx, model.ImageKindCover, file, header)
	assert.ErrorIs(t, err, model.ErrInvalidImageType)

	garbage := memFile{bytes.NewReader([]byte("not an image at all"))}
	_, err = svc.UploadImage(ctx, model.ImageKindCover, garbage, &multipart.FileHeader{
		Size:   19,
		Header: textproto.MIMEHeader{"Content-Type": {model.ContentTypeJPEG}},
	})
	assert.ErrorIs(t, err, model.ErrInvalidImageType)
}

func TestMediaService_DeleteObject(t *testing.T) {
	storage := &fakeStorage{}
	svc := NewMediaServiceWithStorage(storage, "novara", "https://cdn.example.com", zerolog.Nop())

	require.NoError(t, svc.DeleteObject(context.Background(), ""))
	require.NoError(t, svc.DeleteObject(context.Background(), "covers/a.jpg"))

	assert.Equal(t, []string{"covers/a.jpg"}, storage.deleted)
}
