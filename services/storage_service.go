package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"AutoPostAPI/models"
)

// allowedImageTypes maps h2non/filetype MIME values to the extension
// stored on disk. Types are validated via magic-number signatures, not
// the client-supplied filename or Content-Type header.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// StorageService persists uploaded post images under a local directory
// with generated filenames.
type StorageService struct {
	uploadDir string
	maxSize   int64
	maxImages int
}

func NewStorageService(uploadDir string, maxSize int64, maxImages int) (*StorageService, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	if maxSize <= 0 {
		maxSize = 5 << 20
	}
	if maxImages <= 0 {
		maxImages = 5
	}
	return &StorageService{
		uploadDir: uploadDir,
		maxSize:   maxSize,
		maxImages: maxImages,
	}, nil
}

// MaxImages is the per-post image cap enforced by the post service.
func (s *StorageService) MaxImages() int {
	return s.maxImages
}

// SaveImage validates and stores one uploaded file, returning its image
// metadata. The file's real type is sniffed from its leading bytes.
func (s *StorageService) SaveImage(file multipart.File, header *multipart.FileHeader) (*models.Image, error) {
	if header.Size > s.maxSize {
		return nil, &models.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("file size exceeds maximum of %d bytes", s.maxSize),
		}
	}

	// filetype needs at most 262 bytes to identify every supported type.
	head := make([]byte, 262)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	head = head[:n]

	kind, err := filetype.Match(head)
	if err != nil {
		return nil, fmt.Errorf("detecting file type: %w", err)
	}
	ext, ok := allowedImageTypes[kind.MIME.Value]
	if !ok {
		return nil, &models.ValidationError{
			Field:   "file",
			Message: "unsupported image type (allowed: jpeg, png, gif, webp)",
		}
	}

	filename := uuid.New().String() + ext
	path := filepath.Join(s.uploadDir, filename)

	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer out.Close()

	if _, err := out.Write(head); err != nil {
		os.Remove(path)
		return nil, err
	}
	written, err := io.Copy(out, file)
	if err != nil {
		os.Remove(path)
		return nil, err
	}

	size := int64(len(head)) + written
	if size > s.maxSize {
		os.Remove(path)
		return nil, &models.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("file size exceeds maximum of %d bytes", s.maxSize),
		}
	}

	return &models.Image{
		Filename:   filename,
		URL:        "/uploads/" + filename,
		Size:       size,
		UploadedAt: time.Now().UTC(),
	}, nil
}

// DeleteImage removes a stored image file. A missing file is not an
// error; the metadata may outlive the file.
func (s *StorageService) DeleteImage(filename string) error {
	if filename == "" || filename != filepath.Base(filename) {
		return fmt.Errorf("invalid image filename: %q", filename)
	}
	err := os.Remove(filepath.Join(s.uploadDir, filename))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
