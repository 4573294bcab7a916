package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
)

var ErrFileTooLarge = errors.New("file too large")

// UploadReader loads multipart uploads into memory. Nothing is written to disk.
type UploadReader interface {
	ReadFile(file *multipart.FileHeader) ([]byte, error)
	MaxFileSize() int64
}

type uploadReader struct {
	maxFileSize int64
}

func NewUploadReader(maxFileSize int64) UploadReader {
	return &uploadReader{maxFileSize: maxFileSize}
}

func (u *uploadReader) MaxFileSize() int64 {
	return u.maxFileSize
}

func (u *uploadReader) ReadFile(file *multipart.FileHeader) ([]byte, error) {
	if file.Size > u.maxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, max %d", ErrFileTooLarge, file.Filename, file.Size, u.maxFileSize)
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	// Read one byte past the limit so a lying header cannot slip through.
	data, err := io.ReadAll(io.LimitReader(src, u.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if int64(len(data)) > u.maxFileSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, file.Filename, u.maxFileSize)
	}

	return data, nil
}
