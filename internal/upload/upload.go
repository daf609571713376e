// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package upload saves destination images to local disk. Files are
// validated by sniffing their content, never by trusting the client's
// filename or Content-Type.
package upload

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrTooLarge is returned when the upload exceeds the size limit.
	ErrTooLarge = errors.New("image exceeds the maximum upload size")

	// ErrBadType is returned when the content is not a supported image format.
	ErrBadType = errors.New("only JPEG, PNG and GIF images are accepted")
)

// extensions maps sniffed MIME types to the extension saved files carry.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// Saver writes validated images into a directory on local disk.
type Saver struct {
	dir     string
	maxSize int64
}

// NewSaver returns a Saver writing into dir, creating it if needed.
func NewSaver(dir string, maxSize int64) (*Saver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Saver{dir: dir, maxSize: maxSize}, nil
}

// Save validates and stores an uploaded image, returning the generated
// filename. The name is always server-generated so request input never
// reaches the filesystem.
func (s *Saver) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > s.maxSize {
		return "", ErrTooLarge
	}

	// Sniff the real content type from the first 512 bytes.
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read upload: %w", err)
	}
	ext, ok := extensions[http.DetectContentType(head[:n])]
	if !ok {
		return "", ErrBadType
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name, err := generateName(ext)
	if err != nil {
		return "", err
	}

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	// Cap the copy one byte past the limit to catch undersized Size headers.
	written, err := io.Copy(dst, io.LimitReader(file, s.maxSize+1))
	if err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	if written > s.maxSize {
		os.Remove(dst.Name())
		return "", ErrTooLarge
	}

	return name, nil
}

// Remove deletes a previously saved image. Unknown names are a no-op so
// replacing a missing file never fails the request.
func (s *Saver) Remove(name string) error {
	if name == "" {
		return nil
	}
	// Reject anything that could escape the upload dir.
	if filepath.Base(name) != name {
		return fmt.Errorf("invalid upload name %q", name)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// Dir returns the directory files are saved into, for static serving.
func (s *Saver) Dir() string {
	return s.dir
}

// generateName builds a unique filename from the current time and a random
// suffix.
func generateName(ext string) (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("upload name: %w", err)
	}
	return fmt.Sprintf("destination_%d_%s%s", time.Now().Unix(), hex.EncodeToString(buf), ext), nil
}
