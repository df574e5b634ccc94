package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/linemk/printshop/internal/api"
	"github.com/linemk/printshop/internal/domain/models"
)

// contentTypes - поддерживаемые форматы моделей
var contentTypes = map[string]string{
	".stl":  "model/stl",
	".obj":  "model/obj",
	".gltf": "model/gltf+json",
	".glb":  "model/gltf-binary",
}

// ProgressFunc получает процент загрузки от 0 до 100
type ProgressFunc func(pct float64)

type presignRequest struct {
	ContentType string `json:"content_type"`
}

type completeRequest struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
}

type UploadService interface {
	Upload(ctx context.Context, filename string, r io.Reader, size int64, progress ProgressFunc) (*models.UploadResult, error)
	Preview(ctx context.Context, modelID int64) ([]byte, error)
}

type uploadService struct {
	log     *slog.Logger
	backend Backend
	storage *http.Client
}

// NewUploadService - storage используется для PUT по presigned URL, мимо API
func NewUploadService(log *slog.Logger, backend Backend, storage *http.Client) UploadService {
	return &uploadService{log: log, backend: backend, storage: storage}
}

// SniffContentType определяет тип по расширению файла
func SniffContentType(filename string) (string, error) {
	ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", ErrUnsupportedFile
	}
	return ct, nil
}

// Upload: presign, PUT файла с прогрессом, затем complete
func (s *uploadService) Upload(ctx context.Context, filename string, r io.Reader, size int64, progress ProgressFunc) (*models.UploadResult, error) {
	const op = "service.UploadService.Upload"
	logger := s.log.With(slog.String("op", op), slog.String("file", filepath.Base(filename)))

	contentType, err := SniffContentType(filename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var presign models.PresignedUpload
	if err := s.backend.Post(ctx, api.PathPresignUpload, presignRequest{ContentType: contentType}, &presign); err != nil {
		logger.Error("presign failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: presign: %w", op, err)
	}

	if err := s.put(ctx, presign.URL, contentType, r, size, progress); err != nil {
		logger.Error("upload to storage failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: put: %w", op, err)
	}

	var result models.UploadResult
	req := completeRequest{Key: presign.Key, ContentType: contentType}
	if err := s.backend.Post(ctx, api.PathUploadComplete, req, &result); err != nil {
		logger.Error("complete failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: complete: %w", op, err)
	}

	logger.Info("model uploaded", slog.Int64("uploadID", result.Upload.ID), slog.Int64("modelID", result.Model.ID))
	return &result, nil
}

func (s *uploadService) put(ctx context.Context, url, contentType string, r io.Reader, size int64, progress ProgressFunc) error {
	body := &progressReader{r: r, total: size, fn: progress}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)

	resp, err := s.storage.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", api.ErrNetwork, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &api.Error{
			Message:   http.StatusText(resp.StatusCode),
			Status:    resp.StatusCode,
			RequestID: resp.Header.Get(api.HeaderRequestID),
		}
	}
	if progress != nil {
		progress(100)
	}
	return nil
}

func (s *uploadService) Preview(ctx context.Context, modelID int64) ([]byte, error) {
	const op = "service.UploadService.Preview"

	if modelID <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingModel)
	}
	var img []byte
	if err := s.backend.Get(ctx, api.PreviewPNG(modelID), &img); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return img, nil
}

// progressReader сообщает процент прочитанного
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	fn    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.fn != nil && p.total > 0 && n > 0 {
		p.fn(float64(p.read) * 100 / float64(p.total))
	}
	return n, err
}
