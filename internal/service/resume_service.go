package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/mock-interview-api/internal/dto"
	"github.com/noah-isme/mock-interview-api/internal/models"
	"github.com/noah-isme/mock-interview-api/internal/observability"
	"github.com/noah-isme/mock-interview-api/internal/repository"
)

const pdfMimeType = "application/pdf"

// FileStorage abstracts resume destinations. Upload returns the public URL and the key used to delete the file.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, string, error)
	Delete(ctx context.Context, key string) error
}

// ResumeService manages the resume library of each user.
type ResumeService interface {
	Upload(ctx context.Context, userID uint, payload dto.ResumeCreateRequest, file *multipart.FileHeader) (dto.ResumeResponse, error)
	List(ctx context.Context, userID uint) ([]dto.ResumeResponse, error)
	Delete(ctx context.Context, userID uint, id uint) error
}

type resumeService struct {
	storage   FileStorage
	repo      repository.ResumeRepository
	validator *validator.Validate
	sanitizer textSanitizer
	logger    zerolog.Logger
	maxSize   int64
	tracer    trace.Tracer
}

// NewResumeService constructs the resume service.
func NewResumeService(storage FileStorage, repo repository.ResumeRepository, validate *validator.Validate, maxSizeMB int, logger zerolog.Logger) ResumeService {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &resumeService{
		storage:   storage,
		repo:      repo,
		validator: validate,
		sanitizer: newTextSanitizer(),
		logger:    logger.With().Str("component", "resume_service").Logger(),
		maxSize:   int64(maxSizeMB) * 1024 * 1024,
		tracer:    otel.Tracer("github.com/noah-isme/mock-interview-api/internal/service/resume"),
	}
}

func (s *resumeService) Upload(ctx context.Context, userID uint, payload dto.ResumeCreateRequest, file *multipart.FileHeader) (dto.ResumeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "resume.upload")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("upload.max_bytes", s.maxSize),
		attribute.Int64("upload.user_id", int64(userID)),
	)

	if err := s.validator.Struct(payload); err != nil {
		observability.ResumeUploads().WithLabelValues("invalid").Inc()
		failSpan(span, err, "validation_failed")
		return dto.ResumeResponse{}, err
	}

	jobRole := s.sanitizer.clean(payload.JobRole)
	jobDescription := s.sanitizer.clean(payload.JobDescription)
	if jobRole == "" || jobDescription == "" {
		err := ValidationFailure("jobRole and jobDescription are required")
		failSpan(span, err, "validation_failed")
		return dto.ResumeResponse{}, err
	}

	if file == nil {
		observability.ResumeUploads().WithLabelValues("invalid").Inc()
		failSpan(span, ErrFileRequired, "file_missing")
		return dto.ResumeResponse{}, ErrFileRequired
	}
	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	if file.Size > s.maxSize {
		observability.ResumeUploads().WithLabelValues("too_large").Inc()
		failSpan(span, ErrUploadTooLarge, "payload_too_large")
		return dto.ResumeResponse{}, ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		failSpan(span, err, "open_failed")
		return dto.ResumeResponse{}, fmt.Errorf("open upload: %w", err)
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		failSpan(span, err, "read_failed")
		return dto.ResumeResponse{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(buf.Len()) > s.maxSize {
		observability.ResumeUploads().WithLabelValues("too_large").Inc()
		failSpan(span, ErrUploadTooLarge, "payload_too_large")
		return dto.ResumeResponse{}, ErrUploadTooLarge
	}

	detected := mimetype.Detect(buf.Bytes())
	span.SetAttributes(attribute.String("upload.detected_mime", detected.String()))
	if !detected.Is(pdfMimeType) {
		observability.ResumeUploads().WithLabelValues("wrong_type").Inc()
		failSpan(span, ErrUploadNotPDF, "type_not_allowed")
		return dto.ResumeResponse{}, ErrUploadNotPDF
	}

	checksum := sha256.Sum256(buf.Bytes())
	sanitizedName := sanitizeFileName(file.Filename)

	url, key, err := s.storage.Upload(ctx, sanitizedName, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.ResumeUploads().WithLabelValues("storage_error").Inc()
		failSpan(span, err, "storage_failed")
		return dto.ResumeResponse{}, fmt.Errorf("store resume: %w", err)
	}

	record := models.Resume{
		UserID:         userID,
		JobRole:        jobRole,
		JobDescription: jobDescription,
		FileName:       sanitizedName,
		FileURL:        url,
		StorageKey:     key,
		MimeType:       pdfMimeType,
		SizeBytes:      int64(buf.Len()),
		Checksum:       hex.EncodeToString(checksum[:]),
	}

	if err := s.repo.Create(ctx, &record); err != nil {
		if deleteErr := s.storage.Delete(ctx, key); deleteErr != nil {
			s.logger.Warn().Err(deleteErr).Str("key", key).Msg("failed to remove orphaned resume file")
		}
		failSpan(span, err, "persistence_failed")
		return dto.ResumeResponse{}, fmt.Errorf("save resume: %w", err)
	}

	observability.ResumeUploads().WithLabelValues("stored").Inc()
	span.SetStatus(codes.Ok, "stored")
	s.logger.Info().Uint("user_id", userID).Uint("resume_id", record.ID).Int64("size_bytes", record.SizeBytes).Msg("resume uploaded")

	return dto.NewResumeResponse(record), nil
}

func (s *resumeService) List(ctx context.Context, userID uint) ([]dto.ResumeResponse, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	return dto.NewResumeResponseSlice(items), nil
}

func (s *resumeService) Delete(ctx context.Context, userID uint, id uint) error {
	ctx, span := s.tracer.Start(ctx, "resume.delete", trace.WithAttributes(attribute.Int64("resume.id", int64(id))))
	defer span.End()

	resume, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			failSpan(span, ErrResumeNotFound, "resume_not_found")
			return ErrResumeNotFound
		}
		failSpan(span, err, "resume_lookup_failed")
		return fmt.Errorf("load resume: %w", err)
	}

	if userID == 0 || resume.UserID != userID {
		failSpan(span, ErrResumeNotOwned, "forbidden")
		return ErrResumeNotOwned
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResumeNotFound
		}
		failSpan(span, err, "delete_failed")
		return fmt.Errorf("delete resume: %w", err)
	}

	if resume.StorageKey != "" {
		if err := s.storage.Delete(ctx, resume.StorageKey); err != nil {
			s.logger.Warn().Err(err).Uint("resume_id", id).Msg("failed to remove resume file")
		}
	}

	return nil
}

func sanitizeFileName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = "resume"
	}
	return base + ".pdf"
}
