package staging

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/customeros/mailsift/dto"
	mailsift_errors "github.com/customeros/mailsift/internal/errors"
	"github.com/customeros/mailsift/internal/logger"
	"github.com/customeros/mailsift/internal/tracing"
	"github.com/customeros/mailsift/internal/utils"
)

const maxNameAttempts = 16

type Service struct {
	fs  afero.Fs
	dir string
	log logger.Logger
	now func() time.Time
}

func NewStagingService(fs afero.Fs, dir string, log logger.Logger) *Service {
	return &Service{fs: fs, dir: dir, log: log, now: time.Now}
}

// NewOsStagingService stages into a directory on the local filesystem.
func NewOsStagingService(dir string, log logger.Logger) (*Service, error) {
	fs := afero.NewOsFs()
	if err := fs.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "failed to create staging dir %s", dir)
	}
	return NewStagingService(fs, dir, log), nil
}

// Stage writes attachment bytes under a name no other staged file uses.
func (s *Service) Stage(ctx context.Context, attachment *dto.Attachment, messageID string) (*dto.StagedFile, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "StagingService.Stage")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if !attachment.HasData() {
		return nil, mailsift_errors.ErrNoContent
	}
	if err := s.fs.MkdirAll(s.dir, 0o750); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to create staging dir")
	}

	at := s.now()
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name := utils.UniqueFilename(messageID, at, attachment.Filename)
		path := filepath.Join(s.dir, name)

		file, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
		if os.IsExist(err) {
			at = at.Add(time.Nanosecond)
			continue
		}
		if err != nil {
			tracing.TraceErr(span, err)
			return nil, errors.Wrapf(err, "failed to create %s", path)
		}

		_, writeErr := file.Write(attachment.Data)
		closeErr := file.Close()
		if writeErr == nil {
			writeErr = closeErr
		}
		if writeErr != nil {
			_ = s.fs.Remove(path)
			tracing.TraceErr(span, writeErr)
			return nil, errors.Wrapf(writeErr, "failed to write %s", path)
		}

		span.SetTag("path", path)
		return &dto.StagedFile{Path: path, UniqueName: name}, nil
	}

	err := errors.Errorf("no free staging name for %s after %d attempts", attachment.Filename, maxNameAttempts)
	tracing.TraceErr(span, err)
	return nil, err
}

func (s *Service) Read(ctx context.Context, path string) ([]byte, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "StagingService.Read")
	defer span.Finish()

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "failed to read staged file %s", path)
	}
	return data, nil
}

// Sweep removes staged files last modified before now-maxAge.
func (s *Service) Sweep(ctx context.Context, maxAge time.Duration) (dto.SweepResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "StagingService.Sweep")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	result := dto.SweepResult{}
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		tracing.TraceErr(span, err)
		return result, errors.Wrap(err, "failed to list staging dir")
	}

	cutoff := s.now().Add(-maxAge)
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		result.Scanned++
		if !entry.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := s.fs.Remove(path); err != nil {
			s.log.Warnf("failed to remove staged file %s: %v", path, err)
			result.Failed++
			continue
		}
		result.Deleted++
	}

	span.LogKV("scanned", result.Scanned, "deleted", result.Deleted, "failed", result.Failed)
	if result.Deleted > 0 || result.Failed > 0 {
		s.log.Infof("staging sweep: scanned %d, deleted %d, failed %d", result.Scanned, result.Deleted, result.Failed)
	}
	return result, nil
}
