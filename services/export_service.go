package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/survey-hub/logger"
	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/repository"
	"github.com/vnkhanh/survey-hub/storage"
)

// ExportService renders survey results to CSV or XLSX, either inline or as
// a background job whose output lands in a storage.Store.
type ExportService struct {
	results *ResultsService
	jobs    repository.ExportJobRepository
	store   storage.Store
	run     func(func())
}

func NewExportService(results *ResultsService, jobs repository.ExportJobRepository, store storage.Store) *ExportService {
	return &ExportService{
		results: results,
		jobs:    jobs,
		store:   store,
		run:     func(fn func()) { go fn() },
	}
}

// WithRunner replaces how queued jobs are executed. Tests pass a runner that
// calls fn directly.
func (s *ExportService) WithRunner(run func(func())) *ExportService {
	s.run = run
	return s
}

func normalizeFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if !validFormat(format) {
		return "", validationf("unsupported export format %q", format)
	}
	return format, nil
}

// Render produces the export file synchronously.
func (s *ExportService) Render(ctx context.Context, surveyID, creatorID uint, format string) ([]byte, string, error) {
	format, err := normalizeFormat(format)
	if err != nil {
		return nil, "", err
	}
	res, err := s.results.Results(ctx, surveyID, creatorID)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := WriteResults(&buf, format, res); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("survey_%d_results.%s", surveyID, format), nil
}

// Queue records an export job and hands it to the runner.
func (s *ExportService) Queue(ctx context.Context, surveyID, creatorID uint, format string) (*models.ExportJob, error) {
	format, err := normalizeFormat(format)
	if err != nil {
		return nil, err
	}
	if _, err := s.results.surveys.Get(ctx, surveyID, creatorID); err != nil {
		return nil, err
	}

	job := &models.ExportJob{
		JobID:       uuid.New().String(),
		SurveyID:    surveyID,
		RequestedBy: creatorID,
		Format:      format,
		Status:      models.ExportQueued,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create export job: %w", err)
	}

	jobID := job.JobID
	s.run(func() { s.process(context.Background(), jobID, surveyID, creatorID, format) })
	return job, nil
}

// Job returns an export job if its survey belongs to creatorID.
func (s *ExportService) Job(ctx context.Context, jobID string, creatorID uint) (*models.ExportJob, error) {
	job, err := s.jobs.Find(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("export job %w", ErrNotFound)
		}
		return nil, err
	}
	if _, err := s.results.surveys.Get(ctx, job.SurveyID, creatorID); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *ExportService) process(ctx context.Context, jobID string, surveyID, creatorID uint, format string) {
	log := logger.WithFields(logrus.Fields{"job_id": jobID, "survey_id": surveyID})

	fail := func(err error) {
		log.WithError(err).Error("export failed")
		msg := err.Error()
		if uerr := s.jobs.Update(ctx, jobID, map[string]interface{}{
			"status":    models.ExportFailed,
			"error_msg": msg,
		}); uerr != nil {
			log.WithError(uerr).Error("mark export failed")
		}
	}

	if err := s.jobs.Update(ctx, jobID, map[string]interface{}{"status": models.ExportProcessing}); err != nil {
		fail(err)
		return
	}

	data, _, err := s.Render(ctx, surveyID, creatorID, format)
	if err != nil {
		fail(err)
		return
	}

	key := fmt.Sprintf("surveys/%d/export_%s.%s", surveyID, jobID, format)
	location, err := s.store.Put(ctx, key, ContentType(format), bytes.NewReader(data))
	if err != nil {
		fail(fmt.Errorf("store export: %w", err))
		return
	}

	kind := s.store.Kind()
	if err := s.jobs.Update(ctx, jobID, map[string]interface{}{
		"status":       models.ExportDone,
		"storage_kind": kind,
		"location":     location,
	}); err != nil {
		log.WithError(err).Error("mark export done")
		return
	}
	log.Info("export done")
}
