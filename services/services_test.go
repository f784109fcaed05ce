package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/repository"
	"github.com/vnkhanh/survey-hub/storage"
	"github.com/vnkhanh/survey-hub/testutil"
)

type countingMetrics struct {
	recorded   int
	duplicates int
}

func (m *countingMetrics) ResponseRecorded()  { m.recorded++ }
func (m *countingMetrics) DuplicateRejected() { m.duplicates++ }

type fixture struct {
	db       *gorm.DB
	surveys  *SurveyService
	recorder *ResponseRecorder
	results  *ResultsService
	stats    *StatsService
	exports  *ExportService
	metrics  *countingMetrics
	owner    *models.User
	other    *models.User
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	responses := repository.NewResponseRepository(db)
	surveys := NewSurveyService(repository.NewSurveyRepository(db))
	results := NewResultsService(surveys, responses)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	m := &countingMetrics{}
	return &fixture{
		db:       db,
		surveys:  surveys,
		recorder: NewResponseRecorder(surveys, responses, strict, m),
		results:  results,
		stats:    NewStatsService(surveys),
		exports: NewExportService(results, repository.NewExportJobRepository(db), store).
			WithRunner(func(fn func()) { fn() }),
		metrics: m,
		owner:   testutil.CreateUser(t, db, "owner@example.com"),
		other:   testutil.CreateUser(t, db, "other@example.com"),
	}
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

// lunchSurvey: an open question, a single-choice with A/B/C and an optional
// multiple-choice with X/Y.
func lunchInput(allowMultiple bool) CreateSurveyInput {
	return CreateSurveyInput{
		Title:                  "Lunch",
		Description:            "Where should we eat?",
		AllowMultipleResponses: allowMultiple,
		Questions: []QuestionInput{
			{Text: "Comments", Type: "open"},
			{Text: "Pick one", Type: "single", Options: []OptionInput{{Text: "A"}, {Text: "B"}, {Text: "C"}}},
			{Text: "Pick many", Type: "multiple-choice", IsRequired: boolPtr(false), Options: []OptionInput{{Text: "X"}, {Text: "Y"}}},
		},
	}
}

func (f *fixture) createSurvey(t *testing.T, allowMultiple bool) *models.Survey {
	t.Helper()
	s, err := f.surveys.Create(context.Background(), f.owner.ID, lunchInput(allowMultiple))
	require.NoError(t, err)
	return s
}

func optionID(t *testing.T, q models.Question, text string) uint {
	t.Helper()
	for _, o := range q.Options {
		if o.Text == text {
			return o.ID
		}
	}
	t.Fatalf("option %q not found", text)
	return 0
}
