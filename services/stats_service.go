package services

import (
	"context"
	"time"
)

const recentSurveysLimit = 5

type RecentSurvey struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	IsActive      bool      `json:"isActive"`
	ResponseCount int64     `json:"responseCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type UserStats struct {
	TotalSurveys   int64          `json:"totalSurveys"`
	ActiveSurveys  int64          `json:"activeSurveys"`
	TotalResponses int64          `json:"totalResponses"`
	RecentSurveys  []RecentSurvey `json:"recentSurveys"`
}

type StatsService struct {
	surveys *SurveyService
}

func NewStatsService(surveys *SurveyService) *StatsService {
	return &StatsService{surveys: surveys}
}

func (s *StatsService) ForUser(ctx context.Context, userID uint) (*UserStats, error) {
	total, active, err := s.surveys.surveys.CountByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	responses, err := s.surveys.surveys.CountResponsesByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.surveys.list(ctx, userID, recentSurveysLimit)
	if err != nil {
		return nil, err
	}

	stats := &UserStats{
		TotalSurveys:   total,
		ActiveSurveys:  active,
		TotalResponses: responses,
		RecentSurveys:  make([]RecentSurvey, 0, len(recent)),
	}
	for _, sv := range recent {
		stats.RecentSurveys = append(stats.RecentSurveys, RecentSurvey{
			ID:            sv.ID,
			Title:         sv.Title,
			IsActive:      sv.IsActive,
			ResponseCount: sv.ResponseCount,
			CreatedAt:     sv.CreatedAt,
		})
	}
	return stats, nil
}
