package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/facilitair/site-server-go/internal/model"
)

type SurveyRepository interface {
	Create(ctx context.Context, params model.CreateSurveyParams) (*model.Survey, error)
	FindResponses(ctx context.Context) ([]model.SurveyResponse, error)
}

type surveyRepo struct {
	db *sqlx.DB
}

func NewSurveyRepository(db *sqlx.DB) SurveyRepository {
	return &surveyRepo{db: db}
}

func (r *surveyRepo) Create(ctx context.Context, params model.CreateSurveyParams) (*model.Survey, error) {
	var survey model.Survey
	err := r.db.GetContext(ctx, &survey, `
		INSERT INTO user_surveys (subscriber_id, planned_use, anticipated_usage, how_found, background, additional_info)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, params.SubscriberID, params.PlannedUse, params.AnticipatedUsage, params.HowFound, params.Background, params.AdditionalInfo)
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

func (r *surveyRepo) FindResponses(ctx context.Context) ([]model.SurveyResponse, error) {
	responses := []model.SurveyResponse{}
	err := r.db.SelectContext(ctx, &responses, `
		SELECT
			s.email,
			s.subscribed_at,
			us.planned_use,
			us.anticipated_usage,
			us.how_found,
			us.background,
			us.additional_info,
			us.submitted_at
		FROM user_surveys us
		JOIN subscribers s ON us.subscriber_id = s.id
		ORDER BY us.submitted_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return responses, nil
}
