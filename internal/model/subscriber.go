package model

import (
	"time"
)

type Subscriber struct {
	ID                int64      `db:"id" json:"id"`
	Email             string     `db:"email" json:"email"`
	EmailHash         string     `db:"email_hash" json:"-"`
	SubscribedAt      time.Time  `db:"subscribed_at" json:"subscribedAt"`
	IPAddress         *string    `db:"ip_address" json:"-"`
	UserAgent         *string    `db:"user_agent" json:"-"`
	Confirmed         bool       `db:"confirmed" json:"confirmed"`
	ConfirmedAt       *time.Time `db:"confirmed_at" json:"confirmedAt,omitempty"`
	ConfirmationToken *string    `db:"confirmation_token" json:"-"`
	UnsubscribeToken  string     `db:"unsubscribe_token" json:"-"`
	SurveyCompleted   bool       `db:"survey_completed" json:"surveyCompleted"`
}

type CreateSubscriberParams struct {
	Email             string
	EmailHash         string
	IPAddress         *string
	UserAgent         *string
	ConfirmationToken string
	UnsubscribeToken  string
}

type Survey struct {
	ID               int64     `db:"id" json:"id"`
	SubscriberID     int64     `db:"subscriber_id" json:"subscriberId"`
	PlannedUse       *string   `db:"planned_use" json:"plannedUse,omitempty"`
	AnticipatedUsage *string   `db:"anticipated_usage" json:"anticipatedUsage,omitempty"`
	HowFound         *string   `db:"how_found" json:"howFound,omitempty"`
	Background       *string   `db:"background" json:"background,omitempty"`
	AdditionalInfo   *string   `db:"additional_info" json:"additionalInfo,omitempty"`
	SubmittedAt      time.Time `db:"submitted_at" json:"submittedAt"`
}

type CreateSurveyParams struct {
	SubscriberID     int64
	PlannedUse       *string
	AnticipatedUsage *string
	HowFound         *string
	Background       *string
	AdditionalInfo   *string
}

// SurveyResponse joins a survey row with its subscriber for admin export.
type SurveyResponse struct {
	Email            string    `db:"email" json:"email"`
	SubscribedAt     time.Time `db:"subscribed_at" json:"subscribedAt"`
	PlannedUse       *string   `db:"planned_use" json:"plannedUse,omitempty"`
	AnticipatedUsage *string   `db:"anticipated_usage" json:"anticipatedUsage,omitempty"`
	HowFound         *string   `db:"how_found" json:"howFound,omitempty"`
	Background       *string   `db:"background" json:"background,omitempty"`
	AdditionalInfo   *string   `db:"additional_info" json:"additionalInfo,omitempty"`
	SubmittedAt      time.Time `db:"submitted_at" json:"submittedAt"`
}

type SubscriberStats struct {
	Total      int `db:"total" json:"total"`
	Confirmed  int `db:"confirmed" json:"confirmed"`
	RecentWeek int `db:"recent_week" json:"recentWeek"`
}
