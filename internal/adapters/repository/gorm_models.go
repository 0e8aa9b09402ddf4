package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/okian/tribureau/internal/domain/model"
	"gorm.io/datatypes"
)

type readingRow struct {
	ID               string         `gorm:"column:id;type:text;primaryKey"`
	UserID           string         `gorm:"column:user_id;type:text;not null;index:idx_reading_latest,priority:1"`
	Source           string         `gorm:"column:source;type:text;not null;index:idx_reading_latest,priority:2"`
	CapturedAt       time.Time      `gorm:"column:captured_at;not null;index:idx_reading_latest,priority:3"`
	ExternalReportID string         `gorm:"column:external_report_id;type:text;not null"`
	Available        bool           `gorm:"column:available;not null"`
	ErrorReason      string         `gorm:"column:error_reason;type:text"`
	Metrics          datatypes.JSON `gorm:"column:metrics"`
}

func (readingRow) TableName() string { return "source_readings" }

func toReadingRow(r model.Reading) (readingRow, error) {
	row := readingRow{
		ID:               r.ID,
		UserID:           r.UserID,
		Source:           string(r.Source),
		CapturedAt:       r.CapturedAt.UTC(),
		ExternalReportID: r.ExternalReportID,
		Available:        r.Available,
		ErrorReason:      r.ErrorReason,
	}
	if r.Metrics != nil {
		raw, err := json.Marshal(r.Metrics)
		if err != nil {
			return readingRow{}, fmt.Errorf("encode metrics: %w", err)
		}
		row.Metrics = datatypes.JSON(raw)
	}
	return row, nil
}

func (row readingRow) toModel() (model.Reading, error) {
	r := model.Reading{
		ID:               row.ID,
		UserID:           row.UserID,
		Source:           model.Source(row.Source),
		CapturedAt:       row.CapturedAt.UTC(),
		ExternalReportID: row.ExternalReportID,
		Available:        row.Available,
		ErrorReason:      row.ErrorReason,
	}
	if len(row.Metrics) > 0 {
		var m model.Metrics
		if err := json.Unmarshal(row.Metrics, &m); err != nil {
			return model.Reading{}, fmt.Errorf("decode metrics of %s: %w", row.ID, err)
		}
		r.Metrics = &m
	}
	return r, nil
}

type resultRow struct {
	ID             string         `gorm:"column:id;type:text;primaryKey"`
	UserID         string         `gorm:"column:user_id;type:text;not null;index:idx_result_latest,priority:1"`
	CombinedScore  int            `gorm:"column:combined_score;not null"`
	Method         string         `gorm:"column:method;type:text;not null"`
	MissingSources datatypes.JSON `gorm:"column:missing_sources"`
	RiskCategory   string         `gorm:"column:risk_category;type:text;not null"`
	Recommendation string         `gorm:"column:recommendation;type:text;not null"`
	ComputedAt     time.Time      `gorm:"column:computed_at;not null;index:idx_result_latest,priority:2"`
	Components     []componentRow `gorm:"foreignKey:ResultID;constraint:OnDelete:CASCADE"`
}

func (resultRow) TableName() string { return "aggregated_results" }

// componentRow references the exact reading a score was taken from.
type componentRow struct {
	ID        uint    `gorm:"column:id;primaryKey;autoIncrement"`
	ResultID  string  `gorm:"column:result_id;type:text;not null;index"`
	Position  int     `gorm:"column:position;not null"`
	Source    string  `gorm:"column:source;type:text;not null"`
	Score     int     `gorm:"column:score;not null"`
	Weight    float64 `gorm:"column:weight;not null"`
	ReadingID string  `gorm:"column:reading_id;type:text;not null;index"`
}

func (componentRow) TableName() string { return "aggregation_components" }

func toResultRow(res model.AggregatedResult) (resultRow, error) {
	missing, err := json.Marshal(res.MissingSources)
	if err != nil {
		return resultRow{}, fmt.Errorf("encode missing sources: %w", err)
	}
	row := resultRow{
		ID:             res.ID,
		UserID:         res.UserID,
		CombinedScore:  res.CombinedScore,
		Method:         string(res.Method),
		MissingSources: datatypes.JSON(missing),
		RiskCategory:   string(res.RiskCategory),
		Recommendation: res.Recommendation,
		ComputedAt:     res.ComputedAt.UTC(),
		Components:     make([]componentRow, len(res.Components)),
	}
	for i, c := range res.Components {
		row.Components[i] = componentRow{
			ResultID:  res.ID,
			Position:  i,
			Source:    string(c.Source),
			Score:     c.Score,
			Weight:    c.Weight,
			ReadingID: c.ReadingID,
		}
	}
	return row, nil
}

func (row resultRow) toModel() (model.AggregatedResult, error) {
	res := model.AggregatedResult{
		ID:             row.ID,
		UserID:         row.UserID,
		CombinedScore:  row.CombinedScore,
		Method:         model.Method(row.Method),
		RiskCategory:   model.RiskCategory(row.RiskCategory),
		Recommendation: row.Recommendation,
		ComputedAt:     row.ComputedAt.UTC(),
		MissingSources: []model.Source{},
		Components:     make([]model.Component, len(row.Components)),
	}
	if len(row.MissingSources) > 0 {
		if err := json.Unmarshal(row.MissingSources, &res.MissingSources); err != nil {
			return model.AggregatedResult{}, fmt.Errorf("decode missing sources of %s: %w", row.ID, err)
		}
	}
	for i, c := range row.Components {
		res.Components[i] = model.Component{
			Source:    model.Source(c.Source),
			Score:     c.Score,
			Weight:    c.Weight,
			ReadingID: c.ReadingID,
		}
	}
	return res, nil
}

type userRow struct {
	ID             string    `gorm:"column:id;type:text;primaryKey"`
	FirstName      string    `gorm:"column:first_name;type:text;not null"`
	LastName       string    `gorm:"column:last_name;type:text;not null"`
	Email          string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	CorrelationKey string    `gorm:"column:correlation_key;type:text;not null;uniqueIndex"`
	CreatedAt      time.Time `gorm:"column:created_at;not null;index"`
	UpdatedAt      time.Time `gorm:"column:updated_at;not null"`
}

func (userRow) TableName() string { return "users" }

func toUserRow(u model.User) userRow {
	return userRow{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		CorrelationKey: u.CorrelationKey,
		CreatedAt:      u.CreatedAt.UTC(),
		UpdatedAt:      u.UpdatedAt.UTC(),
	}
}

func (row userRow) toModel() model.User {
	return model.User{
		ID:             row.ID,
		FirstName:      row.FirstName,
		LastName:       row.LastName,
		Email:          row.Email,
		CorrelationKey: row.CorrelationKey,
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
}
