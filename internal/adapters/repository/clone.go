package repository

import (
	"maps"

	"github.com/okian/tribureau/internal/domain/model"
)

func cloneReading(r model.Reading) model.Reading {
	if r.Metrics != nil {
		m := *r.Metrics
		m.Extra = maps.Clone(r.Metrics.Extra)
		r.Metrics = &m
	}
	return r
}

func cloneResult(res model.AggregatedResult) model.AggregatedResult {
	res.Components = append([]model.Component(nil), res.Components...)
	res.MissingSources = append([]model.Source{}, res.MissingSources...)
	return res
}

func validateReading(r model.Reading) error {
	if r.UserID == "" {
		return wrapInvalid("reading without user id")
	}
	if err := r.Validate(); err != nil {
		return wrapInvalid(err.Error())
	}
	return nil
}

func validateResult(res model.AggregatedResult) error {
	switch {
	case res.UserID == "":
		return wrapInvalid("result without user id")
	case len(res.Components) == 0:
		return wrapInvalid("result without components")
	}
	for _, c := range res.Components {
		if c.ReadingID == "" {
			return wrapInvalid("component without reading reference")
		}
	}
	return nil
}
