package handler

import (
	"time"

	"jobboard/internal/interview/models"
)

// EventResponse is an event plus the read models derived from it at request time.
type EventResponse struct {
	*models.Event
	Steps             []models.Step `json:"steps"`
	SecondsUntilStart int64         `json:"seconds_until_start"`
}

// FromEvent renders an event as seen at now.
func FromEvent(e *models.Event, now time.Time) *EventResponse {
	return &EventResponse{
		Event:             e,
		Steps:             models.Steps(e, now),
		SecondsUntilStart: int64(models.TimeUntilStart(e, now) / time.Second),
	}
}

// EventListResponse wraps list results so the payload can grow fields later.
type EventListResponse struct {
	Events []*EventResponse `json:"events"`
}

func fromEvents(events []*models.Event, now time.Time) *EventListResponse {
	out := make([]*EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, FromEvent(e, now))
	}
	return &EventListResponse{Events: out}
}
