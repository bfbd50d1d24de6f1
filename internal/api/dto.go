package api

import (
	"github.com/starford/harvest/internal/catalog"
	"github.com/starford/harvest/internal/sessionservice"
)

// SetQueryRequest is the request body for replacing a session's search text.
type SetQueryRequest struct {
	Query *string `json:"query" example:"ranch" validate:"required"`
}

// SetViewModeRequest is the request body for switching a session's view mode.
type SetViewModeRequest struct {
	Mode string `json:"mode" example:"map" validate:"required"`
}

// FarmListResponse is the filtered catalog (aliased from the domain layer).
type FarmListResponse = catalog.View

// SessionResponse is a session with its rendered view (aliased from the domain layer).
type SessionResponse = sessionservice.SessionView

// TagListResponse wraps the tag vocabulary.
type TagListResponse struct {
	Tags []string `json:"tags" example:"Organic,Free Range" validate:"required"`
}
