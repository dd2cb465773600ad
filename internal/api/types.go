package api

import (
	"github.com/samcharles93/skyvis/internal/scene"
	"github.com/samcharles93/skyvis/internal/simulate"
)

type VisibilitiesRequest struct {
	Scene      *scene.Scene `json:"scene"`
	IncludeVis bool         `json:"include_vis,omitempty"`
	Store      *bool        `json:"store,omitempty"`
}

type BatchRequest struct {
	Scenes      []*scene.Scene `json:"scenes"`
	IncludeVis  bool           `json:"include_vis,omitempty"`
	Concurrency int            `json:"concurrency,omitempty"`
	Store       *bool          `json:"store,omitempty"`
}

type VisibilitiesResponse struct {
	Object    string `json:"object"`
	CreatedAt int64  `json:"created_at"`
	simulate.Record
}

type BatchResponse struct {
	Object string                 `json:"object"`
	Data   []VisibilitiesResponse `json:"data"`
}

type DeleteResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type HealthResponse struct {
	Status      string   `json:"status"`
	Version     string   `json:"version"`
	Backend     string   `json:"backend"`
	Available   string   `json:"available"`
	CPUFeatures []string `json:"cpu_features,omitempty"`
	Stored      int      `json:"stored"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
	Code    string `json:"code,omitempty"`
	Status  *int   `json:"status,omitempty"`
}
