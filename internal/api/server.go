// Package api serves the simulator over HTTP.
package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/skyvis/internal/backend"
	"github.com/samcharles93/skyvis/internal/scene"
	"github.com/samcharles93/skyvis/internal/simulate"
	"github.com/samcharles93/skyvis/internal/version"
	"github.com/samcharles93/skyvis/internal/visplot"
)

// MaxBatchScenes bounds the number of scenes in one batch request.
const MaxBatchScenes = 64

// Runner runs scenes. *simulate.Simulator satisfies it.
type Runner interface {
	Run(ctx context.Context, sc *scene.Scene) (*simulate.Result, error)
	RunBatch(ctx context.Context, scenes []*scene.Scene, limit int) ([]*simulate.Result, error)
	Backend() string
}

type Server struct {
	store  *ResultStore
	runner Runner
	clock  func() time.Time
}

func NewServer(store *ResultStore, runner Runner) *Server {
	if store == nil {
		store = NewResultStore(0)
	}
	return &Server{
		store:  store,
		runner: runner,
		clock:  time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/health", s.handleHealth)

	e.POST("/v1/visibilities", s.handleCreate)
	e.POST("/v1/visibilities/batch", s.handleBatch)
	e.GET("/v1/visibilities/:id", s.handleGet)
	e.DELETE("/v1/visibilities/:id", s.handleDelete)
	e.GET("/v1/visibilities/:id/plot", s.handlePlot)
}

func (s *Server) handleHealth(c *echo.Context) error {
	resp := HealthResponse{
		Status:      "ok",
		Version:     version.String(),
		Available:   backend.Available(),
		CPUFeatures: backend.CPUFeatures(),
		Stored:      s.store.Len(),
	}
	if s.runner != nil {
		resp.Backend = s.runner.Backend()
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCreate(c *echo.Context) error {
	if s.runner == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "simulator not configured", "", "")
	}
	req, err := decodeJSON[VisibilitiesRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.Scene == nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", "scene is required", "scene", "")
	}

	res, err := s.runner.Run(c.Request().Context(), req.Scene)
	if err != nil {
		return writeRunError(c, err)
	}
	return c.JSON(http.StatusOK, s.respond(res, req.IncludeVis, req.Store))
}

func (s *Server) handleBatch(c *echo.Context) error {
	if s.runner == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "simulator not configured", "", "")
	}
	req, err := decodeJSON[BatchRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	switch {
	case len(req.Scenes) == 0:
		return writeError(c, http.StatusBadRequest, "invalid_request_error", "scenes must not be empty", "scenes", "")
	case len(req.Scenes) > MaxBatchScenes:
		return writeError(c, http.StatusBadRequest, "invalid_request_error",
			fmt.Sprintf("at most %d scenes per batch", MaxBatchScenes), "scenes", "")
	case req.Concurrency < 0:
		return writeError(c, http.StatusBadRequest, "invalid_request_error", "concurrency must be >= 0", "concurrency", "")
	}
	for i, sc := range req.Scenes {
		if sc == nil {
			return writeError(c, http.StatusBadRequest, "invalid_request_error",
				fmt.Sprintf("scene %d is null", i), "scenes", "")
		}
	}

	results, err := s.runner.RunBatch(c.Request().Context(), req.Scenes, req.Concurrency)
	if err != nil {
		return writeRunError(c, err)
	}
	out := BatchResponse{Object: "list", Data: make([]VisibilitiesResponse, len(results))}
	for i, res := range results {
		out.Data[i] = s.respond(res, req.IncludeVis, req.Store)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGet(c *echo.Context) error {
	rec, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "visibilities not found")
	}
	withVis, err := queryBool(c, "vis", false)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, response(rec, withVis))
}

func (s *Server) handleDelete(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "visibilities not found")
	}
	return c.JSON(http.StatusOK, DeleteResponse{ID: id, Object: "visibilities.deleted", Deleted: true})
}

func (s *Server) handlePlot(c *echo.Context) error {
	rec, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "visibilities not found")
	}
	channel, err := queryInt(c, "channel", 0)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	width, err := queryInt(c, "width", 800)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	height, err := queryInt(c, "height", 600)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if width <= 0 || height <= 0 || width > 4096 || height > 4096 {
		return writeBadRequest(c, "width and height must be in (0, 4096]")
	}
	if channel < 0 || channel >= len(rec.Result.Freqs) {
		return writeError(c, http.StatusBadRequest, "invalid_request_error",
			fmt.Sprintf("channel %d out of range [0, %d)", channel, len(rec.Result.Freqs)), "channel", "")
	}

	var buf bytes.Buffer
	if err := visplot.WritePNG(&buf, rec.Result, channel, float64(width), float64(height)); err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// respond stores res unless store is explicitly false.
func (s *Server) respond(res *simulate.Result, withVis bool, store *bool) VisibilitiesResponse {
	if store != nil && !*store {
		return response(&resultRecord{CreatedAt: s.clock(), Result: res}, withVis)
	}
	return response(s.store.Create(res, s.clock()), withVis)
}

func response(rec *resultRecord, withVis bool) VisibilitiesResponse {
	out := VisibilitiesResponse{
		Object:    "visibilities",
		CreatedAt: rec.CreatedAt.Unix(),
		Record:    rec.Result.Record(withVis),
	}
	out.ID = rec.ID
	return out
}
