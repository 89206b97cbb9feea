package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vegasq/tabq/internal/logger"
	"github.com/vegasq/tabq/internal/metrics"
	"github.com/vegasq/tabq/query"
	"github.com/vegasq/tabq/reader"
)

func (s *Server) handleRoot(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAuthorize(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleDatasets(c *gin.Context) {
	metas, err := s.source.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	s.writeJSON(c, metas)
}

func (s *Server) handleQuery(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.With(ctx, s.logger)

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		abortWithError(c, BadRequest("Failed to read request body", err))
		return
	}

	var req query.Request
	if err := json.Unmarshal(body, &req); err != nil {
		abortWithError(c, BadRequest("Json deserialize error: "+err.Error(), err))
		return
	}

	datasetID := req.Dataset()
	ds, err := s.source.Dataset(ctx, datasetID)
	if err != nil {
		if errors.Is(err, reader.ErrDatasetNotFound) {
			err = NewError(http.StatusNotFound, "Unknown dataset", "Unknown dataset id: "+datasetID, err)
		}
		metrics.ObserveQuery("", 0, err)
		abortWithError(c, err)
		return
	}

	res, err := s.engine.Run(&req, ds.Rows, ds.Index)
	if err != nil {
		metrics.ObserveQuery("", 0, err)
		log.Debug("query rejected", "dataset", datasetID, "error", err)
		abortWithError(c, err)
		return
	}

	mode := res.Plan.Mode().String()
	metrics.ObserveQuery(mode, len(res.Rows), nil)
	log.Debug("query executed",
		"dataset", datasetID,
		"mode", mode,
		"rows_in", len(ds.Rows),
		"rows_filtered", res.Filtered,
		"rows_out", len(res.Rows),
	)

	s.writeJSON(c, res.Rows)
}

// writeJSON encodes v with json-iterator so output matches the encoding
// used for group keys.
func (s *Server) writeJSON(c *gin.Context, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		abortWithError(c, Internal(err))
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}
