package handlers

import (
	"net/http"

	"rebalance-backtest/internal/api/models"
	"rebalance-backtest/internal/data"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// DatasetHandler lists the CSV files available to csv data sources
type DatasetHandler struct {
	dataDir string
	log     zerolog.Logger
}

func NewDatasetHandler(dataDir string, log zerolog.Logger) *DatasetHandler {
	return &DatasetHandler{dataDir: dataDir, log: log}
}

// ListDatasets handles GET /api/v1/datasets
func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	list, err := data.ListDatasets(h.dataDir)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "DATASETS_LOAD_ERROR", err)
		return
	}

	datasets := make([]models.DatasetInfo, len(list))
	for i, d := range list {
		if d.Error != "" {
			h.log.Warn().Str("file", d.File).Str("error", d.Error).Msg("unreadable dataset")
		}
		datasets[i] = models.DatasetInfo{
			ID:      d.ID,
			File:    d.File,
			Kind:    d.Kind,
			Columns: d.Columns,
			Error:   d.Error,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"datasets": datasets,
		"count":    len(datasets),
	})
}
