package httpapi

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"boq_engine/internal/models"
	"boq_engine/internal/storage"
	"boq_engine/internal/utils"
)

// handleCatalogRefresh runs a full catalog refresh cycle from the pricing
// feed. Admin role required.
func (d *Dependencies) handleCatalogRefresh(w http.ResponseWriter, r *http.Request) {
	if d.Refresher == nil {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Pricing feed is disabled")
		return
	}

	report, err := d.Refresher.Refresh(r.Context())
	if err != nil {
		d.Log.Error("catalog refresh failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusBadGateway, "Catalog refresh failed: "+err.Error())
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, report)
}

// SKUListResponse is the body of a catalog listing.
type SKUListResponse struct {
	Count   int                    `json:"count"`
	Entries []*models.CatalogEntry `json:"entries"`
}

// handleListSKUs lists catalog entries, filtered by query parameters.
func (d *Dependencies) handleListSKUs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := storage.CatalogFilter{
		SKUID:       query.Get("sku_id"),
		Category:    models.Category(query.Get("category")),
		Region:      query.Get("region"),
		MachineType: query.Get("machine_type"),
		ActiveOnly:  query.Get("include_inactive") != "true",
		Limit:       100,
	}
	if limit := query.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 || n > 1000 {
			utils.RespondWithError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		filter.Limit = n
	}
	if offset := query.Get("offset"); offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil || n < 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "offset must be non-negative")
			return
		}
		filter.Offset = n
	}

	entries, err := d.Catalog.Query(r.Context(), filter)
	if err != nil {
		d.Log.Error("catalog listing failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list catalog entries")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, SKUListResponse{
		Count:   len(entries),
		Entries: entries,
	})
}

// handleHealth reports process and database health.
func (d *Dependencies) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := d.DB.Health(r.Context()); err != nil {
		utils.RespondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
