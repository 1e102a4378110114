package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/validity/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"tool_id", "tool_name", "tool_slug",
	"author_id", "author_name", "category",
	"pricing", "website_url", "view_count", "like_count",
	"created_at", "tags",
}

type exportRowResponse struct {
	ToolID     string    `json:"tool_id"`
	ToolName   string    `json:"tool_name"`
	ToolSlug   string    `json:"tool_slug"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Category   string    `json:"category,omitempty"`
	Pricing    string    `json:"pricing"`
	WebsiteURL string    `json:"website_url,omitempty"`
	ViewCount  int64     `json:"view_count"`
	LikeCount  int64     `json:"like_count"`
	CreatedAt  time.Time `json:"created_at"`
	Tags       []string  `json:"tags"`
}

// GetExport handles GET /admin/export.
// It returns one flat row per tool. Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	format, err := queryString(r, "format")
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	if format != "" && format != "csv" && format != "json" {
		s.writeError(w, r, fmt.Errorf("%w: format must be csv or json", errBadRequest), "")
		return
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	if format == "csv" {
		writeCSV(w, rows)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(rows, exportRowToResponse))
}

// writeCSV streams rows as CSV. Tags within a row are pipe-separated ("|")
// to keep each tool on a single CSV line.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="tools.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	//nolint:errcheck // a failed write means the client went away
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(exportRowToCSVRecord(r))
	}
	cw.Flush()
}

func exportRowToResponse(r domain.ExportRow) exportRowResponse {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return exportRowResponse{
		ToolID:     r.ToolID,
		ToolName:   r.ToolName,
		ToolSlug:   r.ToolSlug,
		AuthorID:   r.AuthorID,
		AuthorName: r.AuthorName,
		Category:   r.CategorySlug,
		Pricing:    r.Pricing,
		WebsiteURL: r.WebsiteURL,
		ViewCount:  r.ViewCount,
		LikeCount:  r.LikeCount,
		CreatedAt:  r.CreatedAt,
		Tags:       tags,
	}
}

// exportRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
func exportRowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		r.ToolID,
		r.ToolName,
		r.ToolSlug,
		r.AuthorID,
		r.AuthorName,
		r.CategorySlug,
		r.Pricing,
		r.WebsiteURL,
		strconv.FormatInt(r.ViewCount, 10),
		strconv.FormatInt(r.LikeCount, 10),
		r.CreatedAt.UTC().Format(time.RFC3339),
		strings.Join(r.Tags, "|"),
	}
}
