package files

import "github.com/driveyard/driveyard/internal/domain/models"

// Pagination describes one page of a listing response.
type Pagination struct {
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int64 `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPagination computes page math from an exact total count.
func NewPagination(page, limit, totalCount int64) Pagination {
	totalPages := (totalCount + limit - 1) / limit
	return Pagination{
		Page:       page,
		Limit:      limit,
		TotalCount: totalCount,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// ListResponse is the body of GET /api/files.
type ListResponse struct {
	Files       []models.File `json:"files"`
	Pagination  Pagination    `json:"pagination"`
	View        string        `json:"view"`
	SearchQuery string        `json:"searchQuery,omitempty"`
}

// UploadError reports one file that was admitted to the batch but
// failed to store.
type UploadError struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// UploadResponse is the body of POST /api/files. Errors is non-empty
// only on a 207 partial success.
type UploadResponse struct {
	Files  []models.File `json:"uploadedFiles"`
	Errors []UploadError `json:"errors,omitempty"`
}
