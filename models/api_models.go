package models

import "time"

// PaginationInfo holds metadata for paginated responses.
type PaginationInfo struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
}

// PaginatedTableResponse is one page of a single derived table.
type PaginatedTableResponse struct {
	Table      string         `json:"table"`
	Data       any            `json:"data"`
	Pagination PaginationInfo `json:"pagination"`
}

// ModeInfo tells the dashboard which modes it may offer.
type ModeInfo struct {
	DevAvailable bool   `json:"devAvailable"`
	Fixed        bool   `json:"fixed"`
	Default      string `json:"default"`
}

// UploadedFile describes one file held in a session workspace.
type UploadedFile struct {
	Kind     InputKind `json:"kind"`
	Label    string    `json:"label"`
	FileName string    `json:"fileName,omitempty"`
	Size     int       `json:"size"`
	Present  bool      `json:"present"`
	Required bool      `json:"required"`
}

// UploadStatus lists every input kind and whether the session holds it.
type UploadStatus struct {
	SessionID string         `json:"sessionId"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Files     []UploadedFile `json:"files"`
}

// GatedResponse is returned when an analysis cannot run yet.
type GatedResponse struct {
	Ready   bool        `json:"ready"`
	Variant string      `json:"variant"`
	Mode    string      `json:"mode"`
	Missing []InputKind `json:"missing"`
}
