// Package transport defines request/response DTOs for the jobs API.
package transport

import "leadmarket_backend/internal/jobs/repository"

// ListJobsRequest filters a professional's job listing.
type ListJobsRequest struct {
	Status string `form:"status" validate:"omitempty,oneof=in_progress done cancelled no_show"`
	Limit  int    `form:"limit" validate:"omitempty,gt=0,lte=100"`
	Offset int    `form:"offset" validate:"omitempty,gte=0"`
}

// ListJobsResponse is a paged job listing.
type ListJobsResponse struct {
	Jobs   []repository.Job `json:"jobs"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// CancelJobRequest withdraws a job with a reason.
type CancelJobRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}
