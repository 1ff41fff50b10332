package handler

import "lineage/internal/identity/models"

// CandidatesResponse is the body of GET /v1/candidates.
type CandidatesResponse struct {
	Candidates models.Candidates `json:"candidates"`
	Count      int               `json:"count"`
}

// QueueResponse is the body of GET /v1/queue.
type QueueResponse struct {
	Items []*models.ReviewQueueItem `json:"items"`
	Count int                       `json:"count"`
}
