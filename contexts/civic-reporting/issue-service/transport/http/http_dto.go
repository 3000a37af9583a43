// Package httptransport defines the JSON shapes for the issue-service API.
package httptransport

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateIssueRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Priority    string  `json:"priority,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Address     string  `json:"address,omitempty"`
	PhotoURL    string  `json:"photo_url,omitempty"`
}

type UpdateStatusRequest struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
}

type IssueResponse struct {
	IssueID       string    `json:"issue_id"`
	ReporterID    string    `json:"reporter_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	CategoryLabel string    `json:"category_label"`
	Department    string    `json:"department"`
	Priority      string    `json:"priority"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Address       string    `json:"address,omitempty"`
	PhotoURL      string    `json:"photo_url,omitempty"`
	Status        string    `json:"status,omitempty"`
	Upvotes       int       `json:"upvotes"`
	Confirmations int       `json:"confirmations"`
	UrgencyScore  int       `json:"urgency_score"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type IssueListResponse struct {
	Items []IssueResponse `json:"items"`
}

type NearbyIssueResponse struct {
	Issue      IssueResponse `json:"issue"`
	DistanceKm float64       `json:"distance_km"`
}

type NearbyListResponse struct {
	Items []NearbyIssueResponse `json:"items"`
}
