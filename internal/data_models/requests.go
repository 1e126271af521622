package dto

import "time"

type TaskRequestData struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Price          float64    `json:"price"`
	CategoryID     *string    `json:"categoryId"`
	Location       *string    `json:"location"`
	Deadline       *time.Time `json:"deadline"`
	IsUrgent       bool       `json:"isUrgent"`
	IsRemote       bool       `json:"isRemote"`
	EstimatedHours *float64   `json:"estimatedHours"`
}

type ApplyRequest struct {
	Message       *string  `json:"message"`
	ProposedPrice *float64 `json:"proposedPrice"`
}

type ApplicationStatusRequest struct {
	Status string `json:"status"`
}

type MessageRequest struct {
	Content  string  `json:"content"`
	FileURL  *string `json:"fileUrl"`
	FileName *string `json:"fileName"`
	FileType *string `json:"fileType"`
}

type ReviewRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

type CategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	Color       *string `json:"color"`
	IsActive    *bool   `json:"isActive"`
}
