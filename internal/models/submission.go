package models

// Submission represents one piece of source code entering a comparison
type Submission struct {
	ID       string `json:"id" binding:"required"`
	Language string `json:"language" binding:"required"`
	Source   string `json:"source" binding:"required"`
}
