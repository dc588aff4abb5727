package dto

import (
	"time"

	"github.com/noah-isme/mock-interview-api/internal/models"
)

// ResumeCreateRequest describes the multipart fields sent along with a resume file.
type ResumeCreateRequest struct {
	JobRole        string `form:"jobRole" validate:"required,max=255"`
	JobDescription string `form:"jobDescription" validate:"required"`
}

// ResumeResponse is returned to API clients when viewing resumes.
type ResumeResponse struct {
	ID             uint      `json:"id"`
	JobRole        string    `json:"jobRole"`
	JobDescription string    `json:"jobDescription"`
	FileName       string    `json:"fileName"`
	FileURL        string    `json:"fileUrl"`
	MimeType       string    `json:"mimeType"`
	SizeBytes      int64     `json:"sizeBytes"`
	Checksum       string    `json:"checksum"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewResumeResponse converts a Resume model into a DTO.
func NewResumeResponse(model models.Resume) ResumeResponse {
	return ResumeResponse{
		ID:             model.ID,
		JobRole:        model.JobRole,
		JobDescription: model.JobDescription,
		FileName:       model.FileName,
		FileURL:        model.FileURL,
		MimeType:       model.MimeType,
		SizeBytes:      model.SizeBytes,
		Checksum:       model.Checksum,
		CreatedAt:      model.CreatedAt,
	}
}

// NewResumeResponseSlice converts resume models into DTOs.
func NewResumeResponseSlice(items []models.Resume) []ResumeResponse {
	responses := make([]ResumeResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewResumeResponse(item))
	}

	return responses
}
