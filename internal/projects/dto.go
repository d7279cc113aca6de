package projects

// CreateProjectRequest registers a new project.
type CreateProjectRequest struct {
	Code       string `json:"code" validate:"required,max=30"`
	Name       string `json:"name" validate:"required,max=255"`
	ClientName string `json:"clientName" validate:"max=255"`
}

// UpdateProjectRequest mutates a project's editable fields.
type UpdateProjectRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,max=255"`
	ClientName *string `json:"clientName,omitempty" validate:"omitempty,max=255"`
	IsActive   *bool   `json:"isActive,omitempty"`
}

// ListProjectsRequest filters the project listing.
type ListProjectsRequest struct {
	Query           string `json:"q"`
	IncludeInactive bool   `json:"includeInactive"`
}
