package dto

// CreateProjectRequest for project creation.
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
}

// UpdateProjectRequest renames a project or updates its description.
type UpdateProjectRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// CreateBoardRequest for board creation under a project.
type CreateBoardRequest struct {
	Name string `json:"name" binding:"required"`
}

// RenameBoardRequest renames a board.
type RenameBoardRequest struct {
	Name string `json:"name" binding:"required"`
}
