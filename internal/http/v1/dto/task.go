package dto

// CreateStateRequest adds a task state to a board.
type CreateStateRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// UpdateStateRequest re-codes or renames a state. Empty fields are
// left unchanged.
type UpdateStateRequest struct {
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
}

// CopyStateRequest copies a state definition to another board.
type CopyStateRequest struct {
	TargetBoardID string `json:"targetBoardId" binding:"required,uuid"`
}

// CreateTaskRequest for task creation. The task always starts in the
// board's NEW state; there is no state field on purpose.
type CreateTaskRequest struct {
	BoardID     string   `json:"boardId" binding:"required,uuid"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description,omitempty"`
	FileIDs     []string `json:"fileIds,omitempty" binding:"omitempty,dive,uuid"`
}

// UpdateTaskRequest changes title, description or board. Version is the
// version the caller last read.
type UpdateTaskRequest struct {
	Title       string  `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	BoardID     *string `json:"boardId,omitempty" binding:"omitempty,uuid"`
	Version     int     `json:"version" binding:"required,min=1"`
}

// ChangeTaskStateRequest moves the task to another state of its board.
type ChangeTaskStateRequest struct {
	StateCode string `json:"stateCode" binding:"required"`
}

// AssignEmployeeRequest adds or removes an assignee.
type AssignEmployeeRequest struct {
	EmployeeID string `json:"employeeId" binding:"required,uuid"`
}

// AttachFileRequest attaches a stored file to a task.
type AttachFileRequest struct {
	FileID string `json:"fileId" binding:"required,uuid"`
}
