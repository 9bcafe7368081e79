package models

// APIResponse is the envelope for every JSON response.
type APIResponse struct {
	Success    bool            `json:"success"`
	Data       interface{}     `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	Error      *ErrorInfo      `json:"error,omitempty"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}

type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type PaginationInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// ValidationError describes one failed field check.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func NewSuccessResponse(data interface{}, message string) *APIResponse {
	return &APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	}
}

func NewErrorResponse(code, message string, details map[string]string) *APIResponse {
	return &APIResponse{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func NewPaginatedResponse(data interface{}, pagination *PaginationInfo, message string) *APIResponse {
	return &APIResponse{
		Success:    true,
		Data:       data,
		Message:    message,
		Pagination: pagination,
	}
}

func NewPaginationInfo(page, perPage, totalItems int) *PaginationInfo {
	totalPages := totalItems / perPage
	if totalItems%perPage != 0 {
		totalPages++
	}
	return &PaginationInfo{
		Page:       page,
		PerPage:    perPage,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}
