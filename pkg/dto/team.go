package dto

import "github.com/dimitrije/fleetdesk/internal/models"

type RegisterMemberRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type UpdatePrivilegesRequest struct {
	Privileges []string `json:"privileges" validate:"required"`
}

type MembersResponse struct {
	Members []models.Member `json:"members"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx team API answer.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
