package handler

import (
	"time"

	"careergate/internal/account"
	"careergate/internal/account/service"
)

// UserResponse is the wire shape for one managed account.
type UserResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Role      string     `json:"role"`
	BlockedAt *time.Time `json:"blocked_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// UsersListResponse is one page of the user listing.
type UsersListResponse struct {
	Users  []UserResponse `json:"users"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// UpdateUserRequest patches mutable account fields. Absent fields are left
// untouched.
type UpdateUserRequest struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
}

// VerifyLoginResponse confirms a successful admin login verification.
type VerifyLoginResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toUserResponse(acct *account.Account) UserResponse {
	return UserResponse{
		ID:        acct.ID.String(),
		Email:     acct.Email,
		FullName:  acct.FullName,
		Role:      acct.Role.String(),
		BlockedAt: acct.BlockedAt,
		CreatedAt: acct.CreatedAt,
		UpdatedAt: acct.UpdatedAt,
	}
}

func toUsersListResponse(page *service.UserPage) UsersListResponse {
	users := make([]UserResponse, 0, len(page.Users))
	for _, acct := range page.Users {
		users = append(users, toUserResponse(acct))
	}
	return UsersListResponse{
		Users:  users,
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
}
