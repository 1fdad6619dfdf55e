package transport

import "time"

// UserResponse is an account without its password hash.
type UserResponse struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Role      string    `json:"role"`
	RoleID    int64     `json:"roleId"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AdminCreateUserRequest creates an account with an explicit role.
type AdminCreateUserRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=150"`
	Password  string `json:"password" validate:"required,min=6"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	RoleID    *int64 `json:"roleId" validate:"omitempty,min=1"`
}

// AdminUpdateUserRequest patches basic fields; absent fields stay unchanged.
type AdminUpdateUserRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	RoleID    *int64  `json:"roleId" validate:"omitempty,min=1"`
}

// ChangeStatusRequest activates or deactivates an account.
type ChangeStatusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// UpdateProfileRequest edits the caller's own account.
type UpdateProfileRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
}

// ChangePasswordRequest sets a new password; the current password is verified
// when provided.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}
