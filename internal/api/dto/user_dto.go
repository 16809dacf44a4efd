package dto

// RegisterUserRequest is the POST /users/ payload.
type RegisterUserRequest struct {
	Username            string `json:"username"`
	Email               string `json:"email"`
	Password            string `json:"password"`
	ScreenName          string `json:"screen_name"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	PersonalInformation string `json:"personal_information"`
	HidePrivateInfo     bool   `json:"hide_private_info"`
}

// UpdateUserRequest is the PATCH /users/{id}/ payload; absent fields are
// left untouched.
type UpdateUserRequest struct {
	Password            *string `json:"password"`
	ScreenName          *string `json:"screen_name"`
	FirstName           *string `json:"first_name"`
	LastName            *string `json:"last_name"`
	PersonalInformation *string `json:"personal_information"`
	HidePrivateInfo     *bool   `json:"hide_private_info"`
}
