package request

type LoginRequest struct {
	// email или username
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Role        string `json:"role" validate:"required,oneof=creator follower"`
	DisplayName string `json:"displayName" validate:"omitempty,max=100"`
}

type SetPremiumRequest struct {
	IsPremium *bool `json:"isPremium" validate:"required"`
}

type UpdateProfileRequest struct {
	DisplayName string   `json:"displayName" validate:"required,max=100"`
	Bio         string   `json:"bio" validate:"max=2000"`
	Categories  []string `json:"categories" validate:"max=20,dive,max=50"`
}
