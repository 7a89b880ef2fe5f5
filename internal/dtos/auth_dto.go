package dtos

type RegisterRequest struct {
	Email       string   `json:"email" binding:"required,email"`
	Password    string   `json:"password" binding:"required,min=8"`
	Name        string   `json:"name" binding:"required"`
	Role        string   `json:"role" binding:"omitempty,oneof=jobseeker employer"`
	CompanyName string   `json:"companyName"`
	Location    string   `json:"location"`
	Skills      []string `json:"skills"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	UserID    uint   `json:"userId"`
	Role      string `json:"role"`
}
