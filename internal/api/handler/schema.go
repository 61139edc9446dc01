package handler

import "github.com/cyco/cyco-engine/internal/core/domain"

// ErrorResponse is the error envelope rendered for every failed request.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type adminResponse struct {
	Admin bool `json:"admin"`
}

type updateResultResponse struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

type insertedResponse struct {
	InsertedID string `json:"insertedId"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type clientSecretResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// --- Requests ---

type jwtRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	PhotoURL string `json:"photoUrl"`
}

type wishlistUser struct {
	Email string `json:"email"`
}

type wishlistRequest struct {
	User  *wishlistUser    `json:"user"`
	Movie *domain.MovieRef `json:"movie"`
}

type forumQueryRequest struct {
	AuthorEmail string `json:"authorEmail" validate:"required,email"`
	AuthorName  string `json:"authorName"`
	Title       string `json:"title"`
	Body        string `json:"body" validate:"required"`
}

type viewsRequest struct {
	Views *int64 `json:"views" validate:"required,min=0"`
}

type paymentIntentRequest struct {
	Price    float64 `json:"price" validate:"gt=0"`
	Currency string  `json:"currency"`
}

type paymentRequest struct {
	Email         string         `json:"email"`
	TransactionID string         `json:"transactionId"`
	Price         float64        `json:"price"`
	Currency      string         `json:"currency"`
	Metadata      map[string]any `json:"metadata"`
}
