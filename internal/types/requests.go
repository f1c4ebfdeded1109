package types

// StartCookingRequest opens a conversation about a recipe. Message replaces
// the default opening prompt when set.
type StartCookingRequest struct {
	RecipeID string `json:"recipe_id" binding:"required"`
	Message  string `json:"message"`
}

// ChatRequest continues an existing conversation.
type ChatRequest struct {
	Message  string `json:"message" binding:"required"`
	ThreadID string `json:"thread_id" binding:"required"`
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// StatusResponse is the body of the root liveness endpoint.
type StatusResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports the state of each dependency.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
