package interfaces

// Result is the normalized outcome every dispatch operation reduces to
// before it reaches an admin test action or the background log path.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
