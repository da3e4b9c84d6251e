package common

// MessageResponse is the body of successful control calls that return no
// resource.
type MessageResponse struct {
	Message string `json:"message"`
}
