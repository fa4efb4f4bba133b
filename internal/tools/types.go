package tools

// Capability classifies a tool for per-request filtering. Filtering is
// driven by the tag, never by the tool's concrete type.
type Capability string

const (
	// CapabilityImage marks image generation tools, excluded when a
	// request sets allow_image_tool=false.
	CapabilityImage Capability = "image"
	// CapabilityWebSearch marks web search tools, excluded when a
	// request sets allow_web_search=false.
	CapabilityWebSearch Capability = "websearch"
	// CapabilityKnowledge marks knowledge-base retrieval tools.
	CapabilityKnowledge Capability = "knowledge"
	// CapabilityUtility marks always-available helper tools.
	CapabilityUtility Capability = "utility"
)

// ToolError is a structured error for model consumption. It lets tools
// surface a specific error type and message the model can react to.
type ToolError struct {
	ErrorType string `json:"error_type"` // e.g. "InvalidArguments"
	Message   string `json:"message"`
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	if e == nil {
		return "<nil ToolError>"
	}
	switch {
	case e.ErrorType == "" && e.Message == "":
		return "<empty ToolError>"
	case e.ErrorType == "":
		return e.Message
	case e.Message == "":
		return e.ErrorType
	}
	return e.ErrorType + ": " + e.Message
}

// NewInvalidArgumentsError builds a ToolError for rejected tool input.
func NewInvalidArgumentsError(message string) *ToolError {
	return &ToolError{ErrorType: "InvalidArguments", Message: message}
}
