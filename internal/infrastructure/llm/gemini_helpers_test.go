package llm

import (
	"fmt"

	genai "google.golang.org/genai"
)

func genaiAPIError(code int, status string) error {
	return fmt.Errorf("wrapped: %w", genai.APIError{Code: code, Status: status, Message: "test"})
}
