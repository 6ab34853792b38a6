package app

import "fmt"

// DomainError is a failure the API reports deliberately: the Status and Code
// go out on the wire as-is. Codes used here: NOT_FOUND, VALIDATION_ERROR,
// REVISION_NOT_FOUND, GENERATION_UNAVAILABLE, GENERATION_FAILED. Anything
// that is not a DomainError surfaces as a generic SERVER_ERROR.
type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}
