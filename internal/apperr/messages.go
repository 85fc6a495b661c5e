package apperr

import "fmt"

const (
	requiredMsg = "required"
	invalidMsg  = "invalid"
	existMsg    = "already exists"
	notExistMsg = "does not exist"
)

// FieldIsRequired returns field required message
func FieldIsRequired(k string) string {
	return fmt.Sprintf("%s %s", k, requiredMsg)
}

// FieldIsInvalid returns field invalid message
func FieldIsInvalid(k string) string {
	return fmt.Sprintf("%s %s", k, invalidMsg)
}

// AlreadyExist returns already exist message
func AlreadyExist(k string) string {
	return fmt.Sprintf("%s %s", k, existMsg)
}

// NotExist returns not exist message
func NotExist(k string) string {
	return fmt.Sprintf("%s %s", k, notExistMsg)
}
