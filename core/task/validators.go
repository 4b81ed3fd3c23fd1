package task

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/taskforge/backend/core"
)

var (
	// custom validation tags & texts
	statusTag    = "taskstatus"
	statusText   = "invalid status"
	priorityTag  = "taskpriority"
	priorityText = "invalid priority"
)

// InitValidators registers task-specific validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)

	_ = validate.RegisterValidation(priorityTag, priorityValidation)
	core.RegisterCustomTranslation(validate, translator, priorityTag, priorityText)
}

// statusValidation checks that the value normalizes to a known Status.
func statusValidation(fl validator.FieldLevel) bool {
	return ParseStatus(fl.Field().String()) != StatusUnknown
}

// priorityValidation checks that the value normalizes to a known Priority.
func priorityValidation(fl validator.FieldLevel) bool {
	return ParsePriority(fl.Field().String()) != PriorityUnknown
}
