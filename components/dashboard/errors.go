package dashboard

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSelection is returned when a bulk action has no selected rows.
	ErrNoSelection = errors.New("dashboard: no items selected")
	// ErrConfirmationRequired is returned when a dangerous action was not confirmed.
	ErrConfirmationRequired = errors.New("dashboard: confirmation required")
	// ErrReportIDRequired is returned for report operations without an id.
	ErrReportIDRequired = errors.New("dashboard: report id is required")
	// ErrRegenerateRejected is returned when the admin refuses a regeneration.
	ErrRegenerateRejected = errors.New("dashboard: report regeneration rejected")

	// ErrForeignChangelist is returned for changelist URLs outside the admin.
	ErrForeignChangelist = errors.New("dashboard: changelist url outside the admin")

	errInvalidArea       = errors.New("dashboard: area code is required")
	errInvalidDefinition = errors.New("dashboard: definition id is required")
)

// ConfirmationError carries the prompt the viewer must accept before retrying
// the action with confirmation.
type ConfirmationError struct {
	Action string
	Prompt string
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("dashboard: %s requires confirmation", e.Action)
}

// Is matches ErrConfirmationRequired.
func (e *ConfirmationError) Is(target error) bool {
	return target == ErrConfirmationRequired
}

// ReportPayloadError wraps an error message embedded in a report payload.
type ReportPayloadError struct {
	ReportID string
	Message  string
}

func (e *ReportPayloadError) Error() string {
	return fmt.Sprintf("dashboard: report %s: %s", e.ReportID, e.Message)
}
