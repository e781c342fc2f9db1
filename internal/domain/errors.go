package domain

import "errors"

// Sentinel errors shared by the engine and the storage backends.

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidTransition indicates the requested status change is not
	// allowed from the instance's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInformationalTask indicates the template is a time marker that
	// cannot be completed.
	ErrInformationalTask = errors.New("task is informational")

	// ErrPlotOccupied indicates the garden plot already holds a non-terminal
	// challenge.
	ErrPlotOccupied = errors.New("plot occupied")

	// ErrAlreadyPlanted indicates an active challenge with the same title
	// already exists on another plot.
	ErrAlreadyPlanted = errors.New("challenge already planted")

	// ErrDuplicateFlower indicates a flower of a once-per-day type was
	// already earned on that date.
	ErrDuplicateFlower = errors.New("flower already earned for date")
)

// Validation errors returned by value-object constructors.
var (
	ErrTitleRequired = errors.New("title is required")
	ErrTitleTooLong  = errors.New("title exceeds 255 characters")

	ErrInvalidTaskTier      = errors.New("invalid task tier")
	ErrInvalidTaskStatus    = errors.New("invalid task status")
	ErrInvalidRecurrence    = errors.New("invalid recurrence")
	ErrInvalidTemplateKind  = errors.New("invalid template kind")
	ErrInvalidMealSlot      = errors.New("invalid meal slot")
	ErrInvalidAvailability  = errors.New("invalid availability state")
	ErrInvalidCareStatus    = errors.New("invalid care status")
	ErrInvalidChildTaskType = errors.New("invalid child task type")
	ErrInvalidCareContext   = errors.New("invalid care context")
	ErrInvalidChallengeKind = errors.New("invalid challenge kind")
	ErrInvalidFlowerType    = errors.New("invalid flower type")
	ErrInvalidDate          = errors.New("invalid date")
)
