package models

import "time"

// RolloverPhase identifies where the term rollover state machine stands.
type RolloverPhase string

const (
	RolloverPhaseIdle                 RolloverPhase = "idle"
	RolloverPhaseConfirmPending       RolloverPhase = "confirm_pending"
	RolloverPhaseCredentialCollection RolloverPhase = "credential_collection"
	RolloverPhaseArchiving            RolloverPhase = "archiving"
	RolloverPhaseProvisioning         RolloverPhase = "provisioning"
	RolloverPhaseComplete             RolloverPhase = "complete"
)

// AdminCredentials carries the incoming or returning administrator's
// identity. Email grammar is validated by the identity provisioner, not the
// rollover engine.
type AdminCredentials struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RolloverStatus is the polling view of a rollover or restore workflow.
type RolloverStatus struct {
	Phase      RolloverPhase `json:"phase"`
	TermID     string        `json:"termId,omitempty"`
	FailedStep string        `json:"failedStep,omitempty"`
	Error      string        `json:"error,omitempty"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// RestoreState tracks an asynchronous permanent restore.
type RestoreState string

const (
	RestoreStateIdle     RestoreState = "idle"
	RestoreStateRunning  RestoreState = "running"
	RestoreStateComplete RestoreState = "complete"
	RestoreStateFailed   RestoreState = "failed"
)

// RestoreStatus is the polling view of the permanent restore workflow.
type RestoreStatus struct {
	State      RestoreState `json:"state"`
	TermID     string       `json:"termId,omitempty"`
	FailedStep string       `json:"failedStep,omitempty"`
	Error      string       `json:"error,omitempty"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}
