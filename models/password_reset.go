// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"strconv"
	"time"
)

// ResetState is the lifecycle state of a [PasswordResetRequest].
type ResetState int

const (
	ResetPending ResetState = iota
	ResetApproved
	ResetRejected
)

// PasswordResetRequest is filed by a user who lost every credential factor
// and resolved by an administrator holding the master key.
type PasswordResetRequest struct {
	ID               ID         `json:"id"`
	UserID           ID         `json:"user_id"`
	State            ResetState `json:"state"`
	CreatedAt        time.Time  `json:"created_at"`
	ResolvedAt       time.Time  `json:"resolved_at,omitempty"`
	ResolvedByUserID ID         `json:"resolved_by_user_id"`
}

// Resolved reports whether the request has left the pending state.
func (r *PasswordResetRequest) Resolved() bool {
	return r.State != ResetPending
}

func (r *PasswordResetRequest) Collection() string { return CollectionPasswordResetRequests }
func (r *PasswordResetRequest) DocumentID() ID { return r.ID }
func (r *PasswordResetRequest) SetDocumentID(id ID) { r.ID = id }
func (r *PasswordResetRequest) IndexFields() map[string]string {
	return map[string]string{
		FieldUserID: r.UserID.String(),
		FieldState:  strconv.Itoa(int(r.State)),
	}
}
