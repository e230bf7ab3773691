// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Credential is the material a caller presents to authenticate. Which
// fields are used depends on Kind:
//   - password:  Login and Secret;
//   - federated: Provider, Subject and Secret (the provider-issued key);
//   - session:   Token (a signed session token).
type Credential struct {
	Kind     AuthenticationKind `json:"kind"`
	Login    string             `json:"login,omitempty"`
	Provider string             `json:"provider,omitempty"`
	Subject  string             `json:"subject,omitempty"`
	Secret   string             `json:"-"`
	Token    string             `json:"-"`
}
