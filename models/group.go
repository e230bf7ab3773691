// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Group is a set of users that can receive shares as one grantee. Members
// hold the group private key sealed under their own public key.
type Group struct {
	ID          ID        `json:"id"`
	Name        string    `json:"name"`
	OwnerUserID ID        `json:"owner_user_id"`
	PublicKey   []byte    `json:"public_key"`
	CreatedAt   time.Time `json:"created_at"`
}

func (g *Group) Collection() string { return CollectionGroups }
func (g *Group) DocumentID() ID { return g.ID }
func (g *Group) SetDocumentID(id ID) { g.ID = id }
func (g *Group) IndexFields() map[string]string {
	return map[string]string{
		FieldName:   g.Name,
		FieldUserID: g.OwnerUserID.String(),
	}
}

// GroupMembership grants one user the group's private key.
type GroupMembership struct {
	ID                  ID        `json:"id"`
	GroupID             ID        `json:"group_id"`
	UserID              ID        `json:"user_id"`
	EncryptedPrivateKey []byte    `json:"encrypted_private_key"`
	CreatedAt           time.Time `json:"created_at"`
}

func (m *GroupMembership) Collection() string { return CollectionGroupMemberships }
func (m *GroupMembership) DocumentID() ID { return m.ID }
func (m *GroupMembership) SetDocumentID(id ID) { m.ID = id }
func (m *GroupMembership) IndexFields() map[string]string {
	return map[string]string{
		FieldGroupID: m.GroupID.String(),
		FieldUserID:  m.UserID.String(),
	}
}
