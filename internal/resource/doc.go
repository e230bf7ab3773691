// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package resource is the transactional layer over the document store.
//
// A [Manager] owns the store and an identity cache: for every
// (collection, id) at most one live [Resource] exists in the process, so two
// loads of the same document observe the same object. The cache holds weak
// pointers only; resources nobody references are collected and their cache
// slots are reclaimed by a cleanup function.
//
// All reads and writes happen inside [Manager.Transact]. A transaction keeps
// an undo log next to the store transaction: every Save, New and Delete
// registers a closure that restores the in-memory state, and on failure the
// closures run in reverse order after the store transaction is rolled back.
package resource
