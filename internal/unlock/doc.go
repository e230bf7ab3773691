// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package unlock turns encrypted-at-rest documents into unlocked values that
// carry the decrypted key material needed to open their children.
//
// The key graph is a set of typed edges ([EdgeKind]). Every edge knows how to
// wrap a child key under a parent key and how to unwrap it again, so each
// hop of the graph can be exercised on its own:
//
//	credential ──▶ user private key ──▶ root file key ──▶ child file key ─▶ ...
//	admin key  ──▶ any user private key, any file key
//	user/group ──▶ file access grant key
//
// Unlocking with a key that did not wrap the child always fails with an
// error matching app.ErrCrypto.
package unlock
