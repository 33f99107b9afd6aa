// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package credit implements minted carbon credit batches with fractional
ownership and permanent retirement.

A batch represents a fixed quantity of credits issued against a single
verified project event.  The issued amount is immutable for the life of
the batch, while ownership of fractions of it moves between addresses
via transfers and leaves circulation permanently via retirements.  The
batch maintains the invariant that the sum of all outstanding balances
plus the sum of all retired amounts always equals the issued amount.
*/
package credit
