// CineLens - Hybrid Movie Recommendation Service
// Copyright 2026 CineLens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinelens/cinelens

package recommend

import "fmt"

// NotFoundError indicates that the requested user does not exist in the
// user table. API handlers map it to a 404 response.
type NotFoundError struct {
	UserID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("user %d not found", e.UserID)
}
