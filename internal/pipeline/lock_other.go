// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !unix

package pipeline

import "os"

// Advisory locking is only implemented for unix; elsewhere runs are not
// serialised.
func lockFile(*os.File) error { return nil }

func unlockFile(*os.File) error { return nil }
