//go:build windows

package store

import "os"

// setUmask is a no-op on Windows; file ACLs are inherited from the parent.
func setUmask(int) func() { return func() {} }

func ownedByCurrentUser(os.FileInfo) bool { return false }
