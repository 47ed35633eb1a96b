// Package testutil provides helpers shared by package tests and the
// integration suite.
package testutil

import "os"

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
