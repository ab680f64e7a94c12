package utils

import (
	"github.com/sethvargo/go-password/password"
)

// GeneratePIN returns a random 6-digit access PIN.
func GeneratePIN() (string, error) {
	return password.Generate(6, 6, 0, true, true)
}
