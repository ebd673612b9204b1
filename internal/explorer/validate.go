package explorer

import (
	"errors"
	"fmt"
	"strings"
)

// invalidNameChars are rejected regardless of host OS so a tree created on
// one platform stays readable on the others.
const invalidNameChars = `\/:*?"<>|`

// ValidateName checks a proposed file or folder name before it reaches the
// directory service.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name is empty")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%q is not a valid name", name)
	}
	if strings.ContainsAny(name, invalidNameChars) {
		return fmt.Errorf("name contains one of %s", invalidNameChars)
	}
	return nil
}
