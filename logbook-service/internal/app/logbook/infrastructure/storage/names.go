package storage

import (
	"fmt"
	"strings"
)

const (
	BackendDisk = "disk"
	BackendGCS  = "gcs"
)

// validateName допускает только плоское имя файла без каталогов
func validateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid image name %q", name)
	}
	return nil
}
