package util

import (
	"os"
	"path/filepath"
	"strings"
)

func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// JoinRooted joins name under root and refuses to escape it.
func JoinRooted(root, name string) string {
	clean := filepath.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	return filepath.Join(root, clean)
}
