package placement

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// freeName returns the first "<stem> - dupN<ext>" sibling of path (N from 1)
// that does not exist on disk.
func freeName(path string) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for counter := 1; ; counter++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s - dup%d%s", stem, counter, ext))
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
