package generator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
)

// Fingerprint identifies the generator output for a set of options. Two
// runs with the same fingerprint produce the same text for the same input.
func Fingerprint(opts Options) string {
	h := sha256.New()
	_ = fs.WalkDir(templateFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := templateFS.ReadFile(path)
		if err != nil {
			return err
		}
		h.Write([]byte(path))
		h.Write(data)
		return nil
	})
	fmt.Fprintf(h, "%#v", opts)
	return hex.EncodeToString(h.Sum(nil))[:16]
}
