package overlay

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrOutput marks failures to produce the output document.
var ErrOutput = errors.New("output error")

// WriteFile encodes doc into path. The document is buffered into a temporary
// file next to path and renamed into place, so path is either fully written
// or left untouched.
func WriteFile(path string, doc *Document) (err error) {
	if doc == nil {
		return fmt.Errorf("%w: nil document", ErrOutput)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrOutput, path, err)
	}
	tmpName := tmp.Name()

	closed := false
	defer func() {
		if err == nil {
			return
		}
		if !closed {
			_ = tmp.Close()
		}
		_ = os.Remove(tmpName)
	}()

	bw := bufio.NewWriter(tmp)
	if err := doc.Encode(bw); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrOutput, path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrOutput, path, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %v", ErrOutput, path, err)
	}
	closed = true
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrOutput, path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: chmod %s: %v", ErrOutput, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: rename into %s: %v", ErrOutput, path, err)
	}
	return nil
}
