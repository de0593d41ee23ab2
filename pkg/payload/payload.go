// Package payload loads the request body once, before a run starts.
package payload

import (
	"fmt"

	"github.com/spf13/afero"
)

// Load returns the content of bodyFile when it is set, the inline body
// otherwise. The returned slice must not be modified afterwards: every worker
// sends it as is.
func Load(fs afero.Fs, bodyFile string, inline string) ([]byte, error) {
	if bodyFile == "" {
		return []byte(inline), nil
	}
	content, err := afero.ReadFile(fs, bodyFile)
	if err != nil {
		return nil, fmt.Errorf("reading body file %s: %w", bodyFile, err)
	}
	return content, nil
}
