// Package descriptor builds, validates, and content-addresses strategy
// descriptors: the tagged values the parameter-space generators produce and
// the evaluator consumes.
package descriptor

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/atlas-desktop/discover/pkg/types"
)

// Key is the stable, lowercase-hex content-addressed cache key for one
// evaluation input: JSON(descriptor) ⊕ symbol ⊕ days ⊕ sizing_mode.
func Key(d types.Descriptor, symbol string, days int, sizing types.SizingMode) (string, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("descriptor: marshal for hash: %w", err)
	}
	h := sha256.New()
	h.Write(raw)
	h.Write([]byte(":"))
	h.Write([]byte(symbol))
	h.Write([]byte(":"))
	fmt.Fprintf(h, "%d", days)
	h.Write([]byte(":"))
	h.Write([]byte(sizing))
	return hex.EncodeToString(h.Sum(nil)), nil
}
