package report

import (
	"encoding/json"
	"io"

	"github.com/hooplab/rosteropt/internal/types"
)

// WriteJSON exports the solution as indented JSON.
func WriteJSON(w io.Writer, sol *types.Solution) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sol)
}
