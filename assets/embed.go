// assets/embed.go
//
// Static game content compiled into the binary.

package assets

import (
	_ "embed"
)

//go:embed levels.json
var levelsJSON []byte

// LevelsJSON returns a copy of the embedded level catalog.
func LevelsJSON() []byte {
	out := make([]byte, len(levelsJSON))
	copy(out, levelsJSON)
	return out
}
