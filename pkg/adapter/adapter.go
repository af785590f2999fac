// Package adapter turns raw document bytes into a grid.Grid. Each document
// kind has its own signal for which text is data: real table cells, lines
// ending in numbers, or text styled to be invisible.
package adapter

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/saranrapjs/quarterly-statements/pkg/filing"
	"github.com/saranrapjs/quarterly-statements/pkg/grid"
)

// ErrUnreadable means the bytes could not be parsed into any grid at all.
// A document that parses but holds no qualifying structure is not an error;
// it yields an empty grid.
var ErrUnreadable = errors.New("unreadable document")

// Adapt converts one document into a grid.
func Adapt(b []byte, kind filing.Kind) (*grid.Grid, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUnreadable)
	}
	switch kind {
	case filing.TableHTML:
		return adaptHTML(b)
	case filing.LayoutText:
		return adaptLayout(b)
	case filing.ShadowDeck:
		return adaptShadow(b)
	}
	return nil, fmt.Errorf("%w: unknown document kind %q", ErrUnreadable, kind)
}
