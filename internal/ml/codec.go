// Package ml implements the in-process performance classifier: dataset
// loading, label encoding, a seeded random-forest trainer, and the predictor
// facade the HTTP layer talks to.
package ml

import (
	"fmt"
	"sort"

	"github.com/studypulse/performance-hub/internal/domain/shared"
)

// LabelCodec is a bijection between the finite set of performance label
// strings observed in the training data and contiguous integer codes.
// Codes are assigned in lexicographic label order, so the mapping is stable
// across runs over the same label set. Immutable after fitting.
type LabelCodec struct {
	labels []string       // code -> label
	codes  map[string]int // label -> code
}

// FitLabelCodec builds a codec over the distinct labels in the given slice.
// Fails with a DatasetError kind when fewer than two distinct labels are
// present - a classifier cannot be trained on one class.
func FitLabelCodec(labels []string) (*LabelCodec, error) {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	if len(set) < 2 {
		return nil, shared.NewDomainError("ml", "FitLabelCodec", shared.ErrDataset,
			fmt.Sprintf("need at least 2 distinct labels, got %d", len(set)))
	}

	distinct := make([]string, 0, len(set))
	for l := range set {
		distinct = append(distinct, l)
	}
	sort.Strings(distinct)

	codes := make(map[string]int, len(distinct))
	for code, l := range distinct {
		codes[l] = code
	}

	return &LabelCodec{labels: distinct, codes: codes}, nil
}

// Encode returns the integer code for a label.
func (c *LabelCodec) Encode(label string) (int, bool) {
	code, ok := c.codes[label]
	return code, ok
}

// Decode returns the label string for a code. Fails when the code is
// outside the fitted range - inference never introduces new labels.
func (c *LabelCodec) Decode(code int) (string, error) {
	if code < 0 || code >= len(c.labels) {
		return "", shared.NewDomainError("ml", "Decode", shared.ErrInvalidValue,
			fmt.Sprintf("label code %d out of range [0,%d)", code, len(c.labels)))
	}
	return c.labels[code], nil
}

// NumClasses returns the number of distinct labels.
func (c *LabelCodec) NumClasses() int {
	return len(c.labels)
}

// Labels returns a copy of the label set in code order.
func (c *LabelCodec) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}
