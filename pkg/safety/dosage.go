// Copyright 2026 © The GENESIS Authors
// SPDX-License-Identifier: Apache-2.0

package safety

import (
	"context"
	"regexp"
)

// dosagePattern matches concrete dose figures such as "500 mg" or
// "2 gramos diarios" that agent output must not state as prescriptions.
var dosagePattern = regexp.MustCompile(`(?i)\b\d+([.,]\d+)?\s*(mg|mcg|ug|ui|iu|miligramos|microgramos|gramos)\b`)

const dosageMask = "[consulta la dosis con un profesional]"

// DosageFilter masks concrete dosage figures in synthesized responses.
// The surrounding recommendation text is preserved.
type DosageFilter struct{}

// NewDosageFilter creates the filter.
func NewDosageFilter() *DosageFilter { return &DosageFilter{} }

// ID implements OutputFilter.
func (f *DosageFilter) ID() string { return "dosage-mask" }

// FilterOutput implements OutputFilter.
func (f *DosageFilter) FilterOutput(_ context.Context, response string) FilterResult {
	matches := dosagePattern.FindAllString(response, -1)
	if len(matches) == 0 {
		return FilterResult{Content: response}
	}

	redactions := make([]Redaction, 0, len(matches))
	for _, m := range matches {
		redactions = append(redactions, Redaction{
			Type:        "dosage",
			Original:    m,
			Replacement: dosageMask,
		})
	}
	return FilterResult{
		Content:    dosagePattern.ReplaceAllString(response, dosageMask),
		Modified:   true,
		Redactions: redactions,
	}
}
