// Copyright 2026 © The GENESIS Authors
// SPDX-License-Identifier: Apache-2.0

package safety

import (
	"context"
	"regexp"
	"strings"
)

// CategoryMedical marks queries asking for medication or diagnosis.
const CategoryMedical = "medical_advice"

const medicalRefusal = "No podemos recomendar medicamentos ni emitir " +
	"diagnosticos. Por favor consulta a un profesional de la salud."

// Spanish and English phrasings of direct medication or diagnosis
// requests. Patterns match the lowercased query.
var medicalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`que\s+(medicamento|farmaco|pastilla|medicina)\s+(debo|deberia|puedo|me)`),
	regexp.MustCompile(`recetame|prescribeme|prescribe\s+me`),
	regexp.MustCompile(`diagnostica(me)?\s+(mi|este|esta)`),
	regexp.MustCompile(`what\s+medication\s+should\s+i\s+take`),
	regexp.MustCompile(`diagnose\s+(my|this)`),
	regexp.MustCompile(`cuantos?\s+(mg|miligramos|gramos)\s+de\s+\w+\s+(debo|puedo)\s+tomar`),
}

var medicalKeywords = []string{
	"antidepresivo", "antibiotico", "anabolicos", "esteroides", "ozempic",
}

// MedicalQueryChecker blocks queries that ask the system to prescribe,
// dose, or diagnose.
type MedicalQueryChecker struct{}

// NewMedicalQueryChecker creates the checker.
func NewMedicalQueryChecker() *MedicalQueryChecker { return &MedicalQueryChecker{} }

// ID implements InputChecker.
func (c *MedicalQueryChecker) ID() string { return "medical-query" }

// Refusal returns the user-facing message for blocked queries.
func (c *MedicalQueryChecker) Refusal() string { return medicalRefusal }

// CheckInput implements InputChecker.
func (c *MedicalQueryChecker) CheckInput(_ context.Context, query string) CheckResult {
	if query == "" {
		return CheckResult{}
	}
	normalized := strings.ToLower(query)

	for _, re := range medicalPatterns {
		if re.MatchString(normalized) {
			return CheckResult{
				Blocked:  true,
				Reason:   medicalRefusal,
				Category: CategoryMedical,
			}
		}
	}
	for _, kw := range medicalKeywords {
		if strings.Contains(normalized, kw) {
			return CheckResult{
				Blocked:  true,
				Reason:   medicalRefusal,
				Category: CategoryMedical,
			}
		}
	}
	return CheckResult{}
}
