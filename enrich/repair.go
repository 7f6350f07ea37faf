// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package enrich

import (
	"encoding/json"
	"regexp"
	"strings"
)

// annotation is the two-field structure requested from the backend.
type annotation struct {
	Summary   string `json:"summary"`
	Sentiment string `json:"sentiment"`
}

var (
	summaryPattern   = regexp.MustCompile(`(?s)"summary"\s*:\s*"(.*?)"`)
	sentimentPattern = regexp.MustCompile(`(?s)"sentiment"\s*:\s*"(.*?)"`)
)

// parseResponse extracts the summary/sentiment pair from a backend
// response. It first strips markdown fences and attempts strict JSON
// decoding; on failure it falls back to regex extraction of the field
// substrings. ok is false only when neither strategy finds anything.
func parseResponse(text string) (a annotation, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return annotation{}, false
	}

	// Strip markdown code fences if present.
	if strings.Contains(text, "```") {
		text = strings.ReplaceAll(text, "```json", "")
		text = strings.ReplaceAll(text, "```", "")
		text = strings.TrimSpace(text)
	}

	if err := json.Unmarshal([]byte(text), &a); err == nil {
		return a, true
	}

	// Regex repair: pull the field substrings out of whatever the model
	// actually produced.
	var repaired annotation
	if m := summaryPattern.FindStringSubmatch(text); m != nil {
		repaired.Summary = strings.ReplaceAll(m[1], `"`, "'")
	}
	if m := sentimentPattern.FindStringSubmatch(text); m != nil {
		repaired.Sentiment = m[1]
	}
	if repaired.Summary == "" && repaired.Sentiment == "" {
		return annotation{}, false
	}
	return repaired, true
}
