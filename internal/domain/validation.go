/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// RuleKind tags a ValidationRule variant.
type RuleKind string

const (
	RuleRequired  RuleKind = "required"
	RuleEmail     RuleKind = "email"
	RuleMinLength RuleKind = "minLength"
	RuleMaxLength RuleKind = "maxLength"
	RulePattern   RuleKind = "pattern"
	RuleCustom    RuleKind = "custom"
)

// ValidationRule declares a constraint on a field's input. Rules are stored
// with the document and shown in settings; nothing in this module evaluates
// them against user input.
//
// Bound is meaningful only for minLength/maxLength, Pattern only for pattern.
// Use the constructors rather than building the struct by hand.
type ValidationRule struct {
	Kind    RuleKind
	Bound   int
	Pattern string
	Message string
}

func RequiredRule(msg string) ValidationRule { return ValidationRule{Kind: RuleRequired, Message: msg} }
func EmailRule(msg string) ValidationRule    { return ValidationRule{Kind: RuleEmail, Message: msg} }
func CustomRule(msg string) ValidationRule   { return ValidationRule{Kind: RuleCustom, Message: msg} }

func MinLengthRule(n int, msg string) ValidationRule {
	return ValidationRule{Kind: RuleMinLength, Bound: n, Message: msg}
}

func MaxLengthRule(n int, msg string) ValidationRule {
	return ValidationRule{Kind: RuleMaxLength, Bound: n, Message: msg}
}

func PatternRule(expr, msg string) ValidationRule {
	return ValidationRule{Kind: RulePattern, Pattern: expr, Message: msg}
}

// Check reports whether the rule is well formed: a known kind, a non-negative
// bound and a pattern that compiles.
func (r ValidationRule) Check() error {
	switch r.Kind {
	case RuleRequired, RuleEmail, RuleCustom:
		return nil
	case RuleMinLength, RuleMaxLength:
		if r.Bound < 0 {
			return fmt.Errorf("%s: negative bound %d", r.Kind, r.Bound)
		}
		return nil
	case RulePattern:
		if r.Pattern == "" {
			return errors.New("pattern: empty expression")
		}
		if _, err := regexp.Compile(r.Pattern); err != nil {
			return fmt.Errorf("pattern: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown rule kind %q", r.Kind)
	}
}

type ruleRecord struct {
	Type    RuleKind        `json:"type"`
	Value   json.RawMessage `json:"value,omitempty"`
	Message string          `json:"message"`
}

func (r ValidationRule) MarshalJSON() ([]byte, error) {
	rec := ruleRecord{Type: r.Kind, Message: r.Message}
	switch r.Kind {
	case RuleMinLength, RuleMaxLength:
		rec.Value = json.RawMessage(strconv.Itoa(r.Bound))
	case RulePattern:
		b, err := json.Marshal(r.Pattern)
		if err != nil {
			return nil, err
		}
		rec.Value = b
	}
	return json.Marshal(rec)
}

// UnmarshalJSON accepts a numeric bound given either as a number or a numeric string.
func (r *ValidationRule) UnmarshalJSON(b []byte) error {
	var rec ruleRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}
	*r = ValidationRule{Kind: rec.Type, Message: rec.Message}
	v := bytes.TrimSpace(rec.Value)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return nil
	}
	switch rec.Type {
	case RuleMinLength, RuleMaxLength:
		var n json.Number
		if v[0] == '"' {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return err
			}
			n = json.Number(s)
		} else if err := json.Unmarshal(v, &n); err != nil {
			return err
		}
		f, err := n.Float64()
		if err != nil {
			return fmt.Errorf("%s bound: %w", rec.Type, err)
		}
		r.Bound = int(f)
	case RulePattern:
		if err := json.Unmarshal(v, &r.Pattern); err != nil {
			return fmt.Errorf("pattern value: %w", err)
		}
	}
	return nil
}

func cloneRules(in []ValidationRule) []ValidationRule {
	if in == nil {
		return nil
	}
	return append([]ValidationRule(nil), in...)
}
