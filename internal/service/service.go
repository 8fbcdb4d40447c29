// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package service implements the content rules on top of the stores:
// input validation, authorization, slug derivation and uniqueness,
// pagination and the view counter. Handlers call these services with the
// principal resolved for the request; a nil principal is anonymous.
package service

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// clock returns the current time in UTC. Services hold one so tests can
// pin timestamps.
type clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// runeLen counts characters, not bytes.
func runeLen(s string) int { return utf8.RuneCountInString(s) }

// normalizeEmail trims and lower-cases an address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail reports whether email is a bare address such as a@b.co.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}

// normalizeTags trims tags, drops empties and removes duplicates while
// keeping the first occurrence's position.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
