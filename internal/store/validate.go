package store

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Column limits of the table schema, in characters.
const (
	MaxNamespaceLen = 50
	MaxKeyLen       = 100
	MaxValueLen     = 4000
)

// normalizeNamespace returns ns in NFC, or the fallback when ns is empty.
func normalizeNamespace(ns, fallback string) (string, error) {
	if ns == "" {
		ns = fallback
	}
	ns = norm.NFC.String(ns)
	if n := utf8.RuneCountInString(ns); n > MaxNamespaceLen {
		return "", &ValidationError{Field: "namespace", Reason: fmt.Sprintf("%d characters exceeds %d", n, MaxNamespaceLen)}
	}
	return ns, nil
}

// normalizeKey returns key in NFC. Visually identical keys built from
// different code point sequences address the same row.
func normalizeKey(key string) (string, error) {
	if key == "" {
		return "", &ValidationError{Field: "key", Reason: "must not be empty"}
	}
	key = norm.NFC.String(key)
	if n := utf8.RuneCountInString(key); n > MaxKeyLen {
		return "", &ValidationError{Field: "key", Reason: fmt.Sprintf("%d characters exceeds %d", n, MaxKeyLen)}
	}
	return key, nil
}

func checkValue(text string) error {
	if n := utf8.RuneCountInString(text); n > MaxValueLen {
		return &ValidationError{Field: "value", Reason: fmt.Sprintf("encoded to %d characters, exceeds %d", n, MaxValueLen)}
	}
	return nil
}
