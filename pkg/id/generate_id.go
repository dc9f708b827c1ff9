package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// AppIDPrefix is the human-readable prefix of every application number.
const AppIDPrefix = "APP-"

// FirstAppSeq is the sequence used when no application exists yet.
const FirstAppSeq = 10001

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// NewAppID formats a sequence number as an application number, e.g. APP-10001.
func NewAppID(seq int) string {
	return fmt.Sprintf("%s%05d", AppIDPrefix, seq)
}

// ParseAppSeq extracts the sequence from an application number.
func ParseAppSeq(appID string) (int, bool) {
	if !strings.HasPrefix(appID, AppIDPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(appID, AppIDPrefix))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// NextAppID returns the application number following the highest one in appIDs.
func NextAppID(appIDs []string) string {
	next := FirstAppSeq
	for _, a := range appIDs {
		if n, ok := ParseAppSeq(a); ok && n >= next {
			next = n + 1
		}
	}
	return NewAppID(next)
}
