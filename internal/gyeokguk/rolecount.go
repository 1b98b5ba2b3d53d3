// Package gyeokguk holds the fixed vocabulary of gyeokguk outcome judgments and
// derives the number of role slots a judgment must specify from its code.
package gyeokguk

import (
	"strings"
	"unicode/utf8"
)

// JoiningMarker is stripped from a code before its length is measured.
const JoiningMarker = "합"

// MaxRoleSlots is the number of named role slots (first..fourth) a judgment can carry.
const MaxRoleSlots = 4

// SlotKeys are the wire names of the role slots in ordinal order.
var SlotKeys = [MaxRoleSlots]string{"first", "second", "third", "fourth"}

// RoleCount returns ceil(len/2) of the code with every joining marker removed,
// bounded to [0, MaxRoleSlots]. Length is counted in characters, not bytes.
func RoleCount(code string) int {
	stripped := strings.ReplaceAll(code, JoiningMarker, "")
	n := utf8.RuneCountInString(stripped)
	count := (n + 1) / 2
	if count > MaxRoleSlots {
		// TODO: confirm with product whether codes longer than eight characters should open more slots.
		return MaxRoleSlots
	}
	return count
}

// SlotLabel renders the 1-based display label of slot index i ("1차".."4차").
func SlotLabel(i int) string {
	switch i {
	case 0:
		return "1차"
	case 1:
		return "2차"
	case 2:
		return "3차"
	case 3:
		return "4차"
	default:
		return ""
	}
}

// SlotIndex resolves a wire slot key to its ordinal index.
func SlotIndex(key string) (int, bool) {
	for i, k := range SlotKeys {
		if k == key {
			return i, true
		}
	}
	return 0, false
}
