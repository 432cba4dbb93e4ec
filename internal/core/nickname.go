package core

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	apperrors "github.com/handlevet/handlevet/internal/errors"
)

// Nickname length bounds, inclusive.
const (
	MinNicknameLength = 3
	MaxNicknameLength = 36
)

// ReservedNicknames are never claimable regardless of store contents.
// Config may extend this list but never shrink it.
var ReservedNicknames = []string{
	"about",
	"account",
	"admin",
	"administrator",
	"api",
	"help",
	"home",
	"login",
	"logout",
	"me",
	"mod",
	"moderator",
	"null",
	"official",
	"privacy",
	"profile",
	"profiles",
	"root",
	"settings",
	"signup",
	"staff",
	"support",
	"system",
	"terms",
	"undefined",
	"www",
}

// ErrReserved is the rule-six failure. Callers that surface reserved
// nicknames as taken rather than malformed match on it with errors.Is.
var ErrReserved = apperrors.New(apperrors.KindValidation, "this nickname is reserved")

var (
	nicknameCharset    = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	consecutiveSymbols = regexp.MustCompile(`[-_]{2}`)
)

// Normalize returns the canonical form of a nickname: trimmed and
// lowercased. Every key, comparison, and store lookup uses this form.
// Normalize is idempotent.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidateNickname applies the nickname rules in a fixed order and returns
// the first failure as a validation error, or nil. The rule order is part
// of the contract: length before charset, charset before shape, reserved
// words last. The reserved check runs against the canonical form and the
// union of the built-in list and extraReserved.
func ValidateNickname(name string, extraReserved []string) error {
	name = strings.TrimSpace(name)

	if utf8.RuneCountInString(name) < MinNicknameLength {
		return apperrors.Newf(apperrors.KindValidation,
			"nickname must be at least %d characters", MinNicknameLength)
	}
	if utf8.RuneCountInString(name) > MaxNicknameLength {
		return apperrors.Newf(apperrors.KindValidation,
			"nickname must be at most %d characters", MaxNicknameLength)
	}
	if !nicknameCharset.MatchString(name) {
		return apperrors.New(apperrors.KindValidation,
			"nickname may only contain letters, numbers, hyphens, and underscores")
	}
	if isSymbolByte(name[0]) || isSymbolByte(name[len(name)-1]) {
		return apperrors.New(apperrors.KindValidation,
			"nickname must start and end with a letter or number")
	}
	if consecutiveSymbols.MatchString(name) {
		return apperrors.New(apperrors.KindValidation,
			"nickname cannot contain consecutive hyphens or underscores")
	}
	if IsReserved(name, extraReserved) {
		return ErrReserved
	}

	return nil
}

// IsReserved reports whether the canonical form of name is reserved,
// considering both the built-in list and extraReserved.
func IsReserved(name string, extraReserved []string) bool {
	canonical := Normalize(name)
	for _, word := range ReservedNicknames {
		if canonical == word {
			return true
		}
	}
	for _, word := range extraReserved {
		if canonical == Normalize(word) {
			return true
		}
	}
	return false
}

// EffectiveReserved returns the sorted union of built-in and configured
// reserved words, canonicalized and deduplicated.
func EffectiveReserved(extraReserved []string) []string {
	seen := make(map[string]struct{}, len(ReservedNicknames)+len(extraReserved))
	for _, word := range ReservedNicknames {
		seen[word] = struct{}{}
	}
	for _, word := range extraReserved {
		canonical := Normalize(word)
		if canonical == "" {
			continue
		}
		seen[canonical] = struct{}{}
	}

	words := make([]string, 0, len(seen))
	for word := range seen {
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}

func isSymbolByte(b byte) bool {
	return b == '-' || b == '_'
}

// CacheKey builds the availability cache key for a nickname checked in the
// context of a caller's current nickname. Both parts are canonicalized so
// casing never splits entries.
func CacheKey(nickname, current string) string {
	return fmt.Sprintf("%s|%s", Normalize(nickname), Normalize(current))
}
