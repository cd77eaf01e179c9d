package services

import (
	"net/mail"
	"strings"
)

// GuardianPatch lists the guardian fields an update may touch. Nil fields
// are left alone; Clear* flags set the nullable column to NULL.
type GuardianPatch struct {
	Name       *string
	Email      *string
	Phone      *string
	ClearPhone bool
}

type ClassPatch struct {
	Name          *string
	GuardianID    *uint
	ClearGuardian bool
}

type ChildPatch struct {
	Name           *string
	Age            *int
	DiagnosisID    *uint
	ClearDiagnosis bool
	ClassID        *uint
	ClearClass     bool
}

type DiagnosisPatch struct {
	Type             *string
	Description      *string
	ClearDescription bool
}

type ActivityPatch struct {
	Category         *string
	Title            *string
	ClearTitle       bool
	Description      *string
	ClearDescription bool
	Difficulty       *int
}

// patchedRef resolves a nullable reference under a patch: clear wins, then a
// new value, otherwise the current one.
func patchedRef(current, next *uint, clear bool) *uint {
	switch {
	case clear:
		return nil
	case next != nil:
		v := *next
		return &v
	default:
		return current
	}
}

func patchedText(current, next *string, clear bool) *string {
	switch {
	case clear:
		return nil
	case next != nil:
		return cleanText(next)
	default:
		return current
	}
}

func requiredText(op, field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", ValidationError(op, field+" is required")
	}
	return v, nil
}

func normalizeEmail(op, raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ValidationError(op, "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ValidationError(op, "email is invalid")
	}
	return email, nil
}
