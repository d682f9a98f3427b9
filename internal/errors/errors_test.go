// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestUserError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *UserError
		want string
	}{
		{
			name: "with underlying error",
			err:  &UserError{Message: "Cannot open database", Err: fmt.Errorf("file locked")},
			want: "Cannot open database: file locked",
		},
		{
			name: "without underlying error",
			err:  &UserError{Message: "Invalid input"},
			want: "Invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserError_Unwrap(t *testing.T) {
	underlying := fmt.Errorf("underlying error")
	withErr := &UserError{Message: "test", Err: underlying}
	if withErr.Unwrap() != underlying {
		t.Error("Unwrap() should return the wrapped error")
	}

	withoutErr := &UserError{Message: "test"}
	if withoutErr.Unwrap() != nil {
		t.Error("Unwrap() should return nil when Err is unset")
	}
}

func TestExitCodes(t *testing.T) {
	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", ExitSuccess)
	}
	if ExitNotAVCS != 1 {
		t.Errorf("ExitNotAVCS = %d, want 1", ExitNotAVCS)
	}
	if ExitFatal != 2 {
		t.Errorf("ExitFatal = %d, want 2", ExitFatal)
	}
}

func TestConstructors(t *testing.T) {
	underlying := fmt.Errorf("underlying error")

	item := Item("parse failed", "syntax error", underlying)
	if item.Kind != KindItem || item.Err != underlying {
		t.Errorf("Item() = %+v", item)
	}

	phase := Phase("community detection failed", "panic recovered", underlying)
	if phase.Kind != KindPhase {
		t.Errorf("Phase() kind = %v, want KindPhase", phase.Kind)
	}

	notVCS := NotAVCS("/tmp/x", nil)
	if notVCS.Kind != KindFatal || notVCS.ExitCode != ExitNotAVCS {
		t.Errorf("NotAVCS() = %+v", notVCS)
	}

	fatal := Fatal("store init failed", "disk full", "free up space", underlying)
	if fatal.Kind != KindFatal || fatal.ExitCode != ExitFatal {
		t.Errorf("Fatal() = %+v", fatal)
	}
}

func TestErrorChain(t *testing.T) {
	sentinel := fmt.Errorf("sentinel error")
	wrapped := fmt.Errorf("wrapped: %w", sentinel)
	userErr := Fatal("store error", "cause", "fix", wrapped)

	if !errors.Is(userErr, sentinel) {
		t.Error("errors.Is should find sentinel error in chain")
	}

	var target *UserError
	if !errors.As(userErr, &target) {
		t.Fatal("errors.As should extract UserError")
	}
	if target.ExitCode != ExitFatal {
		t.Errorf("ExitCode = %d, want %d", target.ExitCode, ExitFatal)
	}
}

func TestUserError_Format(t *testing.T) {
	err := &UserError{
		Message: "Cannot open database",
		Cause:   "The database file is locked",
		Fix:     "Close other instances",
	}
	got := err.Format(true)
	for _, want := range []string{"Error: Cannot open database", "Cause: The database file is locked", "Fix:   Close other instances"} {
		if !strings.Contains(got, want) {
			t.Errorf("Format() missing %q, got %q", want, got)
		}
	}
}

func TestUserError_Format_NoColor(t *testing.T) {
	oldNoColor := os.Getenv("NO_COLOR")
	defer func() {
		if oldNoColor != "" {
			os.Setenv("NO_COLOR", oldNoColor)
		} else {
			os.Unsetenv("NO_COLOR")
		}
	}()

	os.Setenv("NO_COLOR", "1")
	err := &UserError{Message: "Test error"}
	output := err.Format(false)
	if strings.Contains(output, "\x1b[") {
		t.Error("Format() output contains ANSI codes despite NO_COLOR being set")
	}
}

func TestUserError_ToJSON(t *testing.T) {
	err := &UserError{Message: "Invalid configuration", Cause: "Missing field", Fix: "Run init", ExitCode: ExitFatal}
	got := err.ToJSON()
	if got.Error != "Invalid configuration" || got.Cause != "Missing field" || got.Fix != "Run init" || got.ExitCode != ExitFatal {
		t.Errorf("ToJSON() = %+v", got)
	}
}

func TestFatalError_NilDoesNothing(t *testing.T) {
	FatalError(nil, false) // should not panic or exit
}

func TestSummary(t *testing.T) {
	s := NewSummary(2)
	s.Warn("first")
	s.Warn("second")
	s.Warn("third")

	warnings, dropped := s.Warnings()
	if len(warnings) != 2 {
		t.Errorf("len(warnings) = %d, want 2", len(warnings))
	}
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}
