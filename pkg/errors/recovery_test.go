package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestSafeExecute(t *testing.T) {
	tests := []struct {
		name      string
		fn        func() error
		wantErr   bool
		wantPanic bool
	}{
		{
			name:    "successful execution",
			fn:      func() error { return nil },
			wantErr: false,
		},
		{
			name:    "function returns error",
			fn:      func() error { return New("boom") },
			wantErr: true,
		},
		{
			name:      "function panics",
			fn:        func() error { panic("index out of range") },
			wantErr:   true,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SafeExecute("test_op", tt.fn)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SafeExecute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantPanic {
				var panicErr *PanicError
				if !As(err, &panicErr) {
					t.Fatalf("SafeExecute() error %v is not a PanicError", err)
				}
				if panicErr.Operation != "test_op" {
					t.Errorf("Operation = %q, want %q", panicErr.Operation, "test_op")
				}
				if panicErr.StackTrace == "" {
					t.Error("PanicError has no stack trace")
				}
			}
		})
	}
}

func TestRecoverWrapsExistingError(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err, "combined")
		err = New("original failure")
		panic("subsequent panic")
	}

	err := run()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "original failure") {
		t.Errorf("error %v does not mention the original failure", err)
	}
	if !strings.Contains(err.Error(), "subsequent panic") {
		t.Errorf("error %v does not mention the panic", err)
	}
}

func TestPanicErrorString(t *testing.T) {
	e := NewPanicError("det", fmt.Errorf("matrix is singular"))
	if !strings.Contains(e.String(), "Stack trace:") {
		t.Error("String() does not include the stack trace section")
	}
	if !strings.Contains(e.Error(), "det") {
		t.Errorf("Error() = %q, want the operation name included", e.Error())
	}
}
