package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestNewDomainError(t *testing.T) {
	err := NewDomainError("Warp", -2.5, "log")

	// 基本的なエラーメッセージの確認
	want := `scigp: Warp: value -2.5 is outside the invertible domain of map "log"`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	// スタックトレースの存在確認
	formatted := fmt.Sprintf("%+v", err)
	if !strings.Contains(formatted, "errors_test.go") {
		t.Error("Expected stack trace to contain test file name")
	}

	// DomainError型にキャスト可能か確認
	var domErr *DomainError
	if !As(err, &domErr) {
		t.Error("Error should be castable to *DomainError")
	}
	if domErr.Value != -2.5 {
		t.Errorf("Value = %v, want -2.5", domErr.Value)
	}
}

func TestNewDegenerateJacobianError(t *testing.T) {
	tests := []struct {
		name        string
		op          string
		determinant float64
		block       int
		wantSubstr  string
	}{
		{
			name:        "zero determinant",
			op:          "Energy",
			determinant: 0,
			block:       2,
			wantSubstr:  "determinant 0 in block 2",
		},
		{
			name:        "negative determinant",
			op:          "Energy",
			determinant: -0.5,
			block:       0,
			wantSubstr:  "determinant -0.5 in block 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDegenerateJacobianError(tt.op, tt.determinant, tt.block)
			if !strings.Contains(err.Error(), tt.wantSubstr) {
				t.Errorf("Error() = %v, want substring %v", err.Error(), tt.wantSubstr)
			}

			var degErr *DegenerateJacobianError
			if !As(err, &degErr) {
				t.Error("Error should be castable to *DegenerateJacobianError")
			}
		})
	}
}

func TestNewGridScaleError(t *testing.T) {
	err := NewGridScaleError("lengthscale", -1.0)

	want := `scigp: logarithmic grid scale is undefined for hyperparameter "lengthscale" with non-positive value -1`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var gridErr *GridScaleError
	if !As(err, &gridErr) {
		t.Error("Error should be castable to *GridScaleError")
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("PartitionedVector", 4, 3, 0)

	// 基本的なエラーメッセージの確認
	want := "scigp: PartitionedVector: dimension mismatch on axis 0 (blocks). Expected 4, got 3"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	// DimensionError型にキャスト可能か確認
	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestWarningHandler(t *testing.T) {
	var captured error
	SetWarningHandler(func(w error) {
		captured = w
	})
	defer SetWarningHandler(nil)

	warning := NewGridGrowthWarning(5, 10, 100000)
	Warn(warning)

	if captured == nil {
		t.Fatal("Warning handler was not invoked")
	}
	if !strings.Contains(captured.Error(), "100000 configurations") {
		t.Errorf("Warning message = %v, want configuration count", captured.Error())
	}
}

func TestCheckNumericalStability(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		wantErr bool
	}{
		{
			name:    "finite values",
			values:  []float64{1.0, -2.5, 0.0},
			wantErr: false,
		},
		{
			name:    "contains NaN",
			values:  []float64{1.0, math.NaN()},
			wantErr: true,
		},
		{
			name:    "contains Inf",
			values:  []float64{math.Inf(1), 0.0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckNumericalStability("test", tt.values)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckNumericalStability() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckInvertible(t *testing.T) {
	if err := CheckInvertible("Warp", 2.0, math.Log(2.0), "log"); err != nil {
		t.Errorf("CheckInvertible() unexpected error for valid value: %v", err)
	}

	err := CheckInvertible("Warp", -1.0, math.Log(-1.0), "log")
	if err == nil {
		t.Fatal("CheckInvertible() expected error for NaN inverse image")
	}
	var domErr *DomainError
	if !As(err, &domErr) {
		t.Error("Error should be castable to *DomainError")
	}
}
