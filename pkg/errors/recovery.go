package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError は回復されたパニックから生成されたエラーです。
// gonumの行列演算は次元不一致でパニックするため、探索ループはこの型を通じて
// パニックを通常のエラーとして扱います。
type PanicError struct {
	// PanicValue はpanic()に渡された元の値
	PanicValue interface{}

	// StackTrace はパニック発生時点のスタックトレース
	StackTrace string

	// Operation はパニックが回復された場所
	Operation string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("scigp: panic in %s: %v", e.Operation, e.PanicValue)
}

// String はスタックトレースを含む詳細情報を返します。
func (e *PanicError) String() string {
	return fmt.Sprintf("scigp: panic in %s: %v\nStack trace:\n%s",
		e.Operation, e.PanicValue, e.StackTrace)
}

// NewPanicError は新しいPanicErrorを作成します。
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
	}
}

// Recover はdeferとともに使い、パニックをエラーに変換します。
//
//	func SomeMethod() (err error) {
//	    defer errors.Recover(&err, "SomeMethod")
//	    ...
//	}
func Recover(err *error, operation string) {
	if r := recover(); r != nil {
		panicErr := NewPanicError(operation, r)
		if *err != nil {
			*err = fmt.Errorf("panic in %s: %v (original error: %w)", operation, r, *err)
		} else {
			*err = panicErr
		}
	}
}

// SafeExecute は関数を実行し、パニックをエラーに変換して返します。
// エネルギー評価など、パニックしうる数値計算のラップに使います。
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
