// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// 確率モデルの数値計算（ワーピング変換、エネルギー評価、グリッド探索）で発生する
// エラーを構造化された形で表現します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("SciGP-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// GridGrowthWarningなどのカスタム警告の処理方法を制御できます。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが利用可能な場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	// zerologが設定されている場合は優先的に使用
	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	// フォールバック: 従来のハンドラ
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	探索・最適化の警告型
//
// ===========================================================================

// GridGrowthWarning はハイパーパラメータグリッドが指数的に大きくなった場合に
// 発生する警告です。グリッド点数は gridSize^(キー数) で増加します。
type GridGrowthWarning struct {
	Hyperparameters int
	GridSize        int
	TotalPoints     int
}

func (w *GridGrowthWarning) Error() string {
	return fmt.Sprintf("grid search over %d hyperparameters with grid size %d yields %d configurations. Consider prior-guided sampling instead.",
		w.Hyperparameters, w.GridSize, w.TotalPoints)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *GridGrowthWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("hyperparameters", w.Hyperparameters).
		Int("grid_size", w.GridSize).
		Int("total_points", w.TotalPoints).
		Str("type", "GridGrowthWarning")
}

// NewGridGrowthWarning は新しいGridGrowthWarningを作成します。
func NewGridGrowthWarning(hyperparameters, gridSize, totalPoints int) *GridGrowthWarning {
	return &GridGrowthWarning{Hyperparameters: hyperparameters, GridSize: gridSize, TotalPoints: totalPoints}
}

// PriorCoverageWarning は事前分布が一部のハイパーパラメータしかカバーしていない
// 場合に発生する警告です。この場合、探索はグリッドモードにフォールバックします
// （寛容なデフォルト動作であり、エラーではありません）。
type PriorCoverageWarning struct {
	MissingKeys []string
}

func (w *PriorCoverageWarning) Error() string {
	return fmt.Sprintf("prior does not cover hyperparameters %v; falling back to grid search", w.MissingKeys)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *PriorCoverageWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Strs("missing_keys", w.MissingKeys).
		Str("type", "PriorCoverageWarning")
}

// NewPriorCoverageWarning は新しいPriorCoverageWarningを作成します。
func NewPriorCoverageWarning(missingKeys []string) *PriorCoverageWarning {
	return &PriorCoverageWarning{MissingKeys: missingKeys}
}

// EvaluationFailedWarning はランドスケープ上の1点のエネルギー評価が失敗し、
// その点が+Infの番兵値として記録された場合に発生する警告です。
// 失敗点を落とすとグリッドの形が変わるため、必ず番兵値で記録されます。
type EvaluationFailedWarning struct {
	Configuration map[string]float64
	Cause         error
}

func (w *EvaluationFailedWarning) Error() string {
	return fmt.Sprintf("energy evaluation failed for configuration %v, recorded as +Inf: %v", w.Configuration, w.Cause)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *EvaluationFailedWarning) MarshalZerologObject(e *zerolog.Event) {
	d := zerolog.Dict()
	for k, v := range w.Configuration {
		d.Float64(k, v)
	}
	e.Dict("configuration", d).
		AnErr("cause", w.Cause).
		Str("type", "EvaluationFailedWarning")
}

// NewEvaluationFailedWarning は新しいEvaluationFailedWarningを作成します。
func NewEvaluationFailedWarning(config map[string]float64, cause error) *EvaluationFailedWarning {
	return &EvaluationFailedWarning{Configuration: config, Cause: cause}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// DomainError は可逆写像の逆変換が定義域外の値に適用された場合のエラーです。
// 例えば、対数ワープを非正のラベルに適用した場合など。
type DomainError struct {
	Op    string
	Value float64
	Map   string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("scigp: %s: value %g is outside the invertible domain of map %q", e.Op, e.Value, e.Map)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DomainError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Float64("value", e.Value).
		Str("map", e.Map).
		Str("type", "DomainError")
}

// NewDomainError は新しいDomainErrorを作成し、スタックトレースを付与します。
func NewDomainError(op string, value float64, mapName string) error {
	err := &DomainError{Op: op, Value: value, Map: mapName}
	return errors.WithStack(err)
}

// DegenerateJacobianError はヤコビ行列式が非正となり密度が定義できない場合の
// エラーです。単調増加なワープでは行列式は常に正でなければなりません。
type DegenerateJacobianError struct {
	Op          string
	Determinant float64
	Block       int
}

func (e *DegenerateJacobianError) Error() string {
	return fmt.Sprintf("scigp: %s: Jacobian determinant %g in block %d is not strictly positive; density is undefined", e.Op, e.Determinant, e.Block)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DegenerateJacobianError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Float64("determinant", e.Determinant).
		Int("block", e.Block).
		Str("type", "DegenerateJacobianError")
}

// NewDegenerateJacobianError は新しいDegenerateJacobianErrorを作成します。
func NewDegenerateJacobianError(op string, determinant float64, block int) error {
	err := &DegenerateJacobianError{Op: op, Determinant: determinant, Block: block}
	return errors.WithStack(err)
}

// GridScaleError は対数スケールのグリッド生成が非正のアンカー値に対して
// 要求された場合のエラーです。NaNの設定値を黙って返す代わりに即座に失敗します。
type GridScaleError struct {
	Key   string
	Value float64
}

func (e *GridScaleError) Error() string {
	return fmt.Sprintf("scigp: logarithmic grid scale is undefined for hyperparameter %q with non-positive value %g", e.Key, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *GridScaleError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("key", e.Key).
		Float64("value", e.Value).
		Str("type", "GridScaleError")
}

// NewGridScaleError は新しいGridScaleErrorを作成します。
func NewGridScaleError(key string, value float64) error {
	err := &GridScaleError{Key: key, Value: value}
	return errors.WithStack(err)
}

// DimensionError はブロック分割ベクトル・行列の次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for blocks, 1 for entries within a block
}

func (e *DimensionError) Error() string {
	axisName := "entries"
	if e.Axis == 0 {
		axisName = "blocks"
	}
	return fmt.Sprintf("scigp: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "entries"
	if e.Axis == 0 {
		axisName = "blocks"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// NotFittedError はプロセスが未学習の状態で予測やEnergyを呼び出した場合のエラーです。
type NotFittedError struct {
	ProcessName string
	Method      string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("scigp: %s: this process is not fitted yet. Call Fit() before using %s()", e.ProcessName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("process_name", e.ProcessName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(processName, method string) error {
	err := &NotFittedError{ProcessName: processName, Method: method}
	return errors.WithStack(err)
}

// ValueError は引数の値が不正な場合の汎用エラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("scigp: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors のラッパー
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}
