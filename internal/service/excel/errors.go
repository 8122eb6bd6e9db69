package excel

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 文件或工作表不存在
	ErrNotFound = errors.New("file or sheet not found")
	// ErrEmptyFile 文件为空
	ErrEmptyFile = errors.New("file is empty")
	// ErrMalformedInput 文件无法解码或解析
	ErrMalformedInput = errors.New("malformed input")
	// ErrUnsupportedFormat 不支持的扩展名
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// LoadError 加载失败的上下文
type LoadError struct {
	Path  string
	Sheet string
	Op    string
	Err   error
}

func (e *LoadError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("%s %s [%s]: %v", e.Op, e.Path, e.Sheet, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func newLoadError(op, path, sheet string, err error) *LoadError {
	return &LoadError{Path: path, Sheet: sheet, Op: op, Err: err}
}

// IsNoData 不存在或为空：调用方应降级为“无数据”而不是报错
func IsNoData(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrEmptyFile)
}

// malformed 包装底层解析错误，保留 ErrMalformedInput 判定
func malformed(op, path string, cause error) error {
	return newLoadError(op, path, "", fmt.Errorf("%w: %v", ErrMalformedInput, cause))
}
