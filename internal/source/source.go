// Package source loads rule documents and C sources from disk, validates
// them, and decodes them into normalised text for the evaluation engine.
// Load failures are reported as *FileError and never as violations.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxSize is the default upper bound on file size in bytes.
const DefaultMaxSize int64 = 10_000_000

// Kind identifies what a loaded file is used for.
type Kind string

const (
	KindPrimaryRules   Kind = "primary-rules"
	KindSecondaryRules Kind = "secondary-rules"
	KindSource         Kind = "source"
)

// extension returns the required lowercase extension for k.
func (k Kind) extension() string {
	if k == KindSource {
		return ".c"
	}
	return ".txt"
}

// ErrorKind classifies a load failure.
type ErrorKind string

const (
	ErrAccessDenied     ErrorKind = "access_denied"
	ErrReadFailed       ErrorKind = "read_failed"
	ErrEmptyFile        ErrorKind = "empty_file"
	ErrInvalidExtension ErrorKind = "invalid_extension"
	ErrFileTooLarge     ErrorKind = "file_too_large"
	ErrEncoding         ErrorKind = "encoding"
)

// FileError is a labeled load failure, distinct from a rule violation.
type FileError struct {
	Path string
	Kind ErrorKind
	Err  error
}

func (e *FileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("source: %s: %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("source: %s: %s", e.Path, e.Kind)
}

func (e *FileError) Unwrap() error { return e.Err }

// File is a validated, decoded input file.
type File struct {
	Path     string
	Name     string
	Kind     Kind
	Encoding string
	Size     int64
	Content  string
}

// Options tunes Load.
type Options struct {
	// MaxSize is the largest accepted file in bytes; <= 0 means DefaultMaxSize.
	MaxSize int64
}

// Load reads, validates and decodes the file at path.
func Load(path string, kind Kind, opts Options) (*File, error) {
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext != kind.extension() {
		return nil, &FileError{
			Path: path,
			Kind: ErrInvalidExtension,
			Err:  fmt.Errorf("%s files must use %s, got %q", kind, kind.extension(), ext),
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, statError(path, err)
	}
	if info.Size() > maxSize {
		return nil, &FileError{
			Path: path,
			Kind: ErrFileTooLarge,
			Err:  fmt.Errorf("%d bytes exceeds limit of %d", info.Size(), maxSize),
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, statError(path, err)
	}

	text, enc, err := Decode(raw)
	if err != nil {
		return nil, &FileError{Path: path, Kind: ErrEncoding, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &FileError{Path: path, Kind: ErrEmptyFile}
	}

	return &File{
		Path:     path,
		Name:     filepath.Base(path),
		Kind:     kind,
		Encoding: enc,
		Size:     info.Size(),
		Content:  text,
	}, nil
}

func statError(path string, err error) error {
	if errors.Is(err, os.ErrPermission) {
		return &FileError{Path: path, Kind: ErrAccessDenied, Err: err}
	}
	return &FileError{Path: path, Kind: ErrReadFailed, Err: err}
}

// candidates are tried in order after UTF-8 has been ruled out. EUC-JP goes
// first: its byte ranges also decode as half-width katakana under Shift_JIS,
// while Shift_JIS lead bytes are invalid in EUC-JP. ISO-2022-JP is 7-bit, so
// it is only attempted when the input contains ESC.
var candidates = []struct {
	name string
	enc  encoding.Encoding
}{
	{"euc-jp", japanese.EUCJP},
	{"shift_jis", japanese.ShiftJIS},
}

// Decode converts raw bytes to NFC-normalised UTF-8 text and reports the
// detected encoding: utf-8 (with or without BOM), iso-2022-jp, shift_jis or
// euc-jp.
func Decode(raw []byte) (text, encodingName string, err error) {
	if bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) {
		out, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), raw)
		if err != nil {
			return "", "", fmt.Errorf("decode utf-8 bom: %w", err)
		}
		return norm.NFC.String(string(out)), "utf-8", nil
	}
	if bytes.IndexByte(raw, 0x1B) >= 0 {
		if out, ok := tryDecode(japanese.ISO2022JP, raw); ok {
			return norm.NFC.String(out), "iso-2022-jp", nil
		}
	}
	if utf8.Valid(raw) {
		return norm.NFC.String(string(raw)), "utf-8", nil
	}
	for _, c := range candidates {
		if out, ok := tryDecode(c.enc, raw); ok {
			return norm.NFC.String(out), c.name, nil
		}
	}
	return "", "", errors.New("unsupported character encoding")
}

// tryDecode decodes raw with enc and rejects results containing the
// replacement character, which the x/text decoders emit for invalid input.
func tryDecode(enc encoding.Encoding, raw []byte) (string, bool) {
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(out) || bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}
