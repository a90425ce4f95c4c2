// Package export writes check artifacts (report, annotated source, corrected
// source, assignment templates) to disk under timestamped names.
package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileType identifies the artifact being exported.
type FileType string

const (
	TypeReport    FileType = "report"
	TypeCorrected FileType = "corrected"
	TypeSource    FileType = "source"
	TypeRules     FileType = "rules"
)

// timestampLayout is yyyyMMdd_HHmmss.
const timestampLayout = "20060102_150405"

// File is one artifact ready to be written.
type File struct {
	ID        string
	Name      string
	Type      FileType
	Data      []byte
	CreatedAt time.Time
}

// MIMEType returns the content type for the artifact.
func (f File) MIMEType() string {
	switch f.Type {
	case TypeCorrected, TypeSource:
		return "text/x-c"
	default:
		return "text/plain"
	}
}

// Now is the clock used for timestamps; tests replace it.
var Now = time.Now

var unsafeName = regexp.MustCompile(`[<>:"/\\|?*\s]+`)

// SanitizeName replaces characters that are unsafe in file names.
func SanitizeName(name string) string {
	return unsafeName.ReplaceAllString(name, "_")
}

// FileName builds "<base>_yyyyMMdd_HHmmss.<ext>".
func FileName(base, ext string, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeName(base), at.Format(timestampLayout), strings.TrimPrefix(ext, "."))
}

// New builds an export file stamped with the current time.
func New(base, ext string, typ FileType, content string) File {
	at := Now()
	return File{
		ID:        uuid.NewString(),
		Name:      FileName(base, ext, at),
		Type:      typ,
		Data:      []byte(content),
		CreatedAt: at,
	}
}

// Report builds the plain-text report artifact for a source file.
func Report(sourceName, reportContent string) File {
	return New(stem(sourceName)+"_report", "txt", TypeReport, reportContent)
}

// Corrected builds the annotated or auto-corrected C source artifact.
func Corrected(sourceName, code string) File {
	return New(stem(sourceName)+"_corrected", "c", TypeCorrected, code)
}

// Template builds an assignment template artifact. Template names are not
// timestamped.
func Template(label, content string) File {
	return File{
		ID:        uuid.NewString(),
		Name:      SanitizeName(label) + ".c",
		Type:      TypeSource,
		Data:      []byte(content),
		CreatedAt: Now(),
	}
}

// stem drops the extension but keeps any directory part, so "sub1/main.c"
// and "sub2/main.c" sanitize to different names.
func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// maxSuffix bounds the "_N" retries in Write.
const maxSuffix = 1000

// Write stores f in dir, creating dir if needed, and returns the full path.
// An existing file is never overwritten: when f.Name is taken, "_2", "_3", ...
// is inserted before the extension until a free name is found.
func Write(dir string, f File) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: mkdir %s: %w", dir, err)
	}
	ext := filepath.Ext(f.Name)
	base := strings.TrimSuffix(f.Name, ext)
	for n := 1; n <= maxSuffix; n++ {
		name := f.Name
		if n > 1 {
			name = fmt.Sprintf("%s_%d%s", base, n, ext)
		}
		path := filepath.Join(dir, name)
		err := writeNew(path, f.Data)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("export: write %s: %w", path, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("export: write %s: no free name after %d attempts", filepath.Join(dir, f.Name), maxSuffix)
}

// writeNew creates path exclusively and writes data to it.
func writeNew(path string, data []byte) error {
	fh, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := fh.Write(data); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}
