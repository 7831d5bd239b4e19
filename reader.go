package logsink

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// maxLineSize bounds a single line read back from the store
const maxLineSize = 1 << 20

// Reader gives read-only access to a log file. It takes no lock, so a read
// racing a rotation may see the renamed file or the fresh empty one.
type Reader struct {
	path   string
	notice io.Writer
}

// Filter selects lines by severity and time range.
// Empty Levels matches every severity; a zero From or To leaves that end open.
type Filter struct {
	Levels []Severity
	From   time.Time
	To     time.Time
}

// Archive describes one rotated backup file
type Archive struct {
	Path    string    `json:"path"`
	Index   int       `json:"index"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// NewReader creates a reader for the log file at path.
// Notices such as a missing file go to stderr.
func NewReader(path string) *Reader {
	return &Reader{path: path, notice: os.Stderr}
}

// WithNotice redirects informational notices
func (r *Reader) WithNotice(w io.Writer) *Reader {
	r.notice = w
	return r
}

// Path returns the file the reader reads
func (r *Reader) Path() string {
	return r.path
}

// Exists reports whether the log file is present
func (r *Reader) Exists() bool {
	_, err := os.Stat(r.path)
	return err == nil
}

// ReadAll returns every line of the file in order.
// A missing file is an empty result, not an error.
func (r *Reader) ReadAll() ([]string, error) {
	return r.scan(func(string) bool { return true })
}

// ReadFiltered returns the lines whose severity tag is one of levels.
// No levels means all lines.
func (r *Reader) ReadFiltered(levels ...Severity) ([]string, error) {
	return r.Read(Filter{Levels: levels})
}

// ReadByTime returns the lines stamped within [from, to], both inclusive.
// Lines without a parseable timestamp are skipped.
func (r *Reader) ReadByTime(from, to time.Time) ([]string, error) {
	return r.Read(Filter{From: from, To: to})
}

// Read returns the lines matching f, in file order
func (r *Reader) Read(f Filter) ([]string, error) {
	if f.isEmpty() {
		return r.ReadAll()
	}
	return r.scan(func(line string) bool {
		rec, err := ParseRecord(line)
		if err != nil {
			return false
		}
		return f.Match(rec)
	})
}

// Records returns the parsed records matching f; unparseable lines are skipped
func (r *Reader) Records(f Filter) ([]Record, error) {
	var records []Record
	_, err := r.scan(func(line string) bool {
		rec, err := ParseRecord(line)
		if err == nil && f.Match(rec) {
			records = append(records, rec)
		}
		return false
	})
	return records, err
}

// Archives lists the rotated backups of the file, ordered by index
func (r *Reader) Archives() ([]Archive, error) {
	dir := filepath.Dir(r.path)
	base := filepath.Base(r.path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = defaultArchiveExt
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmtErrorf("failed to read log directory '%s': %w", dir, err)
	}

	var archives []Archive
	prefix := stem + "_"
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		index, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext))
		if err != nil || index < 1 {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		archives = append(archives, Archive{
			Path:    filepath.Join(dir, name),
			Index:   index,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	slices.SortFunc(archives, func(a, b Archive) int { return a.Index - b.Index })
	return archives, nil
}

// Match reports whether rec passes the filter
func (f Filter) Match(rec Record) bool {
	if len(f.Levels) > 0 && !slices.Contains(f.Levels, rec.Severity) {
		return false
	}
	if !f.From.IsZero() && rec.Time.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && rec.Time.After(f.To) {
		return false
	}
	return true
}

func (f Filter) isEmpty() bool {
	return len(f.Levels) == 0 && f.From.IsZero() && f.To.IsZero()
}

// scan reads the file line by line, keeping lines for which keep returns true
func (r *Reader) scan(keep func(line string) bool) ([]string, error) {
	file, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			internalLog(r.notice, "log file '%s' not found", r.path)
			return []string{}, nil
		}
		return nil, fmtErrorf("failed to open log file '%s': %w", r.path, err)
	}
	defer file.Close()

	lines := []string{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		if keep(line) {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return lines, fmtErrorf("failed to read log file '%s': %w", r.path, err)
	}
	return lines, nil
}
