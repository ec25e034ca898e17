package memory

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/srodi/freezer/pkg/types"
)

var (
	// ErrCounterNotFound is returned when meminfo has no line for the requested counter.
	ErrCounterNotFound = errors.New("counter not found")
	// ErrMalformedCounter is returned when a counter value is not "<integer> kB".
	ErrMalformedCounter = errors.New("malformed counter")
)

const kibibyte = 1024

// Counter names used for the freeze decision.
const (
	MemTotal = "MemTotal"
	MemFree  = "MemFree"
	Buffers  = "Buffers"
	Cached   = "Cached"
)

// Reader reads system-wide counters from a meminfo file.
// Every call re-reads the file; nothing is cached between calls.
type Reader struct {
	path string
}

// NewReader returns a Reader for <procRoot>/meminfo.
func NewReader(procRoot string) *Reader {
	if procRoot == "" {
		procRoot = types.DefaultProcRoot
	}
	return &Reader{path: filepath.Join(procRoot, "meminfo")}
}

// Path returns the meminfo file the reader consults.
func (r *Reader) Path() string {
	return r.path
}

// PageSize returns the system page size in bytes.
func (r *Reader) PageSize() uint64 {
	return PageSize()
}

// ReadCounter returns the named counter in bytes. The name may carry the trailing colon.
func (r *Reader) ReadCounter(name string) (uint64, error) {
	name = strings.TrimSuffix(name, ":")
	values, err := r.readCounters(name)
	if err != nil {
		return 0, err
	}
	return values[name], nil
}

// TotalBytes returns MemTotal in bytes and rejects a zero total.
func (r *Reader) TotalBytes() (uint64, error) {
	total, err := r.ReadCounter(MemTotal)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, fmt.Errorf("%s in %s is zero: %w", MemTotal, r.path, ErrMalformedCounter)
	}
	return total, nil
}

// ReadStats reads every counter the freeze policy needs in a single pass over meminfo.
func (r *Reader) ReadStats() (types.MemoryStats, error) {
	values, err := r.readCounters(MemTotal, MemFree, Buffers, Cached)
	if err != nil {
		return types.MemoryStats{}, err
	}
	if values[MemTotal] == 0 {
		return types.MemoryStats{}, fmt.Errorf("%s in %s is zero: %w", MemTotal, r.path, ErrMalformedCounter)
	}
	ps := PageSize()
	if ps == 0 {
		return types.MemoryStats{}, fmt.Errorf("page size is zero: %w", ErrMalformedCounter)
	}
	return types.MemoryStats{
		TotalBytes:   values[MemTotal],
		FreeBytes:    values[MemFree],
		BuffersBytes: values[Buffers],
		CachedBytes:  values[Cached],
		PageSize:     ps,
	}, nil
}

func (r *Reader) readCounters(names ...string) (map[string]uint64, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", r.path, err)
	}
	defer f.Close()

	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}
	values := make(map[string]uint64, len(names))

	scanner := bufio.NewScanner(f)
	for scanner.Scan() && len(values) < len(wanted) {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		key := strings.TrimSuffix(fields[0], ":")
		if _, ok := wanted[key]; !ok || key == fields[0] {
			continue
		}
		if _, dup := values[key]; dup {
			continue
		}
		v, err := parseKibibytes(fields[1:])
		if err != nil {
			return nil, fmt.Errorf("%s in %s: %w", key, r.path, err)
		}
		values[key] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.path, err)
	}

	for _, name := range names {
		if _, ok := values[name]; !ok {
			return nil, fmt.Errorf("%s in %s: %w", name, r.path, ErrCounterNotFound)
		}
	}
	return values, nil
}

// parseKibibytes converts the value fields of a meminfo line ("12345", "kB") into bytes.
func parseKibibytes(fields []string) (uint64, error) {
	if len(fields) != 2 {
		return 0, fmt.Errorf("expected \"<value> kB\", got %q: %w", strings.Join(fields, " "), ErrMalformedCounter)
	}
	if fields[1] != "kB" {
		return 0, fmt.Errorf("unexpected unit %q: %w", fields[1], ErrMalformedCounter)
	}
	kb, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", fields[0], ErrMalformedCounter)
	}
	if kb > math.MaxUint64/kibibyte {
		return 0, fmt.Errorf("value %d kB overflows: %w", kb, ErrMalformedCounter)
	}
	return kb * kibibyte, nil
}
