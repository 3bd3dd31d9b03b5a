// Package httprange parses HTTP Range headers into inclusive byte spans.
//
// Only single-range headers are supported; a comma-separated multi-range
// header is handled by parsing its first segment. Players seeking through
// media send single ranges, so this covers the real traffic.
package httprange

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/errs"
)

const bytesPrefix = "bytes="

// Span is an inclusive byte range [Start, End].
type Span struct {
	Start uint64
	End   uint64
}

// Length returns the number of bytes covered by the span.
func (s Span) Length() uint64 {
	return s.End - s.Start + 1
}

// ContentRange renders the Content-Range header value for a 206 response.
func (s Span) ContentRange(totalSize uint64) string {
	return fmt.Sprintf("bytes %d-%d/%d", s.Start, s.End, totalSize)
}

// Parse turns a Range header into a span against totalSize. An empty header
// means the whole file. A missing or unparsable end defaults to the last
// byte. Spans that start beyond the file or end before they start fail with
// a RangeNotSatisfiable error.
func Parse(header string, totalSize uint64) (Span, error) {
	if header == "" {
		if totalSize == 0 {
			return Span{}, nil
		}
		return Span{Start: 0, End: totalSize - 1}, nil
	}

	if totalSize == 0 {
		return Span{}, errs.RangeNotSatisfiable("cannot satisfy range against empty file")
	}

	spec := strings.TrimPrefix(strings.TrimSpace(header), bytesPrefix)
	if spec == header {
		return Span{}, errs.RangeNotSatisfiable("unsupported range unit")
	}

	// Multi-range requests are answered with the first segment only.
	if idx := strings.IndexByte(spec, ','); idx >= 0 {
		spec = spec[:idx]
	}

	startStr, endStr, found := strings.Cut(strings.TrimSpace(spec), "-")
	if !found {
		return Span{}, errs.RangeNotSatisfiable("malformed range specifier")
	}

	start, err := strconv.ParseUint(strings.TrimSpace(startStr), 10, 64)
	if err != nil {
		return Span{}, errs.RangeNotSatisfiable("range start is required")
	}

	end := totalSize - 1
	if trimmed := strings.TrimSpace(endStr); trimmed != "" {
		if parsed, err := strconv.ParseUint(trimmed, 10, 64); err == nil {
			end = parsed
		}
	}

	if start > end || start >= totalSize {
		return Span{}, errs.RangeNotSatisfiable(
			fmt.Sprintf("range %d-%d not satisfiable against size %d", start, end, totalSize))
	}
	if end >= totalSize {
		end = totalSize - 1
	}

	return Span{Start: start, End: end}, nil
}
