package upload

import "io"

// limitReader fails with errTooLarge as soon as more than limit bytes are
// read from r, and remembers the first real read error from r.
type limitReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
	err       error
}

func newLimitReader(r io.Reader, limit int64) *limitReader {
	return &limitReader{r: r, remaining: limit}
}

func (l *limitReader) Read(p []byte) (int, error) {
	if l.exceeded {
		return 0, errTooLarge
	}
	if l.remaining <= 0 {
		// At the limit: one more byte means the file is too large.
		var extra [1]byte
		n, err := l.r.Read(extra[:])
		if n > 0 {
			l.exceeded = true
			return 0, errTooLarge
		}
		return 0, l.record(err)
	}

	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	return n, l.record(err)
}

func (l *limitReader) record(err error) error {
	if err != nil && err != io.EOF && l.err == nil {
		l.err = err
	}
	return err
}
