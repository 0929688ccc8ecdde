package scanner

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

const sniffSize = 8 * 1024

// ErrBinary is returned by CountLines for files that look binary.
var ErrBinary = errors.New("binary content")

// CountLines returns the number of newline-delimited lines in the file at
// path. A final line without a trailing newline still counts; an empty file
// has zero lines. Files containing a NUL byte in their first 8 KiB are
// treated as binary and report ErrBinary.
func CountLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	return countLines(f)
}

func countLines(r io.Reader) (int, error) {
	br := bufio.NewReaderSize(r, 32*1024)

	head, err := br.Peek(sniffSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return 0, fmt.Errorf("failed to read: %w", err)
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return 0, ErrBinary
	}

	lines := 0
	read := 0
	var last byte
	buf := make([]byte, 32*1024)
	for {
		n, err := br.Read(buf)
		if n > 0 {
			lines += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
			read += n
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read: %w", err)
		}
	}

	if read > 0 && last != '\n' {
		lines++
	}
	return lines, nil
}
