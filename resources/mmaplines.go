package resources

import (
	"bytes"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
	"os"
)

// mmapLines memory-maps path and calls fn once per line, with trailing "\r"
// and "\n" stripped. Gazetteer and word-cluster tables are shipped as plain
// line-oriented .txt files that can be large enough (hundreds of thousands
// of tokens) that mapping them avoids a full heap copy before parsing.
func mmapLines(path string, fn func(line []byte)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening %q", path)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, "statting %q", path)
	}
	if info.Size() == 0 {
		return nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return errors.Wrapf(err, "mmapping %q", path)
	}
	defer func() { _ = m.Unmap() }()

	data := []byte(m)
	for len(data) > 0 {
		idx := bytes.IndexByte(data, '\n')
		var line []byte
		if idx < 0 {
			line = data
			data = nil
		} else {
			line = data[:idx]
			data = data[idx+1:]
		}
		line = bytes.TrimSuffix(line, []byte{'\r'})
		if len(line) == 0 {
			continue
		}
		fn(line)
	}
	return nil
}
