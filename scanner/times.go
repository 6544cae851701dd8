package scanner

import (
	"io/fs"
	"time"

	"github.com/djherbis/times"
)

// statFile returns size and modification time. Failures yield zero values;
// the record is still produced.
func statFile(path string, d fs.DirEntry) (int64, time.Time) {
	var size int64
	var mod time.Time
	if d != nil {
		if info, err := d.Info(); err == nil {
			size = info.Size()
			mod = info.ModTime()
		}
	}
	if ts, err := times.Stat(path); err == nil {
		mod = ts.ModTime()
	}
	return size, mod
}
