package stream

import (
	"io/fs"
	"time"
)

// Record is the stat structure reported for a stream. Streams have no
// device, inode, owner or timestamps, so everything except Size is zero and
// the block fields are -1.
type Record struct {
	Dev     int64
	Ino     int64
	Mode    int64
	Nlink   int64
	UID     int64
	GID     int64
	Rdev    int64
	Size    int64
	Atime   int64
	Mtime   int64
	Ctime   int64
	Blksize int64
	Blocks  int64
}

func newRecord(size int64) *Record {
	return &Record{
		Size:    size,
		Blksize: -1,
		Blocks:  -1,
	}
}

// fileInfo adapts a Record to fs.FileInfo.
type fileInfo struct {
	name string
	rec  *Record
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.rec.Size }
func (fi *fileInfo) Mode() fs.FileMode  { return fs.FileMode(fi.rec.Mode) }
func (fi *fileInfo) ModTime() time.Time { return time.Unix(fi.rec.Mtime, 0) }
func (fi *fileInfo) IsDir() bool        { return false }
func (fi *fileInfo) Sys() any           { return fi.rec }

var _ fs.FileInfo = (*fileInfo)(nil)
