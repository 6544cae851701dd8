package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
)

type walker interface {
	Walk(ctx context.Context, startPath string, fn fs.WalkDirFunc) error
}

// fastWalker walks depth first with an explicit stack, visiting entries in
// lexical order. With recursive unset only the direct children of the start
// directory are visited.
type fastWalker struct {
	recursive bool
}

func (w fastWalker) Walk(ctx context.Context, startPath string, fn fs.WalkDirFunc) error {
	info, err := os.Stat(startPath)
	if err != nil {
		return fn(startPath, nil, err)
	}
	root := fs.FileInfoToDirEntry(info)
	type item struct {
		path  string
		entry fs.DirEntry
		depth int
	}
	stack := []item{{path: startPath, entry: root}}
	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := fn(current.path, current.entry, nil); err != nil {
			if err == fs.SkipDir {
				continue
			}
			return err
		}
		if !current.entry.IsDir() {
			continue
		}
		if current.depth > 0 && !w.recursive {
			continue
		}

		entries, err := os.ReadDir(current.path)
		if err != nil {
			if ferr := fn(current.path, current.entry, err); ferr != nil && ferr != fs.SkipDir {
				return ferr
			}
			continue
		}
		for i := len(entries) - 1; i >= 0; i-- {
			child := entries[i]
			stack = append(stack, item{
				path:  filepath.Join(current.path, child.Name()),
				entry: child,
				depth: current.depth + 1,
			})
		}
	}
	return nil
}
