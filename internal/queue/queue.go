// Package queue keeps the ordered list of images that n and p step through.
package queue

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/olivier-w/ynok/internal/media"
)

// ItemState records whether an image has been shown and whether it loaded.
type ItemState int

const (
	Ready ItemState = iota
	Current
	Failed
)

// Item is one image in the queue.
type Item struct {
	Title string
	Path  string
	State ItemState
}

// Queue is an ordered list of images with a cursor.
// It is only mutated from Bubbletea's single-threaded Update loop.
type Queue struct {
	items   []Item
	current int
}

// New creates a Queue from the given items.
func New(items []Item) *Queue {
	return &Queue{items: items}
}

// Siblings builds a queue from the supported images in path's directory,
// sorted case-insensitively, with the cursor on path. A directory holding
// only path yields a one-item queue.
func Siblings(path string) (*Queue, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(absPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if media.IsSupportedExt(strings.ToLower(filepath.Ext(e.Name()))) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if !containsPath(files, absPath) {
		files = append(files, absPath)
	}
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(filepath.Base(files[i])) < strings.ToLower(filepath.Base(files[j]))
	})

	items := make([]Item, len(files))
	start := 0
	for i, f := range files {
		items[i] = Item{Title: titleOf(f), Path: f}
		if f == absPath {
			start = i
		}
	}
	q := New(items)
	q.SetCurrentIndex(start)
	return q, nil
}

func containsPath(files []string, path string) bool {
	for _, f := range files {
		if f == path {
			return true
		}
	}
	return false
}

func titleOf(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// Current returns a pointer to the current item, or nil if empty.
func (q *Queue) Current() *Item {
	if q.current < 0 || q.current >= len(q.items) {
		return nil
	}
	return &q.items[q.current]
}

// Len returns the number of items.
func (q *Queue) Len() int {
	return len(q.items)
}

// CurrentIndex returns the zero-based index of the current item.
func (q *Queue) CurrentIndex() int {
	return q.current
}

// SetCurrentIndex moves the cursor and marks the item Current.
func (q *Queue) SetCurrentIndex(i int) {
	if i < 0 || i >= len(q.items) {
		return
	}
	if cur := q.Current(); cur != nil && cur.State == Current {
		cur.State = Ready
	}
	q.current = i
	q.items[i].State = Current
}

// Item returns a pointer to the item at i, or nil if out of range.
func (q *Queue) Item(i int) *Item {
	if i < 0 || i >= len(q.items) {
		return nil
	}
	return &q.items[i]
}

// MarkFailed flags the item at i so stepping skips it.
func (q *Queue) MarkFailed(i int) {
	if i >= 0 && i < len(q.items) {
		q.items[i].State = Failed
	}
}

// Step returns the index of the nearest non-failed item dir steps away
// (+1 next, -1 previous), wrapping around. It returns -1 when no other
// item is available. The cursor does not move.
func (q *Queue) Step(dir int) int {
	n := len(q.items)
	if n < 2 || dir == 0 {
		return -1
	}
	if dir > 0 {
		dir = 1
	} else {
		dir = -1
	}
	for k := 1; k < n; k++ {
		i := ((q.current+dir*k)%n + n) % n
		if q.items[i].State != Failed {
			return i
		}
	}
	return -1
}
