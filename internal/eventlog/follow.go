package eventlog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"batchrvt/pkg/logging"
)

// followPollInterval is the fallback re-read interval for file systems that
// do not deliver change notifications.
const followPollInterval = time.Second

// follower reads complete lines appended to a file since the last read.
type follower struct {
	path    string
	offset  int64
	partial string
}

// readNew calls emit for every complete line appended since the last call.
// A file that shrank is read again from the start.
func (f *follower) readNew(emit func(line string)) error {
	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < f.offset {
		f.offset = 0
		f.partial = ""
	}
	if info.Size() == f.offset {
		return nil
	}
	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return err
	}

	br := bufio.NewReader(file)
	for {
		chunk, err := br.ReadString('\n')
		f.offset += int64(len(chunk))
		if strings.HasSuffix(chunk, "\n") {
			emit(strings.TrimRight(f.partial+chunk, "\r\n"))
			f.partial = ""
		} else {
			f.partial += chunk
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Follow projects lines already in the log file at path and then every line
// appended to it, until ctx is done. The file does not need to exist yet.
func Follow(ctx context.Context, path string, useUTC bool, fn func(line string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	f := &follower{path: path}
	emit := func(line string) { fn(ProjectLine(line, useUTC)) }
	if err := f.readNew(emit); err != nil {
		return err
	}

	ticker := time.NewTicker(followPollInterval)
	defer ticker.Stop()

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if err := f.readNew(emit); err != nil {
					return err
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("EventLog", "File watcher error for %s: %v", path, err)
		case <-ticker.C:
			if err := f.readNew(emit); err != nil {
				return err
			}
		}
	}
}
