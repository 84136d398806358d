package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// SnapshotSink is the durable destination for the container's serialized
// tree. The sink is a fast-path reload cache, not the source of truth for
// entities; a write failure must never fail the mutation that caused it.
type SnapshotSink interface {
	// Write replaces the stored snapshot.
	Write(data []byte) error
	// Read returns the stored snapshot, or (nil, nil) when none exists.
	Read() ([]byte, error)
}

// FileSnapshotSink stores the snapshot as one JSON file, written through a
// temp file and rename so a crash mid-write never corrupts the previous
// snapshot.
type FileSnapshotSink struct {
	Path string
}

// Write implements SnapshotSink.
func (f *FileSnapshotSink) Write(data []byte) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("snapshot temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("snapshot write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("snapshot close: %w", err)
	}
	if err := os.Rename(tmpName, f.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("snapshot rename: %w", err)
	}
	return nil
}

// Read implements SnapshotSink.
func (f *FileSnapshotSink) Read() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot read: %w", err)
	}
	return data, nil
}

// markDirty flags the tree as needing a snapshot and (re)arms the debounce
// timer. Mutations within the window coalesce into one write; a newer
// mutation supersedes the pending one (last-write-wins, no queue).
func (c *Container) markDirty() {
	if c.sink == nil {
		return
	}
	c.flushMu.Lock()
	defer c.flushMu.Unlock()
	c.dirty = true
	if c.timer == nil {
		c.timer = time.AfterFunc(c.debounce, func() {
			// Error already logged inside FlushNow; swallowed per contract.
			_ = c.FlushNow()
		})
	} else {
		c.timer.Reset(c.debounce)
	}
}

// FlushNow synchronously writes a snapshot if the tree is dirty, cancelling
// any pending debounced write. The error return exists for deterministic
// tests; mutation paths ignore it.
func (c *Container) FlushNow() error {
	if c.sink == nil {
		return nil
	}

	c.flushMu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	dirty := c.dirty
	c.dirty = false
	c.flushMu.Unlock()

	if !dirty {
		return nil
	}

	data, err := c.Snapshot()
	if err != nil {
		c.logger.Warn("snapshot serialization failed", zap.Error(err))
		return err
	}
	if err := c.sink.Write(data); err != nil {
		c.logger.Warn("snapshot write failed", zap.Error(err))
		return err
	}
	c.logger.Debug("snapshot written", zap.Int("bytes", len(data)))
	return nil
}

// Snapshot serializes the current tree.
func (c *Container) Snapshot() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, err := json.Marshal(c.tree)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// Load restores the tree from the sink's snapshot. A missing snapshot
// leaves the default tree in place. The restored tree is a fast-path cache;
// callers reconcile entity collections against the store with LoadEntities.
func (c *Container) Load() error {
	if c.sink == nil {
		return nil
	}
	data, err := c.sink.Read()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal snapshot: %w", err)
	}

	c.mu.Lock()
	c.tree = tree
	c.mu.Unlock()
	return nil
}

// Close flushes any pending snapshot and stops the debounce timer.
func (c *Container) Close() error {
	c.flushMu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.flushMu.Unlock()
	return c.FlushNow()
}
