package resource

import (
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nexusshell/nexusshell/internal/core/shellerr"
	"github.com/nexusshell/nexusshell/internal/logger"
)

// entry is the type-erased resource record. The resource itself is
// stored as `any`; Get[T] downcasts against typeName and fails closed on
// mismatch rather than panicking.
type entry struct {
	resource any
	typeName string
	info     Info
}

// Table is a concurrent, accounted, typed resource registry shared by
// all plugins in a host. The entries map and the memory tracker use
// independent locks (§5): a callback invocation never holds both.
type Table struct {
	mu      sync.RWMutex
	entries map[string]*entry
	perType map[Type]int

	limits Limits
	mem    *memoryTracker

	callbackMu sync.Mutex
	onCreated  []func(Info)
	onAccessed []func(Info)
	onCleanup  []func(Info)
}

// NewTable creates an empty table enforcing limits.
func NewTable(limits Limits) *Table {
	return &Table{
		entries: make(map[string]*entry),
		perType: make(map[Type]int),
		limits:  limits,
		mem:     newMemoryTracker(),
	}
}

// OnCreated registers a callback invoked after a resource is added.
func (t *Table) OnCreated(fn func(Info)) {
	t.callbackMu.Lock()
	defer t.callbackMu.Unlock()
	t.onCreated = append(t.onCreated, fn)
}

// OnAccessed registers a callback invoked after a successful Get.
func (t *Table) OnAccessed(fn func(Info)) {
	t.callbackMu.Lock()
	defer t.callbackMu.Unlock()
	t.onAccessed = append(t.onAccessed, fn)
}

// OnCleanup registers a callback invoked after a resource is removed.
func (t *Table) OnCleanup(fn func(Info)) {
	t.callbackMu.Lock()
	defer t.callbackMu.Unlock()
	t.onCleanup = append(t.onCleanup, fn)
}

// fire invokes every registered callback in fns with info, logging and
// continuing past any callback that panics rather than aborting the
// calling operation (§4.C: "a failing callback logs but does not abort").
func fire(fns []func(Info), info Info) {
	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("resource table callback panicked",
						logger.ResourceID(info.ID), logger.Err(asError(r)))
				}
			}()
			fn(info)
		}()
	}
}

func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return shellerr.New(shellerr.KindBug, "panic: %v", r)
}

// Add registers resource under a fresh UUID, enforcing the table's total
// byte, per-plugin byte, total count, and per-type count limits. It
// returns ResourceExhausted if any limit would be exceeded.
func Add[T any](t *Table, resource T, rtype Type, pluginID string, bytes int64) (string, *shellerr.ShellError) {
	t.mu.Lock()

	if t.limits.MaxResources > 0 && len(t.entries) >= t.limits.MaxResources {
		t.mu.Unlock()
		return "", shellerr.New(shellerr.KindResourceExhausted, "total resource count limit reached (%d)", t.limits.MaxResources)
	}

	maxPerType := t.limits.maxForType(rtype)
	if maxPerType > 0 && t.perType[rtype] >= maxPerType {
		t.mu.Unlock()
		return "", shellerr.New(shellerr.KindResourceExhausted, "resource type %q count limit reached (%d)", rtype, maxPerType)
	}

	if t.limits.MaxTotalBytes > 0 && t.mem.totalAcrossPlugins()+bytes > t.limits.MaxTotalBytes {
		t.mu.Unlock()
		return "", shellerr.New(shellerr.KindResourceExhausted, "total byte limit exceeded (%d)", t.limits.MaxTotalBytes)
	}

	if t.limits.MaxBytesPerPlugin > 0 && t.mem.perPluginBytes(pluginID)+bytes > t.limits.MaxBytesPerPlugin {
		t.mu.Unlock()
		return "", shellerr.New(shellerr.KindResourceExhausted, "per-plugin byte limit exceeded for %q (%d)", pluginID, t.limits.MaxBytesPerPlugin)
	}

	id := uuid.NewString()
	now := time.Now()
	info := Info{
		ID:           id,
		Type:         rtype,
		CreatedAt:    now,
		LastAccessed: now,
		AccessCount:  0,
		Bytes:        bytes,
		PluginID:     pluginID,
		State:        StateActive,
	}

	t.entries[id] = &entry{
		resource: resource,
		typeName: reflect.TypeOf(resource).String(),
		info:     info,
	}
	t.perType[rtype]++
	t.mu.Unlock()

	t.mem.record(pluginID, bytes)

	fire(t.onCreated, info)

	return id, nil
}

// Get retrieves the resource stored under id, failing closed (returning
// false) if no entry exists or if its dynamic type doesn't match T.
func Get[T any](t *Table, id string) (T, bool) {
	var zero T

	t.mu.Lock()
	e, ok := t.entries[id]
	if !ok {
		t.mu.Unlock()
		return zero, false
	}

	wantType := reflect.TypeOf(zero).String()
	if e.typeName != wantType {
		t.mu.Unlock()
		return zero, false
	}

	typed, ok := e.resource.(T)
	if !ok {
		t.mu.Unlock()
		return zero, false
	}

	e.info.LastAccessed = time.Now()
	e.info.AccessCount++
	info := e.info
	t.mu.Unlock()

	fire(t.onAccessed, info)

	return typed, true
}

// Info returns a snapshot of the accounting record for id.
func (t *Table) Info(id string) (Info, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[id]
	if !ok {
		return Info{}, false
	}
	return e.info, true
}

// Remove deletes the resource, decrements accounting, and fires cleanup
// callbacks. It returns whether a resource was actually removed.
func (t *Table) Remove(id string) bool {
	t.mu.Lock()
	e, ok := t.entries[id]
	if !ok {
		t.mu.Unlock()
		return false
	}
	e.info.State = StateCleaning
	delete(t.entries, id)
	t.perType[e.info.Type]--
	info := e.info
	info.State = StateCleaned
	t.mu.Unlock()

	t.mem.release(info.PluginID, info.Bytes)

	fire(t.onCleanup, info)
	return true
}

// CleanupIdle removes every Active/Idle resource whose last access is
// older than maxIdle, returning the number removed.
func (t *Table) CleanupIdle(maxIdle time.Duration) int {
	t.mu.Lock()
	now := time.Now()
	var toRemove []string
	for id, e := range t.entries {
		if e.info.State != StateActive && e.info.State != StateIdle {
			continue
		}
		if now.Sub(e.info.LastAccessed) > maxIdle {
			toRemove = append(toRemove, id)
		}
	}
	t.mu.Unlock()

	for _, id := range toRemove {
		t.Remove(id)
	}
	return len(toRemove)
}

// CleanupPlugin force-removes every resource owned by pluginID.
func (t *Table) CleanupPlugin(pluginID string) int {
	t.mu.Lock()
	var toRemove []string
	for id, e := range t.entries {
		if e.info.PluginID == pluginID {
			toRemove = append(toRemove, id)
		}
	}
	t.mu.Unlock()

	for _, id := range toRemove {
		t.Remove(id)
	}
	t.mem.forgetPlugin(pluginID)
	return len(toRemove)
}

// MemoryInfo reports accounting totals for pluginID.
func (t *Table) MemoryInfo(pluginID string) MemoryInfo {
	return t.mem.info(pluginID)
}

// MarkGC records the current time as the last garbage-collection pass,
// surfaced through MemoryInfo.LastGC.
func (t *Table) MarkGC() {
	t.mem.markGC(time.Now())
}

// Len returns the current number of tracked resources.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
