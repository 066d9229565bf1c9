package logger

import "sync"

// named holds component loggers registered by name. Init clears it, so
// loggers derived from a replaced global logger are never served.
var named struct {
	sync.RWMutex
	m map[string]*Logger
}

// Register stores a named logger, replacing any previous one.
func Register(name string, l *Logger) {
	named.Lock()
	defer named.Unlock()
	if named.m == nil {
		named.m = make(map[string]*Logger)
	}
	named.m[name] = l
}

// Get returns the logger registered under name, or the global logger tagged
// with name as its component.
func Get(name string) *Logger {
	named.RLock()
	l, ok := named.m[name]
	named.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// RegisterDefaults registers a component logger derived from the current
// global logger for each name.
func RegisterDefaults(names ...string) {
	for _, name := range names {
		Register(name, GetGlobalLogger().WithComponent(name))
	}
}

func resetRegistry() {
	named.Lock()
	named.m = nil
	named.Unlock()
}
