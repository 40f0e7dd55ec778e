package memory_test

import (
	"github.com/navwar/navsim/internal/storage"
	"github.com/navwar/navsim/internal/storage/memory"
)

// Compile-time interface checks. These live in an external test package
// because internal/storage imports memory, so importing storage from an
// in-package test would create an import cycle.
var (
	_ storage.Backend    = (*memory.Backend)(nil)
	_ storage.Uploadable = (*memory.Backend)(nil)
)
