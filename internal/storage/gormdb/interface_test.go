package gormdb_test

import (
	"github.com/navwar/navsim/internal/storage"
	"github.com/navwar/navsim/internal/storage/gormdb"
)

// Compile-time interface check. This lives in an external test package
// because internal/storage imports gormdb, so importing storage from an
// in-package test would create an import cycle.
var _ storage.Backend = (*gormdb.Backend)(nil)
