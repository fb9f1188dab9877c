// Package runstore persists benchmark runs and their plan statistics.
package runstore

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
)

// Table names for run tracking.
const (
	runsTable      = "planbench_runs"
	planStatsTable = "planbench_plan_stats"
)

//go:embed migrations
var migrationsFS embed.FS

// StoreManager manages the RunStore instance.
type StoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	runs         contract.RunStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// GetRunStore returns the RunStore, or nil when tracking is not initialized.
func (mgr *StoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager. An empty backend disables run tracking.
func InitStores(backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		if backend == "" {
			return
		}
		store, err := NewRunStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize run store: %w", err)
			return
		}
		Manager.Lock()
		defer Manager.Unlock()
		Manager.runs = store
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.runs != nil {
			_ = Manager.runs.Close()
		}
	})
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	if backend == schema.MySQLBackend {
		return fmt.Sprintf("`%s`", name)
	}
	return fmt.Sprintf("\"%s\"", name)
}

// placeholders returns n bind parameters starting at position from.
func placeholders(backend schema.DatabaseBackend, from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = placeholder(backend, from+i)
	}
	return strings.Join(parts, ", ")
}

// placeholder returns the bind parameter at a 1-based position.
func placeholder(backend schema.DatabaseBackend, pos int) string {
	if backend == schema.PostgreSQLBackend {
		return fmt.Sprintf("$%d", pos)
	}
	return "?"
}

// migrationsDir returns the embedded migration directory of a backend.
func migrationsDir(backend schema.DatabaseBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "migrations/sqlite", nil
	case schema.MySQLBackend:
		return "migrations/mysql", nil
	case schema.PostgreSQLBackend:
		return "migrations/postgres", nil
	default:
		return "", fmt.Errorf("unsupported backend: %s", backend)
	}
}

// initStatements returns the statements of the initial migration of a backend.
func initStatements(backend schema.DatabaseBackend) ([]string, error) {
	dir, err := migrationsDir(backend)
	if err != nil {
		return nil, err
	}
	data, err := migrationsFS.ReadFile(dir + "/1_init.up.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read initial migration: %w", err)
	}
	var stmts []string
	for stmt := range strings.SplitSeq(string(data), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, nil
}
