//go:build debug

// Package debug provides a centralized, categorized debug logging system.
// Build with -tags debug to enable logging.
package debug

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// Enabled indicates whether debug logging is active
const Enabled = true

// Category represents a debug logging category
type Category string

const (
	EXPLORER Category = "EXPLORER" // State container, refresh scheduling, notifications
	FS       Category = "FS"       // Directory service reads and mutations
	WATCH    Category = "WATCH"    // fsnotify events and watch-set changes
	STORE    Category = "STORE"    // Session persistence
	TRASH    Category = "TRASH"    // Trash operations

	// FS_ENTRY logs individual entry processing and is very verbose
	FS_ENTRY Category = "FS_ENTRY"
)

var (
	// enabledCategories controls which categories are active
	enabledCategories = map[Category]bool{
		EXPLORER: true,
		FS:       true,
		WATCH:    true,
		STORE:    true,
		TRASH:    true,
		// Verbose categories disabled by default
		FS_ENTRY: false,
	}
	categoryMu sync.RWMutex

	logger = log.New(os.Stderr, "", log.Ltime|log.Lmicroseconds)
)

func init() {
	// Category overrides: ARBOR_DEBUG=EXPLORER,FS or ARBOR_DEBUG=all / none
	if env := os.Getenv("ARBOR_DEBUG"); env != "" {
		categoryMu.Lock()
		defer categoryMu.Unlock()

		env = strings.ToUpper(env)
		switch env {
		case "ALL":
			for cat := range enabledCategories {
				enabledCategories[cat] = true
			}
		case "NONE":
			for cat := range enabledCategories {
				enabledCategories[cat] = false
			}
		default:
			for cat := range enabledCategories {
				enabledCategories[cat] = false
			}
			for _, cat := range strings.Split(env, ",") {
				enabledCategories[Category(strings.TrimSpace(cat))] = true
			}
		}
	}
}

// Log logs a debug message for the specified category
func Log(cat Category, format string, args ...interface{}) {
	categoryMu.RLock()
	enabled := enabledCategories[cat]
	categoryMu.RUnlock()

	if !enabled {
		return
	}

	msg := fmt.Sprintf(format, args...)
	logger.Printf("[%s] %s", cat, msg)
}

// Enable enables a debug category
func Enable(cat Category) {
	categoryMu.Lock()
	enabledCategories[cat] = true
	categoryMu.Unlock()
}

// Disable disables a debug category
func Disable(cat Category) {
	categoryMu.Lock()
	enabledCategories[cat] = false
	categoryMu.Unlock()
}

// IsEnabled returns whether a category is enabled
func IsEnabled(cat Category) bool {
	categoryMu.RLock()
	defer categoryMu.RUnlock()
	return enabledCategories[cat]
}
