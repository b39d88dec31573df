package database

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"modernc.org/sqlite"
)

var (
	collationsMu sync.Mutex
	collations   = make(map[string]bool)
)

// registerCollation installs a Unicode collation for lang on the sqlite
// driver and returns its name. Only connections opened afterwards see it.
func registerCollation(lang language.Tag) (string, error) {
	if lang == language.Und {
		lang = language.Japanese
	}
	name := "content_" + strings.ReplaceAll(strings.ToLower(lang.String()), "-", "_")

	collationsMu.Lock()
	defer collationsMu.Unlock()

	if collations[name] {
		return name, nil
	}

	// A Collator keeps internal buffers and is not safe for concurrent use.
	var mu sync.Mutex
	collator := collate.New(lang)
	compare := func(left, right string) int {
		mu.Lock()
		defer mu.Unlock()
		return collator.CompareString(left, right)
	}

	if err := sqlite.RegisterCollationUtf8(name, compare); err != nil {
		return "", fmt.Errorf("failed to register collation %s: %w", name, err)
	}
	collations[name] = true

	return name, nil
}
