package fs

import (
	"encoding/json"
	"fmt"
)

// Schema versions currently written by this backend. On load, older blobs
// are upgraded step-by-step; fields no migration step anticipates pass
// through unchanged (best-effort, not validated).
const (
	taskSchemaVersion      = 4
	blockSchemaVersion     = 1
	challengeSchemaVersion = 2
	gardenSchemaVersion    = 1
	childSchemaVersion     = 1
)

type migrationStep func(doc map[string]any)

// taskMigrations[v] upgrades a task blob from version v to v+1.
var taskMigrations = map[int]migrationStep{
	// v1 -> v2: backfill the kind discriminator on templates that predate
	// the standard/meal split.
	1: func(doc map[string]any) {
		forEachObject(doc, "templates", func(tpl map[string]any) {
			if _, ok := tpl["kind"]; !ok {
				tpl["kind"] = "standard"
			}
		})
	},
	// v2 -> v3: time-marker templates became informational (not completable)
	// instead of carrying a magic category alone.
	2: func(doc map[string]any) {
		forEachObject(doc, "templates", func(tpl map[string]any) {
			if tpl["category"] == "time-marker" {
				tpl["informational"] = true
			}
		})
	},
	// v3 -> v4: the nap_context field was renamed to care_context when the
	// legacy suggestion mapping was consolidated.
	3: func(doc map[string]any) {
		forEachObject(doc, "templates", func(tpl map[string]any) {
			if v, ok := tpl["nap_context"]; ok {
				if _, exists := tpl["care_context"]; !exists {
					tpl["care_context"] = v
				}
				delete(tpl, "nap_context")
			}
		})
	},
}

// challengeMigrations[v] upgrades a challenge blob from version v to v+1.
var challengeMigrations = map[int]migrationStep{
	// v1 -> v2: sequential seeding was introduced; older challenges seeded
	// all their tasks at once.
	1: func(doc map[string]any) {
		forEachObject(doc, "challenges", func(c map[string]any) {
			if _, ok := c["sequential"]; !ok {
				c["sequential"] = false
			}
		})
	},
}

func migrateTaskState(data []byte) ([]byte, error) {
	return runMigrations(data, taskSchemaVersion, taskMigrations)
}

func migrateChallengeState(data []byte) ([]byte, error) {
	return runMigrations(data, challengeSchemaVersion, challengeMigrations)
}

// runMigrations decodes the blob to a generic document, applies every step
// between the stored version and current, and re-encodes. A blob without a
// schema_version is treated as version 1.
func runMigrations(data []byte, current int, steps map[int]migrationStep) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}

	version := 1
	if v, ok := doc["schema_version"].(float64); ok && int(v) > 0 {
		version = int(v)
	}
	if version > current {
		return nil, fmt.Errorf("state version %d is newer than supported version %d", version, current)
	}

	for v := version; v < current; v++ {
		if step, ok := steps[v]; ok {
			step(doc)
		}
	}
	doc["schema_version"] = current

	return json.Marshal(doc)
}

// forEachObject visits every object value of the named map field.
func forEachObject(doc map[string]any, field string, visit func(map[string]any)) {
	entries, ok := doc[field].(map[string]any)
	if !ok {
		return
	}
	for _, v := range entries {
		if obj, ok := v.(map[string]any); ok {
			visit(obj)
		}
	}
}
