// Package sqlite provides a SQLite-backed implementation of memory.Driver for
// agents whose long-term memory must survive process restarts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/inwardlabs/psyche/pkg/memory"
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id          TEXT PRIMARY KEY,
	seq         INTEGER NOT NULL,
	ts          INTEGER NOT NULL,
	day         TEXT NOT NULL,
	speaker     TEXT NOT NULL,
	body        TEXT NOT NULL,
	tags        TEXT NOT NULL,
	importance  REAL NOT NULL,
	ttl_ns      INTEGER NOT NULL DEFAULT 0,
	provenance  TEXT NOT NULL DEFAULT '[]',
	decayed_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_day ON items(day);
CREATE TABLE IF NOT EXISTS item_tags (
	item_id TEXT NOT NULL,
	tag     TEXT NOT NULL,
	PRIMARY KEY (item_id, tag)
);
CREATE INDEX IF NOT EXISTS idx_item_tags_tag ON item_tags(tag);
CREATE TABLE IF NOT EXISTS merge_aliases (
	id       TEXT PRIMARY KEY,
	survivor TEXT NOT NULL
);
`

// Driver implements memory.Driver on SQLite via database/sql.
type Driver struct {
	db     *sql.DB
	params memory.Params
}

// NewDriver opens (or creates) the long-term memory database at dbPath.
// Use ":memory:" for an ephemeral database.
func NewDriver(dbPath string, params memory.Params) (*Driver, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Driver{db: db, params: params}, nil
}

// Promote stores an independent snapshot of the item, keeping the original
// insertion order on duplicate ids.
func (d *Driver) Promote(ctx context.Context, item memory.Item) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning promote: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	err = tx.QueryRowContext(ctx, "SELECT seq FROM items WHERE id = ?", item.ID).Scan(&seq)
	switch {
	case err == sql.ErrNoRows:
		if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) + 1 FROM items").Scan(&seq); err != nil {
			return fmt.Errorf("allocating sequence: %w", err)
		}
	case err != nil:
		return fmt.Errorf("looking up item: %w", err)
	}

	tags, err := json.Marshal(item.Tags)
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}
	provenance, err := json.Marshal(item.Provenance)
	if err != nil {
		return fmt.Errorf("encoding provenance: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO items (id, seq, ts, day, speaker, body, tags, importance, ttl_ns, provenance, decayed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ts = excluded.ts, day = excluded.day, speaker = excluded.speaker,
			body = excluded.body, tags = excluded.tags, importance = excluded.importance,
			ttl_ns = excluded.ttl_ns, provenance = excluded.provenance, decayed_at = excluded.decayed_at`,
		item.ID, seq, item.Timestamp.UnixNano(), memory.DayBucket(item.Timestamp),
		string(item.Speaker), item.Text, string(tags), item.Importance,
		int64(item.TTL), string(provenance), item.Timestamp.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("storing item: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM item_tags WHERE item_id = ?", item.ID); err != nil {
		return fmt.Errorf("clearing tag index: %w", err)
	}
	for _, tag := range item.Tags {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO item_tags (item_id, tag) VALUES (?, ?)", item.ID, tag); err != nil {
			return fmt.Errorf("indexing tag %q: %w", tag, err)
		}
	}

	return tx.Commit()
}

// Query returns non-retired items matching any of the given tags, ranked by
// importance desc, recency desc, insertion order.
func (d *Driver) Query(ctx context.Context, tags []string, limit int) ([]memory.Item, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(tags)), ",")
	args := make([]any, 0, len(tags)+1)
	for _, tag := range tags {
		args = append(args, tag)
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT i.id, i.ts, i.speaker, i.body, i.tags, i.importance, i.ttl_ns, i.provenance
		FROM items i
		JOIN item_tags t ON t.item_id = i.id
		WHERE t.tag IN (%s)
		  AND NOT EXISTS (SELECT 1 FROM item_tags r WHERE r.item_id = i.id AND r.tag = ?)
		ORDER BY i.importance DESC, i.ts DESC, i.seq ASC`, placeholders)
	args = append(args, memory.TagRetired)

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// DecayPass applies multiplicative importance decay inside a single
// transaction and tags newly sub-threshold items retired.
func (d *Driver) DecayPass(ctx context.Context, now time.Time) (int, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning decay pass: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, "SELECT id, importance, decayed_at, tags FROM items")
	if err != nil {
		return 0, fmt.Errorf("loading items: %w", err)
	}

	type update struct {
		id         string
		importance float64
		tags       []string
		retire     bool
	}
	var updates []update

	for rows.Next() {
		var (
			id         string
			importance float64
			decayedAt  int64
			rawTags    string
		)
		if err := rows.Scan(&id, &importance, &decayedAt, &rawTags); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning item: %w", err)
		}

		elapsed := now.Sub(time.Unix(0, decayedAt))
		if elapsed <= 0 {
			continue
		}

		var tags []string
		if err := json.Unmarshal([]byte(rawTags), &tags); err != nil {
			rows.Close()
			return 0, fmt.Errorf("decoding tags for %s: %w", id, err)
		}

		units := elapsed.Seconds() / d.params.DecayUnit.Seconds()
		decayed := importance * math.Pow(d.params.DecayFactor, units)

		u := update{id: id, importance: decayed, tags: tags}
		if decayed < d.params.RetirementThreshold && !contains(tags, memory.TagRetired) {
			u.retire = true
			u.tags = append(u.tags, memory.TagRetired)
		}
		updates = append(updates, u)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("iterating items: %w", err)
	}
	rows.Close()

	retired := 0
	nowNS := now.UnixNano()
	for _, u := range updates {
		tags, err := json.Marshal(u.tags)
		if err != nil {
			return 0, fmt.Errorf("encoding tags: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE items SET importance = ?, decayed_at = ?, tags = ? WHERE id = ?",
			u.importance, nowNS, string(tags), u.id); err != nil {
			return 0, fmt.Errorf("updating item %s: %w", u.id, err)
		}
		if u.retire {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO item_tags (item_id, tag) VALUES (?, ?)",
				u.id, memory.TagRetired); err != nil {
				return 0, fmt.Errorf("retiring item %s: %w", u.id, err)
			}
			retired++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing decay pass: %w", err)
	}
	return retired, nil
}

// Reconcile merges near-duplicate items per memory.PlanMerges inside a single
// transaction. Merged ids remain resolvable through the merge_aliases table.
func (d *Driver) Reconcile(ctx context.Context) (int, error) {
	items, err := d.All(ctx)
	if err != nil {
		return 0, err
	}

	plan := memory.PlanMerges(items, d.params.MergeThreshold)
	if len(plan) == 0 {
		return 0, nil
	}

	byID := make(map[string]memory.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning reconcile: %w", err)
	}
	defer tx.Rollback()

	merged := 0
	for _, m := range plan {
		survivor := byID[m.SurvivorID]
		for _, id := range m.MergedIDs {
			gone := byID[id]
			survivor.Provenance = append(survivor.Provenance, id)
			survivor.Provenance = append(survivor.Provenance, gone.Provenance...)

			if _, err := tx.ExecContext(ctx,
				"INSERT OR REPLACE INTO merge_aliases (id, survivor) VALUES (?, ?)",
				id, survivor.ID); err != nil {
				return 0, fmt.Errorf("recording alias %s: %w", id, err)
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM item_tags WHERE item_id = ?", id); err != nil {
				return 0, fmt.Errorf("unindexing %s: %w", id, err)
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id); err != nil {
				return 0, fmt.Errorf("deleting %s: %w", id, err)
			}
			merged++
		}

		provenance, err := json.Marshal(survivor.Provenance)
		if err != nil {
			return 0, fmt.Errorf("encoding provenance: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE items SET provenance = ? WHERE id = ?", string(provenance), survivor.ID); err != nil {
			return 0, fmt.Errorf("updating survivor %s: %w", survivor.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing reconcile: %w", err)
	}
	return merged, nil
}

// Resolve returns the item for an id, following merge aliases.
func (d *Driver) Resolve(ctx context.Context, id string) (memory.Item, error) {
	for {
		row := d.db.QueryRowContext(ctx, `
			SELECT id, ts, speaker, body, tags, importance, ttl_ns, provenance
			FROM items WHERE id = ?`, id)
		item, err := scanItem(row)
		if err == nil {
			return item, nil
		}
		if err != sql.ErrNoRows {
			return memory.Item{}, fmt.Errorf("resolving %s: %w", id, err)
		}

		var survivor string
		err = d.db.QueryRowContext(ctx,
			"SELECT survivor FROM merge_aliases WHERE id = ?", id).Scan(&survivor)
		if err == sql.ErrNoRows {
			return memory.Item{}, memory.NotFoundError{ID: id}
		}
		if err != nil {
			return memory.Item{}, fmt.Errorf("resolving alias %s: %w", id, err)
		}
		id = survivor
	}
}

// All returns every stored item in insertion order, retired included.
func (d *Driver) All(ctx context.Context) ([]memory.Item, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, ts, speaker, body, tags, importance, ttl_ns, provenance
		FROM items ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// Len returns the number of stored items.
func (d *Driver) Len(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	return d.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (memory.Item, error) {
	var (
		item       memory.Item
		ts, ttl    int64
		speaker    string
		tags, prov string
	)
	if err := row.Scan(&item.ID, &ts, &speaker, &item.Text, &tags, &item.Importance, &ttl, &prov); err != nil {
		return memory.Item{}, err
	}
	item.Timestamp = time.Unix(0, ts).UTC()
	item.Speaker = memory.Speaker(speaker)
	item.TTL = time.Duration(ttl)
	if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
		return memory.Item{}, fmt.Errorf("decoding tags: %w", err)
	}
	if err := json.Unmarshal([]byte(prov), &item.Provenance); err != nil {
		return memory.Item{}, fmt.Errorf("decoding provenance: %w", err)
	}
	return item, nil
}

func scanItems(rows *sql.Rows) ([]memory.Item, error) {
	var items []memory.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

var _ memory.Driver = (*Driver)(nil)
