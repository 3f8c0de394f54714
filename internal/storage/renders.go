/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"svgdraw/internal/decimal"
	applog "svgdraw/internal/log"
)

// Key identifies a rendered output: the SHA-256 of the scene source, the requested canvas and
// the output format. A zero width or height stands for "use the scene's canvas".
func Key(scene []byte, width, height decimal.Decimal, format string) string {
	h := sha256.New()
	h.Write(scene)
	for _, part := range []string{width.String(), height.String(), strings.ToLower(format)} {
		h.Write([]byte{0})
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the stored blob for key and marks it as recently used. A miss returns nil, nil.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	db, err := c.conn()
	if err != nil {
		return nil, err
	}
	var blob []byte
	err = db.QueryRowContext(ctx, `SELECT blob FROM renders WHERE key=?`, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query render: %w", err)
	}
	// touch
	_, _ = db.ExecContext(ctx, `UPDATE renders SET last_access=?, hits=hits+1 WHERE key=?`, c.now().UnixNano(), key)
	return blob, nil
}

// Put upserts blob under key and then evicts least-recently-used entries until the cache fits
// its cap. An empty blob is not stored.
func (c *Cache) Put(ctx context.Context, key, format string, blob []byte) error {
	if len(blob) == 0 {
		return nil
	}
	db, err := c.conn()
	if err != nil {
		return err
	}
	now := c.now()
	_, err = db.ExecContext(ctx, `INSERT INTO renders(key,format,blob,size,created_at,last_access,hits)
		VALUES(?,?,?,?,?,?,0)
		ON CONFLICT(key) DO UPDATE SET format=excluded.format, blob=excluded.blob, size=excluded.size, last_access=excluded.last_access`,
		key, strings.ToLower(format), blob, len(blob), now.UTC().Format(time.RFC3339), now.UnixNano())
	if err != nil {
		return fmt.Errorf("upsert render: %w", err)
	}
	if c.maxBytes > 0 {
		if _, err := c.Evict(ctx, c.maxBytes); err != nil {
			return err
		}
	}
	return nil
}

// GetOrCreate returns the cached blob for key, or calls gen, stores its result and returns it.
// A nil result from gen is returned without being stored.
func (c *Cache) GetOrCreate(ctx context.Context, key, format string, gen func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := c.Get(ctx, key); err != nil {
		return nil, err
	} else if b != nil {
		return b, nil
	}
	if gen == nil {
		return nil, nil
	}
	data, err := gen(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	if err := c.Put(ctx, key, format, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Evict deletes least-recently-used rows until the total size is at most capBytes and returns
// the number of rows removed.
func (c *Cache) Evict(ctx context.Context, capBytes int64) (int, error) {
	db, err := c.conn()
	if err != nil {
		return 0, err
	}
	total, err := c.TotalBytes(ctx)
	if err != nil {
		return 0, err
	}
	if total <= capBytes {
		return 0, nil
	}
	rows, err := db.QueryContext(ctx, `SELECT key, size FROM renders ORDER BY last_access ASC, created_at ASC`)
	if err != nil {
		return 0, fmt.Errorf("select victims: %w", err)
	}
	victims := make([]any, 0, 32)
	cur := total
	for rows.Next() {
		var key string
		var sz int64
		if err := rows.Scan(&key, &sz); err != nil {
			_ = rows.Close()
			return 0, err
		}
		victims = append(victims, key)
		cur -= sz
		if cur <= capBytes {
			break
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return 0, err
	}
	// Close the cursor before writing; the pool holds a single connection.
	if err := rows.Close(); err != nil {
		return 0, err
	}
	if len(victims) == 0 {
		return 0, nil
	}
	q := `DELETE FROM renders WHERE key IN (?` + strings.Repeat(",?", len(victims)-1) + `)`
	if _, err := db.ExecContext(ctx, q, victims...); err != nil {
		return 0, fmt.Errorf("evict delete: %w", err)
	}
	applog.WithOperation(applog.WithComponent("storage"), "evict").Debug("evicted renders",
		slog.Int("count", len(victims)), slog.Int64("before", total), slog.Int64("after", cur))
	return len(victims), nil
}

// TotalBytes returns the summed size of all stored blobs.
func (c *Cache) TotalBytes(ctx context.Context) (int64, error) {
	db, err := c.conn()
	if err != nil {
		return 0, err
	}
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM renders`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum render size: %w", err)
	}
	return total, nil
}

// Stats summarises the cache contents.
type Stats struct {
	Entries int64
	Bytes   int64
	Hits    int64
}

func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	db, err := c.conn()
	if err != nil {
		return Stats{}, err
	}
	var s Stats
	err = db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(size),0), COALESCE(SUM(hits),0) FROM renders`).
		Scan(&s.Entries, &s.Bytes, &s.Hits)
	if err != nil {
		return Stats{}, fmt.Errorf("render stats: %w", err)
	}
	return s, nil
}
