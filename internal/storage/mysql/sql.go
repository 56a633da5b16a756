package mysql

import "strings"

const upsertListingSQL = `
INSERT INTO listings
  (id, kind, type, name, city, capacity, price_min, price_max, created_at, doc, raw)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  kind       = VALUES(kind),
  type       = VALUES(type),
  name       = VALUES(name),
  city       = VALUES(city),
  capacity   = VALUES(capacity),
  price_min  = VALUES(price_min),
  price_max  = VALUES(price_max),
  created_at = VALUES(created_at),
  doc        = VALUES(doc),
  raw        = COALESCE(VALUES(raw), listings.raw),
  updated_at = CURRENT_TIMESTAMP
`

const insertMissSQL = `
INSERT INTO ingest_misses (kind, listing_id, http_status, reason)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE reason = VALUES(reason), seen_at = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getListingSQL = `SELECT doc FROM listings WHERE id = ?`

const fetchListingsPrefix = "SELECT doc FROM listings"

// fetch order only makes the snapshot stable; the engine sorts for real.
const fetchListingsOrder = " ORDER BY id"

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
