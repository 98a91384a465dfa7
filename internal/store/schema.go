package store

// Base schema. Albums here still carry the historical shape (bare release_year,
// free-form release_date); migrate() brings them to the current one.
const schemaBase = `
CREATE TABLE IF NOT EXISTS artist (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  name_sortable TEXT NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS album (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  title_sortable TEXT NOT NULL,
  artist_id INTEGER REFERENCES artist(id),
  image BLOB,
  thumb BLOB,
  release_date TEXT,
  release_year INTEGER,
  label TEXT,
  catalog_number TEXT,
  isrc TEXT,
  mbid TEXT NOT NULL DEFAULT 'none',
  vinyl_numbering INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_album_natural_key ON album(title, IFNULL(artist_id, -1), mbid);
CREATE INDEX IF NOT EXISTS idx_album_artist ON album(artist_id);

CREATE TABLE IF NOT EXISTS track (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  title_sortable TEXT NOT NULL,
  album_id INTEGER REFERENCES album(id),
  track_number INTEGER,
  disc_number INTEGER,
  duration INTEGER NOT NULL DEFAULT 0,
  location TEXT NOT NULL UNIQUE,
  genre TEXT,
  artist_names TEXT,
  folder TEXT NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_track_album ON track(album_id, disc_number, track_number);
CREATE INDEX IF NOT EXISTS idx_track_folder ON track(folder, album_id);

-- One folder supplies each (album, disc); -1 stands for "no disc number"
CREATE TABLE IF NOT EXISTS album_path (
  album_id INTEGER NOT NULL REFERENCES album(id),
  path TEXT NOT NULL,
  disc_num INTEGER NOT NULL DEFAULT -1,
  PRIMARY KEY (album_id, disc_num)
);

CREATE INDEX IF NOT EXISTS idx_album_path_path ON album_path(path);

CREATE TABLE IF NOT EXISTS playlist (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS playlist_item (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  playlist_id INTEGER NOT NULL REFERENCES playlist(id) ON DELETE CASCADE,
  track_id INTEGER NOT NULL REFERENCES track(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  UNIQUE(playlist_id, position)
);

-- Incremental scan bookkeeping
CREATE TABLE IF NOT EXISTS scan_record (
  location TEXT PRIMARY KEY,
  mtime_unix INTEGER NOT NULL,
  scanned_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS scan_root (
  path TEXT PRIMARY KEY
);
`

// Step 3: ordered range scans over the canonical date
const schemaReleaseDateIndex = `
CREATE INDEX IF NOT EXISTS idx_album_release_date ON album(release_date);
`

// Step 4: derived sort key. Never written directly.
const schemaSortDate = `
ALTER TABLE album ADD COLUMN sort_date TEXT GENERATED ALWAYS AS (
  CASE
    WHEN release_date IS NOT NULL THEN release_date
    WHEN release_year IS NOT NULL THEN printf('%04d-01-01', release_year)
  END
) VIRTUAL;
`

const schemaSortDateIndex = `
CREATE INDEX IF NOT EXISTS idx_album_sort_date ON album(sort_date);
`
