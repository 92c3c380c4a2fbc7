package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ignacioe7/tripscan/internal/model"
)

// Store provides SQLite-based persistence for the scraping pipeline.
//
// Design decision: one database file for all regions rather than a file per
// region. Cross-region queries (consolidated export, whole-dataset
// aggregation) become single queries, and backup is one file copy.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a Store at the specified directory.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, "tripscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS regions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		listing_url TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS attractions (
		id TEXT PRIMARY KEY,
		region_id TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL,
		rating REAL NOT NULL DEFAULT 0,
		review_count INTEGER NOT NULL DEFAULT 0,
		position INTEGER NOT NULL DEFAULT 0,
		discovered_at TEXT NOT NULL,
		last_crawled_at TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_attractions_region ON attractions(region_id);

	-- Review identity is scoped to the attraction: hash-fallback IDs are
	-- only unique within one attraction's cards.
	CREATE TABLE IF NOT EXISTS reviews (
		id TEXT NOT NULL,
		attraction_id TEXT NOT NULL,
		author TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		text TEXT NOT NULL DEFAULT '',
		rating INTEGER NOT NULL DEFAULT 0,
		posted_date TEXT NOT NULL DEFAULT '',
		visit_date TEXT NOT NULL DEFAULT '',
		trip_type TEXT NOT NULL DEFAULT '',
		language TEXT NOT NULL DEFAULT '',
		extracted_at TEXT NOT NULL,
		PRIMARY KEY (id, attraction_id)
	);

	CREATE INDEX IF NOT EXISTS idx_reviews_attraction ON reviews(attraction_id);

	CREATE TABLE IF NOT EXISTS sentiments (
		review_id TEXT NOT NULL,
		model_version TEXT NOT NULL,
		label TEXT NOT NULL,
		score REAL NOT NULL,
		classified_at TEXT NOT NULL,
		PRIMARY KEY (review_id, model_version)
	);

	CREATE TABLE IF NOT EXISTS attraction_aggregates (
		attraction_id TEXT PRIMARY KEY,
		region_id TEXT NOT NULL,
		review_count INTEGER NOT NULL,
		classified_count INTEGER NOT NULL,
		mean_rating REAL NOT NULL,
		mean_score REAL NOT NULL,
		dominant_label TEXT NOT NULL,
		pct_very_negative REAL NOT NULL,
		pct_negative REAL NOT NULL,
		pct_neutral REAL NOT NULL,
		pct_positive REAL NOT NULL,
		pct_very_positive REAL NOT NULL,
		computed_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS region_aggregates (
		region_id TEXT PRIMARY KEY,
		attraction_count INTEGER NOT NULL,
		review_count INTEGER NOT NULL,
		classified_count INTEGER NOT NULL,
		mean_rating REAL NOT NULL,
		mean_score REAL NOT NULL,
		dominant_label TEXT NOT NULL,
		pct_very_negative REAL NOT NULL,
		pct_negative REAL NOT NULL,
		pct_neutral REAL NOT NULL,
		pct_positive REAL NOT NULL,
		pct_very_positive REAL NOT NULL,
		languages TEXT NOT NULL DEFAULT '{}',
		computed_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// UpsertRegion stores or updates a region's configuration.
func (s *Store) UpsertRegion(ctx context.Context, region model.Region) error {
	if err := region.Validate(); err != nil {
		return err
	}
	query := `
	INSERT INTO regions (id, name, listing_url)
	VALUES (?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		listing_url = excluded.listing_url
	`
	if _, err := s.db.ExecContext(ctx, query, region.ID, region.Name, region.ListingURL); err != nil {
		return fmt.Errorf("failed to upsert region %s: %w", region.ID, err)
	}
	return nil
}

// ListRegions returns all stored regions ordered by ID.
func (s *Store) ListRegions(ctx context.Context) ([]model.Region, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, listing_url FROM regions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	defer rows.Close()

	var regions []model.Region
	for rows.Next() {
		var r model.Region
		if err := rows.Scan(&r.ID, &r.Name, &r.ListingURL); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		regions = append(regions, r)
	}
	return regions, rows.Err()
}

// MergeAttractions stores attractions, updating mutable listing state
// (name, category, rating, review count, position, URL) on conflict while
// preserving the original discovery time and crawl state. Returns how many
// rows were new.
func (s *Store) MergeAttractions(ctx context.Context, attractions []model.Attraction) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO attractions (id, region_id, name, category, url, rating, review_count, position, discovered_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		category = excluded.category,
		url = excluded.url,
		rating = excluded.rating,
		review_count = excluded.review_count,
		position = excluded.position
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare attraction merge: %w", err)
	}
	defer stmt.Close()

	countStmt, err := tx.PrepareContext(ctx, `SELECT COUNT(*) FROM attractions WHERE id = ?`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare existence check: %w", err)
	}
	defer countStmt.Close()

	inserted := 0
	for _, a := range attractions {
		if err := a.Validate(); err != nil {
			return 0, err
		}
		var exists int
		if err := countStmt.QueryRowContext(ctx, a.ID).Scan(&exists); err != nil {
			return 0, fmt.Errorf("failed to check attraction %s: %w", a.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			a.ID, a.RegionID, a.Name, a.Category, a.URL,
			a.Rating, a.ReviewCount, a.Position, formatTime(a.DiscoveredAt),
		); err != nil {
			return 0, fmt.Errorf("failed to merge attraction %s: %w", a.ID, err)
		}
		if exists == 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit attraction merge: %w", err)
	}
	return inserted, nil
}

// MarkAttractionCrawled records when review extraction last completed.
func (s *Store) MarkAttractionCrawled(ctx context.Context, attractionID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE attractions SET last_crawled_at = ? WHERE id = ?`,
		formatTime(at), attractionID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark attraction %s crawled: %w", attractionID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("attraction %s not found", attractionID)
	}
	return nil
}

// ListAttractions returns a region's attractions ordered by listing position,
// then ID for stability when positions collide.
func (s *Store) ListAttractions(ctx context.Context, regionID string) ([]model.Attraction, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, region_id, name, category, url, rating, review_count, position, discovered_at, last_crawled_at
	FROM attractions WHERE region_id = ? ORDER BY position, id`, regionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attractions: %w", err)
	}
	defer rows.Close()
	return scanAttractions(rows)
}

func scanAttractions(rows *sql.Rows) ([]model.Attraction, error) {
	var attractions []model.Attraction
	for rows.Next() {
		var a model.Attraction
		var discovered, crawled string
		if err := rows.Scan(&a.ID, &a.RegionID, &a.Name, &a.Category, &a.URL,
			&a.Rating, &a.ReviewCount, &a.Position, &discovered, &crawled); err != nil {
			return nil, fmt.Errorf("failed to scan attraction: %w", err)
		}
		a.DiscoveredAt = parseTimestamp(discovered)
		a.LastCrawledAt = parseTimestamp(crawled)
		attractions = append(attractions, a)
	}
	return attractions, rows.Err()
}

// StoredReviewCount returns how many reviews are stored for an attraction.
// The pipeline compares it with the listing's review count to skip
// attractions that are already up to date.
func (s *Store) StoredReviewCount(ctx context.Context, attractionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews WHERE attraction_id = ?`, attractionID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews for %s: %w", attractionID, err)
	}
	return n, nil
}

// MergeReviews inserts reviews, leaving existing rows untouched. Review text
// and dates never change once stored; a re-extracted duplicate is simply
// ignored. Returns how many rows were new.
func (s *Store) MergeReviews(ctx context.Context, reviews []model.Review) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO reviews (id, attraction_id, author, title, text, rating,
		posted_date, visit_date, trip_type, language, extracted_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id, attraction_id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare review insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range reviews {
		if err := r.Validate(); err != nil {
			return 0, err
		}
		res, err := stmt.ExecContext(ctx,
			r.ID, r.AttractionID, r.Author, r.Title, r.Text, r.Rating,
			formatTime(r.PostedDate), formatTime(r.VisitDate),
			r.TripType, r.Language, formatTime(r.ExtractedAt),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert review %s: %w", r.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit review merge: %w", err)
	}
	return inserted, nil
}

// ListUnclassifiedReviews returns reviews that have no sentiment result for
// the given model version, ordered by attraction then review ID. A limit of
// 0 means no limit.
func (s *Store) ListUnclassifiedReviews(ctx context.Context, modelVersion string, limit int) ([]model.Review, error) {
	query := `
	SELECT r.id, r.attraction_id, r.author, r.title, r.text, r.rating,
		r.posted_date, r.visit_date, r.trip_type, r.language, r.extracted_at
	FROM reviews r
	LEFT JOIN sentiments s ON s.review_id = r.id AND s.model_version = ?
	WHERE s.review_id IS NULL
	ORDER BY r.attraction_id, r.id
	`
	args := []any{modelVersion}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list unclassified reviews: %w", err)
	}
	defer rows.Close()
	return scanReviews(rows)
}

func scanReviews(rows *sql.Rows) ([]model.Review, error) {
	var reviews []model.Review
	for rows.Next() {
		var r model.Review
		var posted, visit, extracted string
		if err := rows.Scan(&r.ID, &r.AttractionID, &r.Author, &r.Title, &r.Text, &r.Rating,
			&posted, &visit, &r.TripType, &r.Language, &extracted); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		r.PostedDate = parseTimestamp(posted)
		r.VisitDate = parseTimestamp(visit)
		r.ExtractedAt = parseTimestamp(extracted)
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// InsertSentiments stores sentiment results, keeping at most one row per
// (review, model version) pair. Existing rows win; a re-classified review is
// not overwritten. Returns how many rows were new.
func (s *Store) InsertSentiments(ctx context.Context, results []model.SentimentResult) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO sentiments (review_id, model_version, label, score, classified_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(review_id, model_version) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare sentiment insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, res := range results {
		execRes, err := stmt.ExecContext(ctx,
			res.ReviewID, res.ModelVersion, res.Label.String(), res.Score, formatTime(res.ClassifiedAt),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert sentiment for %s: %w", res.ReviewID, err)
		}
		if n, err := execRes.RowsAffected(); err == nil && n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sentiment insert: %w", err)
	}
	return inserted, nil
}

// ReplaceAggregates atomically replaces the aggregate snapshot for the given
// regions. Old rows for those regions are deleted and the new ones inserted
// in one transaction, so a reader sees either the previous snapshot or the
// new one, never a mix.
func (s *Store) ReplaceAggregates(ctx context.Context, regionAggs []model.RegionAggregate, attractionAggs []model.AttractionAggregate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for _, ra := range regionAggs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM region_aggregates WHERE region_id = ?`, ra.RegionID); err != nil {
			return fmt.Errorf("failed to clear region aggregate %s: %w", ra.RegionID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM attraction_aggregates WHERE region_id = ?`, ra.RegionID); err != nil {
			return fmt.Errorf("failed to clear attraction aggregates for %s: %w", ra.RegionID, err)
		}

		langJSON, err := json.Marshal(ra.Languages)
		if err != nil {
			return fmt.Errorf("failed to serialize language counts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO region_aggregates (region_id, attraction_count, review_count, classified_count,
			mean_rating, mean_score, dominant_label,
			pct_very_negative, pct_negative, pct_neutral, pct_positive, pct_very_positive,
			languages, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ra.RegionID, ra.AttractionCount, ra.ReviewCount, ra.ClassifiedCount,
			ra.MeanRating, ra.MeanScore, ra.DominantLabel.String(),
			ra.Distribution.VeryNegative, ra.Distribution.Negative, ra.Distribution.Neutral,
			ra.Distribution.Positive, ra.Distribution.VeryPositive,
			string(langJSON), formatTime(ra.ComputedAt),
		); err != nil {
			return fmt.Errorf("failed to insert region aggregate %s: %w", ra.RegionID, err)
		}
	}

	for _, aa := range attractionAggs {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO attraction_aggregates (attraction_id, region_id, review_count, classified_count,
			mean_rating, mean_score, dominant_label,
			pct_very_negative, pct_negative, pct_neutral, pct_positive, pct_very_positive,
			computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			aa.AttractionID, aa.RegionID, aa.ReviewCount, aa.ClassifiedCount,
			aa.MeanRating, aa.MeanScore, aa.DominantLabel.String(),
			aa.Distribution.VeryNegative, aa.Distribution.Negative, aa.Distribution.Neutral,
			aa.Distribution.Positive, aa.Distribution.VeryPositive,
			formatTime(aa.ComputedAt),
		); err != nil {
			return fmt.Errorf("failed to insert attraction aggregate %s: %w", aa.AttractionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit aggregate snapshot: %w", err)
	}
	return nil
}

// GetRegionAggregate returns a region's aggregate, or nil when none exists.
func (s *Store) GetRegionAggregate(ctx context.Context, regionID string) (*model.RegionAggregate, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT region_id, attraction_count, review_count, classified_count,
		mean_rating, mean_score, dominant_label,
		pct_very_negative, pct_negative, pct_neutral, pct_positive, pct_very_positive,
		languages, computed_at
	FROM region_aggregates WHERE region_id = ?`, regionID)

	var ra model.RegionAggregate
	var label, langJSON, computed string
	err := row.Scan(&ra.RegionID, &ra.AttractionCount, &ra.ReviewCount, &ra.ClassifiedCount,
		&ra.MeanRating, &ra.MeanScore, &label,
		&ra.Distribution.VeryNegative, &ra.Distribution.Negative, &ra.Distribution.Neutral,
		&ra.Distribution.Positive, &ra.Distribution.VeryPositive,
		&langJSON, &computed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get region aggregate %s: %w", regionID, err)
	}
	ra.DominantLabel = parseStoredLabel(label)
	ra.ComputedAt = parseTimestamp(computed)
	if err := json.Unmarshal([]byte(langJSON), &ra.Languages); err != nil {
		return nil, fmt.Errorf("failed to decode language counts for %s: %w", regionID, err)
	}
	return &ra, nil
}

// LoadDataset assembles the consolidated dataset for export: every region
// with its attractions, reviews, sentiment results for modelVersion, and
// aggregates. Ordering is deterministic throughout.
func (s *Store) LoadDataset(ctx context.Context, modelVersion string) (*model.Dataset, error) {
	regions, err := s.ListRegions(ctx)
	if err != nil {
		return nil, err
	}

	ds := &model.Dataset{
		GeneratedAt:  time.Now().UTC(),
		ModelVersion: modelVersion,
	}

	for _, region := range regions {
		rd := model.RegionData{Region: region}

		attractions, err := s.ListAttractions(ctx, region.ID)
		if err != nil {
			return nil, err
		}
		for _, a := range attractions {
			ad := model.AttractionData{Attraction: a}
			reviews, err := s.listReviewData(ctx, a.ID, modelVersion)
			if err != nil {
				return nil, err
			}
			ad.Reviews = reviews
			agg, err := s.getAttractionAggregate(ctx, a.ID)
			if err != nil {
				return nil, err
			}
			ad.Aggregate = agg
			rd.Attractions = append(rd.Attractions, ad)
		}

		regionAgg, err := s.GetRegionAggregate(ctx, region.ID)
		if err != nil {
			return nil, err
		}
		rd.Aggregate = regionAgg
		ds.Regions = append(ds.Regions, rd)
	}
	return ds, nil
}

func (s *Store) listReviewData(ctx context.Context, attractionID, modelVersion string) ([]model.ReviewData, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT r.id, r.attraction_id, r.author, r.title, r.text, r.rating,
		r.posted_date, r.visit_date, r.trip_type, r.language, r.extracted_at,
		s.label, s.score, s.classified_at
	FROM reviews r
	LEFT JOIN sentiments s ON s.review_id = r.id AND s.model_version = ?
	WHERE r.attraction_id = ?
	ORDER BY r.id`, modelVersion, attractionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for %s: %w", attractionID, err)
	}
	defer rows.Close()

	var out []model.ReviewData
	for rows.Next() {
		var r model.Review
		var posted, visit, extracted string
		var label, classified sql.NullString
		var score sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.AttractionID, &r.Author, &r.Title, &r.Text, &r.Rating,
			&posted, &visit, &r.TripType, &r.Language, &extracted,
			&label, &score, &classified); err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		r.PostedDate = parseTimestamp(posted)
		r.VisitDate = parseTimestamp(visit)
		r.ExtractedAt = parseTimestamp(extracted)

		rd := model.ReviewData{Review: r}
		if label.Valid {
			rd.Sentiment = &model.SentimentResult{
				ReviewID:     r.ID,
				Label:        parseStoredLabel(label.String),
				Score:        score.Float64,
				ModelVersion: modelVersion,
				ClassifiedAt: parseTimestamp(classified.String),
			}
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

func (s *Store) getAttractionAggregate(ctx context.Context, attractionID string) (*model.AttractionAggregate, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT attraction_id, region_id, review_count, classified_count,
		mean_rating, mean_score, dominant_label,
		pct_very_negative, pct_negative, pct_neutral, pct_positive, pct_very_positive,
		computed_at
	FROM attraction_aggregates WHERE attraction_id = ?`, attractionID)

	var aa model.AttractionAggregate
	var label, computed string
	err := row.Scan(&aa.AttractionID, &aa.RegionID, &aa.ReviewCount, &aa.ClassifiedCount,
		&aa.MeanRating, &aa.MeanScore, &label,
		&aa.Distribution.VeryNegative, &aa.Distribution.Negative, &aa.Distribution.Neutral,
		&aa.Distribution.Positive, &aa.Distribution.VeryPositive,
		&computed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attraction aggregate %s: %w", attractionID, err)
	}
	aa.DominantLabel = parseStoredLabel(label)
	aa.ComputedAt = parseTimestamp(computed)
	return &aa, nil
}

// parseStoredLabel decodes a label column. Unknown values come back as
// LabelUnclassified rather than failing the whole query.
func parseStoredLabel(s string) model.Label {
	var l model.Label
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return model.LabelUnclassified
	}
	return l
}

// formatTime serializes a timestamp for storage. Zero times store as the
// empty string so optional dates round-trip as zero.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// timestampFormats lists the formats SQLite may hand back depending on how
// a value was written.
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. Empty or unparseable values return the zero time.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
