// Package persistence provides SQLite-based storage for simulation runs and
// session packages. The core never touches it; the CLI saves what it computed.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/ljpw-harmony/internal/engine"
	"github.com/talgya/ljpw-harmony/internal/evolution"
	"github.com/talgya/ljpw-harmony/internal/ljpw"
)

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if path == ":memory:" {
		// Each new connection would get its own empty database.
		conn.SetMaxOpenConns(1)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		mode TEXT NOT NULL,
		config_json TEXT NOT NULL,
		steps INTEGER NOT NULL,
		final_state_json TEXT NOT NULL,
		final_harmony REAL NOT NULL,
		final_phase TEXT NOT NULL,
		retention REAL NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS samples (
		run_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		state_json TEXT NOT NULL,
		velocity_json TEXT NOT NULL,
		harmony REAL NOT NULL,
		phase TEXT NOT NULL,
		energy REAL NOT NULL,
		PRIMARY KEY (run_id, step),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		package_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_seq ON sessions(seq);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RunRow is a stored run summary.
type RunRow struct {
	ID             string  `db:"id"`
	Label          string  `db:"label"`
	Mode           string  `db:"mode"`
	ConfigJSON     string  `db:"config_json"`
	Steps          int     `db:"steps"`
	FinalStateJSON string  `db:"final_state_json"`
	FinalHarmony   float64 `db:"final_harmony"`
	FinalPhase     string  `db:"final_phase"`
	Retention      float64 `db:"retention"`
	CreatedAt      string  `db:"created_at"`
}

// Config decodes the stored run configuration.
func (r RunRow) Config() (engine.Config, error) {
	var cfg engine.Config
	if err := json.Unmarshal([]byte(r.ConfigJSON), &cfg); err != nil {
		return engine.Config{}, fmt.Errorf("run %s config: %w", r.ID, err)
	}
	return cfg, nil
}

// FinalState decodes the stored final state.
func (r RunRow) FinalState() (ljpw.State, error) {
	var s ljpw.State
	if err := json.Unmarshal([]byte(r.FinalStateJSON), &s); err != nil {
		return ljpw.State{}, fmt.Errorf("run %s final state: %w", r.ID, err)
	}
	return s, nil
}

// SaveRun writes a run summary and, when withSamples is set, its full series.
// Returns the new run ID.
func (db *DB) SaveRun(res *engine.Result, sum engine.Summary, withSamples bool) (string, error) {
	id := uuid.New().String()

	cfgJSON, err := json.Marshal(res.Config)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	finalJSON, err := json.Marshal(sum.FinalState)
	if err != nil {
		return "", fmt.Errorf("marshal final state: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs
		(id, label, mode, config_json, steps, final_state_json, final_harmony, final_phase, retention, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, res.Config.Label, res.Config.Mode.String(), string(cfgJSON), sum.Steps,
		string(finalJSON), float64(sum.FinalHarmony), sum.FinalPhase.String(),
		sum.EnergyRetentionRatio, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	if withSamples {
		stmt, err := tx.Preparex(`INSERT INTO samples
			(run_id, step, state_json, velocity_json, harmony, phase, energy)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return "", err
		}
		defer stmt.Close()

		for _, s := range res.Samples {
			stateJSON, err := json.Marshal(s.State)
			if err != nil {
				return "", fmt.Errorf("marshal sample %d state: %w", s.Step, err)
			}
			velJSON, err := json.Marshal(s.Velocity)
			if err != nil {
				return "", fmt.Errorf("marshal sample %d velocity: %w", s.Step, err)
			}
			_, err = stmt.Exec(id, s.Step, string(stateJSON), string(velJSON),
				float64(s.Harmony), s.Phase.String(), s.Energy)
			if err != nil {
				return "", fmt.Errorf("insert sample %d: %w", s.Step, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	slog.Info("run saved", "id", id, "label", res.Config.Label, "samples", withSamples)
	return id, nil
}

// LoadRun returns a stored run summary.
func (db *DB) LoadRun(id string) (RunRow, error) {
	var row RunRow
	err := db.conn.Get(&row, "SELECT * FROM runs WHERE id = ?", id)
	if err != nil {
		return RunRow{}, fmt.Errorf("load run %s: %w", id, err)
	}
	return row, nil
}

// RecentRuns returns the most recent N run summaries.
func (db *DB) RecentRuns(limit int) ([]RunRow, error) {
	var rows []RunRow
	err := db.conn.Select(&rows, "SELECT * FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	return rows, err
}

type sampleRow struct {
	RunID        string  `db:"run_id"`
	Step         int     `db:"step"`
	StateJSON    string  `db:"state_json"`
	VelocityJSON string  `db:"velocity_json"`
	Harmony      float64 `db:"harmony"`
	Phase        string  `db:"phase"`
	Energy       float64 `db:"energy"`
}

// RunSamples returns the stored series of a run in step order.
func (db *DB) RunSamples(id string) ([]engine.Sample, error) {
	var rows []sampleRow
	if err := db.conn.Select(&rows, "SELECT * FROM samples WHERE run_id = ? ORDER BY step", id); err != nil {
		return nil, fmt.Errorf("load samples %s: %w", id, err)
	}
	out := make([]engine.Sample, 0, len(rows))
	for _, r := range rows {
		s := engine.Sample{
			Step:    r.Step,
			Harmony: ljpw.DistanceHarmony(r.Harmony),
			Energy:  r.Energy,
		}
		if err := json.Unmarshal([]byte(r.StateJSON), &s.State); err != nil {
			return nil, fmt.Errorf("sample %d state: %w", r.Step, err)
		}
		if err := json.Unmarshal([]byte(r.VelocityJSON), &s.Velocity); err != nil {
			return nil, fmt.Errorf("sample %d velocity: %w", r.Step, err)
		}
		p, err := ljpw.ParsePhase(r.Phase)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", r.Step, err)
		}
		s.Phase = p
		out = append(out, s)
	}
	return out, nil
}

// SaveSession appends a session package under the given sequence number.
func (db *DB) SaveSession(seq int, pkg evolution.SessionPackage) (string, error) {
	data, err := evolution.Encode(pkg)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()
	_, err = db.conn.Exec(
		"INSERT INTO sessions (id, seq, package_json, created_at) VALUES (?, ?, ?, ?)",
		id, seq, string(data), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert session %d: %w", seq, err)
	}
	return id, nil
}

// LoadSessions returns every stored package in sequence order.
func (db *DB) LoadSessions() ([]evolution.SessionPackage, error) {
	var blobs []string
	if err := db.conn.Select(&blobs, "SELECT package_json FROM sessions ORDER BY seq, created_at"); err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	out := make([]evolution.SessionPackage, 0, len(blobs))
	for i, b := range blobs {
		p, err := evolution.Decode([]byte(b))
		if err != nil {
			return nil, fmt.Errorf("session row %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}
