package logging

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/modeling"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"github.com/tebeka/atexit"
)

// SQLiteLogger stores the trajectory of a simulation in a SQLite database
// with one table for the outputs, one for the states and one for the steps.
type SQLiteLogger struct {
	*sql.DB

	path      string
	batchSize int

	steps   []modeling.VTimeInSec
	records []record
}

// NewSQLiteLogger creates a SQLiteLogger. The database file is path with a
// ".sqlite3" suffix. If path is empty, a unique name is generated.
func NewSQLiteLogger(path string) *SQLiteLogger {
	return &SQLiteLogger{
		path:      path,
		batchSize: 10000,
	}
}

// Filename returns the name of the database file.
func (l *SQLiteLogger) Filename() string {
	return l.path + ".sqlite3"
}

// Start creates the database. It panics if the file already exists.
func (l *SQLiteLogger) Start() {
	if l.path == "" {
		l.path = "devsim_log_" + xid.New().String()
	}

	filename := l.Filename()
	if _, err := os.Stat(filename); err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	l.DB = db
	l.createTables()

	logrus.Infof("simulation log is written to %s", filename)

	atexit.Register(l.close)
}

func (l *SQLiteLogger) createTables() {
	l.mustExecute(`
		CREATE TABLE steps (
			time REAL NOT NULL
		)`)
	l.mustExecute(`
		CREATE TABLE outputs (
			time       REAL    NOT NULL,
			model_id   INTEGER NOT NULL,
			model_name TEXT    NOT NULL,
			port_name  TEXT    NOT NULL,
			data       TEXT
		)`)
	l.mustExecute(`
		CREATE TABLE states (
			time       REAL    NOT NULL,
			model_id   INTEGER NOT NULL,
			model_name TEXT    NOT NULL,
			state      TEXT
		)`)
	l.mustExecute(`CREATE INDEX outputs_model ON outputs (model_id, time)`)
	l.mustExecute(`CREATE INDEX states_model ON states (model_id, time)`)
}

// Stop writes the buffered rows and closes the database.
func (l *SQLiteLogger) Stop() {
	l.close()
}

func (l *SQLiteLogger) close() {
	if l.DB == nil {
		return
	}

	l.Flush()

	if err := l.DB.Close(); err != nil {
		panic(err)
	}

	l.DB = nil
}

// LogTime records the beginning of a step.
func (l *SQLiteLogger) LogTime(t modeling.VTimeInSec) {
	l.steps = append(l.steps, t)
	l.flushIfFull()
}

// LogOutput records a message sent by a model.
func (l *SQLiteLogger) LogOutput(
	t modeling.VTimeInSec,
	modelID int,
	modelName, portName, output string,
) {
	l.records = append(l.records,
		outputRecord(t, modelID, modelName, portName, output))
	l.flushIfFull()
}

// LogState records the state of a model.
func (l *SQLiteLogger) LogState(
	t modeling.VTimeInSec,
	modelID int,
	modelName, state string,
) {
	l.records = append(l.records, stateRecord(t, modelID, modelName, state))
	l.flushIfFull()
}

func (l *SQLiteLogger) flushIfFull() {
	if len(l.steps)+len(l.records) >= l.batchSize {
		l.Flush()
	}
}

// Flush writes all the buffered rows in a single transaction.
func (l *SQLiteLogger) Flush() {
	if l.DB == nil || len(l.steps)+len(l.records) == 0 {
		return
	}

	tx, err := l.Begin()
	if err != nil {
		panic(err)
	}

	stepStmt := l.mustPrepare(tx, `INSERT INTO steps VALUES (?)`)
	outputStmt := l.mustPrepare(tx, `INSERT INTO outputs VALUES (?, ?, ?, ?, ?)`)
	stateStmt := l.mustPrepare(tx, `INSERT INTO states VALUES (?, ?, ?, ?)`)

	for _, t := range l.steps {
		l.mustExec(tx, stepStmt, float64(t))
	}

	for _, r := range l.records {
		if r.isState {
			l.mustExec(tx, stateStmt,
				float64(r.time), r.modelID, r.modelName, r.data)
			continue
		}

		l.mustExec(tx, outputStmt,
			float64(r.time), r.modelID, r.modelName, r.portName, r.data)
	}

	if err := tx.Commit(); err != nil {
		panic(err)
	}

	l.steps = nil
	l.records = nil
}

func (l *SQLiteLogger) mustPrepare(tx *sql.Tx, query string) *sql.Stmt {
	stmt, err := tx.Prepare(query)
	if err != nil {
		_ = tx.Rollback()
		panic(err)
	}

	return stmt
}

func (l *SQLiteLogger) mustExec(tx *sql.Tx, stmt *sql.Stmt, args ...any) {
	if _, err := stmt.Exec(args...); err != nil {
		_ = tx.Rollback()
		panic(err)
	}
}

func (l *SQLiteLogger) mustExecute(query string) {
	if _, err := l.Exec(query); err != nil {
		panic(fmt.Errorf("failed to execute %q: %w", query, err))
	}
}
