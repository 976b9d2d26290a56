package datarecording

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/pkg/errors"
	"github.com/tebeka/atexit"
)

// ClickHouseConfig describes how to connect to a ClickHouse server.
type ClickHouseConfig struct {
	Addr      string
	Database  string
	Username  string
	Password  string
	BatchSize int
}

// ClickHouseRecorder is a DataRecorder that writes into ClickHouse with the
// native protocol.
type ClickHouseRecorder struct {
	conn      clickhouse.Conn
	lock      sync.Mutex
	batchSize int

	tables     map[string]*table
	tableNames []string
	entryCount int
}

// NewClickHouseRecorder connects to a ClickHouse server.
func NewClickHouseRecorder(cfg ClickHouseConfig) (*ClickHouseRecorder, error) {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = defaultBatchSize
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to clickhouse at %s", cfg.Addr)
	}

	err = conn.Ping(context.Background())
	if err != nil {
		return nil, errors.Wrapf(err, "pinging clickhouse at %s", cfg.Addr)
	}

	r := &ClickHouseRecorder{
		conn:      conn,
		batchSize: cfg.BatchSize,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { r.Flush() })

	return r, nil
}

// CreateTable creates a MergeTree table.
func (r *ClickHouseRecorder) CreateTable(tableName string, sampleEntry any) {
	createSQL, err := clickHouseCreateTableSQL(tableName, sampleEntry)
	if err != nil {
		panic(err)
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	err = r.conn.Exec(context.Background(), createSQL)
	if err != nil {
		panic(errors.Wrapf(err, "creating table %s", tableName))
	}

	r.tables[tableName] = &table{}
	r.tableNames = append(r.tableNames, tableName)
}

// InsertData buffers an entry.
func (r *ClickHouseRecorder) InsertData(tableName string, entry any) {
	r.lock.Lock()
	defer r.lock.Unlock()

	t, ok := r.tables[tableName]
	if !ok {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	t.entries = append(t.entries, entry)

	r.entryCount++
	if r.entryCount >= r.batchSize {
		r.flush()
	}
}

// ListTables returns the names of the tables in creation order.
func (r *ClickHouseRecorder) ListTables() []string {
	r.lock.Lock()
	defer r.lock.Unlock()

	return append([]string(nil), r.tableNames...)
}

// Flush sends one batch per table.
func (r *ClickHouseRecorder) Flush() {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.flush()
}

func (r *ClickHouseRecorder) flush() {
	if r.entryCount == 0 {
		return
	}

	ctx := context.Background()

	for _, name := range r.tableNames {
		t := r.tables[name]
		if len(t.entries) == 0 {
			continue
		}

		batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO "+name)
		if err != nil {
			panic(errors.Wrapf(err, "preparing batch for %s", name))
		}

		for _, entry := range t.entries {
			err = batch.Append(fieldValues(entry)...)
			if err != nil {
				panic(errors.Wrapf(err, "appending to %s", name))
			}
		}

		err = batch.Send()
		if err != nil {
			panic(errors.Wrapf(err, "sending batch to %s", name))
		}

		t.entries = nil
	}

	r.entryCount = 0
}

// Close flushes and closes the connection.
func (r *ClickHouseRecorder) Close() error {
	r.Flush()
	return r.conn.Close()
}

func clickHouseCreateTableSQL(tableName string, sampleEntry any) (string, error) {
	err := checkStructFields(sampleEntry)
	if err != nil {
		return "", err
	}

	t := reflect.TypeOf(sampleEntry)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	columns := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		columns = append(columns, f.Name+" "+clickHouseType(f.Type.Kind()))
	}

	return "CREATE TABLE IF NOT EXISTS " + tableName + " (\n\t" +
		strings.Join(columns, ",\n\t") +
		"\n) ENGINE = MergeTree() ORDER BY tuple()", nil
}

func clickHouseType(kind reflect.Kind) string {
	switch kind {
	case reflect.Bool:
		return "Bool"
	case reflect.Int8:
		return "Int8"
	case reflect.Int16:
		return "Int16"
	case reflect.Int32:
		return "Int32"
	case reflect.Int, reflect.Int64:
		return "Int64"
	case reflect.Uint8:
		return "UInt8"
	case reflect.Uint16:
		return "UInt16"
	case reflect.Uint32:
		return "UInt32"
	case reflect.Uint, reflect.Uint64:
		return "UInt64"
	case reflect.Float32:
		return "Float32"
	case reflect.Float64:
		return "Float64"
	default:
		return "String"
	}
}
