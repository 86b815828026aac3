package sqldb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var ErrEmptyColumns = errors.New("column list can not be empty")

type DBer interface {
	CreateTable(t TableData) error
	Insert(t TableData) error
}

type Field struct {
	Title string
	Type  string
}

type TableData struct {
	TableName   string
	ColumnNames []Field       // 标题字段
	Args        []interface{} // 数据
	DataCount   int           // 插入数据的数量
	AutoKey     bool
}

type Sqldb struct {
	options
	db *sql.DB
}

func New(opts ...Option) (*Sqldb, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	d := &Sqldb{}
	d.options = options
	if err := d.OpenDB(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Sqldb) OpenDB() error {
	cfg, err := mysql.ParseDSN(d.sqlURL)
	if err != nil {
		return fmt.Errorf("parse mysql dsn: %w", err)
	}
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	// 当事人姓名包含重音字符
	if _, ok := cfg.Params["charset"]; !ok {
		cfg.Params["charset"] = "utf8mb4"
	}
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(d.maxOpenConns)
	db.SetMaxIdleConns(d.maxOpenConns)
	if err = db.Ping(); err != nil {
		db.Close()
		return err
	}
	d.db = db
	return nil
}

func (d *Sqldb) Close() error {
	return d.db.Close()
}

func (d *Sqldb) CreateTable(t TableData) error {
	query, err := createTableSQL(t)
	if err != nil {
		return err
	}
	d.logger.Debug("create table", zap.String("sql", query))
	_, err = d.db.Exec(query)
	return err
}

func (d *Sqldb) Insert(t TableData) error {
	query, err := insertSQL(t)
	if err != nil {
		return err
	}
	d.logger.Debug("insert table", zap.String("sql", query), zap.Int("rows", t.DataCount))
	_, err = d.db.Exec(query, t.Args...)
	return err
}

func createTableSQL(t TableData) (string, error) {
	if len(t.ColumnNames) == 0 {
		return "", ErrEmptyColumns
	}
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(quote(t.TableName))
	b.WriteString(" (")
	if t.AutoKey {
		b.WriteString("`id` INT(12) NOT NULL PRIMARY KEY AUTO_INCREMENT,")
	}
	for i, c := range t.ColumnNames {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(quote(c.Title) + " " + c.Type)
	}
	b.WriteString(") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;")
	return b.String(), nil
}

func insertSQL(t TableData) (string, error) {
	if len(t.ColumnNames) == 0 {
		return "", ErrEmptyColumns
	}
	if t.DataCount < 1 {
		return "", errors.New("nothing to insert")
	}
	if len(t.Args) != len(t.ColumnNames)*t.DataCount {
		return "", fmt.Errorf("got %d args for %d rows of %d columns", len(t.Args), t.DataCount, len(t.ColumnNames))
	}
	titles := make([]string, len(t.ColumnNames))
	for i, c := range t.ColumnNames {
		titles[i] = quote(c.Title)
	}
	row := "(" + strings.Repeat(",?", len(t.ColumnNames))[1:] + ")"
	rows := strings.Repeat(","+row, t.DataCount)[1:]
	return "INSERT INTO " + quote(t.TableName) + "(" + strings.Join(titles, ",") + ") VALUES " + rows + ";", nil
}

func quote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
