package sqlstorage

import (
	"encoding/json"
	"fmt"

	"trf5-crawler/storage"
	"trf5-crawler/storage/sqldb"

	"go.uber.org/zap"
)

type SqlStore struct {
	dataDocker []*storage.DataCell // 分批输出结果缓存
	db         sqldb.DBer
	Table      map[string][]sqldb.Field
	options
}

func New(db sqldb.DBer, opts ...Option) *SqlStore {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &SqlStore{
		db:      db,
		Table:   make(map[string][]sqldb.Field),
		options: options,
	}
}

func (s *SqlStore) Save(dataCells ...*storage.DataCell) error {
	for _, cell := range dataCells {
		name := cell.GetTableName()
		if _, ok := s.Table[name]; !ok {
			columnNames := s.getFields(cell)
			err := s.db.CreateTable(sqldb.TableData{
				TableName:   name,
				ColumnNames: columnNames,
				AutoKey:     true,
			})
			if err != nil {
				s.logger.Error("create table failed", zap.String("table", name), zap.Error(err))
				return err
			}
			s.Table[name] = columnNames
		}
		if len(s.dataDocker) >= s.BatchCount {
			if err := s.Flush(); err != nil {
				return err
			}
		}
		s.dataDocker = append(s.dataDocker, cell)
	}
	return nil
}

func (s *SqlStore) getFields(cell *storage.DataCell) []sqldb.Field {
	var fields []string
	if s.fields != nil {
		fields = s.fields(cell.GetTaskName(), cell.GetRuleName())
	}
	columnNames := make([]sqldb.Field, 0, len(fields)+2)
	for _, field := range fields {
		columnNames = append(columnNames, sqldb.Field{Title: field, Type: "MEDIUMTEXT"})
	}
	columnNames = append(columnNames,
		sqldb.Field{Title: "Url", Type: "VARCHAR(255)"},
		sqldb.Field{Title: "Time", Type: "VARCHAR(255)"},
	)
	return columnNames
}

// 按表分组后批量写入
func (s *SqlStore) Flush() error {
	if len(s.dataDocker) == 0 {
		return nil
	}
	defer func() {
		s.dataDocker = nil
	}()

	var order []string
	batches := map[string]*sqldb.TableData{}
	for _, cell := range s.dataDocker {
		name := cell.GetTableName()
		columns := s.Table[name]
		t, ok := batches[name]
		if !ok {
			t = &sqldb.TableData{TableName: name, ColumnNames: columns}
			batches[name] = t
			order = append(order, name)
		}
		item := cell.GetItem()
		for _, c := range columns[:len(columns)-2] {
			v, err := columnValue(item[c.Title])
			if err != nil {
				return fmt.Errorf("column %s of %s: %w", c.Title, cell.GetURL(), err)
			}
			t.Args = append(t.Args, v)
		}
		t.Args = append(t.Args, cell.GetURL(), cell.GetTime())
		t.DataCount++
	}

	for _, name := range order {
		if err := s.db.Insert(*batches[name]); err != nil {
			s.logger.Error("insert failed", zap.String("table", name), zap.Error(err))
			return err
		}
	}
	return nil
}

// 嵌套结构序列化为 JSON 文本
func columnValue(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return val, nil
	case *string:
		if val == nil {
			return nil, nil
		}
		return *val, nil
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
}
