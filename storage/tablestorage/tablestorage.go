// Package tablestorage collects stored items and prints them as one text
// table per task when the crawl is flushed.
package tablestorage

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"sync"

	"trf5-crawler/storage"

	"github.com/jedib0t/go-pretty/v6/table"
)

type TableStore struct {
	mu     sync.Mutex
	w      io.Writer
	fields func(taskName, ruleName string) []string
	tables map[string]*taskTable
	order  []string
}

type taskTable struct {
	columns []string
	rows    []table.Row
}

// fields 为空时按字段名排序输出
func New(w io.Writer, fields func(taskName, ruleName string) []string) *TableStore {
	return &TableStore{
		w:      w,
		fields: fields,
		tables: map[string]*taskTable{},
	}
}

func (s *TableStore) Save(datas ...*storage.DataCell) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range datas {
		item := d.GetItem()
		if item == nil {
			return fmt.Errorf("data cell from %q has no item", d.GetURL())
		}
		name := d.GetTableName()
		t, ok := s.tables[name]
		if !ok {
			t = &taskTable{columns: s.columns(d, item)}
			s.tables[name] = t
			s.order = append(s.order, name)
		}
		row := make(table.Row, 0, len(t.columns))
		for _, c := range t.columns {
			row = append(row, cellText(item[c]))
		}
		t.rows = append(t.rows, row)
	}
	return nil
}

func (s *TableStore) columns(d *storage.DataCell, item map[string]interface{}) []string {
	if s.fields != nil {
		if fields := s.fields(d.GetTaskName(), d.GetRuleName()); len(fields) > 0 {
			return fields
		}
	}
	keys := make([]string, 0, len(item))
	for k := range item {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *TableStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range s.order {
		t := s.tables[name]
		header := make(table.Row, 0, len(t.columns))
		for _, c := range t.columns {
			header = append(header, c)
		}

		tw := table.NewWriter()
		tw.SetStyle(table.StyleRounded)
		tw.SetTitle(name)
		tw.AppendHeader(header)
		tw.AppendRows(t.rows)
		tw.AppendFooter(table.Row{fmt.Sprintf("%d records", len(t.rows))})
		if _, err := io.WriteString(s.w, tw.Render()+"\n"); err != nil {
			return err
		}
	}
	s.tables = map[string]*taskTable{}
	s.order = nil
	return nil
}

// 列表类字段只显示条目数
func cellText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return val
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		return strconv.Itoa(rv.Len())
	}
	return fmt.Sprint(v)
}
