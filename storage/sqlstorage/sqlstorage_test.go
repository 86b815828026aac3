package sqlstorage

import (
	"testing"

	"trf5-crawler/storage"
	"trf5-crawler/storage/sqldb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDB struct {
	created  []sqldb.TableData
	inserted []sqldb.TableData
}

func (m *mockDB) CreateTable(t sqldb.TableData) error {
	m.created = append(m.created, t)
	return nil
}

func (m *mockDB) Insert(t sqldb.TableData) error {
	m.inserted = append(m.inserted, t)
	return nil
}

func fields(task, rule string) []string {
	if task == "trf5" && rule == "detail" {
		return []string{"case_number", "parties"}
	}
	return nil
}

func cell(number interface{}) *storage.DataCell {
	return &storage.DataCell{Data: map[string]interface{}{
		"Task": "trf5",
		"Rule": "detail",
		"Url":  "https://www5.trf5.jus.br/processo/x",
		"Time": "2024-01-02 03:04:05",
		"Data": map[string]interface{}{
			"case_number": number,
			"parties":     []map[string]interface{}{{"role": "APTE", "name": nil}},
		},
	}}
}

func TestSaveBatchesAndFlushes(t *testing.T) {
	db := &mockDB{}
	s := New(db, WithBatchCount(2), WithFields(fields))

	require.NoError(t, s.Save(cell("1"), cell("2"), cell(nil)))

	require.Len(t, db.created, 1, "table is created once")
	assert.Equal(t, "trf5", db.created[0].TableName)
	assert.True(t, db.created[0].AutoKey)
	titles := []string{}
	for _, c := range db.created[0].ColumnNames {
		titles = append(titles, c.Title)
	}
	assert.Equal(t, []string{"case_number", "parties", "Url", "Time"}, titles)

	require.Len(t, db.inserted, 1, "first batch flushed when full")
	assert.Equal(t, 2, db.inserted[0].DataCount)
	assert.Equal(t, []interface{}{
		"1", `[{"name":null,"role":"APTE"}]`, "https://www5.trf5.jus.br/processo/x", "2024-01-02 03:04:05",
		"2", `[{"name":null,"role":"APTE"}]`, "https://www5.trf5.jus.br/processo/x", "2024-01-02 03:04:05",
	}, db.inserted[0].Args)

	require.NoError(t, s.Flush())
	require.Len(t, db.inserted, 2)
	assert.Equal(t, 1, db.inserted[1].DataCount)
	assert.Nil(t, db.inserted[1].Args[0])

	require.NoError(t, s.Flush(), "flushing an empty buffer is a no-op")
	assert.Len(t, db.inserted, 2)
}

func TestColumnValue(t *testing.T) {
	s := "x"
	var nilStr *string
	cases := []struct {
		in   interface{}
		want interface{}
	}{
		{nil, nil},
		{"a", "a"},
		{&s, "x"},
		{nilStr, nil},
		{[]string{}, "[]"},
	}
	for _, c := range cases {
		got, err := columnValue(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}
