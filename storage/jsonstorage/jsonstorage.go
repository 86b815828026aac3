// Package jsonstorage writes each stored item as one JSON object per line.
package jsonstorage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"trf5-crawler/storage"
)

type JSONStore struct {
	mu  sync.Mutex
	w   *bufio.Writer
	enc *json.Encoder
}

func New(w io.Writer) *JSONStore {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &JSONStore{w: bw, enc: enc}
}

func (s *JSONStore) Save(datas ...*storage.DataCell) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range datas {
		item := d.GetItem()
		if item == nil {
			return fmt.Errorf("data cell from %q has no item", d.GetURL())
		}
		if err := s.enc.Encode(item); err != nil {
			return fmt.Errorf("encode item from %s: %w", d.GetURL(), err)
		}
	}
	return nil
}

func (s *JSONStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}
