package store

import "context"

// SliceIterator adapts a pre-built, already key-ordered slice to
// RowIterator, for back-ends (like storage/memstore) that build the full
// result in memory rather than streaming it.
type SliceIterator struct {
	rows []Row
	pos  int
}

func NewSliceIterator(rows []Row) *SliceIterator { return &SliceIterator{rows: rows} }

func (it *SliceIterator) Next(ctx context.Context) (Row, bool, error) {
	if err := ctx.Err(); err != nil {
		return Row{}, false, err
	}
	if it.pos >= len(it.rows) {
		return Row{}, false, nil
	}
	r := it.rows[it.pos]
	it.pos++
	return r, true, nil
}

func (it *SliceIterator) Close() error { return nil }
