package leveldb

import (
	"github.com/meshplus/govhub/pkg/storage"
	"github.com/syndtr/goleveldb/leveldb"
	ldbstorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type ldb struct {
	db *leveldb.DB
}

// New opens (or creates) a leveldb database under path.
func New(path string) (storage.Storage, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}

	return &ldb{
		db: db,
	}, nil
}

// NewMemory returns a leveldb database kept entirely in memory.
func NewMemory() (storage.Storage, error) {
	db, err := leveldb.Open(ldbstorage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}

	return &ldb{
		db: db,
	}, nil
}

func (l *ldb) Put(key, value []byte) error {
	return l.db.Put(key, value, nil)
}

func (l *ldb) Delete(key []byte) error {
	return l.db.Delete(key, nil)
}

func (l *ldb) Get(key []byte) ([]byte, error) {
	value, err := l.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, storage.ErrorNotFound
	}
	return value, err
}

func (l *ldb) Has(key []byte) (bool, error) {
	return l.db.Has(key, nil)
}

func (l *ldb) Iterator(start, end []byte) storage.Iterator {
	rg := &util.Range{
		Start: start,
		Limit: end,
	}
	it := l.db.NewIterator(rg, nil)

	return &iter{iter: it}
}

func (l *ldb) Prefix(prefix []byte) storage.Iterator {
	rg := util.BytesPrefix(prefix)

	return &iter{iter: l.db.NewIterator(rg, nil)}
}

func (l *ldb) NewBatch() storage.Batch {
	return &ldbBatch{
		ldb:   l.db,
		batch: &leveldb.Batch{},
	}
}

func (l *ldb) Close() error {
	return l.db.Close()
}

type ldbBatch struct {
	ldb   *leveldb.DB
	batch *leveldb.Batch
}

func (l *ldbBatch) Put(key, value []byte) {
	l.batch.Put(key, value)
}

func (l *ldbBatch) Delete(key []byte) {
	l.batch.Delete(key)
}

func (l *ldbBatch) Len() int {
	return l.batch.Len()
}

func (l *ldbBatch) Commit() error {
	return l.ldb.Write(l.batch, nil)
}
