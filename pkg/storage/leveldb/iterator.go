package leveldb

import "github.com/syndtr/goleveldb/leveldb/iterator"

type iter struct {
	iter iterator.Iterator
}

func (it *iter) Prev() bool {
	return it.iter.Prev()
}

func (it *iter) Last() bool {
	return it.iter.Last()
}

func (it *iter) Seek(key []byte) bool {
	return it.iter.Seek(key)
}

func (it *iter) Next() bool {
	return it.iter.Next()
}

// Key and Value copy out of the iterator buffers, which leveldb reuses on
// every move.
func (it *iter) Key() []byte {
	return copyBytes(it.iter.Key())
}

func (it *iter) Value() []byte {
	return copyBytes(it.iter.Value())
}

func (it *iter) Release() {
	it.iter.Release()
}

func (it *iter) Error() error {
	return it.iter.Error()
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	ret := make([]byte, len(b))
	copy(ret, b)
	return ret
}
