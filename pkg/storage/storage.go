package storage

import "errors"

var (
	ErrorNotFound = errors.New("not found in DB")
)

type Storage interface {
	Write

	// Get retrieves the object `value` named by `key`.
	// Get returns ErrorNotFound if the key is not mapped to a value.
	Get(key []byte) ([]byte, error)

	// Has returns whether the `key` is mapped to a `value`.
	Has(key []byte) (bool, error)

	// Iterator iterates over a DB's key/value pairs in key order.
	// The range is [start, end), a nil end means no upper bound.
	Iterator(start, end []byte) Iterator

	// Prefix iterates over a DB's key/value pairs in key order including prefix.
	Prefix(prefix []byte) Iterator

	NewBatch() Batch

	Close() error
}

// Write is the write-side of the storage interface.
type Write interface {
	// Put stores the object `value` named by `key`.
	Put(key, value []byte) error

	// Delete removes the value for given `key`.
	Delete(key []byte) error
}

type Iterator interface {
	// Next moves the iterator to the next key/value pair.
	// It returns false if the iterator is exhausted.
	Next() bool

	// Prev moves the iterator to the previous key/value pair.
	// It returns false if the iterator is exhausted.
	Prev() bool

	// Last moves the iterator to the last key/value pair in range.
	Last() bool

	// Seek moves the iterator to the first key/value pair whose key is greater
	// than or equal to the given key.
	// It returns whether such pair exist.
	//
	// It is safe to modify the contents of the argument after Seek returns.
	Seek(key []byte) bool

	// Key returns the key of the current key/value pair, or nil if done.
	Key() []byte

	// Value returns the value of the current key/value pair, or nil if done.
	Value() []byte

	// Release frees the iterator. It must be called once the caller is done.
	Release()

	// Error returns any accumulated error.
	Error() error
}

// Batch groups writes that are applied atomically by Commit.
type Batch interface {
	Put(key, value []byte)
	Delete(key []byte)
	Len() int
	Commit() error
}
