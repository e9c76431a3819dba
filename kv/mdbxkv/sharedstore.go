package mdbxkv

import (
	"bytes"

	"github.com/erigontech/mdbx-go/mdbx"
)

// sharedDB names the one sub-database every logical table shares when the
// environment was opened with a constrained named-database ceiling (see
// Backend's maxNamedDBs and WithMaxNamedDBs). Alongside keyTypesDB, that
// caps the environment at two named sub-databases regardless of how many
// logical tables the cache opens on top.
const sharedDB = "shared"

// sharedStore adapts Backend's shared sub-database to kv.byteStore, so
// kv.NewPrefixTable can namespace each logical table by key prefix within
// it instead of each getting its own sub-database.
type sharedStore struct {
	backend *Backend
}

func (s *sharedStore) Get(key []byte) ([]byte, bool, error) {
	var val []byte
	var found bool
	err := s.backend.env.View(func(txn *mdbx.Txn) error {
		v, err := txn.Get(s.backend.sharedDBI, key)
		if mdbx.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		val = append([]byte(nil), v...)
		found = true
		return nil
	})
	return val, found, err
}

func (s *sharedStore) Put(key, val []byte) error {
	if err := s.backend.wtx.begin(); err != nil {
		return err
	}
	defer s.backend.wtx.commit()
	return s.backend.wtx.txn.Put(s.backend.sharedDBI, key, val, 0)
}

func (s *sharedStore) Delete(key []byte) error {
	if err := s.backend.wtx.begin(); err != nil {
		return err
	}
	defer s.backend.wtx.commit()
	err := s.backend.wtx.txn.Del(s.backend.sharedDBI, key, nil)
	if mdbx.IsNotFound(err) {
		return nil
	}
	return err
}

func (s *sharedStore) Scan(prefix []byte, yield func(key, val []byte) bool) error {
	return s.backend.env.View(func(txn *mdbx.Txn) error {
		cur, err := txn.OpenCursor(s.backend.sharedDBI)
		if err != nil {
			return err
		}
		defer cur.Close()
		k, v, err := cur.Get(prefix, nil, mdbx.SetRange)
		for ; err == nil; k, v, err = cur.Get(nil, nil, mdbx.Next) {
			if !bytes.HasPrefix(k, prefix) {
				break
			}
			if !yield(append([]byte(nil), k[len(prefix):]...), append([]byte(nil), v...)) {
				break
			}
		}
		return nil
	})
}

func (s *sharedStore) Len(prefix []byte) (int64, error) {
	var n int64
	err := s.Scan(prefix, func(k, v []byte) bool {
		n++
		return true
	})
	return n, err
}

func (s *sharedStore) DropPrefix(prefix []byte) error {
	var keys [][]byte
	if err := s.Scan(prefix, func(k, v []byte) bool {
		keys = append(keys, append([]byte(nil), k...))
		return true
	}); err != nil {
		return err
	}
	if err := s.backend.wtx.begin(); err != nil {
		return err
	}
	defer s.backend.wtx.commit()
	for _, k := range keys {
		full := append(append([]byte(nil), prefix...), k...)
		if err := s.backend.wtx.txn.Del(s.backend.sharedDBI, full, nil); err != nil && !mdbx.IsNotFound(err) {
			return err
		}
	}
	return nil
}
