package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
	"github.com/dgraph-io/badger/v4"
)

var (
	triplePrefix     = []byte("triple/")
	experiencePrefix = []byte("experience/")
)

// BadgerStore is an embedded key-value log. Keys are prefix + big-endian id so
// iteration order is append order.
type BadgerStore struct {
	db            *badger.DB
	tripleSeq     *badger.Sequence
	experienceSeq *badger.Sequence
}

// NewBadgerStore opens a store under dir. An empty dir opens an in-memory store.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	tripleSeq, err := db.GetSequence([]byte("seq/triple"), 100)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("triple sequence: %w", err)
	}
	experienceSeq, err := db.GetSequence([]byte("seq/experience"), 100)
	if err != nil {
		_ = tripleSeq.Release()
		db.Close()
		return nil, fmt.Errorf("experience sequence: %w", err)
	}

	return &BadgerStore{db: db, tripleSeq: tripleSeq, experienceSeq: experienceSeq}, nil
}

// Ping fails once the database is closed. Badger has no remote backend to dial.
func (s *BadgerStore) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger: database is closed")
	}
	return ctx.Err()
}

func (s *BadgerStore) Close() error {
	_ = s.tripleSeq.Release()
	_ = s.experienceSeq.Release()
	return s.db.Close()
}

func (s *BadgerStore) AppendTriple(ctx context.Context, t *domain.Triple) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := s.tripleSeq.Next()
	if err != nil {
		return err
	}
	t.ID = int64(n) + 1
	t.Timestamp = stampOrNow(t.Timestamp)
	return s.put(triplePrefix, t.ID, t)
}

func (s *BadgerStore) ListTriples(ctx context.Context) ([]domain.Triple, error) {
	var out []domain.Triple
	err := s.scan(ctx, triplePrefix, false, func(v []byte) (bool, error) {
		var t domain.Triple
		if err := json.Unmarshal(v, &t); err != nil {
			return false, err
		}
		out = append(out, t)
		return true, nil
	})
	return out, err
}

func (s *BadgerStore) CountTriples(ctx context.Context) (int64, error) {
	return s.count(ctx, triplePrefix)
}

func (s *BadgerStore) AppendExperience(ctx context.Context, e *domain.Experience) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := s.experienceSeq.Next()
	if err != nil {
		return err
	}
	e.ID = int64(n) + 1
	e.Timestamp = stampOrNow(e.Timestamp)
	return s.put(experiencePrefix, e.ID, e)
}

func (s *BadgerStore) ListExperiences(ctx context.Context, actorID string, limit int) ([]domain.Experience, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	var out []domain.Experience
	err := s.scan(ctx, experiencePrefix, true, func(v []byte) (bool, error) {
		var e domain.Experience
		if err := json.Unmarshal(v, &e); err != nil {
			return false, err
		}
		if actorID == "" || e.ActorID == actorID {
			out = append(out, e)
		}
		return len(out) < limit, nil
	})
	return out, err
}

func (s *BadgerStore) CountExperiences(ctx context.Context) (int64, error) {
	return s.count(ctx, experiencePrefix)
}

func (s *BadgerStore) put(prefix []byte, id int64, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(logKey(prefix, id), data)
	})
}

// scan walks every value under prefix until fn returns false.
func (s *BadgerStore) scan(ctx context.Context, prefix []byte, reverse bool, fn func([]byte) (bool, error)) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = reverse
		it := txn.NewIterator(opts)
		defer it.Close()

		start := prefix
		if reverse {
			start = append(append([]byte(nil), prefix...), 0xFF)
		}
		for it.Seek(start); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			more, err := fn(v)
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
		}
		return nil
	})
}

func (s *BadgerStore) count(ctx context.Context, prefix []byte) (int64, error) {
	var n int64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}

func logKey(prefix []byte, id int64) []byte {
	key := make([]byte, len(prefix)+8)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], uint64(id))
	return key
}
