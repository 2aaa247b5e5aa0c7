package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

const ledgerPrefix = "ingested:"

// Ledger records content hashes of documents that were fully ingested, so a
// re-run skips anything unchanged. Keys are source names; a document whose
// text changed hashes differently and is re-embedded.
type Ledger struct {
	db *badger.DB
}

// OpenLedger opens or creates a ledger at the given directory.
func OpenLedger(path string) (*Ledger, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening ingest ledger: %w", err)
	}
	return &Ledger{db: db}, nil
}

// ContentHash returns the hex sha256 of a document's text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Seen reports whether the source was already ingested with this exact hash.
func (l *Ledger) Seen(source, hash string) (bool, error) {
	var stored string
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(ledgerPrefix + source))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			stored = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading ingest ledger: %w", err)
	}
	return stored == hash, nil
}

// Mark records the source as ingested with the given hash.
func (l *Ledger) Mark(source, hash string) error {
	err := l.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(ledgerPrefix+source), []byte(hash))
	})
	if err != nil {
		return fmt.Errorf("writing ingest ledger: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}
