package badger

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/secondbrain/storage"
)

// Identity returns the store identity stamped into this backend, or
// uuid.Nil if none has been written yet.
func (b *Backend) Identity() (uuid.UUID, error) {
	id := uuid.Nil
	err := b.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(storeIdentityKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			id, err = uuid.FromBytes(val)
			return err
		})
	}, false)
	return id, err
}

// SetIdentity stamps id into this backend.
func (b *Backend) SetIdentity(id uuid.UUID) error {
	return b.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(storeIdentityKey), id[:]); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// bindIdentity makes sure the metadata and vector backends belong to the
// same store. A fresh store gets a new identity; a side that lost its
// identity (for example a deleted vector directory) is stamped with the
// other side's. Two different identities mean the directories were mixed up.
func bindIdentity(notes, vectors *Backend) (uuid.UUID, error) {
	noteID, err := notes.Identity()
	if err != nil {
		return uuid.Nil, storage.Wrap(err)
	}
	vectorID, err := vectors.Identity()
	if err != nil {
		return uuid.Nil, storage.Wrap(err)
	}

	switch {
	case noteID == uuid.Nil && vectorID == uuid.Nil:
		id := uuid.New()
		if err := notes.SetIdentity(id); err != nil {
			return uuid.Nil, storage.Wrap(err)
		}
		if err := vectors.SetIdentity(id); err != nil {
			return uuid.Nil, storage.Wrap(err)
		}
		return id, nil
	case noteID == uuid.Nil:
		return vectorID, storage.Wrap(notes.SetIdentity(vectorID))
	case vectorID == uuid.Nil:
		return noteID, storage.Wrap(vectors.SetIdentity(noteID))
	case noteID != vectorID:
		return uuid.Nil, fmt.Errorf("%w: metadata store %s does not match vector store %s",
			storage.ErrCorrupt, noteID, vectorID)
	}
	return noteID, nil
}
