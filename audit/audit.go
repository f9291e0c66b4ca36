// Package audit implements the optional tracked-reference auditor of
// spec.md §4.4 ("Tracked refs (audit)" / SPEC_FULL.md §4.4.1): a
// pluggable, decoupled diagnostic layer that refcount.SetAuditor wires
// in only when a caller wants double-ref detection and a queryable
// history of who held what. Disabled (the package default), it costs
// the core nothing — refcount never imports this package.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package audit

import (
	"fmt"
	"sync"
	"time"
	"unsafe"

	"github.com/golang-jwt/jwt/v4"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	cuckoo "github.com/seiflotfy/cuckoofilter"
	"github.com/tidwall/buntdb"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Record is one tracked reference, keyed by the (owner, target) pair
// that established it.
type Record struct {
	Owner  string    `json:"owner"`
	Target string    `json:"target"`
	Loc    string    `json:"loc"`
	At     time.Time `json:"at"`
}

// Store is the reference Auditor implementation described in
// SPEC_FULL.md §4.4.1. The zero value is not usable; construct with
// NewStore.
type Store struct {
	mu     sync.Mutex // independent of refcount.globalLock by design
	db     *buntdb.DB
	filter *cuckoo.Filter
}

// NewStore opens an in-memory audit database. Pass a file path instead
// of ":memory:" for durable (crash-surviving) audit trails — buntdb
// treats both uniformly.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "audit: open store")
	}
	return &Store{
		db:     db,
		filter: cuckoo.NewFilter(1 << 16),
	}, nil
}

func key(owner, target unsafe.Pointer) string {
	return fmt.Sprintf("%p/%p", owner, target)
}

// TrackRef implements refcount.Auditor.
func (s *Store) TrackRef(owner, target unsafe.Pointer, loc string) {
	k := key(owner, target)
	rec := Record{
		Owner:  fmt.Sprintf("%p", owner),
		Target: fmt.Sprintf("%p", target),
		Loc:    loc,
		At:     time.Now(),
	}
	buf, err := jsonAPI.Marshal(rec)
	if err != nil {
		// Marshaling a plain struct of strings/time.Time cannot fail in
		// practice; treat it as the invariant it would be if it did.
		panic(errors.Wrap(err, "audit: marshal record"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.InsertUnique([]byte(k))
	_ = s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(k, string(buf), nil)
		return err
	})
}

// UntrackRef implements refcount.Auditor. Deleting a key buntdb never
// saw (e.g. an Unref2 for an edge predating auditing) is a no-op, not
// an error.
func (s *Store) UntrackRef(owner, target unsafe.Pointer) {
	k := key(owner, target)
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(k)
		if err == buntdb.ErrNotFound {
			return nil
		}
		return err
	})
}

// Check implements refcount.Auditor. The cuckoo filter is consulted
// first as a fast probabilistic pre-check; a miss there is conclusive
// only because the filter is never cleared independently of buntdb
// (every insert survives until the matching delete, and deletes don't
// remove from the filter — so a filter miss implies "never inserted",
// while a filter hit still falls through to the authoritative read).
func (s *Store) Check(owner, target unsafe.Pointer) bool {
	k := key(owner, target)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.filter.Lookup([]byte(k)) {
		return false
	}
	found := false
	_ = s.db.View(func(tx *buntdb.Tx) error {
		_, err := tx.Get(k)
		found = err == nil
		return nil
	})
	return found
}

// Close releases the underlying buntdb handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// claims is the JWT payload ExportSigned produces: the full record set
// plus the standard registered claims.
type claims struct {
	Records []Record `json:"records"`
	jwt.RegisteredClaims
}

// ExportSigned renders every currently tracked record as a
// github.com/golang-jwt/jwt/v4 signed JWT, so a snapshot of the audit
// trail can be handed to a verifier that does not need to trust this
// process — the tamper-evidence spec.md's audit layer implies but
// leaves to the embedder.
func (s *Store) ExportSigned(signingKey []byte) (string, error) {
	var records []Record
	s.mu.Lock()
	err := s.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("", func(k, v string) bool {
			var r Record
			if jerr := jsonAPI.UnmarshalFromString(v, &r); jerr == nil {
				records = append(records, r)
			}
			return true
		})
	})
	s.mu.Unlock()
	if err != nil {
		return "", errors.Wrap(err, "audit: export")
	}

	c := claims{
		Records: records,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer:   "corepb-audit",
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := tok.SignedString(signingKey)
	if err != nil {
		return "", errors.Wrap(err, "audit: sign export")
	}
	return signed, nil
}
