package policystore

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/latticeauth/xacml-pdp/internal/domain/policytree"
	"github.com/latticeauth/xacml-pdp/internal/domain/refresolve"
)

const (
	kindPolicy    = "policy"
	kindPolicySet = "policy-set"
)

// SQLiteStore persists policy/policy-set documents keyed by (kind, id,
// version) and implements refresolve.RefPolicyProvider directly against
// that catalog, decoding a stored document through Decoder only when a
// PolicyIdReference/PolicySetIdReference actually resolves it.
type SQLiteStore struct {
	db      *sql.DB
	decoder Decoder
}

// NewSQLiteStore opens (and migrates) the policy catalog against an
// already-opened *sql.DB (driver "sqlite", modernc.org/sqlite).
func NewSQLiteStore(db *sql.DB, decoder Decoder) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db, decoder: decoder}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS policy_documents (
			kind     TEXT NOT NULL,
			id       TEXT NOT NULL,
			version  TEXT NOT NULL,
			document BLOB NOT NULL,
			PRIMARY KEY (kind, id, version)
		);
		CREATE INDEX IF NOT EXISTS idx_policy_documents_id ON policy_documents (id);
	`)
	if err != nil {
		return fmt.Errorf("policystore: migrate: %w", err)
	}
	return nil
}

// put upserts one policy or policy-set document. kind must be
// kindPolicy/kindPolicySet via the typed helpers PutPolicy/PutPolicySet.
func (s *SQLiteStore) put(ctx context.Context, kind, id, version string, document []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO policy_documents (kind, id, version, document) VALUES (?, ?, ?, ?)
		ON CONFLICT (kind, id, version) DO UPDATE SET document = excluded.document
	`, kind, id, version, document)
	if err != nil {
		return fmt.Errorf("policystore: put %s %s/%s: %w", kind, id, version, err)
	}
	return nil
}

// PutPolicy stores (or replaces) one Policy document's version.
func (s *SQLiteStore) PutPolicy(ctx context.Context, id, version string, document []byte) error {
	return s.put(ctx, kindPolicy, id, version, document)
}

// PutPolicySet stores (or replaces) one PolicySet document's version.
func (s *SQLiteStore) PutPolicySet(ctx context.Context, id, version string, document []byte) error {
	return s.put(ctx, kindPolicySet, id, version, document)
}

// AvailableVersions implements refresolve.RefPolicyProvider, listing every
// version stored for id regardless of whether it names a Policy or a
// PolicySet (XACML identifiers share one namespace across both).
func (s *SQLiteStore) AvailableVersions(ctx context.Context, id string) ([]refresolve.Version, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT version FROM policy_documents WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("policystore: AvailableVersions %s: %w", id, err)
	}
	defer func() { _ = rows.Close() }()

	var versions []refresolve.Version
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("policystore: AvailableVersions %s: %w", id, err)
		}
		v, err := refresolve.ParseVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("policystore: stored version %q for %s: %w", raw, id, err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("policystore: AvailableVersions %s: %w", id, err)
	}
	return versions, nil
}

func (s *SQLiteStore) document(ctx context.Context, kind, id, version string) ([]byte, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT document FROM policy_documents WHERE kind = ? AND id = ? AND version = ?
	`, kind, id, version).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("policystore: no %s %s/%s", kind, id, version)
	}
	if err != nil {
		return nil, fmt.Errorf("policystore: fetching %s %s/%s: %w", kind, id, version, err)
	}
	return doc, nil
}

func (s *SQLiteStore) ResolvePolicy(ctx context.Context, id string, version refresolve.Version) (policytree.Policy, error) {
	doc, err := s.document(ctx, kindPolicy, id, version.String())
	if err != nil {
		return policytree.Policy{}, err
	}
	return s.decoder.DecodePolicy(doc)
}

func (s *SQLiteStore) ResolvePolicySet(ctx context.Context, id string, version refresolve.Version) (policytree.PolicySet, error) {
	doc, err := s.document(ctx, kindPolicySet, id, version.String())
	if err != nil {
		return policytree.PolicySet{}, err
	}
	return s.decoder.DecodePolicySet(doc)
}
