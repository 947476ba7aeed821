package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/crypto/hkdf"

	authDomain "github.com/allisson/warden/internal/auth/domain"
)

// auditSigningInfo is the HKDF info string; bump the version when the canonical form changes.
const auditSigningInfo = "audit-log-signing-v1"

type auditSigner struct{}

// NewAuditSigner creates a new HMAC-based audit log signer using HKDF-SHA256
// for key derivation and HMAC-SHA256 for signature generation.
func NewAuditSigner() AuditSigner {
	return &auditSigner{}
}

// deriveSigningKey uses HKDF-SHA256 to derive a 32-byte signing key from the root key.
func (a *auditSigner) deriveSigningKey(rootKey []byte) ([]byte, error) {
	kdf := hkdf.New(sha256.New, rootKey, nil, []byte(auditSigningInfo))

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, signingKey); err != nil {
		return nil, err
	}

	return signingKey, nil
}

// canonicalizeLog converts an audit log to the byte sequence that gets signed.
// Variable-length fields are length-prefixed so field boundaries cannot be shifted.
// Timestamps use microsecond precision, the finest both SQL stores keep.
func (a *auditSigner) canonicalizeLog(log *authDomain.AuditLog) ([]byte, error) {
	buf := make([]byte, 0, 1024)

	buf = append(buf, log.ID[:]...)
	buf = appendLengthPrefixed(buf, []byte(log.CorrelationID))

	if log.SubjectID != nil {
		buf = appendLengthPrefixed(buf, log.SubjectID[:])
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	buf = appendLengthPrefixed(buf, []byte(log.Action))
	buf = appendLengthPrefixed(buf, []byte(log.ResourceType))
	buf = appendOptionalString(buf, log.ResourceID)
	buf = appendLengthPrefixed(buf, []byte(log.HTTPMethod))
	buf = appendLengthPrefixed(buf, []byte(log.Path))

	if log.StatusCode != nil {
		buf = appendLengthPrefixed(buf, []byte(strconv.Itoa(*log.StatusCode)))
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	buf = appendLengthPrefixed(buf, []byte(log.IPAddress))
	buf = appendLengthPrefixed(buf, []byte(log.UserAgent))
	buf = appendLengthPrefixed(buf, []byte(log.KeyID))

	if len(log.Metadata) > 0 {
		// encoding/json sorts map keys, so the output is deterministic
		metadataBytes, err := json.Marshal(log.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		buf = appendLengthPrefixed(buf, metadataBytes)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	buf = binary.BigEndian.AppendUint64(buf, uint64(log.CreatedAt.UnixMicro())) //nolint:gosec // timestamps are positive

	return buf, nil
}

func appendOptionalString(buf []byte, s *string) []byte {
	if s == nil {
		return appendLengthPrefixed(buf, nil)
	}
	return appendLengthPrefixed(buf, []byte(*s))
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
// Panics if data length exceeds uint32 max (4GB) to prevent integer overflow.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	dataLen := len(data)
	if dataLen > 0xFFFFFFFF {
		panic("data length exceeds uint32 max (4GB)")
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(dataLen)) //nolint:gosec // bounded above
	return append(buf, data...)
}

// Sign generates the HMAC-SHA256 signature for the audit log.
func (a *auditSigner) Sign(rootKey []byte, log *authDomain.AuditLog) ([]byte, error) {
	signingKey, err := a.deriveSigningKey(rootKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	defer zero(signingKey)

	canonical, err := a.canonicalizeLog(log)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize log: %w", err)
	}

	mac := hmac.New(sha256.New, signingKey)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify checks the audit log signature in constant time.
func (a *auditSigner) Verify(rootKey []byte, log *authDomain.AuditLog) error {
	expectedSig, err := a.Sign(rootKey, log)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}

	if !hmac.Equal(log.Signature, expectedSig) {
		return authDomain.ErrSignatureInvalid
	}

	return nil
}

// zero overwrites key material in memory.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
