package types

import (
	"github.com/blockberries/cramberry/pkg/cramberry"
	"github.com/cloudflare/circl/sign/mldsa/mldsa44"
	"golang.org/x/crypto/blake2b"
)

// Transaction is the unit of admission control: an opaque payload,
// the claimed signer's public key, a submission timestamp, and an
// ML-DSA-44 signature over the other three fields.
type Transaction struct {
	// Sender is the ML-DSA-44 public key of the claimed signer.
	Sender []byte `cramberry:"1"`
	// Payload is opaque to the validation subsystem.
	Payload []byte `cramberry:"2"`
	// Timestamp is when the sender produced the transaction.
	// Freshness is judged against the consensus timeout.
	Timestamp Timestamp `cramberry:"3"`
	// Signature covers Sender, Payload, and Timestamp.
	Signature []byte `cramberry:"4"`
}

// signingView is the canonical preimage covered by Signature.
// Field order and tags must never change.
type signingView struct {
	Sender    []byte    `cramberry:"1"`
	Payload   []byte    `cramberry:"2"`
	Timestamp Timestamp `cramberry:"3"`
}

// SigningBytes returns the deterministic byte string the signature
// covers.
func (tx *Transaction) SigningBytes() ([]byte, error) {
	return cramberry.Marshal(signingView{
		Sender:    tx.Sender,
		Payload:   tx.Payload,
		Timestamp: tx.Timestamp,
	})
}

// Sign sets Sender to the key's public half and Signature to an
// ML-DSA-44 signature over the signing bytes.
func (tx *Transaction) Sign(priv *mldsa44.PrivateKey) error {
	tx.Sender = priv.Public().(*mldsa44.PublicKey).Bytes()
	msg, err := tx.SigningBytes()
	if err != nil {
		return err
	}
	sig := make([]byte, mldsa44.SignatureSize)
	if err := mldsa44.SignTo(priv, msg, nil, false, sig); err != nil {
		return err
	}
	tx.Signature = sig
	return nil
}

// Verify reports whether Signature verifies against the claimed
// sender's public key. Malformed key or signature material yields
// false, never a panic.
func (tx *Transaction) Verify() bool {
	if tx == nil ||
		len(tx.Sender) != mldsa44.PublicKeySize ||
		len(tx.Signature) != mldsa44.SignatureSize {
		return false
	}
	pub := new(mldsa44.PublicKey)
	if err := pub.UnmarshalBinary(tx.Sender); err != nil {
		return false
	}
	msg, err := tx.SigningBytes()
	if err != nil {
		return false
	}
	return mldsa44.Verify(pub, msg, nil, tx.Signature)
}

// Digest returns the BLAKE2b-256 digest of the fully encoded
// transaction, signature included. The consensus manager records
// this as the last accepted hash.
func (tx *Transaction) Digest() Hash {
	data, err := cramberry.Marshal(*tx)
	if err != nil {
		return Hash{}
	}
	return blake2b.Sum256(data)
}
