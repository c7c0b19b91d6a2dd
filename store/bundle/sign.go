package bundle

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
)

// SignatureRecord is the manifests/signature.json payload: a detached
// signature over the canonical index.json bytes.
type SignatureRecord struct {
	Scheme    string `json:"scheme"`
	HashAlg   string `json:"hashAlg"`
	PublicKey string `json:"publicKey"`
	Signature string `json:"signature"`
}

// Signer produces a SignatureRecord for a message.
type Signer interface {
	Sign(message []byte) (SignatureRecord, error)
}

// SignIndex signs the canonical index bytes.
func SignIndex(index []byte, s Signer) (SignatureRecord, error) {
	return s.Sign(index)
}

func digestFor(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case "sha256":
		s := sha256.Sum256(message)
		return s[:], nil
	case "sha512":
		s := sha512.Sum512(message)
		return s[:], nil
	case "sha3-256":
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %q", hashAlg)
	}
}

// Ed25519Signer signs sha256 digests with an ed25519 key.
type Ed25519Signer struct {
	Private ed25519.PrivateKey
}

func (s Ed25519Signer) Sign(message []byte) (SignatureRecord, error) {
	if len(s.Private) != ed25519.PrivateKeySize {
		return SignatureRecord{}, fmt.Errorf("bundle: invalid ed25519 private key")
	}
	digest := sha256.Sum256(message)
	sig := ed25519.Sign(s.Private, digest[:])
	pub := s.Private.Public().(ed25519.PublicKey)
	return SignatureRecord{
		Scheme:    "ed25519",
		HashAlg:   "sha256",
		PublicKey: base64.StdEncoding.EncodeToString(pub),
		Signature: base64.StdEncoding.EncodeToString(sig),
	}, nil
}

// Dilithium3Signer signs digests with a Dilithium mode3 key.
// HashAlg must be one of: sha256, sha512, sha3-256.
type Dilithium3Signer struct {
	HashAlg string
	Private *mode3.PrivateKey
}

func (s Dilithium3Signer) Sign(message []byte) (SignatureRecord, error) {
	if s.Private == nil {
		return SignatureRecord{}, fmt.Errorf("bundle: missing dilithium3 private key")
	}
	digest, err := digestFor(s.HashAlg, message)
	if err != nil {
		return SignatureRecord{}, err
	}
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(s.Private, digest, sig)
	pub := s.Private.Public().(*mode3.PublicKey)
	pubBytes, err := pub.MarshalBinary()
	if err != nil {
		return SignatureRecord{}, err
	}
	return SignatureRecord{
		Scheme:    "dilithium3",
		HashAlg:   s.HashAlg,
		PublicKey: base64.StdEncoding.EncodeToString(pubBytes),
		Signature: base64.StdEncoding.EncodeToString(sig),
	}, nil
}

// Verify checks a SignatureRecord against the canonical index bytes.
func Verify(index []byte, rec SignatureRecord) error {
	pub, err := base64.StdEncoding.DecodeString(rec.PublicKey)
	if err != nil {
		return fmt.Errorf("bundle: bad public key encoding: %w", err)
	}
	sig, err := base64.StdEncoding.DecodeString(rec.Signature)
	if err != nil {
		return fmt.Errorf("bundle: bad signature encoding: %w", err)
	}

	switch rec.Scheme {
	case "ed25519":
		if rec.HashAlg != "sha256" {
			return fmt.Errorf("bundle: ed25519 signatures use sha256, got %q", rec.HashAlg)
		}
		if len(pub) != ed25519.PublicKeySize {
			return fmt.Errorf("bundle: invalid ed25519 public key size")
		}
		digest := sha256.Sum256(index)
		if !ed25519.Verify(ed25519.PublicKey(pub), digest[:], sig) {
			return fmt.Errorf("bundle: ed25519 signature verification failed")
		}
		return nil

	case "dilithium3":
		digest, err := digestFor(rec.HashAlg, index)
		if err != nil {
			return err
		}
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(pub); err != nil {
			return fmt.Errorf("bundle: invalid dilithium3 public key: %w", err)
		}
		if !mode3.Verify(&pk, digest, sig) {
			return fmt.Errorf("bundle: dilithium3 signature verification failed")
		}
		return nil
	}
	return fmt.Errorf("bundle: unsupported signature scheme %q", rec.Scheme)
}

// GenerateDilithium3Keypair returns a new Dilithium mode3 keypair.
func GenerateDilithium3Keypair(rand io.Reader) (*mode3.PublicKey, *mode3.PrivateKey, error) {
	return mode3.GenerateKey(rand)
}
