package transport

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	mr "math/rand"
	"math/big"
	"time"
)

const (
	tlsRSABits = 2048
	tlsName    = "localhost"
)

// generateSelfSignedCert builds a fresh, in-memory self-signed leaf
// certificate for SNI "localhost", regenerated on every process start
// rather than persisted to disk. Grounded on the teacher's
// cmd/syncthing/tls.go newCertificate, adapted from PEM-on-disk to an
// in-memory tls.Certificate since the protocol never validates the peer's
// certificate (§4.5 non-goal: no certificate validation).
func generateSelfSignedCert() (tls.Certificate, error) {
	priv, err := rsa.GenerateKey(rand.Reader, tlsRSABits)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generate key: %w", err)
	}

	notBefore := time.Now()
	notAfter := notBefore.Add(10 * 365 * 24 * time.Hour)

	template := x509.Certificate{
		SerialNumber: new(big.Int).SetInt64(mr.Int63()),
		Subject: pkix.Name{
			CommonName: tlsName,
		},
		DNSNames:  []string{tlsName},
		NotBefore: notBefore,
		NotAfter:  notAfter,

		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("create certificate: %w", err)
	}

	return tls.Certificate{
		Certificate: [][]byte{derBytes},
		PrivateKey:  priv,
	}, nil
}

// serverTLSConfig presents the self-signed leaf generated above.
func serverTLSConfig() (*tls.Config, error) {
	cert, err := generateSelfSignedCert()
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{"mojika"},
	}, nil
}

// clientTLSConfig trusts any certificate presented by the responder (§4.5
// non-goal: no certificate validation). Nothing else authenticates the
// peer either: the secret carried on each request is not checked.
func clientTLSConfig() *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         tlsName,
		NextProtos:         []string{"mojika"},
	}
}
