package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

const selfSignedValidity = 365 * 24 * time.Hour

// ensureCertificate generates a self-signed certificate for localhost when
// neither the certificate nor the key file exist. It reports whether a pair
// was generated. A lone certificate or key is an error.
func ensureCertificate(certFile, keyFile string, now time.Time) (bool, error) {
	certExists, err := fileExists(certFile)
	if err != nil {
		return false, err
	}

	keyExists, err := fileExists(keyFile)
	if err != nil {
		return false, err
	}

	if certExists && keyExists {
		return false, nil
	}

	if certExists != keyExists {
		return false, fmt.Errorf("only one of %s and %s exists", certFile, keyFile)
	}

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return false, fmt.Errorf("failed to generate key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return false, fmt.Errorf("failed to generate serial number: %w", err)
	}

	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"Tuffy Estates"}},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(selfSignedValidity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	if err != nil {
		return false, fmt.Errorf("failed to create certificate: %w", err)
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return false, fmt.Errorf("failed to marshal key: %w", err)
	}

	err = writePEM(certFile, "CERTIFICATE", der, 0o644)
	if err != nil {
		return false, err
	}

	err = writePEM(keyFile, "PRIVATE KEY", keyDER, 0o600)
	if err != nil {
		return false, errors.Join(err, os.Remove(certFile))
	}

	return true, nil
}

func writePEM(name, blockType string, der []byte, perm os.FileMode) error {
	err := os.MkdirAll(filepath.Dir(name), 0o755)
	if err != nil {
		return err
	}

	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})

	err = os.WriteFile(name, data, perm)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	return nil
}

func fileExists(name string) (bool, error) {
	_, err := os.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
