package grpc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/carverauto/sensorsync/pkg/models"
)

var (
	errMissingCerts = errors.New("missing certificates")
)

// CertificateManager checks the certificate directory of a service.
type CertificateManager struct {
	config *models.SecurityConfig
}

func NewCertificateManager(config *models.SecurityConfig) *CertificateManager {
	return &CertificateManager{config: config}
}

// ValidateServerCertificates reports every server file missing from CertDir
// at once, rather than failing on the first.
func (cm *CertificateManager) ValidateServerCertificates() error {
	var missing []string

	for _, file := range []string{serverCertFile, serverKeyFile} {
		if _, err := os.Stat(filepath.Join(cm.config.CertDir, file)); errors.Is(err, os.ErrNotExist) {
			missing = append(missing, file)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w in %s: %s", errMissingCerts, cm.config.CertDir, strings.Join(missing, ", "))
	}

	return nil
}
