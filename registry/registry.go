package registry

import (
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const defaultCatalogPageSize = 250

// Opts configures a Registry.
type Opts struct {
	// Address is the base URL of the registry, e.g. "https://registry.example:5000".
	// A bare host is treated as https.
	Address string
	// CAFile is the path to a PEM file with additional trusted CA certificates.
	CAFile string
	// Insecure disables verification of the registry's certificate.
	Insecure bool
	// CatalogPageSize bounds the single catalog page requested by Repositories.
	CatalogPageSize int
	// Workers sets the number of concurrent manifest fetches in RepositorySize.
	// Values below 2 keep the scan sequential.
	Workers int
	// Logger receives debug output. Defaults to a logger that discards everything.
	Logger Logger
}

// Registry is a client for one Docker Registry V2 endpoint.
type Registry struct {
	address         string
	catalogPageSize int
	client          *http.Client
	log             Logger
	workers         int
}

// New creates a Registry from o. It fails if o.CAFile cannot be read or does
// not contain a certificate.
func New(o Opts) (*Registry, error) {
	if o.Address == "" {
		return nil, errors.New("registry address is empty")
	}

	address := strings.TrimSuffix(o.Address, "/")
	if !strings.HasPrefix(address, "http://") && !strings.HasPrefix(address, "https://") {
		address = "https://" + address
	}

	tlsConfig := &tls.Config{
		InsecureSkipVerify: o.Insecure,
	}
	if o.CAFile != "" {
		pem, err := os.ReadFile(o.CAFile)
		if err != nil {
			return nil, errors.Wrapf(err, "reading CA file %s", o.CAFile)
		}

		pool, err := x509.SystemCertPool()
		if err != nil {
			pool = x509.NewCertPool()
		}

		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.Errorf("no certificates found in CA file %s", o.CAFile)
		}

		tlsConfig.RootCAs = pool
	}

	pageSize := o.CatalogPageSize
	if pageSize <= 0 {
		pageSize = defaultCatalogPageSize
	}

	logger := o.Logger
	if logger == nil {
		logger = &nullLogger{}
	}

	return &Registry{
		address:         address,
		catalogPageSize: pageSize,
		client: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: tlsConfig,
			},
		},
		log:     logger,
		workers: o.Workers,
	}, nil
}

// Address returns the normalized base URL of the registry.
func (r *Registry) Address() string {
	return r.address
}
